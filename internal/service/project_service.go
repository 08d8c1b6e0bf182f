package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/buildsafe/safety-backend/internal/domain"
	"github.com/buildsafe/safety-backend/internal/repository"
)

type CreateProjectRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
	JobAddress  *string `json:"job_address"`
	ClientName  *string `json:"client_name"`
	Status      string  `json:"status" validate:"omitempty,oneof=active completed archived"`
}

type ProjectResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	JobAddress  *string   `json:"job_address"`
	ClientName  *string   `json:"client_name"`
	Status      string    `json:"status"`
	CreatedAt   string    `json:"created_at"`
}

type ProjectService interface {
	ListProjects(ctx context.Context, status string) ([]ProjectResponse, error)
	CreateProject(ctx context.Context, actor *domain.Actor, req CreateProjectRequest) (*ProjectResponse, error)
}

type projectService struct {
	repo repository.ProjectRepository
}

func NewProjectService(repo repository.ProjectRepository) ProjectService {
	return &projectService{repo: repo}
}

func (s *projectService) ListProjects(ctx context.Context, status string) ([]ProjectResponse, error) {
	status = strings.TrimSpace(status)
	switch status {
	case "", domain.ProjectStatusActive, domain.ProjectStatusCompleted, domain.ProjectStatusArchived:
	default:
		return nil, domain.NewValidationError("status", "must be one of: active completed archived")
	}

	projects, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, domain.Remote("list projects", err)
	}
	out := make([]ProjectResponse, 0, len(projects))
	for i := range projects {
		out = append(out, toProjectResponse(&projects[i]))
	}
	return out, nil
}

func (s *projectService) CreateProject(ctx context.Context, actor *domain.Actor, req CreateProjectRequest) (*ProjectResponse, error) {
	if err := RequireActor(actor); err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	if req.Status == "" {
		req.Status = domain.ProjectStatusActive
	}
	p := &domain.Project{
		Name:        req.Name,
		Description: optionalText(req.Description),
		JobAddress:  optionalText(req.JobAddress),
		ClientName:  optionalText(req.ClientName),
		Status:      req.Status,
		UserID:      actor.ID,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, domain.Remote("create project", err)
	}
	resp := toProjectResponse(p)
	return &resp, nil
}

func toProjectResponse(p *domain.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		JobAddress:  p.JobAddress,
		ClientName:  p.ClientName,
		Status:      p.Status,
		CreatedAt:   formatTime(p.CreatedAt),
	}
}
