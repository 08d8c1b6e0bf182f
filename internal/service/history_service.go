package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/buildsafe/safety-backend/internal/domain"
	"github.com/buildsafe/safety-backend/internal/repository"
)

type EditCompletionItemRequest struct {
	ID        uuid.UUID `json:"id" validate:"required"`
	IsChecked bool      `json:"is_checked"`
	Notes     *string   `json:"notes"`
}

// EditCompletionRequest carries the new values of every editable field.
type EditCompletionRequest struct {
	ProjectID          *uuid.UUID                  `json:"project_id"`
	CompletionDatetime time.Time                   `json:"completion_datetime" validate:"required"`
	Notes              *string                     `json:"notes"`
	Items              []EditCompletionItemRequest `json:"items" validate:"dive"`
}

// HistoryService is the History Ledger: reading and administering recorded completions.
type HistoryService interface {
	// ListCompletions returns every completion, newest first.
	ListCompletions(ctx context.Context) ([]CompletionSummaryResponse, error)
	// ListTemplateCompletions returns the completions of one template, newest first.
	ListTemplateCompletions(ctx context.Context, templateID uuid.UUID) ([]CompletionSummaryResponse, error)
	ViewCompletion(ctx context.Context, id uuid.UUID) (*CompletionDetailResponse, error)
	// EditCompletion updates the record and each listed item with independent
	// concurrent writes. A failure can leave some writes applied.
	EditCompletion(ctx context.Context, actor *domain.Actor, id uuid.UUID, req EditCompletionRequest) (*CompletionDetailResponse, error)
	DeleteCompletion(ctx context.Context, actor *domain.Actor, id uuid.UUID, confirmed bool) error
}

type historyService struct {
	completions repository.CompletionRepository
	projects    repository.ProjectRepository
	enrich      enricher
}

func NewHistoryService(
	templates repository.TemplateRepository,
	completions repository.CompletionRepository,
	projects repository.ProjectRepository,
	users repository.UserRepository,
) HistoryService {
	return &historyService{
		completions: completions,
		projects:    projects,
		enrich:      enricher{templates: templates, projects: projects, users: users},
	}
}

func (s *historyService) ListCompletions(ctx context.Context) ([]CompletionSummaryResponse, error) {
	return s.list(ctx, nil)
}

func (s *historyService) ListTemplateCompletions(ctx context.Context, templateID uuid.UUID) ([]CompletionSummaryResponse, error) {
	return s.list(ctx, &templateID)
}

func (s *historyService) list(ctx context.Context, templateID *uuid.UUID) ([]CompletionSummaryResponse, error) {
	completions, err := s.completions.List(ctx, templateID)
	if err != nil {
		log.Printf("Error listing completions: %v", err)
		return nil, domain.Remote("list completions", err)
	}

	l := s.enrich.resolve(ctx, completions)
	out := make([]CompletionSummaryResponse, 0, len(completions))
	for i := range completions {
		out = append(out, l.summary(&completions[i]))
	}
	return out, nil
}

func (s *historyService) ViewCompletion(ctx context.Context, id uuid.UUID) (*CompletionDetailResponse, error) {
	c, err := s.completions.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Remote("get completion", err)
	}
	return s.enrich.resolve(ctx, []domain.ChecklistCompletion{*c}).detail(c), nil
}

func (s *historyService) EditCompletion(ctx context.Context, actor *domain.Actor, id uuid.UUID, req EditCompletionRequest) (*CompletionDetailResponse, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	current, err := s.completions.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Remote("get completion", err)
	}
	owned := make(map[uuid.UUID]domain.CompletionItem, len(current.Items))
	for _, it := range current.Items {
		owned[it.ID] = it
	}
	seen := make(map[uuid.UUID]struct{}, len(req.Items))
	for i, it := range req.Items {
		stored, ok := owned[it.ID]
		if !ok {
			return nil, domain.NewValidationError(itemLabel(i)+".id", "item does not belong to this completion")
		}
		if _, dup := seen[it.ID]; dup {
			return nil, domain.NewValidationError(itemLabel(i)+".id", "item edited more than once")
		}
		seen[it.ID] = struct{}{}
		if it.IsChecked && stored.IsSectionHeader {
			return nil, domain.NewValidationError(itemLabel(i)+".is_checked", "section headers cannot be checked")
		}
	}
	if req.ProjectID != nil {
		if _, err := s.projects.FindByID(ctx, *req.ProjectID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.NewValidationError("project_id", "project does not exist")
			}
			return nil, domain.Remote("load project", err)
		}
	}

	patch := domain.CompletionPatch{
		ProjectID:          req.ProjectID,
		CompletionDatetime: req.CompletionDatetime.UTC(),
		Notes:              optionalText(req.Notes),
	}

	var g errgroup.Group
	g.Go(func() error {
		return s.completions.UpdateFields(ctx, id, patch)
	})
	for _, it := range req.Items {
		upd := domain.CompletionItemUpdate{ID: it.ID, IsChecked: it.IsChecked, Notes: optionalText(it.Notes)}
		g.Go(func() error {
			return s.completions.UpdateItem(ctx, id, upd)
		})
	}
	if err := g.Wait(); err != nil {
		log.Printf("Error editing completion %s: %v", id, err)
		return nil, domain.Remote("edit completion", err)
	}

	log.Printf("Completion %s edited by %s", id, actor.ID)
	return s.ViewCompletion(ctx, id)
}

func (s *historyService) DeleteCompletion(ctx context.Context, actor *domain.Actor, id uuid.UUID, confirmed bool) error {
	if err := RequireAdmin(actor); err != nil {
		return err
	}
	if !confirmed {
		return domain.ErrConfirmationRequired
	}
	if err := s.completions.Delete(ctx, id); err != nil {
		return domain.Remote("delete completion", err)
	}
	log.Printf("Completion %s deleted by %s", id, actor.ID)
	return nil
}
