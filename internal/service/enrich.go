package service

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/buildsafe/safety-backend/internal/checklist"
	"github.com/buildsafe/safety-backend/internal/domain"
	"github.com/buildsafe/safety-backend/internal/repository"
)

const (
	UnknownChecklist = "Unknown Checklist"
	UnknownUser      = "Unknown User"
)

type CompletionItemResponse struct {
	ID              uuid.UUID  `json:"id"`
	ChecklistItemID *uuid.UUID `json:"checklist_item_id"`
	Title           string     `json:"title"`
	DisplayOrder    int        `json:"display_order"`
	IsSectionHeader bool       `json:"is_section_header"`
	IsChecked       bool       `json:"is_checked"`
	Notes           *string    `json:"notes"`
}

type CompletionSummaryResponse struct {
	ID                 uuid.UUID  `json:"id"`
	ChecklistID        uuid.UUID  `json:"checklist_id"`
	ChecklistName      string     `json:"checklist_name"`
	ProjectID          *uuid.UUID `json:"project_id"`
	ProjectName        *string    `json:"project_name"`
	CompletedBy        uuid.UUID  `json:"completed_by"`
	CompletedByName    string     `json:"completed_by_name"`
	CompletedByEmail   string     `json:"completed_by_email"`
	CompletionDatetime string     `json:"completion_datetime"`
	Notes              *string    `json:"notes"`
	Progress           int        `json:"progress"`
}

type CompletionDetailResponse struct {
	CompletionSummaryResponse
	Items []CompletionItemResponse `json:"items"`
}

// labels holds the names resolved for a batch of completions.
type labels struct {
	checklists map[uuid.UUID]string
	projects   map[uuid.UUID]string
	users      map[uuid.UUID]domain.User
}

// enricher resolves display names through separate lookups. A failed lookup
// is logged and leaves the names unresolved instead of failing the read.
type enricher struct {
	templates repository.TemplateRepository
	projects  repository.ProjectRepository
	users     repository.UserRepository
}

func (e enricher) resolve(ctx context.Context, completions []domain.ChecklistCompletion) labels {
	var checklistIDs, projectIDs, userIDs []uuid.UUID
	for _, c := range completions {
		checklistIDs = append(checklistIDs, c.ChecklistID)
		userIDs = append(userIDs, c.CompletedBy)
		if c.ProjectID != nil {
			projectIDs = append(projectIDs, *c.ProjectID)
		}
	}

	l := labels{
		checklists: map[uuid.UUID]string{},
		projects:   map[uuid.UUID]string{},
		users:      map[uuid.UUID]domain.User{},
	}
	if names, err := e.templates.NamesByIDs(ctx, checklistIDs); err != nil {
		log.Printf("Error resolving checklist names: %v", err)
	} else {
		l.checklists = names
	}
	if names, err := e.projects.NamesByIDs(ctx, projectIDs); err != nil {
		log.Printf("Error resolving project names: %v", err)
	} else {
		l.projects = names
	}
	if users, err := e.users.FindByIDs(ctx, userIDs); err != nil {
		log.Printf("Error resolving users: %v", err)
	} else {
		l.users = users
	}
	return l
}

func (l labels) summary(c *domain.ChecklistCompletion) CompletionSummaryResponse {
	resp := CompletionSummaryResponse{
		ID:                 c.ID,
		ChecklistID:        c.ChecklistID,
		ChecklistName:      UnknownChecklist,
		ProjectID:          c.ProjectID,
		CompletedBy:        c.CompletedBy,
		CompletedByName:    UnknownUser,
		CompletionDatetime: formatTime(c.CompletionDatetime),
		Notes:              c.Notes,
		Progress:           checklist.CompletionProgress(c.Items),
	}
	if name, ok := l.checklists[c.ChecklistID]; ok {
		resp.ChecklistName = name
	}
	if c.ProjectID != nil {
		if name, ok := l.projects[*c.ProjectID]; ok {
			resp.ProjectName = &name
		}
	}
	if u, ok := l.users[c.CompletedBy]; ok {
		resp.CompletedByName = u.DisplayName()
		resp.CompletedByEmail = u.Email
	}
	return resp
}

func (l labels) detail(c *domain.ChecklistCompletion) *CompletionDetailResponse {
	resp := &CompletionDetailResponse{
		CompletionSummaryResponse: l.summary(c),
		Items:                     make([]CompletionItemResponse, 0, len(c.Items)),
	}
	items := make([]domain.CompletionItem, len(c.Items))
	copy(items, c.Items)
	checklist.SortCompletionItems(items)
	for _, it := range items {
		resp.Items = append(resp.Items, CompletionItemResponse{
			ID:              it.ID,
			ChecklistItemID: it.ChecklistItemID,
			Title:           it.Title,
			DisplayOrder:    it.DisplayOrder,
			IsSectionHeader: it.IsSectionHeader,
			IsChecked:       it.IsChecked,
			Notes:           it.Notes,
		})
	}
	return resp
}
