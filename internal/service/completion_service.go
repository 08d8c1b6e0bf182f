package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/buildsafe/safety-backend/internal/checklist"
	"github.com/buildsafe/safety-backend/internal/domain"
	"github.com/buildsafe/safety-backend/internal/repository"
)

type SubmitItemRequest struct {
	ChecklistItemID uuid.UUID `json:"checklist_item_id" validate:"required"`
	IsChecked       bool      `json:"is_checked"`
	Notes           *string   `json:"notes"`
}

// SubmitCompletionRequest is the client's working snapshot. Entries are keyed
// by template item; template items without an entry are recorded unchecked.
type SubmitCompletionRequest struct {
	ChecklistID uuid.UUID           `json:"checklist_id" validate:"required"`
	ProjectID   *uuid.UUID          `json:"project_id"`
	Notes       *string             `json:"notes"`
	Items       []SubmitItemRequest `json:"items" validate:"dive"`
}

// CompletionObserver is told about every recorded completion.
type CompletionObserver interface {
	CompletionRecorded(checklistID uuid.UUID)
}

// CompletionService is the Completion Recorder.
type CompletionService interface {
	// StartCompletion returns a fresh working snapshot of the template.
	StartCompletion(ctx context.Context, templateID uuid.UUID) (*checklist.Snapshot, error)
	// Submit records a completion and its items as one unit.
	Submit(ctx context.Context, actor *domain.Actor, req SubmitCompletionRequest) (*CompletionDetailResponse, error)
}

type completionService struct {
	templates   repository.TemplateRepository
	completions repository.CompletionRepository
	projects    repository.ProjectRepository
	enrich      enricher
	observer    CompletionObserver
	now         func() time.Time
}

func NewCompletionService(
	templates repository.TemplateRepository,
	completions repository.CompletionRepository,
	projects repository.ProjectRepository,
	users repository.UserRepository,
	observer CompletionObserver,
) CompletionService {
	return &completionService{
		templates:   templates,
		completions: completions,
		projects:    projects,
		enrich:      enricher{templates: templates, projects: projects, users: users},
		observer:    observer,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *completionService) StartCompletion(ctx context.Context, templateID uuid.UUID) (*checklist.Snapshot, error) {
	t, err := s.templates.FindByID(ctx, templateID)
	if err != nil {
		return nil, domain.Remote("start completion", err)
	}
	return checklist.NewSnapshot(t), nil
}

func (s *completionService) Submit(ctx context.Context, actor *domain.Actor, req SubmitCompletionRequest) (*CompletionDetailResponse, error) {
	if err := RequireActor(actor); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	t, err := s.templates.FindByID(ctx, req.ChecklistID)
	if err != nil {
		return nil, domain.Remote("load checklist", err)
	}

	if req.ProjectID != nil {
		if _, err := s.projects.FindByID(ctx, *req.ProjectID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.NewValidationError("project_id", "project does not exist")
			}
			return nil, domain.Remote("load project", err)
		}
	}

	snap, err := applySubmitted(checklist.NewSnapshot(t), req.Items)
	if err != nil {
		return nil, err
	}

	c := &domain.ChecklistCompletion{
		ChecklistID:        t.ID,
		ProjectID:          req.ProjectID,
		CompletedBy:        actor.ID,
		CompletionDatetime: s.now(),
		Notes:              optionalText(req.Notes),
		Items:              make([]domain.CompletionItem, 0, len(snap.Entries)),
	}
	for _, e := range snap.Entries {
		itemID := e.ChecklistItemID
		c.Items = append(c.Items, domain.CompletionItem{
			ChecklistItemID: &itemID,
			Title:           e.Title,
			DisplayOrder:    e.DisplayOrder,
			IsSectionHeader: e.IsSectionHeader,
			IsChecked:       e.IsChecked,
			Notes:           optionalString(e.Notes),
		})
	}

	if err := s.completions.Create(ctx, c); err != nil {
		log.Printf("Error recording completion of checklist %s: %v", t.ID, err)
		return nil, domain.Remote("record completion", err)
	}
	if s.observer != nil {
		s.observer.CompletionRecorded(t.ID)
	}
	log.Printf("Completion %s recorded for checklist %s by %s", c.ID, t.ID, actor.ID)

	return s.enrich.resolve(ctx, []domain.ChecklistCompletion{*c}).detail(c), nil
}

// applySubmitted copies the client's per-item state onto a server-built snapshot.
func applySubmitted(snap *checklist.Snapshot, items []SubmitItemRequest) (*checklist.Snapshot, error) {
	index := make(map[uuid.UUID]int, len(snap.Entries))
	for i, e := range snap.Entries {
		index[e.ChecklistItemID] = i
	}

	seen := make(map[uuid.UUID]struct{}, len(items))
	for i, it := range items {
		pos, ok := index[it.ChecklistItemID]
		if !ok {
			return nil, domain.NewValidationError(itemLabel(i)+".checklist_item_id",
				fmt.Sprintf("item %s is not part of this checklist", it.ChecklistItemID))
		}
		if _, dup := seen[it.ChecklistItemID]; dup {
			return nil, domain.NewValidationError(itemLabel(i)+".checklist_item_id",
				fmt.Sprintf("item %s submitted more than once", it.ChecklistItemID))
		}
		seen[it.ChecklistItemID] = struct{}{}

		if it.IsChecked {
			if err := snap.Toggle(pos); err != nil {
				return nil, domain.NewValidationError(itemLabel(i)+".is_checked", "section headers cannot be checked")
			}
		}
		if it.Notes != nil {
			if err := snap.SetNote(pos, *it.Notes); err != nil {
				return nil, err
			}
		}
	}
	return snap, nil
}
