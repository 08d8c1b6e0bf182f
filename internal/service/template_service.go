package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/buildsafe/safety-backend/internal/checklist"
	"github.com/buildsafe/safety-backend/internal/domain"
	"github.com/buildsafe/safety-backend/internal/repository"
)

// TemplateItemRequest is one item of a create/update request. Its position in
// the request defines its display order.
type TemplateItemRequest struct {
	Title           string `json:"title" validate:"required"`
	IsSectionHeader bool   `json:"is_section_header"`
}

// TemplateRequest holds every field of a template; updates replace them all.
type TemplateRequest struct {
	Name        string                `json:"name" validate:"required"`
	Description *string               `json:"description"`
	Category    *string               `json:"category"`
	Trades      []string              `json:"trades"`
	Items       []TemplateItemRequest `json:"items" validate:"dive"`
}

type TemplateItemResponse struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	DisplayOrder    int       `json:"display_order"`
	IsSectionHeader bool      `json:"is_section_header"`
}

type TemplateResponse struct {
	ID          uuid.UUID              `json:"id"`
	Name        string                 `json:"name"`
	Description *string                `json:"description"`
	Category    *string                `json:"category"`
	Trades      []string               `json:"trades"`
	CreatedBy   uuid.UUID              `json:"created_by"`
	CreatedAt   string                 `json:"created_at"`
	UpdatedAt   string                 `json:"updated_at"`
	Items       []TemplateItemResponse `json:"items"`
}

type TemplateSummaryResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Description     *string   `json:"description"`
	Category        *string   `json:"category"`
	Trades          []string  `json:"trades"`
	ItemCount       int       `json:"item_count"`
	CompletionCount int       `json:"completion_count"`
	LastCompletedAt *string   `json:"last_completed_at"`
	CreatedAt       string    `json:"created_at"`
}

// TemplateService is the Template Store: checklist definitions and their ordered items.
type TemplateService interface {
	// ListTemplates returns template summaries, newest first, narrowed by filter.
	ListTemplates(ctx context.Context, filter checklist.Filter) ([]TemplateSummaryResponse, error)
	// ListCategories returns the distinct template categories.
	ListCategories(ctx context.Context) ([]string, error)
	// GetTemplate returns a template with items sorted by display order.
	GetTemplate(ctx context.Context, id uuid.UUID) (*TemplateResponse, error)
	CreateTemplate(ctx context.Context, actor *domain.Actor, req TemplateRequest) (*TemplateResponse, error)
	// UpdateTemplate replaces every field and the whole item set.
	UpdateTemplate(ctx context.Context, actor *domain.Actor, id uuid.UUID, req TemplateRequest) (*TemplateResponse, error)
	// DeleteTemplate removes a template and its items. Admin only; completions are kept.
	DeleteTemplate(ctx context.Context, actor *domain.Actor, id uuid.UUID, confirmed bool) error
}

type templateService struct {
	repo repository.TemplateRepository
}

func NewTemplateService(repo repository.TemplateRepository) TemplateService {
	return &templateService{repo: repo}
}

func (s *templateService) ListTemplates(ctx context.Context, filter checklist.Filter) ([]TemplateSummaryResponse, error) {
	summaries, err := s.repo.ListSummaries(ctx)
	if err != nil {
		log.Printf("Error listing checklists: %v", err)
		return nil, domain.Remote("list checklists", err)
	}

	matched := filter.Apply(summaries)
	out := make([]TemplateSummaryResponse, 0, len(matched))
	for _, sum := range matched {
		out = append(out, toSummaryResponse(sum))
	}
	return out, nil
}

func (s *templateService) ListCategories(ctx context.Context) ([]string, error) {
	cats, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, domain.Remote("list categories", err)
	}
	if cats == nil {
		cats = []string{}
	}
	return cats, nil
}

func (s *templateService) GetTemplate(ctx context.Context, id uuid.UUID) (*TemplateResponse, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Remote("get checklist", err)
	}
	checklist.SortItems(t.Items)
	return toTemplateResponse(t), nil
}

func (s *templateService) CreateTemplate(ctx context.Context, actor *domain.Actor, req TemplateRequest) (*TemplateResponse, error) {
	if err := RequireActor(actor); err != nil {
		return nil, err
	}
	t, err := buildTemplate(req)
	if err != nil {
		return nil, err
	}
	t.CreatedBy = actor.ID

	if err := s.repo.Create(ctx, t); err != nil {
		log.Printf("Error creating checklist %q: %v", t.Name, err)
		return nil, domain.Remote("create checklist", err)
	}
	return toTemplateResponse(t), nil
}

func (s *templateService) UpdateTemplate(ctx context.Context, actor *domain.Actor, id uuid.UUID, req TemplateRequest) (*TemplateResponse, error) {
	if err := RequireActor(actor); err != nil {
		return nil, err
	}
	t, err := buildTemplate(req)
	if err != nil {
		return nil, err
	}
	t.ID = id

	if err := s.repo.Replace(ctx, t); err != nil {
		return nil, domain.Remote("update checklist", err)
	}
	return s.GetTemplate(ctx, id)
}

func (s *templateService) DeleteTemplate(ctx context.Context, actor *domain.Actor, id uuid.UUID, confirmed bool) error {
	if err := RequireAdmin(actor); err != nil {
		return err
	}
	if !confirmed {
		return domain.ErrConfirmationRequired
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return domain.Remote("delete checklist", err)
	}
	log.Printf("Checklist %s deleted by %s", id, actor.ID)
	return nil
}

// buildTemplate validates and normalizes a request into a template whose
// items are numbered by their position.
func buildTemplate(req TemplateRequest) (*domain.ChecklistTemplate, error) {
	req.Name = strings.TrimSpace(req.Name)
	for i := range req.Items {
		req.Items[i].Title = strings.TrimSpace(req.Items[i].Title)
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	t := &domain.ChecklistTemplate{
		Name:        req.Name,
		Description: optionalText(req.Description),
		Category:    optionalText(req.Category),
		Trades:      normalizeTrades(req.Trades),
		Items:       make([]domain.ChecklistItem, 0, len(req.Items)),
	}
	for i, it := range req.Items {
		t.Items = append(t.Items, domain.ChecklistItem{
			Title:           it.Title,
			DisplayOrder:    i,
			IsSectionHeader: it.IsSectionHeader,
		})
	}
	return t, nil
}

// normalizeTrades trims, drops empties and de-duplicates case-insensitively.
func normalizeTrades(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, tr := range in {
		tr = strings.TrimSpace(tr)
		key := strings.ToLower(tr)
		if tr == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tr)
	}
	return out
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func toTemplateResponse(t *domain.ChecklistTemplate) *TemplateResponse {
	resp := &TemplateResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Category:    t.Category,
		Trades:      append([]string{}, t.Trades...),
		CreatedBy:   t.CreatedBy,
		CreatedAt:   formatTime(t.CreatedAt),
		UpdatedAt:   formatTime(t.UpdatedAt),
		Items:       make([]TemplateItemResponse, 0, len(t.Items)),
	}
	for _, it := range t.Items {
		resp.Items = append(resp.Items, TemplateItemResponse{
			ID:              it.ID,
			Title:           it.Title,
			DisplayOrder:    it.DisplayOrder,
			IsSectionHeader: it.IsSectionHeader,
		})
	}
	return resp
}

func toSummaryResponse(s domain.TemplateSummary) TemplateSummaryResponse {
	resp := TemplateSummaryResponse{
		ID:              s.ID,
		Name:            s.Name,
		Description:     s.Description,
		Category:        s.Category,
		Trades:          append([]string{}, s.Trades...),
		ItemCount:       s.ItemCount,
		CompletionCount: s.CompletionCount,
		CreatedAt:       formatTime(s.CreatedAt),
	}
	if s.LastCompletedAt != nil {
		v := formatTime(*s.LastCompletedAt)
		resp.LastCompletedAt = &v
	}
	return resp
}

// itemLabel is used in error messages that point at one request item.
func itemLabel(i int) string {
	return fmt.Sprintf("items[%d]", i)
}
