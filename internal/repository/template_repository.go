package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/buildsafe/safety-backend/internal/domain"
)

// TemplateRepository defines the data operations for checklist templates.
type TemplateRepository interface {
	Create(ctx context.Context, t *domain.ChecklistTemplate) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.ChecklistTemplate, error)
	ListSummaries(ctx context.Context) ([]domain.TemplateSummary, error)
	Replace(ctx context.Context, t *domain.ChecklistTemplate) error
	Delete(ctx context.Context, id uuid.UUID) error
	Categories(ctx context.Context) ([]string, error)
	NamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

type gormTemplateRepository struct {
	db *gorm.DB
}

func NewGormTemplateRepository(db *gorm.DB) TemplateRepository {
	return &gormTemplateRepository{db: db}
}

// Create inserts the template and its items in one transaction.
func (r *gormTemplateRepository) Create(ctx context.Context, t *domain.ChecklistTemplate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := t.Items
		if err := tx.Omit("Items").Create(t).Error; err != nil {
			return wrap("insert checklist", err)
		}
		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].ChecklistID = t.ID
		}
		return wrap("insert checklist items", tx.Create(&items).Error)
	})
}

// FindByID loads a template with its items sorted by display order.
func (r *gormTemplateRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ChecklistTemplate, error) {
	var t domain.ChecklistTemplate
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("display_order ASC") }).
		First(&t, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, "checklist", id)
	}
	return &t, nil
}

type itemCountRow struct {
	ChecklistID uuid.UUID
	Count       int
}

type completionStatRow struct {
	ChecklistID     uuid.UUID
	Count           int
	LastCompletedAt *time.Time
}

// ListSummaries returns every template, newest first, with item and completion aggregates.
func (r *gormTemplateRepository) ListSummaries(ctx context.Context) ([]domain.TemplateSummary, error) {
	db := r.db.WithContext(ctx)

	var templates []domain.ChecklistTemplate
	if err := db.Order("created_at DESC").Find(&templates).Error; err != nil {
		return nil, wrap("list checklists", err)
	}

	var itemCounts []itemCountRow
	err := db.Model(&domain.ChecklistItem{}).
		Select("checklist_id, count(*) AS count").
		Group("checklist_id").
		Scan(&itemCounts).Error
	if err != nil {
		return nil, wrap("count checklist items", err)
	}

	var completionStats []completionStatRow
	err = db.Model(&domain.ChecklistCompletion{}).
		Select("checklist_id, count(*) AS count, max(completion_datetime) AS last_completed_at").
		Group("checklist_id").
		Scan(&completionStats).Error
	if err != nil {
		return nil, wrap("count checklist completions", err)
	}

	items := make(map[uuid.UUID]int, len(itemCounts))
	for _, row := range itemCounts {
		items[row.ChecklistID] = row.Count
	}
	stats := make(map[uuid.UUID]completionStatRow, len(completionStats))
	for _, row := range completionStats {
		stats[row.ChecklistID] = row
	}

	out := make([]domain.TemplateSummary, 0, len(templates))
	for _, t := range templates {
		st := stats[t.ID]
		out = append(out, domain.TemplateSummary{
			ChecklistTemplate: t,
			ItemCount:         items[t.ID],
			CompletionCount:   st.Count,
			LastCompletedAt:   st.LastCompletedAt,
		})
	}
	return out, nil
}

// Replace overwrites the template fields and swaps the whole item set in a
// single transaction, so readers never observe a template without items.
func (r *gormTemplateRepository) Replace(ctx context.Context, t *domain.ChecklistTemplate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.ChecklistTemplate{}).Where("id = ?", t.ID).Updates(map[string]any{
			"name":        t.Name,
			"description": t.Description,
			"category":    t.Category,
			"trades":      t.Trades,
			"updated_at":  time.Now().UTC(),
		})
		if err := requireAffected(res, "checklist", t.ID); err != nil {
			return err
		}

		if err := tx.Where("checklist_id = ?", t.ID).Delete(&domain.ChecklistItem{}).Error; err != nil {
			return wrap("delete checklist items", err)
		}
		if len(t.Items) == 0 {
			return nil
		}
		for i := range t.Items {
			t.Items[i].ID = uuid.Nil
			t.Items[i].ChecklistID = t.ID
		}
		return wrap("insert checklist items", tx.Create(&t.Items).Error)
	})
}

// Delete removes the template; its items go with it through the foreign key.
// Completions are left untouched.
func (r *gormTemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&domain.ChecklistTemplate{}, "id = ?", id)
	return requireAffected(res, "checklist", id)
}

// Categories returns the distinct non-empty categories, sorted.
func (r *gormTemplateRepository) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).Model(&domain.ChecklistTemplate{}).
		Where("category IS NOT NULL AND category <> ''").
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, wrap("list categories", err)
	}
	return categories, nil
}

func (r *gormTemplateRepository) NamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string)
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}
	var rows []domain.ChecklistTemplate
	if err := r.db.WithContext(ctx).Select("id", "name").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, wrap("lookup checklist names", err)
	}
	for _, row := range rows {
		out[row.ID] = row.Name
	}
	return out, nil
}
