package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/buildsafe/safety-backend/internal/domain"
)

// CompletionRepository defines the data operations for completion records.
type CompletionRepository interface {
	Create(ctx context.Context, c *domain.ChecklistCompletion) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.ChecklistCompletion, error)
	// List returns completions newest first; a non-nil checklistID narrows to one template.
	List(ctx context.Context, checklistID *uuid.UUID) ([]domain.ChecklistCompletion, error)
	UpdateFields(ctx context.Context, id uuid.UUID, patch domain.CompletionPatch) error
	UpdateItem(ctx context.Context, completionID uuid.UUID, upd domain.CompletionItemUpdate) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type gormCompletionRepository struct {
	db *gorm.DB
}

func NewGormCompletionRepository(db *gorm.DB) CompletionRepository {
	return &gormCompletionRepository{db: db}
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("display_order ASC")
}

// Create inserts the completion row and then its item rows. Both happen in one
// transaction, so a failed item insert leaves no itemless completion behind.
func (r *gormCompletionRepository) Create(ctx context.Context, c *domain.ChecklistCompletion) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := c.Items
		if err := tx.Omit("Items").Create(c).Error; err != nil {
			return wrap("insert completion", err)
		}
		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].CompletionID = c.ID
		}
		return wrap("insert completion items", tx.Create(&items).Error)
	})
}

func (r *gormCompletionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ChecklistCompletion, error) {
	var c domain.ChecklistCompletion
	err := r.db.WithContext(ctx).Preload("Items", orderedItems).First(&c, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, "completion", id)
	}
	return &c, nil
}

func (r *gormCompletionRepository) List(ctx context.Context, checklistID *uuid.UUID) ([]domain.ChecklistCompletion, error) {
	q := r.db.WithContext(ctx).Preload("Items", orderedItems).Order("completion_datetime DESC")
	if checklistID != nil {
		q = q.Where("checklist_id = ?", *checklistID)
	}
	var out []domain.ChecklistCompletion
	if err := q.Find(&out).Error; err != nil {
		return nil, wrap("list completions", err)
	}
	return out, nil
}

func (r *gormCompletionRepository) UpdateFields(ctx context.Context, id uuid.UUID, patch domain.CompletionPatch) error {
	res := r.db.WithContext(ctx).Model(&domain.ChecklistCompletion{}).Where("id = ?", id).Updates(map[string]any{
		"project_id":          patch.ProjectID,
		"completion_datetime": patch.CompletionDatetime,
		"notes":               patch.Notes,
	})
	return requireAffected(res, "completion", id)
}

// UpdateItem writes one item's state. It is an independent statement; callers
// issuing several of them get no all-or-nothing guarantee.
func (r *gormCompletionRepository) UpdateItem(ctx context.Context, completionID uuid.UUID, upd domain.CompletionItemUpdate) error {
	res := r.db.WithContext(ctx).Model(&domain.CompletionItem{}).
		Where("id = ? AND completion_id = ?", upd.ID, completionID).
		Updates(map[string]any{
			"is_checked": upd.IsChecked,
			"notes":      upd.Notes,
		})
	return requireAffected(res, "completion item", upd.ID)
}

// Delete removes the completion; its items cascade.
func (r *gormCompletionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&domain.ChecklistCompletion{}, "id = ?", id)
	return requireAffected(res, "completion", id)
}
