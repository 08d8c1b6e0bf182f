package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ChecklistTemplate is a named, ordered checklist definition reused across many completions.
type ChecklistTemplate struct {
	ID          uuid.UUID                   `gorm:"type:uuid;primaryKey"`
	Name        string                      `gorm:"not null"`
	Description *string                     `gorm:"type:text"`
	Category    *string                     `gorm:"index"`
	Trades      datatypes.JSONSlice[string] `gorm:"type:jsonb;not null"`
	CreatedBy   uuid.UUID                   `gorm:"type:uuid;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Items []ChecklistItem `gorm:"foreignKey:ChecklistID;constraint:OnDelete:CASCADE"`
}

func (ChecklistTemplate) TableName() string {
	return "checklists"
}

// BeforeCreate assigns an ID when the caller did not.
func (t *ChecklistTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Trades == nil {
		t.Trades = datatypes.JSONSlice[string]{}
	}
	return nil
}

// ChecklistItem is one line of a template. Section headers group the lines
// below them and are neither checkable nor draggable.
type ChecklistItem struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	ChecklistID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Title           string    `gorm:"not null"`
	DisplayOrder    int       `gorm:"not null"`
	IsSectionHeader bool      `gorm:"not null;default:false"`
}

func (ChecklistItem) TableName() string {
	return "checklist_items"
}

func (i *ChecklistItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TemplateSummary is a template row plus the aggregates shown in list views.
type TemplateSummary struct {
	ChecklistTemplate
	ItemCount       int
	CompletionCount int
	LastCompletedAt *time.Time
}
