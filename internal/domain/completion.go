package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChecklistCompletion is one point-in-time record of walking through a template.
// ChecklistID deliberately carries no foreign key: deleting a template leaves
// its completions in place with an unresolvable reference.
type ChecklistCompletion struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ChecklistID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProjectID          *uuid.UUID `gorm:"type:uuid;index"`
	CompletedBy        uuid.UUID  `gorm:"type:uuid;not null"`
	CompletionDatetime time.Time  `gorm:"not null;index"`
	Notes              *string    `gorm:"type:text"`
	CreatedAt          time.Time

	Items []CompletionItem `gorm:"foreignKey:CompletionID;constraint:OnDelete:CASCADE"`
}

func (ChecklistCompletion) TableName() string {
	return "checklist_completions"
}

func (c *ChecklistCompletion) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CompletionItem is the recorded state of one template item. Title, order and
// header flag are copied at submission so later template edits never change
// how a historical completion reads.
type CompletionItem struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CompletionID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	ChecklistItemID *uuid.UUID `gorm:"type:uuid"`
	Title           string     `gorm:"not null"`
	DisplayOrder    int        `gorm:"not null"`
	IsSectionHeader bool       `gorm:"not null;default:false"`
	IsChecked       bool       `gorm:"not null;default:false"`
	Notes           *string    `gorm:"type:text"`
}

func (CompletionItem) TableName() string {
	return "checklist_completion_items"
}

func (i *CompletionItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// CompletionItemUpdate is the per-item part of an admin edit.
type CompletionItemUpdate struct {
	ID        uuid.UUID
	IsChecked bool
	Notes     *string
}

// CompletionPatch carries the parent-record fields an admin edit may change.
type CompletionPatch struct {
	ProjectID          *uuid.UUID
	CompletionDatetime time.Time
	Notes              *string
}
