package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ProjectStatusActive    = "active"
	ProjectStatusCompleted = "completed"
	ProjectStatusArchived  = "archived"
)

// Project is a construction job that completions can be filed against.
type Project struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"not null"`
	Description *string   `gorm:"type:text"`
	JobAddress  *string
	ClientName  *string
	Status      string    `gorm:"not null;default:'active'"`
	UserID      uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt   time.Time
}

func (Project) TableName() string {
	return "projects"
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = ProjectStatusActive
	}
	return nil
}
