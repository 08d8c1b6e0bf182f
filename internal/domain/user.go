package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email               string    `gorm:"not null;uniqueIndex"`
	Name                *string
	IsAdmin             bool   `gorm:"not null;default:false"`
	PasswordHash        string `gorm:"not null"`
	DefaultSignatureURL *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// DisplayName prefers the user's name and falls back to the email address.
func (u *User) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return u.Email
}

// Actor is the authenticated user performing an operation. It is resolved once
// per request and passed explicitly to every mutating call.
type Actor struct {
	ID      uuid.UUID
	Email   string
	Name    string
	IsAdmin bool
}

// ActorFromUser builds the request-scoped actor for a stored user.
func ActorFromUser(u *User) *Actor {
	a := &Actor{ID: u.ID, Email: u.Email, IsAdmin: u.IsAdmin}
	if u.Name != nil {
		a.Name = *u.Name
	}
	return a
}
