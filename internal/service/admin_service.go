package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/buildsafe/safety-backend/internal/auth"
	"github.com/buildsafe/safety-backend/internal/domain"
	"github.com/buildsafe/safety-backend/internal/repository"
)

type CreateUserRequest struct {
	Email               string  `json:"email" validate:"required,email"`
	Password            string  `json:"password" validate:"required,min=6"`
	Name                string  `json:"name" validate:"required"`
	IsAdmin             bool    `json:"is_admin"`
	DefaultSignatureURL *string `json:"default_signature_url" validate:"omitempty,url"`
}

type UpdateUserRequest struct {
	Name    string `json:"name" validate:"required"`
	IsAdmin bool   `json:"is_admin"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// AdminResult is the payload every admin mutation returns on success.
type AdminResult struct {
	Success bool       `json:"success"`
	UserID  *uuid.UUID `json:"userId,omitempty"`
}

type UserResponse struct {
	ID                  uuid.UUID `json:"id"`
	Email               string    `json:"email"`
	Name                *string   `json:"name"`
	IsAdmin             bool      `json:"is_admin"`
	DefaultSignatureURL *string   `json:"default_signature_url"`
	CreatedAt           string    `json:"created_at"`
}

// AdminService holds the privileged user-management operations. Every call
// re-reads the caller's admin flag from the store rather than trusting the
// request-scoped actor.
type AdminService interface {
	ListUsers(ctx context.Context, actor *domain.Actor) ([]UserResponse, error)
	CreateUser(ctx context.Context, actor *domain.Actor, req CreateUserRequest) (*AdminResult, error)
	UpdateUser(ctx context.Context, actor *domain.Actor, id uuid.UUID, req UpdateUserRequest) (*AdminResult, error)
	DeleteUser(ctx context.Context, actor *domain.Actor, id uuid.UUID, confirmed bool) (*AdminResult, error)
	ResetPassword(ctx context.Context, actor *domain.Actor, id uuid.UUID, req ResetPasswordRequest) (*AdminResult, error)
	// CreateInitialAdmin bootstraps an administrator without a caller. Operator use only.
	CreateInitialAdmin(ctx context.Context, req CreateUserRequest) (*AdminResult, error)
}

type adminService struct {
	users repository.UserRepository
	gate  AccessGate
}

func NewAdminService(users repository.UserRepository, gate AccessGate) AdminService {
	return &adminService{users: users, gate: gate}
}

func (s *adminService) requireAdmin(ctx context.Context, actor *domain.Actor) error {
	if err := RequireActor(actor); err != nil {
		return err
	}
	ok, err := s.gate.IsAdmin(ctx, actor.ID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrForbidden
	}
	return nil
}

func (s *adminService) ListUsers(ctx context.Context, actor *domain.Actor) ([]UserResponse, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, domain.Remote("list users", err)
	}
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, UserResponse{
			ID:                  u.ID,
			Email:               u.Email,
			Name:                u.Name,
			IsAdmin:             u.IsAdmin,
			DefaultSignatureURL: u.DefaultSignatureURL,
			CreatedAt:           formatTime(u.CreatedAt),
		})
	}
	return out, nil
}

func (s *adminService) CreateUser(ctx context.Context, actor *domain.Actor, req CreateUserRequest) (*AdminResult, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	return s.create(ctx, req)
}

func (s *adminService) CreateInitialAdmin(ctx context.Context, req CreateUserRequest) (*AdminResult, error) {
	req.IsAdmin = true
	return s.create(ctx, req)
}

func (s *adminService) create(ctx context.Context, req CreateUserRequest) (*AdminResult, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) {
			return nil, domain.NewValidationError("password", err.Error())
		}
		return nil, domain.Remote("hash password", err)
	}

	u := &domain.User{
		Email:               req.Email,
		Name:                optionalString(req.Name),
		IsAdmin:             req.IsAdmin,
		PasswordHash:        hash,
		DefaultSignatureURL: optionalText(req.DefaultSignatureURL),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, domain.NewValidationError("", "User with this email already exists in database")
		}
		return nil, domain.Remote("create user", err)
	}
	log.Printf("User %s created (admin=%t)", u.ID, u.IsAdmin)
	return &AdminResult{Success: true, UserID: &u.ID}, nil
}

func (s *adminService) UpdateUser(ctx context.Context, actor *domain.Actor, id uuid.UUID, req UpdateUserRequest) (*AdminResult, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if id == actor.ID && !req.IsAdmin {
		return nil, domain.NewValidationError("is_admin", "you cannot remove your own admin access")
	}
	if err := s.users.UpdateProfile(ctx, id, optionalString(req.Name), req.IsAdmin); err != nil {
		return nil, domain.Remote("update user", err)
	}
	return &AdminResult{Success: true, UserID: &id}, nil
}

func (s *adminService) DeleteUser(ctx context.Context, actor *domain.Actor, id uuid.UUID, confirmed bool) (*AdminResult, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	if id == actor.ID {
		return nil, domain.NewValidationError("", "You cannot delete your own account")
	}
	if !confirmed {
		return nil, domain.ErrConfirmationRequired
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return nil, domain.Remote("delete user", err)
	}
	log.Printf("User %s deleted by %s", id, actor.ID)
	return &AdminResult{Success: true}, nil
}

func (s *adminService) ResetPassword(ctx context.Context, actor *domain.Actor, id uuid.UUID, req ResetPasswordRequest) (*AdminResult, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return nil, domain.Remote("hash password", err)
	}
	if err := s.users.UpdatePassword(ctx, id, hash); err != nil {
		return nil, domain.Remote("reset password", err)
	}
	log.Printf("Password reset for user %s by %s", id, actor.ID)
	return &AdminResult{Success: true}, nil
}
