package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/buildsafe/safety-backend/internal/domain"
	"github.com/buildsafe/safety-backend/internal/repository"
)

// AccessGate resolves actors and answers role questions. Resolution happens
// once per request; mutating operations then check the resolved actor.
// The backing store is expected to enforce the same rules at the data layer.
type AccessGate interface {
	// ResolveActor loads the user behind an authenticated id.
	ResolveActor(ctx context.Context, actorID uuid.UUID) (*domain.Actor, error)
	// IsAdmin re-reads the admin flag from the store.
	IsAdmin(ctx context.Context, actorID uuid.UUID) (bool, error)
}

type accessGate struct {
	users repository.UserRepository
}

func NewAccessGate(users repository.UserRepository) AccessGate {
	return &accessGate{users: users}
}

func (g *accessGate) ResolveActor(ctx context.Context, actorID uuid.UUID) (*domain.Actor, error) {
	u, err := g.users.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, domain.Remote("resolve actor", err)
	}
	return domain.ActorFromUser(u), nil
}

func (g *accessGate) IsAdmin(ctx context.Context, actorID uuid.UUID) (bool, error) {
	a, err := g.ResolveActor(ctx, actorID)
	if err != nil {
		return false, err
	}
	return a.IsAdmin, nil
}

// RequireActor fails with ErrUnauthorized when no actor was resolved.
func RequireActor(actor *domain.Actor) error {
	if actor == nil {
		return domain.ErrUnauthorized
	}
	return nil
}

// RequireAdmin fails with ErrForbidden unless actor is an admin.
func RequireAdmin(actor *domain.Actor) error {
	if err := RequireActor(actor); err != nil {
		return err
	}
	if !actor.IsAdmin {
		return domain.ErrForbidden
	}
	return nil
}
