package auth

import (
	"context"

	"github.com/buildsafe/safety-backend/internal/domain"
)

type actorKey struct{}

// WithActor returns a copy of ctx carrying the resolved actor.
func WithActor(ctx context.Context, actor *domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the actor stored by WithActor, or nil.
func ActorFrom(ctx context.Context) *domain.Actor {
	a, _ := ctx.Value(actorKey{}).(*domain.Actor)
	return a
}
