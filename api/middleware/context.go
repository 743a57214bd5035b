package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/SeptianAdiraharja/Inventory/pkg/enums"
	pkgerrors "github.com/SeptianAdiraharja/Inventory/pkg/errors"
	"github.com/SeptianAdiraharja/Inventory/pkg/types"
)

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxRole   contextKey = "actor_role"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// ActorFromContext returns the authenticated caller. ok is false when the
// request never passed through Auth or carries malformed values.
func ActorFromContext(ctx context.Context) (types.Actor, bool) {
	id, err := uuid.Parse(UserIDFromContext(ctx))
	if err != nil || id == uuid.Nil {
		return types.Actor{}, false
	}
	role, err := enums.ParseRole(RoleFromContext(ctx))
	if err != nil {
		return types.Actor{}, false
	}
	return types.Actor{ID: id, Role: role}, true
}

// RequireActor is ActorFromContext for handlers: a missing identity becomes
// UNAUTHORIZED.
func RequireActor(ctx context.Context) (types.Actor, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return types.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return actor, nil
}

// WithActor injects the caller identity into the context.
func WithActor(ctx context.Context, actor types.Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, actor.ID.String())
	return context.WithValue(ctx, ctxRole, string(actor.Role))
}
