package middleware

import (
	"context"

	"github.com/divinestore/storefront-backend/internal/profiles"
)

type contextKey int

const (
	ctxUserID contextKey = iota
	ctxRole
	ctxAccessID
	ctxProfile
)

func valueOf[T any](ctx context.Context, key contextKey) T {
	var zero T
	if ctx == nil {
		return zero
	}
	if v, ok := ctx.Value(key).(T); ok {
		return v
	}
	return zero
}

// UserIDFromContext is the identity id from the bearer token, "" when the
// request is anonymous.
func UserIDFromContext(ctx context.Context) string { return valueOf[string](ctx, ctxUserID) }

// RoleFromContext is the role claim from the bearer token.
func RoleFromContext(ctx context.Context) string { return valueOf[string](ctx, ctxRole) }

// AccessIDFromContext is the session id (jti) bound to the bearer token.
func AccessIDFromContext(ctx context.Context) string { return valueOf[string](ctx, ctxAccessID) }

// ProfileFromContext is the profile RequireProfileRole loaded for this request.
func ProfileFromContext(ctx context.Context) *profiles.ProfileDTO {
	return valueOf[*profiles.ProfileDTO](ctx, ctxProfile)
}

func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

func WithProfile(ctx context.Context, profile *profiles.ProfileDTO) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxProfile, profile)
}
