package middleware

import (
	"context"
	"net/http"

	"github.com/divinestore/storefront-backend/api/responses"
	"github.com/divinestore/storefront-backend/internal/profiles"
	"github.com/divinestore/storefront-backend/pkg/enums"
	pkgerrors "github.com/divinestore/storefront-backend/pkg/errors"
	"github.com/divinestore/storefront-backend/pkg/logger"
	"github.com/google/uuid"
)

// SessionAuthorizer re-checks the profile behind an authenticated session.
type SessionAuthorizer interface {
	AuthorizeSession(ctx context.Context, userID uuid.UUID, accessID string, role enums.Role) (*profiles.ProfileDTO, error)
}

// RequireRole rejects tokens minted for a different role. It runs before the
// profile re-check so a reseller probing an admin route keeps their session.
func RequireRole(role enums.Role, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromContext(r.Context()) != string(role) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireProfileRole re-reads the caller's profile on every request. A
// profile that was deleted or re-roled after sign-in ends the session.
func RequireProfileRole(role enums.Role, authorizer SessionAuthorizer, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := uuid.Parse(UserIDFromContext(r.Context()))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid user id"))
				return
			}
			profile, err := authorizer.AuthorizeSession(r.Context(), userID, AccessIDFromContext(r.Context()), role)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithProfile(r.Context(), profile)))
		})
	}
}
