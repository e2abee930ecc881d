package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/divinestore/storefront-backend/api/middleware"
	pkgerrors "github.com/divinestore/storefront-backend/pkg/errors"
)

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}

// callerID returns the authorized profile id seeded by RequireProfileRole.
func callerID(r *http.Request) (uuid.UUID, error) {
	if profile := middleware.ProfileFromContext(r.Context()); profile != nil {
		return profile.ID, nil
	}
	id, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return id, nil
}
