package controllers

import (
	"net/http"

	"github.com/divinestore/storefront-backend/api/middleware"
	"github.com/divinestore/storefront-backend/api/responses"
	"github.com/divinestore/storefront-backend/api/validators"
	"github.com/divinestore/storefront-backend/internal/profiles"
	"github.com/divinestore/storefront-backend/pkg/enums"
	pkgerrors "github.com/divinestore/storefront-backend/pkg/errors"
	"github.com/divinestore/storefront-backend/pkg/logger"
)

// AccountProfile returns the profile the gate just re-checked.
func AccountProfile(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile := middleware.ProfileFromContext(r.Context())
		if profile == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "profile context missing"))
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

func AccountUpdateProfile(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input profiles.UpdateSelfInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.UpdateSelf(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

func AdminListUsers(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"users": list})
	}
}

type roleChangeRequest struct {
	Role string `json:"role" validate:"required,oneof=reseller admin"`
}

func AdminUpdateUserRole(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req roleChangeRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if caller == id {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "cannot change your own role"))
			return
		}

		dto, err := svc.UpdateRole(r.Context(), id, enums.Role(req.Role))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}
