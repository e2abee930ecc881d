package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/divinestore/storefront-backend/internal/profiles"
	"github.com/divinestore/storefront-backend/pkg/auth"
	"github.com/divinestore/storefront-backend/pkg/auth/session"
	"github.com/divinestore/storefront-backend/pkg/config"
	"github.com/divinestore/storefront-backend/pkg/enums"
	pkgerrors "github.com/divinestore/storefront-backend/pkg/errors"
)

var gateJWT = config.JWTConfig{Secret: "gate-secret", Issuer: "storefront", ExpirationMinutes: 30}

type sessionsFake struct {
	live bool
	err  error
}

func (s sessionsFake) HasSession(context.Context, string) (bool, error) {
	return s.live, s.err
}

type authorizerFake struct {
	profile  *profiles.ProfileDTO
	err      error
	accessID string
}

func (a *authorizerFake) AuthorizeSession(_ context.Context, _ uuid.UUID, accessID string, _ enums.Role) (*profiles.ProfileDTO, error) {
	a.accessID = accessID
	return a.profile, a.err
}

func signedToken(t *testing.T, userID uuid.UUID, role enums.Role) (token, accessID string) {
	t.Helper()
	accessID = session.NewAccessID()
	token, err := auth.MintAccessToken(gateJWT, time.Now(), auth.AccessTokenPayload{
		UserID: userID,
		Role:   role,
		JTI:    accessID,
	})
	require.NoError(t, err)
	return token, accessID
}

func serve(h http.Handler, req *http.Request) int {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestAuthRejections(t *testing.T) {
	valid, _ := signedToken(t, uuid.New(), enums.RoleReseller)

	cases := []struct {
		name     string
		header   string
		sessions sessionsFake
		want     int
	}{
		{"no header", "", sessionsFake{live: true}, http.StatusUnauthorized},
		{"malformed token", "Bearer not-a-jwt", sessionsFake{live: true}, http.StatusUnauthorized},
		{"basic scheme", "Basic " + valid, sessionsFake{live: true}, http.StatusUnauthorized},
		{"revoked session", "Bearer " + valid, sessionsFake{live: false}, http.StatusUnauthorized},
		{"session store down", "Bearer " + valid, sessionsFake{err: errors.New("redis down")}, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			called := false
			h := Auth(gateJWT, tc.sessions, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
			require.Equal(t, tc.want, serve(h, req))
			require.False(t, called)
		})
	}
}

func TestAuthSeedsClaims(t *testing.T) {
	userID := uuid.New()
	token, accessID := signedToken(t, userID, enums.RoleAdmin)

	var gotUser, gotRole, gotAccess string
	h := Auth(gateJWT, sessionsFake{live: true}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
		gotAccess = AccessIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "bearer  "+token)
	require.Equal(t, http.StatusOK, serve(h, req))
	require.Equal(t, userID.String(), gotUser)
	require.Equal(t, string(enums.RoleAdmin), gotRole)
	require.Equal(t, accessID, gotAccess)
}

func TestRequireRoleChecksClaim(t *testing.T) {
	h := RequireRole(enums.RoleAdmin, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	reseller := req.WithContext(context.WithValue(req.Context(), ctxRole, string(enums.RoleReseller)))
	require.Equal(t, http.StatusForbidden, serve(h, reseller))

	admin := req.WithContext(context.WithValue(req.Context(), ctxRole, string(enums.RoleAdmin)))
	require.Equal(t, http.StatusOK, serve(h, admin))
}

func TestRequireProfileRoleStoresProfile(t *testing.T) {
	userID := uuid.New()
	gate := &authorizerFake{profile: &profiles.ProfileDTO{ID: userID, Role: enums.RoleReseller}}

	var got *profiles.ProfileDTO
	h := RequireProfileRole(enums.RoleReseller, gate, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ProfileFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/reseller", nil)
	ctx := context.WithValue(WithUserID(req.Context(), userID.String()), ctxAccessID, "access-1")
	require.Equal(t, http.StatusOK, serve(h, req.WithContext(ctx)))
	require.NotNil(t, got)
	require.Equal(t, userID, got.ID)
	require.Equal(t, "access-1", gate.accessID)
}

func TestRequireProfileRoleMapsGateErrors(t *testing.T) {
	cases := []struct {
		code pkgerrors.Code
		want int
	}{
		{pkgerrors.CodeProfileNotFound, http.StatusUnauthorized},
		{pkgerrors.CodeRoleMismatch, http.StatusForbidden},
		{pkgerrors.CodeBackendUnavailable, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			gate := &authorizerFake{err: pkgerrors.New(tc.code, "gate said no")}
			h := RequireProfileRole(enums.RoleReseller, gate, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				t.Fatal("handler must not run")
			}))
			req := httptest.NewRequest(http.MethodGet, "/reseller", nil)
			require.Equal(t, tc.want, serve(h, req.WithContext(WithUserID(req.Context(), uuid.NewString()))))
		})
	}
}
