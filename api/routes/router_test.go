package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/divinestore/storefront-backend/internal/auth"
	"github.com/divinestore/storefront-backend/internal/blog"
	"github.com/divinestore/storefront-backend/internal/contact"
	"github.com/divinestore/storefront-backend/internal/profiles"
	pkgAuth "github.com/divinestore/storefront-backend/pkg/auth"
	"github.com/divinestore/storefront-backend/pkg/auth/session"
	"github.com/divinestore/storefront-backend/pkg/config"
	"github.com/divinestore/storefront-backend/pkg/enums"
	pkgerrors "github.com/divinestore/storefront-backend/pkg/errors"
	"github.com/divinestore/storefront-backend/pkg/logger"
	"github.com/divinestore/storefront-backend/pkg/metrics"
	"github.com/divinestore/storefront-backend/pkg/pagination"
	pkgredis "github.com/divinestore/storefront-backend/pkg/redis"
)

type stubSessions struct{}

func (stubSessions) HasSession(context.Context, string) (bool, error) {
	return true, nil
}

type stubIdempotencyStore struct {
	data map[string]string
}

func (s *stubIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := s.data[key]; ok {
		return v, nil
	}
	return "", pkgredis.ErrNil
}

func (s *stubIdempotencyStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	s.data[key] = fmt.Sprint(value)
	return nil
}

func (s *stubIdempotencyStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	s.data[key] = fmt.Sprint(value)
	return true, nil
}

func (s *stubIdempotencyStore) IdempotencyKey(scope, id string) string {
	return scope + ":" + id
}

func (s *stubIdempotencyStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

type stubAuthService struct {
	authorizeErr error
	loggedOut    string
}

func (stubAuthService) AuthenticateAs(context.Context, auth.Credentials, enums.Role) (*auth.SessionResponse, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, "invalid")
}

func (stubAuthService) AuthenticateExternalAdmin(context.Context, string) (*auth.SessionResponse, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, "invalid")
}

func (stubAuthService) RegisterReseller(context.Context, auth.RegistrationRequest) (*auth.SessionResponse, error) {
	return &auth.SessionResponse{}, nil
}

func (stubAuthService) BootstrapAdmin(context.Context, auth.BootstrapRequest) (*profiles.ProfileDTO, error) {
	return &profiles.ProfileDTO{Role: enums.RoleAdmin}, nil
}

func (stubAuthService) Refresh(context.Context, auth.RefreshRequest) (*auth.SessionResponse, error) {
	return &auth.SessionResponse{}, nil
}

func (s *stubAuthService) Logout(_ context.Context, accessID string) error {
	s.loggedOut = accessID
	return nil
}

func (s *stubAuthService) AuthorizeSession(_ context.Context, userID uuid.UUID, _ string, role enums.Role) (*profiles.ProfileDTO, error) {
	if s.authorizeErr != nil {
		return nil, s.authorizeErr
	}
	return &profiles.ProfileDTO{ID: userID, Role: role}, nil
}

type stubBlogService struct{}

func (stubBlogService) CreatePost(context.Context, blog.CreatePostInput) (*blog.PostDTO, error) {
	return &blog.PostDTO{}, nil
}

func (stubBlogService) GetPost(_ context.Context, slug string) (*blog.PostDTO, error) {
	return &blog.PostDTO{PostSummary: blog.PostSummary{Slug: slug}}, nil
}

func (stubBlogService) ListPosts(context.Context, pagination.Params) (*blog.ListResult, error) {
	return &blog.ListResult{Posts: []blog.PostSummary{}}, nil
}

func (stubBlogService) DeletePost(context.Context, string) error { return nil }

func testConfig(env string) *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: env},
		JWT: config.JWTConfig{Secret: "router-secret", Issuer: "storefront", ExpirationMinutes: 30},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config, authSvc auth.Service) http.Handler {
	t.Helper()
	return newTestRouterWithStore(t, cfg, authSvc, &stubIdempotencyStore{data: map[string]string{}})
}

func newTestRouterWithStore(t *testing.T, cfg *config.Config, authSvc auth.Service, store *stubIdempotencyStore) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard})
	contactSvc, err := contact.NewService(logg)
	if err != nil {
		t.Fatalf("contact service: %v", err)
	}
	reg := prometheus.NewRegistry()
	metrics.NewAuthMetrics(reg).Observe("reseller", "admitted")

	return NewRouter(cfg, logg, Dependencies{
		Sessions:    stubSessions{},
		Idempotency: store,
		Gatherer:    reg,
	}, Services{
		Auth:    authSvc,
		Contact: contactSvc,
		Blog:    stubBlogService{},
	})
}

func bearer(t *testing.T, cfg *config.Config, role enums.Role) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return "Bearer " + token
}

func TestHealthAndMetrics(t *testing.T) {
	router := newTestRouter(t, testConfig("dev"), &stubAuthService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "auth_decisions_total") {
		t.Fatalf("expected metrics output, got %d", rec.Code)
	}
}

func TestContactRouteIsPublic(t *testing.T) {
	router := newTestRouter(t, testConfig("dev"), &stubAuthService{})
	body := `{"name":"Sita","email":"sita@example.com","message":"Please share bulk pricing."}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/public/contact", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestPaymentOrdersRequireIdempotencyKey(t *testing.T) {
	router := newTestRouter(t, testConfig("dev"), &stubAuthService{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/public/payments/orders", strings.NewReader(`{"amount":"10","currency":"INR"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestRegisterIsNeverStoredForReplay(t *testing.T) {
	store := &stubIdempotencyStore{data: map[string]string{}}
	router := newTestRouterWithStore(t, testConfig("dev"), &stubAuthService{}, store)
	body := `{"email":"gita@example.com","password":"jai-shri-ram-108","display_name":"Gita Traders"}`

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/public/auth/register", strings.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 without Idempotency-Key, got %d: %s", rec.Code, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodPost, "/api/public/auth/register", strings.NewReader(body))
	req.Header.Set("Idempotency-Key", "signup-1")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}
	if rec.Header().Get("Idempotent-Replayed") != "" || len(store.data) != 0 {
		t.Fatalf("register response must not be stored, store has %d entries", len(store.data))
	}
}

func TestBlogRequiresSignedInAccount(t *testing.T) {
	cfg := testConfig("dev")
	router := newTestRouter(t, cfg, &stubAuthService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/blog/power-of-rudraksha", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}

	for _, role := range []enums.Role{enums.RoleReseller, enums.RoleAdmin} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/blog/power-of-rudraksha", nil)
		req.Header.Set("Authorization", bearer(t, cfg, role))
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "power-of-rudraksha") {
			t.Fatalf("expected post for %s, got %d: %s", role, rec.Code, rec.Body.String())
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/admin/blog", strings.NewReader(`{}`))
	req.Header.Set("Authorization", bearer(t, cfg, enums.RoleReseller))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for reseller writing the blog, got %d", rec.Code)
	}
}

func TestAccountRoutesRequireResellerSession(t *testing.T) {
	cfg := testConfig("dev")
	router := newTestRouter(t, cfg, &stubAuthService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/account/profile", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/account/profile", nil)
	req.Header.Set("Authorization", bearer(t, cfg, enums.RoleAdmin))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for admin token got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/account/profile", nil)
	req.Header.Set("Authorization", bearer(t, cfg, enums.RoleReseller))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRevokedProfileIsRejectedPerRequest(t *testing.T) {
	cfg := testConfig("dev")
	router := newTestRouter(t, cfg, &stubAuthService{
		authorizeErr: pkgerrors.New(pkgerrors.CodeProfileNotFound, "profile not found"),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/account/profile", nil)
	req.Header.Set("Authorization", bearer(t, cfg, enums.RoleReseller))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), string(pkgerrors.CodeProfileNotFound)) {
		t.Fatalf("expected PROFILE_NOT_FOUND, got %s", rec.Body.String())
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	cfg := testConfig("dev")
	authSvc := &stubAuthService{}
	router := newTestRouter(t, cfg, authSvc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", bearer(t, cfg, enums.RoleReseller))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", rec.Code)
	}
	if authSvc.loggedOut == "" {
		t.Fatal("expected session revoked")
	}
}

func TestBootstrapHiddenInProd(t *testing.T) {
	body := `{"email":"admin@example.com","secret":"s3cret"}`

	rec := httptest.NewRecorder()
	newTestRouter(t, testConfig("dev"), &stubAuthService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/bootstrap", strings.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 in dev got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	newTestRouter(t, testConfig("prod"), &stubAuthService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/bootstrap", strings.NewReader(body)))
	if rec.Code == http.StatusCreated {
		t.Fatal("bootstrap must not be mounted in prod")
	}
}
