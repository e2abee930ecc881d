package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/divinestore/storefront-backend/api/middleware"
	"github.com/divinestore/storefront-backend/internal/customers"
	"github.com/divinestore/storefront-backend/internal/payments"
	"github.com/divinestore/storefront-backend/internal/profiles"
	"github.com/divinestore/storefront-backend/pkg/config"
	"github.com/divinestore/storefront-backend/pkg/enums"
	pkgerrors "github.com/divinestore/storefront-backend/pkg/errors"
	"github.com/divinestore/storefront-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

type stubPayments struct {
	amountCalls  int
	productCalls int
	lastCurrency string
}

func (s *stubPayments) CreateOrder(_ context.Context, req payments.OrderRequest) (*payments.Order, error) {
	s.amountCalls++
	s.lastCurrency = req.Currency
	return &payments.Order{OrderID: "order_1", Amount: req.Amount.Shift(2).IntPart(), Currency: req.Currency}, nil
}

func (s *stubPayments) CreateOrderForProduct(_ context.Context, _ payments.ProductOrderRequest) (*payments.Order, error) {
	s.productCalls++
	return &payments.Order{OrderID: "order_2", Currency: "INR"}, nil
}

func TestPaymentOrderCreateDispatch(t *testing.T) {
	logg := testLogger()

	t.Run("amount", func(t *testing.T) {
		svc := &stubPayments{}
		req := httptest.NewRequest(http.MethodPost, "/api/public/payments/orders", strings.NewReader(`{"amount":"499.50","currency":"INR"}`))
		rec := httptest.NewRecorder()
		PaymentOrderCreate(svc, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
		}
		if svc.amountCalls != 1 || svc.lastCurrency != "INR" {
			t.Fatalf("expected amount order, got %+v", svc)
		}
	})

	t.Run("product", func(t *testing.T) {
		svc := &stubPayments{}
		body := `{"product_id":"` + uuid.NewString() + `"}`
		req := httptest.NewRequest(http.MethodPost, "/api/public/payments/orders", strings.NewReader(body))
		rec := httptest.NewRecorder()
		PaymentOrderCreate(svc, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated || svc.productCalls != 1 {
			t.Fatalf("expected product order, got %d %+v", rec.Code, svc)
		}
	})

	t.Run("both", func(t *testing.T) {
		svc := &stubPayments{}
		body := `{"amount":"10","currency":"INR","product_id":"` + uuid.NewString() + `"}`
		req := httptest.NewRequest(http.MethodPost, "/api/public/payments/orders", strings.NewReader(body))
		rec := httptest.NewRecorder()
		PaymentOrderCreate(svc, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", rec.Code)
		}
		if svc.amountCalls+svc.productCalls != 0 {
			t.Fatal("gateway must not be called")
		}
	})
}

type recordingCustomers struct {
	resellerID uuid.UUID
	err        error
}

func (s *recordingCustomers) Create(_ context.Context, resellerID uuid.UUID, input customers.CreateInput) (*customers.CustomerDTO, error) {
	s.resellerID = resellerID
	return &customers.CustomerDTO{ID: uuid.New(), Name: input.Name}, s.err
}

func (s *recordingCustomers) Get(_ context.Context, resellerID, id uuid.UUID) (*customers.CustomerDTO, error) {
	s.resellerID = resellerID
	if s.err != nil {
		return nil, s.err
	}
	return &customers.CustomerDTO{ID: id}, nil
}

func (s *recordingCustomers) List(_ context.Context, resellerID uuid.UUID) ([]customers.CustomerDTO, error) {
	s.resellerID = resellerID
	return nil, s.err
}

func (s *recordingCustomers) Update(_ context.Context, resellerID, id uuid.UUID, _ customers.UpdateInput) (*customers.CustomerDTO, error) {
	s.resellerID = resellerID
	return &customers.CustomerDTO{ID: id}, s.err
}

func (s *recordingCustomers) Delete(_ context.Context, resellerID, _ uuid.UUID) error {
	s.resellerID = resellerID
	return s.err
}

func TestCustomerHandlersScopeByProfile(t *testing.T) {
	logg := testLogger()
	resellerID := uuid.New()
	ctx := middleware.WithProfile(context.Background(), &profiles.ProfileDTO{ID: resellerID, Role: enums.RoleReseller})

	svc := &recordingCustomers{}
	body := `{"name":"Meera","email":"meera@example.com","mobile":"9999999999","shipping_address":"12 MG Road","pincode":"560001"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/account/customers", strings.NewReader(body)).WithContext(ctx)
	rec := httptest.NewRecorder()
	CustomerCreate(svc, logg).ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.resellerID != resellerID {
		t.Fatalf("expected reseller %s got %s", resellerID, svc.resellerID)
	}

	bad := strings.Replace(body, "560001", "5600", 1)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/account/customers", strings.NewReader(bad)).WithContext(ctx)
	rec = httptest.NewRecorder()
	CustomerCreate(svc, logg).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad pincode got %d", rec.Code)
	}

	svc.err = pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	req = httptest.NewRequest(http.MethodGet, "/api/v1/account/customers/x", nil).WithContext(ctx)
	req = withURLParam(req, "id", uuid.NewString())
	rec = httptest.NewRecorder()
	CustomerDetail(svc, logg).ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestAdminUpdateUserRoleRejectsSelfChange(t *testing.T) {
	adminID := uuid.New()
	ctx := middleware.WithProfile(context.Background(), &profiles.ProfileDTO{ID: adminID, Role: enums.RoleAdmin})
	req := httptest.NewRequest(http.MethodPatch, "/api/admin/users/x/role", strings.NewReader(`{"role":"reseller"}`)).WithContext(ctx)
	req = withURLParam(req, "id", adminID.String())
	rec := httptest.NewRecorder()
	AdminUpdateUserRole(nil, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
}

type pingerFunc func(context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}
	healthy := map[string]Pinger{"db": pingerFunc(func(context.Context) error { return nil })}
	rec := httptest.NewRecorder()
	HealthReady(cfg, testLogger(), healthy).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	down := map[string]Pinger{"redis": pingerFunc(func(context.Context) error { return errors.New("refused") })}
	rec = httptest.NewRecorder()
	HealthReady(cfg, testLogger(), down).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
}

func TestAuthLogoutRequiresSession(t *testing.T) {
	rec := httptest.NewRecorder()
	AuthLogout(nil, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}
