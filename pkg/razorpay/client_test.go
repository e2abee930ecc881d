package razorpay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	pkgerrors "github.com/divinestore/storefront-backend/pkg/errors"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func respond(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{},
	}
}

func TestCreateOrderRequest(t *testing.T) {
	var captured OrderRequest
	var user, pass string
	var capturedURL string
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		user, pass, _ = req.BasicAuth()
		body, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		return respond(http.StatusOK, `{"id":"order_Nx1","entity":"order","amount":149900,"currency":"INR","receipt":"receipt_order_1","status":"created"}`), nil
	})

	client, err := NewClient("rzp_test_key", "secret", WithBaseURL("http://rzp.test"), WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	order, err := client.CreateOrder(context.Background(), OrderRequest{Amount: 149900, Currency: "INR", Receipt: "receipt_order_1"})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if capturedURL != "http://rzp.test/v1/orders" {
		t.Fatalf("unexpected url %q", capturedURL)
	}
	if user != "rzp_test_key" || pass != "secret" {
		t.Fatalf("unexpected basic auth %q:%q", user, pass)
	}
	if captured.Amount != 149900 || captured.Currency != "INR" || captured.Receipt != "receipt_order_1" {
		t.Fatalf("unexpected payload %+v", captured)
	}
	if order.ID != "order_Nx1" || order.Status != "created" {
		t.Fatalf("unexpected order %+v", order)
	}
	if client.KeyID() != "rzp_test_key" {
		t.Fatalf("unexpected key id %q", client.KeyID())
	}
}

func TestCreateOrderSurfacesGatewayMessage(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return respond(http.StatusBadRequest, `{"error":{"code":"BAD_REQUEST_ERROR","description":"Order amount less than minimum amount allowed"}}`), nil
	})
	client, _ := NewClient("k", "s", WithHTTPClient(&http.Client{Transport: rt}))

	_, err := client.CreateOrder(context.Background(), OrderRequest{Amount: 1, Currency: "INR", Receipt: "r"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if typed.Message() != "Order amount less than minimum amount allowed" {
		t.Fatalf("expected gateway description, got %q", typed.Message())
	}
}

func TestCreateOrderTransportFailure(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection reset")
	})
	client, _ := NewClient("k", "s", WithHTTPClient(&http.Client{Transport: rt}))
	if _, err := client.CreateOrder(context.Background(), OrderRequest{Amount: 100, Currency: "INR"}); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestCreateOrderRejectsNonPositiveAmount(t *testing.T) {
	called := false
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		called = true
		return respond(http.StatusOK, `{}`), nil
	})
	client, _ := NewClient("k", "s", WithHTTPClient(&http.Client{Transport: rt}))
	if _, err := client.CreateOrder(context.Background(), OrderRequest{Amount: 0, Currency: "INR"}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if called {
		t.Fatal("gateway must not be called for a non-positive amount")
	}
}

func TestNewClientRequiresCredentials(t *testing.T) {
	if _, err := NewClient("key", ""); err == nil {
		t.Fatal("expected missing secret to fail")
	}
	if _, err := NewClient("", "secret"); err == nil {
		t.Fatal("expected missing key id to fail")
	}
}
