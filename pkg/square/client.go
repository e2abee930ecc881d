package square

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	sq "github.com/square/square-go-sdk"
	sqclient "github.com/square/square-go-sdk/client"
	sqcore "github.com/square/square-go-sdk/core"
	sqoption "github.com/square/square-go-sdk/option"

	"github.com/divinestore/storefront-backend/pkg/config"
	pkgerrors "github.com/divinestore/storefront-backend/pkg/errors"
	"github.com/divinestore/storefront-backend/pkg/logger"
)

var (
	ErrMissingLogger      = errors.New("square: logger is required")
	ErrMissingAccessToken = errors.New("square: access token is required")
	ErrMissingLocation    = errors.New("square: location id is required")
	ErrUnknownEnvironment = errors.New("square: unknown environment")
)

// hosts maps a normalized environment name to the Connect API host.
var hosts = map[string]string{
	"sandbox":    "https://connect.squareupsandbox.com",
	"production": "https://connect.squareup.com",
}

type ordersAPI interface {
	Create(ctx context.Context, request *sq.CreateOrderRequest, opts ...sqoption.RequestOption) (*sq.CreateOrderResponse, error)
}

// Client opens unpaid Square orders that the web payments SDK later settles.
type Client struct {
	orders   ordersAPI
	env      string
	location string
	logg     *logger.Logger
}

func NewClient(ctx context.Context, cfg config.SquareConfig, logg *logger.Logger) (*Client, error) {
	token := strings.TrimSpace(cfg.AccessToken)
	location := strings.TrimSpace(cfg.LocationID)
	switch {
	case logg == nil:
		return nil, ErrMissingLogger
	case token == "":
		return nil, ErrMissingAccessToken
	case location == "":
		return nil, ErrMissingLocation
	}

	env := cfg.Environment()
	host, ok := hosts[env]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownEnvironment, env)
	}

	sdk := sqclient.NewClient(sqoption.WithBaseURL(host), sqoption.WithToken(token))
	logg.Info(logg.WithFields(ctx, map[string]any{
		"square_env":      env,
		"square_location": location,
	}), "square client ready")

	return &Client{orders: sdk.Orders, env: env, location: location, logg: logg}, nil
}

// Environment is "sandbox" or "production".
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.env
}

// CreateOrder opens an order with one line item priced at params.AmountMinor.
// A blank idempotency key is replaced with a random one.
func (c *Client) CreateOrder(ctx context.Context, params OrderCreateParams) (*sq.Order, error) {
	if c == nil || c.orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "square client not configured")
	}
	if params.LocationID == "" {
		params.LocationID = c.location
	}
	if strings.TrimSpace(params.IdempotencyKey) == "" {
		params.IdempotencyKey = "order-" + uuid.NewString()
	}

	ctx = c.logg.WithFields(ctx, map[string]any{
		"square_env":      c.env,
		"square_location": params.LocationID,
		"reference_id":    params.ReferenceID,
	})
	started := time.Now()

	resp, err := c.orders.Create(ctx, params.request())
	if err != nil {
		mapped := translate(err)
		c.logg.Error(ctx, "square create order failed", mapped)
		return nil, mapped
	}

	order := resp.GetOrder()
	id := ""
	if order != nil && order.GetID() != nil {
		id = *order.GetID()
	}
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "square returned an order without an id")
	}

	c.logg.Info(c.logg.WithFields(ctx, map[string]any{
		"square_order_id": id,
		"amount_minor":    params.AmountMinor,
		"duration_ms":     time.Since(started).Milliseconds(),
	}), "square order created")
	return order, nil
}

// translate turns an SDK failure into a domain error. Square's own error code
// and category travel in the details.
func translate(err error) error {
	var apiErr *sqcore.APIError
	if !errors.As(err, &apiErr) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "square request failed")
	}

	first := firstAPIError(apiErr)
	wrapped := pkgerrors.Wrap(codeFor(apiErr.StatusCode, first), err, messageFor(first))
	if first == nil {
		return wrapped.WithDetails(map[string]any{"square_status": apiErr.StatusCode})
	}
	return wrapped.WithDetails(map[string]any{
		"square_status":   apiErr.StatusCode,
		"square_code":     string(first.Code),
		"square_category": string(first.Category),
	})
}

// firstAPIError decodes the {"errors":[...]} body the SDK keeps as the
// wrapped error text.
func firstAPIError(apiErr *sqcore.APIError) *sq.Error {
	inner := apiErr.Unwrap()
	if inner == nil {
		return nil
	}
	var body struct {
		Errors []*sq.Error `json:"errors"`
	}
	if json.Unmarshal([]byte(inner.Error()), &body) != nil {
		return nil
	}
	for _, e := range body.Errors {
		if e != nil {
			return e
		}
	}
	return nil
}

func codeFor(status int, first *sq.Error) pkgerrors.Code {
	if first != nil {
		if first.Code == sq.ErrorCodeIdempotencyKeyReused {
			return pkgerrors.CodeIdempotency
		}
		if first.Category == sq.ErrorCategoryAuthenticationError {
			return pkgerrors.CodeUnauthorized
		}
	}
	switch {
	case status == http.StatusTooManyRequests, status >= 500:
		return pkgerrors.CodeDependency
	case status == http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case status == http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case status == http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case status >= 400:
		return pkgerrors.CodeValidation
	default:
		return pkgerrors.CodeDependency
	}
}

func messageFor(first *sq.Error) string {
	if first == nil {
		return "square rejected the order"
	}
	if first.Detail != nil && strings.TrimSpace(*first.Detail) != "" {
		return "square rejected the order: " + strings.TrimSpace(*first.Detail)
	}
	return "square rejected the order: " + string(first.Code)
}
