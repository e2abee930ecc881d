package payments

import (
	"context"

	"github.com/divinestore/storefront-backend/pkg/enums"
	"github.com/divinestore/storefront-backend/pkg/razorpay"
	"github.com/divinestore/storefront-backend/pkg/square"
	sq "github.com/square/square-go-sdk"
)

// Square reports open orders without a payment attached under this state.
const squareOrderStatus = "OPEN"

// GatewayOrder is what the service asks a gateway to open.
type GatewayOrder struct {
	AmountMinor int64
	Currency    string
	Receipt     string
	Description string
	// IdempotencyKey is unique per order attempt.
	IdempotencyKey string
}

// GatewayResult is the gateway's handle for an opened order.
type GatewayResult struct {
	OrderID string
	Status  string
}

// Gateway opens unpaid orders with a payment provider.
type Gateway interface {
	Provider() enums.PaymentProvider
	PublicKey() string
	CreateOrder(ctx context.Context, order GatewayOrder) (*GatewayResult, error)
}

type razorpayOrders interface {
	CreateOrder(ctx context.Context, req razorpay.OrderRequest) (*razorpay.Order, error)
	KeyID() string
}

// RazorpayGateway adapts the Razorpay orders API.
type RazorpayGateway struct {
	client razorpayOrders
}

// NewRazorpayGateway wraps a Razorpay client.
func NewRazorpayGateway(client razorpayOrders) *RazorpayGateway {
	return &RazorpayGateway{client: client}
}

func (g *RazorpayGateway) Provider() enums.PaymentProvider { return enums.PaymentProviderRazorpay }

// PublicKey is the key id the browser checkout widget needs.
func (g *RazorpayGateway) PublicKey() string { return g.client.KeyID() }

func (g *RazorpayGateway) CreateOrder(ctx context.Context, order GatewayOrder) (*GatewayResult, error) {
	req := razorpay.OrderRequest{
		Amount:   order.AmountMinor,
		Currency: order.Currency,
		Receipt:  order.Receipt,
	}
	if order.Description != "" {
		req.Notes = map[string]string{"description": order.Description}
	}
	created, err := g.client.CreateOrder(ctx, req)
	if err != nil {
		return nil, err
	}
	return &GatewayResult{OrderID: created.ID, Status: created.Status}, nil
}

type squareOrders interface {
	CreateOrder(ctx context.Context, params square.OrderCreateParams) (*sq.Order, error)
}

// SquareGateway adapts the Square orders API.
type SquareGateway struct {
	client squareOrders
	appID  string
}

// NewSquareGateway wraps a Square client. appID is handed to the web payments SDK.
func NewSquareGateway(client squareOrders, appID string) *SquareGateway {
	return &SquareGateway{client: client, appID: appID}
}

func (g *SquareGateway) Provider() enums.PaymentProvider { return enums.PaymentProviderSquare }

func (g *SquareGateway) PublicKey() string { return g.appID }

func (g *SquareGateway) CreateOrder(ctx context.Context, order GatewayOrder) (*GatewayResult, error) {
	name := order.Description
	if name == "" {
		name = order.Receipt
	}
	created, err := g.client.CreateOrder(ctx, square.OrderCreateParams{
		ReferenceID:    order.Receipt,
		ItemName:       name,
		AmountMinor:    order.AmountMinor,
		Currency:       order.Currency,
		IdempotencyKey: order.IdempotencyKey,
	})
	if err != nil {
		return nil, err
	}
	id := ""
	if created.GetID() != nil {
		id = *created.GetID()
	}
	return &GatewayResult{OrderID: id, Status: squareOrderStatus}, nil
}
