package payments

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	product "github.com/divinestore/storefront-backend/internal/products"
	"github.com/divinestore/storefront-backend/pkg/enums"
	pkgerrors "github.com/divinestore/storefront-backend/pkg/errors"
	"github.com/divinestore/storefront-backend/pkg/logger"
	"github.com/divinestore/storefront-backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultCurrency = "INR"
	receiptPrefix   = "receipt_order_"
)

var currencyRe = regexp.MustCompile(`^[A-Za-z]{3}$`)

// OrderRequest asks for a payment order of an arbitrary amount.
type OrderRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency" validate:"required,len=3"`
}

// ProductOrderRequest asks for a payment order priced from the catalog.
type ProductOrderRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
}

// Order is the handle the browser checkout widget needs. Amount is in minor units.
type Order struct {
	OrderID  string                `json:"order_id"`
	Amount   int64                 `json:"amount"`
	Currency string                `json:"currency"`
	Receipt  string                `json:"receipt"`
	Status   string                `json:"status,omitempty"`
	Provider enums.PaymentProvider `json:"provider"`
	KeyID    string                `json:"key_id,omitempty"`
}

// Service opens payment orders with the configured gateway. It never captures
// or confirms payments.
type Service interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	CreateOrderForProduct(ctx context.Context, req ProductOrderRequest) (*Order, error)
}

type productReader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*product.ProductDTO, error)
}

// ServiceParams bundles the payment dependencies. Gateway may be nil when no
// provider credentials are configured.
type ServiceParams struct {
	Gateway  Gateway
	Products productReader
	Metrics  *metrics.DependencyMetrics
	Logger   *logger.Logger
	Clock    func() time.Time
}

type service struct {
	gateway  Gateway
	products productReader
	metrics  *metrics.DependencyMetrics
	logger   *logger.Logger
	now      func() time.Time
}

// NewService builds the payment order initiator.
func NewService(params ServiceParams) (Service, error) {
	if params.Products == nil {
		return nil, fmt.Errorf("product reader is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &service{
		gateway:  params.Gateway,
		products: params.Products,
		metrics:  params.Metrics,
		logger:   params.Logger,
		now:      clock,
	}, nil
}

func (s *service) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	minor, currency, err := validateAmount(req.Amount, req.Currency)
	if err != nil {
		return nil, err
	}
	return s.open(ctx, minor, currency, "")
}

func (s *service) CreateOrderForProduct(ctx context.Context, req ProductOrderRequest) (*Order, error) {
	if req.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_id is required")
	}
	item, err := s.products.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	minor, currency, err := validateAmount(item.Price, defaultCurrency)
	if err != nil {
		return nil, err
	}
	return s.open(ctx, minor, currency, item.Name)
}

func (s *service) open(ctx context.Context, minor int64, currency, description string) (*Order, error) {
	if s.gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodePaymentInitiationFailed, "payment gateway not configured")
	}

	// Razorpay caps receipts at 40 characters, so the random part is short;
	// the gateway idempotency key carries a full uuid.
	nonce := uuid.New()
	receipt := fmt.Sprintf("%s%d_%x", receiptPrefix, s.now().UnixMilli(), nonce[:4])
	provider := s.gateway.Provider()
	ctx = s.logger.WithFields(ctx, map[string]any{
		"provider": string(provider),
		"receipt":  receipt,
		"amount":   minor,
		"currency": currency,
	})

	started := time.Now()
	result, err := s.gateway.CreateOrder(ctx, GatewayOrder{
		AmountMinor:    minor,
		Currency:       currency,
		Receipt:        receipt,
		Description:    description,
		IdempotencyKey: nonce.String(),
	})
	s.metrics.Track(string(provider), started, err)
	if err != nil {
		s.logger.Error(ctx, "payment order creation failed", err)
		return nil, initiationFailed(err)
	}

	s.logger.Info(ctx, "payment order created")
	return &Order{
		OrderID:  result.OrderID,
		Amount:   minor,
		Currency: currency,
		Receipt:  receipt,
		Status:   result.Status,
		Provider: provider,
		KeyID:    s.gateway.PublicKey(),
	}, nil
}

// validateAmount runs before any gateway call: the amount must be positive and
// representable in minor units, and the currency a three-letter code.
func validateAmount(amount decimal.Decimal, currency string) (int64, string, error) {
	if !amount.IsPositive() {
		return 0, "", pkgerrors.New(pkgerrors.CodeValidation, "amount must be greater than zero")
	}
	code := strings.TrimSpace(currency)
	if !currencyRe.MatchString(code) {
		return 0, "", pkgerrors.New(pkgerrors.CodeValidation, "currency must be a three-letter code")
	}
	shifted := amount.Shift(2).Round(0)
	if !shifted.BigInt().IsInt64() {
		return 0, "", pkgerrors.New(pkgerrors.CodeValidation, "amount is too large")
	}
	minor := shifted.IntPart()
	if minor <= 0 {
		return 0, "", pkgerrors.New(pkgerrors.CodeValidation, "amount is below the smallest currency unit")
	}
	return minor, strings.ToUpper(code), nil
}

func initiationFailed(err error) error {
	message := "payment order could not be created"
	if typed := pkgerrors.As(err); typed != nil && typed.Message() != "" {
		message = typed.Message()
	}
	return pkgerrors.Wrap(pkgerrors.CodePaymentInitiationFailed, err, message)
}
