package serviceability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/divinestore/storefront-backend/pkg/delhivery"
	"github.com/divinestore/storefront-backend/pkg/enums"
	pkgerrors "github.com/divinestore/storefront-backend/pkg/errors"
	"github.com/divinestore/storefront-backend/pkg/logger"
	"github.com/divinestore/storefront-backend/pkg/metrics"
	redisclient "github.com/divinestore/storefront-backend/pkg/redis"
)

const (
	dependencyName  = "delhivery"
	cacheScope      = "pincode"
	embargoSortCode = "embargo"
	// DefaultCacheTTL bounds how stale a cached answer can be.
	DefaultCacheTTL = 6 * time.Hour
)

// Result is the classified answer for one pincode.
type Result struct {
	Pincode        string                     `json:"pincode"`
	Status         enums.ServiceabilityStatus `json:"status"`
	Reason         enums.ServiceabilityReason `json:"reason,omitempty"`
	Serviceable    bool                       `json:"serviceable"`
	CashOnDelivery bool                       `json:"cash_on_delivery"`
	District       string                     `json:"district,omitempty"`
	City           string                     `json:"city,omitempty"`
	State          string                     `json:"state,omitempty"`
}

// Service answers whether a pincode can receive prepaid shipments.
type Service interface {
	Check(ctx context.Context, pincode string) (*Result, error)
}

// Oracle answers pincode lookups; *delhivery.Client satisfies it.
type Oracle interface {
	CheckPincode(ctx context.Context, pincode string) (*delhivery.PinCodeResponse, error)
}

type resultCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CacheKey(scope, id string) string
}

// ServiceParams bundles the oracle dependencies. Oracle may be nil when no
// courier token is configured; Cache is optional.
type ServiceParams struct {
	Oracle   Oracle
	Cache    resultCache
	CacheTTL time.Duration
	Metrics  *metrics.DependencyMetrics
	Logger   *logger.Logger
}

type service struct {
	oracle   Oracle
	cache    resultCache
	cacheTTL time.Duration
	metrics  *metrics.DependencyMetrics
	logger   *logger.Logger
}

// NewService builds the serviceability oracle.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	ttl := params.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &service{
		oracle:   params.Oracle,
		cache:    params.Cache,
		cacheTTL: ttl,
		metrics:  params.Metrics,
		logger:   params.Logger,
	}, nil
}

func (s *service) Check(ctx context.Context, pincode string) (*Result, error) {
	if !delhivery.ValidPincode(pincode) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pincode must be exactly six digits").
			WithDetails(map[string]any{"pincode": pincode})
	}
	if s.oracle == nil {
		return nil, pkgerrors.New(pkgerrors.CodeOracleUnavailable, "serviceability check not configured")
	}

	ctx = s.logger.WithField(ctx, "pincode", pincode)
	if cached := s.fromCache(ctx, pincode); cached != nil {
		return cached, nil
	}

	started := time.Now()
	resp, err := s.oracle.CheckPincode(ctx, pincode)
	s.metrics.Track(dependencyName, started, err)
	if err != nil {
		s.logger.Warn(ctx, fmt.Sprintf("pincode lookup failed: %v", err))
		if pkgerrors.IsCode(err, pkgerrors.CodeOracleUnavailable) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeOracleUnavailable, err, "pincode lookup failed")
	}

	result := Classify(pincode, resp)
	s.store(ctx, result)
	return &result, nil
}

// Classify turns the courier payload into a decision. An embargo wins over
// every other flag, and a lane that only takes cash is not serviceable.
func Classify(pincode string, resp *delhivery.PinCodeResponse) Result {
	result := Result{Pincode: pincode, Status: enums.ServiceabilityNotServiceable}
	if resp == nil || len(resp.DeliveryCodes) == 0 {
		result.Reason = enums.ReasonNoCoverage
		return result
	}

	postal := resp.DeliveryCodes[0].PostalCode
	result.District = strings.TrimSpace(postal.District)
	result.City = strings.TrimSpace(postal.City)
	result.State = strings.TrimSpace(postal.State)
	result.CashOnDelivery = strings.EqualFold(strings.TrimSpace(postal.COD), "Y")

	switch {
	case strings.EqualFold(strings.TrimSpace(postal.SortCode), embargoSortCode):
		result.Reason = enums.ReasonTemporarilyEmbargo
		result.CashOnDelivery = false
	case strings.EqualFold(strings.TrimSpace(postal.PrePaid), "N"):
		result.Reason = enums.ReasonCashOnlyUnsupported
	default:
		result.Status = enums.ServiceabilityServiceable
		result.Serviceable = true
	}
	return result
}

func (s *service) fromCache(ctx context.Context, pincode string) *Result {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, s.cache.CacheKey(cacheScope, pincode))
	if err != nil {
		if !errors.Is(err, redisclient.ErrNil) {
			s.logger.Warn(ctx, fmt.Sprintf("serviceability cache read failed: %v", err))
		}
		return nil
	}
	var cached Result
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return nil
	}
	return &cached
}

func (s *service) store(ctx context.Context, result Result) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cache.CacheKey(cacheScope, result.Pincode), string(payload), s.cacheTTL); err != nil {
		s.logger.Warn(ctx, fmt.Sprintf("serviceability cache write failed: %v", err))
	}
}
