package serviceability

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/divinestore/storefront-backend/pkg/delhivery"
	"github.com/divinestore/storefront-backend/pkg/enums"
	pkgerrors "github.com/divinestore/storefront-backend/pkg/errors"
	"github.com/divinestore/storefront-backend/pkg/logger"
	redisclient "github.com/divinestore/storefront-backend/pkg/redis"
	"github.com/stretchr/testify/require"
)

type stubOracle struct {
	resp  *delhivery.PinCodeResponse
	err   error
	calls int
}

func (s *stubOracle) CheckPincode(context.Context, string) (*delhivery.PinCodeResponse, error) {
	s.calls++
	return s.resp, s.err
}

type memoryCache struct {
	values map[string]string
}

func (m *memoryCache) Get(_ context.Context, key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", redisclient.ErrNil
	}
	return v, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.values[key] = value.(string)
	return nil
}

func (m *memoryCache) CacheKey(scope, id string) string { return "sf:cache:" + scope + ":" + id }

func postal(sortCode, prePaid, cod string) *delhivery.PinCodeResponse {
	return &delhivery.PinCodeResponse{DeliveryCodes: []delhivery.DeliveryCode{{
		PostalCode: delhivery.PostalCode{
			District: "Varanasi",
			City:     "Varanasi",
			State:    "UP",
			SortCode: sortCode,
			PrePaid:  prePaid,
			COD:      cod,
		},
	}}}
}

func newTestService(t *testing.T, oracle Oracle, cache resultCache) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Oracle: oracle,
		Cache:  cache,
		Logger: logger.New(logger.Options{ServiceName: "serviceability-test", Output: io.Discard}),
	})
	require.NoError(t, err)
	return svc
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name   string
		resp   *delhivery.PinCodeResponse
		status enums.ServiceabilityStatus
		reason enums.ServiceabilityReason
	}{
		{"no entries", &delhivery.PinCodeResponse{}, enums.ServiceabilityNotServiceable, enums.ReasonNoCoverage},
		{"nil payload", nil, enums.ServiceabilityNotServiceable, enums.ReasonNoCoverage},
		{"embargo beats prepaid", postal("Embargo", "Y", "Y"), enums.ServiceabilityNotServiceable, enums.ReasonTemporarilyEmbargo},
		{"embargo beats cash only", postal("EMBARGO", "N", "Y"), enums.ServiceabilityNotServiceable, enums.ReasonTemporarilyEmbargo},
		{"cash only", postal("VNS/ABC", "N", "Y"), enums.ServiceabilityNotServiceable, enums.ReasonCashOnlyUnsupported},
		{"serviceable", postal("VNS/ABC", "Y", "Y"), enums.ServiceabilityServiceable, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify("221001", tc.resp)
			require.Equal(t, tc.status, got.Status)
			require.Equal(t, tc.reason, got.Reason)
			require.Equal(t, tc.status == enums.ServiceabilityServiceable, got.Serviceable)
		})
	}
}

func TestCheckRejectsMalformedPincodeBeforeCallingOracle(t *testing.T) {
	oracle := &stubOracle{resp: postal("", "Y", "Y")}
	svc := newTestService(t, oracle, nil)

	for _, pin := range []string{"12345", "1234567", "abcdef", ""} {
		_, err := svc.Check(context.Background(), pin)
		require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), pin)
	}
	require.Zero(t, oracle.calls)
}

func TestCheckServiceableIncludesLocation(t *testing.T) {
	svc := newTestService(t, &stubOracle{resp: postal("VNS/ABC", "Y", "Y")}, nil)

	got, err := svc.Check(context.Background(), "221001")
	require.NoError(t, err)
	require.True(t, got.Serviceable)
	require.Equal(t, "Varanasi", got.District)
	require.Equal(t, "UP", got.State)
	require.True(t, got.CashOnDelivery)
}

func TestCheckOracleFailures(t *testing.T) {
	unconfigured := newTestService(t, nil, nil)
	_, err := unconfigured.Check(context.Background(), "221001")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeOracleUnavailable))

	failing := newTestService(t, &stubOracle{err: errors.New("dial tcp: timeout")}, nil)
	_, err = failing.Check(context.Background(), "221001")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeOracleUnavailable))
}

func TestCheckUsesCache(t *testing.T) {
	oracle := &stubOracle{resp: postal("", "N", "Y")}
	cache := &memoryCache{values: map[string]string{}}
	svc := newTestService(t, oracle, cache)

	first, err := svc.Check(context.Background(), "560034")
	require.NoError(t, err)
	second, err := svc.Check(context.Background(), "560034")
	require.NoError(t, err)

	require.Equal(t, 1, oracle.calls)
	require.Equal(t, first, second)
	require.Equal(t, enums.ReasonCashOnlyUnsupported, second.Reason)
}
