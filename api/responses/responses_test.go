package responses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	pkgerrors "github.com/divinestore/storefront-backend/pkg/errors"
	"github.com/divinestore/storefront-backend/pkg/logger"
)

func renderError(t *testing.T, logg *logger.Logger, err error) (*httptest.ResponseRecorder, APIError) {
	t.Helper()
	rec := httptest.NewRecorder()
	WriteError(context.Background(), logg, rec, err)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env.Error
}

func TestWriteSuccessStatusWrapsData(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccessStatus(rec, http.StatusCreated, map[string]string{"sku": "MALA-108"})

	require.Equal(t, http.StatusCreated, rec.Code)
	require.JSONEq(t, `{"data":{"sku":"MALA-108"}}`, rec.Body.String())
}

func TestWriteErrorRendersValidationDetails(t *testing.T) {
	err := pkgerrors.New(pkgerrors.CodeValidation, "pincode is invalid").
		WithDetails(map[string]string{"pincode": "must be a 6-digit pincode"})
	rec, body := renderError(t, nil, err)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, string(pkgerrors.CodeValidation), body.Code)
	require.Equal(t, "pincode is invalid", body.Message)
	require.Equal(t, map[string]any{"pincode": "must be a 6-digit pincode"}, body.Details)
}

func TestWriteErrorHidesUntypedErrors(t *testing.T) {
	var logs bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "responses-test", Output: &logs})
	rec, body := renderError(t, logg, errors.New("dial tcp 10.0.0.1:5432: refused"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "internal server error", body.Message)
	require.Nil(t, body.Details)
	require.Contains(t, logs.String(), "request.error")
	require.Contains(t, logs.String(), "10.0.0.1")
}

func TestWriteErrorUsesFixedGateWording(t *testing.T) {
	for code, status := range map[pkgerrors.Code]int{
		pkgerrors.CodeProfileNotFound:    http.StatusUnauthorized,
		pkgerrors.CodeRoleMismatch:       http.StatusForbidden,
		pkgerrors.CodeBackendUnavailable: http.StatusServiceUnavailable,
		pkgerrors.CodeOracleUnavailable:  http.StatusServiceUnavailable,
	} {
		t.Run(string(code), func(t *testing.T) {
			rec, body := renderError(t, nil, pkgerrors.New(code, "internal reason"))
			require.Equal(t, status, rec.Code)
			require.Equal(t, pkgerrors.MetadataFor(code).PublicMessage, body.Message)
		})
	}
}

func TestWriteErrorRetryAfter(t *testing.T) {
	rec, _ := renderError(t, nil, pkgerrors.Wrap(pkgerrors.CodeOracleUnavailable, errors.New("timeout"), "pincode lookup"))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, retryAfterSeconds, rec.Header().Get("Retry-After"))

	rec, _ = renderError(t, nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found"))
	require.Empty(t, rec.Header().Get("Retry-After"))
}
