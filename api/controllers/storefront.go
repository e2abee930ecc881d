package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/divinestore/storefront-backend/api/responses"
	"github.com/divinestore/storefront-backend/api/validators"
	"github.com/divinestore/storefront-backend/internal/contact"
	"github.com/divinestore/storefront-backend/internal/payments"
	"github.com/divinestore/storefront-backend/internal/recommendations"
	"github.com/divinestore/storefront-backend/internal/serviceability"
	pkgerrors "github.com/divinestore/storefront-backend/pkg/errors"
	"github.com/divinestore/storefront-backend/pkg/logger"
)

// Serviceability reports whether Delhivery delivers to a pincode.
func Serviceability(svc serviceability.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.Check(r.Context(), chi.URLParam(r, "pincode"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type paymentOrderRequest struct {
	Amount    *decimal.Decimal `json:"amount,omitempty"`
	Currency  string           `json:"currency,omitempty" validate:"omitempty,len=3"`
	ProductID *uuid.UUID       `json:"product_id,omitempty"`
}

// PaymentOrderCreate opens a gateway order either for an explicit amount or
// for a catalog product priced server-side.
func PaymentOrderCreate(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req paymentOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var (
			order *payments.Order
			err   error
		)
		switch {
		case req.ProductID != nil && req.Amount != nil:
			err = pkgerrors.New(pkgerrors.CodeValidation, "send either product_id or amount, not both")
		case req.ProductID != nil:
			order, err = svc.CreateOrderForProduct(r.Context(), payments.ProductOrderRequest{ProductID: *req.ProductID})
		case req.Amount != nil:
			order, err = svc.CreateOrder(r.Context(), payments.OrderRequest{Amount: *req.Amount, Currency: req.Currency})
		default:
			err = pkgerrors.New(pkgerrors.CodeValidation, "amount is required")
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func Recommendations(svc recommendations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recommendations.Request
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.Recommend(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, resp)
	}
}

func ContactSubmit(svc contact.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var submission contact.Submission
		if err := validators.DecodeJSONBody(r, &submission); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := svc.Submit(r.Context(), submission)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, receipt)
	}
}
