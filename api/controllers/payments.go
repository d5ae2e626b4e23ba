package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shopkartlabs/shopkart-backend/api/middleware"
	"github.com/shopkartlabs/shopkart-backend/api/responses"
	"github.com/shopkartlabs/shopkart-backend/api/validators"
	ordersvc "github.com/shopkartlabs/shopkart-backend/internal/orders"
	paymentsvc "github.com/shopkartlabs/shopkart-backend/internal/payments"
	"github.com/shopkartlabs/shopkart-backend/pkg/db/models"
	"github.com/shopkartlabs/shopkart-backend/pkg/logger"
)

type orderGetter interface {
	Get(ctx context.Context, actor ordersvc.Actor, orderID uuid.UUID) (*models.Order, error)
}

type paymentResultRequest struct {
	Reference *string `json:"reference" validate:"omitempty,max=200"`
}

// PaymentConfirm captures a PREPAID order: stock is deducted, the payment is
// marked SUCCESS and the order moves to PLACED.
func PaymentConfirm(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserUUIDFromContext(r.Context())

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload paymentResultRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Confirm(r.Context(), userID, orderID, payload.Reference)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(*order))
	}
}

// PaymentFail records a failed capture; the order stays PENDING for retry.
func PaymentFail(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserUUIDFromContext(r.Context())

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload paymentResultRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Fail(r.Context(), userID, orderID, payload.Reference)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(*order))
	}
}

// PaymentTransactions lists capture attempts against one of the customer's
// orders.
func PaymentTransactions(paySvc paymentsvc.Service, orderSvc orderGetter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// Ownership check rides on the order service.
		if _, err := orderSvc.Get(r.Context(), actorFromRequest(r), orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		txns, err := paySvc.Transactions(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := make([]paymentTransactionResponse, 0, len(txns))
		for _, txn := range txns {
			resp = append(resp, newPaymentTransactionResponse(txn))
		}
		responses.WriteSuccess(w, resp)
	}
}
