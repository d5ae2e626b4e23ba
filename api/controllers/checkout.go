package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/shopkartlabs/shopkart-backend/api/middleware"
	"github.com/shopkartlabs/shopkart-backend/api/responses"
	"github.com/shopkartlabs/shopkart-backend/api/validators"
	checkoutsvc "github.com/shopkartlabs/shopkart-backend/internal/checkout"
	"github.com/shopkartlabs/shopkart-backend/pkg/enums"
	pkgerrors "github.com/shopkartlabs/shopkart-backend/pkg/errors"
	"github.com/shopkartlabs/shopkart-backend/pkg/logger"
)

type checkoutRequest struct {
	AddressID     uuid.UUID          `json:"addressId" validate:"required"`
	PaymentMethod string             `json:"paymentMethod" validate:"required"`
	Items         []checkoutsvc.Line `json:"items" validate:"omitempty,dive"`
}

// Checkout places an order from the cart, or from explicit lines when the
// request carries them.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserUUIDFromContext(r.Context())

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(payload.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method"))
			return
		}

		result, err := svc.Checkout(r.Context(), checkoutsvc.Input{
			UserID:        userID,
			AddressID:     payload.AddressID,
			PaymentMethod: method,
			Lines:         payload.Items,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
