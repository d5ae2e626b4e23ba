package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/shopkartlabs/shopkart-backend/api/middleware"
	"github.com/shopkartlabs/shopkart-backend/api/responses"
	"github.com/shopkartlabs/shopkart-backend/api/validators"
	returnsvc "github.com/shopkartlabs/shopkart-backend/internal/returns"
	"github.com/shopkartlabs/shopkart-backend/pkg/logger"
)

type createReturnRequest struct {
	OrderItemID uuid.UUID `json:"orderItemId" validate:"required"`
	Qty         int       `json:"qty" validate:"required,gt=0"`
	Reason      string    `json:"reason" validate:"required"`
	Comment     *string   `json:"comment" validate:"omitempty,max=500"`
}

// ReturnCreate opens a return request against one delivered order item.
func ReturnCreate(svc returnsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserUUIDFromContext(r.Context())

		var payload createReturnRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ret, err := svc.Create(r.Context(), returnsvc.CreateInput{
			UserID:      userID,
			OrderItemID: payload.OrderItemID,
			Qty:         payload.Qty,
			Reason:      payload.Reason,
			Comment:     payload.Comment,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newReturnResponse(*ret))
	}
}

func ReturnList(svc returnsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserUUIDFromContext(r.Context())

		params, err := validators.ParsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.MyReturns(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, mapPage(page, newReturnResponse))
	}
}
