package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/shopkartlabs/shopkart-backend/api/responses"
	"github.com/shopkartlabs/shopkart-backend/api/validators"
	locationsvc "github.com/shopkartlabs/shopkart-backend/internal/locations"
	"github.com/shopkartlabs/shopkart-backend/pkg/logger"
)

type createLocationRequest struct {
	Name                string           `json:"name" validate:"required,max=120"`
	City                string           `json:"city" validate:"required,max=80"`
	State               string           `json:"state" validate:"required,max=80"`
	Pincode             string           `json:"pincode" validate:"required"`
	Lat                 *float64         `json:"lat"`
	Lng                 *float64         `json:"lng"`
	DeliveryDays        int              `json:"deliveryDays" validate:"min=0"`
	CODAvailable        bool             `json:"codAvailable"`
	ExtraShippingCharge *decimal.Decimal `json:"extraShippingCharge"`
}

type updateLocationRequest struct {
	Name                *string          `json:"name" validate:"omitempty,max=120"`
	City                *string          `json:"city" validate:"omitempty,max=80"`
	State               *string          `json:"state" validate:"omitempty,max=80"`
	Pincode             *string          `json:"pincode"`
	Lat                 *float64         `json:"lat"`
	Lng                 *float64         `json:"lng"`
	IsActive            *bool            `json:"isActive"`
	DeliveryDays        *int             `json:"deliveryDays" validate:"omitempty,min=0"`
	CODAvailable        *bool            `json:"codAvailable"`
	ExtraShippingCharge *decimal.Decimal `json:"extraShippingCharge"`
}

func LocationList(svc locationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := locationsvc.ListFilters{
			Pincode:    validators.SanitizeString(r.URL.Query().Get("pincode"), 10),
			ActiveOnly: r.URL.Query().Get("active") == "true",
		}

		page, err := svc.List(r.Context(), filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, mapPage(page, newLocationResponse))
	}
}

func LocationCreate(svc locationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createLocationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := locationsvc.CreateInput{
			Name:         payload.Name,
			City:         payload.City,
			State:        payload.State,
			Pincode:      payload.Pincode,
			Lat:          payload.Lat,
			Lng:          payload.Lng,
			DeliveryDays: payload.DeliveryDays,
			CODAvailable: payload.CODAvailable,
		}
		if payload.ExtraShippingCharge != nil {
			input.ExtraShippingCharge = *payload.ExtraShippingCharge
		}

		location, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newLocationResponse(*location))
	}
}

func LocationUpdate(svc locationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locationID, err := validators.ParsePathUUID(chi.URLParam(r, "locationId"), "locationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateLocationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		location, err := svc.Update(r.Context(), locationID, locationsvc.UpdateInput{
			Name:                payload.Name,
			City:                payload.City,
			State:               payload.State,
			Pincode:             payload.Pincode,
			Lat:                 payload.Lat,
			Lng:                 payload.Lng,
			IsActive:            payload.IsActive,
			DeliveryDays:        payload.DeliveryDays,
			CODAvailable:        payload.CODAvailable,
			ExtraShippingCharge: payload.ExtraShippingCharge,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newLocationResponse(*location))
	}
}

func LocationDetail(svc locationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locationID, err := validators.ParsePathUUID(chi.URLParam(r, "locationId"), "locationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		location, err := svc.Get(r.Context(), locationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newLocationResponse(*location))
	}
}
