package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shopkartlabs/shopkart-backend/api/responses"
	"github.com/shopkartlabs/shopkart-backend/api/validators"
	locationsvc "github.com/shopkartlabs/shopkart-backend/internal/locations"
	"github.com/shopkartlabs/shopkart-backend/pkg/logger"
)

// ServiceabilityCheck reports whether any active location delivers to the
// pincode, with delivery days and COD availability when it does.
func ServiceabilityCheck(svc locationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pincode := validators.SanitizeString(chi.URLParam(r, "pincode"), 10)

		result, err := svc.CheckPincode(r.Context(), pincode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
