package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shopkartlabs/shopkart-backend/api/responses"
	"github.com/shopkartlabs/shopkart-backend/api/validators"
	productsvc "github.com/shopkartlabs/shopkart-backend/internal/products"
	"github.com/shopkartlabs/shopkart-backend/pkg/logger"
)

// ProductList serves the public paginated catalog with search and category
// filters.
func ProductList(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := productsvc.ListFilters{
			Query:    validators.SanitizeString(r.URL.Query().Get("q"), 120),
			Category: validators.SanitizeString(r.URL.Query().Get("category"), 80),
		}

		page, err := svc.Browse(r.Context(), filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, mapPage(page, newProductResponse))
	}
}

// ProductDetail resolves a product by id or slug.
func ProductDetail(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := validators.SanitizeString(chi.URLParam(r, "productRef"), 120)
		product, err := svc.GetActive(r.Context(), ref)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newProductResponse(*product))
	}
}

func ProductCategories(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := svc.Categories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}
