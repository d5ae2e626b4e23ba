package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/shopkartlabs/shopkart-backend/api/responses"
	"github.com/shopkartlabs/shopkart-backend/api/validators"
	productsvc "github.com/shopkartlabs/shopkart-backend/internal/products"
	"github.com/shopkartlabs/shopkart-backend/pkg/logger"
)

type createProductRequest struct {
	SKU             string          `json:"sku" validate:"required,max=60"`
	Slug            string          `json:"slug" validate:"omitempty,max=140"`
	Name            string          `json:"name" validate:"required,max=200"`
	Description     *string         `json:"description"`
	Brand           *string         `json:"brand" validate:"omitempty,max=120"`
	Category        string          `json:"category" validate:"required,max=80"`
	Price           decimal.Decimal `json:"price" validate:"required"`
	MRP             decimal.Decimal `json:"mrp" validate:"required"`
	TaxPercent      decimal.Decimal `json:"taxPercent"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	ImageURL        *string         `json:"imageUrl"`
	CODAvailable    bool            `json:"codAvailable"`
	Returnable      bool            `json:"returnable"`
}

type updateProductRequest struct {
	Name            *string          `json:"name" validate:"omitempty,max=200"`
	Description     *string          `json:"description"`
	Brand           *string          `json:"brand" validate:"omitempty,max=120"`
	Category        *string          `json:"category" validate:"omitempty,max=80"`
	Price           *decimal.Decimal `json:"price"`
	MRP             *decimal.Decimal `json:"mrp"`
	TaxPercent      *decimal.Decimal `json:"taxPercent"`
	DiscountPercent *decimal.Decimal `json:"discountPercent"`
	ImageURL        *string          `json:"imageUrl"`
	CODAvailable    *bool            `json:"codAvailable"`
	Returnable      *bool            `json:"returnable"`
}

type setProductActiveRequest struct {
	Active bool `json:"active"`
}

func AdminProductList(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		page, err := svc.AdminList(r.Context(), filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, mapPage(page, newProductResponse))
	}
}

func AdminProductDetail(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParsePathUUID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.AdminGet(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newProductResponse(*product))
	}
}

func AdminProductCreate(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), productsvc.CreateInput{
			SKU:             payload.SKU,
			Slug:            payload.Slug,
			Name:            payload.Name,
			Description:     payload.Description,
			Brand:           payload.Brand,
			Category:        payload.Category,
			Price:           payload.Price,
			MRP:             payload.MRP,
			TaxPercent:      payload.TaxPercent,
			DiscountPercent: payload.DiscountPercent,
			ImageURL:        payload.ImageURL,
			CODAvailable:    payload.CODAvailable,
			Returnable:      payload.Returnable,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newProductResponse(*product))
	}
}

func AdminProductUpdate(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParsePathUUID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), productID, productsvc.UpdateInput{
			Name:            payload.Name,
			Description:     payload.Description,
			Brand:           payload.Brand,
			Category:        payload.Category,
			Price:           payload.Price,
			MRP:             payload.MRP,
			TaxPercent:      payload.TaxPercent,
			DiscountPercent: payload.DiscountPercent,
			ImageURL:        payload.ImageURL,
			CODAvailable:    payload.CODAvailable,
			Returnable:      payload.Returnable,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newProductResponse(*product))
	}
}

// AdminProductSetActive toggles catalog visibility without deleting history.
func AdminProductSetActive(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParsePathUUID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setProductActiveRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.SetActive(r.Context(), productID, payload.Active)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newProductResponse(*product))
	}
}
