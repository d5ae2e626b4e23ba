package products

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/shopkartlabs/shopkart-backend/pkg/db/models"
	pkgerrors "github.com/shopkartlabs/shopkart-backend/pkg/errors"
	"github.com/shopkartlabs/shopkart-backend/pkg/pagination"
	"github.com/shopspring/decimal"
)

var slugCleanup = regexp.MustCompile(`[^a-z0-9]+`)

// Service manages the product catalog. Public reads only surface active
// products; admin operations see everything.
type Service interface {
	Browse(ctx context.Context, filters ListFilters, params pagination.Params) (pagination.Page[models.Product], error)
	GetActive(ctx context.Context, ref string) (*models.Product, error)
	Categories(ctx context.Context) ([]string, error)

	AdminList(ctx context.Context, filters ListFilters, params pagination.Params) (pagination.Page[models.Product], error)
	AdminGet(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Create(ctx context.Context, input CreateInput) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Product, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*models.Product, error)
}

// CreateInput captures an admin catalog create request.
type CreateInput struct {
	SKU             string
	Slug            string
	Name            string
	Description     *string
	Brand           *string
	Category        string
	Price           decimal.Decimal
	MRP             decimal.Decimal
	TaxPercent      decimal.Decimal
	DiscountPercent decimal.Decimal
	ImageURL        *string
	CODAvailable    bool
	Returnable      bool
}

// UpdateInput carries partial updates; nil fields are left unchanged.
type UpdateInput struct {
	Name            *string
	Description     *string
	Brand           *string
	Category        *string
	Price           *decimal.Decimal
	MRP             *decimal.Decimal
	TaxPercent      *decimal.Decimal
	DiscountPercent *decimal.Decimal
	ImageURL        *string
	CODAvailable    *bool
	Returnable      *bool
}

type service struct {
	repo Repository
}

// NewService wires the catalog service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Browse(ctx context.Context, filters ListFilters, params pagination.Params) (pagination.Page[models.Product], error) {
	filters.ActiveOnly = true
	return s.list(ctx, filters, params)
}

func (s *service) AdminList(ctx context.Context, filters ListFilters, params pagination.Params) (pagination.Page[models.Product], error) {
	return s.list(ctx, filters, params)
}

func (s *service) list(ctx context.Context, filters ListFilters, params pagination.Params) (pagination.Page[models.Product], error) {
	records, total, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return pagination.Page[models.Product]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing products")
	}
	return pagination.NewPage(records, params, total), nil
}

// GetActive resolves ref as a product id first, then as a slug, and only
// returns active products.
func (s *service) GetActive(ctx context.Context, ref string) (*models.Product, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product reference is required")
	}

	var (
		product *models.Product
		err     error
	)
	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		product, err = s.repo.FindByID(ctx, id)
	} else {
		product, err = s.repo.FindBySlug(ctx, ref)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	if product == nil || !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func (s *service) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing categories")
	}
	return categories, nil
}

func (s *service) AdminGet(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Product, error) {
	if strings.TrimSpace(input.SKU) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(input.Category) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	if err := validatePricing(input.Price, input.MRP, input.TaxPercent, input.DiscountPercent); err != nil {
		return nil, err
	}

	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = Slugify(input.Name)
	}

	if existing, err := s.repo.FindBySKU(ctx, strings.TrimSpace(input.SKU)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking sku")
	} else if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "sku already exists")
	}
	if existing, err := s.repo.FindBySlug(ctx, slug); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking slug")
	} else if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "slug already exists")
	}

	product := &models.Product{
		ID:              uuid.New(),
		SKU:             strings.TrimSpace(input.SKU),
		Slug:            slug,
		Name:            strings.TrimSpace(input.Name),
		Description:     input.Description,
		Brand:           input.Brand,
		Category:        strings.TrimSpace(input.Category),
		Price:           input.Price,
		MRP:             input.MRP,
		TaxPercent:      input.TaxPercent,
		DiscountPercent: input.DiscountPercent,
		ImageURL:        input.ImageURL,
		CODAvailable:    input.CODAvailable,
		Returnable:      input.Returnable,
		IsActive:        true,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating product")
	}
	return product, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Product, error) {
	product, err := s.AdminGet(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name must not be empty")
		}
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Brand != nil {
		product.Brand = input.Brand
	}
	if input.Category != nil {
		if strings.TrimSpace(*input.Category) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category must not be empty")
		}
		product.Category = strings.TrimSpace(*input.Category)
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.MRP != nil {
		product.MRP = *input.MRP
	}
	if input.TaxPercent != nil {
		product.TaxPercent = *input.TaxPercent
	}
	if input.DiscountPercent != nil {
		product.DiscountPercent = *input.DiscountPercent
	}
	if err := validatePricing(product.Price, product.MRP, product.TaxPercent, product.DiscountPercent); err != nil {
		return nil, err
	}
	if input.ImageURL != nil {
		product.ImageURL = input.ImageURL
	}
	if input.CODAvailable != nil {
		product.CODAvailable = *input.CODAvailable
	}
	if input.Returnable != nil {
		product.Returnable = *input.Returnable
	}

	if err := s.repo.Save(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving product")
	}
	return product, nil
}

func (s *service) SetActive(ctx context.Context, id uuid.UUID, active bool) (*models.Product, error) {
	product, err := s.AdminGet(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.IsActive == active {
		return product, nil
	}
	product.IsActive = active
	if err := s.repo.Save(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving product")
	}
	return product, nil
}

func validatePricing(price, mrp, taxPercent, discountPercent decimal.Decimal) error {
	if price.IsNegative() || price.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if mrp.LessThan(price) {
		return pkgerrors.New(pkgerrors.CodeValidation, "mrp must not be below price")
	}
	if taxPercent.IsNegative() || taxPercent.GreaterThan(decimal.NewFromInt(100)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "tax percent must be between 0 and 100")
	}
	if discountPercent.IsNegative() || discountPercent.GreaterThan(decimal.NewFromInt(100)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount percent must be between 0 and 100")
	}
	return nil
}

// Slugify lowercases the name and collapses runs of non-alphanumerics into
// single hyphens.
func Slugify(name string) string {
	slug := slugCleanup.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	return strings.Trim(slug, "-")
}
