package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopkartlabs/shopkart-backend/pkg/db/models"
	pkgerrors "github.com/shopkartlabs/shopkart-backend/pkg/errors"
	"github.com/shopkartlabs/shopkart-backend/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupProductTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:products_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  sku TEXT NOT NULL UNIQUE,
  slug TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  description TEXT,
  brand TEXT,
  category TEXT NOT NULL,
  price NUMERIC NOT NULL,
  mrp NUMERIC NOT NULL,
  tax_percent NUMERIC NOT NULL DEFAULT 0,
  discount_percent NUMERIC NOT NULL DEFAULT 0,
  stock INTEGER NOT NULL DEFAULT 0,
  image_url TEXT,
  cod_available INTEGER NOT NULL DEFAULT 1,
  returnable INTEGER NOT NULL DEFAULT 1,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(schema).Error)
	return conn
}

func newProductService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	return svc
}

func validCreateInput(sku string) CreateInput {
	return CreateInput{
		SKU:        sku,
		Name:       "Wireless Mouse",
		Category:   "electronics",
		Price:      decimal.NewFromInt(799),
		MRP:        decimal.NewFromInt(999),
		TaxPercent: decimal.NewFromInt(18),
	}
}

func TestCreateGeneratesSlug(t *testing.T) {
	conn := setupProductTestDB(t)
	svc := newProductService(t, conn)

	created, err := svc.Create(context.Background(), validCreateInput("SKU-1001"))
	require.NoError(t, err)
	assert.Equal(t, "wireless-mouse", created.Slug)
	assert.True(t, created.IsActive)
}

func TestCreateRejectsDuplicateSKUAndSlug(t *testing.T) {
	conn := setupProductTestDB(t)
	svc := newProductService(t, conn)

	_, err := svc.Create(context.Background(), validCreateInput("SKU-2001"))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), validCreateInput("SKU-2001"))
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	input := validCreateInput("SKU-2002")
	_, err = svc.Create(context.Background(), input)
	require.Error(t, err, "same name produces same slug")
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestCreatePricingValidation(t *testing.T) {
	conn := setupProductTestDB(t)
	svc := newProductService(t, conn)

	input := validCreateInput("SKU-3001")
	input.Price = decimal.Zero
	_, err := svc.Create(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	input = validCreateInput("SKU-3002")
	input.MRP = decimal.NewFromInt(100)
	_, err = svc.Create(context.Background(), input)
	require.Error(t, err, "mrp below price")
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestGetActiveByIDAndSlug(t *testing.T) {
	conn := setupProductTestDB(t)
	svc := newProductService(t, conn)

	created, err := svc.Create(context.Background(), validCreateInput("SKU-4001"))
	require.NoError(t, err)

	byID, err := svc.GetActive(context.Background(), created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created.ID, byID.ID)

	bySlug, err := svc.GetActive(context.Background(), created.Slug)
	require.NoError(t, err)
	assert.Equal(t, created.ID, bySlug.ID)
}

func TestGetActiveHidesDeactivated(t *testing.T) {
	conn := setupProductTestDB(t)
	svc := newProductService(t, conn)

	created, err := svc.Create(context.Background(), validCreateInput("SKU-5001"))
	require.NoError(t, err)

	_, err = svc.SetActive(context.Background(), created.ID, false)
	require.NoError(t, err)

	_, err = svc.GetActive(context.Background(), created.ID.String())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	reloaded, err := svc.AdminGet(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsActive, "admin reads still see the product")
}

func TestBrowseFiltersInactiveAndMatchesQuery(t *testing.T) {
	conn := setupProductTestDB(t)
	svc := newProductService(t, conn)

	require.NoError(t, conn.Create(&models.Product{
		ID: uuid.New(), SKU: "SKU-A", Slug: "usb-hub", Name: "USB Hub", Category: "electronics",
		Price: decimal.NewFromInt(500), MRP: decimal.NewFromInt(600), IsActive: true,
	}).Error)
	require.NoError(t, conn.Create(&models.Product{
		ID: uuid.New(), SKU: "SKU-B", Slug: "usb-cable", Name: "USB Cable", Category: "electronics",
		Price: decimal.NewFromInt(150), MRP: decimal.NewFromInt(200), IsActive: false,
	}).Error)
	require.NoError(t, conn.Create(&models.Product{
		ID: uuid.New(), SKU: "SKU-C", Slug: "yoga-mat", Name: "Yoga Mat", Category: "fitness",
		Price: decimal.NewFromInt(900), MRP: decimal.NewFromInt(1100), IsActive: true,
	}).Error)

	page, err := svc.Browse(context.Background(), ListFilters{}, pagination.Params{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalElements, "inactive products are hidden")

	page, err = svc.Browse(context.Background(), ListFilters{Query: "usb"}, pagination.Params{})
	require.NoError(t, err)
	require.Equal(t, int64(1), page.TotalElements)
	assert.Equal(t, "USB Hub", page.Content[0].Name)

	page, err = svc.Browse(context.Background(), ListFilters{Category: "fitness"}, pagination.Params{})
	require.NoError(t, err)
	require.Equal(t, int64(1), page.TotalElements)
	assert.Equal(t, "Yoga Mat", page.Content[0].Name)
}

func TestUpdatePartial(t *testing.T) {
	conn := setupProductTestDB(t)
	svc := newProductService(t, conn)

	created, err := svc.Create(context.Background(), validCreateInput("SKU-6001"))
	require.NoError(t, err)

	price := decimal.NewFromInt(899)
	returnable := false
	updated, err := svc.Update(context.Background(), created.ID, UpdateInput{
		Price:      &price,
		Returnable: &returnable,
	})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(price))
	assert.False(t, updated.Returnable)
	assert.Equal(t, created.Name, updated.Name)
}

func TestUpdateRejectsBrokenPricing(t *testing.T) {
	conn := setupProductTestDB(t)
	svc := newProductService(t, conn)

	created, err := svc.Create(context.Background(), validCreateInput("SKU-7001"))
	require.NoError(t, err)

	price := decimal.NewFromInt(5000)
	_, err = svc.Update(context.Background(), created.ID, UpdateInput{Price: &price})
	require.Error(t, err, "price raised above mrp")
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCategoriesListsActiveDistinct(t *testing.T) {
	conn := setupProductTestDB(t)
	svc := newProductService(t, conn)

	for i, cat := range []string{"books", "books", "toys"} {
		require.NoError(t, conn.Create(&models.Product{
			ID: uuid.New(), SKU: uuid.NewString(), Slug: uuid.NewString(), Name: "Item", Category: cat,
			Price: decimal.NewFromInt(int64(100 + i)), MRP: decimal.NewFromInt(int64(200 + i)), IsActive: true,
		}).Error)
	}

	categories, err := svc.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"books", "toys"}, categories)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "wireless-mouse", Slugify("  Wireless Mouse "))
	assert.Equal(t, "4k-tv-55", Slugify("4K TV (55\")"))
	assert.Equal(t, "cafe-com-leite", Slugify("cafe com   leite"))
}
