package payments

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopkartlabs/shopkart-backend/internal/cart"
	"github.com/shopkartlabs/shopkart-backend/internal/inventory"
	"github.com/shopkartlabs/shopkart-backend/internal/orders"
	"github.com/shopkartlabs/shopkart-backend/internal/products"
	"github.com/shopkartlabs/shopkart-backend/pkg/db"
	"github.com/shopkartlabs/shopkart-backend/pkg/db/models"
	"github.com/shopkartlabs/shopkart-backend/pkg/enums"
	pkgerrors "github.com/shopkartlabs/shopkart-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupPaymentTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:payments_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := []string{`
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
);`, `
CREATE TABLE IF NOT EXISTS product_inventory (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  location_id TEXT NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (product_id, location_id)
);`, `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  qty INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (user_id, product_id)
);`, `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  user_id TEXT NOT NULL,
  location_id TEXT NOT NULL,
  address_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'PENDING',
  payment_method TEXT NOT NULL,
  payment_status TEXT NOT NULL DEFAULT 'PENDING',
  subtotal NUMERIC NOT NULL DEFAULT 0,
  tax NUMERIC NOT NULL DEFAULT 0,
  shipping_charge NUMERIC NOT NULL DEFAULT 0,
  discount NUMERIC NOT NULL DEFAULT 0,
  total NUMERIC NOT NULL DEFAULT 0,
  delivery_name TEXT NOT NULL,
  delivery_phone TEXT NOT NULL,
  delivery_line1 TEXT NOT NULL,
  delivery_line2 TEXT,
  delivery_city TEXT NOT NULL,
  delivery_state TEXT NOT NULL,
  delivery_pincode TEXT NOT NULL,
  cancel_reason TEXT,
  cancelled_at DATETIME,
  shipped_at DATETIME,
  delivered_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  sku TEXT NOT NULL,
  price NUMERIC NOT NULL,
  tax_percent NUMERIC NOT NULL DEFAULT 0,
  qty INTEGER NOT NULL,
  line_total NUMERIC NOT NULL,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS payment_transactions (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  status TEXT NOT NULL,
  provider TEXT NOT NULL DEFAULT 'internal',
  reference TEXT,
  created_at DATETIME
);`}
	for _, stmt := range schema {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

type paymentFixture struct {
	conn       *gorm.DB
	svc        Service
	cart       cart.Service
	userID     uuid.UUID
	locationID uuid.UUID
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	conn := setupPaymentTestDB(t)
	runner := db.FromConn(conn)

	ledger, err := inventory.NewService(runner, inventory.NewRepository(conn), 5)
	require.NoError(t, err)
	catalogSvc, err := products.NewService(products.NewRepository(conn))
	require.NoError(t, err)
	cartSvc, err := cart.NewService(runner, cart.NewRepository(conn), catalogSvc)
	require.NoError(t, err)
	svc, err := NewService(runner, orders.NewRepository(conn), NewRepository(conn), ledger, cartSvc)
	require.NoError(t, err)

	return &paymentFixture{
		conn:       conn,
		svc:        svc,
		cart:       cartSvc,
		userID:     uuid.New(),
		locationID: uuid.New(),
	}
}

func (f *paymentFixture) seedProduct(t *testing.T, name string, price int64, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:       uuid.New(),
		SKU:      "SKU-" + uuid.NewString()[:8],
		Slug:     "slug-" + uuid.NewString()[:8],
		Name:     name,
		Category: "general",
		Price:    decimal.NewFromInt(price),
		MRP:      decimal.NewFromInt(price + 100),
		IsActive: true,
	}
	require.NoError(t, f.conn.Create(product).Error)
	require.NoError(t, f.conn.Create(&models.ProductInventory{
		ID: uuid.New(), ProductID: product.ID, LocationID: f.locationID, Stock: stock,
	}).Error)
	return product
}

func (f *paymentFixture) seedPendingPrepaidOrder(t *testing.T, product *models.Product, qty int) *models.Order {
	t.Helper()
	lineTotal := product.Price.Mul(decimal.NewFromInt(int64(qty)))
	order := &models.Order{
		ID:            uuid.New(),
		OrderNumber:   "ORD-" + uuid.NewString()[:8],
		UserID:        f.userID,
		LocationID:    f.locationID,
		AddressID:     uuid.New(),
		Status:        enums.OrderStatusPending,
		PaymentMethod: enums.PaymentMethodPrepaid,
		PaymentStatus: enums.PaymentStatusPending,
		Subtotal:      lineTotal,
		Total:         lineTotal,
		DeliveryName:  "Asha Rao", DeliveryPhone: "9876543210", DeliveryLine1: "12 MG Road",
		DeliveryCity: "Bengaluru", DeliveryState: "KA", DeliveryPincode: "560001",
		Items: []models.OrderItem{{
			ID: uuid.New(), ProductID: product.ID, ProductName: product.Name, SKU: product.SKU,
			Price: product.Price, Qty: qty, LineTotal: lineTotal,
		}},
	}
	require.NoError(t, f.conn.Create(order).Error)
	return order
}

func (f *paymentFixture) stockAt(t *testing.T, productID uuid.UUID) int {
	t.Helper()
	var record models.ProductInventory
	require.NoError(t, f.conn.First(&record, "product_id = ? AND location_id = ?", productID, f.locationID).Error)
	return record.Stock
}

func TestConfirmCapturesPayment(t *testing.T) {
	f := newPaymentFixture(t)
	product := f.seedProduct(t, "Headset", 3000, 5)
	order := f.seedPendingPrepaidOrder(t, product, 2)

	_, err := f.cart.Add(context.Background(), f.userID, product.ID, 2)
	require.NoError(t, err)

	captured, err := f.svc.Confirm(context.Background(), f.userID, order.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPlaced, captured.Status)
	assert.Equal(t, enums.PaymentStatusSuccess, captured.PaymentStatus)
	assert.Equal(t, 3, f.stockAt(t, product.ID), "stock committed at capture")

	lines, err := f.cart.Lines(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Empty(t, lines, "capture clears the cart")

	txns, err := f.svc.Transactions(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, enums.PaymentStatusSuccess, txns[0].Status)
	assert.True(t, txns[0].Amount.Equal(order.Total))
}

func TestConfirmFailsWhenStockGone(t *testing.T) {
	f := newPaymentFixture(t)
	product := f.seedProduct(t, "Console", 40000, 1)
	order := f.seedPendingPrepaidOrder(t, product, 2)

	_, err := f.svc.Confirm(context.Background(), f.userID, order.ID, nil)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeOutOfStock, typed.Code())
	assert.Contains(t, typed.Message(), "Console")

	var reloaded models.Order
	require.NoError(t, f.conn.First(&reloaded, "id = ?", order.ID).Error)
	assert.Equal(t, enums.OrderStatusPending, reloaded.Status, "failed capture rolls back")
	assert.Equal(t, enums.PaymentStatusPending, reloaded.PaymentStatus)
	assert.Equal(t, 1, f.stockAt(t, product.ID))

	txns, err := f.svc.Transactions(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Empty(t, txns, "no transaction recorded for a rolled-back capture")
}

func TestConfirmRejectsSettledOrder(t *testing.T) {
	f := newPaymentFixture(t)
	product := f.seedProduct(t, "Tablet", 25000, 5)
	order := f.seedPendingPrepaidOrder(t, product, 1)

	_, err := f.svc.Confirm(context.Background(), f.userID, order.ID, nil)
	require.NoError(t, err)

	_, err = f.svc.Confirm(context.Background(), f.userID, order.ID, nil)
	require.Error(t, err, "double capture")
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
	assert.Equal(t, 4, f.stockAt(t, product.ID), "stock taken exactly once")
}

func TestConfirmRejectsCODOrder(t *testing.T) {
	f := newPaymentFixture(t)
	product := f.seedProduct(t, "Mixer", 4000, 5)
	order := f.seedPendingPrepaidOrder(t, product, 1)
	require.NoError(t, f.conn.Model(&models.Order{}).
		Where("id = ?", order.ID).
		UpdateColumn("payment_method", enums.PaymentMethodCOD).Error)

	_, err := f.svc.Confirm(context.Background(), f.userID, order.ID, nil)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestConfirmOwnership(t *testing.T) {
	f := newPaymentFixture(t)
	product := f.seedProduct(t, "Watch", 9000, 5)
	order := f.seedPendingPrepaidOrder(t, product, 1)

	_, err := f.svc.Confirm(context.Background(), uuid.New(), order.ID, nil)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestFailLeavesOrderPendingAndRetryable(t *testing.T) {
	f := newPaymentFixture(t)
	product := f.seedProduct(t, "Speaker", 6000, 5)
	order := f.seedPendingPrepaidOrder(t, product, 1)

	failed, err := f.svc.Fail(context.Background(), f.userID, order.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPending, failed.Status)
	assert.Equal(t, enums.PaymentStatusFailed, failed.PaymentStatus)
	assert.Equal(t, 5, f.stockAt(t, product.ID), "no stock taken on failure")

	// A retry after failure can still settle the order.
	captured, err := f.svc.Confirm(context.Background(), f.userID, order.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusSuccess, captured.PaymentStatus)

	txns, err := f.svc.Transactions(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Len(t, txns, 2)
}
