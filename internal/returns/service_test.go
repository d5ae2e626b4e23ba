package returns

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopkartlabs/shopkart-backend/internal/inventory"
	"github.com/shopkartlabs/shopkart-backend/internal/orders"
	"github.com/shopkartlabs/shopkart-backend/pkg/db"
	"github.com/shopkartlabs/shopkart-backend/pkg/db/models"
	"github.com/shopkartlabs/shopkart-backend/pkg/enums"
	pkgerrors "github.com/shopkartlabs/shopkart-backend/pkg/errors"
	"github.com/shopkartlabs/shopkart-backend/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupReturnTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:returns_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := []string{`
CREATE TABLE IF NOT EXISTS product_inventory (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  location_id TEXT NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (product_id, location_id)
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
CREATE TABLE IF NOT EXISTS order_returns (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  order_item_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  qty INTEGER NOT NULL,
  reason TEXT NOT NULL,
  comment TEXT,
  status TEXT NOT NULL DEFAULT 'REQUESTED',
  admin_comment TEXT,
  refund_amount NUMERIC,
  resolved_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`}
	for _, stmt := range schema {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

type returnFixture struct {
	conn       *gorm.DB
	userID     uuid.UUID
	locationID uuid.UUID
}

func newReturnFixture(t *testing.T) *returnFixture {
	t.Helper()
	return &returnFixture{
		conn:       setupReturnTestDB(t),
		userID:     uuid.New(),
		locationID: uuid.New(),
	}
}

func (f *returnFixture) newService(t *testing.T, policy Policy) Service {
	t.Helper()
	runner := db.FromConn(f.conn)
	ledger, err := inventory.NewService(runner, inventory.NewRepository(f.conn), 5)
	require.NoError(t, err)
	svc, err := NewService(runner, NewRepository(f.conn), orders.NewRepository(f.conn), ledger, policy)
	require.NoError(t, err)
	return svc
}

func (f *returnFixture) seedDeliveredOrder(t *testing.T, qty int, deliveredAgo time.Duration) (*models.Order, *models.OrderItem) {
	t.Helper()
	productID := uuid.New()
	require.NoError(t, f.conn.Create(&models.ProductInventory{
		ID: uuid.New(), ProductID: productID, LocationID: f.locationID, Stock: 10,
	}).Error)

	deliveredAt := time.Now().UTC().Add(-deliveredAgo)
	order := &models.Order{
		ID:            uuid.New(),
		OrderNumber:   "ORD-" + uuid.NewString()[:8],
		UserID:        f.userID,
		LocationID:    f.locationID,
		AddressID:     uuid.New(),
		Status:        enums.OrderStatusDelivered,
		PaymentMethod: enums.PaymentMethodCOD,
		PaymentStatus: enums.PaymentStatusSuccess,
		DeliveryName:  "Asha Rao", DeliveryPhone: "9876543210", DeliveryLine1: "12 MG Road",
		DeliveryCity: "Bengaluru", DeliveryState: "KA", DeliveryPincode: "560001",
		DeliveredAt: &deliveredAt,
		Items: []models.OrderItem{{
			ID: uuid.New(), ProductID: productID, ProductName: "Juicer", SKU: "SKU-J",
			Price: decimal.NewFromInt(2500), Qty: qty,
			LineTotal: decimal.NewFromInt(2500).Mul(decimal.NewFromInt(int64(qty))),
		}},
	}
	require.NoError(t, f.conn.Create(order).Error)
	return order, &order.Items[0]
}

func (f *returnFixture) stock(t *testing.T, productID uuid.UUID) int {
	t.Helper()
	var record models.ProductInventory
	require.NoError(t, f.conn.First(&record, "product_id = ? AND location_id = ?", productID, f.locationID).Error)
	return record.Stock
}

func TestCreateMarksOrderReturnRequested(t *testing.T) {
	f := newReturnFixture(t)
	svc := f.newService(t, Policy{})
	_, item := f.seedDeliveredOrder(t, 3, time.Hour)

	ret, err := svc.Create(context.Background(), CreateInput{
		UserID:      f.userID,
		OrderItemID: item.ID,
		Qty:         2,
		Reason:      "DAMAGED",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.ReturnStatusRequested, ret.Status)

	var order models.Order
	require.NoError(t, f.conn.First(&order, "id = ?", ret.OrderID).Error)
	assert.Equal(t, enums.OrderStatusReturnRequested, order.Status)
}

func TestCreateSecondReturnKeepsOrderStatus(t *testing.T) {
	f := newReturnFixture(t)
	svc := f.newService(t, Policy{})
	_, item := f.seedDeliveredOrder(t, 3, time.Hour)

	_, err := svc.Create(context.Background(), CreateInput{
		UserID: f.userID, OrderItemID: item.ID, Qty: 1, Reason: "DAMAGED",
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateInput{
		UserID: f.userID, OrderItemID: item.ID, Qty: 1, Reason: "DEFECTIVE",
	})
	require.NoError(t, err, "further returns are allowed while in the return flow")
}

func TestCreateRejectsOverQuantity(t *testing.T) {
	f := newReturnFixture(t)
	svc := f.newService(t, Policy{})
	_, item := f.seedDeliveredOrder(t, 2, time.Hour)

	_, err := svc.Create(context.Background(), CreateInput{
		UserID: f.userID, OrderItemID: item.ID, Qty: 3, Reason: "DAMAGED",
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	// Cumulative: 1 already requested, 2 more would exceed the purchase.
	_, err = svc.Create(context.Background(), CreateInput{
		UserID: f.userID, OrderItemID: item.ID, Qty: 1, Reason: "DAMAGED",
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateInput{
		UserID: f.userID, OrderItemID: item.ID, Qty: 2, Reason: "DAMAGED",
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCreateRejectsUndeliveredOrder(t *testing.T) {
	f := newReturnFixture(t)
	svc := f.newService(t, Policy{})
	order, item := f.seedDeliveredOrder(t, 2, time.Hour)
	require.NoError(t, f.conn.Model(&models.Order{}).
		Where("id = ?", order.ID).
		UpdateColumn("status", enums.OrderStatusShipped).Error)

	_, err := svc.Create(context.Background(), CreateInput{
		UserID: f.userID, OrderItemID: item.ID, Qty: 1, Reason: "DAMAGED",
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestCreateRejectsClosedWindow(t *testing.T) {
	f := newReturnFixture(t)
	svc := f.newService(t, Policy{RequestWindow: 7 * 24 * time.Hour})
	_, item := f.seedDeliveredOrder(t, 2, 8*24*time.Hour)

	_, err := svc.Create(context.Background(), CreateInput{
		UserID: f.userID, OrderItemID: item.ID, Qty: 1, Reason: "DAMAGED",
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCreateOwnership(t *testing.T) {
	f := newReturnFixture(t)
	svc := f.newService(t, Policy{})
	_, item := f.seedDeliveredOrder(t, 2, time.Hour)

	_, err := svc.Create(context.Background(), CreateInput{
		UserID: uuid.New(), OrderItemID: item.ID, Qty: 1, Reason: "DAMAGED",
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestResolveApproveThenRefund(t *testing.T) {
	f := newReturnFixture(t)
	svc := f.newService(t, Policy{})
	_, item := f.seedDeliveredOrder(t, 2, time.Hour)

	ret, err := svc.Create(context.Background(), CreateInput{
		UserID: f.userID, OrderItemID: item.ID, Qty: 1, Reason: "DEFECTIVE",
	})
	require.NoError(t, err)

	comment := "verified by support"
	approved, err := svc.Resolve(context.Background(), ret.ID, ResolveInput{
		Status: "APPROVED", AdminComment: &comment,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.ReturnStatusApproved, approved.Status)
	assert.Nil(t, approved.ResolvedAt)

	refund := decimal.NewFromInt(2500)
	refunded, err := svc.Resolve(context.Background(), ret.ID, ResolveInput{
		Status: "REFUNDED", RefundAmount: &refund,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.ReturnStatusRefunded, refunded.Status)
	require.NotNil(t, refunded.ResolvedAt)
	require.NotNil(t, refunded.RefundAmount)
	assert.True(t, refunded.RefundAmount.Equal(refund))
}

func TestResolveRejectsIllegalTransition(t *testing.T) {
	f := newReturnFixture(t)
	svc := f.newService(t, Policy{})
	_, item := f.seedDeliveredOrder(t, 2, time.Hour)

	ret, err := svc.Create(context.Background(), CreateInput{
		UserID: f.userID, OrderItemID: item.ID, Qty: 1, Reason: "OTHER",
	})
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), ret.ID, ResolveInput{Status: "REFUNDED"})
	require.Error(t, err, "REQUESTED cannot jump to REFUNDED")
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())

	_, err = svc.Resolve(context.Background(), ret.ID, ResolveInput{Status: "REJECTED"})
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), ret.ID, ResolveInput{Status: "APPROVED"})
	require.Error(t, err, "rejected is terminal")
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestResolveRestocksWhenPolicyEnabled(t *testing.T) {
	f := newReturnFixture(t)
	svc := f.newService(t, Policy{RestockOnApproval: true})
	_, item := f.seedDeliveredOrder(t, 2, time.Hour)

	ret, err := svc.Create(context.Background(), CreateInput{
		UserID: f.userID, OrderItemID: item.ID, Qty: 2, Reason: "WRONG_ITEM",
	})
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), ret.ID, ResolveInput{Status: "APPROVED"})
	require.NoError(t, err)
	assert.Equal(t, 12, f.stock(t, item.ProductID), "10 on hand + 2 restocked")
}

func TestResolveDefaultPolicySkipsRestock(t *testing.T) {
	f := newReturnFixture(t)
	svc := f.newService(t, Policy{})
	_, item := f.seedDeliveredOrder(t, 2, time.Hour)

	ret, err := svc.Create(context.Background(), CreateInput{
		UserID: f.userID, OrderItemID: item.ID, Qty: 2, Reason: "WRONG_ITEM",
	})
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), ret.ID, ResolveInput{Status: "APPROVED"})
	require.NoError(t, err)
	assert.Equal(t, 10, f.stock(t, item.ProductID))
}

func TestMyReturnsAndAdminFilters(t *testing.T) {
	f := newReturnFixture(t)
	svc := f.newService(t, Policy{})
	_, item := f.seedDeliveredOrder(t, 3, time.Hour)

	first, err := svc.Create(context.Background(), CreateInput{
		UserID: f.userID, OrderItemID: item.ID, Qty: 1, Reason: "DAMAGED",
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateInput{
		UserID: f.userID, OrderItemID: item.ID, Qty: 1, Reason: "OTHER",
	})
	require.NoError(t, err)
	_, err = svc.Resolve(context.Background(), first.ID, ResolveInput{Status: "APPROVED"})
	require.NoError(t, err)

	mine, err := svc.MyReturns(context.Background(), f.userID, pagination.Params{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), mine.TotalElements)

	approved := enums.ReturnStatusApproved
	page, err := svc.AdminList(context.Background(), ListFilters{Status: &approved}, pagination.Params{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalElements)
}
