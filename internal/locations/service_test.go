package locations

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

func setupLocationTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:locations_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS locations (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  city TEXT NOT NULL,
  state TEXT NOT NULL,
  pincode TEXT NOT NULL,
  lat NUMERIC,
  lng NUMERIC,
  is_active INTEGER NOT NULL DEFAULT 1,
  delivery_days INTEGER NOT NULL DEFAULT 3,
  cod_available INTEGER NOT NULL DEFAULT 1,
  extra_shipping_charge NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(schema).Error)
	return conn
}

func newLocationService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	return svc
}

func TestCreateAppliesDefaults(t *testing.T) {
	conn := setupLocationTestDB(t)
	svc := newLocationService(t, conn)

	created, err := svc.Create(context.Background(), CreateInput{
		Name:    "Bengaluru Hub",
		City:    "Bengaluru",
		State:   "KA",
		Pincode: "560001",
	})
	require.NoError(t, err)
	assert.True(t, created.IsActive)
	assert.Equal(t, 3, created.DeliveryDays)
	assert.True(t, created.ExtraShippingCharge.IsZero())
}

func TestCreateRejectsBadPincode(t *testing.T) {
	conn := setupLocationTestDB(t)
	svc := newLocationService(t, conn)

	for _, pincode := range []string{"", "12345", "0123456", "56O001"} {
		_, err := svc.Create(context.Background(), CreateInput{
			Name:    "Hub",
			City:    "Pune",
			State:   "MH",
			Pincode: pincode,
		})
		require.Error(t, err, "pincode %q must be rejected", pincode)
		assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	}
}

func TestUpdatePartialFields(t *testing.T) {
	conn := setupLocationTestDB(t)
	svc := newLocationService(t, conn)

	created, err := svc.Create(context.Background(), CreateInput{
		Name:         "Delhi Hub",
		City:         "Delhi",
		State:        "DL",
		Pincode:      "110001",
		DeliveryDays: 2,
		CODAvailable: true,
	})
	require.NoError(t, err)

	inactive := false
	days := 5
	charge := decimal.NewFromInt(49)
	updated, err := svc.Update(context.Background(), created.ID, UpdateInput{
		IsActive:            &inactive,
		DeliveryDays:        &days,
		ExtraShippingCharge: &charge,
	})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, 5, updated.DeliveryDays)
	assert.True(t, updated.ExtraShippingCharge.Equal(charge))
	assert.Equal(t, "Delhi Hub", updated.Name, "untouched fields keep their values")
}

func TestUpdateUnknownLocation(t *testing.T) {
	conn := setupLocationTestDB(t)
	svc := newLocationService(t, conn)

	name := "Ghost"
	_, err := svc.Update(context.Background(), uuid.New(), UpdateInput{Name: &name})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestCheckPincodeServiceableAndNot(t *testing.T) {
	conn := setupLocationTestDB(t)
	svc := newLocationService(t, conn)

	_, err := svc.Create(context.Background(), CreateInput{
		Name:                "Mumbai Hub",
		City:                "Mumbai",
		State:               "MH",
		Pincode:             "400001",
		DeliveryDays:        2,
		CODAvailable:        true,
		ExtraShippingCharge: decimal.NewFromInt(20),
	})
	require.NoError(t, err)

	result, err := svc.CheckPincode(context.Background(), "400001")
	require.NoError(t, err)
	assert.True(t, result.Serviceable)
	assert.Equal(t, 2, result.DeliveryDays)
	assert.True(t, result.CODAvailable)

	result, err = svc.CheckPincode(context.Background(), "400099")
	require.NoError(t, err)
	assert.False(t, result.Serviceable)
}

func TestResolvePincodeSkipsInactiveLocations(t *testing.T) {
	conn := setupLocationTestDB(t)
	svc := newLocationService(t, conn)

	created, err := svc.Create(context.Background(), CreateInput{
		Name:    "Chennai Hub",
		City:    "Chennai",
		State:   "TN",
		Pincode: "600001",
	})
	require.NoError(t, err)

	resolved, err := svc.ResolvePincode(context.Background(), "600001")
	require.NoError(t, err)
	assert.Equal(t, created.ID, resolved.ID)

	inactive := false
	_, err = svc.Update(context.Background(), created.ID, UpdateInput{IsActive: &inactive})
	require.NoError(t, err)

	_, err = svc.ResolvePincode(context.Background(), "600001")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestListFiltersActiveOnly(t *testing.T) {
	conn := setupLocationTestDB(t)
	svc := newLocationService(t, conn)

	require.NoError(t, conn.Create(&models.Location{
		ID: uuid.New(), Name: "Active", City: "Pune", State: "MH", Pincode: "411001", IsActive: true,
	}).Error)
	require.NoError(t, conn.Create(&models.Location{
		ID: uuid.New(), Name: "Dormant", City: "Pune", State: "MH", Pincode: "411002", IsActive: false,
	}).Error)

	page, err := svc.List(context.Background(), ListFilters{}, pagination.Params{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalElements)

	page, err = svc.List(context.Background(), ListFilters{ActiveOnly: true}, pagination.Params{})
	require.NoError(t, err)
	require.Equal(t, int64(1), page.TotalElements)
	assert.Equal(t, "Active", page.Content[0].Name)
}
