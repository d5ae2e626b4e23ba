package addresses

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopkartlabs/shopkart-backend/pkg/db"
	"github.com/shopkartlabs/shopkart-backend/pkg/enums"
	pkgerrors "github.com/shopkartlabs/shopkart-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAddressTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:addresses_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS user_addresses (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  name TEXT NOT NULL,
  phone TEXT NOT NULL,
  line1 TEXT NOT NULL,
  line2 TEXT,
  landmark TEXT,
  city TEXT NOT NULL,
  state TEXT NOT NULL,
  pincode TEXT NOT NULL,
  country TEXT NOT NULL DEFAULT 'IN',
  type TEXT NOT NULL DEFAULT 'HOME',
  is_default INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(schema).Error)
	return conn
}

func newAddressService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(db.FromConn(conn), NewRepository(conn))
	require.NoError(t, err)
	return svc
}

func validInput() Input {
	return Input{
		Name:    "Asha Rao",
		Phone:   "9876543210",
		Line1:   "12 MG Road",
		City:    "Bengaluru",
		State:   "KA",
		Pincode: "560001",
	}
}

func TestCreateFirstAddressBecomesDefault(t *testing.T) {
	conn := setupAddressTestDB(t)
	svc := newAddressService(t, conn)
	userID := uuid.New()

	created, err := svc.Create(context.Background(), userID, validInput())
	require.NoError(t, err)
	assert.True(t, created.IsDefault)
	assert.Equal(t, enums.AddressTypeHome, created.Type)
	assert.Equal(t, "IN", created.Country)
}

func TestCreateSecondDefaultClearsFirst(t *testing.T) {
	conn := setupAddressTestDB(t)
	svc := newAddressService(t, conn)
	userID := uuid.New()

	first, err := svc.Create(context.Background(), userID, validInput())
	require.NoError(t, err)

	second := validInput()
	second.Line1 = "4 Brigade Road"
	second.IsDefault = true
	created, err := svc.Create(context.Background(), userID, second)
	require.NoError(t, err)
	assert.True(t, created.IsDefault)

	reloaded, err := svc.GetOwned(context.Background(), userID, first.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsDefault)
}

func TestCreateValidation(t *testing.T) {
	conn := setupAddressTestDB(t)
	svc := newAddressService(t, conn)
	userID := uuid.New()

	cases := []struct {
		name   string
		mutate func(*Input)
	}{
		{"missing name", func(in *Input) { in.Name = " " }},
		{"bad phone", func(in *Input) { in.Phone = "12345" }},
		{"missing line1", func(in *Input) { in.Line1 = "" }},
		{"bad pincode", func(in *Input) { in.Pincode = "000000" }},
		{"bad type", func(in *Input) { in.Type = "OFFICE" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)
			_, err := svc.Create(context.Background(), userID, input)
			require.Error(t, err)
			assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
		})
	}
}

func TestOwnershipScoping(t *testing.T) {
	conn := setupAddressTestDB(t)
	svc := newAddressService(t, conn)
	owner := uuid.New()
	stranger := uuid.New()

	created, err := svc.Create(context.Background(), owner, validInput())
	require.NoError(t, err)

	_, err = svc.GetOwned(context.Background(), stranger, created.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	err = svc.Delete(context.Background(), stranger, created.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	_, err = svc.Update(context.Background(), stranger, created.ID, validInput())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestUpdateReplacesFields(t *testing.T) {
	conn := setupAddressTestDB(t)
	svc := newAddressService(t, conn)
	userID := uuid.New()

	created, err := svc.Create(context.Background(), userID, validInput())
	require.NoError(t, err)

	input := validInput()
	input.Line1 = "88 Residency Road"
	input.Type = "WORK"
	landmark := "Opp. Metro"
	input.Landmark = &landmark

	updated, err := svc.Update(context.Background(), userID, created.ID, input)
	require.NoError(t, err)
	assert.Equal(t, "88 Residency Road", updated.Line1)
	assert.Equal(t, enums.AddressTypeWork, updated.Type)
	require.NotNil(t, updated.Landmark)
	assert.Equal(t, "Opp. Metro", *updated.Landmark)
	assert.True(t, updated.IsDefault, "update without default flag keeps existing default")
}

func TestSetDefaultMovesFlag(t *testing.T) {
	conn := setupAddressTestDB(t)
	svc := newAddressService(t, conn)
	userID := uuid.New()

	first, err := svc.Create(context.Background(), userID, validInput())
	require.NoError(t, err)
	secondInput := validInput()
	secondInput.Line1 = "2nd Cross"
	second, err := svc.Create(context.Background(), userID, secondInput)
	require.NoError(t, err)
	require.False(t, second.IsDefault)

	promoted, err := svc.SetDefault(context.Background(), userID, second.ID)
	require.NoError(t, err)
	assert.True(t, promoted.IsDefault)

	demoted, err := svc.GetOwned(context.Background(), userID, first.ID)
	require.NoError(t, err)
	assert.False(t, demoted.IsDefault)
}

func TestDeleteRemovesAddress(t *testing.T) {
	conn := setupAddressTestDB(t)
	svc := newAddressService(t, conn)
	userID := uuid.New()

	created, err := svc.Create(context.Background(), userID, validInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), userID, created.ID))

	remaining, err := svc.List(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}
