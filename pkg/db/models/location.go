package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Location is a fulfillment center serving a set of pincodes.
type Location struct {
	ID                  uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name                string          `gorm:"column:name;not null"`
	City                string          `gorm:"column:city;not null"`
	State               string          `gorm:"column:state;not null"`
	Pincode             string          `gorm:"column:pincode;not null;index"`
	Lat                 *float64        `gorm:"column:lat;type:numeric(9,6)"`
	Lng                 *float64        `gorm:"column:lng;type:numeric(9,6)"`
	IsActive            bool            `gorm:"column:is_active;not null"`
	DeliveryDays        int             `gorm:"column:delivery_days;not null;default:3"`
	CODAvailable        bool            `gorm:"column:cod_available;not null"`
	ExtraShippingCharge decimal.Decimal `gorm:"column:extra_shipping_charge;type:numeric(12,2);not null;default:0"`
	CreatedAt           time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
