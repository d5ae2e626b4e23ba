package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a catalog listing.
type Product struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SKU             string          `gorm:"column:sku;not null;uniqueIndex"`
	Slug            string          `gorm:"column:slug;not null;uniqueIndex"`
	Name            string          `gorm:"column:name;not null"`
	Description     *string         `gorm:"column:description"`
	Brand           *string         `gorm:"column:brand"`
	Category        string          `gorm:"column:category;not null;index"`
	Price           decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	MRP             decimal.Decimal `gorm:"column:mrp;type:numeric(12,2);not null"`
	TaxPercent      decimal.Decimal `gorm:"column:tax_percent;type:numeric(5,2);not null;default:0"`
	DiscountPercent decimal.Decimal `gorm:"column:discount_percent;type:numeric(5,2);not null;default:0"`
	// Stock is the single-location fallback counter; location rows in
	// product_inventory are authoritative when present.
	Stock        int       `gorm:"column:stock;not null;default:0"`
	ImageURL     *string   `gorm:"column:image_url"`
	CODAvailable bool      `gorm:"column:cod_available;not null"`
	Returnable   bool      `gorm:"column:returnable;not null"`
	IsActive     bool      `gorm:"column:is_active;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
