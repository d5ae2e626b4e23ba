package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductInventory tracks on-hand stock per product and location.
type ProductInventory struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID  uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:ux_inventory_product_location"`
	LocationID uuid.UUID `gorm:"column:location_id;type:uuid;not null;uniqueIndex:ux_inventory_product_location"`
	Stock      int       `gorm:"column:stock;not null;default:0"`
	Product    *Product  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Location   *Location `gorm:"foreignKey:LocationID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the singular table the schema defines; the default
// naming strategy would pluralize to product_inventories.
func (ProductInventory) TableName() string {
	return "product_inventory"
}
