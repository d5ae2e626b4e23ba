package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopkartlabs/shopkart-backend/pkg/enums"
)

// UserAddress is a saved delivery address in a customer's address book.
type UserAddress struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	Name      string            `gorm:"column:name;not null"`
	Phone     string            `gorm:"column:phone;not null"`
	Line1     string            `gorm:"column:line1;not null"`
	Line2     *string           `gorm:"column:line2"`
	Landmark  *string           `gorm:"column:landmark"`
	City      string            `gorm:"column:city;not null"`
	State     string            `gorm:"column:state;not null"`
	Pincode   string            `gorm:"column:pincode;not null"`
	Country   string            `gorm:"column:country;not null;default:'IN'"`
	Type      enums.AddressType `gorm:"column:type;type:text;not null;default:'HOME'"`
	IsDefault bool              `gorm:"column:is_default;not null"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
