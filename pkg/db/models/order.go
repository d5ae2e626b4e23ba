package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopkartlabs/shopkart-backend/pkg/enums"
)

// Order is a placed customer order with denormalized delivery details.
type Order struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber   string              `gorm:"column:order_number;not null;uniqueIndex"`
	UserID        uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	LocationID    uuid.UUID           `gorm:"column:location_id;type:uuid;not null"`
	AddressID     uuid.UUID           `gorm:"column:address_id;type:uuid;not null"`
	Status        enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'PENDING'"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'PENDING'"`

	Subtotal       decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2);not null;default:0"`
	Tax            decimal.Decimal `gorm:"column:tax;type:numeric(12,2);not null;default:0"`
	ShippingCharge decimal.Decimal `gorm:"column:shipping_charge;type:numeric(12,2);not null;default:0"`
	Discount       decimal.Decimal `gorm:"column:discount;type:numeric(12,2);not null;default:0"`
	Total          decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null;default:0"`

	// Delivery snapshot, copied from the address at placement time.
	DeliveryName    string  `gorm:"column:delivery_name;not null"`
	DeliveryPhone   string  `gorm:"column:delivery_phone;not null"`
	DeliveryLine1   string  `gorm:"column:delivery_line1;not null"`
	DeliveryLine2   *string `gorm:"column:delivery_line2"`
	DeliveryCity    string  `gorm:"column:delivery_city;not null"`
	DeliveryState   string  `gorm:"column:delivery_state;not null"`
	DeliveryPincode string  `gorm:"column:delivery_pincode;not null"`

	CancelReason *string    `gorm:"column:cancel_reason"`
	CancelledAt  *time.Time `gorm:"column:cancelled_at"`
	ShippedAt    *time.Time `gorm:"column:shipped_at"`
	DeliveredAt  *time.Time `gorm:"column:delivered_at"`

	Items     []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}
