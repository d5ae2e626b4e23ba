package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopkartlabs/shopkart-backend/pkg/enums"
)

// PaymentTransaction records a capture or failure against an order.
type PaymentTransaction struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID           `gorm:"column:order_id;type:uuid;not null;index"`
	Amount    decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	Status    enums.PaymentStatus `gorm:"column:status;type:text;not null"`
	Provider  string              `gorm:"column:provider;not null;default:'internal'"`
	Reference *string             `gorm:"column:reference"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
}
