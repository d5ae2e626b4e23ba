package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopkartlabs/shopkart-backend/pkg/enums"
)

// OrderReturn is a customer request to send back part of a delivered order.
type OrderReturn struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID      uuid.UUID          `gorm:"column:order_id;type:uuid;not null;index"`
	OrderItemID  uuid.UUID          `gorm:"column:order_item_id;type:uuid;not null"`
	UserID       uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index"`
	Qty          int                `gorm:"column:qty;not null"`
	Reason       enums.ReturnReason `gorm:"column:reason;type:text;not null"`
	Comment      *string            `gorm:"column:comment"`
	Status       enums.ReturnStatus `gorm:"column:status;type:text;not null;default:'REQUESTED'"`
	AdminComment *string            `gorm:"column:admin_comment"`
	RefundAmount *decimal.Decimal   `gorm:"column:refund_amount;type:numeric(12,2)"`
	ResolvedAt   *time.Time         `gorm:"column:resolved_at"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
