package transaction

import (
	"time"

	"gorm.io/datatypes"
)

const (
	StatusPending  = "pending"
	StatusPaid     = "paid"
	StatusFailed   = "failed"
	StatusRefunded = "refunded"
)

const (
	ItemTypeCourse       = "course"
	ItemTypeBook         = "book"
	ItemTypeConsultation = "consultation"
	ItemTypeSubscription = "subscription"
)

type Transaction struct {
	ID              int64          `gorm:"primaryKey"`
	UserID          int64          `gorm:"column:user_id;not null"`
	ItemType        string         `gorm:"column:item_type;not null"`
	ItemID          int64          `gorm:"column:item_id;not null"`
	ItemName        string         `gorm:"column:item_name;not null"`
	AmountHalalas   int64          `gorm:"column:amount_halalas;not null"`
	Currency        string         `gorm:"column:currency;default:SAR"`
	Status          string         `gorm:"column:status;default:pending"`
	ExternalID      string         `gorm:"column:external_id;not null;uniqueIndex"`
	GatewayID       *string        `gorm:"column:gateway_id"`
	PaymentMethod   *string        `gorm:"column:payment_method"`
	GatewayResponse datatypes.JSON `gorm:"column:gateway_response;type:jsonb"`
	FailureReason   *string        `gorm:"column:failure_reason"`
	PaidAt          *time.Time     `gorm:"column:paid_at"`
	CreatedAt       time.Time      `gorm:"column:created_at;default:now()"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;default:now()"`
}
