package transaction

import (
	"time"

	"gorm.io/datatypes"

	txdm "github.com/mohamedahmedessam757/futurethinking-backend/internal/core/datamodel/transaction"
)

type Repository interface {
	Create(t *txdm.Transaction) error
	GetByID(id int64) (*txdm.Transaction, error)
	GetByExternalID(externalID string) (*txdm.Transaction, error)
	GetByGatewayID(gatewayID string) (*txdm.Transaction, error)
	GetByUserID(userID int64, offset, limit int) ([]*txdm.Transaction, error)
	UpdateStatus(id int64, status string, gatewayID *string, gatewayResponse datatypes.JSON, failureReason *string, paidAt *time.Time) error
	SetGatewayID(id int64, gatewayID string) error
	CountByStatus() (map[string]int64, error)
	ExpireStalePending(olderThan time.Time, failureReason string) (int64, error)
}

type ServiceAPI interface {
	CreatePending(userID int64, itemType string, itemID int64, itemName string, amountHalalas int64) (*txdm.Transaction, error)
	GetByID(id int64) (*txdm.Transaction, error)
	GetByExternalID(externalID string) (*txdm.Transaction, error)
	GetByGatewayID(gatewayID string) (*txdm.Transaction, error)
	ListForUser(userID int64, offset, limit int) ([]*txdm.Transaction, error)
	ApplyGatewayStatus(t *txdm.Transaction, newStatus string, gatewayID *string, gatewayResponse datatypes.JSON, failureReason *string) error
	AttachGatewayID(id int64, gatewayID string) error
	OverrideStatus(id int64, newStatus string) (*txdm.Transaction, error)
	ExpirePending(ttl time.Duration) (int64, error)
}

// CanTransition reports whether a status change is allowed. Paid and failed
// are terminal for the webhook path; refunded is reachable only from paid by
// an admin override.
func CanTransition(from, to string) bool {
	switch from {
	case txdm.StatusPending:
		return to == txdm.StatusPaid || to == txdm.StatusFailed
	case txdm.StatusPaid:
		return to == txdm.StatusRefunded
	default:
		return false
	}
}

func IsTerminal(status string) bool {
	return status == txdm.StatusPaid || status == txdm.StatusFailed || status == txdm.StatusRefunded
}

func ValidItemType(itemType string) bool {
	switch itemType {
	case txdm.ItemTypeCourse, txdm.ItemTypeBook, txdm.ItemTypeConsultation, txdm.ItemTypeSubscription:
		return true
	}
	return false
}
