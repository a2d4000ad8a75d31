package transaction

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/mohamedahmedessam757/futurethinking-backend/internal"
	txdm "github.com/mohamedahmedessam757/futurethinking-backend/internal/core/datamodel/transaction"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) CreatePending(userID int64, itemType string, itemID int64, itemName string, amountHalalas int64) (*txdm.Transaction, error) {
	if !ValidItemType(itemType) {
		return nil, internal.NewValidationError(fmt.Sprintf("unknown item type: %s", itemType), internal.ErrCodeInvalidItemType)
	}
	if amountHalalas < 0 {
		return nil, internal.NewValidationError("amount must not be negative", internal.ErrCodeInvalidAmount)
	}

	t := &txdm.Transaction{
		UserID:        userID,
		ItemType:      itemType,
		ItemID:        itemID,
		ItemName:      itemName,
		AmountHalalas: amountHalalas,
		Currency:      "SAR",
		Status:        txdm.StatusPending,
		ExternalID:    uuid.New().String(),
	}

	if err := s.repo.Create(t); err != nil {
		s.logger.Error("failed to create transaction", "error", err, "user_id", userID, "item_type", itemType)
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	s.logger.Info("transaction created",
		"transaction_id", t.ID,
		"user_id", userID,
		"item_type", itemType,
		"item_id", itemID,
		"amount", amountHalalas,
		"external_id", t.ExternalID)

	return t, nil
}

func (s *Service) GetByID(id int64) (*txdm.Transaction, error) {
	t, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrTransactionNotFound
	}
	return t, nil
}

func (s *Service) GetByExternalID(externalID string) (*txdm.Transaction, error) {
	t, err := s.repo.GetByExternalID(externalID)
	if err != nil {
		return nil, internal.ErrTransactionNotFound
	}
	return t, nil
}

func (s *Service) GetByGatewayID(gatewayID string) (*txdm.Transaction, error) {
	t, err := s.repo.GetByGatewayID(gatewayID)
	if err != nil {
		return nil, internal.ErrTransactionNotFound
	}
	return t, nil
}

func (s *Service) ListForUser(userID int64, offset, limit int) ([]*txdm.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.GetByUserID(userID, offset, limit)
}

// ApplyGatewayStatus writes a gateway-reported status onto a transaction.
// Redelivery of the status the transaction already carries is acknowledged
// without a write; any other transition a paid or failed transaction cannot
// make is rejected.
func (s *Service) ApplyGatewayStatus(t *txdm.Transaction, newStatus string, gatewayID *string, gatewayResponse datatypes.JSON, failureReason *string) error {
	if t.Status == newStatus {
		s.logger.Info("transaction already in reported status, acknowledging",
			"transaction_id", t.ID,
			"status", newStatus)
		return nil
	}

	if newStatus == txdm.StatusPending {
		s.logger.Info("gateway reported non-terminal status, leaving transaction pending",
			"transaction_id", t.ID,
			"current_status", t.Status)
		return nil
	}

	if !CanTransition(t.Status, newStatus) {
		s.logger.Warn("rejected status transition",
			"transaction_id", t.ID,
			"from", t.Status,
			"to", newStatus)
		return internal.ErrInvalidTransition
	}

	var paidAt *time.Time
	if newStatus == txdm.StatusPaid {
		now := time.Now().UTC()
		paidAt = &now
	}

	if err := s.repo.UpdateStatus(t.ID, newStatus, gatewayID, gatewayResponse, failureReason, paidAt); err != nil {
		s.logger.Error("failed to update transaction status", "error", err, "transaction_id", t.ID)
		return fmt.Errorf("failed to update transaction status: %w", err)
	}

	s.logger.Info("transaction status updated",
		"transaction_id", t.ID,
		"old_status", t.Status,
		"new_status", newStatus)

	t.Status = newStatus
	t.PaidAt = paidAt
	return nil
}

// AttachGatewayID records the gateway invoice id on a still-pending
// transaction so webhook fallback lookup can find it.
func (s *Service) AttachGatewayID(id int64, gatewayID string) error {
	if err := s.repo.SetGatewayID(id, gatewayID); err != nil {
		s.logger.Error("failed to attach gateway id", "error", err, "transaction_id", id)
		return fmt.Errorf("failed to attach gateway id: %w", err)
	}
	return nil
}

// OverrideStatus is the manual admin path; it honors the same transition
// guard as the webhook.
func (s *Service) OverrideStatus(id int64, newStatus string) (*txdm.Transaction, error) {
	t, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrTransactionNotFound
	}

	if !CanTransition(t.Status, newStatus) {
		return nil, internal.ErrInvalidTransition
	}

	var paidAt *time.Time
	if newStatus == txdm.StatusPaid {
		now := time.Now().UTC()
		paidAt = &now
	}

	if err := s.repo.UpdateStatus(t.ID, newStatus, nil, nil, nil, paidAt); err != nil {
		return nil, fmt.Errorf("failed to override transaction status: %w", err)
	}

	s.logger.Info("transaction status overridden",
		"transaction_id", t.ID,
		"old_status", t.Status,
		"new_status", newStatus)

	t.Status = newStatus
	t.PaidAt = paidAt
	return t, nil
}

// ExpirePending sweeps pending transactions older than ttl to failed.
func (s *Service) ExpirePending(ttl time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-ttl)
	count, err := s.repo.ExpireStalePending(cutoff, "expired: no gateway confirmation received")
	if err != nil {
		s.logger.Error("failed to expire stale pending transactions", "error", err)
		return 0, err
	}
	if count > 0 {
		s.logger.Info("expired stale pending transactions", "count", count, "older_than", cutoff)
	}
	return count, nil
}
