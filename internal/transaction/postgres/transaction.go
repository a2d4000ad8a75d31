package postgres

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	txdm "github.com/mohamedahmedessam757/futurethinking-backend/internal/core/datamodel/transaction"
	txpkg "github.com/mohamedahmedessam757/futurethinking-backend/internal/transaction"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) txpkg.Repository {
	return &TransactionRepository{
		db: db,
	}
}

func (r *TransactionRepository) Create(t *txdm.Transaction) error {
	return r.db.Table("transactions").Create(t).Error
}

func (r *TransactionRepository) GetByID(id int64) (*txdm.Transaction, error) {
	var t txdm.Transaction
	err := r.db.Table("transactions").First(&t, id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) GetByExternalID(externalID string) (*txdm.Transaction, error) {
	var t txdm.Transaction
	err := r.db.Table("transactions").Where("external_id = ?", externalID).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) GetByGatewayID(gatewayID string) (*txdm.Transaction, error) {
	var t txdm.Transaction
	err := r.db.Table("transactions").Where("gateway_id = ?", gatewayID).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) GetByUserID(userID int64, offset, limit int) ([]*txdm.Transaction, error) {
	var transactions []*txdm.Transaction
	err := r.db.Table("transactions").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&transactions).Error
	return transactions, err
}

func (r *TransactionRepository) UpdateStatus(id int64, status string, gatewayID *string, gatewayResponse datatypes.JSON, failureReason *string, paidAt *time.Time) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}

	if gatewayID != nil {
		updates["gateway_id"] = *gatewayID
	}

	if gatewayResponse != nil {
		updates["gateway_response"] = gatewayResponse
	}

	if failureReason != nil {
		updates["failure_reason"] = *failureReason
	}

	if paidAt != nil {
		updates["paid_at"] = *paidAt
	}

	return r.db.Table("transactions").Where("id = ?", id).Updates(updates).Error
}

func (r *TransactionRepository) SetGatewayID(id int64, gatewayID string) error {
	return r.db.Table("transactions").Where("id = ?", id).Updates(map[string]interface{}{
		"gateway_id": gatewayID,
		"updated_at": time.Now().UTC(),
	}).Error
}

func (r *TransactionRepository) CountByStatus() (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}

	var counts []statusCount
	err := r.db.Table("transactions").
		Select("status, count(*) as count").
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	stats := make(map[string]int64, len(counts))
	for _, c := range counts {
		stats[c.Status] = c.Count
	}
	return stats, nil
}

func (r *TransactionRepository) ExpireStalePending(olderThan time.Time, failureReason string) (int64, error) {
	result := r.db.Table("transactions").
		Where("status = ? AND created_at < ?", txdm.StatusPending, olderThan).
		Updates(map[string]interface{}{
			"status":         txdm.StatusFailed,
			"failure_reason": failureReason,
			"updated_at":     time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}
