package transaction

import (
	"time"

	txdm "github.com/mohamedahmedessam757/futurethinking-backend/internal/core/datamodel/transaction"
)

type TransactionResponse struct {
	ID            int64      `json:"id"`
	ItemType      string     `json:"item_type"`
	ItemID        int64      `json:"item_id"`
	ItemName      string     `json:"item_name"`
	AmountHalalas int64      `json:"amount_halalas"`
	Currency      string     `json:"currency"`
	Status        string     `json:"status"`
	ExternalID    string     `json:"external_id"`
	FailureReason *string    `json:"failure_reason,omitempty"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type ListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Offset       int                   `json:"offset"`
	Limit        int                   `json:"limit"`
}

type OverrideStatusRequest struct {
	Status string `json:"status"`
}

func ToResponse(t *txdm.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:            t.ID,
		ItemType:      t.ItemType,
		ItemID:        t.ItemID,
		ItemName:      t.ItemName,
		AmountHalalas: t.AmountHalalas,
		Currency:      t.Currency,
		Status:        t.Status,
		ExternalID:    t.ExternalID,
		FailureReason: t.FailureReason,
		PaidAt:        t.PaidAt,
		CreatedAt:     t.CreatedAt,
	}
}
