package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeTransactionPaid    = "transaction.paid"
	EventTypeTransactionFailed  = "transaction.failed"
	EventTypeEntitlementGranted = "entitlement.granted"
)

type TransactionPaidEvent struct {
	BaseEvent
	TransactionID int64  `json:"transaction_id"`
	UserID        int64  `json:"user_id"`
	ItemType      string `json:"item_type"`
	ItemID        int64  `json:"item_id"`
	ItemName      string `json:"item_name"`
	Amount        int64  `json:"amount"`
	ExternalID    string `json:"external_id"`
}

func NewTransactionPaidEvent(transactionID, userID int64, itemType string, itemID int64, itemName string, amount int64, externalID string) *TransactionPaidEvent {
	return &TransactionPaidEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeTransactionPaid,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"transaction_id": transactionID,
				"user_id":        userID,
				"item_type":      itemType,
				"item_id":        itemID,
				"item_name":      itemName,
				"amount":         amount,
				"external_id":    externalID,
			},
		},
		TransactionID: transactionID,
		UserID:        userID,
		ItemType:      itemType,
		ItemID:        itemID,
		ItemName:      itemName,
		Amount:        amount,
		ExternalID:    externalID,
	}
}

type TransactionFailedEvent struct {
	BaseEvent
	TransactionID int64  `json:"transaction_id"`
	UserID        int64  `json:"user_id"`
	ItemType      string `json:"item_type"`
	ItemID        int64  `json:"item_id"`
	ItemName      string `json:"item_name"`
	Amount        int64  `json:"amount"`
	FailureReason string `json:"failure_reason"`
}

func NewTransactionFailedEvent(transactionID, userID int64, itemType string, itemID int64, itemName string, amount int64, failureReason string) *TransactionFailedEvent {
	return &TransactionFailedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeTransactionFailed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"transaction_id": transactionID,
				"user_id":        userID,
				"item_type":      itemType,
				"item_id":        itemID,
				"item_name":      itemName,
				"amount":         amount,
				"failure_reason": failureReason,
			},
		},
		TransactionID: transactionID,
		UserID:        userID,
		ItemType:      itemType,
		ItemID:        itemID,
		ItemName:      itemName,
		Amount:        amount,
		FailureReason: failureReason,
	}
}

type EntitlementGrantedEvent struct {
	BaseEvent
	TransactionID int64  `json:"transaction_id"`
	UserID        int64  `json:"user_id"`
	ItemType      string `json:"item_type"`
	ItemID        int64  `json:"item_id"`
}

func NewEntitlementGrantedEvent(transactionID, userID int64, itemType string, itemID int64) *EntitlementGrantedEvent {
	return &EntitlementGrantedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeEntitlementGranted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"transaction_id": transactionID,
				"user_id":        userID,
				"item_type":      itemType,
				"item_id":        itemID,
			},
		},
		TransactionID: transactionID,
		UserID:        userID,
		ItemType:      itemType,
		ItemID:        itemID,
	}
}
