package checkout

import (
	"encoding/json"

	errors "github.com/mohamedahmedessam757/futurethinking-backend/internal"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/core/common/validation"
	txdm "github.com/mohamedahmedessam757/futurethinking-backend/internal/core/datamodel/transaction"
)

type InitiateRequest struct {
	ItemType string `json:"item_type"`
	ItemID   int64  `json:"item_id"`
	// Amount is only honored for consultations, where the rate is quoted per
	// consultant; catalog items are priced server side.
	Amount   int64  `json:"amount,omitempty"`
	ItemName string `json:"item_name,omitempty"`
}

func (r *InitiateRequest) Validate() error {
	validator := validation.NewValidator()

	validator.Field("item_type", r.ItemType).Required().
		OneOf([]string{txdm.ItemTypeCourse, txdm.ItemTypeBook, txdm.ItemTypeConsultation, txdm.ItemTypeSubscription}, errors.ErrCodeInvalidItemType)
	validator.Field("item_id", r.ItemID).Required()
	validator.Field("amount", r.Amount).NonNegative(errors.ErrCodeInvalidAmount)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type InitiateResponse struct {
	TransactionID  int64  `json:"transaction_id"`
	ExternalID     string `json:"external_id"`
	Status         string `json:"status"`
	AmountHalalas  int64  `json:"amount_halalas"`
	Currency       string `json:"currency"`
	PaymentURL     string `json:"payment_url,omitempty"`
	PublishableKey string `json:"publishable_key,omitempty"`
}

// WebhookRequest is the gateway's callback payload.
type WebhookRequest struct {
	ID       string            `json:"id"`
	Status   string            `json:"status"`
	Amount   int64             `json:"amount"`
	Message  string            `json:"message,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type WebhookResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

type ApplePayRequest struct {
	Token    json.RawMessage `json:"token"`
	Amount   int64           `json:"amount"`
	ItemType string          `json:"item_type"`
	ItemID   int64           `json:"item_id"`
	ItemName string          `json:"item_name"`
}

func (r *ApplePayRequest) Validate() error {
	validator := validation.NewValidator()

	validator.Field("item_type", r.ItemType).Required().
		OneOf([]string{txdm.ItemTypeCourse, txdm.ItemTypeBook, txdm.ItemTypeConsultation, txdm.ItemTypeSubscription}, errors.ErrCodeInvalidItemType)
	validator.Field("item_id", r.ItemID).Required()
	validator.Field("amount", r.Amount).Required().MinInt(1, errors.ErrCodeInvalidAmount)
	validator.Field("item_name", r.ItemName).Required().MaxLength(255)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	if len(r.Token) == 0 {
		return errors.NewValidationFieldError("token", "token is required", errors.ErrCodeValidationFailed)
	}
	return nil
}

type ApplePayResponse struct {
	Success       bool   `json:"success"`
	PaymentID     string `json:"payment_id,omitempty"`
	Status        string `json:"status"`
	TransactionID int64  `json:"transaction_id"`
}

// MapGatewayStatus translates the gateway vocabulary into the internal
// transaction status. Unknown statuses stay pending.
func MapGatewayStatus(gatewayStatus string) string {
	switch gatewayStatus {
	case "paid":
		return txdm.StatusPaid
	case "failed":
		return txdm.StatusFailed
	default:
		return txdm.StatusPending
	}
}
