package gateway

import (
	"context"
	"encoding/json"
)

// Gateway payment status vocabulary. Anything else (initiated, authorized,
// captured...) passes through as-is and maps to pending internally.
const (
	StatusPaid   = "paid"
	StatusFailed = "failed"
)

type ClientAPI interface {
	CreateInvoice(ctx context.Context, req *InvoiceRequest) (*Invoice, error)
	ChargeToken(ctx context.Context, req *TokenChargeRequest) (*Payment, error)
	GetPayment(ctx context.Context, paymentID string) (*Payment, error)
}

// InvoiceRequest creates a hosted payment form invoice.
type InvoiceRequest struct {
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Description string            `json:"description"`
	CallbackURL string            `json:"callback_url,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type Invoice struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Amount int64  `json:"amount"`
	URL    string `json:"url"`
}

// TokenChargeRequest charges a wallet token (Apple Pay) synchronously.
type TokenChargeRequest struct {
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Description string            `json:"description"`
	Source      TokenSource       `json:"source"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type TokenSource struct {
	Type  string          `json:"type"`
	Token json.RawMessage `json:"token"`
}

type Payment struct {
	ID       string            `json:"id"`
	Status   string            `json:"status"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Message  string            `json:"message,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}
