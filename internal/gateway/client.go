package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mohamedahmedessam757/futurethinking-backend/internal"
)

type Client struct {
	client    *http.Client
	baseURL   string
	secretKey string
	currency  string
	logger    *slog.Logger
}

func NewClient(baseURL, secretKey, currency string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if currency == "" {
		currency = "SAR"
	}
	return &Client{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL:   baseURL,
		secretKey: secretKey,
		currency:  currency,
		logger:    logger,
	}
}

func (c *Client) CreateInvoice(ctx context.Context, req *InvoiceRequest) (*Invoice, error) {
	if req.Currency == "" {
		req.Currency = c.currency
	}

	c.logger.Info("creating gateway invoice",
		"amount", req.Amount,
		"currency", req.Currency,
		"description", req.Description)

	var invoice Invoice
	if err := c.post(ctx, "/invoices", req, &invoice); err != nil {
		return nil, err
	}

	c.logger.Info("gateway invoice created",
		"invoice_id", invoice.ID,
		"status", invoice.Status)

	return &invoice, nil
}

func (c *Client) ChargeToken(ctx context.Context, req *TokenChargeRequest) (*Payment, error) {
	if req.Currency == "" {
		req.Currency = c.currency
	}

	c.logger.Info("charging wallet token",
		"amount", req.Amount,
		"currency", req.Currency,
		"source_type", req.Source.Type)

	var payment Payment
	if err := c.post(ctx, "/payments", req, &payment); err != nil {
		return nil, err
	}

	c.logger.Info("wallet token charged",
		"payment_id", payment.ID,
		"status", payment.Status)

	return &payment, nil
}

func (c *Client) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	url := fmt.Sprintf("%s/payments/%s", c.baseURL, paymentID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("request creation error: %w", err)
	}
	httpReq.SetBasicAuth(c.secretKey, "")

	respBody, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	var payment Payment
	if err := json.Unmarshal(respBody, &payment); err != nil {
		return nil, fmt.Errorf("response unmarshal error: %w", err)
	}

	return &payment, nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	url := c.baseURL + path
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(reqBody))
	if err != nil {
		return fmt.Errorf("request creation error: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.secretKey, "")

	respBody, err := c.do(httpReq)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("response unmarshal error: %w", err)
	}

	return nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("gateway request failed", "error", err, "url", req.URL.String())
		return nil, internal.NewGatewayError("gateway unreachable", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("response read error: %w", err)
	}

	if resp.StatusCode >= 400 {
		c.logger.Error("gateway returned error",
			"status", resp.StatusCode,
			"url", req.URL.String(),
			"response", string(respBody))

		appErr := internal.NewGatewayError(fmt.Sprintf("gateway error: HTTP %d", resp.StatusCode), nil)
		if resp.StatusCode == http.StatusPaymentRequired || resp.StatusCode == http.StatusBadRequest {
			appErr.Code = internal.ErrCodeGatewayDeclined
			appErr.Message = fmt.Sprintf("gateway declined request: HTTP %d", resp.StatusCode)
		}
		return nil, appErr
	}

	return respBody, nil
}
