package checkout

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mohamedahmedessam757/futurethinking-backend/internal/core/events"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/entitlement"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/metrics"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/transaction"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/transport"

	txdm "github.com/mohamedahmedessam757/futurethinking-backend/internal/core/datamodel/transaction"
)

type WebhookHandler struct {
	*transport.BaseHandler
	transactions transaction.ServiceAPI
	granter      entitlement.ServiceAPI
	eventBus     *events.EventBus
	logger       *slog.Logger
}

func NewWebhookHandler(baseHandler *transport.BaseHandler, transactions transaction.ServiceAPI, granter entitlement.ServiceAPI, eventBus *events.EventBus, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		BaseHandler:  baseHandler,
		transactions: transactions,
		granter:      granter,
		eventBus:     eventBus,
		logger:       logger,
	}
}

// HandleCallback handles POST /api/v1/payments/callback
func (h *WebhookHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	var req WebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("invalid webhook payload", "error", err)
		h.writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.logger.Info("received gateway webhook",
		"gateway_payment_id", req.ID,
		"status", req.Status,
		"amount", req.Amount)

	if req.Status == "" {
		h.logger.Error("webhook missing status", "gateway_payment_id", req.ID)
		h.writeFailure(w, http.StatusBadRequest, "status is required")
		return
	}

	t, found := h.locateTransaction(&req)
	if !found {
		h.logger.Warn("webhook for unknown transaction",
			"gateway_payment_id", req.ID,
			"metadata", req.Metadata)
		metrics.WebhooksTotal.WithLabelValues("unmatched").Inc()
		h.writeFailure(w, http.StatusNotFound, "transaction not found")
		return
	}

	internalStatus := MapGatewayStatus(req.Status)

	payload, _ := json.Marshal(req)

	var failureReason *string
	if internalStatus == txdm.StatusFailed {
		reason := req.Message
		if reason == "" {
			reason = "gateway reported failure"
		}
		failureReason = &reason
	}

	gatewayID := req.ID
	if err := h.transactions.ApplyGatewayStatus(t, internalStatus, &gatewayID, payload, failureReason); err != nil {
		h.logger.Error("failed to apply gateway status",
			"error", err,
			"transaction_id", t.ID,
			"gateway_status", req.Status)
		metrics.WebhooksTotal.WithLabelValues("rejected").Inc()
		h.writeFailure(w, http.StatusInternalServerError, "failed to process webhook")
		return
	}

	metrics.WebhooksTotal.WithLabelValues(internalStatus).Inc()

	switch internalStatus {
	case txdm.StatusPaid:
		// Status is written; a grant failure from here on is logged, never
		// surfaced to the gateway.
		if err := h.granter.GrantForTransaction(r.Context(), t); err != nil {
			h.logger.Error("entitlement grant failed after status write",
				"error", err,
				"transaction_id", t.ID,
				"item_type", t.ItemType,
				"item_id", t.ItemID)
		}
		metrics.PaymentsTotal.WithLabelValues(t.ItemType).Inc()
		h.publishPaid(t, req.ID)

	case txdm.StatusFailed:
		metrics.PaymentsFailed.Inc()
		h.publishFailed(t, failureReason)
	}

	h.logger.Info("webhook processed",
		"transaction_id", t.ID,
		"status", internalStatus)

	h.WriteJSON(w, http.StatusOK, WebhookResponse{
		Success: true,
		Status:  t.Status,
	})
}

// locateTransaction resolves the webhook to a transaction: the
// metadata.transaction_id first, then the gateway invoice/payment id.
func (h *WebhookHandler) locateTransaction(req *WebhookRequest) (*txdm.Transaction, bool) {
	if raw, ok := req.Metadata["transaction_id"]; ok && raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			if t, err := h.transactions.GetByID(id); err == nil {
				return t, true
			}
		}
	}

	if req.ID != "" {
		if t, err := h.transactions.GetByGatewayID(req.ID); err == nil {
			return t, true
		}
	}

	return nil, false
}

func (h *WebhookHandler) publishPaid(t *txdm.Transaction, gatewayPaymentID string) {
	if h.eventBus == nil {
		return
	}
	event := events.NewTransactionPaidEvent(t.ID, t.UserID, t.ItemType, t.ItemID, t.ItemName, t.AmountHalalas, t.ExternalID)
	h.eventBus.Publish(context.Background(), event)
	h.logger.Info("published transaction paid event",
		"event_id", event.EventID(),
		"transaction_id", t.ID,
		"gateway_payment_id", gatewayPaymentID)
}

func (h *WebhookHandler) publishFailed(t *txdm.Transaction, failureReason *string) {
	if h.eventBus == nil {
		return
	}
	reason := ""
	if failureReason != nil {
		reason = *failureReason
	}
	event := events.NewTransactionFailedEvent(t.ID, t.UserID, t.ItemType, t.ItemID, t.ItemName, t.AmountHalalas, reason)
	h.eventBus.Publish(context.Background(), event)
	h.logger.Info("published transaction failed event",
		"event_id", event.EventID(),
		"transaction_id", t.ID)
}

func (h *WebhookHandler) writeFailure(w http.ResponseWriter, statusCode int, message string) {
	h.WriteJSON(w, statusCode, WebhookResponse{
		Success: false,
		Message: message,
	})
}
