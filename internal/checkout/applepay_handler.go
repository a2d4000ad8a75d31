package checkout

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mohamedahmedessam757/futurethinking-backend/internal"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/core/events"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/entitlement"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/gateway"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/metrics"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/transaction"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/transport"

	txdm "github.com/mohamedahmedessam757/futurethinking-backend/internal/core/datamodel/transaction"
)

type ApplePayHandler struct {
	*transport.BaseHandler
	transactions transaction.ServiceAPI
	granter      entitlement.ServiceAPI
	gateway      gateway.ClientAPI
	eventBus     *events.EventBus
	logger       *slog.Logger
}

func NewApplePayHandler(baseHandler *transport.BaseHandler, transactions transaction.ServiceAPI, granter entitlement.ServiceAPI, gatewayClient gateway.ClientAPI, eventBus *events.EventBus, logger *slog.Logger) *ApplePayHandler {
	return &ApplePayHandler{
		BaseHandler:  baseHandler,
		transactions: transactions,
		granter:      granter,
		gateway:      gatewayClient,
		eventBus:     eventBus,
		logger:       logger,
	}
}

// HandleCharge handles POST /api/v1/payments/applepay. The wallet token is
// charged synchronously, so the transaction row reflects the gateway's
// immediate answer instead of waiting for a webhook. Only course and book
// purchases grant entitlements on this path.
func (h *ApplePayHandler) HandleCharge(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok || user == nil {
		h.HandleError(w, internal.NewUnauthorizedError("authentication required", internal.ErrCodeInvalidToken))
		return
	}

	var req ApplePayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("invalid apple pay payload", "error", err)
		h.HandleError(w, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed))
		return
	}

	if err := req.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	t, err := h.transactions.CreatePending(user.ID, req.ItemType, req.ItemID, req.ItemName, req.Amount)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	payment, err := h.gateway.ChargeToken(r.Context(), &gateway.TokenChargeRequest{
		Amount:      req.Amount,
		Description: req.ItemName,
		Source: gateway.TokenSource{
			Type:  "applepay",
			Token: req.Token,
		},
		Metadata: map[string]string{
			"transaction_id": strconv.FormatInt(t.ID, 10),
			"external_id":    t.ExternalID,
		},
	})
	if err != nil {
		h.logger.Error("apple pay charge failed",
			"error", err,
			"transaction_id", t.ID,
			"user_id", user.ID)

		reason := "apple pay charge failed"
		if updateErr := h.transactions.ApplyGatewayStatus(t, txdm.StatusFailed, nil, nil, &reason); updateErr != nil {
			h.logger.Error("failed to mark transaction failed after charge error",
				"error", updateErr,
				"transaction_id", t.ID)
		}
		metrics.PaymentsFailed.Inc()
		h.HandleServiceError(w, err)
		return
	}

	internalStatus := MapGatewayStatus(payment.Status)

	payload, _ := json.Marshal(payment)

	var failureReason *string
	if internalStatus == txdm.StatusFailed {
		reason := payment.Message
		if reason == "" {
			reason = "gateway declined the charge"
		}
		failureReason = &reason
	}

	gatewayID := payment.ID
	if err := h.transactions.ApplyGatewayStatus(t, internalStatus, &gatewayID, payload, failureReason); err != nil {
		h.logger.Error("failed to record apple pay result",
			"error", err,
			"transaction_id", t.ID,
			"gateway_status", payment.Status)
		h.HandleServiceError(w, err)
		return
	}

	if internalStatus == txdm.StatusPaid {
		// Consultation and subscription purchases are recorded but not
		// granted here; only the webhook path knows how to fulfil them.
		if req.ItemType == txdm.ItemTypeCourse || req.ItemType == txdm.ItemTypeBook {
			if err := h.granter.GrantForTransaction(r.Context(), t); err != nil {
				h.logger.Error("entitlement grant failed after apple pay charge",
					"error", err,
					"transaction_id", t.ID,
					"item_type", t.ItemType)
			}
		} else {
			h.logger.Warn("apple pay purchase recorded without grant",
				"transaction_id", t.ID,
				"item_type", t.ItemType)
		}

		metrics.PaymentsTotal.WithLabelValues(t.ItemType).Inc()
		if h.eventBus != nil {
			event := events.NewTransactionPaidEvent(t.ID, t.UserID, t.ItemType, t.ItemID, t.ItemName, t.AmountHalalas, t.ExternalID)
			h.eventBus.Publish(context.Background(), event)
		}
	} else if internalStatus == txdm.StatusFailed {
		metrics.PaymentsFailed.Inc()
		if h.eventBus != nil {
			reason := ""
			if failureReason != nil {
				reason = *failureReason
			}
			event := events.NewTransactionFailedEvent(t.ID, t.UserID, t.ItemType, t.ItemID, t.ItemName, t.AmountHalalas, reason)
			h.eventBus.Publish(context.Background(), event)
		}
	}

	h.logger.Info("apple pay charge processed",
		"transaction_id", t.ID,
		"payment_id", payment.ID,
		"status", internalStatus)

	h.WriteJSON(w, http.StatusOK, ApplePayResponse{
		Success:       internalStatus == txdm.StatusPaid,
		PaymentID:     payment.ID,
		Status:        internalStatus,
		TransactionID: t.ID,
	})
}
