package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mohamedahmedessam757/futurethinking-backend/internal/core/events"
)

// EventHandler turns payment lifecycle events into buyer-facing notification
// rows. Entitlement activation notifications are written by the granter
// itself; these cover the payment receipt and the failure notice.
type EventHandler struct {
	service ServiceAPI
	logger  *slog.Logger
}

func NewEventHandler(service ServiceAPI, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		service: service,
		logger:  logger,
	}
}

func (h *EventHandler) HandleTransactionPaid(ctx context.Context, event events.Event) error {
	paidEvent, ok := event.(*events.TransactionPaidEvent)
	if !ok {
		h.logger.Error("invalid event type for transaction paid handler", "event_type", event.EventType())
		return fmt.Errorf("expected TransactionPaidEvent, got %T", event)
	}

	err := h.service.NotifyUser(ctx, paidEvent.UserID, KindPayment,
		"تم استلام دفعتك",
		"Payment received",
		fmt.Sprintf("تم استلام دفعتك بنجاح: %s", paidEvent.ItemName),
		fmt.Sprintf("Your payment for %s was received.", paidEvent.ItemName),
		map[string]interface{}{
			"transaction_id": paidEvent.TransactionID,
			"item_type":      paidEvent.ItemType,
			"item_id":        paidEvent.ItemID,
			"amount":         paidEvent.Amount,
		})
	if err != nil {
		return fmt.Errorf("payment receipt notification failed for transaction %d: %w", paidEvent.TransactionID, err)
	}

	return nil
}

func (h *EventHandler) HandleTransactionFailed(ctx context.Context, event events.Event) error {
	failedEvent, ok := event.(*events.TransactionFailedEvent)
	if !ok {
		h.logger.Error("invalid event type for transaction failed handler", "event_type", event.EventType())
		return fmt.Errorf("expected TransactionFailedEvent, got %T", event)
	}

	err := h.service.NotifyUser(ctx, failedEvent.UserID, KindPayment,
		"فشلت عملية الدفع",
		"Payment failed",
		fmt.Sprintf("لم تكتمل عملية الدفع: %s", failedEvent.ItemName),
		fmt.Sprintf("Your payment for %s did not complete.", failedEvent.ItemName),
		map[string]interface{}{
			"transaction_id": failedEvent.TransactionID,
			"item_type":      failedEvent.ItemType,
			"item_id":        failedEvent.ItemID,
			"failure_reason": failedEvent.FailureReason,
		})
	if err != nil {
		return fmt.Errorf("payment failure notification failed for transaction %d: %w", failedEvent.TransactionID, err)
	}

	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeTransactionPaid, h.HandleTransactionPaid)
	eventBus.Subscribe(events.EventTypeTransactionFailed, h.HandleTransactionFailed)

	h.logger.Info("notification event handlers registered",
		"handlers", []string{events.EventTypeTransactionPaid, events.EventTypeTransactionFailed})
}
