package transaction

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/mohamedahmedessam757/futurethinking-backend/internal"
	txdm "github.com/mohamedahmedessam757/futurethinking-backend/internal/core/datamodel/transaction"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/transport"
)

// Granter applies a paid transaction's entitlement. The admin override path
// grants the same way the webhook does.
type Granter interface {
	GrantForTransaction(ctx context.Context, t *txdm.Transaction) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Granter Granter
	Logger  *slog.Logger
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI, granter Granter, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
		Granter:     granter,
		Logger:      logger,
	}
}

// ListMine handles GET /api/v1/transactions
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok || user == nil {
		h.HandleError(w, internal.NewUnauthorizedError("authentication required", internal.ErrCodeInvalidToken))
		return
	}

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 20
	}

	transactions, err := h.Service.ListForUser(user.ID, offset, limit)
	if err != nil {
		h.Logger.Error("ListMine: failed to list transactions", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	resp := ListResponse{
		Transactions: make([]TransactionResponse, 0, len(transactions)),
		Offset:       offset,
		Limit:        limit,
	}
	for _, t := range transactions {
		resp.Transactions = append(resp.Transactions, ToResponse(t))
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

// GetByID handles GET /api/v1/transactions/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok || user == nil {
		h.HandleError(w, internal.NewUnauthorizedError("authentication required", internal.ErrCodeInvalidToken))
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.HandleError(w, internal.NewValidationError("invalid transaction id", internal.ErrCodeValidationFailed))
		return
	}

	t, err := h.Service.GetByID(id)
	if err != nil {
		h.HandleError(w, internal.NewNotFoundError("transaction not found", internal.ErrCodeTransactionNotFound))
		return
	}

	if t.UserID != user.ID && !user.HasPermission("admin") {
		h.Logger.Warn("GetByID: access denied", "transaction_id", id, "user_id", user.ID)
		h.HandleError(w, internal.NewForbiddenError("access denied", internal.ErrCodeUnauthorizedAccess))
		return
	}

	h.WriteJSON(w, http.StatusOK, ToResponse(t))
}

// OverrideStatus handles POST /api/v1/transactions/{id}/status (admin only,
// RBAC enforced by the router). Marking a transaction paid grants its
// entitlement the same way the webhook does.
func (h *Handler) OverrideStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.HandleError(w, internal.NewValidationError("invalid transaction id", internal.ErrCodeValidationFailed))
		return
	}

	var req OverrideStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.HandleError(w, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed))
		return
	}

	switch req.Status {
	case txdm.StatusPaid, txdm.StatusFailed, txdm.StatusRefunded:
	default:
		h.HandleError(w, internal.NewValidationError("status must be paid, failed or refunded", internal.ErrCodeValidationFailed))
		return
	}

	t, err := h.Service.OverrideStatus(id, req.Status)
	if err != nil {
		h.Logger.Error("OverrideStatus: service error", "error", err, "transaction_id", id, "status", req.Status)
		switch {
		case errors.Is(err, internal.ErrTransactionNotFound):
			h.HandleError(w, internal.NewNotFoundError("transaction not found", internal.ErrCodeTransactionNotFound))
		case errors.Is(err, internal.ErrInvalidTransition):
			h.HandleError(w, internal.NewConflictError("invalid status transition", internal.ErrCodeInvalidTransition))
		default:
			h.HandleServiceError(w, err)
		}
		return
	}

	if req.Status == txdm.StatusPaid && h.Granter != nil {
		if err := h.Granter.GrantForTransaction(r.Context(), t); err != nil {
			h.Logger.Error("OverrideStatus: entitlement grant failed after status write",
				"error", err,
				"transaction_id", t.ID,
				"item_type", t.ItemType,
				"item_id", t.ItemID)
		}
	}

	h.WriteJSON(w, http.StatusOK, ToResponse(t))
}
