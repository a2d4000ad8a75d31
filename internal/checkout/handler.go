package checkout

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mohamedahmedessam757/futurethinking-backend/internal"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Logger  *slog.Logger
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
		Logger:      logger,
	}
}

// Initiate handles POST /api/v1/checkout
func (h *Handler) Initiate(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok || user == nil {
		h.HandleError(w, internal.NewUnauthorizedError("authentication required", internal.ErrCodeInvalidToken))
		return
	}

	var req InitiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("Initiate: failed to parse request body", "error", err)
		h.HandleError(w, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed))
		return
	}

	resp, err := h.Service.Initiate(r.Context(), user.ID, &req)
	if err != nil {
		h.Logger.Error("Initiate: service error",
			"error", err,
			"user_id", user.ID,
			"item_type", req.ItemType,
			"item_id", req.ItemID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, resp)
}
