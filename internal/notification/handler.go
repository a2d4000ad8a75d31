package notification

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

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

// ListMine handles GET /api/v1/notifications; merges rows addressed to the
// user with rows addressed to the user's role.
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

	notifications, err := h.Service.ListMine(user.ID, user.Role, offset, limit)
	if err != nil {
		h.Logger.Error("ListMine: failed to list notifications", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	unread, err := h.Service.UnreadCount(user.ID, user.Role)
	if err != nil {
		h.Logger.Error("ListMine: failed to count unread", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	resp := ListResponse{
		Notifications: make([]NotificationResponse, 0, len(notifications)),
		UnreadCount:   unread,
		Offset:        offset,
		Limit:         limit,
	}
	for _, n := range notifications {
		resp.Notifications = append(resp.Notifications, ToResponse(n))
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

// UnreadCount handles GET /api/v1/notifications/unread
func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok || user == nil {
		h.HandleError(w, internal.NewUnauthorizedError("authentication required", internal.ErrCodeInvalidToken))
		return
	}

	unread, err := h.Service.UnreadCount(user.ID, user.Role)
	if err != nil {
		h.Logger.Error("UnreadCount: failed", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]int64{"unread_count": unread})
}

// MarkRead handles POST /api/v1/notifications/{id}/read
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok || user == nil {
		h.HandleError(w, internal.NewUnauthorizedError("authentication required", internal.ErrCodeInvalidToken))
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.HandleError(w, internal.NewValidationError("invalid notification id", internal.ErrCodeValidationFailed))
		return
	}

	if err := h.Service.MarkRead(id, user.ID); err != nil {
		h.Logger.Error("MarkRead: failed", "error", err, "notification_id", id, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MarkAllRead handles POST /api/v1/notifications/read-all
func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok || user == nil {
		h.HandleError(w, internal.NewUnauthorizedError("authentication required", internal.ErrCodeInvalidToken))
		return
	}

	if err := h.Service.MarkAllRead(user.ID); err != nil {
		h.Logger.Error("MarkAllRead: failed", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
