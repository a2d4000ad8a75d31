package booking

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

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

// Book handles POST /api/v1/appointments
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok || user == nil {
		h.HandleError(w, internal.NewUnauthorizedError("authentication required", internal.ErrCodeInvalidToken))
		return
	}

	var dto BookAppointmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.HandleError(w, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed))
		return
	}

	appointment, err := h.Service.Book(user.ID, &dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, ToResponse(appointment))
}

// MyAppointments handles GET /api/v1/appointments
func (h *Handler) MyAppointments(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok || user == nil {
		h.HandleError(w, internal.NewUnauthorizedError("authentication required", internal.ErrCodeInvalidToken))
		return
	}

	appointments, err := h.Service.MyAppointments(user.ID)
	if err != nil {
		h.Logger.Error("MyAppointments: failed", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	resp := make([]AppointmentResponse, 0, len(appointments))
	for _, a := range appointments {
		resp = append(resp, ToResponse(a))
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

// ConsultantSchedule handles GET /api/v1/consultant/appointments (consultant
// permission enforced by the router). Defaults to the coming 30 days.
func (h *Handler) ConsultantSchedule(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok || user == nil {
		h.HandleError(w, internal.NewUnauthorizedError("authentication required", internal.ErrCodeInvalidToken))
		return
	}

	from := time.Now().UTC().AddDate(0, 0, -1)
	to := from.AddDate(0, 0, 31)
	if raw := r.URL.Query().Get("from"); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			from = parsed
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			to = parsed
		}
	}

	appointments, err := h.Service.ConsultantSchedule(user.ID, from, to)
	if err != nil {
		h.Logger.Error("ConsultantSchedule: failed", "error", err, "consultant_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	resp := make([]AppointmentResponse, 0, len(appointments))
	for _, a := range appointments {
		resp = append(resp, ToResponse(a))
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

// Schedule handles PUT /api/v1/consultant/appointments/{id}/schedule
func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok || user == nil {
		h.HandleError(w, internal.NewUnauthorizedError("authentication required", internal.ErrCodeInvalidToken))
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.HandleError(w, internal.NewValidationError("invalid appointment id", internal.ErrCodeValidationFailed))
		return
	}

	var dto ScheduleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.HandleError(w, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed))
		return
	}

	appointment, err := h.Service.Schedule(id, user.ID, &dto)
	if err != nil {
		switch {
		case errors.Is(err, internal.ErrAppointmentNotFound):
			h.HandleError(w, internal.NewNotFoundError("appointment not found", internal.ErrCodeAppointmentNotFound))
		case errors.Is(err, internal.ErrUnauthorizedAccess):
			h.HandleError(w, internal.NewForbiddenError("access denied", internal.ErrCodeUnauthorizedAccess))
		default:
			h.HandleServiceError(w, err)
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, ToResponse(appointment))
}

// Cancel handles POST /api/v1/appointments/{id}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok || user == nil {
		h.HandleError(w, internal.NewUnauthorizedError("authentication required", internal.ErrCodeInvalidToken))
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.HandleError(w, internal.NewValidationError("invalid appointment id", internal.ErrCodeValidationFailed))
		return
	}

	appointment, err := h.Service.Cancel(id, user.ID, user.HasPermission("consultant"))
	if err != nil {
		switch {
		case errors.Is(err, internal.ErrAppointmentNotFound):
			h.HandleError(w, internal.NewNotFoundError("appointment not found", internal.ErrCodeAppointmentNotFound))
		case errors.Is(err, internal.ErrUnauthorizedAccess):
			h.HandleError(w, internal.NewForbiddenError("access denied", internal.ErrCodeUnauthorizedAccess))
		default:
			h.HandleServiceError(w, err)
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, ToResponse(appointment))
}
