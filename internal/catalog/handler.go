package catalog

import (
	"encoding/json"
	"errors"
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

// ListCourses handles GET /api/v1/courses (public, published only)
func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.Service.ListCourses(r.Context())
	if err != nil {
		h.Logger.Error("ListCourses: failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	resp := make([]CourseResponse, 0, len(courses))
	for _, c := range courses {
		resp = append(resp, ToCourseResponse(c))
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

// GetCourse handles GET /api/v1/courses/{id} (public)
func (h *Handler) GetCourse(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.HandleError(w, internal.NewValidationError("invalid course id", internal.ErrCodeValidationFailed))
		return
	}

	course, err := h.Service.GetCourse(id)
	if err != nil {
		h.HandleError(w, internal.NewNotFoundError("course not found", internal.ErrCodeCourseNotFound))
		return
	}

	h.WriteJSON(w, http.StatusOK, ToCourseResponse(course))
}

// CreateCourse handles POST /api/v1/courses (admin, RBAC enforced by the router)
func (h *Handler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var dto CourseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.HandleError(w, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed))
		return
	}

	course, err := h.Service.CreateCourse(r.Context(), &dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, ToCourseResponse(course))
}

// UpdateCourse handles PUT /api/v1/courses/{id} (admin)
func (h *Handler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.HandleError(w, internal.NewValidationError("invalid course id", internal.ErrCodeValidationFailed))
		return
	}

	var dto CourseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.HandleError(w, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed))
		return
	}

	course, err := h.Service.UpdateCourse(r.Context(), id, &dto)
	if err != nil {
		if errors.Is(err, internal.ErrCourseNotFound) {
			h.HandleError(w, internal.NewNotFoundError("course not found", internal.ErrCodeCourseNotFound))
			return
		}
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToCourseResponse(course))
}

// MyCourses handles GET /api/v1/my/courses
func (h *Handler) MyCourses(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok || user == nil {
		h.HandleError(w, internal.NewUnauthorizedError("authentication required", internal.ErrCodeInvalidToken))
		return
	}

	courses, err := h.Service.MyCourses(user.ID)
	if err != nil {
		h.Logger.Error("MyCourses: failed", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	resp := make([]CourseResponse, 0, len(courses))
	for _, c := range courses {
		resp = append(resp, ToCourseResponse(c))
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

// ListBooks handles GET /api/v1/books (public, published only)
func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.Service.ListBooks(r.Context())
	if err != nil {
		h.Logger.Error("ListBooks: failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	resp := make([]BookResponse, 0, len(books))
	for _, b := range books {
		resp = append(resp, ToBookResponse(b))
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

// GetBook handles GET /api/v1/books/{id} (public)
func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.HandleError(w, internal.NewValidationError("invalid book id", internal.ErrCodeValidationFailed))
		return
	}

	book, err := h.Service.GetBook(id)
	if err != nil {
		h.HandleError(w, internal.NewNotFoundError("book not found", internal.ErrCodeBookNotFound))
		return
	}

	h.WriteJSON(w, http.StatusOK, ToBookResponse(book))
}

// CreateBook handles POST /api/v1/books (admin)
func (h *Handler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var dto BookDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.HandleError(w, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed))
		return
	}

	book, err := h.Service.CreateBook(r.Context(), &dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, ToBookResponse(book))
}

// UpdateBook handles PUT /api/v1/books/{id} (admin)
func (h *Handler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.HandleError(w, internal.NewValidationError("invalid book id", internal.ErrCodeValidationFailed))
		return
	}

	var dto BookDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.HandleError(w, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed))
		return
	}

	book, err := h.Service.UpdateBook(r.Context(), id, &dto)
	if err != nil {
		if errors.Is(err, internal.ErrBookNotFound) {
			h.HandleError(w, internal.NewNotFoundError("book not found", internal.ErrCodeBookNotFound))
			return
		}
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToBookResponse(book))
}

// MyBooks handles GET /api/v1/my/books
func (h *Handler) MyBooks(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok || user == nil {
		h.HandleError(w, internal.NewUnauthorizedError("authentication required", internal.ErrCodeInvalidToken))
		return
	}

	books, err := h.Service.MyBooks(user.ID)
	if err != nil {
		h.Logger.Error("MyBooks: failed", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	resp := make([]BookResponse, 0, len(books))
	for _, b := range books {
		resp = append(resp, ToBookResponse(b))
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

// DownloadBook handles GET /api/v1/books/{id}/download; owners get a
// short-lived presigned URL.
func (h *Handler) DownloadBook(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok || user == nil {
		h.HandleError(w, internal.NewUnauthorizedError("authentication required", internal.ErrCodeInvalidToken))
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.HandleError(w, internal.NewValidationError("invalid book id", internal.ErrCodeValidationFailed))
		return
	}

	url, err := h.Service.BookDownloadURL(r.Context(), user.ID, id)
	if err != nil {
		switch {
		case errors.Is(err, internal.ErrBookNotFound):
			h.HandleError(w, internal.NewNotFoundError("book not found", internal.ErrCodeBookNotFound))
		case errors.Is(err, internal.ErrNotOwned):
			h.HandleError(w, internal.NewForbiddenError("book not owned", internal.ErrCodeNotOwned))
		default:
			h.Logger.Error("DownloadBook: failed", "error", err, "book_id", id, "user_id", user.ID)
			h.HandleServiceError(w, err)
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"download_url": url})
}
