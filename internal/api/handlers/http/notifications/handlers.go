package notifications

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"alertline/internal/domain"
	"alertline/internal/middleware"
)

//go:generate mockgen -source=handlers.go -destination=mocks/mock.go
type Inbox interface {
	List(ctx context.Context, actor domain.Identity) ([]*domain.Notification, error)
	UnreadCount(ctx context.Context, actor domain.Identity) (int64, error)
	Clear(ctx context.Context, actor domain.Identity) error
}

type Handler struct {
	logger *slog.Logger
	Inbox  Inbox
}

func NewHandler(logger *slog.Logger, inbox Inbox) *Handler {
	return &Handler{
		logger: logger,
		Inbox:  inbox,
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	notifications, err := h.Inbox.List(r.Context(), actor)
	if err != nil {
		h.handleError(w, err)
		return
	}
	if notifications == nil {
		notifications = []*domain.Notification{}
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"notifications": notifications})
}

func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	count, err := h.Inbox.UnreadCount(r.Context(), actor)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	if err := h.Inbox.Clear(r.Context(), actor); err != nil {
		h.handleError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("json encode failed", slog.Any("error", err))
	}
}
