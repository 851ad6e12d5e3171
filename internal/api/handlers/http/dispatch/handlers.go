package dispatch

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"alertline/internal/domain"
	"alertline/internal/middleware"
	"alertline/pkg/validator"
)

//go:generate mockgen -source=handlers.go -destination=mocks/mock.go
type Dispatch interface {
	Dashboard(ctx context.Context, actor domain.Identity) ([]*domain.AssignmentView, error)
	SetInProgress(ctx context.Context, actor domain.Identity, assignmentID uuid.UUID) error
	Resolve(ctx context.Context, actor domain.Identity, assignmentID uuid.UUID) error
	BroadcastAssignment(ctx context.Context, actor domain.Identity, assignmentID uuid.UUID, req domain.BroadcastRequest) (domain.BroadcastResponse, error)
	BroadcastPublic(ctx context.Context, actor domain.Identity, req domain.BroadcastRequest) (domain.BroadcastResponse, error)
}

type Handler struct {
	logger   *slog.Logger
	Dispatch Dispatch
}

func NewHandler(logger *slog.Logger, dispatch Dispatch) *Handler {
	return &Handler{
		logger:   logger,
		Dispatch: dispatch,
	}
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	views, err := h.Dispatch.Dashboard(r.Context(), actor)
	if err != nil {
		h.handleError(w, err)
		return
	}
	if views == nil {
		views = []*domain.AssignmentView{}
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"assignments": views})
}

func (h *Handler) SetInProgress(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Dispatch.SetInProgress)
}

func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Dispatch.Resolve)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(context.Context, domain.Identity, uuid.UUID) error) {
	actor, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid assignment id"})
		return
	}

	if err := fn(r.Context(), actor, id); err != nil {
		h.handleError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) BroadcastAssignment(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid assignment id"})
		return
	}

	req, ok := h.bindBroadcast(w, r)
	if !ok {
		return
	}

	resp, err := h.Dispatch.BroadcastAssignment(r.Context(), actor, id, req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) BroadcastPublic(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	req, ok := h.bindBroadcast(w, r)
	if !ok {
		return
	}

	h.log(r).Info("public broadcast",
		slog.String("kind", string(req.Kind)),
		slog.String("officer", actor.Username),
	)

	resp, err := h.Dispatch.BroadcastPublic(r.Context(), actor, req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) bindBroadcast(w http.ResponseWriter, r *http.Request) (domain.BroadcastRequest, bool) {
	var req domain.BroadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return req, false
	}
	if req.Kind == "" {
		req.Kind = domain.BroadcastGeneral
	}
	if err := validator.ValidateStruct(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return req, false
	}
	return req, true
}
