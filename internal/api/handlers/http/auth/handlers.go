package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"alertline/internal/domain"
	"alertline/pkg/validator"
)

//go:generate mockgen -source=handlers.go -destination=mocks/mock.go
type Accounts interface {
	Register(ctx context.Context, req domain.RegisterRequest) (uuid.UUID, error)
	RegisterFacility(ctx context.Context, kind domain.FacilityKind, req domain.RegisterFacilityRequest) (uuid.UUID, error)
	Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error)
}

type Handler struct {
	logger   *slog.Logger
	Accounts Accounts
}

func NewHandler(logger *slog.Logger, accounts Accounts) *Handler {
	return &Handler{
		logger:   logger,
		Accounts: accounts,
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if !h.bind(w, r, &req) {
		return
	}

	id, err := h.Accounts.Register(r.Context(), req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]string{"id": id.String()})
}

func (h *Handler) RegisterPolice(w http.ResponseWriter, r *http.Request) {
	h.registerFacility(w, r, domain.FacilityPolice)
}

func (h *Handler) RegisterHospital(w http.ResponseWriter, r *http.Request) {
	h.registerFacility(w, r, domain.FacilityHospital)
}

func (h *Handler) registerFacility(w http.ResponseWriter, r *http.Request, kind domain.FacilityKind) {
	var req domain.RegisterFacilityRequest
	if !h.bind(w, r, &req) {
		return
	}

	h.log(r).Info("facility registration",
		slog.String("kind", string(kind)),
		slog.String("username", req.Username),
	)

	id, err := h.Accounts.RegisterFacility(r.Context(), kind, req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]string{"facility_id": id.String()})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !h.bind(w, r, &req) {
		return
	}

	resp, err := h.Accounts.Login(r.Context(), req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) bind(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return false
	}
	if err := validator.ValidateStruct(target); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return false
	}
	return true
}
