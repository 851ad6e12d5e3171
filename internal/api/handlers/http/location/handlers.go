package location

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"alertline/internal/domain"
	"alertline/internal/middleware"
	"alertline/pkg/validator"
)

//go:generate mockgen -source=handlers.go -destination=mocks/mock.go
type Locations interface {
	Update(ctx context.Context, actor domain.Identity, req domain.UpdateLocationRequest) error
	Live(ctx context.Context) ([]domain.LiveLocation, error)
	ReverseGeocode(ctx context.Context, lat, lng float64) string
	NearbyServices(ctx context.Context, lat, lng float64) ([]domain.NearbyService, error)
}

type Handler struct {
	logger    *slog.Logger
	Locations Locations
}

func NewHandler(logger *slog.Logger, locations Locations) *Handler {
	return &Handler{
		logger:    logger,
		Locations: locations,
	}
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	var req domain.UpdateLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validator.ValidateStruct(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if err := h.Locations.Update(r.Context(), actor, req); err != nil {
		h.handleError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	live, err := h.Locations.Live(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}
	if live == nil {
		live = []domain.LiveLocation{}
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"locations": live})
}

func (h *Handler) ReverseGeocode(w http.ResponseWriter, r *http.Request) {
	lat, lng, ok := h.coordsFromQuery(w, r)
	if !ok {
		return
	}

	address := h.Locations.ReverseGeocode(r.Context(), lat, lng)
	h.writeJSON(w, http.StatusOK, map[string]string{"address": address})
}

func (h *Handler) NearbyServices(w http.ResponseWriter, r *http.Request) {
	lat, lng, ok := h.coordsFromQuery(w, r)
	if !ok {
		return
	}

	services, err := h.Locations.NearbyServices(r.Context(), lat, lng)
	if err != nil {
		h.handleError(w, err)
		return
	}
	if services == nil {
		services = []domain.NearbyService{}
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"services": services})
}

func (h *Handler) coordsFromQuery(w http.ResponseWriter, r *http.Request) (float64, float64, bool) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if errLat != nil || errLng != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing coordinates"})
		return 0, 0, false
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid coordinates"})
		return 0, 0, false
	}
	return lat, lng, true
}
