package alerts

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"alertline/internal/domain"
	"alertline/internal/middleware"
	"alertline/pkg/validator"
)

//go:generate mockgen -source=handlers.go -destination=mocks/mock.go
type Alerts interface {
	Report(ctx context.Context, actor domain.Identity, req domain.ReportAlertRequest) (domain.ReportAlertResponse, error)
	ListRecent(ctx context.Context) ([]*domain.Alert, error)
}

type Handler struct {
	logger *slog.Logger
	Alerts Alerts
}

func NewHandler(logger *slog.Logger, alerts Alerts) *Handler {
	return &Handler{
		logger: logger,
		Alerts: alerts,
	}
}

func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	var req domain.ReportAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validator.ValidateStruct(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	h.log(r).Info("incident reported",
		slog.Float64("lat", req.Lat),
		slog.Float64("lng", req.Lng),
		slog.String("user", actor.Username),
	)

	resp, err := h.Alerts.Report(r.Context(), actor, req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.Alerts.ListRecent(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}

	type alertRow struct {
		ID      string  `json:"id"`
		Lat     float64 `json:"latitude"`
		Lng     float64 `json:"longitude"`
		Address string  `json:"address"`
	}

	rows := make([]alertRow, 0, len(alerts))
	for _, a := range alerts {
		rows = append(rows, alertRow{
			ID:      a.ID.String(),
			Lat:     a.Lat,
			Lng:     a.Lng,
			Address: a.Address,
		})
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"alerts": rows})
}
