package service

import (
	"context"
	"log/slog"

	"alertline/internal/domain"
	"alertline/pkg/e"
	"alertline/pkg/geo"
)

const (
	titleNewCase      = "New Emergency Case"
	titleNearbyAlert  = "Emergency Near You"
	titleCaseResolved = "Case Resolved"
)

// AlertStore is the transactional persistence surface for incident reports.
type AlertStore interface {
	CreateWithAssignment(ctx context.Context, alert *domain.Alert, assignment *domain.Assignment) error
	ListRecent(ctx context.Context, limit int) ([]*domain.Alert, error)
}

// Geocoder resolves a coordinate into an address, best effort.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lng float64) (string, error)
}

type alertService struct {
	registry FacilityRegistry
	alerts   AlertStore
	notifier *ProximityNotifier
	geocoder Geocoder
	logger   *slog.Logger
}

func NewAlertService(
	registry FacilityRegistry,
	alerts AlertStore,
	notifier *ProximityNotifier,
	geocoder Geocoder,
	logger *slog.Logger,
) AlertService {
	return &alertService{
		registry: registry,
		alerts:   alerts,
		notifier: notifier,
		geocoder: geocoder,
		logger:   logger,
	}
}

// Report runs the full incident flow: select nearest police and hospital,
// persist alert+assignment atomically, notify the assigned facilities, then
// fan out to tracked users near the scene. Facility selection happens before
// any write so an empty registry aborts with nothing persisted.
func (s *alertService) Report(ctx context.Context, actor domain.Identity, req domain.ReportAlertRequest) (domain.ReportAlertResponse, error) {
	const op = "service.Alert.Report"

	origin := geo.Coordinate{Lat: req.Lat, Lng: req.Lng}

	police, err := Nearest(ctx, s.registry, origin, domain.FacilityPolice)
	if err != nil {
		s.logger.Warn("police selection failed", slog.String("op", op), slog.Any("error", err))
		return domain.ReportAlertResponse{}, err
	}
	hospital, err := Nearest(ctx, s.registry, origin, domain.FacilityHospital)
	if err != nil {
		s.logger.Warn("hospital selection failed", slog.String("op", op), slog.Any("error", err))
		return domain.ReportAlertResponse{}, err
	}

	address := req.Address
	if address == "" && s.geocoder != nil {
		// best effort; an unreachable geocoder must never block a report
		address, _ = s.geocoder.Reverse(ctx, req.Lat, req.Lng)
	}

	alert := &domain.Alert{
		UserID:      actor.UserID,
		Lat:         req.Lat,
		Lng:         req.Lng,
		Address:     address,
		Description: req.Description,
	}
	assignment := &domain.Assignment{
		PoliceID:   &police.ID,
		HospitalID: &hospital.ID,
		Status:     domain.StatusAssigned,
	}

	if err := s.alerts.CreateWithAssignment(ctx, alert, assignment); err != nil {
		return domain.ReportAlertResponse{}, e.Wrap(op, err)
	}

	s.logger.Info("alert assigned",
		slog.String("alert_id", alert.ID.String()),
		slog.String("police", police.Name),
		slog.String("hospital", hospital.Name),
	)

	// delivery to the responders is logged, never fatal: the assignment is
	// already durable and visible on their dashboards
	for _, f := range []*domain.Facility{police, hospital} {
		if err := s.notifier.NotifyUser(ctx, f.UserID, titleNewCase, address, address, origin); err != nil {
			s.logger.Error("facility notification failed",
				slog.String("op", op),
				slog.Any("error", err),
				slog.String("facility", f.Name),
			)
		}
	}

	notified, err := s.notifier.NotifyWithinRadius(ctx, origin, 0, actor.UserID,
		titleNearbyAlert, alert.Description, address, nil)
	if err != nil {
		// same rule as single deliveries: the report has already succeeded
		s.logger.Error("nearby fan-out failed", slog.String("op", op), slog.Any("error", err))
	}

	return domain.ReportAlertResponse{
		AlertID:      alert.ID.String(),
		AssignmentID: assignment.ID.String(),
		Notified:     notified,
	}, nil
}

func (s *alertService) ListRecent(ctx context.Context) ([]*domain.Alert, error) {
	return s.alerts.ListRecent(ctx, 50)
}
