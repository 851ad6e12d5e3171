package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"alertline/internal/domain"
	"alertline/pkg/e"
	"alertline/pkg/geo"
)

const titlePoliceAlert = "Police Alert"

// AssignmentStore covers the dispatch side of alert storage.
type AssignmentStore interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Alert, error)
	GetAssignment(ctx context.Context, id uuid.UUID) (*domain.Assignment, error)
	UpdateAssignmentStatus(ctx context.Context, id uuid.UUID, status domain.AssignmentStatus) error
	ListAssignments(ctx context.Context, kind domain.FacilityKind, facilityID uuid.UUID) ([]*domain.AssignmentView, error)
}

type FacilityStore interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Facility, error)
}

type BroadcastStore interface {
	Create(ctx context.Context, b *domain.Broadcast) error
}

type dispatchService struct {
	alerts     AssignmentStore
	facilities FacilityStore
	broadcasts BroadcastStore
	notifier   *ProximityNotifier
	logger     *slog.Logger
}

func NewDispatchService(
	alerts AssignmentStore,
	facilities FacilityStore,
	broadcasts BroadcastStore,
	notifier *ProximityNotifier,
	logger *slog.Logger,
) DispatchService {
	return &dispatchService{
		alerts:     alerts,
		facilities: facilities,
		broadcasts: broadcasts,
		notifier:   notifier,
		logger:     logger,
	}
}

// Dashboard lists the assignments belonging to the caller's facility,
// newest first.
func (s *dispatchService) Dashboard(ctx context.Context, actor domain.Identity) ([]*domain.AssignmentView, error) {
	const op = "service.Dispatch.Dashboard"

	var kind domain.FacilityKind
	switch actor.Role {
	case domain.RolePolice:
		kind = domain.FacilityPolice
	case domain.RoleHospital:
		kind = domain.FacilityHospital
	default:
		return nil, fmt.Errorf("%s: %w", op, e.ErrUnauthorized)
	}

	facility, err := s.facilities.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return s.alerts.ListAssignments(ctx, kind, facility.ID)
}

func (s *dispatchService) SetInProgress(ctx context.Context, actor domain.Identity, assignmentID uuid.UUID) error {
	const op = "service.Dispatch.SetInProgress"

	if err := requireRole(actor, domain.RolePolice); err != nil {
		return err
	}

	assignment, err := s.alerts.GetAssignment(ctx, assignmentID)
	if err != nil {
		return e.Wrap(op, err)
	}

	if assignment.Status == domain.StatusInProgress {
		return nil
	}
	if !assignment.Status.CanTransitionTo(domain.StatusInProgress) {
		return fmt.Errorf("%s: %s -> in_progress: %w", op, assignment.Status, e.ErrConflict)
	}

	return s.alerts.UpdateAssignmentStatus(ctx, assignmentID, domain.StatusInProgress)
}

// Resolve moves the assignment to its terminal state and notifies the
// original reporter. Resolving an already-resolved assignment is a no-op:
// no error, no duplicate notification.
func (s *dispatchService) Resolve(ctx context.Context, actor domain.Identity, assignmentID uuid.UUID) error {
	const op = "service.Dispatch.Resolve"

	if err := requireRole(actor, domain.RolePolice); err != nil {
		return err
	}

	assignment, err := s.alerts.GetAssignment(ctx, assignmentID)
	if err != nil {
		return e.Wrap(op, err)
	}

	if assignment.Status == domain.StatusResolved {
		return nil
	}

	if err := s.alerts.UpdateAssignmentStatus(ctx, assignmentID, domain.StatusResolved); err != nil {
		return e.Wrap(op, err)
	}

	alert, err := s.alerts.Get(ctx, assignment.AlertID)
	if err != nil {
		// the resolve itself succeeded; the reporter just misses the ping
		s.logger.Error("alert lookup after resolve failed", slog.String("op", op), slog.Any("error", err))
		return nil
	}

	if err := s.notifier.NotifyUser(ctx, alert.UserID, titleCaseResolved,
		"Police have resolved your complaint", alert.Address, alert.Coordinate()); err != nil {
		s.logger.Error("reporter notification failed", slog.String("op", op), slog.Any("error", err))
	}

	return nil
}

// BroadcastAssignment notifies everyone near the assignment's incident
// scene. Used for on-the-ground warnings tied to a live case.
func (s *dispatchService) BroadcastAssignment(ctx context.Context, actor domain.Identity, assignmentID uuid.UUID, req domain.BroadcastRequest) (domain.BroadcastResponse, error) {
	const op = "service.Dispatch.BroadcastAssignment"

	if err := requireRole(actor, domain.RolePolice); err != nil {
		return domain.BroadcastResponse{}, err
	}

	assignment, err := s.alerts.GetAssignment(ctx, assignmentID)
	if err != nil {
		return domain.BroadcastResponse{}, e.Wrap(op, err)
	}
	alert, err := s.alerts.Get(ctx, assignment.AlertID)
	if err != nil {
		return domain.BroadcastResponse{}, e.Wrap(op, err)
	}

	return s.broadcast(ctx, actor, req, alert.Coordinate(), alert.Address)
}

// BroadcastPublic originates from the officer's own station coordinate: a
// general or missing-person alert not tied to any incident.
func (s *dispatchService) BroadcastPublic(ctx context.Context, actor domain.Identity, req domain.BroadcastRequest) (domain.BroadcastResponse, error) {
	const op = "service.Dispatch.BroadcastPublic"

	if err := requireRole(actor, domain.RolePolice); err != nil {
		return domain.BroadcastResponse{}, err
	}

	facility, err := s.facilities.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return domain.BroadcastResponse{}, e.Wrap(op, err)
	}

	return s.broadcast(ctx, actor, req, facility.Coordinate(), facility.Name)
}

func (s *dispatchService) broadcast(ctx context.Context, actor domain.Identity, req domain.BroadcastRequest, origin geo.Coordinate, address string) (domain.BroadcastResponse, error) {
	const op = "service.Dispatch.broadcast"

	facility, err := s.facilities.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return domain.BroadcastResponse{}, e.Wrap(op, err)
	}

	b := &domain.Broadcast{
		FacilityID: facility.ID,
		Kind:       req.Kind,
		Message:    req.Message,
		PhotoURL:   req.PhotoURL,
		Lat:        origin.Lat,
		Lng:        origin.Lng,
	}
	if err := s.broadcasts.Create(ctx, b); err != nil {
		return domain.BroadcastResponse{}, e.Wrap(op, err)
	}

	title := titlePoliceAlert
	if b.Kind == domain.BroadcastMissingPerson {
		title = "Missing Person Alert"
	}

	notified, err := s.notifier.NotifyWithinRadius(ctx, origin, 0, actor.UserID,
		title, req.Message, address, &b.ID)
	if err != nil {
		return domain.BroadcastResponse{}, e.Wrap(op, err)
	}

	s.logger.Info("broadcast sent",
		slog.String("broadcast_id", b.ID.String()),
		slog.String("kind", string(b.Kind)),
		slog.Int("notified", notified),
	)

	return domain.BroadcastResponse{
		BroadcastID: b.ID.String(),
		Notified:    notified,
	}, nil
}
