package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"alertline/internal/domain"
	"alertline/pkg/geo"
)

// NotificationStore is the subset of storage the notifier writes through.
type NotificationStore interface {
	Create(ctx context.Context, n *domain.Notification) error
}

// LocationStore is the tracked-location view the notifier scans.
type LocationStore interface {
	All(ctx context.Context) ([]*domain.UserLocation, error)
}

// PushSender hands a created notification to the delivery transport.
// Implementations must not block the caller.
type PushSender interface {
	Send(msg domain.PushMessage)
}

// ProximityNotifier fans a notification out to every tracked user within a
// radius of an origin point. The scan is a full pass over user_locations;
// fine at municipal scale, and the single place to swap in a spatial index
// if the row count ever demands one.
type ProximityNotifier struct {
	locations     LocationStore
	notifications NotificationStore
	push          PushSender
	logger        *slog.Logger
	radiusKm      float64
}

func NewProximityNotifier(
	locations LocationStore,
	notifications NotificationStore,
	push PushSender,
	logger *slog.Logger,
	radiusKm float64,
) *ProximityNotifier {
	if radiusKm <= 0 {
		radiusKm = 5.0
	}
	return &ProximityNotifier{
		locations:     locations,
		notifications: notifications,
		push:          push,
		logger:        logger,
		radiusKm:      radiusKm,
	}
}

func (p *ProximityNotifier) RadiusKm() float64 { return p.radiusKm }

// NotifyWithinRadius creates one notification per tracked user within
// radiusKm (inclusive) of origin, skipping exclude and users with no known
// coordinate. A failed write for one recipient is logged and does not stop
// the rest of the fan-out; the returned count covers successes only.
func (p *ProximityNotifier) NotifyWithinRadius(
	ctx context.Context,
	origin geo.Coordinate,
	radiusKm float64,
	exclude uuid.UUID,
	title, message, address string,
	broadcastID *uuid.UUID,
) (int, error) {
	const op = "service.ProximityNotifier.NotifyWithinRadius"

	if radiusKm <= 0 {
		radiusKm = p.radiusKm
	}

	locations, err := p.locations.All(ctx)
	if err != nil {
		p.logger.Error("location scan failed", slog.String("op", op), slog.Any("error", err))
		return 0, err
	}

	sent := 0
	for _, loc := range locations {
		if loc.UserID == exclude {
			continue
		}
		if !loc.Known() {
			continue
		}
		if geo.Distance(origin, loc.Coordinate()) > radiusKm {
			continue
		}

		n := &domain.Notification{
			UserID:      loc.UserID,
			Title:       title,
			Message:     message,
			Lat:         origin.Lat,
			Lng:         origin.Lng,
			Address:     address,
			BroadcastID: broadcastID,
		}
		if err := p.notifications.Create(ctx, n); err != nil {
			p.logger.Error("notification create failed",
				slog.String("op", op),
				slog.Any("error", err),
				slog.String("user_id", loc.UserID.String()),
			)
			continue
		}
		sent++

		if p.push != nil {
			p.push.Send(domain.PushMessage{
				UserID:    loc.UserID.String(),
				Title:     title,
				Body:      message,
				Lat:       origin.Lat,
				Lng:       origin.Lng,
				CreatedAt: n.CreatedAt,
			})
		}
	}

	p.logger.Info("proximity fan-out done",
		slog.String("op", op),
		slog.Int("scanned", len(locations)),
		slog.Int("sent", sent),
		slog.Float64("radius_km", radiusKm),
	)

	return sent, nil
}

// NotifyUser creates a direct notification for a single recipient.
// Used for facility assignment and case-resolved messages.
func (p *ProximityNotifier) NotifyUser(
	ctx context.Context,
	userID uuid.UUID,
	title, message, address string,
	origin geo.Coordinate,
) error {
	n := &domain.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Lat:     origin.Lat,
		Lng:     origin.Lng,
		Address: address,
	}
	if err := p.notifications.Create(ctx, n); err != nil {
		return err
	}

	if p.push != nil {
		p.push.Send(domain.PushMessage{
			UserID:    userID.String(),
			Title:     title,
			Body:      message,
			Lat:       origin.Lat,
			Lng:       origin.Lng,
			CreatedAt: n.CreatedAt,
		})
	}

	return nil
}
