package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"alertline/internal/domain"
	"alertline/pkg/e"
)

// LocationTracker is the writable side of the tracked-location table.
type LocationTracker interface {
	Upsert(ctx context.Context, userID uuid.UUID, lat, lng float64) error
	All(ctx context.Context) ([]*domain.UserLocation, error)
}

// NearbyLookup finds registered emergency amenities around a point.
type NearbyLookup interface {
	NearbyEmergencyServices(ctx context.Context, lat, lng float64, radiusM int) ([]domain.NearbyService, error)
}

type locationService struct {
	locations LocationTracker
	geocoder  Geocoder
	nearby    NearbyLookup
	logger    *slog.Logger
	retries   int
	backoff   time.Duration
	radiusKm  float64
}

func NewLocationService(
	locations LocationTracker,
	geocoder Geocoder,
	nearby NearbyLookup,
	logger *slog.Logger,
	retries int,
	backoff time.Duration,
	radiusKm float64,
) LocationService {
	if retries <= 0 {
		retries = 3
	}
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	return &locationService{
		locations: locations,
		geocoder:  geocoder,
		nearby:    nearby,
		logger:    logger,
		retries:   retries,
		backoff:   backoff,
		radiusKm:  radiusKm,
	}
}

// Update upserts the caller's last-known coordinate. The write itself is a
// single atomic insert-or-update; this layer only retries transient
// contention a bounded number of times before surfacing ErrStorageBusy.
func (s *locationService) Update(ctx context.Context, actor domain.Identity, req domain.UpdateLocationRequest) error {
	const op = "service.Location.Update"

	var lastErr error
	for attempt := 0; attempt < s.retries; attempt++ {
		lastErr = s.locations.Upsert(ctx, actor.UserID, req.Lat, req.Lng)
		if lastErr == nil {
			return nil
		}
		if !errors.Is(lastErr, e.ErrStorageBusy) {
			return lastErr
		}

		s.logger.Warn("location upsert contention",
			slog.String("op", op),
			slog.Int("attempt", attempt+1),
			slog.String("user_id", actor.UserID.String()),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.backoff):
		}
	}

	return lastErr
}

func (s *locationService) Live(ctx context.Context) ([]domain.LiveLocation, error) {
	locations, err := s.locations.All(ctx)
	if err != nil {
		return nil, err
	}

	live := make([]domain.LiveLocation, 0, len(locations))
	for _, loc := range locations {
		if !loc.Known() {
			continue
		}
		live = append(live, domain.LiveLocation{
			Username: loc.Username,
			Lat:      *loc.Lat,
			Lng:      *loc.Lng,
		})
	}

	return live, nil
}

// ReverseGeocode proxies the external geocoder; failures degrade to the
// unknown-address placeholder, never an error.
func (s *locationService) ReverseGeocode(ctx context.Context, lat, lng float64) string {
	address, err := s.geocoder.Reverse(ctx, lat, lng)
	if err != nil {
		s.logger.Warn("reverse geocode degraded", slog.Any("error", err))
	}
	return address
}

func (s *locationService) NearbyServices(ctx context.Context, lat, lng float64) ([]domain.NearbyService, error) {
	return s.nearby.NearbyEmergencyServices(ctx, lat, lng, int(s.radiusKm*1000))
}
