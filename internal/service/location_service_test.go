package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"alertline/internal/domain"
	"alertline/internal/service"
	"alertline/pkg/e"
)

func newLocationService(locations *fakeLocationStore, geocoder service.Geocoder) service.LocationService {
	return service.NewLocationService(locations, geocoder, nil, newTestLogger(), 3, time.Millisecond, 5.0)
}

func TestLocationUpdate(t *testing.T) {
	t.Parallel()

	locations := &fakeLocationStore{}
	svc := newLocationService(locations, nil)

	actor := domain.Identity{UserID: uuid.New(), Role: domain.RoleUser}
	if err := svc.Update(context.Background(), actor, domain.UpdateLocationRequest{Lat: 28.6, Lng: 77.2}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	// second update must overwrite, not duplicate
	if err := svc.Update(context.Background(), actor, domain.UpdateLocationRequest{Lat: 28.7, Lng: 77.3}); err != nil {
		t.Fatalf("second Update: %v", err)
	}

	if len(locations.locations) != 1 {
		t.Fatalf("stored %d rows, want 1", len(locations.locations))
	}
	if got := *locations.locations[0].Lat; got != 28.7 {
		t.Errorf("stored lat = %v, want the latest value", got)
	}
}

func TestLocationUpdate_RetriesContention(t *testing.T) {
	t.Parallel()

	locations := &fakeLocationStore{busyTimes: 2, busyErr: e.ErrStorageBusy}
	svc := newLocationService(locations, nil)

	actor := domain.Identity{UserID: uuid.New(), Role: domain.RoleUser}
	if err := svc.Update(context.Background(), actor, domain.UpdateLocationRequest{Lat: 1, Lng: 1}); err != nil {
		t.Fatalf("Update after transient contention: %v", err)
	}
	if locations.upserts != 3 {
		t.Errorf("upsert attempts = %d, want 3", locations.upserts)
	}
}

func TestLocationUpdate_ContentionExhaustsRetries(t *testing.T) {
	t.Parallel()

	locations := &fakeLocationStore{busyTimes: 10, busyErr: e.ErrStorageBusy}
	svc := newLocationService(locations, nil)

	err := svc.Update(context.Background(), domain.Identity{UserID: uuid.New()}, domain.UpdateLocationRequest{Lat: 1, Lng: 1})
	if !errors.Is(err, e.ErrStorageBusy) {
		t.Fatalf("got %v, want ErrStorageBusy after exhausted retries", err)
	}
	if locations.upserts != 3 {
		t.Errorf("upsert attempts = %d, want exactly 3", locations.upserts)
	}
}

func TestLocationUpdate_NonTransientErrorNotRetried(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("constraint violated")
	locations := &fakeLocationStore{busyTimes: 10, busyErr: wantErr}
	svc := newLocationService(locations, nil)

	err := svc.Update(context.Background(), domain.Identity{UserID: uuid.New()}, domain.UpdateLocationRequest{Lat: 1, Lng: 1})
	if !errors.Is(err, wantErr) {
		t.Fatalf("got %v, want the storage error", err)
	}
	if locations.upserts != 1 {
		t.Errorf("upsert attempts = %d, want 1 (no retry on non-transient errors)", locations.upserts)
	}
}

func TestLive_FiltersUnknownCoordinates(t *testing.T) {
	t.Parallel()

	tracked := userAt(28.6, 77.2)
	tracked.Username = "asha"
	locations := &fakeLocationStore{locations: []*domain.UserLocation{
		tracked,
		{UserID: uuid.New(), Username: "ghost"},
	}}
	svc := newLocationService(locations, nil)

	live, err := svc.Live(context.Background())
	if err != nil {
		t.Fatalf("Live: %v", err)
	}
	if len(live) != 1 {
		t.Fatalf("live rows = %d, want 1", len(live))
	}
	if live[0].Username != "asha" || live[0].Lat != 28.6 {
		t.Errorf("live row = %+v, want the tracked user", live[0])
	}
}

func TestReverseGeocode_DegradesOnFailure(t *testing.T) {
	t.Parallel()

	svc := newLocationService(&fakeLocationStore{}, &fakeGeocoder{
		address: "address unknown",
		err:     errors.New("nominatim timeout"),
	})

	if got := svc.ReverseGeocode(context.Background(), 28.6, 77.2); got != "address unknown" {
		t.Errorf("got %q, want the placeholder address", got)
	}
}
