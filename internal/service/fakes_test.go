package service_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"alertline/internal/domain"
	"alertline/pkg/e"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeRegistry serves fixed facility lists per kind.
type fakeRegistry struct {
	facilities map[domain.FacilityKind][]*domain.Facility
	err        error
}

func (f *fakeRegistry) All(_ context.Context, kind domain.FacilityKind) ([]*domain.Facility, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.facilities[kind], nil
}

// fakeNotificationStore records created notifications; failUsers simulates
// per-recipient write failures.
type fakeNotificationStore struct {
	mu        sync.Mutex
	created   []*domain.Notification
	failUsers map[uuid.UUID]bool
}

func (f *fakeNotificationStore) Create(_ context.Context, n *domain.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUsers[n.UserID] {
		return errors.New("write failed")
	}
	f.created = append(f.created, n)
	return nil
}

func (f *fakeNotificationStore) forUser(userID uuid.UUID) []*domain.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Notification
	for _, n := range f.created {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

// fakeLocationStore holds tracked user locations and counts upserts.
type fakeLocationStore struct {
	mu        sync.Mutex
	locations []*domain.UserLocation
	upserts   int
	// busyTimes makes the first N upserts fail with the given error
	busyTimes int
	busyErr   error
}

func (f *fakeLocationStore) All(_ context.Context) ([]*domain.UserLocation, error) {
	return f.locations, nil
}

func (f *fakeLocationStore) Upsert(_ context.Context, userID uuid.UUID, lat, lng float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	if f.upserts <= f.busyTimes {
		return f.busyErr
	}
	for _, l := range f.locations {
		if l.UserID == userID {
			l.Lat, l.Lng = &lat, &lng
			return nil
		}
	}
	f.locations = append(f.locations, &domain.UserLocation{UserID: userID, Lat: &lat, Lng: &lng})
	return nil
}

// fakeAlertStore is a stateful in-memory stand-in for the alert repository.
type fakeAlertStore struct {
	alerts      map[uuid.UUID]*domain.Alert
	assignments map[uuid.UUID]*domain.Assignment
	createErr   error
}

func newFakeAlertStore() *fakeAlertStore {
	return &fakeAlertStore{
		alerts:      make(map[uuid.UUID]*domain.Alert),
		assignments: make(map[uuid.UUID]*domain.Assignment),
	}
}

func (f *fakeAlertStore) CreateWithAssignment(_ context.Context, alert *domain.Alert, assignment *domain.Assignment) error {
	if f.createErr != nil {
		return f.createErr
	}
	if alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	}
	if assignment.ID == uuid.Nil {
		assignment.ID = uuid.New()
	}
	assignment.AlertID = alert.ID
	f.alerts[alert.ID] = alert
	f.assignments[assignment.ID] = assignment
	return nil
}

func (f *fakeAlertStore) ListRecent(_ context.Context, limit int) ([]*domain.Alert, error) {
	out := make([]*domain.Alert, 0, len(f.alerts))
	for _, a := range f.alerts {
		out = append(out, a)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeAlertStore) Get(_ context.Context, id uuid.UUID) (*domain.Alert, error) {
	a, ok := f.alerts[id]
	if !ok {
		return nil, errNotFoundFake
	}
	return a, nil
}

func (f *fakeAlertStore) GetAssignment(_ context.Context, id uuid.UUID) (*domain.Assignment, error) {
	a, ok := f.assignments[id]
	if !ok {
		return nil, errNotFoundFake
	}
	return a, nil
}

func (f *fakeAlertStore) UpdateAssignmentStatus(_ context.Context, id uuid.UUID, status domain.AssignmentStatus) error {
	a, ok := f.assignments[id]
	if !ok {
		return errNotFoundFake
	}
	a.Status = status
	return nil
}

func (f *fakeAlertStore) ListAssignments(_ context.Context, kind domain.FacilityKind, facilityID uuid.UUID) ([]*domain.AssignmentView, error) {
	var out []*domain.AssignmentView
	for _, a := range f.assignments {
		ref := a.PoliceID
		if kind == domain.FacilityHospital {
			ref = a.HospitalID
		}
		if ref != nil && *ref == facilityID {
			out = append(out, &domain.AssignmentView{Assignment: *a})
		}
	}
	return out, nil
}

var errNotFoundFake = errors.New("fake: not found")

// fakeFacilityStore resolves facilities by owning user.
type fakeFacilityStore struct {
	byUser map[uuid.UUID]*domain.Facility
}

func (f *fakeFacilityStore) GetByUserID(_ context.Context, userID uuid.UUID) (*domain.Facility, error) {
	fac, ok := f.byUser[userID]
	if !ok {
		return nil, errNotFoundFake
	}
	return fac, nil
}

type fakeBroadcastStore struct {
	created []*domain.Broadcast
}

func (f *fakeBroadcastStore) Create(_ context.Context, b *domain.Broadcast) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	f.created = append(f.created, b)
	return nil
}

// fakePush records delivery attempts; Send never blocks.
type fakePush struct {
	mu   sync.Mutex
	sent []domain.PushMessage
}

func (f *fakePush) Send(msg domain.PushMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
}

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*domain.User
	// createErr overrides the duplicate check when set
	createErr error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*domain.User)}
}

func (f *fakeUserStore) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.users[user.Username]; ok {
		return e.ErrUniqueViolation
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.users[user.Username] = user
	return nil
}

func (f *fakeUserStore) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[username]
	if !ok {
		return nil, e.ErrNotFound
	}
	return u, nil
}

type fakeFacilityCreator struct {
	created []*domain.Facility
}

func (f *fakeFacilityCreator) Create(_ context.Context, facility *domain.Facility) error {
	if facility.ID == uuid.Nil {
		facility.ID = uuid.New()
	}
	f.created = append(f.created, facility)
	return nil
}

// fakeCache counts invalidations; Get always misses.
type fakeCache struct {
	invalidated []domain.FacilityKind
}

func (f *fakeCache) Get(_ context.Context, _ domain.FacilityKind) ([]*domain.Facility, error) {
	return nil, nil
}

func (f *fakeCache) Set(_ context.Context, _ domain.FacilityKind, _ []*domain.Facility) error {
	return nil
}

func (f *fakeCache) Invalidate(_ context.Context, kind domain.FacilityKind) error {
	f.invalidated = append(f.invalidated, kind)
	return nil
}

type fakeGeocoder struct {
	address string
	err     error
}

func (f *fakeGeocoder) Reverse(_ context.Context, _, _ float64) (string, error) {
	return f.address, f.err
}

// facility builds a registry entry at a fixed coordinate.
func facility(id string, kind domain.FacilityKind, lat, lng float64) *domain.Facility {
	return &domain.Facility{
		ID:     uuid.MustParse(id),
		UserID: uuid.New(),
		Kind:   kind,
		Name:   string(kind) + "-" + id[:8],
		Lat:    lat,
		Lng:    lng,
	}
}

// userAt places a tracked user at a coordinate.
func userAt(lat, lng float64) *domain.UserLocation {
	return &domain.UserLocation{UserID: uuid.New(), Lat: &lat, Lng: &lng}
}
