//go:build integration

package postgres

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"alertline/internal/domain"
)

var (
	testRepos *Postgres
	testPool  *pgxpool.Pool
	tc        testcontainers.Container
)

func TestMain(m *testing.M) {
	ctx := context.Background()

	user := "postgres"
	pass := "postgres"
	db := "postgres"

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     user,
			"POSTGRES_PASSWORD": pass,
			"POSTGRES_DB":       db,
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		).WithDeadline(90 * time.Second),
	}

	var err error
	tc, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		fmt.Println("cannot start container:", err)
		os.Exit(1)
	}

	host, _ := tc.Host(ctx)
	mappedPort, _ := tc.MappedPort(ctx, "5432/tcp")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, pass, host, mappedPort.Port(), db)

	testPool, err = pgxpool.New(ctx, dsn)
	if err != nil {
		fmt.Println("pgxpool.New:", err)
		_ = tc.Terminate(ctx)
		os.Exit(1)
	}

	if err := testPool.Ping(ctx); err != nil {
		fmt.Println("pool.Ping:", err)
		testPool.Close()
		_ = tc.Terminate(ctx)
		os.Exit(1)
	}

	if err := setupSchema(ctx, testPool); err != nil {
		fmt.Println("setupSchema:", err)
		testPool.Close()
		_ = tc.Terminate(ctx)
		os.Exit(1)
	}

	testRepos = NewRepositories(testPool, slog.New(slog.NewTextHandler(io.Discard, nil)))

	code := m.Run()

	testPool.Close()
	_ = tc.Terminate(ctx)
	os.Exit(code)
}

func setupSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id uuid PRIMARY KEY,
			username text NOT NULL UNIQUE,
			password_hash text NOT NULL,
			role text NOT NULL,
			created_at timestamptz NOT NULL
		);

		CREATE TABLE IF NOT EXISTS facilities (
			id uuid PRIMARY KEY,
			user_id uuid NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
			kind text NOT NULL,
			name text NOT NULL,
			lat double precision NOT NULL,
			lng double precision NOT NULL,
			phone text NOT NULL DEFAULT '',
			created_at timestamptz NOT NULL
		);

		CREATE TABLE IF NOT EXISTS alerts (
			id uuid PRIMARY KEY,
			user_id uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			lat double precision NOT NULL,
			lng double precision NOT NULL,
			address text NOT NULL DEFAULT '',
			description text NOT NULL DEFAULT '',
			created_at timestamptz NOT NULL
		);

		CREATE TABLE IF NOT EXISTS assignments (
			id uuid PRIMARY KEY,
			alert_id uuid NOT NULL REFERENCES alerts(id) ON DELETE CASCADE,
			police_id uuid REFERENCES facilities(id) ON DELETE SET NULL,
			hospital_id uuid REFERENCES facilities(id) ON DELETE SET NULL,
			status text NOT NULL,
			created_at timestamptz NOT NULL
		);

		CREATE TABLE IF NOT EXISTS broadcasts (
			id uuid PRIMARY KEY,
			facility_id uuid NOT NULL REFERENCES facilities(id) ON DELETE CASCADE,
			kind text NOT NULL,
			message text NOT NULL,
			photo_url text,
			lat double precision NOT NULL,
			lng double precision NOT NULL,
			created_at timestamptz NOT NULL
		);

		CREATE TABLE IF NOT EXISTS notifications (
			id uuid PRIMARY KEY,
			user_id uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			title text NOT NULL,
			message text NOT NULL,
			lat double precision NOT NULL DEFAULT 0,
			lng double precision NOT NULL DEFAULT 0,
			address text NOT NULL DEFAULT '',
			broadcast_id uuid REFERENCES broadcasts(id) ON DELETE SET NULL,
			is_read boolean NOT NULL DEFAULT false,
			created_at timestamptz NOT NULL
		);

		CREATE TABLE IF NOT EXISTS user_locations (
			user_id uuid PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			lat double precision,
			lng double precision,
			updated_at timestamptz NOT NULL
		);
	`)
	return err
}

func truncateAll(t *testing.T) {
	t.Helper()
	_, err := testPool.Exec(context.Background(),
		`TRUNCATE TABLE notifications, broadcasts, assignments, alerts, user_locations, facilities, users CASCADE`)
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}
}

func seedUser(t *testing.T, username string, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{Username: username, PasswordHash: "x", Role: role}
	if err := testRepos.User.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return u
}

func seedFacility(t *testing.T, kind domain.FacilityKind, name string, lat, lng float64) *domain.Facility {
	t.Helper()
	owner := seedUser(t, name+"-account", domain.Role(kind))
	f := &domain.Facility{UserID: owner.ID, Kind: kind, Name: name, Lat: lat, Lng: lng, Phone: "100"}
	if err := testRepos.Facility.Create(context.Background(), f); err != nil {
		t.Fatalf("seed facility %s: %v", name, err)
	}
	return f
}

func TestLocation_Upsert_LastWriteWins(t *testing.T) {
	truncateAll(t)

	u := seedUser(t, "walker", domain.RoleUser)

	if err := testRepos.Location.Upsert(context.Background(), u.ID, 28.6, 77.2); err != nil {
		t.Fatalf("first Upsert: %v", err)
	}
	if err := testRepos.Location.Upsert(context.Background(), u.ID, 28.7, 77.3); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}

	rows, err := testRepos.Location.All(context.Background())
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row got=%d", len(rows))
	}
	if *rows[0].Lat != 28.7 || *rows[0].Lng != 77.3 {
		t.Fatalf("expected latest coordinate got=(%v,%v)", *rows[0].Lat, *rows[0].Lng)
	}
}

func TestLocation_Upsert_Concurrent_SingleRow(t *testing.T) {
	truncateAll(t)

	u := seedUser(t, "runner", domain.RoleUser)

	const writers = 10
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- testRepos.Location.Upsert(context.Background(), u.ID, float64(i), float64(i))
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent Upsert: %v", err)
		}
	}

	rows, err := testRepos.Location.All(context.Background())
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row after %d concurrent writes got=%d", writers, len(rows))
	}
	if *rows[0].Lat < 0 || *rows[0].Lat >= writers {
		t.Fatalf("row holds a coordinate no writer wrote: %v", *rows[0].Lat)
	}
}

func TestAlert_CreateWithAssignment(t *testing.T) {
	truncateAll(t)

	reporter := seedUser(t, "reporter", domain.RoleUser)
	police := seedFacility(t, domain.FacilityPolice, "central-station", 28.60, 77.20)
	hospital := seedFacility(t, domain.FacilityHospital, "city-hospital", 28.61, 77.21)

	alert := &domain.Alert{
		UserID:      reporter.ID,
		Lat:         28.605,
		Lng:         77.205,
		Address:     "scene",
		Description: "fire",
	}
	assignment := &domain.Assignment{
		PoliceID:   &police.ID,
		HospitalID: &hospital.ID,
		Status:     domain.StatusAssigned,
	}

	if err := testRepos.Alert.CreateWithAssignment(context.Background(), alert, assignment); err != nil {
		t.Fatalf("CreateWithAssignment: %v", err)
	}
	if alert.ID == uuid.Nil || assignment.ID == uuid.Nil {
		t.Fatalf("expected ids set")
	}
	if assignment.AlertID != alert.ID {
		t.Fatalf("assignment not linked to its alert")
	}

	got, err := testRepos.Alert.GetAssignment(context.Background(), assignment.ID)
	if err != nil {
		t.Fatalf("GetAssignment: %v", err)
	}
	if got.Status != domain.StatusAssigned {
		t.Fatalf("expected status=assigned got=%s", got.Status)
	}
	if *got.PoliceID != police.ID || *got.HospitalID != hospital.ID {
		t.Fatalf("facility refs mismatch")
	}
}

func TestAlert_CreateWithAssignment_RollsBackOnBadRef(t *testing.T) {
	truncateAll(t)

	reporter := seedUser(t, "reporter2", domain.RoleUser)

	missing := uuid.New() // no such facility, the FK must fail
	alert := &domain.Alert{UserID: reporter.ID, Lat: 1, Lng: 1}
	assignment := &domain.Assignment{PoliceID: &missing, Status: domain.StatusAssigned}

	if err := testRepos.Alert.CreateWithAssignment(context.Background(), alert, assignment); err == nil {
		t.Fatalf("expected FK violation")
	}

	alerts, err := testRepos.Alert.ListRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(alerts) != 0 {
		t.Fatalf("alert survived a failed assignment insert: %d rows", len(alerts))
	}
}

func TestAssignment_UpdateStatusAndDashboardJoin(t *testing.T) {
	truncateAll(t)

	reporter := seedUser(t, "reporter3", domain.RoleUser)
	police := seedFacility(t, domain.FacilityPolice, "north-station", 28.70, 77.10)
	hospital := seedFacility(t, domain.FacilityHospital, "north-hospital", 28.71, 77.11)

	alert := &domain.Alert{UserID: reporter.ID, Lat: 28.7, Lng: 77.1, Description: "robbery"}
	assignment := &domain.Assignment{PoliceID: &police.ID, HospitalID: &hospital.ID, Status: domain.StatusAssigned}
	if err := testRepos.Alert.CreateWithAssignment(context.Background(), alert, assignment); err != nil {
		t.Fatalf("CreateWithAssignment: %v", err)
	}

	if err := testRepos.Alert.UpdateAssignmentStatus(context.Background(), assignment.ID, domain.StatusInProgress); err != nil {
		t.Fatalf("UpdateAssignmentStatus: %v", err)
	}

	views, err := testRepos.Alert.ListAssignments(context.Background(), domain.FacilityPolice, police.ID)
	if err != nil {
		t.Fatalf("ListAssignments: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 dashboard row got=%d", len(views))
	}
	v := views[0]
	if v.Status != domain.StatusInProgress {
		t.Fatalf("expected status=in_progress got=%s", v.Status)
	}
	if v.Alert.Description != "robbery" || v.Reporter != "reporter3" {
		t.Fatalf("join mismatch: alert=%q reporter=%q", v.Alert.Description, v.Reporter)
	}

	// the hospital side sees the same case through its own column
	hviews, err := testRepos.Alert.ListAssignments(context.Background(), domain.FacilityHospital, hospital.ID)
	if err != nil {
		t.Fatalf("ListAssignments hospital: %v", err)
	}
	if len(hviews) != 1 {
		t.Fatalf("expected 1 hospital row got=%d", len(hviews))
	}
}

func TestFacility_All_OrderedByID(t *testing.T) {
	truncateAll(t)

	seedFacility(t, domain.FacilityPolice, "station-a", 1, 1)
	seedFacility(t, domain.FacilityPolice, "station-b", 2, 2)
	seedFacility(t, domain.FacilityHospital, "hospital-a", 3, 3)

	police, err := testRepos.Facility.All(context.Background(), domain.FacilityPolice)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(police) != 2 {
		t.Fatalf("expected 2 police facilities got=%d", len(police))
	}
	if police[0].ID.String() > police[1].ID.String() {
		t.Fatalf("expected ascending id order")
	}
}

func TestNotification_InboxLifecycle(t *testing.T) {
	truncateAll(t)

	u := seedUser(t, "inbox-owner", domain.RoleUser)

	for i := 0; i < 3; i++ {
		n := &domain.Notification{UserID: u.ID, Title: "Police Alert", Message: fmt.Sprintf("msg %d", i)}
		if err := testRepos.Notification.Create(context.Background(), n); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	unread, err := testRepos.Notification.CountUnread(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("CountUnread: %v", err)
	}
	if unread != 3 {
		t.Fatalf("expected unread=3 got=%d", unread)
	}

	if err := testRepos.Notification.MarkAllRead(context.Background(), u.ID); err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	unread, _ = testRepos.Notification.CountUnread(context.Background(), u.ID)
	if unread != 0 {
		t.Fatalf("expected unread=0 after MarkAllRead got=%d", unread)
	}

	list, err := testRepos.Notification.ListByUser(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 notifications got=%d", len(list))
	}

	if err := testRepos.Notification.DeleteAll(context.Background(), u.ID); err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	list, _ = testRepos.Notification.ListByUser(context.Background(), u.ID)
	if len(list) != 0 {
		t.Fatalf("expected empty inbox after DeleteAll got=%d", len(list))
	}
}
