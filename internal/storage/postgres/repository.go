package postgres

import (
	"context"

	"github.com/google/uuid"

	"alertline/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type FacilityRepository interface {
	Create(ctx context.Context, facility *domain.Facility) error
	All(ctx context.Context, kind domain.FacilityKind) ([]*domain.Facility, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Facility, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Facility, error)
}

type AlertRepository interface {
	// CreateWithAssignment persists the alert and its assignment in one
	// transaction: both rows exist afterwards or neither does.
	CreateWithAssignment(ctx context.Context, alert *domain.Alert, assignment *domain.Assignment) error
	ListRecent(ctx context.Context, limit int) ([]*domain.Alert, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Alert, error)
	GetAssignment(ctx context.Context, id uuid.UUID) (*domain.Assignment, error)
	UpdateAssignmentStatus(ctx context.Context, id uuid.UUID, status domain.AssignmentStatus) error
	ListAssignments(ctx context.Context, kind domain.FacilityKind, facilityID uuid.UUID) ([]*domain.AssignmentView, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteAll(ctx context.Context, userID uuid.UUID) error
}

type BroadcastRepository interface {
	Create(ctx context.Context, b *domain.Broadcast) error
}

type LocationRepository interface {
	// Upsert atomically inserts or replaces the single row for userID.
	Upsert(ctx context.Context, userID uuid.UUID, lat, lng float64) error
	All(ctx context.Context) ([]*domain.UserLocation, error)
}
