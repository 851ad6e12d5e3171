package service

import (
	"context"

	"github.com/google/uuid"

	"alertline/internal/domain"
)

//go:generate mockgen -source=service.go -destination=mocks/mock.go
type AuthService interface {
	Register(ctx context.Context, req domain.RegisterRequest) (uuid.UUID, error)
	RegisterFacility(ctx context.Context, kind domain.FacilityKind, req domain.RegisterFacilityRequest) (uuid.UUID, error)
	Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error)
}

type AlertService interface {
	Report(ctx context.Context, actor domain.Identity, req domain.ReportAlertRequest) (domain.ReportAlertResponse, error)
	ListRecent(ctx context.Context) ([]*domain.Alert, error)
}

type DispatchService interface {
	Dashboard(ctx context.Context, actor domain.Identity) ([]*domain.AssignmentView, error)
	SetInProgress(ctx context.Context, actor domain.Identity, assignmentID uuid.UUID) error
	Resolve(ctx context.Context, actor domain.Identity, assignmentID uuid.UUID) error
	BroadcastAssignment(ctx context.Context, actor domain.Identity, assignmentID uuid.UUID, req domain.BroadcastRequest) (domain.BroadcastResponse, error)
	BroadcastPublic(ctx context.Context, actor domain.Identity, req domain.BroadcastRequest) (domain.BroadcastResponse, error)
}

type LocationService interface {
	Update(ctx context.Context, actor domain.Identity, req domain.UpdateLocationRequest) error
	Live(ctx context.Context) ([]domain.LiveLocation, error)
	ReverseGeocode(ctx context.Context, lat, lng float64) string
	NearbyServices(ctx context.Context, lat, lng float64) ([]domain.NearbyService, error)
}

type NotificationService interface {
	List(ctx context.Context, actor domain.Identity) ([]*domain.Notification, error)
	UnreadCount(ctx context.Context, actor domain.Identity) (int64, error)
	Clear(ctx context.Context, actor domain.Identity) error
}

type Service struct {
	AuthService         AuthService
	AlertService        AlertService
	DispatchService     DispatchService
	LocationService     LocationService
	NotificationService NotificationService
}

func NewService(
	authService AuthService,
	alertService AlertService,
	dispatchService DispatchService,
	locationService LocationService,
	notificationService NotificationService,
) *Service {
	return &Service{
		AuthService:         authService,
		AlertService:        alertService,
		DispatchService:     dispatchService,
		LocationService:     locationService,
		NotificationService: notificationService,
	}
}
