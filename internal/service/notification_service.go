package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"alertline/internal/domain"
)

// NotificationInbox is the recipient-facing storage surface.
type NotificationInbox interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteAll(ctx context.Context, userID uuid.UUID) error
}

type notificationService struct {
	inbox  NotificationInbox
	logger *slog.Logger
}

func NewNotificationService(inbox NotificationInbox, logger *slog.Logger) NotificationService {
	return &notificationService{inbox: inbox, logger: logger}
}

// List returns the caller's notifications newest first and bulk-marks the
// unread ones as read; viewing the inbox is what flips the flag.
func (s *notificationService) List(ctx context.Context, actor domain.Identity) ([]*domain.Notification, error) {
	notifications, err := s.inbox.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.inbox.MarkAllRead(ctx, actor.UserID); err != nil {
		// the list is already correct; the unread badge will self-heal on
		// the next successful view
		s.logger.Warn("mark-all-read failed", slog.Any("error", err))
	}

	return notifications, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, actor domain.Identity) (int64, error) {
	return s.inbox.CountUnread(ctx, actor.UserID)
}

func (s *notificationService) Clear(ctx context.Context, actor domain.Identity) error {
	return s.inbox.DeleteAll(ctx, actor.UserID)
}
