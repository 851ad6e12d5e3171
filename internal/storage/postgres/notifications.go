package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"alertline/internal/domain"
	"alertline/pkg/e"
)

type NotificationRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewNotificationRepo(pool *pgxpool.Pool, logger *slog.Logger) *NotificationRepo {
	return &NotificationRepo{pool: pool, logger: logger}
}

func (p *NotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	const op = "postgres.Notification.Create"

	const query = `
		INSERT INTO notifications (id, user_id, title, message, lat, lng, address, broadcast_id, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	_, err := p.pool.Exec(ctx, query,
		n.ID,
		n.UserID,
		n.Title,
		n.Message,
		n.Lat,
		n.Lng,
		n.Address,
		n.BroadcastID,
		n.IsRead,
		n.CreatedAt,
	)
	if err != nil {
		p.logger.Error("db exec failed",
			slog.String("op", op),
			slog.Any("error", err),
			slog.String("user_id", n.UserID.String()),
		)
		return e.WrapError(ctx, op, err)
	}

	return nil
}

func (p *NotificationRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error) {
	const op = "postgres.Notification.ListByUser"

	const query = `
		SELECT id, user_id, title, message, lat, lng, address, broadcast_id, is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := p.pool.Query(ctx, query, userID)
	if err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.Title,
			&n.Message,
			&n.Lat,
			&n.Lng,
			&n.Address,
			&n.BroadcastID,
			&n.IsRead,
			&n.CreatedAt,
		); err != nil {
			p.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		notifications = append(notifications, &n)
	}
	if err := rows.Err(); err != nil {
		p.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	return notifications, nil
}

func (p *NotificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	const op = "postgres.Notification.MarkAllRead"

	const query = `
		UPDATE notifications
		SET is_read = TRUE
		WHERE user_id = $1 AND is_read = FALSE
	`

	if _, err := p.pool.Exec(ctx, query, userID); err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}

	return nil
}

func (p *NotificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	const op = "postgres.Notification.CountUnread"

	const query = `
		SELECT COUNT(*)
		FROM notifications
		WHERE user_id = $1 AND is_read = FALSE
	`

	var cnt int64
	if err := p.pool.QueryRow(ctx, query, userID).Scan(&cnt); err != nil {
		p.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err))
		return 0, e.WrapError(ctx, op, err)
	}

	return cnt, nil
}

func (p *NotificationRepo) DeleteAll(ctx context.Context, userID uuid.UUID) error {
	const op = "postgres.Notification.DeleteAll"

	const query = `DELETE FROM notifications WHERE user_id = $1`

	if _, err := p.pool.Exec(ctx, query, userID); err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}

	return nil
}
