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

type LocationRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewLocationRepo(pool *pgxpool.Pool, logger *slog.Logger) *LocationRepo {
	return &LocationRepo{pool: pool, logger: logger}
}

// Upsert is a single atomic insert-or-update; two concurrent writes for the
// same user leave one row holding the later coordinate.
func (p *LocationRepo) Upsert(ctx context.Context, userID uuid.UUID, lat, lng float64) error {
	const op = "postgres.Location.Upsert"

	const query = `
		INSERT INTO user_locations (user_id, lat, lng, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			updated_at = EXCLUDED.updated_at
	`

	_, err := p.pool.Exec(ctx, query, userID, lat, lng, time.Now().UTC())
	if err != nil {
		p.logger.Error("db exec failed",
			slog.String("op", op),
			slog.Any("error", err),
			slog.String("user_id", userID.String()),
		)
		return e.WrapError(ctx, op, err)
	}

	return nil
}

func (p *LocationRepo) All(ctx context.Context) ([]*domain.UserLocation, error) {
	const op = "postgres.Location.All"

	const query = `
		SELECT l.user_id, u.username, l.lat, l.lng, l.updated_at
		FROM user_locations l
		JOIN users u ON u.id = l.user_id
	`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	var locations []*domain.UserLocation
	for rows.Next() {
		var l domain.UserLocation
		if err := rows.Scan(
			&l.UserID,
			&l.Username,
			&l.Lat,
			&l.Lng,
			&l.UpdatedAt,
		); err != nil {
			p.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		locations = append(locations, &l)
	}
	if err := rows.Err(); err != nil {
		p.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	return locations, nil
}
