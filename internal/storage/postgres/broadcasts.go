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

type BroadcastRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewBroadcastRepo(pool *pgxpool.Pool, logger *slog.Logger) *BroadcastRepo {
	return &BroadcastRepo{pool: pool, logger: logger}
}

func (p *BroadcastRepo) Create(ctx context.Context, b *domain.Broadcast) error {
	const op = "postgres.Broadcast.Create"

	const query = `
		INSERT INTO broadcasts (id, facility_id, kind, message, photo_url, lat, lng, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8)
	`

	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	if b.Kind == "" {
		b.Kind = domain.BroadcastGeneral
	}

	_, err := p.pool.Exec(ctx, query,
		b.ID,
		b.FacilityID,
		b.Kind,
		b.Message,
		b.PhotoURL,
		b.Lat,
		b.Lng,
		b.CreatedAt,
	)
	if err != nil {
		p.logger.Error("db exec failed",
			slog.String("op", op),
			slog.Any("error", err),
			slog.String("facility_id", b.FacilityID.String()),
		)
		return e.WrapError(ctx, op, err)
	}

	return nil
}
