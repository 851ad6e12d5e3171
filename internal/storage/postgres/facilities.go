package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"alertline/internal/domain"
	"alertline/pkg/e"
)

type FacilityRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewFacilityRepo(pool *pgxpool.Pool, logger *slog.Logger) *FacilityRepo {
	return &FacilityRepo{pool: pool, logger: logger}
}

func (p *FacilityRepo) Create(ctx context.Context, facility *domain.Facility) error {
	const op = "postgres.Facility.Create"

	const query = `
		INSERT INTO facilities (id, user_id, kind, name, lat, lng, phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	if facility.ID == uuid.Nil {
		facility.ID = uuid.New()
	}
	if facility.CreatedAt.IsZero() {
		facility.CreatedAt = time.Now().UTC()
	}

	_, err := p.pool.Exec(ctx, query,
		facility.ID,
		facility.UserID,
		facility.Kind,
		facility.Name,
		facility.Lat,
		facility.Lng,
		facility.Phone,
		facility.CreatedAt,
	)
	if err != nil {
		p.logger.Error("db exec failed",
			slog.String("op", op),
			slog.Any("error", err),
			slog.String("kind", string(facility.Kind)),
		)
		return e.WrapError(ctx, op, err)
	}

	return nil
}

// All returns every facility of the given kind ordered by id ascending.
// The ordering is what makes nearest-selection tie-breaks deterministic.
func (p *FacilityRepo) All(ctx context.Context, kind domain.FacilityKind) ([]*domain.Facility, error) {
	const op = "postgres.Facility.All"

	const query = `
		SELECT id, user_id, kind, name, lat, lng, phone, created_at
		FROM facilities
		WHERE kind = $1
		ORDER BY id
	`

	rows, err := p.pool.Query(ctx, query, kind)
	if err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	var facilities []*domain.Facility
	for rows.Next() {
		var f domain.Facility
		if err := rows.Scan(
			&f.ID,
			&f.UserID,
			&f.Kind,
			&f.Name,
			&f.Lat,
			&f.Lng,
			&f.Phone,
			&f.CreatedAt,
		); err != nil {
			p.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		facilities = append(facilities, &f)
	}
	if err := rows.Err(); err != nil {
		p.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	return facilities, nil
}

func (p *FacilityRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Facility, error) {
	const op = "postgres.Facility.GetByUserID"
	return p.getBy(ctx, op, `user_id = $1`, userID)
}

func (p *FacilityRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Facility, error) {
	const op = "postgres.Facility.GetByID"
	return p.getBy(ctx, op, `id = $1`, id)
}

func (p *FacilityRepo) getBy(ctx context.Context, op, cond string, arg any) (*domain.Facility, error) {
	query := `
		SELECT id, user_id, kind, name, lat, lng, phone, created_at
		FROM facilities
		WHERE ` + cond

	var f domain.Facility
	err := p.pool.QueryRow(ctx, query, arg).Scan(
		&f.ID,
		&f.UserID,
		&f.Kind,
		&f.Name,
		&f.Lat,
		&f.Lng,
		&f.Phone,
		&f.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
		}
		p.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	return &f, nil
}
