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

type AlertRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewAlertRepo(pool *pgxpool.Pool, logger *slog.Logger) *AlertRepo {
	return &AlertRepo{pool: pool, logger: logger}
}

func (p *AlertRepo) CreateWithAssignment(ctx context.Context, alert *domain.Alert, assignment *domain.Assignment) error {
	const op = "postgres.Alert.CreateWithAssignment"

	if alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}
	if assignment.ID == uuid.Nil {
		assignment.ID = uuid.New()
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = alert.CreatedAt
	}
	assignment.AlertID = alert.ID

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		p.logger.Error("tx begin failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	defer tx.Rollback(ctx)

	const insertAlert = `
		INSERT INTO alerts (id, user_id, lat, lng, address, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := tx.Exec(ctx, insertAlert,
		alert.ID,
		alert.UserID,
		alert.Lat,
		alert.Lng,
		alert.Address,
		alert.Description,
		alert.CreatedAt,
	); err != nil {
		p.logger.Error("alert insert failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}

	const insertAssignment = `
		INSERT INTO assignments (id, alert_id, police_id, hospital_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := tx.Exec(ctx, insertAssignment,
		assignment.ID,
		assignment.AlertID,
		assignment.PoliceID,
		assignment.HospitalID,
		assignment.Status,
		assignment.CreatedAt,
	); err != nil {
		p.logger.Error("assignment insert failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		p.logger.Error("tx commit failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}

	return nil
}

func (p *AlertRepo) ListRecent(ctx context.Context, limit int) ([]*domain.Alert, error) {
	const op = "postgres.Alert.ListRecent"

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	const query = `
		SELECT id, user_id, lat, lng, address, description, created_at
		FROM alerts
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := p.pool.Query(ctx, query, limit)
	if err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	var alerts []*domain.Alert
	for rows.Next() {
		var a domain.Alert
		if err := rows.Scan(
			&a.ID,
			&a.UserID,
			&a.Lat,
			&a.Lng,
			&a.Address,
			&a.Description,
			&a.CreatedAt,
		); err != nil {
			p.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		alerts = append(alerts, &a)
	}
	if err := rows.Err(); err != nil {
		p.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	return alerts, nil
}

func (p *AlertRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Alert, error) {
	const op = "postgres.Alert.Get"

	const query = `
		SELECT id, user_id, lat, lng, address, description, created_at
		FROM alerts
		WHERE id = $1
	`

	var a domain.Alert
	err := p.pool.QueryRow(ctx, query, id).Scan(
		&a.ID,
		&a.UserID,
		&a.Lat,
		&a.Lng,
		&a.Address,
		&a.Description,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
		}
		p.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id.String()))
		return nil, e.WrapError(ctx, op, err)
	}

	return &a, nil
}

func (p *AlertRepo) GetAssignment(ctx context.Context, id uuid.UUID) (*domain.Assignment, error) {
	const op = "postgres.Assignment.Get"

	const query = `
		SELECT id, alert_id, police_id, hospital_id, status, created_at
		FROM assignments
		WHERE id = $1
	`

	var a domain.Assignment
	err := p.pool.QueryRow(ctx, query, id).Scan(
		&a.ID,
		&a.AlertID,
		&a.PoliceID,
		&a.HospitalID,
		&a.Status,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
		}
		p.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id.String()))
		return nil, e.WrapError(ctx, op, err)
	}

	return &a, nil
}

func (p *AlertRepo) UpdateAssignmentStatus(ctx context.Context, id uuid.UUID, status domain.AssignmentStatus) error {
	const op = "postgres.Assignment.UpdateStatus"

	const query = `
		UPDATE assignments
		SET status = $2
		WHERE id = $1
	`

	cmd, err := p.pool.Exec(ctx, query, id, status)
	if err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id.String()))
		return e.WrapError(ctx, op, err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}

	return nil
}

func (p *AlertRepo) ListAssignments(ctx context.Context, kind domain.FacilityKind, facilityID uuid.UUID) ([]*domain.AssignmentView, error) {
	const op = "postgres.Assignment.List"

	facilityCol := "police_id"
	if kind == domain.FacilityHospital {
		facilityCol = "hospital_id"
	}

	query := `
		SELECT s.id, s.alert_id, s.police_id, s.hospital_id, s.status, s.created_at,
			   a.id, a.user_id, a.lat, a.lng, a.address, a.description, a.created_at,
			   u.username
		FROM assignments s
		JOIN alerts a ON a.id = s.alert_id
		JOIN users u ON u.id = a.user_id
		WHERE s.` + facilityCol + ` = $1
		ORDER BY s.created_at DESC
	`

	rows, err := p.pool.Query(ctx, query, facilityID)
	if err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	var views []*domain.AssignmentView
	for rows.Next() {
		var v domain.AssignmentView
		if err := rows.Scan(
			&v.ID,
			&v.AlertID,
			&v.PoliceID,
			&v.HospitalID,
			&v.Status,
			&v.CreatedAt,
			&v.Alert.ID,
			&v.Alert.UserID,
			&v.Alert.Lat,
			&v.Alert.Lng,
			&v.Alert.Address,
			&v.Alert.Description,
			&v.Alert.CreatedAt,
			&v.Reporter,
		); err != nil {
			p.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		views = append(views, &v)
	}
	if err := rows.Err(); err != nil {
		p.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	return views, nil
}
