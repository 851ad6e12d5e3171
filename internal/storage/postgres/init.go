package postgres

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"alertline/internal/config"
	"alertline/pkg/e"
)

type Postgres struct {
	Pool         *pgxpool.Pool
	User         UserRepository
	Facility     FacilityRepository
	Alert        AlertRepository
	Notification NotificationRepository
	Broadcast    BroadcastRepository
	Location     LocationRepository
}

func NewPostgres(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Postgres, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.Database,
		cfg.Postgres.SSLMode,
	)

	logger.Info("Connecting to Postgres",
		slog.String("host", cfg.Postgres.Host),
		slog.String("db", cfg.Postgres.Database),
	)

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("Failed to parse pgx config", slog.String("error", err.Error()))
		return nil, e.Wrap("storage.pg.NewPostgres.ParseConfig", err)
	}
	poolCfg.MaxConns = cfg.Postgres.MaxConns
	poolCfg.MinConns = cfg.Postgres.MinConns
	poolCfg.MaxConnLifetime = cfg.Postgres.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		logger.Error("Failed to create pgx pool", slog.String("error", err.Error()))
		return nil, e.Wrap("storage.pg.NewPostgres.NewWithConfig", err)
	}

	if err := pool.Ping(ctx); err != nil {
		logger.Error("Failed to ping Postgres database", slog.String("error", err.Error()))
		pool.Close()
		return nil, e.Wrap("storage.pg.NewPostgres.Ping", err)
	}
	logger.Info("Connected to Postgres successfully")

	pg := NewRepositories(pool, logger)

	logger.Info("Postgres repositories created")
	return pg, nil
}

// NewRepositories wires the repository set over an existing pool; split off
// from NewPostgres so integration tests can reuse it.
func NewRepositories(pool *pgxpool.Pool, logger *slog.Logger) *Postgres {
	return &Postgres{
		Pool:         pool,
		User:         NewUserRepo(pool, logger),
		Facility:     NewFacilityRepo(pool, logger),
		Alert:        NewAlertRepo(pool, logger),
		Notification: NewNotificationRepo(pool, logger),
		Broadcast:    NewBroadcastRepo(pool, logger),
		Location:     NewLocationRepo(pool, logger),
	}
}
