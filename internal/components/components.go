package components

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"alertline/internal/api"
	"alertline/internal/clients/geocode"
	"alertline/internal/clients/overpass"
	"alertline/internal/config"
	"alertline/internal/push"
	"alertline/internal/service"
	"alertline/internal/storage/postgres"
	"alertline/internal/storage/redis"
	"alertline/pkg/logger"
)

type Components struct {
	logger     *slog.Logger
	HttpServer *api.Server
	Postgres   *postgres.Postgres
	Redis      *redis.Redis
}

func InitComponents(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	logger.Info("Initializing Postgres")

	storage, err := postgres.NewPostgres(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to init postgres",
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("failed to init postgres: %w", err)
	}

	logger.Info("Initializing Redis")
	redisClient, err := redis.NewRedis(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init redis: %w", err)
	}

	facilityCache := redis.NewFacilityCache(redisClient, cfg.Alert.FacilityCacheTTL)
	registry := service.NewCachedRegistry(storage.Facility, facilityCache, logger)

	geocoder := geocode.NewClient(cfg.Geocode, logger)
	amenities := overpass.NewClient(cfg.Geocode, logger)
	pushSender := push.NewSender(logger, cfg.Push)

	notifier := service.NewProximityNotifier(storage.Location, storage.Notification, pushSender, logger, cfg.Alert.NotifyRadiusKm)

	authSvc := service.NewAuthService(storage.User, storage.Facility, facilityCache, logger, cfg.Auth)
	alertSvc := service.NewAlertService(registry, storage.Alert, notifier, geocoder, logger)
	dispatchSvc := service.NewDispatchService(storage.Alert, storage.Facility, storage.Broadcast, notifier, logger)
	locationSvc := service.NewLocationService(storage.Location, geocoder, amenities, logger,
		cfg.Alert.UpsertRetries, cfg.Alert.UpsertBackoff, cfg.Alert.NotifyRadiusKm)
	notificationSvc := service.NewNotificationService(storage.Notification, logger)

	srv := service.NewService(authSvc, alertSvc, dispatchSvc, locationSvc, notificationSvc)

	httpServer := api.NewServer(cfg, logger, srv)
	logger.Info("Initialized server")

	return &Components{
		logger:     logger,
		HttpServer: httpServer,
		Postgres:   storage,
		Redis:      redisClient,
	}, nil
}

func SetupLogger(env string) *slog.Logger {
	switch env {
	case "local":
		return logger.SetupPrettySlog()
	case "dev":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	default:
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	}
}

func (c *Components) ShutdownAll() {
	start := time.Now()
	c.logger.Info("Component shutdown started")

	c.Postgres.Pool.Close()
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.logger.Error("Redis close failed", slog.String("err", err.Error()))
		}
	}

	c.logger.Info("All components shut down",
		slog.Duration("latency", time.Since(start)))
}
