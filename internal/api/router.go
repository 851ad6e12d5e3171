package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"alertline/internal/api/handlers/http/alerts"
	"alertline/internal/api/handlers/http/auth"
	"alertline/internal/api/handlers/http/dispatch"
	"alertline/internal/api/handlers/http/location"
	"alertline/internal/api/handlers/http/notifications"
	"alertline/internal/api/handlers/http/system"
	"alertline/internal/config"
	"alertline/internal/domain"
	"alertline/internal/middleware"
	"alertline/internal/service"
)

type Server struct {
	logger *slog.Logger
	router *chi.Mux
	cfg    config.Config
}

func NewServer(cfg *config.Config, logger *slog.Logger, svc *service.Service) *Server {
	authHandler := auth.NewHandler(logger, svc.AuthService)
	alertHandler := alerts.NewHandler(logger, svc.AlertService)
	dispatchHandler := dispatch.NewHandler(logger, svc.DispatchService)
	locationHandler := location.NewHandler(logger, svc.LocationService)
	notificationHandler := notifications.NewHandler(logger, svc.NotificationService)
	systemHandler := system.NewHandler(logger)

	r := InitRouter(cfg, authHandler, alertHandler, dispatchHandler, locationHandler, notificationHandler, systemHandler, logger)

	return &Server{
		logger: logger,
		router: r,
		cfg:    *cfg,
	}
}

func InitRouter(
	cfg *config.Config,
	authHandler *auth.Handler,
	alertHandler *alerts.Handler,
	dispatchHandler *dispatch.Handler,
	locationHandler *location.Handler,
	notificationHandler *notifications.Handler,
	systemHandler *system.Handler,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewMux()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Logger)

	authed := middleware.Authenticate(cfg.Auth.JWTSecret)

	r.Route("/api/v1", func(api chi.Router) {
		// AUTH (no token)
		api.Route("/auth", func(ar chi.Router) {
			ar.Use(middleware.Limit(5, 10, 10*time.Minute, logger))
			ar.Post("/register", authHandler.Register)
			ar.Post("/register/police", authHandler.RegisterPolice)
			ar.Post("/register/hospital", authHandler.RegisterHospital)
			ar.Post("/login", authHandler.Login)
		})

		// CITIZEN
		api.Group(func(cr chi.Router) {
			cr.Use(authed)
			cr.Use(middleware.Limit(10, 20, 5*time.Minute, logger))

			cr.Post("/alerts", alertHandler.Report)
			cr.Get("/alerts", alertHandler.List)

			cr.Post("/location", locationHandler.Update)
			cr.Get("/location/live", locationHandler.Live)
			cr.Get("/location/reverse-geocode", locationHandler.ReverseGeocode)
			cr.Get("/location/nearby-services", locationHandler.NearbyServices)

			cr.Route("/notifications", func(nr chi.Router) {
				nr.Get("/", notificationHandler.List)
				nr.Get("/count", notificationHandler.UnreadCount)
				nr.Delete("/", notificationHandler.Clear)
			})
		})

		// DISPATCH (facility accounts)
		api.Route("/dispatch", func(dr chi.Router) {
			dr.Use(authed)

			dr.Get("/dashboard", dispatchHandler.Dashboard)

			dr.Group(func(pr chi.Router) {
				pr.Use(middleware.RequireRole(domain.RolePolice))
				pr.Post("/assignments/{id}/in-progress", dispatchHandler.SetInProgress)
				pr.Post("/assignments/{id}/resolve", dispatchHandler.Resolve)
				pr.Post("/assignments/{id}/broadcast", dispatchHandler.BroadcastAssignment)
				pr.Post("/broadcast", dispatchHandler.BroadcastPublic)
			})
		})

		// SYSTEM
		api.Get("/health", systemHandler.SystemHealth)
	})

	return r
}

func (s *Server) Run(ctx context.Context) error {
	port := s.cfg.Http.Port
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	srv := &http.Server{
		Addr:         port,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Http.ReadTimeout,
		WriteTimeout: s.cfg.Http.WriteTimeout,
		IdleTimeout:  30 * time.Second,
	}

	errChan := make(chan error, 1)

	go func() {
		s.logger.Info("Starting HTTP server",
			slog.String("addr", srv.Addr),
			slog.Duration("read_timeout", s.cfg.Http.ReadTimeout),
			slog.Duration("write_timeout", s.cfg.Http.WriteTimeout),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("ListenAndServe error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP server", slog.String("reason", ctx.Err().Error()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Http.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Server shutdown failed", slog.Any("error", err))
			return err
		}
		return nil

	case err := <-errChan:
		return err
	}
}
