// Package app wires configuration, logging, services, and the HTTP server
// into a runnable application.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"ordersight/internal/config"
	apierrors "ordersight/internal/errors"
	"ordersight/internal/infrastructure"
	custommiddleware "ordersight/internal/middleware"
	"ordersight/internal/services"
	handlers "ordersight/internal/transport/http"
	ws "ordersight/internal/websocket"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Application is the main application container.
type Application struct {
	Config         *config.Config
	Router         *chi.Mux
	Server         *http.Server
	WebSocketHub   *ws.Hub
	DatasetService *services.DatasetService
	Metrics        *infrastructure.Metrics
	Logger         *slog.Logger
}

// NewApplication builds the application from configuration.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("version", Version),
		slog.Int("port", cfg.Server.Port))

	metrics := infrastructure.NewMetrics()

	hub := ws.NewHub(logger)

	datasetService := services.NewDatasetService(logger, services.DatasetServiceConfig{
		MaxSessions: cfg.Datasets.MaxSessions,
		TopProducts: cfg.Analysis.TopProducts,
	}, metrics, hub)

	app := &Application{
		Config:         cfg,
		WebSocketHub:   hub,
		DatasetService: datasetService,
		Metrics:        metrics,
		Logger:         logger,
	}

	app.Router = app.buildRouter()
	app.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return app, nil
}

func (app *Application) buildRouter() *chi.Mux {
	r := chi.NewRouter()

	errorHandler := apierrors.NewErrorHandler(app.Logger, false)

	r.Use(custommiddleware.RequestID)
	r.Use(custommiddleware.RealIP)
	r.Use(custommiddleware.StructuredLogger(app.Logger))
	r.Use(custommiddleware.Recoverer(app.Logger))
	r.Use(custommiddleware.SecurityHeaders)
	r.Use(custommiddleware.Compress(5))
	r.Use(custommiddleware.StripSlashes)

	if app.Config.Server.RateLimit.Enabled {
		limiter := custommiddleware.NewRateLimiter(
			app.Config.Server.RateLimit.RPS,
			app.Config.Server.RateLimit.Burst,
			app.Logger,
		)
		r.Use(limiter.Handler)
	}

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	datasetHandler := handlers.NewDatasetHandler(
		app.DatasetService, app.Logger, errorHandler, app.Config.Datasets.MaxUploadBytes)
	healthHandler := handlers.NewHealthHandler(Version)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/datasets", datasetHandler.Routes())
		r.Get("/healthz", healthHandler.Healthz)
	})

	r.Handle("/metrics", handlers.MetricsHandler(app.Metrics.Registry))

	r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
		ws.ServeWS(app.WebSocketHub, w, req)
	})

	return r
}

// Run starts the hub and HTTP server, then blocks until a shutdown signal
// arrives or the server fails.
func (app *Application) Run(ctx context.Context) error {
	app.WebSocketHub.Start()
	defer app.WebSocketHub.Stop()

	serverErr := make(chan error, 1)
	go func() {
		app.Logger.Info("http server listening", slog.String("addr", app.Server.Addr))
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
		app.Logger.Info("context canceled, shutting down")
	case sig := <-stop:
		app.Logger.Info("signal received, shutting down", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := app.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	app.Logger.Info("shutdown complete")
	return nil
}
