package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"

	httpAdapter "github.com/lorrc/presence-stats/internal/adapters/primary/http"
	mw "github.com/lorrc/presence-stats/internal/adapters/primary/http/middleware"
	"github.com/lorrc/presence-stats/internal/adapters/secondary/store"
	"github.com/lorrc/presence-stats/internal/config"
	"github.com/lorrc/presence-stats/internal/core/services"
	"github.com/lorrc/presence-stats/internal/infrastructure/logging"
	"github.com/lorrc/presence-stats/internal/infrastructure/metrics"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Structured Logger
	logger, logCloser := logging.NewLogger(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: os.Stdout,
		File: logging.FileConfig{
			Path:       cfg.Logging.File,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
		},
		AddSource:   cfg.IsDevelopment(),
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})
	defer func() { _ = logCloser.Close() }()

	logger.Info("starting service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"store", cfg.Store.Driver,
	)
	logger.Info("configuration loaded", "config", cfg.String())

	// 3. Open the status record store
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	st, err := store.Open(ctx, cfg)
	if err != nil {
		logger.Error("failed to open store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	defer st.Close()
	logger.Info("store connection established", "driver", st.Driver)

	// 4. Business calendar
	calendar, err := cfg.Calendar()
	if err != nil {
		logger.Error("invalid business calendar", "error", err)
		os.Exit(1)
	}
	epochFloor, err := cfg.EpochFloor()
	if err != nil {
		logger.Error("invalid epoch floor", "error", err)
		os.Exit(1)
	}

	// 5. Metrics
	if cfg.Metrics.Enabled {
		if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
			logger.Error("failed to register metrics", "error", err)
			os.Exit(1)
		}
	}

	// 6. Error Handler
	errorHandler := httpAdapter.NewErrorHandler(logger)

	// 7. Initialize Rate Limiter
	var rateLimiter *mw.RateLimiter
	if cfg.RateLimit.Enabled {
		limiterCfg := mw.DefaultRateLimiterConfig()
		limiterCfg.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		limiterCfg.BurstSize = cfg.RateLimit.BurstSize
		limiterCfg.OnLimited = errorHandler.Handle
		rateLimiter = mw.NewRateLimiter(ctx, limiterCfg)
	}

	// 8. Dependency Injection (Wiring the Hexagon)

	// Services (Core)
	userLookup := services.NewUserLookupService(st.Users)
	statsService := services.NewStatisticsService(st.StatusRecords, userLookup, services.StatisticsOptions{
		Calendar:   calendar,
		EpochFloor: epochFloor,
		TxManager:  st.TxManager,
		Observer:   metrics.Recorder{},
		Logger:     logger,
	})

	// Handlers (Primary Adapters)
	statsHandler := httpAdapter.NewStatisticsHandler(statsService, calendar.Location, errorHandler, logger)
	healthHandler := httpAdapter.NewHealthHandler(st, statsService, st.Driver, cfg.App.Version)

	// 9. Setup Router
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(logger))
	r.Use(mw.RecoveryLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check endpoints (outside /api/v1)
	healthHandler.RegisterRoutes(r)

	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		if rateLimiter != nil {
			r.Use(rateLimiter.Middleware)
		}
		r.Route("/statistics", statsHandler.RegisterRoutes)
	})

	// 10. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal or a listener failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		logger.Error("server error", "error", err)
	}

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server shutdown complete")
}
