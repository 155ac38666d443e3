package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/unit-availability/internal/api/router"
	"github.com/wolfman30/unit-availability/internal/app/bootstrap"
	"github.com/wolfman30/unit-availability/internal/audit"
	appconfig "github.com/wolfman30/unit-availability/internal/config"
	"github.com/wolfman30/unit-availability/internal/observability/metrics"
	"github.com/wolfman30/unit-availability/internal/reservations"
	"github.com/wolfman30/unit-availability/internal/units"
	"github.com/wolfman30/unit-availability/pkg/logging"
)

func main() {
	// .env is optional outside local development
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.NewWithFormat(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting unit availability API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.IsProduction() && len(corsOrigins(cfg)) < len(cfg.CORSAllowedOrigins) {
		logger.Warn("ignoring wildcard CORS origin in production")
	}

	ctx := context.Background()

	pool, err := bootstrap.BuildPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect calendar database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient == nil {
		logger.Error("unit config store unavailable", "addr", cfg.RedisAddr)
		os.Exit(1)
	}
	defer func() { _ = redisClient.Close() }()

	auditService, auditDB := bootstrap.BuildAuditService(ctx, cfg, logger)
	if auditDB != nil {
		defer func() { _ = auditDB.Close() }()
	} else if cfg.AuditEnabled {
		logger.Warn("decision audit disabled: database unavailable")
	}

	configs := units.NewConfigStore(redisClient)
	snapshots := units.NewService(configs, units.NewRepository(pool), logger)

	handler := buildRouter(cfg, logger, snapshots, configs, auditService,
		bootstrap.HealthChecks(pool, redisClient, auditDB))

	srv := newHTTPServer(cfg, handler)

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

func buildRouter(
	cfg *appconfig.Config,
	logger *logging.Logger,
	snapshots reservations.SnapshotLoader,
	configs reservations.ConfigStore,
	auditService *audit.Service,
	checks map[string]router.HealthCheck,
) http.Handler {
	reg := bootstrap.NewRegistry()
	availabilityMetrics := metrics.NewAvailabilityMetrics(reg)

	handlerCfg := reservations.HandlerConfig{
		Snapshots:            snapshots,
		Configs:              configs,
		Metrics:              availabilityMetrics,
		Logger:               logger,
		DefaultLookaheadDays: cfg.DefaultLookaheadDays,
		MaxRangeDays:         cfg.MaxRangeDays,
	}
	if auditService != nil {
		handlerCfg.Audit = auditService
	}
	reservationsHandler := reservations.NewHandler(handlerCfg)

	return router.New(&router.Config{
		Logger:             logger,
		Reservations:       reservationsHandler,
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Gatherer:           reg,
		CORSAllowedOrigins: corsOrigins(cfg),
		HealthChecks:       checks,
	})
}

// corsOrigins drops the "*" wildcard in production; browsers there must be listed.
func corsOrigins(cfg *appconfig.Config) []string {
	if !cfg.IsProduction() {
		return cfg.CORSAllowedOrigins
	}
	var origins []string
	for _, origin := range cfg.CORSAllowedOrigins {
		if origin != "*" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func newHTTPServer(cfg *appconfig.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
}
