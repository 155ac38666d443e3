package router

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	httpmiddleware "github.com/wolfman30/unit-availability/internal/http/middleware"
	"github.com/wolfman30/unit-availability/internal/observability/metrics"
	"github.com/wolfman30/unit-availability/internal/reservations"
	"github.com/wolfman30/unit-availability/pkg/logging"
)

const healthTimeout = 2 * time.Second

// HealthCheck pings one backing dependency.
type HealthCheck func(ctx context.Context) error

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Reservations       *reservations.Handler
	MetricsHandler     http.Handler
	Gatherer           prometheus.Gatherer
	CORSAllowedOrigins []string

	// Named dependency checks reported by /health (optional)
	HealthChecks map[string]HealthCheck
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthHandler(cfg.HealthChecks))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}
	r.Get("/stats", statsHandler(cfg.Gatherer))

	if cfg.Reservations != nil {
		r.Mount("/units", cfg.Reservations.Routes())
	}

	return r
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		response := map[string]string{"status": "ok"}
		status := http.StatusOK
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				response[name] = err.Error()
				response["status"] = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			response[name] = "ok"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(response)
	}
}

func statsHandler(gatherer prometheus.Gatherer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(metrics.Summarize(gatherer))
	}
}
