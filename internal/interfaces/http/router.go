// Package http assembles the chi route tree and the HTTP server of the
// prediction service.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/ToxPredict/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ToxPredict/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ToxPredict/internal/interfaces/http/handlers"
	"github.com/turtacn/ToxPredict/internal/interfaces/http/middleware"
)

// RouterConfig aggregates all handler and middleware dependencies required
// to construct the complete HTTP route tree.
type RouterConfig struct {
	// Handlers
	PredictionHandler *handlers.PredictionHandler
	MoleculeHandler   *handlers.MoleculeHandler
	HealthHandler     *handlers.HealthHandler

	// Middleware
	CORS        *middleware.CORSConfig
	RateLimiter middleware.RateLimiter
	Logging     middleware.LoggingConfig
	MaxBodySize int64

	// Infrastructure
	Logger           logging.Logger
	Metrics          *prometheus.AppMetrics
	MetricsCollector prometheus.MetricsCollector
	MetricsPath      string
}

// NewRouter builds the route tree.  Nil handlers leave their routes
// unregistered.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}

	r := chi.NewRouter()

	// --- Global middleware (applied to every request) ---
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogging(cfg.Logger.Named("http"), cfg.Logging))
	r.Use(middleware.Metrics(cfg.Metrics))
	r.Use(chimw.Recoverer)
	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}
	if cfg.RateLimiter != nil {
		r.Use(middleware.RateLimit(cfg.RateLimiter, "/healthz", "/readyz", cfg.MetricsPath))
	}
	if cfg.MaxBodySize > 0 {
		r.Use(chimw.RequestSize(cfg.MaxBodySize))
	}

	// --- Probes and scrape endpoint ---
	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsCollector != nil {
		r.Handle(cfg.MetricsPath, cfg.MetricsCollector.Handler())
	}

	// --- Legacy form endpoint ---
	if cfg.PredictionHandler != nil {
		r.Post("/predict", cfg.PredictionHandler.PredictForm)
	}

	// --- API v1 ---
	r.Route("/api/v1", func(api chi.Router) {
		registerPredictionRoutes(api, cfg.PredictionHandler)
		registerMoleculeRoutes(api, cfg.MoleculeHandler)
	})

	return r
}

func registerPredictionRoutes(r chi.Router, h *handlers.PredictionHandler) {
	if h == nil {
		return
	}
	r.Post("/predictions", h.PredictJSON)
	r.Get("/options", h.Options)
	r.Get("/bundle", h.Bundle)
}

// registerMoleculeRoutes mounts structure utilities under /molecules.
func registerMoleculeRoutes(r chi.Router, h *handlers.MoleculeHandler) {
	if h == nil {
		return
	}
	r.Route("/molecules", func(mr chi.Router) {
		mr.Post("/standardize", h.Standardize)
		mr.Post("/fingerprint", h.Fingerprint)
		mr.Post("/similarity", h.Similarity)
	})
}

//Personal.AI order the ending
