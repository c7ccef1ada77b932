package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/paysaga/internal/adapter/http/handler"
	"github.com/iho/paysaga/internal/adapter/http/middleware"
	"github.com/iho/paysaga/internal/infrastructure/metrics"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	WebhookHandler *handler.WebhookHandler
	AuditHandler   *handler.AuditHandler
	HealthHandler  *handler.HealthHandler
	MetricsHandler http.Handler
	Metrics        *metrics.Metrics
	Logger         zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics(cfg.Metrics))
	r.Use(middleware.Recovery(cfg.Logger))

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Gateway webhooks
	if cfg.WebhookHandler != nil {
		r.Post("/webhooks/{gateway}", cfg.WebhookHandler.Receive)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.AuditHandler != nil {
			r.Get("/audit", cfg.AuditHandler.List)
		}
	})

	return r
}
