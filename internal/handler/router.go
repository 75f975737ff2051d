package handler

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/lyftr/lyftr/internal/metrics"
	"github.com/lyftr/lyftr/internal/middleware"
)

// NewRouter assembles the chi router with all routes and middleware.
// The metrics and logging middleware wrap every route, so 404s and
// panics are counted and logged like any other response.
func NewRouter(
	webhookHandler *WebhookHandler,
	messageHandler *MessageHandler,
	healthHandler *HealthHandler,
	metricsHandler *MetricsHandler,
	collector *metrics.Collector,
	logger *slog.Logger,
	maxBodySize int64,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.RequestSize(maxBodySize))
	r.Use(middleware.RequestID)
	r.Use(middleware.Metrics(collector))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	r.Post("/webhook", webhookHandler.Ingest)
	r.Get("/messages", messageHandler.List)
	r.Get("/stats", messageHandler.Stats)
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)
	r.Get("/metrics", metricsHandler.Metrics)

	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)

	return r
}
