package handler

import (
	"net/http"

	"github.com/lyftr/lyftr/internal/metrics"
)

// MetricsHandler exposes the in-memory collector.
type MetricsHandler struct {
	collector *metrics.Collector
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(collector *metrics.Collector) *MetricsHandler {
	return &MetricsHandler{collector: collector}
}

// Metrics returns all counters and the latency histogram in Prometheus
// text exposition format.
//
// GET /metrics
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	_, _ = w.Write([]byte(h.collector.Export()))
}
