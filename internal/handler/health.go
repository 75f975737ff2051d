package handler

import (
	"context"
	"net/http"
)

// ReadinessChecker reports whether the storage schema is present and queryable.
type ReadinessChecker interface {
	Ready(ctx context.Context) bool
}

// HealthHandler manages health check endpoints.
type HealthHandler struct {
	store            ReadinessChecker
	secretConfigured bool
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(store ReadinessChecker, secretConfigured bool) *HealthHandler {
	return &HealthHandler{
		store:           store,
		secretConfigured: secretConfigured,
	}
}

// Live is the liveness probe. It returns 200 whenever the process is up;
// no dependency checks.
//
// GET /health/live
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeOK(w)
}

// Ready is the readiness probe. It returns 200 only when the webhook
// secret is configured and the storage schema is present; otherwise 503
// with a detail naming the missing dependency.
//
// GET /health/ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if !h.secretConfigured {
		writeDetail(w, http.StatusServiceUnavailable, "WEBHOOK_SECRET not configured")
		return
	}

	if h.store == nil || !h.store.Ready(r.Context()) {
		writeDetail(w, http.StatusServiceUnavailable, "database not ready")
		return
	}

	writeOK(w)
}
