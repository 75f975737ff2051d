package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/lyftr/lyftr/internal/metrics"
	"github.com/lyftr/lyftr/internal/middleware"
	"github.com/lyftr/lyftr/internal/model"
	"github.com/lyftr/lyftr/internal/repository"
	"github.com/lyftr/lyftr/internal/webhook"
)

// SignatureHeader carries the hex HMAC-SHA256 digest of the raw body.
const SignatureHeader = "X-Signature"

// Webhook outcome categories recorded in metrics and logs.
const (
	OutcomeInvalidSignature = "invalid_signature"
	OutcomeValidationError  = "validation_error"
	OutcomeDuplicate        = "duplicate"
	OutcomeCreated          = "created"
)

// WebhookHandler ingests signed message deliveries.
type WebhookHandler struct {
	repo      *repository.Repository
	collector *metrics.Collector
	logger    *slog.Logger
	secret    []byte
}

// NewWebhookHandler creates a new WebhookHandler. An empty secret is
// allowed; every delivery is then rejected with 401 until one is configured.
func NewWebhookHandler(repo *repository.Repository, collector *metrics.Collector, logger *slog.Logger, secret string) *WebhookHandler {
	return &WebhookHandler{
		repo:      repo,
		collector: collector,
		logger:    logger.With("handler", "webhook"),
		secret:    []byte(secret),
	}
}

// Ingest handles POST /webhook.
//
// The raw body is verified against the X-Signature header before any
// parsing. Validation failures return 422 with a detail; a replayed
// message_id is not an error and returns 200 exactly like a new one.
func (h *WebhookHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.collector.IncWebhookRequest(OutcomeValidationError)
		writeDetail(w, http.StatusUnprocessableEntity, "unable to read request body")
		return
	}

	if !webhook.Verify(h.secret, body, r.Header.Get(SignatureHeader)) {
		h.collector.IncWebhookRequest(OutcomeInvalidSignature)
		writeDetail(w, http.StatusUnauthorized, "invalid signature")
		return
	}

	var payload model.WebhookMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		h.collector.IncWebhookRequest(OutcomeValidationError)
		writeDetail(w, http.StatusUnprocessableEntity, "invalid JSON payload")
		return
	}
	if err := payload.Validate(); err != nil {
		h.collector.IncWebhookRequest(OutcomeValidationError)
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	duplicate, err := h.repo.Insert(r.Context(), payload.ToMessage())
	if err != nil {
		h.logger.Error("message insert failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"message_id", payload.MessageID,
			"error", err,
		)
		writeDetail(w, http.StatusInternalServerError, "storage failure")
		return
	}

	outcome := OutcomeCreated
	if duplicate {
		outcome = OutcomeDuplicate
	}
	h.collector.IncWebhookRequest(outcome)

	h.logger.Info("webhook processed",
		"request_id", middleware.GetRequestID(r.Context()),
		"message_id", payload.MessageID,
		"dup", duplicate,
		"result", outcome,
	)

	writeOK(w)
}
