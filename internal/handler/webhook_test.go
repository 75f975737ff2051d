package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lyftr/lyftr/internal/metrics"
	"github.com/lyftr/lyftr/internal/repository"
	"github.com/lyftr/lyftr/internal/webhook"
)

const testSecret = "test-secret"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRepo(t *testing.T) *repository.Repository {
	t.Helper()

	repo, err := repository.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	if err := repo.InitSchema(context.Background()); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return repo
}

func validPayload() map[string]any {
	return map[string]any{
		"message_id": "m1",
		"from":       "+15550001111",
		"to":         "+15550002222",
		"ts":         "2025-01-15T10:00:00Z",
		"text":       "hi",
	}
}

// postWebhook signs body with secret and posts it to the handler.
func postWebhook(t *testing.T, h *WebhookHandler, body []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set(SignatureHeader, signature)
	}
	rec := httptest.NewRecorder()

	h.Ingest(rec, req)
	return rec
}

func TestWebhook_Created(t *testing.T) {
	repo := newTestRepo(t)
	collector := metrics.New()
	h := NewWebhookHandler(repo, collector, discardLogger(), testSecret)

	body, _ := json.Marshal(validPayload())
	rec := postWebhook(t, h, body, webhook.Sign([]byte(testSecret), body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp statusResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("expected status 'ok', got %s", resp.Status)
	}

	if !strings.Contains(collector.Export(), `webhook_requests_total{result="created"} 1`) {
		t.Error("expected created outcome recorded")
	}
}

func TestWebhook_DuplicateReturnsOK(t *testing.T) {
	repo := newTestRepo(t)
	collector := metrics.New()
	h := NewWebhookHandler(repo, collector, discardLogger(), testSecret)

	body, _ := json.Marshal(validPayload())
	sig := webhook.Sign([]byte(testSecret), body)

	if rec := postWebhook(t, h, body, sig); rec.Code != http.StatusOK {
		t.Fatalf("first delivery: expected 200, got %d", rec.Code)
	}
	if rec := postWebhook(t, h, body, sig); rec.Code != http.StatusOK {
		t.Fatalf("replay: expected 200, got %d", rec.Code)
	}

	out := collector.Export()
	if !strings.Contains(out, `webhook_requests_total{result="created"} 1`) {
		t.Errorf("expected one created outcome\n%s", out)
	}
	if !strings.Contains(out, `webhook_requests_total{result="duplicate"} 1`) {
		t.Errorf("expected one duplicate outcome\n%s", out)
	}

	// Exactly one row survives the replay.
	_, total, err := repo.List(context.Background(), repository.ListFilter{Limit: 50})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 {
		t.Errorf("expected 1 stored message, got %d", total)
	}
}

func TestWebhook_MissingSignature(t *testing.T) {
	repo := newTestRepo(t)
	collector := metrics.New()
	h := NewWebhookHandler(repo, collector, discardLogger(), testSecret)

	body, _ := json.Marshal(validPayload())
	rec := postWebhook(t, h, body, "")

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	var resp detailResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Detail != "invalid signature" {
		t.Errorf("unexpected detail: %s", resp.Detail)
	}

	if !strings.Contains(collector.Export(), `webhook_requests_total{result="invalid_signature"} 1`) {
		t.Error("expected invalid_signature outcome recorded")
	}
}

func TestWebhook_WrongSignature(t *testing.T) {
	repo := newTestRepo(t)
	h := NewWebhookHandler(repo, metrics.New(), discardLogger(), testSecret)

	body, _ := json.Marshal(validPayload())
	rec := postWebhook(t, h, body, webhook.Sign([]byte("other-secret"), body))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestWebhook_SecretUnconfigured(t *testing.T) {
	repo := newTestRepo(t)
	h := NewWebhookHandler(repo, metrics.New(), discardLogger(), "")

	// Even a self-consistent signature fails without a configured secret.
	body, _ := json.Marshal(validPayload())
	rec := postWebhook(t, h, body, webhook.Sign([]byte(""), body))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestWebhook_InvalidJSON(t *testing.T) {
	repo := newTestRepo(t)
	collector := metrics.New()
	h := NewWebhookHandler(repo, collector, discardLogger(), testSecret)

	body := []byte("{not json")
	rec := postWebhook(t, h, body, webhook.Sign([]byte(testSecret), body))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}

	if !strings.Contains(collector.Export(), `webhook_requests_total{result="validation_error"} 1`) {
		t.Error("expected validation_error outcome recorded")
	}
}

func TestWebhook_FieldValidation(t *testing.T) {
	repo := newTestRepo(t)
	h := NewWebhookHandler(repo, metrics.New(), discardLogger(), testSecret)

	tests := []struct {
		name   string
		mutate func(p map[string]any)
	}{
		{"empty message_id", func(p map[string]any) { p["message_id"] = "" }},
		{"bad sender", func(p map[string]any) { p["from"] = "15550001111" }},
		{"bad recipient", func(p map[string]any) { p["to"] = "not-a-number" }},
		{"ts without Z", func(p map[string]any) { p["ts"] = "2025-01-15T10:00:00+00:00" }},
		{"text too long", func(p map[string]any) { p["text"] = strings.Repeat("a", 4097) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validPayload()
			tt.mutate(payload)

			body, _ := json.Marshal(payload)
			rec := postWebhook(t, h, body, webhook.Sign([]byte(testSecret), body))

			if rec.Code != http.StatusUnprocessableEntity {
				t.Errorf("expected 422, got %d: %s", rec.Code, rec.Body.String())
			}

			var resp detailResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Detail == "" {
				t.Error("expected a validation detail")
			}
		})
	}
}

func TestWebhook_StorageFailure(t *testing.T) {
	repo := newTestRepo(t)
	collector := metrics.New()
	h := NewWebhookHandler(repo, collector, discardLogger(), testSecret)

	// Closing the database turns the insert into a storage fault.
	_ = repo.Close()

	body, _ := json.Marshal(validPayload())
	rec := postWebhook(t, h, body, webhook.Sign([]byte(testSecret), body))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	// A storage fault is not a webhook outcome; no result counter moves.
	out := collector.Export()
	if strings.Contains(out, `webhook_requests_total{result=`) {
		t.Errorf("unexpected webhook outcome on storage failure\n%s", out)
	}
}
