package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// mockReadiness is a mock implementation of ReadinessChecker for testing.
type mockReadiness struct {
	ready bool
}

func (m *mockReadiness) Ready(ctx context.Context) bool {
	return m.ready
}

func TestHealthHandler_Live(t *testing.T) {
	h := NewHealthHandler(nil, false)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()

	h.Live(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	var response statusResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Status != "ok" {
		t.Errorf("expected status 'ok', got %s", response.Status)
	}
}

func TestHealthHandler_Ready_AllHealthy(t *testing.T) {
	h := NewHealthHandler(&mockReadiness{ready: true}, true)

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()

	h.Ready(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
}

func TestHealthHandler_Ready_SecretMissing(t *testing.T) {
	// Secret check wins even when storage is fine.
	h := NewHealthHandler(&mockReadiness{ready: true}, false)

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()

	h.Ready(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", rec.Code)
	}

	var response detailResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Detail != "WEBHOOK_SECRET not configured" {
		t.Errorf("unexpected detail: %s", response.Detail)
	}
}

func TestHealthHandler_Ready_StorageNotReady(t *testing.T) {
	h := NewHealthHandler(&mockReadiness{ready: false}, true)

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()

	h.Ready(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", rec.Code)
	}

	var response detailResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Detail != "database not ready" {
		t.Errorf("unexpected detail: %s", response.Detail)
	}
}
