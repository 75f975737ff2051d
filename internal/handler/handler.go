// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"net/http"
)

// statusResponse is the body of every plain success response.
type statusResponse struct {
	Status string `json:"status"`
}

// detailResponse carries a human-readable error detail.
type detailResponse struct {
	Detail string `json:"detail"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already written; nothing useful left to do.
		_ = err
	}
}

// writeOK writes the canonical {"status":"ok"} response.
func writeOK(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

// writeDetail writes an error response of the form {"detail": ...}.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, detailResponse{Detail: detail})
}

// NotFound handles 404 responses.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeDetail(w, http.StatusNotFound, "resource not found")
}

// MethodNotAllowed handles 405 responses.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
}
