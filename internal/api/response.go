// Package api holds the shared HTTP response helpers used by all domain
// handlers.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Response is the envelope for error bodies.
type Response struct {
	Error string `json:"error"`
}

// WriteJSONResponse writes data as JSON with the given status. A nil payload
// writes the status line only.
func WriteJSONResponse(w http.ResponseWriter, r *http.Request, status int, data any) {
	if data == nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode response body", slog.Any("error", err))
	}
}

// ErrorResponse writes a JSON error envelope with the given status.
func ErrorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	WriteJSONResponse(w, r, status, Response{Error: message})
}
