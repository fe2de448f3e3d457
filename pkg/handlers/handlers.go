// Package handlers provides shared JSON response helpers for HTTP handlers.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// RespondJSON writes data as a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// headers already written; nothing left to do but note it
		slog.Default().Error("encode response failed", "error", err)
	}
}

// RespondError logs the error and writes a JSON error envelope with the given status.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	logger.Error("request failed", "status", status, "error", err)
	RespondJSON(w, status, map[string]string{"error": err.Error()})
}
