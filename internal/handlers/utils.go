package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"home-gallery/internal/logging"
	"home-gallery/internal/paths"
)

// writeJSON encodes v as JSON and writes it to the response writer.
// Any encoding or write errors are logged since we typically cannot
// recover from them in an HTTP handler context.
func writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONError writes an error response as JSON with the given status code.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, map[string]string{"error": message})
}

// writeJSONStatus writes a simple status response as JSON.
func writeJSONStatus(w http.ResponseWriter, status string) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]string{"status": status})
}

// writePathError maps path resolution failures to HTTP status codes.
func writePathError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, paths.ErrBadPath):
		writeJSONError(w, "invalid path", http.StatusBadRequest)
	case errors.Is(err, paths.ErrNotFound):
		writeJSONError(w, "not found", http.StatusNotFound)
	default:
		logging.Error("path resolution failed: %v", err)
		writeJSONError(w, "internal error", http.StatusInternalServerError)
	}
}
