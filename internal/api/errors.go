package api

import (
	"encoding/json"
	"net/http"
)

// Error is the JSON body returned with every non-2xx response. Code is a
// stable machine-readable identifier; Message is for humans and may change
// between releases.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes returned by this API.
const (
	// ErrCodeBadRequest marks malformed or invalid request input.
	ErrCodeBadRequest = "bad_request"

	// ErrCodeInternal marks an unexpected server-side failure.
	ErrCodeInternal = "internal_error"

	// ErrCodeUnavailable marks requests arriving after shutdown has begun.
	ErrCodeUnavailable = "unavailable"

	// ErrCodeBroker marks publishes that failed because a broker link could
	// not be established within the retry bound.
	ErrCodeBroker = "broker_unavailable"
)

// writeJSON encodes v as the response body with the given status. Encoding
// failures are dropped.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	//nolint:errcheck // best-effort write; the client may already be gone
	json.NewEncoder(w).Encode(v)
}

// writeError sends a structured Error body.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{Status: status, Code: code, Message: message})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}
