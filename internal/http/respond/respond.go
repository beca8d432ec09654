// Package respond writes JSON responses and error payloads.
package respond

import (
	"encoding/json"
	"net/http"

	"cosmos-catalog/internal/logger"
)

// Generic messages for errors that carry no detail.
const (
	MsgNotFound         = "Not found"
	MsgMethodNotAllowed = "Method not allowed"
	MsgInternal         = "Internal server error"
)

// ErrorBody is the payload of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warnf("respond.JSON encode: %v", err)
	}
}

// Error writes an ErrorBody with the given status.
func Error(w http.ResponseWriter, status int, message, details string) {
	JSON(w, status, ErrorBody{Error: message, Details: details})
}

// Internal writes the generic 500 body. The cause is only logged.
func Internal(w http.ResponseWriter, op string, err error) {
	logger.Errorf("%s: %v", op, err)
	Error(w, http.StatusInternalServerError, MsgInternal, "")
}

// NotFound is an http.HandlerFunc for unmatched routes.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	Error(w, http.StatusNotFound, MsgNotFound, "")
}

// MethodNotAllowed is an http.HandlerFunc for known paths hit with the wrong verb.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	Error(w, http.StatusMethodNotAllowed, MsgMethodNotAllowed, "")
}
