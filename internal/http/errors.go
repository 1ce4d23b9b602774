// Package httpapi exposes the marketplace over HTTP.
package httpapi

import (
	"encoding/json"
	"net/http"
)

// Error codes carried in the "error" field. Marketplace rejections map to 409
// and are safe to retry.
const (
	CodeNotFound         = "not_found"
	CodeMethodNotAllowed = "method_not_allowed"
	CodeQueueFull        = "queue_full"
	CodeUnavailable      = "unavailable"
	CodeNotInCart        = "not_in_cart"
	CodeShuttingDown     = "shutting_down"
	CodeUnsupportedMedia = "unsupported_media_type"
	CodeInvalidJSON      = "invalid_json"
	CodeValidation       = "validation_error"
	CodeInternal         = "internal_error"
)

type jsonError struct {
	Error     string `json:"error"`
	Details   string `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteJSONError writes an error payload. The request id is taken from the
// response header set by WithRequestID, so callers need not thread it through.
func WriteJSONError(w http.ResponseWriter, status int, code, details string) {
	reqID := w.Header().Get(requestIDHeader)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonError{Error: code, Details: details, RequestID: reqID})
}
