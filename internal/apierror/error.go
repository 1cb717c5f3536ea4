// Package apierror provides the JSON error envelope written by every
// endpoint and middleware:
//
//	{"error": {"message": "...", "type": "...", "code": "..."}}
package apierror

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Type constants classify errors for clients.
const (
	TypeNotFound       = "not_found_error"
	TypeAuthentication = "authentication_error"
	TypeRateLimit      = "rate_limit_error"
	TypeServer         = "server_error"
)

// Error is an API error with its HTTP status.
type Error struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// response wraps an Error in the envelope.
type response struct {
	Error *Error `json:"error"`
}

// Write sends an Error as a JSON HTTP response.
func Write(w http.ResponseWriter, err *Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Status)

	if encErr := json.NewEncoder(w).Encode(response{Error: err}); encErr != nil {
		slog.Error("failed to encode error response", "err", encErr)
	}
}

// NotFound returns a 404 error for a named resource that does not exist.
// param names the path parameter that failed to resolve.
func NotFound(param, msg string) *Error {
	return &Error{
		Status:  http.StatusNotFound,
		Message: msg,
		Type:    TypeNotFound,
		Code:    "middleware_not_found",
		Param:   param,
	}
}

// Unauthorized returns a 401 error for authentication failures.
func Unauthorized(msg string) *Error {
	return &Error{
		Status:  http.StatusUnauthorized,
		Message: msg,
		Type:    TypeAuthentication,
		Code:    "invalid_api_key",
	}
}

// RateLimited returns a 429 error when rate limits are exceeded.
func RateLimited() *Error {
	return &Error{
		Status:  http.StatusTooManyRequests,
		Message: "Rate limit exceeded. Please retry after a brief wait.",
		Type:    TypeRateLimit,
		Code:    "rate_limit_exceeded",
	}
}

// Internal returns a 500 error for unexpected server failures.
func Internal(msg string) *Error {
	return &Error{
		Status:  http.StatusInternalServerError,
		Message: msg,
		Type:    TypeServer,
	}
}
