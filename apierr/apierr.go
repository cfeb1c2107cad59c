// Package apierr contains the typed API errors used across layers for
// stable HTTP status mapping.
package apierr

import (
	"fmt"
	"net/http"
)

// Error is a domain failure carrying the HTTP status it maps to. Handlers
// translate any *Error into the standard response envelope; everything
// else collapses to 500.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%d %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%d %s", e.Code, e.Message)
}

func New(code int, message, details string) *Error {
	return &Error{Code: code, Message: message, Details: details}
}

func BadRequest(details string) *Error {
	return New(http.StatusBadRequest, "Bad Request", details)
}

func Unauthorized(details string) *Error {
	return New(http.StatusUnauthorized, "Unauthorized", details)
}

func Forbidden(details string) *Error {
	return New(http.StatusForbidden, "Forbidden", details)
}

func NotFound(details string) *Error {
	return New(http.StatusNotFound, "Not Found", details)
}

func Conflict(details string) *Error {
	return New(http.StatusConflict, "Conflict", details)
}

func Internal(details string) *Error {
	return New(http.StatusInternalServerError, "Internal Server Error", details)
}
