// Package errors adapts the core engine's error kinds (internal/coreerr) to
// the HTTP boundary's standardized API error envelope.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/chromabeam/engine/internal/coreerr"
)

// APIError represents a standardized API error response.
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
	Details string    `json:"details,omitempty"`
	Status  int       `json:"-"`
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MarshalJSON customizes JSON encoding.
func (e *APIError) MarshalJSON() ([]byte, error) {
	type Alias APIError
	return json.Marshal(&struct{ *Alias }{Alias: (*Alias)(e)})
}

// FromCore maps a core error kind (internal/coreerr) to its API envelope.
// EmptyInput is deliberately absent: spec.md §7 says it is not an error, so
// it never reaches this boundary.
func FromCore(err error) *APIError {
	var invalidID *coreerr.InvalidIdentifier
	if errors.As(err, &invalidID) {
		return &APIError{
			Code:    ErrInvalidIdentifier,
			Message: err.Error(),
			Field:   "id",
			Status:  ErrInvalidIdentifier.StatusCode(),
		}
	}

	var invalidCfg *coreerr.InvalidConfiguration
	if errors.As(err, &invalidCfg) {
		return &APIError{
			Code:    ErrInvalidConfiguration,
			Message: err.Error(),
			Status:  ErrInvalidConfiguration.StatusCode(),
		}
	}

	return InternalError(err.Error())
}

// NotFound creates a NOT_FOUND error.
func NotFound(resource string) *APIError {
	return &APIError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
	}
}

// BadRequest creates a BAD_REQUEST error.
func BadRequest(message string) *APIError {
	return &APIError{
		Code:    ErrBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// InternalError creates an INTERNAL_ERROR.
func InternalError(message string) *APIError {
	return &APIError{
		Code:    ErrInternalError,
		Message: message,
		Status:  http.StatusInternalServerError,
	}
}

// RateLimited creates a RATE_LIMITED error.
func RateLimited(message string) *APIError {
	if message == "" {
		message = "rate limit exceeded"
	}
	return &APIError{
		Code:    ErrRateLimited,
		Message: message,
		Status:  http.StatusTooManyRequests,
	}
}

// ServiceUnavailable creates a SERVICE_UNAVAILABLE error.
func ServiceUnavailable(service string) *APIError {
	return &APIError{
		Code:    ErrServiceUnavail,
		Message: fmt.Sprintf("%s is temporarily unavailable", service),
		Status:  http.StatusServiceUnavailable,
	}
}

// WithDetails adds additional details to an error.
func (e *APIError) WithDetails(details string) *APIError {
	e.Details = details
	return e
}
