package errors

import "net/http"

// ErrorCode represents the type of API error returned at the HTTP boundary.
type ErrorCode string

const (
	// ErrInvalidIdentifier maps coreerr.InvalidIdentifier: a caller-supplied
	// key id does not parse as a UUID.
	ErrInvalidIdentifier ErrorCode = "INVALID_IDENTIFIER"
	// ErrInvalidConfiguration maps coreerr.InvalidConfiguration. It can only
	// happen at process construction, never from user input, so surfacing
	// it at request time indicates a deployment bug.
	ErrInvalidConfiguration ErrorCode = "INVALID_CONFIGURATION"
	ErrNotFound             ErrorCode = "NOT_FOUND"
	ErrBadRequest           ErrorCode = "BAD_REQUEST"
	ErrInternalError        ErrorCode = "INTERNAL_ERROR"
	ErrRateLimited          ErrorCode = "RATE_LIMITED"
	ErrServiceUnavail       ErrorCode = "SERVICE_UNAVAILABLE"
)

// StatusCodeMap maps ErrorCode to HTTP status code.
var StatusCodeMap = map[ErrorCode]int{
	ErrInvalidIdentifier:    http.StatusBadRequest,
	ErrInvalidConfiguration: http.StatusInternalServerError,
	ErrNotFound:             http.StatusNotFound,
	ErrBadRequest:           http.StatusBadRequest,
	ErrInternalError:        http.StatusInternalServerError,
	ErrRateLimited:          http.StatusTooManyRequests,
	ErrServiceUnavail:       http.StatusServiceUnavailable,
}

// StatusCode returns the HTTP status code for this error code.
func (e ErrorCode) StatusCode() int {
	if code, ok := StatusCodeMap[e]; ok {
		return code
	}
	return http.StatusInternalServerError
}
