// Package errors defines the service-level sentinel errors and their HTTP
// status mapping. Domain errors with structure of their own (duplicate
// identifiers, malformed snapshots, version skew) are typed in their home
// packages; this package covers the request-handling surface.
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/AlirezaFarnia/PsyNeuLink/internal/codec"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrIndexUnavailable  = errors.New("index not loaded")
	ErrCorpusUnavailable = errors.New("corpus unavailable")
	ErrCacheUnavailable  = errors.New("cache unavailable")
	ErrInternal          = errors.New("internal error")
	ErrTimeout           = errors.New("operation timed out")
)

// AppError pairs a sentinel with a human-readable message and a status code
// override.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New wraps a sentinel into an AppError.
func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{Err: sentinel, Message: message, StatusCode: statusCode}
}

// Newf is New with a format string.
func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{Err: sentinel, Message: fmt.Sprintf(format, args...), StatusCode: statusCode}
}

// HTTPStatusCode maps an error to the status the handler should report.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	var malformed *codec.MalformedIndexError
	var skew *codec.UnsupportedVersionError
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrIndexUnavailable), errors.Is(err, ErrCacheUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.As(err, &malformed), errors.As(err, &skew):
		// A bad snapshot is an upstream artifact problem, not a client one.
		return http.StatusBadGateway
	case errors.Is(err, ErrCorpusUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
