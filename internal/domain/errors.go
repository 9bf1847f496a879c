package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain-specific errors. Callers branch on them with errors.Is.
var (
	// ErrInvalidInput is the root of every input rejection. It is raised
	// before any store interaction and never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidURL is returned when the provided URL is malformed
	ErrInvalidURL = fmt.Errorf("%w: invalid URL format", ErrInvalidInput)

	// ErrURLNotFound is returned when no record holds a short code
	ErrURLNotFound = errors.New("short code not found")

	// ErrShortCodeTaken signals a uniqueness violation on the code column.
	// The shorten retry loop consumes it; it never reaches a caller.
	ErrShortCodeTaken = errors.New("short code already exists")

	// ErrUnauthorized is returned when the audit secret does not match
	ErrUnauthorized = errors.New("unauthorized access")
)

// AppError wraps errors with additional context for better debugging
type AppError struct {
	Err        error  // Original error
	Message    string // User-friendly message
	StatusCode int    // HTTP status code
	Internal   bool   // Whether to log as internal error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

// Unwrap returns the wrapped error for errors.Is and errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new application error with context
func NewAppError(err error, message string, statusCode int, internal bool) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		StatusCode: statusCode,
		Internal:   internal,
	}
}

// NewValidationError creates a 400 error that matches ErrInvalidInput.
func NewValidationError(message string) *AppError {
	return NewAppError(ErrInvalidInput, message, http.StatusBadRequest, false)
}

// NewURLValidationError creates a 400 error that matches ErrInvalidURL.
func NewURLValidationError(message string) *AppError {
	return NewAppError(ErrInvalidURL, message, http.StatusBadRequest, false)
}

// NewInternalError creates a 500 internal server error.
// Store failures other than conflicts and misses end up here.
func NewInternalError(err error) *AppError {
	return NewAppError(err, "Internal server error occurred", http.StatusInternalServerError, true)
}
