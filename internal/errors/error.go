package errors

import "fmt"

// Category represents the type of error.
type Category string

const (
	CategoryRuntime   Category = "runtime"
	CategoryHydration Category = "hydration"
	CategoryProtocol  Category = "protocol"
)

// RuntimeError is a structured error with a stable code, a category,
// and an optional fix suggestion. Codes are stable identifiers that
// appear in logs and error reports.
type RuntimeError struct {
	// Code is a unique error identifier (e.g., "E001").
	Code string

	// Category is the error type (runtime, hydration, protocol).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *RuntimeError) Unwrap() error {
	return e.Wrapped
}

// WithDetail adds a detailed explanation to the error.
func (e *RuntimeError) WithDetail(format string, args ...any) *RuntimeError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *RuntimeError) WithSuggestion(s string) *RuntimeError {
	e.Suggestion = s
	return e
}

// Wrap wraps another error.
func (e *RuntimeError) Wrap(err error) *RuntimeError {
	e.Wrapped = err
	return e
}
