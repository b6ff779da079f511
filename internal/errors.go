package internal

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrHandled ends a request successfully from a component's OnRun: the
	// component already wrote the response, so routing is skipped.
	ErrHandled = errors.New("mvc: request handled by component")

	// ErrMalformedRequest is returned when a request carries fewer positional
	// arguments than the action requires.
	ErrMalformedRequest = errors.New("mvc: malformed request")

	ErrInvalidForwarder  = errors.New("mvc: invalid forwarder")
	ErrInvalidController = errors.New("mvc: invalid controller")
	ErrNoAction          = errors.New("mvc: no action")
	ErrInvalidConfig     = errors.New("mvc: invalid configuration")
)

// MalformedRequestMessage is shown when a request has too few arguments.
const MalformedRequestMessage = "Malformed request.  Please go back a page and try again."

// HTTPError is an error the visitor should see. The dispatcher renders it
// with the info page.
type HTTPError struct {
	// Err is the underlying error (for logging, not exposed to users).
	Err error

	// Message is the user-facing error message.
	Message string

	// Title defaults to the status text.
	Title string

	// Code is the HTTP status code (e.g., 404, 500).
	Code int
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) StatusCode() int {
	return e.Code
}

func (e *HTTPError) StatusText() string {
	return http.StatusText(e.Code)
}

// HTTPErrorOption configures an HTTPError.
type HTTPErrorOption func(*HTTPError)

// NewHTTPError creates a new HTTPError with the given status code and message.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	e := &HTTPError{
		Code:    code,
		Message: message,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func WithTitle(title string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Title = title
	}
}

func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Err = err
	}
}

// Convenience constructors for common HTTP errors.

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message, opts...)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusForbidden, message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message, opts...)
}

// IsHTTPError reports whether err carries an HTTPError.
func IsHTTPError(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr)
}

// AsHTTPError extracts the HTTPError from an error chain if present.
// Returns nil if there is none.
func AsHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return nil
}

// PanicError wraps a value recovered from a panicking action.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("mvc: panic: %v", e.Value)
}
