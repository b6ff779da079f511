package middlewares

import (
	"errors"

	"github.com/dmitrymomot/mvc/internal"
)

// PanicError represents a recovered panic.
type PanicError = internal.PanicError

// IsPanicError returns true if the error is a PanicError.
func IsPanicError(err error) bool {
	var pe *PanicError
	return errors.As(err, &pe)
}

// AsPanicError extracts the PanicError from an error if present.
func AsPanicError(err error) (*PanicError, bool) {
	var pe *PanicError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
