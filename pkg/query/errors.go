package query

import "errors"

var (
	// ErrConfiguration marks malformed builder arguments detected at build time.
	ErrConfiguration = errors.New("query: invalid statement configuration")

	// ErrBuilderConsumed is returned when a chain is built more than once.
	ErrBuilderConsumed = errors.New("query: builder already consumed")
)
