package settings

import "errors"

var (
	// ErrUnknownProperty is returned for a property that has no row and no default.
	ErrUnknownProperty = errors.New("settings: unknown property")
	// ErrPartialLoad is returned by Load when some requested rows are missing.
	ErrPartialLoad = errors.New("settings: not every requested property exists")

	ErrInvalidValue = errors.New("settings: value has the wrong type")
)
