package entity

import "errors"

var (
	// ErrBuilderUsed is returned by a terminal call on a chain that already ran.
	ErrBuilderUsed = errors.New("entity: builder already used")

	ErrPermissionSetNotFound = errors.New("entity: permission set not found")
)
