package tools

import "errors"

// Sentinel errors for the capability registry.
var (
	ErrNotFound  = errors.New("capability not found")
	ErrEmptyName = errors.New("capability name is empty")

	// ErrArgument marks a missing or mistyped argument. Capabilities wrap it
	// so Dispatch can report an argument error rather than a runtime failure.
	ErrArgument = errors.New("invalid argument")
)
