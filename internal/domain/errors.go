package domain

import "errors"

// Sentinel errors categorizing workflow failures. Services wrap these with
// fmt.Errorf("...: %w", ...) so callers can classify with errors.Is while
// still seeing a descriptive message.
var (
	// ErrNotFound marks a referenced project or entity that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation marks malformed input or an unmet guard condition.
	ErrValidation = errors.New("validation failed")
)
