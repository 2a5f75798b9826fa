package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no appointment matches the given id.
	ErrNotFound = errors.New("appointment not found")

	// ErrNoUpdates is returned when UpdateFields is called with nothing to do.
	ErrNoUpdates = errors.New("no field updates given")
)

// ValidationError reports a booking payload rejected before any mutation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InvalidFieldError reports an attempt to update a field outside the mutable
// set. It fails loudly rather than silently writing an unexpected column.
type InvalidFieldError struct {
	Name string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("field %q is not updatable", e.Name)
}
