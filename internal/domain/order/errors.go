package order

import "fmt"

// Sentinel errors shared by every lifecycle operation.
var (
	// ErrConflict means a transition guard failed at write time because
	// another actor got there first. Callers must re-fetch and re-evaluate;
	// the operation is never retried automatically.
	ErrConflict = fmt.Errorf("state changed by another actor")

	// ErrNotFound means the referenced order or line item does not exist, or
	// is not visible to the acting role.
	ErrNotFound = fmt.Errorf("not found")
)

// ValidationError indicates malformed input to a mutating operation. It is
// always raised before any store call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// TransientError wraps a store failure where no partial state was committed.
// Retrying the identical operation is safe.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient store error: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }
