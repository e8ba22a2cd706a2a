package quest

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a stage, challenge, player or session
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStageLocked is returned when a stage is accessed before its
	// unlock time.
	ErrStageLocked = errors.New("stage is locked")

	// ErrTimeUp is returned for a speed challenge submitted after its
	// countdown expired or without a running countdown.
	ErrTimeUp = errors.New("time is up")

	// ErrBusy is returned when another write for the same player is still
	// in flight.
	ErrBusy = errors.New("another update is in progress")
)

// ValidationError reports a submission or input rejected before evaluation.
// No attempt is recorded.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// PersistenceError wraps a failed read or write against the storage
// backend. It is always retryable.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsPersistence reports whether err is a PersistenceError.
func IsPersistence(err error) bool {
	var p *PersistenceError
	return errors.As(err, &p)
}
