package store

import "fmt"

// ValidationError rejects an operation and leaves state unchanged.
// Missing ids are never validation errors; lookups that find nothing are
// silent no-ops because a task may legitimately vanish between a render
// and a user action.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PersistenceError reports a failed storage write or read. The in-memory
// mutation it accompanies is NOT rolled back; the running session keeps
// the collection as its source of truth.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
