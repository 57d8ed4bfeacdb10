// Package apperr defines the error taxonomy shared by services and
// handlers. Every error carries a stable code that feeds the err_code
// attribute in handler summary logs.
package apperr

import (
	"errors"
	"fmt"
)

// Validation marks user input that failed a local check. Handlers
// recover by re-prompting; nothing is mutated.
type Validation struct {
	Field  string
	Reason string
}

func (e *Validation) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Code implements the coder contract used by handler summary logging.
func (e *Validation) Code() string { return "VALIDATION" }

// NewValidation builds a Validation error for a named input field.
func NewValidation(field, reason string) *Validation {
	return &Validation{Field: field, Reason: reason}
}

// Conflict marks a lifecycle transition attempted from the wrong state,
// or an assignment that would break exclusivity. Nothing is mutated.
type Conflict struct {
	Op     string
	Reason string
	code   string
}

func (e *Conflict) Error() string {
	return fmt.Sprintf("%s rejected: %s", e.Op, e.Reason)
}

// Code implements the coder contract used by handler summary logging.
func (e *Conflict) Code() string {
	if e.code != "" {
		return e.code
	}
	return "STATE_CONFLICT"
}

// Conflict constructors for the known rejection causes.
var (
	// ErrVacancyTaken: the vacancy is no longer open.
	ErrVacancyTaken = &Conflict{Op: "claim", Reason: "vacancy is no longer open", code: "VACANCY_TAKEN"}
	// ErrUserBusy: the claimer already holds an active job.
	ErrUserBusy = &Conflict{Op: "claim", Reason: "user already has an active job", code: "USER_BUSY"}
)

// NewConflict builds a Conflict for an operation attempted from the
// wrong status.
func NewConflict(op, reason string) *Conflict {
	return &Conflict{Op: op, Reason: reason}
}

// IsConflict reports whether err is (or wraps) a lifecycle conflict.
func IsConflict(err error) bool {
	var c *Conflict
	return errors.As(err, &c)
}

// SyncFailure marks a best-effort external propagation (mirror post,
// audit line, direct message) that failed after the domain mutation
// committed. It is logged and swallowed, never returned to users.
type SyncFailure struct {
	Target string
	Err    error
}

func (e *SyncFailure) Error() string {
	return fmt.Sprintf("sync %s failed: %v", e.Target, e.Err)
}

func (e *SyncFailure) Unwrap() error { return e.Err }

// Code implements the coder contract used by handler summary logging.
func (e *SyncFailure) Code() string { return "SYNC_FAILURE" }

// Store marks a persistence failure. Fatal for the in-flight operation;
// surfaced generically to the user, no automatic retry.
type Store struct {
	Op  string
	Err error
}

func (e *Store) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *Store) Unwrap() error { return e.Err }

// Code implements the coder contract used by handler summary logging.
func (e *Store) Code() string { return "STORE_FAILURE" }

// WrapStore annotates a raw persistence error with the failing operation.
func WrapStore(op string, err error) *Store {
	return &Store{Op: op, Err: err}
}
