package assignment

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfirmationIncomplete is returned when a change is applied before
	// the acknowledgement and at least one permission are checked.
	ErrConfirmationIncomplete = errors.New("assignment: confirmation incomplete")
	// ErrPermissionNotAllowed is returned when toggling a permission the
	// target role may not be granted.
	ErrPermissionNotAllowed = errors.New("assignment: permission not allowed for role")
	// ErrNoTargets is returned when no user ids were supplied.
	ErrNoTargets = errors.New("assignment: no target users")
)

// TargetError is the failure of one target within a batch.
type TargetError struct {
	UserID string
	Err    error
}

func (e TargetError) Error() string {
	return fmt.Sprintf("%s: %v", e.UserID, e.Err)
}

func (e TargetError) Unwrap() error {
	return e.Err
}

// BulkPartialFailure reports the targets of a bulk assignment whose update
// failed. Targets listed in Succeeded keep their new role; nothing is rolled
// back.
type BulkPartialFailure struct {
	BatchID   string
	Failed    []TargetError
	Succeeded []string
}

func (e *BulkPartialFailure) Error() string {
	ids := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		ids[i] = f.UserID
	}
	return fmt.Sprintf("assignment: batch %s: %d of %d updates failed (%s)",
		e.BatchID, len(e.Failed), len(e.Failed)+len(e.Succeeded), strings.Join(ids, ", "))
}

// Unwrap exposes the per-target causes to errors.Is and errors.As.
func (e *BulkPartialFailure) Unwrap() []error {
	out := make([]error, len(e.Failed))
	for i, f := range e.Failed {
		out[i] = f
	}
	return out
}

// FailedIDs lists the user ids whose update failed, in request order.
func (e *BulkPartialFailure) FailedIDs() []string {
	ids := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		ids[i] = f.UserID
	}
	return ids
}
