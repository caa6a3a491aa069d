/*
errors.go - Centralized error taxonomy for the approval engine

PURPOSE:
  All error kinds in one place. The API layer maps these to HTTP status
  codes and machine-readable error codes; callers use errors.Is to branch.

CATEGORIES:
  1. Guard failures  - ErrInvalidTransition, ErrMissingComment
  2. Missing records - ErrNotFound
  3. Sync conflicts  - ErrStaleConflict
  4. Storage         - ErrStorageFailure (transient, safe to retry whole op)

USAGE:
  if errors.Is(err, approval.ErrInvalidTransition) {
      // 409, not retryable without changing the request
  }
*/
package approval

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidTransition is returned when an action is not legal from the
	// entry's current status, or a transition guard fails. Not retryable
	// without changing caller behavior.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrMissingComment is returned when reject or request_revision is
	// attempted without a comment. The caller must supply one and retry.
	ErrMissingComment = errors.New("comment required")

	// ErrNotFound is returned for unknown report, employee, or
	// notification identifiers.
	ErrNotFound = errors.New("not found")

	// ErrStaleConflict marks per-item sync failures where an approved item
	// no longer appears in the freshly recomputed plan. The caller must
	// re-preview.
	ErrStaleConflict = errors.New("stale sync approval")

	// ErrStorageFailure wraps transient persistence failures. The whole
	// operation is an atomic unit, so retrying it is safe.
	ErrStorageFailure = errors.New("storage failure")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidTransitionError reports which (status, action) pair was rejected.
type InvalidTransitionError struct {
	ReportID ReportID
	From     Status
	Action   Action
	Reason   string
}

func (e *InvalidTransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot %s report %s from status %s: %s", e.Action, e.ReportID, e.From, e.Reason)
	}
	return fmt.Sprintf("cannot %s report %s from status %s", e.Action, e.ReportID, e.From)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
