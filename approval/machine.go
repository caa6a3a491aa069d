/*
machine.go - Approval state machine

PURPOSE:
  Pure transition logic for expense report approval. Given a ledger entry
  and an action, computes the next entry plus the notifications the change
  requires - or rejects the action. No storage, no clocks of its own, no
  side effects.

TRANSITION TABLE:
  action            valid from                       requires                    result
  ------------------------------------------------------------------------------------------------
  submit            draft, needs_revision, rejected  at least one report item            submitted
  approve           submitted                        assigned supervisor                 approved
  reject            submitted                        assigned supervisor + comment       rejected
  request_revision  submitted                        assigned supervisor + comment       needs_revision

  Any other (status, action) pair fails with ErrInvalidTransition and the
  entry is untouched. needs_revision and rejected both loop back through a
  fresh submit; only the stored comment distinguishes them.

IDEMPOTENT RESUBMIT:
  Submitting an already-submitted report is a no-op success, not an error.
  Clients retry on flaky networks; the retry must not surface a failure for
  a transition that already happened.

CONCURRENCY:
  Two reviewers racing on the same entry need no lock: whoever persists
  first wins, and the loser's guard check (from == submitted) fails on the
  reloaded entry with ErrInvalidTransition.

SIDE EFFECT CONTRACT:
  Every successful transition yields zero or more Events. The façade must
  persist them atomically with the ledger write. The machine itself never
  talks to storage.

SEE ALSO:
  - service.go: Loads/persists around this machine
  - entry.go: Entry invariants the machine preserves
*/
package approval

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// ACTIONS
// =============================================================================

type Action string

const (
	ActionSubmit          Action = "submit"
	ActionApprove         Action = "approve"
	ActionReject          Action = "reject"
	ActionRequestRevision Action = "request_revision"
)

// TransitionInput carries everything a transition may need. Data is only
// consulted for submit; ActorID and Comment only for the review actions.
type TransitionInput struct {
	Action  Action
	ActorID string
	Comment string
	Data    *ReportData
	Now     time.Time
}

// TransitionResult is the outcome of a successful transition.
type TransitionResult struct {
	Entry  LedgerEntry
	Events []Event

	// NoOp is true for the idempotent resubmit case: the entry is returned
	// unchanged and no events are emitted.
	NoOp bool
}

// =============================================================================
// TRANSITION
// =============================================================================

// Transition applies an action to a ledger entry. The input entry is not
// mutated; the result carries the updated copy.
func Transition(entry LedgerEntry, in TransitionInput) (TransitionResult, error) {
	switch in.Action {
	case ActionSubmit:
		return submit(entry, in)
	case ActionApprove:
		return review(entry, in, StatusApproved, false)
	case ActionReject:
		return review(entry, in, StatusRejected, true)
	case ActionRequestRevision:
		return review(entry, in, StatusNeedsRevision, true)
	default:
		return TransitionResult{}, &InvalidTransitionError{
			ReportID: entry.ReportID,
			From:     entry.Status,
			Action:   in.Action,
			Reason:   "unknown action",
		}
	}
}

func submit(entry LedgerEntry, in TransitionInput) (TransitionResult, error) {
	// Client retry of a submit that already landed.
	if entry.Status == StatusSubmitted {
		return TransitionResult{Entry: entry, NoOp: true}, nil
	}

	switch entry.Status {
	case StatusDraft, StatusNeedsRevision, StatusRejected:
	default:
		return TransitionResult{}, &InvalidTransitionError{
			ReportID: entry.ReportID,
			From:     entry.Status,
			Action:   ActionSubmit,
		}
	}

	if in.Data == nil || !in.Data.HasItems() {
		return TransitionResult{}, &InvalidTransitionError{
			ReportID: entry.ReportID,
			From:     entry.Status,
			Action:   ActionSubmit,
			Reason:   "report has no mileage, receipt, or time entries",
		}
	}

	now := in.Now
	entry.Status = StatusSubmitted
	entry.SubmittedAt = &now
	// A resubmission starts a fresh review cycle.
	entry.ReviewedAt = nil
	entry.Comments = ""
	entry.Data = *in.Data
	entry.UpdatedAt = now

	var events []Event
	if entry.SupervisorID != "" {
		events = append(events, Event{
			RecipientID:   entry.SupervisorID,
			RecipientRole: RoleSupervisor,
			Type:          NotifySubmission,
			Message: fmt.Sprintf("Expense report %s from employee %s is awaiting your review.",
				entry.Period, entry.EmployeeID),
		})
	}

	return TransitionResult{Entry: entry, Events: events}, nil
}

func review(entry LedgerEntry, in TransitionInput, to Status, needsComment bool) (TransitionResult, error) {
	if entry.Status != StatusSubmitted {
		return TransitionResult{}, &InvalidTransitionError{
			ReportID: entry.ReportID,
			From:     entry.Status,
			Action:   in.Action,
		}
	}

	// Only the assigned supervisor may review. Entries without a supervisor
	// accept any reviewer.
	if entry.SupervisorID != "" && in.ActorID != entry.SupervisorID {
		return TransitionResult{}, &InvalidTransitionError{
			ReportID: entry.ReportID,
			From:     entry.Status,
			Action:   in.Action,
			Reason:   fmt.Sprintf("reviewer %s is not the assigned supervisor", in.ActorID),
		}
	}

	comment := strings.TrimSpace(in.Comment)
	if needsComment && comment == "" {
		return TransitionResult{}, fmt.Errorf("%s report %s: %w", in.Action, entry.ReportID, ErrMissingComment)
	}

	now := in.Now
	entry.Status = to
	entry.ReviewedAt = &now
	entry.UpdatedAt = now
	if needsComment {
		entry.Comments = comment
	}

	events := []Event{reviewEvent(entry, to)}
	return TransitionResult{Entry: entry, Events: events}, nil
}

func reviewEvent(entry LedgerEntry, to Status) Event {
	ev := Event{
		RecipientID:   entry.EmployeeID,
		RecipientRole: RoleStaff,
	}
	switch to {
	case StatusApproved:
		ev.Type = NotifyApproval
		ev.Message = fmt.Sprintf("Your expense report for %s was approved.", entry.Period)
	case StatusRejected:
		ev.Type = NotifyRejection
		ev.Message = fmt.Sprintf("Your expense report for %s was rejected: %s", entry.Period, entry.Comments)
	case StatusNeedsRevision:
		ev.Type = NotifyRevision
		ev.Message = fmt.Sprintf("Your expense report for %s needs revision: %s", entry.Period, entry.Comments)
	}
	return ev
}
