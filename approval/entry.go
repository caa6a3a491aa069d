/*
entry.go - Report ledger entry model

PURPOSE:
  Defines the durable record of one expense report's approval lifecycle.
  One entry exists per (employee, reporting period); it is created on first
  submission and mutated only through the state machine in machine.go.

IDENTITY:
  ReportID = "<employeeID>:<period>", e.g. "emp-42:2026-08". The ID is
  stable across resubmissions: a rejected report that is resubmitted
  overwrites the same entry rather than creating a new one. A new reporting
  period yields a new entry; old entries are never hard-deleted.

INVARIANTS:
  - ReviewedAt is set if and only if Status is approved, rejected, or
    needs_revision.
  - SubmittedAt is set if and only if Status is not draft.
  - Comments is non-empty when Status is rejected or needs_revision.
  Validate() checks all three; the state machine preserves them by
  construction, so Validate is mostly useful in tests and at store
  boundaries.

SEE ALSO:
  - machine.go: The only legal way to mutate an entry
  - period.go: Reporting period parsing and formatting
*/
package approval

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// STATUS
// =============================================================================

type ReportID string

type Status string

const (
	StatusDraft         Status = "draft"
	StatusSubmitted     Status = "submitted"
	StatusApproved      Status = "approved"
	StatusRejected      Status = "rejected"
	StatusNeedsRevision Status = "needs_revision"
)

// IsReviewed reports whether the status represents a recorded reviewer
// decision.
func (s Status) IsReviewed() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusNeedsRevision
}

// =============================================================================
// LEDGER ENTRY
// =============================================================================

// LedgerEntry is the durable record of one expense report's lifecycle.
type LedgerEntry struct {
	ReportID     ReportID
	EmployeeID   string
	SupervisorID string
	Period       Period

	Status Status

	SubmittedAt *time.Time
	ReviewedAt  *time.Time

	// Reviewer comment. Required when Status is rejected or needs_revision.
	Comments string

	// Snapshot of the report contents at submission time.
	Data ReportData

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewReportID builds the stable report identity for an employee and period.
func NewReportID(employeeID string, period Period) ReportID {
	return ReportID(employeeID + ":" + period.String())
}

// Validate checks the entry's internal invariants.
func (e *LedgerEntry) Validate() error {
	if e.ReportID == "" || e.EmployeeID == "" {
		return fmt.Errorf("ledger entry missing identity: report=%q employee=%q", e.ReportID, e.EmployeeID)
	}
	if e.Status.IsReviewed() != (e.ReviewedAt != nil) {
		return fmt.Errorf("ledger entry %s: reviewed_at must be set iff status is a review outcome (status=%s)", e.ReportID, e.Status)
	}
	if (e.Status != StatusDraft) != (e.SubmittedAt != nil) {
		return fmt.Errorf("ledger entry %s: submitted_at must be set iff status is not draft (status=%s)", e.ReportID, e.Status)
	}
	if (e.Status == StatusRejected || e.Status == StatusNeedsRevision) && strings.TrimSpace(e.Comments) == "" {
		return fmt.Errorf("ledger entry %s: %s requires a reviewer comment", e.ReportID, e.Status)
	}
	return nil
}

// =============================================================================
// REPORT DATA
// =============================================================================

// ReportData summarizes the underlying items of an expense report. The
// engine does not store individual line items; it only needs the counts for
// the submit guard and the totals for reviewer display.
type ReportData struct {
	MileageEntries int
	ReceiptEntries int
	TimeEntries    int

	MileageMiles decimal.Decimal
	ReceiptTotal decimal.Decimal
}

// HasItems reports whether the report contains at least one mileage,
// receipt, or time entry. Empty reports cannot be submitted.
func (d ReportData) HasItems() bool {
	return d.MileageEntries+d.ReceiptEntries+d.TimeEntries > 0
}
