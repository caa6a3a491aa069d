/*
sync.go - Directory sync façade

PURPOSE:
  Orchestrates the reconciliation engine against live storage. PreviewSync
  computes a plan without mutating anything; ApplySync recomputes the plan
  fresh, intersects it with the admin-approved sets, and applies only that
  intersection.

WHY RECOMPUTE AT APPLY TIME:
  The admin reviews a preview, ticks boxes, and submits. Between preview
  and apply the world may have moved - an employee approved for archiving
  might have been re-added by hand. Trusting the stale client-held plan
  would archive them anyway. Recomputing means an approved item that no
  longer appears in the fresh plan is simply skipped and reported as a
  stale conflict.

BATCH SEMANTICS:
  ApplySync is not all-or-nothing: each approved item is applied
  independently, failures land in Errors, and the rest still apply.
  Duplicate removals need no per-item approval; every flagged duplicate is
  deleted during apply.
*/
package directory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/warp/approval-engine/approval"
)

// =============================================================================
// EMPLOYEE STORE
// =============================================================================

// EmployeeStore is the local employee table the sync engine reads and
// writes.
type EmployeeStore interface {
	// ListEmployees returns non-archived records.
	ListEmployees(ctx context.Context) ([]Employee, error)

	// ListArchivedEmployees returns archived records.
	ListArchivedEmployees(ctx context.Context) ([]Employee, error)

	// GetEmployee returns one record, or nil if none exists.
	GetEmployee(ctx context.Context, id string) (*Employee, error)

	// SaveEmployee creates or replaces a record by ID.
	SaveEmployee(ctx context.Context, emp Employee) error

	// ArchiveEmployee and RestoreEmployee flip the archived flag.
	ArchiveEmployee(ctx context.Context, id string) error
	RestoreEmployee(ctx context.Context, id string) error

	// DeleteEmployee hard-deletes a record. Duplicate cleanup only.
	DeleteEmployee(ctx context.Context, id string) error
}

// =============================================================================
// SYNC SERVICE
// =============================================================================

// ApprovalSet is the subset of a previewed plan the admin approved.
type ApprovalSet struct {
	CreateEmails []string
	UpdateEmails []string
	ArchiveIDs   []string
}

// Sync error kinds as they appear on the wire.
const (
	KindStaleConflict = "stale_conflict"
	KindStorage       = "storage"
)

// SyncError reports one independent item failure during apply.
type SyncError struct {
	Kind    string `json:"kind"` // KindStaleConflict or KindStorage
	Target  string `json:"target"`
	Message string `json:"message"`
}

func (e SyncError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Kind, e.Target, e.Message)
}

// Unwrap ties the wire kind back to the error taxonomy so callers can
// branch with errors.Is.
func (e SyncError) Unwrap() error {
	if e.Kind == KindStaleConflict {
		return approval.ErrStaleConflict
	}
	return approval.ErrStorageFailure
}

// SyncResult summarizes what an apply actually did.
type SyncResult struct {
	Created           int         `json:"created"`
	Updated           int         `json:"updated"`
	Archived          int         `json:"archived"`
	DuplicatesRemoved int         `json:"duplicatesRemoved"`
	Errors            []SyncError `json:"errors"`
}

// SyncService reconciles the local employee table with the HR roster.
type SyncService struct {
	employees EmployeeStore
	roster    RosterSource
	log       *logrus.Logger

	now func() time.Time
}

// NewSyncService creates the sync façade.
func NewSyncService(employees EmployeeStore, roster RosterSource, log *logrus.Logger) *SyncService {
	return &SyncService{employees: employees, roster: roster, log: log, now: time.Now}
}

// PreviewSync computes the current change plan. Never mutates storage.
func (s *SyncService) PreviewSync(ctx context.Context) (*ChangePlan, error) {
	local, external, err := s.snapshots(ctx)
	if err != nil {
		return nil, err
	}
	plan := BuildPlan(local, external)
	return &plan, nil
}

// ApplySync recomputes the plan and applies the approved intersection.
func (s *SyncService) ApplySync(ctx context.Context, approved ApprovalSet) (*SyncResult, error) {
	local, external, err := s.snapshots(ctx)
	if err != nil {
		return nil, err
	}
	plan := BuildPlan(local, external)

	creates := make(map[string]RosterRecord, len(plan.Creates))
	for _, c := range plan.Creates {
		creates[c.Email] = c
	}
	updates := make(map[string]Update, len(plan.Updates))
	for _, u := range plan.Updates {
		updates[u.Email] = u
	}
	archives := make(map[string]ArchiveCandidate, len(plan.Archives))
	for _, a := range plan.Archives {
		archives[a.ID] = a
	}

	result := &SyncResult{Errors: []SyncError{}}

	for _, email := range approved.CreateEmails {
		rec, ok := creates[NormalizeEmail(email)]
		if !ok {
			result.Errors = append(result.Errors, staleError("create", email))
			continue
		}
		emp := Employee{
			ID:          uuid.NewString(),
			Email:       rec.Email,
			Name:        rec.Name,
			Position:    rec.Position,
			CostCenters: rec.CostCenters,
			CreatedAt:   s.now(),
			UpdatedAt:   s.now(),
		}
		if err := s.employees.SaveEmployee(ctx, emp); err != nil {
			result.Errors = append(result.Errors, storageError("create", email, err))
			continue
		}
		result.Created++
	}

	for _, email := range approved.UpdateEmails {
		upd, ok := updates[NormalizeEmail(email)]
		if !ok {
			result.Errors = append(result.Errors, staleError("update", email))
			continue
		}
		emp := upd.Previous
		emp.Name = upd.Name
		emp.Position = upd.Position
		emp.CostCenters = upd.CostCenters
		emp.UpdatedAt = s.now()
		if err := s.employees.SaveEmployee(ctx, emp); err != nil {
			result.Errors = append(result.Errors, storageError("update", email, err))
			continue
		}
		result.Updated++
	}

	for _, id := range approved.ArchiveIDs {
		if _, ok := archives[id]; !ok {
			result.Errors = append(result.Errors, staleError("archive", id))
			continue
		}
		if err := s.employees.ArchiveEmployee(ctx, id); err != nil {
			result.Errors = append(result.Errors, storageError("archive", id, err))
			continue
		}
		result.Archived++
	}

	for _, dup := range plan.DuplicatesRemoved {
		if err := s.employees.DeleteEmployee(ctx, dup.ID); err != nil {
			result.Errors = append(result.Errors, storageError("remove-duplicate", dup.ID, err))
			continue
		}
		result.DuplicatesRemoved++
	}

	s.log.WithFields(logrus.Fields{
		"created":    result.Created,
		"updated":    result.Updated,
		"archived":   result.Archived,
		"duplicates": result.DuplicatesRemoved,
		"errors":     len(result.Errors),
	}).Info("directory sync applied")

	return result, nil
}

func (s *SyncService) snapshots(ctx context.Context) ([]Employee, []RosterRecord, error) {
	local, err := s.employees.ListEmployees(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load local roster: %w", err)
	}
	external, err := s.roster.FetchRoster(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load external roster: %w", err)
	}
	return local, external, nil
}

func staleError(op, target string) SyncError {
	return SyncError{
		Kind:    KindStaleConflict,
		Target:  target,
		Message: fmt.Sprintf("%s no longer in plan; re-run preview", op),
	}
}

func storageError(op, target string, err error) SyncError {
	return SyncError{
		Kind:    KindStorage,
		Target:  target,
		Message: fmt.Sprintf("%s failed: %v", op, err),
	}
}
