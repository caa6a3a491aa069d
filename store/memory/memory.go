/*
Package memory provides an in-memory implementation of the storage
interfaces.

PURPOSE:
  Backs unit tests for the approval façade and the directory sync service
  without touching disk. Mirrors the SQLite store's semantics: nil for
  missing rows, last-write-wins upserts, ErrNotFound from MarkRead.

CONCURRENCY:
  One mutex guards everything. WithTx runs the callback while holding the
  write lock; the inner store skips locking. There is no rollback - tests
  that need rollback behavior use the SQLite store with ":memory:".

SEE ALSO:
  - approval/store.go: Interface contracts
  - store/sqlite/sqlite.go: Production implementation
*/
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/warp/approval-engine/approval"
	"github.com/warp/approval-engine/directory"
)

// Store implements approval.TxStore and directory.EmployeeStore in memory.
type Store struct {
	mu            sync.RWMutex
	entries       map[approval.ReportID]approval.LedgerEntry
	notifications map[string]approval.Notification
	employees     map[string]directory.Employee
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		entries:       make(map[approval.ReportID]approval.LedgerEntry),
		notifications: make(map[string]approval.Notification),
		employees:     make(map[string]directory.Employee),
	}
}

// =============================================================================
// TRANSACTIONAL STORE
// =============================================================================

// WithTx runs fn while holding the write lock. No rollback.
func (s *Store) WithTx(ctx context.Context, fn func(approval.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&lockedStore{s})
}

// lockedStore is handed to WithTx callbacks; the caller holds the lock.
type lockedStore struct {
	s *Store
}

func (ls *lockedStore) GetEntry(ctx context.Context, id approval.ReportID) (*approval.LedgerEntry, error) {
	return ls.s.getEntry(id), nil
}

func (ls *lockedStore) UpsertEntry(ctx context.Context, entry approval.LedgerEntry) error {
	ls.s.entries[entry.ReportID] = entry
	return nil
}

func (ls *lockedStore) ListPending(ctx context.Context, supervisorID string) ([]approval.LedgerEntry, error) {
	return ls.s.listPending(supervisorID), nil
}

func (ls *lockedStore) ListHistory(ctx context.Context, supervisorID string) ([]approval.LedgerEntry, error) {
	return ls.s.listHistory(supervisorID), nil
}

func (ls *lockedStore) ListByEmployee(ctx context.Context, employeeID string) ([]approval.LedgerEntry, error) {
	return ls.s.listByEmployee(employeeID), nil
}

func (ls *lockedStore) CreateNotification(ctx context.Context, n approval.Notification) error {
	ls.s.notifications[n.ID] = n
	return nil
}

func (ls *lockedStore) CountUnread(ctx context.Context, recipientID string) (int, error) {
	return ls.s.countUnread(recipientID), nil
}

func (ls *lockedStore) ListForRecipient(ctx context.Context, recipientID string) ([]approval.Notification, error) {
	return ls.s.listForRecipient(recipientID), nil
}

func (ls *lockedStore) MarkRead(ctx context.Context, notificationID string) error {
	return ls.s.markRead(notificationID)
}

// =============================================================================
// REPORT LEDGER
// =============================================================================

func (s *Store) GetEntry(ctx context.Context, id approval.ReportID) (*approval.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getEntry(id), nil
}

func (s *Store) getEntry(id approval.ReportID) *approval.LedgerEntry {
	entry, ok := s.entries[id]
	if !ok {
		return nil
	}
	return &entry
}

func (s *Store) UpsertEntry(ctx context.Context, entry approval.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.ReportID] = entry
	return nil
}

func (s *Store) ListPending(ctx context.Context, supervisorID string) ([]approval.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listPending(supervisorID), nil
}

func (s *Store) listPending(supervisorID string) []approval.LedgerEntry {
	var entries []approval.LedgerEntry
	for _, e := range s.entries {
		if e.SupervisorID == supervisorID && e.Status == approval.StatusSubmitted {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		ti, tj := entries[i].SubmittedAt, entries[j].SubmittedAt
		if ti == nil || tj == nil {
			return entries[i].ReportID < entries[j].ReportID
		}
		return ti.Before(*tj)
	})
	return entries
}

func (s *Store) ListHistory(ctx context.Context, supervisorID string) ([]approval.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listHistory(supervisorID), nil
}

func (s *Store) listHistory(supervisorID string) []approval.LedgerEntry {
	var entries []approval.LedgerEntry
	for _, e := range s.entries {
		if e.SupervisorID == supervisorID && e.Status != approval.StatusDraft {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].UpdatedAt.Equal(entries[j].UpdatedAt) {
			return entries[i].ReportID < entries[j].ReportID
		}
		return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
	})
	return entries
}

// ListPendingSupervisors returns supervisors with at least one submitted
// report, sorted.
func (s *Store) ListPendingSupervisors(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	for _, e := range s.entries {
		if e.Status == approval.StatusSubmitted && e.SupervisorID != "" {
			seen[e.SupervisorID] = true
		}
	}
	supervisors := make([]string, 0, len(seen))
	for id := range seen {
		supervisors = append(supervisors, id)
	}
	sort.Strings(supervisors)
	return supervisors, nil
}

func (s *Store) ListByEmployee(ctx context.Context, employeeID string) ([]approval.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listByEmployee(employeeID), nil
}

func (s *Store) listByEmployee(employeeID string) []approval.LedgerEntry {
	var entries []approval.LedgerEntry
	for _, e := range s.entries {
		if e.EmployeeID == employeeID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Period.String() > entries[j].Period.String()
	})
	return entries
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

func (s *Store) CreateNotification(ctx context.Context, n approval.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[n.ID] = n
	return nil
}

func (s *Store) CountUnread(ctx context.Context, recipientID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countUnread(recipientID), nil
}

func (s *Store) countUnread(recipientID string) int {
	count := 0
	for _, n := range s.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count
}

func (s *Store) ListForRecipient(ctx context.Context, recipientID string) ([]approval.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listForRecipient(recipientID), nil
}

func (s *Store) listForRecipient(recipientID string) []approval.Notification {
	var out []approval.Notification
	for _, n := range s.notifications {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *Store) MarkRead(ctx context.Context, notificationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.markRead(notificationID)
}

func (s *Store) markRead(notificationID string) error {
	n, ok := s.notifications[notificationID]
	if !ok {
		return fmt.Errorf("notification %s: %w", notificationID, approval.ErrNotFound)
	}
	n.IsRead = true
	s.notifications[notificationID] = n
	return nil
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (s *Store) SaveEmployee(ctx context.Context, emp directory.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[emp.ID] = emp
	return nil
}

func (s *Store) GetEmployee(ctx context.Context, id string) (*directory.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	emp, ok := s.employees[id]
	if !ok {
		return nil, nil
	}
	return &emp, nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]directory.Employee, error) {
	return s.listEmployees(false), nil
}

func (s *Store) ListArchivedEmployees(ctx context.Context) ([]directory.Employee, error) {
	return s.listEmployees(true), nil
}

func (s *Store) listEmployees(archived bool) []directory.Employee {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []directory.Employee
	for _, e := range s.employees {
		if e.Archived == archived {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Email == out[j].Email {
			return out[i].ID < out[j].ID
		}
		return out[i].Email < out[j].Email
	})
	return out
}

func (s *Store) ArchiveEmployee(ctx context.Context, id string) error {
	return s.setArchived(id, true)
}

func (s *Store) RestoreEmployee(ctx context.Context, id string) error {
	return s.setArchived(id, false)
}

func (s *Store) setArchived(id string, archived bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	emp, ok := s.employees[id]
	if !ok {
		return fmt.Errorf("employee %s: %w", id, approval.ErrNotFound)
	}
	emp.Archived = archived
	s.employees[id] = emp
	return nil
}

func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.employees, id)
	return nil
}
