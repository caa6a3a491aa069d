/*
store.go - Persistence interfaces for the approval engine

PURPOSE:
  Defines the contract between the approval façade and the database.
  Implementations: store/sqlite (production) and store/memory (tests).

WRITE SEMANTICS:
  The ledger is last-write-wins on ReportID with no merging. The state
  machine is the only writer and always writes a complete entry, so upsert
  is safe. Notifications are insert-only; MarkRead flips the single
  mutable field.

ATOMICITY:
  WithTx runs a function against a transactional view of the store. The
  façade wraps every transition in it so the ledger write and its
  notification writes land together or not at all. A crash between them
  must never leave a transition without its fan-out.

SEE ALSO:
  - store/sqlite/sqlite.go: SQLite implementation
  - store/memory/memory.go: In-memory implementation for tests
*/
package approval

import "context"

// =============================================================================
// LEDGER STORE
// =============================================================================

// LedgerStore persists report ledger entries.
type LedgerStore interface {
	// GetEntry returns the entry for a report, or nil if none exists.
	GetEntry(ctx context.Context, id ReportID) (*LedgerEntry, error)

	// UpsertEntry writes a complete entry, replacing any previous row for
	// the same ReportID.
	UpsertEntry(ctx context.Context, entry LedgerEntry) error

	// ListPending returns submitted entries for the supervisor's direct
	// reports, oldest submission first.
	ListPending(ctx context.Context, supervisorID string) ([]LedgerEntry, error)

	// ListHistory returns all non-draft entries for the supervisor's
	// direct reports, newest first.
	ListHistory(ctx context.Context, supervisorID string) ([]LedgerEntry, error)

	// ListByEmployee returns all entries for one employee, newest period
	// first.
	ListByEmployee(ctx context.Context, employeeID string) ([]LedgerEntry, error)
}

// =============================================================================
// NOTIFICATION STORE
// =============================================================================

// NotificationStore persists per-recipient inbox records.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n Notification) error

	// CountUnread must be cheap; clients poll it every 30-60 seconds.
	CountUnread(ctx context.Context, recipientID string) (int, error)

	// ListForRecipient returns the recipient's notifications, newest first.
	ListForRecipient(ctx context.Context, recipientID string) ([]Notification, error)

	// MarkRead flips IsRead. Returns ErrNotFound for unknown ids.
	MarkRead(ctx context.Context, notificationID string) error
}

// =============================================================================
// COMBINED / TRANSACTIONAL STORE
// =============================================================================

// Store is the full persistence surface one façade operation needs.
type Store interface {
	LedgerStore
	NotificationStore
}

// TxStore adds atomic multi-write support.
type TxStore interface {
	Store

	// WithTx executes fn against a transactional store. If fn returns an
	// error the transaction is rolled back, otherwise committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}
