/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements approval.TxStore (report ledger + notifications) and
  directory.EmployeeStore on one database. In production the same patterns
  apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  report_ledger:  One row per (employee, period); complete-row upserts,
                  last-write-wins on report_id. Never hard-deleted.
  notifications:  Insert-only inbox records; is_read is the only column
                  ever updated.
  employees:      Local directory mirror. Email is intentionally NOT
                  unique - the reconciliation engine must be able to see
                  duplicates to flag them.

INDEXES:
  idx_ledger_supervisor_status:     pending/history queries (hot path)
  idx_notifications_recipient_read: unread count, polled every 30-60s
  idx_employees_email:              roster match key lookups

ATOMICITY:
  WithTx wraps a façade operation in one BEGIN/COMMIT so a ledger write
  and its notification fan-out land together. SQLite runs in WAL mode;
  the mutex serializes writers within this process.

USAGE:
  store, err := sqlite.New("./data/approvals.db")  // ":memory:" for tests
  defer store.Close()

SEE ALSO:
  - approval/store.go: Interface contracts
  - store/memory: In-memory implementation for unit tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/approval-engine/approval"
	"github.com/warp/approval-engine/directory"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// runner is satisfied by both *sql.DB and *sql.Tx.
type runner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Report ledger (one row per employee+period, complete-row upserts)
	CREATE TABLE IF NOT EXISTS report_ledger (
		report_id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		supervisor_id TEXT,
		period TEXT NOT NULL,
		status TEXT NOT NULL,
		submitted_at TEXT,
		reviewed_at TEXT,
		comments TEXT,
		mileage_entries INTEGER NOT NULL DEFAULT 0,
		receipt_entries INTEGER NOT NULL DEFAULT 0,
		time_entries INTEGER NOT NULL DEFAULT 0,
		mileage_miles TEXT NOT NULL DEFAULT '0',
		receipt_total TEXT NOT NULL DEFAULT '0',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_ledger_supervisor_status
		ON report_ledger(supervisor_id, status);
	CREATE INDEX IF NOT EXISTS idx_ledger_employee
		ON report_ledger(employee_id, period DESC);

	-- Notifications (insert-only; is_read is the single mutable column)
	CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		recipient_id TEXT NOT NULL,
		recipient_role TEXT NOT NULL,
		message TEXT NOT NULL,
		type TEXT NOT NULL,
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	-- Unread count is polled by every active session; keep it indexed.
	CREATE INDEX IF NOT EXISTS idx_notifications_recipient_read
		ON notifications(recipient_id, is_read);
	CREATE INDEX IF NOT EXISTS idx_notifications_recipient_created
		ON notifications(recipient_id, created_at DESC);

	-- Employees (local mirror of the HR roster; email NOT unique so the
	-- reconciliation engine can flag duplicates)
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		name TEXT NOT NULL,
		position TEXT,
		cost_centers_json TEXT NOT NULL DEFAULT '[]',
		archived BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_email
		ON employees(email);
	CREATE INDEX IF NOT EXISTS idx_employees_archived
		ON employees(archived);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TRANSACTIONAL STORE (approval.TxStore interface)
// =============================================================================

// WithTx executes fn within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(approval.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx, parent: s}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// txStore routes approval.Store calls through an open transaction. The
// surrounding WithTx holds the store mutex, so no locking here.
type txStore struct {
	tx     *sql.Tx
	parent *Store
}

func (ts *txStore) GetEntry(ctx context.Context, id approval.ReportID) (*approval.LedgerEntry, error) {
	return ts.parent.getEntry(ctx, ts.tx, id)
}

func (ts *txStore) UpsertEntry(ctx context.Context, entry approval.LedgerEntry) error {
	return ts.parent.upsertEntry(ctx, ts.tx, entry)
}

func (ts *txStore) ListPending(ctx context.Context, supervisorID string) ([]approval.LedgerEntry, error) {
	return ts.parent.listPending(ctx, ts.tx, supervisorID)
}

func (ts *txStore) ListHistory(ctx context.Context, supervisorID string) ([]approval.LedgerEntry, error) {
	return ts.parent.listHistory(ctx, ts.tx, supervisorID)
}

func (ts *txStore) ListByEmployee(ctx context.Context, employeeID string) ([]approval.LedgerEntry, error) {
	return ts.parent.listByEmployee(ctx, ts.tx, employeeID)
}

func (ts *txStore) CreateNotification(ctx context.Context, n approval.Notification) error {
	return ts.parent.createNotification(ctx, ts.tx, n)
}

func (ts *txStore) CountUnread(ctx context.Context, recipientID string) (int, error) {
	return ts.parent.countUnread(ctx, ts.tx, recipientID)
}

func (ts *txStore) ListForRecipient(ctx context.Context, recipientID string) ([]approval.Notification, error) {
	return ts.parent.listForRecipient(ctx, ts.tx, recipientID)
}

func (ts *txStore) MarkRead(ctx context.Context, notificationID string) error {
	return ts.parent.markRead(ctx, ts.tx, notificationID)
}

// =============================================================================
// REPORT LEDGER (approval.LedgerStore interface)
// =============================================================================

const ledgerColumns = `report_id, employee_id, supervisor_id, period, status,
	submitted_at, reviewed_at, comments,
	mileage_entries, receipt_entries, time_entries, mileage_miles, receipt_total,
	created_at, updated_at`

// GetEntry returns the entry for a report, or nil if none exists.
func (s *Store) GetEntry(ctx context.Context, id approval.ReportID) (*approval.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getEntry(ctx, s.db, id)
}

func (s *Store) getEntry(ctx context.Context, r runner, id approval.ReportID) (*approval.LedgerEntry, error) {
	rows, err := r.QueryContext(ctx,
		`SELECT `+ledgerColumns+` FROM report_ledger WHERE report_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entry: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	entry, err := scanEntry(rows)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// UpsertEntry writes a complete entry, last-write-wins on report_id.
func (s *Store) UpsertEntry(ctx context.Context, entry approval.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upsertEntry(ctx, s.db, entry)
}

func (s *Store) upsertEntry(ctx context.Context, r runner, entry approval.LedgerEntry) error {
	query := `
		INSERT INTO report_ledger
		(report_id, employee_id, supervisor_id, period, status, submitted_at, reviewed_at, comments,
		 mileage_entries, receipt_entries, time_entries, mileage_miles, receipt_total,
		 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(report_id) DO UPDATE SET
			employee_id = excluded.employee_id,
			supervisor_id = excluded.supervisor_id,
			period = excluded.period,
			status = excluded.status,
			submitted_at = excluded.submitted_at,
			reviewed_at = excluded.reviewed_at,
			comments = excluded.comments,
			mileage_entries = excluded.mileage_entries,
			receipt_entries = excluded.receipt_entries,
			time_entries = excluded.time_entries,
			mileage_miles = excluded.mileage_miles,
			receipt_total = excluded.receipt_total,
			updated_at = excluded.updated_at
	`

	_, err := r.ExecContext(ctx, query,
		entry.ReportID,
		entry.EmployeeID,
		entry.SupervisorID,
		entry.Period.String(),
		entry.Status,
		nullTime(entry.SubmittedAt),
		nullTime(entry.ReviewedAt),
		entry.Comments,
		entry.Data.MileageEntries,
		entry.Data.ReceiptEntries,
		entry.Data.TimeEntries,
		entry.Data.MileageMiles.String(),
		entry.Data.ReceiptTotal.String(),
		entry.CreatedAt.UTC().Format(time.RFC3339),
		entry.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert ledger entry: %w", err)
	}
	return nil
}

// ListPending returns submitted entries for one supervisor, oldest first.
func (s *Store) ListPending(ctx context.Context, supervisorID string) ([]approval.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listPending(ctx, s.db, supervisorID)
}

func (s *Store) listPending(ctx context.Context, r runner, supervisorID string) ([]approval.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerColumns + `
		FROM report_ledger
		WHERE supervisor_id = ? AND status = ?
		ORDER BY submitted_at ASC
	`
	return s.queryEntries(ctx, r, query, supervisorID, approval.StatusSubmitted)
}

// ListHistory returns non-draft entries for one supervisor, newest first.
func (s *Store) ListHistory(ctx context.Context, supervisorID string) ([]approval.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listHistory(ctx, s.db, supervisorID)
}

func (s *Store) listHistory(ctx context.Context, r runner, supervisorID string) ([]approval.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerColumns + `
		FROM report_ledger
		WHERE supervisor_id = ? AND status != ?
		ORDER BY updated_at DESC
	`
	return s.queryEntries(ctx, r, query, supervisorID, approval.StatusDraft)
}

// ListPendingSupervisors returns the supervisors who currently have at
// least one submitted report. Used by the reminder scheduler.
func (s *Store) ListPendingSupervisors(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT DISTINCT supervisor_id
		FROM report_ledger
		WHERE status = ? AND supervisor_id != ''
		ORDER BY supervisor_id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, approval.StatusSubmitted)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending supervisors: %w", err)
	}
	defer rows.Close()

	var supervisors []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan supervisor id: %w", err)
		}
		supervisors = append(supervisors, id)
	}
	return supervisors, rows.Err()
}

// ListByEmployee returns one employee's entries, newest period first.
func (s *Store) ListByEmployee(ctx context.Context, employeeID string) ([]approval.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listByEmployee(ctx, s.db, employeeID)
}

func (s *Store) listByEmployee(ctx context.Context, r runner, employeeID string) ([]approval.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerColumns + `
		FROM report_ledger
		WHERE employee_id = ?
		ORDER BY period DESC
	`
	return s.queryEntries(ctx, r, query, employeeID)
}

func (s *Store) queryEntries(ctx context.Context, r runner, query string, args ...any) ([]approval.LedgerEntry, error) {
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []approval.LedgerEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanEntry(rows *sql.Rows) (approval.LedgerEntry, error) {
	var (
		entry        approval.LedgerEntry
		supervisorID sql.NullString
		periodStr    string
		submittedAt  sql.NullString
		reviewedAt   sql.NullString
		comments     sql.NullString
		miles        string
		total        string
		createdAt    string
		updatedAt    string
	)

	err := rows.Scan(
		&entry.ReportID, &entry.EmployeeID, &supervisorID, &periodStr, &entry.Status,
		&submittedAt, &reviewedAt, &comments,
		&entry.Data.MileageEntries, &entry.Data.ReceiptEntries, &entry.Data.TimeEntries,
		&miles, &total,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return entry, fmt.Errorf("failed to scan ledger entry: %w", err)
	}

	entry.SupervisorID = supervisorID.String
	entry.Comments = comments.String

	// A row that no longer parses is corruption, not an empty value.
	if entry.Period, err = approval.ParsePeriod(periodStr); err != nil {
		return entry, fmt.Errorf("failed to scan ledger entry %s: bad period: %w", entry.ReportID, err)
	}
	if entry.SubmittedAt, err = parseNullTime(submittedAt); err != nil {
		return entry, fmt.Errorf("failed to scan ledger entry %s: bad submitted_at: %w", entry.ReportID, err)
	}
	if entry.ReviewedAt, err = parseNullTime(reviewedAt); err != nil {
		return entry, fmt.Errorf("failed to scan ledger entry %s: bad reviewed_at: %w", entry.ReportID, err)
	}
	if entry.Data.MileageMiles, err = decimal.NewFromString(miles); err != nil {
		return entry, fmt.Errorf("failed to scan ledger entry %s: bad mileage_miles: %w", entry.ReportID, err)
	}
	if entry.Data.ReceiptTotal, err = decimal.NewFromString(total); err != nil {
		return entry, fmt.Errorf("failed to scan ledger entry %s: bad receipt_total: %w", entry.ReportID, err)
	}
	if entry.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return entry, fmt.Errorf("failed to scan ledger entry %s: bad created_at: %w", entry.ReportID, err)
	}
	if entry.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return entry, fmt.Errorf("failed to scan ledger entry %s: bad updated_at: %w", entry.ReportID, err)
	}

	return entry, nil
}

// =============================================================================
// NOTIFICATIONS (approval.NotificationStore interface)
// =============================================================================

// CreateNotification inserts one inbox record.
func (s *Store) CreateNotification(ctx context.Context, n approval.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createNotification(ctx, s.db, n)
}

func (s *Store) createNotification(ctx context.Context, r runner, n approval.Notification) error {
	query := `
		INSERT INTO notifications (id, recipient_id, recipient_role, message, type, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.ExecContext(ctx, query,
		n.ID, n.RecipientID, n.RecipientRole, n.Message, n.Type, n.IsRead,
		n.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// CountUnread returns the recipient's unread count. Hot path.
func (s *Store) CountUnread(ctx context.Context, recipientID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countUnread(ctx, s.db, recipientID)
}

func (s *Store) countUnread(ctx context.Context, r runner, recipientID string) (int, error) {
	var count int
	err := r.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notifications WHERE recipient_id = ? AND is_read = FALSE",
		recipientID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// ListForRecipient returns the recipient's inbox, newest first.
func (s *Store) ListForRecipient(ctx context.Context, recipientID string) ([]approval.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listForRecipient(ctx, s.db, recipientID)
}

func (s *Store) listForRecipient(ctx context.Context, r runner, recipientID string) ([]approval.Notification, error) {
	query := `
		SELECT id, recipient_id, recipient_role, message, type, is_read, created_at
		FROM notifications
		WHERE recipient_id = ?
		ORDER BY created_at DESC
	`
	rows, err := r.QueryContext(ctx, query, recipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []approval.Notification
	for rows.Next() {
		var n approval.Notification
		var createdAt string
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.RecipientRole, &n.Message, &n.Type, &n.IsRead, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		if n.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification %s: bad created_at: %w", n.ID, err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkRead flips is_read. Unknown ids return approval.ErrNotFound.
func (s *Store) MarkRead(ctx context.Context, notificationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.markRead(ctx, s.db, notificationID)
}

func (s *Store) markRead(ctx context.Context, r runner, notificationID string) error {
	res, err := r.ExecContext(ctx,
		"UPDATE notifications SET is_read = TRUE WHERE id = ?", notificationID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("notification %s: %w", notificationID, approval.ErrNotFound)
	}
	return nil
}

// =============================================================================
// EMPLOYEES (directory.EmployeeStore interface)
// =============================================================================

const employeeColumns = `id, email, name, position, cost_centers_json, archived, created_at, updated_at`

// SaveEmployee creates or replaces an employee record by ID.
func (s *Store) SaveEmployee(ctx context.Context, emp directory.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ccJSON, err := json.Marshal(emp.CostCenters)
	if err != nil {
		return fmt.Errorf("failed to encode cost centers: %w", err)
	}

	query := `
		INSERT INTO employees (id, email, name, position, cost_centers_json, archived, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			name = excluded.name,
			position = excluded.position,
			cost_centers_json = excluded.cost_centers_json,
			archived = excluded.archived,
			updated_at = excluded.updated_at
	`
	_, err = s.db.ExecContext(ctx, query,
		emp.ID, emp.Email, emp.Name, emp.Position, string(ccJSON), emp.Archived,
		emp.CreatedAt.UTC().Format(time.RFC3339),
		emp.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

// GetEmployee returns one employee, or nil if none exists.
func (s *Store) GetEmployee(ctx context.Context, id string) (*directory.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query employee: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	emp, err := scanEmployee(rows)
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

// ListEmployees returns non-archived employees ordered by email.
func (s *Store) ListEmployees(ctx context.Context) ([]directory.Employee, error) {
	return s.listEmployees(ctx, false)
}

// ListArchivedEmployees returns archived employees ordered by email.
func (s *Store) ListArchivedEmployees(ctx context.Context) ([]directory.Employee, error) {
	return s.listEmployees(ctx, true)
}

func (s *Store) listEmployees(ctx context.Context, archived bool) ([]directory.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE archived = ? ORDER BY email ASC, id ASC`
	rows, err := s.db.QueryContext(ctx, query, archived)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []directory.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// ArchiveEmployee marks an employee archived.
func (s *Store) ArchiveEmployee(ctx context.Context, id string) error {
	return s.setArchived(ctx, id, true)
}

// RestoreEmployee clears the archived flag.
func (s *Store) RestoreEmployee(ctx context.Context, id string) error {
	return s.setArchived(ctx, id, false)
}

func (s *Store) setArchived(ctx context.Context, id string, archived bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE employees SET archived = ?, updated_at = ? WHERE id = ?",
		archived, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("failed to update employee archive flag: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("employee %s: %w", id, approval.ErrNotFound)
	}
	return nil
}

// DeleteEmployee hard-deletes a record. Used only for duplicate cleanup.
func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM employees WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	return nil
}

func scanEmployee(rows *sql.Rows) (directory.Employee, error) {
	var (
		emp       directory.Employee
		position  sql.NullString
		ccJSON    string
		createdAt string
		updatedAt string
	)

	err := rows.Scan(&emp.ID, &emp.Email, &emp.Name, &position, &ccJSON, &emp.Archived, &createdAt, &updatedAt)
	if err != nil {
		return emp, fmt.Errorf("failed to scan employee: %w", err)
	}

	emp.Position = position.String
	if ccJSON != "" {
		if err := json.Unmarshal([]byte(ccJSON), &emp.CostCenters); err != nil {
			return emp, fmt.Errorf("failed to scan employee %s: bad cost_centers_json: %w", emp.ID, err)
		}
	}
	if emp.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return emp, fmt.Errorf("failed to scan employee %s: bad created_at: %w", emp.ID, err)
	}
	if emp.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return emp, fmt.Errorf("failed to scan employee %s: bad updated_at: %w", emp.ID, err)
	}

	return emp, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || strings.TrimSpace(s.String) == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
