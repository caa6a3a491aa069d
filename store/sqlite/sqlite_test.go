package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/approval-engine/approval"
	"github.com/warp/approval-engine/directory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testEntry(employeeID, supervisorID string, status approval.Status, submitted time.Time) approval.LedgerEntry {
	period := approval.Period{Year: 2025, Month: 5}
	entry := approval.LedgerEntry{
		ReportID:     approval.NewReportID(employeeID, period),
		EmployeeID:   employeeID,
		SupervisorID: supervisorID,
		Period:       period,
		Status:       status,
		Data: approval.ReportData{
			MileageEntries: 1,
			MileageMiles:   decimal.RequireFromString("12.5"),
			ReceiptTotal:   decimal.RequireFromString("99.99"),
		},
		CreatedAt: submitted.Add(-time.Hour),
		UpdatedAt: submitted,
	}
	if status != approval.StatusDraft {
		entry.SubmittedAt = &submitted
	}
	if status.IsReviewed() {
		reviewed := submitted.Add(time.Hour)
		entry.ReviewedAt = &reviewed
		entry.UpdatedAt = reviewed
	}
	if status == approval.StatusRejected || status == approval.StatusNeedsRevision {
		entry.Comments = "fix it"
	}
	return entry
}

var base = time.Date(2025, time.May, 10, 12, 0, 0, 0, time.UTC)

// =============================================================================
// REPORT LEDGER
// =============================================================================

func TestStore_GetEntry_Missing(t *testing.T) {
	store := newTestStore(t)

	entry, err := store.GetEntry(context.Background(), "nobody:2025-01")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestStore_UpsertAndGetEntry_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	want := testEntry("emp-1", "sup-1", approval.StatusSubmitted, base)
	require.NoError(t, store.UpsertEntry(ctx, want))

	got, err := store.GetEntry(ctx, want.ReportID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, want.ReportID, got.ReportID)
	assert.Equal(t, want.Status, got.Status)
	assert.Equal(t, want.Period, got.Period)
	require.NotNil(t, got.SubmittedAt)
	assert.True(t, want.SubmittedAt.Equal(*got.SubmittedAt))
	assert.Nil(t, got.ReviewedAt)
	assert.True(t, want.Data.MileageMiles.Equal(got.Data.MileageMiles))
	assert.True(t, want.Data.ReceiptTotal.Equal(got.Data.ReceiptTotal))
}

func TestStore_UpsertEntry_LastWriteWins(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	entry := testEntry("emp-1", "sup-1", approval.StatusSubmitted, base)
	require.NoError(t, store.UpsertEntry(ctx, entry))

	reviewed := base.Add(time.Hour)
	entry.Status = approval.StatusApproved
	entry.ReviewedAt = &reviewed
	entry.UpdatedAt = reviewed
	require.NoError(t, store.UpsertEntry(ctx, entry))

	got, err := store.GetEntry(ctx, entry.ReportID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, approval.StatusApproved, got.Status)
	require.NotNil(t, got.ReviewedAt)
}

func TestStore_ListPending_OldestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	newer := testEntry("emp-2", "sup-1", approval.StatusSubmitted, base.Add(time.Hour))
	older := testEntry("emp-1", "sup-1", approval.StatusSubmitted, base)
	other := testEntry("emp-3", "sup-2", approval.StatusSubmitted, base)
	drafted := testEntry("emp-4", "sup-1", approval.StatusDraft, base)

	for _, e := range []approval.LedgerEntry{newer, older, other, drafted} {
		require.NoError(t, store.UpsertEntry(ctx, e))
	}

	pending, err := store.ListPending(ctx, "sup-1")
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "emp-1", pending[0].EmployeeID)
	assert.Equal(t, "emp-2", pending[1].EmployeeID)
}

func TestStore_ListHistory_ExcludesDrafts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	approved := testEntry("emp-1", "sup-1", approval.StatusApproved, base)
	submitted := testEntry("emp-2", "sup-1", approval.StatusSubmitted, base.Add(2*time.Hour))
	drafted := testEntry("emp-3", "sup-1", approval.StatusDraft, base)

	for _, e := range []approval.LedgerEntry{approved, submitted, drafted} {
		require.NoError(t, store.UpsertEntry(ctx, e))
	}

	history, err := store.ListHistory(ctx, "sup-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "emp-2", history[0].EmployeeID, "newest first")
}

func TestStore_ListPendingSupervisors(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertEntry(ctx, testEntry("emp-1", "sup-b", approval.StatusSubmitted, base)))
	require.NoError(t, store.UpsertEntry(ctx, testEntry("emp-2", "sup-a", approval.StatusSubmitted, base)))
	require.NoError(t, store.UpsertEntry(ctx, testEntry("emp-3", "sup-c", approval.StatusApproved, base)))

	supervisors, err := store.ListPendingSupervisors(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sup-a", "sup-b"}, supervisors)
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

func TestStore_Notifications_CountAndMarkRead(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i, id := range []string{"n1", "n2", "n3"} {
		n := approval.Notification{
			ID:            id,
			RecipientID:   "sup-1",
			RecipientRole: approval.RoleSupervisor,
			Message:       "pending review",
			Type:          approval.NotifySubmission,
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, store.CreateNotification(ctx, n))
	}

	count, err := store.CountUnread(ctx, "sup-1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	inbox, err := store.ListForRecipient(ctx, "sup-1")
	require.NoError(t, err)
	require.Len(t, inbox, 3)
	assert.Equal(t, "n3", inbox[0].ID, "newest first")

	require.NoError(t, store.MarkRead(ctx, "n2"))

	count, err = store.CountUnread(ctx, "sup-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	inbox, err = store.ListForRecipient(ctx, "sup-1")
	require.NoError(t, err)
	assert.Len(t, inbox, 3, "mark read does not delete")
}

func TestStore_MarkRead_UnknownID(t *testing.T) {
	store := newTestStore(t)

	err := store.MarkRead(context.Background(), "ghost")
	assert.ErrorIs(t, err, approval.ErrNotFound)
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func TestStore_WithTx_CommitsTogether(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	entry := testEntry("emp-1", "sup-1", approval.StatusSubmitted, base)
	err := store.WithTx(ctx, func(tx approval.Store) error {
		if err := tx.UpsertEntry(ctx, entry); err != nil {
			return err
		}
		return tx.CreateNotification(ctx, approval.Notification{
			ID: "n1", RecipientID: "sup-1", RecipientRole: approval.RoleSupervisor,
			Message: "m", Type: approval.NotifySubmission, CreatedAt: base,
		})
	})
	require.NoError(t, err)

	got, err := store.GetEntry(ctx, entry.ReportID)
	require.NoError(t, err)
	assert.NotNil(t, got)

	count, err := store.CountUnread(ctx, "sup-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStore_WithTx_RollsBackOnError(t *testing.T) {
	// GIVEN: A transaction that writes an entry then fails
	// WHEN: The callback returns an error
	// THEN: Nothing is visible afterwards

	store := newTestStore(t)
	ctx := context.Background()

	entry := testEntry("emp-1", "sup-1", approval.StatusSubmitted, base)
	boom := errors.New("boom")

	err := store.WithTx(ctx, func(tx approval.Store) error {
		if err := tx.UpsertEntry(ctx, entry); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := store.GetEntry(ctx, entry.ReportID)
	require.NoError(t, err)
	assert.Nil(t, got, "write must be rolled back")
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func TestStore_Employees_SaveGetList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	emp := directory.Employee{
		ID:          "e1",
		Email:       "alice@example.com",
		Name:        "Alice",
		Position:    "Analyst",
		CostCenters: []string{"hq", "ops"},
		CreatedAt:   base,
		UpdatedAt:   base,
	}
	require.NoError(t, store.SaveEmployee(ctx, emp))

	got, err := store.GetEmployee(ctx, "e1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"hq", "ops"}, got.CostCenters)
	assert.Equal(t, "Analyst", got.Position)

	missing, err := store.GetEmployee(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	active, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestStore_Employees_DuplicateEmailsRepresentable(t *testing.T) {
	// The email column has no unique constraint: the reconciliation engine
	// must be able to observe duplicates before cleaning them up.

	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"e1", "e2"} {
		require.NoError(t, store.SaveEmployee(ctx, directory.Employee{
			ID: id, Email: "twin@example.com", Name: "Twin", CreatedAt: base, UpdatedAt: base,
		}))
	}

	active, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

func TestStore_Employees_ArchiveRestoreDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveEmployee(ctx, directory.Employee{
		ID: "e1", Email: "bob@example.com", Name: "Bob", CreatedAt: base, UpdatedAt: base,
	}))

	require.NoError(t, store.ArchiveEmployee(ctx, "e1"))

	active, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	archived, err := store.ListArchivedEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, archived, 1)

	require.NoError(t, store.RestoreEmployee(ctx, "e1"))
	active, err = store.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	require.NoError(t, store.DeleteEmployee(ctx, "e1"))
	got, err := store.GetEmployee(ctx, "e1")
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.ErrorIs(t, store.ArchiveEmployee(ctx, "e1"), approval.ErrNotFound)
}

// =============================================================================
// CORRUPTED ROWS
// =============================================================================

func TestStore_GetEntry_CorruptedColumns_SurfaceErrors(t *testing.T) {
	// GIVEN: A ledger row whose text columns no longer parse
	// WHEN: Reading it back
	// THEN: An error naming the column, not a silently zeroed entry

	cases := []struct {
		name   string
		column string
		value  string
	}{
		{"bad period", "period", "mid-2025"},
		{"bad submitted_at", "submitted_at", "not-a-time"},
		{"bad mileage_miles", "mileage_miles", "twelve"},
		{"bad receipt_total", "receipt_total", ""},
		{"bad created_at", "created_at", "yesterday"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newTestStore(t)
			ctx := context.Background()

			entry := testEntry("emp-1", "sup-1", approval.StatusSubmitted, base)
			require.NoError(t, store.UpsertEntry(ctx, entry))

			_, err := store.db.ExecContext(ctx,
				"UPDATE report_ledger SET "+tc.column+" = ? WHERE report_id = ?",
				tc.value, entry.ReportID)
			require.NoError(t, err)

			_, err = store.GetEntry(ctx, entry.ReportID)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.column)
		})
	}
}

func TestStore_GetEmployee_CorruptedRow_SurfacesError(t *testing.T) {
	// cost_centers_json that is not valid JSON must not round-trip as an
	// employee with no cost centers.

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveEmployee(ctx, directory.Employee{
		ID: "e1", Email: "carol@example.com", Name: "Carol",
		CostCenters: []string{"CC-100"},
		CreatedAt:   base, UpdatedAt: base,
	}))

	_, err := store.db.ExecContext(ctx,
		"UPDATE employees SET cost_centers_json = '{not json' WHERE id = ?", "e1")
	require.NoError(t, err)

	_, err = store.GetEmployee(ctx, "e1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cost_centers_json")

	_, err = store.db.ExecContext(ctx,
		"UPDATE employees SET cost_centers_json = '[]', updated_at = 'later' WHERE id = ?", "e1")
	require.NoError(t, err)

	_, err = store.GetEmployee(ctx, "e1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "updated_at")
}
