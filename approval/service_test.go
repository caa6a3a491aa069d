package approval_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/approval-engine/approval"
	"github.com/warp/approval-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestService(t *testing.T) (*approval.Service, *memory.Store) {
	t.Helper()
	store := memory.New()

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	clock := time.Date(2025, time.June, 20, 9, 0, 0, 0, time.UTC)
	svc := approval.NewService(store, log).WithClock(func() time.Time { return clock })
	return svc, store
}

func june() approval.Period {
	return approval.Period{Year: 2025, Month: 6}
}

func submitInput(employeeID, supervisorID string) approval.SubmitInput {
	return approval.SubmitInput{
		EmployeeID:   employeeID,
		SupervisorID: supervisorID,
		Period:       june(),
		Data: approval.ReportData{
			ReceiptEntries: 3,
			ReceiptTotal:   decimal.RequireFromString("120.50"),
		},
	}
}

// =============================================================================
// SUBMISSION
// =============================================================================

func TestService_SubmitReport_CreatesEntryAndNotifiesSupervisor(t *testing.T) {
	// GIVEN: No ledger entry for emp-1/2025-06
	// WHEN: emp-1 submits
	// THEN: Entry exists as submitted and the supervisor has one unread notification

	svc, _ := newTestService(t)
	ctx := context.Background()

	entry, err := svc.SubmitReport(ctx, submitInput("emp-1", "sup-1"))
	require.NoError(t, err)
	assert.Equal(t, approval.StatusSubmitted, entry.Status)
	assert.Equal(t, approval.NewReportID("emp-1", june()), entry.ReportID)

	count, err := svc.UnreadCount(ctx, "sup-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	inbox, err := svc.Notifications(ctx, "sup-1")
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, approval.NotifySubmission, inbox[0].Type)
	assert.Equal(t, approval.RoleSupervisor, inbox[0].RecipientRole)
}

func TestService_SubmitReport_Retry_NoDuplicateNotification(t *testing.T) {
	// GIVEN: emp-1 already submitted
	// WHEN: The same submit arrives again
	// THEN: Success, but no second notification

	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SubmitReport(ctx, submitInput("emp-1", "sup-1"))
	require.NoError(t, err)
	_, err = svc.SubmitReport(ctx, submitInput("emp-1", "sup-1"))
	require.NoError(t, err)

	count, err := svc.UnreadCount(ctx, "sup-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestService_SubmitReport_EmptyReport(t *testing.T) {
	svc, _ := newTestService(t)

	in := submitInput("emp-1", "sup-1")
	in.Data = approval.ReportData{}

	_, err := svc.SubmitReport(context.Background(), in)
	assert.ErrorIs(t, err, approval.ErrInvalidTransition)
}

// =============================================================================
// REVIEW
// =============================================================================

func TestService_ApproveReport_NotifiesEmployee(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	entry, err := svc.SubmitReport(ctx, submitInput("emp-1", "sup-1"))
	require.NoError(t, err)

	approved, err := svc.ApproveReport(ctx, entry.ReportID, "sup-1")
	require.NoError(t, err)
	assert.Equal(t, approval.StatusApproved, approved.Status)

	inbox, err := svc.Notifications(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, approval.NotifyApproval, inbox[0].Type)
	assert.Equal(t, approval.RoleStaff, inbox[0].RecipientRole)
}

func TestService_RejectReport_RequiresComment(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	entry, err := svc.SubmitReport(ctx, submitInput("emp-1", "sup-1"))
	require.NoError(t, err)

	_, err = svc.RejectReport(ctx, entry.ReportID, "sup-1", "   ")
	assert.ErrorIs(t, err, approval.ErrMissingComment)

	// A failed guard must not write anything.
	inbox, err := svc.Notifications(ctx, "emp-1")
	require.NoError(t, err)
	assert.Empty(t, inbox)

	rejected, err := svc.RejectReport(ctx, entry.ReportID, "sup-1", "missing receipts")
	require.NoError(t, err)
	assert.Equal(t, approval.StatusRejected, rejected.Status)
	assert.Equal(t, "missing receipts", rejected.Comments)
}

func TestService_ReviewByUnassignedReviewer(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	entry, err := svc.SubmitReport(ctx, submitInput("emp-1", "sup-1"))
	require.NoError(t, err)

	_, err = svc.ApproveReport(ctx, entry.ReportID, "stranger-99")
	assert.ErrorIs(t, err, approval.ErrInvalidTransition)

	// The report is still waiting for its assigned supervisor.
	stored, err := svc.GetReport(ctx, entry.ReportID)
	require.NoError(t, err)
	assert.Equal(t, approval.StatusSubmitted, stored.Status)

	inbox, err := svc.Notifications(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, inbox, 0, "blocked review must not notify the employee")

	_, err = svc.ApproveReport(ctx, entry.ReportID, "sup-1")
	require.NoError(t, err)
}

func TestService_ReviewUnknownReport(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ApproveReport(context.Background(), "nobody:2025-01", "sup-1")
	assert.ErrorIs(t, err, approval.ErrNotFound)
}

func TestService_ConcurrentReview_SecondLoses(t *testing.T) {
	// GIVEN: A submitted report
	// WHEN: Two reviewers act one after another
	// THEN: The second action fails the guard on the reloaded entry

	svc, _ := newTestService(t)
	ctx := context.Background()

	entry, err := svc.SubmitReport(ctx, submitInput("emp-1", "sup-1"))
	require.NoError(t, err)

	_, err = svc.ApproveReport(ctx, entry.ReportID, "sup-1")
	require.NoError(t, err)

	_, err = svc.RejectReport(ctx, entry.ReportID, "sup-2", "changed my mind")
	assert.ErrorIs(t, err, approval.ErrInvalidTransition)
}

// =============================================================================
// QUEUES
// =============================================================================

func TestService_PendingAndHistory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, emp := range []string{"emp-1", "emp-2", "emp-3"} {
		_, err := svc.SubmitReport(ctx, submitInput(emp, "sup-1"))
		require.NoError(t, err)
	}

	pending, err := svc.PendingReports(ctx, "sup-1")
	require.NoError(t, err)
	assert.Len(t, pending, 3)

	_, err = svc.ApproveReport(ctx, pending[0].ReportID, "sup-1")
	require.NoError(t, err)

	pending, err = svc.PendingReports(ctx, "sup-1")
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	// History keeps every non-draft entry, including the approved one.
	history, err := svc.ReportHistory(ctx, "sup-1")
	require.NoError(t, err)
	assert.Len(t, history, 3)

	mine, err := svc.EmployeeReports(ctx, "emp-1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

func TestService_UnreadCount_DropsToZeroAfterMarkRead(t *testing.T) {
	// GIVEN: A supervisor with three unread submission notifications
	// WHEN: Marking each one read
	// THEN: The unread count reaches zero while the inbox keeps all three

	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, emp := range []string{"emp-1", "emp-2", "emp-3"} {
		_, err := svc.SubmitReport(ctx, submitInput(emp, "sup-1"))
		require.NoError(t, err)
	}

	count, err := svc.UnreadCount(ctx, "sup-1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	inbox, err := svc.Notifications(ctx, "sup-1")
	require.NoError(t, err)
	require.Len(t, inbox, 3)

	for _, n := range inbox {
		require.NoError(t, svc.MarkNotificationRead(ctx, n.ID))
	}

	count, err = svc.UnreadCount(ctx, "sup-1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	inbox, err = svc.Notifications(ctx, "sup-1")
	require.NoError(t, err)
	assert.Len(t, inbox, 3)
}

func TestService_MarkRead_UnknownID(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.MarkNotificationRead(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, approval.ErrNotFound)
}

func TestService_SendMessageToStaff(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	n, err := svc.SendMessageToStaff(ctx, "sup-1", "emp-1", "Please see me about the Q2 travel budget.")
	require.NoError(t, err)
	assert.Equal(t, approval.NotifyDirectMessage, n.Type)
	assert.Equal(t, approval.RoleStaff, n.RecipientRole)

	count, err := svc.UnreadCount(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// =============================================================================
// REMINDERS
// =============================================================================

func TestService_RemindSupervisor(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	// Zero pending is a no-op.
	n, err := svc.RemindSupervisor(ctx, "sup-1", 0)
	require.NoError(t, err)
	assert.Nil(t, n)

	n, err = svc.RemindSupervisor(ctx, "sup-1", 2)
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, approval.NotifySubmission, n.Type)
	assert.Contains(t, n.Message, "2")

	supervisors, err := store.ListPendingSupervisors(ctx)
	require.NoError(t, err)
	assert.Empty(t, supervisors, "reminders alone do not create pending reports")
}
