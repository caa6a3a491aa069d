/*
service.go - Approval façade

PURPOSE:
  The only component callers use for report actions. Each operation is one
  read-modify-write unit: load the ledger entry, run the state machine,
  persist the updated entry together with its notifications inside a single
  store transaction, return the new entry.

ERROR FLOW:
  Guard failures (ErrInvalidTransition, ErrMissingComment) and ErrNotFound
  pass through untouched so the API layer can map them. Raw store errors
  are wrapped with ErrStorageFailure: the whole operation is atomic, so the
  caller may retry it as a unit.

SEE ALSO:
  - machine.go: Transition logic
  - store.go: TxStore contract
*/
package approval

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// =============================================================================
// SERVICE
// =============================================================================

// Service orchestrates the state machine, ledger, and notification store.
type Service struct {
	store TxStore
	log   *logrus.Logger

	// now is overridable in tests.
	now func() time.Time
}

// NewService creates the approval façade.
func NewService(store TxStore, log *logrus.Logger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}

// WithClock overrides the service clock. Tests only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// SubmitInput describes a report submission.
type SubmitInput struct {
	EmployeeID   string
	SupervisorID string
	Period       Period
	Data         ReportData
}

// =============================================================================
// REPORT ACTIONS
// =============================================================================

// SubmitReport submits an employee's report for the given period, creating
// the ledger entry on first submission. Resubmitting an already-submitted
// report is an idempotent success.
func (s *Service) SubmitReport(ctx context.Context, in SubmitInput) (*LedgerEntry, error) {
	if in.EmployeeID == "" {
		return nil, fmt.Errorf("submit: employee id %w", ErrNotFound)
	}
	if in.Period.IsZero() {
		in.Period = PeriodOf(s.now())
	}

	id := NewReportID(in.EmployeeID, in.Period)
	var out *LedgerEntry

	err := s.store.WithTx(ctx, func(tx Store) error {
		entry, err := tx.GetEntry(ctx, id)
		if err != nil {
			return fmt.Errorf("%w: load entry %s: %v", ErrStorageFailure, id, err)
		}
		if entry == nil {
			now := s.now()
			entry = &LedgerEntry{
				ReportID:     id,
				EmployeeID:   in.EmployeeID,
				SupervisorID: in.SupervisorID,
				Period:       in.Period,
				Status:       StatusDraft,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
		}
		// A resubmission may carry a supervisor reassignment.
		if in.SupervisorID != "" {
			entry.SupervisorID = in.SupervisorID
		}

		res, err := Transition(*entry, TransitionInput{
			Action:  ActionSubmit,
			ActorID: in.EmployeeID,
			Data:    &in.Data,
			Now:     s.now(),
		})
		if err != nil {
			return err
		}
		out = &res.Entry
		if res.NoOp {
			return nil
		}
		return s.persist(ctx, tx, res)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"report":   id,
		"employee": in.EmployeeID,
		"status":   out.Status,
	}).Info("report submitted")
	return out, nil
}

// ApproveReport approves a submitted report.
func (s *Service) ApproveReport(ctx context.Context, id ReportID, reviewerID string) (*LedgerEntry, error) {
	return s.reviewAction(ctx, id, ActionApprove, reviewerID, "")
}

// RejectReport rejects a submitted report. The comment is mandatory.
func (s *Service) RejectReport(ctx context.Context, id ReportID, reviewerID, comment string) (*LedgerEntry, error) {
	return s.reviewAction(ctx, id, ActionReject, reviewerID, comment)
}

// RequestRevision sends a submitted report back for revision. The comment
// is mandatory.
func (s *Service) RequestRevision(ctx context.Context, id ReportID, reviewerID, comment string) (*LedgerEntry, error) {
	return s.reviewAction(ctx, id, ActionRequestRevision, reviewerID, comment)
}

func (s *Service) reviewAction(ctx context.Context, id ReportID, action Action, reviewerID, comment string) (*LedgerEntry, error) {
	var out *LedgerEntry

	err := s.store.WithTx(ctx, func(tx Store) error {
		entry, err := tx.GetEntry(ctx, id)
		if err != nil {
			return fmt.Errorf("%w: load entry %s: %v", ErrStorageFailure, id, err)
		}
		if entry == nil {
			return fmt.Errorf("report %s: %w", id, ErrNotFound)
		}

		res, err := Transition(*entry, TransitionInput{
			Action:  action,
			ActorID: reviewerID,
			Comment: comment,
			Now:     s.now(),
		})
		if err != nil {
			return err
		}
		out = &res.Entry
		return s.persist(ctx, tx, res)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"report":   id,
		"action":   action,
		"reviewer": reviewerID,
		"status":   out.Status,
	}).Info("report reviewed")
	return out, nil
}

// persist writes the transitioned entry and its notification fan-out in
// the surrounding transaction.
func (s *Service) persist(ctx context.Context, tx Store, res TransitionResult) error {
	if err := tx.UpsertEntry(ctx, res.Entry); err != nil {
		return fmt.Errorf("%w: upsert entry %s: %v", ErrStorageFailure, res.Entry.ReportID, err)
	}
	for _, ev := range res.Events {
		n := Notification{
			ID:            uuid.NewString(),
			RecipientID:   ev.RecipientID,
			RecipientRole: ev.RecipientRole,
			Message:       ev.Message,
			Type:          ev.Type,
			CreatedAt:     s.now(),
		}
		if err := tx.CreateNotification(ctx, n); err != nil {
			return fmt.Errorf("%w: create notification for %s: %v", ErrStorageFailure, ev.RecipientID, err)
		}
	}
	return nil
}

// =============================================================================
// MESSAGES AND QUERIES
// =============================================================================

// SendMessageToStaff delivers a direct message from a supervisor to one of
// their staff as a notification.
func (s *Service) SendMessageToStaff(ctx context.Context, senderID, recipientID, message string) (*Notification, error) {
	if recipientID == "" {
		return nil, fmt.Errorf("message recipient %w", ErrNotFound)
	}
	if message == "" {
		return nil, fmt.Errorf("direct message: %w", ErrMissingComment)
	}

	n := Notification{
		ID:            uuid.NewString(),
		RecipientID:   recipientID,
		RecipientRole: RoleStaff,
		Message:       message,
		Type:          NotifyDirectMessage,
		CreatedAt:     s.now(),
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		return nil, fmt.Errorf("%w: create message: %v", ErrStorageFailure, err)
	}

	s.log.WithFields(logrus.Fields{"from": senderID, "to": recipientID}).Info("direct message sent")
	return &n, nil
}

// RemindSupervisor posts a pending-review reminder to one supervisor's
// inbox. Called by the reminder scheduler; a zero count is a no-op.
func (s *Service) RemindSupervisor(ctx context.Context, supervisorID string, pending int) (*Notification, error) {
	if supervisorID == "" || pending <= 0 {
		return nil, nil
	}

	word := "reports"
	if pending == 1 {
		word = "report"
	}
	n := Notification{
		ID:            uuid.NewString(),
		RecipientID:   supervisorID,
		RecipientRole: RoleSupervisor,
		Message:       fmt.Sprintf("You have %d expense %s awaiting review.", pending, word),
		Type:          NotifySubmission,
		CreatedAt:     s.now(),
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		return nil, fmt.Errorf("%w: create reminder: %v", ErrStorageFailure, err)
	}

	s.log.WithFields(logrus.Fields{"supervisor": supervisorID, "pending": pending}).Info("review reminder sent")
	return &n, nil
}

// GetReport returns one ledger entry.
func (s *Service) GetReport(ctx context.Context, id ReportID) (*LedgerEntry, error) {
	entry, err := s.store.GetEntry(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: load entry %s: %v", ErrStorageFailure, id, err)
	}
	if entry == nil {
		return nil, fmt.Errorf("report %s: %w", id, ErrNotFound)
	}
	return entry, nil
}

// PendingReports returns submitted entries awaiting the supervisor.
func (s *Service) PendingReports(ctx context.Context, supervisorID string) ([]LedgerEntry, error) {
	entries, err := s.store.ListPending(ctx, supervisorID)
	if err != nil {
		return nil, fmt.Errorf("%w: list pending: %v", ErrStorageFailure, err)
	}
	return entries, nil
}

// ReportHistory returns the supervisor's team history, newest first.
func (s *Service) ReportHistory(ctx context.Context, supervisorID string) ([]LedgerEntry, error) {
	entries, err := s.store.ListHistory(ctx, supervisorID)
	if err != nil {
		return nil, fmt.Errorf("%w: list history: %v", ErrStorageFailure, err)
	}
	return entries, nil
}

// EmployeeReports returns an employee's own entries, newest first.
func (s *Service) EmployeeReports(ctx context.Context, employeeID string) ([]LedgerEntry, error) {
	entries, err := s.store.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("%w: list employee reports: %v", ErrStorageFailure, err)
	}
	return entries, nil
}

// UnreadCount returns the recipient's unread notification count.
func (s *Service) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	count, err := s.store.CountUnread(ctx, recipientID)
	if err != nil {
		return 0, fmt.Errorf("%w: count unread: %v", ErrStorageFailure, err)
	}
	return count, nil
}

// Notifications returns the recipient's inbox, newest first.
func (s *Service) Notifications(ctx context.Context, recipientID string) ([]Notification, error) {
	ns, err := s.store.ListForRecipient(ctx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("%w: list notifications: %v", ErrStorageFailure, err)
	}
	return ns, nil
}

// MarkNotificationRead marks one notification as read.
func (s *Service) MarkNotificationRead(ctx context.Context, notificationID string) error {
	err := s.store.MarkRead(ctx, notificationID)
	if err == nil || IsNotFound(err) {
		return err
	}
	return fmt.Errorf("%w: mark read %s: %v", ErrStorageFailure, notificationID, err)
}
