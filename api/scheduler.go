/*
scheduler.go - Pending-review reminder scheduler

PURPOSE:
  Periodically finds supervisors with submitted reports waiting in their
  queue and posts a reminder notification to each of them.

DESIGN:
  - robfig/cron drives the schedule; the spec comes from REMINDER_CRON
  - One reminder per supervisor per run, regardless of queue depth
  - An empty cron spec disables the scheduler entirely

USAGE:
  scheduler, err := NewReminderScheduler(store, approvals, log, "0 9 * * 1-5")
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - approval/service.go: RemindSupervisor
  - config/config.go: REMINDER_CRON
*/
package api

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/warp/approval-engine/approval"
)

// PendingSupervisorLister reports which supervisors have submitted reports
// waiting for review.
type PendingSupervisorLister interface {
	ListPendingSupervisors(ctx context.Context) ([]string, error)
}

// ReminderScheduler posts periodic review reminders to supervisors.
type ReminderScheduler struct {
	lister    PendingSupervisorLister
	approvals *approval.Service
	log       *logrus.Logger
	cron      *cron.Cron
}

// NewReminderScheduler creates a scheduler for the given cron spec. An
// empty spec returns a scheduler whose Start is a no-op.
func NewReminderScheduler(lister PendingSupervisorLister, approvals *approval.Service, log *logrus.Logger, spec string) (*ReminderScheduler, error) {
	rs := &ReminderScheduler{
		lister:    lister,
		approvals: approvals,
		log:       log,
	}
	if spec == "" {
		return rs, nil
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, rs.runOnce); err != nil {
		return nil, fmt.Errorf("invalid reminder cron spec %q: %w", spec, err)
	}
	rs.cron = c
	return rs, nil
}

// Start begins the schedule. No-op when the scheduler is disabled.
func (rs *ReminderScheduler) Start() {
	if rs.cron == nil {
		rs.log.Info("reminder scheduler disabled")
		return
	}
	rs.cron.Start()
	rs.log.Info("reminder scheduler started")
}

// Stop halts the schedule and waits for a running job to finish.
func (rs *ReminderScheduler) Stop() {
	if rs.cron == nil {
		return
	}
	<-rs.cron.Stop().Done()
	rs.log.Info("reminder scheduler stopped")
}

// runOnce sends one reminder to every supervisor with a non-empty queue.
func (rs *ReminderScheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	supervisors, err := rs.lister.ListPendingSupervisors(ctx)
	if err != nil {
		rs.log.WithError(err).Error("reminder run: failed to list supervisors")
		return
	}

	for _, supervisorID := range supervisors {
		pending, err := rs.approvals.PendingReports(ctx, supervisorID)
		if err != nil {
			rs.log.WithError(err).WithField("supervisor", supervisorID).
				Error("reminder run: failed to list pending reports")
			continue
		}
		if _, err := rs.approvals.RemindSupervisor(ctx, supervisorID, len(pending)); err != nil {
			rs.log.WithError(err).WithField("supervisor", supervisorID).
				Error("reminder run: failed to send reminder")
		}
	}
}
