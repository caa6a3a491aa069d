/*
events.go - Notification records and transition event descriptors

PURPOSE:
  Two closely related types live here:

  Event        - A side effect DESCRIPTION emitted by the state machine.
                 Pure data: who to notify, with what message. The machine
                 never writes anything itself.
  Notification - The durable per-recipient inbox record the façade creates
                 from an Event (or from a direct message). Owned by its
                 recipient; only IsRead ever changes, nothing is deleted.
*/
package approval

import "time"

// =============================================================================
// ROLES AND NOTIFICATION TYPES
// =============================================================================

type Role string

const (
	RoleSupervisor Role = "supervisor"
	RoleStaff      Role = "staff"
)

type NotificationType string

const (
	NotifySubmission    NotificationType = "submission"
	NotifyApproval      NotificationType = "approval"
	NotifyRejection     NotificationType = "rejection"
	NotifyRevision      NotificationType = "revision"
	NotifyDirectMessage NotificationType = "directmessage"
)

// =============================================================================
// TRANSITION EVENTS
// =============================================================================

// Event describes a notification that a successful transition requires.
// The façade persists events atomically with the ledger write.
type Event struct {
	RecipientID   string
	RecipientRole Role
	Type          NotificationType
	Message       string
}

// =============================================================================
// NOTIFICATION RECORD
// =============================================================================

// Notification is one durable inbox record.
type Notification struct {
	ID            string
	RecipientID   string
	RecipientRole Role
	Message       string
	Type          NotificationType
	IsRead        bool
	CreatedAt     time.Time
}
