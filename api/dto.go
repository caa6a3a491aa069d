/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - approval/entry.go: Domain model these mirror
*/
package api

import (
	"time"

	"github.com/warp/approval-engine/approval"
	"github.com/warp/approval-engine/directory"
)

// =============================================================================
// REPORT TYPES
// =============================================================================

// ReportDataDTO mirrors approval.ReportData on the wire.
type ReportDataDTO struct {
	MileageEntries int    `json:"mileage_entries"`
	ReceiptEntries int    `json:"receipt_entries"`
	TimeEntries    int    `json:"time_entries"`
	MileageMiles   string `json:"mileage_miles"`
	ReceiptTotal   string `json:"receipt_total"`
}

// ReportDTO represents a ledger entry in API responses.
type ReportDTO struct {
	ReportID     string        `json:"report_id"`
	EmployeeID   string        `json:"employee_id"`
	SupervisorID string        `json:"supervisor_id,omitempty"`
	Period       string        `json:"period"`
	Status       string        `json:"status"`
	SubmittedAt  *string       `json:"submitted_at,omitempty"`
	ReviewedAt   *string       `json:"reviewed_at,omitempty"`
	Comments     string        `json:"comments,omitempty"`
	Data         ReportDataDTO `json:"data"`
	CreatedAt    string        `json:"created_at"`
	UpdatedAt    string        `json:"updated_at"`
}

// SubmitReportRequest is the request to submit a report for review.
type SubmitReportRequest struct {
	EmployeeID   string        `json:"employee_id"`
	SupervisorID string        `json:"supervisor_id"`
	Period       string        `json:"period"`
	Data         ReportDataDTO `json:"data"`
}

// ReviewRequest carries the reviewer id and optional comment for
// approve/reject/request-revision actions.
type ReviewRequest struct {
	ReviewerID string `json:"reviewer_id"`
	Comment    string `json:"comment,omitempty"`
}

// =============================================================================
// NOTIFICATION TYPES
// =============================================================================

// NotificationDTO represents one inbox record.
type NotificationDTO struct {
	ID            string `json:"id"`
	RecipientID   string `json:"recipient_id"`
	RecipientRole string `json:"recipient_role"`
	Message       string `json:"message"`
	Type          string `json:"type"`
	IsRead        bool   `json:"is_read"`
	CreatedAt     string `json:"created_at"`
}

// UnreadCountDTO is the polled unread-count response.
type UnreadCountDTO struct {
	RecipientID string `json:"recipient_id"`
	Count       int    `json:"count"`
}

// SendMessageRequest is a direct supervisor-to-staff message.
type SendMessageRequest struct {
	SenderID    string `json:"sender_id"`
	RecipientID string `json:"recipient_id"`
	Message     string `json:"message"`
}

// =============================================================================
// EMPLOYEE / SYNC TYPES
// =============================================================================

// EmployeeDTO represents a directory record in API responses.
type EmployeeDTO struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Position    string   `json:"position,omitempty"`
	CostCenters []string `json:"costCenters"`
	Archived    bool     `json:"archived"`
	CreatedAt   string   `json:"created_at,omitempty"`
	UpdatedAt   string   `json:"updated_at,omitempty"`
}

// CreateEmployeeRequest is the request to create or update an employee.
type CreateEmployeeRequest struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Position    string   `json:"position"`
	CostCenters []string `json:"costCenters"`
}

// ApplySyncRequest selects which parts of a previewed change plan to apply.
// Emails select creates/updates; local ids select archives.
type ApplySyncRequest struct {
	ToCreate  []string `json:"toCreate"`
	ToUpdate  []string `json:"toUpdate"`
	ToArchive []string `json:"toArchive"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toReportDTO(e approval.LedgerEntry) ReportDTO {
	dto := ReportDTO{
		ReportID:     string(e.ReportID),
		EmployeeID:   e.EmployeeID,
		SupervisorID: e.SupervisorID,
		Period:       e.Period.String(),
		Status:       string(e.Status),
		Comments:     e.Comments,
		Data: ReportDataDTO{
			MileageEntries: e.Data.MileageEntries,
			ReceiptEntries: e.Data.ReceiptEntries,
			TimeEntries:    e.Data.TimeEntries,
			MileageMiles:   e.Data.MileageMiles.String(),
			ReceiptTotal:   e.Data.ReceiptTotal.String(),
		},
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
		UpdatedAt: e.UpdatedAt.Format(time.RFC3339),
	}
	if e.SubmittedAt != nil {
		dto.SubmittedAt = strPtr(e.SubmittedAt.Format(time.RFC3339))
	}
	if e.ReviewedAt != nil {
		dto.ReviewedAt = strPtr(e.ReviewedAt.Format(time.RFC3339))
	}
	return dto
}

func toReportDTOs(entries []approval.LedgerEntry) []ReportDTO {
	dtos := make([]ReportDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toReportDTO(e)
	}
	return dtos
}

func toNotificationDTO(n approval.Notification) NotificationDTO {
	return NotificationDTO{
		ID:            n.ID,
		RecipientID:   n.RecipientID,
		RecipientRole: string(n.RecipientRole),
		Message:       n.Message,
		Type:          string(n.Type),
		IsRead:        n.IsRead,
		CreatedAt:     n.CreatedAt.Format(time.RFC3339),
	}
}

func toNotificationDTOs(ns []approval.Notification) []NotificationDTO {
	dtos := make([]NotificationDTO, len(ns))
	for i, n := range ns {
		dtos[i] = toNotificationDTO(n)
	}
	return dtos
}

func toEmployeeDTO(e directory.Employee) EmployeeDTO {
	ccs := e.CostCenters
	if ccs == nil {
		ccs = []string{}
	}
	return EmployeeDTO{
		ID:          e.ID,
		Email:       e.Email,
		Name:        e.Name,
		Position:    e.Position,
		CostCenters: ccs,
		Archived:    e.Archived,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   e.UpdatedAt.Format(time.RFC3339),
	}
}

func toEmployeeDTOs(emps []directory.Employee) []EmployeeDTO {
	dtos := make([]EmployeeDTO, len(emps))
	for i, e := range emps {
		dtos[i] = toEmployeeDTO(e)
	}
	return dtos
}

func strPtr(s string) *string {
	return &s
}
