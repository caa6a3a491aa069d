/*
handlers.go - HTTP API handlers for the approval engine

PURPOSE:
  Exposes the approval workflow and directory sync via REST API. Handles
  HTTP request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Reports:
    POST   /api/reports                      Submit a report for review
    GET    /api/reports/{id}                 Get one ledger entry
    POST   /api/reports/{id}/approve         Approve
    POST   /api/reports/{id}/reject          Reject (comment required)
    POST   /api/reports/{id}/request-revision Request changes (comment required)
    GET    /api/reports/pending              Supervisor's pending queue
    GET    /api/reports/history              Supervisor's review history
    GET    /api/reports/employee/{id}        One employee's reports

  Notifications:
    GET    /api/notifications/{recipientId}        Inbox, newest first
    GET    /api/notifications/{recipientId}/count  Unread count (polled)
    POST   /api/notifications/{id}/read            Mark read
    POST   /api/messages                           Direct supervisor message

  Employees:
    GET    /api/employees                    List active
    GET    /api/employees/archived           List archived
    POST   /api/employees                    Create/update
    GET    /api/employees/{id}               Get one
    POST   /api/employees/{id}/archive       Archive
    POST   /api/employees/{id}/restore       Restore
    POST   /api/employees/sync-from-external/preview  Dry-run change plan
    POST   /api/employees/sync-from-external/apply    Apply approved changes

ERROR HANDLING:
  Domain errors map to HTTP status via their taxonomy kind:
  - 400: missing_comment, malformed input
  - 404: not_found
  - 409: invalid_transition
  - 500: storage_failure, everything else
  Apply-time sync staleness is reported per item in the 200 response
  body, not as a request-level status.

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - approval/service.go: Domain façade
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/warp/approval-engine/approval"
	"github.com/warp/approval-engine/directory"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Approvals *approval.Service
	Sync      *directory.SyncService
	Employees directory.EmployeeStore
	Log       *logrus.Logger
}

// NewHandler creates a new handler with the given services.
func NewHandler(approvals *approval.Service, sync *directory.SyncService, employees directory.EmployeeStore, log *logrus.Logger) *Handler {
	return &Handler{
		Approvals: approvals,
		Sync:      sync,
		Employees: employees,
		Log:       log,
	}
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// SubmitReport submits an employee's report for the given period.
func (h *Handler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	var req SubmitReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "bad_request", err)
		return
	}
	if req.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "employee_id is required", "bad_request", nil)
		return
	}

	period, err := approval.ParsePeriod(req.Period)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period format (use YYYY-MM)", "bad_request", err)
		return
	}

	data, err := parseReportData(req.Data)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid report data", "bad_request", err)
		return
	}

	entry, err := h.Approvals.SubmitReport(r.Context(), approval.SubmitInput{
		EmployeeID:   req.EmployeeID,
		SupervisorID: req.SupervisorID,
		Period:       period,
		Data:         data,
	})
	if err != nil {
		h.writeDomainError(w, "Failed to submit report", err)
		return
	}

	writeJSON(w, http.StatusOK, toReportDTO(*entry))
}

// GetReport returns a single ledger entry.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	id := approval.ReportID(chi.URLParam(r, "id"))

	entry, err := h.Approvals.GetReport(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to get report", err)
		return
	}

	writeJSON(w, http.StatusOK, toReportDTO(*entry))
}

// ApproveReport approves a submitted report.
func (h *Handler) ApproveReport(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, approval.ActionApprove)
}

// RejectReport rejects a submitted report. Comment required.
func (h *Handler) RejectReport(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, approval.ActionReject)
}

// RequestRevision sends a submitted report back for changes. Comment required.
func (h *Handler) RequestRevision(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, approval.ActionRequestRevision)
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request, action approval.Action) {
	id := approval.ReportID(chi.URLParam(r, "id"))

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "bad_request", err)
		return
	}

	var (
		entry *approval.LedgerEntry
		err   error
	)
	switch action {
	case approval.ActionApprove:
		entry, err = h.Approvals.ApproveReport(r.Context(), id, req.ReviewerID)
	case approval.ActionReject:
		entry, err = h.Approvals.RejectReport(r.Context(), id, req.ReviewerID, req.Comment)
	case approval.ActionRequestRevision:
		entry, err = h.Approvals.RequestRevision(r.Context(), id, req.ReviewerID, req.Comment)
	}
	if err != nil {
		h.writeDomainError(w, "Failed to review report", err)
		return
	}

	writeJSON(w, http.StatusOK, toReportDTO(*entry))
}

// PendingReports returns the supervisor's submitted queue, oldest first.
func (h *Handler) PendingReports(w http.ResponseWriter, r *http.Request) {
	supervisorID := r.URL.Query().Get("supervisor_id")
	if supervisorID == "" {
		writeError(w, http.StatusBadRequest, "supervisor_id is required", "bad_request", nil)
		return
	}

	entries, err := h.Approvals.PendingReports(r.Context(), supervisorID)
	if err != nil {
		h.writeDomainError(w, "Failed to list pending reports", err)
		return
	}

	writeJSON(w, http.StatusOK, toReportDTOs(entries))
}

// ReportHistory returns the supervisor's non-draft reports, newest first.
func (h *Handler) ReportHistory(w http.ResponseWriter, r *http.Request) {
	supervisorID := r.URL.Query().Get("supervisor_id")
	if supervisorID == "" {
		writeError(w, http.StatusBadRequest, "supervisor_id is required", "bad_request", nil)
		return
	}

	entries, err := h.Approvals.ReportHistory(r.Context(), supervisorID)
	if err != nil {
		h.writeDomainError(w, "Failed to list report history", err)
		return
	}

	writeJSON(w, http.StatusOK, toReportDTOs(entries))
}

// EmployeeReports returns one employee's reports, newest period first.
func (h *Handler) EmployeeReports(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	entries, err := h.Approvals.EmployeeReports(r.Context(), employeeID)
	if err != nil {
		h.writeDomainError(w, "Failed to list employee reports", err)
		return
	}

	writeJSON(w, http.StatusOK, toReportDTOs(entries))
}

// =============================================================================
// NOTIFICATION HANDLERS
// =============================================================================

// ListNotifications returns the recipient's inbox, newest first.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	recipientID := chi.URLParam(r, "recipientId")

	notifications, err := h.Approvals.Notifications(r.Context(), recipientID)
	if err != nil {
		h.writeDomainError(w, "Failed to list notifications", err)
		return
	}

	writeJSON(w, http.StatusOK, toNotificationDTOs(notifications))
}

// UnreadCount returns the recipient's unread notification count.
func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	recipientID := chi.URLParam(r, "recipientId")

	count, err := h.Approvals.UnreadCount(r.Context(), recipientID)
	if err != nil {
		h.writeDomainError(w, "Failed to count notifications", err)
		return
	}

	writeJSON(w, http.StatusOK, UnreadCountDTO{RecipientID: recipientID, Count: count})
}

// MarkNotificationRead marks one notification as read.
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Approvals.MarkNotificationRead(r.Context(), id); err != nil {
		h.writeDomainError(w, "Failed to mark notification read", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SendMessage delivers a direct supervisor-to-staff message.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "bad_request", err)
		return
	}
	if req.RecipientID == "" || strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "recipient_id and message are required", "bad_request", nil)
		return
	}

	n, err := h.Approvals.SendMessageToStaff(r.Context(), req.SenderID, req.RecipientID, req.Message)
	if err != nil {
		h.writeDomainError(w, "Failed to send message", err)
		return
	}

	writeJSON(w, http.StatusCreated, toNotificationDTO(*n))
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all non-archived employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Employees.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", "storage_failure", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTOs(employees))
}

// ListArchivedEmployees returns archived employees.
func (h *Handler) ListArchivedEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Employees.ListArchivedEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list archived employees", "storage_failure", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTOs(employees))
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	emp, err := h.Employees.GetEmployee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", "storage_failure", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", "not_found", nil)
		return
	}

	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// CreateEmployee creates or updates an employee record.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "bad_request", err)
		return
	}
	if req.ID == "" || req.Email == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id, email, and name are required", "bad_request", nil)
		return
	}

	now := time.Now().UTC()
	emp := directory.Employee{
		ID:          req.ID,
		Email:       directory.NormalizeEmail(req.Email),
		Name:        req.Name,
		Position:    req.Position,
		CostCenters: req.CostCenters,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if existing, err := h.Employees.GetEmployee(r.Context(), req.ID); err == nil && existing != nil {
		emp.CreatedAt = existing.CreatedAt
		emp.Archived = existing.Archived
	}

	if err := h.Employees.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save employee", "storage_failure", err)
		return
	}

	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// ArchiveEmployee marks an employee archived.
func (h *Handler) ArchiveEmployee(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, true)
}

// RestoreEmployee clears the archived flag.
func (h *Handler) RestoreEmployee(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, false)
}

func (h *Handler) setArchived(w http.ResponseWriter, r *http.Request, archived bool) {
	id := chi.URLParam(r, "id")

	var err error
	if archived {
		err = h.Employees.ArchiveEmployee(r.Context(), id)
	} else {
		err = h.Employees.RestoreEmployee(r.Context(), id)
	}
	if err != nil {
		if errors.Is(err, approval.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Employee not found", "not_found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update employee", "storage_failure", err)
		return
	}

	emp, err := h.Employees.GetEmployee(r.Context(), id)
	if err != nil || emp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// =============================================================================
// DIRECTORY SYNC HANDLERS
// =============================================================================

// PreviewSync returns the change plan from comparing the local directory
// against the external roster. Read-only.
func (h *Handler) PreviewSync(w http.ResponseWriter, r *http.Request) {
	plan, err := h.Sync.PreviewSync(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to fetch external roster", "roster_unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// ApplySync applies the approved subset of a freshly recomputed change plan.
func (h *Handler) ApplySync(w http.ResponseWriter, r *http.Request) {
	var req ApplySyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "bad_request", err)
		return
	}

	result, err := h.Sync.ApplySync(r.Context(), directory.ApprovalSet{
		CreateEmails: req.ToCreate,
		UpdateEmails: req.ToUpdate,
		ArchiveIDs:   req.ToArchive,
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to apply directory sync", "roster_unavailable", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// =============================================================================
// HELPERS
// =============================================================================

func parseReportData(dto ReportDataDTO) (approval.ReportData, error) {
	data := approval.ReportData{
		MileageEntries: dto.MileageEntries,
		ReceiptEntries: dto.ReceiptEntries,
		TimeEntries:    dto.TimeEntries,
		MileageMiles:   decimal.Zero,
		ReceiptTotal:   decimal.Zero,
	}

	if dto.MileageMiles != "" {
		miles, err := decimal.NewFromString(dto.MileageMiles)
		if err != nil {
			return data, err
		}
		data.MileageMiles = miles
	}
	if dto.ReceiptTotal != "" {
		total, err := decimal.NewFromString(dto.ReceiptTotal)
		if err != nil {
			return data, err
		}
		data.ReceiptTotal = total
	}
	return data, nil
}

// writeDomainError maps the error taxonomy onto HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	var transition *approval.InvalidTransitionError
	switch {
	case errors.As(err, &transition):
		writeError(w, http.StatusConflict, transition.Reason, "invalid_transition", err)
	case errors.Is(err, approval.ErrInvalidTransition):
		writeError(w, http.StatusConflict, message, "invalid_transition", err)
	case errors.Is(err, approval.ErrMissingComment):
		writeError(w, http.StatusBadRequest, "A comment is required for this action", "missing_comment", err)
	case errors.Is(err, approval.ErrNotFound):
		writeError(w, http.StatusNotFound, message, "not_found", nil)
	default:
		h.Log.WithError(err).Error(message)
		writeError(w, http.StatusInternalServerError, message, "storage_failure", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message, code string, err error) {
	resp := ErrorResponse{Error: message, Code: code}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
