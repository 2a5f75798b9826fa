package handlers

import (
	"net/http"
	"strings"

	"github.com/kisumuhealth/frontdesk/internal/http/middleware"
	"github.com/kisumuhealth/frontdesk/internal/ledger"
	"github.com/kisumuhealth/frontdesk/internal/queue"
	"github.com/kisumuhealth/frontdesk/internal/staff"
	"github.com/kisumuhealth/frontdesk/pkg/logging"
)

// QueueHandler drives the serving desk. The queue session is the staff
// token's jti, so two receptionists logged into the same account still get
// independent serving state.
type QueueHandler struct {
	selector *queue.Selector
	logger   *logging.Logger
}

func NewQueueHandler(selector *queue.Selector, logger *logging.Logger) *QueueHandler {
	if selector == nil {
		panic("handlers: queue selector required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &QueueHandler{selector: selector, logger: logger}
}

type servingResponse struct {
	Success bool                `json:"success"`
	Serving *ledger.Appointment `json:"serving"`
}

// Current returns who is being served, selecting the next waiting patient
// when nobody is pinned. Serving is null when the queue is empty.
// Route: GET /api/staff/queue/current?department=
func (h *QueueHandler) Current(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.StaffClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing staff session")
		return
	}
	department := queueDepartment(r, claims)

	appt, err := h.selector.Current(r.Context(), claims.SessionID, department)
	if err != nil {
		respondDomainError(w, h.logger, err, "queue current")
		return
	}
	writeJSON(w, http.StatusOK, servingResponse{Success: true, Serving: appt})
}

// Next marks the serving patient done. The desk polls current to pull the
// next one in.
// Route: POST /api/staff/queue/next
func (h *QueueHandler) Next(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.StaffClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing staff session")
		return
	}
	appt, err := h.selector.Next(r.Context(), claims.SessionID)
	if err != nil {
		respondDomainError(w, h.logger, err, "queue next")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success   bool                `json:"success"`
		Completed *ledger.Appointment `json:"completed"`
	}{true, appt})
}

// Skip sets the serving patient aside for one selection round.
// Route: POST /api/staff/queue/skip
func (h *QueueHandler) Skip(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.StaffClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing staff session")
		return
	}
	appt, err := h.selector.Skip(r.Context(), claims.SessionID)
	if err != nil {
		respondDomainError(w, h.logger, err, "queue skip")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool                `json:"success"`
		Skipped *ledger.Appointment `json:"skipped"`
	}{true, appt})
}

// Recall pages the serving patient back to the desk by SMS.
// Route: POST /api/staff/queue/recall
func (h *QueueHandler) Recall(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.StaffClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing staff session")
		return
	}
	appt, outcome, err := h.selector.Recall(r.Context(), claims.SessionID)
	if err != nil {
		respondDomainError(w, h.logger, err, "queue recall")
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{
		Success:      true,
		Appointment:  appt,
		Notification: outcome.Status,
	})
}

// queueDepartment resolves the desk's department: an explicit query value
// wins, then the account's department unless it is the ALL wildcard.
func queueDepartment(r *http.Request, claims *staff.Claims) string {
	if department := strings.TrimSpace(r.URL.Query().Get("department")); department != "" {
		return department
	}
	if !strings.EqualFold(claims.Department, staff.DepartmentAll) {
		return claims.Department
	}
	return ""
}
