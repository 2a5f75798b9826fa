package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kisumuhealth/frontdesk/internal/booking"
	"github.com/kisumuhealth/frontdesk/internal/ledger"
	"github.com/kisumuhealth/frontdesk/pkg/logging"
)

// StaffAppointmentsHandler covers the desk's appointment management
// endpoints. It sits behind the staff JWT middleware, which stamps the
// acting username into the request context for the audit trail.
type StaffAppointmentsHandler struct {
	booking *booking.Service
	logger  *logging.Logger
}

func NewStaffAppointmentsHandler(svc *booking.Service, logger *logging.Logger) *StaffAppointmentsHandler {
	if svc == nil {
		panic("handlers: booking service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &StaffAppointmentsHandler{booking: svc, logger: logger}
}

type listResponse struct {
	Success      bool                  `json:"success"`
	Appointments []*ledger.Appointment `json:"appointments"`
	Count        int                   `json:"count"`
}

// List returns appointments matching the query filters.
// Route: GET /api/staff/appointments?department=&date=&status=&stage=&search=
func (h *StaffAppointmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ledger.Filter{
		Department: strings.TrimSpace(q.Get("department")),
		Status:     strings.TrimSpace(q.Get("status")),
		Search:     strings.TrimSpace(q.Get("search")),
	}
	if date := strings.TrimSpace(q.Get("date")); date != "" {
		filter.DateFrom = date
		filter.DateTo = date
	}
	if stage := strings.TrimSpace(q.Get("stage")); stage != "" {
		filter.Stages = []string{stage}
	}

	appts, err := h.booking.ListAppointments(r.Context(), filter)
	if err != nil {
		respondDomainError(w, h.logger, err, "list appointments")
		return
	}
	if appts == nil {
		appts = []*ledger.Appointment{}
	}
	writeJSON(w, http.StatusOK, listResponse{Success: true, Appointments: appts, Count: len(appts)})
}

type actionResponse struct {
	Success      bool                `json:"success"`
	Appointment  *ledger.Appointment `json:"appointment"`
	Notification string              `json:"notification,omitempty"`
}

// Confirm marks the appointment confirmed and notifies the patient.
// Route: POST /api/staff/appointments/{id}/confirm
func (h *StaffAppointmentsHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, ok := appointmentID(w, r)
	if !ok {
		return
	}
	result, err := h.booking.Confirm(r.Context(), id)
	if err != nil {
		respondDomainError(w, h.logger, err, "confirm appointment")
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{
		Success:      true,
		Appointment:  result.Appointment,
		Notification: result.Notification.Status,
	})
}

// Cancel cancels the appointment, stores the reason, and notifies the patient.
// Route: POST /api/staff/appointments/{id}/cancel
func (h *StaffAppointmentsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := appointmentID(w, r)
	if !ok {
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := decodeOptional(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	result, err := h.booking.Cancel(r.Context(), id, body.Reason)
	if err != nil {
		respondDomainError(w, h.logger, err, "cancel appointment")
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{
		Success:      true,
		Appointment:  result.Appointment,
		Notification: result.Notification.Status,
	})
}

// Reschedule moves the appointment to a new slot and notifies the patient.
// Route: POST /api/staff/appointments/{id}/reschedule
func (h *StaffAppointmentsHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	id, ok := appointmentID(w, r)
	if !ok {
		return
	}
	var body struct {
		Date string `json:"date"`
		Time string `json:"time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	result, err := h.booking.Reschedule(r.Context(), id, body.Date, body.Time)
	if err != nil {
		respondDomainError(w, h.logger, err, "reschedule appointment")
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{
		Success:      true,
		Appointment:  result.Appointment,
		Notification: result.Notification.Status,
	})
}

// Remind resends the appointment details to the patient.
// Route: POST /api/staff/appointments/{id}/remind
func (h *StaffAppointmentsHandler) Remind(w http.ResponseWriter, r *http.Request) {
	id, ok := appointmentID(w, r)
	if !ok {
		return
	}
	result, err := h.booking.Remind(r.Context(), id)
	if err != nil {
		respondDomainError(w, h.logger, err, "send reminder")
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{
		Success:      true,
		Appointment:  result.Appointment,
		Notification: result.Notification.Status,
	})
}

// Stage moves the appointment through the visit pipeline.
// Route: POST /api/staff/appointments/{id}/stage
func (h *StaffAppointmentsHandler) Stage(w http.ResponseWriter, r *http.Request) {
	id, ok := appointmentID(w, r)
	if !ok {
		return
	}
	var body struct {
		Stage string `json:"stage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	appt, err := h.booking.UpdateStage(r.Context(), id, body.Stage)
	if err != nil {
		respondDomainError(w, h.logger, err, "update stage")
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{Success: true, Appointment: appt})
}

// Notes stores free-form staff notes on the appointment.
// Route: POST /api/staff/appointments/{id}/notes
func (h *StaffAppointmentsHandler) Notes(w http.ResponseWriter, r *http.Request) {
	id, ok := appointmentID(w, r)
	if !ok {
		return
	}
	var body struct {
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	appt, err := h.booking.SaveNotes(r.Context(), id, body.Notes)
	if err != nil {
		respondDomainError(w, h.logger, err, "save notes")
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{Success: true, Appointment: appt})
}

// Insurance flips the insurance verification flag.
// Route: POST /api/staff/appointments/{id}/insurance
func (h *StaffAppointmentsHandler) Insurance(w http.ResponseWriter, r *http.Request) {
	id, ok := appointmentID(w, r)
	if !ok {
		return
	}
	var body struct {
		Verified bool `json:"verified"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	appt, err := h.booking.SetInsuranceVerified(r.Context(), id, body.Verified)
	if err != nil {
		respondDomainError(w, h.logger, err, "set insurance flag")
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{Success: true, Appointment: appt})
}

// Patch applies arbitrary field updates from a {field: value} body.
// Route: PATCH /api/staff/appointments/{id}
func (h *StaffAppointmentsHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, ok := appointmentID(w, r)
	if !ok {
		return
	}
	var fields map[string]string
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	appt, err := h.booking.UpdateFields(r.Context(), id, fields)
	if err != nil {
		respondDomainError(w, h.logger, err, "update fields")
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{Success: true, Appointment: appt})
}

// Edit rewrites the core booking fields from the staff edit form.
// Route: PUT /api/staff/appointments/{id}
func (h *StaffAppointmentsHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := appointmentID(w, r)
	if !ok {
		return
	}
	var req booking.EditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	appt, err := h.booking.Edit(r.Context(), id, req)
	if err != nil {
		respondDomainError(w, h.logger, err, "edit appointment")
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{Success: true, Appointment: appt})
}

// Delete removes the appointment and informs the patient.
// Route: DELETE /api/staff/appointments/{id}
func (h *StaffAppointmentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := appointmentID(w, r)
	if !ok {
		return
	}
	result, err := h.booking.Delete(r.Context(), id)
	if err != nil {
		respondDomainError(w, h.logger, err, "delete appointment")
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{
		Success:      true,
		Appointment:  result.Appointment,
		Notification: result.Notification.Status,
	})
}

func appointmentID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid appointment id")
		return 0, false
	}
	return id, true
}

// decodeOptional tolerates an empty body; endpoints like cancel accept one.
func decodeOptional(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
