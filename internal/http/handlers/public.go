package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/kisumuhealth/frontdesk/internal/booking"
	"github.com/kisumuhealth/frontdesk/internal/ledger"
	"github.com/kisumuhealth/frontdesk/pkg/logging"
)

// PublicHandler serves the patient-facing endpoints. No authentication; the
// router rate-limits these.
type PublicHandler struct {
	booking *booking.Service
	logger  *logging.Logger
}

func NewPublicHandler(svc *booking.Service, logger *logging.Logger) *PublicHandler {
	if svc == nil {
		panic("handlers: booking service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &PublicHandler{booking: svc, logger: logger}
}

type bookResponse struct {
	Success          bool     `json:"success"`
	AppointmentID    int64    `json:"appointment_id"`
	BookingRef       string   `json:"booking_ref"`
	TicketNumber     string   `json:"ticket_number"`
	TelemedicineLink string   `json:"telemedicine_link"`
	Notification     string   `json:"notification"`
	QueueSynced      bool     `json:"queue_synced"`
	Warnings         []string `json:"warnings,omitempty"`
}

// Book handles patient self-service booking.
// Route: POST /api/book
func (h *PublicHandler) Book(w http.ResponseWriter, r *http.Request) {
	var req booking.BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := h.booking.Book(r.Context(), req)
	if err != nil {
		var verr *ledger.ValidationError
		if errors.As(err, &verr) && verr.Reason == "required" {
			// The booking form's historical copy; the kiosk frontend
			// matches on this exact string.
			writeError(w, http.StatusBadRequest, "Missing required fields")
			return
		}
		respondDomainError(w, h.logger, err, "book appointment")
		return
	}

	writeJSON(w, http.StatusOK, bookResponse{
		Success:          true,
		AppointmentID:    result.Appointment.ID,
		BookingRef:       result.Appointment.BookingRef,
		TicketNumber:     result.Appointment.TicketNumber,
		TelemedicineLink: result.Appointment.TelemedicineLink,
		Notification:     result.Notification.Status,
		QueueSynced:      result.QueueSync.Synced,
		Warnings:         result.Warnings,
	})
}

type statusResponse struct {
	Success bool `json:"success"`
	*booking.StatusResult
}

// Status answers "where is my booking" for a reference or phone.
// Route: GET /api/status?q=
func (h *PublicHandler) Status(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	result, err := h.booking.CheckStatus(r.Context(), query)
	if err != nil {
		respondDomainError(w, h.logger, err, "check status")
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Success: true, StatusResult: result})
}
