package handlers

import (
	"net/http"
	"strconv"

	"github.com/kisumuhealth/frontdesk/internal/audit"
	"github.com/kisumuhealth/frontdesk/pkg/logging"
)

// AuditLogHandler exposes the recent audit trail to staff.
type AuditLogHandler struct {
	service *audit.Service
	logger  *logging.Logger
}

func NewAuditLogHandler(service *audit.Service, logger *logging.Logger) *AuditLogHandler {
	if service == nil {
		panic("handlers: audit service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AuditLogHandler{service: service, logger: logger}
}

// Recent lists the latest audit events, newest first.
// Route: GET /api/staff/audit?limit=
func (h *AuditLogHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	events, err := h.service.Recent(r.Context(), limit)
	if err != nil {
		respondDomainError(w, h.logger, err, "list audit events")
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool          `json:"success"`
		Events  []audit.Event `json:"events"`
		Count   int           `json:"count"`
	}{true, events, len(events)})
}
