package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kisumuhealth/frontdesk/internal/ledger"
	"github.com/kisumuhealth/frontdesk/internal/queue"
	"github.com/kisumuhealth/frontdesk/internal/staff"
	"github.com/kisumuhealth/frontdesk/pkg/logging"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorEnvelope{Error: message})
}

// respondDomainError maps domain errors onto HTTP statuses. Anything
// unrecognized becomes an opaque 500 so internals never leak to callers.
func respondDomainError(w http.ResponseWriter, logger *logging.Logger, err error, action string) {
	var verr *ledger.ValidationError
	var ferr *ledger.InvalidFieldError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.As(err, &ferr):
		writeError(w, http.StatusBadRequest, ferr.Error())
	case errors.Is(err, ledger.ErrNoUpdates):
		writeError(w, http.StatusBadRequest, "no updates given")
	case errors.Is(err, ledger.ErrNotFound):
		writeError(w, http.StatusNotFound, "appointment not found")
	case errors.Is(err, staff.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid username or password")
	case errors.Is(err, staff.ErrAuthDisabled):
		writeError(w, http.StatusUnauthorized, "staff auth is disabled")
	case errors.Is(err, queue.ErrNothingServing):
		writeError(w, http.StatusConflict, "no patient is being served")
	case errors.Is(err, queue.ErrNoPhoneOnRecord):
		writeError(w, http.StatusConflict, "no phone number on record")
	default:
		logger.Error(action+" failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
