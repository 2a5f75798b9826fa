package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/kisumuhealth/frontdesk/internal/audit"
	"github.com/kisumuhealth/frontdesk/internal/staff"
	"github.com/kisumuhealth/frontdesk/pkg/logging"
)

// SessionHandler issues staff session tokens.
type SessionHandler struct {
	auth     *staff.Authenticator
	recorder audit.Recorder
	logger   *logging.Logger
}

// NewSessionHandler wires the login endpoint. Recorder may be nil.
func NewSessionHandler(auth *staff.Authenticator, recorder audit.Recorder, logger *logging.Logger) *SessionHandler {
	if auth == nil {
		panic("handlers: authenticator required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SessionHandler{auth: auth, recorder: recorder, logger: logger}
}

type loginResponse struct {
	Success bool `json:"success"`
	*staff.Session
}

// Login exchanges credentials for a session token.
// Route: POST /api/staff/login
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	session, err := h.auth.Login(r.Context(), body.Username, body.Password)
	if err != nil {
		respondDomainError(w, h.logger, err, "staff login")
		return
	}

	if h.recorder != nil {
		h.recorder.Record(r.Context(), audit.Event{
			Actor:  body.Username,
			Action: audit.ActionStaffLoggedIn,
			Detail: session.Department,
		})
	}
	writeJSON(w, http.StatusOK, loginResponse{Success: true, Session: session})
}
