package handlers

import (
	"net/http"

	"golang.org/x/net/websocket"

	"github.com/kisumuhealth/frontdesk/internal/http/middleware"
	"github.com/kisumuhealth/frontdesk/internal/realtime"
	"github.com/kisumuhealth/frontdesk/internal/staff"
	"github.com/kisumuhealth/frontdesk/pkg/logging"
)

// DashboardFeedHandler streams hub events to staff dashboards over a
// websocket. Each connection sees the events for its account's department;
// ALL accounts see everything.
type DashboardFeedHandler struct {
	hub    *realtime.Hub
	logger *logging.Logger
}

func NewDashboardFeedHandler(hub *realtime.Hub, logger *logging.Logger) *DashboardFeedHandler {
	if hub == nil {
		panic("handlers: realtime hub required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &DashboardFeedHandler{hub: hub, logger: logger}
}

// ServeHTTP upgrades the connection and relays events until the client
// disconnects.
// Route: GET /ws/dashboard
func (h *DashboardFeedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.StaffClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing staff session")
		return
	}
	websocket.Handler(func(conn *websocket.Conn) {
		h.stream(conn, claims)
	}).ServeHTTP(w, r)
}

func (h *DashboardFeedHandler) stream(conn *websocket.Conn, claims *staff.Claims) {
	defer conn.Close()

	sub := h.hub.Subscribe(claims.Department)
	defer h.hub.Unsubscribe(sub)

	h.logger.Info("dashboard feed: client connected",
		"username", claims.Username,
		"department", sub.Department(),
	)

	// Reads only notice the disconnect; clients send nothing meaningful.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		var discard string
		for {
			if err := websocket.Message.Receive(conn, &discard); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event := <-sub.Events():
			if err := websocket.JSON.Send(conn, event); err != nil {
				h.logger.Warn("dashboard feed: send failed", "error", err, "username", claims.Username)
				return
			}
		case <-closed:
			return
		}
	}
}
