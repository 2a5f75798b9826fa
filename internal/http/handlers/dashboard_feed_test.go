package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/net/websocket"

	"github.com/kisumuhealth/frontdesk/internal/http/middleware"
	"github.com/kisumuhealth/frontdesk/internal/ledger"
	"github.com/kisumuhealth/frontdesk/internal/realtime"
	"github.com/kisumuhealth/frontdesk/internal/staff"
)

// dialFeed serves the handler with the given claims pre-injected, the way
// the auth middleware would, and dials it.
func dialFeed(t *testing.T, handler *DashboardFeedHandler, claims *staff.Claims) (*websocket.Conn, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.ServeHTTP(w, r.WithContext(middleware.WithStaffClaims(r.Context(), claims)))
	}))
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/dashboard"
	conn, err := websocket.Dial(wsURL, "", server.URL)
	if err != nil {
		server.Close()
		t.Fatalf("dial: %v", err)
	}
	return conn, server
}

func waitForSubscribers(t *testing.T, hub *realtime.Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.SubscriberCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("subscribers = %d, want %d", hub.SubscriberCount(), want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestDashboardFeedStreamsEvents(t *testing.T) {
	hub := realtime.NewHub(nil)
	handler := NewDashboardFeedHandler(hub, nil)

	conn, server := dialFeed(t, handler, deskClaims("sid-ws", "OPD"))
	defer server.Close()
	defer conn.Close()

	waitForSubscribers(t, hub, 1)
	hub.Publish(realtime.NewEvent(realtime.EventAppointmentCreated, &ledger.Appointment{
		ID:          9,
		PatientName: "Achieng Otieno",
		Department:  "OPD",
	}))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event realtime.Event
	if err := websocket.JSON.Receive(conn, &event); err != nil {
		t.Fatalf("receive: %v", err)
	}
	if event.Type != realtime.EventAppointmentCreated {
		t.Errorf("type = %s", event.Type)
	}
	if event.Appointment == nil || event.Appointment.ID != 9 {
		t.Errorf("appointment = %+v", event.Appointment)
	}
}

func TestDashboardFeedFiltersByDepartment(t *testing.T) {
	hub := realtime.NewHub(nil)
	handler := NewDashboardFeedHandler(hub, nil)

	conn, server := dialFeed(t, handler, deskClaims("sid-ws", "OPD"))
	defer server.Close()
	defer conn.Close()

	waitForSubscribers(t, hub, 1)
	hub.Publish(realtime.NewEvent(realtime.EventAppointmentCreated, &ledger.Appointment{ID: 1, Department: "Dental"}))
	hub.Publish(realtime.NewEvent(realtime.EventAppointmentCreated, &ledger.Appointment{ID: 2, Department: "OPD"}))

	// The Dental event never reaches an OPD desk; the first frame is ours.
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event realtime.Event
	if err := websocket.JSON.Receive(conn, &event); err != nil {
		t.Fatalf("receive: %v", err)
	}
	if event.Appointment == nil || event.Appointment.ID != 2 {
		t.Errorf("appointment = %+v", event.Appointment)
	}
}

func TestDashboardFeedUnsubscribesOnDisconnect(t *testing.T) {
	hub := realtime.NewHub(nil)
	handler := NewDashboardFeedHandler(hub, nil)

	conn, server := dialFeed(t, handler, deskClaims("sid-ws", "OPD"))
	defer server.Close()

	waitForSubscribers(t, hub, 1)
	conn.Close()
	waitForSubscribers(t, hub, 0)
}

func TestDashboardFeedRequiresSession(t *testing.T) {
	handler := NewDashboardFeedHandler(realtime.NewHub(nil), nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws/dashboard", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}
