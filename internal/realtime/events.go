// Package realtime fans appointment and queue changes out to dashboard
// subscribers.
package realtime

import (
	"time"

	"github.com/kisumuhealth/frontdesk/internal/ledger"
)

// EventType labels a dashboard event.
type EventType string

const (
	EventAppointmentCreated EventType = "appointment.created"
	EventAppointmentUpdated EventType = "appointment.updated"
	EventAppointmentDeleted EventType = "appointment.deleted"
	EventQueueServing       EventType = "queue.serving"
	EventQueueDone          EventType = "queue.done"
)

// Event is one dashboard update. Department scopes fan-out; an empty
// department reaches every subscriber.
type Event struct {
	Type        EventType           `json:"type"`
	Department  string              `json:"department,omitempty"`
	Appointment *ledger.Appointment `json:"appointment,omitempty"`
	At          time.Time           `json:"at"`
}

// Publisher is the narrow surface mutation paths depend on. A nil Publisher
// disables the feed.
type Publisher interface {
	Publish(event Event)
}

// NewEvent builds an event stamped with the current time.
func NewEvent(typ EventType, appt *ledger.Appointment) Event {
	evt := Event{Type: typ, At: time.Now().UTC()}
	if appt != nil {
		evt.Department = appt.Department
		evt.Appointment = appt
	}
	return evt
}
