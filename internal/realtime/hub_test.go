package realtime

import (
	"testing"

	"github.com/kisumuhealth/frontdesk/internal/ledger"
)

func TestPublishReachesMatchingDepartment(t *testing.T) {
	hub := NewHub(nil)
	opd := hub.Subscribe("OPD")
	dental := hub.Subscribe("Dental")
	defer hub.Unsubscribe(opd)
	defer hub.Unsubscribe(dental)

	hub.Publish(NewEvent(EventAppointmentCreated, &ledger.Appointment{ID: 1, Department: "OPD"}))

	select {
	case evt := <-opd.Events():
		if evt.Type != EventAppointmentCreated || evt.Appointment.ID != 1 {
			t.Errorf("unexpected event %+v", evt)
		}
	default:
		t.Fatal("OPD subscriber got nothing")
	}
	select {
	case evt := <-dental.Events():
		t.Fatalf("Dental subscriber got %+v", evt)
	default:
	}
}

func TestPublishAllSeesEverything(t *testing.T) {
	hub := NewHub(nil)
	all := hub.Subscribe(DepartmentAll)
	defer hub.Unsubscribe(all)

	hub.Publish(NewEvent(EventQueueServing, &ledger.Appointment{ID: 2, Department: "Eye"}))
	hub.Publish(Event{Type: EventAppointmentDeleted})

	if got := len(all.Events()); got != 2 {
		t.Errorf("buffered events = %d, want 2", got)
	}
}

func TestPublishEmptyDepartmentBroadcasts(t *testing.T) {
	hub := NewHub(nil)
	opd := hub.Subscribe("OPD")
	defer hub.Unsubscribe(opd)

	hub.Publish(Event{Type: EventAppointmentDeleted})

	select {
	case evt := <-opd.Events():
		if evt.Type != EventAppointmentDeleted {
			t.Errorf("event type = %s", evt.Type)
		}
	default:
		t.Fatal("broadcast did not reach department subscriber")
	}
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(nil)
	sub := hub.Subscribe("OPD")
	defer hub.Unsubscribe(sub)

	for i := 0; i < subscriberBuffer+5; i++ {
		hub.Publish(NewEvent(EventAppointmentUpdated, &ledger.Appointment{ID: int64(i), Department: "OPD"}))
	}

	if got := len(sub.Events()); got != subscriberBuffer {
		t.Errorf("buffered events = %d, want %d", got, subscriberBuffer)
	}
}

func TestUnsubscribeClosesStream(t *testing.T) {
	hub := NewHub(nil)
	sub := hub.Subscribe("OPD")

	hub.Unsubscribe(sub)
	hub.Unsubscribe(sub) // second call is a no-op

	if _, open := <-sub.Events(); open {
		t.Error("stream still open after unsubscribe")
	}
	if hub.SubscriberCount() != 0 {
		t.Errorf("subscriber count = %d, want 0", hub.SubscriberCount())
	}

	// Publishing after unsubscribe must not panic on the closed channel.
	hub.Publish(NewEvent(EventQueueDone, &ledger.Appointment{Department: "OPD"}))
}

func TestSubscribeDefaultsToAll(t *testing.T) {
	hub := NewHub(nil)
	sub := hub.Subscribe("  ")
	defer hub.Unsubscribe(sub)

	if sub.Department() != DepartmentAll {
		t.Errorf("department = %q, want %q", sub.Department(), DepartmentAll)
	}
}
