package notify

import "fmt"

// Message templates sent to patients. The wording is load-bearing: the
// hospital's SMS copy is registered with the messaging provider, so changes
// here need sign-off from the front desk.

// BookingReceived is sent right after a booking is stored.
func BookingReceived(name, date, time, ref, ticket, link string) string {
	return fmt.Sprintf(
		"Hello %s, your appointment for %s at %s is received.\nReference: %s\nTicket: %s\nTelemedicine: %s",
		name, date, time, ref, ticket, link,
	)
}

// Confirmed is sent when staff confirm the appointment.
func Confirmed(ref, date, time string) string {
	return fmt.Sprintf("Your appointment (%s) is confirmed for %s %s", ref, date, time)
}

// Cancelled is sent when staff cancel. An empty reason renders as N/A.
func Cancelled(ref, reason string) string {
	if reason == "" {
		reason = "N/A"
	}
	return fmt.Sprintf("Your appointment (%s) has been cancelled. Reason: %s", ref, reason)
}

// Rescheduled is sent when staff move the appointment.
func Rescheduled(ref, date, time string) string {
	return fmt.Sprintf("Your appointment (%s) has been rescheduled to %s %s", ref, date, time)
}

// Reminder nudges the patient ahead of their slot.
func Reminder(name, date, time, ref, ticket string) string {
	return fmt.Sprintf("Reminder: Hello %s, your appointment is on %s %s. Ref: %s, Ticket: %s", name, date, time, ref, ticket)
}

// Recall calls the patient in from the waiting area.
func Recall(name, ref string) string {
	return fmt.Sprintf("Hello %s, please proceed to the clinic. Ref: %s", name, ref)
}

// Deleted informs the patient their record was removed.
func Deleted(ref string) string {
	return fmt.Sprintf("Your appointment (%s) was deleted by staff.", ref)
}
