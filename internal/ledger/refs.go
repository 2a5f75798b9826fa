package ledger

import (
	"fmt"
	"strings"
	"time"
)

const (
	refDateLayout = "20060102"

	defaultTelemedBase = "https://telemed.example.com"
)

// BookingRef derives the human-shareable reference for an appointment id
// created on the given day. Assigned exactly once, right after id
// assignment, and never changes.
func BookingRef(createdAt time.Time, id int64) string {
	return fmt.Sprintf("APPT-%s-%03d", createdAt.UTC().Format(refDateLayout), id)
}

// TicketNumber derives the queue-display ticket for an appointment.
func TicketNumber(createdAt time.Time, id int64) string {
	return fmt.Sprintf("TKT-%s-%04d", createdAt.UTC().Format(refDateLayout), id)
}

// TelemedicineLink builds the deterministic consultation URL for a booking
// reference. An empty base falls back to the stock deployment base.
func TelemedicineLink(base, ref string) string {
	if base == "" {
		base = defaultTelemedBase
	}
	return strings.TrimRight(base, "/") + "/" + ref
}
