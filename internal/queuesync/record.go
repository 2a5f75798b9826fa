package queuesync

import "time"

// Sync record statuses. A record exists only for tickets the live forward
// did not deliver; reconciled is written by the out-of-band reconciliation
// job, never by this service.
const (
	StatusPending    = "pending"
	StatusFailed     = "failed"
	StatusReconciled = "reconciled"
)

// Record is one undelivered ticket awaiting reconciliation with the queue
// display service.
type Record struct {
	ID            int64     `json:"id"`
	AppointmentID int64     `json:"appointment_id"`
	PatientName   string    `json:"patient_name"`
	Ticket        string    `json:"ticket"`
	Department    string    `json:"department"`
	BookingRef    string    `json:"booking_ref"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}
