// Package audit records who changed what on the appointment ledger.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/kisumuhealth/frontdesk/pkg/logging"
)

// Action labels an audited staff or queue operation.
type Action string

const (
	ActionConfirmed      Action = "appointment.confirmed"
	ActionCancelled      Action = "appointment.cancelled"
	ActionRescheduled    Action = "appointment.rescheduled"
	ActionEdited         Action = "appointment.edited"
	ActionDeleted        Action = "appointment.deleted"
	ActionStageChanged   Action = "appointment.stage_changed"
	ActionFieldUpdated   Action = "appointment.field_updated"
	ActionReminderSent   Action = "appointment.reminder_sent"
	ActionQueueServing   Action = "queue.serving"
	ActionQueueDone      Action = "queue.done"
	ActionQueueSkipped   Action = "queue.skipped"
	ActionQueueRecalled  Action = "queue.recalled"
	ActionStaffLoggedIn  Action = "staff.logged_in"
	ActionAccountEnsured Action = "staff.account_ensured"
)

// Event is one immutable trail entry.
type Event struct {
	ID            int64     `json:"id"`
	Actor         string    `json:"actor"`
	Action        Action    `json:"action"`
	AppointmentID int64     `json:"appointment_id,omitempty"`
	BookingRef    string    `json:"booking_ref,omitempty"`
	ChangedFields []string  `json:"changed_fields,omitempty"`
	Detail        string    `json:"detail,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Recorder is the narrow surface mutation paths depend on. A nil Recorder
// disables the trail.
type Recorder interface {
	Record(ctx context.Context, event Event)
}

// Service writes the trail to Postgres.
type Service struct {
	db     *sql.DB
	logger *logging.Logger
}

var _ Recorder = (*Service)(nil)

// NewService creates the audit service. The database handle is required.
func NewService(db *sql.DB, logger *logging.Logger) *Service {
	if db == nil {
		panic("audit: database handle required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{db: db, logger: logger}
}

// Record inserts the event. Failures are logged and swallowed so a broken
// trail never unwinds the staff operation that produced it.
func (s *Service) Record(ctx context.Context, event Event) {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO audit_events (actor, action, appointment_id, booking_ref, changed_fields, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		event.Actor,
		event.Action,
		nullInt64(event.AppointmentID),
		event.BookingRef,
		pq.Array(event.ChangedFields),
		event.Detail,
		event.CreatedAt,
	)
	if err != nil {
		s.logger.Error("audit: failed to record event",
			"error", err,
			"action", string(event.Action),
			"actor", event.Actor,
			"appointment_id", event.AppointmentID,
		)
	}
}

// Recent returns the newest trail entries, most recent first.
func (s *Service) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, actor, action, appointment_id, booking_ref, changed_fields, detail, created_at
		FROM audit_events
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("audit: failed to query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e      Event
			apptID sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &apptID, &e.BookingRef, pq.Array(&e.ChangedFields), &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("audit: failed to scan event: %w", err)
		}
		e.AppointmentID = apptID.Int64
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit: failed to read events: %w", err)
	}
	return events, nil
}

func nullInt64(v int64) interface{} {
	if v == 0 {
		return nil
	}
	return v
}
