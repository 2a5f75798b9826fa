package queue

import (
	"context"
	"errors"
	"strings"

	"github.com/kisumuhealth/frontdesk/internal/audit"
	"github.com/kisumuhealth/frontdesk/internal/ledger"
	"github.com/kisumuhealth/frontdesk/internal/notify"
	"github.com/kisumuhealth/frontdesk/internal/realtime"
	"github.com/kisumuhealth/frontdesk/pkg/logging"
)

// Selector decides who is served next at a department desk. All state lives
// in the SessionStore, keyed by the staff session, so concurrent desks never
// trample each other.
type Selector struct {
	sessions     SessionStore
	appointments ledger.Repository
	notifier     *notify.Dispatcher
	publisher    realtime.Publisher
	recorder     audit.Recorder
	logger       *logging.Logger
}

// NewSelector wires the selector. Publisher and recorder may be nil.
func NewSelector(sessions SessionStore, appointments ledger.Repository, notifier *notify.Dispatcher, publisher realtime.Publisher, recorder audit.Recorder, logger *logging.Logger) *Selector {
	if sessions == nil {
		panic("queue: session store required")
	}
	if appointments == nil {
		panic("queue: appointment repository required")
	}
	if notifier == nil {
		panic("queue: notifier required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Selector{
		sessions:     sessions,
		appointments: appointments,
		notifier:     notifier,
		publisher:    publisher,
		recorder:     recorder,
		logger:       logger,
	}
}

// Current returns the appointment being served, selecting the next waiting
// one when nothing valid is pinned. An empty queue returns (nil, nil).
func (s *Selector) Current(ctx context.Context, sessionID, department string) (*ledger.Appointment, error) {
	id, err := s.sessions.Serving(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if id != 0 {
		appt, err := s.appointments.GetByID(ctx, id)
		switch {
		case errors.Is(err, ledger.ErrNotFound):
			// fall through to selection below
		case err != nil:
			return nil, err
		case appt.Waiting() && appt.Department == department:
			return appt, nil
		}
		// Pin is stale: the appointment finished, was cancelled, deleted,
		// or belongs to another department.
		if err := s.sessions.ClearServing(ctx, sessionID); err != nil {
			return nil, err
		}
	}
	return s.selectNext(ctx, sessionID, department)
}

func (s *Selector) selectNext(ctx context.Context, sessionID, department string) (*ledger.Appointment, error) {
	waiting, err := s.appointments.List(ctx, ledger.Filter{
		Department: department,
		Stages:     []string{ledger.StagePending, ledger.StageConfirmed},
	})
	if err != nil {
		return nil, err
	}
	if len(waiting) == 0 {
		return nil, nil
	}

	skipped, err := s.sessions.Skipped(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	// A just-skipped patient goes to the back of consideration unless they
	// are the only one left.
	pick := waiting[0]
	if skipped != 0 {
		for _, appt := range waiting {
			if appt.ID != skipped {
				pick = appt
				break
			}
		}
	}

	if err := s.sessions.SetServing(ctx, sessionID, pick.ID); err != nil {
		return nil, err
	}
	if err := s.sessions.ClearSkipped(ctx, sessionID); err != nil {
		return nil, err
	}
	s.publish(realtime.NewEvent(realtime.EventQueueServing, pick))
	s.record(ctx, audit.ActionQueueServing, pick, pick.TicketNumber)
	s.logger.Info("queue: now serving",
		"session_id", sessionID,
		"appointment_id", pick.ID,
		"ticket", pick.TicketNumber,
		"department", department,
	)
	return pick, nil
}

// Next marks the serving appointment done and clears the pin. The following
// patient is selected on the next Current call.
func (s *Selector) Next(ctx context.Context, sessionID string) (*ledger.Appointment, error) {
	id, err := s.requireServing(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	appt, err := s.appointments.UpdateFields(ctx, id, ledger.SetStage(ledger.StageDone))
	if errors.Is(err, ledger.ErrNotFound) {
		if clearErr := s.sessions.ClearServing(ctx, sessionID); clearErr != nil {
			return nil, clearErr
		}
		return nil, ErrNothingServing
	}
	if err != nil {
		return nil, err
	}
	if err := s.sessions.ClearServing(ctx, sessionID); err != nil {
		return nil, err
	}
	s.publish(realtime.NewEvent(realtime.EventQueueDone, appt))
	s.record(ctx, audit.ActionQueueDone, appt, appt.TicketNumber)
	s.logger.Info("queue: patient done",
		"session_id", sessionID,
		"appointment_id", appt.ID,
		"ticket", appt.TicketNumber,
	)
	return appt, nil
}

// Skip sets the serving appointment aside without touching its stage. It is
// passed over on the next selection unless nobody else is waiting.
func (s *Selector) Skip(ctx context.Context, sessionID string) (*ledger.Appointment, error) {
	id, err := s.requireServing(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	appt, err := s.appointments.GetByID(ctx, id)
	if errors.Is(err, ledger.ErrNotFound) {
		if clearErr := s.sessions.ClearServing(ctx, sessionID); clearErr != nil {
			return nil, clearErr
		}
		return nil, ErrNothingServing
	}
	if err != nil {
		return nil, err
	}
	if err := s.sessions.ClearServing(ctx, sessionID); err != nil {
		return nil, err
	}
	if err := s.sessions.SetSkipped(ctx, sessionID, appt.ID); err != nil {
		return nil, err
	}
	s.record(ctx, audit.ActionQueueSkipped, appt, appt.TicketNumber)
	s.logger.Info("queue: patient skipped",
		"session_id", sessionID,
		"appointment_id", appt.ID,
		"ticket", appt.TicketNumber,
	)
	return appt, nil
}

// Recall pages the serving patient back to the desk. Delivery is
// best-effort; only a missing phone number is an error.
func (s *Selector) Recall(ctx context.Context, sessionID string) (*ledger.Appointment, notify.Outcome, error) {
	id, err := s.requireServing(ctx, sessionID)
	if err != nil {
		return nil, notify.Outcome{}, err
	}
	appt, err := s.appointments.GetByID(ctx, id)
	if errors.Is(err, ledger.ErrNotFound) {
		if clearErr := s.sessions.ClearServing(ctx, sessionID); clearErr != nil {
			return nil, notify.Outcome{}, clearErr
		}
		return nil, notify.Outcome{}, ErrNothingServing
	}
	if err != nil {
		return nil, notify.Outcome{}, err
	}
	if strings.TrimSpace(appt.Phone) == "" {
		return nil, notify.Outcome{}, ErrNoPhoneOnRecord
	}
	outcome := s.notifier.Send(ctx, appt.Phone, notify.Recall(appt.PatientName, appt.BookingRef))
	s.record(ctx, audit.ActionQueueRecalled, appt, outcome.Status)
	s.logger.Info("queue: patient recalled",
		"session_id", sessionID,
		"appointment_id", appt.ID,
		"outcome", outcome.Status,
	)
	return appt, outcome, nil
}

func (s *Selector) requireServing(ctx context.Context, sessionID string) (int64, error) {
	id, err := s.sessions.Serving(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, ErrNothingServing
	}
	return id, nil
}

func (s *Selector) publish(event realtime.Event) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(event)
}

func (s *Selector) record(ctx context.Context, action audit.Action, appt *ledger.Appointment, detail string) {
	if s.recorder == nil {
		return
	}
	actor := audit.ActorFromContext(ctx)
	if actor == "" {
		actor = "staff"
	}
	s.recorder.Record(ctx, audit.Event{
		Actor:         actor,
		Action:        action,
		AppointmentID: appt.ID,
		BookingRef:    appt.BookingRef,
		Detail:        detail,
	})
}
