// Package booking is the front desk façade: it strings the ledger, patient
// notifications, the queue board and the dashboard feed into the flows the
// HTTP surface exposes.
package booking

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kisumuhealth/frontdesk/internal/audit"
	"github.com/kisumuhealth/frontdesk/internal/ledger"
	"github.com/kisumuhealth/frontdesk/internal/notify"
	"github.com/kisumuhealth/frontdesk/internal/observability/metrics"
	"github.com/kisumuhealth/frontdesk/internal/queuesync"
	"github.com/kisumuhealth/frontdesk/internal/realtime"
	"github.com/kisumuhealth/frontdesk/pkg/logging"
)

var bookingTracer = otel.Tracer("frontdesk.internal.booking")

// QueueForwarder pushes fresh tickets to the waiting room display.
type QueueForwarder interface {
	Forward(ctx context.Context, t queuesync.Ticket) queuesync.Result
}

// Deps wires the façade. Metrics, Audit and Publisher may be nil.
type Deps struct {
	Ledger    ledger.Repository
	Notifier  *notify.Dispatcher
	QueueSync QueueForwarder
	Metrics   *metrics.BookingMetrics
	Audit     audit.Recorder
	Publisher realtime.Publisher
	ClinicID  int64
	Logger    *logging.Logger
}

// Service drives the booking and staff flows.
type Service struct {
	ledger    ledger.Repository
	notifier  *notify.Dispatcher
	queue     QueueForwarder
	metrics   *metrics.BookingMetrics
	audit     audit.Recorder
	publisher realtime.Publisher
	clinicID  int64
	logger    *logging.Logger
}

// NewService constructs the façade.
func NewService(deps Deps) *Service {
	if deps.Ledger == nil {
		panic("booking: ledger repository required")
	}
	if deps.Notifier == nil {
		panic("booking: notifier required")
	}
	if deps.QueueSync == nil {
		panic("booking: queue forwarder required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		ledger:    deps.Ledger,
		notifier:  deps.Notifier,
		queue:     deps.QueueSync,
		metrics:   deps.Metrics,
		audit:     deps.Audit,
		publisher: deps.Publisher,
		clinicID:  deps.ClinicID,
		logger:    logger,
	}
}

// BookRequest is the public booking form.
type BookRequest struct {
	PatientName string `json:"patient_name"`
	Phone       string `json:"phone"`
	Department  string `json:"department"`
	Doctor      string `json:"doctor,omitempty"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

// BookResult reports the created appointment plus how the best-effort side
// steps went.
type BookResult struct {
	Appointment  *ledger.Appointment `json:"appointment"`
	Notification notify.Outcome      `json:"notification"`
	QueueSync    queuesync.Result    `json:"queue_sync"`
	Warnings     []string            `json:"warnings,omitempty"`
}

// Book runs the full booking flow: create the ledger record, message the
// patient, mark the notification, forward the ticket to the queue board.
// Only the create step can fail the booking; everything after degrades into
// warnings.
func (s *Service) Book(ctx context.Context, req BookRequest) (*BookResult, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.book")
	defer span.End()
	start := time.Now()

	appt, err := s.ledger.Create(ctx, &ledger.NewAppointment{
		PatientName: req.PatientName,
		Phone:       req.Phone,
		Department:  req.Department,
		Doctor:      req.Doctor,
		Date:        req.Date,
		Time:        req.Time,
		ClinicID:    s.clinicID,
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("frontdesk.booking_ref", appt.BookingRef),
		attribute.String("frontdesk.department", appt.Department),
	)

	result := &BookResult{Appointment: appt}

	outcome := s.notifier.Send(ctx, appt.Phone, notify.BookingReceived(
		appt.PatientName, appt.Date, appt.Time, appt.BookingRef, appt.TicketNumber, appt.TelemedicineLink,
	))
	result.Notification = outcome
	s.metrics.ObserveNotification("booking_received", outcome.Status)
	if !outcome.Delivered() {
		result.Warnings = append(result.Warnings, "patient notification failed: "+outcome.Detail)
	} else if err := s.ledger.SetNotificationSent(ctx, appt.ID, true); err != nil {
		s.logger.Warn("booking: failed to record notification flag", "error", err, "appointment_id", appt.ID)
		result.Warnings = append(result.Warnings, "notification flag not recorded")
	} else {
		appt.NotificationSent = true
	}

	syncResult := s.queue.Forward(ctx, queuesync.Ticket{
		AppointmentID: appt.ID,
		PatientName:   appt.PatientName,
		Ticket:        appt.TicketNumber,
		Department:    appt.Department,
		BookingRef:    appt.BookingRef,
	})
	result.QueueSync = syncResult
	s.metrics.ObserveQueueSync(syncMetricLabel(syncResult))
	if !syncResult.Synced {
		result.Warnings = append(result.Warnings, "queue sync failed: "+syncResult.Detail)
	}

	s.metrics.ObserveBooking(appt.Department, time.Since(start).Seconds())
	s.publish(realtime.NewEvent(realtime.EventAppointmentCreated, appt))
	s.logger.Info("booking: appointment created",
		"appointment_id", appt.ID,
		"booking_ref", appt.BookingRef,
		"ticket", appt.TicketNumber,
		"department", appt.Department,
		"notification", outcome.Status,
		"queue_synced", syncResult.Synced,
	)
	return result, nil
}

// StatusKind classifies a public status lookup.
type StatusKind string

const (
	StatusKindPending   StatusKind = "pending"
	StatusKindConfirmed StatusKind = "confirmed"
	StatusKindCancelled StatusKind = "cancelled"
	StatusKindNotFound  StatusKind = "not_found"
	StatusKindAmbiguous StatusKind = "ambiguous"
)

// StatusResult is the public status answer. Matches carries every hit so an
// ambiguous phone lookup can be narrowed by the caller.
type StatusResult struct {
	Kind        StatusKind            `json:"kind"`
	Appointment *ledger.Appointment   `json:"appointment,omitempty"`
	Matches     []*ledger.Appointment `json:"matches,omitempty"`
}

// CheckStatus answers "where is my booking" for a reference or phone query.
func (s *Service) CheckStatus(ctx context.Context, query string) (*StatusResult, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.check_status")
	defer span.End()

	matches, err := s.ledger.FindByRefOrPhone(ctx, query)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	result := &StatusResult{Matches: matches}
	switch len(matches) {
	case 0:
		result.Kind = StatusKindNotFound
		result.Matches = nil
	case 1:
		result.Appointment = matches[0]
		result.Kind = statusKindOf(matches[0].Status)
	default:
		result.Kind = StatusKindAmbiguous
	}
	s.metrics.ObserveStatusCheck(string(result.Kind))
	span.SetAttributes(attribute.String("frontdesk.status_kind", string(result.Kind)))
	return result, nil
}

// statusKindOf maps a stored status onto the public vocabulary. Anything
// unrecognized reads as still pending.
func statusKindOf(status string) StatusKind {
	switch status {
	case ledger.StatusConfirmed:
		return StatusKindConfirmed
	case ledger.StatusCancelled:
		return StatusKindCancelled
	default:
		return StatusKindPending
	}
}

// ListAppointments is the staff listing passthrough. Ordering follows the
// queue: date, then time, then creation.
func (s *Service) ListAppointments(ctx context.Context, f ledger.Filter) ([]*ledger.Appointment, error) {
	return s.ledger.List(ctx, f)
}

func syncMetricLabel(r queuesync.Result) string {
	if r.Synced {
		return "synced"
	}
	if r.RecordStatus != "" {
		return r.RecordStatus
	}
	return "failed"
}

func (s *Service) publish(event realtime.Event) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(event)
}

func (s *Service) record(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if event.Actor == "" {
		event.Actor = actorFrom(ctx)
	}
	s.audit.Record(ctx, event)
}

func actorFrom(ctx context.Context) string {
	if actor := audit.ActorFromContext(ctx); actor != "" {
		return actor
	}
	return "staff"
}
