package booking

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kisumuhealth/frontdesk/internal/audit"
	"github.com/kisumuhealth/frontdesk/internal/ledger"
	"github.com/kisumuhealth/frontdesk/internal/notify"
	"github.com/kisumuhealth/frontdesk/internal/realtime"
)

// ActionResult is the outcome of a staff action that messages the patient.
type ActionResult struct {
	Appointment  *ledger.Appointment `json:"appointment"`
	Notification notify.Outcome      `json:"notification"`
}

// Confirm marks the appointment confirmed and tells the patient.
func (s *Service) Confirm(ctx context.Context, id int64) (*ActionResult, error) {
	appt, err := s.ledger.UpdateFields(ctx, id,
		ledger.SetStatus(ledger.StatusConfirmed),
		ledger.SetStage(ledger.StageConfirmed),
	)
	if err != nil {
		return nil, err
	}
	outcome := s.notifier.Send(ctx, appt.Phone, notify.Confirmed(appt.BookingRef, appt.Date, appt.Time))
	s.metrics.ObserveNotification("confirmed", outcome.Status)
	s.record(ctx, audit.Event{
		Action:        audit.ActionConfirmed,
		AppointmentID: appt.ID,
		BookingRef:    appt.BookingRef,
		ChangedFields: []string{"status", "stage"},
	})
	s.publish(realtime.NewEvent(realtime.EventAppointmentUpdated, appt))
	s.logger.Info("booking: appointment confirmed", "appointment_id", appt.ID, "notification", outcome.Status)
	return &ActionResult{Appointment: appt, Notification: outcome}, nil
}

// Cancel marks the appointment cancelled. An empty reason is stored as
// "No reason provided"; the patient message reads "N/A" instead.
func (s *Service) Cancel(ctx context.Context, id int64, reason string) (*ActionResult, error) {
	reason = strings.TrimSpace(reason)
	stored := reason
	if stored == "" {
		stored = "No reason provided"
	}
	appt, err := s.ledger.UpdateFields(ctx, id,
		ledger.SetStatus(ledger.StatusCancelled),
		ledger.SetStage(ledger.StageCancelled),
		ledger.SetCancelReason(stored),
	)
	if err != nil {
		return nil, err
	}
	outcome := s.notifier.Send(ctx, appt.Phone, notify.Cancelled(appt.BookingRef, reason))
	s.metrics.ObserveNotification("cancelled", outcome.Status)
	s.record(ctx, audit.Event{
		Action:        audit.ActionCancelled,
		AppointmentID: appt.ID,
		BookingRef:    appt.BookingRef,
		ChangedFields: []string{"status", "stage", "cancel_reason"},
		Detail:        stored,
	})
	s.publish(realtime.NewEvent(realtime.EventAppointmentUpdated, appt))
	s.logger.Info("booking: appointment cancelled", "appointment_id", appt.ID, "reason", stored)
	return &ActionResult{Appointment: appt, Notification: outcome}, nil
}

// Reschedule moves the appointment and tells the patient the new slot.
func (s *Service) Reschedule(ctx context.Context, id int64, date, timeOfDay string) (*ActionResult, error) {
	normDate, err := ledger.NormalizeDate(date)
	if err != nil {
		return nil, err
	}
	normTime, err := ledger.NormalizeTime(timeOfDay)
	if err != nil {
		return nil, err
	}
	appt, err := s.ledger.UpdateFields(ctx, id,
		ledger.SetDate(normDate),
		ledger.SetTime(normTime),
	)
	if err != nil {
		return nil, err
	}
	outcome := s.notifier.Send(ctx, appt.Phone, notify.Rescheduled(appt.BookingRef, appt.Date, appt.Time))
	s.metrics.ObserveNotification("rescheduled", outcome.Status)
	s.record(ctx, audit.Event{
		Action:        audit.ActionRescheduled,
		AppointmentID: appt.ID,
		BookingRef:    appt.BookingRef,
		ChangedFields: []string{"date", "time"},
		Detail:        fmt.Sprintf("moved to %s %s", normDate, normTime),
	})
	s.publish(realtime.NewEvent(realtime.EventAppointmentUpdated, appt))
	s.logger.Info("booking: appointment rescheduled", "appointment_id", appt.ID, "date", normDate, "time", normTime)
	return &ActionResult{Appointment: appt, Notification: outcome}, nil
}

// UpdateStage moves the appointment through the visit pipeline. No patient
// message is sent.
func (s *Service) UpdateStage(ctx context.Context, id int64, stage string) (*ledger.Appointment, error) {
	if !ledger.ValidStage(stage) {
		return nil, &ledger.ValidationError{Field: "stage", Reason: fmt.Sprintf("unknown stage %q", stage)}
	}
	current, err := s.ledger.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ledger.AllowedStageMove(current.Stage, stage) {
		return nil, &ledger.ValidationError{
			Field:  "stage",
			Reason: fmt.Sprintf("cannot move from %s to %s", current.Stage, stage),
		}
	}
	appt, err := s.ledger.UpdateFields(ctx, id, ledger.SetStage(stage))
	if err != nil {
		return nil, err
	}
	s.record(ctx, audit.Event{
		Action:        audit.ActionStageChanged,
		AppointmentID: appt.ID,
		BookingRef:    appt.BookingRef,
		ChangedFields: []string{"stage"},
		Detail:        fmt.Sprintf("%s to %s", current.Stage, stage),
	})
	s.publish(realtime.NewEvent(realtime.EventAppointmentUpdated, appt))
	s.logger.Info("booking: stage updated", "appointment_id", appt.ID, "from", current.Stage, "to", stage)
	return appt, nil
}

// SaveNotes replaces the staff notes on the appointment.
func (s *Service) SaveNotes(ctx context.Context, id int64, notes string) (*ledger.Appointment, error) {
	appt, err := s.ledger.UpdateFields(ctx, id, ledger.SetNotes(strings.TrimSpace(notes)))
	if err != nil {
		return nil, err
	}
	s.record(ctx, audit.Event{
		Action:        audit.ActionFieldUpdated,
		AppointmentID: appt.ID,
		BookingRef:    appt.BookingRef,
		ChangedFields: []string{"notes"},
	})
	s.publish(realtime.NewEvent(realtime.EventAppointmentUpdated, appt))
	return appt, nil
}

// SetInsuranceVerified flips the insurance flag.
func (s *Service) SetInsuranceVerified(ctx context.Context, id int64, verified bool) (*ledger.Appointment, error) {
	if err := s.ledger.SetInsuranceVerified(ctx, id, verified); err != nil {
		return nil, err
	}
	appt, err := s.ledger.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.record(ctx, audit.Event{
		Action:        audit.ActionFieldUpdated,
		AppointmentID: appt.ID,
		BookingRef:    appt.BookingRef,
		ChangedFields: []string{"insurance_verified"},
		Detail:        fmt.Sprintf("verified=%t", verified),
	})
	s.publish(realtime.NewEvent(realtime.EventAppointmentUpdated, appt))
	return appt, nil
}

// EditRequest is the staff edit form. All fields are written as given.
type EditRequest struct {
	PatientName string `json:"patient_name"`
	Phone       string `json:"phone"`
	Department  string `json:"department"`
	Doctor      string `json:"doctor"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

// Edit rewrites the core booking fields with the same validation as Book.
// No patient message is sent; staff use Reschedule when the patient should
// hear about a moved slot.
func (s *Service) Edit(ctx context.Context, id int64, req EditRequest) (*ledger.Appointment, error) {
	input := ledger.NewAppointment{
		PatientName: req.PatientName,
		Phone:       req.Phone,
		Department:  req.Department,
		Doctor:      req.Doctor,
		Date:        req.Date,
		Time:        req.Time,
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	appt, err := s.ledger.UpdateFields(ctx, id,
		ledger.SetPatientName(input.PatientName),
		ledger.SetPhone(input.Phone),
		ledger.SetDepartment(input.Department),
		ledger.SetDoctor(input.Doctor),
		ledger.SetDate(input.Date),
		ledger.SetTime(input.Time),
	)
	if err != nil {
		return nil, err
	}
	s.record(ctx, audit.Event{
		Action:        audit.ActionEdited,
		AppointmentID: appt.ID,
		BookingRef:    appt.BookingRef,
		ChangedFields: []string{"patient_name", "phone", "department", "doctor", "date", "time"},
	})
	s.publish(realtime.NewEvent(realtime.EventAppointmentUpdated, appt))
	s.logger.Info("booking: appointment edited", "appointment_id", appt.ID)
	return appt, nil
}

// UpdateFields applies named field updates, the PATCH path. Unknown names
// surface *ledger.InvalidFieldError.
func (s *Service) UpdateFields(ctx context.Context, id int64, fields map[string]string) (*ledger.Appointment, error) {
	updates := make([]ledger.FieldUpdate, 0, len(fields))
	names := make([]string, 0, len(fields))
	for name, value := range fields {
		update, err := ledger.UpdateByName(name, value)
		if err != nil {
			return nil, err
		}
		updates = append(updates, update)
		names = append(names, name)
	}
	sort.Strings(names)

	appt, err := s.ledger.UpdateFields(ctx, id, updates...)
	if err != nil {
		return nil, err
	}
	s.record(ctx, audit.Event{
		Action:        audit.ActionFieldUpdated,
		AppointmentID: appt.ID,
		BookingRef:    appt.BookingRef,
		ChangedFields: names,
	})
	s.publish(realtime.NewEvent(realtime.EventAppointmentUpdated, appt))
	s.logger.Info("booking: fields updated", "appointment_id", appt.ID, "fields", strings.Join(names, ","))
	return appt, nil
}

// Remind resends the appointment details to the patient.
func (s *Service) Remind(ctx context.Context, id int64) (*ActionResult, error) {
	appt, err := s.ledger.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	outcome := s.notifier.Send(ctx, appt.Phone, notify.Reminder(
		appt.PatientName, appt.Date, appt.Time, appt.BookingRef, appt.TicketNumber,
	))
	s.metrics.ObserveNotification("reminder", outcome.Status)
	s.record(ctx, audit.Event{
		Action:        audit.ActionReminderSent,
		AppointmentID: appt.ID,
		BookingRef:    appt.BookingRef,
		Detail:        outcome.Status,
	})
	return &ActionResult{Appointment: appt, Notification: outcome}, nil
}

// Delete removes the appointment and tells the patient afterwards. The
// returned appointment is the pre-delete snapshot.
func (s *Service) Delete(ctx context.Context, id int64) (*ActionResult, error) {
	appt, err := s.ledger.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.Delete(ctx, id); err != nil {
		return nil, err
	}
	outcome := s.notifier.Send(ctx, appt.Phone, notify.Deleted(appt.BookingRef))
	s.metrics.ObserveNotification("deleted", outcome.Status)
	s.record(ctx, audit.Event{
		Action:        audit.ActionDeleted,
		AppointmentID: appt.ID,
		BookingRef:    appt.BookingRef,
	})
	s.publish(realtime.NewEvent(realtime.EventAppointmentDeleted, appt))
	s.logger.Info("booking: appointment deleted", "appointment_id", appt.ID, "booking_ref", appt.BookingRef)
	return &ActionResult{Appointment: appt, Notification: outcome}, nil
}
