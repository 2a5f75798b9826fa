package ledger

import (
	"strings"
	"time"
)

// Appointment statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Consultation stages. Status and stage are independent but correlated:
// confirm and cancel set both, while in_consultation/done are stage-only
// moves driven by the queue.
const (
	StagePending        = "pending"
	StageConfirmed      = "confirmed"
	StageInConsultation = "in_consultation"
	StageDone           = "done"
	StageCancelled      = "cancelled"
)

// DateLayout and TimeLayout are the canonical stored representations.
// Lexicographic order of these forms equals chronological order, which the
// queue ordering relies on.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Appointment is the booking ledger record handed to patients and staff.
type Appointment struct {
	ID                int64     `json:"id"`
	PatientName       string    `json:"patient_name"`
	Phone             string    `json:"phone"`
	Department        string    `json:"department"`
	Doctor            string    `json:"doctor,omitempty"`
	Date              string    `json:"date"`
	Time              string    `json:"time"`
	Status            string    `json:"status"`
	Stage             string    `json:"stage"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	ClinicID          int64     `json:"clinic_id"`
	BookingRef        string    `json:"booking_ref"`
	TicketNumber      string    `json:"ticket_number"`
	TelemedicineLink  string    `json:"telemedicine_link"`
	NotificationSent  bool      `json:"notification_sent"`
	InsuranceVerified bool      `json:"insurance_verified"`
	Notes             string    `json:"notes,omitempty"`
	CancelReason      string    `json:"cancel_reason,omitempty"`
}

func (a *Appointment) clone() *Appointment {
	cp := *a
	return &cp
}

// Waiting reports whether the appointment is still eligible for the
// now-serving queue.
func (a *Appointment) Waiting() bool {
	return a.Stage == StagePending || a.Stage == StageConfirmed
}

// NewAppointment is the validated input for Create.
type NewAppointment struct {
	PatientName string
	Phone       string
	Department  string
	Doctor      string
	Date        string
	Time        string
	ClinicID    int64
}

// Validate checks required fields and normalizes date/time into their
// canonical layouts. It mutates the receiver on success.
func (n *NewAppointment) Validate() error {
	n.PatientName = strings.TrimSpace(n.PatientName)
	n.Phone = strings.TrimSpace(n.Phone)
	n.Department = strings.TrimSpace(n.Department)
	n.Doctor = strings.TrimSpace(n.Doctor)

	if n.PatientName == "" {
		return &ValidationError{Field: "patient_name", Reason: "required"}
	}
	if n.Phone == "" {
		return &ValidationError{Field: "phone", Reason: "required"}
	}
	if n.Department == "" {
		return &ValidationError{Field: "department", Reason: "required"}
	}

	date, err := NormalizeDate(n.Date)
	if err != nil {
		return err
	}
	n.Date = date

	tm, err := NormalizeTime(n.Time)
	if err != nil {
		return err
	}
	n.Time = tm

	if n.ClinicID == 0 {
		n.ClinicID = 1
	}
	return nil
}

// NormalizeDate parses a calendar date and returns it in DateLayout.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", &ValidationError{Field: "date", Reason: "required"}
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", &ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
	}
	return t.Format(DateLayout), nil
}

// NormalizeTime parses a clock time and returns it in TimeLayout. Seconds
// are accepted on input and dropped.
func NormalizeTime(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", &ValidationError{Field: "time", Reason: "required"}
	}
	for _, layout := range []string{TimeLayout, "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(TimeLayout), nil
		}
	}
	return "", &ValidationError{Field: "time", Reason: "must be HH:MM"}
}

// ValidStatus reports whether s is part of the status vocabulary.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// ValidStage reports whether s is part of the stage vocabulary.
func ValidStage(s string) bool {
	switch s {
	case StagePending, StageConfirmed, StageInConsultation, StageDone, StageCancelled:
		return true
	}
	return false
}

// Filter narrows List results. Zero values mean "no constraint"; all set
// constraints are AND-combined.
type Filter struct {
	Department string
	DateFrom   string
	DateTo     string
	Status     string
	Stages     []string
	Search     string
}
