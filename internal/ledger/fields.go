package ledger

// Field identifies one mutable appointment column. The zero value is
// invalid, so a FieldUpdate can only be built through the typed
// constructors or FieldByName; everything else is rejected before it can
// reach a store.
type Field int

const (
	FieldPatientName Field = iota + 1
	FieldPhone
	FieldDepartment
	FieldDoctor
	FieldDate
	FieldTime
	FieldStatus
	FieldStage
	FieldTicketNumber
	FieldBookingRef
	FieldTelemedicineLink
	FieldNotes
	FieldCancelReason
)

// fieldColumns is the single source of the mutable set: a field outside
// this map cannot be written through UpdateFields.
var fieldColumns = map[Field]string{
	FieldPatientName:      "patient_name",
	FieldPhone:            "phone",
	FieldDepartment:       "department",
	FieldDoctor:           "doctor",
	FieldDate:             "date",
	FieldTime:             "time",
	FieldStatus:           "status",
	FieldStage:            "stage",
	FieldTicketNumber:     "ticket_number",
	FieldBookingRef:       "booking_ref",
	FieldTelemedicineLink: "telemedicine_link",
	FieldNotes:            "notes",
	FieldCancelReason:     "cancel_reason",
}

var fieldsByName = func() map[string]Field {
	m := make(map[string]Field, len(fieldColumns))
	for f, name := range fieldColumns {
		m[name] = f
	}
	return m
}()

// Name returns the external column name of the field, or "" for an invalid
// field.
func (f Field) Name() string {
	return fieldColumns[f]
}

// Valid reports whether f identifies a mutable field.
func (f Field) Valid() bool {
	_, ok := fieldColumns[f]
	return ok
}

// FieldByName resolves an external field name to its Field. Unknown names,
// including attempts to touch identity or bookkeeping columns, fail with
// *InvalidFieldError.
func FieldByName(name string) (Field, error) {
	f, ok := fieldsByName[name]
	if !ok {
		return 0, &InvalidFieldError{Name: name}
	}
	return f, nil
}

// FieldUpdate carries a value destined for exactly one mutable field.
type FieldUpdate struct {
	field Field
	value string
}

// Field returns the target field of the update.
func (u FieldUpdate) Field() Field { return u.field }

// Value returns the value the update carries.
func (u FieldUpdate) Value() string { return u.value }

// Set builds an update for a known field. It is the typed building block
// the named constructors delegate to.
func Set(f Field, value string) FieldUpdate {
	return FieldUpdate{field: f, value: value}
}

func SetPatientName(v string) FieldUpdate      { return Set(FieldPatientName, v) }
func SetPhone(v string) FieldUpdate            { return Set(FieldPhone, v) }
func SetDepartment(v string) FieldUpdate       { return Set(FieldDepartment, v) }
func SetDoctor(v string) FieldUpdate           { return Set(FieldDoctor, v) }
func SetDate(v string) FieldUpdate             { return Set(FieldDate, v) }
func SetTime(v string) FieldUpdate             { return Set(FieldTime, v) }
func SetStatus(v string) FieldUpdate           { return Set(FieldStatus, v) }
func SetStage(v string) FieldUpdate            { return Set(FieldStage, v) }
func SetTicketNumber(v string) FieldUpdate     { return Set(FieldTicketNumber, v) }
func SetBookingRef(v string) FieldUpdate       { return Set(FieldBookingRef, v) }
func SetTelemedicineLink(v string) FieldUpdate { return Set(FieldTelemedicineLink, v) }
func SetNotes(v string) FieldUpdate            { return Set(FieldNotes, v) }
func SetCancelReason(v string) FieldUpdate     { return Set(FieldCancelReason, v) }

// UpdateByName builds a FieldUpdate from external name/value strings. It is
// the boundary used by the generic staff PATCH path; domain code prefers the
// typed constructors.
func UpdateByName(name, value string) (FieldUpdate, error) {
	f, err := FieldByName(name)
	if err != nil {
		return FieldUpdate{}, err
	}
	return Set(f, value), nil
}

// apply writes the update into the in-memory representation.
func (u FieldUpdate) apply(a *Appointment) {
	switch u.field {
	case FieldPatientName:
		a.PatientName = u.value
	case FieldPhone:
		a.Phone = u.value
	case FieldDepartment:
		a.Department = u.value
	case FieldDoctor:
		a.Doctor = u.value
	case FieldDate:
		a.Date = u.value
	case FieldTime:
		a.Time = u.value
	case FieldStatus:
		a.Status = u.value
	case FieldStage:
		a.Stage = u.value
	case FieldTicketNumber:
		a.TicketNumber = u.value
	case FieldBookingRef:
		a.BookingRef = u.value
	case FieldTelemedicineLink:
		a.TelemedicineLink = u.value
	case FieldNotes:
		a.Notes = u.value
	case FieldCancelReason:
		a.CancelReason = u.value
	}
}

// validateUpdates rejects empty or invalid update sets before any store
// work happens.
func validateUpdates(updates []FieldUpdate) error {
	if len(updates) == 0 {
		return ErrNoUpdates
	}
	for _, u := range updates {
		if !u.field.Valid() {
			return &InvalidFieldError{Name: u.field.Name()}
		}
	}
	return nil
}
