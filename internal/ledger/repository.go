package ledger

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// Repository defines the interface for appointment storage.
type Repository interface {
	Create(ctx context.Context, req *NewAppointment) (*Appointment, error)
	GetByID(ctx context.Context, id int64) (*Appointment, error)
	FindByRef(ctx context.Context, ref string) (*Appointment, error)
	FindByRefOrPhone(ctx context.Context, query string) ([]*Appointment, error)
	UpdateFields(ctx context.Context, id int64, updates ...FieldUpdate) (*Appointment, error)
	SetNotificationSent(ctx context.Context, id int64, sent bool) error
	SetInsuranceVerified(ctx context.Context, id int64, verified bool) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f Filter) ([]*Appointment, error)
}

// InMemoryRepository keeps the ledger in process memory. It backs tests and
// local development; the serving deployment uses PostgresRepository.
type InMemoryRepository struct {
	mu           sync.RWMutex
	appointments map[int64]*Appointment
	nextID       int64
	telemedBase  string
}

var _ Repository = (*InMemoryRepository)(nil)

// NewInMemoryRepository creates an empty in-memory ledger. An empty
// telemedBase falls back to the stock deployment base.
func NewInMemoryRepository(telemedBase string) *InMemoryRepository {
	return &InMemoryRepository{
		appointments: make(map[int64]*Appointment),
		telemedBase:  telemedBase,
	}
}

// Create validates the request, assigns the next id and derives the public
// identity fields.
func (r *InMemoryRepository) Create(ctx context.Context, req *NewAppointment) (*Appointment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	now := time.Now().UTC()
	a := &Appointment{
		ID:          r.nextID,
		PatientName: req.PatientName,
		Phone:       req.Phone,
		Department:  req.Department,
		Doctor:      req.Doctor,
		Date:        req.Date,
		Time:        req.Time,
		Status:      StatusPending,
		Stage:       StagePending,
		CreatedAt:   now,
		UpdatedAt:   now,
		ClinicID:    req.ClinicID,
	}
	a.BookingRef = BookingRef(now, a.ID)
	a.TicketNumber = TicketNumber(now, a.ID)
	a.TelemedicineLink = TelemedicineLink(r.telemedBase, a.BookingRef)

	r.appointments[a.ID] = a
	return a.clone(), nil
}

// GetByID retrieves an appointment by id.
func (r *InMemoryRepository) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a.clone(), nil
}

// FindByRef fetches the appointment with the exact booking reference.
func (r *InMemoryRepository) FindByRef(ctx context.Context, ref string) (*Appointment, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.appointments {
		if a.BookingRef == ref {
			return a.clone(), nil
		}
	}
	return nil, ErrNotFound
}

// FindByRefOrPhone matches the booking reference exactly or the phone by
// substring. All matches are returned so ambiguity stays visible to the
// caller.
func (r *InMemoryRepository) FindByRefOrPhone(ctx context.Context, query string) ([]*Appointment, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Appointment
	for _, a := range r.appointments {
		if a.BookingRef == query || strings.Contains(a.Phone, query) {
			out = append(out, a.clone())
		}
	}
	sortAppointments(out)
	return out, nil
}

// UpdateFields applies the given updates and stamps updated_at.
func (r *InMemoryRepository) UpdateFields(ctx context.Context, id int64, updates ...FieldUpdate) (*Appointment, error) {
	if err := validateUpdates(updates); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	for _, u := range updates {
		u.apply(a)
	}
	a.UpdatedAt = time.Now().UTC()
	return a.clone(), nil
}

// SetNotificationSent records the delivery bookkeeping flag.
func (r *InMemoryRepository) SetNotificationSent(ctx context.Context, id int64, sent bool) error {
	return r.setFlag(id, func(a *Appointment) { a.NotificationSent = sent })
}

// SetInsuranceVerified records the staff insurance check.
func (r *InMemoryRepository) SetInsuranceVerified(ctx context.Context, id int64, verified bool) error {
	return r.setFlag(id, func(a *Appointment) { a.InsuranceVerified = verified })
}

func (r *InMemoryRepository) setFlag(id int64, set func(*Appointment)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.appointments[id]
	if !ok {
		return ErrNotFound
	}
	set(a)
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// Delete removes an appointment. Deleting a nonexistent id succeeds.
func (r *InMemoryRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.appointments, id)
	return nil
}

// List returns appointments matching the filter ordered by date, time,
// creation order.
func (r *InMemoryRepository) List(ctx context.Context, f Filter) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Appointment
	for _, a := range r.appointments {
		if matchesFilter(a, f) {
			out = append(out, a.clone())
		}
	}
	sortAppointments(out)
	return out, nil
}

func matchesFilter(a *Appointment, f Filter) bool {
	if f.Department != "" && a.Department != f.Department {
		return false
	}
	if f.DateFrom != "" && a.Date < f.DateFrom {
		return false
	}
	if f.DateTo != "" && a.Date > f.DateTo {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if len(f.Stages) > 0 {
		found := false
		for _, s := range f.Stages {
			if a.Stage == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(a.PatientName), q) &&
			!strings.Contains(strings.ToLower(a.Phone), q) &&
			!strings.Contains(strings.ToLower(a.BookingRef), q) {
			return false
		}
	}
	return true
}

func sortAppointments(list []*Appointment) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Date != list[j].Date {
			return list[i].Date < list[j].Date
		}
		if list[i].Time != list[j].Time {
			return list[i].Time < list[j].Time
		}
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
}
