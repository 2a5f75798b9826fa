package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the subset of pgxpool.Pool the repository uses. pgxmock
// implements it in tests.
type PgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const appointmentColumns = `id, patient_name, phone, department, doctor, date, time, status, stage, created_at, updated_at, clinic_id, booking_ref, ticket_number, telemedicine_link, notification_sent, insurance_verified, notes, cancel_reason`

// PostgresRepository stores the booking ledger in the relational database.
type PostgresRepository struct {
	pool        PgxPool
	telemedBase string
}

var _ Repository = (*PostgresRepository)(nil)

// NewPostgresRepository initializes a repository backed by pgxpool. An empty
// telemedBase falls back to the stock deployment base.
func NewPostgresRepository(pool PgxPool, telemedBase string) *PostgresRepository {
	if pool == nil {
		panic("ledger: pgx pool required")
	}
	return &PostgresRepository{pool: pool, telemedBase: telemedBase}
}

// Create inserts the appointment and assigns its public identity fields in
// one transaction. The reference date is the creation day, the numeric part
// the assigned id.
func (r *PostgresRepository) Create(ctx context.Context, req *NewAppointment) (*Appointment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledger: begin failed: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	insert := `
		INSERT INTO appointments (patient_name, phone, department, doctor, date, time, status, stage, created_at, updated_at, clinic_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	var id int64
	if err := tx.QueryRow(ctx, insert,
		req.PatientName,
		req.Phone,
		req.Department,
		req.Doctor,
		req.Date,
		req.Time,
		StatusPending,
		StagePending,
		now,
		now,
		req.ClinicID,
	).Scan(&id); err != nil {
		return nil, fmt.Errorf("ledger: insert failed: %w", err)
	}

	ref := BookingRef(now, id)
	ticket := TicketNumber(now, id)
	link := TelemedicineLink(r.telemedBase, ref)

	assign := `
		UPDATE appointments
		SET booking_ref = $1, ticket_number = $2, telemedicine_link = $3, updated_at = $4
		WHERE id = $5
	`
	if _, err := tx.Exec(ctx, assign, ref, ticket, link, now, id); err != nil {
		return nil, fmt.Errorf("ledger: assign identity failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ledger: commit failed: %w", err)
	}

	return &Appointment{
		ID:               id,
		PatientName:      req.PatientName,
		Phone:            req.Phone,
		Department:       req.Department,
		Doctor:           req.Doctor,
		Date:             req.Date,
		Time:             req.Time,
		Status:           StatusPending,
		Stage:            StagePending,
		CreatedAt:        now,
		UpdatedAt:        now,
		ClinicID:         req.ClinicID,
		BookingRef:       ref,
		TicketNumber:     ticket,
		TelemedicineLink: link,
	}, nil
}

// GetByID fetches a single appointment.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`
	a, err := scanAppointment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ledger: select failed: %w", err)
	}
	return a, nil
}

// FindByRef fetches the appointment with the exact booking reference.
func (r *PostgresRepository) FindByRef(ctx context.Context, ref string) (*Appointment, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrNotFound
	}

	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE booking_ref = $1`
	a, err := scanAppointment(r.pool.QueryRow(ctx, query, ref))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ledger: ref lookup failed: %w", err)
	}
	return a, nil
}

// FindByRefOrPhone matches the booking reference exactly or the phone by
// substring, returning every match in queue order.
func (r *PostgresRepository) FindByRefOrPhone(ctx context.Context, query string) ([]*Appointment, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	sql := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE booking_ref = $1 OR phone LIKE '%' || $1 || '%'
		ORDER BY date ASC, time ASC, created_at ASC, id ASC
	`
	rows, err := r.pool.Query(ctx, sql, query)
	if err != nil {
		return nil, fmt.Errorf("ledger: lookup failed: %w", err)
	}
	defer rows.Close()
	return collectAppointments(rows)
}

// UpdateFields applies the given updates atomically and stamps updated_at.
// Column names come from the closed field map, never from caller input.
func (r *PostgresRepository) UpdateFields(ctx context.Context, id int64, updates ...FieldUpdate) (*Appointment, error) {
	if err := validateUpdates(updates); err != nil {
		return nil, err
	}

	sets := make([]string, 0, len(updates)+1)
	args := make([]any, 0, len(updates)+2)
	for _, u := range updates {
		args = append(args, u.value)
		sets = append(sets, fmt.Sprintf("%s = $%d", fieldColumns[u.field], len(args)))
	}
	args = append(args, time.Now().UTC())
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))
	args = append(args, id)

	query := fmt.Sprintf(
		"UPDATE appointments SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), appointmentColumns,
	)
	a, err := scanAppointment(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ledger: update failed: %w", err)
	}
	return a, nil
}

// SetNotificationSent records the delivery bookkeeping flag.
func (r *PostgresRepository) SetNotificationSent(ctx context.Context, id int64, sent bool) error {
	return r.setFlag(ctx, id, "notification_sent", sent)
}

// SetInsuranceVerified records the staff insurance check.
func (r *PostgresRepository) SetInsuranceVerified(ctx context.Context, id int64, verified bool) error {
	return r.setFlag(ctx, id, "insurance_verified", verified)
}

func (r *PostgresRepository) setFlag(ctx context.Context, id int64, column string, value bool) error {
	query := fmt.Sprintf("UPDATE appointments SET %s = $1, updated_at = $2 WHERE id = $3", column)
	tag, err := r.pool.Exec(ctx, query, value, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("ledger: set %s failed: %w", column, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an appointment. Deleting a nonexistent id succeeds.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("ledger: delete failed: %w", err)
	}
	return nil
}

// List returns appointments matching the filter in queue order.
func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]*Appointment, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, val any) {
		args = append(args, val)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.Department != "" {
		add("department = $%d", f.Department)
	}
	if f.DateFrom != "" {
		add("date >= $%d", f.DateFrom)
	}
	if f.DateTo != "" {
		add("date <= $%d", f.DateTo)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if len(f.Stages) > 0 {
		add("stage = ANY($%d)", f.Stages)
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(patient_name ILIKE $%d OR phone ILIKE $%d OR booking_ref ILIKE $%d)", n, n, n))
	}

	query := `SELECT ` + appointmentColumns + ` FROM appointments`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date ASC, time ASC, created_at ASC, id ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ledger: list failed: %w", err)
	}
	defer rows.Close()
	return collectAppointments(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppointment(row rowScanner) (*Appointment, error) {
	var a Appointment
	if err := row.Scan(
		&a.ID,
		&a.PatientName,
		&a.Phone,
		&a.Department,
		&a.Doctor,
		&a.Date,
		&a.Time,
		&a.Status,
		&a.Stage,
		&a.CreatedAt,
		&a.UpdatedAt,
		&a.ClinicID,
		&a.BookingRef,
		&a.TicketNumber,
		&a.TelemedicineLink,
		&a.NotificationSent,
		&a.InsuranceVerified,
		&a.Notes,
		&a.CancelReason,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

func collectAppointments(rows pgx.Rows) ([]*Appointment, error) {
	var out []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("ledger: scan failed: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger: rows failed: %w", err)
	}
	return out, nil
}
