package queuesync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// RecordStore persists undelivered tickets.
type RecordStore interface {
	Insert(ctx context.Context, rec *Record) error
	ListPending(ctx context.Context, limit int) ([]*Record, error)
}

// PgxPool is the subset of pgxpool.Pool the store uses.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps sync records in the relational database.
type PostgresStore struct {
	pool PgxPool
}

var _ RecordStore = (*PostgresStore)(nil)

// NewPostgresStore initializes a store backed by pgxpool.
func NewPostgresStore(pool PgxPool) *PostgresStore {
	if pool == nil {
		panic("queuesync: pgx pool required")
	}
	return &PostgresStore{pool: pool}
}

// Insert writes one record, filling its id and created_at.
func (s *PostgresStore) Insert(ctx context.Context, rec *Record) error {
	if rec.Status == "" {
		rec.Status = StatusPending
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO queue_sync (appointment_id, patient_name, ticket, department, booking_ref, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	if err := s.pool.QueryRow(ctx, query,
		rec.AppointmentID,
		rec.PatientName,
		rec.Ticket,
		rec.Department,
		rec.BookingRef,
		rec.Status,
		rec.CreatedAt,
	).Scan(&rec.ID); err != nil {
		return fmt.Errorf("queuesync: insert failed: %w", err)
	}
	return nil
}

// ListPending returns the oldest unreconciled records, for an operator or
// external job to re-drive.
func (s *PostgresStore) ListPending(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, appointment_id, patient_name, ticket, department, booking_ref, status, created_at
		FROM queue_sync
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2
	`
	rows, err := s.pool.Query(ctx, query, StatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("queuesync: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.ID,
			&rec.AppointmentID,
			&rec.PatientName,
			&rec.Ticket,
			&rec.Department,
			&rec.BookingRef,
			&rec.Status,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("queuesync: scan failed: %w", err)
		}
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("queuesync: rows failed: %w", err)
	}
	return out, nil
}

// InMemoryStore keeps sync records in process memory for tests and local
// development.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []*Record
	nextID  int64
}

var _ RecordStore = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// Insert appends one record.
func (s *InMemoryStore) Insert(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	rec.ID = s.nextID
	if rec.Status == "" {
		rec.Status = StatusPending
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	cp := *rec
	s.records = append(s.records, &cp)
	return nil
}

// ListPending returns pending records oldest first.
func (s *InMemoryStore) ListPending(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 50
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Record
	for _, rec := range s.records {
		if rec.Status != StatusPending {
			continue
		}
		cp := *rec
		out = append(out, &cp)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// All returns every record, newest last. Test helper.
func (s *InMemoryStore) All() []*Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Record, 0, len(s.records))
	for _, rec := range s.records {
		cp := *rec
		out = append(out, &cp)
	}
	return out
}
