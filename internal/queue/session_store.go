// Package queue drives the now-serving flow at the reception desk.
package queue

import (
	"context"
	"sync"
)

// SessionStore keeps per-staff-session queue state: which appointment is
// being served and which one was just skipped. An id of zero means none.
type SessionStore interface {
	Serving(ctx context.Context, sessionID string) (int64, error)
	SetServing(ctx context.Context, sessionID string, appointmentID int64) error
	ClearServing(ctx context.Context, sessionID string) error
	Skipped(ctx context.Context, sessionID string) (int64, error)
	SetSkipped(ctx context.Context, sessionID string, appointmentID int64) error
	ClearSkipped(ctx context.Context, sessionID string) error
}

// MemorySessionStore backs single-process deployments and tests.
type MemorySessionStore struct {
	mu      sync.Mutex
	serving map[string]int64
	skipped map[string]int64
}

var _ SessionStore = (*MemorySessionStore)(nil)

// NewMemorySessionStore creates an empty store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		serving: make(map[string]int64),
		skipped: make(map[string]int64),
	}
}

func (s *MemorySessionStore) Serving(_ context.Context, sessionID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serving[sessionID], nil
}

func (s *MemorySessionStore) SetServing(_ context.Context, sessionID string, appointmentID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.serving[sessionID] = appointmentID
	return nil
}

func (s *MemorySessionStore) ClearServing(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.serving, sessionID)
	return nil
}

func (s *MemorySessionStore) Skipped(_ context.Context, sessionID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skipped[sessionID], nil
}

func (s *MemorySessionStore) SetSkipped(_ context.Context, sessionID string, appointmentID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skipped[sessionID] = appointmentID
	return nil
}

func (s *MemorySessionStore) ClearSkipped(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.skipped, sessionID)
	return nil
}
