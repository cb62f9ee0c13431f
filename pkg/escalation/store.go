package escalation

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Store is the append-only escalation log. Only the Dispatcher appends;
// the Cooldown Guard only reads. Records are never mutated or deleted by
// this subsystem.
type Store interface {
	// Append persists one record.
	Append(ctx context.Context, rec *Record) error

	// Since returns the records for a user with Timestamp strictly after
	// cutoff, oldest first.
	Since(ctx context.Context, userID string, cutoff time.Time) ([]Record, error)
}

// MemoryStore is an in-memory escalation log for development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	byUser  map[string][]Record
}

// NewMemoryStore creates an empty in-memory escalation log.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byUser: make(map[string][]Record)}
}

// Append persists one record.
func (s *MemoryStore) Append(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUser[rec.UserID] = append(s.byUser[rec.UserID], *rec)
	return nil
}

// Since returns records for a user newer than cutoff, oldest first.
func (s *MemoryStore) Since(_ context.Context, userID string, cutoff time.Time) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Record
	for _, rec := range s.byUser[userID] {
		if rec.Timestamp.After(cutoff) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// Count returns the total number of records for a user.
func (s *MemoryStore) Count(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byUser[userID])
}
