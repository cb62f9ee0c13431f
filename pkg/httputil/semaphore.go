package httputil

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Semaphore bounds concurrent collaborator calls. A burst of assessments
// must not pile up unbounded Gemini requests or notifier goroutines.
// Rejections are counted so saturation shows up in logs and tests.
type Semaphore struct {
	w       *semaphore.Weighted
	held    atomic.Int64
	dropped atomic.Int64
}

// NewSemaphore creates a semaphore with the given capacity.
func NewSemaphore(capacity int) *Semaphore {
	if capacity <= 0 {
		capacity = 100
	}
	return &Semaphore{w: semaphore.NewWeighted(int64(capacity))}
}

// TryAcquire attempts to acquire a slot without blocking.
// Returns false if at capacity; the drop is counted for monitoring.
func (s *Semaphore) TryAcquire() bool {
	if !s.w.TryAcquire(1) {
		s.dropped.Add(1)
		return false
	}
	s.held.Add(1)
	return true
}

// Acquire blocks until a slot is available or the context is cancelled.
func (s *Semaphore) Acquire(ctx context.Context) error {
	if err := s.w.Acquire(ctx, 1); err != nil {
		return err
	}
	s.held.Add(1)
	return nil
}

// Release returns a slot. Must be called exactly once per successful
// acquire.
func (s *Semaphore) Release() {
	s.held.Add(-1)
	s.w.Release(1)
}

// DroppedCount returns the number of calls rejected at capacity.
func (s *Semaphore) DroppedCount() int64 {
	return s.dropped.Load()
}

// InUse returns the number of slots currently held.
func (s *Semaphore) InUse() int {
	return int(s.held.Load())
}
