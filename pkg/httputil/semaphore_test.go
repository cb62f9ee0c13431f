package httputil

import (
	"context"
	"testing"
	"time"
)

func TestSemaphoreTryAcquireAtCapacity(t *testing.T) {
	s := NewSemaphore(2)

	if !s.TryAcquire() || !s.TryAcquire() {
		t.Fatal("acquires within capacity must succeed")
	}
	if s.TryAcquire() {
		t.Error("acquire beyond capacity must fail")
	}
	if s.DroppedCount() != 1 {
		t.Errorf("dropped = %d, want 1", s.DroppedCount())
	}
	if s.InUse() != 2 {
		t.Errorf("in use = %d, want 2", s.InUse())
	}

	s.Release()
	if !s.TryAcquire() {
		t.Error("acquire after release must succeed")
	}
}

func TestSemaphoreAcquireHonorsContext(t *testing.T) {
	s := NewSemaphore(1)
	if err := s.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.Acquire(ctx); err == nil {
		t.Error("blocked acquire must return the context error")
	}
}

func TestSemaphoreDefaultCapacity(t *testing.T) {
	s := NewSemaphore(0)
	for i := 0; i < 100; i++ {
		if !s.TryAcquire() {
			t.Fatalf("acquire %d should succeed with default capacity", i)
		}
	}
	if s.TryAcquire() {
		t.Error("acquire 101 should fail")
	}
}
