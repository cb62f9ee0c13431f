package escalation

import (
	"context"
	"errors"
	"testing"
	"time"
)

// failingStore simulates an escalation log outage.
type failingStore struct{}

func (failingStore) Append(context.Context, *Record) error { return errors.New("log down") }
func (failingStore) Since(context.Context, string, time.Time) ([]Record, error) {
	return nil, errors.New("log down")
}

func TestIsUnderCooldownRecentRecord(t *testing.T) {
	store := NewMemoryStore()
	guard := NewGuard(store, 24*time.Hour)

	rec := &Record{ID: "r1", UserID: "u1", Action: ActionTeleMANAS, Timestamp: time.Now().UTC().Add(-time.Hour)}
	if err := store.Append(context.Background(), rec); err != nil {
		t.Fatal(err)
	}

	if !guard.IsUnderCooldown(context.Background(), "u1") {
		t.Error("record 1h old inside a 24h window must trigger cooldown")
	}
	if guard.IsUnderCooldown(context.Background(), "u2") {
		t.Error("cooldown is per-user; u2 has no records")
	}
}

func TestIsUnderCooldownExpiredRecord(t *testing.T) {
	store := NewMemoryStore()
	guard := NewGuard(store, 24*time.Hour)

	rec := &Record{ID: "r1", UserID: "u1", Action: ActionTeleMANAS, Timestamp: time.Now().UTC().Add(-25 * time.Hour)}
	if err := store.Append(context.Background(), rec); err != nil {
		t.Fatal(err)
	}

	if guard.IsUnderCooldown(context.Background(), "u1") {
		t.Error("record older than the window must not trigger cooldown")
	}
}

func TestIsUnderCooldownFailsOpen(t *testing.T) {
	// A storage outage must never suppress an escalation.
	guard := NewGuard(failingStore{}, 24*time.Hour)
	if guard.IsUnderCooldown(context.Background(), "u1") {
		t.Error("store error must fail open (not under cooldown)")
	}
}

func TestNewGuardDefaultWindow(t *testing.T) {
	guard := NewGuard(NewMemoryStore(), 0)
	if guard.Window() != 24*time.Hour {
		t.Errorf("default window = %s, want 24h", guard.Window())
	}
}

func TestIsUnderCooldownNoneActionConsumesBudget(t *testing.T) {
	// A record with action "none" still counts toward cooldown.
	store := NewMemoryStore()
	guard := NewGuard(store, 24*time.Hour)

	rec := &Record{ID: "r1", UserID: "u1", Action: ActionNone, Timestamp: time.Now().UTC().Add(-time.Minute)}
	if err := store.Append(context.Background(), rec); err != nil {
		t.Fatal(err)
	}

	if !guard.IsUnderCooldown(context.Background(), "u1") {
		t.Error("a no-op record inside the window must still trigger cooldown")
	}
}
