package escalation

import (
	"context"
	"log"
	"time"
)

// Guard is the per-user cooldown: a rolling window over the escalation log
// during which repeat escalations for the same user are suppressed.
type Guard struct {
	store  Store
	window time.Duration
	now    func() time.Time // injectable clock for tests
}

// NewGuard creates a cooldown guard over the given log store.
func NewGuard(store Store, window time.Duration) *Guard {
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &Guard{store: store, window: window, now: time.Now}
}

// IsUnderCooldown reports whether any escalation record exists for the
// user inside the window. If the store is unavailable this fails OPEN
// (not under cooldown): suppressing a real crisis escalation because of a
// transient storage outage is the more dangerous failure mode. This is a
// deliberate asymmetry from the LLM scorer, which fails to a LOW score.
func (g *Guard) IsUnderCooldown(ctx context.Context, userID string) bool {
	cutoff := g.now().UTC().Add(-g.window)
	records, err := g.store.Since(ctx, userID, cutoff)
	if err != nil {
		log.Printf("[cooldown] log query failed for %s, failing open: %v", userID, err)
		return false
	}
	return len(records) > 0
}

// Window returns the configured cooldown duration.
func (g *Guard) Window() time.Duration {
	return g.window
}
