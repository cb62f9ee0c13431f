// Package notify holds the outbound notification channels: the Tele MANAS
// hotline referral and the parent WhatsApp sender. Both are best-effort
// stubs at the delivery-protocol boundary - the real transports are
// external systems - but they keep the channel semantics (independent
// timeouts, per-channel failure) the dispatcher depends on.
package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/sahayak-health/beacon/pkg/escalation"
)

// TeleMANAS queues crisis referrals for the Tele MANAS hotline (14416).
// The actual hand-off protocol is operated by the hotline integration
// service; this stub records the referral intent and reports "queued".
type TeleMANAS struct {
	collection string
}

// NewTeleMANAS creates the hotline channel. collection names the referral
// queue namespace (BEACON_TELEMANAS_COLLECTION).
func NewTeleMANAS(collection string) *TeleMANAS {
	if collection == "" {
		collection = "telemanas_referrals"
	}
	return &TeleMANAS{collection: collection}
}

// Notify queues one referral. Honors the context's deadline like a real
// transport would so dispatcher timeout semantics hold.
func (t *TeleMANAS) Notify(ctx context.Context, userID string, rec *escalation.Record) (escalation.Delivery, error) {
	if err := ctx.Err(); err != nil {
		return escalation.Delivery{}, fmt.Errorf("telemanas: %w", err)
	}

	log.Printf("[telemanas] referral queued: user=%s score=%d level=%s record=%s queue=%s",
		userID, rec.RiskScore, rec.RiskLevel, rec.ID, t.collection)

	return escalation.Delivery{
		Channel: "tele_manas",
		Status:  "queued",
		Detail:  fmt.Sprintf("referral %s queued on %s", rec.ID, t.collection),
	}, nil
}
