// Package escalation decides whether and how a risk assessment turns into
// side effects: a Tele MANAS hotline referral, a parent WhatsApp message,
// both, or none. It owns the append-only escalation log and the per-user
// cooldown derived from it.
package escalation

import (
	"strings"
	"time"

	"github.com/sahayak-health/beacon/pkg/risk"
)

// Action is the combination of notification channels an assessment triggers.
type Action string

const (
	ActionNone            Action = "none"
	ActionTeleMANAS       Action = "tele_manas"
	ActionParentWhatsApp  Action = "parent_whatsapp"
	ActionTeleMANASParent Action = "tele_manas+parent"
)

// IncludesHotline reports whether the action triggers the Tele MANAS channel.
func (a Action) IncludesHotline() bool {
	return strings.Contains(string(a), "tele_manas")
}

// IncludesParent reports whether the action triggers the parent channel.
func (a Action) IncludesParent() bool {
	return strings.Contains(string(a), "parent")
}

// Record is one entry in the append-only escalation log. Records are
// created exactly once per dispatched assessment (never when blocked by
// cooldown), never mutated, and read back only by the Cooldown Guard.
type Record struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	RiskScore int        `json:"risk_score"`
	RiskLevel risk.Level `json:"risk_level"`
	Action    Action     `json:"action"`
	Timestamp time.Time  `json:"timestamp"` // UTC
	Consent   *bool      `json:"consent"`
	Notes     string     `json:"notes"`
}

// Delivery is the per-channel outcome of a best-effort notification.
type Delivery struct {
	Channel string `json:"channel"`
	Status  string `json:"status"` // "sent", "queued", "stubbed", "failed", "skipped"
	Detail  string `json:"detail,omitempty"`
}

// Result is the terminal outcome of one Escalate call.
type Result struct {
	Status    string    `json:"status"` // "cooldown" or "escalated"
	Action    Action    `json:"action"`
	TeleMANAS *Delivery `json:"telemanas_result,omitempty"`
	WhatsApp  *Delivery `json:"whatsapp_result,omitempty"`
	Record    *Record   `json:"escalation_doc,omitempty"`
}
