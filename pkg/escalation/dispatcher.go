package escalation

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/sahayak-health/beacon/pkg/risk"
)

// HotlineNotifier is the Tele MANAS channel boundary. Best-effort: errors
// are captured per channel and never propagate out of Escalate.
type HotlineNotifier interface {
	Notify(ctx context.Context, userID string, rec *Record) (Delivery, error)
}

// ParentSender is the parent WhatsApp channel boundary. Best-effort, and
// may be entirely disabled by configuration.
type ParentSender interface {
	Send(ctx context.Context, phone, message string) (Delivery, error)
}

// Dispatcher orchestrates one escalation: cooldown check, policy decision,
// audit log write, then per-channel notification fan-out. All collaborators
// are injected at construction; there are no ambient globals.
//
// States: IDLE -> COOLDOWN_CHECK -> {BLOCKED | POLICY_EVAL} -> {NO_ACTION | DISPATCHED}.
type Dispatcher struct {
	guard           *Guard
	store           Store
	hotline         HotlineNotifier
	parent          ParentSender
	whatsappEnabled bool
	now             func() time.Time
}

// NewDispatcher builds a dispatcher. hotline and parent may be nil
// (channel absent); whatsappEnabled gates the parent channel on top of
// policy.
func NewDispatcher(guard *Guard, store Store, hotline HotlineNotifier, parent ParentSender, whatsappEnabled bool) *Dispatcher {
	return &Dispatcher{
		guard:           guard,
		store:           store,
		hotline:         hotline,
		parent:          parent,
		whatsappEnabled: whatsappEnabled,
		now:             time.Now,
	}
}

// Escalate runs the dispatch state machine for one assessment.
//
// The cooldown check completes before any record write or notification
// (read-then-write ordering on the per-user key). There is no cross-request
// lock: two concurrent calls for the same user can both pass the check and
// both write - an accepted race; stricter deployments need a transactional
// check-and-insert in the store.
//
// A record is written even when the derived action is "none", so a no-op
// decision still consumes cooldown budget for the user. Carried from the
// original product behavior; see DESIGN.md before changing it.
func (d *Dispatcher) Escalate(ctx context.Context, userID string, rep *risk.Report) *Result {
	if d.guard.IsUnderCooldown(ctx, userID) {
		log.Printf("[dispatch] %s blocked by cooldown", userID)
		return &Result{Status: "cooldown", Action: ActionNone}
	}

	action := DeriveAction(rep.RiskLevel, rep.Profile, rep.RiskScore)

	rec := &Record{
		ID:        uuid.NewString(),
		UserID:    userID,
		RiskScore: rep.RiskScore,
		RiskLevel: rep.RiskLevel,
		Action:    action,
		Timestamp: d.now().UTC(),
		Consent:   rep.Profile.ParentEscalationConsent,
		Notes:     rep.Reason,
	}

	// Audit write failure must not block notification: losing a log row is
	// recoverable, a missed crisis referral is not.
	if err := d.store.Append(ctx, rec); err != nil {
		log.Printf("[dispatch] audit write failed for %s: %v", userID, err)
	}

	result := &Result{Status: "escalated", Action: action, Record: rec}

	if action.IncludesHotline() {
		result.TeleMANAS = d.notifyHotline(ctx, userID, rec)
	}
	if action.IncludesParent() {
		result.WhatsApp = d.notifyParent(ctx, rep, rec)
	}

	return result
}

// notifyHotline invokes the Tele MANAS channel with failure isolation:
// an error here must not prevent the WhatsApp attempt, and vice versa.
func (d *Dispatcher) notifyHotline(ctx context.Context, userID string, rec *Record) *Delivery {
	if d.hotline == nil {
		return &Delivery{Channel: "tele_manas", Status: "skipped", Detail: "channel not configured"}
	}
	delivery, err := d.hotline.Notify(ctx, userID, rec)
	if err != nil {
		log.Printf("[dispatch] tele_manas notify failed for %s: %v", userID, err)
		return &Delivery{Channel: "tele_manas", Status: "failed", Detail: err.Error()}
	}
	return &delivery
}

func (d *Dispatcher) notifyParent(ctx context.Context, rep *risk.Report, rec *Record) *Delivery {
	switch {
	case !d.whatsappEnabled:
		return &Delivery{Channel: "parent_whatsapp", Status: "skipped", Detail: "whatsapp disabled"}
	case d.parent == nil:
		return &Delivery{Channel: "parent_whatsapp", Status: "skipped", Detail: "channel not configured"}
	case !rep.Profile.HasParentContact():
		// DeriveAction only selects the parent channel when a contact is
		// present, but the report is caller-supplied; re-check here.
		return &Delivery{Channel: "parent_whatsapp", Status: "skipped", Detail: "no parent contact"}
	}

	msg := ComposeParentMessage(rec)
	delivery, err := d.parent.Send(ctx, *rep.Profile.ParentContact, msg)
	if err != nil {
		log.Printf("[dispatch] whatsapp send failed for %s: %v", rec.UserID, err)
		return &Delivery{Channel: "parent_whatsapp", Status: "failed", Detail: err.Error()}
	}
	return &delivery
}

// ComposeParentMessage renders the guardian notification text. The message
// deliberately carries the severity but not the utterance itself.
func ComposeParentMessage(rec *Record) string {
	return fmt.Sprintf(
		"Sahayak wellness alert: your child may need support right now (risk level: %s). "+
			"Please check in with them. If this is an emergency, call Tele MANAS at 14416.",
		rec.RiskLevel)
}
