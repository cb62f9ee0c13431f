package escalation

import (
	"github.com/sahayak-health/beacon/pkg/profile"
	"github.com/sahayak-health/beacon/pkg/risk"
)

// parentThreshold is the minimum combined risk score at which the parent
// channel can fire. Matches the "high" level boundary.
const parentThreshold = 7

// ShouldEscalateToParent is the pure parent-notification decision.
// Rules, evaluated in order:
//  1. Unknown age: never notify a parent. Minority cannot be verified, and
//     notifying a guardian of an adult without consent is the worse error.
//  2. Verified minor with a contact on file and score >= 7: notify
//     regardless of consent. Guardian notification is mandatory at high
//     risk for minors.
//  3. Adult with explicit consent, a contact on file, and score >= 7:
//     notify. Absent consent, adult autonomy wins.
//  4. Otherwise: do not notify.
func ShouldEscalateToParent(p profile.Profile, riskScore int) bool {
	if p.Age == nil {
		return false
	}
	if !p.HasParentContact() || riskScore < parentThreshold {
		return false
	}
	if *p.Age < 18 {
		return true
	}
	return p.ParentEscalationConsent != nil && *p.ParentEscalationConsent
}

// DeriveAction composes the escalation action for one assessment.
// The Tele MANAS hotline fires at high risk level, never consent-gated:
// professional crisis-line contact is always appropriate at high severity.
func DeriveAction(level risk.Level, p profile.Profile, riskScore int) Action {
	hotline := level == risk.LevelHigh
	parent := ShouldEscalateToParent(p, riskScore)

	switch {
	case hotline && parent:
		return ActionTeleMANASParent
	case hotline:
		return ActionTeleMANAS
	case parent:
		return ActionParentWhatsApp
	default:
		return ActionNone
	}
}
