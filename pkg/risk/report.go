package risk

import "github.com/sahayak-health/beacon/pkg/profile"

// Report is the ephemeral outcome of one risk assessment. The score is
// always the rounded weighted combination of exactly two bounded
// sub-scores, clamped into [0,10]; the level is derived from it.
type Report struct {
	UserID    string          `json:"user_id"`
	RiskScore int             `json:"risk_score"` // 0..10
	RiskLevel Level           `json:"risk_level"`
	Reason    string          `json:"reason"` // human-readable trace of contributing signals
	Profile   profile.Profile `json:"user_profile"`
}
