// Package profile resolves the user attributes the escalation policy needs:
// age, parent contact, and parent-escalation consent. It is a thin wrapper
// over persistence; a missing or unreachable profile degrades to all-null
// fields, which the policy treats as "cannot verify, do not notify parent".
package profile

import "context"

// Profile holds the policy-relevant attributes of a user. All fields are
// nullable: absence of a value is meaningful (unknown age blocks parent
// escalation outright).
type Profile struct {
	Age                     *int    `json:"age"`
	ParentEscalationConsent *bool   `json:"parent_escalation_consent"`
	ParentContact           *string `json:"parent_contact"`
}

// HasParentContact reports whether a non-empty parent contact is on file.
func (p Profile) HasParentContact() bool {
	return p.ParentContact != nil && *p.ParentContact != ""
}

// IsMinor reports whether the user is a verified minor. Unknown age is NOT
// a minor: minority must be positively established before the mandatory
// guardian-notification rule applies.
func (p Profile) IsMinor() bool {
	return p.Age != nil && *p.Age < 18
}

// Store resolves user profiles.
type Store interface {
	// Get returns the profile for a user. A user with no stored profile
	// yields a zero Profile and no error; errors indicate the store
	// itself is unavailable.
	Get(ctx context.Context, userID string) (Profile, error)
}
