package escalation

import (
	"testing"

	"github.com/sahayak-health/beacon/pkg/profile"
	"github.com/sahayak-health/beacon/pkg/risk"
)

func intPtr(i int) *int          { return &i }
func boolPtr(b bool) *bool       { return &b }
func strPtr(s string) *string    { return &s }

func TestShouldEscalateToParent(t *testing.T) {
	contact := strPtr("+911234567890")

	testCases := []struct {
		name    string
		profile profile.Profile
		score   int
		want    bool
	}{
		{
			name:    "minor high risk regardless of consent",
			profile: profile.Profile{Age: intPtr(17), ParentContact: contact, ParentEscalationConsent: boolPtr(false)},
			score:   8,
			want:    true,
		},
		{
			name:    "minor high risk nil consent",
			profile: profile.Profile{Age: intPtr(12), ParentContact: contact},
			score:   7,
			want:    true,
		},
		{
			name:    "adult without consent never notified",
			profile: profile.Profile{Age: intPtr(19), ParentContact: contact, ParentEscalationConsent: boolPtr(false)},
			score:   9,
			want:    false,
		},
		{
			name:    "adult with explicit consent",
			profile: profile.Profile{Age: intPtr(22), ParentContact: contact, ParentEscalationConsent: boolPtr(true)},
			score:   8,
			want:    true,
		},
		{
			name:    "adult with nil consent",
			profile: profile.Profile{Age: intPtr(22), ParentContact: contact},
			score:   9,
			want:    false,
		},
		{
			name:    "unknown age fails safe",
			profile: profile.Profile{ParentContact: contact, ParentEscalationConsent: boolPtr(true)},
			score:   10,
			want:    false,
		},
		{
			name:    "minor without contact",
			profile: profile.Profile{Age: intPtr(15)},
			score:   9,
			want:    false,
		},
		{
			name:    "minor with empty contact",
			profile: profile.Profile{Age: intPtr(15), ParentContact: strPtr("")},
			score:   9,
			want:    false,
		},
		{
			name:    "minor below threshold",
			profile: profile.Profile{Age: intPtr(15), ParentContact: contact},
			score:   6,
			want:    false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ShouldEscalateToParent(tc.profile, tc.score)
			if got != tc.want {
				t.Errorf("ShouldEscalateToParent(%+v, %d) = %t, want %t",
					tc.profile, tc.score, got, tc.want)
			}
		})
	}
}

func TestDeriveAction(t *testing.T) {
	contact := strPtr("+911234567890")
	minor := profile.Profile{Age: intPtr(16), ParentContact: contact}
	adultNoConsent := profile.Profile{Age: intPtr(25), ParentContact: contact, ParentEscalationConsent: boolPtr(false)}

	testCases := []struct {
		name    string
		level   risk.Level
		profile profile.Profile
		score   int
		want    Action
	}{
		{
			name:    "high risk minor fires both channels",
			level:   risk.LevelHigh,
			profile: minor,
			score:   8,
			want:    ActionTeleMANASParent,
		},
		{
			name:    "high risk adult without consent fires hotline only",
			level:   risk.LevelHigh,
			profile: adultNoConsent,
			score:   9,
			want:    ActionTeleMANAS,
		},
		{
			name:    "medium risk fires nothing",
			level:   risk.LevelMedium,
			profile: minor,
			score:   5,
			want:    ActionNone,
		},
		{
			name:    "low risk fires nothing",
			level:   risk.LevelLow,
			profile: minor,
			score:   2,
			want:    ActionNone,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := DeriveAction(tc.level, tc.profile, tc.score)
			if got != tc.want {
				t.Errorf("DeriveAction(%s, _, %d) = %s, want %s", tc.level, tc.score, got, tc.want)
			}
		})
	}
}

func TestActionChannelPredicates(t *testing.T) {
	if !ActionTeleMANASParent.IncludesHotline() || !ActionTeleMANASParent.IncludesParent() {
		t.Error("composite action must include both channels")
	}
	if !ActionTeleMANAS.IncludesHotline() || ActionTeleMANAS.IncludesParent() {
		t.Error("hotline action must include only the hotline")
	}
	if ActionParentWhatsApp.IncludesHotline() || !ActionParentWhatsApp.IncludesParent() {
		t.Error("parent action must include only the parent channel")
	}
	if ActionNone.IncludesHotline() || ActionNone.IncludesParent() {
		t.Error("none must include no channels")
	}
}
