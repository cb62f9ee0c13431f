package risk

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sahayak-health/beacon/pkg/profile"
)

// fakeScorer is a canned LLM scorer for assessor tests.
type fakeScorer struct {
	score int
	err   error
	calls int
}

func (f *fakeScorer) Score(_ context.Context, _ string) (int, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.score, nil
}

func intPtr(i int) *int { return &i }

func TestAssessCombinesBothSignals(t *testing.T) {
	scorer := &fakeScorer{score: 8}
	profiles := profile.NewMemoryStore()
	a := NewAssessor(scorer, profiles)

	// keyword "hopeless" = 3, llm = 8: round(0.6*8 + 0.4*3) = 6 -> medium
	rep := a.Assess(context.Background(), "u1", "it all feels hopeless", nil)

	if rep.RiskScore != 6 {
		t.Errorf("risk score = %d, want 6", rep.RiskScore)
	}
	if rep.RiskLevel != LevelMedium {
		t.Errorf("risk level = %s, want medium", rep.RiskLevel)
	}
	if scorer.calls != 1 {
		t.Errorf("llm calls = %d, want exactly 1", scorer.calls)
	}
	if !strings.Contains(rep.Reason, "keyword=3") || !strings.Contains(rep.Reason, "llm=8") {
		t.Errorf("reason missing sub-score trace: %q", rep.Reason)
	}
}

func TestAssessLLMFailureDegradesToZero(t *testing.T) {
	// An LLM outage must never suppress the keyword signal, and must never
	// inflate the score: the llm sub-score becomes 0.
	scorer := &fakeScorer{err: errors.New("upstream timeout")}
	a := NewAssessor(scorer, profile.NewMemoryStore())

	rep := a.Assess(context.Background(), "u1", "I want to commit suicide", nil)

	// keyword 6, llm 0: round(0.4*6) = 2
	if rep.RiskScore != 2 {
		t.Errorf("degraded score = %d, want 2", rep.RiskScore)
	}
	if !strings.Contains(rep.Reason, "degraded") {
		t.Errorf("reason should note the degraded signal: %q", rep.Reason)
	}
}

func TestAssessNilScorer(t *testing.T) {
	a := NewAssessor(nil, profile.NewMemoryStore())
	rep := a.Assess(context.Background(), "u1", "it all feels hopeless", nil)

	// keyword 3, llm 0: round(0.4*3) = 1
	if rep.RiskScore != 1 {
		t.Errorf("score = %d, want 1", rep.RiskScore)
	}
}

func TestAssessPrecomputedSkipsLLMCall(t *testing.T) {
	scorer := &fakeScorer{score: 1}
	a := NewAssessor(scorer, profile.NewMemoryStore())

	rep := a.Assess(context.Background(), "u1", "no matching phrases here", intPtr(10))

	if scorer.calls != 0 {
		t.Errorf("llm calls = %d, want 0 when a precomputed score is supplied", scorer.calls)
	}
	// keyword 0, llm 10: round(6.0) = 6
	if rep.RiskScore != 6 {
		t.Errorf("score = %d, want 6", rep.RiskScore)
	}
}

func TestAssessAttachesProfile(t *testing.T) {
	profiles := profile.NewMemoryStore()
	contact := "+911234567890"
	age := 16
	profiles.Put("u1", profile.Profile{Age: &age, ParentContact: &contact})

	a := NewAssessor(nil, profiles)
	rep := a.Assess(context.Background(), "u1", "hello", nil)

	if rep.Profile.Age == nil || *rep.Profile.Age != 16 {
		t.Errorf("profile age not attached: %+v", rep.Profile)
	}
	if !strings.Contains(rep.Reason, "parent_contact=true") {
		t.Errorf("reason should record contact presence: %q", rep.Reason)
	}
}

// failingProfiles simulates a profile store outage.
type failingProfiles struct{}

func (failingProfiles) Get(context.Context, string) (profile.Profile, error) {
	return profile.Profile{}, errors.New("store down")
}

func TestAssessProfileOutageDegradesToNullProfile(t *testing.T) {
	a := NewAssessor(nil, failingProfiles{})
	rep := a.Assess(context.Background(), "u1", "it all feels hopeless", nil)

	if rep.Profile.Age != nil || rep.Profile.ParentContact != nil {
		t.Errorf("expected all-null profile, got %+v", rep.Profile)
	}
	if !strings.Contains(rep.Reason, "profile unavailable") {
		t.Errorf("reason should note the outage: %q", rep.Reason)
	}
}
