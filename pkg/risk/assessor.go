package risk

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/sahayak-health/beacon/pkg/profile"
)

// LLMScorer is the opaque LLM risk capability: text in, integer 0..10 out.
// Calls are made at most once per assessment and may fail; the assessor
// degrades to 0 on any error.
type LLMScorer interface {
	Score(ctx context.Context, text string) (int, error)
}

// Assessor orchestrates one risk assessment: keyword and LLM signals
// computed concurrently, fused by the combiner, profile attached.
// All collaborators are injected; a nil LLM scorer means keyword-only
// assessments (the scorer contributes 0).
type Assessor struct {
	llm      LLMScorer
	profiles profile.Store
}

// NewAssessor creates an assessor. llm may be nil; profiles must not be.
func NewAssessor(llm LLMScorer, profiles profile.Store) *Assessor {
	return &Assessor{llm: llm, profiles: profiles}
}

type llmOutcome struct {
	score int
	note  string // non-empty when the signal is degraded
}

// Assess produces a RiskReport for one utterance. It never returns an
// error: every collaborator failure is converted into a degraded signal
// and noted in the reason string. precomputed, when non-nil, replaces the
// LLM call (the web layer may already hold a score for this utterance).
func (a *Assessor) Assess(ctx context.Context, userID, text string, precomputed *int) *Report {
	// The two signal sources have no data dependency; run the LLM call
	// concurrently with the keyword scan.
	llmCh := make(chan llmOutcome, 1)
	go func() {
		llmCh <- a.llmScore(ctx, text, precomputed)
	}()

	kwScore, kwPhrase, kwLang := DetectKeywordsDetail(text)
	llm := <-llmCh

	var notes []string
	if llm.note != "" {
		notes = append(notes, llm.note)
	}

	prof, err := a.profiles.Get(ctx, userID)
	if err != nil {
		log.Printf("[assess] profile lookup failed for %s: %v", userID, err)
		prof = profile.Profile{}
		notes = append(notes, "profile unavailable")
	}

	score := CombineScores(kwScore, llm.score)
	level := ClassifyLevel(score)

	reason := fmt.Sprintf("keyword=%d llm=%d combined=%d parent_contact=%t",
		kwScore, llm.score, score, prof.HasParentContact())
	if kwPhrase != "" {
		reason += fmt.Sprintf(" matched=%q lang=%s", kwPhrase, kwLang)
	}
	if len(notes) > 0 {
		reason += " degraded: " + strings.Join(notes, ", ")
	}

	return &Report{
		UserID:    userID,
		RiskScore: score,
		RiskLevel: level,
		Reason:    reason,
		Profile:   prof,
	}
}

// llmScore resolves the LLM sub-score: precomputed value if supplied,
// otherwise one scorer call. Any failure yields 0 - fail-safe low, never
// fail-open to a high score - without suppressing the keyword signal.
func (a *Assessor) llmScore(ctx context.Context, text string, precomputed *int) llmOutcome {
	if precomputed != nil {
		return llmOutcome{score: clampScore(*precomputed)}
	}
	if a.llm == nil {
		return llmOutcome{note: "llm scorer disabled"}
	}
	score, err := a.llm.Score(ctx, text)
	if err != nil {
		log.Printf("[assess] llm scorer failed: %v", err)
		return llmOutcome{note: "llm scorer unavailable"}
	}
	return llmOutcome{score: clampScore(score)}
}

func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 10 {
		return 10
	}
	return s
}
