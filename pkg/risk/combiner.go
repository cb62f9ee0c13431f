package risk

import "math"

// Level is the bucketed classification of a combined risk score.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Signal fusion weights. The LLM signal is the more context-aware of the
// two; the deterministic keyword match anchors against LLM failure and
// drift. These are fixed policy, not tunables.
const (
	llmWeight     = 0.6
	keywordWeight = 0.4
)

// CombineScores fuses the keyword score (0..6) and the LLM score (0..10)
// into a single 0..10 risk score: round(0.6*llm + 0.4*keyword), clamped.
func CombineScores(keywordScore, llmScore int) int {
	combined := int(math.Round(llmWeight*float64(llmScore) + keywordWeight*float64(keywordScore)))
	if combined < 0 {
		return 0
	}
	if combined > 10 {
		return 10
	}
	return combined
}

// ClassifyLevel buckets a risk score into low/medium/high.
// Boundaries are closed intervals: [0,3] low, [4,6] medium, [7,10] high.
func ClassifyLevel(score int) Level {
	switch {
	case score >= 7:
		return LevelHigh
	case score >= 4:
		return LevelMedium
	default:
		return LevelLow
	}
}
