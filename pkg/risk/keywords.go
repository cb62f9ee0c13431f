// Package risk implements the crisis risk scoring pipeline: a deterministic
// multilingual keyword scorer, a weighted combiner fusing it with the LLM
// signal, and the assessor that orchestrates both into a RiskReport.
//
// Design principles:
// - COMPILE ONCE: phrase tables are built at package init, not per-request
// - MAX NOT SUM: the keyword score is the single most severe matched phrase,
//   so incidental repetition never inflates risk
// - FAIL-SAFE LOW: any scorer infrastructure fault degrades to 0, never up
package risk

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// MaxKeywordScore is the ceiling of the keyword signal.
const MaxKeywordScore = 6

// Phrase is a single weighted crisis phrase in one language.
type Phrase struct {
	Text     string `yaml:"text"`
	Language string `yaml:"language"`
	Weight   int    `yaml:"weight"` // 0..6
}

// phraseRegistry holds the active phrase tables. Guarded because operator
// overlays can be merged in at startup while the gateway is already serving.
type phraseRegistry struct {
	mu         sync.RWMutex
	byLanguage map[string][]Phrase
}

var registry = &phraseRegistry{byLanguage: builtinPhrases()}

// builtinPhrases returns the baked-in crisis phrase tables.
// Weights: 6 = explicit suicidal intent, 5 = self-harm / loss of will to
// live, 4 = passive death wish, 3 = severe distress markers, 2 = depressive
// language. Phrases are stored lowercase and NFC-normalized; matching is a
// case-insensitive substring check.
func builtinPhrases() map[string][]Phrase {
	tables := map[string][]Phrase{
		"en": {
			{Text: "suicide", Weight: 6},
			{Text: "commit suicide", Weight: 6},
			{Text: "kill myself", Weight: 6},
			{Text: "end my life", Weight: 6},
			{Text: "want to die", Weight: 6},
			{Text: "take my own life", Weight: 6},
			{Text: "self harm", Weight: 5},
			{Text: "self-harm", Weight: 5},
			{Text: "hurt myself", Weight: 5},
			{Text: "cut myself", Weight: 5},
			{Text: "overdose", Weight: 5},
			{Text: "no reason to live", Weight: 5},
			{Text: "better off dead", Weight: 4},
			{Text: "want to disappear", Weight: 4},
			{Text: "can't go on", Weight: 4},
			{Text: "give up on life", Weight: 4},
			{Text: "hopeless", Weight: 3},
			{Text: "worthless", Weight: 3},
			{Text: "hate myself", Weight: 3},
			{Text: "no one cares", Weight: 3},
			{Text: "so depressed", Weight: 2},
			{Text: "completely alone", Weight: 2},
		},
		"hi": {
			{Text: "आत्महत्या", Weight: 6},
			{Text: "खुदकुशी", Weight: 6},
			{Text: "मरना चाहता", Weight: 6},
			{Text: "मरना चाहती", Weight: 6},
			{Text: "जान दे दूंगा", Weight: 6},
			{Text: "जीना नहीं चाहता", Weight: 5},
			{Text: "जीना नहीं चाहती", Weight: 5},
			{Text: "खुद को चोट", Weight: 5},
			{Text: "कोई उम्मीद नहीं", Weight: 3},
			{Text: "atmahatya", Weight: 6},
			{Text: "khudkushi", Weight: 6},
			{Text: "marna chahta", Weight: 6},
			{Text: "marna chahti", Weight: 6},
			{Text: "jeena nahi chahta", Weight: 5},
		},
		"ta": {
			{Text: "தற்கொலை", Weight: 6},
			{Text: "சாக வேண்டும்", Weight: 6},
			{Text: "உயிரை விட", Weight: 6},
			{Text: "வாழ விரும்பவில்லை", Weight: 5},
			{Text: "என்னை காயப்படுத்த", Weight: 5},
			{Text: "நம்பிக்கை இல்லை", Weight: 3},
			{Text: "tharkolai", Weight: 6},
			{Text: "saaga vendum", Weight: 6},
		},
		"te": {
			{Text: "ఆత్మహత్య", Weight: 6},
			{Text: "చనిపోవాలని", Weight: 6},
			{Text: "చావాలని ఉంది", Weight: 6},
			{Text: "బతకాలని లేదు", Weight: 5},
			{Text: "గాయపరచుకోవాలని", Weight: 5},
			{Text: "ఆశ లేదు", Weight: 3},
			{Text: "chanipovali", Weight: 6},
		},
	}

	// Normalize once at init so matching is a plain Contains.
	for lang, phrases := range tables {
		for i := range phrases {
			phrases[i].Text = canonical(phrases[i].Text)
			phrases[i].Language = lang
		}
	}
	return tables
}

// canonical lowercases and NFC-normalizes text. Hindi/Tamil/Telugu input
// arrives in mixed normalization forms depending on the client keyboard.
func canonical(text string) string {
	return strings.ToLower(norm.NFC.String(text))
}

// DetectKeywords scores free text against the phrase tables of every
// supported language and returns the maximum matched weight, 0..6.
// Absence of matches yields 0. Pure function.
func DetectKeywords(text string) int {
	score, _, _ := DetectKeywordsDetail(text)
	return score
}

// DetectKeywordsDetail is DetectKeywords plus the matched phrase and its
// language, for assessment reason traces.
func DetectKeywordsDetail(text string) (score int, phrase, language string) {
	haystack := canonical(text)

	registry.mu.RLock()
	defer registry.mu.RUnlock()

	for lang, phrases := range registry.byLanguage {
		for _, p := range phrases {
			if p.Weight > score && strings.Contains(haystack, p.Text) {
				score, phrase, language = p.Weight, p.Text, lang
				if score >= MaxKeywordScore {
					return score, phrase, language
				}
			}
		}
	}
	return score, phrase, language
}

// phraseFile is the YAML overlay format:
//
//	phrases:
//	  - text: "..."
//	    language: en
//	    weight: 5
type phraseFile struct {
	Phrases []Phrase `yaml:"phrases"`
}

// LoadPhraseOverlay merges operator-supplied phrases from a YAML file over
// the baked-in tables. Weights outside [0,6] are clamped; entries without
// text are skipped with a warning.
func LoadPhraseOverlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("phrase overlay: %w", err)
	}

	var f phraseFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("phrase overlay %s: %w", path, err)
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	added := 0
	for _, p := range f.Phrases {
		if strings.TrimSpace(p.Text) == "" {
			log.Printf("[keywords] skipping overlay entry with empty text")
			continue
		}
		if p.Language == "" {
			p.Language = "en"
		}
		if p.Weight < 0 {
			p.Weight = 0
		}
		if p.Weight > MaxKeywordScore {
			p.Weight = MaxKeywordScore
		}
		p.Text = canonical(p.Text)
		registry.byLanguage[p.Language] = append(registry.byLanguage[p.Language], p)
		added++
	}

	log.Printf("[keywords] merged %d overlay phrases from %s", added, path)
	return nil
}

// PhraseCount returns the total number of active phrases across languages.
func PhraseCount() int {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	n := 0
	for _, phrases := range registry.byLanguage {
		n += len(phrases)
	}
	return n
}
