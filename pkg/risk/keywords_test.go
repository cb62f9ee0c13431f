package risk

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDetectKeywords(t *testing.T) {
	testCases := []struct {
		name string
		text string
		want int
	}{
		{
			name: "highest weight english phrase",
			text: "I want to commit suicide",
			want: 6,
		},
		{
			name: "case insensitive",
			text: "I WANT TO COMMIT SUICIDE",
			want: 6,
		},
		{
			name: "self harm phrase",
			text: "sometimes I cut myself to feel something",
			want: 5,
		},
		{
			name: "passive death wish",
			text: "everyone would be better off dead without me, I mean better off if I was gone",
			want: 4,
		},
		{
			name: "distress marker",
			text: "it all feels hopeless",
			want: 3,
		},
		{
			name: "max wins over sum",
			text: "hopeless, worthless, and I hate myself", // three weight-3 phrases
			want: 3,
		},
		{
			name: "hindi devanagari",
			text: "मैं मरना चाहता हूं",
			want: 6,
		},
		{
			name: "hindi transliteration",
			text: "mujhe lagta hai khudkushi hi raasta hai",
			want: 6,
		},
		{
			name: "tamil",
			text: "எனக்கு சாக வேண்டும் என்று தோன்றுகிறது",
			want: 6,
		},
		{
			name: "telugu",
			text: "నాకు చావాలని ఉంది",
			want: 6,
		},
		{
			name: "benign text",
			text: "I had a lovely day at school today",
			want: 0,
		},
		{
			name: "empty text",
			text: "",
			want: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := DetectKeywords(tc.text)
			if got != tc.want {
				t.Errorf("DetectKeywords(%q) = %d, want %d", tc.text, got, tc.want)
			}
		})
	}
}

func TestDetectKeywordsDetail(t *testing.T) {
	score, phrase, lang := DetectKeywordsDetail("I want to commit suicide")
	if score != 6 {
		t.Fatalf("score = %d, want 6", score)
	}
	if phrase == "" || lang != "en" {
		t.Errorf("detail = (%q, %q), want english phrase", phrase, lang)
	}
}

func TestDetectKeywordsBounds(t *testing.T) {
	// Whatever matches, the score must stay inside [0,6].
	for _, text := range []string{"", "suicide suicide suicide", "hopeless and worthless"} {
		got := DetectKeywords(text)
		if got < 0 || got > MaxKeywordScore {
			t.Errorf("DetectKeywords(%q) = %d, out of [0,%d]", text, got, MaxKeywordScore)
		}
	}
}

func TestLoadPhraseOverlay(t *testing.T) {
	overlay := `phrases:
  - text: "giving my things away"
    language: en
    weight: 4
  - text: "over-weighted phrase"
    language: en
    weight: 99
  - text: ""
    weight: 6
`
	path := filepath.Join(t.TempDir(), "phrases.yaml")
	if err := os.WriteFile(path, []byte(overlay), 0o600); err != nil {
		t.Fatal(err)
	}

	before := PhraseCount()
	if err := LoadPhraseOverlay(path); err != nil {
		t.Fatalf("LoadPhraseOverlay: %v", err)
	}

	// Empty-text entry skipped, the other two merged.
	if got := PhraseCount(); got != before+2 {
		t.Errorf("phrase count = %d, want %d", got, before+2)
	}

	if got := DetectKeywords("she has been Giving My Things Away lately"); got != 4 {
		t.Errorf("overlay phrase score = %d, want 4", got)
	}

	// Out-of-range weights are clamped to the keyword ceiling.
	if got := DetectKeywords("over-weighted phrase"); got != MaxKeywordScore {
		t.Errorf("clamped overlay score = %d, want %d", got, MaxKeywordScore)
	}
}

func TestLoadPhraseOverlayMissingFile(t *testing.T) {
	if err := LoadPhraseOverlay(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing overlay file")
	}
}
