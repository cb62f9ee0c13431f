// Package llm implements the Gemini-backed risk scorer: the opaque
// collaborator that estimates a 0..10 crisis risk for a user utterance.
// The scorer is fallible by contract; callers must treat any error as a
// zero score (fail-safe low).
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sahayak-health/beacon/pkg/config"
	"github.com/sahayak-health/beacon/pkg/httputil"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// riskPrompt instructs the model to emit a bare integer. Kept deliberately
// terse: a longer rubric measurably increases non-numeric responses on
// small models.
const riskPrompt = `You are a clinical triage signal for a mental-wellness assistant.
Rate the suicide/self-harm risk expressed in the USER MESSAGE on an integer scale:
0 = no distress, 3 = mild distress, 5 = significant distress, 7 = self-harm ideation, 10 = acute suicidal intent with plan.
Respond with a SINGLE integer 0-10 and nothing else.

USER MESSAGE: %s`

// GeminiScorer calls the Gemini native REST API
// (https://ai.google.dev/api/rest) to score one utterance.
type GeminiScorer struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	sem     *httputil.Semaphore
}

// NewGeminiScorer builds a scorer from config. Returns nil when no API key
// is configured; the assessor treats a nil scorer as a disabled signal.
func NewGeminiScorer(cfg *config.Config) *GeminiScorer {
	if cfg == nil || cfg.GeminiAPIKey == "" {
		return nil
	}

	baseURL := cfg.GeminiBaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.GeminiModel
	if model == "" {
		model = "gemini-2.0-flash"
	}

	return &GeminiScorer{
		apiKey:  cfg.GeminiAPIKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httputil.NewClient(cfg.GeminiTimeout()),
		sem:     httputil.NewSemaphore(cfg.MaxConcurrentLLM),
	}
}

// Gemini API request/response structures
type geminiRequest struct {
	Contents         []geminiContent       `json:"contents"`
	GenerationConfig *geminiGenConfig      `json:"generationConfig,omitempty"`
	SafetySettings   []geminiSafetySetting `json:"safetySettings,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiSafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

var reInteger = regexp.MustCompile(`\d+`)

// Score rates the crisis risk of text on 0..10. At most one API call is
// made per invocation; concurrency is bounded by the shared semaphore so an
// assessment burst cannot pile unbounded Gemini requests.
func (g *GeminiScorer) Score(ctx context.Context, text string) (int, error) {
	if err := g.sem.Acquire(ctx); err != nil {
		return 0, fmt.Errorf("gemini: acquire slot: %w", err)
	}
	defer g.sem.Release()

	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: fmt.Sprintf(riskPrompt, text)}}},
		},
		GenerationConfig: &geminiGenConfig{
			Temperature:     0,
			MaxOutputTokens: 8,
		},
		// Crisis language trips Gemini's own content filters, which would
		// blank exactly the responses we need. Scoring is permitted use;
		// disable the category filters for this call.
		SafetySettings: []geminiSafetySetting{
			{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_NONE"},
			{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_NONE"},
			{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_NONE"},
			{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_NONE"},
		},
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return 0, fmt.Errorf("gemini: marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)

	raw, err := g.call(ctx, endpoint, b)
	if err != nil {
		return 0, err
	}
	return parseScore(raw)
}

// call performs the HTTP exchange with one retry on transient failures
// (connection errors, 429, 5xx). Client-side 4xx errors are not retried.
func (g *GeminiScorer) call(ctx context.Context, endpoint string, body []byte) (string, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(500 * time.Millisecond):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("gemini: create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := g.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("gemini: http request: %w", err)
			continue
		}

		respBody, err := httputil.ReadResponseBody(resp.Body, httputil.MaxResponseSize)
		httputil.DrainAndClose(resp.Body)
		if err != nil {
			lastErr = fmt.Errorf("gemini: read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("gemini: %d: %s", resp.StatusCode, truncate(respBody, 200))
			continue
		}
		if resp.StatusCode/100 != 2 {
			return "", fmt.Errorf("gemini: %d: %s", resp.StatusCode, truncate(respBody, 200))
		}

		var out geminiResponse
		if err := json.Unmarshal(respBody, &out); err != nil {
			return "", fmt.Errorf("gemini: decode response: %w", err)
		}
		if out.Error != nil {
			return "", fmt.Errorf("gemini: api error %d %s", out.Error.Code, out.Error.Message)
		}
		if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
			return "", errors.New("gemini: empty candidates")
		}
		return strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text), nil
	}
	return "", lastErr
}

// parseScore extracts the first integer from the model output and clamps it
// to [0,10]. Models occasionally wrap the number ("Score: 7") despite the
// prompt; tolerate that rather than fail the whole assessment.
func parseScore(raw string) (int, error) {
	match := reInteger.FindString(raw)
	if match == "" {
		return 0, fmt.Errorf("gemini: no integer in response %q", truncateStr(raw, 80))
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, fmt.Errorf("gemini: parse %q: %w", match, err)
	}
	if n < 0 {
		n = 0
	}
	if n > 10 {
		n = 10
	}
	return n, nil
}

func truncate(b []byte, n int) string {
	return truncateStr(string(b), n)
}

func truncateStr(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
