// Package config holds global settings for the Beacon crisis engine.
// All settings can be configured via environment variables or programmatically.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds global settings for the Beacon gateway.
type Config struct {
	// === Escalation Policy ===
	CooldownHours   int  // Rolling window during which repeat escalations for a user are suppressed (default: 24)
	AutoEscalate    bool // Dispatch escalation automatically when an assessment is medium or higher (default: true)
	WhatsAppEnabled bool // Enable the parent WhatsApp channel (default: false)

	// === Collection / Table Names ===
	// Namespaces for the append-only escalation log and the Tele MANAS
	// referral queue, shared across the Postgres and Redis stores.
	EscalationCollection string // default: "escalations"
	TeleMANASCollection  string // default: "telemanas_referrals"

	// === Gemini Risk Scorer ===
	// The LLM signal source. When no API key is present the scorer is
	// disabled and assessments run on the keyword signal alone.
	GeminiAPIKey     string // env: BEACON_GEMINI_API_KEY (falls back to GEMINI_API_KEY)
	GeminiModel      string // default: "gemini-2.0-flash"
	GeminiBaseURL    string // override for self-hosted proxies
	GeminiTimeoutMs  int    // per-call timeout in milliseconds (default: 8000)
	MaxConcurrentLLM int    // in-flight Gemini call bound (default: 32)

	// === Persistence ===
	PostgresDSN string // escalation log + profile store; empty = in-memory
	RedisAddr   string // escalation log fast path; empty = disabled
	RedisDB     int

	// === Notification Channels ===
	WhatsAppAPIURL string // relay endpoint for the WhatsApp stub; empty = log-only stub

	// === Keyword Scorer ===
	PhrasesFile string // optional YAML overlay merged over the baked-in phrase tables
}

// NewDefaultConfig creates a Config with sensible defaults.
// All settings can be overridden via environment variables.
func NewDefaultConfig() *Config {
	return &Config{
		CooldownHours:   clampInt(GetEnvInt("BEACON_COOLDOWN_HOURS", 24), 1, 24*30),
		AutoEscalate:    GetEnvBool("BEACON_AUTO_ESCALATE", true),
		WhatsAppEnabled: GetEnvBool("BEACON_WHATSAPP_ENABLED", false),

		EscalationCollection: GetEnv("BEACON_ESCALATION_COLLECTION", "escalations"),
		TeleMANASCollection:  GetEnv("BEACON_TELEMANAS_COLLECTION", "telemanas_referrals"),

		GeminiAPIKey:     GetEnv("BEACON_GEMINI_API_KEY", os.Getenv("GEMINI_API_KEY")),
		GeminiModel:      GetEnv("BEACON_GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiBaseURL:    GetEnv("BEACON_GEMINI_BASE_URL", ""),
		GeminiTimeoutMs:  GetEnvInt("BEACON_GEMINI_TIMEOUT_MS", 8000),
		MaxConcurrentLLM: clampInt(GetEnvInt("BEACON_MAX_CONCURRENT_LLM", 32), 1, 1024),

		PostgresDSN: GetEnv("BEACON_POSTGRES_DSN", ""),
		RedisAddr:   GetEnv("BEACON_REDIS_ADDR", ""),
		RedisDB:     GetEnvInt("BEACON_REDIS_DB", 0),

		WhatsAppAPIURL: GetEnv("BEACON_WHATSAPP_API_URL", ""),

		PhrasesFile: GetEnv("BEACON_PHRASES_FILE", ""),
	}
}

// NewOfflineConfig creates a Config for air-gapped or test deployments:
// no Gemini calls, in-memory stores, WhatsApp disabled. Assessments run on
// the deterministic keyword signal alone.
func NewOfflineConfig() *Config {
	cfg := NewDefaultConfig()
	cfg.GeminiAPIKey = ""
	cfg.PostgresDSN = ""
	cfg.RedisAddr = ""
	cfg.WhatsAppEnabled = false
	return cfg
}

// CooldownWindow returns the cooldown as a time.Duration.
func (c *Config) CooldownWindow() time.Duration {
	return time.Duration(c.CooldownHours) * time.Hour
}

// GeminiTimeout returns the per-call Gemini timeout as a time.Duration.
func (c *Config) GeminiTimeout() time.Duration {
	return time.Duration(c.GeminiTimeoutMs) * time.Millisecond
}

// Validate checks configuration consistency. In production mode
// (BEACON_ENV=production) the WhatsApp channel must have a relay URL when
// enabled; in development we warn and fall back to the log-only stub.
func (c *Config) Validate() error {
	isProduction := strings.ToLower(os.Getenv("BEACON_ENV")) == "production" ||
		strings.ToLower(os.Getenv("BEACON_ENV")) == "prod"

	if c.CooldownHours <= 0 {
		return fmt.Errorf("cooldown_hours must be positive, got %d", c.CooldownHours)
	}

	if c.WhatsAppEnabled && c.WhatsAppAPIURL == "" {
		if isProduction {
			return fmt.Errorf("BEACON_WHATSAPP_ENABLED is set but BEACON_WHATSAPP_API_URL is empty")
		}
		log.Printf("[STARTUP] Warning: WhatsApp channel enabled without a relay URL - using log-only stub")
	}

	if c.GeminiAPIKey == "" {
		log.Printf("[STARTUP] Warning: no Gemini API key - risk assessments will use the keyword signal only")
	}

	return nil
}

// MustValidate calls Validate and fatally exits if validation fails.
// Call this at startup before starting the server.
func (c *Config) MustValidate() {
	if err := c.Validate(); err != nil {
		log.Fatalf("[STARTUP] FATAL: Configuration validation failed: %v", err)
	}
	log.Println("[STARTUP] Configuration validated successfully")
}

// clampInt ensures a value is within bounds
func clampInt(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Environment helpers. Exported so other packages can read BEACON_* vars
// the same way; unparseable values fall back rather than fail, so a typo in
// one variable cannot keep the gateway from starting.

// GetEnv returns the value of an environment variable, or fallback when the
// variable is unset or empty.
func GetEnv(key, fallback string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	return v
}

// GetEnvBool parses an environment variable as a boolean.
func GetEnvBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}

// GetEnvInt parses an environment variable as an integer.
func GetEnvInt(key string, fallback int) int {
	i, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return i
}

// GetEnvFloat parses an environment variable as a float64.
func GetEnvFloat(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}
	return f
}
