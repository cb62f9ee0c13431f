package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/sahayak-health/beacon/pkg/config"
	"github.com/sahayak-health/beacon/pkg/escalation"
	"github.com/sahayak-health/beacon/pkg/llm"
	"github.com/sahayak-health/beacon/pkg/notify"
	"github.com/sahayak-health/beacon/pkg/profile"
	"github.com/sahayak-health/beacon/pkg/risk"
)

const Version = "0.3.0"

// Engine holds the assembled crisis-detection components.
// Optional collaborators (Gemini, Postgres, Redis) degrade gracefully:
// the engine always comes up, at worst on keyword-only scoring with an
// in-memory escalation log.
type Engine struct {
	assessor   *risk.Assessor
	guard      *escalation.Guard
	dispatcher *escalation.Dispatcher
	config     *config.Config
}

// NewEngine wires the engine from config.
func NewEngine(ctx context.Context, cfg *config.Config) *Engine {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}

	// Phrase overlay - optional
	if cfg.PhrasesFile != "" {
		if err := risk.LoadPhraseOverlay(cfg.PhrasesFile); err != nil {
			log.Printf("○ Phrase overlay not loaded: %v", err)
		} else {
			log.Printf("✓ Phrase overlay loaded (%d phrases active)", risk.PhraseCount())
		}
	}

	// Gemini risk scorer - optional
	var scorer risk.LLMScorer
	if g := llm.NewGeminiScorer(cfg); g != nil {
		scorer = g
		log.Printf("✓ Gemini risk scorer enabled (model: %s)", cfg.GeminiModel)
	} else {
		log.Println("○ Gemini risk scorer disabled (no API key) - keyword signal only")
	}

	// Postgres - optional, backs profiles and the durable escalation log
	var pool *pgxpool.Pool
	if cfg.PostgresDSN != "" {
		p, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Printf("○ Postgres disabled (connect failed: %v)", err)
		} else {
			pool = p
		}
	}

	var profiles profile.Store
	if pool != nil {
		pg := profile.NewPostgresStore(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Printf("○ Postgres profile store disabled (schema: %v)", err)
			profiles = profile.NewMemoryStore()
		} else {
			profiles = pg
			log.Println("✓ Profile store: postgres")
		}
	} else {
		profiles = profile.NewMemoryStore()
		log.Println("○ Profile store: in-memory (no BEACON_POSTGRES_DSN)")
	}

	// Escalation log store preference: Redis (rolling-window native) over
	// Postgres over in-memory.
	logStore := newLogStore(ctx, cfg, pool)

	guard := escalation.NewGuard(logStore, cfg.CooldownWindow())

	hotline := notify.NewTeleMANAS(cfg.TeleMANASCollection)
	whatsapp := notify.NewWhatsApp(cfg.WhatsAppAPIURL)
	dispatcher := escalation.NewDispatcher(guard, logStore, hotline, whatsapp, cfg.WhatsAppEnabled)

	return &Engine{
		assessor:   risk.NewAssessor(scorer, profiles),
		guard:      guard,
		dispatcher: dispatcher,
		config:     cfg,
	}
}

func newLogStore(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) escalation.Store {
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("○ Redis escalation log disabled (ping failed: %v)", err)
		} else {
			log.Println("✓ Escalation log: redis")
			return escalation.NewRedisStore(client, cfg.EscalationCollection, 2*cfg.CooldownWindow())
		}
	}
	if pool != nil {
		pg := escalation.NewPostgresStore(pool, cfg.EscalationCollection)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Printf("○ Postgres escalation log disabled (schema: %v)", err)
		} else {
			log.Println("✓ Escalation log: postgres")
			return pg
		}
	}
	log.Println("○ Escalation log: in-memory (cooldown will not survive restarts)")
	return escalation.NewMemoryStore()
}

// Assess runs one assessment and, when auto-escalation is on and the level
// is medium or higher, dispatches the escalation in the same call.
func (e *Engine) Assess(ctx context.Context, userID, text string, precomputed *int) (*risk.Report, *escalation.Result) {
	report := e.assessor.Assess(ctx, userID, text, precomputed)

	if e.config.AutoEscalate && report.RiskLevel != risk.LevelLow {
		return report, e.dispatcher.Escalate(ctx, userID, report)
	}
	return report, nil
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		port := "3000"
		if len(os.Args) > 2 {
			port = os.Args[2]
		}
		runHTTPServer(port)
	case "assess":
		if len(os.Args) < 3 {
			fmt.Println("Usage: beacon assess <text>")
			os.Exit(1)
		}
		runCLIAssess(strings.Join(os.Args[2:], " "))
	case "version":
		fmt.Printf("Beacon v%s\n", Version)
		fmt.Println("Crisis Detection & Escalation Engine")
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf("Beacon v%s - Crisis Detection & Escalation Engine\n\n", Version)
	fmt.Println("Usage:")
	fmt.Println("  beacon serve [port]    Start HTTP gateway (default: 3000)")
	fmt.Println("  beacon assess <text>   Assess one utterance from the CLI")
	fmt.Println("  beacon version         Show version")
	fmt.Println("")
	fmt.Println("Environment Variables:")
	fmt.Println("  BEACON_GEMINI_API_KEY       Gemini key for the LLM risk signal")
	fmt.Println("  BEACON_POSTGRES_DSN         Postgres DSN for profiles + escalation log")
	fmt.Println("  BEACON_REDIS_ADDR           Redis address for the escalation log fast path")
	fmt.Println("  BEACON_COOLDOWN_HOURS       Escalation cooldown window (default: 24)")
	fmt.Println("  BEACON_WHATSAPP_ENABLED     Enable the parent WhatsApp channel")
	fmt.Println("  BEACON_PHRASES_FILE         YAML phrase overlay for the keyword scorer")
}

// ============================================================================
// HTTP Server Mode
// ============================================================================

type assessRequest struct {
	UserID   string `json:"user_id"`
	Text     string `json:"text"`
	LLMScore *int   `json:"llm_score,omitempty"` // precomputed LLM score, skips the Gemini call
}

type escalateRequest struct {
	UserID string       `json:"user_id"`
	Report *risk.Report `json:"risk_report"`
}

func runHTTPServer(port string) {
	cfg := config.NewDefaultConfig()
	cfg.MustValidate()

	ctx := context.Background()
	engine := NewEngine(ctx, cfg)

	app := fiber.New(fiber.Config{
		AppName: "Beacon",
	})

	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "version": Version})
	})

	// Full assessment: scoring, and - when auto-escalation is on - the
	// escalation dispatch for medium/high results in the same call.
	app.Post("/assess", func(c fiber.Ctx) error {
		var req assessRequest
		if err := c.Bind().Body(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
		}
		if req.UserID == "" || req.Text == "" {
			return c.Status(400).JSON(fiber.Map{"error": "user_id and text are required"})
		}

		report, result := engine.Assess(c.Context(), req.UserID, req.Text, req.LLMScore)
		resp := fiber.Map{"risk_report": report}
		if result != nil {
			resp["escalation"] = result
		}
		return c.JSON(resp)
	})

	// Explicit escalation with a caller-held report (the web layer may
	// assess first and decide to escalate later).
	app.Post("/escalate", func(c fiber.Ctx) error {
		var req escalateRequest
		if err := c.Bind().Body(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
		}
		if req.UserID == "" || req.Report == nil {
			return c.Status(400).JSON(fiber.Map{"error": "user_id and risk_report are required"})
		}

		result := engine.dispatcher.Escalate(c.Context(), req.UserID, req.Report)
		return c.JSON(result)
	})

	app.Get("/cooldown/:user_id", func(c fiber.Ctx) error {
		userID := c.Params("user_id")
		return c.JSON(fiber.Map{
			"user_id":        userID,
			"under_cooldown": engine.guard.IsUnderCooldown(c.Context(), userID),
			"window_hours":   int(engine.guard.Window() / time.Hour),
		})
	})

	log.Printf("Beacon gateway starting on :%s", port)
	log.Printf("Endpoints:")
	log.Printf("  GET  /health              - Health check")
	log.Printf("  POST /assess              - Risk assessment (+ auto escalation)")
	log.Printf("  POST /escalate            - Explicit escalation dispatch")
	log.Printf("  GET  /cooldown/:user_id   - Cooldown status")

	if err := app.Listen(":" + port); err != nil {
		log.Fatal(err)
	}
}

// ============================================================================
// CLI Mode
// ============================================================================

func runCLIAssess(text string) {
	cfg := config.NewDefaultConfig()
	// CLI assessments are anonymous one-shots: no profile, no dispatch.
	cfg.AutoEscalate = false

	engine := NewEngine(context.Background(), cfg)
	report, _ := engine.Assess(context.Background(), "cli", text, nil)

	out, _ := json.MarshalIndent(report, "", "  ")
	fmt.Println(string(out))
}
