package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Match policies.
const (
	PolicySubstring = "substring"
	PolicySemantic  = "semantic"
)

type Config struct {
	Port string

	// Output
	OutputPath    string
	PublicBaseURL string

	// Auth for the HTTP front end (empty disables it)
	APIKey string

	// Matching
	MatchPolicy         string
	SimilarityThreshold float64

	// Embeddings
	EmbedProvider string
	EmbedModel    string
	EmbedURL      string
	OpenAIAPIKey  string

	// Summarization
	GeneratorProvider string
	GeneratorModel    string
	GeneratorAPIKey   string
	SummaryCharBudget int

	// Upload limits
	UploadDir      string
	MaxUploadBytes int64

	// Timeout applied to a whole run (0 means none)
	RequestTimeout time.Duration

	LogLevel slog.Level

	// PDF
	PDFFallbackPdftotext bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "5001"),

		OutputPath:    envOr("OUTPUT_PATH", "shared/highlighted.pdf"),
		PublicBaseURL: strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),

		APIKey: os.Getenv("API_KEY"),

		MatchPolicy:         strings.ToLower(envOr("MATCH_POLICY", PolicySubstring)),
		SimilarityThreshold: envFloat("SIMILARITY_THRESHOLD", 0.2),

		EmbedProvider: strings.ToLower(os.Getenv("EMBED_PROVIDER")),
		EmbedModel:    os.Getenv("EMBED_MODEL"),
		EmbedURL:      os.Getenv("EMBED_URL"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),

		GeneratorProvider: strings.ToLower(envOr("GENERATOR_PROVIDER", "gemini")),
		GeneratorModel:    os.Getenv("GENERATOR_MODEL"),
		GeneratorAPIKey:   envOr("GENERATOR_API_KEY", os.Getenv("GEMINI_API_KEY")),
		SummaryCharBudget: envInt("SUMMARY_CHAR_BUDGET", 15000),

		UploadDir:      envOr("UPLOAD_DIR", "uploads"),
		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		RequestTimeout: envDuration("REQUEST_TIMEOUT", 0),

		LogLevel: envLevel("LOG_LEVEL", slog.LevelInfo),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", false),
	}

	if cfg.SummaryCharBudget <= 0 {
		cfg.SummaryCharBudget = 15000
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.RequestTimeout < 0 {
		cfg.RequestTimeout = 0
	}
	if cfg.GeneratorAPIKey == "" && cfg.GeneratorProvider == "openai" {
		cfg.GeneratorAPIKey = cfg.OpenAIAPIKey
	}

	return cfg
}

func (c Config) Validate() error {
	if c.OutputPath == "" {
		return fmt.Errorf("OUTPUT_PATH must not be empty")
	}
	switch c.MatchPolicy {
	case PolicySubstring:
	case PolicySemantic:
		if c.EmbedProvider == "" {
			return fmt.Errorf("EMBED_PROVIDER is required when MATCH_POLICY=%s", PolicySemantic)
		}
	default:
		return fmt.Errorf("unknown MATCH_POLICY %q (want %s or %s)", c.MatchPolicy, PolicySubstring, PolicySemantic)
	}
	if c.SimilarityThreshold < -1 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("SIMILARITY_THRESHOLD must be within [-1, 1], got %g", c.SimilarityThreshold)
	}
	switch c.EmbedProvider {
	case "", "ollama":
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when EMBED_PROVIDER=openai")
		}
	default:
		return fmt.Errorf("unknown EMBED_PROVIDER %q", c.EmbedProvider)
	}
	switch c.GeneratorProvider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("unknown GENERATOR_PROVIDER %q", c.GeneratorProvider)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envLevel(key string, fallback slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(v)); err == nil {
			return lvl
		}
	}
	return fallback
}
