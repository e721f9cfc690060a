// Package llm holds the text generation clients used for summarization.
package llm

import (
	"context"
	"fmt"

	"github.com/Maroua-Bm/PDF-project/internal/chunker"
)

// Generator turns a prompt into generated text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

// RateLimitError reports that the provider rejected the call for quota or
// rate reasons (HTTP 429, RESOURCE_EXHAUSTED).
type RateLimitError struct {
	StatusCode int
	Message    string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// ServiceError is any other non-success answer from the provider.
type ServiceError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s", e.Provider, truncate(e.Message, 200))
	}
	return fmt.Sprintf("%s status %d: %s", e.Provider, e.StatusCode, truncate(e.Message, 200))
}

// New builds the generator for provider. An empty model picks the provider
// default.
func New(provider, apiKey, model string, stats *Stats) (Generator, error) {
	switch provider {
	case "", "gemini":
		c := NewGeminiClient(apiKey, model)
		c.Stats = stats
		return c, nil
	case "openai":
		c := NewOpenAIClient(apiKey, model)
		c.Stats = stats
		return c, nil
	default:
		return nil, fmt.Errorf("unknown generator provider %q", provider)
	}
}

// DefaultModel is the model used for provider when none is configured.
func DefaultModel(provider string) string {
	if provider == "openai" {
		return DefaultOpenAIModel
	}
	return DefaultGeminiModel
}

func truncate(s string, n int) string {
	if t := chunker.TruncateRunes(s, n); t != s {
		return t + "..."
	}
	return s
}
