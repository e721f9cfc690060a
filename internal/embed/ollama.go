package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Maroua-Bm/PDF-project/internal/chunker"
)

const (
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultOllamaModel = "paraphrase-multilingual"
)

// Ollama embeds texts with a local Ollama server's /api/embed endpoint.
type Ollama struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewOllama(baseURL, model string) *Ollama {
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	return &Ollama{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type ollamaRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
	Error      string      `json:"error,omitempty"`
}

func (o *Ollama) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	body, err := json.Marshal(ollamaRequest{Model: o.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, &ServiceError{Backend: "ollama", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, &ServiceError{Backend: "ollama", Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ServiceError{Backend: "ollama", StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", truncate(string(respBody), 200))}
	}

	var out ollamaResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, &ServiceError{Backend: "ollama", Err: fmt.Errorf("decode response: %w", err)}
	}
	if out.Error != "" {
		return nil, &ServiceError{Backend: "ollama", Err: fmt.Errorf("%s", out.Error)}
	}
	if len(out.Embeddings) != len(texts) {
		return nil, &ServiceError{Backend: "ollama", Err: fmt.Errorf("got %d embeddings for %d inputs", len(out.Embeddings), len(texts))}
	}
	return out.Embeddings, nil
}

func truncate(s string, n int) string {
	if t := chunker.TruncateRunes(s, n); t != s {
		return t + "..."
	}
	return s
}
