// Package embed computes sentence embeddings through external services and
// scores them by cosine similarity.
package embed

import (
	"context"
	"fmt"
	"math"
)

// Embedder turns texts into vectors, one per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// ServiceError reports a failure of the embedding backend.
type ServiceError struct {
	Backend    string
	StatusCode int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s embeddings (status %d): %v", e.Backend, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s embeddings: %v", e.Backend, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Cosine returns the cosine similarity of a and b, or 0 when either vector is
// zero or their lengths differ.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Similarities embeds query and texts in one call and returns the cosine
// similarity of each text to the query.
func Similarities(ctx context.Context, e Embedder, query string, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	inputs := make([]string, 0, len(texts)+1)
	inputs = append(inputs, query)
	inputs = append(inputs, texts...)

	vecs, err := e.Embed(ctx, inputs)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(inputs) {
		return nil, &ServiceError{Backend: "embedder", Err: fmt.Errorf("got %d vectors for %d inputs", len(vecs), len(inputs))}
	}

	scores := make([]float64, len(texts))
	for i := range texts {
		scores[i] = Cosine(vecs[0], vecs[i+1])
	}
	return scores, nil
}

// New returns the embedder for provider ("openai" or "ollama"), or nil when
// provider is empty.
func New(provider, model, baseURL, apiKey string) (Embedder, error) {
	switch provider {
	case "":
		return nil, nil
	case "openai":
		return NewOpenAI(apiKey, model, baseURL), nil
	case "ollama":
		return NewOllama(baseURL, model), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", provider)
	}
}
