// Package match decides which sentences count as matches for a query.
package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Maroua-Bm/PDF-project/internal/doctree"
	"github.com/Maroua-Bm/PDF-project/internal/embed"
)

// DefaultThreshold is the minimum cosine similarity for the semantic policy.
const DefaultThreshold = 0.2

// Matcher selects matching sentences, preserving input order and duplicates.
type Matcher interface {
	Match(ctx context.Context, query string, sentences []doctree.Sentence) ([]doctree.Sentence, error)
}

// ErrNoEmbedder is returned when the semantic policy is requested without an
// embedding backend.
var ErrNoEmbedder = errors.New("semantic matching requires an embedder")

// New returns the matcher for policy ("substring" or "semantic").
func New(policy string, e embed.Embedder, threshold float64, log *slog.Logger) (Matcher, error) {
	switch policy {
	case "", "substring":
		return Substring{}, nil
	case "semantic":
		if e == nil {
			return nil, ErrNoEmbedder
		}
		return NewSemantic(e, threshold, log), nil
	default:
		return nil, fmt.Errorf("unknown match policy %q", policy)
	}
}

// Substring matches sentences containing the query, ignoring case.
type Substring struct{}

func (Substring) Match(_ context.Context, query string, sentences []doctree.Sentence) ([]doctree.Sentence, error) {
	q := strings.ToLower(query)
	var out []doctree.Sentence
	for _, s := range sentences {
		if strings.Contains(strings.ToLower(s.Text), q) {
			out = append(out, s)
		}
	}
	return out, nil
}

// Semantic matches sentences whose similarity to the query is at least the
// threshold and that contain the query as a whole word. Both must hold.
type Semantic struct {
	embedder  embed.Embedder
	threshold float64
	log       *slog.Logger
}

func NewSemantic(e embed.Embedder, threshold float64, log *slog.Logger) *Semantic {
	if log == nil {
		log = slog.Default()
	}
	return &Semantic{embedder: e, threshold: threshold, log: log}
}

// Match scores sentences one page at a time, the way they are embedded.
func (m *Semantic) Match(ctx context.Context, query string, sentences []doctree.Sentence) ([]doctree.Sentence, error) {
	var out []doctree.Sentence
	for start := 0; start < len(sentences); {
		end := start + 1
		for end < len(sentences) && sentences[end].Page == sentences[start].Page {
			end++
		}
		batch := sentences[start:end]

		scores, err := embed.Similarities(ctx, m.embedder, query, doctree.Sentences(batch))
		if err != nil {
			return nil, err
		}
		for i, s := range batch {
			m.log.Debug("similarity", "page", s.Page, "sentence", s.Text, "score", scores[i])
			if scores[i] >= m.threshold && ContainsWord(s.Text, query) {
				out = append(out, s)
			}
		}
		start = end
	}
	return out, nil
}

// ContainsWord reports whether query occurs in text, ignoring case, with a
// word boundary on each side. Letters, digits and '_' are word characters in
// any script.
func ContainsWord(text, query string) bool {
	t := strings.ToLower(text)
	q := strings.ToLower(query)
	if q == "" {
		return false
	}
	for off := 0; off <= len(t)-len(q); {
		i := strings.Index(t[off:], q)
		if i < 0 {
			return false
		}
		start := off + i
		end := start + len(q)
		if boundaryBefore(t, start, q) && boundaryAfter(t, end, q) {
			return true
		}
		_, size := utf8.DecodeRuneInString(t[start:])
		off = start + size
	}
	return false
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

// A \b boundary exists between a word and a non-word rune. When the query
// itself starts or ends with a non-word rune the outer side must be a word
// rune, matching regexp semantics.
func boundaryBefore(t string, start int, q string) bool {
	first, _ := utf8.DecodeRuneInString(q)
	prevWord := false
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(t[:start])
		prevWord = isWordRune(r)
	}
	return prevWord != isWordRune(first)
}

func boundaryAfter(t string, end int, q string) bool {
	last, _ := utf8.DecodeLastRuneInString(q)
	nextWord := false
	if end < len(t) {
		r, _ := utf8.DecodeRuneInString(t[end:])
		nextWord = isWordRune(r)
	}
	return nextWord != isWordRune(last)
}
