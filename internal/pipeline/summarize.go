package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Maroua-Bm/PDF-project/internal/chunker"
	"github.com/Maroua-Bm/PDF-project/internal/llm"
	"github.com/Maroua-Bm/PDF-project/internal/parser"
)

// DefaultSummaryBudget is the maximum number of characters sent for
// summarization.
const DefaultSummaryBudget = 15000

// Summarizer sends a document's text to a generator.
type Summarizer struct {
	parser *parser.PDFParser
	budget int
	log    *slog.Logger
}

func NewSummarizer(p *parser.PDFParser, budget int, log *slog.Logger) *Summarizer {
	if budget <= 0 {
		budget = DefaultSummaryBudget
	}
	if log == nil {
		log = slog.Default()
	}
	return &Summarizer{parser: p, budget: budget, log: log}
}

// Summarize returns gen's summary of the text of path, verbatim. Failures
// carry one of two fixed user messages; the cause is logged.
func (s *Summarizer) Summarize(ctx context.Context, path string, gen llm.Generator) (string, error) {
	log := s.log.With("path", path, "model", gen.Model())

	text, err := s.parser.ExtractText(ctx, path)
	if err != nil {
		return "", s.fail(log, "extract", err)
	}

	prompt := llm.SummaryPrompt(text, s.budget)
	log.Debug("summarizing", "chars", len([]rune(text)), "est_tokens", chunker.EstimateTokens(prompt))

	summary, err := gen.Generate(ctx, prompt)
	if err != nil {
		return "", s.fail(log, "generate", err)
	}
	log.Info("summary generated", "chars", len(summary))
	return summary, nil
}

func (s *Summarizer) fail(log *slog.Logger, op string, err error) error {
	log.Error("summarize failed", "op", op, "error", err)
	e := &Error{Kind: KindOf(err), Op: op, Err: err, Msg: MsgSummaryFailed}
	var rl *llm.RateLimitError
	if errors.As(err, &rl) {
		e.Msg = MsgRateLimited
	}
	return e
}
