package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Maroua-Bm/PDF-project/internal/annotate"
	"github.com/Maroua-Bm/PDF-project/internal/api"
	"github.com/Maroua-Bm/PDF-project/internal/config"
	"github.com/Maroua-Bm/PDF-project/internal/embed"
	"github.com/Maroua-Bm/PDF-project/internal/llm"
	"github.com/Maroua-Bm/PDF-project/internal/match"
	"github.com/Maroua-Bm/PDF-project/internal/parser"
	"github.com/Maroua-Bm/PDF-project/internal/pipeline"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

const usage = `usage:
  pdfsearch search <pdf_path> <query>
  pdfsearch summarize <pdf_path> <api_key>
  pdfsearch serve
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg := config.Load()
	log := slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return exitUsage
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		return emit(stdout, pipeline.NewErrorOutput(err), exitFailure)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch args[0] {
	case "search":
		if len(args) != 3 {
			fmt.Fprint(stderr, usage)
			return exitUsage
		}
		return runSearch(ctx, cfg, log, args[1], args[2], stdout)
	case "summarize":
		if len(args) != 3 {
			fmt.Fprint(stderr, usage)
			return exitUsage
		}
		return runSummarize(ctx, cfg, log, args[1], args[2], stdout)
	case "serve":
		if err := serve(ctx, cfg, log); err != nil {
			log.Error("server error", "error", err)
			return exitFailure
		}
		return exitOK
	default:
		fmt.Fprintf(stderr, "unknown command %q\n%s", args[0], usage)
		return exitUsage
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}

func newSearcher(cfg config.Config, p *parser.PDFParser, log *slog.Logger) (*pipeline.Searcher, error) {
	embedder, err := embed.New(cfg.EmbedProvider, cfg.EmbedModel, cfg.EmbedURL, cfg.OpenAIAPIKey)
	if err != nil {
		return nil, err
	}
	m, err := match.New(cfg.MatchPolicy, embedder, cfg.SimilarityThreshold, log)
	if err != nil {
		return nil, err
	}
	s := pipeline.NewSearcher(p, m, annotate.NewHighlighter(log), cfg.OutputPath, log)
	s.PublicBaseURL = cfg.PublicBaseURL
	return s, nil
}

func runSearch(ctx context.Context, cfg config.Config, log *slog.Logger, path, query string, stdout io.Writer) int {
	ctx, cancel := withTimeout(ctx, cfg.RequestTimeout)
	defer cancel()

	searcher, err := newSearcher(cfg, parser.NewPDFParser(cfg.PDFFallbackPdftotext, log), log)
	if err != nil {
		log.Error("search setup failed", "error", err)
		return emit(stdout, pipeline.NewErrorOutput(err), exitFailure)
	}

	res, err := searcher.Search(ctx, path, query)
	if err != nil {
		log.Error("search failed", "path", path, "query", query, "error", err)
		return emit(stdout, pipeline.NewErrorOutput(err), exitFailure)
	}
	return emit(stdout, pipeline.NewSearchOutput(res), exitOK)
}

func runSummarize(ctx context.Context, cfg config.Config, log *slog.Logger, path, apiKey string, stdout io.Writer) int {
	ctx, cancel := withTimeout(ctx, cfg.RequestTimeout)
	defer cancel()

	gen, err := llm.New(cfg.GeneratorProvider, apiKey, cfg.GeneratorModel, nil)
	if err != nil {
		log.Error("generator setup failed", "error", err)
		return emit(stdout, pipeline.ErrorOutput{Error: pipeline.MsgSummaryFailed, Code: pipeline.KindGeneric}, exitFailure)
	}

	s := pipeline.NewSummarizer(parser.NewPDFParser(cfg.PDFFallbackPdftotext, log), cfg.SummaryCharBudget, log)
	summary, err := s.Summarize(ctx, path, gen)
	if err != nil {
		return emit(stdout, pipeline.NewErrorOutput(err), exitFailure)
	}
	return emit(stdout, pipeline.SummaryOutput{Summary: summary}, exitOK)
}

func serve(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	p := parser.NewPDFParser(cfg.PDFFallbackPdftotext, log)
	searcher, err := newSearcher(cfg, p, log)
	if err != nil {
		return err
	}
	if searcher.PublicBaseURL == "" {
		searcher.PublicBaseURL = "http://localhost:" + cfg.Port
	}
	summarizer := pipeline.NewSummarizer(p, cfg.SummaryCharBudget, log)
	stats := llm.NewStats(time.Hour)

	srv := api.NewServer(searcher, summarizer, stats, log, cfg)
	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		<-ctx.Done()
		log.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting pdfsearch", "port", cfg.Port, "match_policy", cfg.MatchPolicy, "output", cfg.OutputPath)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// emit writes v as the single JSON object on stdout and returns code.
func emit(stdout io.Writer, v any, code int) int {
	enc := json.NewEncoder(stdout)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return exitFailure
	}
	return code
}
