package api

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/Maroua-Bm/PDF-project/internal/config"
	"github.com/Maroua-Bm/PDF-project/internal/llm"
	"github.com/Maroua-Bm/PDF-project/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Server is the HTTP front end for search and summarization.
type Server struct {
	router     chi.Router
	searcher   *pipeline.Searcher
	summarizer *pipeline.Summarizer
	stats      *llm.Stats
	log        *slog.Logger
	cfg        config.Config

	// newGenerator builds the generator for one summarize request.
	newGenerator func(apiKey string) (llm.Generator, error)

	// searchMu serializes runs that write the shared output file.
	searchMu sync.Mutex
}

// NewServer creates and configures the HTTP server.
func NewServer(searcher *pipeline.Searcher, summarizer *pipeline.Summarizer, stats *llm.Stats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		searcher:   searcher,
		summarizer: summarizer,
		stats:      stats,
		log:        log,
		cfg:        cfg,
	}
	s.newGenerator = func(apiKey string) (llm.Generator, error) {
		return llm.New(cfg.GeneratorProvider, apiKey, cfg.GeneratorModel, stats)
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Get("/static/{name}", s.handleStatic)

	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}
		if s.cfg.RequestTimeout > 0 {
			r.Use(middleware.Timeout(s.cfg.RequestTimeout))
		}

		r.Post("/api/pdf/search", s.handleSearch)
		r.Post("/api/pdf/summarize", s.handleSummarize)
		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

// handleStatic serves the highlighted output and nothing else from its
// directory.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "name") != filepath.Base(s.cfg.OutputPath) {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	http.ServeFile(w, r, s.cfg.OutputPath)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
