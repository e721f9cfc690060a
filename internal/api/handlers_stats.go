package api

import (
	"net/http"

	"github.com/Maroua-Bm/PDF-project/internal/llm"
)

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "llm stats unavailable", codeUnavailable, http.StatusServiceUnavailable)
		return
	}

	model := s.cfg.GeneratorModel
	if model == "" {
		model = llm.DefaultModel(s.cfg.GeneratorProvider)
	}
	writeJSON(w, map[string]any{
		"provider": s.cfg.GeneratorProvider,
		"model":    model,
		"stats":    s.stats.Snapshot(),
	})
}
