package api

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/Maroua-Bm/PDF-project/internal/pipeline"
	"github.com/yuin/goldmark"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	up, err := s.saveUpload(w, r)
	if err != nil {
		s.uploadFailed(w, err)
		return
	}
	defer up.remove()

	query := strings.TrimSpace(r.FormValue("query"))
	if query == "" {
		jsonError(w, "query is required", codeBadRequest, http.StatusBadRequest)
		return
	}

	s.searchMu.Lock()
	res, err := s.searcher.Search(r.Context(), up.Path, query)
	s.searchMu.Unlock()
	if err != nil {
		s.log.Error("search failed", "file", up.Filename, "query", query, "error", err)
		s.pipelineError(w, err)
		return
	}
	writeJSON(w, pipeline.NewSearchOutput(res))
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	up, err := s.saveUpload(w, r)
	if err != nil {
		s.uploadFailed(w, err)
		return
	}
	defer up.remove()

	apiKey := r.FormValue("api_key")
	if apiKey == "" {
		apiKey = s.cfg.GeneratorAPIKey
	}
	if apiKey == "" {
		jsonError(w, "api_key is required", codeBadRequest, http.StatusBadRequest)
		return
	}
	gen, err := s.newGenerator(apiKey)
	if err != nil {
		s.log.Error("generator setup failed", "error", err)
		jsonError(w, pipeline.MsgSummaryFailed, pipeline.KindGeneric, http.StatusInternalServerError)
		return
	}

	summary, err := s.summarizer.Summarize(r.Context(), up.Path, gen)
	if err != nil {
		s.pipelineError(w, err)
		return
	}

	out := pipeline.SummaryOutput{Summary: summary}
	if r.FormValue("format") == "html" {
		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(summary), &buf); err != nil {
			s.log.Warn("render summary html", "error", err)
		} else {
			out.SummaryHTML = buf.String()
		}
	}
	writeJSON(w, out)
}

func (s *Server) pipelineError(w http.ResponseWriter, err error) {
	writeJSONStatus(w, pipeline.NewErrorOutput(err), statusFor(err))
}

func statusFor(err error) int {
	if errors.Is(err, pipeline.ErrEmptyQuery) {
		return http.StatusBadRequest
	}
	switch pipeline.KindOf(err) {
	case pipeline.KindFileOpen:
		return http.StatusUnprocessableEntity
	case pipeline.KindRateLimited:
		return http.StatusTooManyRequests
	case pipeline.KindService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
