// Package pipeline composes extraction, matching and annotation into the
// search and summarize operations.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Maroua-Bm/PDF-project/internal/annotate"
	"github.com/Maroua-Bm/PDF-project/internal/chunker"
	"github.com/Maroua-Bm/PDF-project/internal/doctree"
	"github.com/Maroua-Bm/PDF-project/internal/match"
	"github.com/Maroua-Bm/PDF-project/internal/parser"
)

// Searcher runs a query against a PDF and writes the highlighted copy.
type Searcher struct {
	parser      *parser.PDFParser
	matcher     match.Matcher
	highlighter *annotate.Highlighter
	log         *slog.Logger

	// OutputPath is overwritten on every run.
	OutputPath    string
	// PublicBaseURL, when set, turns the output location into a static URL.
	PublicBaseURL string

	now func() time.Time
}

func NewSearcher(p *parser.PDFParser, m match.Matcher, h *annotate.Highlighter, outputPath string, log *slog.Logger) *Searcher {
	if log == nil {
		log = slog.Default()
	}
	return &Searcher{
		parser:      p,
		matcher:     m,
		highlighter: h,
		log:         log,
		OutputPath:  outputPath,
		now:         time.Now,
	}
}

// Search extracts the text of path, selects matching sentences and writes a
// copy of the document to OutputPath holding only this run's highlights.
func (s *Searcher) Search(ctx context.Context, path, query string) (doctree.MatchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return doctree.MatchResult{}, &Error{Kind: KindGeneric, Op: "search", Err: ErrEmptyQuery}
	}
	log := s.log.With("query", query, "path", path)

	doc, err := s.parser.ExtractPages(ctx, path)
	if err != nil {
		return doctree.MatchResult{}, wrap("extract", err)
	}

	sentences := chunker.SplitDocument(doc)
	log.Debug("document split", "pages", len(doc.Pages), "sentences", len(sentences))

	matched, err := s.matcher.Match(ctx, query, sentences)
	if err != nil {
		return doctree.MatchResult{}, wrap("match", err)
	}

	pages := matchedPages(matched)
	hits := map[int][]doctree.Rect{}
	if len(pages) > 0 {
		hits, err = parser.Locate(ctx, path, query, pages)
		if err != nil {
			return doctree.MatchResult{}, wrap("locate", err)
		}
	}

	regions, err := s.highlighter.Highlight(ctx, path, s.OutputPath, hits)
	if err != nil {
		return doctree.MatchResult{}, wrap("highlight", err)
	}

	log.Info("search complete", "matches", len(matched), "regions", regions)
	return doctree.NewMatchResult(query, matched, regions, s.outputLocation()), nil
}

func (s *Searcher) outputLocation() string {
	if s.PublicBaseURL == "" {
		return s.OutputPath
	}
	return fmt.Sprintf("%s/static/%s?t=%d", s.PublicBaseURL, url.PathEscape(filepath.Base(s.OutputPath)), s.now().Unix())
}

// matchedPages returns the distinct pages of matched, ascending.
func matchedPages(matched []doctree.Sentence) []int {
	seen := make(map[int]bool)
	var pages []int
	for _, m := range matched {
		if !seen[m.Page] {
			seen[m.Page] = true
			pages = append(pages, m.Page)
		}
	}
	sort.Ints(pages)
	return pages
}
