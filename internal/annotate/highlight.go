// Package annotate writes highlight annotations into PDF documents.
package annotate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/Maroua-Bm/PDF-project/internal/doctree"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/color"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Yellow is the highlight color.
var Yellow = color.SimpleColor{R: 1, G: 1, B: 0}

// Highlighter replaces all annotations of a document with highlight marks.
type Highlighter struct {
	Color color.SimpleColor
	log   *slog.Logger
}

func NewHighlighter(log *slog.Logger) *Highlighter {
	if log == nil {
		log = slog.Default()
	}
	return &Highlighter{Color: Yellow, log: log}
}

// Highlight reads in, removes every existing annotation on every page, adds
// one highlight per rectangle in hits (keyed by 1-based page number) and
// writes the optimized result to out. out is replaced atomically: on failure
// no output file is left behind. It returns the number of highlights added.
func (h *Highlighter) Highlight(ctx context.Context, in, out string, hits map[int][]doctree.Rect) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	f, err := os.Open(in)
	if err != nil {
		return 0, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	pdfCtx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return 0, fmt.Errorf("pdfcpu read: %w", err)
	}

	allPages := make(types.IntSet, pdfCtx.PageCount)
	for i := 1; i <= pdfCtx.PageCount; i++ {
		allPages[i] = true
	}
	removed, err := pdfcpu.RemoveAnnotations(pdfCtx, allPages, nil, nil, false)
	if err != nil {
		return 0, fmt.Errorf("remove annotations: %w", err)
	}
	if removed {
		h.log.Debug("cleared existing annotations", "path", in)
	}

	m, count := h.renderers(hits, pdfCtx.PageCount)
	if count > 0 {
		if _, err := pdfcpu.AddAnnotationsMap(pdfCtx, m, false); err != nil {
			return 0, fmt.Errorf("add highlights: %w", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := writeAtomic(pdfCtx, out); err != nil {
		return 0, err
	}

	h.log.Info("highlighted document written", "output", out, "regions", count)
	return count, nil
}

func (h *Highlighter) renderers(hits map[int][]doctree.Rect, pageCount int) (map[int][]model.AnnotationRenderer, int) {
	pages := make([]int, 0, len(hits))
	for p := range hits {
		pages = append(pages, p)
	}
	sort.Ints(pages)

	modDate := types.DateString(time.Now())
	m := make(map[int][]model.AnnotationRenderer)
	count := 0
	for _, p := range pages {
		if p < 1 || p > pageCount {
			h.log.Warn("skipping highlights for page out of range", "page", p, "page_count", pageCount)
			continue
		}
		for i, r := range hits[p] {
			m[p] = append(m[p], h.highlight(r, fmt.Sprintf("pdfsearch-%d-%d", p, i), modDate))
			count++
		}
	}
	return m, count
}

func (h *Highlighter) highlight(r doctree.Rect, id, modDate string) model.HighlightAnnotation {
	rect := types.NewRectangle(r.LLX, r.LLY, r.URX, r.URY)
	quad := types.QuadPoints{
		types.QuadLiteral{
			P1: types.Point{X: r.LLX, Y: r.URY},
			P2: types.Point{X: r.URX, Y: r.URY},
			P3: types.Point{X: r.LLX, Y: r.LLY},
			P4: types.Point{X: r.URX, Y: r.LLY},
		},
	}
	col := h.Color
	return model.NewHighlightAnnotation(
		*rect,
		"",
		id,
		modDate,
		model.AnnPrint,
		&col,
		0, 0, 0,
		"",
		nil,
		nil,
		"", "",
		quad,
	)
}

func writeAtomic(pdfCtx *model.Context, out string) error {
	dir := filepath.Dir(out)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".highlighted-*.pdf")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := api.WriteContextFile(pdfCtx, tmpPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	if err := os.Rename(tmpPath, out); err != nil {
		return fmt.Errorf("replace output: %w", err)
	}
	return nil
}
