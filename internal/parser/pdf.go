package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/Maroua-Bm/PDF-project/internal/doctree"
	pdflib "github.com/ledongthuc/pdf"
)

// OpenError reports a document that could not be opened or parsed:
// missing, corrupt or not a PDF.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// ErrNoPages is returned for documents that parse but contain no pages.
var ErrNoPages = errors.New("document has no pages")

// PDFParser extracts page text from PDF files. It uses the Go library first,
// then falls back to pdftotext if enabled.
type PDFParser struct {
	FallbackPdftotext bool
	Log               *slog.Logger
}

func NewPDFParser(fallback bool, log *slog.Logger) *PDFParser {
	if log == nil {
		log = slog.Default()
	}
	return &PDFParser{FallbackPdftotext: fallback, Log: log}
}

// ExtractPages returns one Page per PDF page in reading order. Pages whose
// text cannot be decoded are kept with empty text so numbering stays aligned.
func (p *PDFParser) ExtractPages(ctx context.Context, path string) (*doctree.Document, error) {
	pages, err := extractPDFPages(ctx, path)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) && p.FallbackPdftotext {
		p.Log.Warn("pdf library failed, trying pdftotext", "path", path, "error", err)
		pages, err = extractPdftotext(ctx, path)
	}
	if err != nil {
		return nil, err
	}
	for _, pg := range pages {
		p.Log.Debug("page text extracted", "page", pg.Number, "chars", len(pg.Text))
	}
	return &doctree.Document{Path: path, Pages: pages}, nil
}

// ExtractText returns the concatenated text of every page with no page
// structure retained.
func (p *PDFParser) ExtractText(ctx context.Context, path string) (string, error) {
	doc, err := p.ExtractPages(ctx, path)
	if err != nil {
		return "", err
	}
	var buf strings.Builder
	for _, pg := range doc.Pages {
		buf.WriteString(pg.Text)
	}
	return buf.String(), nil
}

func extractPDFPages(ctx context.Context, path string) (pages []doctree.Page, err error) {
	// The library panics on some malformed streams.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = &OpenError{Path: path, Err: fmt.Errorf("malformed pdf: %v", r)}
		}
	}()

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}
	defer f.Close()

	numPages := reader.NumPage()
	if numPages == 0 {
		return nil, &OpenError{Path: path, Err: ErrNoPages}
	}

	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pg := doctree.Page{Number: i}
		page := reader.Page(i)
		if !page.V.IsNull() {
			if text, err := page.GetPlainText(nil); err == nil {
				pg.Text = text
			}
		}
		pages = append(pages, pg)
	}
	return pages, nil
}

func extractPdftotext(ctx context.Context, path string) ([]doctree.Page, error) {
	cmd := exec.CommandContext(ctx, "pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, &OpenError{Path: path, Err: fmt.Errorf("pdftotext: %w", err)}
	}
	// pdftotext separates pages with form feeds and ends with one.
	raw := strings.TrimSuffix(string(out), "\f")
	var pages []doctree.Page
	for i, text := range strings.Split(raw, "\f") {
		pages = append(pages, doctree.Page{Number: i + 1, Text: text})
	}
	return pages, nil
}
