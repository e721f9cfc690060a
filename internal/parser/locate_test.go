package parser

import (
	"context"
	"testing"

	"github.com/Maroua-Bm/PDF-project/internal/pdftest"
	pdflib "github.com/ledongthuc/pdf"
)

func TestLocate_FindsOccurrencesCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	path := pdftest.WriteText(t, dir, "doc.pdf",
		"The cat sat on the mat.\nA CAT and another cat.",
		"Dogs bark loudly.")

	hits, err := Locate(context.Background(), path, "Cat", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(hits[1]); got != 3 {
		t.Fatalf("expected 3 hits on page 1, got %d", got)
	}
	if got := len(hits[2]); got != 0 {
		t.Errorf("expected no hits on page 2, got %d", got)
	}

	// Fixture glyphs are 500/1000 em at 12pt: 6pt per character starting at x=72.
	first := hits[1][0]
	if first.LLX != 72+4*6 || first.URX != 72+7*6 {
		t.Errorf("unexpected horizontal bounds: %+v", first)
	}
	if first.Height() <= 0 || first.Width() <= 0 {
		t.Errorf("expected non-empty rectangle, got %+v", first)
	}
	// Second line sits below the first.
	if hits[1][1].URY >= first.URY {
		t.Errorf("expected second-line hit below first: %+v vs %+v", hits[1][1], first)
	}
}

func TestLocate_RestrictsToPages(t *testing.T) {
	dir := t.TempDir()
	path := pdftest.WriteText(t, dir, "doc.pdf", "cat one.", "cat two.", "cat three.")

	hits, err := Locate(context.Background(), path, "cat", []int{2, 9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits[1]) != 0 || len(hits[3]) != 0 {
		t.Errorf("expected only page 2 searched, got %v", hits)
	}
	if len(hits[2]) != 1 {
		t.Errorf("expected 1 hit on page 2, got %d", len(hits[2]))
	}
}

func TestLocate_MultiWordQueryNormalizesWhitespace(t *testing.T) {
	dir := t.TempDir()
	path := pdftest.WriteText(t, dir, "doc.pdf", "The  cat   sat on the mat.")

	hits, err := Locate(context.Background(), path, " cat \t sat ", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits[1]) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits[1]))
	}
}

func TestLocate_EmptyQuery(t *testing.T) {
	hits, err := Locate(context.Background(), "does-not-matter.pdf", "   ", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits, got %v", hits)
	}
}

func TestBuildLines_InsertsWordGaps(t *testing.T) {
	glyphs := []pdflib.Text{
		{S: "b", X: 16, Y: 100, W: 6, FontSize: 12},
		{S: "a", X: 10, Y: 100, W: 6, FontSize: 12},
		{S: "c", X: 40, Y: 100, W: 6, FontSize: 12},
		{S: "D", X: 10, Y: 80, W: 6, FontSize: 12},
	}
	lines := buildLines(glyphs)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if got := string(lines[0].text); got != "ab c" {
		t.Errorf("expected %q, got %q", "ab c", got)
	}
	if got := string(lines[1].text); got != "d" {
		t.Errorf("expected %q, got %q", "d", got)
	}
}
