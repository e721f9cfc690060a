// Package pdftest builds small PDF fixtures for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	pdflib "github.com/ledongthuc/pdf"
)

// Page describes one fixture page. Text lines are separated by '\n' and laid
// out top to bottom in 12pt Helvetica. StaleAnnots adds that many square
// annotations, standing in for marks left by an earlier run.
type Page struct {
	Text        string
	StaleAnnots int
}

// GlyphWidth is the advance of every character, in 1/1000 em.
const GlyphWidth = 500

// Write creates a PDF at dir/name with one page per entry and returns its path.
func Write(tb testing.TB, dir, name string, pages ...Page) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Build(pages...), 0o644); err != nil {
		tb.Fatalf("write fixture: %v", err)
	}
	return path
}

// WriteText is Write for pages without stale annotations.
func WriteText(tb testing.TB, dir, name string, texts ...string) string {
	tb.Helper()
	pages := make([]Page, len(texts))
	for i, t := range texts {
		pages[i] = Page{Text: t}
	}
	return Write(tb, dir, name, pages...)
}

// Build assembles the PDF bytes.
func Build(pages ...Page) []byte {
	var objs []string

	// 1: catalog, 2: page tree, 3: font. Pages, contents and annotations follow.
	objs = append(objs, "<< /Type /Catalog /Pages 2 0 R >>", "", fontDict())

	var kids []string
	for _, p := range pages {
		pageNr := len(objs) + 1
		contentNr := pageNr + 1
		var annotRefs []string
		for i := 0; i < p.StaleAnnots; i++ {
			annotRefs = append(annotRefs, fmt.Sprintf("%d 0 R", contentNr+1+i))
		}

		annots := ""
		if len(annotRefs) > 0 {
			annots = " /Annots [" + strings.Join(annotRefs, " ") + "]"
		}
		objs = append(objs, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R%s >>",
			contentNr, annots))

		stream := contentStream(p.Text)
		objs = append(objs, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))

		for i := 0; i < p.StaleAnnots; i++ {
			y := 100 + 30*i
			objs = append(objs, fmt.Sprintf(
				"<< /Type /Annot /Subtype /Square /Rect [50 %d 150 %d] /C [1 0 0] /P %d 0 R >>", y, y+20, pageNr))
		}
		kids = append(kids, fmt.Sprintf("%d 0 R", pageNr))
	}
	objs[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func fontDict() string {
	widths := make([]string, 0, 95)
	for c := 32; c <= 126; c++ {
		widths = append(widths, fmt.Sprint(GlyphWidth))
	}
	return "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding " +
		"/FirstChar 32 /LastChar 126 /Widths [" + strings.Join(widths, " ") + "] >>"
}

func contentStream(text string) string {
	var sb strings.Builder
	sb.WriteString("BT\n/F1 12 Tf\n14 TL\n72 720 Td\n")
	for i, ln := range strings.Split(text, "\n") {
		if i > 0 {
			sb.WriteString("T*\n")
		}
		fmt.Fprintf(&sb, "(%s) Tj\n", escape(ln))
	}
	sb.WriteString("ET")
	return sb.String()
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

// Annotations returns the annotation subtypes present on each page of the
// PDF at path, in page order.
func Annotations(tb testing.TB, path string) [][]string {
	tb.Helper()
	f, r, err := pdflib.Open(path)
	if err != nil {
		tb.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	out := make([][]string, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		annots := r.Page(i).V.Key("Annots")
		for j := 0; j < annots.Len(); j++ {
			out[i-1] = append(out[i-1], annots.Index(j).Key("Subtype").Name())
		}
	}
	return out
}

// CountAnnotations returns the total number of annotations in the PDF.
func CountAnnotations(tb testing.TB, path string) int {
	tb.Helper()
	n := 0
	for _, page := range Annotations(tb, path) {
		n += len(page)
	}
	return n
}
