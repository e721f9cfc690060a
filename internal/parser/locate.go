package parser

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/Maroua-Bm/PDF-project/internal/doctree"
	pdflib "github.com/ledongthuc/pdf"
)

// Locate finds every case-insensitive literal occurrence of query on the
// given pages (all pages when pages is empty) and returns one bounding
// rectangle per occurrence, keyed by page number. Whitespace runs in the
// query match any whitespace run in the page text. Occurrences split across
// lines are not found.
func Locate(ctx context.Context, path, query string, pages []int) (hits map[int][]doctree.Rect, err error) {
	needle := []rune(normalizeQuery(query))
	if len(needle) == 0 {
		return map[int][]doctree.Rect{}, nil
	}

	defer func() {
		if r := recover(); r != nil {
			hits = nil
			err = &OpenError{Path: path, Err: fmt.Errorf("malformed pdf: %v", r)}
		}
	}()

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}
	defer f.Close()

	if len(pages) == 0 {
		for i := 1; i <= reader.NumPage(); i++ {
			pages = append(pages, i)
		}
	}

	hits = make(map[int][]doctree.Rect)
	for _, n := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if n < 1 || n > reader.NumPage() {
			continue
		}
		page := reader.Page(n)
		if page.V.IsNull() {
			continue
		}
		for _, ln := range buildLines(page.Content().Text) {
			for _, r := range ln.find(needle) {
				hits[n] = append(hits[n], r)
			}
		}
	}
	return hits, nil
}

func normalizeQuery(q string) string {
	return strings.Map(unicode.ToLower, strings.Join(strings.Fields(q), " "))
}

// line is one row of glyphs with its lower-cased text. glyph[i] is the index
// into glyphs for text rune i, or -1 for an inserted word gap.
type line struct {
	glyphs []pdflib.Text
	text   []rune
	glyph  []int
}

// buildLines groups positioned glyphs into lines top to bottom and joins them
// left to right, inserting a space where the horizontal gap between two
// glyphs exceeds a fraction of the font size.
func buildLines(texts []pdflib.Text) []line {
	chars := make([]pdflib.Text, 0, len(texts))
	for _, t := range texts {
		if t.S != "" {
			chars = append(chars, t)
		}
	}
	if len(chars) == 0 {
		return nil
	}

	sort.SliceStable(chars, func(i, j int) bool { return chars[i].Y > chars[j].Y })

	var rows [][]pdflib.Text
	var row []pdflib.Text
	baseline := chars[0].Y
	for _, c := range chars {
		tol := math.Max(1, 0.3*c.FontSize)
		if len(row) > 0 && math.Abs(c.Y-baseline) > tol {
			rows = append(rows, row)
			row = nil
			baseline = c.Y
		}
		row = append(row, c)
	}
	rows = append(rows, row)

	lines := make([]line, 0, len(rows))
	for _, r := range rows {
		sort.SliceStable(r, func(i, j int) bool { return r[i].X < r[j].X })
		lines = append(lines, joinRow(r))
	}
	return lines
}

func joinRow(row []pdflib.Text) line {
	ln := line{glyphs: row}
	appendRune := func(ch rune, idx int) {
		if unicode.IsSpace(ch) {
			if len(ln.text) == 0 || ln.text[len(ln.text)-1] == ' ' {
				return
			}
			ln.text = append(ln.text, ' ')
			ln.glyph = append(ln.glyph, -1)
			return
		}
		ln.text = append(ln.text, unicode.ToLower(ch))
		ln.glyph = append(ln.glyph, idx)
	}

	for i, g := range row {
		if i > 0 {
			prev := row[i-1]
			gap := g.X - (prev.X + prev.W)
			if gap > 0.2*math.Max(prev.FontSize, 1) {
				appendRune(' ', -1)
			}
		}
		for _, ch := range g.S {
			appendRune(ch, i)
		}
	}
	return ln
}

// find returns the bounding rectangle of every non-overlapping occurrence of
// needle in the line.
func (ln line) find(needle []rune) []doctree.Rect {
	var out []doctree.Rect
	for i := 0; i+len(needle) <= len(ln.text); {
		if !runesEqual(ln.text[i:i+len(needle)], needle) {
			i++
			continue
		}
		if r, ok := ln.bounds(i, i+len(needle)); ok {
			out = append(out, r)
		}
		i += len(needle)
	}
	return out
}

func (ln line) bounds(start, end int) (doctree.Rect, bool) {
	r := doctree.Rect{LLX: math.Inf(1), LLY: math.Inf(1), URX: math.Inf(-1), URY: math.Inf(-1)}
	found := false
	for _, idx := range ln.glyph[start:end] {
		if idx < 0 {
			continue
		}
		g := ln.glyphs[idx]
		found = true
		r.LLX = math.Min(r.LLX, g.X)
		r.URX = math.Max(r.URX, g.X+g.W)
		r.LLY = math.Min(r.LLY, g.Y-0.2*g.FontSize)
		r.URY = math.Max(r.URY, g.Y+0.8*g.FontSize)
	}
	return r, found
}

func runesEqual(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
