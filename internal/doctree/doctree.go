package doctree

// Document is an opened PDF: its path and pages in reading order.
type Document struct {
	Path  string
	Pages []Page
}

// Page holds the text extracted for one PDF page.
type Page struct {
	Number int    // 1-based page number
	Text   string // Raw text as returned by the PDF engine
}

// Sentence is a sentence-like unit split out of a page's text.
type Sentence struct {
	Text string
	Page int
}

// Rect is a bounding rectangle in PDF user space.
type Rect struct {
	LLX, LLY float64
	URX, URY float64
}

// Width returns the horizontal extent of r.
func (r Rect) Width() float64 { return r.URX - r.LLX }

// Height returns the vertical extent of r.
func (r Rect) Height() float64 { return r.URY - r.LLY }

// Sentences returns the text of each sentence, preserving order.
func Sentences(ss []Sentence) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = s.Text
	}
	return out
}

// MatchResult is the outcome of one search run.
type MatchResult struct {
	Query              string
	TotalMatches       int
	MatchedSentences   []string
	HighlightedRegions int
	TopMatched         string
	TopScore           float64
	Output             string // Path or URL of the highlighted document
}

// NewMatchResult builds a result from matched sentences. The top match is the
// first matched sentence in document order and its score is 1.0, or 0.0 when
// nothing matched.
func NewMatchResult(query string, matched []Sentence, regions int, output string) MatchResult {
	texts := Sentences(matched)
	res := MatchResult{
		Query:              query,
		TotalMatches:       len(texts),
		MatchedSentences:   texts,
		HighlightedRegions: regions,
		Output:             output,
	}
	if len(texts) > 0 {
		res.TopMatched = texts[0]
		res.TopScore = 1.0
	}
	return res
}
