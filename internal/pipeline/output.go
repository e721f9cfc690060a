package pipeline

import "github.com/Maroua-Bm/PDF-project/internal/doctree"

// SearchOutput is the JSON shape of a search result.
type SearchOutput struct {
	SearchQuery        string   `json:"search_query"`
	TotalMatches       int      `json:"total_matches"`
	MatchedSentences   []string `json:"matched_sentences"`
	HighlightedPDF     string   `json:"highlighted_pdf"`
	HighlightedRegions int      `json:"highlighted_regions"`
	TopMatchedSentence string   `json:"top_matched_sentence"`
	TopScore           float64  `json:"top_score"`
}

func NewSearchOutput(r doctree.MatchResult) SearchOutput {
	sentences := r.MatchedSentences
	if sentences == nil {
		sentences = []string{}
	}
	return SearchOutput{
		SearchQuery:        r.Query,
		TotalMatches:       r.TotalMatches,
		MatchedSentences:   sentences,
		HighlightedPDF:     r.Output,
		HighlightedRegions: r.HighlightedRegions,
		TopMatchedSentence: r.TopMatched,
		TopScore:           r.TopScore,
	}
}

// SummaryOutput is the JSON shape of a summary.
type SummaryOutput struct {
	Summary     string `json:"summary"`
	SummaryHTML string `json:"summary_html,omitempty"`
}

// ErrorOutput is the JSON shape of any failure.
type ErrorOutput struct {
	Error string `json:"error"`
	Code  Kind   `json:"code"`
}

func NewErrorOutput(err error) ErrorOutput {
	return ErrorOutput{Error: Message(err), Code: KindOf(err)}
}
