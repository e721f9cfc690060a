package chunker

import (
	"strings"

	"github.com/Maroua-Bm/PDF-project/internal/doctree"
)

// isDelimiter reports whether r ends a sentence: '.', '!', '?', the Arabic
// question mark or a newline.
func isDelimiter(r rune) bool {
	switch r {
	case '.', '!', '?', '؟', '\n':
		return true
	}
	return false
}

// SplitSentences splits text into trimmed, non-empty sentences in order.
// Case is preserved; callers that need case-insensitive comparison fold it
// themselves.
func SplitSentences(text string) []string {
	parts := strings.FieldsFunc(text, isDelimiter)
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

// SplitPage splits one page into sentences tagged with its page number.
func SplitPage(page doctree.Page) []doctree.Sentence {
	texts := SplitSentences(page.Text)
	out := make([]doctree.Sentence, len(texts))
	for i, t := range texts {
		out[i] = doctree.Sentence{Text: t, Page: page.Number}
	}
	return out
}

// SplitDocument splits every page of doc, keeping document order.
func SplitDocument(doc *doctree.Document) []doctree.Sentence {
	var out []doctree.Sentence
	for _, p := range doc.Pages {
		out = append(out, SplitPage(p)...)
	}
	return out
}
