package llm

import "github.com/Maroua-Bm/PDF-project/internal/chunker"

const summaryPreamble = "Summarize the following PDF content:\n\n"

// SummaryPrompt builds the summarization prompt from text cut to at most
// budget characters.
func SummaryPrompt(text string, budget int) string {
	return summaryPreamble + chunker.TruncateRunes(text, budget)
}
