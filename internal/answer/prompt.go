package answer

import (
	"fmt"
	"strings"

	"bookrag/internal/corpus"
)

// BuildPrompt assembles the grounding prompt: an instruction header that
// names the exact refusal sentence, the enumerated scored excerpts, then
// the question.
func BuildPrompt(question string, hits []corpus.Hit) string {
	header := strings.Join([]string{
		"You are a helpful teaching assistant answering questions about a textbook.",
		"You must answer ONLY using the provided textbook excerpts.",
		"If the answer is not clearly supported by the excerpts, reply exactly:",
		`"` + RefusalText + `"`,
		"",
		"Be concise, factual, and do not invent information.",
	}, "\n")

	excerpts := make([]string, 0, len(hits))
	for i, h := range hits {
		excerpts = append(excerpts, fmt.Sprintf("<<excerpt %d (score=%.2f)>>\n%s", i+1, h.Score, h.Chunk.Text))
	}

	return strings.Join([]string{
		header,
		"",
		"--- TEXTBOOK EXCERPTS ---",
		strings.Join(excerpts, "\n\n"),
		"",
		"--- QUESTION ---",
		question,
		"",
		"--- ANSWER ---",
	}, "\n")
}
