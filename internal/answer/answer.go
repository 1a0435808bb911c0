// Package answer gates question answering behind retrieval similarity
// and output filters. It is the system's safety mechanism: the language
// model must never answer from its own general knowledge when the corpus
// does not support it, and no pipeline failure may surface as anything
// other than the fixed refusal sentence.
package answer

import (
	"context"
	"log/slog"
	"strings"

	"bookrag/internal/corpus"
	"bookrag/internal/llm"
)

// RefusalText is the single user-visible failure string. Low similarity,
// an empty corpus, and backend failures all collapse to it.
const RefusalText = "this is beyond my scope."

// Model outputs starting with one of these (case-insensitive, after
// trimming) are hedging rather than answering and are replaced with the
// refusal sentence.
var hedgePrefixes = []string{
	"as an ai",
	"i don't have",
	"i do not have",
	"i'm not sure",
	"i am not sure",
}

// Response is the answer payload returned to callers.
type Response struct {
	Text string `json:"text"`
}

// Retriever is the retrieval surface the guard needs.
type Retriever interface {
	RetrieveThreshold(ctx context.Context, query string, k int, threshold float64) ([]corpus.Hit, error)
}

// Guard wires retrieval, the similarity threshold, the completion
// provider and the output filters into one answer pipeline.
type Guard struct {
	retriever Retriever
	completer llm.Completer
	topK      int
	threshold float64
	log       *slog.Logger
}

func NewGuard(r Retriever, c llm.Completer, topK int, threshold float64, log *slog.Logger) *Guard {
	if topK <= 0 {
		topK = 3
	}
	return &Guard{
		retriever: r,
		completer: c,
		topK:      topK,
		threshold: threshold,
		log:       log,
	}
}

// Answer returns grounded answer text or the refusal sentence. It never
// returns an error: failure detail goes to the log, the caller sees only
// the refusal.
func (g *Guard) Answer(ctx context.Context, question string) Response {
	resp, _ := g.AnswerDetailed(ctx, question)
	return resp
}

// AnswerDetailed additionally returns the retrieved hits that grounded
// (or failed to ground) the answer, for callers that display sources.
func (g *Guard) AnswerDetailed(ctx context.Context, question string) (Response, []corpus.Hit) {
	hits, err := g.retriever.RetrieveThreshold(ctx, question, g.topK, g.threshold)
	if err != nil {
		g.log.Error("retrieval failed", "error", err)
		return refusal(), nil
	}
	// The threshold boundary is inclusive: a best hit scoring exactly at
	// the threshold passes.
	if len(hits) == 0 || hits[0].Score < g.threshold {
		g.log.Info("refusing: no hit at or above threshold",
			"hits", len(hits), "threshold", g.threshold)
		return refusal(), hits
	}

	prompt := BuildPrompt(question, hits)
	out, err := g.completer.Complete(ctx, prompt)
	if err != nil {
		g.log.Error("completion failed", "provider", g.completer.Name(), "error", err)
		return refusal(), hits
	}

	out = strings.TrimSpace(out)
	if out == "" || isHedged(out) {
		g.log.Info("refusing: filtered model output", "provider", g.completer.Name())
		return refusal(), hits
	}
	return Response{Text: out}, hits
}

func refusal() Response {
	return Response{Text: RefusalText}
}

func isHedged(out string) bool {
	lower := strings.ToLower(strings.TrimSpace(out))
	for _, prefix := range hedgePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// Refuser answers every question with the refusal sentence. It stands in
// for the guard when the index cannot be opened, so serving degrades
// instead of crashing.
type Refuser struct{}

func (Refuser) Answer(ctx context.Context, question string) Response {
	return refusal()
}
