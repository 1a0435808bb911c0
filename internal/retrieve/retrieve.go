// Package retrieve answers similarity queries against a loaded index.
package retrieve

import (
	"context"
	"fmt"
	"strings"

	"bookrag/internal/corpus"
	"bookrag/internal/index"
)

// Retriever holds the opened index and the embedding client together so
// the expensive pieces are initialized once per process, not per query.
// It only reads the index and is safe for concurrent queries.
type Retriever struct {
	idx *index.Index
	emb index.Embedder
}

func New(idx *index.Index, emb index.Embedder) *Retriever {
	return &Retriever{idx: idx, emb: emb}
}

// Retrieve embeds the query and returns the top-k most similar chunks,
// highest score first.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]corpus.Hit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is empty")
	}
	vec, err := r.emb.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return r.idx.Search(vec, k), nil
}

// RetrieveThreshold keeps the top-k hits scoring at or above threshold.
// When nothing clears the threshold it falls back to the raw top-k, so a
// caller can still inspect the best effort before refusing.
func (r *Retriever) RetrieveThreshold(ctx context.Context, query string, k int, threshold float64) ([]corpus.Hit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is empty")
	}
	vec, err := r.emb.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	all := r.idx.ScoreAll(vec)
	var kept []corpus.Hit
	for _, h := range all {
		if h.Score >= threshold {
			kept = append(kept, h)
		}
	}
	if len(kept) == 0 {
		kept = all
	}
	if k < len(kept) {
		kept = kept[:k]
	}
	return kept, nil
}
