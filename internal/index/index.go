// Package index builds and searches the persisted similarity index. One
// record per chunk carries vector, metadata and raw text together, keyed
// by position, so the stores can never drift apart.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"bookrag/internal/corpus"
)

// Embedder abstracts the embedding backend shared by build and query time.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	Model() string
}

// Index is the similarity index: the embedding model tag plus one record
// per chunk. Vectors are unit-normalized, so inner product equals cosine
// similarity.
type Index struct {
	EmbModel string         `json:"embModel"`
	Chunks   []corpus.Chunk `json:"chunks"`
}

// embedConcurrency bounds in-flight embedding requests during a build.
const embedConcurrency = 4

// Build embeds every chunk and assembles the index. Input order is
// preserved. Any chunk that cannot be embedded fails the whole build;
// a silently truncated index is worse than no index.
func Build(ctx context.Context, emb Embedder, chunks []corpus.Chunk, log *slog.Logger) (*Index, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunks to index")
	}

	out := make([]corpus.Chunk, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)
	for i, c := range chunks {
		i, c := i, c
		g.Go(func() error {
			vec, err := emb.Embed(gctx, c.Text)
			if err != nil {
				return fmt.Errorf("embed chunk %s: %w", c.ID, err)
			}
			c.Embedding = vec
			if c.Preview == "" {
				c.Preview = corpus.PreviewText(c.Text)
			}
			out[i] = c
			log.Debug("embedded chunk", "id", c.ID, "dim", len(vec))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range out {
		if len(out[i].Embedding) == 0 {
			return nil, fmt.Errorf("chunk %s missing embedding after build", out[i].ID)
		}
	}
	log.Info("index built", "chunks", len(out), "model", emb.Model())

	return &Index{EmbModel: emb.Model(), Chunks: out}, nil
}

// ScoreAll scores every chunk by inner product against a unit query
// vector and returns all hits, highest score first. Chunks whose stored
// vector dimension does not match the query are skipped.
func (ix *Index) ScoreAll(queryVec []float64) []corpus.Hit {
	hits := make([]corpus.Hit, 0, len(ix.Chunks))
	for _, c := range ix.Chunks {
		if len(c.Embedding) != len(queryVec) {
			continue
		}
		hits = append(hits, corpus.Hit{Score: dot(queryVec, c.Embedding), Chunk: c})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	return hits
}

// Search returns the top-k hits for a unit query vector.
func (ix *Index) Search(queryVec []float64, k int) []corpus.Hit {
	hits := ix.ScoreAll(queryVec)
	if k > 0 && k < len(hits) {
		hits = hits[:k]
	}
	return hits
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
