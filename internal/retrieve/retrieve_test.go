package retrieve

import (
	"context"
	"testing"

	"bookrag/internal/corpus"
	"bookrag/internal/index"
)

type fixedEmbedder struct {
	vec []float64
}

func (f *fixedEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	return f.vec, nil
}

func (f *fixedEmbedder) Model() string { return "stub-model" }

func testIndex() *index.Index {
	return &index.Index{
		EmbModel: "stub-model",
		Chunks: []corpus.Chunk{
			{ID: "a", Embedding: []float64{1, 0}},
			{ID: "b", Embedding: []float64{0.5, 0.5}},
			{ID: "c", Embedding: []float64{0, 1}},
		},
	}
}

func TestRetrieve_TopK(t *testing.T) {
	r := New(testIndex(), &fixedEmbedder{vec: []float64{1, 0}})
	hits, err := r.Retrieve(context.Background(), "what is a?", 2)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Chunk.ID != "a" || hits[1].Chunk.ID != "b" {
		t.Errorf("unexpected ranking: %s, %s", hits[0].Chunk.ID, hits[1].Chunk.ID)
	}
	if hits[0].Score < hits[1].Score {
		t.Error("hits must be ordered highest score first")
	}
}

func TestRetrieve_RejectsBadInput(t *testing.T) {
	r := New(testIndex(), &fixedEmbedder{vec: []float64{1, 0}})
	if _, err := r.Retrieve(context.Background(), "q", 0); err == nil {
		t.Error("expected error for k=0")
	}
	if _, err := r.Retrieve(context.Background(), "q", -1); err == nil {
		t.Error("expected error for negative k")
	}
	if _, err := r.Retrieve(context.Background(), "   ", 3); err == nil {
		t.Error("expected error for blank query")
	}
}

func TestRetrieveThreshold_FiltersBelowThreshold(t *testing.T) {
	r := New(testIndex(), &fixedEmbedder{vec: []float64{1, 0}})
	// Scores against [1 0]: a=1.0, b=0.5, c=0.0.
	hits, err := r.RetrieveThreshold(context.Background(), "q", 3, 0.4)
	if err != nil {
		t.Fatalf("RetrieveThreshold failed: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits at or above 0.4, got %d", len(hits))
	}
	for _, h := range hits {
		if h.Score < 0.4 {
			t.Errorf("hit %s scored %f below threshold", h.Chunk.ID, h.Score)
		}
	}
}

func TestRetrieveThreshold_BoundaryIsInclusive(t *testing.T) {
	r := New(testIndex(), &fixedEmbedder{vec: []float64{1, 0}})
	hits, err := r.RetrieveThreshold(context.Background(), "q", 3, 0.5)
	if err != nil {
		t.Fatalf("RetrieveThreshold failed: %v", err)
	}
	// b scores exactly 0.5 and must be kept.
	if len(hits) != 2 || hits[1].Chunk.ID != "b" {
		t.Fatalf("expected [a b], got %v", hits)
	}
}

func TestRetrieveThreshold_FallsBackToRawTopK(t *testing.T) {
	r := New(testIndex(), &fixedEmbedder{vec: []float64{1, 0}})
	hits, err := r.RetrieveThreshold(context.Background(), "q", 2, 0.99)
	if err != nil {
		t.Fatalf("RetrieveThreshold failed: %v", err)
	}
	// Only a clears 0.99; with it kept the list is [a]. Raise further so
	// nothing clears and the raw top-k comes back.
	if len(hits) != 1 || hits[0].Chunk.ID != "a" {
		t.Fatalf("expected [a], got %v", hits)
	}

	hits, err = r.RetrieveThreshold(context.Background(), "q", 2, 1.5)
	if err != nil {
		t.Fatalf("RetrieveThreshold failed: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected raw top-2 fallback, got %d hits", len(hits))
	}
	if hits[0].Chunk.ID != "a" {
		t.Errorf("fallback must still rank best first, got %s", hits[0].Chunk.ID)
	}
}
