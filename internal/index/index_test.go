package index

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"bookrag/internal/corpus"
)

// stubEmbedder returns a deterministic vector per text so build tests do
// not need a live endpoint.
type stubEmbedder struct {
	vectors map[string][]float64
	failOn  string
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if s.failOn != "" && text == s.failOn {
		return nil, fmt.Errorf("stub failure for %q", text)
	}
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return []float64{0, 0, 1}, nil
}

func (s *stubEmbedder) Model() string { return "stub-model" }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testChunks() []corpus.Chunk {
	return []corpus.Chunk{
		{ID: "block_0000::add", Symbol: "add", Text: "def add(a, b): return a + b"},
		{ID: "sec_0000", Title: "1 Intro", Text: "An introduction to the material."},
		{ID: "sec_0001", Title: "2 Scope", Text: "What the book covers."},
	}
}

func TestBuild_PreservesOrderAndSetsPreviews(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float64{
		"def add(a, b): return a + b":      {1, 0, 0},
		"An introduction to the material.": {0, 1, 0},
	}}
	idx, err := Build(context.Background(), emb, testChunks(), discardLogger())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if idx.EmbModel != "stub-model" {
		t.Errorf("expected model tag stub-model, got %q", idx.EmbModel)
	}
	wantIDs := []string{"block_0000::add", "sec_0000", "sec_0001"}
	for i, want := range wantIDs {
		if idx.Chunks[i].ID != want {
			t.Errorf("chunk[%d]: expected id %q, got %q", i, want, idx.Chunks[i].ID)
		}
		if len(idx.Chunks[i].Embedding) == 0 {
			t.Errorf("chunk[%d] has no embedding", i)
		}
		if idx.Chunks[i].Preview == "" {
			t.Errorf("chunk[%d] has no preview", i)
		}
	}
}

func TestBuild_FailsWhenAnyChunkFails(t *testing.T) {
	emb := &stubEmbedder{failOn: "What the book covers."}
	if _, err := Build(context.Background(), emb, testChunks(), discardLogger()); err == nil {
		t.Fatal("expected build to fail when one chunk cannot be embedded")
	}
}

func TestBuild_EmptyInput(t *testing.T) {
	if _, err := Build(context.Background(), &stubEmbedder{}, nil, discardLogger()); err == nil {
		t.Fatal("expected an error for an empty chunk list")
	}
}

func TestSearch_RanksByInnerProduct(t *testing.T) {
	idx := &Index{
		EmbModel: "m",
		Chunks: []corpus.Chunk{
			{ID: "a", Embedding: []float64{1, 0}},
			{ID: "b", Embedding: []float64{0, 1}},
			{ID: "c", Embedding: []float64{0.6, 0.8}},
		},
	}
	hits := idx.Search([]float64{0, 1}, 2)
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Chunk.ID != "b" || hits[1].Chunk.ID != "c" {
		t.Errorf("unexpected ranking: %s, %s", hits[0].Chunk.ID, hits[1].Chunk.ID)
	}
	if hits[0].Score != 1 {
		t.Errorf("expected top score 1, got %f", hits[0].Score)
	}
}

func TestSearch_KLargerThanCorpus(t *testing.T) {
	idx := &Index{Chunks: []corpus.Chunk{
		{ID: "a", Embedding: []float64{1, 0}},
		{ID: "b", Embedding: []float64{0, 1}},
	}}
	if hits := idx.Search([]float64{1, 0}, 10); len(hits) != 2 {
		t.Fatalf("expected all 2 hits, got %d", len(hits))
	}
}

func TestScoreAll_SkipsDimensionMismatch(t *testing.T) {
	idx := &Index{Chunks: []corpus.Chunk{
		{ID: "ok", Embedding: []float64{1, 0}},
		{ID: "stale", Embedding: []float64{1, 0, 0}},
	}}
	hits := idx.ScoreAll([]float64{1, 0})
	if len(hits) != 1 || hits[0].Chunk.ID != "ok" {
		t.Fatalf("expected only the matching-dimension chunk, got %v", hits)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data", "index.json")

	idx := &Index{
		EmbModel: "nomic-embed-text",
		Chunks: []corpus.Chunk{
			{ID: "sec_0000", Title: "1 Intro", Pages: []int{1, 2}, Preview: "An intro", Text: "An intro <to> the book.", Embedding: []float64{0.6, 0.8}},
		},
	}
	if err := idx.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(idx, loaded) {
		t.Errorf("round trip mismatch:\nsaved  %+v\nloaded %+v", idx, loaded)
	}

	// Angle brackets survive encoding unescaped.
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read raw index: %v", err)
	}
	if !strings.Contains(string(raw), "<to>") {
		t.Error("expected HTML escaping to be disabled")
	}
}

func TestSave_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	idx := &Index{EmbModel: "m", Chunks: []corpus.Chunk{{ID: "a", Text: "x", Embedding: []float64{1}}}}
	if err := idx.Save(path); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := idx.Save(path); err != nil {
		t.Fatalf("second save over existing file: %v", err)
	}
	if _, err := Load(path); err != nil {
		t.Fatalf("load after overwrite: %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected an error for a missing index file")
	}
}

func TestExportMetaAndStore(t *testing.T) {
	dir := t.TempDir()
	idx := &Index{
		EmbModel: "m",
		Chunks: []corpus.Chunk{
			{ID: "block_0000::add", Symbol: "add", Preview: "def add", Text: "def add(a, b): return a + b", Embedding: []float64{1}},
			{ID: "sec_0000", Title: "1 Intro", Pages: []int{1}, Preview: "An intro", Text: "An intro.", Embedding: []float64{0}},
		},
	}

	metaPath := filepath.Join(dir, "chunk_meta.json")
	storePath := filepath.Join(dir, "chunk_store.json")
	if err := idx.ExportMeta(metaPath); err != nil {
		t.Fatalf("ExportMeta failed: %v", err)
	}
	if err := idx.ExportStore(storePath); err != nil {
		t.Fatalf("ExportStore failed: %v", err)
	}

	var meta []corpus.Meta
	decodeJSONFile(t, metaPath, &meta)
	var texts []string
	decodeJSONFile(t, storePath, &texts)

	if len(meta) != 2 || len(texts) != 2 {
		t.Fatalf("expected 2 records each, got %d meta and %d texts", len(meta), len(texts))
	}
	if meta[0].ID != "block_0000::add" || meta[1].ID != "sec_0000" {
		t.Errorf("meta out of index order: %v", meta)
	}
	if texts[1] != "An intro." {
		t.Errorf("store out of index order: %v", texts)
	}
	for i, m := range meta {
		if m.Preview == "" {
			t.Errorf("meta[%d] missing preview", i)
		}
	}
}

func decodeJSONFile(t *testing.T, path string, v any) {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
}
