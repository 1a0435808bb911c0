package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"bookrag/internal/corpus"
)

// Save writes the index atomically: encode to a temp file in the target
// directory, then rename over the destination. Readers never observe a
// half-written index.
func (ix *Index) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}
	return writeJSONAtomic(path, ix)
}

// Load reads a persisted index.
func Load(path string) (*Index, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	var ix Index
	if err := json.Unmarshal(raw, &ix); err != nil {
		return nil, fmt.Errorf("parse index %s: %w", path, err)
	}
	return &ix, nil
}

// ExportMeta writes the positional metadata records, one per chunk, in
// index order.
func (ix *Index) ExportMeta(path string) error {
	meta := make([]corpus.Meta, len(ix.Chunks))
	for i, c := range ix.Chunks {
		meta[i] = corpus.Meta{
			ID:      c.ID,
			Symbol:  c.Symbol,
			Title:   c.Title,
			Pages:   c.Pages,
			Preview: c.Preview,
		}
	}
	return writeJSONAtomic(path, meta)
}

// ExportStore writes the raw chunk texts, aligned by position with the
// metadata and the index.
func (ix *Index) ExportStore(path string) error {
	texts := make([]string, len(ix.Chunks))
	for i, c := range ix.Chunks {
		texts[i] = c.Text
	}
	return writeJSONAtomic(path, texts)
}

func writeJSONAtomic(path string, v any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	enc := json.NewEncoder(tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
