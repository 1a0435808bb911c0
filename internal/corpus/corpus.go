package corpus

import "strings"

// PageLine is one extracted text line with its 1-based source page.
// Lines arrive in strict reading order; page numbers never decrease.
type PageLine struct {
	Page int
	Text string
}

// CodeSpan is a block the detector classified as code-like, with
// whitespace normalized. IDs are sequential within one extraction run.
type CodeSpan struct {
	ID   string `json:"id"`
	Page int    `json:"page"`
	Code string `json:"code"`
}

// Section is a heading-delimited logical unit of prose.
type Section struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Pages      []int    `json:"pages"`
	TextBlocks []string `json:"text_blocks"`
}

// Text returns the section's paragraphs joined as one indexable body.
func (s Section) Text() string {
	return strings.Join(s.TextBlocks, "\n\n")
}

// Chunk is one indexed unit. Vector, metadata and raw text live together
// in a single record so index position can never drift between stores.
type Chunk struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol,omitempty"` // dotted name, "<module>" or "<unparsed>" for code chunks
	Title     string    `json:"title,omitempty"`  // section title for prose chunks
	Pages     []int     `json:"pages"`
	Preview   string    `json:"preview,omitempty"`
	Text      string    `json:"text"`
	Embedding []float64 `json:"embedding,omitempty"`
}

// Label returns the human-readable name of the chunk: the code symbol or
// the section title, whichever the chunk carries.
func (c Chunk) Label() string {
	if c.Symbol != "" {
		return c.Symbol
	}
	return c.Title
}

// Meta is the positional metadata projection exported alongside the index.
type Meta struct {
	ID      string `json:"id"`
	Symbol  string `json:"symbol,omitempty"`
	Title   string `json:"title,omitempty"`
	Pages   []int  `json:"pages"`
	Preview string `json:"preview,omitempty"`
}

// Hit pairs a chunk with its similarity score for one query.
type Hit struct {
	Score float64
	Chunk Chunk
}

// PreviewLen caps the stored preview prefix of a chunk's text.
const PreviewLen = 200

// PreviewText truncates s to the preview prefix without splitting runes.
func PreviewText(s string) string {
	runes := []rune(s)
	if len(runes) <= PreviewLen {
		return s
	}
	return string(runes[:PreviewLen])
}

// ChunkFromSection converts a segmented section into an indexable chunk.
func ChunkFromSection(s Section) Chunk {
	text := s.Text()
	return Chunk{
		ID:      s.ID,
		Title:   s.Title,
		Pages:   append([]int(nil), s.Pages...),
		Preview: PreviewText(text),
		Text:    text,
	}
}
