// Package source extracts ordered page lines from document files. PDF is
// the primary format; text, Markdown, HTML and DOCX sources feed the same
// downstream segmentation.
package source

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"bookrag/internal/corpus"
)

// Source converts raw document bytes into ordered page lines. Page
// numbers are 1-based and never decrease across the returned slice.
type Source interface {
	Extract(r io.Reader, filename string) ([]corpus.PageLine, error)
}

// SupportedExtensions lists file extensions this pipeline can ingest.
var SupportedExtensions = map[string]bool{
	".pdf":      true,
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".docx":     true,
}

// ForFile returns the appropriate source for a filename.
func ForFile(filename string) (Source, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFSource{FallbackPdftotext: true}, nil
	case ".txt":
		return &TextSource{}, nil
	case ".md", ".markdown":
		return &MarkdownSource{}, nil
	case ".html", ".htm":
		return &HTMLSource{}, nil
	case ".docx":
		return &DOCXSource{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}
