package source

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"bookrag/internal/corpus"
)

// PDFSource extracts page lines from a PDF. It tries the Go library
// first, then falls back to pdftotext if available. Unreadable pages are
// skipped, never fatal: one corrupt page must not lose the book.
type PDFSource struct {
	FallbackPdftotext bool
}

func (s *PDFSource) Extract(r io.Reader, filename string) ([]corpus.PageLine, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "bookrag-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	lines, err := extractPDFLines(tmpPath)
	if (err != nil || len(lines) == 0) && s.FallbackPdftotext {
		lines, err = extractPdftotextLines(tmpPath)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	return lines, nil
}

func extractPDFLines(path string) ([]corpus.PageLine, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []corpus.PageLine
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue // skip unreadable page
		}
		lines = appendPageLines(lines, i, text)
	}
	return lines, nil
}

func extractPdftotextLines(path string) ([]corpus.PageLine, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}

	var lines []corpus.PageLine
	// pdftotext separates pages with form feeds.
	for i, pageText := range strings.Split(string(out), "\f") {
		lines = appendPageLines(lines, i+1, pageText)
	}
	return lines, nil
}

func appendPageLines(lines []corpus.PageLine, page int, text string) []corpus.PageLine {
	for _, ln := range strings.Split(text, "\n") {
		lines = append(lines, corpus.PageLine{
			Page: page,
			Text: strings.TrimRight(ln, "\r"),
		})
	}
	return lines
}
