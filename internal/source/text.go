package source

import (
	"bufio"
	"io"

	"bookrag/internal/corpus"
)

// TextSource handles plain text files. Blank lines are preserved: the
// segmenters use them as block and paragraph boundaries.
type TextSource struct{}

func (s *TextSource) Extract(r io.Reader, filename string) ([]corpus.PageLine, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []corpus.PageLine
	for scanner.Scan() {
		lines = append(lines, corpus.PageLine{Page: 1, Text: scanner.Text()})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
