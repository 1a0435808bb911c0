package source

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"bookrag/internal/corpus"
)

// MarkdownSource handles Markdown files using goldmark. Headings and
// block contents become plain lines separated by blanks, so the section
// segmenter sees the same shape as PDF-extracted text.
type MarkdownSource struct{}

func (s *MarkdownSource) Extract(r io.Reader, filename string) ([]corpus.PageLine, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	var lines []corpus.PageLine
	emit := func(block string) {
		for _, ln := range strings.Split(block, "\n") {
			lines = append(lines, corpus.PageLine{Page: 1, Text: ln})
		}
		lines = append(lines, corpus.PageLine{Page: 1})
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if heading, ok := n.(*ast.Heading); ok {
			emit(string(heading.Text(src)))
			continue
		}
		if t := nodeText(n, src); t != "" {
			emit(t)
		}
	}
	return lines, nil
}

// nodeText gets the text content of a goldmark AST node.
func nodeText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock {
		segs := n.Lines()
		for i := 0; i < segs.Len(); i++ {
			seg := segs.At(i)
			buf.Write(seg.Value(src))
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			buf.WriteString(nodeText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
