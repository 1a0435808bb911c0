package source

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"bookrag/internal/corpus"
)

// HTMLSource handles HTML files. Headings and content blocks become
// blank-separated plain lines; script, style and chrome elements are
// dropped.
type HTMLSource struct{}

func (s *HTMLSource) Extract(r io.Reader, filename string) ([]corpus.PageLine, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var lines []corpus.PageLine
	emit := func(block string) {
		for _, ln := range strings.Split(block, "\n") {
			lines = append(lines, corpus.PageLine{Page: 1, Text: ln})
		}
		lines = append(lines, corpus.PageLine{Page: 1})
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			case "h1", "h2", "h3", "h4", "h5", "h6":
				if t := textContent(n); t != "" {
					emit(t)
				}
				return
			case "p", "li", "td", "blockquote", "pre":
				if t := textContent(n); t != "" {
					emit(t)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}
	return lines, nil
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
