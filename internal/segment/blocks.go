package segment

import (
	"fmt"
	"regexp"
	"strings"

	"bookrag/internal/corpus"
)

// Detector thresholds. These are tuned against PDF-extracted textbook
// text, not derived; adjust together with the keyword set below.
const (
	// CodeTokenRatio is the minimum fraction of lines that must contain a
	// code-like lexical token for a block to classify as code.
	CodeTokenRatio = 0.15
	// IndentRatio is the minimum fraction of lines starting with leading
	// whitespace for a block to classify as code.
	IndentRatio = 0.25
)

var (
	codeTokenRe = regexp.MustCompile(`[{}();,:=+\-/*<>\[\]|&$#@]|\b(def|class|import|from|return|if|else|for|while|try|catch|finally|public|private|static|void|new)\b`)
	blankLineRe = regexp.MustCompile(`\n\s*\n`)
)

// Block is a contiguous run of non-blank lines on one page. Blocks are
// ephemeral: they exist only long enough to be classified.
type Block struct {
	Text string
	Page int
}

// SplitBlocks splits page text into candidate blocks at blank-line
// boundaries.
func SplitBlocks(text string, page int) []Block {
	var blocks []Block
	for _, part := range blankLineRe.Split(text, -1) {
		part = strings.Trim(part, "\n")
		if strings.TrimSpace(part) == "" {
			continue
		}
		blocks = append(blocks, Block{Text: part, Page: page})
	}
	return blocks
}

// IsCodeLike reports whether a block reads like code: enough lines carry
// code-like tokens, or enough lines are indented. A block with no
// non-blank lines is never code-like.
func IsCodeLike(block string) bool {
	var lines []string
	for _, ln := range strings.Split(block, "\n") {
		if strings.TrimSpace(ln) != "" {
			lines = append(lines, ln)
		}
	}
	if len(lines) == 0 {
		return false
	}

	var codey, indented int
	for _, ln := range lines {
		if codeTokenRe.MatchString(ln) {
			codey++
		}
		if strings.HasPrefix(ln, " ") || strings.HasPrefix(ln, "\t") {
			indented++
		}
	}
	total := float64(len(lines))
	return float64(codey)/total >= CodeTokenRatio || float64(indented)/total >= IndentRatio
}

// NormalizeWhitespace strips carriage returns and converts tabs to
// spaces, the two PDF extraction artifacts that break downstream parsing.
func NormalizeWhitespace(code string) string {
	code = strings.ReplaceAll(code, "\r", "")
	return strings.ReplaceAll(code, "\t", " ")
}

// FindCodeSpans scans the page-line stream and returns every code-like
// block as a normalized span. IDs are sequential and zero-padded, stable
// within one extraction run.
func FindCodeSpans(lines []corpus.PageLine) []corpus.CodeSpan {
	var spans []corpus.CodeSpan
	for _, pg := range groupByPage(lines) {
		for _, b := range SplitBlocks(pg.text, pg.page) {
			if !IsCodeLike(b.Text) {
				continue
			}
			spans = append(spans, corpus.CodeSpan{
				ID:   fmt.Sprintf("block_%04d", len(spans)),
				Page: b.Page,
				Code: NormalizeWhitespace(b.Text),
			})
		}
	}
	return spans
}

type pageText struct {
	page int
	text string
}

func groupByPage(lines []corpus.PageLine) []pageText {
	var pages []pageText
	var sb strings.Builder
	current := 0
	flush := func() {
		if current != 0 {
			pages = append(pages, pageText{page: current, text: sb.String()})
		}
		sb.Reset()
	}
	for _, ln := range lines {
		if ln.Page != current {
			flush()
			current = ln.Page
		}
		sb.WriteString(ln.Text)
		sb.WriteByte('\n')
	}
	flush()
	return pages
}
