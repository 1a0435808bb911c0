package segment

import (
	"fmt"
	"regexp"
	"strings"

	"bookrag/internal/corpus"
)

// MaxHeadingTokens caps how many whitespace-separated tokens a heading
// may carry. Longer matches are figure captions that happen to start
// with a number and are kept as body text.
const MaxHeadingTokens = 30

// PreambleTitle names the implicit section opened when body text appears
// before the first recognized heading.
const PreambleTitle = "(preamble)"

var (
	numberedHeadingRe = regexp.MustCompile(`^\d+(\.\d+)*\s+\S`)
	// cidRe matches the glyph-mapping failure marker some PDF extractors
	// leave behind, e.g. "(cid:127)".
	cidRe = regexp.MustCompile(`\(cid:[^)]*\)`)
)

// Unnumbered top-level markers recognized as headings by case-insensitive
// prefix match.
var topLevelMarkers = []string{
	"Preface",
	"Contents",
	"About the Authors",
	"Afterword",
	"Appendix",
}

// IsHeading reports whether a cleaned line starts a new section.
func IsHeading(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if len(strings.Fields(line)) > MaxHeadingTokens {
		return false
	}
	if numberedHeadingRe.MatchString(line) {
		return true
	}
	lower := strings.ToLower(line)
	for _, marker := range topLevelMarkers {
		if strings.HasPrefix(lower, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}

// Segment consumes the page-line stream once and returns heading-delimited
// sections in document order. Every section records the distinct pages its
// content touched, in first-seen order.
func Segment(lines []corpus.PageLine) []corpus.Section {
	var sections []corpus.Section
	var cur *corpus.Section
	var buf []string

	flushParagraph := func() {
		if cur != nil && len(buf) > 0 {
			para := strings.Join(strings.Fields(strings.Join(buf, " ")), " ")
			if para != "" {
				cur.TextBlocks = append(cur.TextBlocks, para)
			}
		}
		buf = nil
	}
	finalize := func() {
		flushParagraph()
		if cur != nil {
			sections = append(sections, *cur)
			cur = nil
		}
	}
	open := func(title string, page int) {
		cur = &corpus.Section{
			ID:    fmt.Sprintf("sec_%04d", len(sections)),
			Title: title,
			Pages: []int{page},
		}
	}
	notePage := func(page int) {
		if cur.Pages[len(cur.Pages)-1] != page {
			cur.Pages = append(cur.Pages, page)
		}
	}

	for _, ln := range lines {
		text := strings.TrimSpace(cidRe.ReplaceAllString(ln.Text, ""))
		if text == "" {
			flushParagraph()
			continue
		}
		if IsHeading(text) {
			finalize()
			open(text, ln.Page)
			continue
		}
		if cur == nil {
			open(PreambleTitle, ln.Page)
		}
		buf = append(buf, text)
		notePage(ln.Page)
	}
	finalize()

	return sections
}
