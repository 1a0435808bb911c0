package segment

import (
	"reflect"
	"strings"
	"testing"

	"bookrag/internal/corpus"
)

func TestIsHeading_Numbered(t *testing.T) {
	cases := []struct {
		line string
		want bool
	}{
		{"1.2 Software Development Processes: Plan-and-Document", true},
		{"3 Introduction", true},
		{"10.4.2 Cache Coherence Protocols", true},
		{"Preface", true},
		{"CONTENTS", true},
		{"About the Authors", true},
		{"appendix A: Notation", true},
		{"A plain sentence that is not a heading", false},
		{"", false},
		{"1.2", false}, // number with no title text
	}
	for _, tc := range cases {
		if got := IsHeading(tc.line); got != tc.want {
			t.Errorf("IsHeading(%q) = %v, want %v", tc.line, got, tc.want)
		}
	}
}

func TestIsHeading_TokenLimitFiltersCaptions(t *testing.T) {
	// A figure caption that starts with a number but runs past 30 tokens
	// stays body text.
	caption := "1.1 " + strings.Repeat("word ", 31)
	if IsHeading(caption) {
		t.Error("expected long numbered line to be rejected as heading")
	}
	short := "1.1 " + strings.TrimSpace(strings.Repeat("word ", 29))
	if !IsHeading(short) {
		t.Error("expected numbered line within the token limit to be a heading")
	}
}

func TestSegment_HeadingStartsSection(t *testing.T) {
	lines := []corpus.PageLine{
		{Page: 5, Text: "1.2 Software Development Processes: Plan-and-Document"},
		{Page: 5, Text: "Every large system needs a process."},
	}
	sections := Segment(lines)
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	sec := sections[0]
	if sec.Title != "1.2 Software Development Processes: Plan-and-Document" {
		t.Errorf("unexpected title: %q", sec.Title)
	}
	if !reflect.DeepEqual(sec.Pages, []int{5}) {
		t.Errorf("expected pages [5], got %v", sec.Pages)
	}
	if sec.ID != "sec_0000" {
		t.Errorf("expected id sec_0000, got %q", sec.ID)
	}
}

func TestSegment_PreambleBeforeFirstHeading(t *testing.T) {
	lines := []corpus.PageLine{
		{Page: 1, Text: "Copyright notice and edition details."},
		{Page: 1, Text: ""},
		{Page: 2, Text: "1 Getting Started"},
		{Page: 2, Text: "Welcome to the book."},
	}
	sections := Segment(lines)
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	if sections[0].Title != PreambleTitle {
		t.Errorf("expected preamble title, got %q", sections[0].Title)
	}
	if sections[1].Title != "1 Getting Started" {
		t.Errorf("unexpected second title: %q", sections[1].Title)
	}
	if sections[1].ID != "sec_0001" {
		t.Errorf("expected id sec_0001, got %q", sections[1].ID)
	}
}

func TestSegment_PagesInFirstSeenOrder(t *testing.T) {
	lines := []corpus.PageLine{
		{Page: 3, Text: "2 Processes"},
		{Page: 3, Text: "First paragraph on page three."},
		{Page: 4, Text: "Continues on page four."},
		{Page: 4, Text: "Still page four."},
		{Page: 5, Text: "And ends on page five."},
	}
	sections := Segment(lines)
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	if !reflect.DeepEqual(sections[0].Pages, []int{3, 4, 5}) {
		t.Errorf("expected pages [3 4 5], got %v", sections[0].Pages)
	}
}

func TestSegment_ParagraphFlushing(t *testing.T) {
	lines := []corpus.PageLine{
		{Page: 1, Text: "1 Intro"},
		{Page: 1, Text: "First   paragraph"},
		{Page: 1, Text: "spans two lines."},
		{Page: 1, Text: ""},
		{Page: 1, Text: "Second paragraph."},
	}
	sections := Segment(lines)
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	want := []string{"First paragraph spans two lines.", "Second paragraph."}
	if !reflect.DeepEqual(sections[0].TextBlocks, want) {
		t.Errorf("expected paragraphs %v, got %v", want, sections[0].TextBlocks)
	}
}

func TestSegment_StripsCIDArtifacts(t *testing.T) {
	lines := []corpus.PageLine{
		{Page: 1, Text: "1 Intro"},
		{Page: 1, Text: "Some(cid:127) text with artifacts(cid:9)."},
		{Page: 1, Text: "(cid:3)"},
	}
	sections := Segment(lines)
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	body := sections[0].Text()
	if strings.Contains(body, "cid:") {
		t.Errorf("cid artifacts should be stripped, got %q", body)
	}
	// A line that is nothing but an artifact becomes blank and only
	// flushes the paragraph.
	if len(sections[0].TextBlocks) != 1 {
		t.Errorf("expected 1 paragraph, got %d", len(sections[0].TextBlocks))
	}
}

func TestSegment_FinalizesAtStreamEnd(t *testing.T) {
	lines := []corpus.PageLine{
		{Page: 9, Text: "4.1 Final Thoughts"},
		{Page: 9, Text: "Unterminated paragraph"},
	}
	sections := Segment(lines)
	if len(sections) != 1 {
		t.Fatalf("expected the open section to be finalized, got %d sections", len(sections))
	}
	if len(sections[0].TextBlocks) != 1 || sections[0].TextBlocks[0] != "Unterminated paragraph" {
		t.Errorf("expected pending paragraph to flush, got %v", sections[0].TextBlocks)
	}
}

func TestSegment_Empty(t *testing.T) {
	if sections := Segment(nil); len(sections) != 0 {
		t.Fatalf("expected no sections for empty input, got %d", len(sections))
	}
}
