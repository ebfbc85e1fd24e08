package palette

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// MatchRange is a half-open byte range of matched characters.
type MatchRange struct {
	Start int
	End   int
}

// Match is one result of Filter.
type Match struct {
	Index  int // position in the input slice
	Score  int
	Ranges []MatchRange
}

// FuzzyMatch scores text against query. A score of 0 means no match;
// an empty query matches everything with score 1.
func FuzzyMatch(query, text string) (int, []MatchRange) {
	if query == "" {
		return 1, nil
	}
	matches := fuzzy.Find(query, []string{text})
	if len(matches) == 0 {
		return 0, nil
	}
	m := matches[0]
	score := m.Score
	if score < 1 {
		score = 1
	}
	return score, toRanges(text, m.MatchedIndexes)
}

// Filter returns the targets matching query, best score first. Equal scores
// keep input order. An empty query returns every target in input order.
func Filter(query string, targets []string) []Match {
	if query == "" {
		out := make([]Match, len(targets))
		for i := range targets {
			out[i] = Match{Index: i, Score: 1}
		}
		return out
	}
	found := fuzzy.Find(query, targets)
	out := make([]Match, len(found))
	for i, m := range found {
		out[i] = Match{
			Index:  m.Index,
			Score:  m.Score,
			Ranges: toRanges(targets[m.Index], m.MatchedIndexes),
		}
	}
	return out
}

// toRanges merges adjacent matched byte offsets into ranges.
func toRanges(text string, idx []int) []MatchRange {
	if len(idx) == 0 {
		return nil
	}
	var ranges []MatchRange
	for _, i := range idx {
		_, size := utf8.DecodeRuneInString(text[i:])
		end := i + size
		if n := len(ranges); n > 0 && ranges[n-1].End == i {
			ranges[n-1].End = end
			continue
		}
		ranges = append(ranges, MatchRange{Start: i, End: end})
	}
	return ranges
}

// HighlightMatches renders the matched ranges of text with style. Ranges
// outside text are ignored.
func HighlightMatches(text string, ranges []MatchRange, style lipgloss.Style) string {
	if len(ranges) == 0 {
		return text
	}
	var b strings.Builder
	pos := 0
	for _, r := range ranges {
		if r.Start < pos || r.End > len(text) || r.Start >= r.End {
			continue
		}
		b.WriteString(text[pos:r.Start])
		b.WriteString(style.Render(text[r.Start:r.End]))
		pos = r.End
	}
	b.WriteString(text[pos:])
	return b.String()
}
