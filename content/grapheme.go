package content

import (
	"github.com/scalecode-solutions/runeseg"
)

// Graphemes indexes a string by Unicode grapheme cluster so mention
// offsets and length limits behave correctly with emoji and combining
// characters.
type Graphemes struct {
	original string
	// Byte offset of each cluster, plus a final end-of-string entry
	offsets []int
}

// NewGraphemes segments a string into grapheme clusters.
func NewGraphemes(str string) *Graphemes {
	if str == "" {
		return &Graphemes{original: str}
	}

	offsets := make([]int, 0, len(str)/2)
	offset := 0
	for state, remaining := -1, str; len(remaining) > 0; {
		var cluster string
		cluster, remaining, _, state = runeseg.StepString(remaining, state)
		offsets = append(offsets, offset)
		offset += len(cluster)
	}
	offsets = append(offsets, offset)

	return &Graphemes{original: str, offsets: offsets}
}

// Length returns the number of grapheme clusters.
func (g *Graphemes) Length() int {
	if g == nil || len(g.offsets) == 0 {
		return 0
	}
	return len(g.offsets) - 1
}

// Slice returns a substring from grapheme index start to end (exclusive).
func (g *Graphemes) Slice(start, end int) string {
	if g == nil || len(g.offsets) == 0 {
		return ""
	}

	length := g.Length()
	if start < 0 {
		start = 0
	}
	if end > length {
		end = length
	}
	if start >= end {
		return ""
	}
	return g.original[g.offsets[start]:g.offsets[end]]
}

// GraphemeLength returns the number of grapheme clusters in a string.
func GraphemeLength(str string) int {
	return NewGraphemes(str).Length()
}

// Truncate returns the string cut to maxGraphemes clusters.
func Truncate(str string, maxGraphemes int) string {
	g := NewGraphemes(str)
	if g.Length() <= maxGraphemes {
		return str
	}
	return g.Slice(0, maxGraphemes)
}
