// Package display measures titles in terminal-style columns so renderers
// can fit them into fixed-width cells.
package display

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// Title limits used by the score cards.
const (
	TitleMaxColumns = 18
	TitleCutColumns = 17
	Ellipsis        = "..."
)

// CharWidth returns how many columns r occupies: 0 for combining marks and
// shift controls, 2 for wide and fullwidth runes, 1 otherwise.
func CharWidth(r rune) int {
	switch {
	case r == 0x0e, r == 0x0f:
		return 0
	case unicode.In(r, unicode.Mn, unicode.Me, unicode.Cf):
		return 0
	}
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}

// ColumnWidth returns the total column width of s.
func ColumnWidth(s string) int {
	n := 0
	for _, r := range s {
		n += CharWidth(r)
	}
	return n
}

// TruncateColumns returns the longest prefix of s that fits in columns.
func TruncateColumns(s string, columns int) string {
	n := 0
	for i, r := range s {
		n += CharWidth(r)
		if n > columns {
			return s[:i]
		}
	}
	return s
}

// ShortTitle cuts titles wider than TitleMaxColumns down to TitleCutColumns
// and appends an ellipsis.
func ShortTitle(title string) string {
	if ColumnWidth(title) <= TitleMaxColumns {
		return title
	}
	return TruncateColumns(title, TitleCutColumns) + Ellipsis
}

// PadRight truncates or pads s with spaces to exactly columns wide. A wide
// rune that would straddle the edge is replaced by padding.
func PadRight(s string, columns int) string {
	s = TruncateColumns(s, columns)
	if n := columns - ColumnWidth(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}
