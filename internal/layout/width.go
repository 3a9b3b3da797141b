// Package layout provides display-width, truncation, and ANSI-aware
// slicing helpers used by the HUD renderer, the input parser and the
// prompt detectors.
package layout

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// RuneWidth returns the display width of a single rune: 2 for wide runes
// (CJK, fullwidth forms), 0 for zero-width combining marks and control
// characters, 1 otherwise.
func RuneWidth(r rune) int {
	return runewidth.RuneWidth(r)
}

// StringWidth returns the total display width of s, ignoring ANSI escape
// sequences embedded in it.
func StringWidth(s string) int {
	width := 0
	inEscape := false
	for _, r := range s {
		if inEscape {
			if isEscapeFinal(r) {
				inEscape = false
			}
			continue
		}
		if r == 0x1b {
			inEscape = true
			continue
		}
		width += RuneWidth(r)
	}
	return width
}

func isEscapeFinal(r rune) bool {
	return r >= 0x40 && r <= 0x7e
}

// TruncateToWidth truncates s (which may contain ANSI escapes) to fit
// within width display columns, appending no ellipsis. ANSI sequences are
// preserved in full; only printable runes count against width.
func TruncateToWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	var b strings.Builder
	used := 0
	inEscape := false
	for _, r := range s {
		if inEscape {
			b.WriteRune(r)
			if isEscapeFinal(r) {
				inEscape = false
			}
			continue
		}
		if r == 0x1b {
			inEscape = true
			b.WriteRune(r)
			continue
		}
		w := RuneWidth(r)
		if used+w > width {
			break
		}
		used += w
		b.WriteRune(r)
	}
	return b.String()
}

// TrimLeftToWidth trims s from the left so that the remaining display width
// fits within width columns. Used for right-aligned fields (e.g. the HUD's
// agent-name suffix) where the most recent characters matter most.
func TrimLeftToWidth(s string, width int) string {
	if width <= 0 || StringWidth(s) <= width {
		return s
	}
	runes := []rune(s)
	start, used := len(runes), 0
	for start > 0 && used+RuneWidth(runes[start-1]) <= width {
		start--
		used += RuneWidth(runes[start])
	}
	return string(runes[start:])
}

// PadRight pads s with spaces on the right until it reaches width display
// columns. No-op if s is already at or beyond width.
func PadRight(s string, width int) string {
	w := StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
