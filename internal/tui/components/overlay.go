// Package components provides reusable TUI components.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Overlay draws fg centered over bg, keeping the background visible around
// it. Both may contain ANSI sequences.
func Overlay(bg, fg string, width, height int) string {
	bgLines := strings.Split(bg, "\n")
	for len(bgLines) < height {
		bgLines = append(bgLines, "")
	}

	fgLines := strings.Split(fg, "\n")
	fgW, fgH := lipgloss.Width(fg), len(fgLines)
	x := max((width-fgW)/2, 0)
	y := max((max(height, len(bgLines))-fgH)/2, 0)

	for i, line := range fgLines {
		row := y + i
		if row >= len(bgLines) {
			bgLines = append(bgLines, "")
		}
		bgLines[row] = splice(bgLines[row], line, x, fgW)
	}

	return strings.Join(bgLines, "\n")
}

// splice replaces the cells [x, x+w) of line with fg.
func splice(line, fg string, x, w int) string {
	left := ansi.Truncate(line, x, "")
	if pad := x - ansi.StringWidth(left); pad > 0 {
		left += strings.Repeat(" ", pad)
	}

	fgPad := w - ansi.StringWidth(fg)
	if fgPad > 0 {
		fg += strings.Repeat(" ", fgPad)
	}

	right := ""
	if ansi.StringWidth(line) > x+w {
		right = ansi.TruncateLeft(line, x+w, "")
	}

	return left + fg + right
}
