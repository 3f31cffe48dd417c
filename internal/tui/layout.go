package tui

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

// normalizePane forces s to be exactly width columns wide (ANSI-aware) and
// height lines tall, so panes line up when joined.
func normalizePane(s string, width, height int) string {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	lines := strings.Split(s, "\n")
	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}

	for i, ln := range lines {
		lines[i] = fitWidth(ln, width)
	}
	return strings.Join(lines, "\n")
}

// fitWidth truncates with an ellipsis or pads with spaces to exactly width
// columns.
func fitWidth(ln string, width int) string {
	if width <= 0 {
		return ""
	}
	w := xansi.StringWidth(ln)
	if w > width {
		ln = truncate(ln, width)
		w = xansi.StringWidth(ln)
	}
	if w < width {
		ln += strings.Repeat(" ", width-w)
	}
	return ln
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if xansi.StringWidth(s) <= width {
		return s
	}
	tail := glyphEllipsis()
	if width <= xansi.StringWidth(tail) {
		return xansi.Cut(s, 0, width)
	}
	return xansi.Truncate(s, width, tail)
}
