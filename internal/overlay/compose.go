package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// Placement positions the foreground. Positions follow lipgloss: 0 is
// top/left, 0.5 centered, 1 bottom/right.
type Placement struct {
	Horizontal lipgloss.Position
	Vertical   lipgloss.Position
	MarginX    int
	MarginY    int
}

// Centered places the foreground in the middle of the background.
var Centered = Placement{Horizontal: lipgloss.Center, Vertical: lipgloss.Center}

// Compose draws foreground over background, keeping the background visible
// outside the foreground's box. Both may contain ANSI styling.
func Compose(background string, width, height int, foreground string, p Placement) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	bg := normalize(background, width, height)
	if foreground == "" {
		return strings.Join(bg, "\n")
	}
	fg := strings.Split(foreground, "\n")
	fgWidth := 0
	for _, line := range fg {
		if w := xansi.StringWidth(line); w > fgWidth {
			fgWidth = w
		}
	}
	if fgWidth > width {
		fgWidth = width
	}
	fgHeight := len(fg)
	if fgHeight > height {
		fgHeight = height
	}

	x := offset(width, fgWidth, p.Horizontal, p.MarginX)
	y := offset(height, fgHeight, p.Vertical, p.MarginY)

	for row := 0; row < fgHeight; row++ {
		line := pad(fg[row], fgWidth)
		base := bg[y+row]
		bg[y+row] = xansi.Cut(base, 0, x) + line + xansi.Cut(base, x+fgWidth, width)
	}
	return strings.Join(bg, "\n")
}

func offset(total, size int, pos lipgloss.Position, margin int) int {
	var o int
	switch {
	case pos <= lipgloss.Top:
		o = margin
	case pos >= lipgloss.Bottom:
		o = total - size - margin
	default:
		o = int(float64(total-size) * float64(pos))
	}
	if o > total-size {
		o = total - size
	}
	if o < 0 {
		o = 0
	}
	return o
}

func normalize(view string, width, height int) []string {
	lines := strings.Split(view, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i := range lines {
		lines[i] = pad(lines[i], width)
	}
	return lines
}

func pad(s string, width int) string {
	w := xansi.StringWidth(s)
	if w > width {
		return xansi.Truncate(s, width, "")
	}
	return s + strings.Repeat(" ", width-w)
}
