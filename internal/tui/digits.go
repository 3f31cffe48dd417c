package tui

import (
	"fmt"
	"strings"
	"time"
)

// 3x5 bitmaps for the timer digits. '#' cells are drawn with glyphBar.
var digitFont = map[rune][5]string{
	'0': {"###", "# #", "# #", "# #", "###"},
	'1': {"  #", "  #", "  #", "  #", "  #"},
	'2': {"###", "  #", "###", "#  ", "###"},
	'3': {"###", "  #", "###", "  #", "###"},
	'4': {"# #", "# #", "###", "  #", "  #"},
	'5': {"###", "#  ", "###", "  #", "###"},
	'6': {"###", "#  ", "###", "# #", "###"},
	'7': {"###", "  #", "  #", "  #", "  #"},
	'8': {"###", "# #", "###", "# #", "###"},
	'9': {"###", "# #", "###", "  #", "###"},
	':': {" ", "#", " ", "#", " "},
}

// clockText formats a display value as MM:SS, or H:MM:SS past an hour.
// Countdowns round up so the display reaches 00:00 only at zero.
func clockText(d time.Duration, roundUp bool) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	if roundUp && d%time.Second != 0 {
		secs++
	}
	h, m, s := secs/3600, secs%3600/60, secs%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// bigDigits renders text in the block font. Unknown runes are skipped.
func bigDigits(text string) string {
	var rows [5]strings.Builder
	bar := glyphBar()
	first := true
	for _, r := range text {
		glyph, ok := digitFont[r]
		if !ok {
			continue
		}
		for i := range rows {
			if !first {
				rows[i].WriteString(" ")
			}
			for _, c := range glyph[i] {
				if c == '#' {
					rows[i].WriteString(bar)
				} else {
					rows[i].WriteString(" ")
				}
			}
		}
		first = false
	}
	out := make([]string, len(rows))
	for i := range rows {
		out[i] = rows[i].String()
	}
	return strings.Join(out, "\n")
}
