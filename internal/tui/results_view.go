package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"lefocus-cli/internal/focus"
	"lefocus-cli/internal/model"
	"lefocus-cli/internal/publish"
	"lefocus-cli/internal/results"
)

func (m appModel) viewResults() string {
	c := m.results
	if !c.Mounted() {
		return styleMuted().Render("Loading session" + glyphEllipsis())
	}
	inner := max(m.width-4, 10)
	st := c.State()

	sess := c.Session()
	title := styleHeader().Render(sess.StartedAt.Local().Format("Mon Jan 2 15:04"))
	meta := []string{fmtDuration(sess.Active())}
	if sess.TargetMs > 0 {
		meta[0] += " of " + fmtDuration(sess.Target())
	}
	meta = append(meta, string(sess.Status))
	if lb := c.Label(); lb != nil {
		meta = append(meta, labelSwatch(lb.Color)+" "+lb.Name)
	} else {
		meta = append(meta, styleMuted().Render("no label"))
	}
	header := title + "  " + strings.Join(meta, " · ")

	selected := focus.NoIndex
	if st.Zone == results.ZoneTimeline {
		selected = st.Index
	}
	timeline := styleZone(c.Focused(results.ZoneTimeline)).Width(m.width - 2).Render(
		zoneTitle("Timeline", c.Focused(results.ZoneTimeline)) + "\n" +
			timelineStrip(c.Segments(), selected, inner) + "\n" +
			timelineBar(c.Segments(), selected, inner),
	)

	var noteBody string
	switch {
	case c.Editing():
		noteBody = c.NoteView()
	case strings.TrimSpace(c.NoteText()) != "":
		noteBody = c.NoteText()
	default:
		noteBody = styleMuted().Render("No note. Press n to write one.")
	}
	noteTitle := "Note"
	if c.Editing() {
		noteTitle += styleMuted().Render("  editing, ↑/↓ or esc to save")
	}
	note := styleZone(c.Focused(results.ZoneNote)).Width(m.width - 2).Render(
		zoneTitle(noteTitle, c.Focused(results.ZoneNote)) + "\n" + noteBody,
	)

	listIdx := focus.NoIndex
	if st.Zone == results.ZoneList {
		listIdx = st.Index
	}
	apps := styleZone(c.Focused(results.ZoneList)).Width(m.width - 2).Render(
		zoneTitle("Apps", c.Focused(results.ZoneList)) + "\n" + appRows(c.Apps(), listIdx, inner),
	)

	return lipgloss.JoinVertical(lipgloss.Left, header, timeline, note, apps)
}

func zoneTitle(title string, focused bool) string {
	if focused {
		return styleAccent().Render(title)
	}
	return styleMuted().Render(title)
}

func segmentChip(seg model.Segment) string {
	return " " + seg.DisplayName() + " " + fmtDuration(seg.Duration()) + " "
}

// timelineStrip lays segments out left to right, scrolled so the selected
// one stays visible.
func timelineStrip(segs []model.Segment, selected, width int) string {
	if len(segs) == 0 {
		return styleMuted().Render("No activity recorded.")
	}
	chips := make([]string, len(segs))
	for i, seg := range segs {
		chips[i] = truncate(segmentChip(seg), max(width/2, 8))
	}

	start := 0
	if selected > 0 && selected < len(chips) {
		used := 0
		for i := selected; i >= 0; i-- {
			used += xansi.StringWidth(chips[i]) + 1
			if used > width {
				start = i + 1
				break
			}
		}
	}

	var b strings.Builder
	used := 0
	if start > 0 {
		b.WriteString(glyphEllipsis())
		used += xansi.StringWidth(glyphEllipsis())
	}
	for i := start; i < len(chips); i++ {
		w := xansi.StringWidth(chips[i])
		if used+w > width {
			break
		}
		chip := chips[i]
		if i == selected {
			chip = styleSelected().Render(chip)
		} else {
			chip = styleMuted().Render(chip)
		}
		b.WriteString(chip)
		used += w
		if i < len(chips)-1 && used < width {
			b.WriteString("│")
			used++
		}
	}
	return b.String()
}

// timelineBar draws each segment's share of the session as a bar.
func timelineBar(segs []model.Segment, selected, width int) string {
	var total int64
	for _, s := range segs {
		total += s.DurationSecs
	}
	if total <= 0 || width <= 0 {
		return ""
	}
	var b strings.Builder
	drawn := 0
	for i, s := range segs {
		cells := int(float64(s.DurationSecs) / float64(total) * float64(width))
		if i == len(segs)-1 {
			cells = width - drawn
		}
		if cells <= 0 {
			continue
		}
		drawn += cells
		if i == selected {
			b.WriteString(styleAccent().Render(strings.Repeat(glyphBar(), cells)))
			continue
		}
		g := glyphBarEmpty()
		if i%2 == 0 {
			g = glyphBar()
		}
		b.WriteString(styleMuted().Render(strings.Repeat(g, cells)))
	}
	return b.String()
}

func appRows(apps []model.TopApp, cursor, width int) string {
	if len(apps) == 0 {
		return styleMuted().Render("No apps.")
	}
	rows := make([]string, len(apps))
	for i, a := range apps {
		prefix := "  "
		if i == cursor {
			prefix = glyphCursor() + " "
		}
		right := fmt.Sprintf("%8s %4.0f%%", fmtDuration(a.Duration()), a.Percentage)
		left := prefix + glyphCheck(a.Selected) + " " + a.DisplayName()
		gap := width - xansi.StringWidth(right)
		row := fitWidth(left, max(gap, 1)) + right
		if i == cursor {
			row = styleSelected().Render(row)
		}
		rows[i] = row
	}
	return strings.Join(rows, "\n")
}

// summaryText is the Markdown summary copied to the clipboard. The note is
// taken from the field so unsaved edits are included.
func summaryText(c results.Controller) string {
	sess := c.Session()
	note := c.NoteText()
	sess.Note = &note
	return publish.RenderSessionMarkdown(model.SessionResults{
		Session:  sess,
		Label:    c.Label(),
		Segments: c.Segments(),
		TopApps:  c.Apps(),
	})
}
