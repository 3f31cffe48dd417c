package publish

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"lefocus-cli/internal/model"
)

// RenderSessionMarkdown renders a finished session as a standalone Markdown
// page: meta, note, apps (selected ones checked) and the segment timeline.
func RenderSessionMarkdown(res model.SessionResults) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	sess := res.Session
	writeLn("# Focus session " + sess.StartedAt.Local().Format("2006-01-02 15:04"))
	writeLn("")

	writeLn("## Meta")
	writeLn("")
	writeLn("- ID: " + sess.ID)
	writeLn("- Status: " + string(sess.Status))
	dur := "- Duration: " + FormatDuration(sess.Active())
	if sess.TargetMs > 0 {
		dur += " of " + FormatDuration(sess.Target())
	}
	writeLn(dur)
	if res.Label != nil {
		writeLn("- Label: " + strings.TrimSpace(res.Label.Name))
	}
	writeLn("- Started: " + sess.StartedAt.UTC().Format(time.RFC3339))
	if sess.StoppedAt != nil {
		writeLn("- Stopped: " + sess.StoppedAt.UTC().Format(time.RFC3339))
	}

	if sess.Note != nil && strings.TrimSpace(*sess.Note) != "" {
		writeLn("")
		writeLn("## Note")
		writeLn("")
		writeLn(strings.TrimSpace(*sess.Note))
	}

	if len(res.TopApps) > 0 {
		writeLn("")
		writeLn("## Apps")
		writeLn("")
		for _, a := range res.TopApps {
			mark := " "
			if a.Selected {
				mark = "x"
			}
			writeLn(fmt.Sprintf("- [%s] %s %s (%.0f%%)", mark, a.DisplayName(), FormatDuration(a.Duration()), a.Percentage))
		}
	}

	if len(res.Segments) > 0 {
		writeLn("")
		writeLn("## Timeline")
		writeLn("")
		for _, seg := range res.Segments {
			writeLn(fmt.Sprintf("### %s-%s %s", seg.StartTime.Local().Format("15:04"), seg.EndTime.Local().Format("15:04"), seg.DisplayName()))
			writeLn("")
			if seg.WindowTitle != nil && strings.TrimSpace(*seg.WindowTitle) != "" {
				writeLn("- Window: " + strings.TrimSpace(*seg.WindowTitle))
			}
			writeLn("- Duration: " + FormatDuration(seg.Duration()))
			writeLn("- App: `" + seg.BundleID + "`")
			if seg.Summary != nil && strings.TrimSpace(*seg.Summary) != "" {
				writeLn("")
				writeLn(strings.TrimSpace(*seg.Summary))
			}
			writeLn("")
		}
	}

	return strings.TrimRight(buf.String(), "\n") + "\n"
}

// FormatDuration is the compact duration used across listings: 42s, 25m,
// 12m05s, 1h05m.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < 0 {
		d = 0
	}
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	switch {
	case h > 0:
		return fmt.Sprintf("%dh%02dm", h, m)
	case m > 0 && s == 0:
		return fmt.Sprintf("%dm", m)
	case m > 0:
		return fmt.Sprintf("%dm%02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
