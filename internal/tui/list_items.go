package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/dustin/go-humanize"

	"lefocus-cli/internal/model"
	"lefocus-cli/internal/publish"
)

type sessionItem struct {
	summary model.SessionSummary
	label   *model.Label
	now     time.Time
}

func (i sessionItem) FilterValue() string {
	parts := []string{i.summary.ID}
	if i.label != nil {
		parts = append(parts, i.label.Name)
	}
	if i.summary.Note != nil {
		parts = append(parts, *i.summary.Note)
	}
	for _, a := range i.summary.TopApps {
		parts = append(parts, a.DisplayName())
	}
	return strings.Join(parts, " ")
}

func (i sessionItem) Title() string {
	s := i.summary.Session
	title := s.StartedAt.Local().Format("Mon Jan 2 15:04")
	if i.label != nil {
		title += "  " + labelSwatch(i.label.Color) + " " + i.label.Name
	}
	if s.Note != nil && strings.TrimSpace(*s.Note) != "" {
		title += "  " + styleMuted().Render(firstLine(*s.Note))
	}
	return title
}

func (i sessionItem) Description() string {
	s := i.summary.Session
	parts := []string{
		fmtDuration(s.Active()),
		string(s.Status),
		humanize.RelTime(s.StartedAt, i.now, "ago", "from now"),
	}
	if len(i.summary.TopApps) > 0 {
		apps := make([]string, 0, len(i.summary.TopApps))
		for _, a := range i.summary.TopApps {
			apps = append(apps, fmt.Sprintf("%s %.0f%%", a.DisplayName(), a.Percentage))
		}
		parts = append(parts, strings.Join(apps, ", "))
	}
	return strings.Join(parts, " · ")
}

func newList(title string, withDescription bool, items []list.Item) list.Model {
	d := list.NewDefaultDelegate()
	if !withDescription {
		d.ShowDescription = false
		d.SetSpacing(0)
	}
	l := list.New(items, d, 0, 0)
	l.Title = title
	// The app renders its own header and footer, so keep list chrome minimal.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(true)
	l.SetStatusBarItemName("item", "items")
	// The app owns quitting; ESC is "back/cancel".
	l.DisableQuitKeybindings()

	cursorUpKeys := append([]string{}, l.KeyMap.CursorUp.Keys()...)
	cursorUpKeys = append(cursorUpKeys, "ctrl+p")
	l.KeyMap.CursorUp.SetKeys(cursorUpKeys...)

	cursorDownKeys := append([]string{}, l.KeyMap.CursorDown.Keys()...)
	cursorDownKeys = append(cursorDownKeys, "ctrl+n")
	l.KeyMap.CursorDown.SetKeys(cursorDownKeys...)
	return l
}

func sessionItems(sessions []model.SessionSummary, labels map[int64]model.Label, now time.Time) []list.Item {
	items := make([]list.Item, 0, len(sessions))
	for _, s := range sessions {
		it := sessionItem{summary: s, now: now}
		if s.LabelID != nil {
			if lb, ok := labels[*s.LabelID]; ok {
				it.label = &lb
			}
		}
		items = append(items, it)
	}
	return items
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + glyphEllipsis()
	}
	return s
}

// fmtDuration renders whole seconds as 1h05m, 25m or 42s.
func fmtDuration(d time.Duration) string { return publish.FormatDuration(d) }
