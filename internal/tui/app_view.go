package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"lefocus-cli/internal/clocksync"
	"lefocus-cli/internal/overlay"
)

func (m appModel) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}

	var body string
	var bindings []key.Binding
	switch m.screen {
	case ScreenTimer:
		body = m.viewTimer()
		bindings = m.keys.timerHelp()
	case ScreenResults:
		body = m.viewResults()
		bindings = m.keys.resultsHelp()
	default:
		body = m.viewHistory()
		bindings = m.keys.historyHelp()
	}

	header := m.viewHeader()
	footer := m.viewFooter(bindings)
	bodyHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 1)
	view := lipgloss.JoinVertical(lipgloss.Left,
		header,
		normalizePane(body, m.width, bodyHeight),
		footer,
	)

	if m.overlays.IsAnyOpen() {
		if fg := m.overlays.view(m.width, m.keys); fg != "" {
			return overlay.Compose(view, m.width, m.height, fg, overlay.Centered)
		}
	}
	return view
}

func (m appModel) viewHeader() string {
	tabs := []struct {
		s    Screen
		name string
	}{
		{ScreenTimer, "Timer"},
		{ScreenHistory, "History"},
		{ScreenResults, "Results"},
	}
	parts := make([]string, 0, len(tabs)+1)
	parts = append(parts, styleAccent().Render("LeFocus"))
	for _, t := range tabs {
		if t.s == ScreenResults && m.screen != ScreenResults {
			continue
		}
		if t.s == m.screen {
			parts = append(parts, styleSelected().Render(" "+t.name+" "))
		} else {
			parts = append(parts, styleMuted().Render(" "+t.name+" "))
		}
	}
	if st := m.timerState; st.SessionID != "" && m.screen != ScreenTimer {
		parts = append(parts, styleMuted().Render(string(st.Status)+" "+clockText(m.engine.DisplayDuration(), st.Direction == clocksync.Down)))
	}
	return fitWidth(strings.Join(parts, " "), m.width) + "\n"
}

func (m appModel) viewFooter(bindings []key.Binding) string {
	line := fitWidth(m.help.ShortHelpView(bindings), m.width)
	status := ""
	if m.status.text != "" {
		if m.status.isError {
			status = styleFlashError().Render(truncate(m.status.text, max(m.width-2, 1)))
		} else {
			status = styleAccent().Render(truncate(m.status.text, m.width))
		}
	}
	return fitWidth(status, m.width) + "\n" + line
}

// helpLine renders bindings with the shared help styles.
func helpLine(bindings []key.Binding) string {
	return help.New().ShortHelpView(bindings)
}
