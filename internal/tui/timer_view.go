package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"lefocus-cli/internal/clocksync"
	"lefocus-cli/internal/timer"
)

func (m appModel) viewTimer() string {
	st := m.timerState
	dir := m.direction
	var shown time.Duration
	if st.Status == timer.StatusIdle {
		if dir == clocksync.Down {
			shown = m.target
		}
	} else {
		dir = st.Direction
		shown = m.engine.DisplayDuration()
	}

	digits := bigDigits(clockText(shown, dir == clocksync.Down))
	switch {
	case st.Status == timer.StatusRunning:
		digits = styleAccent().Render(digits)
	case st.Status == timer.StatusStopped:
		digits = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render(digits)
	case st.Status == timer.StatusPaused:
		digits = lipgloss.NewStyle().Foreground(colorWarning).Render(digits)
	default:
		digits = styleHeader().Render(digits)
	}

	mode := "countdown"
	if dir == clocksync.Up {
		mode = "stopwatch"
	}
	info := []string{string(st.Status), mode}
	if dir == clocksync.Down {
		target := m.target
		if st.Status != timer.StatusIdle {
			target = time.Duration(st.TargetMs) * time.Millisecond
		}
		info = append(info, "target "+fmtDuration(target))
	}
	labelID := m.labelID
	if st.Status != timer.StatusIdle {
		labelID = st.LabelID
	}
	if lb := m.labelByID(labelID); lb != nil {
		info = append(info, labelSwatch(lb.Color)+" "+lb.Name)
	}

	lines := []string{digits, "", styleMuted().Render(strings.Join(info, " · "))}
	if dir == clocksync.Down && st.Status != timer.StatusIdle && st.TargetMs > 0 {
		lines = append(lines, "", progressBar(st.TargetMs-m.engine.Display(), st.TargetMs, min(40, max(m.width-10, 10))))
	}
	if st.Status == timer.StatusStopped {
		lines = append(lines, "", styleAccent().Render("Time's up. Press e to review the session."))
	}
	return lipgloss.Place(m.width, max(m.height-4, len(lines)+6), lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, lines...))
}

func progressBar(done, total int64, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	done = min(max(done, 0), total)
	filled := int(done * int64(width) / total)
	return styleAccent().Render(strings.Repeat(glyphBar(), filled)) +
		styleMuted().Render(strings.Repeat(glyphBarEmpty(), width-filled))
}
