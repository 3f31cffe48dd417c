package tui

func (m appModel) viewHistory() string {
	if !m.historyLoaded {
		return styleMuted().Render("Loading sessions" + glyphEllipsis())
	}
	if len(m.history.Items()) == 0 {
		return styleMuted().Render("No finished sessions yet. Press t to start a timer.")
	}
	return m.history.View()
}
