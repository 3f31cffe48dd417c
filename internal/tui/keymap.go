package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit key.Binding
	Back key.Binding

	// timer
	StartPause key.Binding
	End        key.Binding
	Cancel     key.Binding
	Direction  key.Binding
	Longer     key.Binding
	Shorter    key.Binding
	Label      key.Binding
	History    key.Binding

	// history
	Open    key.Binding
	Timer   key.Binding
	Refresh key.Binding

	// results
	Note key.Binding
	Copy key.Binding

	// label picker
	NewLabel    key.Binding
	RenameLabel key.Binding
	DeleteLabel key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Back: key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),

		StartPause: key.NewBinding(key.WithKeys(" ", "s"), key.WithHelp("space", "start/pause")),
		End:        key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "end")),
		Cancel:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "cancel")),
		Direction:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "countdown/stopwatch")),
		Longer:     key.NewBinding(key.WithKeys("+", "=", "up"), key.WithHelp("+/-", "target")),
		Shorter:    key.NewBinding(key.WithKeys("-", "_", "down")),
		Label:      key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "label")),
		History:    key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "history")),

		Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Timer:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "timer")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),

		Note: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "note")),
		Copy: key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy summary")),

		NewLabel:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		RenameLabel: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename")),
		DeleteLabel: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
	}
}

func (k keyMap) timerHelp() []key.Binding {
	return []key.Binding{k.StartPause, k.End, k.Cancel, k.Direction, k.Longer, k.Label, k.History, k.Quit}
}

func (k keyMap) historyHelp() []key.Binding {
	return []key.Binding{k.Open, k.Timer, k.Refresh, k.Quit}
}

func (k keyMap) resultsHelp() []key.Binding {
	nav := key.NewBinding(key.WithKeys("up", "down", "left", "right"), key.WithHelp("←↑↓→", "move"))
	sel := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open/toggle"))
	return []key.Binding{nav, sel, k.Note, k.Label, k.Copy, k.Back, k.Quit}
}

func (k keyMap) pickerHelp() []key.Binding {
	choose := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "choose"))
	closeKey := key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close"))
	return []key.Binding{choose, k.NewLabel, k.RenameLabel, k.DeleteLabel, closeKey}
}
