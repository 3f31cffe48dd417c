// Package tui is the interactive terminal UI: the focus timer, session
// history and the session results screen.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"lefocus-cli/internal/store"
)

// Run blocks until the user quits.
func Run(opts Options) error {
	applyColorProfilePreference()
	var tuiCfg store.TUIConfig
	if opts.Config != nil && opts.Config.TUI != nil {
		tuiCfg = *opts.Config.TUI
	}
	applyThemePreference(tuiCfg.Theme)
	applyGlyphPreference(tuiCfg.Glyphs)

	m := newAppModel(opts)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
