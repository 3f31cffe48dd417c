package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"lefocus-cli/internal/store"
)

// statusLine is the one-line flash message under the footer. Errors reported
// from anywhere bump seq so the app can schedule the clear.
type statusLine struct {
	text    string
	isError bool
	seq     int
}

func (s *statusLine) Report(err error) {
	if err == nil {
		return
	}
	s.text = err.Error()
	s.isError = true
	s.seq++
}

func (s *statusLine) Info(text string) {
	s.text = text
	s.isError = false
	s.seq++
}

func (s *statusLine) clear() {
	s.text = ""
	s.isError = false
}

// flashCmd schedules clearing the status line if something new was shown
// since the last call.
func (m *appModel) flashCmd() tea.Cmd {
	if m.status.seq == m.flashSeq {
		return nil
	}
	m.flashSeq = m.status.seq
	seq := m.flashSeq
	return tea.Tick(flashDuration, func(_ time.Time) tea.Msg { return flashDoneMsg{seq: seq} })
}

// sessionNotes saves the note of one session.
type sessionNotes struct {
	st store.Store
	id string
}

func (n sessionNotes) SaveNote(ctx context.Context, text string) error {
	if n.id == "" {
		return errNoSession
	}
	return n.st.SetSessionNote(ctx, n.id, text)
}

// sessionApps toggles app selections within one session.
type sessionApps struct {
	st store.Store
	id string
}

func (a sessionApps) Toggle(ctx context.Context, bundleID string) error {
	if a.id == "" {
		return errNoSession
	}
	_, err := a.st.ToggleAppSelection(ctx, a.id, bundleID)
	return err
}

var errNoSession = errors.New("no session loaded")
