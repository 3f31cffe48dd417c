package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"lefocus-cli/internal/clocksync"
	"lefocus-cli/internal/frame"
	"lefocus-cli/internal/model"
	"lefocus-cli/internal/notify"
	"lefocus-cli/internal/results"
	"lefocus-cli/internal/timer"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := m.update(msg)
	flash := m.flashCmd()
	return m, tea.Batch(cmd, flash)
}

func (m appModel) update(msg tea.Msg) (appModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.history.SetSize(msg.Width, max(msg.Height-5, 1))
		m.results = m.results.SetNoteWidth(msg.Width - 6)
		m.overlays.setSize(msg.Width, msg.Height)
		return m, nil

	case flashDoneMsg:
		if msg.seq == m.status.seq {
			m.status.clear()
		}
		return m, nil

	case frame.Msg:
		if !m.loop.Deliver(msg) {
			return m, nil
		}
		return m, tea.Batch(m.loop.Cmd(), m.takeTerminal())

	case snapshotMsg:
		if !msg.ok {
			m.snaps = nil
			return m, nil
		}
		prev := m.timerState.Status
		m.timerState = msg.snap.State
		m.engine.Sync(msg.snap.Time)
		if m.timerState.Status == timer.StatusStopped && prev != timer.StatusStopped {
			m.status.Info("Session complete. Press e to review it.")
		}
		return m, tea.Batch(m.loop.Cmd(), m.takeTerminal(), waitForSnapshot(m.snaps))

	case timerActionMsg:
		return m.applyTimerAction(msg)

	case historyLoadedMsg:
		if msg.err != nil {
			m.status.Report(fmt.Errorf("load sessions: %w", msg.err))
			return m, nil
		}
		m.historyLoaded = true
		cmd := m.history.SetItems(sessionItems(msg.sessions, m.labelMap(), time.Now()))
		return m, cmd

	case resultsLoadedMsg:
		if msg.id != m.resultsID {
			return m, nil
		}
		if msg.err != nil {
			m.status.Report(fmt.Errorf("load session: %w", msg.err))
			return m, nil
		}
		m.overlays.sessionLabel = msg.res.Session.LabelID
		if m.results.Mounted() && m.results.Session().ID == msg.id {
			m.results = m.results.SetData(msg.res)
		} else {
			m.results = m.results.Mount(msg.res)
		}
		return m, nil

	case labelsLoadedMsg:
		if msg.err != nil {
			m.status.Report(fmt.Errorf("load labels: %w", msg.err))
			return m, nil
		}
		m.overlays.labels = msg.labels
		if m.labelByID(m.labelID) == nil {
			m.labelID = nil
		}
		if m.overlays.IsOpen(overlayLabelPicker) {
			current := m.labelID
			if m.overlays.pickerSession != "" {
				current = m.overlays.sessionLabel
			}
			m.overlays.setPickerLabels(current)
		}
		if m.historyLoaded {
			return m, m.loadHistoryCmd()
		}
		return m, nil

	case labelChosenMsg:
		var id *int64
		if msg.label != nil {
			v := msg.label.ID
			id = &v
		}
		if msg.sessionID == "" {
			m.labelID = id
			m.saveTUIState()
			return m, nil
		}
		return m, m.setSessionLabelCmd(msg.sessionID, id)

	case sessionLabelSetMsg:
		if msg.err != nil {
			m.status.Report(fmt.Errorf("set label: %w", msg.err))
			return m, nil
		}
		return m, m.reloadCmd()

	case saveLabelRequest:
		return m, m.saveLabelCmd(msg)

	case labelSavedMsg:
		if msg.err != nil {
			m.status.Report(fmt.Errorf("save label: %w", msg.err))
			return m, nil
		}
		m.status.Info("Saved label " + msg.label.Name)
		return m, tea.Batch(m.loadLabelsCmd(), m.reloadCmd())

	case deleteLabelRequest:
		return m, m.deleteLabelCmd(msg.id)

	case labelDeletedMsg:
		if msg.err != nil {
			m.status.Report(fmt.Errorf("delete label: %w", msg.err))
			return m, nil
		}
		if m.labelID != nil && *m.labelID == msg.id {
			m.labelID = nil
			m.saveTUIState()
		}
		return m, tea.Batch(m.loadLabelsCmd(), m.reloadCmd())

	case notifiedMsg:
		if msg.err != nil {
			m.log.Debug("completion notification failed", "err", msg.err)
		}
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.status.Report(fmt.Errorf("copy: %w", msg.err))
			return m, nil
		}
		m.status.Info("Copied session summary")
		return m, nil

	case results.NoteSavedMsg, results.ToggledMsg:
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		m.historyLoaded = false
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	switch m.screen {
	case ScreenResults:
		m.results, cmd = m.results.Update(msg)
	case ScreenHistory:
		m.history, cmd = m.history.Update(msg)
	}
	return m, cmd
}

func (m appModel) handleKey(msg tea.KeyMsg) (appModel, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, m.quit()
	}

	if m.overlays.IsAnyOpen() {
		if m.overlays.pickerFiltering() {
			return m, m.overlays.handleKey(msg, m.keys)
		}
		if msg.Type == tea.KeyEsc {
			if m.screen == ScreenResults && m.results.Mounted() {
				// The controller owns Escape while an overlay is open.
				var cmd tea.Cmd
				m.results, cmd, _ = m.results.HandleKey(msg)
				return m, cmd
			}
			m.overlays.CloseTopmost()
			return m, nil
		}
		return m, m.overlays.handleKey(msg, m.keys)
	}

	switch m.screen {
	case ScreenTimer:
		return m.timerKey(msg)
	case ScreenResults:
		return m.resultsKey(msg)
	default:
		return m.historyKey(msg)
	}
}

func (m appModel) timerKey(msg tea.KeyMsg) (appModel, tea.Cmd) {
	status := m.timerState.Status
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.quit()
	case key.Matches(msg, m.keys.StartPause):
		switch status {
		case timer.StatusIdle:
			m.saveTUIState()
			return m, m.timerCmd(actionStart)
		case timer.StatusRunning:
			return m, m.timerCmd(actionPause)
		case timer.StatusPaused:
			return m, m.timerCmd(actionResume)
		}
		return m, nil
	case key.Matches(msg, m.keys.End):
		if status == timer.StatusIdle {
			return m, nil
		}
		return m, m.timerCmd(actionEnd)
	case key.Matches(msg, m.keys.Cancel):
		if status == timer.StatusIdle {
			return m, nil
		}
		return m, m.timerCmd(actionCancel)
	case key.Matches(msg, m.keys.History):
		return m.showHistory()
	}

	if status != timer.StatusIdle {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Direction):
		if m.direction == clocksync.Down {
			m.direction = clocksync.Up
		} else {
			m.direction = clocksync.Down
		}
		m.saveTUIState()
	case key.Matches(msg, m.keys.Longer):
		if m.direction == clocksync.Down {
			m.target = min(m.target+targetStep, maxTarget)
			m.saveTUIState()
		}
	case key.Matches(msg, m.keys.Shorter):
		if m.direction == clocksync.Down {
			m.target = max(m.target-targetStep, targetStep)
			m.saveTUIState()
		}
	case key.Matches(msg, m.keys.Label):
		m.overlays.openLabelPicker("", m.labelID)
	}
	return m, nil
}

func (m appModel) historyKey(msg tea.KeyMsg) (appModel, tea.Cmd) {
	if m.history.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.history, cmd = m.history.Update(msg)
		return m, cmd
	}
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.quit()
	case key.Matches(msg, m.keys.Open):
		it, ok := m.history.SelectedItem().(sessionItem)
		if !ok {
			return m, nil
		}
		return m.openResults(it.summary.ID)
	case key.Matches(msg, m.keys.Timer):
		m.screen = ScreenTimer
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m, tea.Batch(m.loadHistoryCmd(), m.loadLabelsCmd())
	}
	var cmd tea.Cmd
	m.history, cmd = m.history.Update(msg)
	return m, cmd
}

func (m appModel) resultsKey(msg tea.KeyMsg) (appModel, tea.Cmd) {
	var (
		cmd     tea.Cmd
		handled bool
	)
	m.results, cmd, handled = m.results.HandleKey(msg)
	if handled {
		return m, cmd
	}
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.quit()
	case key.Matches(msg, m.keys.Back):
		return m.showHistory()
	case key.Matches(msg, m.keys.Label):
		m.results, cmd = m.results.OpenLabelPicker()
		return m, cmd
	case key.Matches(msg, m.keys.Copy):
		text := summaryText(m.results)
		return m, func() tea.Msg { return copiedMsg{err: copyToClipboard(text)} }
	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadResultsCmd(m.resultsID)
	case key.Matches(msg, m.keys.Timer):
		m.results = m.results.Unmount()
		m.screen = ScreenTimer
		return m, nil
	}
	return m, nil
}

func (m appModel) openResults(id string) (appModel, tea.Cmd) {
	m.resultsID = id
	m.screen = ScreenResults
	m.results = results.New(m.collaborators(id)).SetNoteWidth(m.width - 6)
	m.overlays.sessionLabel = nil
	return m, m.loadResultsCmd(id)
}

func (m appModel) showHistory() (appModel, tea.Cmd) {
	if m.results.Mounted() {
		m.results = m.results.Unmount()
	}
	m.screen = ScreenHistory
	return m, tea.Batch(m.loadHistoryCmd(), m.loadLabelsCmd())
}

// reloadCmd refreshes whatever the current screen shows from the store.
func (m appModel) reloadCmd() tea.Cmd {
	var cmds []tea.Cmd
	if m.results.Mounted() && m.resultsID != "" {
		cmds = append(cmds, m.loadResultsCmd(m.resultsID))
	}
	if m.historyLoaded || m.screen == ScreenHistory {
		cmds = append(cmds, m.loadHistoryCmd())
	}
	return tea.Batch(cmds...)
}

func (m appModel) applyTimerAction(msg timerActionMsg) (appModel, tea.Cmd) {
	if msg.err != nil {
		if errors.Is(msg.err, timer.ErrNoTarget) {
			m.status.Report(errors.New("set a target first (+/-)"))
		} else {
			m.status.Report(fmt.Errorf("%s: %w", msg.action, msg.err))
		}
		return m, nil
	}
	m.log.Debug("timer action", "action", string(msg.action), "session", msg.state.SessionID)
	switch msg.action {
	case actionEnd:
		m.historyLoaded = false
		return m.openResults(msg.state.SessionID)
	case actionCancel:
		m.status.Info("Session cancelled")
	}
	return m, nil
}

func (m appModel) timerCmd(action timerAction) tea.Cmd {
	if m.timer == nil {
		return nil
	}
	t := m.timer
	target, dir, labelID := m.target, m.direction, m.labelID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), ioTimeout)
		defer cancel()
		var (
			st  timer.State
			err error
		)
		switch action {
		case actionStart:
			st, err = t.Start(ctx, target, dir, labelID)
		case actionPause:
			st, err = t.Pause(ctx)
		case actionResume:
			st, err = t.Resume(ctx)
		case actionEnd:
			st, err = t.End(ctx)
		case actionCancel:
			err = t.Cancel(ctx)
		}
		return timerActionMsg{action: action, state: st, err: err}
	}
}

func (m appModel) setSessionLabelCmd(sessionID string, labelID *int64) tea.Cmd {
	st := m.st
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), ioTimeout)
		defer cancel()
		return sessionLabelSetMsg{sessionID: sessionID, err: st.SetSessionLabel(ctx, sessionID, labelID)}
	}
}

func (m appModel) saveLabelCmd(req saveLabelRequest) tea.Cmd {
	st := m.st
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), ioTimeout)
		defer cancel()
		var (
			lb  model.Label
			err error
		)
		if req.id == nil {
			lb, err = st.CreateLabel(ctx, req.name, "")
		} else {
			name := req.name
			lb, err = st.UpdateLabel(ctx, *req.id, &name, nil)
		}
		return labelSavedMsg{label: lb, err: err}
	}
}

func (m appModel) deleteLabelCmd(id int64) tea.Cmd {
	st := m.st
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), ioTimeout)
		defer cancel()
		return labelDeletedMsg{id: id, err: st.DeleteLabel(ctx, id)}
	}
}

// takeTerminal turns a countdown that just reached zero into a notification.
func (m appModel) takeTerminal() tea.Cmd {
	if !m.latch.fired {
		return nil
	}
	m.latch.fired = false
	if !m.cfg.NotifyEnabled() {
		return nil
	}
	target := time.Duration(m.timerState.TargetMs) * time.Millisecond
	name := ""
	if lb := m.labelByID(m.timerState.LabelID); lb != nil {
		name = lb.Name
	}
	return func() tea.Msg { return notifiedMsg{err: notify.CountdownComplete(target, name)} }
}

func (m appModel) quit() tea.Cmd {
	m.engine.Close()
	if m.release != nil {
		m.release()
	}
	return tea.Quit
}
