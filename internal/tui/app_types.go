package tui

import (
	"lefocus-cli/internal/model"
	"lefocus-cli/internal/timer"
)

// Screen selects what the TUI shows.
type Screen int

const (
	ScreenHistory Screen = iota
	ScreenTimer
	ScreenResults
)

func (s Screen) String() string {
	switch s {
	case ScreenTimer:
		return "timer"
	case ScreenResults:
		return "results"
	default:
		return "history"
	}
}

type flashDoneMsg struct{ seq int }

type snapshotMsg struct {
	snap timer.Snapshot
	ok   bool
}

type timerAction string

const (
	actionStart  timerAction = "start"
	actionPause  timerAction = "pause"
	actionResume timerAction = "resume"
	actionEnd    timerAction = "end"
	actionCancel timerAction = "cancel"
)

type timerActionMsg struct {
	action timerAction
	state  timer.State
	err    error
}

type historyLoadedMsg struct {
	sessions []model.SessionSummary
	err      error
}

type resultsLoadedMsg struct {
	id  string
	res model.SessionResults
	err error
}

type labelsLoadedMsg struct {
	labels []model.Label
	err    error
}

// labelChosenMsg is emitted by the label picker. A nil label clears it.
type labelChosenMsg struct {
	sessionID string
	label     *model.Label
}

type sessionLabelSetMsg struct {
	sessionID string
	err       error
}

type labelSavedMsg struct {
	label model.Label
	err   error
}

type labelDeletedMsg struct {
	id  int64
	err error
}

type notifiedMsg struct{ err error }

type copiedMsg struct{ err error }
