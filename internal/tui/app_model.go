package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"lefocus-cli/internal/clock"
	"lefocus-cli/internal/clocksync"
	"lefocus-cli/internal/frame"
	"lefocus-cli/internal/logger"
	"lefocus-cli/internal/model"
	"lefocus-cli/internal/results"
	"lefocus-cli/internal/store"
	"lefocus-cli/internal/timer"
)

const (
	flashDuration = 3 * time.Second
	ioTimeout     = 5 * time.Second
	targetStep    = 5 * time.Minute
	maxTarget     = 4 * time.Hour
	historyLimit  = 200
)

// TimerControl is the timer backend the TUI drives. *timer.Local satisfies it.
type TimerControl interface {
	timer.Feed
	State() timer.State
	Start(ctx context.Context, target time.Duration, dir clocksync.Direction, labelID *int64) (timer.State, error)
	Pause(ctx context.Context) (timer.State, error)
	Resume(ctx context.Context) (timer.State, error)
	End(ctx context.Context) (timer.State, error)
	Cancel(ctx context.Context) error
}

type Options struct {
	Store  store.Store
	Config *store.GlobalConfig
	Timer  TimerControl
	// Clock drives the display engine. Defaults to the system monotonic clock.
	Clock clock.Source
	// Screen is the first screen; ScreenResults also needs SessionID.
	Screen    Screen
	SessionID string
	// Target and Direction override the remembered timer setup when set.
	Target    time.Duration
	Direction string
}

// terminalLatch records that the engine's countdown reached zero. The engine
// calls back synchronously during a frame; Update turns it into a command.
type terminalLatch struct{ fired bool }

type appModel struct {
	st       store.Store
	cfg      *store.GlobalConfig
	tuiState *store.TUIState
	timer    TimerControl

	screen Screen
	width  int
	height int

	loop       *frame.Loop
	engine     *clocksync.Engine
	latch      *terminalLatch
	snaps      <-chan timer.Snapshot
	release    func()
	timerState timer.State
	target     time.Duration
	direction  clocksync.Direction
	labelID    *int64

	history       list.Model
	historyLoaded bool

	results   results.Controller
	resultsID string
	overlays  *overlayHost

	status   *statusLine
	flashSeq int

	keys keyMap
	help help.Model
	log  *slog.Logger
}

func newAppModel(opts Options) appModel {
	cfg := opts.Config
	if cfg == nil {
		cfg = &store.GlobalConfig{}
	}
	src := opts.Clock
	if src == nil {
		src = clock.NewSystem()
	}
	tuiState, err := opts.Store.LoadTUIState()
	if err != nil || tuiState == nil {
		tuiState = &store.TUIState{Version: 1}
	}

	loop := frame.NewLoop(frame.DefaultInterval)
	latch := &terminalLatch{}
	engine := clocksync.New(src, loop)
	engine.OnTerminal(func() { latch.fired = true })

	m := appModel{
		st:        opts.Store,
		cfg:       cfg,
		tuiState:  tuiState,
		timer:     opts.Timer,
		screen:    opts.Screen,
		loop:      loop,
		engine:    engine,
		latch:     latch,
		target:    cfg.DefaultTarget(),
		direction: clocksync.Down,
		history:   newList("Sessions", true, nil),
		overlays:  newOverlayHost(),
		status:    &statusLine{},
		keys:      defaultKeyMap(),
		help:      help.New(),
		log:       logger.Component("tui"),
	}
	if d, err := clocksync.ParseDirection(cfg.Direction); err == nil && cfg.Direction != "" {
		m.direction = d
	}
	if tuiState.LastTargetMinutes > 0 {
		m.target = time.Duration(tuiState.LastTargetMinutes) * time.Minute
	}
	if d, err := clocksync.ParseDirection(tuiState.LastDirection); err == nil && tuiState.LastDirection != "" {
		m.direction = d
	}
	m.labelID = tuiState.LastLabelID
	if opts.Target > 0 {
		m.target = min(opts.Target, maxTarget)
	}
	if d, err := clocksync.ParseDirection(opts.Direction); err == nil && opts.Direction != "" {
		m.direction = d
	}
	if m.timer != nil {
		m.timerState = m.timer.State()
		m.snaps, m.release = m.timer.Subscribe()
	}
	if m.screen == ScreenResults && opts.SessionID == "" {
		m.screen = ScreenHistory
	}
	m.resultsID = opts.SessionID
	m.results = results.New(m.collaborators(opts.SessionID))
	return m
}

func (m appModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadLabelsCmd()}
	if m.snaps != nil {
		cmds = append(cmds, waitForSnapshot(m.snaps))
	}
	switch m.screen {
	case ScreenHistory:
		cmds = append(cmds, m.loadHistoryCmd())
	case ScreenResults:
		cmds = append(cmds, m.loadResultsCmd(m.resultsID))
	}
	return tea.Batch(cmds...)
}

// collaborators binds the results controller to one session.
func (m appModel) collaborators(sessionID string) results.Collaborators {
	return results.Collaborators{
		Detail:   m.overlays,
		Toggle:   sessionApps{st: m.st, id: sessionID},
		Notes:    sessionNotes{st: m.st, id: sessionID},
		Errors:   m.status,
		Overlays: m.overlays,
		Labels:   sessionLabelPicker{h: m.overlays, id: sessionID},
	}
}

func waitForSnapshot(ch <-chan timer.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		return snapshotMsg{snap: snap, ok: ok}
	}
}

func (m appModel) loadHistoryCmd() tea.Cmd {
	st := m.st
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), ioTimeout)
		defer cancel()
		sessions, err := st.ListSessions(ctx, historyLimit, 0)
		return historyLoadedMsg{sessions: sessions, err: err}
	}
}

func (m appModel) loadResultsCmd(id string) tea.Cmd {
	st := m.st
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), ioTimeout)
		defer cancel()
		res, err := st.SessionResults(ctx, id)
		return resultsLoadedMsg{id: id, res: res, err: err}
	}
}

func (m appModel) loadLabelsCmd() tea.Cmd {
	st := m.st
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), ioTimeout)
		defer cancel()
		labels, err := st.ListLabels(ctx)
		return labelsLoadedMsg{labels: labels, err: err}
	}
}

func (m appModel) labelByID(id *int64) *model.Label {
	if id == nil {
		return nil
	}
	for i := range m.overlays.labels {
		if m.overlays.labels[i].ID == *id {
			lb := m.overlays.labels[i]
			return &lb
		}
	}
	return nil
}

func (m appModel) labelMap() map[int64]model.Label {
	out := make(map[int64]model.Label, len(m.overlays.labels))
	for _, lb := range m.overlays.labels {
		out[lb.ID] = lb
	}
	return out
}

func (m appModel) saveTUIState() {
	st := *m.tuiState
	st.LastTargetMinutes = int(m.target / time.Minute)
	st.LastDirection = m.direction.String()
	st.LastLabelID = m.labelID
	if err := m.st.SaveTUIState(&st); err != nil {
		m.log.Warn("save tui state", "err", err)
		return
	}
	*m.tuiState = st
}
