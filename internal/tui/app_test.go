package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	xansi "github.com/charmbracelet/x/ansi"

	"lefocus-cli/internal/clock"
	"lefocus-cli/internal/clocksync"
	"lefocus-cli/internal/focus"
	"lefocus-cli/internal/model"
	"lefocus-cli/internal/notify"
	"lefocus-cli/internal/results"
	"lefocus-cli/internal/store"
	"lefocus-cli/internal/timer"
)

func newTestApp(t *testing.T, screen Screen) (appModel, store.Store, *timer.Local) {
	t.Helper()
	st := store.Store{Dir: t.TempDir()}
	fc := clock.NewFake(0)
	tm := timer.NewLocal(fc, st)
	t.Cleanup(tm.Close)

	m := newAppModel(Options{Store: st, Timer: tm, Clock: fc, Screen: screen})
	m, _ = m.update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, st, tm
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func keyOf(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func space() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}} }

// seedSession stores a finished session with two apps across three segments.
func seedSession(t *testing.T, st store.Store) model.Session {
	t.Helper()
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	sess, err := st.CreateSession(ctx, 25*time.Minute, nil, start)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	_, err = st.AddSegments(ctx, sess.ID, []store.SegmentInput{
		{StartTime: start, EndTime: start.Add(10 * time.Minute), BundleID: "com.apple.dt.Xcode", AppName: "Xcode", Confidence: 0.9},
		{StartTime: start.Add(10 * time.Minute), EndTime: start.Add(15 * time.Minute), BundleID: "com.apple.Safari", AppName: "Safari", WindowTitle: "Go docs"},
		{StartTime: start.Add(15 * time.Minute), EndTime: start.Add(25 * time.Minute), BundleID: "com.apple.dt.Xcode", AppName: "Xcode"},
	})
	if err != nil {
		t.Fatalf("AddSegments: %v", err)
	}
	if err := st.FinishSession(ctx, sess.ID, model.SessionCompleted, 25*60*1000, start.Add(25*time.Minute)); err != nil {
		t.Fatalf("FinishSession: %v", err)
	}
	return sess
}

func openSeeded(t *testing.T, m appModel, id string) appModel {
	t.Helper()
	m, cmd := m.openResults(id)
	if cmd == nil {
		t.Fatalf("expected a load command")
	}
	m, _ = m.update(cmd())
	if !m.results.Mounted() {
		t.Fatalf("expected results to be mounted")
	}
	return m
}

func send(m appModel, msgs ...tea.Msg) (appModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		m, cmd = m.update(msg)
	}
	return m, cmd
}

func TestTimer_StartSyncsDisplayEngine(t *testing.T) {
	m, _, tm := newTestApp(t, ScreenTimer)

	m, cmd := send(m, space())
	if cmd == nil {
		t.Fatalf("expected start command")
	}
	msg, ok := cmd().(timerActionMsg)
	if !ok || msg.err != nil || msg.action != actionStart {
		t.Fatalf("expected successful start; got %+v", msg)
	}
	m, _ = send(m, msg)
	if tm.State().Status != timer.StatusRunning {
		t.Fatalf("expected running timer; got %s", tm.State().Status)
	}

	m, _ = send(m, waitForSnapshot(m.snaps)())
	if !m.engine.Running() || !m.engine.Pending() {
		t.Fatalf("expected engine running with one pending frame")
	}
	if got := m.engine.DisplayDuration(); got != 25*time.Minute {
		t.Fatalf("expected 25m on the display; got %s", got)
	}
	if v := xansi.Strip(m.View()); !strings.Contains(v, "running") {
		t.Fatalf("expected running status in view:\n%s", v)
	}
}

func TestTimer_AdjustTargetAndDirectionWhileIdle(t *testing.T) {
	m, st, _ := newTestApp(t, ScreenTimer)

	m, _ = send(m, runes("+"), runes("+"))
	if m.target != 35*time.Minute {
		t.Fatalf("expected 35m target; got %s", m.target)
	}
	for i := 0; i < 20; i++ {
		m, _ = send(m, runes("-"))
	}
	if m.target != targetStep {
		t.Fatalf("expected target to floor at %s; got %s", targetStep, m.target)
	}
	m, _ = send(m, runes("d"))
	if m.direction != clocksync.Up {
		t.Fatalf("expected stopwatch after d")
	}

	saved, err := st.LoadTUIState()
	if err != nil {
		t.Fatalf("LoadTUIState: %v", err)
	}
	if saved.LastTargetMinutes != 5 || saved.LastDirection != "up" {
		t.Fatalf("expected remembered 5m/up; got %+v", saved)
	}
}

func TestTimer_EndOpensResults(t *testing.T) {
	m, _, _ := newTestApp(t, ScreenTimer)

	m, cmd := send(m, space())
	m, _ = send(m, cmd())
	m, cmd = send(m, runes("e"))
	if cmd == nil {
		t.Fatalf("expected end command")
	}
	end := cmd().(timerActionMsg)
	if end.err != nil {
		t.Fatalf("End: %v", end.err)
	}
	m, cmd = send(m, end)
	if m.screen != ScreenResults || m.resultsID != end.state.SessionID {
		t.Fatalf("expected results screen for %s; got %s/%s", end.state.SessionID, m.screen, m.resultsID)
	}
	m, _ = send(m, cmd())
	if !m.results.Mounted() {
		t.Fatalf("expected mounted results")
	}
	// No segments: focus starts on the note.
	if got := m.results.State(); got != focus.InZone(results.ZoneNote, focus.NoIndex, false) {
		t.Fatalf("expected note focus; got %s", got)
	}
}

func TestResults_DetailOverlayClosesOnEscape(t *testing.T) {
	m, st, _ := newTestApp(t, ScreenHistory)
	sess := seedSession(t, st)
	m = openSeeded(t, m, sess.ID)

	if got := m.results.State(); got != focus.InZone(results.ZoneTimeline, 0, false) {
		t.Fatalf("expected timeline focus; got %s", got)
	}
	m, _ = send(m, keyOf(tea.KeyRight), keyOf(tea.KeyEnter))
	if !m.overlays.IsOpen(overlayDetail) || m.overlays.detail == nil || m.overlays.detail.BundleID != "com.apple.Safari" {
		t.Fatalf("expected Safari detail overlay; got %+v", m.overlays.detail)
	}
	if v := xansi.Strip(m.View()); !strings.Contains(v, "Go docs") {
		t.Fatalf("expected detail in view:\n%s", v)
	}

	// Navigation is suppressed while the overlay is open.
	m, _ = send(m, keyOf(tea.KeyRight))
	if m.results.State().Index != 1 {
		t.Fatalf("expected focus to stay on 1; got %s", m.results.State())
	}
	m, _ = send(m, keyOf(tea.KeyEsc))
	if m.overlays.IsAnyOpen() {
		t.Fatalf("expected overlay closed")
	}
	if m.screen != ScreenResults {
		t.Fatalf("escape with an overlay should not leave results")
	}
}

func TestResults_ToggleAndNotePersist(t *testing.T) {
	m, st, _ := newTestApp(t, ScreenHistory)
	sess := seedSession(t, st)
	m = openSeeded(t, m, sess.ID)
	ctx := context.Background()

	m, _ = send(m, keyOf(tea.KeyDown), keyOf(tea.KeyDown))
	if got := m.results.State(); got != focus.InZone(results.ZoneList, 0, false) {
		t.Fatalf("expected list focus; got %s", got)
	}
	m, cmd := send(m, keyOf(tea.KeyEnter))
	if !m.results.Apps()[0].Selected {
		t.Fatalf("expected optimistic selection")
	}
	m, _ = send(m, cmd())
	apps, err := st.TopApps(ctx, sess.ID, 0)
	if err != nil {
		t.Fatalf("TopApps: %v", err)
	}
	if !apps[0].Selected {
		t.Fatalf("expected persisted selection for %s", apps[0].BundleID)
	}

	m, _ = send(m, runes("n"), runes("h"), runes("i"))
	if !m.results.Editing() {
		t.Fatalf("expected note edit mode")
	}
	m, cmd = send(m, keyOf(tea.KeyUp))
	if m.results.Editing() || cmd == nil {
		t.Fatalf("expected commit on arrow")
	}
	m, _ = send(m, cmd())
	got, err := st.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.Note == nil || *got.Note != "hi" {
		t.Fatalf("expected note %q; got %v", "hi", got.Note)
	}
	if !m.results.HasNote() {
		t.Fatalf("expected controller to know about the saved note")
	}
}

func TestResults_LabelPickerAssignsLabel(t *testing.T) {
	m, st, _ := newTestApp(t, ScreenHistory)
	ctx := context.Background()
	lb, err := st.CreateLabel(ctx, "Deep work", "")
	if err != nil {
		t.Fatalf("CreateLabel: %v", err)
	}
	sess := seedSession(t, st)
	m, _ = send(m, m.loadLabelsCmd()())
	m = openSeeded(t, m, sess.ID)

	m, _ = send(m, runes("l"))
	if !m.overlays.IsOpen(overlayLabelPicker) {
		t.Fatalf("expected label picker")
	}
	if !m.results.State().IsIdle() {
		t.Fatalf("expected focus cleared while the picker is open; got %s", m.results.State())
	}
	m, _ = send(m, keyOf(tea.KeyDown))
	m, cmd := send(m, keyOf(tea.KeyEnter))
	if m.overlays.IsAnyOpen() || cmd == nil {
		t.Fatalf("expected picker to close with a choice")
	}
	chosen := cmd().(labelChosenMsg)
	if chosen.label == nil || chosen.label.ID != lb.ID || chosen.sessionID != sess.ID {
		t.Fatalf("unexpected choice: %+v", chosen)
	}
	m, cmd = send(m, chosen)
	m, _ = send(m, cmd())

	got, err := st.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.LabelID == nil || *got.LabelID != lb.ID {
		t.Fatalf("expected label %d; got %v", lb.ID, got.LabelID)
	}
}

func TestLabelPicker_CreatesLabelForTimer(t *testing.T) {
	m, st, _ := newTestApp(t, ScreenTimer)

	m, _ = send(m, runes("l"))
	if !m.overlays.IsOpen(overlayLabelPicker) {
		t.Fatalf("expected label picker on the timer screen")
	}
	m, _ = send(m, runes("n"))
	if m.overlays.Top() != overlayLabelEditor {
		t.Fatalf("expected label editor on top; got %q", m.overlays.Top())
	}
	m, _ = send(m, runes("Reading"))
	m, cmd := send(m, keyOf(tea.KeyEnter))
	req, ok := cmd().(saveLabelRequest)
	if !ok || req.name != "Reading" || req.id != nil {
		t.Fatalf("expected create request; got %+v", req)
	}
	m, cmd = send(m, req)
	saved := cmd().(labelSavedMsg)
	if saved.err != nil {
		t.Fatalf("save label: %v", saved.err)
	}
	m, _ = send(m, saved)
	m, _ = send(m, m.loadLabelsCmd()())

	if !m.overlays.IsOpen(overlayLabelPicker) || m.overlays.IsOpen(overlayLabelEditor) {
		t.Fatalf("expected to return to the picker")
	}
	if n := len(m.overlays.picker.Items()); n != 2 {
		t.Fatalf("expected (no label) plus one label; got %d items", n)
	}
	labels, err := st.ListLabels(context.Background())
	if err != nil || len(labels) != 1 || labels[0].Name != "Reading" {
		t.Fatalf("expected stored label; got %+v (err %v)", labels, err)
	}

	m, _ = send(m, keyOf(tea.KeyEsc))
	if m.overlays.IsAnyOpen() {
		t.Fatalf("expected escape to close the picker")
	}
}

func TestResults_CopySummary(t *testing.T) {
	var copied string
	prev := clipboardWrite
	clipboardWrite = func(s string) error { copied = s; return nil }
	t.Cleanup(func() { clipboardWrite = prev })

	m, st, _ := newTestApp(t, ScreenHistory)
	sess := seedSession(t, st)
	m = openSeeded(t, m, sess.ID)

	m, cmd := send(m, runes("y"))
	if cmd == nil {
		t.Fatalf("expected copy command")
	}
	m, _ = send(m, cmd())
	if !strings.Contains(copied, "Xcode 20m (80%)") || !strings.Contains(copied, "of 25m") {
		t.Fatalf("unexpected summary:\n%s", copied)
	}
	if m.status.text != "Copied session summary" {
		t.Fatalf("expected copy confirmation; got %q", m.status.text)
	}
}

func TestHistory_OpenAndBack(t *testing.T) {
	m, st, _ := newTestApp(t, ScreenHistory)
	sess := seedSession(t, st)

	m, _ = send(m, m.loadHistoryCmd()())
	if n := len(m.history.Items()); n != 1 {
		t.Fatalf("expected one session; got %d", n)
	}
	m, cmd := send(m, keyOf(tea.KeyEnter))
	if m.screen != ScreenResults || m.resultsID != sess.ID {
		t.Fatalf("expected results for %s", sess.ID)
	}
	m, _ = send(m, cmd())

	m, _ = send(m, keyOf(tea.KeyEsc))
	if m.screen != ScreenHistory || m.results.Mounted() {
		t.Fatalf("expected escape to return to history and unmount")
	}
}

func TestTerminal_NotifiesOnce(t *testing.T) {
	var calls int
	notify.SetNotifier(func(title, message string, icon any) error { calls++; return nil })
	t.Cleanup(notify.ResetNotifier)

	m, _, _ := newTestApp(t, ScreenTimer)
	m.timerState.TargetMs = 25 * 60 * 1000
	m.latch.fired = true

	cmd := m.takeTerminal()
	if cmd == nil {
		t.Fatalf("expected notification command")
	}
	if _, ok := cmd().(notifiedMsg); !ok || calls != 1 {
		t.Fatalf("expected one notification; got %d", calls)
	}
	if m.takeTerminal() != nil {
		t.Fatalf("expected the latch to reset")
	}

	off := false
	m.cfg = &store.GlobalConfig{Notify: &off}
	m.latch.fired = true
	if m.takeTerminal() != nil {
		t.Fatalf("expected no notification when disabled")
	}
}
