package timer

import (
	"context"
	"errors"
	"testing"
	"time"

	"lefocus-cli/internal/clock"
	"lefocus-cli/internal/clocksync"
	"lefocus-cli/internal/model"
	"lefocus-cli/internal/store"
)

func newTestTimer(t *testing.T, opts ...Option) (*Local, *clock.Fake, store.Store) {
	t.Helper()
	st := store.Store{Dir: t.TempDir()}
	fc := clock.NewFake(0)
	return NewLocal(fc, st, opts...), fc, st
}

func drain(ch <-chan Snapshot) (Snapshot, bool) {
	select {
	case s, ok := <-ch:
		return s, ok
	default:
		return Snapshot{}, false
	}
}

func TestCountdown_CompletesAndPersists(t *testing.T) {
	ctx := context.Background()
	tm, fc, st := newTestTimer(t, WithHeartbeatTicks(1))

	ch, release := tm.Subscribe()
	defer release()
	if s, ok := drain(ch); !ok || s.State.Status != StatusIdle {
		t.Fatalf("expected initial idle snapshot; got %+v", s)
	}

	started, err := tm.Start(ctx, 3*time.Second, clocksync.Down, nil)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	s, _ := drain(ch)
	if s.Time == nil || !s.Time.Running || s.Time.Value != 3000 {
		t.Fatalf("expected running 3000ms snapshot; got %+v", s.Time)
	}

	fc.Advance(time.Second)
	tm.Tick(ctx)
	s, _ = drain(ch)
	if s.Time.Value != 2000 {
		t.Fatalf("expected heartbeat at 2000ms; got %d", s.Time.Value)
	}

	fc.Advance(2500 * time.Millisecond)
	tm.Tick(ctx)
	s, _ = drain(ch)
	if s.State.Status != StatusStopped || s.Time.Running || s.Time.Value != 0 {
		t.Fatalf("expected stopped at zero; got %+v %+v", s.State, s.Time)
	}

	sess, err := st.GetSession(ctx, started.SessionID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if sess.Status != model.SessionCompleted || sess.ActiveMs != 3000 {
		t.Fatalf("expected completed with capped active time; got %+v", sess)
	}

	final, err := tm.End(ctx)
	if err != nil {
		t.Fatalf("End after completion: %v", err)
	}
	if final.SessionID != started.SessionID || tm.State().Status != StatusIdle {
		t.Fatalf("expected idle after end; got %+v", tm.State())
	}
}

func TestHeartbeat_PublishesEveryNTicks(t *testing.T) {
	ctx := context.Background()
	tm, fc, _ := newTestTimer(t, WithHeartbeatTicks(3))
	ch, release := tm.Subscribe()
	defer release()
	if _, err := tm.Start(ctx, time.Minute, clocksync.Down, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	first, _ := drain(ch)

	for i := 1; i <= 2; i++ {
		fc.Advance(time.Second)
		tm.Tick(ctx)
		if _, ok := drain(ch); ok {
			t.Fatalf("tick %d: expected no snapshot between heartbeats", i)
		}
	}
	fc.Advance(time.Second)
	tm.Tick(ctx)
	s, ok := drain(ch)
	if !ok || s.Time == first.Time || s.Time.Value != 57000 {
		t.Fatalf("expected fresh heartbeat at 57000ms; got %+v", s.Time)
	}
}

func TestPauseResume_FreezesActiveTime(t *testing.T) {
	ctx := context.Background()
	tm, fc, st := newTestTimer(t)
	started, err := tm.Start(ctx, time.Minute, clocksync.Down, nil)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	fc.Advance(10 * time.Second)
	paused, err := tm.Pause(ctx)
	if err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if paused.ActiveMs != 10000 {
		t.Fatalf("expected 10000ms active at pause; got %d", paused.ActiveMs)
	}
	fc.Advance(time.Hour)
	if got := tm.State().ActiveMs; got != 10000 {
		t.Fatalf("expected active frozen while paused; got %d", got)
	}
	if _, err := tm.Pause(ctx); !errors.Is(err, ErrNotActive) {
		t.Fatalf("expected ErrNotActive pausing twice; got %v", err)
	}

	if _, err := tm.Resume(ctx); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	fc.Advance(5 * time.Second)
	if got := tm.State().ActiveMs; got != 15000 {
		t.Fatalf("expected 15000ms after resume; got %d", got)
	}

	sess, _ := st.GetSession(ctx, started.SessionID)
	if sess.ActiveMs != 10000 {
		t.Fatalf("expected progress persisted on pause; got %d", sess.ActiveMs)
	}
}

func TestStopwatch_EndRecordsElapsed(t *testing.T) {
	ctx := context.Background()
	tm, fc, st := newTestTimer(t)
	ch, release := tm.Subscribe()
	defer release()
	started, err := tm.Start(ctx, 5*time.Minute, clocksync.Up, nil)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if started.TargetMs != 0 {
		t.Fatalf("expected stopwatch to drop its target; got %d", started.TargetMs)
	}
	if s, _ := drain(ch); s.Time == nil || s.Time.Direction != clocksync.Up {
		t.Fatalf("expected up snapshot; got %+v", s.Time)
	}

	fc.Advance(90 * time.Second)
	final, err := tm.End(ctx)
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if final.ActiveMs != 90000 {
		t.Fatalf("expected 90000ms; got %d", final.ActiveMs)
	}
	sess, _ := st.GetSession(ctx, started.SessionID)
	if sess.Status != model.SessionCompleted || sess.ActiveMs != 90000 {
		t.Fatalf("unexpected persisted session: %+v", sess)
	}
}

func TestCancel_MarksCancelled(t *testing.T) {
	ctx := context.Background()
	tm, fc, st := newTestTimer(t)
	if err := tm.Cancel(ctx); err != nil {
		t.Fatalf("Cancel while idle: %v", err)
	}
	started, _ := tm.Start(ctx, time.Minute, clocksync.Down, nil)
	fc.Advance(2 * time.Second)
	if err := tm.Cancel(ctx); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	sess, _ := st.GetSession(ctx, started.SessionID)
	if sess.Status != model.SessionCancelled || sess.ActiveMs != 2000 {
		t.Fatalf("expected cancelled with 2000ms; got %+v", sess)
	}
	if _, err := tm.End(ctx); !errors.Is(err, ErrNotActive) {
		t.Fatalf("expected ErrNotActive ending idle timer; got %v", err)
	}
}

func TestInterrupt_MarksInterrupted(t *testing.T) {
	ctx := context.Background()
	tm, fc, st := newTestTimer(t)

	if err := tm.Interrupt(ctx); err != nil {
		t.Fatalf("Interrupt while idle: %v", err)
	}
	started, _ := tm.Start(ctx, 0, clocksync.Up, nil)
	fc.Advance(90 * time.Second)
	if err := tm.Interrupt(ctx); err != nil {
		t.Fatalf("Interrupt: %v", err)
	}
	sess, _ := st.GetSession(ctx, started.SessionID)
	if sess.Status != model.SessionInterrupted || sess.ActiveMs != 90000 {
		t.Fatalf("expected interrupted with 90s active; got %+v", sess)
	}
	if tm.State().Status != StatusIdle {
		t.Fatalf("expected idle after interrupt; got %s", tm.State().Status)
	}
}

func TestStart_Validation(t *testing.T) {
	ctx := context.Background()
	tm, _, _ := newTestTimer(t)
	if _, err := tm.Start(ctx, 0, clocksync.Down, nil); !errors.Is(err, ErrNoTarget) {
		t.Fatalf("expected ErrNoTarget; got %v", err)
	}
	if _, err := tm.Start(ctx, time.Minute, clocksync.Down, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := tm.Start(ctx, time.Minute, clocksync.Down, nil); !errors.Is(err, ErrActive) {
		t.Fatalf("expected ErrActive; got %v", err)
	}
}

func TestSubscribe_ReleaseIsIdempotentAndKeepsLatest(t *testing.T) {
	ctx := context.Background()
	tm, fc, _ := newTestTimer(t, WithHeartbeatTicks(1))
	ch, release := tm.Subscribe()

	if _, err := tm.Start(ctx, time.Minute, clocksync.Down, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	fc.Advance(time.Second)
	tm.Tick(ctx)
	fc.Advance(time.Second)
	tm.Tick(ctx)

	// Only the newest snapshot is buffered.
	s, _ := drain(ch)
	if s.Time.Value != 58000 {
		t.Fatalf("expected latest snapshot 58000ms; got %d", s.Time.Value)
	}
	release()
	release()
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel closed after release")
	}
}

type failingWriter struct{ store.Store }

func (failingWriter) FinishSession(context.Context, string, model.SessionStatus, int64, time.Time) error {
	return errors.New("disk full")
}

func TestEnd_SurfacesPersistenceError(t *testing.T) {
	ctx := context.Background()
	tm := NewLocal(clock.NewFake(0), failingWriter{store.Store{Dir: t.TempDir()}})
	if _, err := tm.Start(ctx, time.Minute, clocksync.Down, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := tm.End(ctx); err == nil {
		t.Fatalf("expected error from FinishSession")
	}
	if tm.State().Status != StatusRunning {
		t.Fatalf("expected timer to keep running after failed end; got %s", tm.State().Status)
	}
}
