// Package timer is the local session timer. It owns the session lifecycle
// and publishes authoritative time snapshots; renderers subscribe and
// extrapolate between them.
package timer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"lefocus-cli/internal/clock"
	"lefocus-cli/internal/clocksync"
	"lefocus-cli/internal/logger"
	"lefocus-cli/internal/model"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusRunning Status = "running"
	StatusPaused  Status = "paused"
	// StatusStopped is a countdown that reached zero and awaits End.
	StatusStopped Status = "stopped"
)

const (
	DefaultInterval       = time.Second
	DefaultHeartbeatTicks = 10
)

var (
	ErrActive    = errors.New("timer already active")
	ErrNotActive = errors.New("no active session")
	ErrNotPaused = errors.New("timer is not paused")
	ErrNoTarget  = errors.New("countdown target must be greater than zero")
)

// SessionWriter persists the session lifecycle.
type SessionWriter interface {
	CreateSession(ctx context.Context, target time.Duration, labelID *int64, now time.Time) (model.Session, error)
	UpdateSessionProgress(ctx context.Context, id string, activeMs int64, now time.Time) error
	FinishSession(ctx context.Context, id string, status model.SessionStatus, activeMs int64, stoppedAt time.Time) error
}

// State is the timer's view of the current session.
type State struct {
	Status    Status              `json:"status"`
	SessionID string              `json:"sessionId,omitempty"`
	Direction clocksync.Direction `json:"direction"`
	TargetMs  int64               `json:"targetMs"`
	ActiveMs  int64               `json:"activeMs"`
	StartedAt time.Time           `json:"startedAt,omitempty"`
	LabelID   *int64              `json:"labelId,omitempty"`
}

// RemainingMs is max(target-active, 0); zero when idle.
func (s State) RemainingMs() int64 {
	if s.Status == StatusIdle {
		return 0
	}
	return max(s.TargetMs-s.ActiveMs, 0)
}

// Snapshot is one published update. Time is freshly allocated per publish so
// receivers can tell snapshots apart by identity.
type Snapshot struct {
	Time  *clocksync.AuthoritativeTime
	State State
}

// Feed is the subscription side of the timer.
type Feed interface {
	// Subscribe returns a channel of snapshots and a release func. The channel
	// holds at most the latest snapshot; release closes it and is idempotent.
	Subscribe() (<-chan Snapshot, func())
}

type Option func(*Local)

func WithInterval(d time.Duration) Option {
	return func(l *Local) {
		if d > 0 {
			l.interval = d
		}
	}
}

// WithHeartbeatTicks sets how many ticks pass between published snapshots.
func WithHeartbeatTicks(n int) Option {
	return func(l *Local) {
		if n > 0 {
			l.heartbeat = n
		}
	}
}

// WithWallClock overrides the wall clock used for persisted timestamps.
func WithWallClock(now func() time.Time) Option {
	return func(l *Local) {
		if now != nil {
			l.now = now
		}
	}
}

// Local runs the timer in-process.
type Local struct {
	mu        sync.Mutex
	clock     clock.Source
	store     SessionWriter
	now       func() time.Time
	interval  time.Duration
	heartbeat int
	log       *slog.Logger

	state    State
	baseline int64
	anchor   time.Duration
	ticks    int
	last     *clocksync.AuthoritativeTime

	subs   map[int]chan Snapshot
	nextID int
}

var _ Feed = (*Local)(nil)

func NewLocal(src clock.Source, store SessionWriter, opts ...Option) *Local {
	l := &Local{
		clock:     src,
		store:     store,
		now:       time.Now,
		interval:  DefaultInterval,
		heartbeat: DefaultHeartbeatTicks,
		log:       logger.Component("timer"),
		state:     State{Status: StatusIdle},
		subs:      map[int]chan Snapshot{},
	}
	for _, opt := range opts {
		opt(l)
	}
	l.last = l.timeLocked()
	return l
}

func (l *Local) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	st := l.state
	st.ActiveMs = l.activeLocked()
	return st
}

func (l *Local) Subscribe() (<-chan Snapshot, func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextID
	l.nextID++
	ch := make(chan Snapshot, 1)
	ch <- Snapshot{Time: l.last, State: l.snapshotStateLocked()}
	l.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			if c, ok := l.subs[id]; ok {
				delete(l.subs, id)
				close(c)
			}
		})
	}
}

// Start begins a session. A countdown needs a positive target; a stopwatch
// ignores it.
func (l *Local) Start(ctx context.Context, target time.Duration, dir clocksync.Direction, labelID *int64) (State, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state.Status != StatusIdle {
		return l.state, ErrActive
	}
	if dir == clocksync.Down && target <= 0 {
		return l.state, ErrNoTarget
	}
	if dir == clocksync.Up {
		target = 0
	}
	sess, err := l.store.CreateSession(ctx, target, labelID, l.now())
	if err != nil {
		return l.state, fmt.Errorf("start session: %w", err)
	}
	l.state = State{
		Status:    StatusRunning,
		SessionID: sess.ID,
		Direction: dir,
		TargetMs:  target.Milliseconds(),
		StartedAt: sess.StartedAt,
		LabelID:   labelID,
	}
	l.baseline = 0
	l.anchor = l.clock.Now()
	l.ticks = 0
	l.log.Info("session started", "session", sess.ID, "direction", dir.String(), "targetMs", l.state.TargetMs)
	l.publishLocked()
	return l.state, nil
}

func (l *Local) Pause(ctx context.Context) (State, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state.Status != StatusRunning {
		return l.state, ErrNotActive
	}
	l.baseline = l.activeLocked()
	l.state.ActiveMs = l.baseline
	l.state.Status = StatusPaused
	if err := l.store.UpdateSessionProgress(ctx, l.state.SessionID, l.baseline, l.now()); err != nil {
		l.log.Warn("persist progress on pause", "session", l.state.SessionID, "err", err)
	}
	l.publishLocked()
	return l.state, nil
}

func (l *Local) Resume(ctx context.Context) (State, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state.Status != StatusPaused {
		return l.state, ErrNotPaused
	}
	l.state.Status = StatusRunning
	l.anchor = l.clock.Now()
	l.publishLocked()
	return l.state, nil
}

// End completes the session. Countdown active time is capped at the target.
func (l *Local) End(ctx context.Context) (State, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state.Status == StatusIdle {
		return l.state, ErrNotActive
	}
	final := l.state
	final.ActiveMs = l.cappedActiveLocked()
	if l.state.Status != StatusStopped {
		if err := l.store.FinishSession(ctx, final.SessionID, model.SessionCompleted, final.ActiveMs, l.now()); err != nil {
			return l.state, fmt.Errorf("end session: %w", err)
		}
	}
	l.log.Info("session ended", "session", final.SessionID, "activeMs", final.ActiveMs)
	l.resetLocked()
	l.publishLocked()
	final.Status = StatusStopped
	return final, nil
}

// Cancel abandons the session. Cancelling while idle is a no-op.
func (l *Local) Cancel(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state.Status == StatusIdle {
		return nil
	}
	id, active, stopped := l.state.SessionID, l.activeLocked(), l.state.Status == StatusStopped
	l.resetLocked()
	l.publishLocked()
	if stopped {
		return nil
	}
	if err := l.store.FinishSession(ctx, id, model.SessionCancelled, active, l.now()); err != nil {
		return fmt.Errorf("cancel session: %w", err)
	}
	l.log.Info("session cancelled", "session", id, "activeMs", active)
	return nil
}

// Interrupt finishes an active session as Interrupted. It is used when the
// process exits mid-session; idle or completed countdowns are left alone.
func (l *Local) Interrupt(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state.Status == StatusIdle {
		return nil
	}
	id, active, stopped := l.state.SessionID, l.activeLocked(), l.state.Status == StatusStopped
	l.resetLocked()
	l.publishLocked()
	if stopped {
		return nil
	}
	if err := l.store.FinishSession(ctx, id, model.SessionInterrupted, active, l.now()); err != nil {
		return fmt.Errorf("interrupt session: %w", err)
	}
	l.log.Info("session interrupted", "session", id, "activeMs", active)
	return nil
}

// Tick advances the timer by one interval: it completes a countdown that has
// run out and publishes a heartbeat every few ticks.
func (l *Local) Tick(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state.Status != StatusRunning {
		return
	}
	active := l.activeLocked()
	if l.state.Direction == clocksync.Down && active >= l.state.TargetMs {
		l.baseline = l.state.TargetMs
		l.state.ActiveMs = l.baseline
		l.state.Status = StatusStopped
		if err := l.store.FinishSession(ctx, l.state.SessionID, model.SessionCompleted, l.baseline, l.now()); err != nil {
			l.log.Error("complete session", "session", l.state.SessionID, "err", err)
		}
		l.log.Info("countdown complete", "session", l.state.SessionID)
		l.publishLocked()
		return
	}
	l.ticks++
	if l.ticks%l.heartbeat != 0 {
		return
	}
	l.state.ActiveMs = active
	if err := l.store.UpdateSessionProgress(ctx, l.state.SessionID, active, l.now()); err != nil {
		l.log.Warn("persist progress", "session", l.state.SessionID, "err", err)
	}
	l.publishLocked()
}

// Run ticks until ctx is done.
func (l *Local) Run(ctx context.Context) error {
	t := time.NewTicker(l.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			l.Tick(ctx)
		}
	}
}

// Close releases every subscriber.
func (l *Local) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, ch := range l.subs {
		delete(l.subs, id)
		close(ch)
	}
}

func (l *Local) activeLocked() int64 {
	if l.state.Status != StatusRunning {
		return l.baseline
	}
	return l.baseline + (l.clock.Now() - l.anchor).Milliseconds()
}

func (l *Local) cappedActiveLocked() int64 {
	active := l.activeLocked()
	if l.state.Direction == clocksync.Down && active > l.state.TargetMs {
		return l.state.TargetMs
	}
	return active
}

func (l *Local) resetLocked() {
	l.state = State{Status: StatusIdle, Direction: l.state.Direction}
	l.baseline = 0
	l.ticks = 0
}

func (l *Local) snapshotStateLocked() State {
	st := l.state
	st.ActiveMs = l.activeLocked()
	return st
}

func (l *Local) timeLocked() *clocksync.AuthoritativeTime {
	st := l.snapshotStateLocked()
	value := st.ActiveMs
	if st.Direction == clocksync.Down {
		value = st.RemainingMs()
	}
	return &clocksync.AuthoritativeTime{
		Value:     value,
		Running:   st.Status == StatusRunning,
		Direction: st.Direction,
	}
}

// publishLocked replaces any unread snapshot in each subscriber's buffer.
func (l *Local) publishLocked() {
	l.last = l.timeLocked()
	snap := Snapshot{Time: l.last, State: l.snapshotStateLocked()}
	for _, ch := range l.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}
