// Package clocksync turns infrequent authoritative timer readings into a
// continuously updated display value.
//
// The engine never owns the timer. Each authoritative snapshot replaces the sync
// point (value + monotonic capture time); between snapshots the display is
// interpolated from that point on every frame while the timer runs.
package clocksync

import (
	"fmt"
	"strings"
	"time"

	"lefocus-cli/internal/clock"
	"lefocus-cli/internal/frame"
)

type Direction int

const (
	// Down counts toward zero (countdown).
	Down Direction = iota
	// Up counts away from the anchor without bound (stopwatch).
	Up
)

func (d Direction) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "down", "countdown":
		return Down, nil
	case "up", "stopwatch":
		return Up, nil
	default:
		return Down, fmt.Errorf("unknown direction: %s (want down|up)", s)
	}
}

// AuthoritativeTime is one reading from the timer backend. Snapshots are
// compared by pointer: a new pointer always re-anchors, even with identical fields.
type AuthoritativeTime struct {
	// Value is milliseconds remaining (Down) or elapsed (Up).
	Value     int64
	Running   bool
	Direction Direction
}

type syncPoint struct {
	value      int64
	capturedAt time.Duration
}

type Engine struct {
	clock clock.Source
	sched frame.Scheduler

	last      *AuthoritativeTime
	running   bool
	direction Direction
	anchor    syncPoint
	display   int64

	ticket frame.Ticket

	terminal   bool
	notified   bool
	onTerminal func()

	closed bool
}

func New(src clock.Source, sched frame.Scheduler) *Engine {
	return &Engine{clock: src, sched: sched}
}

// OnTerminal registers fn to run once when a running countdown reaches zero.
// It fires again only after a snapshot with a positive value re-arms it.
func (e *Engine) OnTerminal(fn func()) { e.onTerminal = fn }

// Sync consumes an authoritative snapshot.
func (e *Engine) Sync(t *AuthoritativeTime) {
	if t == nil || e.closed {
		return
	}
	if t == e.last && t.Running == e.running {
		return
	}

	value := t.Value
	if value < 0 {
		value = 0
	}

	e.last = t
	e.direction = t.Direction
	e.running = t.Running
	e.anchor = syncPoint{value: value, capturedAt: e.clock.Now()}
	e.display = value
	e.terminal = false
	if value > 0 {
		e.notified = false
	}

	e.ticket.Cancel()
	e.ticket = frame.Ticket{}

	if !e.running {
		return
	}
	if e.direction == Down && value == 0 {
		e.reachTerminal()
		return
	}
	e.schedule()
}

func (e *Engine) schedule() {
	e.ticket.Cancel()
	e.ticket = e.sched.Schedule(e.tick)
}

func (e *Engine) tick() {
	e.ticket = frame.Ticket{}
	if e.closed || !e.running || e.terminal {
		return
	}
	elapsed := int64((e.clock.Now() - e.anchor.capturedAt) / time.Millisecond)
	if elapsed < 0 {
		elapsed = 0
	}

	if e.direction == Up {
		next := e.anchor.value + elapsed
		if next < e.display {
			next = e.display
		}
		e.display = next
		e.schedule()
		return
	}

	next := e.anchor.value - elapsed
	if next <= 0 {
		e.display = 0
		e.reachTerminal()
		return
	}
	if next > e.display {
		next = e.display
	}
	e.display = next
	e.schedule()
}

func (e *Engine) reachTerminal() {
	e.terminal = true
	if e.notified {
		return
	}
	e.notified = true
	if e.onTerminal != nil {
		e.onTerminal()
	}
}

// Display returns the current display value in milliseconds.
func (e *Engine) Display() int64 { return e.display }

func (e *Engine) DisplayDuration() time.Duration {
	return time.Duration(e.display) * time.Millisecond
}

func (e *Engine) Running() bool { return e.running }

func (e *Engine) Direction() Direction { return e.direction }

// Terminal reports whether a countdown has hit zero and stopped requesting frames.
func (e *Engine) Terminal() bool { return e.terminal }

// Pending reports whether a frame callback is scheduled.
func (e *Engine) Pending() bool { return e.ticket.Pending() }

// Close cancels any pending frame. Further snapshots are ignored.
func (e *Engine) Close() {
	e.ticket.Cancel()
	e.ticket = frame.Ticket{}
	e.closed = true
}

func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Direction) UnmarshalText(b []byte) error {
	v, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
