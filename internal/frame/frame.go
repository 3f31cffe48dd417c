// Package frame provides cancellable, single-shot frame callbacks.
//
// A Scheduler hands out a Ticket per scheduled callback. Cancelling a ticket is
// synchronous and idempotent: cancelling twice, or after the callback already ran,
// does nothing. Owners that keep at most one live ticket can therefore enforce
// "one pending frame" mechanically by cancelling before scheduling.
package frame

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultInterval is roughly one terminal refresh. Terminals don't need 60fps;
// a 50ms cadence keeps countdown digits smooth without flooding the event loop.
const DefaultInterval = 50 * time.Millisecond

type Scheduler interface {
	Schedule(fn func()) Ticket
}

type canceller interface {
	cancel(id uint64)
	pending(id uint64) bool
}

// Ticket identifies one scheduled callback. The zero Ticket is inert.
type Ticket struct {
	id    uint64
	owner canceller
}

func (t Ticket) Cancel() {
	if t.owner == nil || t.id == 0 {
		return
	}
	t.owner.cancel(t.id)
}

// Pending reports whether the callback is still waiting to run.
func (t Ticket) Pending() bool {
	if t.owner == nil || t.id == 0 {
		return false
	}
	return t.owner.pending(t.id)
}

var loopSeq atomic.Uint64

// Msg is the bubbletea message carrying a frame for a Loop.
type Msg struct {
	loop uint64
	id   uint64
}

// Loop bridges Scheduler onto bubbletea: Schedule queues a tea.Tick command, and
// the host feeds the resulting Msg back through Deliver from its Update method.
//
// Loop must only be used from the bubbletea event loop.
type Loop struct {
	id       uint64
	interval time.Duration
	next     uint64
	waiting  map[uint64]func()
	queued   []tea.Cmd
}

func NewLoop(interval time.Duration) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Loop{
		id:       loopSeq.Add(1),
		interval: interval,
		waiting:  map[uint64]func(){},
	}
}

func (l *Loop) Schedule(fn func()) Ticket {
	l.next++
	id := l.next
	l.waiting[id] = fn
	loopID := l.id
	l.queued = append(l.queued, tea.Tick(l.interval, func(time.Time) tea.Msg {
		return Msg{loop: loopID, id: id}
	}))
	return Ticket{id: id, owner: l}
}

// Cmd drains the commands queued by Schedule since the last call.
func (l *Loop) Cmd() tea.Cmd {
	if len(l.queued) == 0 {
		return nil
	}
	cmds := l.queued
	l.queued = nil
	if len(cmds) == 1 {
		return cmds[0]
	}
	return tea.Batch(cmds...)
}

// Deliver runs the callback behind msg if its ticket is still live. It reports
// false for cancelled tickets and frames belonging to another Loop.
func (l *Loop) Deliver(msg Msg) bool {
	if msg.loop != l.id {
		return false
	}
	fn, ok := l.waiting[msg.id]
	if !ok {
		return false
	}
	delete(l.waiting, msg.id)
	fn()
	return true
}

// Waiting returns the number of live tickets.
func (l *Loop) Waiting() int { return len(l.waiting) }

func (l *Loop) cancel(id uint64) { delete(l.waiting, id) }

func (l *Loop) pending(id uint64) bool {
	_, ok := l.waiting[id]
	return ok
}

// Manual is a Scheduler driven by the caller, used by tests and headless
// replays. Fire runs the callbacks that were live when it was called.
type Manual struct {
	next    uint64
	order   []uint64
	waiting map[uint64]func()
}

func NewManual() *Manual {
	return &Manual{waiting: map[uint64]func(){}}
}

func (m *Manual) Schedule(fn func()) Ticket {
	m.next++
	m.waiting[m.next] = fn
	m.order = append(m.order, m.next)
	return Ticket{id: m.next, owner: m}
}

// Fire runs every live callback once, in scheduling order, and returns how many ran.
// Callbacks scheduled while firing wait for the next call.
func (m *Manual) Fire() int {
	ids := m.order
	m.order = nil
	ran := 0
	for _, id := range ids {
		fn, ok := m.waiting[id]
		if !ok {
			continue
		}
		delete(m.waiting, id)
		fn()
		ran++
	}
	return ran
}

func (m *Manual) Waiting() int { return len(m.waiting) }

func (m *Manual) cancel(id uint64) { delete(m.waiting, id) }

func (m *Manual) pending(id uint64) bool {
	_, ok := m.waiting[id]
	return ok
}
