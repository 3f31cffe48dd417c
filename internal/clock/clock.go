package clock

import (
	"sync"
	"time"
)

// Source reports monotonic time as an offset from an arbitrary origin.
//
// Values never decrease between calls and are unaffected by wall-clock changes
// (DST, NTP slew, manual adjustments).
type Source interface {
	Now() time.Duration
}

// System reads Go's monotonic clock. The zero value is not usable; use NewSystem.
type System struct {
	origin time.Time
}

func NewSystem() *System {
	return &System{origin: time.Now()}
}

func (s *System) Now() time.Duration {
	// time.Since uses the monotonic reading captured by time.Now.
	return time.Since(s.origin)
}

// Fake is a manually driven Source for tests and deterministic replays.
type Fake struct {
	mu  sync.Mutex
	now time.Duration
}

func NewFake(start time.Duration) *Fake {
	return &Fake{now: start}
}

func (f *Fake) Now() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Advance moves the clock forward. Negative durations are ignored so the
// non-decreasing contract holds.
func (f *Fake) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	f.mu.Lock()
	f.now += d
	f.mu.Unlock()
}

// Set jumps to t when t is not earlier than the current reading.
func (f *Fake) Set(t time.Duration) {
	f.mu.Lock()
	if t > f.now {
		f.now = t
	}
	f.mu.Unlock()
}
