// Package coalesce rate-limits preview recomputes on narrow viewports.
package coalesce

import (
	"time"

	"github.com/verte-zerg/omrsheet/internal/model"
	"github.com/verte-zerg/omrsheet/internal/sched"
)

// Defaults for mobile-class viewports.
const (
	DefaultDelay       = 300 * time.Millisecond
	DefaultNarrowWidth = 768
)

// Debouncer runs fn on the trailing edge of a burst of triggers when the
// viewport is narrow, and synchronously otherwise.
type Debouncer struct {
	sched       *sched.Scheduler
	delay       time.Duration
	narrowWidth int
	narrow      bool
	fn          func()
	pending     *sched.Task
}

// New returns a Debouncer. Zero delay or width fall back to the defaults.
func New(s *sched.Scheduler, delay time.Duration, narrowWidth int, fn func()) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if narrowWidth <= 0 {
		narrowWidth = DefaultNarrowWidth
	}
	return &Debouncer{sched: s, delay: delay, narrowWidth: narrowWidth, fn: fn}
}

// SetViewport switches between debounced and synchronous mode. Leaving narrow
// mode flushes a pending run.
func (d *Debouncer) SetViewport(v model.Viewport) {
	d.narrow = v.Width > 0 && v.Width <= d.narrowWidth
	if !d.narrow {
		d.Flush()
	}
}

// Narrow reports whether triggers are currently debounced.
func (d *Debouncer) Narrow() bool {
	return d.narrow
}

// Trigger requests a run. In narrow mode it restarts the pending timer.
func (d *Debouncer) Trigger() {
	if !d.narrow {
		d.fn()
		return
	}
	d.pending.Cancel()
	d.pending = d.sched.After(d.delay, d.fire)
}

// Flush runs a pending call immediately and reports whether one was waiting.
func (d *Debouncer) Flush() bool {
	if !d.pending.Cancel() {
		return false
	}
	d.fire()
	return true
}

// Pending reports whether a trailing run is scheduled.
func (d *Debouncer) Pending() bool {
	return d.pending.Active()
}

func (d *Debouncer) fire() {
	d.pending = nil
	d.fn()
}
