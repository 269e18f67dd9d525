// Package engine wires the draft store, preview, validator, alerts and input
// coalescing into one event-driven state machine.
//
// The engine is single-threaded: callers deliver events and advance the
// scheduler from one goroutine. Presentation code depends on the engine, never
// the other way around.
package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/omrsheet/internal/coalesce"
	"github.com/verte-zerg/omrsheet/internal/draft"
	"github.com/verte-zerg/omrsheet/internal/model"
	"github.com/verte-zerg/omrsheet/internal/notify"
	"github.com/verte-zerg/omrsheet/internal/preview"
	"github.com/verte-zerg/omrsheet/internal/sched"
)

// DefaultSubmitReset re-enables submission when no response arrived.
const DefaultSubmitReset = 10 * time.Second

// Options configures an Engine.
type Options struct {
	Defaults      draft.Defaults
	Presets       *draft.Presets
	Viewport      model.Viewport
	AlertDuration time.Duration
	DebounceDelay time.Duration
	NarrowWidth   int
	SubmitReset   time.Duration
	Logger        *zap.Logger
	// AlertIDs overrides alert id generation.
	AlertIDs func() string
}

// Engine holds the draft and everything derived from it.
type Engine struct {
	sched     *sched.Scheduler
	store     *draft.Store
	alerts    *notify.Queue
	coalescer *coalesce.Debouncer
	log       *zap.Logger

	alertDuration time.Duration
	submitReset   time.Duration

	viewport   model.Viewport
	preview    *model.Preview
	progress   model.Progress
	recomputes int

	submitting bool
	submitSeq  uint64
	resetTask  *sched.Task
}

// New builds an Engine on s and computes the initial preview.
func New(s *sched.Scheduler, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		sched:         s,
		store:         draft.NewStore(opts.Defaults, opts.Presets),
		log:           logger,
		alertDuration: opts.AlertDuration,
		submitReset:   opts.SubmitReset,
	}
	if e.submitReset <= 0 {
		e.submitReset = DefaultSubmitReset
	}
	e.alerts = notify.New(s,
		notify.WithLogger(logger.Named("alerts")),
		notify.WithIDFunc(opts.AlertIDs),
		notify.WithTouch(opts.Viewport.Touch),
	)
	e.coalescer = coalesce.New(s, opts.DebounceDelay, opts.NarrowWidth, e.recompute)
	e.setViewport(opts.Viewport)
	e.recompute()
	return e
}

// Scheduler returns the scheduler driving the engine's timers.
func (e *Engine) Scheduler() *sched.Scheduler {
	return e.sched
}

// Snapshot returns the current draft.
func (e *Engine) Snapshot() model.DraftConfig {
	return e.store.Snapshot()
}

// Raw returns the raw text of a field, as shown in its input.
func (e *Engine) Raw(field model.Field) string {
	return e.store.Raw(field)
}

// Presets returns the preset registry.
func (e *Engine) Presets() []model.Preset {
	return e.store.Presets().List()
}

// Preview returns the last computed preview; nil means hidden.
func (e *Engine) Preview() *model.Preview {
	return e.preview
}

// Progress returns the last computed progress.
func (e *Engine) Progress() model.Progress {
	return e.progress
}

// Recomputes counts preview recomputations.
func (e *Engine) Recomputes() int {
	return e.recomputes
}

// Alert returns the visible alert.
func (e *Engine) Alert() (model.Alert, bool) {
	return e.alerts.Current()
}

// Viewport returns the last viewport signal.
func (e *Engine) Viewport() model.Viewport {
	return e.viewport
}

// Submitting reports whether a submission is in flight.
func (e *Engine) Submitting() bool {
	return e.submitting
}

// Notify shows an alert with the configured duration.
func (e *Engine) Notify(text string, severity model.Severity) string {
	return e.alerts.Enqueue(text, severity, e.alertDuration)
}

func (e *Engine) recompute() {
	snap := e.store.Snapshot()
	e.preview = preview.Render(snap)
	e.progress = preview.Progress(snap)
	e.recomputes++
}

// refresh recomputes now, or schedules a coalesced recompute for input events.
func (e *Engine) refresh(debounced bool) {
	if debounced {
		e.coalescer.Trigger()
		return
	}
	if !e.coalescer.Flush() {
		e.recompute()
	}
}

func (e *Engine) setViewport(v model.Viewport) {
	e.viewport = v
	e.coalescer.SetViewport(v)
	e.alerts.SetTouch(v.Touch)
}
