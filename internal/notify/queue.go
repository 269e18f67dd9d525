// Package notify manages the single visible alert and its lifecycle.
package notify

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verte-zerg/omrsheet/internal/model"
	"github.com/verte-zerg/omrsheet/internal/sched"
)

const (
	// DefaultDuration is used when Enqueue gets a non-positive duration.
	DefaultDuration = 5 * time.Second
	tickInterval    = time.Second
)

// Listener observes the visible alert. ok is false once the alert is gone.
type Listener func(alert model.Alert, ok bool)

// Option configures a Queue.
type Option func(*Queue)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(q *Queue) {
		if logger != nil {
			q.log = logger
		}
	}
}

// WithIDFunc overrides alert id generation.
func WithIDFunc(fn func() string) Option {
	return func(q *Queue) {
		if fn != nil {
			q.newID = fn
		}
	}
}

// WithTouch enables swipe-to-dismiss gestures.
func WithTouch(enabled bool) Option {
	return func(q *Queue) {
		q.touch = enabled
	}
}

// Queue holds zero or one visible alert. Enqueue replaces the visible alert;
// there is no backlog.
type Queue struct {
	sched     *sched.Scheduler
	log       *zap.Logger
	newID     func() string
	touch     bool
	current   *model.Alert
	countdown *sched.Task
	gesture   gesture
	listeners []Listener
}

// New returns a Queue whose countdowns run on s.
func New(s *sched.Scheduler, opts ...Option) *Queue {
	q := &Queue{
		sched: s,
		log:   zap.NewNop(),
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Subscribe registers a listener.
func (q *Queue) Subscribe(fn Listener) {
	if fn != nil {
		q.listeners = append(q.listeners, fn)
	}
}

// SetTouch toggles swipe gestures, e.g. after a viewport change.
func (q *Queue) SetTouch(enabled bool) {
	q.touch = enabled
	if !enabled {
		q.resetGesture()
	}
}

// Current returns a copy of the visible alert.
func (q *Queue) Current() (model.Alert, bool) {
	if q.current == nil {
		return model.Alert{}, false
	}
	return *q.current, true
}

// Enqueue shows a new alert, removing any visible one first, and returns the
// new alert id.
func (q *Queue) Enqueue(text string, severity model.Severity, duration time.Duration) string {
	if q.current != nil {
		q.remove("replaced")
	}
	if duration <= 0 {
		duration = DefaultDuration
	}
	if severity == "" {
		severity = model.SeverityInfo
	}
	alert := &model.Alert{
		ID:        q.newID(),
		Text:      text,
		Severity:  severity,
		CreatedAt: q.sched.Now(),
		Duration:  duration,
		Remaining: int((duration + tickInterval - 1) / tickInterval),
		Opacity:   1,
	}
	q.current = alert
	q.countdown = q.sched.Every(tickInterval, q.tick)
	q.log.Debug("alert shown",
		zap.String("id", alert.ID),
		zap.String("severity", string(severity)),
		zap.Duration("duration", duration))
	q.notify()
	return alert.ID
}

// Dismiss removes the alert with id. Unknown or stale ids are ignored.
func (q *Queue) Dismiss(id string) bool {
	if q.current == nil || q.current.ID != id {
		return false
	}
	q.remove("dismissed")
	q.notify()
	return true
}

func (q *Queue) tick() {
	if q.current == nil {
		q.countdown.Cancel()
		return
	}
	q.current.Remaining--
	if q.current.Remaining <= 0 {
		q.remove("expired")
	}
	q.notify()
}

func (q *Queue) remove(reason string) {
	q.countdown.Cancel()
	q.countdown = nil
	q.resetGesture()
	if q.current != nil {
		q.log.Debug("alert removed", zap.String("id", q.current.ID), zap.String("reason", reason))
	}
	q.current = nil
}

func (q *Queue) notify() {
	alert, ok := q.Current()
	for _, fn := range q.listeners {
		fn(alert, ok)
	}
}
