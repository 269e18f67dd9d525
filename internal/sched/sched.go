// Package sched runs cancellable timed tasks against a controllable clock.
//
// A Scheduler never starts goroutines. Time only moves when the owner calls
// AdvanceTo or Advance, so every task runs on the caller's goroutine. The TUI
// advances the clock from tick messages; tests advance it by hand.
package sched

import "time"

// Scheduler holds pending tasks and the current virtual time.
type Scheduler struct {
	now   time.Time
	seq   uint64
	tasks map[uint64]*entry
}

type entry struct {
	id       uint64
	due      time.Time
	interval time.Duration
	fn       func()
}

// Task is a handle to a scheduled callback.
type Task struct {
	s  *Scheduler
	id uint64
}

// New returns a Scheduler whose clock starts at start.
func New(start time.Time) *Scheduler {
	return &Scheduler{now: start, tasks: map[uint64]*entry{}}
}

// Now returns the current virtual time.
func (s *Scheduler) Now() time.Time {
	return s.now
}

// After schedules fn to run once, d after the current time.
func (s *Scheduler) After(d time.Duration, fn func()) *Task {
	return s.add(d, 0, fn)
}

// Every schedules fn to run every d until cancelled.
func (s *Scheduler) Every(d time.Duration, fn func()) *Task {
	if d <= 0 {
		d = time.Millisecond
	}
	return s.add(d, d, fn)
}

func (s *Scheduler) add(d, interval time.Duration, fn func()) *Task {
	if d < 0 {
		d = 0
	}
	s.seq++
	s.tasks[s.seq] = &entry{id: s.seq, due: s.now.Add(d), interval: interval, fn: fn}
	return &Task{s: s, id: s.seq}
}

// Cancel removes the task. It reports whether the task was still pending.
func (t *Task) Cancel() bool {
	if t == nil || t.s == nil {
		return false
	}
	if _, ok := t.s.tasks[t.id]; !ok {
		return false
	}
	delete(t.s.tasks, t.id)
	return true
}

// Active reports whether the task is still pending.
func (t *Task) Active() bool {
	if t == nil || t.s == nil {
		return false
	}
	_, ok := t.s.tasks[t.id]
	return ok
}

// Pending returns the number of scheduled tasks.
func (s *Scheduler) Pending() int {
	return len(s.tasks)
}

// Next returns the earliest due time among pending tasks.
func (s *Scheduler) Next() (time.Time, bool) {
	e := s.earliest()
	if e == nil {
		return time.Time{}, false
	}
	return e.due, true
}

// Advance moves the clock forward by d and runs every task that falls due.
func (s *Scheduler) Advance(d time.Duration) int {
	return s.AdvanceTo(s.now.Add(d))
}

// AdvanceTo moves the clock to target, running due tasks in due order.
// Tasks run with the clock set to their own due time. A target in the past
// leaves the clock unchanged. It returns the number of callbacks run.
func (s *Scheduler) AdvanceTo(target time.Time) int {
	ran := 0
	for {
		e := s.earliest()
		if e == nil || e.due.After(target) {
			break
		}
		if e.due.After(s.now) {
			s.now = e.due
		}
		if e.interval > 0 {
			e.due = e.due.Add(e.interval)
		} else {
			delete(s.tasks, e.id)
		}
		e.fn()
		ran++
	}
	if target.After(s.now) {
		s.now = target
	}
	return ran
}

func (s *Scheduler) earliest() *entry {
	var best *entry
	for _, e := range s.tasks {
		if best == nil || e.due.Before(best.due) || (e.due.Equal(best.due) && e.id < best.id) {
			best = e
		}
	}
	return best
}
