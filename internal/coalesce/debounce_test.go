package coalesce

import (
	"testing"
	"time"

	"github.com/verte-zerg/omrsheet/internal/model"
	"github.com/verte-zerg/omrsheet/internal/sched"
)

func newTestDebouncer(width int) (*Debouncer, *sched.Scheduler, *int) {
	s := sched.New(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	calls := 0
	d := New(s, 0, 0, func() { calls++ })
	d.SetViewport(model.Viewport{Width: width})
	return d, s, &calls
}

func TestWideViewportRunsSynchronously(t *testing.T) {
	d, _, calls := newTestDebouncer(1280)
	d.Trigger()
	d.Trigger()
	if *calls != 2 {
		t.Fatalf("expected 2 synchronous runs, got %d", *calls)
	}
}

func TestNarrowViewportCoalescesBurst(t *testing.T) {
	d, s, calls := newTestDebouncer(768)
	for i := 0; i < 5; i++ {
		d.Trigger()
		s.Advance(100 * time.Millisecond)
	}
	if *calls != 0 {
		t.Fatalf("expected no run during burst, got %d", *calls)
	}
	s.Advance(199 * time.Millisecond)
	if *calls != 0 {
		t.Fatalf("expected no run before trailing edge, got %d", *calls)
	}
	s.Advance(time.Millisecond)
	if *calls != 1 {
		t.Fatalf("expected one trailing run, got %d", *calls)
	}
	if d.Pending() {
		t.Fatalf("expected nothing pending")
	}
}

func TestFlushRunsPendingOnce(t *testing.T) {
	d, s, calls := newTestDebouncer(400)
	d.Flush()
	if *calls != 0 {
		t.Fatalf("expected flush without pending to be a no-op")
	}
	d.Trigger()
	d.Flush()
	if *calls != 1 {
		t.Fatalf("expected flush to run, got %d", *calls)
	}
	s.Advance(time.Second)
	if *calls != 1 {
		t.Fatalf("expected cancelled timer not to fire, got %d", *calls)
	}
}

func TestWideningFlushes(t *testing.T) {
	d, _, calls := newTestDebouncer(320)
	d.Trigger()
	d.SetViewport(model.Viewport{Width: 1024})
	if *calls != 1 || d.Narrow() {
		t.Fatalf("expected flush on widening, calls=%d narrow=%v", *calls, d.Narrow())
	}
}

func TestUnknownWidthIsNotNarrow(t *testing.T) {
	d, _, calls := newTestDebouncer(0)
	d.Trigger()
	if *calls != 1 {
		t.Fatalf("expected synchronous run for unknown width")
	}
}
