package notify

import (
	"math"
	"time"

	"github.com/verte-zerg/omrsheet/internal/model"
)

// Swipe thresholds in logical pixels.
const (
	SwipePreviewDistance = 50
	SwipeDismissDistance = 100
	SwipeMaxDuration     = 500 * time.Millisecond
	minSwipeOpacity      = 0.3
)

type gesture struct {
	active  bool
	alertID string
	startX  int
	startAt time.Time
}

// TouchStart begins a gesture on the visible alert.
func (q *Queue) TouchStart(x int) {
	if !q.touch || q.current == nil {
		return
	}
	q.gesture = gesture{active: true, alertID: q.current.ID, startX: x, startAt: q.sched.Now()}
}

// TouchMove updates the swipe preview once the finger moved far enough.
func (q *Queue) TouchMove(x int) {
	if !q.tracking() {
		return
	}
	diff := x - q.gesture.startX
	if abs(diff) <= SwipePreviewDistance {
		return
	}
	q.current.Offset = diff
	q.current.Opacity = math.Max(minSwipeOpacity, 1-float64(abs(diff))/200)
	q.notify()
}

// TouchEnd finishes the gesture. A long, fast swipe dismisses the alert and
// reports its direction; anything else snaps the alert back.
func (q *Queue) TouchEnd(x int) model.SwipeDirection {
	if !q.tracking() {
		q.resetGesture()
		return model.SwipeNone
	}
	diff := x - q.gesture.startX
	elapsed := q.sched.Now().Sub(q.gesture.startAt)
	previewing := q.current.Offset != 0
	q.resetGesture()
	if abs(diff) > SwipeDismissDistance && elapsed < SwipeMaxDuration {
		q.remove("swiped")
		q.notify()
		if diff > 0 {
			return model.SwipeRight
		}
		return model.SwipeLeft
	}
	if previewing {
		q.notify()
	}
	return model.SwipeNone
}

func (q *Queue) tracking() bool {
	return q.touch && q.gesture.active && q.current != nil && q.current.ID == q.gesture.alertID
}

func (q *Queue) resetGesture() {
	q.gesture = gesture{}
	if q.current != nil {
		q.current.Offset = 0
		q.current.Opacity = 1
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
