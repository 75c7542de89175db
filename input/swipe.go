// Package input turns raw pointer gestures into direction requests.
package input

import (
	"math"

	"snakegrid/game/types"
)

// DefaultSwipeThreshold is the minimum travel, in pixels, for a swipe
const DefaultSwipeThreshold = 30

// Swipe classifies a displacement by its dominant axis. Moves no longer
// than threshold along that axis are ignored. Screen Y grows downward.
func Swipe(dx, dy, threshold float64) (types.Direction, bool) {
	if math.Abs(dx) > math.Abs(dy) {
		switch {
		case dx > threshold:
			return types.Right, true
		case dx < -threshold:
			return types.Left, true
		}
		return types.None, false
	}
	switch {
	case dy > threshold:
		return types.Down, true
	case dy < -threshold:
		return types.Up, true
	}
	return types.None, false
}

// SwipeTracker pairs a press with its release
type SwipeTracker struct {
	Threshold float64

	startX, startY float64
	active         bool
}

func NewSwipeTracker(threshold float64) *SwipeTracker {
	return &SwipeTracker{Threshold: threshold}
}

func (st *SwipeTracker) Begin(x, y float64) {
	st.startX, st.startY = x, y
	st.active = true
}

// End closes the gesture started by Begin. A release without a press is ignored.
func (st *SwipeTracker) End(x, y float64) (types.Direction, bool) {
	if !st.active {
		return types.None, false
	}
	st.active = false
	return Swipe(x-st.startX, y-st.startY, st.Threshold)
}

func (st *SwipeTracker) Active() bool {
	return st.active
}
