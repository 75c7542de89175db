package input

import (
	"testing"

	"snakegrid/game/types"
)

func TestSwipe(t *testing.T) {
	cases := []struct {
		dx, dy float64
		want   types.Direction
		ok     bool
	}{
		{50, 10, types.Right, true},
		{-50, 10, types.Left, true},
		{5, 60, types.Down, true},
		{5, -60, types.Up, true},
		{30, 0, types.None, false}, // must exceed the threshold
		{20, 25, types.None, false},
		{40, 40, types.Down, true}, // ties go to the vertical axis
		{0, 0, types.None, false},
	}
	for _, c := range cases {
		got, ok := Swipe(c.dx, c.dy, DefaultSwipeThreshold)
		if got != c.want || ok != c.ok {
			t.Errorf("Swipe(%v, %v) = %v, %v; want %v, %v", c.dx, c.dy, got, ok, c.want, c.ok)
		}
	}
}

func TestSwipeTracker(t *testing.T) {
	st := NewSwipeTracker(DefaultSwipeThreshold)
	if _, ok := st.End(100, 100); ok {
		t.Fatalf("release without press produced a swipe")
	}

	st.Begin(100, 100)
	if !st.Active() {
		t.Fatalf("tracker not active after Begin")
	}
	dir, ok := st.End(40, 110)
	if !ok || dir != types.Left {
		t.Fatalf("End = %v, %v", dir, ok)
	}
	if _, ok := st.End(0, 0); ok {
		t.Fatalf("second release reused the old press")
	}
}
