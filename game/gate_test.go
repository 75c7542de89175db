package game

import (
	"testing"
	"time"
)

func TestGateAcceptsAtFixedRate(t *testing.T) {
	g := NewGate(7)
	if g.Interval() != time.Second/7 {
		t.Fatalf("interval = %v", g.Interval())
	}

	steps := 0
	var accepted []int
	for _, ms := range []int{0, 5, 50, 145, 146} {
		if g.Advance(time.Duration(ms)*time.Millisecond, func() { steps++ }) {
			accepted = append(accepted, ms)
		}
	}

	if steps != 2 {
		t.Fatalf("steps = %d, want 2", steps)
	}
	if len(accepted) != 2 || accepted[0] != 0 || accepted[1] != 145 {
		t.Fatalf("accepted = %v, want [0 145]", accepted)
	}
}

func TestGateDoesNotBackfill(t *testing.T) {
	g := NewGateInterval(100 * time.Millisecond)
	steps := 0
	step := func() { steps++ }

	g.Advance(0, step)
	// a long stall is still a single step
	g.Advance(time.Second, step)
	g.Advance(time.Second+time.Millisecond, step)

	if steps != 2 {
		t.Fatalf("steps = %d, want 2", steps)
	}
	if g.Ready(time.Second + 99*time.Millisecond) {
		t.Fatalf("ready before a full interval elapsed")
	}
	if !g.Ready(time.Second + 100*time.Millisecond) {
		t.Fatalf("not ready after a full interval")
	}
}

func TestGateDefaultsRate(t *testing.T) {
	if got := NewGate(0).Interval(); got != time.Second/DefaultTickRate {
		t.Fatalf("interval = %v", got)
	}
}
