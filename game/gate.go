package game

import "time"

// Gate lets the simulation advance at a fixed rate no matter how often the
// host's frame callback fires. Missed intervals are never backfilled.
type Gate struct {
	interval time.Duration
	last     time.Duration
	started  bool
}

// NewGate builds a gate for tickRate steps per second
func NewGate(tickRate int) *Gate {
	if tickRate <= 0 {
		tickRate = DefaultTickRate
	}
	return NewGateInterval(time.Second / time.Duration(tickRate))
}

func NewGateInterval(interval time.Duration) *Gate {
	return &Gate{interval: interval}
}

func (g *Gate) Interval() time.Duration {
	return g.interval
}

// Ready reports whether a frame at now would be accepted
func (g *Gate) Ready(now time.Duration) bool {
	return !g.started || now-g.last >= g.interval
}

// Advance runs step at most once if the frame at now is accepted
func (g *Gate) Advance(now time.Duration, step func()) bool {
	if !g.Ready(now) {
		return false
	}
	g.started = true
	g.last = now
	if step != nil {
		step()
	}
	return true
}
