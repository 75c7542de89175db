package game

import (
	"reflect"
	"testing"
	"time"

	"golang.org/x/exp/rand"

	"snakegrid/game/manager"
	"snakegrid/game/types"
)

type captureNotifier struct {
	got []manager.Outcome
}

func (c *captureNotifier) Notify(o manager.Outcome) { c.got = append(c.got, o) }

func newTestSession(t *testing.T, seed uint64, opts ...Option) *Session {
	t.Helper()
	cfg := DefaultConfig()
	opts = append([]Option{WithRand(rand.New(rand.NewSource(seed)))}, opts...)
	return NewSession(cfg, opts...)
}

func TestIdleUntilFirstInput(t *testing.T) {
	s := newTestSession(t, 1)
	s.item = types.Point{X: 0, Y: 0}

	for i := 0; i < 5; i++ {
		s.Step()
	}
	snap := s.Snapshot()
	if snap.Head != DefaultStart || snap.State != Playing {
		t.Fatalf("idle snake moved: %+v", snap)
	}
	if snap.Tick != 5 {
		t.Fatalf("tick = %d, want 5", snap.Tick)
	}
}

func TestIdleSnakeEatingHitsItself(t *testing.T) {
	n := &captureNotifier{}
	s := newTestSession(t, 3, WithStateManager(manager.NewStateManager(manager.NewMemoryStore(0), n, nil)))
	s.item = s.snake.Head

	res := s.Step()
	snap := s.Snapshot()
	if !res.Ate || !res.Terminated || res.Cause != manager.SelfCollision {
		t.Fatalf("idle snake on the item: res=%+v", res)
	}
	if snap.State != Terminated || snap.Score != 1 || len(snap.Body) != 1 || snap.Body[0] != snap.Head {
		t.Fatalf("snapshot = %+v", snap)
	}
	if len(n.got) != 1 || n.got[0].Score != 1 {
		t.Fatalf("notifications = %+v", n.got)
	}
}

func TestBoundaryTerminates(t *testing.T) {
	n := &captureNotifier{}
	s := newTestSession(t, 1, WithStateManager(manager.NewStateManager(manager.NewMemoryStore(10), n, nil)))
	s.snake.Head = types.Point{X: 19, Y: 5}
	s.item = types.Point{X: 0, Y: 0}

	if !s.RequestDirectionChange(types.Right) {
		t.Fatalf("right rejected")
	}
	res := s.Step()

	if !res.Terminated || res.Cause != manager.WallCollision {
		t.Fatalf("step result = %+v, want wall termination", res)
	}
	if s.State() != Terminated || s.Score() != 0 {
		t.Fatalf("state=%v score=%d", s.State(), s.Score())
	}
	if res.Outcome == nil || res.Outcome.Message() != "Game Over. Score: 0. High Score: 10." {
		t.Fatalf("outcome = %+v", res.Outcome)
	}
	if len(n.got) != 1 {
		t.Fatalf("notified %d times, want 1", len(n.got))
	}
}

func TestConsumption(t *testing.T) {
	differs := 0
	for seed := uint64(1); seed <= 50; seed++ {
		s := newTestSession(t, seed)
		s.item = s.snake.Head
		old := s.item
		s.RequestDirectionChange(types.Right)

		res := s.Step()
		snap := s.Snapshot()

		if !res.Ate || snap.Score != 1 || len(snap.Body) != 1 {
			t.Fatalf("seed %d: ate=%v score=%d body=%v", seed, res.Ate, snap.Score, snap.Body)
		}
		if snap.Body[0] != old {
			t.Fatalf("seed %d: new segment at %v, want %v", seed, snap.Body[0], old)
		}
		if !snap.Grid.Contains(snap.Item) {
			t.Fatalf("seed %d: item %v outside grid", seed, snap.Item)
		}
		if snap.State != Playing {
			t.Fatalf("seed %d: terminated after eating", seed)
		}
		if snap.Item != old {
			differs++
		}
	}
	if differs < 45 {
		t.Fatalf("item relocated away from old cell in only %d/50 runs", differs)
	}
}

func TestSelfCollisionLoop(t *testing.T) {
	s := newTestSession(t, 1)
	s.snake.Head = types.Point{X: 10, Y: 10}
	s.snake.Body = []types.Point{{X: 9, Y: 10}, {X: 8, Y: 10}, {X: 7, Y: 10}, {X: 6, Y: 10}}
	s.score = 4
	s.item = types.Point{X: 0, Y: 19}

	turns := []types.Direction{types.Right, types.Down, types.Left, types.Up}
	var res StepResult
	for i, d := range turns {
		if !s.RequestDirectionChange(d) {
			t.Fatalf("turn %d (%v) rejected", i, d)
		}
		res = s.Step()
		if i < len(turns)-1 && res.Terminated {
			t.Fatalf("terminated early on turn %d", i)
		}
	}
	if !res.Terminated || res.Cause != manager.SelfCollision {
		t.Fatalf("result = %+v, want self collision", res)
	}
}

func TestStepAfterTerminationIsNoop(t *testing.T) {
	n := &captureNotifier{}
	s := newTestSession(t, 3, WithStateManager(manager.NewStateManager(nil, n, nil)))
	s.snake.Head = types.Point{X: 0, Y: 0}
	s.item = types.Point{X: 10, Y: 10}
	s.RequestDirectionChange(types.Up)
	s.Step()

	before := s.Snapshot()
	for i := 0; i < 10; i++ {
		res := s.Step()
		if res.Outcome != nil {
			t.Fatalf("outcome signalled again on step %d", i)
		}
		if s.RequestDirectionChange(types.Right) {
			t.Fatalf("direction accepted after termination")
		}
	}
	after := s.Snapshot()
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("snapshot changed after termination:\n%+v\n%+v", before, after)
	}
	if len(n.got) != 1 {
		t.Fatalf("notified %d times", len(n.got))
	}
	if _, ok := s.Outcome(); !ok {
		t.Fatalf("Outcome not available after termination")
	}
}

func TestBodyLengthMatchesScore(t *testing.T) {
	cfg := Config{
		Grid:      types.Grid{Width: 6, Height: 6},
		Start:     types.Point{X: 2, Y: 2},
		Placement: manager.PlacementReroll,
	}
	inputs := rand.New(rand.NewSource(99))
	ate := 0
	for game := 0; game < 200; game++ {
		s := NewSession(cfg, WithRand(rand.New(rand.NewSource(uint64(game+1)))))
		for tick := 0; tick < 500 && s.State() == Playing; tick++ {
			s.RequestDirectionChange(types.Directions[inputs.Intn(4)])
			res := s.Step()
			if res.Ate {
				ate++
			}
			snap := s.Snapshot()
			if len(snap.Body) != snap.Score {
				t.Fatalf("game %d tick %d: len(body)=%d score=%d", game, tick, len(snap.Body), snap.Score)
			}
		}
	}
	if ate == 0 {
		t.Fatalf("random walks never ate; the property was not exercised")
	}
}

func TestNeverReversesInPlace(t *testing.T) {
	inputs := rand.New(rand.NewSource(5))
	for game := 0; game < 100; game++ {
		s := newTestSession(t, uint64(game+1))
		prev := s.Snapshot().Velocity
		for tick := 0; tick < 200 && s.State() == Playing; tick++ {
			for k := inputs.Intn(4); k >= 0; k-- {
				s.RequestDirectionChange(types.Directions[inputs.Intn(4)])
			}
			s.Step()
			v := s.Snapshot().Velocity
			if !prev.IsZero() && v == prev.Neg() {
				t.Fatalf("game %d tick %d: reversed from %v to %v", game, tick, prev, v)
			}
			prev = v
		}
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	a := newTestSession(t, 1)
	b := newTestSession(t, 1)
	if a.ID() == b.ID() {
		t.Fatalf("sessions share an id")
	}
	a.item = types.Point{X: 0, Y: 0}
	b.item = types.Point{X: 0, Y: 0}
	a.RequestDirectionChange(types.Down)
	a.Step()
	if b.Snapshot().Head != DefaultStart {
		t.Fatalf("stepping one session moved another")
	}
}

func TestOutcomeTimestamps(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := start
	var recorded []time.Duration
	rec := recorderFunc(func(_ string, _ int, s, e time.Time) error {
		recorded = append(recorded, e.Sub(s))
		return nil
	})
	s := newTestSession(t, 1,
		WithClock(func() time.Time { return clock }),
		WithStateManager(manager.NewStateManager(nil, nil, rec)))
	s.snake.Head = types.Point{X: 0, Y: 5}
	s.item = types.Point{X: 10, Y: 10}
	s.RequestDirectionChange(types.Left)
	clock = start.Add(3 * time.Second)
	s.Step()

	if len(recorded) != 1 || recorded[0] != 3*time.Second {
		t.Fatalf("recorded durations = %v", recorded)
	}
}

type recorderFunc func(string, int, time.Time, time.Time) error

func (f recorderFunc) Record(id string, score int, start, end time.Time) error {
	return f(id, score, start, end)
}

func TestPixelPosition(t *testing.T) {
	snap := Snapshot{}
	x, y := snap.PixelPosition(types.Point{X: 19, Y: 5}, 25)
	if x != 475 || y != 125 {
		t.Fatalf("PixelPosition = (%v, %v)", x, y)
	}
}
