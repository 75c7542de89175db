package ai

import (
	"path/filepath"
	"testing"

	"golang.org/x/exp/rand"

	"snakegrid/game"
	"snakegrid/game/types"
)

func TestObserve(t *testing.T) {
	snap := game.Snapshot{
		Grid:     types.Grid{Width: 10, Height: 10},
		Head:     types.Point{X: 0, Y: 5},
		Body:     []types.Point{{X: 1, Y: 5}},
		Item:     types.Point{X: 3, Y: 2},
		Velocity: types.Point{X: -1, Y: 0},
	}
	s := Observe(snap)
	if s.RelativeFoodDir != [2]int{1, -1} || s.FoodDistance != 6 {
		t.Fatalf("food = %v dist %d", s.RelativeFoodDir, s.FoodDistance)
	}
	// up free, right body, down free, left wall
	if s.DangerDirs != [4]bool{false, true, false, true} {
		t.Fatalf("dangers = %v", s.DangerDirs)
	}
	if s.Heading != types.Left {
		t.Fatalf("heading = %v", s.Heading)
	}
}

func TestGetActionNeverReverses(t *testing.T) {
	q := NewQLearning(rand.New(rand.NewSource(1)))
	q.Epsilon = 1
	state := State{Heading: types.Right}
	for i := 0; i < 200; i++ {
		if a := q.GetAction(state); a == types.Left || !a.Valid() {
			t.Fatalf("GetAction = %v", a)
		}
	}
}

func TestUpdateLearnsToAvoidDeath(t *testing.T) {
	q := NewQLearning(rand.New(rand.NewSource(1)))
	q.Epsilon = 0
	state := State{Heading: types.Up, DangerDirs: [4]bool{true, false, false, false}}

	for i := 0; i < 20; i++ {
		r := q.Update(state, types.Up, state, game.StepResult{Terminated: true})
		if r != RewardDeath {
			t.Fatalf("reward = %v", r)
		}
	}
	if got := q.GetAction(state); got == types.Up {
		t.Fatalf("agent still chooses the deadly move")
	}
}

func TestReward(t *testing.T) {
	far := State{FoodDistance: 5}
	near := State{FoodDistance: 4}
	on := State{FoodDistance: 0}
	if Reward(far, near, game.StepResult{}) != RewardCloser {
		t.Fatalf("closer")
	}
	if Reward(near, far, game.StepResult{}) != RewardFarther {
		t.Fatalf("farther")
	}
	if Reward(near, on, game.StepResult{}) != RewardFood {
		t.Fatalf("food")
	}
	if Reward(near, on, game.StepResult{Terminated: true}) != RewardDeath {
		t.Fatalf("death wins")
	}
}

func TestQTableRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "q", "qtable.json")
	q := NewQLearning(rand.New(rand.NewSource(1)))
	state := State{Heading: types.Down}
	q.Update(state, types.Left, state, game.StepResult{Terminated: true})
	if err := q.SaveQTable(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded := NewQLearning(rand.New(rand.NewSource(2)))
	if err := loaded.LoadQTable(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got, want := loaded.QTable[state.key()][types.Left], q.QTable[state.key()][types.Left]; got != want || got == 0 {
		t.Fatalf("loaded value %v, want %v", got, want)
	}
	if err := loaded.LoadQTable(filepath.Join(t.TempDir(), "none.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestAutopilotPlaysUntilTermination(t *testing.T) {
	agent := NewQLearning(rand.New(rand.NewSource(3)))
	pilot := NewAutopilot(agent, true)
	session := game.NewSession(game.DefaultConfig(), game.WithRand(rand.New(rand.NewSource(4))))

	for i := 0; i < 10000 && session.State() == game.Playing; i++ {
		pilot.Drive(session)
	}
	if session.State() == game.Playing {
		t.Skip("autopilot survived 10000 ticks")
	}
	if agent.GamesPlayed != 1 {
		t.Fatalf("games played = %d", agent.GamesPlayed)
	}
	if len(agent.QTable) == 0 {
		t.Fatalf("nothing learned")
	}
}
