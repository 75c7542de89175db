package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"

	"snakegrid/game"
	"snakegrid/game/types"
)

// Rewards
const (
	RewardFood    = 1.0
	RewardDeath   = -1.0
	RewardCloser  = 0.5
	RewardFarther = -0.3
)

// State is what the agent sees of a snapshot
type State struct {
	RelativeFoodDir [2]int  // sign of item minus head on each axis
	FoodDistance    int     // Manhattan distance to the item
	DangerDirs      [4]bool // up, right, down, left
	Heading         types.Direction
}

// Observe extracts the agent state from a snapshot
func Observe(snap game.Snapshot) State {
	head := snap.Head
	s := State{
		RelativeFoodDir: [2]int{sign(snap.Item.X - head.X), sign(snap.Item.Y - head.Y)},
		FoodDistance:    abs(snap.Item.X-head.X) + abs(snap.Item.Y-head.Y),
		Heading:         types.FromPoint(snap.Velocity),
	}
	for i, d := range types.Directions {
		s.DangerDirs[i] = isDanger(snap, head.Add(d.ToPoint()))
	}
	return s
}

func isDanger(snap game.Snapshot, p types.Point) bool {
	if !snap.Grid.Contains(p) {
		return true
	}
	for _, part := range snap.Body {
		if part == p {
			return true
		}
	}
	return false
}

func (s State) key() string {
	return fmt.Sprintf("%d,%d|%d%d%d%d|%d",
		s.RelativeFoodDir[0], s.RelativeFoodDir[1],
		boolToInt(s.DangerDirs[0]), boolToInt(s.DangerDirs[1]),
		boolToInt(s.DangerDirs[2]), boolToInt(s.DangerDirs[3]),
		s.Heading)
}

// QTable maps a state key to the value of each direction
type QTable map[string]map[types.Direction]float64

type QLearning struct {
	QTable       QTable
	LearningRate float64
	Discount     float64
	Epsilon      float64
	MinEpsilon   float64
	EpsilonDecay float64
	TotalReward  float64
	GamesPlayed  int

	rng *rand.Rand
	mu  sync.RWMutex
}

func NewQLearning(rng *rand.Rand) *QLearning {
	return &QLearning{
		QTable:       make(QTable),
		LearningRate: 0.1,
		Discount:     0.9,
		Epsilon:      0.1,
		MinEpsilon:   0.01,
		EpsilonDecay: 0.995,
		rng:          rng,
	}
}

// GetAction picks an epsilon-greedy direction, never the reverse of the heading
func (q *QLearning) GetAction(state State) types.Direction {
	if q.rng.Float64() < q.Epsilon {
		allowed := allowedActions(state)
		return allowed[q.rng.Intn(len(allowed))]
	}
	return q.getBestAction(state)
}

func (q *QLearning) getBestAction(state State) types.Direction {
	q.mu.RLock()
	defer q.mu.RUnlock()

	values := q.QTable[state.key()]
	best := types.None
	bestValue := math.Inf(-1)
	// Fixed order keeps ties deterministic
	for _, action := range allowedActions(state) {
		if v := values[action]; v > bestValue {
			bestValue = v
			best = action
		}
	}
	return best
}

func allowedActions(state State) []types.Direction {
	actions := make([]types.Direction, 0, 4)
	for _, d := range types.Directions {
		if state.Heading != types.None && d == state.Heading.Opposite() {
			continue
		}
		actions = append(actions, d)
	}
	return actions
}

// Reward scores the transition from state to next
func Reward(state, next State, res game.StepResult) float64 {
	if res.Terminated {
		return RewardDeath
	}
	if next.FoodDistance == 0 {
		return RewardFood
	}
	switch {
	case next.FoodDistance < state.FoodDistance:
		return RewardCloser
	case next.FoodDistance > state.FoodDistance:
		return RewardFarther
	}
	return 0
}

// Update applies one Q-learning step and returns the reward used
func (q *QLearning) Update(state State, action types.Direction, next State, res game.StepResult) float64 {
	reward := Reward(state, next, res)

	q.mu.Lock()
	defer q.mu.Unlock()

	stateKey := state.key()
	if _, exists := q.QTable[stateKey]; !exists {
		q.QTable[stateKey] = make(map[types.Direction]float64)
	}

	maxNextQ := 0.0
	if !res.Terminated {
		maxNextQ = math.Inf(-1)
		nextValues := q.QTable[next.key()]
		for _, a := range allowedActions(next) {
			maxNextQ = math.Max(maxNextQ, nextValues[a])
		}
	}

	currentQ := q.QTable[stateKey][action]
	q.QTable[stateKey][action] = currentQ + q.LearningRate*(reward+q.Discount*maxNextQ-currentQ)
	q.TotalReward += reward
	return reward
}

// EndEpisode decays exploration after a finished game
func (q *QLearning) EndEpisode() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.GamesPlayed++
	q.Epsilon = math.Max(q.MinEpsilon, q.Epsilon*q.EpsilonDecay)
}

// SaveQTable writes the table as JSON
func (q *QLearning) SaveQTable(filename string) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return errors.Wrap(err, "create data directory")
	}

	data, err := json.MarshalIndent(q.QTable, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal q-table")
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return errors.Wrapf(err, "write %s", filename)
	}
	return nil
}

// LoadQTable replaces the table with the one stored in filename
func (q *QLearning) LoadQTable(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return errors.Wrapf(err, "read %s", filename)
	}

	table := make(QTable)
	if err := json.Unmarshal(data, &table); err != nil {
		return errors.Wrapf(err, "decode %s", filename)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.QTable = table
	return nil
}

func sign(x int) int {
	if x > 0 {
		return 1
	} else if x < 0 {
		return -1
	}
	return 0
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
