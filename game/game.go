package game

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/rand"

	"snakegrid/game/entity"
	"snakegrid/game/manager"
	"snakegrid/game/types"
)

const (
	DefaultGridWidth  = 20
	DefaultGridHeight = 20
	DefaultTickRate   = 7 // logic steps per second
)

// DefaultStart is the head's starting cell
var DefaultStart = types.Point{X: 5, Y: 5}

// Config holds the per-session tunables
type Config struct {
	Grid      types.Grid
	Start     types.Point
	Placement manager.Placement
	Seed      uint64 // 0 seeds from the clock
}

func DefaultConfig() Config {
	return Config{
		Grid:      types.Grid{Width: DefaultGridWidth, Height: DefaultGridHeight},
		Start:     DefaultStart,
		Placement: manager.PlacementAllow,
	}
}

// State is the lifecycle of a session
type State int

const (
	Playing State = iota
	Terminated
)

func (s State) String() string {
	if s == Terminated {
		return "terminated"
	}
	return "playing"
}

// Snapshot is a read-only copy of everything a renderer needs
type Snapshot struct {
	SessionID string
	Grid      types.Grid
	Head      types.Point
	Body      []types.Point
	Item      types.Point
	Velocity  types.Point
	Score     int
	State     State
	Tick      uint64
}

// PixelPosition converts a cell to the top-left corner of its square on a
// surface of cellSize-sized squares.
func (s Snapshot) PixelPosition(p types.Point, cellSize float64) (float64, float64) {
	return float64(p.X) * cellSize, float64(p.Y) * cellSize
}

// StepResult describes what happened during one tick. Outcome is only set
// on the tick that terminated the session.
type StepResult struct {
	Ate        bool
	Terminated bool
	Cause      manager.CollisionType
	Outcome    *manager.Outcome
}

// Session owns all state of one game
type Session struct {
	mu sync.Mutex

	id           string
	cfg          Config
	snake        *entity.Snake
	item         types.Point
	score        int
	state        State
	cause        manager.CollisionType
	tick         uint64
	outcome      *manager.Outcome
	startTime    time.Time
	collisionMgr *manager.CollisionManager
	foodMgr      *manager.FoodManager
	stateMgr     *manager.StateManager
	rng          *rand.Rand
	now          func() time.Time
}

type Option func(*Session)

// WithStateManager sets the collaborator consulted at termination
func WithStateManager(sm *manager.StateManager) Option {
	return func(s *Session) {
		s.stateMgr = sm
	}
}

// WithRand overrides the item placement source
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) {
		s.rng = rng
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

func NewSession(cfg Config, opts ...Option) *Session {
	s := &Session{
		id:    uuid.New().String(),
		cfg:   cfg,
		snake: entity.NewSnake(cfg.Start),
		state: Playing,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		s.rng = rand.New(rand.NewSource(seed))
	}
	if s.stateMgr == nil {
		s.stateMgr = manager.NewStateManager(manager.NewMemoryStore(0), nil, nil)
	}

	s.collisionMgr = manager.NewCollisionManager(cfg.Grid)
	s.foodMgr = manager.NewFoodManager(cfg.Grid, s.collisionMgr, cfg.Placement, s.rng)
	s.item = s.foodMgr.GenerateFood(s.snake)
	s.startTime = s.now()

	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Config() Config {
	return s.cfg
}

// RequestDirectionChange buffers dir for the next tick. Only the latest
// accepted request between two ticks takes effect; reversing the velocity in
// effect is a silent no-op.
func (s *Session) RequestDirectionChange(dir types.Direction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Playing {
		return false
	}
	return s.snake.SetDirection(dir)
}

// Step advances the simulation by one tick. It is a no-op once terminated.
func (s *Session) Step() StepResult {
	s.mu.Lock()
	res, finished := s.advance()
	score := s.score
	s.mu.Unlock()

	if !finished {
		return res
	}

	// Collaborators are called without the lock so they may read snapshots
	outcome := s.stateMgr.Finalize(s.id, score, s.startTime, s.now())

	s.mu.Lock()
	s.outcome = &outcome
	s.mu.Unlock()

	res.Outcome = &outcome
	return res
}

func (s *Session) advance() (StepResult, bool) {
	if s.state == Terminated {
		return StepResult{Terminated: true, Cause: s.cause}, false
	}
	s.tick++

	var res StepResult
	if s.collisionMgr.IsFoodCollision(s.snake.Head, s.item) {
		s.snake.Grow(s.item)
		s.item = s.foodMgr.GenerateFood(s.snake)
		s.score++
		res.Ate = true
	}

	s.snake.Shift()
	s.snake.Move()

	if cause := s.collisionMgr.Check(s.snake); cause != manager.NoCollision {
		s.state = Terminated
		s.cause = cause
		res.Terminated = true
		res.Cause = cause
		return res, true
	}
	return res, false
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		SessionID: s.id,
		Grid:      s.cfg.Grid,
		Head:      s.snake.Head,
		Body:      s.snake.BodyCopy(),
		Item:      s.item,
		Velocity:  s.snake.Heading(),
		Score:     s.score,
		State:     s.state,
		Tick:      s.tick,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// Outcome returns the terminal signal once the session has ended
func (s *Session) Outcome() (manager.Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.outcome == nil {
		return manager.Outcome{}, false
	}
	return *s.outcome, true
}

// HighScore exposes the persisted high score for HUDs
func (s *Session) HighScore() int {
	return s.stateMgr.GetHighScore()
}
