// Package app holds the frontend-independent part of a host: it owns the
// current session, gates logic ticks against frame timestamps, forwards
// input and starts a fresh session after a game ends.
package app

import (
	"time"

	"snakegrid/ai"
	"snakegrid/config"
	"snakegrid/game"
	"snakegrid/game/manager"
	"snakegrid/game/types"
	"snakegrid/stats"
)

// AutoRestartDelay is how long the outcome stays up before an autopilot
// game restarts on its own
const AutoRestartDelay = 2 * time.Second

type Options struct {
	Config    config.Config
	Store     manager.HighScoreStore
	History   *stats.GameStats // optional
	Autopilot *ai.Autopilot    // optional
	Notifiers []manager.Notifier
}

// HUD is the text shown next to the board
type HUD struct {
	Score        int
	HighScore    int
	GamesPlayed  int
	AverageScore float64
	Autopilot    bool
}

type Runner struct {
	cfg      config.Config
	gate     *game.Gate
	stateMgr *manager.StateManager
	session  *game.Session
	pilot    *ai.Autopilot
	history  *stats.GameStats

	games        uint64
	highScore    int
	message      string
	terminatedAt time.Duration
}

func New(opts Options) *Runner {
	r := &Runner{
		cfg:     opts.Config,
		gate:    game.NewGate(opts.Config.TickRate),
		pilot:   opts.Autopilot,
		history: opts.History,
	}

	notifiers := manager.Notifiers{r}
	notifiers = append(notifiers, opts.Notifiers...)

	var recorder manager.Recorder
	if opts.History != nil {
		recorder = opts.History
	}
	r.stateMgr = manager.NewStateManager(opts.Store, notifiers, recorder)
	r.highScore = r.stateMgr.GetHighScore()
	r.Restart()
	return r
}

// Restart discards the current session and starts a new one
func (r *Runner) Restart() {
	gc := r.cfg.GameConfig()
	if gc.Seed != 0 {
		// distinct but reproducible item sequence per game
		gc.Seed += r.games
	}
	r.games++
	r.session = game.NewSession(gc, game.WithStateManager(r.stateMgr))
	r.message = ""
}

func (r *Runner) Session() *game.Session {
	return r.session
}

func (r *Runner) Gate() *game.Gate {
	return r.gate
}

// Request forwards a direction from an input source
func (r *Runner) Request(dir types.Direction) bool {
	return r.session.RequestDirectionChange(dir)
}

// Frame is called once per rendering callback with a monotonic timestamp.
// It reports whether a logic tick ran.
func (r *Runner) Frame(now time.Duration) bool {
	if r.pilot != nil && r.Terminated() && now-r.terminatedAt >= AutoRestartDelay {
		r.Restart()
	}
	return r.gate.Advance(now, func() { r.step(now) })
}

func (r *Runner) step(now time.Duration) {
	var res game.StepResult
	if r.pilot != nil && r.session.State() == game.Playing {
		res = r.pilot.Drive(r.session)
	} else {
		res = r.session.Step()
	}
	if res.Outcome != nil {
		r.terminatedAt = now
	}
}

// Notify receives the session outcome through the state manager
func (r *Runner) Notify(outcome manager.Outcome) {
	r.message = outcome.Message()
	r.highScore = outcome.HighScore
}

// Message is the outcome text of the finished game, empty while playing
func (r *Runner) Message() string {
	return r.message
}

func (r *Runner) Terminated() bool {
	return r.session.State() == game.Terminated
}

func (r *Runner) Autopilot() bool {
	return r.pilot != nil
}

func (r *Runner) HUD() HUD {
	hud := HUD{
		Score:     r.session.Score(),
		HighScore: r.highScore,
		Autopilot: r.pilot != nil,
	}
	if r.history != nil {
		hud.GamesPlayed = r.history.GetGamesPlayed()
		hud.AverageScore = r.history.GetAverageScore()
	}
	return hud
}
