package ai

import (
	"snakegrid/game"
	"snakegrid/game/types"
)

// Autopilot drives a session from a QLearning agent. Call Next before each
// tick and Learn with the tick's result.
type Autopilot struct {
	agent      *QLearning
	learning   bool
	last       State
	lastAction types.Direction
	pending    bool
}

// NewAutopilot wraps agent. With learning off, Learn only tracks episodes.
func NewAutopilot(agent *QLearning, learning bool) *Autopilot {
	return &Autopilot{agent: agent, learning: learning}
}

func (a *Autopilot) Agent() *QLearning {
	return a.agent
}

// Next returns the direction to request for the coming tick
func (a *Autopilot) Next(snap game.Snapshot) types.Direction {
	state := Observe(snap)
	action := a.agent.GetAction(state)
	a.last = state
	a.lastAction = action
	a.pending = true
	return action
}

// Learn feeds back the snapshot after the tick and its result
func (a *Autopilot) Learn(snap game.Snapshot, res game.StepResult) float64 {
	if !a.pending {
		return 0
	}
	a.pending = false

	var reward float64
	if a.learning {
		reward = a.agent.Update(a.last, a.lastAction, Observe(snap), res)
	}
	if res.Terminated {
		a.agent.EndEpisode()
	}
	return reward
}

// Drive runs one full tick on session: request, step, learn
func (a *Autopilot) Drive(session *game.Session) game.StepResult {
	session.RequestDirectionChange(a.Next(session.Snapshot()))
	res := session.Step()
	a.Learn(session.Snapshot(), res)
	return res
}
