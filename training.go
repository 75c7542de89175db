package main

import (
	"log"
	"time"

	"github.com/pkg/errors"

	"snakegrid/ai"
	"snakegrid/config"
	"snakegrid/game"
	"snakegrid/game/manager"
	"snakegrid/stats"
)

const (
	// maxEpisodeSteps ends episodes where the agent circles forever
	maxEpisodeSteps = 5000
	reportEvery     = 50
	saveEvery       = 500
)

type TrainingResult struct {
	Episodes   int
	BestScore  int
	TotalScore int
}

// batchRecorder collects finished episodes in memory; Train writes them
// out together with the q-table.
type batchRecorder struct {
	history *stats.GameStats
}

func (b batchRecorder) Record(sessionID string, score int, start, end time.Time) error {
	b.history.AddGame(sessionID, score, start, end)
	return nil
}

// Train runs headless episodes against agent. Scores go to history when it
// is non-nil. History and q-table are saved every saveEvery episodes and at
// the end.
func Train(cfg config.Config, agent *ai.QLearning, episodes int, qtablePath string, history *stats.GameStats) (TrainingResult, error) {
	var result TrainingResult
	pilot := ai.NewAutopilot(agent, true)

	var recorder manager.Recorder
	if history != nil {
		recorder = batchRecorder{history: history}
	}
	// training runs never touch the player's high score
	stateMgr := manager.NewStateManager(manager.NewMemoryStore(0), manager.Notifiers{}, recorder)

	batchScore := 0
	for episode := 0; episode < episodes; episode++ {
		gc := cfg.GameConfig()
		if gc.Seed != 0 {
			gc.Seed += uint64(episode)
		}
		session := game.NewSession(gc, game.WithStateManager(stateMgr))

		for i := 0; i < maxEpisodeSteps && session.State() == game.Playing; i++ {
			pilot.Drive(session)
		}
		if session.State() == game.Playing {
			agent.EndEpisode()
		}

		score := session.Score()
		result.Episodes++
		result.TotalScore += score
		batchScore += score
		if score > result.BestScore {
			result.BestScore = score
		}

		if (episode+1)%reportEvery == 0 {
			log.Printf("episode %d: avg %.2f best %d epsilon %.3f",
				episode+1, float64(batchScore)/reportEvery, result.BestScore, agent.Epsilon)
			batchScore = 0
		}

		if (episode+1)%saveEvery == 0 {
			if err := saveTraining(agent, qtablePath, history); err != nil {
				log.Printf("error saving training state: %v", err)
			}
		}
	}

	return result, saveTraining(agent, qtablePath, history)
}

func saveTraining(agent *ai.QLearning, qtablePath string, history *stats.GameStats) error {
	if history != nil {
		if err := history.SaveToFile(); err != nil {
			return errors.Wrap(err, "save training history")
		}
	}
	if qtablePath != "" {
		if err := agent.SaveQTable(qtablePath); err != nil {
			return errors.Wrap(err, "save q-table")
		}
	}
	return nil
}

// trainingDuration formats how long a run took for the final log line
func trainingDuration(start time.Time) time.Duration {
	return time.Since(start).Round(time.Millisecond)
}
