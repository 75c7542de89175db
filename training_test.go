package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/exp/rand"

	"snakegrid/ai"
	"snakegrid/config"
	"snakegrid/stats"
)

func TestTrainRecordsEpisodesAndSavesTable(t *testing.T) {
	cfg := config.Default()
	cfg.GridWidth, cfg.GridHeight = 8, 8
	cfg.StartX, cfg.StartY = 3, 3
	cfg.Seed = 42
	cfg.ItemPlacement = "reroll"

	history, err := stats.NewGameStats("")
	if err != nil {
		t.Fatalf("NewGameStats: %v", err)
	}
	agent := ai.NewQLearning(rand.New(rand.NewSource(42)))
	path := filepath.Join(t.TempDir(), "qtable.json")

	result, err := Train(cfg, agent, 20, path, history)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if result.Episodes != 20 {
		t.Fatalf("episodes = %d", result.Episodes)
	}
	if result.BestScore > result.TotalScore {
		t.Fatalf("best %d above total %d", result.BestScore, result.TotalScore)
	}
	if agent.GamesPlayed != 20 {
		t.Fatalf("agent played %d episodes", agent.GamesPlayed)
	}
	if len(agent.QTable) == 0 {
		t.Fatalf("q-table is empty after training")
	}

	loaded := ai.NewQLearning(rand.New(rand.NewSource(1)))
	if err := loaded.LoadQTable(path); err != nil {
		t.Fatalf("LoadQTable: %v", err)
	}
	if len(loaded.QTable) != len(agent.QTable) {
		t.Fatalf("saved %d states, loaded %d", len(agent.QTable), len(loaded.QTable))
	}
}

func TestTrainWritesHistoryInBatches(t *testing.T) {
	cfg := config.Default()
	cfg.GridWidth, cfg.GridHeight = 8, 8
	cfg.StartX, cfg.StartY = 3, 3
	cfg.Seed = 7
	cfg.ItemPlacement = "reroll"
	cfg.DataDir = t.TempDir()

	path := cfg.TrainingStatsPath()
	history, err := stats.NewGameStats(path)
	if err != nil {
		t.Fatalf("NewGameStats: %v", err)
	}

	// single episodes stay in memory until the batch is saved
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if err := (batchRecorder{history: history}).Record("warmup", 1, start, start.Add(time.Second)); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("history written per episode: stat err = %v", err)
	}

	agent := ai.NewQLearning(rand.New(rand.NewSource(7)))
	if _, err := Train(cfg, agent, 10, cfg.QTablePath(), history); err != nil {
		t.Fatalf("Train: %v", err)
	}

	reloaded, err := stats.NewGameStats(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got, want := reloaded.GetGamesPlayed(), history.GetGamesPlayed(); got != want || got < 1 {
		t.Fatalf("saved %d games, in memory %d", got, want)
	}
	if _, err := os.Stat(cfg.StatsPath()); !os.IsNotExist(err) {
		t.Fatalf("training touched the player's history: stat err = %v", err)
	}
}
