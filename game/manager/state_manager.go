package manager

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// HighScoreStore persists the best score across sessions
type HighScoreStore interface {
	HighScore() (int, error)
	SetHighScore(score int) error
}

// Notifier presents the end-of-game outcome to the player
type Notifier interface {
	Notify(outcome Outcome)
}

// Recorder keeps the history of finished games
type Recorder interface {
	Record(sessionID string, score int, start, end time.Time) error
}

// Outcome is the terminal signal of one session
type Outcome struct {
	SessionID    string
	Score        int
	PreviousHigh int
	HighScore    int
	NewHighScore bool
}

func (o Outcome) Message() string {
	if o.NewHighScore {
		return fmt.Sprintf("New High Score: %d!", o.Score)
	}
	return fmt.Sprintf("Game Over. Score: %d. High Score: %d.", o.Score, o.PreviousHigh)
}

// GameStats is the on-disk layout of FileStore
type GameStats struct {
	HighScore int `json:"highScore"`
}

// FileStore keeps the high score in a JSON file. A missing file reads as 0.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (fs *FileStore) Path() string {
	return fs.path
}

func (fs *FileStore) HighScore() (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	stats, err := fs.load()
	if err != nil {
		return 0, err
	}
	return stats.HighScore, nil
}

func (fs *FileStore) SetHighScore(score int) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(fs.path), 0755); err != nil {
		return errors.Wrap(err, "create data directory")
	}

	data, err := json.MarshalIndent(GameStats{HighScore: score}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal high score")
	}

	if err := os.WriteFile(fs.path, data, 0644); err != nil {
		return errors.Wrapf(err, "write %s", fs.path)
	}
	return nil
}

func (fs *FileStore) load() (GameStats, error) {
	var stats GameStats
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return stats, errors.Wrapf(err, "read %s", fs.path)
	}
	if err := json.Unmarshal(data, &stats); err != nil {
		return stats, errors.Wrapf(err, "decode %s", fs.path)
	}
	return stats, nil
}

// MemoryStore is a HighScoreStore for headless runs
type MemoryStore struct {
	mu    sync.Mutex
	score int
}

func NewMemoryStore(initial int) *MemoryStore {
	return &MemoryStore{score: initial}
}

func (ms *MemoryStore) HighScore() (int, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.score, nil
}

func (ms *MemoryStore) SetHighScore(score int) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.score = score
	return nil
}

// LogNotifier writes outcomes to the standard logger
type LogNotifier struct{}

func (LogNotifier) Notify(outcome Outcome) {
	log.Printf("session %s: %s", outcome.SessionID, outcome.Message())
}

// Notifiers fans an outcome out in order
type Notifiers []Notifier

func (ns Notifiers) Notify(outcome Outcome) {
	for _, n := range ns {
		if n != nil {
			n.Notify(outcome)
		}
	}
}

// StateManager is consulted exactly once per session, when it terminates
type StateManager struct {
	store    HighScoreStore
	notifier Notifier
	recorder Recorder
}

// NewStateManager wires the termination collaborators. notifier and
// recorder may be nil.
func NewStateManager(store HighScoreStore, notifier Notifier, recorder Recorder) *StateManager {
	if store == nil {
		store = NewMemoryStore(0)
	}
	return &StateManager{
		store:    store,
		notifier: notifier,
		recorder: recorder,
	}
}

// GetHighScore returns the persisted high score, 0 when unavailable
func (sm *StateManager) GetHighScore() int {
	high, err := sm.store.HighScore()
	if err != nil {
		log.Printf("high score unavailable: %v", err)
		return 0
	}
	return high
}

// Finalize compares the final score against the stored high score, persists
// it if beaten, records the game and notifies.
func (sm *StateManager) Finalize(sessionID string, score int, start, end time.Time) Outcome {
	prev := sm.GetHighScore()

	outcome := Outcome{
		SessionID:    sessionID,
		Score:        score,
		PreviousHigh: prev,
		HighScore:    prev,
	}
	if score > prev {
		outcome.NewHighScore = true
		outcome.HighScore = score
		if err := sm.store.SetHighScore(score); err != nil {
			log.Printf("save high score: %v", err)
		}
	}

	if sm.recorder != nil {
		if err := sm.recorder.Record(sessionID, score, start, end); err != nil {
			log.Printf("record game %s: %v", sessionID, err)
		}
	}

	if sm.notifier != nil {
		sm.notifier.Notify(outcome)
	}
	return outcome
}
