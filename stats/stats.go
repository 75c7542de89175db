// Package stats keeps the history of finished games. Old records are folded
// into groups so the file stays small however long the player keeps going.
package stats

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// GroupSize is the number of records folded into one group
const GroupSize = 100

// GameStats holds every recorded game, single or grouped
type GameStats struct {
	Games []GameRecord
	path  string
	mutex sync.RWMutex
}

// GameRecord is either a single game (CompressionIndex 0) or a group
type GameRecord struct {
	SessionID        string    `json:"sessionId,omitempty"`
	StartTime        time.Time `json:"startTime"`
	EndTime          time.Time `json:"endTime"`
	Score            int       `json:"score"`
	CompressionIndex int       `json:"compressionIndex"`
	GamesCount       int       `json:"gamesCount"`
	AverageScore     float64   `json:"averageScore"`
	MedianScore      float64   `json:"medianScore"`
	MaxScore         int       `json:"maxScore"`
	MinScore         int       `json:"minScore"`
	AverageDuration  float64   `json:"averageDuration"`
	MaxDuration      float64   `json:"maxDuration"`
	MinDuration      float64   `json:"minDuration"`
}

// NewGameStats loads the history stored at path. An empty path keeps the
// history in memory only.
func NewGameStats(path string) (*GameStats, error) {
	s := &GameStats{
		Games: make([]GameRecord, 0),
		path:  path,
	}
	if err := s.loadFromFile(); err != nil {
		return s, err
	}
	return s, nil
}

// Record adds a finished game and writes the history back to disk
func (s *GameStats) Record(sessionID string, score int, start, end time.Time) error {
	s.AddGame(sessionID, score, start, end)
	return s.SaveToFile()
}

// AddGame adds a finished game to the history
func (s *GameStats) AddGame(sessionID string, score int, startTime, endTime time.Time) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	duration := endTime.Sub(startTime).Seconds()
	s.Games = append(s.Games, GameRecord{
		SessionID:        sessionID,
		StartTime:        startTime,
		EndTime:          endTime,
		Score:            score,
		CompressionIndex: 0,
		GamesCount:       1,
		AverageScore:     float64(score),
		MedianScore:      float64(score),
		MaxScore:         score,
		MinScore:         score,
		AverageDuration:  duration,
		MaxDuration:      duration,
		MinDuration:      duration,
	})

	s.groupGames()
}

// groupGames folds the oldest GroupSize records of each full level into a
// single record one level up, cascading while any level is full.
func (s *GameStats) groupGames() {
	for level := 0; level <= s.topLevel(); level++ {
		for s.foldOldest(level) {
		}
	}
	sortRecords(s.Games)
}

func (s *GameStats) topLevel() int {
	top := 0
	for _, g := range s.Games {
		top = max(top, g.CompressionIndex)
	}
	return top
}

// foldOldest merges the GroupSize oldest records of level. It reports false
// when the level is not full yet.
func (s *GameStats) foldOldest(level int) bool {
	var group, rest []GameRecord
	for _, g := range s.Games {
		if g.CompressionIndex == level {
			group = append(group, g)
		} else {
			rest = append(rest, g)
		}
	}
	if len(group) < GroupSize {
		return false
	}

	sortRecords(group)
	rest = append(rest, group[GroupSize:]...)
	s.Games = append(rest, mergeGroup(group[:GroupSize], level+1))
	return true
}

// sortRecords orders records by level, then by start time
func sortRecords(records []GameRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].CompressionIndex != records[j].CompressionIndex {
			return records[i].CompressionIndex < records[j].CompressionIndex
		}
		return records[i].StartTime.Before(records[j].StartTime)
	})
}

func mergeGroup(group []GameRecord, level int) GameRecord {
	merged := GameRecord{
		CompressionIndex: level,
		StartTime:        group[0].StartTime,
		EndTime:          group[0].EndTime,
		MaxScore:         group[0].MaxScore,
		MinScore:         group[0].MinScore,
		MaxDuration:      group[0].MaxDuration,
		MinDuration:      group[0].MinDuration,
	}

	var totalScore, totalDuration float64
	medians := make([]float64, 0, len(group))
	for _, g := range group {
		merged.MaxScore = max(merged.MaxScore, g.MaxScore)
		merged.MinScore = min(merged.MinScore, g.MinScore)
		merged.MaxDuration = max(merged.MaxDuration, g.MaxDuration)
		merged.MinDuration = min(merged.MinDuration, g.MinDuration)
		if g.StartTime.Before(merged.StartTime) {
			merged.StartTime = g.StartTime
		}
		if g.EndTime.After(merged.EndTime) {
			merged.EndTime = g.EndTime
		}
		totalScore += g.AverageScore * float64(g.GamesCount)
		totalDuration += g.AverageDuration * float64(g.GamesCount)
		merged.GamesCount += g.GamesCount
		for i := 0; i < g.GamesCount; i++ {
			medians = append(medians, g.MedianScore)
		}
	}

	merged.AverageScore = totalScore / float64(merged.GamesCount)
	merged.AverageDuration = totalDuration / float64(merged.GamesCount)
	merged.MedianScore = median(medians)
	return merged
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sort.Float64s(values)
	mid := len(values) / 2
	if len(values)%2 == 0 {
		return (values[mid-1] + values[mid]) / 2
	}
	return values[mid]
}

// GetStats returns a copy of the current records
func (s *GameStats) GetStats() []GameRecord {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	games := make([]GameRecord, len(s.Games))
	copy(games, s.Games)
	return games
}

func (s *GameStats) GetGamesPlayed() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	total := 0
	for _, game := range s.Games {
		total += game.GamesCount
	}
	return total
}

func (s *GameStats) GetAverageScore() float64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var totalScore float64
	var totalGames int
	for _, game := range s.Games {
		totalScore += game.AverageScore * float64(game.GamesCount)
		totalGames += game.GamesCount
	}
	if totalGames == 0 {
		return 0
	}
	return totalScore / float64(totalGames)
}

func (s *GameStats) GetMaxScore() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	maxScore := 0
	for _, game := range s.Games {
		maxScore = max(maxScore, game.MaxScore)
	}
	return maxScore
}

// GetAverageDuration returns the mean game length in seconds
func (s *GameStats) GetAverageDuration() float64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var totalDuration float64
	var totalGames int
	for _, game := range s.Games {
		totalDuration += game.AverageDuration * float64(game.GamesCount)
		totalGames += game.GamesCount
	}
	if totalGames == 0 {
		return 0
	}
	return totalDuration / float64(totalGames)
}

// SaveToFile writes the history as JSON
func (s *GameStats) SaveToFile() error {
	if s.path == "" {
		return nil
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errors.Wrap(err, "create data directory")
	}

	data, err := json.Marshal(s.Games)
	if err != nil {
		return errors.Wrap(err, "marshal stats")
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return errors.Wrapf(err, "write %s", s.path)
	}
	return nil
}

func (s *GameStats) loadFromFile() error {
	if s.path == "" {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "read %s", s.path)
	}

	if err := json.Unmarshal(data, &s.Games); err != nil {
		return errors.Wrapf(err, "decode %s", s.path)
	}
	return nil
}
