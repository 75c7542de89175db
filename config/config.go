package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"snakegrid/game"
	"snakegrid/game/manager"
	"snakegrid/game/types"
)

// Environment variables read by Load
const (
	EnvGridWidth      = "SNAKE_GRID_WIDTH"
	EnvGridHeight     = "SNAKE_GRID_HEIGHT"
	EnvTickRate       = "SNAKE_TICK_RATE"
	EnvStartX         = "SNAKE_START_X"
	EnvStartY         = "SNAKE_START_Y"
	EnvSeed           = "SNAKE_SEED"
	EnvItemPlacement  = "SNAKE_ITEM_PLACEMENT"
	EnvCellSize       = "SNAKE_CELL_SIZE"
	EnvSwipeThreshold = "SNAKE_SWIPE_THRESHOLD"
	EnvDataDir        = "SNAKE_DATA_DIR"
	EnvUI             = "SNAKE_UI"
)

const (
	DefaultCellSize       = 25
	DefaultSwipeThreshold = 30
	DefaultDataDir        = "data"
	DefaultUI             = "raylib"
)

type Config struct {
	GridWidth      int
	GridHeight     int
	TickRate       int
	StartX         int
	StartY         int
	Seed           uint64
	ItemPlacement  string
	CellSize       int
	SwipeThreshold float64
	DataDir        string
	UI             string
}

func Default() Config {
	return Config{
		GridWidth:      game.DefaultGridWidth,
		GridHeight:     game.DefaultGridHeight,
		TickRate:       game.DefaultTickRate,
		StartX:         game.DefaultStart.X,
		StartY:         game.DefaultStart.Y,
		ItemPlacement:  manager.PlacementAllow.String(),
		CellSize:       DefaultCellSize,
		SwipeThreshold: DefaultSwipeThreshold,
		DataDir:        DefaultDataDir,
		UI:             DefaultUI,
	}
}

// Load starts from the defaults, loads the given .env files (missing files
// are skipped) and applies SNAKE_* variables from the environment.
func Load(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return Config{}, errors.Wrapf(err, "load %s", f)
		}
		log.Printf("loaded environment from %s", f)
	}

	cfg := Default()
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	ints := []struct {
		key string
		dst *int
	}{
		{EnvGridWidth, &c.GridWidth},
		{EnvGridHeight, &c.GridHeight},
		{EnvTickRate, &c.TickRate},
		{EnvStartX, &c.StartX},
		{EnvStartY, &c.StartY},
		{EnvCellSize, &c.CellSize},
	}
	for _, v := range ints {
		raw, ok := os.LookupEnv(v.key)
		if !ok || raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return errors.Wrapf(err, "parse %s", v.key)
		}
		*v.dst = n
	}

	if raw := os.Getenv(EnvSeed); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return errors.Wrapf(err, "parse %s", EnvSeed)
		}
		c.Seed = seed
	}
	if raw := os.Getenv(EnvSwipeThreshold); raw != "" {
		th, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return errors.Wrapf(err, "parse %s", EnvSwipeThreshold)
		}
		c.SwipeThreshold = th
	}
	if raw := os.Getenv(EnvItemPlacement); raw != "" {
		c.ItemPlacement = raw
	}
	if raw := os.Getenv(EnvDataDir); raw != "" {
		c.DataDir = raw
	}
	if raw := os.Getenv(EnvUI); raw != "" {
		c.UI = raw
	}
	return nil
}

// Validate rejects settings the simulation cannot run with
func (c Config) Validate() error {
	if c.GridWidth <= 0 || c.GridHeight <= 0 {
		return errors.Errorf("grid must be positive, got %dx%d", c.GridWidth, c.GridHeight)
	}
	if c.TickRate <= 0 {
		return errors.Errorf("tick rate must be positive, got %d", c.TickRate)
	}
	if c.CellSize <= 0 {
		return errors.Errorf("cell size must be positive, got %d", c.CellSize)
	}
	if c.SwipeThreshold < 0 {
		return errors.Errorf("swipe threshold must not be negative, got %v", c.SwipeThreshold)
	}
	grid := types.Grid{Width: c.GridWidth, Height: c.GridHeight}
	if !grid.Contains(types.Point{X: c.StartX, Y: c.StartY}) {
		return errors.Errorf("start cell (%d,%d) is outside the %dx%d grid", c.StartX, c.StartY, c.GridWidth, c.GridHeight)
	}
	if _, err := manager.ParsePlacement(c.ItemPlacement); err != nil {
		return err
	}
	switch c.UI {
	case "raylib", "tui":
	default:
		return errors.Errorf("unknown ui %q", c.UI)
	}
	return nil
}

// GameConfig converts the settings into a session configuration
func (c Config) GameConfig() game.Config {
	placement, _ := manager.ParsePlacement(c.ItemPlacement)
	return game.Config{
		Grid:      types.Grid{Width: c.GridWidth, Height: c.GridHeight},
		Start:     types.Point{X: c.StartX, Y: c.StartY},
		Placement: placement,
		Seed:      c.Seed,
	}
}

func (c Config) HighScorePath() string {
	return filepath.Join(c.DataDir, "highscore.json")
}

func (c Config) StatsPath() string {
	return filepath.Join(c.DataDir, "stats.json")
}

// TrainingStatsPath keeps headless training games out of the player's history
func (c Config) TrainingStatsPath() string {
	return filepath.Join(c.DataDir, "training_stats.json")
}

func (c Config) QTablePath() string {
	return filepath.Join(c.DataDir, "qtable.json")
}
