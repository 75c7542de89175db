package main

import (
	"flag"
	"io"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"

	"snakegrid/ai"
	"snakegrid/app"
	"snakegrid/config"
	"snakegrid/game/manager"
	"snakegrid/stats"
	"snakegrid/tui"
	"snakegrid/ui"
)

type flags struct {
	envFile   string
	uiName    string
	width     int
	height    int
	rate      int
	seed      uint64
	placement string
	dataDir   string
	autopilot bool
	learn     bool
	train     int
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.envFile, "env", ".env", "Environment file with SNAKE_* settings")
	flag.StringVar(&f.uiName, "ui", config.DefaultUI, "Frontend: raylib or tui")
	flag.IntVar(&f.width, "width", 0, "Grid width in cells")
	flag.IntVar(&f.height, "height", 0, "Grid height in cells")
	flag.IntVar(&f.rate, "rate", 0, "Logic ticks per second")
	flag.Uint64Var(&f.seed, "seed", 0, "Random seed for item placement (0 = clock)")
	flag.StringVar(&f.placement, "placement", "", "Item placement: allow or reroll")
	flag.StringVar(&f.dataDir, "data", "", "Directory for high score, stats and q-table")
	flag.BoolVar(&f.autopilot, "autopilot", false, "Let the Q-learning agent play")
	flag.BoolVar(&f.learn, "learn", true, "Keep updating the q-table while on autopilot")
	flag.IntVar(&f.train, "train", 0, "Run N headless training episodes and exit")
	flag.Parse()
	return f
}

// apply overrides cfg with the flags given on the command line
func (f flags) apply(cfg *config.Config) {
	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "ui":
			cfg.UI = f.uiName
		case "width":
			cfg.GridWidth = f.width
		case "height":
			cfg.GridHeight = f.height
		case "rate":
			cfg.TickRate = f.rate
		case "seed":
			cfg.Seed = f.seed
		case "placement":
			cfg.ItemPlacement = f.placement
		case "data":
			cfg.DataDir = f.dataDir
		}
	})
}

func main() {
	log.SetPrefix("snakegrid: ")
	f := parseFlags()

	cfg, err := config.Load(f.envFile)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	f.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	if f.train > 0 {
		history, err := stats.NewGameStats(cfg.TrainingStatsPath())
		if err != nil {
			log.Fatalf("stats: %v", err)
		}
		start := time.Now()
		result, err := Train(cfg, loadAgent(cfg), f.train, cfg.QTablePath(), history)
		if err != nil {
			log.Fatalf("training: %v", err)
		}
		log.Printf("trained %d episodes in %v, best score %d", result.Episodes, trainingDuration(start), result.BestScore)
		return
	}

	history, err := stats.NewGameStats(cfg.StatsPath())
	if err != nil {
		log.Fatalf("stats: %v", err)
	}

	if f.autopilot {
		agent := loadAgent(cfg)
		defer func() {
			if err := agent.SaveQTable(cfg.QTablePath()); err != nil {
				log.Printf("error saving q-table: %v", err)
			}
		}()
		run(cfg, history, ai.NewAutopilot(agent, f.learn))
		return
	}

	run(cfg, history, nil)
}

func loadAgent(cfg config.Config) *ai.QLearning {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	agent := ai.NewQLearning(rand.New(rand.NewSource(seed)))
	if err := agent.LoadQTable(cfg.QTablePath()); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("starting with an empty q-table: %v", err)
		}
	}
	return agent
}

func run(cfg config.Config, history *stats.GameStats, pilot *ai.Autopilot) {
	opts := app.Options{
		Config:    cfg,
		Store:     manager.NewFileStore(cfg.HighScorePath()),
		History:   history,
		Autopilot: pilot,
	}

	switch cfg.UI {
	case "tui":
		screen, err := tcell.NewScreen()
		if err != nil {
			log.Fatalf("terminal: %v", err)
		}
		// the board owns the terminal until Run returns
		log.SetOutput(io.Discard)
		err = tui.New(screen, app.New(opts)).Run()
		log.SetOutput(os.Stderr)
		if err != nil {
			log.Fatalf("terminal: %v", err)
		}
	default:
		opts.Notifiers = []manager.Notifier{manager.LogNotifier{}}
		ui.NewWindow(app.New(opts), cfg.CellSize, cfg.SwipeThreshold).Run()
	}
}
