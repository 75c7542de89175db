package ui

import (
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"snakegrid/app"
	"snakegrid/game/types"
	"snakegrid/input"
)

var keyDirections = map[int32]types.Direction{
	rl.KeyUp:    types.Up,
	rl.KeyDown:  types.Down,
	rl.KeyLeft:  types.Left,
	rl.KeyRight: types.Right,
}

// Window is the raylib host: one frame callback per loop iteration, logic
// ticks gated by the runner.
type Window struct {
	runner   *app.Runner
	renderer *Renderer
	swipe    *input.SwipeTracker
	title    string
}

func NewWindow(runner *app.Runner, cellSize int, swipeThreshold float64) *Window {
	return &Window{
		runner:   runner,
		renderer: NewRenderer(runner.Session().Config().Grid, cellSize),
		swipe:    input.NewSwipeTracker(swipeThreshold),
		title:    "snakegrid",
	}
}

func (w *Window) Run() {
	width, height := w.renderer.Size()
	rl.InitWindow(width, height, w.title)
	defer rl.CloseWindow()

	rl.SetTargetFPS(60)

	for !rl.WindowShouldClose() {
		w.handleInput()

		now := time.Duration(rl.GetTime() * float64(time.Second))
		w.runner.Frame(now)

		w.renderer.Draw(w.runner.Session().Snapshot(), w.runner.HUD(), w.runner.Message())
	}
}

func (w *Window) handleInput() {
	for key, dir := range keyDirections {
		if rl.IsKeyPressed(key) {
			w.runner.Request(dir)
		}
	}

	// Mouse doubles as touch on devices without a pointer
	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		pos := rl.GetMousePosition()
		w.swipe.Begin(float64(pos.X), float64(pos.Y))
	}
	tapped := false
	if rl.IsMouseButtonReleased(rl.MouseButtonLeft) {
		pos := rl.GetMousePosition()
		if dir, ok := w.swipe.End(float64(pos.X), float64(pos.Y)); ok {
			w.runner.Request(dir)
		} else {
			tapped = true
		}
	}

	if w.runner.Terminated() && !w.runner.Autopilot() {
		if tapped || rl.IsKeyPressed(rl.KeyEnter) || rl.IsKeyPressed(rl.KeySpace) {
			w.runner.Restart()
		}
	}
}
