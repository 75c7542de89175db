// Package tui runs the game in a terminal. Each grid cell is two columns
// wide so the board looks square in most fonts.
package tui

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"

	"snakegrid/app"
	"snakegrid/game"
	"snakegrid/game/types"
)

// frameInterval plays the part of the display refresh callback
const frameInterval = time.Second / 60

const (
	boardTop  = 1 // row 0 is the HUD
	boardLeft = 0
)

var (
	styleDefault = tcell.StyleDefault
	styleBorder  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleHead    = tcell.StyleDefault.Foreground(tcell.ColorLightGreen).Bold(true)
	styleBody    = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleItem    = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleMessage = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
)

var keyDirections = map[tcell.Key]types.Direction{
	tcell.KeyUp:    types.Up,
	tcell.KeyDown:  types.Down,
	tcell.KeyLeft:  types.Left,
	tcell.KeyRight: types.Right,
}

type Terminal struct {
	screen tcell.Screen
	runner *app.Runner
}

func New(screen tcell.Screen, runner *app.Runner) *Terminal {
	return &Terminal{screen: screen, runner: runner}
}

// Run blocks until the player quits with Esc, q or Ctrl-C
func (t *Terminal) Run() error {
	if err := t.screen.Init(); err != nil {
		return errors.Wrap(err, "init screen")
	}
	defer t.screen.Fini()
	t.screen.HideCursor()

	// Events are read on their own goroutine and applied on this one
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()
	start := time.Now()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if quit := t.HandleEvent(ev); quit {
				return nil
			}
		case <-ticker.C:
			t.runner.Frame(time.Since(start))
			t.Draw()
		}
	}
}

// HandleEvent applies one terminal event and reports whether to quit
func (t *Terminal) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return true
		}
		if ev.Key() == tcell.KeyRune && ev.Rune() == 'q' {
			return true
		}
		if dir, ok := DirectionForKey(ev); ok {
			t.runner.Request(dir)
			return false
		}
		if t.runner.Terminated() && !t.runner.Autopilot() {
			if ev.Key() == tcell.KeyEnter || (ev.Key() == tcell.KeyRune && ev.Rune() == ' ') {
				t.runner.Restart()
			}
		}
	case *tcell.EventResize:
		t.screen.Sync()
	}
	return false
}

// DirectionForKey maps arrow keys to directions
func DirectionForKey(ev *tcell.EventKey) (types.Direction, bool) {
	dir, ok := keyDirections[ev.Key()]
	return dir, ok
}

func (t *Terminal) Draw() {
	Draw(t.screen, t.runner.Session().Snapshot(), t.runner.HUD(), t.runner.Message())
	t.screen.Show()
}

// Draw renders a snapshot onto screen without showing it
func Draw(screen tcell.Screen, snap game.Snapshot, hud app.HUD, message string) {
	screen.Clear()

	status := fmt.Sprintf("Score: %d  High: %d", hud.Score, hud.HighScore)
	if hud.GamesPlayed > 0 {
		status += fmt.Sprintf("  Games: %d  Avg: %.1f", hud.GamesPlayed, hud.AverageScore)
	}
	if hud.Autopilot {
		status += "  [autopilot]"
	}
	drawText(screen, 0, 0, styleDefault, status)

	drawBorder(screen, snap.Grid)

	setCell(screen, snap.Item, '*', styleItem)
	for _, p := range snap.Body {
		setCell(screen, p, 'o', styleBody)
	}
	setCell(screen, snap.Head, '@', styleHead)

	if message != "" {
		row := boardTop + snap.Grid.Height + 2
		drawText(screen, boardLeft, row, styleMessage, message)
		if !hud.Autopilot {
			drawText(screen, boardLeft, row+1, styleBorder, "Enter to play again, q to quit")
		}
	}
}

// CellOrigin returns the screen column and row of a grid cell's left half
func CellOrigin(p types.Point) (int, int) {
	return boardLeft + 1 + 2*p.X, boardTop + 1 + p.Y
}

func setCell(screen tcell.Screen, p types.Point, r rune, style tcell.Style) {
	x, y := CellOrigin(p)
	screen.SetContent(x, y, r, nil, style)
	screen.SetContent(x+1, y, r, nil, style)
}

func drawBorder(screen tcell.Screen, grid types.Grid) {
	right := boardLeft + 1 + 2*grid.Width
	bottom := boardTop + 1 + grid.Height
	for x := boardLeft + 1; x < right; x++ {
		screen.SetContent(x, boardTop, tcell.RuneHLine, nil, styleBorder)
		screen.SetContent(x, bottom, tcell.RuneHLine, nil, styleBorder)
	}
	for y := boardTop + 1; y < bottom; y++ {
		screen.SetContent(boardLeft, y, tcell.RuneVLine, nil, styleBorder)
		screen.SetContent(right, y, tcell.RuneVLine, nil, styleBorder)
	}
	screen.SetContent(boardLeft, boardTop, tcell.RuneULCorner, nil, styleBorder)
	screen.SetContent(right, boardTop, tcell.RuneURCorner, nil, styleBorder)
	screen.SetContent(boardLeft, bottom, tcell.RuneLLCorner, nil, styleBorder)
	screen.SetContent(right, bottom, tcell.RuneLRCorner, nil, styleBorder)
}

func drawText(screen tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range []rune(text) {
		screen.SetContent(x+i, y, r, nil, style)
	}
}
