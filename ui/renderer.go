package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"snakegrid/app"
	"snakegrid/game"
	"snakegrid/game/types"
)

var (
	bodyColor = rl.Color{R: 46, G: 204, B: 64, A: 255}
	headColor = rl.Color{R: 120, G: 240, B: 130, A: 255}
)

type Renderer struct {
	cellSize     int32
	screenWidth  int32
	screenHeight int32
}

// NewRenderer sizes the surface as grid cells times cellSize
func NewRenderer(grid types.Grid, cellSize int) *Renderer {
	return &Renderer{
		cellSize:     int32(cellSize),
		screenWidth:  int32(grid.Width * cellSize),
		screenHeight: int32(grid.Height * cellSize),
	}
}

func (r *Renderer) Size() (int32, int32) {
	return r.screenWidth, r.screenHeight
}

func (r *Renderer) Draw(snap game.Snapshot, hud app.HUD, message string) {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	r.drawCell(snap, snap.Item, rl.Red)
	for _, p := range snap.Body {
		r.drawCell(snap, p, bodyColor)
	}
	r.drawCell(snap, snap.Head, headColor)
	r.drawHeading(snap)

	r.drawHUD(hud)

	if message != "" {
		r.drawMessage(message, hud.Autopilot)
	}

	rl.EndDrawing()
}

func (r *Renderer) drawCell(snap game.Snapshot, p types.Point, color rl.Color) {
	x, y := snap.PixelPosition(p, float64(r.cellSize))
	rl.DrawRectangle(int32(x), int32(y), r.cellSize, r.cellSize, color)
}

// drawHeading puts a triangle on the head pointing where it moves
func (r *Renderer) drawHeading(snap game.Snapshot) {
	fx, fy := snap.PixelPosition(snap.Head, float64(r.cellSize))
	headX, headY := float32(fx), float32(fy)
	cell := float32(r.cellSize)
	half := cell / 2

	switch types.FromPoint(snap.Velocity) {
	case types.Right:
		rl.DrawTriangle(
			rl.Vector2{X: headX + cell, Y: headY + half},
			rl.Vector2{X: headX + half, Y: headY},
			rl.Vector2{X: headX + half, Y: headY + cell},
			rl.Yellow)
	case types.Left:
		rl.DrawTriangle(
			rl.Vector2{X: headX, Y: headY + half},
			rl.Vector2{X: headX + half, Y: headY + cell},
			rl.Vector2{X: headX + half, Y: headY},
			rl.Yellow)
	case types.Down:
		rl.DrawTriangle(
			rl.Vector2{X: headX + half, Y: headY + cell},
			rl.Vector2{X: headX + cell, Y: headY + half},
			rl.Vector2{X: headX, Y: headY + half},
			rl.Yellow)
	case types.Up:
		rl.DrawTriangle(
			rl.Vector2{X: headX + half, Y: headY},
			rl.Vector2{X: headX, Y: headY + half},
			rl.Vector2{X: headX + cell, Y: headY + half},
			rl.Yellow)
	}
}

func (r *Renderer) drawHUD(hud app.HUD) {
	fontSize := max(12, r.cellSize*2/5)
	lineHeight := fontSize + 4

	rl.DrawText(fmt.Sprintf("Score: %d", hud.Score), 5, 5, fontSize, rl.White)
	rl.DrawText(fmt.Sprintf("High: %d", hud.HighScore), 5, 5+lineHeight, fontSize, rl.White)

	if hud.GamesPlayed > 0 {
		line := fmt.Sprintf("Games: %d  Avg: %.1f", hud.GamesPlayed, hud.AverageScore)
		rl.DrawText(line, 5, 5+2*lineHeight, fontSize, rl.Gray)
	}
	if hud.Autopilot {
		label := "AUTOPILOT"
		width := rl.MeasureText(label, fontSize)
		rl.DrawText(label, r.screenWidth-width-5, 5, fontSize, rl.Yellow)
	}
}

func (r *Renderer) drawMessage(message string, autopilot bool) {
	fontSize := max(14, r.cellSize*3/5)
	hint := "Press Enter or tap to play again"
	if autopilot {
		hint = "Restarting..."
	}

	rl.DrawRectangle(0, r.screenHeight/2-fontSize*2, r.screenWidth, fontSize*4, rl.Color{R: 0, G: 0, B: 0, A: 200})

	width := rl.MeasureText(message, fontSize)
	rl.DrawText(message, (r.screenWidth-width)/2, r.screenHeight/2-fontSize, fontSize, rl.White)

	hintSize := fontSize * 2 / 3
	width = rl.MeasureText(hint, hintSize)
	rl.DrawText(hint, (r.screenWidth-width)/2, r.screenHeight/2+fontSize/2, hintSize, rl.Gray)
}
