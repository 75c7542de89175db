package manager

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"

	"snakegrid/game/entity"
	"snakegrid/game/types"
)

// Placement decides whether a new item may land on the snake
type Placement int

const (
	// PlacementAllow draws uniformly over the whole grid
	PlacementAllow Placement = iota
	// PlacementReroll draws again until the cell is free
	PlacementReroll
)

// maxRerolls bounds the random attempts before falling back to a free-cell scan
const maxRerolls = 64

func (p Placement) String() string {
	switch p {
	case PlacementReroll:
		return "reroll"
	default:
		return "allow"
	}
}

func ParsePlacement(s string) (Placement, error) {
	switch s {
	case "", "allow":
		return PlacementAllow, nil
	case "reroll":
		return PlacementReroll, nil
	default:
		return PlacementAllow, errors.Errorf("unknown item placement %q", s)
	}
}

type FoodManager struct {
	grid         types.Grid
	placement    Placement
	rng          *rand.Rand
	collisionMgr *CollisionManager
}

func NewFoodManager(grid types.Grid, collisionMgr *CollisionManager, placement Placement, rng *rand.Rand) *FoodManager {
	return &FoodManager{
		grid:         grid,
		placement:    placement,
		rng:          rng,
		collisionMgr: collisionMgr,
	}
}

func (fm *FoodManager) Placement() Placement {
	return fm.placement
}

// GenerateFood picks a uniformly random cell according to the placement policy
func (fm *FoodManager) GenerateFood(snake *entity.Snake) types.Point {
	if fm.placement == PlacementAllow || snake == nil {
		return fm.randomCell()
	}

	for i := 0; i < maxRerolls; i++ {
		food := fm.randomCell()
		if fm.collisionMgr.ValidateSpawnPosition(food, snake) {
			return food
		}
	}

	// Crowded grid: choose among what is left instead of spinning
	free := make([]types.Point, 0, fm.grid.Cells())
	for y := 0; y < fm.grid.Height; y++ {
		for x := 0; x < fm.grid.Width; x++ {
			p := types.Point{X: x, Y: y}
			if fm.collisionMgr.ValidateSpawnPosition(p, snake) {
				free = append(free, p)
			}
		}
	}
	if len(free) == 0 {
		return fm.randomCell()
	}
	return free[fm.rng.Intn(len(free))]
}

func (fm *FoodManager) randomCell() types.Point {
	return types.Point{
		X: fm.rng.Intn(fm.grid.Width),
		Y: fm.rng.Intn(fm.grid.Height),
	}
}
