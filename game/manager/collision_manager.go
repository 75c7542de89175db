package manager

import (
	"snakegrid/game/entity"
	"snakegrid/game/types"
)

// CollisionType represents the type of collision
type CollisionType int

const (
	NoCollision CollisionType = iota
	WallCollision
	SelfCollision
)

func (c CollisionType) String() string {
	switch c {
	case WallCollision:
		return "wall"
	case SelfCollision:
		return "self"
	default:
		return "none"
	}
}

type CollisionManager struct {
	grid types.Grid
}

func NewCollisionManager(grid types.Grid) *CollisionManager {
	return &CollisionManager{
		grid: grid,
	}
}

// Check runs the wall check first and the body check second; the first hit wins
func (cm *CollisionManager) Check(snake *entity.Snake) CollisionType {
	if cm.IsWallCollision(snake.Head) {
		return WallCollision
	}
	if cm.IsSelfCollision(snake.Head, snake.Body) {
		return SelfCollision
	}
	return NoCollision
}

// IsWallCollision checks if a position lies outside the grid
func (cm *CollisionManager) IsWallCollision(pos types.Point) bool {
	return !cm.grid.Contains(pos)
}

// IsSelfCollision checks the head against every body segment
func (cm *CollisionManager) IsSelfCollision(head types.Point, body []types.Point) bool {
	for _, part := range body {
		if head == part {
			return true
		}
	}
	return false
}

// IsFoodCollision checks if a position collides with food
func (cm *CollisionManager) IsFoodCollision(pos types.Point, food types.Point) bool {
	return pos == food
}

// ValidateSpawnPosition checks if a position is free for a new item
func (cm *CollisionManager) ValidateSpawnPosition(pos types.Point, snake *entity.Snake) bool {
	if cm.IsWallCollision(pos) {
		return false
	}
	return snake == nil || !snake.Occupies(pos)
}
