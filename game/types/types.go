package types

// Grid represents the game grid dimensions in cells
type Grid struct {
	Width  int
	Height int
}

// Contains reports whether p lies inside the grid
func (g Grid) Contains(p Point) bool {
	return p.X >= 0 && p.X < g.Width && p.Y >= 0 && p.Y < g.Height
}

// Cells returns the number of cells in the grid
func (g Grid) Cells() int {
	return g.Width * g.Height
}

// Point is a grid cell. It doubles as a unit velocity vector.
type Point struct {
	X, Y int
}

func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

func (p Point) Neg() Point {
	return Point{X: -p.X, Y: -p.Y}
}

// IsZero reports whether p is the idle velocity
func (p Point) IsZero() bool {
	return p.X == 0 && p.Y == 0
}

// Direction represents a cardinal direction
type Direction int

const (
	None Direction = iota
	Up
	Right
	Down
	Left
)

// Directions lists the four movable directions in clockwise order
var Directions = [4]Direction{Up, Right, Down, Left}

// ToPoint converts a Direction into its unit displacement
func (d Direction) ToPoint() Point {
	switch d {
	case Up:
		return Point{X: 0, Y: -1}
	case Right:
		return Point{X: 1, Y: 0}
	case Down:
		return Point{X: 0, Y: 1}
	case Left:
		return Point{X: -1, Y: 0}
	default:
		return Point{X: 0, Y: 0}
	}
}

// FromPoint maps a unit vector back to its Direction. Anything else is None.
func FromPoint(p Point) Direction {
	switch p {
	case Point{X: 0, Y: -1}:
		return Up
	case Point{X: 1, Y: 0}:
		return Right
	case Point{X: 0, Y: 1}:
		return Down
	case Point{X: -1, Y: 0}:
		return Left
	default:
		return None
	}
}

func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Right:
		return Left
	case Down:
		return Up
	case Left:
		return Right
	default:
		return None
	}
}

// TurnLeft returns the direction after a counter-clockwise quarter turn
func (d Direction) TurnLeft() Direction {
	switch d {
	case Up:
		return Left
	case Right:
		return Up
	case Down:
		return Right
	case Left:
		return Down
	default:
		return d
	}
}

// TurnRight returns the direction after a clockwise quarter turn
func (d Direction) TurnRight() Direction {
	switch d {
	case Up:
		return Right
	case Right:
		return Down
	case Down:
		return Left
	case Left:
		return Up
	default:
		return d
	}
}

func (d Direction) Valid() bool {
	return d >= Up && d <= Left
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	default:
		return "none"
	}
}

// ParseDirection accepts the lowercase names produced by String
func ParseDirection(s string) (Direction, bool) {
	for _, d := range Directions {
		if d.String() == s {
			return d, true
		}
	}
	return None, false
}
