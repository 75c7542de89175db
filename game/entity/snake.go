package entity

import (
	"snakegrid/game/types"
)

// Snake is the player's actor. Body is ordered head-to-tail and does not
// include the head itself.
type Snake struct {
	Head      types.Point
	Body      []types.Point
	Direction types.Point // pending velocity, applied on the next Move
	heading   types.Point // velocity in effect since the last Move
}

func NewSnake(startPos types.Point) *Snake {
	return &Snake{
		Head: startPos,
		Body: make([]types.Point, 0),
	}
}

// Heading returns the velocity used by the most recent Move
func (s *Snake) Heading() types.Point {
	return s.heading
}

// SetDirection overwrites the pending velocity. A reversal of the heading
// in effect at the start of the tick is rejected.
func (s *Snake) SetDirection(dir types.Direction) bool {
	if !dir.Valid() {
		return false
	}
	v := dir.ToPoint()
	if !s.heading.IsZero() && v == s.heading.Neg() {
		return false
	}
	s.Direction = v
	return true
}

// Grow appends a tail segment at pos
func (s *Snake) Grow(pos types.Point) {
	s.Body = append(s.Body, pos)
}

// Shift drags every segment into its predecessor's cell; the first segment
// takes the head's current cell. Must run before Move.
func (s *Snake) Shift() {
	for i := len(s.Body) - 1; i > 0; i-- {
		s.Body[i] = s.Body[i-1]
	}
	if len(s.Body) > 0 {
		s.Body[0] = s.Head
	}
}

func (s *Snake) Move() {
	s.Head = s.Head.Add(s.Direction)
	s.heading = s.Direction
}

func (s *Snake) Length() int {
	return len(s.Body)
}

// Occupies reports whether pos is covered by the head or any segment
func (s *Snake) Occupies(pos types.Point) bool {
	if pos == s.Head {
		return true
	}
	for _, part := range s.Body {
		if part == pos {
			return true
		}
	}
	return false
}

// BodyCopy returns a copy of the segments safe to hand to renderers
func (s *Snake) BodyCopy() []types.Point {
	body := make([]types.Point, len(s.Body))
	copy(body, s.Body)
	return body
}
