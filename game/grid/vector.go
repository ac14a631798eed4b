// Package grid provides the integer coordinate primitives shared by the map
// model and the radius engine.
//
// Vectors are 1-based. Adjacency is always enumerated in the fixed order
// up, right, down, left. Search tie-breaking depends on that order, so it
// must never change.
package grid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidVector = errors.New("invalid vector")

// Vector is a map coordinate. The zero value is not a valid map position and
// is used as the "no parent" marker in search results.
type Vector struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Vec returns the vector (x, y) without validation.
func Vec(x, y int) Vector {
	return Vector{X: x, Y: y}
}

// NewVector returns the vector (x, y), rejecting coordinates below 1.
func NewVector(x, y int) (Vector, error) {
	if x < 1 || y < 1 {
		return Vector{}, fmt.Errorf("%w: (%d,%d)", ErrInvalidVector, x, y)
	}
	return Vector{X: x, Y: y}, nil
}

// ParseVector parses "x,y".
func ParseVector(s string) (Vector, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return Vector{}, fmt.Errorf("%w: %q", ErrInvalidVector, s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Vector{}, fmt.Errorf("%w: %q", ErrInvalidVector, s)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Vector{}, fmt.Errorf("%w: %q", ErrInvalidVector, s)
	}
	return NewVector(x, y)
}

// IsZero reports whether v is the zero vector.
func (v Vector) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

func (v Vector) Up() Vector    { return Vector{v.X, v.Y - 1} }
func (v Vector) Right() Vector { return Vector{v.X + 1, v.Y} }
func (v Vector) Down() Vector  { return Vector{v.X, v.Y + 1} }
func (v Vector) Left() Vector  { return Vector{v.X - 1, v.Y} }

// Adjacent returns the four orthogonal neighbors in the order up, right, down, left.
func (v Vector) Adjacent() [4]Vector {
	return [4]Vector{
		{v.X, v.Y - 1},
		{v.X + 1, v.Y},
		{v.X, v.Y + 1},
		{v.X - 1, v.Y},
	}
}

// Distance returns the Manhattan distance between v and other.
func (v Vector) Distance(other Vector) int {
	return Distance(v, other)
}

func (v Vector) String() string {
	return fmt.Sprintf("%d,%d", v.X, v.Y)
}

// Distance calculates the Manhattan distance between two vectors
func Distance(a, b Vector) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}
