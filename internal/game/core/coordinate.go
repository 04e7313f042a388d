package core

import "fmt"

// Coordinate is the (x, y) position of a cell, x growing to the right and y
// growing downward.
type Coordinate struct {
	X, Y int
}

// FromIndex converts a row-major cell index on a board of the given width.
func FromIndex(idx, width int) Coordinate {
	return Coordinate{X: idx % width, Y: idx / width}
}

// DistanceTo returns the Manhattan distance to other. On a board without
// obstacles it equals the number of moves between the two cells.
func (c Coordinate) DistanceTo(other Coordinate) int {
	return abs(c.X-other.X) + abs(c.Y-other.Y)
}

// IsAdjacentTo reports whether other shares an edge with c.
func (c Coordinate) IsAdjacentTo(other Coordinate) bool {
	return c.DistanceTo(other) == 1
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Direction is one of the four moves a cell has.
type Direction int

// Declaration order is the neighbor enumeration order used everywhere.
const (
	Right Direction = iota
	Up
	Left
	Down
)

// Directions lists every direction in enumeration order.
var Directions = [...]Direction{Right, Up, Left, Down}
