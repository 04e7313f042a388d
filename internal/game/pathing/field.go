// Package pathing computes breadth-first distance fields over the board grid
// and charts shortest paths along them.
package pathing

import "github.com/mitchelldurbincs/GeneralsBot/internal/game/core"

// Blocked marks a cell that is obstructed or cannot be reached from the
// reference cell.
const Blocked = -1

// Field holds the hop distance of every cell from a reference cell.
type Field struct {
	grid core.Grid
	ref  int
	dist []int
}

// Compute runs a breadth-first search from ref, never entering a cell for
// which blocked returns true. The reference cell itself is always open.
// Neighbors are visited right, up, left, down.
func Compute(g core.Grid, ref int, blocked func(int) bool) *Field {
	const unvisited = -2

	dist := make([]int, g.Size())
	for i := range dist {
		if blocked != nil && blocked(i) {
			dist[i] = Blocked
		} else {
			dist[i] = unvisited
		}
	}
	dist[ref] = 0

	queue := make([]int, 1, g.Size())
	queue[0] = ref
	var nbrs [4]int
	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		for _, n := range g.AppendNeighbors(nbrs[:0], cur) {
			if dist[n] == unvisited {
				dist[n] = dist[cur] + 1
				queue = append(queue, n)
			}
		}
	}

	for i, d := range dist {
		if d == unvisited {
			dist[i] = Blocked
		}
	}
	return &Field{grid: g, ref: ref, dist: dist}
}

// Grid returns the topology the field was computed over.
func (f *Field) Grid() core.Grid { return f.grid }

// Ref returns the reference cell.
func (f *Field) Ref() int { return f.ref }

// At returns the distance of cell i, or Blocked.
func (f *Field) At(i int) int { return f.dist[i] }

// Reachable reports whether cell i has a finite distance.
func (f *Field) Reachable(i int) bool { return f.dist[i] != Blocked }

// Distances returns a copy of the raw distance array.
func (f *Field) Distances() []int {
	out := make([]int, len(f.dist))
	copy(out, f.dist)
	return out
}

// CountReachable returns how many cells, the reference included, are reachable.
func (f *Field) CountReachable() int {
	n := 0
	for _, d := range f.dist {
		if d != Blocked {
			n++
		}
	}
	return n
}

// Farthest returns the reachable cell with the largest distance among those
// not excluded, the lowest index winning ties. ok is false when every
// reachable cell is excluded.
func (f *Field) Farthest(exclude func(int) bool) (cell int, ok bool) {
	best := Blocked
	for i, d := range f.dist {
		if d == Blocked || (exclude != nil && exclude(i)) {
			continue
		}
		if d > best {
			best, cell, ok = d, i, true
		}
	}
	return cell, ok
}
