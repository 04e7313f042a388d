package pathing

import (
	"github.com/mitchelldurbincs/GeneralsBot/internal/game/core"
)

// Chart returns a shortest path from start to dest avoiding blocked cells. The
// path includes both endpoints. It fails with core.ErrUnreachable when no
// route exists.
func Chart(g core.Grid, start, dest int, blocked func(int) bool) ([]int, error) {
	return ChartField(Compute(g, dest, blocked), start)
}

// ChartField walks downhill on a field computed from the destination. At each
// step it moves to the neighbor with the smallest distance, preferring right,
// up, left, down on ties.
func ChartField(f *Field, start int) ([]int, error) {
	if !f.grid.Contains(start) {
		return nil, core.WrapTraversalError(start, f.ref, core.ErrInvalidCoordinates)
	}
	if !f.Reachable(start) {
		return nil, core.WrapTraversalError(start, f.ref, core.ErrUnreachable)
	}

	path := make([]int, 1, f.dist[start]+1)
	path[0] = start
	var nbrs [4]int
	for cur := start; cur != f.ref; {
		next := Blocked
		for _, n := range f.grid.AppendNeighbors(nbrs[:0], cur) {
			if f.dist[n] == Blocked {
				continue
			}
			if next == Blocked || f.dist[n] < f.dist[next] {
				next = n
			}
		}
		path = append(path, next)
		cur = next
	}
	return path, nil
}
