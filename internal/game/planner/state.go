// Package planner searches for an opening that takes as much land as possible
// before the end of the expansion phase.
//
// A plan is a chain of clears. Each clear is one army leaving the capital at a
// given turn and walking a path of at most MoveCap steps. Clears are built
// deadline first: the clear that finishes at the deadline is planned before
// the one that launched before it, and the land a clear takes decides how long
// the capital had to regrow before it, which fixes the launch turn and move
// cap of the clear preceding it.
package planner

import (
	"github.com/mitchelldurbincs/GeneralsBot/internal/game/core"
)

// Clear is one segment of a plan.
type Clear struct {
	// Turn is the full turn at which the army leaves the capital.
	Turn int
	// MoveCap bounds len(Path); it is the number of half-turns until the next
	// clear launches.
	MoveCap int
	// Gain is how many cells of Path are not taken by an earlier clear.
	Gain int
	// Path lists the visited cells, capital excluded.
	Path []int
}

// State is a node of the search. Board holds core.TileEmpty for unclaimed
// cells, core.TileUnknownObstacle for cells that can never be entered, and
// otherwise the index of the clear that claimed the cell. Clears are ordered
// deadline first.
type State struct {
	Board  []int
	Clears []Clear
}

// Last returns the clear currently being extended.
func (s *State) Last() *Clear { return &s.Clears[len(s.Clears)-1] }

// Solved reports whether the earliest clear has taken at least as many cells
// as the turns it had to grow its army, so no further clear is needed.
func (s *State) Solved() bool {
	last := s.Last()
	return last.Gain >= last.Turn
}

// Move is a single step of one army.
type Move struct {
	From, To int
}

// Problem is the board snapshot a plan is searched on.
type Problem struct {
	Grid    core.Grid
	Capital int
	// Blocked marks cells that can not be entered during the expansion.
	Blocked []bool
}

// Validate checks that the problem is well formed.
func (p Problem) Validate() error {
	if p.Grid.W <= 0 || p.Grid.H <= 0 || len(p.Blocked) != p.Grid.Size() {
		return core.ErrMalformedBoard
	}
	if !p.Grid.Contains(p.Capital) {
		return core.ErrNoGeneral
	}
	return nil
}

// initialBoard converts the blocked mask to a search board.
func (p Problem) initialBoard() []int {
	board := make([]int, len(p.Blocked))
	for i, b := range p.Blocked {
		if b && i != p.Capital {
			board[i] = core.TileUnknownObstacle
		} else {
			board[i] = core.TileEmpty
		}
	}
	return board
}
