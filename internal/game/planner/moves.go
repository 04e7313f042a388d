package planner

import (
	"github.com/mitchelldurbincs/GeneralsBot/internal/game/core"
)

// Model holds the move rules of a search for a fixed grid and capital.
type Model struct {
	grid    core.Grid
	capital int
}

// NewModel creates the move rules for a problem.
func NewModel(grid core.Grid, capital int) Model {
	return Model{grid: grid, capital: capital}
}

// InitialState returns the root of a search for owning target+1 cells at
// deadline. It carries a single placeholder clear that launches at the
// deadline and pretends to have taken deadline-target cells, so the first
// real clear launches at turn target with room for 2*(deadline-target) moves.
func (m Model) InitialState(p Problem, target, deadline int) *State {
	return &State{
		Board: p.initialBoard(),
		Clears: []Clear{{
			Turn:    deadline,
			MoveCap: 0,
			Gain:    deadline - target,
		}},
	}
}

// PossibleMoves lists the moves that can extend s. The current clear keeps
// walking from the tip of its path until it reaches its move cap; after that
// the next clear starts from the capital. A clear never re-enters its own path
// or the capital.
func (m Model) PossibleMoves(s *State) []Move {
	last := s.Last()
	origin := m.capital
	if n := len(last.Path); n > 0 && n < last.MoveCap {
		origin = last.Path[n-1]
	}

	var nbrs [4]int
	moves := make([]Move, 0, 4)
	for _, dest := range m.grid.AppendNeighbors(nbrs[:0], origin) {
		if s.Board[dest] == core.TileUnknownObstacle {
			continue
		}
		if origin != m.capital && (dest == m.capital || containsCell(last.Path, dest)) {
			continue
		}
		moves = append(moves, Move{From: origin, To: dest})
	}
	return moves
}

// NextState applies mv to s and returns the successor, or nil when the
// successor is dead: a clear other than the newest one took no new land, or
// the newest one used its whole move cap without taking any.
func (m Model) NextState(s *State, mv Move) *State {
	clears := make([]Clear, len(s.Clears), len(s.Clears)+1)
	copy(clears, s.Clears)

	if mv.From == m.capital {
		prev := clears[len(clears)-1]
		clears = append(clears, Clear{
			Turn:    prev.Turn - prev.Gain,
			MoveCap: prev.Gain * 2,
		})
	}

	last := &clears[len(clears)-1]
	path := make([]int, len(last.Path), len(last.Path)+1)
	copy(path, last.Path)
	last.Path = append(path, mv.To)
	last.Gain++

	board := make([]int, len(s.Board))
	copy(board, s.Board)
	claimed := board[mv.To]
	board[mv.To] = len(clears) - 1

	next := &State{Board: board, Clears: clears}
	if claimed != core.TileEmpty && !recompute(clears) {
		return nil
	}
	return next
}

// recompute re-derives every clear from the deadline backwards after a step
// onto land some clear already took. A clear only gains the cells that no
// earlier launched clear walked over, its launch turn and move cap follow
// from the gain of the clear after it, and its path is cut to the new cap.
// It reports false when the chain is dead.
func recompute(clears []Clear) bool {
	// Paths before truncation decide what counts as already taken.
	walked := make([][]int, len(clears))
	for i := range clears {
		walked[i] = clears[i].Path
	}

	prevGain := 0
	for i := range clears {
		c := &clears[i]
		if i > 0 {
			c.Turn = clears[i-1].Turn - prevGain
			c.MoveCap = prevGain * 2
			if len(c.Path) > c.MoveCap {
				c.Path = c.Path[:c.MoveCap]
			}
		}

		gain := 0
		for _, step := range c.Path {
			if !walkedByEarlier(walked[i+1:], step) {
				gain++
			}
		}
		c.Gain = gain
		prevGain = gain

		if gain == 0 && (i < len(clears)-1 || len(c.Path) == c.MoveCap) {
			return false
		}
	}
	return true
}

func walkedByEarlier(paths [][]int, cell int) bool {
	for _, p := range paths {
		if containsCell(p, cell) {
			return true
		}
	}
	return false
}

func containsCell(path []int, cell int) bool {
	for _, c := range path {
		if c == cell {
			return true
		}
	}
	return false
}
