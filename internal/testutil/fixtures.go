package testutil

import (
	"fmt"
	"strings"

	"github.com/mitchelldurbincs/GeneralsBot/internal/game/core"
	"github.com/mitchelldurbincs/GeneralsBot/internal/protocol"
)

// Layout parses a board drawing, one string per row:
//
//	.  empty
//	#  mountain
//	~  fog
//	?  unknown obstacle
//	0-9 owned by that player
//
// Spaces are ignored so rows can be written with padding.
func Layout(rows ...string) (core.Grid, []int) {
	var terrain []int
	width := -1
	for y, row := range rows {
		row = strings.ReplaceAll(row, " ", "")
		if width >= 0 && len(row) != width {
			panic(fmt.Sprintf("testutil.Layout: row %d has width %d, want %d", y, len(row), width))
		}
		width = len(row)
		for _, r := range row {
			switch {
			case r == '.':
				terrain = append(terrain, core.TileEmpty)
			case r == '#':
				terrain = append(terrain, core.TileMountain)
			case r == '~':
				terrain = append(terrain, core.TileUnknown)
			case r == '?':
				terrain = append(terrain, core.TileUnknownObstacle)
			case r >= '0' && r <= '9':
				terrain = append(terrain, int(r-'0'))
			default:
				panic(fmt.Sprintf("testutil.Layout: unknown cell %q", r))
			}
		}
	}
	return core.NewGrid(width, len(rows)), terrain
}

// EmptyTerrain returns a w×h terrain array of empty cells.
func EmptyTerrain(w, h int) []int {
	out := make([]int, w*h)
	for i := range out {
		out[i] = core.TileEmpty
	}
	return out
}

// RawMap assembles the server's map array: width, height, armies, terrain.
func RawMap(g core.Grid, armies, terrain []int) []int {
	out := make([]int, 0, 2+len(armies)+len(terrain))
	out = append(out, g.W, g.H)
	out = append(out, armies...)
	return append(out, terrain...)
}

// FullDiff encodes next as a diff that replaces everything.
func FullDiff(next []int) []int {
	out := make([]int, 0, len(next)+2)
	out = append(out, 0, len(next))
	return append(out, next...)
}

// FirstUpdate builds the first game_update of a game from full board arrays.
func FirstUpdate(g core.Grid, armies, terrain, cities, generals []int, turn int) protocol.GameUpdate {
	scores := make([]protocol.Score, len(generals))
	for i := range scores {
		scores[i] = protocol.Score{Index: i, Color: i}
	}
	for i, t := range terrain {
		if t >= 0 && t < len(scores) {
			scores[t].Tiles++
			scores[t].Total += armies[i]
		}
	}
	return protocol.GameUpdate{
		Turn:       turn,
		Generals:   generals,
		Scores:     scores,
		MapDiff:    FullDiff(RawMap(g, armies, terrain)),
		CitiesDiff: FullDiff(cities),
	}
}
