// Package sim plays out moves on a fully visible board with the server's
// production rules, so expansion plans can be checked offline.
package sim

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/GeneralsBot/internal/game/core"
	"github.com/mitchelldurbincs/GeneralsBot/internal/game/delta"
	"github.com/mitchelldurbincs/GeneralsBot/internal/game/mapgen"
	"github.com/mitchelldurbincs/GeneralsBot/internal/protocol"
)

// Rules are the production rates of the server.
type Rules struct {
	GeneralProduction    int
	CityProduction       int
	NormalProduction     int
	NormalGrowthInterval int // in full turns
}

// DefaultRules returns the server's production rates.
func DefaultRules() Rules {
	return Rules{
		GeneralProduction:    1,
		CityProduction:       1,
		NormalProduction:     1,
		NormalGrowthInterval: 25,
	}
}

type queuedMove struct {
	from, to int
	half     bool
}

// Board is a single player's game in progress.
type Board struct {
	grid     core.Grid
	rules    Rules
	player   int
	capital  int
	terrain  []int
	armies   []int
	cities   map[int]struct{}
	halfTurn int
	queue    []queuedMove
	logger   zerolog.Logger

	lastMap    []int
	lastCities []int
}

// NewBoard creates a board from full terrain and army arrays. The capital is
// handed to player 0 with one army.
func NewBoard(grid core.Grid, terrain, armies []int, cities []int, capital int, logger zerolog.Logger) (*Board, error) {
	if len(terrain) != grid.Size() || len(armies) != grid.Size() {
		return nil, fmt.Errorf("%w: %d terrain and %d armies for %dx%d board",
			core.ErrMalformedBoard, len(terrain), len(armies), grid.W, grid.H)
	}
	if !grid.Contains(capital) {
		return nil, core.ErrInvalidCoordinates
	}
	b := &Board{
		grid:    grid,
		rules:   DefaultRules(),
		capital: capital,
		terrain: append([]int(nil), terrain...),
		armies:  append([]int(nil), armies...),
		cities:  make(map[int]struct{}, len(cities)),
		logger:  logger.With().Str("component", "sim").Logger(),
	}
	for _, c := range cities {
		b.cities[c] = struct{}{}
	}
	b.terrain[capital] = b.player
	b.armies[capital] = 1
	return b, nil
}

// FromMap creates a board for player pid of a generated map. Other generals
// stay on the board as neutral obstacles holding their army.
func FromMap(m *mapgen.Map, pid int, logger zerolog.Logger) (*Board, error) {
	terrain := append([]int(nil), m.Terrain...)
	for i, t := range terrain {
		if core.IsPlayerTile(t) {
			terrain[i] = core.TileEmpty
		}
	}
	return NewBoard(m.Grid, terrain, m.Armies, m.Cities, m.Capital(pid), logger)
}

// SetRules replaces the production rates.
func (b *Board) SetRules(r Rules) { b.rules = r }

func (b *Board) Grid() core.Grid   { return b.grid }
func (b *Board) Capital() int      { return b.capital }
func (b *Board) HalfTurn() int     { return b.halfTurn }
func (b *Board) Terrain() []int    { return b.terrain }
func (b *Board) Armies() []int     { return b.armies }
func (b *Board) PendingMoves() int { return len(b.queue) }

// Land counts the cells player 0 owns.
func (b *Board) Land() int {
	n := 0
	for _, t := range b.terrain {
		if t == b.player {
			n++
		}
	}
	return n
}

// Army sums player 0's units.
func (b *Board) Army() int {
	n := 0
	for i, t := range b.terrain {
		if t == b.player {
			n += b.armies[i]
		}
	}
	return n
}

// Cities returns the city cells, ascending.
func (b *Board) Cities() []int {
	out := make([]int, 0, len(b.cities))
	for c := range b.cities {
		out = append(out, c)
	}
	sort.Ints(out)
	return out
}

// Attack queues a move. Queued moves run one per half-turn in order.
func (b *Board) Attack(from, to int, half bool) error {
	if !b.grid.Adjacent(from, to) {
		return core.WrapMoveError(b.grid, from, to, core.ErrNotAdjacent)
	}
	b.queue = append(b.queue, queuedMove{from: from, to: to, half: half})
	return nil
}

// ClearMoves drops every queued move.
func (b *Board) ClearMoves() { b.queue = b.queue[:0] }

// Step plays one half-turn: production first, then the next valid queued
// move. Invalid moves are dropped the way the server drops them.
func (b *Board) Step() {
	b.halfTurn++
	b.produce()

	for len(b.queue) > 0 {
		mv := b.queue[0]
		b.queue = b.queue[1:]
		if err := b.execute(mv); err != nil {
			b.logger.Debug().Err(err).Int("half_turn", b.halfTurn).Msg("Dropped queued move")
			continue
		}
		break
	}
}

func (b *Board) produce() {
	if b.halfTurn%2 != 0 {
		return
	}
	turn := b.halfTurn / 2
	growNormal := b.rules.NormalGrowthInterval > 0 && turn%b.rules.NormalGrowthInterval == 0

	for i, t := range b.terrain {
		if t != b.player {
			continue
		}
		_, isCity := b.cities[i]
		switch {
		case i == b.capital:
			b.armies[i] += b.rules.GeneralProduction
		case isCity:
			b.armies[i] += b.rules.CityProduction
		}
		if growNormal {
			b.armies[i] += b.rules.NormalProduction
		}
	}
}

func (b *Board) execute(mv queuedMove) error {
	switch {
	case b.terrain[mv.from] != b.player:
		return core.WrapMoveError(b.grid, mv.from, mv.to, core.ErrNotOwned)
	case b.armies[mv.from] < 2:
		return core.WrapMoveError(b.grid, mv.from, mv.to, core.ErrInsufficientArmy)
	case b.terrain[mv.to] == core.TileMountain:
		return core.WrapMoveError(b.grid, mv.from, mv.to, core.ErrTargetIsMountain)
	}

	moving := b.armies[mv.from] - 1
	if mv.half {
		moving = b.armies[mv.from] / 2
	}
	b.armies[mv.from] -= moving

	switch {
	case b.terrain[mv.to] == b.player:
		b.armies[mv.to] += moving
	case moving > b.armies[mv.to]:
		b.armies[mv.to] = moving - b.armies[mv.to]
		b.terrain[mv.to] = b.player
	default:
		b.armies[mv.to] -= moving
	}
	return nil
}

// Snapshot returns the server's map array: width, height, armies, terrain.
func (b *Board) Snapshot() []int {
	out := make([]int, 0, 2+2*b.grid.Size())
	out = append(out, b.grid.W, b.grid.H)
	out = append(out, b.armies...)
	return append(out, b.terrain...)
}

// NextUpdate encodes the board as a game_update diffed against the previous
// call, exactly as the server would send it.
func (b *Board) NextUpdate() protocol.GameUpdate {
	snapshot := b.Snapshot()
	cities := b.Cities()
	u := protocol.GameUpdate{
		Turn:       b.halfTurn,
		Generals:   []int{b.capital},
		Scores:     []protocol.Score{{Total: b.Army(), Tiles: b.Land(), Index: b.player}},
		MapDiff:    delta.Diff(b.lastMap, snapshot),
		CitiesDiff: delta.Diff(b.lastCities, cities),
	}
	b.lastMap, b.lastCities = snapshot, cities
	return u
}
