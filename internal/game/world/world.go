// Package world reconstructs a player's view of the board from the delta
// compressed snapshots the server sends every half-turn.
package world

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/GeneralsBot/internal/game/core"
	"github.com/mitchelldurbincs/GeneralsBot/internal/game/delta"
	"github.com/mitchelldurbincs/GeneralsBot/internal/protocol"
)

// World owns the board state of one game session. A new World is created for
// every game; nothing is carried over between games.
type World struct {
	logger zerolog.Logger
	player int

	rawMap    []int
	rawCities []int

	grid     core.Grid
	terrain  []int
	armies   []int
	cities   map[int]struct{}
	generals []int
	turn     int
	scores   []protocol.Score
	updates  int
}

// New creates an empty World seen from playerIndex.
func New(playerIndex int, logger zerolog.Logger) *World {
	return &World{
		logger: logger.With().Str("component", "world").Int("player", playerIndex).Logger(),
		player: playerIndex,
		cities: make(map[int]struct{}),
	}
}

// ApplyUpdate patches the raw map and city arrays and re-derives every view.
// A snapshot with inconsistent dimensions or terrain is rejected with an error
// wrapping core.ErrMalformedBoard or core.ErrInvalidTerrain. The patched raw
// arrays are kept even then, since the server's next diff is relative to what
// it sent; only the derived views keep their previous values.
func (w *World) ApplyUpdate(u protocol.GameUpdate) error {
	rawMap, err := patch(w.rawMap, u.MapDiff)
	if err != nil {
		return core.WrapUpdateError(u.Turn, fmt.Errorf("map diff: %w", err))
	}
	rawCities, err := patch(w.rawCities, u.CitiesDiff)
	if err != nil {
		return core.WrapUpdateError(u.Turn, fmt.Errorf("cities diff: %w", err))
	}
	w.rawMap = rawMap
	w.rawCities = rawCities

	grid, err := dimensions(rawMap)
	if err != nil {
		return core.WrapUpdateError(u.Turn, err)
	}
	n := grid.Size()
	armies := rawMap[2 : 2+n]
	terrain := rawMap[2+n : 2+2*n]

	numPlayers := len(u.Generals)
	if numPlayers == 0 {
		numPlayers = len(u.Scores)
	}
	if numPlayers > 0 {
		for i, t := range terrain {
			if !core.IsValidTerrain(t, numPlayers) {
				return core.WrapUpdateError(u.Turn,
					fmt.Errorf("%w: %d at cell %d with %d players", core.ErrInvalidTerrain, t, i, numPlayers))
			}
		}
	}
	for _, c := range rawCities {
		if !grid.Contains(c) {
			return core.WrapUpdateError(u.Turn,
				fmt.Errorf("%w: city %d outside %dx%d board", core.ErrMalformedBoard, c, grid.W, grid.H))
		}
	}

	if w.updates > 0 && grid != w.grid {
		w.logger.Warn().
			Str("old", fmt.Sprintf("%dx%d", w.grid.W, w.grid.H)).
			Str("new", fmt.Sprintf("%dx%d", grid.W, grid.H)).
			Msg("Board dimensions changed, dropping remembered cities and generals")
		w.cities = make(map[int]struct{})
		w.generals = nil
	}

	w.grid = grid
	w.armies = armies
	w.terrain = terrain
	for _, c := range rawCities {
		w.cities[c] = struct{}{}
	}
	w.mergeGenerals(u.Generals)
	w.turn = u.Turn
	w.scores = u.Scores
	w.updates++

	if w.updates == 1 {
		w.logger.Info().Int("width", grid.W).Int("height", grid.H).Msg("Board dimensions received")
	}
	return nil
}

// patch applies diff to old, reporting a diff that reaches past either array
// as a malformed board instead of panicking.
func patch(old, diff []int) (out []int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", core.ErrMalformedBoard, r)
		}
	}()
	return delta.Apply(old, diff), nil
}

func dimensions(rawMap []int) (core.Grid, error) {
	if len(rawMap) < 2 {
		return core.Grid{}, fmt.Errorf("%w: map of length %d has no dimensions", core.ErrMalformedBoard, len(rawMap))
	}
	g := core.NewGrid(rawMap[0], rawMap[1])
	if g.W <= 0 || g.H <= 0 {
		return core.Grid{}, fmt.Errorf("%w: %dx%d", core.ErrMalformedBoard, g.W, g.H)
	}
	if want := 2 + 2*g.Size(); len(rawMap) != want {
		return core.Grid{}, fmt.Errorf("%w: map of length %d for %dx%d board, want %d",
			core.ErrMalformedBoard, len(rawMap), g.W, g.H, want)
	}
	return g, nil
}

// mergeGenerals keeps the larger of the known and reported index per player.
// Unknown generals are reported as -1, so a seen general is never forgotten.
func (w *World) mergeGenerals(reported []int) {
	if len(w.generals) < len(reported) {
		grown := make([]int, len(reported))
		for i := range grown {
			grown[i] = core.NoGeneral
		}
		copy(grown, w.generals)
		w.generals = grown
	}
	for i, g := range reported {
		if g > w.generals[i] {
			w.generals[i] = g
		}
	}
}

// Ready reports whether at least one snapshot has been accepted.
func (w *World) Ready() bool { return w.updates > 0 }

// Player returns the index of the player this world is seen from.
func (w *World) Player() int { return w.player }

// Grid returns the board topology.
func (w *World) Grid() core.Grid { return w.grid }

// Turn returns the half-turn of the last accepted snapshot.
func (w *World) Turn() int { return w.turn }

// Scores returns the scores of the last accepted snapshot.
func (w *World) Scores() []protocol.Score { return w.scores }

// Terrain returns the terrain view. The slice must not be modified.
func (w *World) Terrain() []int { return w.terrain }

// Armies returns the army view. The slice must not be modified.
func (w *World) Armies() []int { return w.armies }

// TerrainAt returns the terrain code of cell i.
func (w *World) TerrainAt(i int) int { return w.terrain[i] }

// ArmyAt returns the army count on cell i.
func (w *World) ArmyAt(i int) int { return w.armies[i] }

// IsObstacle reports whether cell i is a mountain or an unknown obstacle.
func (w *World) IsObstacle(i int) bool { return core.IsObstacleTile(w.terrain[i]) }

// IsHostileArmy reports whether cell i holds an army that is not ours.
func (w *World) IsHostileArmy(i int) bool {
	return w.terrain[i] != w.player && w.armies[i] > 0
}

// IsOwned reports whether cell i belongs to this player.
func (w *World) IsOwned(i int) bool { return w.terrain[i] == w.player }

// IsCity reports whether cell i has ever been seen holding a city.
func (w *World) IsCity(i int) bool {
	_, ok := w.cities[i]
	return ok
}

// Cities returns every city index seen so far, ascending.
func (w *World) Cities() []int {
	out := make([]int, 0, len(w.cities))
	for c := range w.cities {
		out = append(out, c)
	}
	sort.Ints(out)
	return out
}

// Generals returns the best known general index per player.
func (w *World) Generals() []int {
	out := make([]int, len(w.generals))
	copy(out, w.generals)
	return out
}

// Capital returns this player's general.
func (w *World) Capital() (int, error) {
	if w.player < 0 || w.player >= len(w.generals) || w.generals[w.player] < 0 {
		return 0, core.ErrNoGeneral
	}
	return w.generals[w.player], nil
}

// OwnedCells returns every cell owned by this player, ascending.
func (w *World) OwnedCells() []int {
	var out []int
	for i, t := range w.terrain {
		if t == w.player {
			out = append(out, i)
		}
	}
	return out
}

// OwnedArmies returns the army view with every cell not owned by this player
// zeroed.
func (w *World) OwnedArmies() []int {
	out := make([]int, len(w.armies))
	for i, a := range w.armies {
		if w.terrain[i] == w.player {
			out[i] = a
		}
	}
	return out
}

// LargestArmy returns the owned cell holding the most units, the lowest index
// on ties. ok is false when nothing is owned.
func (w *World) LargestArmy() (cell int, ok bool) {
	best := -1
	for i, a := range w.armies {
		if w.terrain[i] == w.player && a > best {
			best, cell, ok = a, i, true
		}
	}
	return cell, ok
}

// LandOwned returns the coordinates of every owned cell.
func (w *World) LandOwned() []core.Coordinate {
	owned := w.OwnedCells()
	out := make([]core.Coordinate, len(owned))
	for k, i := range owned {
		out[k] = w.grid.Coord(i)
	}
	return out
}

// ObstacleView evaluates blocked for every cell.
func (w *World) ObstacleView(blocked func(int) bool) []bool {
	out := make([]bool, w.grid.Size())
	for i := range out {
		out[i] = blocked(i)
	}
	return out
}
