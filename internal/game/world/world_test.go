package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/GeneralsBot/internal/game/core"
	"github.com/mitchelldurbincs/GeneralsBot/internal/game/delta"
	"github.com/mitchelldurbincs/GeneralsBot/internal/protocol"
	"github.com/mitchelldurbincs/GeneralsBot/internal/testutil"
)

func newTestWorld(t *testing.T) (*World, []int) {
	t.Helper()
	g, terrain := testutil.Layout(
		". . # .",
		". 0 . ~",
		"? . 1 .",
	)
	armies := make([]int, g.Size())
	armies[5] = 3
	armies[10] = 2
	armies[2] = 0

	w := New(0, testutil.NopLogger())
	raw := testutil.RawMap(g, armies, terrain)
	err := w.ApplyUpdate(testutil.FirstUpdate(g, armies, terrain, []int{7}, []int{5, -1}, 1))
	require.NoError(t, err)
	return w, raw
}

func TestApplyUpdate_FirstSnapshot(t *testing.T) {
	w, _ := newTestWorld(t)

	assert.True(t, w.Ready())
	assert.Equal(t, core.NewGrid(4, 3), w.Grid())
	assert.Equal(t, 1, w.Turn())
	assert.Equal(t, 3, w.ArmyAt(5))
	assert.Equal(t, 0, w.TerrainAt(5))
	assert.Equal(t, core.TileMountain, w.TerrainAt(2))
	assert.Equal(t, []int{5}, w.OwnedCells())
	assert.True(t, w.IsCity(7))
	assert.Len(t, w.Scores(), 2)

	capital, err := w.Capital()
	require.NoError(t, err)
	assert.Equal(t, 5, capital)
}

func TestApplyUpdate_Incremental(t *testing.T) {
	w, raw := newTestWorld(t)

	next := append([]int(nil), raw...)
	n := w.Grid().Size()
	// Capital moves onto cell 6.
	next[2+6] = 1
	next[2+n+6] = 0
	next[2+5] = 1

	err := w.ApplyUpdate(protocol.GameUpdate{
		Turn:       2,
		MapDiff:    delta.Diff(raw, next),
		CitiesDiff: []int{1}, // keep the only known city
		Generals:   []int{5, -1},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, w.Turn())
	assert.Equal(t, []int{5, 6}, w.OwnedCells())
	assert.Equal(t, 1, w.ArmyAt(5))
	assert.True(t, w.IsCity(7))
}

func TestApplyUpdate_CitiesAreNeverForgotten(t *testing.T) {
	w, raw := newTestWorld(t)

	// The city leaves our vision and the reported array shrinks to nothing.
	require.NoError(t, w.ApplyUpdate(protocol.GameUpdate{Turn: 2, MapDiff: []int{len(raw)}, CitiesDiff: []int{0}, Generals: []int{5, -1}}))
	assert.Equal(t, []int{7}, w.Cities())
	assert.True(t, w.IsCity(7))
}

func TestApplyUpdate_GeneralsMerge(t *testing.T) {
	w, raw := newTestWorld(t)

	keep := []int{len(raw)}
	require.NoError(t, w.ApplyUpdate(protocol.GameUpdate{Turn: 2, MapDiff: keep, CitiesDiff: []int{1, 1, 3}, Generals: []int{5, 10}}))
	assert.Equal(t, []int{5, 10}, w.Generals())
	assert.Equal(t, []int{3, 7}, w.Cities())

	// Enemy general goes back into the fog.
	require.NoError(t, w.ApplyUpdate(protocol.GameUpdate{Turn: 3, MapDiff: keep, CitiesDiff: []int{0, 1, 9}, Generals: []int{5, -1}}))
	assert.Equal(t, []int{5, 10}, w.Generals())
	assert.Equal(t, []int{3, 7, 9}, w.Cities())
	assert.Equal(t, 3, w.Turn())
}

func TestApplyUpdate_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		update func(raw []int) protocol.GameUpdate
		want   error
	}{
		{
			name: "truncated map",
			update: func(raw []int) protocol.GameUpdate {
				return protocol.GameUpdate{Turn: 2, MapDiff: []int{len(raw) - 1}, Generals: []int{5, -1}}
			},
			want: core.ErrMalformedBoard,
		},
		{
			name: "diff keeps more than was sent",
			update: func(raw []int) protocol.GameUpdate {
				return protocol.GameUpdate{Turn: 2, MapDiff: []int{len(raw) + 5}, Generals: []int{5, -1}}
			},
			want: core.ErrMalformedBoard,
		},
		{
			name: "no dimensions",
			update: func(raw []int) protocol.GameUpdate {
				return protocol.GameUpdate{Turn: 2, MapDiff: []int{1}, Generals: []int{5, -1}}
			},
			want: core.ErrMalformedBoard,
		},
		{
			name: "zero width",
			update: func(raw []int) protocol.GameUpdate {
				return protocol.GameUpdate{Turn: 2, MapDiff: []int{0, 1, 0, len(raw) - 1}, Generals: []int{5, -1}}
			},
			want: core.ErrMalformedBoard,
		},
		{
			name: "player index out of range",
			update: func(raw []int) protocol.GameUpdate {
				next := append([]int(nil), raw...)
				next[len(next)-1] = 4
				return protocol.GameUpdate{Turn: 2, MapDiff: delta.Diff(raw, next), Generals: []int{5, -1}}
			},
			want: core.ErrInvalidTerrain,
		},
		{
			name: "unknown sentinel",
			update: func(raw []int) protocol.GameUpdate {
				next := append([]int(nil), raw...)
				next[len(next)-1] = -9
				return protocol.GameUpdate{Turn: 2, MapDiff: delta.Diff(raw, next), Generals: []int{5, -1}}
			},
			want: core.ErrInvalidTerrain,
		},
		{
			name: "city off the board",
			update: func(raw []int) protocol.GameUpdate {
				return protocol.GameUpdate{Turn: 2, MapDiff: []int{len(raw)}, CitiesDiff: []int{1, 1, 99}, Generals: []int{5, -1}}
			},
			want: core.ErrMalformedBoard,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, raw := newTestWorld(t)
			before := append([]int(nil), w.Terrain()...)

			err := w.ApplyUpdate(tt.update(raw))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "board update turn 2")

			assert.Equal(t, 1, w.Turn(), "rejected snapshot must not advance the turn")
			assert.Equal(t, before, w.Terrain())
			assert.Equal(t, []int{7}, w.Cities())
		})
	}
}

func TestApplyUpdate_NextUpdateAfterRejection(t *testing.T) {
	w, raw := newTestWorld(t)
	n := w.Grid().Size()

	// The rejected snapshot also moves an army the server will not resend.
	rejected := append([]int(nil), raw...)
	rejected[2+1] = 5
	rejected[len(rejected)-1] = 4
	require.ErrorIs(t, w.ApplyUpdate(protocol.GameUpdate{Turn: 2, MapDiff: delta.Diff(raw, rejected), CitiesDiff: []int{1}, Generals: []int{5, -1}}), core.ErrInvalidTerrain)
	assert.Equal(t, 0, w.ArmyAt(1), "derived views keep the accepted snapshot")

	next := append([]int(nil), rejected...)
	next[2+n+n-1] = core.TileEmpty
	require.NoError(t, w.ApplyUpdate(protocol.GameUpdate{Turn: 3, MapDiff: delta.Diff(rejected, next), CitiesDiff: []int{1}, Generals: []int{5, -1}}))

	assert.Equal(t, 3, w.Turn())
	assert.Equal(t, 5, w.ArmyAt(1))
	assert.Equal(t, core.TileEmpty, w.TerrainAt(n-1))
	assert.Equal(t, []int{7}, w.Cities())
}

func TestApplyUpdate_FirstSnapshotRejected(t *testing.T) {
	g, terrain := testutil.Layout(
		"0 . .",
	)
	armies := []int{2, 0, 0}
	bad := append([]int(nil), terrain...)
	bad[2] = 9

	w := New(0, testutil.NopLogger())
	err := w.ApplyUpdate(testutil.FirstUpdate(g, armies, bad, nil, []int{0}, 1))
	require.ErrorIs(t, err, core.ErrInvalidTerrain)
	assert.False(t, w.Ready())

	prev := testutil.RawMap(g, armies, bad)
	next := testutil.RawMap(g, armies, terrain)
	require.NotPanics(t, func() {
		err = w.ApplyUpdate(protocol.GameUpdate{Turn: 2, MapDiff: delta.Diff(prev, next), CitiesDiff: []int{0}, Generals: []int{0}})
	})
	require.NoError(t, err)
	assert.True(t, w.Ready())
	assert.Equal(t, []int{0}, w.OwnedCells())
}

func TestQueries(t *testing.T) {
	w, _ := newTestWorld(t)

	assert.True(t, w.IsObstacle(2), "mountain")
	assert.True(t, w.IsObstacle(8), "unknown obstacle")
	assert.False(t, w.IsObstacle(7), "fog is walkable")
	assert.False(t, w.IsObstacle(5))

	assert.True(t, w.IsHostileArmy(10))
	assert.False(t, w.IsHostileArmy(5), "own army")
	assert.False(t, w.IsHostileArmy(0), "empty")

	assert.True(t, w.IsOwned(5))
	assert.False(t, w.IsOwned(10))

	armies := w.OwnedArmies()
	assert.Equal(t, 3, armies[5])
	assert.Equal(t, 0, armies[10])

	cell, ok := w.LargestArmy()
	require.True(t, ok)
	assert.Equal(t, 5, cell)

	assert.Equal(t, []core.Coordinate{{X: 1, Y: 1}}, w.LandOwned())

	view := w.ObstacleView(func(i int) bool { return w.IsObstacle(i) || w.IsHostileArmy(i) })
	assert.Equal(t, []bool{
		false, false, true, false,
		false, false, false, false,
		true, false, true, false,
	}, view)
}

func TestCapital_Unknown(t *testing.T) {
	w := New(1, testutil.NopLogger())
	_, err := w.Capital()
	assert.ErrorIs(t, err, core.ErrNoGeneral)

	w, _ = newTestWorld(t)
	w.player = 1
	_, err = w.Capital()
	assert.ErrorIs(t, err, core.ErrNoGeneral)
}

func TestString(t *testing.T) {
	assert.Equal(t, "<no board>", New(0, testutil.NopLogger()).String())

	w, _ := newTestWorld(t)
	out := w.String()
	assert.Contains(t, out, "A"+generalSymbol)
	assert.Contains(t, out, " "+mountainSymbol)
	assert.Contains(t, out, fogSymbol+mountainSymbol)
	assert.Contains(t, out, "B2")
	assert.Contains(t, out, fogSymbol+fogSymbol)
}
