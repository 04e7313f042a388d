package pathing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/GeneralsBot/internal/game/core"
	"github.com/mitchelldurbincs/GeneralsBot/internal/testutil"
)

func obstacles(terrain []int) func(int) bool {
	return func(i int) bool { return core.IsObstacleTile(terrain[i]) }
}

// relaxDistances computes shortest hop counts by repeated relaxation.
func relaxDistances(g core.Grid, ref int, blocked func(int) bool) []int {
	const inf = 1 << 30
	dist := make([]int, g.Size())
	for i := range dist {
		dist[i] = inf
	}
	dist[ref] = 0
	for changed := true; changed; {
		changed = false
		for i := range dist {
			if i != ref && blocked(i) {
				continue
			}
			for j := range dist {
				if j == ref || !blocked(j) {
					if g.Adjacent(i, j) && dist[j]+1 < dist[i] {
						dist[i] = dist[j] + 1
						changed = true
					}
				}
			}
		}
	}
	for i, d := range dist {
		if d == inf {
			dist[i] = Blocked
		}
	}
	return dist
}

func TestCompute_MatchesRelaxation(t *testing.T) {
	rng := testutil.NewTestRNG(7)

	for round := 0; round < 25; round++ {
		w, h := 2+rng.Intn(7), 2+rng.Intn(7)
		g := core.NewGrid(w, h)
		terrain := testutil.EmptyTerrain(w, h)
		for i := range terrain {
			switch rng.Intn(5) {
			case 0:
				terrain[i] = core.TileMountain
			case 1:
				terrain[i] = core.TileUnknownObstacle
			}
		}
		ref := rng.Intn(g.Size())
		terrain[ref] = 0

		f := Compute(g, ref, obstacles(terrain))
		require.Equal(t, relaxDistances(g, ref, obstacles(terrain)), f.Distances(), "round %d %dx%d ref %d", round, w, h, ref)
	}
}

func TestCompute_Basics(t *testing.T) {
	g, terrain := testutil.Layout(
		". . .",
		". # .",
		". . .",
	)
	f := Compute(g, 0, obstacles(terrain))

	assert.Equal(t, []int{
		0, 1, 2,
		1, Blocked, 3,
		2, 3, 4,
	}, f.Distances())
	assert.Equal(t, 0, f.Ref())
	assert.Equal(t, g, f.Grid())
	assert.Equal(t, 8, f.CountReachable())
	assert.False(t, f.Reachable(4))
	assert.True(t, f.Reachable(8))
}

func TestCompute_NilPredicate(t *testing.T) {
	f := Compute(core.NewGrid(3, 1), 2, nil)
	assert.Equal(t, []int{2, 1, 0}, f.Distances())
}

func TestCompute_WallSeparates(t *testing.T) {
	g, terrain := testutil.Layout(
		". . . .",
		". 0 . .",
		"# # # #",
		". . . .",
	)
	f := Compute(g, 5, obstacles(terrain))

	for i := 8; i < 16; i++ {
		assert.Equal(t, Blocked, f.At(i), "cell %d", i)
	}
	assert.Equal(t, 8, f.CountReachable())
}

func TestFarthest(t *testing.T) {
	g := core.NewGrid(3, 3)
	f := Compute(g, 4, nil)

	cell, ok := f.Farthest(nil)
	require.True(t, ok)
	assert.Equal(t, 0, cell, "corners tie, lowest index wins")

	cell, ok = f.Farthest(func(i int) bool { return i == 0 || i == 2 })
	require.True(t, ok)
	assert.Equal(t, 6, cell)

	_, ok = f.Farthest(func(int) bool { return true })
	assert.False(t, ok)
}

func assertValidPath(t *testing.T, g core.Grid, f *Field, path []int, start, dest int) {
	t.Helper()
	require.NotEmpty(t, path)
	assert.Equal(t, start, path[0])
	assert.Equal(t, dest, path[len(path)-1])
	for k := 1; k < len(path); k++ {
		assert.True(t, g.Adjacent(path[k-1], path[k]), "step %d: %d -> %d", k, path[k-1], path[k])
		assert.True(t, f.Reachable(path[k]), "step %d enters blocked cell %d", k, path[k])
	}
	assert.Len(t, path, f.At(start)+1, "path must be shortest")
}

func TestChart_RandomBoards(t *testing.T) {
	rng := testutil.NewTestRNG(99)

	charted := 0
	for round := 0; round < 50; round++ {
		w, h := 3+rng.Intn(8), 3+rng.Intn(8)
		g := core.NewGrid(w, h)
		terrain := testutil.EmptyTerrain(w, h)
		for i := range terrain {
			if rng.Intn(4) == 0 {
				terrain[i] = core.TileMountain
			}
		}
		start, dest := rng.Intn(g.Size()), rng.Intn(g.Size())
		terrain[start], terrain[dest] = 0, core.TileEmpty

		f := Compute(g, dest, obstacles(terrain))
		path, err := ChartField(f, start)
		if !f.Reachable(start) {
			assert.ErrorIs(t, err, core.ErrUnreachable)
			continue
		}
		require.NoError(t, err)
		assertValidPath(t, g, f, path, start, dest)
		for _, c := range path {
			assert.False(t, core.IsObstacleTile(terrain[c]))
		}
		charted++
	}
	assert.Positive(t, charted)
}

func TestChart_TieOrder(t *testing.T) {
	g := core.NewGrid(3, 3)

	// From the bottom-left corner to the top-right both right and up descend.
	path, err := Chart(g, 6, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{6, 7, 8, 5, 2}, path)

	// From the bottom-right corner to the top-left, up wins over left.
	path, err = Chart(g, 8, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{8, 5, 2, 1, 0}, path)
}

func TestChart_SameCell(t *testing.T) {
	path, err := Chart(core.NewGrid(2, 2), 3, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, path)
}

func TestChart_DetoursAroundWall(t *testing.T) {
	g, terrain := testutil.Layout(
		". . . .",
		"# # # .",
		". . . .",
	)
	path, err := Chart(g, 0, 8, obstacles(terrain))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 7, 11, 10, 9, 8}, path)
	for _, c := range path {
		assert.NotEqual(t, core.TileMountain, terrain[c])
	}
}

func TestChart_ObstacleRowUnreachable(t *testing.T) {
	g, terrain := testutil.Layout(
		". . . .",
		". 0 . .",
		"? ? ? ?",
		". . . .",
	)
	_, err := Chart(g, 5, 13, obstacles(terrain))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUnreachable)
	assert.Contains(t, err.Error(), "traverse 5 -> 13")

	_, err = Chart(g, 99, 13, obstacles(terrain))
	assert.ErrorIs(t, err, core.ErrInvalidCoordinates)
}

func BenchmarkCompute(b *testing.B) {
	g := core.NewGrid(30, 30)
	for i := 0; i < b.N; i++ {
		Compute(g, 465, nil)
	}
}
