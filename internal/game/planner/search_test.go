package planner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/GeneralsBot/internal/game/core"
	"github.com/mitchelldurbincs/GeneralsBot/internal/game/planner"
	"github.com/mitchelldurbincs/GeneralsBot/internal/game/sim"
	"github.com/mitchelldurbincs/GeneralsBot/internal/testutil"
)

func problemFromLayout(capital int, rows ...string) (planner.Problem, []int) {
	g, terrain := testutil.Layout(rows...)
	p := planner.Problem{Grid: g, Capital: capital, Blocked: make([]bool, g.Size())}
	for i, tile := range terrain {
		p.Blocked[i] = core.IsObstacleTile(tile)
	}
	return p, terrain
}

func newPlanner(seed int64, deadline int) *planner.Planner {
	cfg := planner.DefaultConfig()
	cfg.DeadlineTurn = deadline
	cfg.ProgressInterval = 0
	return planner.New(cfg, testutil.NewTestRNG(seed), testutil.NopLogger())
}

func replay(t *testing.T, terrain []int, p planner.Problem, schedule planner.Schedule, deadline int) int {
	t.Helper()
	for i := range terrain {
		if core.IsPlayerTile(terrain[i]) {
			terrain[i] = core.TileEmpty
		}
	}
	b, err := sim.NewBoard(p.Grid, terrain, make([]int, p.Grid.Size()), nil, p.Capital, testutil.NopLogger())
	require.NoError(t, err)
	return sim.Replay(b, schedule, deadline)
}

func assertWalkable(t *testing.T, p planner.Problem, schedule planner.Schedule) {
	t.Helper()
	for _, seg := range schedule {
		require.NotEmpty(t, seg.Path)
		assert.Equal(t, p.Capital, seg.Path[0])
		for _, e := range seg.Edges() {
			assert.True(t, p.Grid.Adjacent(e.From, e.To), "%d -> %d", e.From, e.To)
			assert.False(t, p.Blocked[e.To], "enters blocked cell %d", e.To)
		}
	}
}

func TestPlan_EmptyFourByFour(t *testing.T) {
	p, terrain := problemFromLayout(5,
		". . . .",
		". 0 . .",
		". . . .",
		". . . .",
	)
	res, err := newPlanner(1, 25).Plan(p)
	require.NoError(t, err)

	assert.Equal(t, 15, res.Target, "every reachable cell")
	require.Len(t, res.Schedule, 1)
	seg := res.Schedule[0]
	assert.Equal(t, 15, seg.Turn)
	assert.Equal(t, 15, seg.Gain)
	assert.Len(t, seg.Path, 16)
	assert.GreaterOrEqual(t, seg.Gain, seg.Turn, "final segment can coast to the deadline")
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}, seg.Path)
	assertWalkable(t, p, res.Schedule)
	assert.Equal(t, 16, res.Schedule.LandTarget())

	land := replay(t, terrain, p, res.Schedule, 25)
	assert.GreaterOrEqual(t, land, res.Schedule.LandTarget())
}

func TestPlan_ObstacleRow(t *testing.T) {
	p, terrain := problemFromLayout(5,
		". . . .",
		". 0 . .",
		"? ? ? ?",
		". . . .",
	)
	res, err := newPlanner(2, 25).Plan(p)
	require.NoError(t, err)

	assert.Equal(t, 7, res.Target)
	require.Len(t, res.Schedule, 1)
	assert.Equal(t, 7, res.Schedule[0].Turn)
	assertWalkable(t, p, res.Schedule)
	for _, c := range res.Schedule[0].Path {
		assert.Less(t, c, 8, "never crosses the obstacle row")
	}

	land := replay(t, terrain, p, res.Schedule, 25)
	assert.Equal(t, 8, land)
}

func TestPlan_SplitsIntoSeveralClears(t *testing.T) {
	// A corridor with the capital in the middle can only be taken by two
	// armies going opposite ways.
	p, terrain := problemFromLayout(4, ". . . . 0 . . . .")
	res, err := newPlanner(3, 10).Plan(p)
	require.NoError(t, err)

	assert.Equal(t, 8, res.Target)
	require.Len(t, res.Schedule, 2)
	assert.Equal(t, []int{4, 8}, res.Schedule.Turns())
	assert.Equal(t, 8, res.Schedule.Moves())
	assertWalkable(t, p, res.Schedule)

	first, second := res.Schedule[0].Path, res.Schedule[1].Path
	assert.NotEqual(t, first[1], second[1], "armies leave the capital in opposite directions")

	land := replay(t, terrain, p, res.Schedule, 10)
	assert.Equal(t, 9, land)
}

func TestPlan_Reproducible(t *testing.T) {
	p, terrain := problemFromLayout(7,
		". . . . .",
		". # 0 . .",
		". . . ? .",
	)

	a, err := newPlanner(42, 12).Plan(p)
	require.NoError(t, err)
	b, err := newPlanner(42, 12).Plan(p)
	require.NoError(t, err)

	assert.Equal(t, a.Schedule, b.Schedule, "same seed, same plan")
	assert.Equal(t, a.Target, b.Target)

	c, err := newPlanner(43, 12).Plan(p)
	require.NoError(t, err)
	assert.Equal(t, a.Target, c.Target)
	assert.Equal(t, a.Schedule.LandTarget(), c.Schedule.LandTarget())

	assertWalkable(t, p, c.Schedule)
	land := replay(t, terrain, p, c.Schedule, 12)
	assert.GreaterOrEqual(t, land, c.Schedule.LandTarget())
}

func TestPlan_LowersTargetUntilSolvable(t *testing.T) {
	// Two dead ends of three cells each. With a deadline of 25 the first
	// target is every reachable cell, which needs a second army, and the
	// cap of 2*(25-6) leaves room for only one.
	p, _ := problemFromLayout(3, ". . . 0 . . .")
	res, err := newPlanner(5, 25).Plan(p)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Target)
	require.NotEmpty(t, res.Attempts)
	assert.Equal(t, 6, res.Attempts[0].Target)
	assert.Equal(t, 3, res.Attempts[len(res.Attempts)-1].Target)
	assert.Equal(t, 0, res.Attempts[0].Solutions)
}

func TestPlan_NoRoomToExpand(t *testing.T) {
	p, _ := problemFromLayout(4,
		". # .",
		"# 0 #",
		". # .",
	)
	res, err := newPlanner(1, 25).Plan(p)
	assert.ErrorIs(t, err, planner.ErrNoPlan)
	require.NotNil(t, res)
	require.Len(t, res.Attempts, 1)
	assert.Equal(t, 0, res.Attempts[0].Target)
}

func TestPlan_InvalidProblem(t *testing.T) {
	pl := newPlanner(1, 25)

	_, err := pl.Plan(planner.Problem{Grid: core.NewGrid(2, 2), Capital: 0, Blocked: make([]bool, 3)})
	assert.ErrorIs(t, err, core.ErrMalformedBoard)

	_, err = pl.Plan(planner.Problem{Grid: core.NewGrid(2, 2), Capital: 7, Blocked: make([]bool, 4)})
	assert.ErrorIs(t, err, core.ErrNoGeneral)
}

func TestSearch_Stats(t *testing.T) {
	p, _ := problemFromLayout(1, ". 0 . .")
	pl := newPlanner(9, 5)

	solution, stats := pl.Search(p, 2)
	require.NotNil(t, solution)
	assert.True(t, solution.Solved())
	assert.Equal(t, 2, stats.Target)
	assert.Positive(t, stats.Solutions)
	assert.Positive(t, stats.Visited)

	solution, stats = pl.Search(p, 4)
	assert.Nil(t, solution)
	assert.Equal(t, 0, stats.Solutions)
}

func TestSearch_SolutionCap(t *testing.T) {
	p, _ := problemFromLayout(12,
		". . . . .",
		". . . . .",
		". . 0 . .",
		". . . . .",
		". . . . .",
	)
	search := func(solutionCap int) (*planner.State, planner.SearchStats) {
		cfg := planner.DefaultConfig()
		cfg.DeadlineTurn = 8
		cfg.SolutionCap = solutionCap
		cfg.ProgressInterval = 0
		return planner.New(cfg, testutil.NewTestRNG(4), testutil.NopLogger()).Search(p, 3)
	}

	_, all := search(1000)
	solution, stats := search(3)
	require.NotNil(t, solution)

	// The state that crosses the cap still has all its moves counted.
	assert.GreaterOrEqual(t, stats.Solutions, 4)
	assert.LessOrEqual(t, stats.Solutions, all.Solutions)
	assert.LessOrEqual(t, stats.Expanded, all.Expanded)
}

func TestSchedule(t *testing.T) {
	s := planner.Schedule{
		{Turn: 4, Gain: 4, Path: []int{4, 3, 2, 1, 0}},
		{Turn: 8, Gain: 2, Path: []int{4, 5, 6}},
		{Turn: 10, Gain: 0, Path: []int{4}},
	}
	assert.Equal(t, []int{4, 8, 10}, s.Turns())
	assert.Equal(t, 6, s.Moves())
	assert.Equal(t, 7, s.LandTarget())
	assert.Equal(t, []planner.Move{{From: 4, To: 5}, {From: 5, To: 6}}, s[1].Edges())
	assert.Nil(t, s[2].Edges())
}
