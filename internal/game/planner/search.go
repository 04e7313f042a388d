package planner

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/GeneralsBot/internal/game/pathing"
)

// ErrNoPlan is returned when not even a single extra cell can be planned.
var ErrNoPlan = errors.New("no expansion plan found")

// Config tunes the search.
type Config struct {
	// DeadlineTurn is the full turn the expansion phase ends on.
	DeadlineTurn int
	// SolutionCap stops a search once more solutions than this were found.
	SolutionCap int
	// ProgressInterval is how often a running search logs its counters. Zero
	// disables progress logs.
	ProgressInterval time.Duration
}

// DefaultConfig matches the server's 25 turn land growth cycle.
func DefaultConfig() Config {
	return Config{
		DeadlineTurn:     25,
		SolutionCap:      1000,
		ProgressInterval: 5 * time.Second,
	}
}

// SearchStats counts what a single search did.
type SearchStats struct {
	Target    int
	Expanded  int
	Visited   int
	Dead      int
	Repeats   int
	Solutions int
	Duration  time.Duration
}

// Result is an accepted plan.
type Result struct {
	Schedule Schedule
	// Target is the number of cells the plan takes besides the capital.
	Target   int
	Attempts []SearchStats
	Duration time.Duration
}

// Planner runs best-first searches over clear chains. It is not safe for
// concurrent use because it owns its random source.
type Planner struct {
	cfg    Config
	rng    *rand.Rand
	logger zerolog.Logger
}

// New creates a Planner. rng breaks ties between equally scored states; pass a
// seeded source for reproducible plans.
func New(cfg Config, rng *rand.Rand, logger zerolog.Logger) *Planner {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Planner{
		cfg:    cfg,
		rng:    rng,
		logger: logger.With().Str("component", "planner").Logger(),
	}
}

// Plan searches for the largest target that can be owned by the deadline,
// lowering it one cell at a time until a search succeeds. The first target is
// capped by the number of cells reachable from the capital.
func (p *Planner) Plan(prob Problem) (*Result, error) {
	if err := prob.Validate(); err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}
	start := time.Now()

	reachable := pathing.Compute(prob.Grid, prob.Capital, func(i int) bool {
		return prob.Blocked[i]
	}).CountReachable()
	target := min(p.cfg.DeadlineTurn-1, reachable-1)

	res := &Result{}
	for ; target >= 0; target-- {
		solution, stats := p.Search(prob, target)
		res.Attempts = append(res.Attempts, stats)

		if solution == nil {
			p.logger.Info().
				Int("target", target).
				Int("visited", stats.Visited).
				Dur("duration", stats.Duration).
				Msgf("Could not own %d cells by turn %d", target+1, p.cfg.DeadlineTurn)
			continue
		}

		res.Schedule = newSchedule(prob.Capital, solution.Clears)
		res.Target = target
		res.Duration = time.Since(start)
		p.logger.Info().
			Int("target", target).
			Ints("turns", res.Schedule.Turns()).
			Int("attempts", len(res.Attempts)).
			Dur("duration", res.Duration).
			Msg("Expansion plan found")
		return res, nil
	}

	res.Duration = time.Since(start)
	return res, ErrNoPlan
}

// Search runs one best-first search for owning target+1 cells by the deadline
// and returns the first solution found, or nil.
func (p *Planner) Search(prob Problem, target int) (*State, SearchStats) {
	start := time.Now()
	stats := SearchStats{Target: target}

	model := NewModel(prob.Grid, prob.Capital)
	root := model.InitialState(prob, target, p.cfg.DeadlineTurn)
	visited := newVisitedSet()
	queue := &stateQueue{}
	var solutions []*State

	// consider files a successor.
	consider := func(next *State) {
		if next == nil {
			stats.Dead++
			return
		}
		if next.Solved() {
			solutions = append(solutions, next)
			return
		}
		if !visited.add(next.Clears) {
			stats.Repeats++
			return
		}
		queue.push(scoredState{score: p.score(next), state: next})
	}
	// Once the cap is exceeded no further state is expanded, but the moves of
	// the state being expanded are all still counted.
	capped := func() bool { return len(solutions) > p.cfg.SolutionCap }

	for _, mv := range model.PossibleMoves(root) {
		seed := model.NextState(root, mv)
		if seed != nil {
			seed.Clears = seed.Clears[1:]
		}
		consider(seed)
	}

	lastProgress := start
	for !capped() && queue.Len() > 0 {
		if p.cfg.ProgressInterval > 0 && time.Since(lastProgress) > p.cfg.ProgressInterval {
			p.logger.Debug().
				Int("target", target).
				Int("queue", queue.Len()).
				Int("visited", visited.len()).
				Int("solutions", len(solutions)).
				Int("dead", stats.Dead).
				Int("repeats", stats.Repeats).
				Msg("Expansion search progress")
			lastProgress = time.Now()
		}

		current := queue.pop()
		stats.Expanded++
		for _, mv := range model.PossibleMoves(current) {
			consider(model.NextState(current, mv))
		}
	}

	stats.Visited = visited.len()
	stats.Solutions = len(solutions)
	stats.Duration = time.Since(start)
	if len(solutions) == 0 {
		return nil, stats
	}
	return solutions[0], stats
}

// score ranks states by the move cap of their newest clear, larger first, with
// a random fraction to spread ties.
func (p *Planner) score(s *State) float64 {
	return -float64(s.Last().MoveCap) - p.rng.Float64()
}
