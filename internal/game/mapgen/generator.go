// Package mapgen builds random boards for offline planning and simulation.
package mapgen

import (
	"errors"
	"math/rand"

	"github.com/mitchelldurbincs/GeneralsBot/internal/game/core"
)

// ErrNoGeneralLocation is returned when no open cell is left for a general.
var ErrNoGeneralLocation = errors.New("unable to place general: no valid locations")

// MapConfig holds configuration for map generation
type MapConfig struct {
	Width             int
	Height            int
	PlayerCount       int
	CityRatio         int // 1 city per N tiles
	CityStartArmy     int
	MinGeneralSpacing int
	NumMountainVeins  int
	MinVeinLength     int
	MaxVeinLength     int
}

// DefaultMapConfig returns a sensible default configuration
func DefaultMapConfig(w, h, players int) MapConfig {
	return MapConfig{
		Width:             w,
		Height:            h,
		PlayerCount:       players,
		CityRatio:         20,
		CityStartArmy:     40,
		MinGeneralSpacing: 5,
		NumMountainVeins:  (w * h) / 50,
		MinVeinLength:     3,
		MaxVeinLength:     max(w/4, 3),
	}
}

// Map is a fully visible board in the server's array layout.
type Map struct {
	Grid     core.Grid
	Terrain  []int
	Armies   []int
	Cities   []int
	Generals []int
}

// Capital returns the general of player pid.
func (m *Map) Capital(pid int) int { return m.Generals[pid] }

// Generator handles map generation with deterministic RNG
type Generator struct {
	config MapConfig
	rng    *rand.Rand
}

// NewGenerator creates a new map generator
func NewGenerator(config MapConfig, rng *rand.Rand) *Generator {
	return &Generator{
		config: config,
		rng:    rng,
	}
}

// GenerateMap creates a new board with mountains, cities and generals placed.
func (g *Generator) GenerateMap() (*Map, error) {
	grid := core.NewGrid(g.config.Width, g.config.Height)
	m := &Map{
		Grid:    grid,
		Terrain: make([]int, grid.Size()),
		Armies:  make([]int, grid.Size()),
	}
	for i := range m.Terrain {
		m.Terrain[i] = core.TileEmpty
	}

	g.placeMountains(m)
	g.placeCities(m)
	if err := g.placeGenerals(m); err != nil {
		return nil, err
	}
	return m, nil
}

// placeMountains walks random veins of mountains across the board.
func (g *Generator) placeMountains(m *Map) {
	if g.config.NumMountainVeins <= 0 || g.config.MaxVeinLength <= 0 {
		return
	}
	spread := g.config.MaxVeinLength - g.config.MinVeinLength + 1
	if spread < 1 {
		spread = 1
	}

	for v := 0; v < g.config.NumMountainVeins; v++ {
		cell := g.rng.Intn(m.Grid.Size())
		length := g.config.MinVeinLength + g.rng.Intn(spread)
		for step := 0; step < length; step++ {
			m.Terrain[cell] = core.TileMountain
			next, ok := m.Grid.Step(cell, core.Directions[g.rng.Intn(len(core.Directions))])
			if !ok {
				break
			}
			cell = next
		}
	}
}

func (g *Generator) placeCities(m *Map) {
	if g.config.CityRatio <= 0 {
		return
	}
	want := m.Grid.Size() / g.config.CityRatio
	placed := 0

	// Use a maximum attempt counter to avoid infinite loops
	maxAttempts := want * 10
	for attempts := 0; placed < want && attempts < maxAttempts; attempts++ {
		idx := g.rng.Intn(m.Grid.Size())
		if m.Terrain[idx] != core.TileEmpty || m.Armies[idx] > 0 {
			continue
		}
		m.Armies[idx] = g.config.CityStartArmy
		m.Cities = append(m.Cities, idx)
		placed++
	}
}

func (g *Generator) placeGenerals(m *Map) error {
	m.Generals = make([]int, 0, g.config.PlayerCount)
	for pid := 0; pid < g.config.PlayerCount; pid++ {
		idx, err := g.findGeneralLocation(m)
		if err != nil {
			return err
		}
		m.Terrain[idx] = pid
		m.Armies[idx] = 1
		m.Generals = append(m.Generals, idx)
	}
	return nil
}

func (g *Generator) findGeneralLocation(m *Map) (int, error) {
	open := func(idx int) bool { return m.Terrain[idx] == core.TileEmpty && m.Armies[idx] == 0 }
	maxAttempts := m.Grid.Size() // Fallback to prevent infinite loops

	for attempts := 0; attempts < maxAttempts; attempts++ {
		idx := g.rng.Intn(m.Grid.Size())
		if !open(idx) {
			continue
		}

		// Check minimum distance from existing generals
		validLocation := true
		for _, other := range m.Generals {
			if m.Grid.Coord(idx).DistanceTo(m.Grid.Coord(other)) < g.config.MinGeneralSpacing {
				validLocation = false
				break
			}
		}
		if validLocation {
			return idx, nil
		}
	}

	// Fallback: place anywhere valid (shouldn't happen with reasonable configs)
	for idx := range m.Terrain {
		if open(idx) {
			return idx, nil
		}
	}
	return 0, ErrNoGeneralLocation
}
