package states

import (
	"time"

	"github.com/rs/zerolog"
)

// GameContext carries per-game information the phase callbacks read and update
type GameContext struct {
	// GameID is the replay id of the current game
	GameID string

	Logger zerolog.Logger

	// PlayerIndex is the bot's index in the current game, -1 when idle
	PlayerIndex int

	// StartTime is when the expansion phase was entered
	StartTime time.Time

	// EndTime is when the game ended
	EndTime time.Time

	Won bool

	// Error holds the failure that caused a transition to PhaseError
	Error error

	// Metadata for custom state data
	Metadata map[string]interface{}
}

// NewGameContext creates an idle game context
func NewGameContext(logger zerolog.Logger) *GameContext {
	return &GameContext{
		Logger:      logger,
		PlayerIndex: -1,
		Metadata:    make(map[string]interface{}),
	}
}

// Begin records the identity of a new game
func (gc *GameContext) Begin(gameID string, playerIndex int) {
	gc.GameID = gameID
	gc.PlayerIndex = playerIndex
}

// Elapsed returns the time since the expansion phase started, stopping at the game's end
func (gc *GameContext) Elapsed() time.Duration {
	if gc.StartTime.IsZero() {
		return 0
	}
	if !gc.EndTime.IsZero() {
		return gc.EndTime.Sub(gc.StartTime)
	}
	return time.Since(gc.StartTime)
}

// SetMetadata stores custom data for states
func (gc *GameContext) SetMetadata(key string, value interface{}) {
	gc.Metadata[key] = value
}

// GetMetadata retrieves custom data stored by states
func (gc *GameContext) GetMetadata(key string) (interface{}, bool) {
	val, exists := gc.Metadata[key]
	return val, exists
}

func (gc *GameContext) clear() {
	gc.GameID = ""
	gc.PlayerIndex = -1
	gc.StartTime = time.Time{}
	gc.EndTime = time.Time{}
	gc.Won = false
	gc.Error = nil
	for k := range gc.Metadata {
		delete(gc.Metadata, k)
	}
}
