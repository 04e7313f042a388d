package states

import (
	"fmt"
	"time"
)

// IdleState is the phase between games
type IdleState struct{}

func NewIdleState() State {
	return &IdleState{}
}

func (s *IdleState) Phase() GamePhase {
	return PhaseIdle
}

func (s *IdleState) Enter(ctx *GameContext) error {
	ctx.clear()
	ctx.Logger.Debug().Msg("Waiting for a game")
	return nil
}

func (s *IdleState) Exit(ctx *GameContext) error {
	return nil
}

func (s *IdleState) Validate(ctx *GameContext) error {
	return nil
}

// ExpansionState replays the precomputed expansion schedule
type ExpansionState struct{}

func NewExpansionState() State {
	return &ExpansionState{}
}

func (s *ExpansionState) Phase() GamePhase {
	return PhaseExpansion
}

func (s *ExpansionState) Enter(ctx *GameContext) error {
	ctx.StartTime = time.Now()
	ctx.Logger.Info().
		Str("game_id", ctx.GameID).
		Int("player_index", ctx.PlayerIndex).
		Msg("Game started, entering expansion phase")
	return nil
}

func (s *ExpansionState) Exit(ctx *GameContext) error {
	ctx.Logger.Debug().
		Dur("elapsed", ctx.Elapsed()).
		Msg("Leaving expansion phase")
	return nil
}

func (s *ExpansionState) Validate(ctx *GameContext) error {
	if ctx.PlayerIndex < 0 {
		return fmt.Errorf("expansion requires a player index, got %d", ctx.PlayerIndex)
	}
	return nil
}

// ReactiveState runs the frontier heuristic each turn
type ReactiveState struct{}

func NewReactiveState() State {
	return &ReactiveState{}
}

func (s *ReactiveState) Phase() GamePhase {
	return PhaseReactive
}

func (s *ReactiveState) Enter(ctx *GameContext) error {
	ctx.Logger.Info().
		Dur("elapsed", ctx.Elapsed()).
		Msg("Expansion schedule finished, exploring the frontier")
	return nil
}

func (s *ReactiveState) Exit(ctx *GameContext) error {
	return nil
}

func (s *ReactiveState) Validate(ctx *GameContext) error {
	return nil
}

// EndedState represents a completed game
type EndedState struct{}

func NewEndedState() State {
	return &EndedState{}
}

func (s *EndedState) Phase() GamePhase {
	return PhaseEnded
}

func (s *EndedState) Enter(ctx *GameContext) error {
	ctx.EndTime = time.Now()
	ctx.Logger.Info().
		Bool("won", ctx.Won).
		Dur("game_duration", ctx.Elapsed()).
		Msg("Game ended")
	return nil
}

func (s *EndedState) Exit(ctx *GameContext) error {
	ctx.Logger.Debug().Msg("Exiting ended state")
	return nil
}

func (s *EndedState) Validate(ctx *GameContext) error {
	return nil
}

// ErrorState represents an error condition
type ErrorState struct{}

func NewErrorState() State {
	return &ErrorState{}
}

func (s *ErrorState) Phase() GamePhase {
	return PhaseError
}

func (s *ErrorState) Enter(ctx *GameContext) error {
	ctx.Logger.Error().
		Err(ctx.Error).
		Msg("Bot entered error state")
	return nil
}

func (s *ErrorState) Exit(ctx *GameContext) error {
	ctx.Logger.Info().Msg("Recovering from error state")
	ctx.Error = nil
	return nil
}

func (s *ErrorState) Validate(ctx *GameContext) error {
	if ctx.Error == nil {
		return fmt.Errorf("error state requires an error in context")
	}
	return nil
}
