package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrNotAdjacent        = errors.New("tiles are not adjacent")
	ErrNotOwned           = errors.New("tile not owned by player")
	ErrInsufficientArmy   = errors.New("insufficient army to move")
	ErrTargetIsMountain   = errors.New("target tile is a mountain")
	ErrMalformedBoard     = errors.New("malformed board dimensions")
	ErrInvalidTerrain     = errors.New("invalid terrain value")
	ErrUnreachable        = errors.New("destination unreachable")
	ErrNoGeneral          = errors.New("general location unknown")
)

// WrapUpdateError adds the half-turn of a board update to err.
func WrapUpdateError(turn int, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("board update turn %d: %w", turn, err)
}

// WrapTraversalError adds the endpoints of a traversal to err.
func WrapTraversalError(start, end int, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("traverse %d -> %d: %w", start, end, err)
}

// WrapMoveError adds a move's endpoints, expressed as coordinates, to err.
func WrapMoveError(g Grid, from, to int, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("move from %s to %s: %w", g.Coord(from), g.Coord(to), err)
}

// GameError is a structured error carrying the half-turn and player involved.
type GameError struct {
	Turn      int
	PlayerID  int
	Operation string
	Err       error
}

// NewGameError creates a GameError.
func NewGameError(turn, playerID int, operation string, err error) *GameError {
	return &GameError{Turn: turn, PlayerID: playerID, Operation: operation, Err: err}
}

func (e *GameError) Error() string {
	return fmt.Sprintf("turn %d: player %d %s: %v", e.Turn, e.PlayerID, e.Operation, e.Err)
}

func (e *GameError) Unwrap() error { return e.Err }
