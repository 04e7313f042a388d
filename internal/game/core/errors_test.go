package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapUpdateError(t *testing.T) {
	tests := []struct {
		name     string
		turn     int
		err      error
		expected string
		isNil    bool
	}{
		{
			name:  "nil error returns nil",
			turn:  4,
			err:   nil,
			isNil: true,
		},
		{
			name:     "malformed board",
			turn:     1,
			err:      ErrMalformedBoard,
			expected: "board update turn 1: malformed board dimensions",
		},
		{
			name:     "invalid terrain",
			turn:     37,
			err:      fmt.Errorf("cell 4 = 9: %w", ErrInvalidTerrain),
			expected: "board update turn 37: cell 4 = 9: invalid terrain value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := WrapUpdateError(tt.turn, tt.err)
			if tt.isNil {
				assert.Nil(t, wrapped)
				return
			}
			require.NotNil(t, wrapped)
			assert.Equal(t, tt.expected, wrapped.Error())
			assert.True(t, errors.Is(wrapped, tt.err))
		})
	}
}

func TestWrapTraversalError(t *testing.T) {
	assert.Nil(t, WrapTraversalError(1, 2, nil))

	wrapped := WrapTraversalError(12, 40, ErrNotOwned)
	require.NotNil(t, wrapped)
	assert.Equal(t, "traverse 12 -> 40: tile not owned by player", wrapped.Error())
	assert.True(t, errors.Is(wrapped, ErrNotOwned))
}

func TestWrapMoveError(t *testing.T) {
	g := NewGrid(10, 10)
	assert.Nil(t, WrapMoveError(g, 0, 1, nil))

	wrapped := WrapMoveError(g, 35, 45, ErrInsufficientArmy)
	require.NotNil(t, wrapped)
	assert.Equal(t, "move from (5,3) to (5,4): insufficient army to move", wrapped.Error())
	assert.True(t, errors.Is(wrapped, ErrInsufficientArmy))
}

func TestGameError(t *testing.T) {
	t.Run("message", func(t *testing.T) {
		err := NewGameError(150, 2, "traverse", ErrNotOwned)
		assert.Equal(t, "turn 150: player 2 traverse: tile not owned by player", err.Error())
		assert.True(t, errors.Is(err, ErrNotOwned))
	})

	t.Run("errors.As functionality", func(t *testing.T) {
		originalErr := fmt.Errorf("socket closed")
		gameErr := fmt.Errorf("dispatch: %w", NewGameError(50, 1, "attack", originalErr))

		var extracted *GameError
		require.True(t, errors.As(gameErr, &extracted))
		assert.Equal(t, 50, extracted.Turn)
		assert.Equal(t, 1, extracted.PlayerID)
		assert.Equal(t, "attack", extracted.Operation)
	})
}
