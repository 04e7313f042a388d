package events

import "time"

// Event type constants
const (
	TypeGameStarted      = "game.started"
	TypeGameEnded        = "game.ended"
	TypePlanComputed     = "plan.computed"
	TypeMovesQueued      = "moves.queued"
	TypeTraversalFailed  = "traversal.failed"
	TypeSnapshotRejected = "snapshot.rejected"
	TypeStateTransition  = "state.transition"
)

// Sources of queued moves.
const (
	SourceSchedule = "schedule"
	SourceFrontier = "frontier"
)

// GameStartedEvent is published when the server assigns the bot to a game
type GameStartedEvent struct {
	BaseEvent
	PlayerIndex int      `json:"player_index"`
	Usernames   []string `json:"usernames,omitempty"`
	GameType    string   `json:"game_type,omitempty"`
}

// NewGameStartedEvent creates a new GameStartedEvent
func NewGameStartedEvent(gameID string, playerIndex int, usernames []string, gameType string) *GameStartedEvent {
	return &GameStartedEvent{
		BaseEvent:   newBase(TypeGameStarted, gameID),
		PlayerIndex: playerIndex,
		Usernames:   usernames,
		GameType:    gameType,
	}
}

// GameEndedEvent is published when the game is won or lost
type GameEndedEvent struct {
	BaseEvent
	Won       bool          `json:"won"`
	ReplayURL string        `json:"replay_url,omitempty"`
	FinalTurn int           `json:"final_turn"`
	Duration  time.Duration `json:"duration"`
}

// NewGameEndedEvent creates a new GameEndedEvent
func NewGameEndedEvent(gameID string, won bool, replayURL string, finalTurn int, duration time.Duration) *GameEndedEvent {
	return &GameEndedEvent{
		BaseEvent: newBase(TypeGameEnded, gameID),
		Won:       won,
		ReplayURL: replayURL,
		FinalTurn: finalTurn,
		Duration:  duration,
	}
}

// PlanComputedEvent is published once the expansion schedule is known
type PlanComputedEvent struct {
	BaseEvent
	Target     int           `json:"target"`
	LandTarget int           `json:"land_target"`
	Turns      []int         `json:"turns"`
	Moves      int           `json:"moves"`
	Attempts   int           `json:"attempts"`
	Duration   time.Duration `json:"duration"`
}

// NewPlanComputedEvent creates a new PlanComputedEvent
func NewPlanComputedEvent(gameID string, target, landTarget int, turns []int, moves, attempts int, duration time.Duration) *PlanComputedEvent {
	return &PlanComputedEvent{
		BaseEvent:  newBase(TypePlanComputed, gameID),
		Target:     target,
		LandTarget: landTarget,
		Turns:      turns,
		Moves:      moves,
		Attempts:   attempts,
		Duration:   duration,
	}
}

// MovesQueuedEvent is published when a batch of attacks has been sent
type MovesQueuedEvent struct {
	BaseEvent
	Turn   int    `json:"turn"`
	Source string `json:"source"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Moves  int    `json:"moves"`
}

// NewMovesQueuedEvent creates a new MovesQueuedEvent
func NewMovesQueuedEvent(gameID string, turn int, source string, start, end, moves int) *MovesQueuedEvent {
	return &MovesQueuedEvent{
		BaseEvent: newBase(TypeMovesQueued, gameID),
		Turn:      turn,
		Source:    source,
		Start:     start,
		End:       end,
		Moves:     moves,
	}
}

// TraversalFailedEvent is published when a requested traversal is skipped
type TraversalFailedEvent struct {
	BaseEvent
	Turn   int    `json:"turn"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Reason string `json:"reason"`
}

// NewTraversalFailedEvent creates a new TraversalFailedEvent
func NewTraversalFailedEvent(gameID string, turn, start, end int, err error) *TraversalFailedEvent {
	return &TraversalFailedEvent{
		BaseEvent: newBase(TypeTraversalFailed, gameID),
		Turn:      turn,
		Start:     start,
		End:       end,
		Reason:    err.Error(),
	}
}

// SnapshotRejectedEvent is published when a board update fails validation
type SnapshotRejectedEvent struct {
	BaseEvent
	Turn   int    `json:"turn"`
	Reason string `json:"reason"`
}

// NewSnapshotRejectedEvent creates a new SnapshotRejectedEvent
func NewSnapshotRejectedEvent(gameID string, turn int, err error) *SnapshotRejectedEvent {
	return &SnapshotRejectedEvent{
		BaseEvent: newBase(TypeSnapshotRejected, gameID),
		Turn:      turn,
		Reason:    err.Error(),
	}
}

// StateTransitionEvent is published when the bot's phase machine changes phase
type StateTransitionEvent struct {
	BaseEvent
	FromPhase string `json:"from_phase"`
	ToPhase   string `json:"to_phase"`
	Reason    string `json:"reason"`
}

// NewStateTransitionEvent creates a new StateTransitionEvent
func NewStateTransitionEvent(gameID, fromPhase, toPhase, reason string) *StateTransitionEvent {
	return &StateTransitionEvent{
		BaseEvent: newBase(TypeStateTransition, gameID),
		FromPhase: fromPhase,
		ToPhase:   toPhase,
		Reason:    reason,
	}
}
