package states

import (
	"fmt"
	"sync"
	"time"

	"github.com/mitchelldurbincs/GeneralsBot/internal/game/events"
)

// State represents a phase with lifecycle callbacks
type State interface {
	// Phase returns the GamePhase this state represents
	Phase() GamePhase

	// Enter is called when transitioning into this state
	Enter(ctx *GameContext) error

	// Exit is called when transitioning out of this state
	Exit(ctx *GameContext) error

	// Validate checks if the state can be entered given the context
	Validate(ctx *GameContext) error
}

// Transition represents a state transition in the history
type Transition struct {
	From      GamePhase
	To        GamePhase
	Timestamp time.Time
	Reason    string
}

// StateMachine manages phase transitions and history
type StateMachine struct {
	mu             sync.RWMutex
	currentPhase   GamePhase
	states         map[GamePhase]State
	context        *GameContext
	history        []Transition
	maxHistorySize int
	publisher      events.Publisher
}

// NewStateMachine creates a state machine in PhaseIdle. publisher may be nil.
func NewStateMachine(ctx *GameContext, publisher events.Publisher) *StateMachine {
	sm := &StateMachine{
		currentPhase:   PhaseIdle,
		states:         make(map[GamePhase]State),
		context:        ctx,
		history:        make([]Transition, 0, 16),
		maxHistorySize: 1000,
		publisher:      publisher,
	}

	sm.RegisterState(NewIdleState())
	sm.RegisterState(NewExpansionState())
	sm.RegisterState(NewReactiveState())
	sm.RegisterState(NewEndedState())
	sm.RegisterState(NewErrorState())

	return sm
}

// RegisterState registers a state implementation
func (sm *StateMachine) RegisterState(state State) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.states[state.Phase()] = state
}

// CurrentPhase returns the current phase
func (sm *StateMachine) CurrentPhase() GamePhase {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.currentPhase
}

// TransitionTo attempts to transition to the specified phase
func (sm *StateMachine) TransitionTo(targetPhase GamePhase, reason string) error {
	sm.mu.Lock()
	if !sm.currentPhase.CanTransitionTo(targetPhase) {
		from := sm.currentPhase
		sm.mu.Unlock()
		return fmt.Errorf("invalid transition from %s to %s", from, targetPhase)
	}
	ev, err := sm.transition(targetPhase, reason, true)
	sm.mu.Unlock()

	sm.publish(ev)
	return err
}

// Reset returns to PhaseIdle from any phase, skipping the transition table.
// It is a no-op when already idle.
func (sm *StateMachine) Reset(reason string) error {
	sm.mu.Lock()
	if sm.currentPhase == PhaseIdle {
		sm.mu.Unlock()
		return nil
	}
	ev, err := sm.transition(PhaseIdle, reason, false)
	sm.mu.Unlock()

	sm.publish(ev)
	return err
}

// publish runs outside mu so subscribers may query the machine.
func (sm *StateMachine) publish(ev events.Event) {
	if ev != nil && sm.publisher != nil {
		sm.publisher.Publish(ev)
	}
}

// transition must be called with mu held. The returned event is nil on failure.
func (sm *StateMachine) transition(targetPhase GamePhase, reason string, validate bool) (events.Event, error) {
	currentState, hasCurrentState := sm.states[sm.currentPhase]
	targetState, hasTargetState := sm.states[targetPhase]

	if !hasTargetState {
		return nil, fmt.Errorf("no state implementation for phase %s", targetPhase)
	}

	if validate {
		if err := targetState.Validate(sm.context); err != nil {
			return nil, fmt.Errorf("target state validation failed: %w", err)
		}
	}

	if hasCurrentState {
		if err := currentState.Exit(sm.context); err != nil {
			sm.context.Logger.Error().
				Err(err).
				Str("from_phase", sm.currentPhase.String()).
				Str("to_phase", targetPhase.String()).
				Msg("Error exiting state")
		}
	}

	previousPhase := sm.currentPhase
	sm.currentPhase = targetPhase

	if err := targetState.Enter(sm.context); err != nil {
		sm.currentPhase = previousPhase
		return nil, fmt.Errorf("failed to enter state %s: %w", targetPhase, err)
	}

	sm.addToHistory(Transition{
		From:      previousPhase,
		To:        targetPhase,
		Timestamp: time.Now(),
		Reason:    reason,
	})

	sm.context.Logger.Debug().
		Str("from_phase", previousPhase.String()).
		Str("to_phase", targetPhase.String()).
		Str("reason", reason).
		Msg("State transition completed")

	return events.NewStateTransitionEvent(
		sm.context.GameID,
		previousPhase.String(),
		targetPhase.String(),
		reason,
	), nil
}

// addToHistory adds a transition to the history, maintaining max size
func (sm *StateMachine) addToHistory(transition Transition) {
	sm.history = append(sm.history, transition)

	if len(sm.history) > sm.maxHistorySize {
		sm.history = sm.history[len(sm.history)-sm.maxHistorySize:]
	}
}

// History returns a copy of the transition history
func (sm *StateMachine) History() []Transition {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	history := make([]Transition, len(sm.history))
	copy(history, sm.history)
	return history
}

// Context returns the game context
func (sm *StateMachine) Context() *GameContext {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.context
}

// CanTransitionTo checks if a transition to the target phase is allowed
func (sm *StateMachine) CanTransitionTo(targetPhase GamePhase) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.currentPhase.CanTransitionTo(targetPhase)
}
