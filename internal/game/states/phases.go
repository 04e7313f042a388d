package states

import "fmt"

// GamePhase represents the bot's phase within one game
type GamePhase int

const (
	// PhaseIdle - no game in progress
	PhaseIdle GamePhase = iota

	// PhaseExpansion - replaying the expansion schedule
	PhaseExpansion

	// PhaseReactive - frontier heuristic after the schedule deadline
	PhaseReactive

	// PhaseEnded - game won or lost
	PhaseEnded

	// PhaseError - unrecoverable failure in the current game
	PhaseError
)

// String returns the string representation of a GamePhase
func (p GamePhase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseExpansion:
		return "Expansion"
	case PhaseReactive:
		return "Reactive"
	case PhaseEnded:
		return "Ended"
	case PhaseError:
		return "Error"
	default:
		return fmt.Sprintf("Unknown(%d)", p)
	}
}

// IsTerminal returns true if the phase ends a game
func (p GamePhase) IsTerminal() bool {
	return p == PhaseEnded || p == PhaseError
}

// CanIssueMoves returns true if the bot sends attacks in this phase
func (p GamePhase) CanIssueMoves() bool {
	return p == PhaseExpansion || p == PhaseReactive
}

// AllowedTransitions returns the valid phases this phase can transition to
func (p GamePhase) AllowedTransitions() []GamePhase {
	switch p {
	case PhaseIdle:
		return []GamePhase{PhaseExpansion, PhaseError}
	case PhaseExpansion:
		return []GamePhase{PhaseReactive, PhaseEnded, PhaseError}
	case PhaseReactive:
		return []GamePhase{PhaseEnded, PhaseError}
	case PhaseEnded:
		return []GamePhase{PhaseIdle}
	case PhaseError:
		return []GamePhase{PhaseIdle}
	default:
		return []GamePhase{}
	}
}

// CanTransitionTo checks if a transition from this phase to the target phase is allowed
func (p GamePhase) CanTransitionTo(target GamePhase) bool {
	for _, phase := range p.AllowedTransitions() {
		if phase == target {
			return true
		}
	}
	return false
}

// ParsePhase converts a string to a GamePhase
func ParsePhase(s string) (GamePhase, bool) {
	switch s {
	case "Idle":
		return PhaseIdle, true
	case "Expansion":
		return PhaseExpansion, true
	case "Reactive":
		return PhaseReactive, true
	case "Ended":
		return PhaseEnded, true
	case "Error":
		return PhaseError, true
	default:
		return PhaseIdle, false
	}
}
