package subscribers

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/GeneralsBot/internal/game/events"
)

// LoggerSubscriber logs events to structured logs
type LoggerSubscriber struct {
	id              string
	logger          zerolog.Logger
	logLevel        zerolog.Level
	eventTypeFilter map[string]bool // If non-nil, only log these event types
	devMode         bool            // If true, log full event details
}

// NewLoggerSubscriber creates a new logger subscriber
func NewLoggerSubscriber(id string, logger zerolog.Logger, logLevel zerolog.Level) *LoggerSubscriber {
	return &LoggerSubscriber{
		id:       id,
		logger:   logger.With().Str("subscriber", "event_logger").Logger(),
		logLevel: logLevel,
	}
}

// ID returns the subscriber's unique identifier
func (ls *LoggerSubscriber) ID() string {
	return ls.id
}

// SetEventFilter sets which event types to log (nil means log all)
func (ls *LoggerSubscriber) SetEventFilter(eventTypes []string) {
	if len(eventTypes) == 0 {
		ls.eventTypeFilter = nil
		return
	}

	ls.eventTypeFilter = make(map[string]bool)
	for _, eventType := range eventTypes {
		ls.eventTypeFilter[eventType] = true
	}
}

// SetDevMode enables or disables development mode logging
func (ls *LoggerSubscriber) SetDevMode(enabled bool) {
	ls.devMode = enabled
}

// InterestedIn returns true if the subscriber wants to receive this event type
func (ls *LoggerSubscriber) InterestedIn(eventType string) bool {
	if ls.eventTypeFilter == nil {
		return true
	}
	return ls.eventTypeFilter[eventType]
}

// HandleEvent processes an event by logging it
func (ls *LoggerSubscriber) HandleEvent(event events.Event) {
	eventLogger := ls.logger.With().
		Str("event_type", event.Type()).
		Str("game_id", event.GameID()).
		Logger()

	logEvent := eventLogger.WithLevel(ls.logLevel)
	if logEvent == nil {
		return
	}

	switch e := event.(type) {
	case *events.GameStartedEvent:
		logEvent.
			Int("player_index", e.PlayerIndex).
			Strs("usernames", e.Usernames).
			Str("game_type", e.GameType)

	case *events.GameEndedEvent:
		logEvent.
			Bool("won", e.Won).
			Str("replay_url", e.ReplayURL).
			Int("final_turn", e.FinalTurn).
			Dur("duration", e.Duration)

	case *events.PlanComputedEvent:
		logEvent.
			Int("target", e.Target).
			Int("land_target", e.LandTarget).
			Ints("turns", e.Turns).
			Int("moves", e.Moves).
			Int("attempts", e.Attempts).
			Dur("duration", e.Duration)

	case *events.MovesQueuedEvent:
		logEvent.
			Int("turn", e.Turn).
			Str("source", e.Source).
			Int("start", e.Start).
			Int("end", e.End).
			Int("moves", e.Moves)

	case *events.TraversalFailedEvent:
		logEvent.
			Int("turn", e.Turn).
			Int("start", e.Start).
			Int("end", e.End).
			Str("reason", e.Reason)

	case *events.SnapshotRejectedEvent:
		logEvent.
			Int("turn", e.Turn).
			Str("reason", e.Reason)

	case *events.StateTransitionEvent:
		logEvent.
			Str("from_phase", e.FromPhase).
			Str("to_phase", e.ToPhase).
			Str("reason", e.Reason)
	}

	// In dev mode, also log the full event as JSON
	if ls.devMode {
		if jsonData, err := json.Marshal(event); err == nil {
			logEvent.RawJSON("event_data", jsonData)
		}
	}

	logEvent.Msg("Bot event")
}
