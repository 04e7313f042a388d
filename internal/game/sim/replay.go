package sim

import (
	"github.com/mitchelldurbincs/GeneralsBot/internal/game/planner"
)

// Replay plays schedule on b until the deadline turn and returns the land
// owned then. Segments are queued the way the bot queues them: every move of
// a segment at once, on the first half-turn whose full turn reaches the
// segment's launch turn.
func Replay(b *Board, schedule planner.Schedule, deadline int) int {
	pending := schedule
	for b.HalfTurn() < 2*deadline {
		b.Step()
		for len(pending) > 0 && b.HalfTurn()/2 >= pending[0].Turn {
			for _, e := range pending[0].Edges() {
				if err := b.Attack(e.From, e.To, false); err != nil {
					b.logger.Warn().Err(err).Msg("Schedule contains a non adjacent move")
				}
			}
			pending = pending[1:]
		}
	}
	return b.Land()
}
