// Package bot drives one player: it plans the expansion opening on the first
// board update, replays the plan turn by turn and then keeps pushing its
// largest army toward the unexplored frontier.
package bot

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/GeneralsBot/internal/client"
	"github.com/mitchelldurbincs/GeneralsBot/internal/game/core"
	"github.com/mitchelldurbincs/GeneralsBot/internal/game/events"
	"github.com/mitchelldurbincs/GeneralsBot/internal/game/pathing"
	"github.com/mitchelldurbincs/GeneralsBot/internal/game/planner"
	"github.com/mitchelldurbincs/GeneralsBot/internal/game/states"
	"github.com/mitchelldurbincs/GeneralsBot/internal/game/world"
	"github.com/mitchelldurbincs/GeneralsBot/internal/protocol"
)

// Commander sends orders to the game server.
type Commander interface {
	Attack(start, end int, half bool) error
	Chat(msg string) error
}

// Options configures a Bot.
type Options struct {
	Planner planner.Config
	// Seed feeds the planner's tie breaking. Zero seeds from the clock.
	Seed int64
}

// Bot implements client.Listener. Callbacks must not run concurrently.
type Bot struct {
	cmd       Commander
	planner   *planner.Planner
	deadline  int
	publisher events.Publisher
	machine   *states.StateMachine
	base      zerolog.Logger
	logger    zerolog.Logger

	world                *world.World
	planned              bool
	schedule             planner.Schedule
	movementFinishedTurn int
}

var _ client.Listener = (*Bot)(nil)

// New creates an idle bot. publisher may be nil.
func New(opts Options, cmd Commander, publisher events.Publisher, logger zerolog.Logger) *Bot {
	var rng *rand.Rand
	if opts.Seed != 0 {
		rng = rand.New(rand.NewSource(opts.Seed))
	}
	botLogger := logger.With().Str("component", "bot").Logger()
	return &Bot{
		cmd:       cmd,
		planner:   planner.New(opts.Planner, rng, logger),
		deadline:  opts.Planner.DeadlineTurn,
		publisher: publisher,
		machine:   states.NewStateMachine(states.NewGameContext(botLogger), publisher),
		base:      logger,
		logger:    botLogger,
	}
}

// Phase returns the bot's current phase.
func (b *Bot) Phase() states.GamePhase { return b.machine.CurrentPhase() }

// History returns the phase transitions of the bot's lifetime.
func (b *Bot) History() []states.Transition { return b.machine.History() }

// World returns the board model of the current game, or nil before the first
// game starts.
func (b *Bot) World() *world.World { return b.world }

// Schedule returns the segments that have not been issued yet.
func (b *Bot) Schedule() planner.Schedule { return b.schedule }

func (b *Bot) publish(e events.Event) {
	if b.publisher != nil {
		b.publisher.Publish(e)
	}
}

func (b *Bot) gameID() string { return b.machine.Context().GameID }

// OnGameStart replaces all per-game state.
func (b *Bot) OnGameStart(start protocol.GameStart) {
	if err := b.machine.Reset("new game"); err != nil {
		b.logger.Error().Err(err).Msg("Failed to reset phase machine")
	}

	b.world = world.New(start.PlayerIndex, b.base)
	b.planned = false
	b.schedule = nil
	b.movementFinishedTurn = 2 * b.deadline

	b.machine.Context().Begin(start.ReplayID, start.PlayerIndex)
	if err := b.machine.TransitionTo(states.PhaseExpansion, "game start"); err != nil {
		b.logger.Error().Err(err).Msg("Failed to enter expansion phase")
	}

	b.logger.Info().
		Int("player_index", start.PlayerIndex).
		Strs("usernames", start.Usernames).
		Str("replay_url", start.ReplayURL()).
		Msg("Game starting")
	b.publish(events.NewGameStartedEvent(start.ReplayID, start.PlayerIndex, start.Usernames, start.GameType))
}

// OnBoardUpdate applies a server update and issues this turn's orders.
func (b *Bot) OnBoardUpdate(update protocol.GameUpdate) {
	if b.world == nil {
		b.logger.Warn().Int("turn", update.Turn).Msg("Board update before game start")
		return
	}
	if err := b.world.ApplyUpdate(update); err != nil {
		b.logger.Error().Err(err).Int("turn", update.Turn).Msg("Rejected board update")
		b.publish(events.NewSnapshotRejectedEvent(b.gameID(), update.Turn, err))
		return
	}

	if !b.planned {
		b.planned = true
		b.plan()
	}
	if !b.Phase().CanIssueMoves() {
		return
	}

	turn := b.world.Turn()
	if b.Phase() == states.PhaseExpansion {
		if turn < 2*b.deadline {
			b.issueSchedule(turn)
			return
		}
		b.enterReactive("expansion deadline reached")
	}
	if turn >= b.movementFinishedTurn {
		b.explore(turn)
	}
}

// OnGameOver ends the current game.
func (b *Bot) OnGameOver(won bool, replayURL string) {
	ctx := b.machine.Context()
	ctx.Won = won
	gameID := ctx.GameID
	if err := b.machine.TransitionTo(states.PhaseEnded, outcome(won)); err != nil {
		b.logger.Warn().Err(err).Msg("Game over outside of a game")
	}

	finalTurn := 0
	if b.world != nil {
		finalTurn = b.world.Turn()
	}
	b.logger.Info().
		Bool("won", won).
		Int("final_turn", finalTurn).
		Str("replay_url", replayURL).
		Msg(outcome(won))
	b.publish(events.NewGameEndedEvent(gameID, won, replayURL, finalTurn, ctx.Elapsed()))
}

func outcome(won bool) string {
	if won {
		return "Game won"
	}
	return "Game lost"
}

// OnChat logs chat messages.
func (b *Bot) OnChat(msg protocol.ChatMessage) {
	b.logger.Info().Str("user", msg.Sender()).Str("room", msg.Room).Msg(msg.Text)
}

func (b *Bot) plan() {
	capital, err := b.world.Capital()
	if err != nil {
		b.fail(fmt.Errorf("plan expansion: %w", err))
		return
	}

	w := b.world
	prob := planner.Problem{
		Grid:    w.Grid(),
		Capital: capital,
		Blocked: w.ObstacleView(func(i int) bool { return w.IsObstacle(i) || w.IsHostileArmy(i) }),
	}
	b.logger.Info().Int("turn", w.Turn()).Msg("Searching for expansion plan")

	res, err := b.planner.Plan(prob)
	switch {
	case errors.Is(err, planner.ErrNoPlan):
		b.logger.Warn().Int("attempts", len(res.Attempts)).Msg("No expansion plan, exploring instead")
		b.movementFinishedTurn = 0
		b.enterReactive("no expansion plan")
		return
	case err != nil:
		b.fail(err)
		return
	}

	b.schedule = res.Schedule
	turns := res.Schedule.Turns()
	if err := b.cmd.Chat(formatTurns(turns)); err != nil {
		b.logger.Warn().Err(err).Msg("Failed to announce plan")
	}
	b.machine.Context().SetMetadata("land_target", res.Schedule.LandTarget())
	b.publish(events.NewPlanComputedEvent(b.gameID(), res.Target, res.Schedule.LandTarget(), turns,
		res.Schedule.Moves(), len(res.Attempts), res.Duration))
}

// formatTurns renders launch turns as "[8, 16, 24]".
func formatTurns(turns []int) string {
	parts := make([]string, len(turns))
	for i, t := range turns {
		parts[i] = strconv.Itoa(t)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (b *Bot) fail(err error) {
	b.machine.Context().Error = err
	if terr := b.machine.TransitionTo(states.PhaseError, err.Error()); terr != nil {
		b.logger.Error().Err(terr).Msg("Failed to enter error phase")
	}
}

func (b *Bot) enterReactive(reason string) {
	if err := b.machine.TransitionTo(states.PhaseReactive, reason); err != nil {
		b.logger.Error().Err(err).Msg("Failed to enter reactive phase")
	}
}

// issueSchedule sends every segment due by this half-turn. A segment whose
// update was missed goes out on the next one.
func (b *Bot) issueSchedule(turn int) {
	for len(b.schedule) > 0 && turn/2 >= b.schedule[0].Turn {
		seg := b.schedule[0]
		b.schedule = b.schedule[1:]
		if turn/2 > seg.Turn {
			b.logger.Warn().Int("turn", turn).Int("segment_turn", seg.Turn).Msg("Issuing late segment")
		}
		b.queue(turn, seg.Path, events.SourceSchedule)
	}
}

// queue sends one attack per consecutive pair of path.
func (b *Bot) queue(turn int, path []int, source string) {
	sent := 0
	for i := 0; i+1 < len(path); i++ {
		if err := b.cmd.Attack(path[i], path[i+1], false); err != nil {
			b.logger.Error().Err(err).Int("from", path[i]).Int("to", path[i+1]).Msg("Failed to send attack")
			break
		}
		sent++
	}
	if sent == 0 {
		return
	}
	b.logger.Debug().Int("turn", turn).Str("source", source).Ints("path", path).Msg("Moves queued")
	b.publish(events.NewMovesQueuedEvent(b.gameID(), turn, source, path[0], path[len(path)-1], sent))
}

// explore sends the largest owned army toward the farthest unowned cell it
// can reach without crossing anything Traverse avoids.
func (b *Bot) explore(turn int) {
	start, ok := b.world.LargestArmy()
	if !ok {
		b.logger.Warn().Int("turn", turn).Msg("Cannot explore without an army")
		return
	}
	field := pathing.Compute(b.world.Grid(), start, b.traversalBlocked(start))
	end, ok := field.Farthest(b.world.IsOwned)
	if !ok {
		b.logger.Debug().Int("turn", turn).Int("start", start).Msg("No reachable unowned cell left to explore")
		return
	}

	path, err := b.Traverse(start, end)
	if err != nil {
		return
	}
	b.movementFinishedTurn = turn + len(path) - 1
}

// traversalBlocked reports mountains, cities and unowned armies as blocked,
// except for the start cell itself.
func (b *Bot) traversalBlocked(start int) func(int) bool {
	w := b.world
	return func(i int) bool {
		if i == start {
			return false
		}
		return w.IsObstacle(i) || w.IsCity(i) || (w.TerrainAt(i) < 0 && w.ArmyAt(i) > 0)
	}
}

// Traverse queues moves from start toward end and returns the cells the army
// will walk. Mountains, cities and unowned armies are avoided. An army too
// small to leave one unit on every cell of the route only walks the prefix it
// can hold. A start cell the player does not own is reported with
// core.ErrNotOwned and nothing is queued.
func (b *Bot) Traverse(start, end int) ([]int, error) {
	w := b.world
	turn := w.Turn()
	if !w.IsOwned(start) {
		err := core.WrapTraversalError(start, end, core.ErrNotOwned)
		b.logger.Warn().Err(err).Int("terrain", w.TerrainAt(start)).Msg("Traversal failed")
		b.publish(events.NewTraversalFailedEvent(b.gameID(), turn, start, end, err))
		return nil, err
	}

	path, err := pathing.Chart(w.Grid(), start, end, b.traversalBlocked(start))
	if err != nil {
		b.logger.Warn().Err(err).Msg("Traversal failed")
		b.publish(events.NewTraversalFailedEvent(b.gameID(), turn, start, end, err))
		return nil, err
	}

	if army := w.ArmyAt(start); army < len(path) {
		path = path[:max(army, 1)]
	}
	b.queue(turn, path, events.SourceFrontier)
	return path, nil
}
