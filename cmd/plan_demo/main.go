package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/GeneralsBot/internal/bot"
	"github.com/mitchelldurbincs/GeneralsBot/internal/config"
	"github.com/mitchelldurbincs/GeneralsBot/internal/game/events"
	"github.com/mitchelldurbincs/GeneralsBot/internal/game/mapgen"
	"github.com/mitchelldurbincs/GeneralsBot/internal/game/sim"
	"github.com/mitchelldurbincs/GeneralsBot/internal/protocol"
)

// boardCommander plays the bot's orders on a simulated board.
type boardCommander struct {
	*sim.Board
}

func (c boardCommander) Chat(msg string) error {
	fmt.Printf("chat: %s\n", msg)
	return nil
}

func main() {
	configPath := flag.String("config", "", "Path to config file")
	seed := flag.Int64("seed", -1, "Map seed, 0 for the clock (-1 to use config default)")
	width := flag.Int("width", 0, "Board width (0 to use config default)")
	height := flag.Int("height", 0, "Board height (0 to use config default)")
	turns := flag.Int("turns", 0, "Full turns to simulate (0 for the expansion deadline)")
	verbose := flag.Bool("v", false, "Log every bot event")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	cfg := config.Get()
	if *seed >= 0 {
		cfg.Demo.Seed = *seed
	}
	if *width > 0 {
		cfg.Demo.BoardWidth = *width
	}
	if *height > 0 {
		cfg.Demo.BoardHeight = *height
	}
	if *turns <= 0 {
		*turns = cfg.Planner.DeadlineTurn
	}

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	mapSeed := cfg.Demo.Seed
	if mapSeed == 0 {
		mapSeed = time.Now().UnixNano()
	}
	fmt.Printf("Map seed: %d\n", mapSeed)

	m, err := mapgen.NewGenerator(cfg.Demo.MapConfig(), rand.New(rand.NewSource(mapSeed))).GenerateMap()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to generate map")
	}
	board, err := sim.FromMap(m, 0, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up board")
	}

	bus := events.NewEventBus(log.Logger)
	var landTarget int
	bus.SubscribeFunc(events.TypePlanComputed, func(e events.Event) {
		plan := e.(*events.PlanComputedEvent)
		landTarget = plan.LandTarget
		fmt.Printf("Plan: launch turns %v, %d moves, %d attempts in %s\n",
			plan.Turns, plan.Moves, plan.Attempts, plan.Duration.Round(time.Millisecond))
	})

	b := bot.New(bot.Options{
		Planner: cfg.Planner.ToPlanner(),
		Seed:    cfg.Planner.Seed,
	}, boardCommander{board}, bus, log.Logger)
	b.OnGameStart(protocol.GameStart{PlayerIndex: 0, ReplayID: "plan_demo", Usernames: []string{"colonizer"}})

	for board.HalfTurn() < 2**turns {
		board.Step()
		b.OnBoardUpdate(board.NextUpdate())
	}

	fmt.Printf("Board after turn %d:\n%s\n", *turns, b.World())
	fmt.Printf("Land: %d (planned %d by turn %d), army: %d, phase: %s\n",
		board.Land(), landTarget, cfg.Planner.DeadlineTurn, board.Army(), b.Phase())
}
