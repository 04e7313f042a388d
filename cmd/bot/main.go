package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/GeneralsBot/internal/bot"
	"github.com/mitchelldurbincs/GeneralsBot/internal/client"
	"github.com/mitchelldurbincs/GeneralsBot/internal/config"
	"github.com/mitchelldurbincs/GeneralsBot/internal/game/events"
	"github.com/mitchelldurbincs/GeneralsBot/internal/game/events/subscribers"
	"github.com/mitchelldurbincs/GeneralsBot/internal/health"
	"github.com/mitchelldurbincs/GeneralsBot/internal/monitoring"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Path to config file")
	env := flag.String("env", os.Getenv("APP_ENV"), "Environment overlay (loads config.<env>.yaml)")
	gameID := flag.String("game", "", "1v1, ffa or a custom game id (empty to use config default)")
	games := flag.Int("games", -1, "Number of games to play, 0 for no limit (-1 to use config default)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error) (empty to use config default)")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	if err := config.LoadEnvironmentConfig(*env); err != nil {
		log.Fatal().Err(err).Msg("Failed to load environment config")
	}
	// Flag overrides stay local so a hot reload only changes the log level.
	loaded := *config.Get()
	cfg := &loaded

	// Use config defaults if not overridden by flags
	if *gameID != "" {
		cfg.Client.GameID = *gameID
	}
	if *games >= 0 {
		cfg.Client.Games = *games
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if cfg.Client.UserID == "" {
		cfg.Client.UserID = uuid.NewString()
	}

	setupLogging(cfg.Logging.Level, cfg.Logging.Format)
	config.WatchConfig(func(c *config.Config) {
		zerolog.SetGlobalLevel(parseLevel(c.Logging.Level))
		log.Info().Str("level", c.Logging.Level).Msg("Config reloaded")
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := events.NewEventBus(log.Logger)
	if cfg.Logging.Events {
		ls := subscribers.NewLoggerSubscriber("event_log", log.Logger, zerolog.InfoLevel)
		ls.SetDevMode(cfg.Logging.Level == "debug")
		bus.Subscribe(ls)
	}

	var hs *health.Server
	if cfg.Health.Enabled {
		hs = health.NewServer(health.Config{
			Host:             cfg.Health.Host,
			Port:             cfg.Health.Port,
			EnableReflection: cfg.Health.EnableReflection,
		}, log.Logger)
		go func() {
			if err := hs.ListenAndServe(); err != nil {
				log.Error().Err(err).Msg("Health server stopped")
			}
		}()
		defer hs.Stop(cfg.Health.GracefulShutdownDelay)
	}

	// Zero interval disables the monitor.
	var monitor *monitoring.GoroutineMonitor
	if cfg.Health.GoroutineCheckInterval > 0 {
		monitor = monitoring.NewGoroutineMonitor(cfg.Health.GoroutineCheckInterval, cfg.Health.GoroutineAlertThreshold, log.Logger)
		monitor.Start()
		defer monitor.Stop()
	}

	log.Info().
		Str("server", cfg.Client.ServerURL).
		Str("username", cfg.Client.Username).
		Str("game_id", cfg.Client.GameID).
		Int("games", cfg.Client.Games).
		Msg("Starting bot")

	for played := 0; cfg.Client.Games == 0 || played < cfg.Client.Games; played++ {
		if monitor != nil {
			monitor.RegisterComponent("game_session", 1)
		}
		err := playGame(ctx, cfg, bus, hs)
		if monitor != nil {
			monitor.RegisterComponent("game_session", 0)
			m := monitor.GetMetrics()
			log.Debug().
				Int("games", played+1).
				Int("goroutines", m.Current).
				Int("growth", m.Growth).
				Int("peak", m.Peak).
				Msg("Game session finished")
		}
		if ctx.Err() != nil {
			break
		}
		if err != nil {
			log.Error().Err(err).Dur("retry_in", cfg.Client.RetryDelay).Msg("Game session failed")
			select {
			case <-ctx.Done():
			case <-time.After(cfg.Client.RetryDelay):
			}
		}
	}

	log.Info().Msg("Bot shutdown complete")
}

// playGame connects, joins one game and plays it to the end.
func playGame(ctx context.Context, cfg *config.Config, bus *events.EventBus, hs *health.Server) error {
	c, err := client.Dial(ctx, client.Config{
		ServerURL:        cfg.Client.ServerURL,
		UserID:           cfg.Client.UserID,
		ForceStartDelay:  cfg.Client.ForceStartDelay,
		HandshakeTimeout: cfg.Client.HandshakeTimeout,
	}, log.Logger)
	if err != nil {
		return err
	}
	defer c.Close()

	if hs != nil {
		hs.SetServing(true)
		defer hs.SetServing(false)
	}

	b := bot.New(bot.Options{
		Planner: cfg.Planner.ToPlanner(),
		Seed:    cfg.Planner.Seed,
	}, c, bus, log.Logger)
	c.AddListener(b)

	if cfg.Client.Username != "" {
		if err := c.SetUsername(cfg.Client.Username); err != nil {
			return err
		}
	}
	if err := join(c, cfg); err != nil {
		return err
	}

	err = c.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func join(c *client.Client, cfg *config.Config) error {
	switch cfg.Client.GameID {
	case config.GameOneVsOne:
		log.Info().Msg("Joining 1v1 queue")
		return c.Join1v1()
	case config.GameFFA:
		log.Info().Msg("Joining FFA queue")
		return c.JoinFFA()
	default:
		log.Info().
			Str("lobby", strings.TrimSuffix(cfg.Client.ServerURL, "/")+"/games/"+cfg.Client.GameID).
			Msg("Joining custom game")
		return c.JoinCustom(cfg.Client.GameID)
	}
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func setupLogging(level, format string) {
	zerolog.SetGlobalLevel(parseLevel(level))

	// Check if we're in production
	if os.Getenv("APP_ENV") == "production" || format == "json" {
		// JSON output for production
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		// Pretty console output for development
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}
}
