package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/mitchelldurbincs/GeneralsBot/internal/game/mapgen"
	"github.com/mitchelldurbincs/GeneralsBot/internal/game/planner"
)

// Game ids with a fixed meaning. Anything else joins a custom game of that id.
const (
	GameOneVsOne = "1v1"
	GameFFA      = "ffa"
)

// Config holds all configuration for the application
type Config struct {
	Client  ClientConfig  `mapstructure:"client"`
	Planner PlannerConfig `mapstructure:"planner"`
	Logging LoggingConfig `mapstructure:"logging"`
	Health  HealthConfig  `mapstructure:"health"`
	Demo    DemoConfig    `mapstructure:"demo"`
}

// ClientConfig holds the game server connection settings
type ClientConfig struct {
	ServerURL        string        `mapstructure:"server_url"`
	UserID           string        `mapstructure:"user_id"`
	Username         string        `mapstructure:"username"`
	GameID           string        `mapstructure:"game_id"`
	ForceStartDelay  time.Duration `mapstructure:"force_start_delay"`
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`
	// Games is how many games to play before exiting. Zero plays forever.
	Games      int           `mapstructure:"games"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

// PlannerConfig holds expansion search settings
type PlannerConfig struct {
	DeadlineTurn     int           `mapstructure:"deadline_turn"`
	SolutionCap      int           `mapstructure:"solution_cap"`
	Seed             int64         `mapstructure:"seed"`
	ProgressInterval time.Duration `mapstructure:"progress_interval"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	// Events enables the event bus log subscriber.
	Events bool `mapstructure:"events"`
}

// HealthConfig holds the gRPC health endpoint and goroutine monitor settings
type HealthConfig struct {
	Enabled                 bool          `mapstructure:"enabled"`
	Host                    string        `mapstructure:"host"`
	Port                    int           `mapstructure:"port"`
	EnableReflection        bool          `mapstructure:"enable_reflection"`
	GracefulShutdownDelay   time.Duration `mapstructure:"graceful_shutdown_delay"`
	GoroutineCheckInterval  time.Duration `mapstructure:"goroutine_check_interval"`
	GoroutineAlertThreshold int           `mapstructure:"goroutine_alert_threshold"`
}

// DemoConfig holds offline planning demo settings
type DemoConfig struct {
	BoardWidth       int   `mapstructure:"board_width"`
	BoardHeight      int   `mapstructure:"board_height"`
	Players          int   `mapstructure:"players"`
	CityRatio        int   `mapstructure:"city_ratio"`
	CityStartArmy    int   `mapstructure:"city_start_army"`
	NumMountainVeins int   `mapstructure:"num_mountain_veins"`
	MaxVeinLength    int   `mapstructure:"max_vein_length"`
	Seed             int64 `mapstructure:"seed"`
}

// ToPlanner converts the settings to a planner configuration.
func (p PlannerConfig) ToPlanner() planner.Config {
	return planner.Config{
		DeadlineTurn:     p.DeadlineTurn,
		SolutionCap:      p.SolutionCap,
		ProgressInterval: p.ProgressInterval,
	}
}

// MapConfig converts the demo board settings to a generator configuration.
// Zero vein settings keep the generator defaults.
func (d DemoConfig) MapConfig() mapgen.MapConfig {
	mc := mapgen.DefaultMapConfig(d.BoardWidth, d.BoardHeight, d.Players)
	mc.CityRatio = d.CityRatio
	mc.CityStartArmy = d.CityStartArmy
	if d.NumMountainVeins > 0 {
		mc.NumMountainVeins = d.NumMountainVeins
	}
	if d.MaxVeinLength > 0 {
		mc.MaxVeinLength = d.MaxVeinLength
	}
	return mc
}

var (
	// Global config instance
	cfg *Config
	v   *viper.Viper
)

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	// Client defaults
	v.SetDefault("client.server_url", "https://bot.generals.io")
	v.SetDefault("client.user_id", "")
	v.SetDefault("client.username", "[Bot] colonizer")
	v.SetDefault("client.game_id", GameOneVsOne)
	v.SetDefault("client.force_start_delay", 3*time.Second)
	v.SetDefault("client.handshake_timeout", 10*time.Second)
	v.SetDefault("client.games", 0)
	v.SetDefault("client.retry_delay", 5*time.Second)

	// Planner defaults
	v.SetDefault("planner.deadline_turn", 25)
	v.SetDefault("planner.solution_cap", 1000)
	v.SetDefault("planner.seed", 0)
	v.SetDefault("planner.progress_interval", 5*time.Second)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.events", true)

	// Health defaults
	v.SetDefault("health.enabled", false)
	v.SetDefault("health.host", "0.0.0.0")
	v.SetDefault("health.port", 50051)
	v.SetDefault("health.enable_reflection", false)
	v.SetDefault("health.graceful_shutdown_delay", time.Second)
	v.SetDefault("health.goroutine_check_interval", 30*time.Second)
	v.SetDefault("health.goroutine_alert_threshold", 1000)

	// Demo defaults
	v.SetDefault("demo.board_width", 18)
	v.SetDefault("demo.board_height", 18)
	v.SetDefault("demo.players", 2)
	v.SetDefault("demo.city_ratio", 20)
	v.SetDefault("demo.city_start_army", 40)
	v.SetDefault("demo.num_mountain_veins", 0)
	v.SetDefault("demo.max_vein_length", 0)
	v.SetDefault("demo.seed", 0)
}

// Init initializes the configuration
func Init(configPath string) error {
	v = viper.New()

	// Set defaults before loading any config
	setViperDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/generals-bot")
	}

	v.SetEnvPrefix("GENERALS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
		return fmt.Errorf("error reading config file: %w", err)
	}

	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	return nil
}

// isNotFound reports a missing config file, which falls back to defaults.
func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

// Get returns the global config instance
func Get() *Config {
	if cfg == nil {
		// Initialize with defaults if not already initialized
		if err := Init(""); err != nil {
			panic("failed to initialize config with defaults: " + err.Error())
		}
	}
	return cfg
}

// GetViper returns the viper instance for advanced usage
func GetViper() *viper.Viper {
	if v == nil {
		panic("config not initialized - call Init() first")
	}
	return v
}

// LoadEnvironmentConfig loads environment-specific config overlay
func LoadEnvironmentConfig(env string) error {
	if env == "" {
		return nil
	}

	envFile := fmt.Sprintf("config.%s.yaml", env)

	v.SetConfigFile(envFile)
	if err := v.MergeInConfig(); err != nil && !isNotFound(err) {
		return fmt.Errorf("error merging environment config %s: %w", envFile, err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode merged config into struct: %w", err)
	}

	return Validate(cfg)
}

// Set allows runtime config updates
func Set(key string, value interface{}) {
	v.Set(key, value)
	// Re-unmarshal to update struct
	_ = v.Unmarshal(cfg)
}

// GetString gets a string value from config
func GetString(key string) string {
	return v.GetString(key)
}

// GetInt gets an int value from config
func GetInt(key string) int {
	return v.GetInt(key)
}

// GetBool gets a bool value from config
func GetBool(key string) bool {
	return v.GetBool(key)
}

// GetDuration gets a duration value from config
func GetDuration(key string) time.Duration {
	return v.GetDuration(key)
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	return v.ConfigFileUsed()
}

// WatchConfig enables hot-reloading of the config file. onChange runs after
// the struct was refreshed; a file that fails to decode or validate is ignored.
func WatchConfig(onChange func(*Config)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		next := &Config{}
		if err := v.Unmarshal(next); err != nil {
			return
		}
		if err := Validate(next); err != nil {
			return
		}
		*cfg = *next
		if onChange != nil {
			onChange(cfg)
		}
	})
	v.WatchConfig()
}

// Validate validates the configuration values
func Validate(c *Config) error {
	if c.Client.ServerURL == "" {
		return fmt.Errorf("client.server_url must be set")
	}
	if !strings.HasPrefix(c.Client.ServerURL, "http://") && !strings.HasPrefix(c.Client.ServerURL, "https://") &&
		!strings.HasPrefix(c.Client.ServerURL, "ws://") && !strings.HasPrefix(c.Client.ServerURL, "wss://") {
		return fmt.Errorf("client.server_url must be an http(s) or ws(s) url")
	}
	if c.Client.GameID == "" {
		return fmt.Errorf("client.game_id must be set")
	}
	if c.Client.ForceStartDelay < 0 {
		return fmt.Errorf("client.force_start_delay must be non-negative")
	}
	if c.Client.HandshakeTimeout <= 0 {
		return fmt.Errorf("client.handshake_timeout must be positive")
	}
	if c.Client.Games < 0 {
		return fmt.Errorf("client.games must be non-negative")
	}
	if c.Client.RetryDelay < 0 {
		return fmt.Errorf("client.retry_delay must be non-negative")
	}

	if c.Planner.DeadlineTurn < 1 {
		return fmt.Errorf("planner.deadline_turn must be at least 1")
	}
	if c.Planner.SolutionCap < 0 {
		return fmt.Errorf("planner.solution_cap must be non-negative")
	}
	if c.Planner.ProgressInterval < 0 {
		return fmt.Errorf("planner.progress_interval must be non-negative")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error")
	}
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be console or json")
	}

	if c.Health.Port <= 0 || c.Health.Port > 65535 {
		return fmt.Errorf("health.port must be between 1 and 65535")
	}
	if c.Health.GracefulShutdownDelay < 0 {
		return fmt.Errorf("health.graceful_shutdown_delay must be non-negative")
	}
	if c.Health.GoroutineCheckInterval < 0 {
		return fmt.Errorf("health.goroutine_check_interval must be non-negative")
	}

	if c.Demo.BoardWidth <= 0 || c.Demo.BoardHeight <= 0 {
		return fmt.Errorf("demo board dimensions must be positive")
	}
	if c.Demo.Players < 1 {
		return fmt.Errorf("demo.players must be at least 1")
	}
	if c.Demo.CityRatio <= 0 {
		return fmt.Errorf("demo.city_ratio must be positive")
	}
	if c.Demo.CityStartArmy < 0 {
		return fmt.Errorf("demo.city_start_army must be non-negative")
	}

	return nil
}
