// Package config loads simulator configuration from a YAML file with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration.
type Config struct {
	Game      GameConfig      `mapstructure:"game"`
	Roster    RosterConfig    `mapstructure:"roster"`
	Oracle    OracleConfig    `mapstructure:"oracle"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	Spectator SpectatorConfig `mapstructure:"spectator"`
}

// GameConfig carries the rule knobs.
type GameConfig struct {
	InitialStars         int               `mapstructure:"initial_stars"`
	InitialCardsEachType int               `mapstructure:"initial_cards_each_type"`
	MaxTurns             int               `mapstructure:"max_turns"`
	MinutesPerTurn       int               `mapstructure:"minutes_per_turn"`
	TotalPlayers         int               `mapstructure:"total_players"`
	TurnOrder            string            `mapstructure:"turn_order"` // fixed | shuffled
	ShuffleSeed          int64             `mapstructure:"shuffle_seed"`
	StatusLabels         map[string]string `mapstructure:"status_labels"`
}

// RosterConfig points at the player roster; empty path uses the built-in one.
type RosterConfig struct {
	Path string `mapstructure:"path"`
}

// OracleConfig selects the decision backend.
type OracleConfig struct {
	// Kind is "bot" for the built-in rule bot or "remote" for an external
	// agent over a websocket.
	Kind    string        `mapstructure:"kind"`
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Seed    int64         `mapstructure:"seed"`

	Bot BotConfig `mapstructure:"bot"`
}

// BotConfig tunes the built-in bot's temperament.
type BotConfig struct {
	Aggression float64 `mapstructure:"aggression"`
	Caution    float64 `mapstructure:"caution"`
	Greed      float64 `mapstructure:"greed"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json or console
}

// ArchiveConfig controls finished-game persistence. An empty DSN disables
// the database archive; an empty transcript dir disables transcript export.
type ArchiveConfig struct {
	DatabaseDSN   string `mapstructure:"database_dsn"`
	TranscriptDir string `mapstructure:"transcript_dir"`
}

// SpectatorConfig controls the websocket turn-event feed.
type SpectatorConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// Load reads configuration from the given path. A missing file is not an
// error; defaults and LRPS_* environment variables still apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("game.initial_stars", 3)
	v.SetDefault("game.initial_cards_each_type", 4)
	v.SetDefault("game.max_turns", 24)
	v.SetDefault("game.minutes_per_turn", 10)
	v.SetDefault("game.total_players", 5)
	v.SetDefault("game.turn_order", "fixed")
	v.SetDefault("game.shuffle_seed", 0)
	v.SetDefault("oracle.kind", "bot")
	v.SetDefault("oracle.timeout", 30*time.Second)
	v.SetDefault("oracle.seed", 1)
	v.SetDefault("oracle.bot.aggression", 0.5)
	v.SetDefault("oracle.bot.caution", 0.5)
	v.SetDefault("oracle.bot.greed", 0.5)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("spectator.enabled", false)
	v.SetDefault("spectator.address", ":8089")

	v.SetEnvPrefix("LRPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Game.InitialStars <= 0 {
		return fmt.Errorf("game.initial_stars must be positive")
	}
	if c.Game.InitialCardsEachType <= 0 {
		return fmt.Errorf("game.initial_cards_each_type must be positive")
	}
	if c.Game.MaxTurns <= 0 {
		return fmt.Errorf("game.max_turns must be positive")
	}
	if c.Game.TurnOrder != "fixed" && c.Game.TurnOrder != "shuffled" {
		return fmt.Errorf("game.turn_order must be \"fixed\" or \"shuffled\", got %q", c.Game.TurnOrder)
	}
	switch c.Oracle.Kind {
	case "bot":
	case "remote":
		if c.Oracle.URL == "" {
			return fmt.Errorf("oracle.url is required when oracle.kind is \"remote\"")
		}
	default:
		return fmt.Errorf("oracle.kind must be \"bot\" or \"remote\", got %q", c.Oracle.Kind)
	}
	return nil
}
