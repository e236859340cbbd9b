package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every environment override, e.g. ZOMBIERUN_GAME_SEED.
const EnvPrefix = "ZOMBIERUN_"

// ErrInvalidConfig wraps every range or enum violation found by Validate.
var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Game     GameConfig     `toml:"game" envPrefix:"GAME_"`
	Database DatabaseConfig `toml:"database" envPrefix:"DATABASE_"`
	Progress ProgressConfig `toml:"progress" envPrefix:"PROGRESS_"`
	Logging  LoggingConfig  `toml:"logging" envPrefix:"LOG_"`
}

type GameConfig struct {
	TickRate            time.Duration `toml:"tick_rate" env:"TICK_RATE"`
	MaxTicks            int           `toml:"max_ticks" env:"MAX_TICKS"` // per round, 0 = no limit
	Seed                int64         `toml:"seed" env:"SEED"`           // 0 = time based
	Rounds              int           `toml:"rounds" env:"ROUNDS"`
	DataDir             string        `toml:"data_dir" env:"DATA_DIR"`
	ScriptsDir          string        `toml:"scripts_dir" env:"SCRIPTS_DIR"`
	ReleaseSpawnOnDeath bool          `toml:"release_spawn_on_death" env:"RELEASE_SPAWN_ON_DEATH"`
	Realtime            bool          `toml:"realtime" env:"REALTIME"`
	Locale              string        `toml:"locale" env:"LOCALE"`
}

type DatabaseConfig struct {
	Driver          string        `toml:"driver" env:"DRIVER"` // "postgres", "sqlite" or empty to disable
	DSN             string        `toml:"dsn" env:"DSN"`
	MaxOpenConns    int           `toml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	MaxIdleConns    int           `toml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime" env:"CONN_MAX_LIFETIME"`
}

type ProgressConfig struct {
	AppName string `toml:"app_name" env:"APP_NAME"` // empty keeps progress in memory
}

type LoggingConfig struct {
	Level  string `toml:"level" env:"LEVEL"`
	Format string `toml:"format" env:"FORMAT"` // "json" or "console"
}

// Load reads the TOML file at path over the defaults, applies ZOMBIERUN_*
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	switch {
	case c.Game.TickRate <= 0:
		return fmt.Errorf("%w: game.tick_rate must be positive", ErrInvalidConfig)
	case c.Game.MaxTicks < 0:
		return fmt.Errorf("%w: game.max_ticks must not be negative", ErrInvalidConfig)
	case c.Game.Rounds < 1:
		return fmt.Errorf("%w: game.rounds must be at least 1", ErrInvalidConfig)
	}
	switch c.Database.Driver {
	case "", "postgres", "sqlite":
	default:
		return fmt.Errorf("%w: database.driver %q", ErrInvalidConfig, c.Database.Driver)
	}
	if c.Database.Driver != "" && c.Database.DSN == "" {
		return fmt.Errorf("%w: database.dsn required for driver %s", ErrInvalidConfig, c.Database.Driver)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: logging.format %q", ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Game: GameConfig{
			TickRate:   20 * time.Millisecond,
			MaxTicks:   30000,
			Rounds:     1,
			DataDir:    "data/yaml",
			ScriptsDir: "scripts",
			Locale:     "en",
		},
		Database: DatabaseConfig{
			MaxOpenConns:    4,
			MaxIdleConns:    1,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
