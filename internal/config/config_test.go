package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "zombierun.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Game.TickRate != 20*time.Millisecond || cfg.Game.Rounds != 1 || cfg.Game.MaxTicks != 30000 {
		t.Errorf("game defaults = %+v", cfg.Game)
	}
	if cfg.Database.Driver != "" || cfg.Logging.Format != "console" {
		t.Errorf("database %+v logging %+v", cfg.Database, cfg.Logging)
	}
	if cfg.Game.Seed != 0 || cfg.Game.Locale != "en" || cfg.Game.ReleaseSpawnOnDeath {
		t.Errorf("game defaults = %+v", cfg.Game)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
[game]
tick_rate = "10ms"
seed = 42
rounds = 3
release_spawn_on_death = true

[database]
driver = "sqlite"
dsn = "runs.db"

[logging]
level = "debug"
format = "json"
`)
	t.Setenv("ZOMBIERUN_GAME_SEED", "7")
	t.Setenv("ZOMBIERUN_PROGRESS_APP_NAME", "zombierun_test")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Game.TickRate != 10*time.Millisecond || cfg.Game.Rounds != 3 || !cfg.Game.ReleaseSpawnOnDeath {
		t.Errorf("game = %+v", cfg.Game)
	}
	if cfg.Game.Seed != 7 {
		t.Errorf("Seed = %d, want env override 7", cfg.Game.Seed)
	}
	if cfg.Progress.AppName != "zombierun_test" {
		t.Errorf("AppName = %q", cfg.Progress.AppName)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.DSN != "runs.db" {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		invalid bool
	}{
		{"malformed", "[game\n", false},
		{"zero tick", "[game]\ntick_rate = \"0s\"\n", true},
		{"no rounds", "[game]\nrounds = 0\n", true},
		{"unknown driver", "[database]\ndriver = \"mysql\"\ndsn = \"x\"\n", true},
		{"driver without dsn", "[database]\ndriver = \"postgres\"\n", true},
		{"bad format", "[logging]\nformat = \"xml\"\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("Load should fail")
			}
			if got := errors.Is(err, ErrInvalidConfig); got != tt.invalid {
				t.Errorf("errors.Is(ErrInvalidConfig) = %v for %v", got, err)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestLoadBadEnv(t *testing.T) {
	t.Setenv("ZOMBIERUN_GAME_ROUNDS", "many")
	if _, err := Load(writeConfig(t, "")); err == nil {
		t.Error("unparsable env override should fail")
	}
}
