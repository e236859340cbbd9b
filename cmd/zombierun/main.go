package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zombierun/sim/internal/config"
	"github.com/zombierun/sim/internal/data"
	"github.com/zombierun/sim/internal/game"
	"github.com/zombierun/sim/internal/persist"
	"github.com/zombierun/sim/internal/progress"
	"github.com/zombierun/sim/internal/scripting"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	cfgPath := "config/zombierun.toml"
	if p := os.Getenv("ZOMBIERUN_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := newPrinter(cfg.Game.Locale)
	printBanner(p, cfg.Game)

	// 3. Settings assets and combat scripts
	printSection(p, "Data")
	settings, err := data.LoadSettings(cfg.Game.DataDir, log.Named("data"))
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	printOK(p, "Settings loaded")

	scripts, err := scripting.NewEngine(cfg.Game.ScriptsDir, log.Named("lua"))
	if err != nil {
		return fmt.Errorf("load scripts: %w", err)
	}
	defer scripts.Close()
	printOK(p, "Combat scripts loaded")

	// 4. Run history and save data
	printSection(p, "Storage")
	dbCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	store, err := persist.Open(dbCtx, cfg.Database, log.Named("persist"))
	cancel()
	if err != nil {
		return fmt.Errorf("run history: %w", err)
	}
	defer store.Close()
	printOK(p, "Run history ready")

	prog, err := progress.Open(cfg.Progress.AppName, log.Named("progress"))
	if err != nil {
		return fmt.Errorf("progress: %w", err)
	}
	printOK(p, "Progress loaded")
	fmt.Println()

	// 5. Session
	seed := cfg.Game.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	sess, err := game.NewSession(game.Options{
		Settings:            settings,
		Scripts:             scripts,
		Rand:                rand.New(rand.NewSource(seed)),
		TickRate:            cfg.Game.TickRate,
		ReleaseSpawnOnDeath: cfg.Game.ReleaseSpawnOnDeath,
		Realtime:            cfg.Game.Realtime,
	}, log.Named("game"))
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	defer sess.Close()
	log.Info("session ready", zap.Int64("seed", seed), zap.Int("rounds", cfg.Game.Rounds))

	// 6. Rounds
	var results []game.Result
	for round := 1; round <= cfg.Game.Rounds; round++ {
		started := time.Now()
		res, runErr := sess.Run(ctx, cfg.Game.MaxTicks)
		if res.Outcome == game.OutcomeTimeout {
			endTimedOut(sess)
		}
		results = append(results, res)
		prog.Record(res)
		saveRun(ctx, store, sess, res, seed, round, started, log)

		if runErr != nil {
			if errors.Is(runErr, context.Canceled) {
				log.Info("interrupted", zap.Int("round", round))
				break
			}
			return fmt.Errorf("round %d: %w", round, runErr)
		}
		if round < cfg.Game.Rounds {
			nextRound(sess, res.Outcome)
		}
	}

	if err := prog.Save(); err != nil {
		log.Warn("progress save failed", zap.Error(err))
	}
	printSummary(p, results, prog.Progress())
	return nil
}

// endTimedOut ends a round cut off by the tick limit as a defeat, so the
// journal and the progress both see it lost.
func endTimedOut(sess *game.Session) {
	if sess.Manager().State() == game.StatePlaying {
		sess.Manager().EndGame(false)
	}
}

// nextRound presses the panel button for the outcome: continue after a win,
// restart otherwise.
func nextRound(sess *game.Session, o game.Outcome) {
	if o == game.OutcomeVictory {
		sess.UI().Continue()
		return
	}
	sess.UI().Restart()
}

func saveRun(ctx context.Context, store persist.Store, sess *game.Session, res game.Result, seed int64, round int, started time.Time, log *zap.Logger) {
	entries := sess.Journal().Entries()
	events := make([]persist.RunEvent, len(entries))
	for i, e := range entries {
		events[i] = persist.RunEvent{Tick: int64(e.Tick), Kind: e.Kind.String(), Value: e.Value}
	}
	rec := persist.RunRecord{
		Seed:        seed,
		Round:       round,
		Outcome:     res.Outcome.String(),
		Ticks:       int64(res.Ticks),
		Distance:    res.Distance,
		Kills:       res.Kills,
		ShotsFired:  res.ShotsFired,
		Hits:        res.Hits,
		DamageTaken: res.DamageTaken,
		Spawned:     res.Spawned,
		StartedAt:   started,
		FinishedAt:  time.Now(),
		Events:      events,
	}

	// The run is recorded even when ctx was cancelled mid-round.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	id, err := store.SaveRun(saveCtx, rec)
	if err != nil {
		log.Error("save run failed", zap.Int("round", round), zap.Error(err))
		return
	}
	log.Debug("run saved", zap.Int64("id", id), zap.Int("events", len(events)))
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
