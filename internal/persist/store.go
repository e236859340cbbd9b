package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/zombierun/sim/internal/config"
	"go.uber.org/zap"
)

// RunRecord is one finished round in the run history.
type RunRecord struct {
	ID          int64
	Seed        int64
	Round       int
	Outcome     string
	Ticks       int64
	Distance    float64
	Kills       int
	ShotsFired  int
	Hits        int
	DamageTaken int
	Spawned     int
	StartedAt   time.Time
	FinishedAt  time.Time
	Events      []RunEvent // written with the run, not loaded by RecentRuns
}

// RunEvent is one journal entry of a run.
type RunEvent struct {
	Tick  int64
	Kind  string
	Value int
}

// Store keeps the run history.
type Store interface {
	// SaveRun writes the run and its events atomically and returns the run id.
	SaveRun(ctx context.Context, r RunRecord) (int64, error)
	// RecentRuns returns up to limit runs, newest first.
	RecentRuns(ctx context.Context, limit int) ([]RunRecord, error)
	// RunEvents returns the events of one run in tick order.
	RunEvents(ctx context.Context, runID int64) ([]RunEvent, error)
	Close() error
}

// Open connects the store selected by cfg.Driver and applies migrations.
// An empty driver disables the run history.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (Store, error) {
	switch cfg.Driver {
	case "":
		log.Info("run history disabled")
		return NopStore{}, nil
	case "postgres":
		db, err := NewDB(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		if err := MigratePostgres(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
		return NewPostgresStore(db), nil
	case "sqlite":
		st, err := OpenSQLite(ctx, cfg.DSN, log)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// NopStore drops every run.
type NopStore struct{}

func (NopStore) SaveRun(context.Context, RunRecord) (int64, error)    { return 0, nil }
func (NopStore) RecentRuns(context.Context, int) ([]RunRecord, error) { return nil, nil }
func (NopStore) RunEvents(context.Context, int64) ([]RunEvent, error) { return nil, nil }
func (NopStore) Close() error                                         { return nil }
