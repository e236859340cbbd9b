package persist

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/zombierun/sim/internal/config"
	"go.uber.org/zap"
)

func openTestStore(t *testing.T) Store {
	t.Helper()
	cfg := config.DatabaseConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "runs.db")}
	st, err := Open(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first := RunRecord{
		Seed:        42,
		Round:       1,
		Outcome:     "victory",
		Ticks:       375,
		Distance:    59.4,
		Kills:       3,
		ShotsFired:  12,
		Hits:        5,
		DamageTaken: 25,
		Spawned:     50,
		StartedAt:   started,
		FinishedAt:  started.Add(7500 * time.Millisecond),
		Events: []RunEvent{
			{Tick: 30, Kind: "PlayerDamaged", Value: 25},
			{Tick: 10, Kind: "EnemySpawned", Value: -1},
			{Tick: 374, Kind: "CarReachedEnd"},
		},
	}
	id1, err := st.SaveRun(ctx, first)
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	id2, err := st.SaveRun(ctx, RunRecord{Seed: 42, Round: 2, Outcome: "defeat", StartedAt: started, FinishedAt: started})
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if id2 <= id1 {
		t.Fatalf("ids %d then %d", id1, id2)
	}

	runs, err := st.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != id2 || runs[1].ID != id1 {
		t.Fatalf("runs = %+v", runs)
	}
	got := runs[1]
	first.ID = id1
	first.Events = nil
	if !got.StartedAt.Equal(first.StartedAt) || !got.FinishedAt.Equal(first.FinishedAt) {
		t.Errorf("times = %v..%v", got.StartedAt, got.FinishedAt)
	}
	got.StartedAt, got.FinishedAt = first.StartedAt, first.FinishedAt
	if !reflect.DeepEqual(got, first) {
		t.Errorf("round trip:\n got %+v\nwant %+v", got, first)
	}

	events, err := st.RunEvents(ctx, id1)
	if err != nil {
		t.Fatalf("RunEvents: %v", err)
	}
	wantKinds := []string{"EnemySpawned", "PlayerDamaged", "CarReachedEnd"}
	if len(events) != len(wantKinds) {
		t.Fatalf("events = %+v", events)
	}
	for i, k := range wantKinds {
		if events[i].Kind != k {
			t.Errorf("event %d = %+v, want %s", i, events[i], k)
		}
	}

	limited, err := st.RecentRuns(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Errorf("RecentRuns(1) = %d runs, %v", len(limited), err)
	}
}

func TestSQLiteReopenKeepsHistory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")

	st, err := OpenSQLite(ctx, path, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := st.SaveRun(ctx, RunRecord{Outcome: "timeout"}); err != nil {
		t.Fatal(err)
	}
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}

	st, err = OpenSQLite(ctx, path, zap.NewNop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st.Close()
	runs, err := st.RecentRuns(ctx, 5)
	if err != nil || len(runs) != 1 || runs[0].Outcome != "timeout" {
		t.Errorf("after reopen: %+v, %v", runs, err)
	}
}

func TestOpenDrivers(t *testing.T) {
	ctx := context.Background()

	st, err := Open(ctx, config.DatabaseConfig{}, zap.NewNop())
	if err != nil {
		t.Fatalf("Open disabled: %v", err)
	}
	if _, ok := st.(NopStore); !ok {
		t.Errorf("empty driver opened %T", st)
	}
	if id, err := st.SaveRun(ctx, RunRecord{}); id != 0 || err != nil {
		t.Errorf("NopStore.SaveRun = %d, %v", id, err)
	}

	if _, err := Open(ctx, config.DatabaseConfig{Driver: "mysql"}, zap.NewNop()); err == nil {
		t.Error("unknown driver should fail")
	}
	if _, err := OpenSQLite(ctx, "  ", zap.NewNop()); err == nil {
		t.Error("blank sqlite path should fail")
	}
}

func TestPoolConfig(t *testing.T) {
	const dsn = "postgres://zombierun@localhost:5432/zombierun"
	tests := []struct {
		name         string
		cfg          config.DatabaseConfig
		wantMax      int32
		wantMin      int32
		wantLifetime time.Duration
	}{
		{"sized", config.DatabaseConfig{DSN: dsn, MaxOpenConns: 4, MaxIdleConns: 1, ConnMaxLifetime: 30 * time.Minute}, 4, 1, 30 * time.Minute},
		{"idle capped", config.DatabaseConfig{DSN: dsn, MaxOpenConns: 2, MaxIdleConns: 9}, 2, 2, time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc, err := poolConfig(tt.cfg)
			if err != nil {
				t.Fatal(err)
			}
			if pc.MaxConns != tt.wantMax || pc.MinConns != tt.wantMin || pc.MaxConnLifetime != tt.wantLifetime {
				t.Errorf("max %d min %d lifetime %v", pc.MaxConns, pc.MinConns, pc.MaxConnLifetime)
			}
		})
	}
	if _, err := poolConfig(config.DatabaseConfig{DSN: "postgres://localhost:notaport/zombierun"}); err == nil {
		t.Error("bad dsn should fail")
	}
}
