package persist

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the run history in a local SQLite file.
type SQLiteStore struct {
	db  *sql.DB
	log *zap.Logger
}

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

// OpenSQLite opens (creating if needed) the database file at path and applies
// the embedded migrations.
func OpenSQLite(ctx context.Context, path string, log *zap.Logger) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := RunMigrations(ctx, db, dialectSQLite); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	log.Info("sqlite run history opened", zap.String("path", path))
	return &SQLiteStore{db: db, log: log}, nil
}

// SaveRun inserts the run and its events in a single transaction.
func (s *SQLiteStore) SaveRun(ctx context.Context, r RunRecord) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("run begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (seed, round, outcome, ticks, distance, kills, shots_fired, hits,
		                   damage_taken, spawned, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Seed, r.Round, r.Outcome, r.Ticks, r.Distance, r.Kills, r.ShotsFired, r.Hits,
		r.DamageTaken, r.Spawned, toMillis(r.StartedAt), toMillis(r.FinishedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("run insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	if len(r.Events) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO run_events (run_id, tick, kind, value) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return 0, fmt.Errorf("run events prepare: %w", err)
		}
		defer stmt.Close()
		for _, e := range r.Events {
			if _, err := stmt.ExecContext(ctx, id, e.Tick, e.Kind, e.Value); err != nil {
				return 0, fmt.Errorf("run event insert: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("run commit: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, seed, round, outcome, ticks, distance, kills, shots_fired, hits,
		        damage_taken, spawned, started_at, finished_at
		 FROM runs ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		var started, finished int64
		if err := rows.Scan(
			&r.ID, &r.Seed, &r.Round, &r.Outcome, &r.Ticks, &r.Distance, &r.Kills, &r.ShotsFired, &r.Hits,
			&r.DamageTaken, &r.Spawned, &started, &finished,
		); err != nil {
			return nil, err
		}
		r.StartedAt = fromMillis(started)
		r.FinishedAt = fromMillis(finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) RunEvents(ctx context.Context, runID int64) ([]RunEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tick, kind, value FROM run_events WHERE run_id = ? ORDER BY tick, id`, runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunEvent
	for rows.Next() {
		var e RunEvent
		if err := rows.Scan(&e.Tick, &e.Kind, &e.Value); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
