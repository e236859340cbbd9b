package persist

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// PostgresStore keeps the run history in PostgreSQL.
type PostgresStore struct {
	db *DB
}

func NewPostgresStore(db *DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// SaveRun inserts the run and copies its events in a single transaction.
func (s *PostgresStore) SaveRun(ctx context.Context, r RunRecord) (int64, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("run begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	if err := tx.QueryRow(ctx,
		`INSERT INTO runs (seed, round, outcome, ticks, distance, kills, shots_fired, hits,
		                   damage_taken, spawned, started_at, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id`,
		r.Seed, r.Round, r.Outcome, r.Ticks, r.Distance, r.Kills, r.ShotsFired, r.Hits,
		r.DamageTaken, r.Spawned, r.StartedAt, r.FinishedAt,
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("run insert: %w", err)
	}

	if len(r.Events) > 0 {
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"run_events"},
			[]string{"run_id", "tick", "kind", "value"},
			pgx.CopyFromSlice(len(r.Events), func(i int) ([]any, error) {
				e := r.Events[i]
				return []any{id, e.Tick, e.Kind, e.Value}, nil
			}),
		)
		if err != nil {
			return 0, fmt.Errorf("run events copy: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("run commit: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	rows, err := s.db.Pool.Query(ctx,
		`SELECT id, seed, round, outcome, ticks, distance, kills, shots_fired, hits,
		        damage_taken, spawned, started_at, finished_at
		 FROM runs ORDER BY id DESC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (RunRecord, error) {
		var r RunRecord
		err := row.Scan(
			&r.ID, &r.Seed, &r.Round, &r.Outcome, &r.Ticks, &r.Distance, &r.Kills, &r.ShotsFired, &r.Hits,
			&r.DamageTaken, &r.Spawned, &r.StartedAt, &r.FinishedAt,
		)
		return r, err
	})
}

func (s *PostgresStore) RunEvents(ctx context.Context, runID int64) ([]RunEvent, error) {
	rows, err := s.db.Pool.Query(ctx,
		`SELECT tick, kind, value FROM run_events WHERE run_id = $1 ORDER BY tick, id`, runID,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[RunEvent])
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}

var _ Store = (*PostgresStore)(nil)
