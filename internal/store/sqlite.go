package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/me/schedsim/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns a Store.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// Every connection to ":memory:" is a separate database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

func (s *SQLiteStore) SaveRun(ctx context.Context, report *model.Report, params any) error {
	s.logger.Debug("sql", "op", "insert", "table", "runs", "id", report.RunID)

	paramsJSON := []byte("{}")
	if params != nil {
		var err error
		if paramsJSON, err = json.Marshal(params); err != nil {
			return fmt.Errorf("marshal params: %w", err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	c := report.Counters
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, state, interrupted, sim_time, ticks, total, admitted, dispatched, completed, preempted, rejected, started_at, finished_at, params)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.RunID, string(report.State), boolToInt(report.Interrupted), report.Time, report.Ticks,
		c.Total, c.Admitted, c.Dispatched, c.Completed, c.Preempted, c.Rejected,
		report.StartedAt.Format(time.RFC3339Nano), report.FinishedAt.Format(time.RFC3339Nano),
		string(paramsJSON),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, r := range report.Rejections {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO rejections (run_id, seq, task_id, priority, sim_time, message) VALUES (?, ?, ?, ?, ?, ?)`,
			report.RunID, i, r.TaskID, r.Priority, r.Time, r.Message,
		)
		if err != nil {
			return fmt.Errorf("insert rejection %d: %w", i, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	s.logger.Debug("sql", "op", "select", "table", "runs", "id", id)

	run, err := scanRun(s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT task_id, priority, sim_time, message FROM rejections WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var r model.Rejection
		if err := rows.Scan(&r.TaskID, &r.Priority, &r.Time, &r.Message); err != nil {
			return nil, err
		}
		run.Rejections = append(run.Rejections, r)
	}
	return run, rows.Err()
}

// ListRuns returns runs newest first. Rejection ledgers are not loaded; use
// GetRun for a single run's ledger.
func (s *SQLiteStore) ListRuns(ctx context.Context, opts model.ListOptions) ([]*model.Run, int, error) {
	s.logger.Debug("sql", "op", "list", "table", "runs", "limit", opts.Limit, "offset", opts.Offset, "state", opts.State)
	opts.Clamp()

	where, args := "", []any{}
	if opts.State != "" {
		where = " WHERE state = ?"
		args = append(args, opts.State)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs`+where+` ORDER BY started_at DESC, id LIMIT ? OFFSET ?`,
		append(args, opts.Limit, opts.Offset)...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var runs []*model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, err
		}
		runs = append(runs, run)
	}
	return runs, total, rows.Err()
}

func (s *SQLiteStore) DeleteRun(ctx context.Context, id string) error {
	s.logger.Debug("sql", "op", "delete", "table", "runs", "id", id)

	// foreign_keys is per connection, so the cascade is not relied on.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM rejections WHERE run_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

const runColumns = `id, state, interrupted, sim_time, ticks, total, admitted, dispatched, completed, preempted, rejected, started_at, finished_at, params`

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*model.Run, error) {
	var run model.Run
	var state, startedAt, finishedAt, params string
	var interrupted int
	c := &run.Counters

	err := row.Scan(&run.RunID, &state, &interrupted, &run.Time, &run.Ticks,
		&c.Total, &c.Admitted, &c.Dispatched, &c.Completed, &c.Preempted, &c.Rejected,
		&startedAt, &finishedAt, &params)
	if err != nil {
		return nil, err
	}

	run.State = model.RunState(state)
	run.Interrupted = interrupted != 0
	run.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
	run.FinishedAt, _ = time.Parse(time.RFC3339Nano, finishedAt)
	if params != "" && params != "{}" {
		run.Params = json.RawMessage(params)
	}
	return &run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
