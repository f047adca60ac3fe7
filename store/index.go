package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// RunRow describes one invocation of the simulator.
type RunRow struct {
	RunID     string
	Seed      int64
	Policy    string
	Episodes  int
	Config    string // YAML of the effective warehouse config
	StartedAt time.Time
}

// EpisodeRow is the summary of one finished episode.
type EpisodeRow struct {
	RunID           string
	Episode         int
	Steps           int
	TotalReward     int
	ItemsSpawned    int
	ItemsCollected  int
	PeakLiveItems   int
	MeanWaitingTime float64
	TracePath       string // empty when the episode was not traced
}

// EpisodeIndex is a SQLite table of runs and their episode summaries.
type EpisodeIndex struct {
	db *sql.DB
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// OpenSQLite opens (creating if needed) the index database at path.
func OpenSQLite(path string) (*EpisodeIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &EpisodeIndex{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			policy TEXT NOT NULL,
			episodes INTEGER NOT NULL,
			config TEXT NOT NULL,
			started_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS episodes (
			run_id TEXT NOT NULL REFERENCES runs(run_id),
			episode INTEGER NOT NULL,
			steps INTEGER NOT NULL,
			total_reward INTEGER NOT NULL,
			items_spawned INTEGER NOT NULL,
			items_collected INTEGER NOT NULL,
			peak_live_items INTEGER NOT NULL,
			mean_waiting_time REAL NOT NULL,
			trace_path TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (run_id, episode)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database.
func (x *EpisodeIndex) Close() error {
	return x.db.Close()
}

// RecordRun inserts a run. It must precede the run's episodes.
func (x *EpisodeIndex) RecordRun(ctx context.Context, r RunRow) error {
	_, err := x.db.ExecContext(ctx,
		`INSERT INTO runs(run_id,seed,policy,episodes,config,started_at) VALUES(?,?,?,?,?,?)`,
		r.RunID, r.Seed, r.Policy, r.Episodes, r.Config, r.StartedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("recording run %s: %w", r.RunID, err)
	}
	return nil
}

// RecordEpisode inserts or replaces one episode summary.
func (x *EpisodeIndex) RecordEpisode(ctx context.Context, e EpisodeRow) error {
	_, err := x.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO episodes(run_id,episode,steps,total_reward,items_spawned,items_collected,peak_live_items,mean_waiting_time,trace_path)
		 VALUES(?,?,?,?,?,?,?,?,?)`,
		e.RunID, e.Episode, e.Steps, e.TotalReward, e.ItemsSpawned, e.ItemsCollected, e.PeakLiveItems, e.MeanWaitingTime, e.TracePath)
	if err != nil {
		return fmt.Errorf("recording episode %d of run %s: %w", e.Episode, e.RunID, err)
	}
	return nil
}

// Runs lists all runs, most recent first.
func (x *EpisodeIndex) Runs(ctx context.Context) ([]RunRow, error) {
	rows, err := x.db.QueryContext(ctx,
		`SELECT run_id,seed,policy,episodes,config,started_at FROM runs ORDER BY started_at DESC, run_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var r RunRow
		var started string
		if err := rows.Scan(&r.RunID, &r.Seed, &r.Policy, &r.Episodes, &r.Config, &started); err != nil {
			return nil, err
		}
		r.StartedAt, err = time.Parse(time.RFC3339Nano, started)
		if err != nil {
			return nil, fmt.Errorf("run %s: bad started_at %q: %w", r.RunID, started, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Episodes lists the episodes of runID in episode order.
func (x *EpisodeIndex) Episodes(ctx context.Context, runID string) ([]EpisodeRow, error) {
	rows, err := x.db.QueryContext(ctx,
		`SELECT run_id,episode,steps,total_reward,items_spawned,items_collected,peak_live_items,mean_waiting_time,trace_path
		 FROM episodes WHERE run_id=? ORDER BY episode`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EpisodeRow
	for rows.Next() {
		var e EpisodeRow
		if err := rows.Scan(&e.RunID, &e.Episode, &e.Steps, &e.TotalReward, &e.ItemsSpawned,
			&e.ItemsCollected, &e.PeakLiveItems, &e.MeanWaitingTime, &e.TracePath); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
