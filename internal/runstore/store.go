// Package runstore persists agent run records in a local SQLite database.
//
// The store is optional: the dispatcher works without one, and the run
// endpoints report absent history when no store is configured. Bootstrap
// is a single CREATE TABLE IF NOT EXISTS, no migrations, so the store
// can run in constrained environments with a mounted volume.
package runstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// ErrNotFound is returned by Get for unknown run ids.
var ErrNotFound = errors.New("run not found")

// createdAtLayout is fixed width so the stored text orders
// lexicographically by instant.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z"

const schema = `
CREATE TABLE IF NOT EXISTS agent_runs (
	run_id TEXT PRIMARY KEY,
	agent_id TEXT NOT NULL,
	agent_version TEXT NOT NULL,
	success INTEGER NOT NULL,
	input TEXT,
	output TEXT,
	error TEXT,
	duration_ms INTEGER NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_agent_runs_agent ON agent_runs(agent_id, created_at);
`

// Run is one recorded dispatch.
type Run struct {
	ID         string          `json:"run_id"`
	AgentID    string          `json:"agent_id"`
	Version    string          `json:"agent_version"`
	Success    bool            `json:"success"`
	Input      json.RawMessage `json:"input,omitempty"`
	Output     json.RawMessage `json:"output,omitempty"`
	Error      string          `json:"error,omitempty"`
	DurationMS int64           `json:"duration_ms"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Store records dispatches in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the run database at path. The
// special path ":memory:" opens an in-memory database.
func Open(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating run store directory: %w", err)
			}
		}
		dsn = "file:" + path
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening run store: %w", err)
	}
	if path == ":memory:" {
		// Each pooled connection would otherwise get its own empty
		// in-memory database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening run store: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing run store schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put inserts or replaces a run record. A zero CreatedAt defaults to now.
func (s *Store) Put(ctx context.Context, run *Run) error {
	if run.ID == "" {
		return errors.New("run id is required")
	}
	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO agent_runs (
			run_id, agent_id, agent_version, success, input, output, error, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.AgentID,
		run.Version,
		run.Success,
		nullableJSON(run.Input),
		nullableJSON(run.Output),
		nullableString(run.Error),
		run.DurationMS,
		createdAt.UTC().Format(createdAtLayout),
	)
	if err != nil {
		return fmt.Errorf("saving run %s: %w", run.ID, err)
	}
	return nil
}

// Get retrieves one run by id.
func (s *Store) Get(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, agent_id, agent_version, success, input, output, error, duration_ms, created_at
		FROM agent_runs WHERE run_id = ?`, runID)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading run %s: %w", runID, err)
	}
	return run, nil
}

// List returns runs newest first, optionally filtered by agent id.
// A limit of 0 means no limit.
func (s *Store) List(ctx context.Context, agentID string, limit int) ([]*Run, error) {
	query := `
		SELECT run_id, agent_id, agent_version, success, input, output, error, duration_ms, created_at
		FROM agent_runs`
	var args []any
	if agentID != "" {
		query += " WHERE agent_id = ?"
		args = append(args, agentID)
	}
	query += " ORDER BY created_at DESC, run_id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("listing runs: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		run       Run
		input     sql.NullString
		output    sql.NullString
		runErr    sql.NullString
		createdAt string
	)
	err := row.Scan(
		&run.ID,
		&run.AgentID,
		&run.Version,
		&run.Success,
		&input,
		&output,
		&runErr,
		&run.DurationMS,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if input.Valid {
		run.Input = json.RawMessage(input.String)
	}
	if output.Valid {
		run.Output = json.RawMessage(output.String)
	}
	run.Error = runErr.String

	run.CreatedAt, err = time.Parse(createdAtLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
	}
	return &run, nil
}

func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
