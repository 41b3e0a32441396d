// Package history logs every fix/diagnose invocation into a DuckDB-backed,
// append-only table so past runs can be queried later (ssrehab history).
// Adapted from the teacher's internal/duckdb.Store, which used the same
// database/sql + go-duckdb scaffolding to cache per-variant annotation
// results; here it logs per-run summaries instead.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection used to log fix/diagnose runs.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at path. An empty path opens an
// in-memory database (used by tests and by callers that don't want
// persistent history).
func Open(path string) (*Store, error) {
	if path != "" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create history directory: %w", err)
			}
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS fix_runs (
		run_id VARCHAR,
		started_at TIMESTAMP,
		command VARCHAR,
		input_path VARCHAR,
		output_path VARCHAR,
		build VARCHAR,
		pass_count INTEGER,
		exit_code INTEGER,
		total_entries BIGINT,
		restored_json VARCHAR,
		lost_json VARCHAR,
		PRIMARY KEY (run_id)
	)`)
	return err
}

// Run is one logged invocation of fix or diagnose.
type Run struct {
	RunID        string
	StartedAt    string // RFC3339; stamped by the caller, not this package
	Command      string
	InputPath    string
	OutputPath   string
	Build        string
	PassCount    int
	ExitCode     int
	TotalEntries int64
	RestoredJSON string
	LostJSON     string
}

// Record inserts one run into the history table.
func (s *Store) Record(r Run) error {
	_, err := s.db.Exec(`INSERT INTO fix_runs
		(run_id, started_at, command, input_path, output_path, build,
		 pass_count, exit_code, total_entries, restored_json, lost_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.StartedAt, r.Command, r.InputPath, r.OutputPath, r.Build,
		r.PassCount, r.ExitCode, r.TotalEntries, r.RestoredJSON, r.LostJSON)
	return err
}

// Recent returns the most recent n runs, newest first.
func (s *Store) Recent(n int) ([]Run, error) {
	rows, err := s.db.Query(`SELECT run_id, started_at, command, input_path,
		output_path, build, pass_count, exit_code, total_entries,
		restored_json, lost_json FROM fix_runs ORDER BY started_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query recent runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.StartedAt, &r.Command, &r.InputPath,
			&r.OutputPath, &r.Build, &r.PassCount, &r.ExitCode, &r.TotalEntries,
			&r.RestoredJSON, &r.LostJSON); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DB returns the underlying *sql.DB for ad-hoc queries.
func (s *Store) DB() *sql.DB {
	return s.db
}
