// Package persistence records finished pipeline runs in SQLite so
// past analyses can be listed and inspected. The coordinator itself
// never persists anything; callers save the result they were handed.
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lanish19/ravint22-sub001/internal/pipeline"
)

// RunRecord is one persisted pipeline run.
type RunRecord struct {
	ID        string
	Question  string
	Status    string
	Summary   string
	CreatedAt time.Time
}

// OutcomeRecord is one task's resolved outcome within a run.
type OutcomeRecord struct {
	RunID     string
	Task      string
	Status    string
	Attempts  int
	LastError string
	ValueJSON string
}

// Store defines the run-history persistence interface.
type Store interface {
	SaveResult(ctx context.Context, question string, res *pipeline.Result) error
	GetRun(ctx context.Context, runID string) (*RunRecord, []OutcomeRecord, error)
	ListRuns(ctx context.Context) ([]RunRecord, error)
	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-backed store at the given path.
// Creates parent directories if needed. Enables WAL mode, foreign
// keys, and a busy timeout.
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create parent directories: %w", err)
	}

	connStr := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", dbPath)
	return open(ctx, connStr)
}

// NewMemoryStore creates an in-memory store for testing. Uses a shared
// cache so multiple connections see the same database.
func NewMemoryStore(ctx context.Context) (*SQLiteStore, error) {
	return open(ctx, "file::memory:?mode=memory&cache=shared")
}

func open(ctx context.Context, connStr string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// modernc.org/sqlite needs the PRAGMA, not a connection parameter.
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db.SetMaxOpenConns(2)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveResult persists a finished run and every task outcome in one
// transaction.
func (s *SQLiteStore) SaveResult(ctx context.Context, question string, res *pipeline.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, question, status, summary) VALUES (?, ?, ?, ?)`,
		res.RunID, question, res.Status.String(), res.Summary)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", res.RunID, err)
	}

	for task, out := range res.Outcomes {
		valueJSON, err := json.Marshal(out.Value)
		if err != nil {
			return fmt.Errorf("encoding value for task %s: %w", task, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO outcomes (run_id, task, status, attempts, last_error, value_json)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			res.RunID, task, out.Status.String(), out.Attempts, out.LastError, string(valueJSON))
		if err != nil {
			return fmt.Errorf("inserting outcome for task %s: %w", task, err)
		}
	}

	return tx.Commit()
}

// GetRun returns one run and its task outcomes.
func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*RunRecord, []OutcomeRecord, error) {
	var run RunRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT id, question, status, summary, created_at FROM runs WHERE id = ?`, runID).
		Scan(&run.ID, &run.Question, &run.Status, &run.Summary, &run.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil, fmt.Errorf("run %q not found", runID)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("querying run %s: %w", runID, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, task, status, attempts, last_error, value_json
		 FROM outcomes WHERE run_id = ? ORDER BY task`, runID)
	if err != nil {
		return nil, nil, fmt.Errorf("querying outcomes for run %s: %w", runID, err)
	}
	defer rows.Close()

	var outcomes []OutcomeRecord
	for rows.Next() {
		var o OutcomeRecord
		if err := rows.Scan(&o.RunID, &o.Task, &o.Status, &o.Attempts, &o.LastError, &o.ValueJSON); err != nil {
			return nil, nil, fmt.Errorf("scanning outcome: %w", err)
		}
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterating outcomes: %w", err)
	}

	return &run, outcomes, nil
}

// ListRuns returns all runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, question, status, summary, created_at FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.Question, &r.Status, &r.Summary, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	return runs, nil
}
