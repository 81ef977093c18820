/*
Package sqlite provides a SQLite-backed store for orchestrated runs.

PURPOSE:
  Persists PeriodResult batches keyed by project and scenario id. The
  engine itself never touches storage - this package is the
  collaborator that lets analysts reload, compare and re-validate past
  runs. In production the same patterns apply to PostgreSQL - only
  minor SQL dialect differences.

KEY TABLES:
  runs:           One row per orchestrated run (project, scenario,
                  period type, created_at)
  period_results: One row per period, payload stored as JSON in
                  derivation order

IMMUTABILITY:
  Runs are write-once: results are recomputed from scratch on every
  invocation upstream, so there is no UPDATE path for period rows.
  Superseded runs are deleted whole.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/statements.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  err = store.SaveRun(ctx, sqlite.RunRecord{...})

SEE ALSO:
  - api/handlers.go: the only writer
  - engine/orchestrator.go: produces the persisted results
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/statement-engine/engine"
)

// ErrRunNotFound is returned when a referenced run doesn't exist.
var ErrRunNotFound = errors.New("run not found")

// RunRecord is one persisted orchestrated run.
type RunRecord struct {
	ID         string
	ProjectID  string
	ScenarioID string
	PeriodType engine.PeriodType
	CreatedAt  time.Time
	Results    []engine.PeriodResult
}

// RunSummary is a listing row without the period payloads.
type RunSummary struct {
	ID          string
	ProjectID   string
	ScenarioID  string
	PeriodType  engine.PeriodType
	PeriodCount int
	CreatedAt   time.Time
}

// Store persists runs using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a store with the given database path. Use ":memory:" for
// an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		scenario_id TEXT NOT NULL,
		period_type TEXT NOT NULL,
		period_count INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_project_scenario
		ON runs(project_id, scenario_id);

	CREATE TABLE IF NOT EXISTS period_results (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		idx INTEGER NOT NULL,
		label TEXT NOT NULL,
		payload_json TEXT NOT NULL,
		PRIMARY KEY (run_id, idx)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveRun persists a run and its period results atomically. A missing
// ID is filled in with a new UUID; the assigned ID is written back to
// the record.
func (s *Store) SaveRun(ctx context.Context, run *RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, project_id, scenario_id, period_type, period_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.ProjectID, run.ScenarioID, string(run.PeriodType),
		len(run.Results), run.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, result := range run.Results {
		payload, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to encode period %d: %w", result.Index, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO period_results (run_id, idx, label, payload_json)
			VALUES (?, ?, ?, ?)`,
			run.ID, result.Index, result.Label, string(payload))
		if err != nil {
			return fmt.Errorf("failed to insert period %d: %w", result.Index, err)
		}
	}

	return tx.Commit()
}

// GetRun loads a run with its full period payloads.
func (s *Store) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run := &RunRecord{}
	var periodType, createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, scenario_id, period_type, created_at
		FROM runs WHERE id = ?`, id).
		Scan(&run.ID, &run.ProjectID, &run.ScenarioID, &periodType, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	run.PeriodType = engine.PeriodType(periodType)
	run.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)

	rows, err := s.db.QueryContext(ctx, `
		SELECT payload_json FROM period_results
		WHERE run_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var result engine.PeriodResult
		if err := json.Unmarshal([]byte(payload), &result); err != nil {
			return nil, fmt.Errorf("failed to decode period payload: %w", err)
		}
		run.Results = append(run.Results, result)
	}
	return run, rows.Err()
}

// ListRuns returns summaries for a project, newest first. scenarioID
// narrows to a single scenario when non-empty.
func (s *Store) ListRuns(ctx context.Context, projectID, scenarioID string) ([]RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, project_id, scenario_id, period_type, period_count, created_at
		FROM runs WHERE project_id = ?`
	args := []any{projectID}
	if scenarioID != "" {
		query += ` AND scenario_id = ?`
		args = append(args, scenarioID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var sum RunSummary
		var periodType, createdAt string
		if err := rows.Scan(&sum.ID, &sum.ProjectID, &sum.ScenarioID,
			&periodType, &sum.PeriodCount, &createdAt); err != nil {
			return nil, err
		}
		sum.PeriodType = engine.PeriodType(periodType)
		sum.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// DeleteRun removes a run and its period rows.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRunNotFound
	}
	return nil
}
