package state

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/siwooparkintel/socwatch-post-proc/pkg/core"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewSQLiteStore creates an unopened store. A nil logger discards.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{logger: logger}
}

// Open opens the database at path. Use ":memory:" for an in-memory store.
func (s *SQLiteStore) Open(path string) error {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open state database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping state database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CreateRun records the start of a batch.
func (s *SQLiteStore) CreateRun(inputRoot, outputRoot, installation string) (*RunRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("state database not opened")
	}

	run := &RunRecord{
		ID:           uuid.New().String(),
		InputRoot:    inputRoot,
		OutputRoot:   outputRoot,
		Installation: installation,
		Status:       RunStatusRunning,
		StartedAt:    time.Now().UTC(),
	}

	s.logger.Debug("creating run record", "run_id", run.ID, "input_root", inputRoot)

	_, err := s.db.Exec(`
		INSERT INTO runs (id, input_root, output_root, installation, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.InputRoot, run.OutputRoot, run.Installation, string(run.Status), run.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create run record: %w", err)
	}
	return run, nil
}

// RecordOutcome appends one collection outcome to a run.
func (s *SQLiteStore) RecordOutcome(runID string, o core.Outcome) error {
	if s.db == nil {
		return fmt.Errorf("state database not opened")
	}

	_, err := s.db.Exec(`
		INSERT INTO outcomes (id, run_id, prefix, dir, status, reason, command, exit_code, duration_ms, stderr)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), runID,
		o.Collection.Prefix, o.Collection.Dir,
		string(o.Status), o.Reason, o.Command, o.ExitCode, o.DurationMS, o.Stderr)
	if err != nil {
		return fmt.Errorf("failed to record outcome: %w", err)
	}
	return nil
}

// CompleteRun finalizes a run with the aggregate report counts.
func (s *SQLiteStore) CompleteRun(runID string, report *core.Report) error {
	if s.db == nil {
		return fmt.Errorf("state database not opened")
	}

	now := time.Now().UTC()
	_, err := s.db.Exec(`
		UPDATE runs
		SET status = ?, total = ?, succeeded = ?, skipped = ?, failed = ?,
		    timed_out = ?, elapsed_ms = ?, completed_at = ?
		WHERE id = ?`,
		string(RunStatusCompleted),
		report.Total, report.Succeeded, report.Skipped, report.Failed,
		report.TimedOut, report.ElapsedMS, now, runID)
	if err != nil {
		return fmt.Errorf("failed to complete run record: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(limit int) ([]*RunRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("state database not opened")
	}

	rows, err := s.db.Query(`
		SELECT id, input_root, output_root, installation, status,
		       total, succeeded, skipped, failed, timed_out, elapsed_ms,
		       started_at, completed_at
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*RunRecord
	for rows.Next() {
		var r RunRecord
		var status string
		if err := rows.Scan(&r.ID, &r.InputRoot, &r.OutputRoot, &r.Installation, &status,
			&r.Total, &r.Succeeded, &r.Skipped, &r.Failed, &r.TimedOut, &r.ElapsedMS,
			&r.StartedAt, &r.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run record: %w", err)
		}
		r.Status = RunStatus(status)
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}

// ListOutcomes returns the outcomes of a run in recorded order.
func (s *SQLiteStore) ListOutcomes(runID string) ([]*OutcomeRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("state database not opened")
	}

	rows, err := s.db.Query(`
		SELECT id, run_id, prefix, dir, status, reason, command, exit_code, duration_ms, stderr
		FROM outcomes
		WHERE run_id = ?
		ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []*OutcomeRecord
	for rows.Next() {
		var o OutcomeRecord
		var status string
		if err := rows.Scan(&o.ID, &o.RunID, &o.Prefix, &o.Dir, &status,
			&o.Reason, &o.Command, &o.ExitCode, &o.DurationMS, &o.Stderr); err != nil {
			return nil, fmt.Errorf("failed to scan outcome record: %w", err)
		}
		o.Status = core.OutcomeStatus(status)
		outcomes = append(outcomes, &o)
	}
	return outcomes, rows.Err()
}
