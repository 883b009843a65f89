// Package state persists batch run history in SQLite. Each run and its
// per-collection outcomes are recorded so past batches can be inspected
// without re-running anything. The store is optional: the engine runs fine
// without one.
package state

import (
	"time"

	"github.com/siwooparkintel/socwatch-post-proc/pkg/core"
)

// RunStatus tracks the lifecycle of a recorded batch run.
type RunStatus string

const (
	// RunStatusRunning marks a batch that has started but not finished.
	RunStatusRunning RunStatus = "running"
	// RunStatusCompleted marks a finished batch, regardless of per-file
	// failures.
	RunStatusCompleted RunStatus = "completed"
)

// RunRecord is one persisted batch run.
type RunRecord struct {
	ID           string
	InputRoot    string
	OutputRoot   string
	Installation string
	Status       RunStatus
	Total        int
	Succeeded    int
	Skipped      int
	Failed       int
	TimedOut     int
	ElapsedMS    int64
	StartedAt    time.Time
	CompletedAt  *time.Time
}

// OutcomeRecord is one persisted per-collection outcome.
type OutcomeRecord struct {
	ID         string
	RunID      string
	Prefix     string
	Dir        string
	Status     core.OutcomeStatus
	Reason     string
	Command    string
	ExitCode   int
	DurationMS int64
	Stderr     string
}

// Store records batch runs and their outcomes.
type Store interface {
	// CreateRun records the start of a batch.
	CreateRun(inputRoot, outputRoot, installation string) (*RunRecord, error)
	// RecordOutcome appends one collection outcome to a run.
	RecordOutcome(runID string, o core.Outcome) error
	// CompleteRun finalizes a run with the aggregate report counts.
	CompleteRun(runID string, report *core.Report) error
	// ListRuns returns the most recent runs, newest first.
	ListRuns(limit int) ([]*RunRecord, error)
	// ListOutcomes returns the outcomes of a run in recorded order.
	ListOutcomes(runID string) ([]*OutcomeRecord, error)
	// Close releases the underlying database.
	Close() error
}
