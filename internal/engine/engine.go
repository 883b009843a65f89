// Package engine orchestrates one batch run: it scans the input tree for
// collections, filters already-processed ones through the skip predicate,
// invokes the runner for the survivors strictly one at a time, and
// aggregates everything into a report.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/siwooparkintel/socwatch-post-proc/internal/runner"
	"github.com/siwooparkintel/socwatch-post-proc/internal/state"
	"github.com/siwooparkintel/socwatch-post-proc/pkg/core"
)

// CollectionRunner invokes the external executable for one collection.
// Implementations never return an error; every result is an outcome.
type CollectionRunner interface {
	Run(ctx context.Context, col *core.Collection, inst core.Installation, target core.OutputTarget) core.Outcome
}

// Config holds engine configuration. Each run gets its own config so tests
// and concurrent callers never share mutable state.
type Config struct {
	// InputRoot is the folder scanned for capture files.
	InputRoot string
	// OutputRoot, when set, relocates all output targets under it with
	// collision-group subdirectory naming. Empty means outputs land
	// beside the inputs.
	OutputRoot string
	// Extension is the capture file extension (default ".etl").
	Extension string
	// Timeout is the per-collection processing budget
	// (default 1800 seconds).
	Timeout time.Duration
	// Runner overrides the process runner; mainly for tests.
	Runner CollectionRunner
	// Store, when non-nil, records the run and its outcomes.
	Store state.Store
	// Logger is the structured logger (discard if nil).
	Logger *slog.Logger
}

// Engine executes batch runs.
type Engine struct {
	inputRoot  string
	outputRoot string
	extension  string
	run        CollectionRunner
	store      state.Store
	logger     *slog.Logger
}

// New creates an engine from the given configuration.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r := cfg.Runner
	if r == nil {
		r = runner.New(logger, cfg.Timeout)
	}

	return &Engine{
		inputRoot:  cfg.InputRoot,
		outputRoot: cfg.OutputRoot,
		extension:  cfg.Extension,
		run:        r,
		store:      cfg.Store,
		logger:     logger,
	}
}
