package engine

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/siwooparkintel/socwatch-post-proc/internal/scan"
	"github.com/siwooparkintel/socwatch-post-proc/pkg/core"
)

// Execute runs one batch against the given installation. Collections are
// processed strictly one at a time in discovery order; the external tool
// holds system-wide tracing resources, so serial execution keeps failure
// attribution unambiguous and makes output-directory races impossible.
//
// Fatal errors (invalid input root) surface before any work starts; a
// report is never partially built in that case. Per-collection failures
// and timeouts are folded into outcomes and never abort the loop. An empty
// input tree yields an all-zero report, not an error.
func (e *Engine) Execute(ctx context.Context, inst core.Installation) (*core.Report, error) {
	e.logger.Info("starting batch",
		"input_root", e.inputRoot,
		"installation", inst.Label)

	start := time.Now()

	collections, err := scan.Scan(e.inputRoot, e.extension, e.logger)
	if err != nil {
		return nil, err
	}

	report := &core.Report{Installation: inst}
	runID := e.recordRunStart(inst)

	for i, col := range collections {
		if err := ctx.Err(); err != nil {
			// Caller aborted between iterations: stop before starting
			// the next collection, keep what we have.
			e.logger.Warn("batch interrupted", "processed", i, "remaining", len(collections)-i)
			break
		}

		outcome := e.processOne(ctx, col, inst, i+1, len(collections))
		report.Append(outcome)
		e.recordOutcome(runID, outcome)
	}

	report.ElapsedMS = time.Since(start).Milliseconds()
	e.recordRunComplete(runID, report)

	e.logger.Info("batch complete",
		"total", report.Total,
		"succeeded", report.Succeeded,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"timed_out", report.TimedOut,
		"elapsed_ms", report.ElapsedMS)

	return report, nil
}

// processOne resolves the target, applies the skip predicate and invokes
// the runner for a single collection. It is infallible with respect to the
// batch: every path produces an outcome.
func (e *Engine) processOne(ctx context.Context, col *core.Collection, inst core.Installation, pos, total int) core.Outcome {
	e.logger.Debug("considering collection",
		"position", fmt.Sprintf("%d/%d", pos, total),
		"collection", col.DisplayName())

	target := ResolveOutputTarget(col, e.outputRoot)

	// Under an override root the target subdirectory must exist before the
	// skip check runs: both the marker probe and the executable read and
	// write there.
	if e.outputRoot != "" {
		if err := os.MkdirAll(target.Dir, 0o750); err != nil {
			e.logger.Warn("cannot create output directory",
				"collection", col.DisplayName(), "dir", target.Dir, "error", err)
			return core.Outcome{
				Collection: col,
				Status:     core.StatusFailed,
				Reason:     fmt.Sprintf("cannot create output directory %s: %v", target.Dir, err),
			}
		}
	}

	if skip, reason := ShouldSkip(col, target); skip {
		e.logger.Info("skipping collection",
			"collection", col.DisplayName(), "reason", reason)
		return core.Outcome{
			Collection: col,
			Status:     core.StatusSkipped,
			Reason:     reason,
		}
	}

	return e.run.Run(ctx, col, inst, target)
}

// recordRunStart begins a state-store record for this batch. History is
// best effort: a broken store never fails a batch.
func (e *Engine) recordRunStart(inst core.Installation) string {
	if e.store == nil {
		return ""
	}
	run, err := e.store.CreateRun(e.inputRoot, e.outputRoot, inst.Path)
	if err != nil {
		e.logger.Warn("failed to record run start", "error", err)
		return ""
	}
	return run.ID
}

func (e *Engine) recordOutcome(runID string, o core.Outcome) {
	if e.store == nil || runID == "" {
		return
	}
	if err := e.store.RecordOutcome(runID, o); err != nil {
		e.logger.Warn("failed to record outcome", "error", err)
	}
}

func (e *Engine) recordRunComplete(runID string, report *core.Report) {
	if e.store == nil || runID == "" {
		return
	}
	if err := e.store.CompleteRun(runID, report); err != nil {
		e.logger.Warn("failed to record run completion", "error", err)
	}
}
