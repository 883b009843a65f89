// Package runner invokes the SocWatch executable once per collection and
// classifies the result.
package runner

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"time"

	"github.com/siwooparkintel/socwatch-post-proc/pkg/core"
)

// DefaultTimeout is the per-collection processing budget. Large captures
// take minutes; 30 minutes is the hard ceiling before the process is
// killed.
const DefaultTimeout = 1800 * time.Second

// killGrace bounds how long we wait for the process to exit after the
// timeout fires.
const killGrace = 10 * time.Second

// Runner executes the external executable for one collection.
type Runner struct {
	logger  *slog.Logger
	timeout time.Duration
}

// New creates a runner. A nil logger discards; a zero timeout means
// DefaultTimeout.
func New(logger *slog.Logger, timeout time.Duration) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{logger: logger, timeout: timeout}
}

// Timeout returns the per-collection budget.
func (r *Runner) Timeout() time.Duration {
	return r.timeout
}

// Run invokes the executable as `<exe> -i <prefix> -o <outDir>` with the
// working directory set to the collection's containing directory. SocWatch
// resolves its input by prefix relative to the current working directory,
// not by absolute path; that contract must be preserved exactly.
//
// Exit 0 classifies as success, exceeding the budget as timed out (the
// process is killed, never left running), any other exit as failure with
// stderr attached verbatim. Run never returns an error: every result is an
// outcome so one bad collection cannot abort the batch.
func (r *Runner) Run(ctx context.Context, col *core.Collection, inst core.Installation, target core.OutputTarget) core.Outcome {
	args := []string{"-i", col.Prefix, "-o", target.Dir}
	command := core.CommandLine(inst.Path, args)

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, inst.Path, args...)
	cmd.Dir = col.Dir
	cmd.WaitDelay = killGrace

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Info("processing collection",
		"collection", col.DisplayName(),
		"workdir", col.Dir,
		"output", target.Dir)
	r.logger.Debug("invoking executable", "command", command)

	start := time.Now()
	err := cmd.Run()
	durationMS := time.Since(start).Milliseconds()

	outcome := core.Outcome{
		Collection: col,
		Command:    command,
		DurationMS: durationMS,
	}

	switch {
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		outcome.Status = core.StatusTimedOut
		outcome.Reason = "exceeded processing budget of " + r.timeout.String()
		r.logger.Warn("collection timed out",
			"collection", col.DisplayName(), "timeout", r.timeout)
	case err == nil:
		outcome.Status = core.StatusSuccess
		r.logger.Info("collection processed",
			"collection", col.DisplayName(), "duration_ms", durationMS)
	default:
		outcome.Status = core.StatusFailed
		outcome.ExitCode = exitCode(err)
		outcome.Stderr = stderr.String()
		r.logger.Warn("collection failed",
			"collection", col.DisplayName(),
			"exit_code", outcome.ExitCode,
			"duration_ms", durationMS)
	}

	return outcome
}

// exitCode extracts the process exit code, or -1 when the process never
// started or was killed.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
