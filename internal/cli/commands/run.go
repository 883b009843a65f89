package commands

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/siwooparkintel/socwatch-post-proc/internal/cli/config"
	"github.com/siwooparkintel/socwatch-post-proc/internal/cli/picker"
	"github.com/siwooparkintel/socwatch-post-proc/internal/engine"
	"github.com/siwooparkintel/socwatch-post-proc/internal/state"
	"github.com/siwooparkintel/socwatch-post-proc/pkg/core"
)

// RunOptions holds options for the run command.
type RunOptions struct {
	JSONEvents bool
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run <input-folder>",
		Short: "Batch process all capture files under a folder",
		Long: `Recursively discover capture files under the input folder, skip the
collections whose completion markers already exist, and run the SocWatch
executable once per remaining collection, one at a time.

Per-collection failures and timeouts are recorded and never abort the
batch; the command exits non-zero only when no installation is found or
the input folder is invalid.`,
		Example: `  # Process a tree of captures
  socwatch-pp run D:\traces

  # Collect results under one folder instead of beside the inputs
  socwatch-pp run --output-dir D:\results D:\traces

  # Pick the second discovered installation without prompting
  socwatch-pp run --version-index 2 D:\traces

  # Emit JSON event lines for CI
  socwatch-pp run --json D:\traces`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.JSONEvents, "json", false, "Output as JSON lines for progress tracking")

	return cmd
}

func runRun(cmd *cobra.Command, inputRoot string, opts *RunOptions) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	logger := config.LoggerFromContext(ctx)

	installs, err := locateInstallations(cfg, logger)
	if err != nil {
		return err
	}

	inst, err := chooseInstallation(installs, cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("using installation", "version", inst.Label, "path", inst.Path)

	store := openStore(cfg, logger)
	if store != nil {
		defer store.Close()
	}

	eng := engine.New(engine.Config{
		InputRoot:  inputRoot,
		OutputRoot: cfg.OutputDir,
		Extension:  cfg.Extension,
		Timeout:    time.Duration(cfg.TimeoutSeconds) * time.Second,
		Store:      store,
		Logger:     logger,
	})

	if opts.JSONEvents {
		emitEvent(cmd, runEvent{Event: "run_start", InputRoot: inputRoot, Installation: inst.Path})
	}

	report, err := eng.Execute(ctx, inst)
	if err != nil {
		return err
	}

	if opts.JSONEvents {
		emitReportEvents(cmd, report)
		return nil
	}
	return newRenderer(cmd, cfg).RenderReport(report)
}

// chooseInstallation resolves which installation to use: an explicit
// 1-based index wins, a single candidate is taken as is, and otherwise the
// user is asked when a terminal is attached. Headless runs take the first
// (base) installation so CI never blocks on a prompt.
func chooseInstallation(installs []core.Installation, cfg *config.Config, logger *slog.Logger) (core.Installation, error) {
	if cfg.VersionIndex > 0 {
		if cfg.VersionIndex > len(installs) {
			return core.Installation{}, fmt.Errorf("version index %d out of range: %d installation(s) found",
				cfg.VersionIndex, len(installs))
		}
		return installs[cfg.VersionIndex-1], nil
	}

	if len(installs) == 1 {
		return installs[0], nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		logger.Info("multiple installations found, no terminal attached: using first",
			"count", len(installs), "version", installs[0].Label)
		return installs[0], nil
	}

	idx, err := picker.Select(installs, cfg.Plain)
	if err != nil {
		return core.Installation{}, err
	}
	return installs[idx], nil
}

// openStore opens the run-history store. History is best effort: any
// problem is logged and the batch proceeds without it.
func openStore(cfg *config.Config, logger *slog.Logger) state.Store {
	if cfg.StatePath == "" {
		return nil
	}
	if err := ensureParentDir(cfg.StatePath); err != nil {
		logger.Warn("cannot create state directory, history disabled", "error", err)
		return nil
	}

	store := state.NewSQLiteStore(logger)
	if err := store.Open(cfg.StatePath); err != nil {
		logger.Warn("cannot open history store, history disabled", "error", err)
		return nil
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		logger.Warn("cannot migrate history store, history disabled", "error", err)
		return nil
	}
	return store
}

// runEvent is one JSON progress line.
type runEvent struct {
	Event        string `json:"event"`
	Timestamp    string `json:"timestamp"`
	InputRoot    string `json:"input_root,omitempty"`
	Installation string `json:"installation,omitempty"`
	Collection   string `json:"collection,omitempty"`
	Status       string `json:"status,omitempty"`
	DurationMS   int64  `json:"duration_ms,omitempty"`
	ExitCode     int    `json:"exit_code,omitempty"`
	Detail       string `json:"detail,omitempty"`
	Total        int    `json:"total,omitempty"`
	Succeeded    int    `json:"succeeded,omitempty"`
	Skipped      int    `json:"skipped,omitempty"`
	Failed       int    `json:"failed,omitempty"`
	TimedOut     int    `json:"timed_out,omitempty"`
	ElapsedMS    int64  `json:"elapsed_ms,omitempty"`
}

func emitReportEvents(cmd *cobra.Command, report *core.Report) {
	for _, o := range report.Outcomes {
		ev := runEvent{
			Event:      "collection_complete",
			Collection: o.Collection.DisplayName(),
			Status:     string(o.Status),
			DurationMS: o.DurationMS,
			ExitCode:   o.ExitCode,
		}
		if o.Reason != "" {
			ev.Detail = o.Reason
		} else if o.Status == core.StatusFailed {
			ev.Detail = o.Stderr
		}
		emitEvent(cmd, ev)
	}

	emitEvent(cmd, runEvent{
		Event:     "run_complete",
		Total:     report.Total,
		Succeeded: report.Succeeded,
		Skipped:   report.Skipped,
		Failed:    report.Failed,
		TimedOut:  report.TimedOut,
		ElapsedMS: report.ElapsedMS,
	})
}

func emitEvent(cmd *cobra.Command, ev runEvent) {
	ev.Timestamp = time.Now().UTC().Format(time.RFC3339)
	data, _ := json.Marshal(ev)
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
}
