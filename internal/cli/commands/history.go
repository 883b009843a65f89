package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/siwooparkintel/socwatch-post-proc/internal/cli/config"
	"github.com/siwooparkintel/socwatch-post-proc/internal/state"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Limit int
	RunID string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent batch runs from the history store",
		Long: `List recent batch runs recorded in the run-history database, newest
first. Use --run to show the per-collection outcomes of one run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 10, "Maximum number of runs to show")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "Show the outcomes of a single run by ID")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	logger := config.LoggerFromContext(ctx)

	if cfg.StatePath == "" {
		return fmt.Errorf("run history is disabled (state path is empty)")
	}

	store := state.NewSQLiteStore(logger)
	if err := store.Open(cfg.StatePath); err != nil {
		return fmt.Errorf("cannot open history store: %w", err)
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		return fmt.Errorf("cannot migrate history store: %w", err)
	}

	renderer := newRenderer(cmd, cfg)

	if opts.RunID != "" {
		outcomes, err := store.ListOutcomes(opts.RunID)
		if err != nil {
			return err
		}
		return renderer.RenderOutcomeRecords(outcomes)
	}

	runs, err := store.ListRuns(opts.Limit)
	if err != nil {
		return err
	}
	return renderer.RenderRuns(runs)
}
