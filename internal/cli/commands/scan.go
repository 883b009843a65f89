package commands

import (
	"github.com/spf13/cobra"

	"github.com/siwooparkintel/socwatch-post-proc/internal/cli/config"
	"github.com/siwooparkintel/socwatch-post-proc/internal/scan"
)

// NewScanCommand creates the scan command.
func NewScanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scan <input-folder>",
		Short: "List the capture collections under a folder without processing",
		Long: `Recursively discover capture files and show how they group into
collections (session files sharing a base prefix collapse into one),
with file counts, sizes and locations. Nothing is processed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			logger := config.LoggerFromContext(ctx)

			cols, err := scan.Scan(args[0], cfg.Extension, logger)
			if err != nil {
				return err
			}
			return newRenderer(cmd, cfg).RenderCollections(args[0], cols)
		},
	}
}
