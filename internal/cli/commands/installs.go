package commands

import (
	"github.com/spf13/cobra"

	"github.com/siwooparkintel/socwatch-post-proc/internal/cli/config"
)

// NewInstallsCommand creates the installs command.
func NewInstallsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "installs",
		Short: "List discovered SocWatch installations",
		Long: `Resolve the installation base directory (explicit --install-dir, then
the SOCWATCH_DIR environment variable, then the conventional locations)
and list every installation found: the base directory first, then one
per version subdirectory. The printed indices are the values accepted
by --version-index.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			logger := config.LoggerFromContext(ctx)

			installs, err := locateInstallations(cfg, logger)
			if err != nil {
				return err
			}
			return newRenderer(cmd, cfg).RenderInstallations(installs)
		},
	}
}
