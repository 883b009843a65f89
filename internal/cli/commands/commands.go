// Package commands implements the socwatch-pp subcommands.
package commands

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/siwooparkintel/socwatch-post-proc/internal/cli/config"
	"github.com/siwooparkintel/socwatch-post-proc/internal/cli/output"
	"github.com/siwooparkintel/socwatch-post-proc/internal/install"
	"github.com/siwooparkintel/socwatch-post-proc/pkg/core"
)

// locateInstallations discovers installations using the configured explicit
// directory and executable name.
func locateInstallations(cfg *config.Config, logger *slog.Logger) ([]core.Installation, error) {
	return install.Locate(install.Config{
		ExplicitDir: cfg.InstallDir,
		Executable:  cfg.Executable,
		Logger:      logger,
	})
}

// newRenderer builds the renderer for a command from the configured output
// format.
func newRenderer(cmd *cobra.Command, cfg *config.Config) *output.Renderer {
	return output.NewRenderer(cmd.OutOrStdout(), output.Mode(cfg.OutputFormat))
}

// ensureParentDir creates the parent directory of a file path.
func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o750)
}
