// Package cli provides the command-line interface for socwatch-pp.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/siwooparkintel/socwatch-post-proc/internal/cli/commands"
	"github.com/siwooparkintel/socwatch-post-proc/internal/cli/config"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "socwatch-pp",
		Short: "Batch post-processor for SocWatch capture files",
		Long: `socwatch-pp batch processes SocWatch capture files (.etl) with a
discovered SocWatch installation.

It recursively scans an input folder, groups session files into
collections, skips collections whose completion markers already exist,
runs the SocWatch executable once per remaining collection with a
per-collection timeout, and reports aggregate results.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger := newLogger(cfg.Verbose)

			ctx := config.WithConfig(cmd.Context(), cfg)
			ctx = config.WithLogger(ctx, logger)
			cmd.SetContext(ctx)

			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					fmt.Fprintf(os.Stderr, "Using config file: %s\n", configFile)
				}
			}

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./socwatch-pp.yaml)")
	rootCmd.PersistentFlags().String("install-dir", "", "SocWatch installation directory (overrides SOCWATCH_DIR)")
	rootCmd.PersistentFlags().String("output-dir", "", "Collect all outputs under this folder instead of beside the inputs")
	rootCmd.PersistentFlags().Int("timeout", config.DefaultTimeoutSeconds, "Per-collection processing timeout in seconds")
	rootCmd.PersistentFlags().String("extension", config.DefaultExtension, "Capture file extension to scan for")
	rootCmd.PersistentFlags().String("executable", "", "Installation executable file name (default socwatch.exe)")
	rootCmd.PersistentFlags().String("state", config.DefaultStateFile, "Run-history database path (empty disables history)")
	rootCmd.PersistentFlags().Int("version-index", 0, "Pick an installation by 1-based index instead of prompting")
	rootCmd.PersistentFlags().Bool("plain", false, "Use the plain numeric picker instead of the TUI one")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (auto|text|json)")

	// Register completion for output flag
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(commands.NewScanCommand())
	rootCmd.AddCommand(commands.NewInstallsCommand())
	rootCmd.AddCommand(commands.NewHistoryCommand())
	rootCmd.AddCommand(commands.NewVersionCommand(Version, BuildDate, GitCommit))

	return rootCmd
}

// newLogger builds the process logger. Debug level with --verbose,
// info and up otherwise.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Execute runs the root command with the given context. The context is
// checked between collections, so cancelling it stops the batch before the
// next file starts.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
