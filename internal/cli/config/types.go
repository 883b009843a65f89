// Package config provides layered configuration for the socwatch-pp CLI.
//
// Precedence, highest to lowest: CLI flags > SOCWATCHPP_* environment
// variables > socwatch-pp.yaml config file > built-in defaults. The loaded
// Config is an explicit value passed down to commands, never mutable module
// state, so independent runs and tests cannot interfere with each other.
package config

import (
	"context"
	"log/slog"
)

// Config holds all CLI configuration options.
type Config struct {
	// InstallDir is an explicit SocWatch installation directory; overrides
	// the SOCWATCH_DIR environment variable and the search list.
	InstallDir string `koanf:"install_dir"`
	// OutputDir relocates per-collection outputs under one root instead of
	// beside each input file. Empty means outputs land beside the inputs.
	OutputDir string `koanf:"output_dir"`
	// StatePath is the run-history SQLite database. Empty disables history.
	StatePath string `koanf:"state_path"`
	// TimeoutSeconds is the per-collection processing budget.
	TimeoutSeconds int `koanf:"timeout"`
	// Extension is the capture file extension scanned for.
	Extension string `koanf:"extension"`
	// Executable is the installation executable file name.
	Executable string `koanf:"executable"`
	// VersionIndex picks an installation by 1-based index without prompting.
	// Zero means ask (or take the first when not interactive).
	VersionIndex int `koanf:"version_index"`
	// Plain forces the numeric console picker instead of the TUI one.
	Plain bool `koanf:"plain"`
	// Verbose enables debug logging.
	Verbose bool `koanf:"verbose"`
	// OutputFormat selects report rendering: auto, text or json.
	OutputFormat string `koanf:"output"`
}

// Default configuration values.
const (
	DefaultStateFile      = ".socwatch-pp/history.db"
	DefaultTimeoutSeconds = 1800
	DefaultExtension      = ".etl"
	DefaultOutput         = "auto" // TTY=text, non-TTY=json
)

type configKey struct{}
type loggerKey struct{}

// WithConfig stores the config in the context.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from the context, falling back to
// defaults when absent.
func FromContext(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	return &Config{
		StatePath:      DefaultStateFile,
		TimeoutSeconds: DefaultTimeoutSeconds,
		Extension:      DefaultExtension,
		OutputFormat:   DefaultOutput,
	}
}

// WithLogger stores the logger in the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// LoggerFromContext retrieves the logger from the context, with a discard
// logger as safe fallback.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
