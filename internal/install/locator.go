// Package install discovers SocWatch installations on disk.
//
// A base directory is resolved with a strict precedence (explicit flag,
// environment variable, fixed search list, hard-coded fallback), then one
// installation is reported for the base directory itself plus one per
// immediate subdirectory containing the executable. The resulting order is
// deterministic so CLI indices and pickers stay stable.
package install

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/siwooparkintel/socwatch-post-proc/pkg/core"
)

// ErrNotFound is returned when no executable is found anywhere in the
// resolved base directory. Callers report it; it is never retried.
var ErrNotFound = errors.New("no socwatch installation found")

// DefaultExecutable is the executable file name looked for in candidate
// directories. SocWatch ships as a Windows binary.
const DefaultExecutable = "socwatch.exe"

// DefaultEnvVar names the environment variable holding the installation
// base directory.
const DefaultEnvVar = "SOCWATCH_DIR"

// DefaultSearchPaths are the conventional installation locations, probed in
// order after the explicit directory and the environment variable.
var DefaultSearchPaths = []string{
	"D:/socwatch",
	"C:/socwatch",
	"D:/SocWatch",
	"C:/SocWatch",
	"D:/Intel/SocWatch",
	"C:/Intel/SocWatch",
	"C:/Program Files/Intel/SocWatch",
	"C:/Program Files (x86)/Intel/SocWatch",
}

// DefaultFallbackDir is used when every other source comes up empty.
const DefaultFallbackDir = "D:/socwatch"

// Config controls base-directory resolution. The zero value plus
// ApplyDefaults matches the stock SocWatch layout.
type Config struct {
	// ExplicitDir is the user-provided installation directory; highest
	// precedence when set.
	ExplicitDir string
	// EnvVar is the name of the environment variable to consult.
	EnvVar string
	// SearchPaths are probed in order when neither ExplicitDir nor the
	// environment variable yields a usable directory.
	SearchPaths []string
	// FallbackDir is the last resort base directory.
	FallbackDir string
	// Executable is the file name that marks an installation.
	Executable string
	// Logger is optional; a discard logger is used when nil.
	Logger *slog.Logger
}

// ApplyDefaults fills unset fields with the stock values.
func (c *Config) ApplyDefaults() {
	if c.EnvVar == "" {
		c.EnvVar = DefaultEnvVar
	}
	if c.SearchPaths == nil {
		c.SearchPaths = DefaultSearchPaths
	}
	if c.FallbackDir == "" {
		c.FallbackDir = DefaultFallbackDir
	}
	if c.Executable == "" {
		c.Executable = DefaultExecutable
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
}

// Locate resolves the base directory and returns every installation found
// under it: the base directory first if it holds the executable, then one
// per immediate subdirectory holding it, in subdirectory name order.
// Returns ErrNotFound when the resolved base yields nothing.
func Locate(cfg Config) ([]core.Installation, error) {
	cfg.ApplyDefaults()

	base := resolveBaseDir(cfg)
	cfg.Logger.Debug("resolved installation base", "dir", base)

	installs := discover(base, cfg.Executable)
	if len(installs) == 0 {
		return nil, fmt.Errorf("%w in or under %s", ErrNotFound, base)
	}

	cfg.Logger.Debug("discovered installations", "count", len(installs))
	return installs, nil
}

// resolveBaseDir picks the installation base directory. First non-empty
// usable source wins: explicit dir, env var, search list, fallback.
func resolveBaseDir(cfg Config) string {
	if cfg.ExplicitDir != "" {
		if dirExists(cfg.ExplicitDir) {
			return cfg.ExplicitDir
		}
		cfg.Logger.Warn("provided installation directory does not exist", "dir", cfg.ExplicitDir)
	}

	if envDir := os.Getenv(cfg.EnvVar); envDir != "" {
		if dirExists(envDir) {
			return envDir
		}
		cfg.Logger.Warn("environment variable points to missing directory",
			"var", cfg.EnvVar, "dir", envDir)
	}

	for _, p := range cfg.SearchPaths {
		if fileExists(filepath.Join(p, cfg.Executable)) {
			return p
		}
	}

	return cfg.FallbackDir
}

// discover lists installations under base: base itself first, then its
// immediate subdirectories in name order.
func discover(base, executable string) []core.Installation {
	var installs []core.Installation

	if fileExists(filepath.Join(base, executable)) {
		installs = append(installs, core.Installation{
			Path:  filepath.Join(base, executable),
			Label: filepath.Base(base),
		})
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		return installs
	}

	var subdirs []string
	for _, e := range entries {
		if e.IsDir() && fileExists(filepath.Join(base, e.Name(), executable)) {
			subdirs = append(subdirs, e.Name())
		}
	}
	sort.Strings(subdirs)

	for _, name := range subdirs {
		installs = append(installs, core.Installation{
			Path:  filepath.Join(base, name, executable),
			Label: name,
		})
	}

	return installs
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
