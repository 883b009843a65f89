// Package scan discovers trace capture files under an input root and groups
// them into collections.
//
// SocWatch splits one capture into several session files sharing a base
// prefix (foo_hwSession.etl, foo_osSession.etl, ...). The scanner collapses
// those into a single collection so the batch invokes the executable once
// per capture, not once per file.
package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/siwooparkintel/socwatch-post-proc/pkg/core"
)

// ErrInvalidRoot is returned when the input root does not exist or is not a
// directory. Checked before any scanning begins.
var ErrInvalidRoot = errors.New("invalid input root")

// DefaultExtension is the capture file extension scanned for.
const DefaultExtension = ".etl"

// sessionSuffixes are the per-session file name suffixes that collapse into
// one collection keyed by the remaining base prefix.
var sessionSuffixes = []string{
	"_extraSession",
	"_hwSession",
	"_infoSession",
	"_osSession",
}

// Scan walks root recursively and returns one collection per base prefix
// and directory, in directory-traversal order. The extension match is
// case-insensitive. Ordering is only meaningful within a single run; a
// fresh scan is required per run so the engine never sees a stale listing.
func Scan(root, extension string, logger *slog.Logger) ([]*core.Collection, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if extension == "" {
		extension = DefaultExtension
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRoot, root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: not a directory: %s", ErrInvalidRoot, root)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRoot, root, err)
	}

	logger.Debug("scanning for capture files", "root", absRoot, "extension", extension)

	var (
		collections []*core.Collection
		index       = make(map[string]*core.Collection)
		fileCount   int
	)

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(d.Name()), extension) {
			return nil
		}

		fileCount++
		dir := filepath.Dir(path)
		name := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))
		prefix, isSession := stripSessionSuffix(name)

		key := filepath.Join(dir, prefix)
		col, ok := index[key]
		if !ok {
			relDir, relErr := filepath.Rel(absRoot, dir)
			if relErr != nil {
				relDir = dir
			}
			col = &core.Collection{
				Prefix: prefix,
				Dir:    dir,
				RelDir: relDir,
			}
			index[key] = col
			collections = append(collections, col)
		}

		col.Files = append(col.Files, core.TraceFile{
			Path:   path,
			Name:   name,
			SizeMB: sizeMB(d),
		})
		if isSession || len(col.Files) > 1 {
			col.Multi = true
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan failed under %s: %w", absRoot, err)
	}

	logger.Debug("scan complete", "files", fileCount, "collections", len(collections))
	return collections, nil
}

// stripSessionSuffix removes a session suffix from a file name, reporting
// whether one was present.
func stripSessionSuffix(name string) (string, bool) {
	for _, suffix := range sessionSuffixes {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix), true
		}
	}
	return name, false
}

func sizeMB(d fs.DirEntry) float64 {
	info, err := d.Info()
	if err != nil {
		return 0
	}
	return float64(info.Size()) / (1024 * 1024)
}
