//go:build !windows

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siwooparkintel/socwatch-post-proc/internal/cli/config"
	"github.com/siwooparkintel/socwatch-post-proc/pkg/core"
)

// newInstallDir builds a fake installation: a directory holding a shell
// script named socwatch.exe that drops the completion marker the way the
// real executable does.
func newInstallDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	script := "#!/bin/sh\ntouch \"$4/$2.csv\"\nexit 0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "socwatch.exe"), []byte(script), 0o750))
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(config.ResetConfig)

	var buf bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestScanCommandJSON(t *testing.T) {
	t.Chdir(t.TempDir())
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "run_000"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "run_000", "cap.etl"), []byte("x"), 0o640))

	out, err := execute(t, "scan", "--output", "json", root)
	require.NoError(t, err)

	var cols []*core.Collection
	require.NoError(t, json.Unmarshal([]byte(out), &cols))
	require.Len(t, cols, 1)
	assert.Equal(t, "cap", cols[0].Prefix)
	assert.Equal(t, "run_000", cols[0].RelDir)
}

func TestScanCommandInvalidRoot(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := execute(t, "scan", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestInstallsCommandJSON(t *testing.T) {
	t.Chdir(t.TempDir())
	installDir := newInstallDir(t)

	out, err := execute(t, "installs", "--output", "json", "--install-dir", installDir)
	require.NoError(t, err)

	var installs []core.Installation
	require.NoError(t, json.Unmarshal([]byte(out), &installs))
	require.Len(t, installs, 1)
	assert.Equal(t, filepath.Join(installDir, "socwatch.exe"), installs[0].Path)
}

func TestInstallsCommandNotFound(t *testing.T) {
	t.Chdir(t.TempDir())
	empty := t.TempDir()

	_, err := execute(t, "installs", "--install-dir", empty)
	require.Error(t, err)
}

func TestRunCommandEndToEnd(t *testing.T) {
	t.Chdir(t.TempDir())
	installDir := newInstallDir(t)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.etl"), []byte("x"), 0o640))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "b.etl"), []byte("x"), 0o640))

	statePath := filepath.Join(t.TempDir(), "history.db")

	out, err := execute(t, "run",
		"--install-dir", installDir,
		"--output", "json",
		"--state", statePath,
		root)
	require.NoError(t, err)

	var report core.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 2, report.Succeeded)

	// The fake executable left markers beside the inputs.
	assert.FileExists(t, filepath.Join(root, "a.csv"))
	assert.FileExists(t, filepath.Join(root, "sub", "b.csv"))

	// A second run over the same tree skips everything.
	out, err = execute(t, "run",
		"--install-dir", installDir,
		"--output", "json",
		"--state", statePath,
		root)
	require.NoError(t, err)

	var second core.Report
	require.NoError(t, json.Unmarshal([]byte(out), &second))
	assert.Equal(t, 2, second.Total)
	assert.Equal(t, 2, second.Skipped)

	// Both batches were recorded in the history store.
	histOut, err := execute(t, "history", "--output", "json", "--state", statePath)
	require.NoError(t, err)
	var runs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(histOut), &runs))
	assert.Len(t, runs, 2)
}

func TestRunCommandJSONEvents(t *testing.T) {
	t.Chdir(t.TempDir())
	installDir := newInstallDir(t)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "cap.etl"), []byte("x"), 0o640))

	out, err := execute(t, "run",
		"--install-dir", installDir,
		"--state", "",
		"--json",
		root)
	require.NoError(t, err)

	var events []map[string]any
	for _, line := range bytes.Split([]byte(out), []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var ev map[string]any
		require.NoError(t, json.Unmarshal(line, &ev))
		events = append(events, ev)
	}

	require.Len(t, events, 3)
	assert.Equal(t, "run_start", events[0]["event"])
	assert.Equal(t, "collection_complete", events[1]["event"])
	assert.Equal(t, "cap", events[1]["collection"])
	assert.Equal(t, "success", events[1]["status"])
	assert.Equal(t, "run_complete", events[2]["event"])
}

func TestRunCommandVersionIndexOutOfRange(t *testing.T) {
	t.Chdir(t.TempDir())
	installDir := newInstallDir(t)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "cap.etl"), []byte("x"), 0o640))

	_, err := execute(t, "run",
		"--install-dir", installDir,
		"--version-index", "5",
		root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, Version)
}
