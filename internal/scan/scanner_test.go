package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siwooparkintel/socwatch-post-proc/internal/testutil"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte("trace data"), 0o640))
}

func TestScanFindsFilesRecursively(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.etl"))
	writeFile(t, filepath.Join(root, "sub", "b.etl"))
	writeFile(t, filepath.Join(root, "sub", "notes.txt"))

	cols, err := Scan(root, ".etl", testutil.NewTestLogger(t))
	require.NoError(t, err)
	require.Len(t, cols, 2)

	byPrefix := map[string]bool{}
	for _, c := range cols {
		byPrefix[c.Prefix] = true
		assert.Len(t, c.Files, 1)
		assert.False(t, c.Multi)
	}
	assert.True(t, byPrefix["a"])
	assert.True(t, byPrefix["b"])
}

func TestScanCaseInsensitiveExtension(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "upper.ETL"))

	cols, err := Scan(root, ".etl", nil)
	require.NoError(t, err)
	require.Len(t, cols, 1)
	assert.Equal(t, "upper", cols[0].Prefix)
}

func TestScanGroupsSessionFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "cap_extraSession.etl"))
	writeFile(t, filepath.Join(root, "cap_hwSession.etl"))
	writeFile(t, filepath.Join(root, "cap_infoSession.etl"))
	writeFile(t, filepath.Join(root, "cap_osSession.etl"))
	writeFile(t, filepath.Join(root, "other.etl"))

	cols, err := Scan(root, ".etl", nil)
	require.NoError(t, err)
	require.Len(t, cols, 2)

	var session, plain int
	for _, c := range cols {
		if c.Prefix == "cap" {
			session++
			assert.True(t, c.Multi)
			assert.Len(t, c.Files, 4)
		} else {
			plain++
			assert.Equal(t, "other", c.Prefix)
			assert.False(t, c.Multi)
		}
	}
	assert.Equal(t, 1, session)
	assert.Equal(t, 1, plain)
}

func TestScanSamePrefixInDifferentDirsStaysSeparate(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "run_000", "cap.etl"))
	writeFile(t, filepath.Join(root, "run_001", "cap.etl"))

	cols, err := Scan(root, ".etl", nil)
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.NotEqual(t, cols[0].Dir, cols[1].Dir)
}

func TestScanRecordsSizesAndRelDir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "deep", "nested", "x.etl"))

	cols, err := Scan(root, ".etl", nil)
	require.NoError(t, err)
	require.Len(t, cols, 1)
	assert.Equal(t, filepath.Join("deep", "nested"), cols[0].RelDir)
	assert.Greater(t, cols[0].TotalSizeMB(), 0.0)
}

func TestScanEmptyTree(t *testing.T) {
	cols, err := Scan(t.TempDir(), ".etl", nil)
	require.NoError(t, err)
	assert.Empty(t, cols)
}

func TestScanInvalidRoot(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "missing"), ".etl", nil)
	require.ErrorIs(t, err, ErrInvalidRoot)
}

func TestScanRootIsFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "file.etl")
	writeFile(t, path)

	_, err := Scan(path, ".etl", nil)
	require.ErrorIs(t, err, ErrInvalidRoot)
}
