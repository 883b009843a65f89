package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siwooparkintel/socwatch-post-proc/pkg/core"
)

func TestShouldSkipNoMarkers(t *testing.T) {
	dir := t.TempDir()
	col := &core.Collection{Prefix: "cap", Dir: dir}

	skip, reason := ShouldSkip(col, core.OutputTarget{Dir: dir})
	assert.False(t, skip)
	assert.Empty(t, reason)
}

func TestShouldSkipOnSummaryMarker(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cap.csv"), []byte("x"), 0o640))
	col := &core.Collection{Prefix: "cap", Dir: dir}

	skip, reason := ShouldSkip(col, core.OutputTarget{Dir: dir})
	assert.True(t, skip)
	assert.Contains(t, reason, "cap.csv")
}

func TestShouldSkipOnWakeupMarker(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cap_WakeupAnalysis.csv"), []byte("x"), 0o640))
	col := &core.Collection{Prefix: "cap", Dir: dir}

	skip, _ := ShouldSkip(col, core.OutputTarget{Dir: dir})
	assert.True(t, skip)
}

func TestShouldSkipIgnoresOtherPrefixes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.csv"), []byte("x"), 0o640))
	col := &core.Collection{Prefix: "cap", Dir: dir}

	skip, _ := ShouldSkip(col, core.OutputTarget{Dir: dir})
	assert.False(t, skip)
}

func TestShouldSkipIgnoresMarkerDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "cap.csv"), 0o750))
	col := &core.Collection{Prefix: "cap", Dir: dir}

	skip, _ := ShouldSkip(col, core.OutputTarget{Dir: dir})
	assert.False(t, skip)
}

func TestResolveOutputTargetDefault(t *testing.T) {
	col := &core.Collection{Prefix: "cap", Dir: filepath.Join("data", "run_000")}

	target := ResolveOutputTarget(col, "")
	assert.Equal(t, col.Dir, target.Dir)
	assert.Empty(t, target.GroupName)
}

func TestResolveOutputTargetOverride(t *testing.T) {
	col := &core.Collection{Prefix: "cap", Dir: filepath.Join("traces", "session_A", "run_000")}

	target := ResolveOutputTarget(col, "out")
	assert.Equal(t, "session_A_run_000", target.GroupName)
	assert.Equal(t, filepath.Join("out", "session_A_run_000"), target.Dir)
}

func TestResolveOutputTargetIsDeterministic(t *testing.T) {
	col := &core.Collection{Prefix: "cap", Dir: filepath.Join("traces", "session_A", "run_000")}

	first := ResolveOutputTarget(col, "out")
	second := ResolveOutputTarget(col, "out")
	assert.Equal(t, first, second)
}

func TestResolveOutputTargetCollisionGroups(t *testing.T) {
	a := &core.Collection{Prefix: "cap", Dir: filepath.Join("traces", "session_A", "run_000")}
	b := &core.Collection{Prefix: "cap", Dir: filepath.Join("traces", "session_B", "run_000")}

	// Same prefix and leaf folder name in different subtrees must not
	// share a target.
	assert.NotEqual(t, ResolveOutputTarget(a, "out").Dir, ResolveOutputTarget(b, "out").Dir)
}
