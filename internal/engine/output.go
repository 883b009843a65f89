package engine

import (
	"path/filepath"

	"github.com/siwooparkintel/socwatch-post-proc/pkg/core"
)

// ResolveOutputTarget derives the output directory for a collection. It is
// a pure function of the collection and the output root: the same inputs
// always yield the same target, which keeps skip-detection idempotent
// across runs.
//
// Without an output root the target is the collection's own directory.
// With one, the target is a subdirectory named after the collision group
// (parent folder plus containing folder) so identically-prefixed captures
// from different source subfolders never share a target.
func ResolveOutputTarget(col *core.Collection, outputRoot string) core.OutputTarget {
	if outputRoot == "" {
		return core.OutputTarget{Dir: col.Dir}
	}

	group := filepath.Base(filepath.Dir(col.Dir)) + "_" + filepath.Base(col.Dir)
	return core.OutputTarget{
		Dir:       filepath.Join(outputRoot, group),
		GroupName: group,
	}
}
