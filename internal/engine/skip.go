package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/siwooparkintel/socwatch-post-proc/pkg/core"
)

// markerSuffixes are the output files whose presence proves a collection
// was already processed. Presence alone is the completion marker; contents
// are never inspected. A partially written marker from a killed run is
// indistinguishable from a complete one and causes an incorrect skip; that
// is a documented limitation of the format, not something this check
// papers over.
var markerSuffixes = []string{
	".csv",
	"_WakeupAnalysis.csv",
}

// ShouldSkip reports whether prior output already satisfies the collection,
// with a human-readable reason naming the marker found. Reprocessing costs
// minutes per capture, so the executable's own outputs are trusted as
// completion markers.
func ShouldSkip(col *core.Collection, target core.OutputTarget) (bool, string) {
	for _, suffix := range markerSuffixes {
		marker := filepath.Join(target.Dir, col.Prefix+suffix)
		if info, err := os.Stat(marker); err == nil && !info.IsDir() {
			return true, fmt.Sprintf("already processed: found %s", filepath.Base(marker))
		}
	}
	return false, ""
}
