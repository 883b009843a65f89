// Package core defines the shared domain types for socwatch-post-proc:
// installations, trace collections, output targets, per-collection outcomes
// and the aggregate batch report.
package core

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Installation is one discovered copy of the SocWatch executable.
type Installation struct {
	// Path is the absolute path to the executable.
	Path string `json:"path"`
	// Label is the display identifier, usually the version folder name.
	Label string `json:"label"`
}

func (i Installation) String() string {
	return fmt.Sprintf("%s (%s)", i.Label, i.Path)
}

// TraceFile is a single capture file on disk.
type TraceFile struct {
	// Path is the absolute path to the file.
	Path string `json:"path"`
	// Name is the file name without extension.
	Name string `json:"name"`
	// SizeMB is the file size in megabytes.
	SizeMB float64 `json:"size_mb"`
}

// Collection is one unit of work: a trace file, or a group of session files
// sharing a base prefix in the same directory. SocWatch resolves its input
// by prefix relative to the current working directory, so the containing
// directory is part of the identity.
type Collection struct {
	// Prefix is the base file name the executable is invoked with (-i).
	Prefix string `json:"prefix"`
	// Dir is the absolute path of the containing directory.
	Dir string `json:"dir"`
	// RelDir is Dir relative to the scanned input root.
	RelDir string `json:"rel_dir"`
	// Files are the capture files belonging to this collection,
	// in discovery order.
	Files []TraceFile `json:"files"`
	// Multi reports whether this is a multi-file session collection.
	Multi bool `json:"multi"`
}

// TotalSizeMB returns the combined size of all files in the collection.
func (c *Collection) TotalSizeMB() float64 {
	var total float64
	for _, f := range c.Files {
		total += f.SizeMB
	}
	return total
}

// DisplayName returns the collection's path relative to the input root.
func (c *Collection) DisplayName() string {
	if c.RelDir == "" || c.RelDir == "." {
		return c.Prefix
	}
	return filepath.ToSlash(filepath.Join(c.RelDir, c.Prefix))
}

// OutputTarget is the resolved output directory for a collection. It is a
// pure function of the collection and the configured output root, so re-runs
// resolve the same target and skip-detection stays idempotent.
type OutputTarget struct {
	// Dir is the directory the executable writes results to and the
	// skip predicate checks completion markers in.
	Dir string `json:"dir"`
	// GroupName is the collision-group subdirectory name used when an
	// output root override is configured; empty otherwise.
	GroupName string `json:"group_name,omitempty"`
}

// OutcomeStatus classifies the result of attempting one collection.
type OutcomeStatus string

const (
	// StatusSuccess means the executable exited zero.
	StatusSuccess OutcomeStatus = "success"
	// StatusSkipped means a completion marker already existed.
	StatusSkipped OutcomeStatus = "skipped"
	// StatusFailed means the executable exited non-zero, or the output
	// directory could not be created.
	StatusFailed OutcomeStatus = "failed"
	// StatusTimedOut means the executable exceeded the per-file budget
	// and was killed.
	StatusTimedOut OutcomeStatus = "timed_out"
)

// Outcome records the result of attempting one collection. Immutable once
// appended to a report.
type Outcome struct {
	Collection *Collection   `json:"collection"`
	Status     OutcomeStatus `json:"status"`
	// Reason explains skips and output-directory failures.
	Reason string `json:"reason,omitempty"`
	// Command is the full invocation command line, for diagnostics.
	Command string `json:"command,omitempty"`
	// DurationMS is wall-clock execution time in milliseconds.
	DurationMS int64 `json:"duration_ms"`
	// ExitCode is the process exit code for failed runs.
	ExitCode int `json:"exit_code"`
	// Stderr is the captured standard error text, verbatim.
	Stderr string `json:"stderr,omitempty"`
}

// Report aggregates all outcomes of one batch run. Built incrementally by
// the engine and read-only once finalized.
type Report struct {
	Total        int          `json:"total"`
	Succeeded    int          `json:"succeeded"`
	Skipped      int          `json:"skipped"`
	Failed       int          `json:"failed"`
	TimedOut     int          `json:"timed_out"`
	ElapsedMS    int64        `json:"elapsed_ms"`
	Installation Installation `json:"installation"`
	// Outcomes preserves discovery order.
	Outcomes []Outcome `json:"outcomes"`
}

// Append records an outcome and updates the aggregate counts, keeping the
// invariant total == succeeded + skipped + failed + timedOut.
func (r *Report) Append(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	r.Total++
	switch o.Status {
	case StatusSuccess:
		r.Succeeded++
	case StatusSkipped:
		r.Skipped++
	case StatusFailed:
		r.Failed++
	case StatusTimedOut:
		r.TimedOut++
	}
}

// SuccessRate returns succeeded+skipped over total as a percentage.
// A skipped collection counts as done: its markers prove a prior success.
func (r *Report) SuccessRate() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Succeeded+r.Skipped) / float64(r.Total) * 100
}

// Problems returns the failed and timed-out outcomes, in discovery order.
func (r *Report) Problems() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed || o.Status == StatusTimedOut {
			out = append(out, o)
		}
	}
	return out
}

// CommandLine formats an executable and its arguments for display.
func CommandLine(exe string, args []string) string {
	return strings.Join(append([]string{exe}, args...), " ")
}
