// Package output renders reports, collection listings and run history for
// the terminal. The engine hands over plain data structures; everything
// presentation-related lives here so front ends stay swappable.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"

	"github.com/siwooparkintel/socwatch-post-proc/internal/state"
	"github.com/siwooparkintel/socwatch-post-proc/pkg/core"
)

// Mode selects the rendering format.
type Mode string

const (
	// ModeAuto picks text on a terminal, JSON otherwise.
	ModeAuto Mode = "auto"
	// ModeText renders human-readable tables.
	ModeText Mode = "text"
	// ModeJSON renders machine-readable JSON.
	ModeJSON Mode = "json"
)

// Renderer writes formatted output.
type Renderer struct {
	w    io.Writer
	mode Mode
}

// NewRenderer creates a renderer for the given writer. ModeAuto resolves
// immediately based on whether the writer is a terminal.
func NewRenderer(w io.Writer, mode Mode) *Renderer {
	if mode == ModeAuto || mode == "" {
		mode = ModeJSON
		if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			mode = ModeText
		}
	}
	return &Renderer{w: w, mode: mode}
}

// JSON reports whether the renderer emits JSON.
func (r *Renderer) JSON() bool {
	return r.mode == ModeJSON
}

// RenderReport writes the final batch report: aggregate counts, elapsed
// time and every failed or timed-out collection with enough detail to
// diagnose without re-running.
func (r *Renderer) RenderReport(report *core.Report) error {
	if r.mode == ModeJSON {
		return r.renderJSON(report)
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Collection", "Status", "Duration", "Detail"})
	for i, o := range report.Outcomes {
		t.AppendRow(table.Row{
			i + 1,
			o.Collection.DisplayName(),
			string(o.Status),
			formatDuration(o.DurationMS),
			outcomeDetail(o),
		})
	}
	t.Render()

	fmt.Fprintf(r.w, "\nTotal: %d  succeeded: %d  skipped: %d  failed: %d  timed out: %d\n",
		report.Total, report.Succeeded, report.Skipped, report.Failed, report.TimedOut)
	fmt.Fprintf(r.w, "Success rate: %.1f%%  elapsed: %s\n",
		report.SuccessRate(), formatDuration(report.ElapsedMS))
	fmt.Fprintf(r.w, "Installation: %s\n", report.Installation)

	for _, o := range report.Problems() {
		fmt.Fprintf(r.w, "\n%s: %s\n", o.Status, o.Collection.DisplayName())
		fmt.Fprintf(r.w, "  command: %s\n", o.Command)
		if o.Status == core.StatusFailed {
			fmt.Fprintf(r.w, "  exit code: %d\n", o.ExitCode)
			if o.Stderr != "" {
				fmt.Fprintf(r.w, "  stderr:\n%s\n", indent(o.Stderr))
			}
		}
		if o.Reason != "" {
			fmt.Fprintf(r.w, "  reason: %s\n", o.Reason)
		}
	}
	return nil
}

// RenderCollections writes the discovered collection listing.
func (r *Renderer) RenderCollections(root string, cols []*core.Collection) error {
	if r.mode == ModeJSON {
		return r.renderJSON(cols)
	}

	fmt.Fprintf(r.w, "Found %d collection(s) under %s\n\n", len(cols), root)
	t := table.NewWriter()
	t.SetOutputMirror(r.w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Collection", "Files", "Size (MB)", "Location"})
	for i, c := range cols {
		t.AppendRow(table.Row{
			i + 1,
			c.DisplayName(),
			len(c.Files),
			fmt.Sprintf("%.1f", c.TotalSizeMB()),
			c.Dir,
		})
	}
	t.Render()
	return nil
}

// RenderInstallations writes the discovered installations in precedence
// order with their 1-based selection indices.
func (r *Renderer) RenderInstallations(installs []core.Installation) error {
	if r.mode == ModeJSON {
		return r.renderJSON(installs)
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Version", "Path"})
	for i, inst := range installs {
		t.AppendRow(table.Row{i + 1, inst.Label, inst.Path})
	}
	t.Render()
	return nil
}

// RenderRuns writes recent batch runs from the history store.
func (r *Renderer) RenderRuns(runs []*state.RunRecord) error {
	if r.mode == ModeJSON {
		return r.renderJSON(runs)
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Started", "Input root", "Status", "Total", "OK", "Skip", "Fail", "Timeout", "Elapsed"})
	for _, run := range runs {
		t.AppendRow(table.Row{
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.InputRoot,
			string(run.Status),
			run.Total,
			run.Succeeded,
			run.Skipped,
			run.Failed,
			run.TimedOut,
			formatDuration(run.ElapsedMS),
		})
	}
	t.Render()
	return nil
}

// RenderOutcomeRecords writes the persisted outcomes of a single run.
func (r *Renderer) RenderOutcomeRecords(outcomes []*state.OutcomeRecord) error {
	if r.mode == ModeJSON {
		return r.renderJSON(outcomes)
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Collection", "Status", "Duration", "Exit", "Detail"})
	for i, o := range outcomes {
		detail := o.Reason
		if detail == "" && o.Status == core.StatusFailed {
			detail = o.Stderr
		}
		t.AppendRow(table.Row{i + 1, o.Prefix, string(o.Status), formatDuration(o.DurationMS), o.ExitCode, detail})
	}
	t.Render()
	return nil
}

func (r *Renderer) renderJSON(v any) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func outcomeDetail(o core.Outcome) string {
	switch o.Status {
	case core.StatusFailed:
		if o.Reason != "" {
			return o.Reason
		}
		return fmt.Sprintf("exit code %d", o.ExitCode)
	default:
		return o.Reason
	}
}

func formatDuration(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).Round(time.Millisecond).String()
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	return "    " + strings.Join(lines, "\n    ")
}
