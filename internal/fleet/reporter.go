package fleet

import (
	"fmt"
	"io"
	"time"
)

// Reporter receives progress events during a fleet run. The orchestrator and
// plans hold no output machinery of their own; everything user-visible flows
// through this interface, so the CLI and the TUI can render the same run
// differently.
//
// Calls arrive from a single goroutine, in run order.
type Reporter interface {
	// RunStarted is called once, before the first device.
	RunStarted(targets []Target)

	// DeviceStarted is called before a device's plan begins. index is
	// zero-based.
	DeviceStarted(target Target, index, total int)

	// StageStarted is called before each stage of a device's plan.
	StageStarted(target Target, stage Stage)

	// StageFailed is called when a stage errors. The plan may still
	// continue: a failed version check falls through to the upload, and a
	// failed www upload falls through to the firmware upload.
	StageFailed(target Target, stage Stage, err error)

	// DeviceFinished is called with the device's terminal outcome.
	DeviceFinished(target Target, outcome Outcome)

	// Sleeping is called before a configured delay. reason names what the
	// delay is for.
	Sleeping(d time.Duration, reason string)

	// RunFinished is called once, with the final report.
	RunFinished(report *Report)
}

// NopReporter discards all events.
type NopReporter struct{}

func (NopReporter) RunStarted([]Target)              {}
func (NopReporter) DeviceStarted(Target, int, int)   {}
func (NopReporter) StageStarted(Target, Stage)       {}
func (NopReporter) StageFailed(Target, Stage, error) {}
func (NopReporter) DeviceFinished(Target, Outcome)   {}
func (NopReporter) Sleeping(time.Duration, string)   {}
func (NopReporter) RunFinished(*Report)              {}

// TextReporter writes a plain line-oriented progress log, the default output
// when no TUI is attached.
type TextReporter struct {
	W io.Writer
}

// NewTextReporter creates a reporter writing to w.
func NewTextReporter(w io.Writer) *TextReporter {
	return &TextReporter{W: w}
}

func (r *TextReporter) RunStarted(targets []Target) {
	fmt.Fprintf(r.W, "Updating %d device(s)\n", len(targets))
}

func (r *TextReporter) DeviceStarted(target Target, index, total int) {
	fmt.Fprintf(r.W, "[%d/%d] %s\n", index+1, total, target)
}

func (r *TextReporter) StageStarted(target Target, stage Stage) {
	fmt.Fprintf(r.W, "  %s...\n", stage)
}

func (r *TextReporter) StageFailed(target Target, stage Stage, err error) {
	fmt.Fprintf(r.W, "  %s failed: %v\n", stage, err)
}

func (r *TextReporter) DeviceFinished(target Target, outcome Outcome) {
	fmt.Fprintf(r.W, "  %s\n", outcome.Describe())
}

func (r *TextReporter) Sleeping(d time.Duration, reason string) {
	fmt.Fprintf(r.W, "  waiting %s before %s\n", d, reason)
}

func (r *TextReporter) RunFinished(report *Report) {
	counts := report.Counts()
	fmt.Fprintf(r.W, "\nDone: %s (%d updated, %d skipped, %d failed",
		report.Status(),
		counts[OutcomeSuccess],
		counts[OutcomeSkipped],
		counts[OutcomeFailure]+counts[OutcomePartialFailure])
	if n := counts[OutcomeNotAttempted]; n > 0 {
		fmt.Fprintf(r.W, ", %d not attempted", n)
	}
	fmt.Fprintln(r.W, ")")

	for _, res := range report.Results {
		fmt.Fprintf(r.W, "  %-24s %s\n", res.Target, res.Outcome.Describe())
	}
}
