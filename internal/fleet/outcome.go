package fleet

import (
	"fmt"

	"github.com/updtrr/updtrr/internal/axeos"
)

// Target identifies one device in the fleet. Identity is the address; the
// label is free text from the device list and only used for display.
type Target struct {
	Address string
	Label   string
}

// String returns the display name for the target.
func (t Target) String() string {
	if t.Label != "" {
		return fmt.Sprintf("%s (%s)", t.Address, t.Label)
	}
	return t.Address
}

// Stage names the step of a device update plan an outcome refers to.
type Stage int

const (
	StageVersionCheck Stage = iota
	StageUploadWWW
	StageUploadFirmware
)

// String returns the stage name used in reports.
func (s Stage) String() string {
	switch s {
	case StageVersionCheck:
		return "version check"
	case StageUploadWWW:
		return "www upload"
	case StageUploadFirmware:
		return "firmware upload"
	default:
		return fmt.Sprintf("Stage(%d)", s)
	}
}

// OutcomeKind classifies how a device update ended.
type OutcomeKind int

const (
	// OutcomeSuccess: every attempted stage succeeded.
	OutcomeSuccess OutcomeKind = iota

	// OutcomeSkipped: no upload was needed or intended (device up to date,
	// or check-only mode).
	OutcomeSkipped

	// OutcomePartialFailure: the firmware upload succeeded but an earlier
	// non-fatal stage (the www upload) did not.
	OutcomePartialFailure

	// OutcomeFailure: the plan stopped at a fatal stage error.
	OutcomeFailure

	// OutcomeNotAttempted: the run was cancelled before this device's plan
	// started. Distinct from Skipped: nothing was checked.
	OutcomeNotAttempted
)

// String returns the outcome name used in reports.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeSkipped:
		return "skipped"
	case OutcomePartialFailure:
		return "partial failure"
	case OutcomeFailure:
		return "failure"
	case OutcomeNotAttempted:
		return "not attempted"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", k)
	}
}

// Outcome is the terminal result of one device's update plan. Exactly one
// Outcome is produced per target per run, and it is immutable once built.
type Outcome struct {
	Kind OutcomeKind

	// Stage is the stage that determined the outcome. Meaningful for
	// failures and partial failures.
	Stage Stage

	// Reason is a short human-readable explanation for skips.
	Reason string

	// Err is the causing error for failures and partial failures.
	Err error

	// Info is the device state gathered at check time, when the check
	// succeeded. Never cached across runs.
	Info *axeos.SystemInfo
}

// Describe returns the one-line summary used in the final report.
func (o Outcome) Describe() string {
	switch o.Kind {
	case OutcomeSuccess:
		return "updated"
	case OutcomeSkipped:
		if o.Reason != "" {
			return "skipped: " + o.Reason
		}
		return "skipped"
	case OutcomePartialFailure:
		return fmt.Sprintf("updated, but %s failed: %v", o.Stage, o.Err)
	case OutcomeFailure:
		return fmt.Sprintf("failed at %s: %v", o.Stage, o.Err)
	case OutcomeNotAttempted:
		return "not attempted (run interrupted)"
	default:
		return o.Kind.String()
	}
}
