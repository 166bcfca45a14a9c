package fleet

// RunStatus is the overall classification of a fleet run, derived from the
// per-device outcomes.
type RunStatus int

const (
	// StatusAllSuccess: no device failed. Skips count as success here; an
	// empty fleet is also all-success.
	StatusAllSuccess RunStatus = iota

	// StatusPartialFailure: some devices failed, some did not.
	StatusPartialFailure

	// StatusTotalFailure: every attempted device failed.
	StatusTotalFailure
)

// String returns the status name used in reports.
func (s RunStatus) String() string {
	switch s {
	case StatusAllSuccess:
		return "all devices succeeded"
	case StatusPartialFailure:
		return "some devices failed"
	case StatusTotalFailure:
		return "all devices failed"
	default:
		return "unknown"
	}
}

// Result pairs a target with its outcome.
type Result struct {
	Target  Target
	Outcome Outcome
}

// Report is the aggregated result of one fleet run. Results appear in the
// order the devices were attempted, which is the order of the input list.
type Report struct {
	Results []Result

	// Interrupted is set when the run was cancelled before finishing.
	// Devices after the cancellation point carry OutcomeNotAttempted.
	Interrupted bool
}

// Counts tallies the outcomes by kind.
func (r *Report) Counts() map[OutcomeKind]int {
	counts := make(map[OutcomeKind]int)
	for _, res := range r.Results {
		counts[res.Outcome.Kind]++
	}
	return counts
}

// Status classifies the run. Partial failures count on the failure side,
// skipped devices on the success side, and devices that were never attempted
// do not count at all.
func (r *Report) Status() RunStatus {
	var good, bad int
	for _, res := range r.Results {
		switch res.Outcome.Kind {
		case OutcomeSuccess, OutcomeSkipped:
			good++
		case OutcomeFailure, OutcomePartialFailure:
			bad++
		}
	}

	switch {
	case bad == 0:
		return StatusAllSuccess
	case good == 0:
		return StatusTotalFailure
	default:
		return StatusPartialFailure
	}
}

// ExitCode maps the run to a process exit code: 0 for all-success, 1 for
// partial failure, 2 for total failure, 130 when the run was interrupted.
func (r *Report) ExitCode() int {
	if r.Interrupted {
		return 130
	}
	switch r.Status() {
	case StatusAllSuccess:
		return 0
	case StatusPartialFailure:
		return 1
	default:
		return 2
	}
}
