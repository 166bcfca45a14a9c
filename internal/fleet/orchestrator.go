package fleet

import (
	"context"
	"time"
)

// Orchestrator runs one plan per device, strictly in list order, never in
// parallel. Devices often sit behind the same small switch or PoE budget,
// and concurrent multi-megabyte uploads are a good way to brown out half
// the fleet.
type Orchestrator struct {
	Plan *Plan

	// DeviceDelay is how long to wait between consecutive devices. No
	// delay runs before the first device or after the last.
	DeviceDelay time.Duration

	Reporter Reporter
}

// Run executes the plan for every target and returns the aggregated report.
// One result per target, in input order, always: a target the run never
// reached gets OutcomeNotAttempted, so the report accounts for the whole
// input list even when cancelled.
//
// Cancellation is checked between devices. A device whose plan is already
// underway finishes classifying its own outcome (the in-flight request fails
// with the context error); devices after it are not attempted.
func (o *Orchestrator) Run(ctx context.Context, targets []Target) *Report {
	reporter := o.Reporter
	if reporter == nil {
		reporter = NopReporter{}
	}

	report := &Report{Results: make([]Result, 0, len(targets))}
	reporter.RunStarted(targets)

	for i, target := range targets {
		if ctx.Err() != nil {
			report.Interrupted = true
			report.Results = append(report.Results, Result{
				Target:  target,
				Outcome: Outcome{Kind: OutcomeNotAttempted},
			})
			continue
		}

		if i > 0 && o.DeviceDelay > 0 {
			reporter.Sleeping(o.DeviceDelay, "next device")
			if err := sleep(ctx, o.DeviceDelay); err != nil {
				report.Interrupted = true
				report.Results = append(report.Results, Result{
					Target:  target,
					Outcome: Outcome{Kind: OutcomeNotAttempted},
				})
				continue
			}
		}

		reporter.DeviceStarted(target, i, len(targets))
		outcome := o.Plan.Run(ctx, target)
		reporter.DeviceFinished(target, outcome)

		report.Results = append(report.Results, Result{Target: target, Outcome: outcome})

		if ctx.Err() != nil {
			report.Interrupted = true
		}
	}

	reporter.RunFinished(report)
	return report
}
