package fleet

import (
	"context"
	"errors"
	"testing"
	"time"
)

func targets(addrs ...string) []Target {
	ts := make([]Target, len(addrs))
	for i, a := range addrs {
		ts[i] = Target{Address: a}
	}
	return ts
}

func TestOrchestratorRunsInOrderAndIsolatesFailures(t *testing.T) {
	client := &fakeClient{devices: map[string]*fakeDevice{
		"10.0.0.1": {info: infoWithVersion("2.8.0")},
		"10.0.0.2": {info: infoWithVersion("2.8.0"), fwErr: errors.New("flash write failed")},
		"10.0.0.3": {info: infoWithVersion("2.8.0")},
	}}
	o := &Orchestrator{Plan: &Plan{Client: client, Bundle: testBundle()}}

	report := o.Run(context.Background(), targets("10.0.0.1", "10.0.0.2", "10.0.0.3"))

	if len(report.Results) != 3 {
		t.Fatalf("results = %d, want one per target", len(report.Results))
	}
	for i, addr := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		if report.Results[i].Target.Address != addr {
			t.Errorf("results[%d] = %s, want input order preserved", i, report.Results[i].Target.Address)
		}
	}

	wantKinds := []OutcomeKind{OutcomeSuccess, OutcomeFailure, OutcomeSuccess}
	for i, want := range wantKinds {
		if got := report.Results[i].Outcome.Kind; got != want {
			t.Errorf("results[%d].Kind = %v, want %v", i, got, want)
		}
	}

	if report.Status() != StatusPartialFailure {
		t.Errorf("status = %v, want partial failure", report.Status())
	}
	if report.ExitCode() != 1 {
		t.Errorf("exit code = %d, want 1", report.ExitCode())
	}
}

func TestOrchestratorVersionGating(t *testing.T) {
	// Bundle carries 2.9.0: the 2.8.0 device is updated, the 2.9.0 and
	// 3.0.0 devices are left alone.
	client := &fakeClient{devices: map[string]*fakeDevice{
		"10.0.0.1": {info: infoWithVersion("2.8.0")},
		"10.0.0.2": {info: infoWithVersion("2.9.0")},
		"10.0.0.3": {info: infoWithVersion("3.0.0")},
	}}
	o := &Orchestrator{Plan: &Plan{Client: client, Bundle: testBundle()}}

	report := o.Run(context.Background(), targets("10.0.0.1", "10.0.0.2", "10.0.0.3"))

	wantKinds := []OutcomeKind{OutcomeSuccess, OutcomeSkipped, OutcomeSkipped}
	for i, want := range wantKinds {
		if got := report.Results[i].Outcome.Kind; got != want {
			t.Errorf("results[%d].Kind = %v, want %v", i, got, want)
		}
	}
	if report.Status() != StatusAllSuccess {
		t.Errorf("status = %v, skips must count as success", report.Status())
	}
	if report.ExitCode() != 0 {
		t.Errorf("exit code = %d, want 0", report.ExitCode())
	}
}

func TestOrchestratorTotalFailure(t *testing.T) {
	client := &fakeClient{devices: map[string]*fakeDevice{
		"10.0.0.1": {info: infoWithVersion("2.8.0"), fwErr: errors.New("boom")},
		"10.0.0.2": {info: infoWithVersion("2.8.0"), fwErr: errors.New("boom")},
	}}
	o := &Orchestrator{Plan: &Plan{Client: client, Bundle: testBundle()}}

	report := o.Run(context.Background(), targets("10.0.0.1", "10.0.0.2"))

	if report.Status() != StatusTotalFailure {
		t.Errorf("status = %v, want total failure", report.Status())
	}
	if report.ExitCode() != 2 {
		t.Errorf("exit code = %d, want 2", report.ExitCode())
	}
}

func TestOrchestratorEmptyFleet(t *testing.T) {
	o := &Orchestrator{Plan: &Plan{Client: &fakeClient{}, Bundle: testBundle()}}

	report := o.Run(context.Background(), nil)

	if len(report.Results) != 0 {
		t.Errorf("results = %d, want none", len(report.Results))
	}
	if report.Status() != StatusAllSuccess {
		t.Errorf("status = %v, an empty fleet is a successful run", report.Status())
	}
	if report.ExitCode() != 0 {
		t.Errorf("exit code = %d, want 0", report.ExitCode())
	}
}

// cancellingReporter cancels the run after the first device finishes.
type cancellingReporter struct {
	NopReporter
	cancel context.CancelFunc
	after  int
	seen   int
}

func (r *cancellingReporter) DeviceFinished(Target, Outcome) {
	r.seen++
	if r.seen == r.after {
		r.cancel()
	}
}

func TestOrchestratorCancellationMarksRemainingNotAttempted(t *testing.T) {
	client := &fakeClient{devices: map[string]*fakeDevice{
		"10.0.0.1": {info: infoWithVersion("2.8.0")},
		"10.0.0.2": {info: infoWithVersion("2.8.0")},
		"10.0.0.3": {info: infoWithVersion("2.8.0")},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reporter := &cancellingReporter{cancel: cancel, after: 1}

	o := &Orchestrator{
		Plan:     &Plan{Client: client, Bundle: testBundle()},
		Reporter: reporter,
	}

	report := o.Run(ctx, targets("10.0.0.1", "10.0.0.2", "10.0.0.3"))

	if len(report.Results) != 3 {
		t.Fatalf("results = %d, want one per target even when interrupted", len(report.Results))
	}
	if report.Results[0].Outcome.Kind != OutcomeSuccess {
		t.Errorf("results[0] = %v, the first device completed before cancellation", report.Results[0].Outcome.Kind)
	}
	for i := 1; i < 3; i++ {
		if report.Results[i].Outcome.Kind != OutcomeNotAttempted {
			t.Errorf("results[%d] = %v, want not attempted", i, report.Results[i].Outcome.Kind)
		}
	}
	if !report.Interrupted {
		t.Error("report should be marked interrupted")
	}
	if report.ExitCode() != 130 {
		t.Errorf("exit code = %d, want 130", report.ExitCode())
	}
}

func TestOrchestratorDeviceDelayOnlyBetweenDevices(t *testing.T) {
	client := &fakeClient{devices: map[string]*fakeDevice{
		"10.0.0.1": {info: infoWithVersion("2.9.0")},
		"10.0.0.2": {info: infoWithVersion("2.9.0")},
	}}
	reporter := &recordingReporter{}
	o := &Orchestrator{
		Plan:        &Plan{Client: client, Bundle: testBundle()},
		DeviceDelay: time.Millisecond,
		Reporter:    reporter,
	}

	o.Run(context.Background(), targets("10.0.0.1", "10.0.0.2"))

	var sleeps int
	for _, e := range reporter.events {
		if e == "sleeping before next device" {
			sleeps++
		}
	}
	if sleeps != 1 {
		t.Errorf("sleeps = %d, want exactly one for two devices", sleeps)
	}
}
