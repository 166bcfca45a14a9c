package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/updtrr/updtrr/internal/axeos"
	"github.com/updtrr/updtrr/internal/fleet"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleReport() *fleet.Report {
	return &fleet.Report{
		Results: []fleet.Result{
			{
				Target: fleet.Target{Address: "192.168.1.37", Label: "garage"},
				Outcome: fleet.Outcome{
					Kind: fleet.OutcomeSuccess,
					Info: &axeos.SystemInfo{Version: "2.8.0"},
				},
			},
			{
				Target: fleet.Target{Address: "192.168.1.38"},
				Outcome: fleet.Outcome{
					Kind:  fleet.OutcomeFailure,
					Stage: fleet.StageUploadFirmware,
					Err:   errors.New("flash write failed"),
				},
			},
		},
	}
}

func TestRecordAndRecentRuns(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	started := time.Now().Add(-time.Minute)
	runID, err := s.RecordRun(ctx, started, "v2.9.0", sampleReport())
	if err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}
	if runID == 0 {
		t.Error("RecordRun() returned zero run id")
	}

	runs, err := s.RecentRuns(ctx, 5)
	if err != nil {
		t.Fatalf("RecentRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("RecentRuns() = %d runs, want 1", len(runs))
	}

	run := runs[0]
	if run.BundleVersion != "v2.9.0" {
		t.Errorf("BundleVersion = %q", run.BundleVersion)
	}
	if run.Status != fleet.StatusPartialFailure.String() {
		t.Errorf("Status = %q, want %q", run.Status, fleet.StatusPartialFailure)
	}
	if len(run.Devices) != 2 {
		t.Fatalf("Devices = %d, want 2", len(run.Devices))
	}
	if run.Devices[0].Address != "192.168.1.37" || run.Devices[0].Outcome != "success" {
		t.Errorf("Devices[0] = %+v", run.Devices[0])
	}
	if run.Devices[0].VersionBefore != "2.8.0" {
		t.Errorf("VersionBefore = %q, want 2.8.0", run.Devices[0].VersionBefore)
	}
	if run.Devices[1].Outcome != "failure" {
		t.Errorf("Devices[1].Outcome = %q", run.Devices[1].Outcome)
	}
}

func TestRecentRunsOrderAndLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		started := time.Now().Add(time.Duration(i-3) * time.Hour)
		if _, err := s.RecordRun(ctx, started, "v2.9.0", sampleReport()); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := s.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("RecentRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("RecentRuns(2) = %d runs", len(runs))
	}
	if !runs[0].StartedAt.After(runs[1].StartedAt) {
		t.Error("runs not ordered newest first")
	}
}

func TestDeviceHistory(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.RecordRun(ctx, time.Now(), "v2.9.0", sampleReport()); err != nil {
		t.Fatal(err)
	}

	runs, err := s.DeviceHistory(ctx, "192.168.1.38", 10)
	if err != nil {
		t.Fatalf("DeviceHistory() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("DeviceHistory() = %d entries, want 1", len(runs))
	}
	if runs[0].Devices[0].Outcome != "failure" {
		t.Errorf("outcome = %q", runs[0].Devices[0].Outcome)
	}

	if runs, _ := s.DeviceHistory(ctx, "10.9.9.9", 10); len(runs) != 0 {
		t.Errorf("DeviceHistory() for unknown device = %v", runs)
	}
}

func TestInterruptedFlagRoundTrips(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	report := sampleReport()
	report.Interrupted = true

	if _, err := s.RecordRun(ctx, time.Now(), "v2.9.0", report); err != nil {
		t.Fatal(err)
	}

	runs, err := s.RecentRuns(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !runs[0].Interrupted {
		t.Error("Interrupted flag not persisted")
	}
}
