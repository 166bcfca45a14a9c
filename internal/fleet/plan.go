// Package fleet runs firmware updates across a list of devices: one update
// plan per device, executed strictly in sequence by the orchestrator, with
// every result collected into a final report.
package fleet

import (
	"context"
	"fmt"
	"time"

	"github.com/updtrr/updtrr/internal/axeos"
	"github.com/updtrr/updtrr/internal/bundle"
	"github.com/updtrr/updtrr/internal/fwversion"
)

// Client is the device API surface a plan needs. *axeos.Client satisfies it;
// tests substitute fakes.
type Client interface {
	FetchInfo(ctx context.Context, addr string) (*axeos.SystemInfo, error)
	UploadAsset(ctx context.Context, addr string, kind axeos.AssetKind, data []byte) error
}

// Plan executes the update sequence for a single device: check the running
// version, upload the web interface, wait, upload the firmware. A Plan is
// stateless between devices and safe to reuse for every target in a run.
type Plan struct {
	Client Client
	Bundle *bundle.Bundle

	// Force uploads even when the device already runs the bundle version.
	Force bool

	// CheckOnly stops after the version check; nothing is uploaded.
	CheckOnly bool

	// StageDelay is how long to wait between the www upload and the
	// firmware upload. The device restarts its web server after accepting
	// a www image, and an upload arriving during that restart is dropped.
	StageDelay time.Duration

	Reporter Reporter
}

// Run executes the plan against one device and returns its outcome. The
// returned outcome is terminal; Run never retries.
//
// Stage errors have different severities. A failed version check falls
// through to the uploads, since an unreadable version is no reason to leave
// a device on old firmware. A failed www upload degrades the outcome to
// partial but the firmware upload still runs. A failed firmware upload is
// fatal and dominates any earlier www failure.
func (p *Plan) Run(ctx context.Context, target Target) Outcome {
	reporter := p.Reporter
	if reporter == nil {
		reporter = NopReporter{}
	}

	reporter.StageStarted(target, StageVersionCheck)

	info, err := p.Client.FetchInfo(ctx, target.Address)
	if err != nil {
		if p.CheckOnly {
			return Outcome{Kind: OutcomeFailure, Stage: StageVersionCheck, Err: err}
		}
		// Cannot read the device state; proceed with the upload anyway.
		reporter.StageFailed(target, StageVersionCheck, err)
	} else {
		needed, verr := fwversion.UpdateNeeded(info.Version, p.Bundle.Version)
		if verr != nil {
			reporter.StageFailed(target, StageVersionCheck, verr)
		}
		if !needed && !p.Force {
			return Outcome{
				Kind:   OutcomeSkipped,
				Reason: fmt.Sprintf("already on %s", info.Version),
				Info:   info,
			}
		}
		if p.CheckOnly {
			return Outcome{
				Kind:   OutcomeSkipped,
				Reason: fmt.Sprintf("update available: %s -> %s", info.Version, p.Bundle.Version),
				Info:   info,
			}
		}
	}

	reporter.StageStarted(target, StageUploadWWW)
	wwwErr := p.Client.UploadAsset(ctx, target.Address, axeos.AssetWWW, p.Bundle.WWW)
	if wwwErr != nil {
		reporter.StageFailed(target, StageUploadWWW, wwwErr)
	}

	// The delay applies whether or not the www upload succeeded. A failed
	// upload can still have disturbed the device's web server.
	if p.StageDelay > 0 {
		reporter.Sleeping(p.StageDelay, "firmware upload")
		if err := sleep(ctx, p.StageDelay); err != nil {
			return Outcome{Kind: OutcomeFailure, Stage: StageUploadFirmware, Err: err, Info: info}
		}
	}

	reporter.StageStarted(target, StageUploadFirmware)
	if err := p.Client.UploadAsset(ctx, target.Address, axeos.AssetFirmware, p.Bundle.Firmware); err != nil {
		reporter.StageFailed(target, StageUploadFirmware, err)
		return Outcome{Kind: OutcomeFailure, Stage: StageUploadFirmware, Err: err, Info: info}
	}

	if wwwErr != nil {
		return Outcome{Kind: OutcomePartialFailure, Stage: StageUploadWWW, Err: wwwErr, Info: info}
	}
	return Outcome{Kind: OutcomeSuccess, Info: info}
}

// sleep waits for d or until ctx is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
