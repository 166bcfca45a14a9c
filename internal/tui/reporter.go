package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/updtrr/updtrr/internal/fleet"
)

// Messages bridging fleet run events into the Bubble Tea update loop.
// The orchestrator runs on its own goroutine; Program.Send is the only
// channel between it and the model.
type (
	runStartedMsg struct {
		targets []fleet.Target
	}

	deviceStartedMsg struct {
		target fleet.Target
		index  int
		total  int
	}

	stageStartedMsg struct {
		target fleet.Target
		stage  fleet.Stage
	}

	stageFailedMsg struct {
		target fleet.Target
		stage  fleet.Stage
		err    error
	}

	deviceFinishedMsg struct {
		target  fleet.Target
		outcome fleet.Outcome
	}

	sleepingMsg struct {
		d      time.Duration
		reason string
	}

	runFinishedMsg struct {
		report *fleet.Report
	}
)

// Reporter adapts fleet run events into messages for a running program.
type Reporter struct {
	p *tea.Program
}

// NewReporter creates a reporter feeding p.
func NewReporter(p *tea.Program) *Reporter {
	return &Reporter{p: p}
}

func (r *Reporter) RunStarted(targets []fleet.Target) {
	r.p.Send(runStartedMsg{targets: targets})
}

func (r *Reporter) DeviceStarted(target fleet.Target, index, total int) {
	r.p.Send(deviceStartedMsg{target: target, index: index, total: total})
}

func (r *Reporter) StageStarted(target fleet.Target, stage fleet.Stage) {
	r.p.Send(stageStartedMsg{target: target, stage: stage})
}

func (r *Reporter) StageFailed(target fleet.Target, stage fleet.Stage, err error) {
	r.p.Send(stageFailedMsg{target: target, stage: stage, err: err})
}

func (r *Reporter) DeviceFinished(target fleet.Target, outcome fleet.Outcome) {
	r.p.Send(deviceFinishedMsg{target: target, outcome: outcome})
}

func (r *Reporter) Sleeping(d time.Duration, reason string) {
	r.p.Send(sleepingMsg{d: d, reason: reason})
}

func (r *Reporter) RunFinished(report *fleet.Report) {
	r.p.Send(runFinishedMsg{report: report})
}
