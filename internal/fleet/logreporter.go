package fleet

import (
	"time"

	"go.uber.org/zap"
)

// LogReporter mirrors run events into a structured logger. It is layered
// alongside the user-facing reporter (text or TUI) so diagnostic output can
// be captured without changing what the operator sees.
type LogReporter struct {
	L *zap.Logger
}

// NewLogReporter creates a reporter logging to l.
func NewLogReporter(l *zap.Logger) *LogReporter {
	return &LogReporter{L: l}
}

func (r *LogReporter) RunStarted(targets []Target) {
	r.L.Info("run started", zap.Int("devices", len(targets)))
}

func (r *LogReporter) DeviceStarted(target Target, index, total int) {
	r.L.Info("device started",
		zap.String("addr", target.Address),
		zap.String("label", target.Label),
		zap.Int("index", index+1),
		zap.Int("total", total),
	)
}

func (r *LogReporter) StageStarted(target Target, stage Stage) {
	r.L.Debug("stage started",
		zap.String("addr", target.Address),
		zap.Stringer("stage", stage),
	)
}

func (r *LogReporter) StageFailed(target Target, stage Stage, err error) {
	r.L.Warn("stage failed",
		zap.String("addr", target.Address),
		zap.Stringer("stage", stage),
		zap.Error(err),
	)
}

func (r *LogReporter) DeviceFinished(target Target, outcome Outcome) {
	fields := []zap.Field{
		zap.String("addr", target.Address),
		zap.Stringer("outcome", outcome.Kind),
	}
	if outcome.Err != nil {
		fields = append(fields, zap.Error(outcome.Err))
	}
	if outcome.Info != nil {
		fields = append(fields, zap.String("device_version", outcome.Info.Version))
	}

	if outcome.Kind == OutcomeFailure || outcome.Kind == OutcomePartialFailure {
		r.L.Error("device finished", fields...)
		return
	}
	r.L.Info("device finished", fields...)
}

func (r *LogReporter) Sleeping(d time.Duration, reason string) {
	r.L.Debug("sleeping", zap.Duration("for", d), zap.String("before", reason))
}

func (r *LogReporter) RunFinished(report *Report) {
	counts := report.Counts()
	r.L.Info("run finished",
		zap.Stringer("status", report.Status()),
		zap.Bool("interrupted", report.Interrupted),
		zap.Int("updated", counts[OutcomeSuccess]),
		zap.Int("skipped", counts[OutcomeSkipped]),
		zap.Int("failed", counts[OutcomeFailure]+counts[OutcomePartialFailure]),
		zap.Int("not_attempted", counts[OutcomeNotAttempted]),
	)
}

// MultiReporter fans events out to several reporters in order.
type MultiReporter []Reporter

func (m MultiReporter) RunStarted(targets []Target) {
	for _, r := range m {
		r.RunStarted(targets)
	}
}

func (m MultiReporter) DeviceStarted(target Target, index, total int) {
	for _, r := range m {
		r.DeviceStarted(target, index, total)
	}
}

func (m MultiReporter) StageStarted(target Target, stage Stage) {
	for _, r := range m {
		r.StageStarted(target, stage)
	}
}

func (m MultiReporter) StageFailed(target Target, stage Stage, err error) {
	for _, r := range m {
		r.StageFailed(target, stage, err)
	}
}

func (m MultiReporter) DeviceFinished(target Target, outcome Outcome) {
	for _, r := range m {
		r.DeviceFinished(target, outcome)
	}
}

func (m MultiReporter) Sleeping(d time.Duration, reason string) {
	for _, r := range m {
		r.Sleeping(d, reason)
	}
}

func (m MultiReporter) RunFinished(report *Report) {
	for _, r := range m {
		r.RunFinished(report)
	}
}
