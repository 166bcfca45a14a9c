// Package tui renders a live fleet update display: one row per device with
// its current stage and outcome, an overall progress bar, and a summary
// when the run completes. The orchestrator feeds it through the Reporter
// bridge; the model itself never touches the network.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/updtrr/updtrr/internal/fleet"
)

// rowState tracks one device through the run.
type rowState int

const (
	rowPending rowState = iota
	rowActive
	rowDone
)

type deviceRow struct {
	target  fleet.Target
	state   rowState
	stage   string
	outcome *fleet.Outcome
}

// Model is the Bubble Tea model for a fleet update run.
type Model struct {
	cancel context.CancelFunc

	rows     []deviceRow
	finished int
	note     string
	report   *fleet.Report

	spinner spinner.Model
	bar     progress.Model
	width   int
}

// NewModel creates the run display. cancel is invoked when the operator
// presses q or ctrl+c; the run then winds down and delivers its final
// report as usual.
func NewModel(cancel context.CancelFunc) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(warningColor)

	bar := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(40),
	)

	return Model{
		cancel:  cancel,
		spinner: sp,
		bar:     bar,
		width:   terminalWidth(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			// Stop starting new devices. The run finishes on its own and
			// the final report still arrives.
			if m.cancel != nil {
				m.cancel()
			}
			m.note = "cancelling, finishing current device"
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if m.width < minTerminalWidth {
			m.width = minTerminalWidth
		}
		if m.width > maxContentWidth {
			m.width = maxContentWidth
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case runStartedMsg:
		m.rows = make([]deviceRow, len(msg.targets))
		for i, t := range msg.targets {
			m.rows[i] = deviceRow{target: t}
		}
		return m, nil

	case deviceStartedMsg:
		if row := m.rowFor(msg.target); row != nil {
			row.state = rowActive
			row.stage = "starting"
		}
		m.note = ""
		return m, nil

	case stageStartedMsg:
		if row := m.rowFor(msg.target); row != nil {
			row.stage = msg.stage.String()
		}
		return m, nil

	case stageFailedMsg:
		if row := m.rowFor(msg.target); row != nil {
			row.stage = fmt.Sprintf("%s failed, continuing", msg.stage)
		}
		return m, nil

	case deviceFinishedMsg:
		if row := m.rowFor(msg.target); row != nil {
			row.state = rowDone
			outcome := msg.outcome
			row.outcome = &outcome
		}
		m.finished++
		return m, nil

	case sleepingMsg:
		m.note = fmt.Sprintf("waiting %s before %s", msg.d, msg.reason)
		return m, nil

	case runFinishedMsg:
		m.report = msg.report
		return m, tea.Quit
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("updtrr fleet update"))
	b.WriteString("\n")

	if len(m.rows) > 0 {
		pct := float64(m.finished) / float64(len(m.rows))
		b.WriteString(headerNoteStyle.Render(
			fmt.Sprintf("%s %d/%d devices", m.bar.ViewAs(pct), m.finished, len(m.rows))))
		b.WriteString("\n\n")
	}

	for _, row := range m.rows {
		b.WriteString(m.renderRow(row))
		b.WriteString("\n")
	}

	if m.note != "" {
		b.WriteString("\n")
		b.WriteString(noteStyle.Render(" " + m.note))
		b.WriteString("\n")
	}

	if m.report != nil {
		counts := m.report.Counts()
		b.WriteString("\n")
		b.WriteString(summaryStyle.Render(fmt.Sprintf(
			"%s: %d updated, %d skipped, %d failed",
			m.report.Status(),
			counts[fleet.OutcomeSuccess],
			counts[fleet.OutcomeSkipped],
			counts[fleet.OutcomeFailure]+counts[fleet.OutcomePartialFailure])))
		b.WriteString("\n")
	}

	return borderStyle(m.width).Render(b.String())
}

// Report returns the final report once the run has finished, nil before.
func (m Model) Report() *fleet.Report {
	return m.report
}

func (m *Model) rowFor(target fleet.Target) *deviceRow {
	for i := range m.rows {
		if m.rows[i].target.Address == target.Address {
			return &m.rows[i]
		}
	}
	return nil
}

func (m Model) renderRow(row deviceRow) string {
	name := row.target.String()
	if w := lipgloss.Width(name); w < 28 {
		name += strings.Repeat(" ", 28-w)
	}

	switch row.state {
	case rowActive:
		return fmt.Sprintf(" %s %s %s", m.spinner.View(), rowActiveStyle.Render(name),
			noteStyle.Render(row.stage))

	case rowDone:
		marker, style := markerDone, rowDoneStyle
		detail := "updated"
		if row.outcome != nil {
			detail = row.outcome.Describe()
			switch row.outcome.Kind {
			case fleet.OutcomeFailure:
				marker, style = markerFailed, rowFailedStyle
			case fleet.OutcomePartialFailure:
				marker, style = markerFailed, rowActiveStyle
			case fleet.OutcomeSkipped, fleet.OutcomeNotAttempted:
				marker, style = markerSkipped, rowPendingStyle
			}
		}
		return fmt.Sprintf(" %s %s %s", style.Render(marker), style.Render(name),
			noteStyle.Render(detail))

	default:
		return fmt.Sprintf(" %s %s", rowPendingStyle.Render(markerPending),
			rowPendingStyle.Render(name))
	}
}

// Run executes a fleet run behind the live display. The run function is
// started on its own goroutine with a Reporter wired to the program, and
// its report is returned after the display exits. The caller owns ctx and
// its cancel; the model cancels on q/ctrl+c.
func Run(cancel context.CancelFunc, run func(fleet.Reporter) *fleet.Report) (*fleet.Report, error) {
	p := tea.NewProgram(NewModel(cancel))

	done := make(chan *fleet.Report, 1)
	go func() {
		done <- run(NewReporter(p))
	}()

	final, err := p.Run()
	if err != nil {
		// Display died; stop the run rather than flashing blind.
		cancel()
	}
	report := <-done
	if err != nil {
		return report, err
	}

	if m, ok := final.(Model); ok && m.report != nil {
		return m.report, nil
	}
	return report, nil
}
