package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Color palette for the update display
var (
	primaryColor = lipgloss.Color("#7D56F4") // Purple - header, borders
	successColor = lipgloss.Color("#43BF6D") // Green - updated devices
	errorColor   = lipgloss.Color("#FF5555") // Red - failed devices
	warningColor = lipgloss.Color("#FFA500") // Orange - in progress, partial
	mutedColor   = lipgloss.Color("#626262") // Gray - pending, skipped
	textColor    = lipgloss.Color("#FFFFFF") // White - main content
)

const (
	minTerminalWidth = 60
	maxContentWidth  = 100
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Bold(true).
			PaddingLeft(1)

	headerNoteStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			PaddingLeft(1)

	rowDoneStyle = lipgloss.NewStyle().
			Foreground(successColor)

	rowActiveStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	rowFailedStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	rowPendingStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	noteStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	summaryStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Bold(true).
			PaddingLeft(1)
)

// Device status markers
const (
	markerDone    = "✓"
	markerFailed  = "✗"
	markerSkipped = "⊘"
	markerPending = "·"
)

// borderStyle frames the whole display.
func borderStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(primaryColor).
		Width(width - 2).
		Padding(0, 1)
}

// IsTerminal reports whether stdout is attached to a terminal. The TUI
// refuses to start when it is not; piping a TUI into a file helps nobody.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// terminalWidth returns the usable display width with sane bounds.
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < minTerminalWidth {
		return minTerminalWidth
	}
	if width > maxContentWidth {
		return maxContentWidth
	}
	return width
}
