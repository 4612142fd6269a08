// Package style provides consistent terminal styling using Lipgloss.
package style

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Success style for positive outcomes
	Success = lipgloss.NewStyle().
		Foreground(lipgloss.Color("10")). // Green
		Bold(true)

	// Warning style for cautionary messages
	Warning = lipgloss.NewStyle().
		Foreground(lipgloss.Color("11")). // Yellow
		Bold(true)

	// Error style for failures
	Error = lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")). // Red
		Bold(true)

	// Info style for informational messages
	Info = lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")) // Blue

	// Dim style for secondary information
	Dim = lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")) // Gray

	// Bold style for emphasis
	Bold = lipgloss.NewStyle().
		Bold(true)

	// Heading labels a section of list output
	Heading = lipgloss.NewStyle().
		Bold(true).
		Underline(true)

	// Column pads table cells to a fixed width
	Column = lipgloss.NewStyle().
		Width(16)

	// SuccessPrefix is the checkmark prefix for success messages
	SuccessPrefix = Success.Render("✓")

	// WarningPrefix is the warning prefix
	WarningPrefix = Warning.Render("⚠")

	// ErrorPrefix is the error prefix
	ErrorPrefix = Error.Render("✗")

	// ArrowPrefix for action indicators
	ArrowPrefix = Info.Render("→")
)

// ID renders a Telegram user or chat id.
func ID(id int64) string {
	return Bold.Render(strconv.FormatInt(id, 10))
}
