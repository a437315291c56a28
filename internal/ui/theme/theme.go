package theme

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/learnify/learnify/internal/topicgraph"
)

// Color palette
var (
	Primary   = lipgloss.Color("#8B5CF6") // Vivid Purple
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F97316") // Orange
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim)

	Label = lipgloss.NewStyle().
		Foreground(TextDim).
		Width(10)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Failure = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)

	Rule = lipgloss.NewStyle().
		Foreground(Border)
)

// Topic statuses
var (
	Locked    = lipgloss.NewStyle().Foreground(TextDim)
	Available = lipgloss.NewStyle().Foreground(Secondary).Bold(true)
	Generated = lipgloss.NewStyle().Foreground(Accent)
	Completed = lipgloss.NewStyle().Foreground(Success).Bold(true)
)

// StatusStyle returns the style used to render a topic status.
func StatusStyle(s topicgraph.Status) lipgloss.Style {
	switch s {
	case topicgraph.StatusAvailable:
		return Available
	case topicgraph.StatusGenerated:
		return Generated
	case topicgraph.StatusCompleted:
		return Completed
	default:
		return Locked
	}
}

// StatusBadge renders the icon and label of a status.
func StatusBadge(s topicgraph.Status) string {
	return StatusStyle(s).Render(s.Icon() + " " + s.Label())
}

// Divider renders a horizontal rule of the given width.
func Divider(width int) string {
	return Rule.Render(strings.Repeat("─", width))
}

// Field renders a "label value" line.
func Field(label, value string) string {
	return Label.Render(label) + " " + value
}

// PadRight pads s with spaces to width visible cells, ignoring ANSI styling.
func PadRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
