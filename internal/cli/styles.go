package cli

import "github.com/charmbracelet/lipgloss"

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	CellStyle = lipgloss.NewStyle().Padding(0, 1)

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	DoneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true)

	BorderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))
)

// Marker returns the symbol for a day cell: checked, due but open, or not due.
func Marker(due, checked bool) string {
	switch {
	case checked:
		return "✓"
	case due:
		return "○"
	default:
		return "·"
	}
}

// Checkbox renders a due-list checkbox.
func Checkbox(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}
