package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 2)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("86")).
		MarginBottom(1)

	Label = lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Width(16)

	Value = lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	Warn = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("220"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("242"))
)

// Row is one label/value line of a report panel.
type Row struct {
	Label string
	Value string
}

// Rowf formats the value of a row.
func Rowf(label, format string, args ...any) Row {
	return Row{Label: label, Value: fmt.Sprintf(format, args...)}
}

// Report renders a titled panel of aligned rows.
func Report(title string, rows []Row) string {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, Title.Render(title))
	for _, r := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, Label.Render(r.Label), Value.Render(r.Value)))
	}
	return Panel.Render(strings.Join(lines, "\n"))
}
