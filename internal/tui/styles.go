package tui

import "github.com/charmbracelet/lipgloss"

// styles contains all lipgloss styles used by the dashboard.
var styles = struct {
	Header   lipgloss.Style
	Counts   lipgloss.Style
	Focus    lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Footer   lipgloss.Style
	Spinner  lipgloss.Style
	Node     lipgloss.Style
	Selected lipgloss.Style
	InCycle  lipgloss.Style
}{
	Header: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("212")),

	Counts: lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")),

	Focus: lipgloss.NewStyle().
		Foreground(lipgloss.Color("39")),

	Warning: lipgloss.NewStyle().
		Foreground(lipgloss.Color("220")),

	Error: lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")),

	Footer: lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")),

	Spinner: lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")),

	Node: lipgloss.NewStyle(),

	Selected: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("212")),

	InCycle: lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")),
}
