package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

var (
	accent = lipgloss.Color("#7D56F4")
	muted  = lipgloss.Color("#888888")
	warn   = lipgloss.Color("#E06C75")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(accent).
			Padding(0, 1)

	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(muted)
	activeTabStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).Underline(true).Foreground(accent)

	contextStyle = lipgloss.NewStyle().Foreground(muted).Padding(0, 1)
	errorStyle   = lipgloss.NewStyle().Foreground(warn).Padding(0, 1)
	footerStyle  = lipgloss.NewStyle().Foreground(muted).Padding(1, 1, 0, 1)

	previewStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1)
)

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(muted).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(accent).
		Bold(false)
	return s
}
