package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("39")
	muted  = lipgloss.Color("240")
	danger = lipgloss.Color("196")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	assistantStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	timestampStyle = lipgloss.NewStyle().
			Foreground(muted)

	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("220")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(muted).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(danger)

	helpStyle = lipgloss.NewStyle().
			Foreground(muted)

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent)
)
