package tui

import "github.com/charmbracelet/lipgloss"

var (
	primary = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#93C5FD"}
	muted   = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	warning = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FCD34D"}

	headerStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(muted).
			Padding(0, 1)

	crumbStyle       = lipgloss.NewStyle().Foreground(muted)
	activeCrumbStyle = lipgloss.NewStyle().Foreground(primary).Bold(true)
	separatorStyle   = lipgloss.NewStyle().Foreground(muted)

	bodyStyle = lipgloss.NewStyle().Padding(0, 2)

	paletteStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primary).
			Padding(0, 1)

	matchStyle         = lipgloss.NewStyle().PaddingLeft(2)
	selectedMatchStyle = lipgloss.NewStyle().Foreground(primary).Bold(true)
	matchDetailStyle   = lipgloss.NewStyle().Foreground(muted)

	statusStyle = lipgloss.NewStyle().Foreground(warning).Padding(0, 1)
	helpStyle   = lipgloss.NewStyle().Foreground(muted).Padding(0, 1)
)
