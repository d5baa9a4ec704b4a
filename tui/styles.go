package tui

import "github.com/charmbracelet/lipgloss"

// Status colors shared with the desktop theme.
var (
	green  = lipgloss.Color("#2ec27e")
	yellow = lipgloss.Color("#e5a50a")
	red    = lipgloss.Color("#e01b24")
	blue   = lipgloss.Color("#3584e4")
	dim    = lipgloss.Color("#77767b")
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(blue).
			Bold(true).
			Padding(0, 1)

	paneStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(dim).
			Padding(0, 1).
			Width(22)

	focusedPaneStyle = paneStyle.
				BorderForeground(blue)

	headerStyle = lipgloss.NewStyle().
			Bold(true)

	cursorStyle = lipgloss.NewStyle().
			Foreground(blue).
			Bold(true)

	currentStyle = lipgloss.NewStyle().
			Foreground(green)

	statusStyle = lipgloss.NewStyle().
			Foreground(green)

	confirmStyle = lipgloss.NewStyle().
			Foreground(yellow).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(red)

	helpStyle = lipgloss.NewStyle().
			Foreground(dim)
)
