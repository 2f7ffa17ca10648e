package main

import "github.com/charmbracelet/lipgloss"

// Color palette for the live view.
var (
	salmonPink  = lipgloss.Color("#FFB3BA")
	mintGreen   = lipgloss.Color("#A8E6CF")
	mutedGray   = lipgloss.Color("#6B7280")
	brightWhite = lipgloss.Color("#F9FAFB")
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(salmonPink).
			Bold(true)

	urlStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	categoryStyle = lipgloss.NewStyle().
			Foreground(mintGreen).
			Bold(true)

	stateStyle = lipgloss.NewStyle().
			Foreground(brightWhite)

	footerStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	waitingStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Italic(true)
)
