package ui

import "github.com/charmbracelet/lipgloss"

// Colors used throughout the TUI.
var (
	ColorRed     = lipgloss.Color("#FF0000")
	ColorGreen   = lipgloss.Color("#00FF00")
	ColorYellow  = lipgloss.Color("#FFFF00")
	ColorOrange  = lipgloss.Color("#FFA500")
	ColorCyan    = lipgloss.Color("#00FFFF")
	ColorGray    = lipgloss.Color("#666666")
	ColorDimGray = lipgloss.Color("#444444")
	ColorWhite   = lipgloss.Color("#FFFFFF")
	ColorMagenta = lipgloss.Color("#FF00FF")
)

// Base styles reused by UI components.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorCyan)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	PanelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite)

	PanelTitleActiveStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorCyan)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorCyan).
			Bold(true)

	CardNumberStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	CardBackStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	CountStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(ColorGreen).
			Bold(true)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ColorMagenta)

	FooterKeyStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	FooterDescStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	DividerStyle = lipgloss.NewStyle().
			Foreground(ColorDimGray)

	RelevanceGreenStyle = lipgloss.NewStyle().
				Foreground(ColorGreen)

	RelevanceYellowStyle = lipgloss.NewStyle().
				Foreground(ColorYellow)

	RelevanceOrangeStyle = lipgloss.NewStyle().
				Foreground(ColorOrange)

	RelevanceGrayStyle = lipgloss.NewStyle().
				Foreground(ColorGray)
)
