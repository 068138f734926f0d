// Package themes holds the color schemes of the chat TUI.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	UserBubble    lipgloss.Style
	SystemBubble  lipgloss.Style
	Timestamp     lipgloss.Style
	Input         lipgloss.Style
	StatusBar     lipgloss.Style
	StatusError   lipgloss.Style
	StatusSuccess lipgloss.Style
	StagePending  lipgloss.Style
	StageCurrent  lipgloss.Style
	StageDone     lipgloss.Style
	StageError    lipgloss.Style
	Primary       lipgloss.Color
	Muted         lipgloss.Color
	Border        lipgloss.Color
}

func build(primary, secondary, fg, muted, border, success, errColor, userBg, systemBg lipgloss.Color) Theme {
	return Theme{
		Primary: primary,
		Muted:   muted,
		Border:  border,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary),
		Subtitle: lipgloss.NewStyle().
			Foreground(muted),
		UserBubble: lipgloss.NewStyle().
			Background(userBg).
			Foreground(lipgloss.Color("#fafafa")).
			Padding(0, 1),
		SystemBubble: lipgloss.NewStyle().
			Background(systemBg).
			Foreground(fg).
			Padding(0, 1),
		Timestamp: lipgloss.NewStyle().
			Foreground(muted).
			Italic(true),
		Input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),
		StatusBar: lipgloss.NewStyle().
			Foreground(secondary),
		StatusError: lipgloss.NewStyle().
			Foreground(errColor).
			Bold(true),
		StatusSuccess: lipgloss.NewStyle().
			Foreground(success).
			Bold(true),
		StagePending: lipgloss.NewStyle().
			Foreground(muted),
		StageCurrent: lipgloss.NewStyle().
			Foreground(primary).
			Bold(true),
		StageDone: lipgloss.NewStyle().
			Foreground(success),
		StageError: lipgloss.NewStyle().
			Foreground(errColor),
	}
}

// Default is the default theme.
var Default = build(
	lipgloss.Color("#2d6cdf"), // primary
	lipgloss.Color("#7fb2f0"), // secondary
	lipgloss.Color("#fafafa"), // foreground
	lipgloss.Color("#737373"), // muted
	lipgloss.Color("#404040"), // border
	lipgloss.Color("#10b981"), // success
	lipgloss.Color("#ef4444"), // error
	lipgloss.Color("#2d6cdf"), // user bubble
	lipgloss.Color("#262626"), // system bubble
)

// CatppuccinMocha is the Catppuccin Mocha theme.
var CatppuccinMocha = build(
	lipgloss.Color("#cba6f7"),
	lipgloss.Color("#f5c2e7"),
	lipgloss.Color("#cdd6f4"),
	lipgloss.Color("#6c7086"),
	lipgloss.Color("#45475a"),
	lipgloss.Color("#a6e3a1"),
	lipgloss.Color("#f38ba8"),
	lipgloss.Color("#8839ef"),
	lipgloss.Color("#313244"),
)

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	switch name {
	case "catppuccin-mocha":
		return CatppuccinMocha
	default:
		return Default
	}
}
