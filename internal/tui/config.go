package tui

import (
	"github.com/Veraticus/finchat/internal/tui/themes"
)

// Config holds TUI configuration.
type Config struct {
	Theme        themes.Theme
	Width        int
	Height       int
	AltScreen    bool
	ShowHelp     bool
	MouseSupport bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:        themes.Default,
		Width:        80,
		Height:       24,
		AltScreen:    true,
		ShowHelp:     true,
		MouseSupport: true,
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithAltScreen toggles the alternate screen buffer.
func WithAltScreen(enabled bool) Option {
	return func(c *Config) {
		c.AltScreen = enabled
	}
}

// WithMouse toggles mouse wheel scrolling.
func WithMouse(enabled bool) Option {
	return func(c *Config) {
		c.MouseSupport = enabled
	}
}
