package tui

import (
	"github.com/Veraticus/marketpulse/internal/export"
	"github.com/Veraticus/marketpulse/internal/gate"
	"github.com/Veraticus/marketpulse/internal/tui/themes"
)

// Config holds TUI configuration.
type Config struct {
	Theme      themes.Theme
	StartRoute gate.Route
	ExportDir  string
	Export     export.Format
	Width      int
	Height     int
	Animations bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:      themes.Default,
		StartRoute: gate.RouteDashboard,
		ExportDir:  ".",
		Export:     export.FormatText,
		Width:      100,
		Height:     30,
		Animations: true,
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

// WithStartRoute sets the first route requested.
func WithStartRoute(route gate.Route) Option {
	return func(c *Config) {
		c.StartRoute = route
	}
}

// WithExportDir sets where exported reports are written.
func WithExportDir(dir string) Option {
	return func(c *Config) {
		c.ExportDir = dir
	}
}

// WithExportFormat sets the format used when exporting a report.
func WithExportFormat(format export.Format) Option {
	return func(c *Config) {
		c.Export = format
	}
}

// WithAnimations toggles the spinner and timed toast dismissal.
func WithAnimations(enabled bool) Option {
	return func(c *Config) {
		c.Animations = enabled
	}
}
