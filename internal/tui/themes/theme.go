// Package themes defines the TUI color schemes.
package themes

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the visual style for the TUI.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Normal        lipgloss.Style
	Bold          lipgloss.Style
	Muted         lipgloss.Style
	Selected      lipgloss.Style
	Tab           lipgloss.Style
	ActiveTab     lipgloss.Style
	Box           lipgloss.Style
	RoundedBox    lipgloss.Style
	FocusedInput  lipgloss.Style
	StatusInfo    lipgloss.Style
	StatusError   lipgloss.Style
	StatusWarning lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusPending lipgloss.Style
	Primary       lipgloss.Color
	Border        lipgloss.Color
	Error         lipgloss.Color
	Warning       lipgloss.Color
	Success       lipgloss.Color
	Info          lipgloss.Color
}

type palette struct {
	primary      lipgloss.Color
	foreground   lipgloss.Color
	subtle       lipgloss.Color
	muted        lipgloss.Color
	border       lipgloss.Color
	success      lipgloss.Color
	warning      lipgloss.Color
	errorC       lipgloss.Color
	info         lipgloss.Color
	selectedText lipgloss.Color
}

func build(p palette) Theme {
	return Theme{
		Primary: p.primary,
		Border:  p.border,
		Error:   p.errorC,
		Warning: p.warning,
		Success: p.success,
		Info:    p.info,

		Title:    lipgloss.NewStyle().Bold(true).Foreground(p.primary).MarginBottom(1),
		Subtitle: lipgloss.NewStyle().Foreground(p.subtle).MarginBottom(1),
		Normal:   lipgloss.NewStyle().Foreground(p.foreground),
		Bold:     lipgloss.NewStyle().Bold(true).Foreground(p.foreground),
		Muted:    lipgloss.NewStyle().Foreground(p.muted),
		Selected: lipgloss.NewStyle().Background(p.primary).Foreground(p.selectedText).Bold(true),

		Tab:       lipgloss.NewStyle().Foreground(p.muted).Padding(0, 1),
		ActiveTab: lipgloss.NewStyle().Foreground(p.selectedText).Background(p.primary).Bold(true).Padding(0, 1),

		Box: lipgloss.NewStyle().Padding(1, 2),
		RoundedBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.border).
			Padding(1, 2),
		FocusedInput: lipgloss.NewStyle().Foreground(p.primary).Bold(true),

		StatusSuccess: lipgloss.NewStyle().Foreground(p.success).Bold(true),
		StatusWarning: lipgloss.NewStyle().Foreground(p.warning).Bold(true),
		StatusError:   lipgloss.NewStyle().Foreground(p.errorC).Bold(true),
		StatusInfo:    lipgloss.NewStyle().Foreground(p.info).Bold(true),
		StatusPending: lipgloss.NewStyle().Foreground(p.muted).Italic(true),
	}
}

// Default is the default theme.
var Default = build(palette{
	primary:      lipgloss.Color("#7c3aed"),
	foreground:   lipgloss.Color("#fafafa"),
	subtle:       lipgloss.Color("#a3a3a3"),
	muted:        lipgloss.Color("#737373"),
	border:       lipgloss.Color("#404040"),
	success:      lipgloss.Color("#10b981"),
	warning:      lipgloss.Color("#f59e0b"),
	errorC:       lipgloss.Color("#ef4444"),
	info:         lipgloss.Color("#3b82f6"),
	selectedText: lipgloss.Color("#fafafa"),
})

// CatppuccinMocha is the Catppuccin Mocha theme.
var CatppuccinMocha = build(palette{
	primary:      lipgloss.Color("#cba6f7"),
	foreground:   lipgloss.Color("#cdd6f4"),
	subtle:       lipgloss.Color("#a6adc8"),
	muted:        lipgloss.Color("#6c7086"),
	border:       lipgloss.Color("#45475a"),
	success:      lipgloss.Color("#a6e3a1"),
	warning:      lipgloss.Color("#f9e2af"),
	errorC:       lipgloss.Color("#f38ba8"),
	info:         lipgloss.Color("#89dceb"),
	selectedText: lipgloss.Color("#1e1e2e"),
})

var registry = map[string]Theme{
	"default":          Default,
	"catppuccin-mocha": CatppuccinMocha,
}

// ByName returns a theme by its configuration name.
func ByName(name string) (Theme, bool) {
	t, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// Names lists the registered theme names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
