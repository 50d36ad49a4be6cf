// Package cli provides styled terminal output and prompts for the pulse
// command line.
package cli

import (
	"github.com/Veraticus/marketpulse/internal/tui/themes"
	"github.com/charmbracelet/lipgloss"
)

// The command line borrows the TUI's default palette so both front ends
// agree on what success, failure and emphasis look like.
var (
	palette = themes.Default

	TitleStyle   = palette.Title
	BoldStyle    = palette.Bold
	SubtleStyle  = palette.Muted
	SuccessStyle = lipgloss.NewStyle().Foreground(palette.Success)
	WarningStyle = lipgloss.NewStyle().Foreground(palette.Warning)
	ErrorStyle   = lipgloss.NewStyle().Foreground(palette.Error)
	InfoStyle    = lipgloss.NewStyle().Foreground(palette.Info)
	HeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(palette.Primary)
	promptStyle  = lipgloss.NewStyle().Bold(true).Foreground(palette.Primary)
)

const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠"
	InfoIcon    = "ℹ"
	ReportIcon  = "📄"
)

func withIcon(style lipgloss.Style, icon, message string) string {
	return style.Render(icon + " " + message)
}

// FormatSuccess renders a confirmation line such as "✓ Signed out".
func FormatSuccess(message string) string { return withIcon(SuccessStyle, SuccessIcon, message) }

// FormatError renders a failure line.
func FormatError(message string) string { return withIcon(ErrorStyle, ErrorIcon, message) }

func FormatWarning(message string) string { return withIcon(WarningStyle, WarningIcon, message) }

func FormatInfo(message string) string { return withIcon(InfoStyle, InfoIcon, message) }

// FormatPrompt renders the label shown before reading an answer.
func FormatPrompt(label string) string {
	return promptStyle.Render(label + " → ")
}

// RenderBox frames content under a title, used for account, dashboard and
// analysis summaries.
func RenderBox(title, content string) string {
	heading := TitleStyle.UnsetMargins().Render(title)
	return palette.RoundedBox.Render(lipgloss.JoinVertical(lipgloss.Left, heading, content))
}
