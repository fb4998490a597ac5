// Package styles provides the lipgloss styles shared by the CLI commands.
package styles

import "github.com/charmbracelet/lipgloss"

// Theme holds the pre-built styles the commands print with.
type Theme struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Normal    lipgloss.Style
	Subtle    lipgloss.Style
	Highlight lipgloss.Style

	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
	SuccessStyle lipgloss.Style

	Badge      lipgloss.Style
	BadgeMuted lipgloss.Style

	Key   lipgloss.Style
	Value lipgloss.Style
}

// NewTheme builds the default dark theme.
func NewTheme() Theme {
	var (
		text    = lipgloss.Color("#cdd6f4")
		muted   = lipgloss.Color("#6c7086")
		accent  = lipgloss.Color("#89b4fa")
		errCol  = lipgloss.Color("#f38ba8")
		warnCol = lipgloss.Color("#f9e2af")
		okCol   = lipgloss.Color("#a6e3a1")
		surface = lipgloss.Color("#313244")
	)

	return Theme{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(accent),
		Subtitle:  lipgloss.NewStyle().Foreground(text).Bold(true),
		Normal:    lipgloss.NewStyle().Foreground(text),
		Subtle:    lipgloss.NewStyle().Foreground(muted),
		Highlight: lipgloss.NewStyle().Foreground(accent),

		ErrorStyle:   lipgloss.NewStyle().Foreground(errCol).Bold(true),
		WarningStyle: lipgloss.NewStyle().Foreground(warnCol),
		SuccessStyle: lipgloss.NewStyle().Foreground(okCol),

		Badge:      lipgloss.NewStyle().Foreground(okCol).Background(surface).Padding(0, 1),
		BadgeMuted: lipgloss.NewStyle().Foreground(muted).Background(surface).Padding(0, 1),

		Key:   lipgloss.NewStyle().Foreground(accent),
		Value: lipgloss.NewStyle().Foreground(text),
	}
}
