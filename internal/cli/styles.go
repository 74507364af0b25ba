package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/debemdeboas/session-editor/internal/config"
)

type Styles struct {
	Prompt  lipgloss.Style
	Output  lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
}

// NewStyles returns the palette for theme, falling back to dark.
func NewStyles(theme string) Styles {
	if theme == config.LightTheme {
		return Styles{
			Prompt:  lipgloss.NewStyle().Foreground(lipgloss.Color(config.ColorPromptLight)).Bold(true),
			Output:  lipgloss.NewStyle().Foreground(lipgloss.Color(config.ColorOutputLight)),
			Success: lipgloss.NewStyle().Foreground(lipgloss.Color(config.ColorSuccessLight)),
			Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(config.ColorErrorLight)).Bold(true),
			Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color(config.ColorMutedLight)).Italic(true),
		}
	}
	return Styles{
		Prompt:  lipgloss.NewStyle().Foreground(lipgloss.Color(config.ColorPrompt)).Bold(true),
		Output:  lipgloss.NewStyle().Foreground(lipgloss.Color(config.ColorOutput)),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(config.ColorSuccess)),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(config.ColorError)).Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color(config.ColorMuted)).Italic(true),
	}
}
