// ============================================================================
// shadowctl - Shadow Mode PPC Console
// ============================================================================
//
// Package:     dashboard
// Description: Styles for the dashboard TUI
// License:     MIT
// ============================================================================

package dashboard

import (
	"github.com/charmbracelet/lipgloss"
)

// Color Palette - shared with the log view for consistency
var (
	ColorPrimary = lipgloss.Color("#8B5CF6") // Violet
	ColorSuccess = lipgloss.Color("#10B981") // Emerald
	ColorWarning = lipgloss.Color("#F59E0B") // Amber
	ColorError   = lipgloss.Color("#EF4444") // Red
	ColorDimmed  = lipgloss.Color("#374151") // Dark Gray

	ColorBgPanel = lipgloss.Color("#1E293B") // Slate 800

	ColorText      = lipgloss.Color("#F8FAFC") // Slate 50
	ColorTextMuted = lipgloss.Color("#94A3B8") // Slate 400
	ColorTextDim   = lipgloss.Color("#64748B") // Slate 500
)

var (
	LogoStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Bold(true)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary)
)

// Panel styles
var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorDimmed).
			Padding(0, 1)

	PanelTitleStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	TitlePanelStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 2)
)

// Value styles
var (
	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Bold(true)

	PositiveStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	NegativeStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)

	StaleStyle = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)

	ShadowOnStyle = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)

	ShadowOffStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	SelectedRowStyle = lipgloss.NewStyle().
				Foreground(ColorPrimary).
				Bold(true)
)

// Status bar styles
var (
	StatusBarStyle = lipgloss.NewStyle().
			Background(ColorBgPanel).
			Foreground(ColorText).
			Padding(0, 1)
)

// Help styles
var (
	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			MarginTop(1)

	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)
)

// Logo
const Logo = "Shadow Mode Console"

// RenderKeyHint renders a keyboard shortcut hint
func RenderKeyHint(key, description string) string {
	return HelpKeyStyle.Render(key) + " " + HelpDescStyle.Render(description)
}
