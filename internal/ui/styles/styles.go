// Package styles contains Lip Gloss style definitions.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/tact/internal/timer"
)

var (
	// Semantic color names - Text hierarchy
	TextPrimaryColor     = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#CCCCCC"} // Main/primary text
	TextSecondaryColor   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"} // Ids, secondary info
	TextMutedColor       = lipgloss.AdaptiveColor{Light: "#888888", Dark: "#696969"} // Hints, help text, footers
	TextPlaceholderColor = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#777777"} // Input placeholders

	// Semantic color names - Border
	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"}
	BorderFocusColor   = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"}

	// Semantic color names - Status
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}

	// Timer state colors
	TimerRunningColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	TimerPausedColor  = lipgloss.AdaptiveColor{Light: "#DF8E1D", Dark: "#FECA57"}
	TimerStoppedColor = lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#BBBBBB"}

	// Selection indicator color (used for ">" prefix in lists)
	SelectionIndicatorColor = lipgloss.AdaptiveColor{Light: "#1A5276", Dark: "#FFFFFF"}

	// Overlay colors
	OverlayTitleColor  = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#C9C9C9"}
	OverlayBorderColor = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#8C8C8C"}

	// Toast notification colors
	ToastBorderSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	ToastBorderErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}
	ToastBorderInfoColor    = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"}
	ToastBorderWarnColor    = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"}

	SelectionIndicatorStyle = lipgloss.NewStyle().Bold(true).Foreground(SelectionIndicatorColor)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(OverlayTitleColor)

	SectionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Underline(true).
				Foreground(TextSecondaryColor)

	ItemStyle         = lipgloss.NewStyle().Foreground(TextPrimaryColor)
	SelectedItemStyle = lipgloss.NewStyle().Bold(true).Foreground(TextPrimaryColor)
	MutedStyle        = lipgloss.NewStyle().Foreground(TextMutedColor)
	ElapsedStyle      = lipgloss.NewStyle().Foreground(TextSecondaryColor)

	TimerRunningStyle = lipgloss.NewStyle().Foreground(TimerRunningColor)
	TimerPausedStyle  = lipgloss.NewStyle().Foreground(TimerPausedColor)
	TimerStoppedStyle = lipgloss.NewStyle().Foreground(TimerStoppedColor)

	// Bordered box around the whole dashboard
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderDefaultColor).
			Padding(0, 1)

	InputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderFocusColor).
			Padding(0, 1)

	// Error display
	ErrorStyle = lipgloss.NewStyle().
			Foreground(StatusErrorColor).
			Bold(true)
)

// StateStyle returns the style used for a timer state badge.
func StateStyle(s timer.State) lipgloss.Style {
	switch s {
	case timer.StateRunning:
		return TimerRunningStyle
	case timer.StatePaused:
		return TimerPausedStyle
	default:
		return TimerStoppedStyle
	}
}

// StateBadge renders "[Running]", "[Paused]" or "[Stopped]" in the state's color.
func StateBadge(s timer.State) string {
	var label string
	switch s {
	case timer.StateRunning:
		label = "[Running]"
	case timer.StatePaused:
		label = "[Paused]"
	default:
		label = "[Stopped]"
	}
	return StateStyle(s).Render(label)
}
