// Package theme holds the palette and shared lipgloss styles.
package theme

import (
	"charm.land/lipgloss/v2"
)

// Palette: indigo and teal accents on dark slate.
var (
	Primary   = lipgloss.Color("#6366F1")
	Secondary = lipgloss.Color("#14B8A6")
	Accent    = lipgloss.Color("#F59E0B")
	Success   = lipgloss.Color("#22C55E")
	Error     = lipgloss.Color("#F43F5E")
	Text      = lipgloss.Color("#F8FAFC")
	TextDim   = lipgloss.Color("#94A3B8")
	BgCard    = lipgloss.Color("#1E293B")
	Border    = lipgloss.Color("#334155")
)

var base = lipgloss.NewStyle()

// Headings and hints.
var (
	Title    = base.Foreground(Primary).Bold(true).Align(lipgloss.Center)
	Subtitle = base.Foreground(TextDim).Align(lipgloss.Center)
	Hint     = base.Foreground(TextDim).Italic(true)
)

// Answer and option states.
var (
	Selected   = base.Foreground(Primary).Bold(true)
	Unselected = base.Foreground(Text)
	Correct    = base.Foreground(Success).Bold(true)
	Incorrect  = base.Foreground(Error).Bold(true)
	Dimmed     = base.Foreground(TextDim)
)

var (
	ProgressFilled = base.Background(Secondary)
	ProgressEmpty  = base.Background(Border)

	// ErrorBanner frames the Korean failure message shown under a screen.
	ErrorBanner = base.Foreground(Error).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Error).
			Padding(0, 2)
)
