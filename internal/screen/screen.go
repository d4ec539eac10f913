package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/pdfquiz/pdfquiz/internal/session"
	"github.com/pdfquiz/pdfquiz/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// ResumedMsg is delivered to a screen that becomes active again after the
// screens above it were popped.
type ResumedMsg struct{}

// PhaseMsg reports that the quiz session moved to a new phase. The app
// forwards it to the active screen.
type PhaseMsg struct {
	Phase session.Phase
}
