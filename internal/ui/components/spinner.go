package components

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/pdfquiz/pdfquiz/internal/ui/theme"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// SpinnerTickMsg is sent at short intervals to animate a Spinner.
type SpinnerTickMsg time.Time

// SpinnerTick schedules the next frame.
func SpinnerTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return SpinnerTickMsg(t)
	})
}

// Spinner is a braille loading indicator. The owning screen advances it on
// every SpinnerTickMsg and stops re-arming the tick once the work is done.
type Spinner struct {
	frame int
}

// Advance moves to the next frame.
func (s Spinner) Advance() Spinner {
	s.frame = (s.frame + 1) % len(spinnerFrames)
	return s
}

// View renders the current frame followed by label.
func (s Spinner) View(label string) string {
	return lipgloss.NewStyle().Foreground(theme.Secondary).Render(spinnerFrames[s.frame]) +
		" " + lipgloss.NewStyle().Foreground(theme.TextDim).Render(label)
}
