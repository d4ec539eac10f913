package components

import (
	"charm.land/lipgloss/v2"

	"github.com/pdfquiz/pdfquiz/internal/ui/theme"
)

// ContentWidth returns the inner width shared by all cards on a screen so
// they line up.
func ContentWidth(frameWidth int) int {
	// Border (2) + padding (4)
	w := frameWidth - 6
	if w > 76 {
		w = 76
	}
	if w < 20 {
		w = 20
	}
	return w
}

// Card wraps content in a rounded-border card at the given content width.
func Card(content string, cw int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw - 2).
		Padding(1, 2).
		Render(content)
}
