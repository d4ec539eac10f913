package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/pdfquiz/pdfquiz/internal/ui/theme"
)

// ProgressBar displays a horizontal count-of-total bar.
type ProgressBar struct {
	Label   string
	Current int
	Total   int
	Width   int
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, current, total, width int) ProgressBar {
	return ProgressBar{
		Label:   label,
		Current: current,
		Total:   total,
		Width:   width,
	}
}

// Fraction returns Current/Total clamped to [0, 1].
func (p ProgressBar) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	f := float64(p.Current) / float64(p.Total)
	return min(max(f, 0), 1)
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	count := fmt.Sprintf("  %d/%d", p.Current, p.Total)
	barWidth := p.Width - lipgloss.Width(result) - lipgloss.Width(count)
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * p.Fraction())
	empty := barWidth - filled

	result += theme.ProgressFilled.Render(strings.Repeat(" ", filled))
	result += theme.ProgressEmpty.Render(strings.Repeat(" ", empty))
	result += theme.Dimmed.Render(count)

	return result
}
