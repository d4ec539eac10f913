// Package layout draws the frame around every screen: a header bar with the
// app name, screen title and session status, and a footer of key hints.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/pdfquiz/pdfquiz/internal/ui/theme"
)

// Terminal size limits. Below the minimum only a resize notice is drawn.
const (
	MinWidth  = 80
	MinHeight = 24

	compactWidth  = 100
	compactHeight = 30
)

const appName = "PDF Quiz"

// KeyHint is one "key description" pair in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// bar is the rounded box shared by the header and the footer.
var bar = lipgloss.NewStyle().
	Background(theme.BgCard).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(theme.Border)

// IsCompactWidth reports whether hints should drop their descriptions.
func IsCompactWidth(width int) bool {
	return width < compactWidth
}

// IsCompactHeight reports whether screens should drop spacer lines.
func IsCompactHeight(height int) bool {
	return height < compactHeight
}

func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage asks the user to enlarge the terminal.
func RenderMinSizeMessage(width, height int) string {
	msg := fmt.Sprintf("터미널 창이 너무 작습니다.\n\n최소 %d x %d 크기로\n조정해주세요.\n\n현재: %d x %d",
		MinWidth, MinHeight, width, height)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Text).Align(lipgloss.Center).Render(msg))
}

// RenderHeader puts the app name on the left, title in the middle and
// status (source document, score) on the right.
func RenderHeader(title, status string, width int) string {
	inner := max(width-2, 0)
	third := inner / 3

	name := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).
		PaddingLeft(1).Width(third).Render(appName)
	mid := lipgloss.NewStyle().Foreground(theme.Text).
		Width(inner - 2*third).Align(lipgloss.Center).Render(title)
	stat := lipgloss.NewStyle().Foreground(theme.Accent).
		PaddingRight(1).Width(third).Align(lipgloss.Right).Render(status)

	return bar.Width(width).Render(lipgloss.JoinHorizontal(lipgloss.Top, name, mid, stat))
}

// RenderFooter lists hints. Narrow terminals show keys only.
func RenderFooter(hints []KeyHint, width int) string {
	keyStyle := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(theme.TextDim)
	short := IsCompactWidth(width)

	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		if short {
			parts = append(parts, keyStyle.Render(h.Key))
			continue
		}
		parts = append(parts, keyStyle.Render(h.Key)+" "+descStyle.Render(h.Description))
	}
	return bar.Width(width).Render(" " + strings.Join(parts, "   "))
}

// RenderFrame stacks header, content and footer, padding the content to
// fill the remaining height.
func RenderFrame(header, content, footer string, width, height int) string {
	body := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.NewStyle().Width(width).Height(body).MaxHeight(body).Render(content),
		footer,
	)
}
