package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/pdfquiz/pdfquiz/internal/quizgen"
	"github.com/pdfquiz/pdfquiz/internal/ui/theme"
)

// MultiChoice is a four-option selector labelled A-D.
type MultiChoice struct {
	Options  []string
	Selected int

	// ChosenIndex is the option confirmed with Enter or a letter key, -1
	// until then.
	ChosenIndex int

	// Revealed freezes the selector and marks CorrectIndex and ChosenIndex.
	Revealed     bool
	CorrectIndex int
}

// NewMultiChoice creates a selector with the cursor on the given option.
// An out-of-range selected puts the cursor on the first option.
func NewMultiChoice(options []string, selected int) MultiChoice {
	if selected < 0 || selected >= len(options) {
		selected = 0
	}
	return MultiChoice{
		Options:      options,
		Selected:     selected,
		ChosenIndex:  -1,
		CorrectIndex: -1,
	}
}

// Reveal returns a frozen copy showing chosen against correct.
func (m MultiChoice) Reveal(chosen, correct int) MultiChoice {
	m.Revealed = true
	m.ChosenIndex = chosen
	m.CorrectIndex = correct
	return m
}

// Chosen reports whether an option has been confirmed.
func (m MultiChoice) Chosen() bool {
	return !m.Revealed && m.ChosenIndex >= 0
}

// Update handles arrow navigation, Enter, and the letter keys a-d.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Revealed {
		return m, nil
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	n := m.choices()
	switch key := kmsg.String(); key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < n-1 {
			m.Selected++
		}
	case "enter":
		if m.Selected < n {
			m.ChosenIndex = m.Selected
		}
	default:
		if i := quizgen.OptionIndex(key); i >= 0 && i < n {
			m.Selected = i
			m.ChosenIndex = i
		}
	}

	return m, nil
}

// View renders the options, one per line.
func (m MultiChoice) View() string {
	var b strings.Builder
	for i, opt := range m.Options {
		label := "?"
		if i < len(quizgen.OptionLabels) {
			label = quizgen.OptionLabels[i]
		}
		prefix := "  "
		if i == m.Selected && !m.Revealed {
			prefix = "▸ "
		}

		line := fmt.Sprintf("%s%s)  %s", prefix, label, opt)

		switch {
		case m.Revealed && i == m.CorrectIndex:
			b.WriteString(theme.Correct.Render(line + "  ✓"))
		case m.Revealed && i == m.ChosenIndex:
			b.WriteString(theme.Incorrect.Render(line + "  ✗"))
		case m.Revealed:
			b.WriteString(theme.Dimmed.Render(line))
		case i == m.Selected:
			b.WriteString(theme.Selected.Render(line))
		default:
			b.WriteString(theme.Unselected.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// choices is how many options can be picked. Options past the last label
// are shown but not selectable.
func (m MultiChoice) choices() int {
	return min(len(m.Options), len(quizgen.OptionLabels))
}
