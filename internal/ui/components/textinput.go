package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/pdfquiz/pdfquiz/internal/ui/theme"
)

// TextInput wraps bubbles/textinput with the app styling and an optional
// graded mark.
type TextInput struct {
	Model    textinput.Model
	MaxWidth int
	marked   bool
	correct  bool
}

// NewTextInput creates a focused text input. maxWidth limits the number of
// characters when positive.
func NewTextInput(placeholder string, maxWidth int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()

	if maxWidth > 0 {
		ti.CharLimit = maxWidth
	}

	return TextInput{
		Model:    ti,
		MaxWidth: maxWidth,
	}
}

// Init returns the initial command.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update handles messages. A marked input ignores edits.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if t.marked {
		return t, nil
	}
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the text input.
func (t TextInput) View() string {
	view := t.Model.View()
	if t.marked {
		if t.correct {
			view += " " + lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
		} else {
			view += " " + lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
		}
	}
	return view
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// SetValue replaces the input text and moves the cursor to the end.
func (t *TextInput) SetValue(s string) {
	t.Model.SetValue(s)
	t.Model.CursorEnd()
}

// Mark freezes the input and shows whether the answer was correct.
func (t *TextInput) Mark(correct bool) {
	t.marked = true
	t.correct = correct
	t.Model.Blur()
}
