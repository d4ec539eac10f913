package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/pdfquiz/pdfquiz/internal/ui/theme"
)

// MenuItem represents a single item in an action menu.
type MenuItem struct {
	Label string
	// Key, when set, triggers the item directly.
	Key      string
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical action menu.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu creates a new menu with the first enabled item selected.
func NewMenu(items []MenuItem) Menu {
	selected := 0
	for i, item := range items {
		if !item.Disabled {
			selected = i
			break
		}
	}
	return Menu{
		Items:    items,
		Selected: selected,
	}
}

// Update handles keyboard navigation and hotkeys.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		for i := m.Selected - 1; i >= 0; i-- {
			if !m.Items[i].Disabled {
				m.Selected = i
				break
			}
		}
	case "down", "j":
		for i := m.Selected + 1; i < len(m.Items); i++ {
			if !m.Items[i].Disabled {
				m.Selected = i
				break
			}
		}
	case "enter":
		if m.Selected >= 0 && m.Selected < len(m.Items) {
			return m, m.Items[m.Selected].run()
		}
	default:
		for i, item := range m.Items {
			if item.Key != "" && item.Key == key && !item.Disabled {
				m.Selected = i
				return m, item.run()
			}
		}
	}

	return m, nil
}

func (item MenuItem) run() tea.Cmd {
	if item.Action == nil || item.Disabled {
		return nil
	}
	return item.Action()
}

// View renders the menu.
func (m Menu) View() string {
	var b strings.Builder
	for i, item := range m.Items {
		label := item.Label
		if item.Key != "" {
			label = "[" + item.Key + "] " + label
		}
		switch {
		case item.Disabled:
			b.WriteString(theme.Dimmed.Render("    " + label))
		case i == m.Selected:
			b.WriteString(lipgloss.NewStyle().
				Foreground(theme.Primary).
				Bold(true).
				Render("  ▸ " + label))
		default:
			b.WriteString(lipgloss.NewStyle().
				Foreground(theme.Text).
				Render("    " + label))
		}
		b.WriteString("\n")
	}
	return b.String()
}
