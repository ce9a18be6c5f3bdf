// Package modal provides the confirmation dialog for destructive actions.
package modal

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	overlay "github.com/rmhubbert/bubbletea-overlay"

	"github.com/nhath/ezcoll/internal/store"
	"github.com/nhath/ezcoll/internal/ui/styles"
)

// ConfirmMsg is sent when the user accepts the pending action
type ConfirmMsg struct {
	Action store.Action
}

// CancelMsg is sent when the dialog is dismissed
type CancelMsg struct{}

type button int

const (
	buttonCancel button = iota
	buttonConfirm
)

// Styles for the dialog
type Styles struct {
	Box           lipgloss.Style
	Header        lipgloss.Style
	Button        lipgloss.Style
	ButtonFocused lipgloss.Style
	Danger        lipgloss.Style
	Hint          lipgloss.Style
}

// DefaultStyles builds styles from the current palette
func DefaultStyles() Styles {
	button := lipgloss.NewStyle().Padding(0, 2).Foreground(styles.TextSecondary()).Background(styles.CardBg())
	return Styles{
		Box:           styles.PopupStyle.BorderForeground(styles.ErrorColor()),
		Header:        lipgloss.NewStyle().Bold(true).Foreground(styles.TextPrimary()),
		Button:        button,
		ButtonFocused: button.Foreground(styles.BgPrimary()).Background(styles.AccentColor()).Bold(true),
		Danger:        button.Foreground(styles.BgPrimary()).Background(styles.ErrorColor()).Bold(true),
		Hint:          styles.MetaStyle,
	}
}

// Model is a view over store.Modal. It never owns the pending action.
type Model struct {
	modal  store.Modal
	focus  button
	width  int
	styles Styles
}

// New creates a closed dialog
func New() Model {
	return Model{styles: DefaultStyles(), width: 50}
}

func (m Model) SetStyles(s Styles) Model {
	m.styles = s
	return m
}

// SetModal syncs the dialog with the store. Focus resets on a new action.
func (m Model) SetModal(modal store.Modal) Model {
	if modal.Action != m.modal.Action || modal.Open != m.modal.Open {
		m.focus = buttonCancel
	}
	m.modal = modal
	return m
}

func (m Model) SetWidth(w int) Model {
	m.width = w
	return m
}

func (m Model) Visible() bool { return m.modal.Open }

// Update handles keys while the dialog is open
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.modal.Open {
		return m, nil
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "tab", "shift+tab", "left", "right", "h", "l":
		m.focus = 1 - m.focus
	case "enter", " ":
		if m.focus == buttonConfirm {
			return m, m.confirm()
		}
		return m, cancel
	case "y", "Y":
		return m, m.confirm()
	case "n", "N", "esc", "q":
		return m, cancel
	}
	return m, nil
}

func (m Model) confirm() tea.Cmd {
	action := m.modal.Action
	return func() tea.Msg { return ConfirmMsg{Action: action} }
}

func cancel() tea.Msg { return CancelMsg{} }

// View renders the dialog box alone
func (m Model) View() string {
	if !m.modal.Open {
		return ""
	}

	cancelBtn := m.styles.Button.Render("Cancel")
	confirmBtn := m.styles.Button.Render(confirmLabel(m.modal.Action.Kind))
	if m.focus == buttonCancel {
		cancelBtn = m.styles.ButtonFocused.Render("Cancel")
	} else {
		confirmBtn = m.styles.Danger.Render(confirmLabel(m.modal.Action.Kind))
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Header.Width(m.width-6).Render(m.modal.Header),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, cancelBtn, "  ", confirmBtn),
		"",
		m.styles.Hint.Render("y confirm • n/esc cancel • tab switch"),
	)
	return m.styles.Box.Width(m.width).Render(body)
}

// Overlay draws the dialog centered over main
func (m Model) Overlay(main string) string {
	if !m.modal.Open {
		return main
	}
	return overlay.Composite(m.View(), main, overlay.Center, overlay.Center, 0, 0)
}

func confirmLabel(kind store.ActionKind) string {
	if kind == store.ActionDropCollection {
		return "Drop"
	}
	return "Delete"
}
