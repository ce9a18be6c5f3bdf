// internal/ui/render.go
package ui

import (
	"github.com/charmbracelet/lipgloss"
	overlay "github.com/rmhubbert/bubbletea-overlay"

	"github.com/nhath/ezcoll/internal/router"
	"github.com/nhath/ezcoll/internal/ui/styles"
)

// View renders the UI
func (m Model) View() string {
	side := m.sidebar.View()
	mainW := max(m.width-lipgloss.Width(side)-1, 10)

	var page string
	switch m.router.View() {
	case router.PageDocumentation:
		page = m.renderDocs()
	case router.PageActivity:
		page = m.activity.View()
	default:
		page = m.renderCollections(mainW - 1)
	}

	bodyH := max(m.height-1, 1)
	main := lipgloss.NewStyle().Width(mainW).Height(bodyH).MaxHeight(bodyH).PaddingLeft(1).Render(page)
	body := lipgloss.JoinHorizontal(lipgloss.Top, side, main)
	screen := lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatusBar())

	switch {
	case m.modal.Visible():
		return m.modal.Overlay(screen)
	case m.showHelp:
		return m.renderHelpPopup(screen)
	case m.picking:
		return m.renderPicker(screen)
	}
	return screen
}

func (m Model) renderDocs() string {
	if m.docs.Fallback() {
		return styles.MetaStyle.Render("bundled documentation") + "\n" + m.docs.View()
	}
	return "\n" + m.docs.View()
}

func (m Model) renderPicker(main string) string {
	title := styles.TitleStyle.Render("Import into " + m.store.State().Active)
	hint := styles.MetaStyle.Render("enter select • esc cancel • only .json files")
	box := styles.PopupStyle.
		Width(min(70, max(m.width-6, 20))).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, styles.MetaStyle.Render(m.picker.CurrentDirectory), "", m.picker.View(), "", hint))
	return overlay.Composite(box, main, overlay.Center, overlay.Center, 0, 0)
}
