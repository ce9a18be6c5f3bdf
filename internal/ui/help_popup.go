package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	overlay "github.com/rmhubbert/bubbletea-overlay"

	"github.com/nhath/ezcoll/internal/router"
	"github.com/nhath/ezcoll/internal/ui/styles"
)

func (m Model) helpContext() HelpContext {
	switch m.router.View() {
	case router.PageDocumentation:
		return HelpContextDocs
	case router.PageActivity:
		return HelpContextActivity
	}
	return HelpContextCollections
}

func (m Model) renderHelpPopup(main string) string {
	var content strings.Builder

	title := lipgloss.NewStyle().Bold(true).Foreground(styles.AccentColor()).Render("Keyboard Shortcuts")
	content.WriteString(title)
	content.WriteString("\n\n")

	keys := m.config.Keys

	section := func(name string, bindings []struct{ key, desc string }) {
		header := lipgloss.NewStyle().Bold(true).Foreground(styles.HighlightColor()).Render(name)
		content.WriteString(header + "\n")
		for _, b := range bindings {
			keyStyle := lipgloss.NewStyle().Foreground(styles.SuccessColor()).Width(18)
			descStyle := lipgloss.NewStyle().Foreground(styles.TextSecondary())
			content.WriteString(fmt.Sprintf("  %s %s\n", keyStyle.Render(b.key), descStyle.Render(b.desc)))
		}
		content.WriteString("\n")
	}

	section("Navigation", []struct{ key, desc string }{
		{keyHint(keys.FocusNext), "Switch sidebar / main"},
		{keyHint(keys.Collections), "Collections"},
		{keyHint(keys.Docs), "Documentation"},
		{keyHint(keys.Activity), "Activity"},
		{keyHint(keys.Back), "Back"},
		{keyHint(keys.Forward), "Forward"},
		{keyHint(keys.Filter), "Filter collections"},
	})

	switch m.helpContext() {
	case HelpContextCollections:
		section("Documents", []struct{ key, desc string }{
			{keyHint(keys.Expand), "Expand node"},
			{keyHint(keys.Collapse), "Fold node / parent"},
			{"E/C", "Expand / collapse all"},
			{keyHint(keys.Yank), "Copy document"},
			{keyHint(keys.Delete), "Delete document"},
		})
		section("Collection", []struct{ key, desc string }{
			{keyHint(keys.Import), "Import .json"},
			{keyHint(keys.Export), "Export to .json"},
			{keyHint(keys.Drop), "Drop collection"},
			{keyHint(keys.Reload), "Reload collection"},
		})
	case HelpContextDocs:
		section("Documentation", []struct{ key, desc string }{
			{"j/k", "Scroll"},
			{"pgup/pgdown", "Page"},
			{"enter", "Jump to heading (sidebar)"},
		})
	case HelpContextActivity:
		section("Activity", []struct{ key, desc string }{
			{"j/k", "Move"},
		})
	}

	section("Other", []struct{ key, desc string }{
		{keyHint(keys.Refresh), "Refresh everything"},
		{keyHint(keys.ToggleTheme), "Toggle theme"},
		{"esc", "Dismiss error / close"},
		{keyHint(keys.Quit), "Quit"},
	})

	content.WriteString(lipgloss.NewStyle().Faint(true).Render("Press Esc or " + keyHint(keys.Help) + " to close"))

	popupBox := styles.PopupStyle.
		Width(50).
		MaxHeight(max(m.height-2, 5)).
		Render(content.String())

	return overlay.Composite(popupBox, main, overlay.Center, overlay.Center, 0, 0)
}
