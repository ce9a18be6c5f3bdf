package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhath/ezcoll/internal/ui/icons"
	"github.com/nhath/ezcoll/internal/ui/styles"
)

func (m Model) renderStatusBar() string {
	var parts []string

	// 1. Page and location
	parts = append(parts, styles.PageStyle.Render(m.router.Location()))

	// 2. Connection info
	conn := fmt.Sprintf(" %s ", m.profile.Name)
	target := fmt.Sprintf(" %s ", limitString(m.profile.URL, 32))
	if _, tunnel := m.profile.SSHConfig(); tunnel {
		target = fmt.Sprintf(" %s %s ", icons.IconSSH, limitString(m.profile.URL, 28))
	}
	parts = append(parts, styles.ConnectionStyle.Render(conn)+
		lipgloss.NewStyle().Background(styles.CardBg()).Foreground(styles.TextSecondary()).Render(target))

	// 3. History position
	nav := ""
	if m.router.CanBack() {
		nav += icons.IconBack
	}
	if m.router.CanForward() {
		nav += icons.IconForward
	}
	if nav != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(styles.TextFaint()).Padding(0, 1).Render(nav))
	}

	st := m.store.State()

	// 4. Loading indicator
	if st.Fetching || st.Importing {
		label := " Loading..."
		if st.Importing {
			label = " Importing..."
		}
		parts = append(parts, lipgloss.NewStyle().Foreground(styles.AccentColor()).Padding(0, 1).Render(m.spinner.View()+label))
	}

	// 5. Change channel
	if m.watchNote != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(styles.HighlightColor()).Padding(0, 1).Render(icons.IconWatch+" "+m.watchNote))
	}

	// 6. Status message
	if m.statusMsg != "" {
		statusStyle := lipgloss.NewStyle().Background(styles.SuccessColor()).Foreground(styles.BgPrimary()).Padding(0, 1)
		parts = append(parts, statusStyle.Render(icons.IconSuccess+" "+limitString(m.statusMsg, 50)))
	}

	// 7. Failure toast
	errText := m.errorMsg
	if st.Err != nil {
		errText = st.Err.Error()
	}
	if errText != "" {
		errorStyle := lipgloss.NewStyle().Background(styles.ErrorColor()).Foreground(styles.TextPrimary()).Padding(0, 1)
		parts = append(parts, errorStyle.Render(icons.IconError+" "+limitString(errText, max(m.width/2, 20))))
	}

	help := styles.MetaStyle.Padding(0, 1).Render(keyHint(m.config.Keys.Help) + " help")
	content := lipgloss.JoinHorizontal(lipgloss.Left, parts...)
	gap := m.width - lipgloss.Width(content) - lipgloss.Width(help)
	if gap > 0 {
		content = lipgloss.JoinHorizontal(lipgloss.Left, content, lipgloss.NewStyle().Width(gap).Render(""), help)
	}
	return styles.StatusBarStyle.Width(m.width).MaxWidth(m.width).Render(content)
}
