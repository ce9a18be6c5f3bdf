// Package activity shows the activity log as a table
package activity

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	bbtable "github.com/evertras/bubble-table/table"

	"github.com/nhath/ezcoll/internal/prefs"
	"github.com/nhath/ezcoll/internal/ui/styles"
)

const (
	colTime       = "time"
	colAction     = "action"
	colCollection = "collection"
	colTarget     = "target"
	colStatus     = "status"

	// DefaultLimit is how many entries the page loads
	DefaultLimit = 200

	timeLayout = "2006-01-02 15:04:05"
)

// LoadedMsg carries the most recent entries
type LoadedMsg struct {
	Entries []prefs.Entry
	Err     error
}

// LoadCmd reads the latest entries from log
func LoadCmd(log prefs.ActivityLog, limit int) tea.Cmd {
	return func() tea.Msg {
		if log == nil {
			return LoadedMsg{}
		}
		entries, err := log.Recent(limit)
		return LoadedMsg{Entries: entries, Err: err}
	}
}

type Styles struct {
	Base      lipgloss.Style
	Header    lipgloss.Style
	Highlight lipgloss.Style
	Success   lipgloss.Style
	Error     lipgloss.Style
	Faint     lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Base:      lipgloss.NewStyle().Foreground(styles.TextPrimary()),
		Header:    lipgloss.NewStyle().Foreground(styles.AccentColor()).Bold(true),
		Highlight: lipgloss.NewStyle().Foreground(styles.SuccessColor()).Bold(true),
		Success:   lipgloss.NewStyle().Foreground(styles.SuccessColor()),
		Error:     lipgloss.NewStyle().Foreground(styles.ErrorColor()),
		Faint:     lipgloss.NewStyle().Foreground(styles.TextFaint()),
	}
}

// Model is the activity page
type Model struct {
	entries []prefs.Entry
	table   bbtable.Model
	width   int
	height  int
	focused bool
	styles  Styles
}

func New() Model {
	m := Model{width: 80, height: 20, styles: DefaultStyles()}
	return m.rebuild()
}

func (m Model) SetStyles(s Styles) Model {
	m.styles = s
	return m.rebuild()
}

func (m Model) SetSize(w, h int) Model {
	m.width = w
	m.height = h
	return m.rebuild()
}

func (m Model) SetEntries(entries []prefs.Entry) Model {
	m.entries = entries
	return m.rebuild()
}

func (m Model) Focus() Model {
	m.focused = true
	m.table = m.table.Focused(true)
	return m
}

func (m Model) Blur() Model {
	m.focused = false
	m.table = m.table.Focused(false)
	return m
}

func (m Model) Len() int { return len(m.entries) }

// Selected returns the highlighted entry
func (m Model) Selected() (prefs.Entry, bool) {
	if len(m.entries) == 0 {
		return prefs.Entry{}, false
	}
	i := m.table.GetHighlightedRowIndex()
	if i < 0 || i >= len(m.entries) {
		return prefs.Entry{}, false
	}
	return m.entries[i], true
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.entries) == 0 {
		return m.styles.Faint.Render("No activity yet. Imports, exports, deletes and drops show up here.")
	}
	out := m.table.View()
	if e, ok := m.Selected(); ok && e.ErrorMessage != "" {
		out += "\n" + m.styles.Error.Render(e.ErrorMessage)
	}
	return out
}

func (m Model) rebuild() Model {
	targetWidth := max(m.width-colWidth(colTime)-colWidth(colAction)-colWidth(colCollection)-colWidth(colStatus)-8, 12)
	cols := []bbtable.Column{
		bbtable.NewColumn(colTime, "Time", colWidth(colTime)),
		bbtable.NewColumn(colAction, "Action", colWidth(colAction)),
		bbtable.NewColumn(colCollection, "Collection", colWidth(colCollection)),
		bbtable.NewColumn(colTarget, "Target", targetWidth),
		bbtable.NewColumn(colStatus, "Status", colWidth(colStatus)),
	}

	rows := make([]bbtable.Row, 0, len(m.entries))
	for i := range m.entries {
		e := &m.entries[i]
		status := m.styles.Success
		if e.Status == prefs.StatusError {
			status = m.styles.Error
		}
		rows = append(rows, bbtable.NewRow(bbtable.RowData{
			colTime:       bbtable.NewStyledCell(e.ExecutedAt.Local().Format(timeLayout), m.styles.Faint),
			colAction:     e.Action,
			colCollection: e.Collection,
			colTarget:     e.TargetPreview(targetWidth - 2),
			colStatus:     bbtable.NewStyledCell(e.Status, status),
		}))
	}

	selected := m.table.GetHighlightedRowIndex()
	m.table = bbtable.New(cols).
		WithRows(rows).
		WithBaseStyle(m.styles.Base).
		HeaderStyle(m.styles.Header).
		HighlightStyle(m.styles.Highlight).
		WithPageSize(max(m.height-6, 1)).
		Focused(m.focused).
		BorderRounded()
	if selected > 0 && selected < len(rows) {
		m.table = m.table.WithHighlightedRow(selected)
	}
	return m
}

func colWidth(key string) int {
	switch key {
	case colTime:
		return len(timeLayout) + 2
	case colAction:
		return 8
	case colCollection:
		return 18
	case colStatus:
		return 9
	}
	return 10
}
