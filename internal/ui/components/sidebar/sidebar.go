// Package sidebar provides the navigation panel: pages, collections or the
// documentation contents, and the refresh and theme controls.
package sidebar

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/sahilm/fuzzy"

	"github.com/nhath/ezcoll/internal/router"
	"github.com/nhath/ezcoll/internal/ui/styles"
)

// SelectCollectionMsg is sent when a collection is picked
type SelectCollectionMsg struct {
	Name string
}

// NavigateMsg is sent when a page button is picked
type NavigateMsg struct {
	Page string
}

// RefreshMsg asks for a return to "/" and a full reload
type RefreshMsg struct{}

// ToggleThemeMsg asks to swap the light/dark palette
type ToggleThemeMsg struct{}

// JumpToAnchorMsg asks the documentation view to scroll to a heading
type JumpToAnchorMsg struct {
	ID string
}

// Anchor is one heading of the documentation
type Anchor struct {
	ID    string
	Title string
	Level int
}

type itemKind int

const (
	itemPage itemKind = iota
	itemCollection
	itemAnchor
	itemRefresh
	itemTheme
)

type item struct {
	kind  itemKind
	label string
	value string
	level int
}

var pages = []struct{ page, label string }{
	{router.PageCollections, "Collections"},
	{router.PageDocumentation, "Documentation"},
	{router.PageActivity, "Activity"},
}

// Styles for the sidebar
type Styles struct {
	Container lipgloss.Style
	Focused   lipgloss.Style
	Section   lipgloss.Style
	Item      lipgloss.Style
	Active    lipgloss.Style
	Cursor    lipgloss.Style
	Failed    lipgloss.Style
	Meta      lipgloss.Style
}

// DefaultStyles builds styles from the current palette
func DefaultStyles() Styles {
	return Styles{
		Container: styles.PanelStyle.Padding(0, 1),
		Focused:   styles.PanelActiveStyle.Padding(0, 1),
		Section:   styles.SectionStyle,
		Item:      styles.ItemStyle,
		Active:    styles.ItemActiveStyle,
		Cursor:    styles.SelectedStyle,
		Failed:    lipgloss.NewStyle().Foreground(styles.ErrorColor()),
		Meta:      styles.MetaStyle,
	}
}

// Model is the sidebar state
type Model struct {
	names   []string
	failed  map[string]bool
	active  string
	page    string
	anchors []Anchor
	theme   string

	filter    textinput.Model
	filtering bool

	cursor  int
	focused bool
	width   int
	height  int
	styles  Styles
}

// New creates an empty sidebar
func New() Model {
	fi := textinput.New()
	fi.Prompt = "/ "
	fi.Placeholder = "Filter collections..."
	fi.CharLimit = 100

	return Model{
		page:   router.PageCollections,
		filter: fi,
		styles: DefaultStyles(),
		width:  28,
		height: 20,
	}
}

func (m Model) SetStyles(s Styles) Model {
	m.styles = s
	return m
}

func (m Model) SetSize(w, h int) Model {
	m.width = w
	m.height = h
	m.filter.Width = max(w-6, 4)
	return m
}

// SetCollections updates the listed names and which failed to load
func (m Model) SetCollections(names []string, active string, failed map[string]error) Model {
	m.names = names
	m.active = active
	m.failed = make(map[string]bool, len(failed))
	for name := range failed {
		m.failed[name] = true
	}
	return m.clamp()
}

// SetPage tells the sidebar which page is displayed
func (m Model) SetPage(page string) Model {
	m.page = page
	return m.clamp()
}

// SetAnchors sets the documentation table of contents
func (m Model) SetAnchors(anchors []Anchor) Model {
	m.anchors = anchors
	return m.clamp()
}

func (m Model) SetTheme(theme string) Model {
	m.theme = theme
	return m
}

func (m Model) Focus() Model {
	m.focused = true
	return m
}

func (m Model) Blur() Model {
	m.focused = false
	m.filtering = false
	m.filter.Blur()
	return m
}

func (m Model) Focused() bool   { return m.focused }
func (m Model) Filtering() bool { return m.filtering }

// Filter returns the current filter query
func (m Model) Filter() string { return m.filter.Value() }

// VisibleCollections returns the names matching the filter, best first
func (m Model) VisibleCollections() []string {
	query := strings.TrimSpace(m.filter.Value())
	if query == "" {
		return m.names
	}
	matches := fuzzy.Find(query, m.names)
	out := make([]string, len(matches))
	for i, match := range matches {
		out[i] = m.names[match.Index]
	}
	return out
}

func (m Model) items() []item {
	var items []item
	for _, p := range pages {
		items = append(items, item{kind: itemPage, label: p.label, value: p.page})
	}
	if m.page == router.PageDocumentation {
		for _, a := range m.anchors {
			items = append(items, item{kind: itemAnchor, label: a.Title, value: a.ID, level: a.Level})
		}
	} else {
		for _, name := range m.VisibleCollections() {
			items = append(items, item{kind: itemCollection, label: name, value: name})
		}
	}
	items = append(items,
		item{kind: itemRefresh, label: "↻ Refresh"},
		item{kind: itemTheme, label: fmt.Sprintf("◐ Theme: %s", m.themeName())},
	)
	return items
}

func (m Model) themeName() string {
	if m.theme == "" {
		return "dark"
	}
	return m.theme
}

func (m Model) clamp() Model {
	n := len(m.items())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	return m
}

// Update handles keys while focused
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.filtering {
		switch key.String() {
		case "esc":
			m.filtering = false
			m.filter.SetValue("")
			m.filter.Blur()
			return m.clamp(), nil
		case "enter":
			m.filtering = false
			m.filter.Blur()
			return m.clamp(), nil
		}
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		m.cursor = len(pages)
		return m.clamp(), cmd
	}

	switch key.String() {
	case "up", "k":
		m.cursor--
	case "down", "j":
		m.cursor++
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = len(m.items()) - 1
	case "/":
		if m.page != router.PageDocumentation {
			m.filtering = true
			return m, m.filter.Focus()
		}
	case "enter", " ":
		return m, m.activate()
	}
	return m.clamp(), nil
}

func (m Model) activate() tea.Cmd {
	items := m.items()
	if m.cursor < 0 || m.cursor >= len(items) {
		return nil
	}
	it := items[m.cursor]

	var msg tea.Msg
	switch it.kind {
	case itemPage:
		msg = NavigateMsg{Page: it.value}
	case itemCollection:
		msg = SelectCollectionMsg{Name: it.value}
	case itemAnchor:
		msg = JumpToAnchorMsg{ID: it.value}
	case itemRefresh:
		msg = RefreshMsg{}
	case itemTheme:
		msg = ToggleThemeMsg{}
	}
	return func() tea.Msg { return msg }
}

// View renders the panel
func (m Model) View() string {
	inner := max(m.width-4, 4)
	items := m.items()

	var lines []string
	lines = append(lines, m.styles.Section.UnsetMarginTop().Render("Pages"))

	for i, it := range items {
		switch {
		case it.kind == itemCollection && (i == 0 || items[i-1].kind == itemPage):
			lines = append(lines, m.styles.Section.Render("Collections"))
			if m.filtering || m.filter.Value() != "" {
				lines = append(lines, m.filter.View())
			}
		case it.kind == itemAnchor && items[i-1].kind == itemPage:
			lines = append(lines, m.styles.Section.Render("Contents"))
		case it.kind == itemRefresh:
			if items[i-1].kind == itemPage {
				if m.page == router.PageDocumentation {
					lines = append(lines, m.styles.Section.Render("Contents"), m.styles.Meta.Render("(no headings)"))
				} else {
					lines = append(lines, m.styles.Section.Render("Collections"), m.styles.Meta.Render("(none)"))
				}
			}
			lines = append(lines, "")
		}
		lines = append(lines, m.renderItem(i, it, inner))
	}

	content := strings.Join(lines, "\n")
	box := m.styles.Container
	if m.focused {
		box = m.styles.Focused
	}
	return box.Width(m.width - 2).Height(max(m.height-2, 1)).Render(content)
}

func (m Model) renderItem(i int, it item, width int) string {
	label := it.label
	switch it.kind {
	case itemAnchor:
		label = strings.Repeat(" ", max(it.level-1, 0)) + label
	case itemCollection:
		if m.failed[it.value] {
			label += " !"
		}
	}
	label = truncate.StringWithTail(label, uint(width), "…")

	switch {
	case i == m.cursor && m.focused:
		return m.styles.Cursor.Render(label)
	case it.kind == itemCollection && it.value == m.active:
		return m.styles.Active.Render(label)
	case it.kind == itemPage && it.value == m.page:
		return m.styles.Active.Render(label)
	case it.kind == itemCollection && m.failed[it.value]:
		return m.styles.Failed.Render(label)
	}
	return m.styles.Item.Render(label)
}
