// Package jsontree renders a list of JSON documents as a collapsible tree.
// Every row keeps the index of the document it came from, so actions on a
// row never have to recover the document from rendered text.
package jsontree

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/buger/jsonparser"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/nhath/ezcoll/internal/gateway"
	"github.com/nhath/ezcoll/internal/ui/styles"
)

// DeleteMarker is shown on every document row
const DeleteMarker = "✕"

// Styles for the tree
type Styles struct {
	Key     lipgloss.Style
	String  lipgloss.Style
	Number  lipgloss.Style
	Literal lipgloss.Style
	Meta    lipgloss.Style
	Cursor  lipgloss.Style
	Marker  lipgloss.Style
	Empty   lipgloss.Style
}

// DefaultStyles builds styles from the current palette
func DefaultStyles() Styles {
	return Styles{
		Key:     styles.KeyStyle,
		String:  styles.StringStyle,
		Number:  styles.NumberStyle,
		Literal: styles.LiteralStyle,
		Meta:    styles.MetaStyle,
		Cursor:  styles.SelectedStyle,
		Marker:  lipgloss.NewStyle().Foreground(styles.ErrorColor()),
		Empty:   styles.MetaStyle,
	}
}

type node struct {
	key      string
	kind     jsonparser.ValueType
	value    string // rendered scalar
	children []*node
	expanded bool
	depth    int
	doc      int
	parent   *node
}

func (n *node) container() bool {
	return n.kind == jsonparser.Object || n.kind == jsonparser.Array
}

// Model is the tree state
type Model struct {
	roots   []*node
	rows    []*node
	cursor  int
	offset  int
	width   int
	height  int
	focused bool
	idField string
	styles  Styles
}

// New creates an empty tree
func New() Model {
	return Model{styles: DefaultStyles(), height: 10, width: 80}
}

func (m Model) SetStyles(s Styles) Model {
	m.styles = s
	return m
}

func (m Model) SetSize(w, h int) Model {
	m.width = w
	m.height = max(h, 1)
	return m.clamp()
}

func (m Model) Focus() Model {
	m.focused = true
	return m
}

func (m Model) Blur() Model {
	m.focused = false
	return m
}

func (m Model) Focused() bool { return m.focused }

// SetDocuments rebuilds the tree. Expansion state and cursor reset.
func (m Model) SetDocuments(docs []json.RawMessage, idField string) Model {
	m.idField = idField
	m.roots = make([]*node, len(docs))
	for i, d := range docs {
		kind := valueKind(d)
		label, _ := gateway.FieldValue(d, idField)
		if label == "" {
			label = fmt.Sprintf("#%d", i)
		}
		root := build(label, trimQuotes(d, kind), kind, 0, i, nil)
		m.roots[i] = root
	}
	m.cursor, m.offset = 0, 0
	return m.flatten()
}

// Len is the number of visible rows
func (m Model) Len() int { return len(m.rows) }

// Cursor is the index of the highlighted row
func (m Model) Cursor() int { return m.cursor }

// CurrentDocument returns the source document index of the highlighted row
func (m Model) CurrentDocument() (int, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return 0, false
	}
	return m.rows[m.cursor].doc, true
}

// OnDocument reports whether the highlighted row is a top-level document
func (m Model) OnDocument() bool {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return false
	}
	return m.rows[m.cursor].depth == 0
}

// SelectDocument moves the cursor to the row of document i
func (m Model) SelectDocument(i int) Model {
	for r, n := range m.rows {
		if n.depth == 0 && n.doc == i {
			m.cursor = r
			break
		}
	}
	return m.clamp()
}

// Update handles navigation keys
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "up", "k":
		m.cursor--
	case "down", "j":
		m.cursor++
	case "pgup", "ctrl+u":
		m.cursor -= m.height
	case "pgdown", "ctrl+d":
		m.cursor += m.height
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = len(m.rows) - 1
	case "right", "l", "enter", " ":
		m = m.toggle(true)
	case "left", "h":
		m = m.toggle(false)
	case "E":
		m = m.expandAll(true)
	case "C":
		m = m.expandAll(false)
	}
	return m.clamp(), nil
}

func (m Model) toggle(open bool) Model {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return m
	}
	n := m.rows[m.cursor]
	switch {
	case open && n.container():
		n.expanded = !n.expanded
	case !open && n.container() && n.expanded:
		n.expanded = false
	case !open && n.parent != nil:
		// jump to parent and fold it
		n.parent.expanded = false
		m = m.flatten()
		for i, r := range m.rows {
			if r == n.parent {
				m.cursor = i
			}
		}
		return m
	}
	return m.flatten()
}

func (m Model) expandAll(open bool) Model {
	var walk func(n *node)
	walk = func(n *node) {
		if n.container() {
			n.expanded = open
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	current, _ := m.CurrentDocument()
	for _, r := range m.roots {
		walk(r)
	}
	return m.flatten().SelectDocument(current)
}

func (m Model) flatten() Model {
	m.rows = m.rows[:0:0]
	var walk func(n *node)
	walk = func(n *node) {
		m.rows = append(m.rows, n)
		if n.expanded {
			for _, c := range n.children {
				walk(c)
			}
		}
	}
	for _, r := range m.roots {
		walk(r)
	}
	return m.clamp()
}

func (m Model) clamp() Model {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
	return m
}

// View renders the visible rows
func (m Model) View() string {
	if len(m.rows) == 0 {
		return m.styles.Empty.Render("(no documents)")
	}

	end := min(m.offset+m.height, len(m.rows))
	lines := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		line := m.renderRow(m.rows[i])
		if m.width > 0 {
			line = truncate.StringWithTail(line, uint(m.width), "…")
		}
		if i == m.cursor && m.focused {
			line = m.styles.Cursor.Render(m.plainRow(m.rows[i]))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(n *node) string {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", n.depth))
	b.WriteString(marker(n))
	b.WriteString(m.styles.Key.Render(n.key))

	switch {
	case n.container():
		b.WriteString(" ")
		b.WriteString(m.styles.Meta.Render(summary(n)))
	default:
		b.WriteString(": ")
		b.WriteString(m.valueStyle(n.kind).Render(n.value))
	}
	if n.depth == 0 {
		b.WriteString("  ")
		b.WriteString(m.styles.Marker.Render(DeleteMarker))
	}
	return b.String()
}

// plainRow renders a row without per-token colours so the cursor style
// covers it uniformly
func (m Model) plainRow(n *node) string {
	line := strings.Repeat("  ", n.depth) + marker(n) + n.key
	if n.container() {
		line += " " + summary(n)
	} else {
		line += ": " + n.value
	}
	if n.depth == 0 {
		line += "  " + DeleteMarker
	}
	if m.width > 0 {
		line = truncate.StringWithTail(line, uint(m.width), "…")
	}
	return line
}

func (m Model) valueStyle(kind jsonparser.ValueType) lipgloss.Style {
	switch kind {
	case jsonparser.String:
		return m.styles.String
	case jsonparser.Number:
		return m.styles.Number
	default:
		return m.styles.Literal
	}
}

func marker(n *node) string {
	if !n.container() {
		return "  "
	}
	if n.expanded {
		return "▾ "
	}
	return "▸ "
}

func summary(n *node) string {
	if n.kind == jsonparser.Array {
		return fmt.Sprintf("[%d]", len(n.children))
	}
	if len(n.children) == 1 {
		return "{1 key}"
	}
	return fmt.Sprintf("{%d keys}", len(n.children))
}

func build(key string, value []byte, kind jsonparser.ValueType, depth, doc int, parent *node) *node {
	n := &node{key: key, kind: kind, depth: depth, doc: doc, parent: parent}

	switch kind {
	case jsonparser.Object:
		jsonparser.ObjectEach(value, func(k, v []byte, dt jsonparser.ValueType, _ int) error {
			name, err := jsonparser.ParseString(k)
			if err != nil {
				name = string(k)
			}
			n.children = append(n.children, build(name, v, dt, depth+1, doc, n))
			return nil
		})
	case jsonparser.Array:
		i := 0
		jsonparser.ArrayEach(value, func(v []byte, dt jsonparser.ValueType, _ int, _ error) {
			n.children = append(n.children, build(fmt.Sprintf("[%d]", i), v, dt, depth+1, doc, n))
			i++
		})
	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil {
			s = string(value)
		}
		n.value = fmt.Sprintf("%q", s)
	default:
		n.value = string(value)
	}
	return n
}

// valueKind classifies a raw top-level value
func valueKind(raw []byte) jsonparser.ValueType {
	_, kind, _, err := jsonparser.Get(raw)
	if err != nil {
		return jsonparser.Unknown
	}
	return kind
}

// trimQuotes strips the quotes of a raw string so it matches what the
// jsonparser iterators hand out for nested values
func trimQuotes(raw []byte, kind jsonparser.ValueType) []byte {
	if kind != jsonparser.String {
		return raw
	}
	v, _, _, err := jsonparser.Get(raw)
	if err != nil {
		return raw
	}
	return v
}
