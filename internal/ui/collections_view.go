// internal/ui/collections_view.go
// The collections page: document tree, import, export, delete, drop and yank
package ui

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhath/ezcoll/internal/store"
	"github.com/nhath/ezcoll/internal/ui/styles"
)

// header line, meta line, banner line
const collectionsChrome = 3

// copyToClipboard is swapped in tests
var copyToClipboard = clipboard.WriteAll

func (m Model) handleCollectionsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.config.Keys
	st := m.store.State()

	switch {
	case matchKey(msg, keys.Filter):
		m = m.setFocus(FocusSidebar)
		var cmd tea.Cmd
		m.sidebar, cmd = m.sidebar.Update(msg)
		return m, cmd

	case matchKey(msg, keys.Reload):
		if st.Active == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.store, cmd = m.store.LoadCollection(st.Active)
		return m, cmd

	case matchKey(msg, keys.Import):
		if st.Active == "" {
			m.errorMsg = "import: no active collection"
			return m, nil
		}
		return m.openPicker()

	case matchKey(msg, keys.Export):
		var cmd tea.Cmd
		m.store, cmd = m.store.Export(m.config.ExportDir)
		return m.sync(), cmd

	case matchKey(msg, keys.Delete):
		return m.requestDelete(), nil

	case matchKey(msg, keys.Drop):
		if st.Active == "" {
			return m, nil
		}
		m.store = m.store.OpenModal(store.DropModal(st.Active))
		return m.sync(), nil

	case matchKey(msg, keys.Yank):
		return m.yank()
	}

	var cmd tea.Cmd
	m.tree, cmd = m.tree.Update(msg)
	return m.syncSelection(), cmd
}

// requestDelete opens the delete dialog for the document under the cursor
func (m Model) requestDelete() Model {
	if !m.tree.OnDocument() {
		m.errorMsg = "move to a document row to delete it"
		return m
	}
	m = m.syncSelection()
	sel := m.store.State().Selected
	if !sel.Deletable() {
		m.errorMsg = fmt.Sprintf("document has no %q field", m.store.ActiveIDField())
		return m
	}
	m.store = m.store.OpenModal(store.DeleteModal(sel.Collection, sel.ID))
	return m.sync()
}

// syncSelection makes the document under the cursor the active document
func (m Model) syncSelection() Model {
	docs := m.store.ActiveCollection()
	i, ok := m.tree.CurrentDocument()
	if !ok || i >= len(docs) {
		m.store = m.store.SetActiveDocument(store.Selection{})
		return m
	}
	doc := docs[i]
	m.store = m.store.SetActiveDocument(store.Selection{
		Collection: m.store.State().Active,
		ID:         m.store.DocumentID(doc),
		Doc:        doc,
		Index:      i,
	})
	return m
}

func (m Model) yank() (tea.Model, tea.Cmd) {
	docs := m.store.ActiveCollection()
	i, ok := m.tree.CurrentDocument()
	if !ok || i >= len(docs) {
		return m, nil
	}
	doc := docs[i]
	id := m.store.DocumentID(doc)
	if id == "" {
		id = fmt.Sprintf("#%d", i)
	}
	text := indentJSON(doc)
	return m, func() tea.Msg {
		return ClipboardCopiedMsg{ID: id, Err: copyToClipboard(text)}
	}
}

func (m Model) openPicker() (tea.Model, tea.Cmd) {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".json"}
	fp.AutoHeight = false
	fp.Height = max(m.height-10, 3)
	if dir, err := os.Getwd(); err == nil {
		fp.CurrentDirectory = dir
	}
	fp.Styles.Cursor = fp.Styles.Cursor.Foreground(styles.AccentColor())
	fp.Styles.Selected = fp.Styles.Selected.Foreground(styles.SuccessColor())

	m.picker = fp
	m.picking = true
	m.popupStack.Push("picker", func(m *Model) bool {
		was := m.picking
		m.picking = false
		return was
	})
	return m, m.picker.Init()
}

func (m Model) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.picking = false
		m.popupStack.Remove("picker")
		var importCmd tea.Cmd
		m.store, importCmd = m.store.Import(path)
		return m.sync(), importCmd
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.errorMsg = fmt.Sprintf("%s is not a .json file", path)
	}
	return m, cmd
}

// syncTree rebuilds the tree when the active collection or its documents changed
func (m Model) syncTree() Model {
	st := m.store.State()
	docs := st.ActiveDocuments()
	if st.Active == m.treeName && sameDocuments(docs, m.treeDocs) {
		return m
	}

	keep := -1
	if st.Active == m.treeName {
		if i, ok := m.tree.CurrentDocument(); ok {
			keep = i
		}
	}
	m.tree = m.tree.SetDocuments(docs, st.IDField(st.Active))
	if keep >= 0 && len(docs) > 0 {
		m.tree = m.tree.SelectDocument(min(keep, len(docs)-1))
	}
	m.treeName, m.treeDocs = st.Active, docs
	return m.syncSelection()
}

func sameDocuments(a, b []store.Document) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !bytes.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func (m Model) renderCollections(width int) string {
	st := m.store.State()

	if st.Active == "" {
		switch {
		case st.Fetching:
			return m.spinner.View() + " Loading collections..."
		case st.Err != nil:
			return styles.ErrorStyle.Render("Could not load collections.") + "\n" +
				styles.MetaStyle.Render("Press "+keyHint(m.config.Keys.Refresh)+" to retry.")
		default:
			return styles.MetaStyle.Render("The gateway has no collections.")
		}
	}

	var b strings.Builder
	title := styles.TitleStyle.Render(st.Active)
	meta := fmt.Sprintf("  %d documents • id: %s", len(st.ActiveDocuments()), st.IDField(st.Active))
	if st.Fetching {
		meta += "  " + m.spinner.View()
	}
	if st.Importing {
		meta += "  importing " + m.spinner.View()
	}
	b.WriteString(title + styles.MetaStyle.Render(meta) + "\n")

	if st.ImportError != "" {
		b.WriteString(styles.BannerStyle.Width(width).Render(limitString("Failed to import json: "+st.ImportError, width-2)))
	}
	b.WriteString("\n")

	if err, failed := st.LoadErrors[st.Active]; failed && !st.Loaded(st.Active) {
		b.WriteString("\n" + styles.ErrorStyle.Render("Failed to load: "+err.Error()))
		return b.String()
	}
	if !st.Loaded(st.Active) {
		b.WriteString("\n" + m.spinner.View() + " Loading " + st.Active + "...")
		return b.String()
	}

	b.WriteString(lipgloss.NewStyle().MaxWidth(width).Render(m.tree.View()))
	return b.String()
}
