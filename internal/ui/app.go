// internal/ui/app.go
package ui

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhath/ezcoll/internal/config"
	"github.com/nhath/ezcoll/internal/prefs"
	"github.com/nhath/ezcoll/internal/router"
	"github.com/nhath/ezcoll/internal/store"
	"github.com/nhath/ezcoll/internal/ui/components/activity"
	"github.com/nhath/ezcoll/internal/ui/components/docview"
	"github.com/nhath/ezcoll/internal/ui/components/jsontree"
	"github.com/nhath/ezcoll/internal/ui/components/modal"
	"github.com/nhath/ezcoll/internal/ui/components/sidebar"
	"github.com/nhath/ezcoll/internal/ui/styles"
)

// Update handles messages and updates model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m.layout(), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case store.NamesLoadedMsg, store.CollectionsLoadedMsg, store.CollectionLoadedMsg,
		store.DocumentDeletedMsg, store.CollectionDroppedMsg,
		store.ImportFinishedMsg, store.ExportFinishedMsg:
		return m.updateStore(msg)

	case store.ReloadRequestedMsg:
		var cmd tea.Cmd
		m.store, cmd = m.store.LoadCollectionNames()
		return m.sync(), cmd

	case sidebar.SelectCollectionMsg:
		m.store = m.store.SetActiveCollection(msg.Name)
		if !m.router.DisplayCollections() {
			m.router = m.router.NavigateTo(router.PageCollections)
		}
		m = m.setFocus(FocusMain)
		return m.sync(), nil

	case sidebar.NavigateMsg:
		return m.navigate(func(r router.Router) router.Router { return r.NavigateTo(msg.Page) })

	case sidebar.RefreshMsg:
		return m.refresh()

	case sidebar.ToggleThemeMsg:
		return m.toggleTheme(), nil

	case sidebar.JumpToAnchorMsg:
		m.docs = m.docs.JumpTo(msg.ID)
		return m, nil

	case modal.ConfirmMsg:
		var cmd tea.Cmd
		m.store, cmd = m.store.Confirm()
		return m.sync(), cmd

	case modal.CancelMsg:
		m.store = m.store.CloseModal()
		return m.sync(), nil

	case docview.LoadedMsg:
		docs, err := m.docs.SetHTML(msg.HTML, msg.Fallback)
		if err != nil {
			m.errorMsg = err.Error()
			return m, nil
		}
		m.docs = docs
		if msg.Fallback && msg.Err != nil {
			slog.Warn("ui: documentation unavailable, using bundled pages", "err", msg.Err)
			m.errorMsg = "documentation unavailable, showing bundled pages: " + msg.Err.Error()
		}
		return m.sync(), nil

	case activity.LoadedMsg:
		if msg.Err != nil {
			m.errorMsg = fmt.Sprintf("activity log: %v", msg.Err)
			return m, nil
		}
		m.activity = m.activity.SetEntries(msg.Entries)
		return m, nil

	case ClipboardCopiedMsg:
		if msg.Err != nil {
			m.errorMsg = fmt.Sprintf("copy %s: %v", msg.ID, msg.Err)
			return m, nil
		}
		return m.setStatus(fmt.Sprintf("Copied %s to clipboard", msg.ID))

	case WatchStartedMsg:
		if msg.Err != nil {
			m.errorMsg = fmt.Sprintf("watch: %v", msg.Err)
			return m, nil
		}
		m.watchEvents = msg.Events
		return m, waitForWatch(m.watchEvents)

	case WatchEventMsg:
		m.watchNote = watchNote(msg.Event)
		return m, waitForWatch(m.watchEvents)

	case WatchClosedMsg:
		m.watchEvents = nil
		m.watchNote = ""
		return m, nil

	case clearStatusMsg:
		if msg.ID == m.statusID {
			m.statusMsg = ""
		}
		return m, nil
	}

	// filepicker reads directories through its own messages
	if m.picking {
		return m.updatePicker(msg)
	}
	return m, nil
}

// updateStore hands a store result to the store and reports the outcome
func (m Model) updateStore(msg tea.Msg) (tea.Model, tea.Cmd) {
	before := m.store.Generation()
	var cmd tea.Cmd
	m.store, cmd = m.store.Update(msg)
	m = m.sync()

	var note string
	changed := false
	switch msg := msg.(type) {
	case store.DocumentDeletedMsg:
		changed = msg.Gen == before
		if changed && msg.Err == nil {
			note = fmt.Sprintf("Deleted %s from %s", msg.ID, msg.Collection)
		}
	case store.CollectionDroppedMsg:
		changed = msg.Gen == before
		if changed && msg.Err == nil {
			note = fmt.Sprintf("Dropped %s", msg.Collection)
		}
	case store.ImportFinishedMsg:
		changed = msg.Gen == before
		if changed && msg.Err == nil {
			note = fmt.Sprintf("Imported into %s", msg.Collection)
		}
	case store.ExportFinishedMsg:
		changed = msg.Gen == before
		if changed && msg.Err == nil {
			note = fmt.Sprintf("Exported to %s", msg.Path)
		}
	}

	cmds := []tea.Cmd{cmd}
	if changed {
		// every finished action lands in the activity log
		cmds = append(cmds, activity.LoadCmd(m.backend, activity.DefaultLimit))
	}
	if note != "" {
		var statusCmd tea.Cmd
		m, statusCmd = m.setStatus(note)
		cmds = append(cmds, statusCmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.config.Keys

	if msg.String() == "ctrl+c" {
		m.cancel()
		return m, tea.Quit
	}

	// Layered popups first: modal, then help, then the file picker
	if m.modal.Visible() {
		var cmd tea.Cmd
		m.modal, cmd = m.modal.Update(msg)
		return m, cmd
	}
	if m.showHelp {
		if msg.String() == "esc" || matchKey(msg, keys.Help) || msg.String() == "q" {
			m.popupStack.CloseTop(&m)
		}
		return m, nil
	}
	if m.picking {
		if msg.String() == "esc" {
			m.popupStack.CloseTop(&m)
			return m, nil
		}
		return m.updatePicker(msg)
	}

	if m.focus == FocusSidebar && m.sidebar.Filtering() {
		var cmd tea.Cmd
		m.sidebar, cmd = m.sidebar.Update(msg)
		return m, cmd
	}

	switch {
	case matchKey(msg, keys.Quit):
		m.cancel()
		return m, tea.Quit
	case matchKey(msg, keys.Help):
		return m.openHelp(), nil
	case msg.String() == "esc":
		m.store = m.store.ClearError()
		m.errorMsg = ""
		return m, nil
	case matchKey(msg, keys.FocusNext):
		if m.focus == FocusMain {
			return m.setFocus(FocusSidebar), nil
		}
		return m.setFocus(FocusMain), nil
	case matchKey(msg, keys.Back):
		return m.navigate(router.Router.Back)
	case matchKey(msg, keys.Forward):
		return m.navigate(router.Router.Forward)
	case matchKey(msg, keys.Collections):
		return m.navigate(func(r router.Router) router.Router { return r.NavigateTo(router.PageCollections) })
	case matchKey(msg, keys.Docs):
		return m.navigate(func(r router.Router) router.Router { return r.NavigateTo(router.PageDocumentation) })
	case matchKey(msg, keys.Activity):
		return m.navigate(func(r router.Router) router.Router { return r.NavigateTo(router.PageActivity) })
	case matchKey(msg, keys.Refresh):
		return m.refresh()
	case matchKey(msg, keys.ToggleTheme):
		return m.toggleTheme(), nil
	}

	if m.focus == FocusSidebar {
		var cmd tea.Cmd
		m.sidebar, cmd = m.sidebar.Update(msg)
		return m, cmd
	}

	switch m.router.View() {
	case router.PageDocumentation:
		var cmd tea.Cmd
		m.docs, cmd = m.docs.Update(msg)
		return m, cmd
	case router.PageActivity:
		var cmd tea.Cmd
		m.activity, cmd = m.activity.Update(msg)
		return m, cmd
	}
	return m.handleCollectionsKey(msg)
}

// navigate applies a router transition and shows its page
func (m Model) navigate(step func(router.Router) router.Router) (tea.Model, tea.Cmd) {
	prev := m.router.View()
	m.router = step(m.router)
	m = m.sync()

	if m.router.View() == router.PageActivity && prev != router.PageActivity {
		return m, activity.LoadCmd(m.backend, activity.DefaultLimit)
	}
	return m, nil
}

// refresh returns home and reloads everything from the gateway
func (m Model) refresh() (tea.Model, tea.Cmd) {
	m.router = m.router.NavigateTo("")
	m.store = m.store.Reset()
	m.treeName, m.treeDocs = "", nil

	var load tea.Cmd
	m.store, load = m.store.LoadCollectionNames()
	return m.sync(), tea.Batch(load, docview.LoadCmd(m.ctx, m.gw))
}

func (m Model) toggleTheme() Model {
	if m.theme == config.ThemeLight {
		m.theme = config.ThemeDark
	} else {
		m.theme = config.ThemeLight
	}
	styles.Init(m.config.PaletteFor(m.theme))
	m = m.restyle()

	if m.backend != nil {
		if err := m.backend.Set(prefs.KeyColorTheme, m.theme); err != nil {
			slog.Warn("ui: failed to persist theme", "err", err)
		}
	}
	return m
}

// restyle rebuilds component styles after the palette changed
func (m Model) restyle() Model {
	m.sidebar = m.sidebar.SetStyles(sidebar.DefaultStyles()).SetTheme(m.theme)
	m.tree = m.tree.SetStyles(jsontree.DefaultStyles())
	m.modal = m.modal.SetStyles(modal.DefaultStyles())
	m.docs = m.docs.SetStyles(docview.DefaultStyles(), styles.ChromaStyle())
	m.activity = m.activity.SetStyles(activity.DefaultStyles())
	return m
}

func (m Model) setFocus(f Focus) Model {
	m.focus = f
	if f == FocusSidebar {
		m.sidebar = m.sidebar.Focus()
		m.tree = m.tree.Blur()
		m.activity = m.activity.Blur()
		return m
	}
	m.sidebar = m.sidebar.Blur()
	m.tree = m.tree.Focus()
	m.activity = m.activity.Focus()
	return m
}

func (m Model) setStatus(text string) (Model, tea.Cmd) {
	m.statusID++
	m.statusMsg = text
	id := m.statusID
	return m, tea.Tick(statusTimeout*time.Second, func(time.Time) tea.Msg {
		return clearStatusMsg{ID: id}
	})
}

func (m Model) openHelp() Model {
	m.showHelp = true
	m.popupStack.Push("help", func(m *Model) bool {
		was := m.showHelp
		m.showHelp = false
		return was
	})
	return m
}

// sync pushes store and router state into the components
func (m Model) sync() Model {
	st := m.store.State()

	m.sidebar = m.sidebar.
		SetCollections(st.Names, st.Active, st.LoadErrors).
		SetPage(m.router.View())
	if m.docs.Loaded() {
		anchors := m.docs.Anchors()
		out := make([]sidebar.Anchor, len(anchors))
		for i, a := range anchors {
			out[i] = sidebar.Anchor{ID: a.ID, Title: a.Title, Level: a.Level}
		}
		m.sidebar = m.sidebar.SetAnchors(out)
	}

	m.modal = m.modal.SetModal(st.Modal)
	return m.syncTree()
}

// layout sizes every component from the window
func (m Model) layout() Model {
	side := min(sidebarWidth, max(m.width/3, 16))
	mainW := max(m.width-side-2, 10)
	bodyH := max(m.height-1, 3) // status bar

	m.sidebar = m.sidebar.SetSize(side, bodyH)
	m.tree = m.tree.SetSize(mainW, max(bodyH-collectionsChrome, 1))
	m.docs = m.docs.SetSize(mainW, max(bodyH-1, 1))
	m.activity = m.activity.SetSize(mainW, max(bodyH-1, 1))
	m.modal = m.modal.SetWidth(min(60, max(m.width-4, 20)))
	m.picker.Height = max(bodyH-8, 3)
	return m
}
