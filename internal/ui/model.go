// internal/ui/model.go
// Root Model struct, constructor, and Init
package ui

import (
	"context"
	"errors"
	"log/slog"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhath/ezcoll/internal/config"
	"github.com/nhath/ezcoll/internal/gateway"
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

// Model is the root Bubble Tea model
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	// Core state
	width, height int
	config        *config.Config
	profile       config.Profile
	gw            Gateway
	backend       prefs.Backend
	store         store.Store
	router        router.Router
	theme         string
	focus         Focus

	// Components
	sidebar  sidebar.Model
	tree     jsontree.Model
	modal    modal.Model
	docs     docview.Model
	activity activity.Model
	picker   filepicker.Model
	spinner  spinner.Model

	// Collection currently rendered by the tree
	treeName string
	treeDocs []store.Document

	// Popup state
	popupStack *PopupStack
	showHelp   bool
	picking    bool

	// Status
	statusMsg string
	statusID  int
	errorMsg  string

	// Change channel
	watchEvents <-chan gateway.WatchEvent
	watchNote   string

	initCmds []tea.Cmd
}

// NewModel creates the root model. The initial path selects the first page.
func NewModel(ctx context.Context, cfg *config.Config, profile config.Profile, gw Gateway, backend prefs.Backend, path string) Model {
	ctx, cancel := context.WithCancel(ctx)

	theme := cfg.Theme
	if backend != nil {
		if saved, err := backend.Get(prefs.KeyColorTheme); err == nil && saved != "" {
			theme = saved
		} else if err != nil && !errors.Is(err, prefs.ErrNotFound) {
			slog.Warn("ui: failed to read theme preference", "err", err)
		}
	}
	if theme != config.ThemeLight {
		theme = config.ThemeDark
	}
	styles.Init(cfg.PaletteFor(theme))

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:        ctx,
		cancel:     cancel,
		config:     cfg,
		profile:    profile,
		gw:         gw,
		backend:    backend,
		store:      store.New(ctx, gw, backend, store.WithConcurrency(cfg.FetchConcurrency)),
		router:     router.New(path),
		theme:      theme,
		focus:      FocusMain,
		sidebar:    sidebar.New().SetTheme(theme),
		tree:       jsontree.New().Focus(),
		modal:      modal.New(),
		docs:       docview.New(),
		activity:   activity.New(),
		spinner:    sp,
		popupStack: NewPopupStack(),
		width:      100,
		height:     30,
	}

	var load tea.Cmd
	m.store, load = m.store.LoadCollectionNames()
	m.initCmds = []tea.Cmd{
		load,
		m.spinner.Tick,
		docview.LoadCmd(ctx, gw),
		activity.LoadCmd(backend, activity.DefaultLimit),
	}
	if profile.Watch {
		m.initCmds = append(m.initCmds, startWatch(ctx, gw))
	}
	return m.layout().sync()
}

// Init starts loading collections, documentation and the activity log
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.initCmds...)
}

// Store exposes the current state store
func (m Model) Store() store.Store { return m.store }

// Router exposes the current router
func (m Model) Router() router.Router { return m.router }

// Theme is the active colour theme
func (m Model) Theme() string { return m.theme }
