// Package store holds the application state and the actions that change it.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/nhath/ezcoll/internal/gateway"
	"github.com/nhath/ezcoll/internal/prefs"
)

// DefaultConcurrency bounds the load-all join
const DefaultConcurrency = 4

// Gateway is the part of the gateway client the store drives
type Gateway interface {
	gateway.Exporter
	CollectionNames(ctx context.Context) ([]string, error)
	Collection(ctx context.Context, name string) (gateway.Collection, error)
	Import(ctx context.Context, collection, filename string, r io.Reader) error
	DeleteDocument(ctx context.Context, collection, id string) error
	DropCollection(ctx context.Context, collection string) error
}

// Store is the application state store. Like a bubbletea model it is a
// value: every operation returns the next Store.
type Store struct {
	ctx     context.Context
	gw      Gateway
	backend prefs.Backend
	limit   int
	gen     int
	state   State
}

// Option configures a Store
type Option func(*Store)

// WithConcurrency bounds how many collections load at once
func WithConcurrency(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.limit = n
		}
	}
}

// New creates an empty store
func New(ctx context.Context, gw Gateway, backend prefs.Backend, opts ...Option) Store {
	s := Store{
		ctx:     ctx,
		gw:      gw,
		backend: backend,
		limit:   DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Reset discards all state and invalidates in-flight results
func (s Store) Reset() Store {
	return Store{
		ctx:     s.ctx,
		gw:      s.gw,
		backend: s.backend,
		limit:   s.limit,
		gen:     s.gen + 1,
	}
}

func (s Store) State() State { return s.state }

// Generation identifies the store between resets
func (s Store) Generation() int { return s.gen }

func (s Store) ActiveCollection() []Document { return s.state.ActiveDocuments() }

func (s Store) ActiveIDField() string { return s.state.IDField(s.state.Active) }

func (s Store) DocumentID(doc Document) string { return s.state.DocumentID(doc) }

// LoadCollectionNames fetches the name list; the results drive a full load
func (s Store) LoadCollectionNames() (Store, tea.Cmd) {
	s.state = s.state.WithFetching(true)
	ctx, gw, gen := s.ctx, s.gw, s.gen
	return s, func() tea.Msg {
		names, err := gw.CollectionNames(ctx)
		return NamesLoadedMsg{Gen: gen, Names: names, Err: err}
	}
}

// LoadCollection refetches one collection
func (s Store) LoadCollection(name string) (Store, tea.Cmd) {
	ctx, gw, gen := s.ctx, s.gw, s.gen
	return s, func() tea.Msg {
		coll, err := gw.Collection(ctx, name)
		return CollectionLoadedMsg{Gen: gen, CollectionResult: CollectionResult{Name: name, Collection: coll, Err: err}}
	}
}

// LoadAllCollections fetches every collection and reports once all settled
func (s Store) LoadAllCollections(names []string) (Store, tea.Cmd) {
	s.state = s.state.WithFetching(true)
	ctx, gw, gen, limit := s.ctx, s.gw, s.gen, s.limit
	names = append([]string(nil), names...)

	return s, func() tea.Msg {
		results := make([]CollectionResult, len(names))

		g := new(errgroup.Group)
		g.SetLimit(limit)
		for i, name := range names {
			g.Go(func() error {
				coll, err := gw.Collection(ctx, name)
				results[i] = CollectionResult{Name: name, Collection: coll, Err: err}
				// Failures are reported per collection, never cancel siblings
				return nil
			})
		}
		g.Wait()

		return CollectionsLoadedMsg{Gen: gen, Results: results}
	}
}

// SetActiveCollection switches collection and persists the choice
func (s Store) SetActiveCollection(name string) Store {
	s.state = s.state.WithActive(name)
	s.persist(prefs.KeyActiveCollection, name)
	return s
}

func (s Store) SetActiveDocument(sel Selection) Store {
	s.state = s.state.WithSelection(sel)
	return s
}

func (s Store) OpenModal(m Modal) Store {
	s.state = s.state.WithModal(m)
	return s
}

func (s Store) CloseModal() Store {
	s.state = s.state.WithoutModal()
	return s
}

// ClearError dismisses the failure toast and the import banner
func (s Store) ClearError() Store {
	s.state = s.state.WithErr(nil).WithImportError("")
	return s
}

// DeleteActiveDocument deletes the selected document on the gateway
func (s Store) DeleteActiveDocument() (Store, tea.Cmd) {
	sel := s.state.Selected
	if !sel.Deletable() {
		return s, nil
	}
	return s, s.deleteDocument(sel.Collection, sel.ID)
}

// DropActiveCollection drops the active collection on the gateway
func (s Store) DropActiveCollection() (Store, tea.Cmd) {
	if s.state.Active == "" {
		return s, nil
	}
	return s, s.dropCollection(s.state.Active)
}

// Confirm runs the open modal's action and closes it
func (s Store) Confirm() (Store, tea.Cmd) {
	action := s.state.Modal.Action
	s = s.CloseModal()

	switch action.Kind {
	case ActionDeleteDocument:
		if action.Collection == "" || action.ID == "" {
			return s, nil
		}
		return s, s.deleteDocument(action.Collection, action.ID)
	case ActionDropCollection:
		return s, s.dropCollection(action.Collection)
	}
	return s, nil
}

// Import uploads the JSON file at path into the active collection
func (s Store) Import(path string) (Store, tea.Cmd) {
	collection := s.state.Active
	if collection == "" {
		s.state = s.state.WithErr(errors.New("import: no active collection"))
		return s, nil
	}
	s.state = s.state.WithImporting(true)

	ctx, gw, gen := s.ctx, s.gw, s.gen
	return s, func() tea.Msg {
		msg := ImportFinishedMsg{Gen: gen, Collection: collection, Path: path}
		f, err := os.Open(path)
		if err != nil {
			msg.Err = fmt.Errorf("import: %w", err)
			return msg
		}
		defer f.Close()
		msg.Err = gw.Import(ctx, collection, filepath.Base(path), f)
		return msg
	}
}

// Export downloads the active collection into dir as <name>.json
func (s Store) Export(dir string) (Store, tea.Cmd) {
	collection := s.state.Active
	if collection == "" {
		s.state = s.state.WithErr(errors.New("export: no active collection"))
		return s, nil
	}

	ctx, gw, gen := s.ctx, s.gw, s.gen
	return s, func() tea.Msg {
		path, err := gateway.ExportFile(ctx, gw, collection, dir)
		return ExportFinishedMsg{Gen: gen, Collection: collection, Path: path, Err: err}
	}
}

func (s Store) deleteDocument(collection, id string) tea.Cmd {
	ctx, gw, gen := s.ctx, s.gw, s.gen
	return func() tea.Msg {
		err := gw.DeleteDocument(ctx, collection, id)
		return DocumentDeletedMsg{Gen: gen, Collection: collection, ID: id, Err: err}
	}
}

func (s Store) dropCollection(collection string) tea.Cmd {
	ctx, gw, gen := s.ctx, s.gw, s.gen
	return func() tea.Msg {
		err := gw.DropCollection(ctx, collection)
		return CollectionDroppedMsg{Gen: gen, Collection: collection, Err: err}
	}
}

// Update applies the result of a store command
func (s Store) Update(msg tea.Msg) (Store, tea.Cmd) {
	switch msg := msg.(type) {
	case NamesLoadedMsg:
		if msg.Gen != s.gen {
			return s, nil
		}
		if msg.Err != nil {
			s.state = s.state.WithFetching(false).WithErr(msg.Err)
			return s, nil
		}
		s.state = s.state.WithNames(msg.Names)

		persisted := s.lookup(prefs.KeyActiveCollection)
		active := ResolveActive(msg.Names, persisted)
		if persisted != "" && active != persisted {
			slog.Info("store: stored active collection no longer exists", "stored", persisted, "active", active)
		}
		s = s.SetActiveCollection(active)

		if len(msg.Names) == 0 {
			s.state = s.state.WithFetching(false)
			return s, nil
		}
		return s.LoadAllCollections(msg.Names)

	case CollectionsLoadedMsg:
		if msg.Gen != s.gen {
			return s, nil
		}
		var errs []error
		for _, r := range msg.Results {
			if r.Err != nil {
				slog.Warn("store: collection failed to load", "collection", r.Name, "err", r.Err)
				s.state = s.state.WithLoadError(r.Name, r.Err)
				errs = append(errs, r.Err)
				continue
			}
			s.state = s.state.WithCollection(r.Name, r.Collection)
		}
		s.state = s.state.WithFetching(false)
		if len(errs) > 0 {
			s.state = s.state.WithErr(fmt.Errorf("%d of %d collections failed to load: %w", len(errs), len(msg.Results), errors.Join(errs...)))
		}
		return s, nil

	case CollectionLoadedMsg:
		if msg.Gen != s.gen {
			return s, nil
		}
		if msg.Err != nil {
			s.state = s.state.WithLoadError(msg.Name, msg.Err).WithErr(msg.Err)
			return s, nil
		}
		s.state = s.state.WithCollection(msg.Name, msg.Collection)
		return s, nil

	case DocumentDeletedMsg:
		if msg.Gen != s.gen {
			return s, nil
		}
		s.record(prefs.NewEntry(prefs.ActionDeleteDocument, msg.Collection, msg.ID, msg.Err))
		if msg.Err != nil {
			s.state = s.state.WithErr(msg.Err)
			return s, nil
		}
		s.state = s.state.WithoutDocument(msg.Collection, msg.ID)
		return s, nil

	case CollectionDroppedMsg:
		if msg.Gen != s.gen {
			return s, nil
		}
		s.record(prefs.NewEntry(prefs.ActionDropCollection, msg.Collection, "", msg.Err))
		if msg.Err != nil {
			s.state = s.state.WithErr(msg.Err)
			return s, nil
		}
		wasActive := s.state.Active == msg.Collection
		s.state = s.state.WithoutCollection(msg.Collection)
		if wasActive {
			s.persist(prefs.KeyActiveCollection, s.state.Active)
		}
		return s, nil

	case ImportFinishedMsg:
		if msg.Gen != s.gen {
			return s, nil
		}
		s.state = s.state.WithImporting(false)
		s.record(prefs.NewEntry(prefs.ActionImport, msg.Collection, msg.Path, msg.Err))

		var importErr *gateway.ImportError
		var statusErr *gateway.StatusError
		switch {
		case msg.Err == nil:
			return s, requestReload
		case errors.As(msg.Err, &importErr):
			s.state = s.state.WithImportError(importErr.Message)
			return s, nil
		case errors.As(msg.Err, &statusErr):
			// The gateway answered; whatever it kept is worth showing
			s.state = s.state.WithErr(msg.Err)
			return s, requestReload
		default:
			s.state = s.state.WithErr(msg.Err)
			return s, nil
		}

	case ExportFinishedMsg:
		if msg.Gen != s.gen {
			return s, nil
		}
		s.record(prefs.NewEntry(prefs.ActionExport, msg.Collection, msg.Path, msg.Err))
		if msg.Err != nil {
			s.state = s.state.WithErr(msg.Err)
		}
		return s, nil
	}
	return s, nil
}

func requestReload() tea.Msg {
	return ReloadRequestedMsg{}
}

func (s Store) lookup(key string) string {
	if s.backend == nil {
		return ""
	}
	v, err := s.backend.Get(key)
	if err != nil && !errors.Is(err, prefs.ErrNotFound) {
		slog.Warn("store: failed to read preference", "key", key, "err", err)
	}
	return v
}

func (s Store) persist(key, value string) {
	if s.backend == nil {
		return
	}
	if err := s.backend.Set(key, value); err != nil {
		slog.Warn("store: failed to persist preference", "key", key, "err", err)
	}
}

func (s Store) record(e *prefs.Entry) {
	if s.backend == nil {
		return
	}
	if err := s.backend.Record(e); err != nil {
		slog.Warn("store: failed to record activity", "action", e.Action, "err", err)
	}
}
