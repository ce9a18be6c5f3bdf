package store

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/nhath/ezcoll/internal/gateway"
)

// DefaultIDField is used for collections whose id field is unknown
const DefaultIDField = "id"

// Document is one JSON value exactly as the gateway sent it
type Document = json.RawMessage

// Selection is the active document
type Selection struct {
	Collection string
	ID         string
	Doc        Document
	Index      int
}

// Empty reports whether nothing is selected
func (s Selection) Empty() bool {
	return s.Doc == nil
}

// Deletable reports whether the selection names a document the gateway can delete
func (s Selection) Deletable() bool {
	return !s.Empty() && s.Collection != "" && s.ID != ""
}

// ActionKind tags what a confirmation modal will do
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionDeleteDocument
	ActionDropCollection
)

func (k ActionKind) String() string {
	switch k {
	case ActionDeleteDocument:
		return "delete-document"
	case ActionDropCollection:
		return "drop-collection"
	default:
		return "none"
	}
}

// Action is the pending operation behind a modal
type Action struct {
	Kind       ActionKind
	Collection string
	ID         string
}

// Modal is the single confirmation dialog
type Modal struct {
	Open   bool
	Header string
	Action Action
}

// DeleteModal asks to delete one document
func DeleteModal(collection, id string) Modal {
	return Modal{
		Open:   true,
		Header: fmt.Sprintf("Delete document %s from %s?", id, collection),
		Action: Action{Kind: ActionDeleteDocument, Collection: collection, ID: id},
	}
}

// DropModal asks to drop a whole collection
func DropModal(collection string) Modal {
	return Modal{
		Open:   true,
		Header: fmt.Sprintf("Drop collection %s and all of its documents?", collection),
		Action: Action{Kind: ActionDropCollection, Collection: collection},
	}
}

// State is an immutable snapshot. Reducers return a modified copy and never
// write through maps or slices shared with the receiver.
type State struct {
	Names       []string
	Collections map[string][]Document
	IDFields    map[string]string
	Active      string
	Selected    Selection
	Modal       Modal

	Fetching    bool
	Importing   bool
	ImportError string
	Err         error
	LoadErrors  map[string]error
}

// IDField returns the id field of a collection
func (s State) IDField(collection string) string {
	if f, ok := s.IDFields[collection]; ok && f != "" {
		return f
	}
	return DefaultIDField
}

// ActiveDocuments returns the documents of the active collection
func (s State) ActiveDocuments() []Document {
	return s.Collections[s.Active]
}

// DocumentID extracts the id of a document of the active collection
func (s State) DocumentID(doc Document) string {
	id, _ := gateway.FieldValue(doc, s.IDField(s.Active))
	return id
}

// Loaded reports whether the documents of name have arrived
func (s State) Loaded(name string) bool {
	_, ok := s.Collections[name]
	return ok
}

// HasCollection reports whether name is in the server list
func (s State) HasCollection(name string) bool {
	return slices.Contains(s.Names, name)
}

// ResolveActive picks persisted if it is listed, else the first name
func ResolveActive(names []string, persisted string) string {
	if persisted != "" && slices.Contains(names, persisted) {
		return persisted
	}
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

func (s State) WithNames(names []string) State {
	s.Names = slices.Clone(names)
	return s
}

// WithActive switches collection and drops the document selection
func (s State) WithActive(name string) State {
	s.Active = name
	s.Selected = Selection{}
	return s
}

func (s State) WithSelection(sel Selection) State {
	s.Selected = sel
	return s
}

// WithCollection replaces a collection entry wholesale
func (s State) WithCollection(name string, coll gateway.Collection) State {
	s.Collections = maps.Clone(s.Collections)
	if s.Collections == nil {
		s.Collections = make(map[string][]Document)
	}
	s.IDFields = maps.Clone(s.IDFields)
	if s.IDFields == nil {
		s.IDFields = make(map[string]string)
	}
	docs := coll.Documents
	if docs == nil {
		docs = []Document{}
	}
	s.Collections[name] = docs
	s.IDFields[name] = coll.IDField

	if _, failed := s.LoadErrors[name]; failed {
		s.LoadErrors = maps.Clone(s.LoadErrors)
		delete(s.LoadErrors, name)
	}
	if s.Selected.Collection == name {
		s.Selected = Selection{}
	}
	return s
}

func (s State) WithLoadError(name string, err error) State {
	s.LoadErrors = maps.Clone(s.LoadErrors)
	if s.LoadErrors == nil {
		s.LoadErrors = make(map[string]error)
	}
	s.LoadErrors[name] = err
	return s
}

// WithoutDocument removes the first document of collection whose id field
// equals id. Other documents sharing the id are kept.
func (s State) WithoutDocument(collection, id string) State {
	docs := s.Collections[collection]
	field := s.IDField(collection)

	idx := slices.IndexFunc(docs, func(d Document) bool {
		v, ok := gateway.FieldValue(d, field)
		return ok && v == id
	})
	if idx < 0 {
		return s
	}

	s.Collections = maps.Clone(s.Collections)
	s.Collections[collection] = slices.Delete(slices.Clone(docs), idx, idx+1)
	if s.Selected.Collection == collection && s.Selected.ID == id {
		s.Selected = Selection{}
	}
	return s
}

// WithoutCollection forgets a dropped collection. If it was active the
// first remaining name becomes active.
func (s State) WithoutCollection(name string) State {
	s.Names = slices.DeleteFunc(slices.Clone(s.Names), func(n string) bool { return n == name })

	s.Collections = maps.Clone(s.Collections)
	delete(s.Collections, name)
	s.IDFields = maps.Clone(s.IDFields)
	delete(s.IDFields, name)
	if s.LoadErrors != nil {
		s.LoadErrors = maps.Clone(s.LoadErrors)
		delete(s.LoadErrors, name)
	}

	if s.Active == name {
		s = s.WithActive(ResolveActive(s.Names, ""))
	}
	return s
}

func (s State) WithModal(m Modal) State {
	s.Modal = m
	return s
}

func (s State) WithoutModal() State {
	s.Modal = Modal{}
	return s
}

func (s State) WithFetching(fetching bool) State {
	s.Fetching = fetching
	return s
}

func (s State) WithImporting(importing bool) State {
	s.Importing = importing
	if importing {
		s.ImportError = ""
	}
	return s
}

func (s State) WithImportError(msg string) State {
	s.ImportError = msg
	return s
}

func (s State) WithErr(err error) State {
	s.Err = err
	return s
}
