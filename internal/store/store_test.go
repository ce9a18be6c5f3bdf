package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhath/ezcoll/internal/gateway"
	"github.com/nhath/ezcoll/internal/prefs"
)

// drive runs cmd and feeds its messages back into the store until quiet.
// Messages the store does not own are returned.
func drive(t *testing.T, s Store, cmd tea.Cmd) (Store, []tea.Msg) {
	t.Helper()
	var foreign []tea.Msg
	for cmd != nil {
		msg := cmd()
		switch msg.(type) {
		case ReloadRequestedMsg:
			foreign = append(foreign, msg)
			cmd = nil
		default:
			s, cmd = s.Update(msg)
		}
	}
	return s, foreign
}

func loaded(t *testing.T, gw *fakeGateway, backend prefs.Backend) Store {
	t.Helper()
	s, cmd := New(context.Background(), gw, backend).LoadCollectionNames()
	require.True(t, s.State().Fetching)
	s, _ = drive(t, s, cmd)
	return s
}

func TestLoadCollectionNames_FallsBackToFirst(t *testing.T) {
	gw := newFakeGateway()
	gw.add("User", "id", `{"id":"1"}`)
	gw.add("BlogPost", "slug")
	backend := prefs.NewMemory()
	require.NoError(t, backend.Set(prefs.KeyActiveCollection, "Gone"))

	s := loaded(t, gw, backend)

	assert.Equal(t, []string{"User", "BlogPost"}, s.State().Names)
	assert.Equal(t, "User", s.State().Active)
	assert.False(t, s.State().Fetching)
	stored, _ := backend.Get(prefs.KeyActiveCollection)
	assert.Equal(t, "User", stored)
	assert.Equal(t, "slug", s.State().IDField("BlogPost"))
}

func TestLoadCollectionNames_KeepsPersisted(t *testing.T) {
	gw := newFakeGateway()
	gw.add("User", "id")
	gw.add("BlogPost", "id")
	backend := prefs.NewMemory()
	require.NoError(t, backend.Set(prefs.KeyActiveCollection, "BlogPost"))

	s := loaded(t, gw, backend)
	assert.Equal(t, "BlogPost", s.State().Active)
}

func TestLoadCollectionNames_Empty(t *testing.T) {
	s := loaded(t, newFakeGateway(), prefs.NewMemory())

	assert.Empty(t, s.State().Names)
	assert.Equal(t, "", s.State().Active)
	assert.False(t, s.State().Fetching)
}

func TestLoadCollectionNames_Error(t *testing.T) {
	gw := newFakeGateway()
	gw.namesErr = errors.New("offline")

	s := loaded(t, gw, prefs.NewMemory())
	assert.False(t, s.State().Fetching)
	assert.EqualError(t, s.State().Err, "offline")
}

func TestLoadAll_StaysFetchingUntilSettled(t *testing.T) {
	gw := newFakeGateway()
	gw.add("A", "id")
	gw.add("B", "id")

	s, cmd := New(context.Background(), gw, prefs.NewMemory(), WithConcurrency(1)).LoadCollectionNames()
	s, cmd = s.Update(cmd())
	require.NotNil(t, cmd)
	assert.True(t, s.State().Fetching, "names loaded but collections still pending")

	s, _ = s.Update(cmd())
	assert.False(t, s.State().Fetching)
	assert.Len(t, s.State().Collections, 2)
}

func TestLoadAll_ReportsFailuresPerCollection(t *testing.T) {
	gw := newFakeGateway()
	gw.add("A", "id", `{"id":"1"}`)
	gw.add("B", "id")
	gw.collErr["B"] = errors.New("broken")

	s := loaded(t, gw, prefs.NewMemory())

	assert.Contains(t, s.State().Collections, "A")
	assert.NotContains(t, s.State().Collections, "B")
	assert.EqualError(t, s.State().LoadErrors["B"], "broken")
	require.Error(t, s.State().Err)
	assert.Contains(t, s.State().Err.Error(), "broken")
}

func TestLoadCollection_ReplacesEntry(t *testing.T) {
	gw := newFakeGateway()
	gw.add("A", "id", `{"id":"1"}`)
	s := loaded(t, gw, prefs.NewMemory())

	gw.collections["A"] = gateway.Collection{IDField: "id", Documents: docs(`{"id":"2"}`, `{"id":"3"}`)}
	s, cmd := s.LoadCollection("A")
	s, _ = drive(t, s, cmd)

	assert.Len(t, s.State().Collections["A"], 2)
}

func TestSetActiveCollection_Persists(t *testing.T) {
	backend := prefs.NewMemory()
	s := New(context.Background(), newFakeGateway(), backend).
		SetActiveDocument(Selection{Collection: "A", Doc: Document(`{}`)}).
		SetActiveCollection("B")

	assert.Equal(t, "B", s.State().Active)
	assert.True(t, s.State().Selected.Empty())
	v, _ := backend.Get(prefs.KeyActiveCollection)
	assert.Equal(t, "B", v)
}

func TestDeleteActiveDocument(t *testing.T) {
	gw := newFakeGateway()
	gw.add("User", "id", `{"id":"1"}`, `{"id":"2"}`, `{"id":"1"}`)
	backend := prefs.NewMemory()
	s := loaded(t, gw, backend)
	gw.calls = nil

	doc := s.ActiveCollection()[0]
	s = s.SetActiveDocument(Selection{Collection: "User", ID: s.DocumentID(doc), Doc: doc})
	s, cmd := s.DeleteActiveDocument()
	s, _ = drive(t, s, cmd)

	assert.Equal(t, []string{"delete User/1"}, gw.calls)
	assert.Len(t, s.ActiveCollection(), 2)
	assert.True(t, s.State().Selected.Empty())

	entries, _ := backend.Recent(1)
	require.Len(t, entries, 1)
	assert.Equal(t, prefs.ActionDeleteDocument, entries[0].Action)
	assert.Equal(t, prefs.StatusSuccess, entries[0].Status)
}

func TestDeleteActiveDocument_FailureKeepsState(t *testing.T) {
	gw := newFakeGateway()
	gw.add("User", "id", `{"id":"1"}`)
	s := loaded(t, gw, prefs.NewMemory())
	gw.deleteErr = &gateway.StatusError{Op: "delete", StatusCode: 404}

	doc := s.ActiveCollection()[0]
	s = s.SetActiveDocument(Selection{Collection: "User", ID: "1", Doc: doc})
	s, cmd := s.DeleteActiveDocument()
	s, _ = drive(t, s, cmd)

	assert.Len(t, s.ActiveCollection(), 1)
	assert.Error(t, s.State().Err)
}

func TestDeleteActiveDocument_NoSelection(t *testing.T) {
	_, cmd := New(context.Background(), newFakeGateway(), prefs.NewMemory()).DeleteActiveDocument()
	assert.Nil(t, cmd)
}

func TestDeleteActiveDocument_NoIDField(t *testing.T) {
	gw := newFakeGateway()
	gw.add("User", "id", `{"name":"no id here"}`)
	s := loaded(t, gw, prefs.NewMemory())
	gw.calls = nil

	doc := s.ActiveCollection()[0]
	s = s.SetActiveDocument(Selection{Collection: "User", ID: s.DocumentID(doc), Doc: doc})
	assert.False(t, s.State().Selected.Deletable())

	s, cmd := s.DeleteActiveDocument()
	assert.Nil(t, cmd)
	assert.Empty(t, gw.calls)
	assert.Len(t, s.ActiveCollection(), 1)
}

func TestConfirm_DispatchesOnActionKind(t *testing.T) {
	tests := []struct {
		name  string
		modal Modal
		want  []string
	}{
		{name: "delete", modal: DeleteModal("User", "1"), want: []string{"delete User/1"}},
		{name: "drop", modal: DropModal("User"), want: []string{"drop User"}},
		// a misleading header must not change what runs
		{name: "drop with delete header", modal: Modal{Open: true, Header: "Delete document?", Action: Action{Kind: ActionDropCollection, Collection: "User"}}, want: []string{"drop User"}},
		{name: "nothing pending", modal: Modal{Open: true}, want: nil},
		{name: "delete without id", modal: DeleteModal("User", ""), want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newFakeGateway()
			gw.add("User", "id", `{"id":"1"}`)
			s := loaded(t, gw, prefs.NewMemory())
			gw.calls = nil

			s, cmd := s.OpenModal(tt.modal).Confirm()
			assert.False(t, s.State().Modal.Open)
			s, _ = drive(t, s, cmd)

			assert.Equal(t, tt.want, gw.calls)
		})
	}
}

func TestDropActiveCollection(t *testing.T) {
	gw := newFakeGateway()
	gw.add("User", "id")
	gw.add("BlogPost", "id")
	backend := prefs.NewMemory()
	s := loaded(t, gw, backend)

	s, cmd := s.DropActiveCollection()
	s, _ = drive(t, s, cmd)

	assert.Equal(t, []string{"BlogPost"}, s.State().Names)
	assert.Equal(t, "BlogPost", s.State().Active)
	v, _ := backend.Get(prefs.KeyActiveCollection)
	assert.Equal(t, "BlogPost", v)
}

func writeImportFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name":"x"}]`), 0600))
	return path
}

func TestImport(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantBanner string
		wantReload bool
		wantToast  bool
	}{
		{name: "success reloads", wantReload: true},
		{name: "500 shows server text", err: &gateway.ImportError{Collection: "User", Message: "bad field"}, wantBanner: "bad field"},
		{name: "other status reloads", err: &gateway.StatusError{Op: "import", StatusCode: 413}, wantReload: true, wantToast: true},
		{name: "transport failure", err: &gateway.RequestError{Op: "import", Underlying: errors.New("refused")}, wantToast: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newFakeGateway()
			gw.add("User", "id")
			gw.importErr = tt.err
			s := loaded(t, gw, prefs.NewMemory())

			s, cmd := s.Import(writeImportFile(t))
			assert.True(t, s.State().Importing)
			s, foreign := drive(t, s, cmd)

			assert.False(t, s.State().Importing)
			assert.Equal(t, tt.wantBanner, s.State().ImportError)
			assert.Equal(t, tt.wantToast, s.State().Err != nil)
			if tt.wantReload {
				assert.Equal(t, []tea.Msg{ReloadRequestedMsg{}}, foreign)
			} else {
				assert.Empty(t, foreign)
			}
			assert.Equal(t, `[{"name":"x"}]`, gw.imported)
		})
	}
}

func TestImport_MissingFile(t *testing.T) {
	gw := newFakeGateway()
	gw.add("User", "id")
	s := loaded(t, gw, prefs.NewMemory())

	s, cmd := s.Import(filepath.Join(t.TempDir(), "nope.json"))
	s, foreign := drive(t, s, cmd)

	assert.Error(t, s.State().Err)
	assert.Empty(t, foreign)
}

func TestExport(t *testing.T) {
	gw := newFakeGateway()
	gw.add("User", "id")
	gw.exportBody = `[{"id":"1"}]`
	backend := prefs.NewMemory()
	s := loaded(t, gw, backend)

	dir := t.TempDir()
	s, cmd := s.Export(dir)
	msg := cmd().(ExportFinishedMsg)
	require.NoError(t, msg.Err)
	assert.Equal(t, filepath.Join(dir, "User.json"), msg.Path)

	s, _ = s.Update(msg)
	assert.NoError(t, s.State().Err)
	entries, _ := backend.Recent(1)
	assert.Equal(t, prefs.ActionExport, entries[0].Action)
}

func TestReset_DropsStaleResults(t *testing.T) {
	gw := newFakeGateway()
	gw.add("User", "id", `{"id":"1"}`)
	s := New(context.Background(), gw, prefs.NewMemory())

	s, cmd := s.LoadCollectionNames()
	msg := cmd()
	s = s.Reset()
	s, next := s.Update(msg)

	assert.Nil(t, next)
	assert.Empty(t, s.State().Names)
	assert.Equal(t, 1, s.Generation())
}

func TestClearError(t *testing.T) {
	s := New(context.Background(), newFakeGateway(), prefs.NewMemory())
	s.state = s.state.WithErr(errors.New("x")).WithImportError("y")

	s = s.ClearError()
	assert.NoError(t, s.State().Err)
	assert.Empty(t, s.State().ImportError)
}
