package store

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/nhath/ezcoll/internal/gateway"
)

// fakeGateway records every call and serves canned collections
type fakeGateway struct {
	mu          sync.Mutex
	names       []string
	namesErr    error
	collections map[string]gateway.Collection
	collErr     map[string]error
	importErr   error
	deleteErr   error
	dropErr     error
	exportBody  string

	calls    []string
	imported string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		collections: make(map[string]gateway.Collection),
		collErr:     make(map[string]error),
	}
}

func (f *fakeGateway) add(name, idField string, docs ...string) {
	raw := make([]Document, len(docs))
	for i, d := range docs {
		raw[i] = Document(d)
	}
	f.names = append(f.names, name)
	f.collections[name] = gateway.Collection{IDField: idField, Documents: raw}
}

func (f *fakeGateway) call(c string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeGateway) CollectionNames(context.Context) ([]string, error) {
	f.call("names")
	return f.names, f.namesErr
}

func (f *fakeGateway) Collection(_ context.Context, name string) (gateway.Collection, error) {
	f.call("get " + name)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.collErr[name]; err != nil {
		return gateway.Collection{}, err
	}
	coll, ok := f.collections[name]
	if !ok {
		return gateway.Collection{}, errors.New("no such collection")
	}
	return coll, nil
}

func (f *fakeGateway) Import(_ context.Context, collection, filename string, r io.Reader) error {
	f.call("import " + collection + " " + filename)
	b, _ := io.ReadAll(r)
	f.imported = string(b)
	return f.importErr
}

func (f *fakeGateway) DeleteDocument(_ context.Context, collection, id string) error {
	f.call("delete " + collection + "/" + id)
	return f.deleteErr
}

func (f *fakeGateway) DropCollection(_ context.Context, collection string) error {
	f.call("drop " + collection)
	return f.dropErr
}

func (f *fakeGateway) Export(_ context.Context, collection string, w io.Writer) (int64, error) {
	f.call("export " + collection)
	n, err := io.WriteString(w, f.exportBody)
	return int64(n), err
}
