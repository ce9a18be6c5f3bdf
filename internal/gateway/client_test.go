package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/", "secret")

	assert.Equal(t, "http://localhost:8080", client.BaseURL)
	assert.Equal(t, "secret", client.Token)
	assert.NotNil(t, client.HTTPClient)
}

func TestClient_CollectionNames(t *testing.T) {
	tests := []struct {
		name         string
		statusCode   int
		responseBody string
		want         []string
		wantErr      bool
	}{
		{
			name:         "ordered names",
			statusCode:   200,
			responseBody: `["User","BlogPost","Message"]`,
			want:         []string{"User", "BlogPost", "Message"},
		},
		{
			name:         "empty",
			statusCode:   200,
			responseBody: `[]`,
			want:         []string{},
		},
		{
			name:         "server error",
			statusCode:   503,
			responseBody: `down`,
			wantErr:      true,
		},
		{
			name:         "malformed",
			statusCode:   200,
			responseBody: `{"not":"a list"}`,
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/rest/collNames", r.URL.Path)
				assert.Equal(t, http.MethodGet, r.Method)
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.responseBody))
			}))
			defer server.Close()

			got, err := NewClient(server.URL, "").CollectionNames(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_StatusErrorCarriesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("no such collection\n"))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "").Collection(context.Background(), "Ghost")

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, "no such collection", statusErr.Body)
}

func TestClient_RequestErrorOnTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient(url, "").CollectionNames(context.Background())

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, "list collections", reqErr.Op)
}

func TestClient_Collection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/User", r.URL.Path)
		w.Write([]byte(`{"uid":[{"uid":"a1","name":"John"},{"uid":"b2","name":"Jane","tags":["x"]}]}`))
	}))
	defer server.Close()

	coll, err := NewClient(server.URL, "").Collection(context.Background(), "User")
	require.NoError(t, err)

	assert.Equal(t, "uid", coll.IDField)
	require.Len(t, coll.Documents, 2)
	assert.JSONEq(t, `{"uid":"a1","name":"John"}`, string(coll.Documents[0]))
	assert.JSONEq(t, `{"uid":"b2","name":"Jane","tags":["x"]}`, string(coll.Documents[1]))
}

func TestClient_AuthorizationHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer s3cret", r.Header.Get("Authorization"))
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "s3cret").CollectionNames(context.Background())
	require.NoError(t, err)
}

func TestClient_BasePathPrefix(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/rest/collNames", r.URL.Path)
		w.Write([]byte(`["A"]`))
	}))
	defer server.Close()

	names, err := NewClient(server.URL+"/admin/", "").CollectionNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, names)
}

func TestClient_Import(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantImport string
		wantStatus bool
	}{
		{name: "accepted", statusCode: 200},
		{name: "rejected with reason", statusCode: 500, body: "bad field", wantImport: "bad field"},
		{name: "other failure", statusCode: 413, body: "too large", wantStatus: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/rest/User", r.URL.Path)

				file, header, err := r.FormFile("files")
				require.NoError(t, err)
				defer file.Close()
				content, _ := io.ReadAll(file)
				assert.Equal(t, "users.json", header.Filename)
				assert.Equal(t, `[{"name":"x"}]`, string(content))

				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			err := NewClient(server.URL, "").Import(context.Background(), "User", "users.json", strings.NewReader(`[{"name":"x"}]`))

			switch {
			case tt.wantImport != "":
				var importErr *ImportError
				require.True(t, errors.As(err, &importErr))
				assert.Equal(t, tt.wantImport, importErr.Message)
			case tt.wantStatus:
				var statusErr *StatusError
				require.True(t, errors.As(err, &statusErr))
				assert.Equal(t, tt.statusCode, statusErr.StatusCode)
			default:
				require.NoError(t, err)
			}
		})
	}
}

func TestClient_DeleteAndDropPaths(t *testing.T) {
	var calls []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	require.NoError(t, client.DeleteDocument(context.Background(), "User", "a b/c"))
	require.NoError(t, client.DropCollection(context.Background(), "User"))

	assert.Equal(t, []string{
		"DELETE /rest/User/a b/c",
		"DELETE /api/drop-collection/User",
	}, calls)
}

func TestClient_Docs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/docs", r.URL.Path)
		w.Write([]byte(`<h1 id="intro">Intro</h1>`))
	}))
	defer server.Close()

	html, err := NewClient(server.URL, "").Docs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `<h1 id="intro">Intro</h1>`, html)
}

func TestExportFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/export-collection/User", r.URL.Path)
		w.Write([]byte(`[{"id":"1"}]`))
	}))
	defer server.Close()

	dir := t.TempDir()
	path, err := ExportFile(context.Background(), NewClient(server.URL, ""), "User", dir)
	require.NoError(t, err)
	assert.Equal(t, "User.json", filepath.Base(path))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary download file must be cleaned up")
	assert.Equal(t, "User.json", entries[0].Name())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1"}]`, string(content))
}

func TestExportFile_FailureLeavesNothing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	dir := t.TempDir()
	_, err := ExportFile(context.Background(), NewClient(server.URL, ""), "User", dir)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
