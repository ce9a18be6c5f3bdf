package gateway

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"
)

func TestClient_Watch(t *testing.T) {
	server := httptest.NewServer(websocket.Handler(func(ws *websocket.Conn) {
		assert.Equal(t, "/watch-collections", ws.Request().URL.Path)
		assert.Equal(t, "Bearer tok", ws.Request().Header.Get("Authorization"))
		websocket.JSON.Send(ws, WatchEvent{Model: "User", Event: "insert"})
		websocket.JSON.Send(ws, WatchEvent{Model: "BlogPost", Event: "delete"})
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events, err := NewClient(server.URL, "tok").Watch(ctx)
	require.NoError(t, err)

	var got []WatchEvent
	for ev := range events {
		got = append(got, ev)
	}
	require.Len(t, got, 2)
	assert.Equal(t, "User", got[0].Model)
	assert.Equal(t, "insert", got[0].Event)
	assert.Equal(t, "BlogPost", got[1].Model)
}

func TestClient_WatchStopsOnCancel(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(websocket.Handler(func(ws *websocket.Conn) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	events, err := NewClient(server.URL, "").Watch(ctx)
	require.NoError(t, err)

	cancel()
	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("watch channel not closed after cancel")
	}
}
