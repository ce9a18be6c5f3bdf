package gateway

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"golang.org/x/net/websocket"
)

// WatchEvent is one change notification from /watch-collections
type WatchEvent struct {
	Model string            `json:"model"`
	Event string            `json:"event"` // insert, update, delete
	Data  []json.RawMessage `json:"data"`
}

// Watch subscribes to the gateway's change channel. The returned channel is
// closed when ctx is done or the connection drops.
func (c *Client) Watch(ctx context.Context) (<-chan WatchEvent, error) {
	endpoint, err := c.endpoint("watch-collections")
	if err != nil {
		return nil, err
	}
	wsURL := strings.Replace(strings.Replace(endpoint, "https://", "wss://", 1), "http://", "ws://", 1)

	cfg, err := websocket.NewConfig(wsURL, c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if c.Token != "" {
		cfg.Header.Set("Authorization", "Bearer "+c.Token)
	}

	conn, err := c.dialWatch(ctx, cfg)
	if err != nil {
		return nil, WrapRequestError("watch", err)
	}
	ws, err := websocket.NewClient(cfg, conn)
	if err != nil {
		conn.Close()
		return nil, WrapRequestError("watch", err)
	}
	slog.Info("watching collections", "url", wsURL)

	events := make(chan WatchEvent)
	go func() {
		<-ctx.Done()
		ws.Close()
	}()
	go func() {
		defer close(events)
		for {
			var ev WatchEvent
			if err := websocket.JSON.Receive(ws, &ev); err != nil {
				if ctx.Err() == nil {
					slog.Warn("watch channel closed", "err", err)
				}
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}

func (c *Client) dialWatch(ctx context.Context, cfg *websocket.Config) (net.Conn, error) {
	dial := c.dialContext
	if dial == nil {
		dial = (&net.Dialer{}).DialContext
	}

	secure := cfg.Location.Scheme == "wss"
	host := cfg.Location.Hostname()
	addr := cfg.Location.Host
	if cfg.Location.Port() == "" {
		port := "80"
		if secure {
			port = "443"
		}
		addr = net.JoinHostPort(host, port)
	}

	conn, err := dial(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	if !secure {
		return conn, nil
	}

	tlsConn := tls.Client(conn, &tls.Config{ServerName: host})
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return tlsConn, nil
}
