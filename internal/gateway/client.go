// Package gateway is the HTTP client for the collection gateway's REST API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"
)

// Client talks to one gateway instance
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client

	// dialContext is used for the change channel; nil means net.Dialer
	dialContext func(ctx context.Context, network, addr string) (net.Conn, error)
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.HTTPClient = hc
	}
}

// WithTimeout bounds every REST request
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.HTTPClient.Timeout = d
	}
}

// WithTunnel routes every connection through an SSH tunnel
func WithTunnel(t *SSHTunnel) Option {
	return func(c *Client) {
		c.dialContext = t.DialContext
		c.HTTPClient.Transport = &http.Transport{
			DialContext:         t.DialContext,
			MaxIdleConnsPerHost: 8,
			IdleConnTimeout:     90 * time.Second,
		}
	}
}

// NewClient creates a gateway client for baseURL
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		Token:      token,
		HTTPClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collection is one collection as returned by GET /rest/{collection}
type Collection struct {
	IDField   string
	Documents []json.RawMessage
}

// CollectionNames returns the server-ordered list of collection names
func (c *Client) CollectionNames(ctx context.Context) ([]string, error) {
	const op = "list collections"
	resp, err := c.do(ctx, op, http.MethodGet, nil, "", "rest", "collNames")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(op, resp); err != nil {
		return nil, err
	}

	var names []string
	if err := json.NewDecoder(resp.Body).Decode(&names); err != nil {
		return nil, fmt.Errorf("%s: failed to parse response: %w", op, err)
	}
	return names, nil
}

// Collection fetches the id field name and documents of one collection
func (c *Client) Collection(ctx context.Context, name string) (Collection, error) {
	op := "load collection " + name
	resp, err := c.do(ctx, op, http.MethodGet, nil, "", "rest", name)
	if err != nil {
		return Collection{}, err
	}
	defer resp.Body.Close()

	if err := checkStatus(op, resp); err != nil {
		return Collection{}, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Collection{}, WrapRequestError(op, err)
	}

	coll, err := ParseCollection(body)
	if err != nil {
		return Collection{}, fmt.Errorf("%s: %w", op, err)
	}
	return coll, nil
}

// Import uploads a JSON file into a collection as multipart field "files".
// A 500 answer becomes an *ImportError carrying the server's text.
func (c *Client) Import(ctx context.Context, collection, filename string, r io.Reader) error {
	op := "import into " + collection

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, filename))
	header.Set("Content-Type", "application/json")
	part, err := mw.CreatePart(header)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("%s: failed to read %s: %w", op, filename, err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.do(ctx, op, http.MethodPost, &buf, mw.FormDataContentType(), "rest", collection)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusInternalServerError {
		body, _ := io.ReadAll(resp.Body)
		return &ImportError{Collection: collection, Message: string(body)}
	}
	return checkStatus(op, resp)
}

// DeleteDocument deletes one document by id
func (c *Client) DeleteDocument(ctx context.Context, collection, id string) error {
	op := fmt.Sprintf("delete %s/%s", collection, id)
	resp, err := c.do(ctx, op, http.MethodDelete, nil, "", "rest", collection, id)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkStatus(op, resp)
}

// DropCollection drops a whole collection
func (c *Client) DropCollection(ctx context.Context, collection string) error {
	op := "drop " + collection
	resp, err := c.do(ctx, op, http.MethodDelete, nil, "", "api", "drop-collection", collection)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkStatus(op, resp)
}

// Export streams the export blob of a collection into w
func (c *Client) Export(ctx context.Context, collection string, w io.Writer) (int64, error) {
	op := "export " + collection
	resp, err := c.do(ctx, op, http.MethodGet, nil, "", "api", "export-collection", collection)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if err := checkStatus(op, resp); err != nil {
		return 0, err
	}
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, WrapRequestError(op, err)
	}
	return n, nil
}

// Docs returns the gateway's documentation HTML fragment
func (c *Client) Docs(ctx context.Context) (string, error) {
	const op = "load docs"
	resp, err := c.do(ctx, op, http.MethodGet, nil, "", "rest", "docs")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkStatus(op, resp); err != nil {
		return "", err
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", WrapRequestError(op, err)
	}
	return string(body), nil
}

// endpoint joins escaped path segments onto the base URL
func (c *Client) endpoint(segments ...string) (string, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	raw := strings.TrimSuffix(u.EscapedPath(), "/") + "/" + strings.Join(escaped, "/")
	p, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", raw, err)
	}
	u.Path, u.RawPath = p, raw
	return u.String(), nil
}

func (c *Client) do(ctx context.Context, op, method string, body io.Reader, contentType string, segments ...string) (*http.Response, error) {
	endpoint, err := c.endpoint(segments...)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		slog.Warn("gateway request failed", "op", op, "method", method, "url", endpoint, "err", err)
		return nil, WrapRequestError(op, err)
	}
	slog.Debug("gateway request", "op", op, "method", method, "url", endpoint, "status", resp.StatusCode, "elapsed", time.Since(start))
	return resp, nil
}

func checkStatus(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}
