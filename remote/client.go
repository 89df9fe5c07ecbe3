// Package remote holds the HTTP plumbing shared by the market data providers:
// a short lived disk cache and JSON helpers.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// StatusError is returned for a non 2xx response.
type StatusError struct {
	Method     string
	Host, Path string
	StatusCode int
	Status     string
	Body       string // first bytes of the body
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("cannot http %s %s%s: %s", e.Method, e.Host, e.Path, e.Status)
}

// Options configures a Client.
type Options struct {
	CacheTTL  time.Duration     // zero disables the disk cache
	CacheDir  string            // empty means a whatif directory in os.TempDir
	Header    http.Header       // added to every request
	Transport http.RoundTripper // nil means http.DefaultTransport
	Logger    *zap.Logger
}

// Client performs JSON requests.
type Client struct {
	http   *http.Client
	cache  *diskCache
	header http.Header
	logger *zap.Logger
}

// New returns a client.
func New(opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Transport == nil {
		opts.Transport = http.DefaultTransport
	}
	c := &Client{http: new(http.Client), header: opts.Header, logger: opts.Logger}
	c.http.Transport = opts.Transport
	if opts.CacheTTL > 0 {
		if opts.CacheDir == "" {
			opts.CacheDir = filepath.Join(os.TempDir(), "whatif")
		}
		c.cache = &diskCache{
			base:   opts.Transport,
			dir:    opts.CacheDir,
			ttl:    opts.CacheTTL,
			now:    time.Now,
			logger: opts.Logger,
		}
		c.http.Transport = c.cache
	}
	return c
}

// GetJSON performs a GET request on addr and decodes the JSON body into v.
func (c *Client) GetJSON(ctx context.Context, addr string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	if err := c.do(req, v); err != nil {
		c.forget(req)
		return err
	}
	return nil
}

// PostJSON posts body encoded as JSON to addr and decodes the response into v.
func (c *Client) PostJSON(ctx context.Context, addr string, body, v any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, addr, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, v)
}

// Forget drops the cached response for a GET on addr. Providers call it when
// a 200 response turns out to carry an error payload.
func (c *Client) Forget(addr string) {
	req, err := http.NewRequest(http.MethodGet, addr, nil)
	if err != nil {
		return
	}
	c.forget(req)
}

func (c *Client) forget(req *http.Request) {
	if c.cache != nil {
		c.cache.forget(req)
	}
}

func (c *Client) do(req *http.Request, v any) error {
	for k, vs := range c.header {
		for _, val := range vs {
			req.Header.Add(k, val)
		}
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{
			Method:     req.Method,
			Host:       req.URL.Host,
			Path:       req.URL.Path,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(snippet),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("cannot decode %s%s: %w", req.URL.Host, req.URL.Path, err)
	}
	return nil
}
