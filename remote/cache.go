package remote

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"fmt"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// diskCache is an http.RoundTripper that keeps successful GET responses on disk.
//
// Entries belong to a time window of length ttl: the window start is part of
// the key, so every entry expires when the window ends.
type diskCache struct {
	base   http.RoundTripper
	dir    string
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

func (c *diskCache) key(req *http.Request) string {
	window := c.now().Truncate(c.ttl).Unix()
	key := fmt.Sprintf("%d %s %s", window, req.Method, req.URL.String())
	return fmt.Sprintf("%x", sha1.Sum([]byte(key)))
}

// RoundTrip serves a fresh cached response if any, otherwise performs the
// request and caches the response when it is a success.
func (c *diskCache) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return c.base.RoundTrip(req)
	}
	key := c.key(req)
	if resp, err := c.get(key, req); err == nil {
		c.logger.Debug("cache hit", zap.String("host", req.URL.Host), zap.String("path", req.URL.Path))
		return resp, nil
	}

	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("http",
		zap.String("method", req.Method),
		zap.String("host", req.URL.Host),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
	)
	if resp.StatusCode >= 300 {
		return resp, nil
	}
	if err := c.put(key, resp); err != nil {
		c.logger.Warn("cache write failed (ignored)", zap.Error(err))
	}
	return resp, nil
}

// forget drops the cached response of req.
func (c *diskCache) forget(req *http.Request) {
	os.Remove(filepath.Join(c.dir, c.key(req)))
}

func (c *diskCache) get(key string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(filepath.Join(c.dir, key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req)
}

// put stores resp, whose body remains readable afterwards.
func (c *diskCache) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, key), content, 0o644)
}
