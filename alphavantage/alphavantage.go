// Package alphavantage fetches daily adjusted close prices of equities and
// ETFs from Alpha Vantage.
package alphavantage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/etnz/whatif"
	"github.com/etnz/whatif/date"
	"github.com/etnz/whatif/remote"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the Alpha Vantage query endpoint.
const DefaultBaseURL = "https://www.alphavantage.co/query"

// Options configures a Client.
type Options struct {
	APIKey            string
	BaseURL           string        // empty means DefaultBaseURL
	RequestsPerMinute int           // zero means 5, the free tier quota
	CacheTTL          time.Duration // how long a series is reused, zero disables caching
	CacheDir          string        // disk cache directory, see remote.Options
	Transport         http.RoundTripper
	Logger            *zap.Logger
}

// Client implements whatif.EquityProvider.
type Client struct {
	apiKey  string
	base    string
	remote  *remote.Client
	limiter *rate.Limiter
	group   singleflight.Group
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.Logger

	mu     sync.Mutex
	series map[string]entry
}

type entry struct {
	h  *date.History[float64]
	at time.Time
}

// New returns a client.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = 5
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Client{
		apiKey: opts.APIKey,
		base:   opts.BaseURL,
		remote: remote.New(remote.Options{
			CacheTTL:  opts.CacheTTL,
			CacheDir:  opts.CacheDir,
			Transport: opts.Transport,
			Logger:    opts.Logger,
		}),
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1),
		ttl:     opts.CacheTTL,
		now:     time.Now,
		logger:  opts.Logger,
		series:  make(map[string]entry),
	}
}

var _ whatif.EquityProvider = (*Client)(nil)

// DailyAdjusted returns the full daily adjusted close history of symbol.
//
// The returned history is shared between callers and must not be modified.
// Concurrent calls for the same symbol share a single request.
func (c *Client) DailyAdjusted(ctx context.Context, symbol string) (*date.History[float64], error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: alphavantage: %w: missing API key", whatif.ErrProvider, whatif.ErrNotConfigured)
	}
	if h, ok := c.cached(symbol); ok {
		return h, nil
	}
	v, err, _ := c.group.Do(symbol, func() (any, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		h, err := c.fetch(ctx, symbol)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.series[symbol] = entry{h: h, at: c.now()}
		c.mu.Unlock()
		return h, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*date.History[float64]), nil
}

func (c *Client) cached(symbol string) (*date.History[float64], bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.series[symbol]
	if !ok || c.now().Sub(e.at) >= c.ttl {
		return nil, false
	}
	return e.h, true
}

// payload is the subset of TIME_SERIES_DAILY_ADJUSTED we read.
//
//	{
//	  "Meta Data": {...},
//	  "Time Series (Daily)": {
//	    "2025-04-25": {"1. open": "546.65", ..., "5. adjusted close": "550.64", ...},
//	    ...
//	  }
//	}
//
// Errors and quota messages come with a 200 status in one of the other fields.
type payload struct {
	ErrorMessage string                    `json:"Error Message"`
	Note         string                    `json:"Note"`
	Information  string                    `json:"Information"`
	Series       map[string]map[string]any `json:"Time Series (Daily)"`
}

// adjustedClose reads the "5. adjusted close" field, a string in practice.
func adjustedClose(row map[string]any) (float64, bool) {
	var v float64
	switch x := row["5. adjusted close"].(type) {
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, false
		}
		v = f
	case float64:
		v = x
	default:
		return 0, false
	}
	return v, !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (p *payload) err() error {
	for _, msg := range []string{p.ErrorMessage, p.Note, p.Information} {
		if msg != "" {
			return errors.New(msg)
		}
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, symbol string) (*date.History[float64], error) {
	q := url.Values{}
	q.Set("function", "TIME_SERIES_DAILY_ADJUSTED")
	q.Set("symbol", symbol)
	q.Set("outputsize", "full")
	q.Set("apikey", c.apiKey)
	addr := c.base + "?" + q.Encode()

	var p payload
	if err := c.remote.GetJSON(ctx, addr, &p); err != nil {
		return nil, fmt.Errorf("%w: alphavantage %s: %w", whatif.ErrProvider, symbol, err)
	}
	if err := p.err(); err != nil {
		c.remote.Forget(addr)
		return nil, fmt.Errorf("%w: alphavantage %s: %w", whatif.ErrProvider, symbol, err)
	}

	h := new(date.History[float64])
	for day, row := range p.Series {
		d, err := date.Parse(day)
		if err != nil {
			continue
		}
		v, ok := adjustedClose(row)
		if !ok {
			continue
		}
		h.Append(d, v)
	}
	latest, _ := h.Latest()
	c.logger.Debug("alphavantage series", zap.String("symbol", symbol), zap.Int("days", h.Len()), zap.Stringer("latest", latest))
	return h, nil
}
