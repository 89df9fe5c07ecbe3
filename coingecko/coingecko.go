// Package coingecko fetches daily crypto prices from CoinGecko.
package coingecko

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/whatif"
	"github.com/etnz/whatif/date"
	"github.com/etnz/whatif/remote"
	"go.uber.org/zap"
)

// DefaultBaseURL is the public API root.
const DefaultBaseURL = "https://api.coingecko.com/api/v3"

// Options configures a Client.
type Options struct {
	APIKey    string // optional demo key, sent as x-cg-demo-api-key
	BaseURL   string // empty means DefaultBaseURL
	Currency  string // quote currency, empty means eur
	CacheTTL  time.Duration
	CacheDir  string
	Transport http.RoundTripper
	Logger    *zap.Logger
}

// Client implements whatif.CryptoProvider.
type Client struct {
	base     string
	currency string
	remote   *remote.Client
	today    func() date.Date
	logger   *zap.Logger

	mu     sync.Mutex
	prices map[key]float64 // past days only, they do not change
}

type key struct {
	coin string
	day  date.Date
}

// New returns a client.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Currency == "" {
		opts.Currency = "eur"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	var header http.Header
	if opts.APIKey != "" {
		header = http.Header{"x-cg-demo-api-key": {opts.APIKey}}
	}
	return &Client{
		base:     opts.BaseURL,
		currency: opts.Currency,
		remote: remote.New(remote.Options{
			CacheTTL:  opts.CacheTTL,
			CacheDir:  opts.CacheDir,
			Header:    header,
			Transport: opts.Transport,
			Logger:    opts.Logger,
		}),
		today:  date.Today,
		logger: opts.Logger,
		prices: make(map[key]float64),
	}
}

var _ whatif.CryptoProvider = (*Client)(nil)

// lastPrice selects the price of the last [timestamp, price] sample.
const lastPrice = "$.prices[-1:][1]"

// PriceOn returns the price of coinID on day: the last sample of the range
// starting at day midnight UTC and spanning two days.
func (c *Client) PriceOn(ctx context.Context, coinID string, day date.Date) (float64, error) {
	k := key{coinID, day}
	c.mu.Lock()
	p, ok := c.prices[k]
	c.mu.Unlock()
	if ok {
		return p, nil
	}

	from := day.Time().Unix()
	to := from + 2*int64(date.Day/time.Second)
	addr := fmt.Sprintf("%s/coins/%s/market_chart/range?vs_currency=%s&from=%d&to=%d",
		c.base, url.PathEscape(coinID), url.QueryEscape(c.currency), from, to)

	var jobj any
	if err := c.remote.GetJSON(ctx, addr, &jobj); err != nil {
		return 0, fmt.Errorf("%w: coingecko %s on %s: %w", whatif.ErrProvider, coinID, day, err)
	}
	jval, err := jsonpath.Get(lastPrice, jobj)
	if err != nil {
		c.remote.Forget(addr)
		return 0, fmt.Errorf("%w: coingecko %s on %s: no prices: %w", whatif.ErrProvider, coinID, day, err)
	}
	// jsonpath returns a list for a slice expression, keep the first item.
	if jlist, ok := jval.([]any); ok {
		if len(jlist) == 0 {
			c.remote.Forget(addr)
			return 0, fmt.Errorf("%w: coingecko %s on %s: no prices", whatif.ErrProvider, coinID, day)
		}
		jval = jlist[0]
	}
	price, ok := jval.(float64)
	if !ok || !(price > 0) || math.IsInf(price, 0) {
		c.remote.Forget(addr)
		return 0, fmt.Errorf("%w: coingecko %s on %s: invalid price %v", whatif.ErrProvider, coinID, day, jval)
	}

	if day.Before(c.today()) {
		c.mu.Lock()
		c.prices[k] = price
		c.mu.Unlock()
	}
	c.logger.Debug("coingecko price", zap.String("coin", coinID), zap.Stringer("day", day), zap.Float64("price", price))
	return price, nil
}
