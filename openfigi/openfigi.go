// Package openfigi looks up securities by free text or ISIN on OpenFIGI.
package openfigi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/etnz/whatif"
	"github.com/etnz/whatif/remote"
	"go.uber.org/zap"
)

// DefaultBaseURL is the OpenFIGI v3 API root.
const DefaultBaseURL = "https://api.openfigi.com/v3"

// MaxResults caps the number of hits returned by Search.
const MaxResults = 12

// searchLimit is the number of hits requested from the text search.
const searchLimit = 15

// ErrEmptyQuery is returned by Search for a blank query.
var ErrEmptyQuery = errors.New("empty query")

// Hit is a normalized search result.
type Hit struct {
	Name           string `json:"name,omitempty"`
	Ticker         string `json:"ticker,omitempty"`
	ExchCode       string `json:"exchCode,omitempty"`
	MICCode        string `json:"micCode,omitempty"`
	SecurityType   string `json:"securityType,omitempty"`
	ShareClassFIGI string `json:"shareClassFIGI,omitempty"`
	CompositeFIGI  string `json:"compositeFIGI,omitempty"`
	ISIN           string `json:"isin,omitempty"` // only set for an ISIN query
}

func (h Hit) key() string {
	return strings.Join([]string{h.Ticker, h.MICCode, h.ExchCode, h.ShareClassFIGI, h.CompositeFIGI}, "|")
}

var isinRx = regexp.MustCompile(`(?i)^[A-Z]{2}[A-Z0-9]{9}[0-9]$`)

// IsISIN reports whether q has the shape of an ISIN. The check digit is not verified.
func IsISIN(q string) bool { return isinRx.MatchString(strings.TrimSpace(q)) }

// Options configures a Client.
type Options struct {
	APIKey    string        // optional, raises the rate limit
	BaseURL   string        // empty means DefaultBaseURL
	CacheTTL  time.Duration // how long results are reused, zero disables it
	Transport http.RoundTripper
	Logger    *zap.Logger
}

// Client searches OpenFIGI.
type Client struct {
	base   string
	remote *remote.Client
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger

	mu      sync.Mutex
	results map[string]cached
}

type cached struct {
	hits []Hit
	at   time.Time
}

// New returns a client.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	var header http.Header
	if opts.APIKey != "" {
		header = http.Header{"X-OPENFIGI-APIKEY": {opts.APIKey}}
	}
	return &Client{
		base:    strings.TrimSuffix(opts.BaseURL, "/"),
		remote:  remote.New(remote.Options{Header: header, Transport: opts.Transport, Logger: opts.Logger}),
		ttl:     opts.CacheTTL,
		now:     time.Now,
		logger:  opts.Logger,
		results: make(map[string]cached),
	}
}

// record is the upstream shape of a FIGI, for both endpoints.
type record struct {
	Name           string `json:"name"`
	Ticker         string `json:"ticker"`
	ExchCode       string `json:"exchCode"`
	MICCode        string `json:"micCode"`
	SecurityType   string `json:"securityType"`
	ShareClassFIGI string `json:"shareClassFIGI"`
	CompositeFIGI  string `json:"compositeFIGI"`
}

func (r record) hit(isin string) Hit {
	return Hit{
		Name:           r.Name,
		Ticker:         r.Ticker,
		ExchCode:       r.ExchCode,
		MICCode:        r.MICCode,
		SecurityType:   r.SecurityType,
		ShareClassFIGI: r.ShareClassFIGI,
		CompositeFIGI:  r.CompositeFIGI,
		ISIN:           isin,
	}
}

// Search returns at most MaxResults distinct hits for q.
//
// An ISIN shaped query is mapped with /mapping, anything else goes to
// /search. Upstream failures wrap whatif.ErrProvider.
func (c *Client) Search(ctx context.Context, q string) ([]Hit, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, ErrEmptyQuery
	}
	if hits, ok := c.cached(q); ok {
		return hits, nil
	}

	var (
		hits []Hit
		err  error
	)
	if IsISIN(q) {
		hits, err = c.mapping(ctx, q)
	} else {
		hits, err = c.search(ctx, q)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: openfigi %q: %w", whatif.ErrProvider, q, err)
	}
	hits = dedupe(hits, MaxResults)
	c.logger.Debug("openfigi search", zap.String("query", q), zap.Int("hits", len(hits)))

	if c.ttl > 0 {
		c.mu.Lock()
		c.results[q] = cached{hits: hits, at: c.now()}
		c.mu.Unlock()
	}
	return hits, nil
}

func (c *Client) cached(q string) ([]Hit, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.results[q]
	if !ok || c.now().Sub(e.at) >= c.ttl {
		return nil, false
	}
	return e.hits, true
}

func (c *Client) search(ctx context.Context, q string) ([]Hit, error) {
	body := map[string]any{"query": q, "limit": searchLimit}
	var resp struct {
		Data  []record `json:"data"`
		Error string   `json:"error"`
	}
	if err := c.remote.PostJSON(ctx, c.base+"/search", body, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, errors.New(resp.Error)
	}
	hits := make([]Hit, 0, len(resp.Data))
	for _, r := range resp.Data {
		hits = append(hits, r.hit(""))
	}
	return hits, nil
}

func (c *Client) mapping(ctx context.Context, isin string) ([]Hit, error) {
	body := []map[string]string{{"idType": "ID_ISIN", "idValue": isin}}
	// One block per job, a job without match carries a warning instead of data.
	var resp []struct {
		Data    []record `json:"data"`
		Warning string   `json:"warning"`
		Error   string   `json:"error"`
	}
	if err := c.remote.PostJSON(ctx, c.base+"/mapping", body, &resp); err != nil {
		return nil, err
	}
	var hits []Hit
	for _, block := range resp {
		if block.Error != "" {
			return nil, errors.New(block.Error)
		}
		for _, r := range block.Data {
			hits = append(hits, r.hit(isin))
		}
	}
	return hits, nil
}

// dedupe keeps the first hit of each (ticker, mic, exchange, share class,
// composite) key, in order, up to max hits.
func dedupe(hits []Hit, max int) []Hit {
	seen := make(map[string]bool)
	out := make([]Hit, 0, min(len(hits), max))
	for _, h := range hits {
		if len(out) == max {
			break
		}
		k := h.key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, h)
	}
	return out
}
