package alphavantage

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/etnz/whatif"
	"github.com/etnz/whatif/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `{
    "Meta Data": {"1. Information": "Daily Time Series with Splits and Dividend Events", "2. Symbol": "SPY"},
    "Time Series (Daily)": {
        "2025-04-28": {"1. open": "551.39", "4. close": "550.85", "5. adjusted close": "550.85", "6. volume": "47613800"},
        "2025-04-25": {"1. open": "546.65", "4. close": "550.64", "5. adjusted close": "550.64", "6. volume": "61119600"},
        "2025-04-24": {"1. open": "533.76", "4. close": "546.69", "5. adjusted close": 546.69, "6. volume": "64150400"},
        "2025-04-23": {"1. open": "534.00", "4. close": "535.42", "5. adjusted close": "n/a"},
        "garbage":    {"5. adjusted close": "1"}
    }
}`

func server(t *testing.T, body func(r *http.Request) (int, string)) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		status, b := body(r)
		w.WriteHeader(status)
		fmt.Fprint(w, b)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newClient(base string, ttl time.Duration, t *testing.T) *Client {
	return New(Options{APIKey: "demo", BaseURL: base, RequestsPerMinute: 6000, CacheTTL: ttl, CacheDir: t.TempDir()})
}

func TestDailyAdjusted(t *testing.T) {
	srv, _ := server(t, func(r *http.Request) (int, string) {
		q := r.URL.Query()
		assert.Equal(t, "TIME_SERIES_DAILY_ADJUSTED", q.Get("function"))
		assert.Equal(t, "SPY", q.Get("symbol"))
		assert.Equal(t, "full", q.Get("outputsize"))
		assert.Equal(t, "demo", q.Get("apikey"))
		return http.StatusOK, fixture
	})
	h, err := newClient(srv.URL, 0, t).DailyAdjusted(context.Background(), "SPY")
	require.NoError(t, err)
	assert.Equal(t, 3, h.Len())

	v, ok := h.Get(date.New(2025, 4, 24))
	assert.True(t, ok)
	assert.Equal(t, 546.69, v)

	// A Saturday resolves to the Friday before.
	d, v, ok := h.Nearest(date.New(2025, 4, 26), date.Backward, 0)
	assert.True(t, ok)
	assert.Equal(t, date.New(2025, 4, 25), d)
	assert.Equal(t, 550.64, v)
}

func TestDailyAdjusted_Cache(t *testing.T) {
	srv, hits := server(t, func(r *http.Request) (int, string) { return http.StatusOK, fixture })
	c := newClient(srv.URL, time.Minute, t)
	for range 3 {
		_, err := c.DailyAdjusted(context.Background(), "SPY")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestDailyAdjusted_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http", http.StatusInternalServerError, "oops"},
		{"note", http.StatusOK, `{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute"}`},
		{"error message", http.StatusOK, `{"Error Message": "Invalid API call."}`},
		{"information", http.StatusOK, `{"Information": "This is a premium endpoint."}`},
		{"not json", http.StatusOK, `<html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, hits := server(t, func(r *http.Request) (int, string) { return tt.status, tt.body })
			c := newClient(srv.URL, time.Minute, t)
			for range 2 {
				_, err := c.DailyAdjusted(context.Background(), "SPY")
				assert.ErrorIs(t, err, whatif.ErrProvider)
			}
			assert.Equal(t, int32(2), hits.Load(), "failures are not cached")
		})
	}
}

func TestDailyAdjusted_MissingKey(t *testing.T) {
	_, err := New(Options{}).DailyAdjusted(context.Background(), "SPY")
	assert.ErrorIs(t, err, whatif.ErrProvider)
	assert.ErrorIs(t, err, whatif.ErrNotConfigured)
}
