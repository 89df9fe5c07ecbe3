package openfigi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/etnz/whatif"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsISIN(t *testing.T) {
	tests := []struct {
		q    string
		want bool
	}{
		{"US78462F1030", true},
		{"ie00b4l5y983", true},
		{" IE00B4L5Y983 ", true},
		{"US78462F103X", false}, // check digit must be a digit
		{"1S78462F1030", false},
		{"US78462F103", false},
		{"SPY", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsISIN(tt.q); got != tt.want {
			t.Errorf("IsISIN(%q) = %v want %v", tt.q, got, tt.want)
		}
	}
}

func TestDedupe(t *testing.T) {
	var hits []Hit
	for i := range 20 {
		hits = append(hits, Hit{Ticker: fmt.Sprintf("T%d", i%15), ExchCode: "US"})
	}
	got := dedupe(hits, MaxResults)
	assert.Len(t, got, MaxResults)
	assert.Equal(t, "T0", got[0].Ticker)
	assert.Equal(t, "T11", got[11].Ticker)

	same := []Hit{{Ticker: "SPY", MICCode: "ARCX", Name: "a"}, {Ticker: "SPY", MICCode: "ARCX", Name: "b"}, {Ticker: "SPY", MICCode: "XNYS"}}
	got = dedupe(same, MaxResults)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Name, "first one wins")
}

type capture struct {
	path, key string
	body      any
}

func server(t *testing.T, reply func(path string) string) (*httptest.Server, *atomic.Int32, chan capture) {
	t.Helper()
	var hits atomic.Int32
	calls := make(chan capture, 10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		b, _ := io.ReadAll(r.Body)
		var body any
		json.Unmarshal(b, &body)
		calls <- capture{path: r.URL.Path, key: r.Header.Get("X-OPENFIGI-APIKEY"), body: body}
		if strings.HasPrefix(r.URL.Path, "/fail") {
			http.Error(w, "bad", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, reply(r.URL.Path))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits, calls
}

func TestSearch_Text(t *testing.T) {
	srv, hits, calls := server(t, func(string) string {
		return `{"data":[
			{"figi":"BBG000BDTBL9","name":"SPDR S&P 500 ETF TRUST","ticker":"SPY","exchCode":"US","securityType":"ETP","compositeFIGI":"BBG000BDTBL9","shareClassFIGI":"BBG001S72SM3"},
			{"figi":"BBG000BDTF76","name":"SPDR S&P 500 ETF TRUST","ticker":"SPY","exchCode":"US","securityType":"ETP","compositeFIGI":"BBG000BDTBL9","shareClassFIGI":"BBG001S72SM3"},
			{"figi":"BBG000BDTCY1","name":"SPDR S&P 500 ETF TRUST","ticker":"SPY","exchCode":"UP","micCode":"ARCX","securityType":"ETP"}
		],"next":"QW"}`
	})
	c := New(Options{BaseURL: srv.URL, APIKey: "key", CacheTTL: time.Minute})
	got, err := c.Search(context.Background(), " spdr s&p ")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, Hit{Name: "SPDR S&P 500 ETF TRUST", Ticker: "SPY", ExchCode: "US", SecurityType: "ETP", CompositeFIGI: "BBG000BDTBL9", ShareClassFIGI: "BBG001S72SM3"}, got[0])
	assert.Equal(t, "ARCX", got[1].MICCode)

	call := <-calls
	assert.Equal(t, "/search", call.path)
	assert.Equal(t, "key", call.key)
	assert.Equal(t, map[string]any{"query": "spdr s&p", "limit": float64(15)}, call.body)

	_, err = c.Search(context.Background(), "spdr s&p")
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load(), "cached")
}

func TestSearch_ISIN(t *testing.T) {
	srv, _, calls := server(t, func(string) string {
		return `[{"data":[{"name":"ISHARES CORE MSCI WORLD","ticker":"EUNL","exchCode":"GY","micCode":"XETR","securityType":"ETP"}]},{"warning":"No identifier found."}]`
	})
	got, err := New(Options{BaseURL: srv.URL}).Search(context.Background(), "IE00B4L5Y983")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "EUNL", got[0].Ticker)
	assert.Equal(t, "IE00B4L5Y983", got[0].ISIN)

	call := <-calls
	assert.Equal(t, "/mapping", call.path)
	assert.Equal(t, []any{map[string]any{"idType": "ID_ISIN", "idValue": "IE00B4L5Y983"}}, call.body)
	assert.Empty(t, call.key)
}

func TestSearch_Errors(t *testing.T) {
	_, err := New(Options{}).Search(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyQuery)

	srv, _, _ := server(t, func(string) string { return `{"error":"Invalid query."}` })
	_, err = New(Options{BaseURL: srv.URL}).Search(context.Background(), "x")
	assert.ErrorIs(t, err, whatif.ErrProvider)

	_, err = New(Options{BaseURL: srv.URL + "/fail"}).Search(context.Background(), "x")
	assert.ErrorIs(t, err, whatif.ErrProvider)
}
