package whatif

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/etnz/whatif/date"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEquity struct {
	series *date.History[float64]
	err    error
	calls  atomic.Int32
}

func (f *fakeEquity) DailyAdjusted(ctx context.Context, symbol string) (*date.History[float64], error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.series, nil
}

type fakeCrypto struct {
	prices map[date.Date]float64
	err    error
	calls  atomic.Int32
}

func (f *fakeCrypto) PriceOn(ctx context.Context, coinID string, day date.Date) (float64, error) {
	f.calls.Add(1)
	if f.err != nil {
		return 0, f.err
	}
	p, ok := f.prices[day]
	if !ok {
		return 0, fmt.Errorf("%w: no sample for %s", ErrProvider, day)
	}
	return p, nil
}

type blockingEquity struct{}

func (blockingEquity) DailyAdjusted(ctx context.Context, symbol string) (*date.History[float64], error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// tradingDays returns a weekday-only series from start for n calendar days,
// the price grows by one each trading day.
func tradingDays(start date.Date, n int) *date.History[float64] {
	h := new(date.History[float64])
	price := 100.0
	for i := range n {
		d := start.Add(i)
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		h.Append(d, price)
		price++
	}
	return h
}

func TestResolver_Disabled(t *testing.T) {
	eq := &fakeEquity{series: tradingDays(date.New(2025, 1, 1), 200)}
	cr := &fakeCrypto{}
	r := NewResolver(nil, ResolverConfig{Equity: eq, Crypto: cr})

	from, to := date.New(2025, 1, 15), date.New(2025, 4, 28)
	for _, s := range Scenarios() {
		res := r.Resolve(context.Background(), s, from, to)
		assert.True(t, res.OK, s)
		assert.Equal(t, SourceCompound, res.Source, s)
		assert.Equal(t, r.Model().CompoundMultiplier(s, from, to), res.Value, s)
	}
	assert.Zero(t, eq.calls.Load(), "equity provider must not be called")
	assert.Zero(t, cr.calls.Load(), "crypto provider must not be called")

	_, err := r.Quote(context.Background(), SP500, from, to)
	assert.ErrorIs(t, err, ErrRealDataDisabled)
}

func TestResolver_DisabledOscillating(t *testing.T) {
	r := NewResolver(nil, ResolverConfig{Oscillating: true})
	from, to := date.New(2025, 1, 15), date.New(2025, 4, 28)
	res := r.Resolve(context.Background(), BTC, from, to)
	assert.True(t, res.OK)
	assert.Equal(t, SourceIndex, res.Source)
	assert.Equal(t, r.Model().Multiplier(BTC, from, to), res.Value)
}

func TestResolver_Equity(t *testing.T) {
	eq := &fakeEquity{series: tradingDays(date.New(2025, 1, 1), 200)}
	r := NewResolver(nil, ResolverConfig{RealData: true, Equity: eq})

	// Saturday and Sunday resolve backward to the previous Friday.
	from, to := date.New(2025, 4, 26), date.New(2025, 4, 27)
	q, err := r.Quote(context.Background(), SP500, from, to)
	require.NoError(t, err)
	assert.Equal(t, date.New(2025, 4, 25), q.From)
	assert.Equal(t, date.New(2025, 4, 25), q.To)
	assert.Equal(t, 1.0, q.Multiplier)
	assert.Equal(t, "SPY", q.Symbol)
	assert.Equal(t, SourceEquity, q.Source)

	from, to = date.New(2025, 1, 1), date.New(2025, 1, 8)
	p0, _ := eq.series.Get(from)
	p1, _ := eq.series.Get(to)
	res := r.Resolve(context.Background(), MSCI, from, to)
	assert.True(t, res.OK)
	assert.Equal(t, "URTH", res.Symbol)
	assert.InDelta(t, p1/p0, res.Value, 1e-12)
}

func TestResolver_EquityForward(t *testing.T) {
	eq := &fakeEquity{series: tradingDays(date.New(2025, 1, 1), 200)}
	r := NewResolver(nil, ResolverConfig{RealData: true, Equity: eq, Direction: date.Forward})
	q, err := r.Quote(context.Background(), SP500, date.New(2025, 4, 26), date.New(2025, 4, 28))
	require.NoError(t, err)
	assert.Equal(t, date.New(2025, 4, 28), q.From)
	assert.Equal(t, 1.0, q.Multiplier)
}

func TestResolver_EquityDataUnavailable(t *testing.T) {
	eq := &fakeEquity{series: tradingDays(date.New(2025, 1, 1), 200)}
	r := NewResolver(nil, ResolverConfig{RealData: true, Equity: eq})

	// Before the first price there is nothing to walk back to.
	from, to := date.New(2024, 6, 1), date.New(2025, 3, 3)
	_, err := r.Quote(context.Background(), SP500, from, to)
	assert.ErrorIs(t, err, ErrDataUnavailable)
	latest, _ := eq.series.Latest()
	assert.ErrorContains(t, err, "latest on "+latest.String())

	empty := NewResolver(nil, ResolverConfig{RealData: true, Equity: &fakeEquity{series: new(date.History[float64])}})
	_, err = empty.Quote(context.Background(), SP500, from, to)
	assert.ErrorContains(t, err, "no prices")

	res := r.Resolve(context.Background(), SP500, from, to)
	assert.False(t, res.OK)
	assert.ErrorIs(t, res.Reason, ErrDataUnavailable)
	assert.Equal(t, r.Model().CompoundMultiplier(SP500, from, to), res.Value)

	bad := new(date.History[float64]).Append(from, 0).Append(to, 10)
	r = NewResolver(nil, ResolverConfig{RealData: true, Equity: &fakeEquity{series: bad}})
	_, err = r.Quote(context.Background(), SP500, from, to)
	assert.ErrorIs(t, err, ErrDataUnavailable)
}

func TestResolver_Crypto(t *testing.T) {
	from, to := date.New(2024, 1, 1), date.New(2025, 1, 1)
	cr := &fakeCrypto{prices: map[date.Date]float64{from: 40000, to: 90000}}
	r := NewResolver(nil, ResolverConfig{RealData: true, Crypto: cr})

	q, err := r.Quote(context.Background(), BTC, from, to)
	require.NoError(t, err)
	assert.InDelta(t, 2.25, q.Multiplier, 1e-12)
	assert.Equal(t, "bitcoin", q.Symbol)
	assert.Equal(t, int32(2), cr.calls.Load())

	cr.prices[to] = -1
	_, err = r.Quote(context.Background(), BTC, from, to)
	assert.ErrorIs(t, err, ErrUpstream)
}

// TestResolver_FallbackEqualsModel simulates providers that always fail: the
// resolved multiplier is the deterministic one.
func TestResolver_FallbackEqualsModel(t *testing.T) {
	for _, oscillating := range []bool{false, true} {
		r := NewResolver(nil, ResolverConfig{
			RealData:    true,
			Equity:      &fakeEquity{err: fmt.Errorf("%w: HTTP 500", ErrProvider)},
			Crypto:      &fakeCrypto{err: errors.New("connection refused")},
			Oscillating: oscillating,
		})
		want := r.Model().CompoundMultiplier
		if oscillating {
			want = r.Model().Multiplier
		}
		for _, s := range Scenarios() {
			for _, pair := range [][2]string{{"2025-01-15", "2025-04-28"}, {"2020-03-01", "2024-12-31"}, {"2025-02-02", "2025-02-02"}} {
				from, to := date.MustParse(pair[0]), date.MustParse(pair[1])
				res := r.Resolve(context.Background(), s, from, to)
				assert.False(t, res.OK, "%s %v", s, pair)
				assert.Error(t, res.Reason)
				assert.Equal(t, want(s, from, to), res.Value, "%s %v", s, pair)
				assert.Equal(t, res.Value, r.Multiplier(context.Background(), s, from, to))
			}
		}
	}
}

func TestResolver_Timeout(t *testing.T) {
	r := NewResolver(nil, ResolverConfig{RealData: true, Equity: blockingEquity{}, Timeout: 10 * time.Millisecond})
	from, to := date.New(2025, 1, 15), date.New(2025, 4, 28)

	start := time.Now()
	res := r.Resolve(context.Background(), SP500, from, to)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.False(t, res.OK)
	assert.ErrorIs(t, res.Reason, context.DeadlineExceeded)
	assert.ErrorIs(t, res.Reason, ErrUpstream)
	assert.Equal(t, r.Model().CompoundMultiplier(SP500, from, to), res.Value)
}

func TestResolver_Metrics(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	r := NewResolver(nil, ResolverConfig{
		RealData: true,
		Equity:   &fakeEquity{err: fmt.Errorf("%w: HTTP 503", ErrProvider)},
		Metrics:  m,
	})
	from, to := date.New(2025, 1, 15), date.New(2025, 4, 28)
	r.Resolve(context.Background(), SP500, from, to)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Resolutions.WithLabelValues("sp500", "compound", "fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProviderRequests.WithLabelValues("alphavantage", "error")))
}
