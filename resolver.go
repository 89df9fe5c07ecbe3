package whatif

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/etnz/whatif/date"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// EquityProvider returns the full daily adjusted close history of a ticker.
type EquityProvider interface {
	DailyAdjusted(ctx context.Context, symbol string) (*date.History[float64], error)
}

// CryptoProvider returns the price of a coin on a given day.
type CryptoProvider interface {
	PriceOn(ctx context.Context, coinID string, day date.Date) (float64, error)
}

// Source tells where a multiplier comes from.
type Source string

const (
	SourceIndex    Source = "index"
	SourceCompound Source = "compound"
	SourceEquity   Source = "alphavantage"
	SourceCrypto   Source = "coingecko"
)

// Quote is a multiplier computed from real market data.
type Quote struct {
	Multiplier float64   `json:"multiplier"`
	Source     Source    `json:"source"`
	Symbol     string    `json:"symbol,omitempty"`
	From       date.Date `json:"from"` // day actually priced, may differ from the requested one
	To         date.Date `json:"to"`
}

// Result is the outcome of a resolution.
//
// When OK is false, Reason explains why real data could not be used and Value
// holds the deterministic fallback.
type Result struct {
	OK     bool
	Value  float64
	Source Source
	Symbol string
	From   date.Date
	To     date.Date
	Reason error
}

// MultiplierFunc returns the growth of a scenario between two days.
type MultiplierFunc func(s Scenario, from, to date.Date) float64

// ResolverConfig configures a Resolver. The zero value resolves with the model only.
type ResolverConfig struct {
	RealData    bool           // enables network calls
	Equity      EquityProvider // required for sp500 and msci when RealData is set
	Crypto      CryptoProvider // required for btc when RealData is set
	Symbols     Symbols        // nil means DefaultSymbols
	Direction   date.Direction // nearest date search direction, zero means backward
	Timeout     time.Duration  // per provider call, zero means 10s
	Oscillating bool           // use the oscillating price index instead of the compound formula
	Metrics     *Metrics
	Logger      *zap.Logger
}

// Resolver picks between real market data and the deterministic model.
//
// It has no mutable state of its own besides the circuit breakers, and is safe
// for concurrent use.
type Resolver struct {
	model       *Model
	realData    bool
	equity      EquityProvider
	crypto      CryptoProvider
	symbols     Symbols
	direction   date.Direction
	timeout     time.Duration
	oscillating bool
	metrics     *Metrics
	logger      *zap.Logger
	tracer      trace.Tracer

	equityBreaker *gobreaker.CircuitBreaker
	cryptoBreaker *gobreaker.CircuitBreaker
}

const defaultTimeout = 10 * time.Second

// NewResolver returns a resolver using model for the deterministic path.
func NewResolver(model *Model, cfg ResolverConfig) *Resolver {
	if model == nil {
		model = DefaultModel()
	}
	if cfg.Symbols == nil {
		cfg.Symbols = DefaultSymbols()
	}
	if cfg.Direction == 0 {
		cfg.Direction = date.Backward
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Resolver{
		model:         model,
		realData:      cfg.RealData,
		equity:        cfg.Equity,
		crypto:        cfg.Crypto,
		symbols:       cfg.Symbols,
		direction:     cfg.Direction,
		timeout:       cfg.Timeout,
		oscillating:   cfg.Oscillating,
		metrics:       cfg.Metrics,
		logger:        cfg.Logger,
		tracer:        otel.Tracer("github.com/etnz/whatif"),
		equityBreaker: newBreaker(string(SourceEquity)),
		cryptoBreaker: newBreaker(string(SourceCrypto)),
	}
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
	})
}

// RealData reports whether network calls are enabled.
func (r *Resolver) RealData() bool { return r.realData }

// Model returns the deterministic model.
func (r *Resolver) Model() *Model { return r.model }

// Multiplier always returns a multiplier: real data when possible, the
// deterministic fallback otherwise.
func (r *Resolver) Multiplier(ctx context.Context, s Scenario, from, to date.Date) float64 {
	return r.Resolve(ctx, s, from, to).Value
}

// Func binds Multiplier to ctx.
func (r *Resolver) Func(ctx context.Context) MultiplierFunc {
	return func(s Scenario, from, to date.Date) float64 { return r.Multiplier(ctx, s, from, to) }
}

// Resolve computes the multiplier of s between from and to. It never fails:
// any real-data failure is reported in Result.Reason and replaced by the
// deterministic model, the compound formula unless Oscillating is set.
func (r *Resolver) Resolve(ctx context.Context, s Scenario, from, to date.Date) Result {
	ctx, span := r.tracer.Start(ctx, "whatif.resolve", trace.WithAttributes(
		attribute.String("scenario", string(s)),
		attribute.String("from", from.String()),
		attribute.String("to", to.String()),
		attribute.Bool("real_data", r.realData),
	))
	defer span.End()

	if !r.realData {
		v, src, err := r.deterministic(s, from, to)
		r.metrics.resolved(s, src, err == nil)
		return Result{OK: err == nil, Value: v, Source: src, From: from, To: to, Reason: err}
	}

	q, err := r.Quote(ctx, s, from, to)
	if err == nil {
		r.metrics.resolved(s, q.Source, true)
		return Result{OK: true, Value: q.Multiplier, Source: q.Source, Symbol: q.Symbol, From: q.From, To: q.To}
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, "fallback")
	v, src, ferr := r.deterministic(s, from, to)
	r.logger.Warn("real data unavailable, using deterministic model",
		zap.String("scenario", string(s)),
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.String("fallback", string(src)),
		zap.Error(err),
	)
	r.metrics.resolved(s, src, false)
	return Result{OK: false, Value: v, Source: src, From: from, To: to, Reason: errors.Join(err, ferr)}
}

// deterministic computes the fallback multiplier, trying the configured
// formula first and the other one if the result is not representable.
//
// If neither is representable it returns 1 and ErrComputation.
func (r *Resolver) deterministic(s Scenario, from, to date.Date) (float64, Source, error) {
	type formula struct {
		src Source
		f   func(Scenario, date.Date, date.Date) float64
	}
	chain := []formula{{SourceCompound, r.model.CompoundMultiplier}, {SourceIndex, r.model.Multiplier}}
	if r.oscillating {
		chain[0], chain[1] = chain[1], chain[0]
	}
	var err error
	for _, c := range chain {
		v := c.f(s, from, to)
		if err = checkMultiplier(v); err == nil {
			return v, c.src, nil
		}
	}
	return 1, chain[0].src, fmt.Errorf("scenario %s from %s to %s: %w", s, from, to, err)
}

// Quote computes the multiplier from real market data only, it surfaces every
// failure: ErrRealDataDisabled, ErrUpstream, ErrProvider, ErrDataUnavailable
// or ErrComputation. ErrNotConfigured is also set when a provider or its key is
// missing.
func (r *Resolver) Quote(ctx context.Context, s Scenario, from, to date.Date) (Quote, error) {
	if !r.realData {
		return Quote{}, ErrRealDataDisabled
	}
	if s.IsCrypto() {
		return r.cryptoQuote(ctx, s, from, to)
	}
	return r.equityQuote(ctx, s, from, to)
}

func (r *Resolver) cryptoQuote(ctx context.Context, s Scenario, from, to date.Date) (Quote, error) {
	coin := r.symbols[s]
	if coin == "" {
		return Quote{}, fmt.Errorf("%w: no coin id configured for scenario %s", ErrUpstream, s)
	}
	if r.crypto == nil {
		return Quote{}, fmt.Errorf("%w: %w: no crypto provider", ErrUpstream, ErrNotConfigured)
	}

	// Both days are independent.
	var p0, p1 float64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		p0, err = r.cryptoPrice(gctx, coin, from)
		return err
	})
	g.Go(func() (err error) {
		p1, err = r.cryptoPrice(gctx, coin, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return Quote{}, fmt.Errorf("%w: %s: %w", ErrUpstream, coin, err)
	}
	if !positive(p0) || !positive(p1) {
		return Quote{}, fmt.Errorf("%w: invalid %s prices %v and %v", ErrUpstream, coin, p0, p1)
	}
	m := p1 / p0
	if err := checkMultiplier(m); err != nil {
		return Quote{}, err
	}
	return Quote{Multiplier: m, Source: SourceCrypto, Symbol: coin, From: from, To: to}, nil
}

func (r *Resolver) cryptoPrice(ctx context.Context, coin string, day date.Date) (float64, error) {
	v, err := r.call(ctx, r.cryptoBreaker, func(ctx context.Context) (any, error) {
		return r.crypto.PriceOn(ctx, coin, day)
	})
	if err != nil {
		return 0, err
	}
	return v.(float64), nil
}

func (r *Resolver) equityQuote(ctx context.Context, s Scenario, from, to date.Date) (Quote, error) {
	symbol := r.symbols[s]
	if symbol == "" {
		return Quote{}, fmt.Errorf("%w: no symbol configured for scenario %s", ErrDataUnavailable, s)
	}
	if r.equity == nil {
		return Quote{}, fmt.Errorf("%w: %w: no equity provider", ErrUpstream, ErrNotConfigured)
	}
	v, err := r.call(ctx, r.equityBreaker, func(ctx context.Context) (any, error) {
		return r.equity.DailyAdjusted(ctx, symbol)
	})
	if err != nil {
		if !errors.Is(err, ErrProvider) {
			err = fmt.Errorf("%w: %w", ErrUpstream, err)
		}
		return Quote{}, fmt.Errorf("%s: %w", symbol, err)
	}
	series := v.(*date.History[float64])

	d0, p0, ok0 := series.Nearest(from, r.direction, date.SearchWindow)
	d1, p1, ok1 := series.Nearest(to, r.direction, date.SearchWindow)
	if !ok0 || !ok1 {
		known := "no prices"
		if latest, _ := series.Latest(); !latest.IsZero() {
			known = "latest on " + latest.String()
		}
		return Quote{}, fmt.Errorf("%w: no %s price near %s or %s, %s", ErrDataUnavailable, symbol, from, to, known)
	}
	if !positive(p0) || !positive(p1) {
		return Quote{}, fmt.Errorf("%w: invalid %s prices %v on %s and %v on %s", ErrDataUnavailable, symbol, p0, d0, p1, d1)
	}
	m := p1 / p0
	if err := checkMultiplier(m); err != nil {
		return Quote{}, err
	}
	return Quote{Multiplier: m, Source: SourceEquity, Symbol: symbol, From: d0, To: d1}, nil
}

// call runs a provider call under the resolver timeout and the provider breaker.
func (r *Resolver) call(ctx context.Context, cb *gobreaker.CircuitBreaker, f func(context.Context) (any, error)) (any, error) {
	ctx, span := r.tracer.Start(ctx, "whatif.provider", trace.WithAttributes(attribute.String("provider", cb.Name())))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	v, err := cb.Execute(func() (any, error) { return f(ctx) })
	r.metrics.provider(cb.Name(), start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return v, err
}

func positive(v float64) bool { return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v) }
