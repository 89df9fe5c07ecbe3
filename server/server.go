// Package server exposes the valuation engine over HTTP.
//
// Routes:
//
//	GET  /api/mm/multiplier?scenario=&from=&to=  real data multiplier between two days
//	GET  /api/mm/openfigi?q=                     instrument search by name, ticker or ISIN
//	POST /api/mm/compute                          values a list of transactions
//	GET  /metrics                                 prometheus metrics
//	GET  /healthz                                 liveness
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/etnz/whatif"
	"github.com/etnz/whatif/openfigi"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Searcher looks up instruments.
type Searcher interface {
	Search(ctx context.Context, q string) ([]openfigi.Hit, error)
}

// Options configures a Server.
type Options struct {
	Resolver *whatif.Resolver    // required
	Searcher Searcher            // nil disables /api/mm/openfigi
	Gatherer prometheus.Gatherer // nil means prometheus.DefaultGatherer
	Currency string
	Logger   *zap.Logger
}

// Server is the HTTP API.
type Server struct {
	resolver *whatif.Resolver
	searcher Searcher
	currency string
	logger   *zap.Logger
	engine   *gin.Engine
}

// New builds the server and its routes.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.Currency == "" {
		opts.Currency = whatif.DefaultCurrency
	}
	s := &Server{
		resolver: opts.Resolver,
		searcher: opts.Searcher,
		currency: opts.Currency,
		logger:   opts.Logger,
	}

	r := gin.New()
	r.Use(requestID(), accessLog(s.logger), recovery(s.logger))

	api := r.Group("/api/mm")
	api.GET("/multiplier", s.multiplier)
	api.GET("/openfigi", s.openfigi)
	api.POST("/compute", s.compute)

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "real_data": s.resolver.RealData()})
	})
	s.engine = r
	return s
}

// Handler returns the http.Handler of the server.
func (s *Server) Handler() http.Handler { return s.engine }

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
