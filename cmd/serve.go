package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/etnz/whatif"
	"github.com/etnz/whatif/server"
	"github.com/google/subcommands"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

type serveCmd struct {
	addr        string
	oscillating bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the what-if API over HTTP" }
func (*serveCmd) Usage() string {
	return `mm serve [-addr <host:port>]

  Serves:
    GET  /api/mm/multiplier?scenario=&from=&to=
    GET  /api/mm/openfigi?q=
    POST /api/mm/compute
    GET  /metrics
    GET  /healthz
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Listen address, overrides server.addr")
	f.BoolVar(&c.oscillating, "oscillating", false, "Use the oscillating index model for the fallback")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, status := start()
	if a == nil {
		return status
	}
	defer a.Close()

	addr := a.cfg.Server.Addr
	if c.addr != "" {
		addr = c.addr
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	srv := server.New(server.Options{
		Resolver: a.resolver(whatif.NewMetrics(reg), c.oscillating),
		Searcher: a.searcher(),
		Gatherer: reg,
		Currency: a.cfg.Currency,
		Logger:   a.logger,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.logger.Info("serving", zap.String("addr", addr), zap.Bool("real_data", a.cfg.UseRealData))
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
