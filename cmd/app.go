// Package cmd implements the mm command-line application: edit a list of
// past spending and value it under a what-if scenario.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/whatif"
	"github.com/etnz/whatif/alphavantage"
	"github.com/etnz/whatif/coingecko"
	"github.com/etnz/whatif/config"
	"github.com/etnz/whatif/openfigi"
	"github.com/etnz/whatif/store"
	"github.com/google/subcommands"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// Commands lists the mm subcommands, main registers them with their group.
var Commands = []struct {
	Command subcommands.Command
	Group   string
}{
	{&importCmd{}, "transactions"},
	{&addCmd{}, "transactions"},
	{&removeCmd{}, "transactions"},
	{&clearCmd{}, "transactions"},
	{&setCmd{}, "transactions"},

	{&listCmd{}, "reports"},
	{&timelineCmd{}, "reports"},
	{&chartCmd{}, "reports"},
	{&exportCmd{}, "reports"},

	{&multiplierCmd{}, "market data"},
	{&searchCmd{}, "market data"},

	{&serveCmd{}, "server"},
	{&topicCmd{}, "help"},
	{&assistCmd{}, "help"},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "", "Path to the mm.yaml configuration file")
var stateDir = flag.String("state-dir", "", "Directory of the session state, overrides state_dir")
var realData = flag.Bool("real", false, "Use real market data, overrides use_real_data")
var Verbose = flag.Bool("v", false, "Verbose logging")

// isFlagSet reports whether the global flag name was set on the command line.
func isFlagSet(name string) (set bool) {
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return
}

// app holds the resources shared by the subcommands.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	kv     whatif.KV
	close  func() error
}

// newApp loads the configuration and applies the global flags to it.
func newApp() (*app, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	if *stateDir != "" {
		cfg.StateDir = *stateDir
	}
	if isFlagSet("real") {
		cfg.UseRealData = *realData
	}
	level := cfg.LogLevel
	if *Verbose {
		level = "debug"
	}
	logger, err := config.NewLogger(level)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, close: func() error { return nil }}, nil
}

// Close releases the session store and flushes the logs.
func (a *app) Close() {
	if err := a.close(); err != nil {
		a.logger.Warn("closing session store", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// store opens the session store: Redis when configured, a directory otherwise.
func (a *app) store(ctx context.Context) (*whatif.SessionStore, error) {
	if a.kv == nil {
		if addr := a.cfg.Redis.Addr; addr != "" {
			r, err := store.NewRedis(ctx, store.RedisOptions{
				Addr:     addr,
				Password: a.cfg.Redis.Password,
				DB:       a.cfg.Redis.DB,
			})
			if err != nil {
				return nil, err
			}
			a.kv, a.close = r, r.Close
		} else {
			a.kv = store.NewDir(a.cfg.StateDir)
		}
	}
	return whatif.NewSessionStore(a.kv, a.cfg.Namespace, a.logger), nil
}

// session loads the user session.
func (a *app) session(ctx context.Context) (*whatif.Session, error) {
	st, err := a.store(ctx)
	if err != nil {
		return nil, err
	}
	return whatif.OpenSession(ctx, st)
}

// resolver returns a resolver wired to the market data providers.
func (a *app) resolver(metrics *whatif.Metrics, oscillating bool) *whatif.Resolver {
	cfg := whatif.ResolverConfig{
		RealData:    a.cfg.UseRealData,
		Symbols:     a.cfg.Symbols.Scenarios(),
		Timeout:     a.cfg.Provider.Timeout,
		Oscillating: oscillating,
		Metrics:     metrics,
		Logger:      a.logger,
	}
	if cfg.RealData {
		p := a.cfg.Provider
		cfg.Equity = alphavantage.New(alphavantage.Options{
			APIKey:            a.cfg.AlphaVantage.APIKey,
			BaseURL:           a.cfg.AlphaVantage.BaseURL,
			RequestsPerMinute: a.cfg.AlphaVantage.RequestsPerMinute,
			CacheTTL:          p.CacheTTL,
			CacheDir:          p.CacheDir,
			Logger:            a.logger.Named("alphavantage"),
		})
		cfg.Crypto = coingecko.New(coingecko.Options{
			APIKey:   a.cfg.CoinGecko.APIKey,
			BaseURL:  a.cfg.CoinGecko.BaseURL,
			Currency: a.cfg.CoinGecko.Currency,
			CacheTTL: p.CacheTTL,
			CacheDir: p.CacheDir,
			Logger:   a.logger.Named("coingecko"),
		})
	}
	return whatif.NewResolver(nil, cfg)
}

func (a *app) searcher() *openfigi.Client {
	return openfigi.New(openfigi.Options{
		APIKey:   a.cfg.OpenFIGI.APIKey,
		BaseURL:  a.cfg.OpenFIGI.BaseURL,
		CacheTTL: a.cfg.Provider.CacheTTL,
		Logger:   a.logger.Named("openfigi"),
	})
}

// start is the common prologue of the subcommands.
func start() (*app, subcommands.ExitStatus) {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, subcommands.ExitFailure
	}
	return a, subcommands.ExitSuccess
}

// printMarkdown prints md styled for the terminal, or as is when stdout is
// not a terminal.
func printMarkdown(md string) {
	fmt.Print(renderMarkdown(md))
}

func renderMarkdown(md string) string {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return md
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
