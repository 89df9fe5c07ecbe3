package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/whatif"
	"github.com/etnz/whatif/date"
	"github.com/google/subcommands"
)

type multiplierCmd struct {
	scenario    string
	strict      bool
	oscillating bool
}

func (*multiplierCmd) Name() string     { return "multiplier" }
func (*multiplierCmd) Synopsis() string { return "show the growth of a scenario between two days" }
func (*multiplierCmd) Usage() string {
	return `mm multiplier [-scenario <s>] [-strict] [-oscillating] <from> [<to>]

  Shows what one unit invested in the scenario on <from> is worth on <to>,
  the session as-of date by default, and where the figure comes from.
  With -strict, real market data is required and failures are reported
  instead of falling back to the deterministic model.
`
}

func (c *multiplierCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.scenario, "scenario", "", "Scenario: sp500, msci or btc, defaults to the session one")
	f.BoolVar(&c.strict, "strict", false, "Fail instead of falling back to the deterministic model")
	f.BoolVar(&c.oscillating, "oscillating", false, "Use the oscillating index model for the fallback")
}

func (c *multiplierCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 1 || f.NArg() > 2 {
		fmt.Fprintln(os.Stderr, "Error: multiplier expects a from date and an optional to date")
		return subcommands.ExitUsageError
	}
	from, err := parseDay(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	var to date.Date
	if f.NArg() == 2 {
		if to, err = parseDay(f.Arg(1)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	a, status := start()
	if a == nil {
		return status
	}
	defer a.Close()

	var sc whatif.Scenario
	if c.scenario != "" {
		if sc, err = whatif.ParseScenario(c.scenario); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	if sc == "" || to.IsZero() {
		s, err := a.session(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		if sc == "" {
			sc = s.Scenario
		}
		if to.IsZero() {
			to = s.AsOf
		}
	}

	res := a.resolver(nil, c.oscillating)
	if c.strict {
		q, err := res.Quote(ctx, sc, from, to)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("%s from %s to %s: x%.6f (%s %s)\n", sc.Label(), q.From, q.To, q.Multiplier, q.Source, q.Symbol)
		return subcommands.ExitSuccess
	}

	r := res.Resolve(ctx, sc, from, to)
	if r.Symbol != "" {
		fmt.Printf("%s from %s to %s: x%.6f (%s %s)\n", sc.Label(), r.From, r.To, r.Value, r.Source, r.Symbol)
	} else {
		fmt.Printf("%s from %s to %s: x%.6f (%s)\n", sc.Label(), r.From, r.To, r.Value, r.Source)
	}
	if !r.OK && res.RealData() {
		fmt.Fprintf(os.Stderr, "Warning: real data unavailable: %v\n", r.Reason)
	}
	return subcommands.ExitSuccess
}
