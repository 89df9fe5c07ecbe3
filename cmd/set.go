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

type setCmd struct {
	scenario string
	asOf     string
}

func (*setCmd) Name() string     { return "set" }
func (*setCmd) Synopsis() string { return "select the scenario and the as-of date" }
func (*setCmd) Usage() string {
	return `mm set [-scenario <sp500|msci|btc>] [-asof <date>]

  Saves the scenario and the valuation date of the session. Without flags,
  shows them.
`
}

func (c *setCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.scenario, "scenario", "", "Scenario: sp500, msci or btc")
	f.StringVar(&c.asOf, "asof", "", "Valuation date YYYY-MM-DD, or 'today'")
}

func (c *setCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "Error: set takes no arguments, use -scenario or -asof")
		return subcommands.ExitUsageError
	}
	var sc whatif.Scenario
	if c.scenario != "" {
		var err error
		if sc, err = whatif.ParseScenario(c.scenario); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	var asOf date.Date
	if c.asOf != "" {
		var err error
		if asOf, err = parseDay(c.asOf); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	a, status := start()
	if a == nil {
		return status
	}
	defer a.Close()

	s, err := a.session(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if sc != "" {
		if err := s.SetScenario(ctx, sc); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	if !asOf.IsZero() {
		if err := s.SetAsOf(ctx, asOf); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	fmt.Printf("%s (%s) as of %s, %d transactions.\n", s.Scenario.Label(), s.Scenario, s.AsOf, len(s.Transactions))
	return subcommands.ExitSuccess
}
