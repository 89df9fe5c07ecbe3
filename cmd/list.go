package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/whatif/renderer"
	"github.com/google/subcommands"
)

type listCmd struct {
	valuationFlags
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list the transactions with their what-if value" }
func (*listCmd) Usage() string {
	return `mm list [-scenario <s>] [-asof <date>] [-growth <g>] [-oscillating]

  Lists the transactions, each with its multiplier and what it would be worth
  on the as-of date, and the totals.
`
}

func (c *listCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, status := start()
	if a == nil {
		return status
	}
	defer a.Close()

	v, err := c.value(ctx, a)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderResults(renderer.NewResults(v.valuation, v.rows())))
	return subcommands.ExitSuccess
}
