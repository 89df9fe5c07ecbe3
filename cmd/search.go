package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/whatif/renderer"
	"github.com/google/subcommands"
)

type searchCmd struct{}

func (*searchCmd) Name() string     { return "search" }
func (*searchCmd) Synopsis() string { return "search an instrument on OpenFIGI" }
func (*searchCmd) Usage() string {
	return `mm search <query>

  Searches OpenFIGI for instruments matching a name or a ticker. An ISIN is
  mapped to its listings instead.

Usage Examples:
$ mm search apple
$ mm search US0378331005
`
}

func (*searchCmd) SetFlags(f *flag.FlagSet) {}

func (c *searchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	q := strings.TrimSpace(strings.Join(f.Args(), " "))
	if q == "" {
		fmt.Fprintln(os.Stderr, "Error: search expects a query")
		return subcommands.ExitUsageError
	}

	a, status := start()
	if a == nil {
		return status
	}
	defer a.Close()

	hits, err := a.searcher().Search(ctx, q)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderSearch(renderer.NewSearch(q, hits)))
	return subcommands.ExitSuccess
}
