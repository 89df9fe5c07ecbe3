package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/whatif/renderer"
	"github.com/google/subcommands"
)

type timelineCmd struct {
	valuationFlags
}

func (*timelineCmd) Name() string     { return "timeline" }
func (*timelineCmd) Synopsis() string { return "show the cumulative what-if portfolio value" }
func (*timelineCmd) Usage() string {
	return `mm timeline [-scenario <s>] [-asof <date>] [-growth <g>] [-oscillating]

  Shows the value of the what-if portfolio on every transaction date and on
  the as-of date.
`
}

func (c *timelineCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	printMarkdown(renderer.RenderTimeline(renderer.NewTimeline(v.valuation, v.timeline())))
	return subcommands.ExitSuccess
}
