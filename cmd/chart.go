package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/whatif"
	"github.com/etnz/whatif/chart"
	"github.com/google/subcommands"
)

type chartCmd struct {
	valuationFlags
	output string
	width  float64
	height float64
	shared bool
}

func (*chartCmd) Name() string     { return "chart" }
func (*chartCmd) Synopsis() string { return "draw the what-if portfolio value as SVG" }
func (*chartCmd) Usage() string {
	return `mm chart [-o <file.svg>] [-shared] [-width <px>] [-height <px>] [-scenario <s>] [-asof <date>] [-growth <g>]

  Draws the timeline of the what-if portfolio. With -shared, the value axis
  covers every scenario so that charts of different scenarios compare.
`
}

func (c *chartCmd) SetFlags(f *flag.FlagSet) {
	c.valuationFlags.SetFlags(f)
	f.StringVar(&c.output, "o", "", "Output file, standard output by default")
	f.Float64Var(&c.width, "width", 640, "Chart width")
	f.Float64Var(&c.height, "height", 160, "Chart height")
	f.BoolVar(&c.shared, "shared", false, "Use a value axis shared by all scenarios")
}

// geometry builds the chart of series, domain covers the others too.
func geometry(series whatif.Series, others []whatif.Series, opts chart.Options) chart.Geometry {
	values := [][]float64{series.Values}
	for _, o := range others {
		values = append(values, o.Values)
	}
	lo, hi := chart.Domain(values...)
	labels := make([]string, series.Len())
	for i, d := range series.Dates {
		labels[i] = d.String()
	}
	return chart.Build(series.Values, labels, lo, hi, opts)
}

func (c *chartCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	var others []whatif.Series
	if c.shared {
		for _, sc := range whatif.Scenarios() {
			if sc != v.session.Scenario {
				others = append(others, whatif.Timeline(v.session.Transactions, sc, v.session.AsOf, v.valuation.Growth, v.mult))
			}
		}
	}
	g := geometry(v.timeline(), others, chart.Options{Width: c.width, Height: c.height, Currency: a.cfg.Currency})

	var w io.Writer = os.Stdout
	if c.output != "" {
		file, err := os.Create(c.output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		w = file
	}
	if err := chart.WriteSVG(w, g); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
