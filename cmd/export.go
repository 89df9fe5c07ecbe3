package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/whatif"
	"github.com/etnz/whatif/renderer"
	"github.com/google/subcommands"
)

type exportCmd struct {
	valuationFlags
	output string
	format string
	bom    bool
	totals bool
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the valued transactions as CSV or PDF" }
func (*exportCmd) Usage() string {
	return `mm export [-format csv|pdf] [-o <file>] [-totals] [-bom] [-scenario <s>] [-asof <date>] [-growth <g>]

  With -format csv, writes date,description,amount,multiplier,what_if rows,
  in list order. With -format pdf, writes the list report as a PDF document;
  -totals and -bom only apply to CSV.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	c.valuationFlags.SetFlags(f)
	f.StringVar(&c.output, "o", "", "Output file, standard output by default")
	f.StringVar(&c.format, "format", "csv", "Output format: csv or pdf")
	f.BoolVar(&c.bom, "bom", false, "Start with a UTF-8 byte order mark")
	f.BoolVar(&c.totals, "totals", false, "Append a TOTAL row")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, status := start()
	if a == nil {
		return status
	}
	defer a.Close()

	if c.format != "csv" && c.format != "pdf" {
		fmt.Fprintf(os.Stderr, "Error: unknown format %q, want csv or pdf\n", c.format)
		return subcommands.ExitUsageError
	}

	v, err := c.value(ctx, a)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

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
	if c.format == "pdf" {
		err = renderer.WritePDF(w, renderer.NewResults(v.valuation, v.rows()))
	} else {
		err = whatif.ExportCSV(w, v.rows(), whatif.ExportOptions{BOM: c.bom, Totals: c.totals})
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
