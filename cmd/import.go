package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
)

type importCmd struct {
	replace bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import transactions from a CSV file" }
func (*importCmd) Usage() string {
	return `mm import [-replace] <file.csv | ->

  Appends the transactions of a CSV file to the list, '-' reads the standard
  input. Malformed rows are skipped. See 'mm topic csv' for the format.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.replace, "replace", false, "Replace the list instead of appending to it")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: import expects exactly one file")
		return subcommands.ExitUsageError
	}
	name := f.Arg(0)

	var r io.Reader = os.Stdin
	if name != "-" {
		file, err := os.Open(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		r = file
	} else {
		name = "standard input"
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
	if c.replace {
		s.Transactions = nil
	}
	report, err := s.Import(ctx, r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: importing %s: %v\n", name, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Imported %d transactions from %s, skipped %d malformed rows.\n", report.Imported, name, report.Skipped)
	return subcommands.ExitSuccess
}
