package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/whatif"
	"github.com/google/subcommands"
)

type addCmd struct{}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "add a transaction" }
func (*addCmd) Usage() string {
	return `mm add <date> <amount> [description...]

  Appends a transaction to the list. The date is YYYY-MM-DD or 'today', the
  amount must be positive, a decimal comma is accepted.

Usage Examples:
$ mm add 2025-01-15 8.50 Coffee beans
`
}

func (*addCmd) SetFlags(f *flag.FlagSet) {}

// manualEntry maps the command line arguments to an entry.
func manualEntry(args []string) (whatif.ManualEntry, error) {
	if len(args) < 2 {
		return whatif.ManualEntry{}, fmt.Errorf("add expects a date and an amount, got %d arguments", len(args))
	}
	day := args[0]
	if day == "today" {
		d, _ := parseDay(day)
		day = d.String()
	}
	return whatif.ManualEntry{
		Date:        day,
		Amount:      args[1],
		Description: strings.Join(args[2:], " "),
	}, nil
}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := manualEntry(f.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
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
	tx, err := s.AddManual(ctx, e)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Added #%d %s %s %s\n", len(s.Transactions), tx.Date, tx.Description, whatif.M(tx.Amount, a.cfg.Currency))
	return subcommands.ExitSuccess
}
