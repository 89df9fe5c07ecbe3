package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/google/subcommands"
)

type removeCmd struct{}

func (*removeCmd) Name() string     { return "remove" }
func (*removeCmd) Synopsis() string { return "remove a transaction" }
func (*removeCmd) Usage() string {
	return `mm remove <n>

  Removes the n-th transaction, as numbered by 'mm list'.
`
}

func (*removeCmd) SetFlags(f *flag.FlagSet) {}

func (c *removeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: remove expects the number of a transaction")
		return subcommands.ExitUsageError
	}
	n, err := strconv.Atoi(f.Arg(0))
	if err != nil || n < 1 {
		fmt.Fprintf(os.Stderr, "Error: invalid transaction number %q\n", f.Arg(0))
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
	if n > len(s.Transactions) {
		fmt.Fprintf(os.Stderr, "Error: no transaction #%d, the list has %d\n", n, len(s.Transactions))
		return subcommands.ExitFailure
	}
	tx := s.Transactions[n-1]
	if err := s.Remove(ctx, n-1); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Removed #%d %s %s\n", n, tx.Date, tx.Description)
	return subcommands.ExitSuccess
}
