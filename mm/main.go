// Command mm values past spending as if it had been invested instead.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/whatif/cmd"
	"github.com/google/subcommands"
)

func main() {
	// Exits when invoked by the shell for completion, or to install it.
	cmd.Completion().Complete("mm")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	for _, c := range cmd.Commands {
		commander.Register(c.Command, c.Group)
	}

	flag.Parse()

	if sub := flag.Arg(0); sub != "" && !cmd.IsCommand(sub) {
		if found, code := cmd.RunExtension(sub, flag.Args()[1:]); found {
			os.Exit(code)
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}
