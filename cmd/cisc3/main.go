// cisc3 is the command-line interface to the translator and model: it
// compiles source into a program artifact and runs that artifact, in batch
// or interactively.
package main

import (
	"context"
	"os"

	"github.com/mlatimer/cisc3/internal/cli"
	"github.com/mlatimer/cisc3/internal/cli/cmd"
)

var commands = []cli.Command{
	cmd.Translator(),
	cmd.Machine(),
	cmd.Monitor(),
}

// Entry point.
func main() {
	result :=
		cli.New(context.Background()).
			WithLogger(os.Stderr).
			WithCommands(commands).
			WithHelp(cmd.Help(commands)).
			Execute(os.Args[1:])

	os.Exit(result)
}
