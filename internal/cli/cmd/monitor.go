package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/mlatimer/cisc3/internal/cli"
	"github.com/mlatimer/cisc3/internal/log"
	"github.com/mlatimer/cisc3/internal/monitor"
)

// Monitor is the command that runs a translated program interactively,
// against the controlling terminal instead of a file-based input schedule.
//
//	cisc3 monitor program.bin
func Monitor() cli.Command {
	return &monitorCmd{}
}

type monitorCmd struct {
	debug bool
}

func (monitorCmd) Description() string {
	return "run a translated program interactively"
}

func (monitorCmd) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `monitor program.bin

Runs a translated program against the controlling terminal: keystrokes are
forwarded to the model as timed input and its output is echoed directly.`)

	return err
}

func (m *monitorCmd) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("monitor", flag.ExitOnError)
	fs.BoolVar(&m.debug, "debug", false, "enable debug logging")

	return fs
}

// Run loads the named program and drives it interactively.
func (m *monitorCmd) Run(ctx context.Context, args []string, stdout io.Writer, logger *log.Logger) int {
	if m.debug {
		log.LogLevel.Set(log.Debug)
	}

	if len(args) != 1 {
		logger.Error("monitor: expected exactly one program argument")
		return 1
	}

	program, err := loadProgram(args[0])
	if err != nil {
		logger.Error("monitor: loading program failed", "file", args[0], "err", err)
		return 1
	}

	mon := monitor.New(program, logger)

	if err := mon.Run(ctx); err != nil {
		if monitor.IsNotATerminal(err) {
			logger.Error("monitor: stdin is not a terminal; use the machine command instead")
			return 1
		}

		logger.Error("monitor: fatal error", "err", err)

		return 1
	}

	return 0
}
