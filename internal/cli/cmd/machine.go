package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mlatimer/cisc3/internal/cli"
	"github.com/mlatimer/cisc3/internal/encoding"
	"github.com/mlatimer/cisc3/internal/isa"
	"github.com/mlatimer/cisc3/internal/log"
	"github.com/mlatimer/cisc3/internal/machine"
	"github.com/mlatimer/cisc3/internal/sim"
)

// Machine is the command that runs a translated program against an input
// schedule.
//
//	cisc3 machine program.bin input_schedule.json
func Machine() cli.Command {
	return &machineCmd{}
}

type machineCmd struct {
	debug      bool
	tickBudget int
}

func (machineCmd) Description() string {
	return "run a translated program"
}

func (machineCmd) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `machine program.bin input_schedule.json

Runs a translated program against a timed input schedule, printing the
output stream followed by a summary line.`)

	return err
}

func (m *machineCmd) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("machine", flag.ExitOnError)
	fs.BoolVar(&m.debug, "debug", false, "enable debug logging")
	fs.IntVar(&m.tickBudget, "ticks", sim.DefaultTickBudget, "maximum ticks before aborting")

	return fs
}

// Run loads the named program and schedule and drives them to completion.
func (m *machineCmd) Run(ctx context.Context, args []string, stdout io.Writer, logger *log.Logger) int {
	if m.debug {
		log.LogLevel.Set(log.Debug)
	}

	if len(args) != 2 {
		logger.Error("machine: expected program and input schedule arguments")
		return 1
	}

	program, err := loadProgram(args[0])
	if err != nil {
		logger.Error("machine: loading program failed", "file", args[0], "err", err)
		return 1
	}

	schedule, err := loadSchedule(args[1])
	if err != nil {
		logger.Error("machine: loading input schedule failed", "file", args[1], "err", err)
		return 1
	}

	driver := sim.NewDriver(m.tickBudget, logger)

	result, err := driver.Run(program, schedule)
	if err != nil {
		fmt.Fprint(stdout, result.Output)
		logger.Error("machine: fatal error", "err", err)

		return 1
	}

	fmt.Fprint(stdout, result.Output)
	fmt.Fprintf(stdout, "instr_counter: %d ticks: %d\n", result.Instructions, result.Ticks)

	return 0
}

func loadProgram(fn string) (*isa.Program, error) {
	bs, err := os.ReadFile(fn)
	if err != nil {
		return nil, err
	}

	var artifact encoding.Artifact
	if err := artifact.UnmarshalText(bs); err != nil {
		return nil, err
	}

	return artifact.Program, nil
}

func loadSchedule(fn string) ([]machine.ScheduleEntry, error) {
	bs, err := os.ReadFile(fn)
	if err != nil {
		return nil, err
	}

	var sched encoding.Schedule
	if err := sched.UnmarshalText(bs); err != nil {
		return nil, err
	}

	entries := make([]machine.ScheduleEntry, len(sched.Entries))
	for i, e := range sched.Entries {
		entries[i] = machine.ScheduleEntry{Tick: e.Tick, Char: e.Char}
	}

	return entries, nil
}
