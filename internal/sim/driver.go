// Package sim wires a loaded program, an input schedule and a tick budget
// into a machine.ControlUnit and drives it to completion, the way the
// teacher's command-line tools wire a loaded image to a virtual machine and
// run it. Unlike the teacher's channel-driven, asynchronous display, the
// driver here is synchronous and deterministic: every tick is accounted for
// up front, so a run is fully reproducible from its program and schedule.
package sim

import (
	"github.com/mlatimer/cisc3/internal/isa"
	"github.com/mlatimer/cisc3/internal/log"
	"github.com/mlatimer/cisc3/internal/machine"
)

// DefaultTickBudget bounds a run that never halts, so a buggy or
// adversarial program cannot hang the toolchain.
const DefaultTickBudget = 1_000_000

// Result collects everything a run produced: the device output, the
// instruction-level journal, and the final tick/instruction counts.
type Result struct {
	Output       string
	Journal      []machine.JournalEntry
	Ticks        int
	Instructions int
	Halted       bool
}

// Driver owns a single run: a program, its input schedule, and the
// tick budget that guards against nontermination.
type Driver struct {
	TickBudget int
	log        *log.Logger
}

// NewDriver creates a driver with the given tick budget. A zero budget
// selects DefaultTickBudget.
func NewDriver(tickBudget int, logger *log.Logger) *Driver {
	if tickBudget <= 0 {
		tickBudget = DefaultTickBudget
	}

	if logger == nil {
		logger = log.DefaultLogger()
	}

	return &Driver{TickBudget: tickBudget, log: logger}
}

// Run loads program and schedule into a fresh ControlUnit and steps it to
// halt, to a fatal error, or to the tick budget, whichever comes first.
func (d *Driver) Run(program *isa.Program, schedule []machine.ScheduleEntry) (*Result, error) {
	dp := machine.NewDataPath(program.Data, schedule)
	cu := machine.NewControlUnit(program.Code, dp, d.log)

	cu.InterruptsEnabled = false

	for {
		if cu.Tick > d.TickBudget {
			return d.result(cu, false), &machine.BudgetError{Budget: d.TickBudget}
		}

		halted, err := cu.Step()
		if err != nil {
			return d.result(cu, false), err
		}

		if halted {
			return d.result(cu, true), nil
		}
	}
}

func (d *Driver) result(cu *machine.ControlUnit, halted bool) *Result {
	return &Result{
		Output:       cu.DP.Output.String(),
		Journal:      cu.Journal,
		Ticks:        cu.Tick,
		Instructions: cu.InstrCounter,
		Halted:       halted,
	}
}

// Run is a package-level convenience that drives a program to completion
// with the default tick budget, logging through log.DefaultLogger.
func Run(program *isa.Program, schedule []machine.ScheduleEntry) (*Result, error) {
	return NewDriver(DefaultTickBudget, log.DefaultLogger()).Run(program, schedule)
}
