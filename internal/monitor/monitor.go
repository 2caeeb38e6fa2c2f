// Package monitor implements an interactive, terminal-driven front-end for
// the model. It supplements the file-based `machine` command the way the
// teacher's own boot-ROM monitor supplements a freshly reset LC-3: since
// this ISA has no ROM or trap vectors to host, the monitor instead gives
// the raw-terminal console (internal/tty) a live component to drive,
// forwarding keystrokes to the running model as they arrive and echoing the
// model's output stream directly to the terminal.
//
// It introduces no simulator semantics of its own: every character
// delivered is timestamped against the model's own tick counter and fed
// through the same DataPath.Enqueue/Deliver path a file-based input
// schedule uses.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mlatimer/cisc3/internal/isa"
	"github.com/mlatimer/cisc3/internal/log"
	"github.com/mlatimer/cisc3/internal/machine"
	"github.com/mlatimer/cisc3/internal/tty"
)

// Monitor drives a ControlUnit interactively: it reads keystrokes from a
// console and enqueues each as a timed input event, and writes every
// character the model prints to the console as it is produced.
type Monitor struct {
	cu  *machine.ControlUnit
	log *log.Logger
}

// New creates a monitor over a freshly loaded program. Interrupts start
// disabled, as in the batch driver; the program enables them itself (via
// sti) once it has installed a handler.
func New(program *isa.Program, logger *log.Logger) *Monitor {
	if logger == nil {
		logger = log.DefaultLogger()
	}

	dp := machine.NewDataPath(program.Data, nil)
	cu := machine.NewControlUnit(program.Code, dp, logger)

	return &Monitor{cu: cu, log: logger}
}

// Run puts stdin in raw mode, then steps the model to completion, forwarding
// keystrokes from the console as timed input and echoing output as it is
// produced. It returns nil on halt, the model's fatal error from Step, the
// cause of ctx's cancellation (such as a failed terminal read), or an error
// matching tty.ErrNoTTY if stdin is not a terminal. There is no tick budget.
func (m *Monitor) Run(ctx context.Context) error {
	console, err := tty.NewConsole(os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		return err
	}

	defer console.Restore()

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(context.Canceled)

	console.Run(ctx, cancel)

	out := console.Writer()

	var lastWritten int

	for {
		select {
		case <-ctx.Done():
			return context.Cause(ctx)
		case key := <-console.Keys():
			m.cu.DP.Enqueue(m.cu.Tick, rune(key))
		default:
		}

		halted, err := m.cu.Step()

		written := m.cu.DP.Output.String()
		if len(written) > lastWritten {
			if _, err := io.WriteString(out, written[lastWritten:]); err != nil {
				return err
			}

			lastWritten = len(written)
		}

		if err != nil {
			return err
		}

		if halted {
			fmt.Fprintf(out, "\r\nhalted: instr_counter: %d ticks: %d\r\n", m.cu.InstrCounter, m.cu.Tick)
			return nil
		}
	}
}

// ErrNotATerminal is returned by Run when stdin is not a terminal; callers
// may fall back to the batch driver in internal/sim.
var ErrNotATerminal = tty.ErrNoTTY

// IsNotATerminal reports whether err indicates the monitor cannot attach to
// an interactive console.
func IsNotATerminal(err error) bool {
	return errors.Is(err, tty.ErrNoTTY)
}
