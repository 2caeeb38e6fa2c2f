// Package tty provides terminal emulation for the interactive monitor: it
// puts the controlling terminal in raw mode and adapts it to a simple
// byte-in, rune-out console, the way the teacher's Console adapts a
// terminal to its keyboard and display devices.
//
// Keystrokes read from the terminal are delivered on a channel; writes are
// made directly through the terminal's io.Writer.
package tty

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Console is a serial console for the model, simulated using Unix terminal
// I/O[^1].
//
// [1]: See: tty(4), termios(4).
type Console struct {
	in    *os.File
	out   *term.Terminal
	fd    int
	state *term.State

	keyCh chan byte
}

// ErrNoTTY is returned if standard input is not a terminal. In this case,
// asynchronous I/O is not supported by the console.
var ErrNoTTY error = errors.New("console: not a TTY")

// NewConsole creates a Console using the provided streams. If the input
// stream is not a terminal, ErrNoTTY is returned. Callers are responsible
// for calling Restore to return the terminal to its initial state.
func NewConsole(sin, sout, serr *os.File) (*Console, error) {
	fd := int(sin.Fd())

	if !term.IsTerminal(fd) {
		return nil, ErrNoTTY
	}

	saved, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoTTY, err)
	}

	cons := Console{
		fd:    fd,
		in:    sin,
		out:   term.NewTerminal(sin, ""),
		state: saved,
		keyCh: make(chan byte, 1),
	}

	if err := cons.setTerminalParams(1, 0); err != nil {
		return nil, err
	}

	return &cons, nil
}

// Run starts reading keystrokes from the terminal in the background until
// ctx is cancelled or a read fails.
func (c *Console) Run(ctx context.Context, cancel context.CancelCauseFunc) {
	go c.readTerminal(ctx, cancel)
}

// Keys returns the channel keystrokes arrive on.
func (c *Console) Keys() <-chan byte {
	return c.keyCh
}

// Writer returns an io.Writer that writes to the terminal.
func (c *Console) Writer() io.Writer {
	return c.out
}

// Restore returns the terminal to its initial state and unblocks any
// in-progress read.
func (c *Console) Restore() {
	_ = os.Stdin.SetReadDeadline(time.Now())
	_ = term.Restore(c.fd, c.state)
}

func (c *Console) setTerminalParams(vmin, vtime byte) error {
	_ = syscall.SetNonblock(c.fd, true)

	termIO, err := unix.IoctlGetTermios(c.fd, getTermiosIoctl)
	if err != nil {
		return err
	}

	termIO.Cc[unix.VMIN] = vmin
	termIO.Cc[unix.VTIME] = vtime

	if err := unix.IoctlSetTermios(c.fd, setTermiosIoctl, termIO); err != nil {
		return err
	}

	_ = os.Stdin.SetReadDeadline(time.Time{})

	return nil
}

// readTerminal reads bytes from the terminal and writes them to the key
// channel until the context is cancelled.
func (c *Console) readTerminal(ctx context.Context, cancel context.CancelCauseFunc) {
	buf := bufio.NewReader(c.in)

	_ = syscall.SetNonblock(c.fd, false)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		b, err := buf.ReadByte()
		if err != nil {
			cancel(err)
			return
		}

		select {
		case <-ctx.Done():
			return
		case c.keyCh <- b:
		}
	}
}
