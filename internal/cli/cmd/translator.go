package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mlatimer/cisc3/internal/asm"
	"github.com/mlatimer/cisc3/internal/cli"
	"github.com/mlatimer/cisc3/internal/encoding"
	"github.com/mlatimer/cisc3/internal/log"
)

// Translator is the command that translates source into the JSON program
// artifact.
//
//	cisc3 translator -o a.bin program.asm
func Translator() cli.Command {
	return new(translator)
}

type translator struct {
	debug  bool
	output string
}

func (translator) Description() string {
	return "translate source into a program artifact"
}

func (translator) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `translator [-o a.bin] program.asm

Translate source into a JSON program artifact.`)

	return err
}

func (t *translator) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("translator", flag.ExitOnError)
	fs.BoolVar(&t.debug, "debug", false, "enable debug logging")
	fs.StringVar(&t.output, "o", "a.bin", "output `filename`")

	return fs
}

// Run translates the named source file and writes the program artifact.
func (t *translator) Run(ctx context.Context, args []string, stdout io.Writer, logger *log.Logger) int {
	if t.debug {
		log.LogLevel.Set(log.Debug)
	}

	if len(args) != 1 {
		logger.Error("translator: expected exactly one source file")
		return 1
	}

	src, err := os.Open(args[0])
	if err != nil {
		logger.Error("translator: open failed", "file", args[0], "err", err)
		return 1
	}
	defer src.Close()

	program, err := asm.Translate(src)
	if err != nil {
		logger.Error("translate error", "err", err)
		return 1
	}

	text, err := encoding.Artifact{Program: program}.MarshalText()
	if err != nil {
		logger.Error("encode error", "err", err)
		return 1
	}

	out, err := os.Create(t.output)
	if err != nil {
		logger.Error("translator: open failed", "out", t.output, "err", err)
		return 1
	}
	defer out.Close()

	if _, err := out.Write(text); err != nil {
		logger.Error("translator: write failed", "out", t.output, "err", err)
		return 1
	}

	logger.Debug("translated program",
		"out", t.output,
		"instructions", len(program.Code),
		"data", len(program.Data),
	)

	return 0
}
