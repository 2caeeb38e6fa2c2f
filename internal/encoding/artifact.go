// Package encoding implements encoding.TextMarshaler and
// encoding.TextUnmarshaler for the two on-disk artifacts the toolchain
// passes between its stages: the translated program (code plus data) and
// the timed input schedule fed to a running program. Both are plain JSON;
// this package exists to give them the same marshal/unmarshal contract the
// teacher gives its own object-code format, not to add a custom wire
// format of its own.
package encoding

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mlatimer/cisc3/internal/isa"
)

// instrJSON mirrors isa.Instruction but with optional fields omitted per
// the opcode's arity, matching the artifact schema.
type instrJSON struct {
	Opcode   string `json:"opcode"`
	Out      string `json:"out,omitempty"`
	Arg1     string `json:"arg1,omitempty"`
	Arg2     any    `json:"arg2,omitempty"`
	Arg2Type string `json:"arg2_type,omitempty"`
}

type programJSON struct {
	Code []instrJSON `json:"code"`
	Data []int32     `json:"data"`
}

// Artifact wraps an isa.Program for marshalling to and from the JSON
// artifact format.
type Artifact struct {
	Program *isa.Program
}

func (a Artifact) MarshalText() ([]byte, error) {
	doc := programJSON{
		Code: make([]instrJSON, len(a.Program.Code)),
		Data: a.Program.Data,
	}

	for i, in := range a.Program.Code {
		rec := instrJSON{Opcode: in.Opcode.String()}

		if in.HasOut {
			rec.Out = in.Out.String()
		}

		if in.HasArg1 {
			rec.Arg1 = in.Arg1.String()
		}

		if in.HasArg2 {
			if in.Arg2Type == isa.TypeRegister {
				rec.Arg2 = isa.Register(in.Arg2).String()
				rec.Arg2Type = "register"
			} else {
				rec.Arg2 = in.Arg2
				rec.Arg2Type = "const"
			}
		}

		doc.Code[i] = rec
	}

	return json.MarshalIndent(doc, "", "  ")
}

func (a *Artifact) UnmarshalText(bs []byte) error {
	var doc programJSON

	if err := json.Unmarshal(bs, &doc); err != nil {
		return fmt.Errorf("artifact: %w", err)
	}

	code := make([]isa.Instruction, len(doc.Code))

	for i, rec := range doc.Code {
		in, err := decodeInstr(rec)
		if err != nil {
			return fmt.Errorf("artifact: code[%d]: %w", i, err)
		}

		code[i] = in
	}

	a.Program = &isa.Program{Code: code, Data: doc.Data}

	return nil
}

func decodeInstr(rec instrJSON) (isa.Instruction, error) {
	op, ok := isa.LookupOpcode(rec.Opcode)
	if !ok {
		return isa.Instruction{}, fmt.Errorf("unknown opcode %q", rec.Opcode)
	}

	in := isa.Instruction{Opcode: op}

	if rec.Out != "" {
		r, ok := isa.LookupRegister(rec.Out)
		if !ok {
			return isa.Instruction{}, fmt.Errorf("unknown register %q in out", rec.Out)
		}

		in.HasOut, in.Out = true, r
	}

	if rec.Arg1 != "" {
		r, ok := isa.LookupRegister(rec.Arg1)
		if !ok {
			return isa.Instruction{}, fmt.Errorf("unknown register %q in arg1", rec.Arg1)
		}

		in.HasArg1, in.Arg1 = true, r
	}

	if rec.Arg2 != nil {
		in.HasArg2 = true

		switch rec.Arg2Type {
		case "register":
			name, ok := rec.Arg2.(string)
			if !ok {
				return isa.Instruction{}, fmt.Errorf("arg2 register must be a string, got %T", rec.Arg2)
			}

			r, ok := isa.LookupRegister(name)
			if !ok {
				return isa.Instruction{}, fmt.Errorf("unknown register %q in arg2", name)
			}

			in.Arg2Type = isa.TypeRegister
			in.Arg2 = int32(r)
		case "const", "":
			n, ok := rec.Arg2.(float64)
			if !ok {
				return isa.Instruction{}, fmt.Errorf("arg2 const must be a number, got %T", rec.Arg2)
			}

			in.Arg2Type = isa.TypeConst
			in.Arg2 = int32(n)
		default:
			return isa.Instruction{}, fmt.Errorf("unknown arg2_type %q", rec.Arg2Type)
		}
	}

	return in, nil
}

// scheduleJSON is one [tick, char] pair as it appears on the wire.
type scheduleJSON [2]any

// Schedule wraps a slice of machine.ScheduleEntry-shaped pairs for
// marshalling to and from the input-schedule JSON format. It is declared in
// terms of (tick int, char rune) pairs rather than importing the machine
// package, so the translator side of the toolchain never needs to pull in
// model code.
type Schedule struct {
	Entries []ScheduleEntry
}

// ScheduleEntry is one timed input character.
type ScheduleEntry struct {
	Tick int
	Char rune
}

func (s Schedule) MarshalText() ([]byte, error) {
	sorted := append([]ScheduleEntry(nil), s.Entries...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Tick < sorted[j].Tick })

	doc := make([]scheduleJSON, len(sorted))
	for i, e := range sorted {
		doc[i] = scheduleJSON{e.Tick, string(e.Char)}
	}

	return json.Marshal(doc)
}

func (s *Schedule) UnmarshalText(bs []byte) error {
	var doc []scheduleJSON

	if err := json.Unmarshal(bs, &doc); err != nil {
		return fmt.Errorf("schedule: %w", err)
	}

	entries := make([]ScheduleEntry, len(doc))

	for i, pair := range doc {
		tick, ok := pair[0].(float64)
		if !ok {
			return fmt.Errorf("schedule: entry %d: tick must be a number", i)
		}

		text, ok := pair[1].(string)
		if !ok {
			return fmt.Errorf("schedule: entry %d: char must be a string", i)
		}

		runes := []rune(text)
		if len(runes) != 1 {
			return fmt.Errorf("schedule: entry %d: char must be exactly one character, got %q", i, text)
		}

		entries[i] = ScheduleEntry{Tick: int(tick), Char: runes[0]}
	}

	s.Entries = entries

	return nil
}
