package encoding_test

import (
	"strings"
	"testing"

	"github.com/mlatimer/cisc3/internal/encoding"
	"github.com/mlatimer/cisc3/internal/isa"
)

func TestArtifactRoundTrip(t *testing.T) {
	t.Parallel()

	program := &isa.Program{
		Code: []isa.Instruction{
			{Opcode: isa.ADD, HasOut: true, Out: isa.R1,
				HasArg1: true, Arg1: isa.R2,
				HasArg2: true, Arg2: int32(isa.R3), Arg2Type: isa.TypeRegister},
			{Opcode: isa.JMP, HasArg2: true, Arg2: 42, Arg2Type: isa.TypeConst},
			{Opcode: isa.HALT},
		},
		Data: []int32{0, 10, 20},
	}

	bs, err := encoding.Artifact{Program: program}.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}

	var out encoding.Artifact
	if err := out.UnmarshalText(bs); err != nil {
		t.Fatalf("UnmarshalText: %v\n%s", err, bs)
	}

	if len(out.Program.Code) != len(program.Code) {
		t.Fatalf("got %d instructions, want %d", len(out.Program.Code), len(program.Code))
	}

	for i, want := range program.Code {
		if got := out.Program.Code[i]; got != want {
			t.Errorf("code[%d] = %+v, want %+v", i, got, want)
		}
	}

	if len(out.Program.Data) != len(program.Data) {
		t.Fatalf("got %d data cells, want %d", len(out.Program.Data), len(program.Data))
	}

	for i, want := range program.Data {
		if out.Program.Data[i] != want {
			t.Errorf("data[%d] = %d, want %d", i, out.Program.Data[i], want)
		}
	}
}

func TestArtifactOmitsAbsentFields(t *testing.T) {
	t.Parallel()

	program := &isa.Program{
		Code: []isa.Instruction{{Opcode: isa.HALT}},
	}

	bs, err := encoding.Artifact{Program: program}.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}

	for _, field := range []string{`"out"`, `"arg1"`, `"arg2"`, `"arg2_type"`} {
		if strings.Contains(string(bs), field) {
			t.Errorf("marshaled halt instruction unexpectedly contains %s: %s", field, bs)
		}
	}
}

func TestArtifactUnmarshalUnknownOpcode(t *testing.T) {
	t.Parallel()

	var out encoding.Artifact
	err := out.UnmarshalText([]byte(`{"code":[{"opcode":"nope"}],"data":[]}`))
	if err == nil {
		t.Fatal("UnmarshalText: want error for unknown opcode")
	}
}

func TestArtifactUnmarshalMalformedJSON(t *testing.T) {
	t.Parallel()

	var out encoding.Artifact
	if err := out.UnmarshalText([]byte(`not json`)); err == nil {
		t.Fatal("UnmarshalText: want error for malformed JSON")
	}
}

func TestScheduleRoundTripSorted(t *testing.T) {
	t.Parallel()

	sched := encoding.Schedule{Entries: []encoding.ScheduleEntry{
		{Tick: 5, Char: 'b'},
		{Tick: 1, Char: 'a'},
	}}

	bs, err := sched.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}

	var out encoding.Schedule
	if err := out.UnmarshalText(bs); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}

	if len(out.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(out.Entries))
	}

	if out.Entries[0].Tick != 1 || out.Entries[0].Char != 'a' {
		t.Errorf("entry[0] = %+v, want tick 1 char 'a'", out.Entries[0])
	}

	if out.Entries[1].Tick != 5 || out.Entries[1].Char != 'b' {
		t.Errorf("entry[1] = %+v, want tick 5 char 'b'", out.Entries[1])
	}
}

func TestScheduleUnmarshalRejectsMultiCharEntry(t *testing.T) {
	t.Parallel()

	var out encoding.Schedule
	err := out.UnmarshalText([]byte(`[[1, "ab"]]`))
	if err == nil {
		t.Fatal("UnmarshalText: want error for multi-character entry")
	}
}
