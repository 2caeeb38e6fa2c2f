package isa_test

import (
	"testing"

	"github.com/mlatimer/cisc3/internal/isa"
)

func TestLookupOpcode(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		mnemonic string
		want     isa.Opcode
		ok       bool
	}{
		{"add", isa.ADD, true},
		{"halt", isa.HALT, true},
		{"int", isa.INT, true},
		{"nope", 0, false},
		{"ADD", 0, false}, // mnemonics are lower-case only
	}

	for _, tc := range tcs {
		got, ok := isa.LookupOpcode(tc.mnemonic)
		if ok != tc.ok {
			t.Errorf("LookupOpcode(%q): ok = %t, want %t", tc.mnemonic, ok, tc.ok)
			continue
		}

		if ok && got != tc.want {
			t.Errorf("LookupOpcode(%q) = %s, want %s", tc.mnemonic, got, tc.want)
		}
	}
}

func TestLookupRegister(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name string
		want isa.Register
		ok   bool
	}{
		{"r0", isa.R0, true},
		{"sp", isa.SP, true},
		{"pc", isa.PC, true},
		{"r9", 0, false},
	}

	for _, tc := range tcs {
		got, ok := isa.LookupRegister(tc.name)
		if ok != tc.ok {
			t.Errorf("LookupRegister(%q): ok = %t, want %t", tc.name, ok, tc.ok)
			continue
		}

		if ok && got != tc.want {
			t.Errorf("LookupRegister(%q) = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestRegisterWritable(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		reg  isa.Register
		want bool
	}{
		{isa.R0, false},
		{isa.R1, true},
		{isa.R4, true},
		{isa.SP, true},
		{isa.PC, false},
	}

	for _, tc := range tcs {
		if got := tc.reg.Writable(); got != tc.want {
			t.Errorf("%s.Writable() = %t, want %t", tc.reg, got, tc.want)
		}
	}
}

func TestArityTableCoversAllOpcodes(t *testing.T) {
	t.Parallel()

	for op := isa.ADD; op < isa.INT; op++ {
		if _, ok := isa.ArityTable[op]; !ok {
			t.Errorf("ArityTable missing entry for %s", op)
		}
	}
}

func TestInstructionString(t *testing.T) {
	t.Parallel()

	in := isa.Instruction{
		Opcode: isa.ADD, HasOut: true, Out: isa.R1,
		HasArg1: true, Arg1: isa.R2,
		HasArg2: true, Arg2: int32(isa.R3), Arg2Type: isa.TypeRegister,
	}

	if got, want := in.String(), "add r1 r2 r3"; got != want {
		t.Errorf("Instruction.String() = %q, want %q", got, want)
	}

	in2 := isa.Instruction{
		Opcode: isa.JMP, HasArg2: true, Arg2: 42, Arg2Type: isa.TypeConst,
	}

	if got, want := in2.String(), "jmp 42"; got != want {
		t.Errorf("Instruction.String() = %q, want %q", got, want)
	}
}
