// Package isa declares the closed enumerations shared by the translator and
// the model: opcodes, registers, operand types and the instruction record,
// plus the operand-arity table both consult when validating an instruction's
// shape.
package isa

import "fmt"

// Opcode is a closed enumeration of the machine's instructions, plus the
// pseudo-op INT used only in the data section to populate the interrupt
// vector table.
type Opcode uint8

const (
	ADD Opcode = iota
	SUB
	DIV
	MOD
	MUL
	CMP
	JE
	JNE
	JMP
	OUT
	IN
	LD
	SV
	IRET
	STI
	CLI
	HALT

	// INT is a data-section-only pseudo-op: it writes a vector-table entry
	// and never appears in the text section's code array.
	INT

	numOpcodes
)

var opcodeNames = [numOpcodes]string{
	ADD: "add", SUB: "sub", DIV: "div", MOD: "mod", MUL: "mul", CMP: "cmp",
	JE: "je", JNE: "jne", JMP: "jmp", OUT: "out", IN: "in", LD: "ld", SV: "sv",
	IRET: "iret", STI: "sti", CLI: "cli", HALT: "halt", INT: "int",
}

func (op Opcode) String() string {
	if int(op) < 0 || op >= numOpcodes {
		return fmt.Sprintf("Opcode(%d)", uint8(op))
	}

	return opcodeNames[op]
}

// LookupOpcode returns the opcode named by a mnemonic, case-insensitively
// matched by the caller.
func LookupOpcode(mnemonic string) (Opcode, bool) {
	for op, name := range opcodeNames {
		if name == mnemonic {
			return Opcode(op), true
		}
	}

	return 0, false
}

// Register is a closed enumeration of the machine's registers.
type Register uint8

const (
	R0 Register = iota
	R1
	R2
	R3
	R4
	SP
	PC

	numRegisters

	// NumRegisters is the count of registers in the enumeration, for sizing
	// a register file.
	NumRegisters = int(numRegisters)
)

var registerNames = [numRegisters]string{
	R0: "r0", R1: "r1", R2: "r2", R3: "r3", R4: "r4", SP: "sp", PC: "pc",
}

func (r Register) String() string {
	if int(r) < 0 || r >= numRegisters {
		return fmt.Sprintf("Register(%d)", uint8(r))
	}

	return registerNames[r]
}

// LookupRegister returns the register named by an identifier.
func LookupRegister(name string) (Register, bool) {
	for r, n := range registerNames {
		if n == name {
			return Register(r), true
		}
	}

	return 0, false
}

// Writable reports whether a register may appear as an instruction's output
// slot. R0 always reads as zero and silently discards writes; PC is mutated
// only by CU-driven control flow (fetch increment, jumps, iret), never by a
// user instruction's out operand.
func (r Register) Writable() bool {
	switch r {
	case R1, R2, R3, R4, SP:
		return true
	default:
		return false
	}
}

// OperandType distinguishes a register operand from an immediate.
type OperandType uint8

const (
	// TypeNone marks an operand slot that is absent for this instruction.
	TypeNone OperandType = iota
	TypeRegister
	TypeConst
)

func (t OperandType) String() string {
	switch t {
	case TypeRegister:
		return "register"
	case TypeConst:
		return "const"
	default:
		return "none"
	}
}

// Instruction is a single machine instruction. Out and Arg1 are always
// registers when present; Arg2 may be a register or an immediate, per
// Arg2Type. Label references are resolved to Arg2 immediates (TypeConst) by
// the translator before an Instruction is considered final.
type Instruction struct {
	Opcode   Opcode
	HasOut   bool
	Out      Register
	HasArg1  bool
	Arg1     Register
	HasArg2  bool
	Arg2     int32       // valid when HasArg2; register ID when Arg2Type is TypeRegister
	Arg2Type OperandType // valid when HasArg2
}

func (in Instruction) String() string {
	s := in.Opcode.String()

	if in.HasOut {
		s += " " + in.Out.String()
	}

	if in.HasArg1 {
		s += " " + in.Arg1.String()
	}

	if in.HasArg2 {
		if in.Arg2Type == TypeRegister {
			s += " " + Register(in.Arg2).String()
		} else {
			s += fmt.Sprintf(" %d", in.Arg2)
		}
	}

	return s
}

// Arity describes the operand shape an opcode requires.
type Arity struct {
	Out      bool // out slot present and must be a writable register
	Arg1     bool // arg1 slot present and must be a (readable) register
	Arg2     bool // arg2 slot present
	Arg2Any  bool // arg2 may be register or const; when false and Arg2 is true, arg2 must be a register
	Ticks    int  // base tick cost; je/jne vary, see ControlUnit.Step in the machine package
}

// ArityTable gives the operand shape and base tick cost for every opcode.
// Both the translator (to validate instruction shapes) and the model (to
// account ticks) consult this table so the two halves of the toolchain can
// never drift apart on what is a legal instruction.
var ArityTable = map[Opcode]Arity{
	ADD:  {Out: true, Arg1: true, Arg2: true, Arg2Any: true, Ticks: 1},
	SUB:  {Out: true, Arg1: true, Arg2: true, Arg2Any: true, Ticks: 1},
	DIV:  {Out: true, Arg1: true, Arg2: true, Arg2Any: true, Ticks: 1},
	MOD:  {Out: true, Arg1: true, Arg2: true, Arg2Any: true, Ticks: 1},
	MUL:  {Out: true, Arg1: true, Arg2: true, Arg2Any: true, Ticks: 1},
	CMP:  {Out: true, Arg1: true, Arg2: true, Arg2Any: true, Ticks: 1},
	JE:   {Arg1: true, Arg2: true, Arg2Any: true, Ticks: 1}, // 2 ticks if taken; see machine.ControlUnit.Step
	JNE:  {Arg1: true, Arg2: true, Arg2Any: true, Ticks: 1},
	JMP:  {Arg2: true, Arg2Any: true, Ticks: 1},
	LD:   {Out: true, Arg2: true, Arg2Any: true, Ticks: 1},
	SV:   {Arg1: true, Arg2: true, Arg2Any: true, Ticks: 1},
	IN:   {Out: true, Ticks: 1},
	OUT:  {Arg2: true, Arg2Any: true, Ticks: 1},
	STI:  {Ticks: 1},
	CLI:  {Ticks: 1},
	HALT: {Ticks: 1},
	IRET: {Ticks: 2},
}

// Device is the number of interrupt-capable devices the machine supports. The
// interrupt vector table occupies data[0:Device]. This spec fixes it at one.
const Device = 1
