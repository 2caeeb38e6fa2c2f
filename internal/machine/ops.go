package machine

import (
	"github.com/mlatimer/cisc3/internal/isa"
)

// opResult reports how an opcode's execution affects control flow: whether
// it fully owns the program counter (so Step must not auto-increment it),
// and whether a conditional branch was taken (for je/jne tick accounting).
type opResult struct {
	ownsPC      bool
	branchTaken bool
}

type opFunc func(cu *ControlUnit, in isa.Instruction) (opResult, error)

var opTable = map[isa.Opcode]opFunc{
	isa.ADD:  execArith(OpADD),
	isa.SUB:  execArith(OpSUB),
	isa.MUL:  execArith(OpMUL),
	isa.DIV:  execArith(OpDIV),
	isa.MOD:  execArith(OpMOD),
	isa.CMP:  execArith(OpCMP),
	isa.JE:   execBranch(true),
	isa.JNE:  execBranch(false),
	isa.JMP:  execJmp,
	isa.LD:   execLD,
	isa.SV:   execSV,
	isa.IN:   execIN,
	isa.OUT:  execOUT,
	isa.STI:  execSTI,
	isa.CLI:  execCLI,
	isa.HALT: execHALT,
	isa.IRET: execIRET,
}

// resolveArg2 returns the register (or R0, when the operand is a const) and
// an immediate pointer suitable for DataPath.LatchALU.
func resolveArg2(in isa.Instruction) (isa.Register, *int32) {
	if in.Arg2Type == isa.TypeRegister {
		return isa.Register(in.Arg2), nil
	}

	v := in.Arg2

	return isa.R0, &v
}

// execArith implements add, sub, mul, div, mod and cmp: out <- alu(arg1, arg2, op).
func execArith(aluOp ALUOp) opFunc {
	return func(cu *ControlUnit, in isa.Instruction) (opResult, error) {
		reg2, imm := resolveArg2(in)

		cu.DP.SelectOperands(in.Arg1, reg2, in.Out)
		cu.DP.LatchALU(imm)

		if err := cu.DP.ExecuteALU(aluOp); err != nil {
			return opResult{}, err
		}

		cu.DP.LatchOutput(false)

		return opResult{}, nil
	}
}

// execBranch implements je (wantZero=true) and jne (wantZero=false): the
// branch is taken when the comparison register is (resp. is not) zero.
func execBranch(wantZero bool) opFunc {
	return func(cu *ControlUnit, in isa.Instruction) (opResult, error) {
		val := cu.DP.Read(in.Arg1)
		taken := (val == 0) == wantZero

		if !taken {
			return opResult{branchTaken: false}, nil
		}

		target, err := resolveAddress(cu, in)
		if err != nil {
			return opResult{}, err
		}

		cu.PC = target

		return opResult{ownsPC: true, branchTaken: true}, nil
	}
}

// resolveAddress resolves an arg2 operand (register or const) to a plain
// value, routing through the ALU's pass-through (RIGHT) operation so every
// address computation flows through the same signal path.
func resolveAddress(cu *ControlUnit, in isa.Instruction) (int32, error) {
	reg2, imm := resolveArg2(in)

	cu.DP.SelectOperands(isa.R0, reg2, isa.R0)
	cu.DP.LatchALU(imm)

	if err := cu.DP.ExecuteALU(OpRIGHT); err != nil {
		return 0, err
	}

	return cu.DP.BusValue(), nil
}

func execJmp(cu *ControlUnit, in isa.Instruction) (opResult, error) {
	target, err := resolveAddress(cu, in)
	if err != nil {
		return opResult{}, err
	}

	cu.PC = target

	return opResult{ownsPC: true}, nil
}

// execLD implements `ld wreg val`: wreg <- data_memory[resolve(val)].
func execLD(cu *ControlUnit, in isa.Instruction) (opResult, error) {
	reg2, imm := resolveArg2(in)

	cu.DP.SelectOperands(isa.R0, reg2, in.Out)
	cu.DP.LatchALU(imm)

	if err := cu.DP.ExecuteALU(OpRIGHT); err != nil {
		return opResult{}, err
	}

	if err := cu.DP.ReadMemory(); err != nil {
		return opResult{}, err
	}

	cu.DP.LatchOutput(false)

	return opResult{}, nil
}

// execSV implements `sv reg val`: data_memory[resolve(val)] <- reg.
func execSV(cu *ControlUnit, in isa.Instruction) (opResult, error) {
	reg2, imm := resolveArg2(in)

	cu.DP.SelectOperands(isa.R0, reg2, isa.R0)
	cu.DP.LatchALU(imm)

	if err := cu.DP.ExecuteALU(OpRIGHT); err != nil {
		return opResult{}, err
	}

	value := cu.DP.Read(in.Arg1)
	if err := cu.DP.WriteMemory(value); err != nil {
		return opResult{}, err
	}

	return opResult{}, nil
}

// execIN implements `in wreg`: wreg <- latched interrupt character, emptying
// the latch. With no pending character, it is a fatal IOError.
func execIN(cu *ControlUnit, in isa.Instruction) (opResult, error) {
	char, ok := cu.DP.TakeLatched()
	if !ok {
		return opResult{}, &IOError{}
	}

	cu.DP.InputFromDevice(char)
	cu.DP.SelectOperands(isa.R0, isa.R0, in.Out)
	cu.DP.LatchOutput(false)

	return opResult{}, nil
}

// execOUT implements `out val`: append the low 21 bits of val to the output
// buffer.
func execOUT(cu *ControlUnit, in isa.Instruction) (opResult, error) {
	reg2, imm := resolveArg2(in)

	cu.DP.SelectOperands(isa.R0, reg2, isa.R0)
	cu.DP.LatchALU(imm)

	if err := cu.DP.ExecuteALU(OpRIGHT); err != nil {
		return opResult{}, err
	}

	cu.DP.PrintToDevice()

	return opResult{}, nil
}

func execSTI(cu *ControlUnit, _ isa.Instruction) (opResult, error) {
	cu.InterruptsEnabled = true
	return opResult{}, nil
}

func execCLI(cu *ControlUnit, _ isa.Instruction) (opResult, error) {
	cu.InterruptsEnabled = false
	return opResult{}, nil
}

func execHALT(cu *ControlUnit, _ isa.Instruction) (opResult, error) {
	return opResult{}, nil
}

// execIRET implements iret: pop the caller's PC from the stack and
// re-enable interrupts.
func execIRET(cu *ControlUnit, _ isa.Instruction) (opResult, error) {
	pc, err := cu.DP.PopStack()
	if err != nil {
		return opResult{}, err
	}

	cu.PC = pc
	cu.InInterrupt = false
	cu.InterruptsEnabled = true

	return opResult{ownsPC: true}, nil
}
