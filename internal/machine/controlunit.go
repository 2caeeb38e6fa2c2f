package machine

import (
	"github.com/mlatimer/cisc3/internal/isa"
	"github.com/mlatimer/cisc3/internal/log"
)

// VectorIndex is the interrupt vector table cell consulted on interrupt
// entry. This spec fixes the device count at one, so there is exactly one
// vector.
const VectorIndex = 0

// JournalEntry snapshots control-unit and register-file state after one
// instruction cycle, for post-hoc inspection and for tests to compare
// against reference runs.
type JournalEntry struct {
	InstrCounter int
	Tick         int
	PC           int32
	Opcode       isa.Opcode
	Registers    [isa.NumRegisters]int32
	InInterrupt  bool
}

// ControlUnit implements the fetch/decode/execute loop, interrupt polling,
// program counter management and tick accounting described in spec section
// 4.4, dispatching to the DataPath's signal operations for each opcode
// (ops.go).
type ControlUnit struct {
	PC                int32
	Tick              int
	InstrCounter      int
	InterruptsEnabled bool
	InInterrupt       bool
	Halted            bool

	Code []isa.Instruction
	DP   *DataPath

	Journal []JournalEntry

	log *log.Logger
}

// NewControlUnit creates a control unit over the given code and data path.
// PC, tick and instr_counter all start at zero; interrupts start disabled.
func NewControlUnit(code []isa.Instruction, dp *DataPath, logger *log.Logger) *ControlUnit {
	if logger == nil {
		logger = log.DefaultLogger()
	}

	return &ControlUnit{Code: code, DP: dp, log: logger}
}

// Step runs one instruction cycle to completion: interrupt check, fetch,
// decode/execute, PC update, tick accounting and journaling. It returns
// true when the program has halted.
func (cu *ControlUnit) Step() (bool, error) {
	if cu.Halted {
		return true, nil
	}

	if err := cu.checkInterrupt(); err != nil {
		return false, err
	}

	if cu.PC < 0 || int(cu.PC) >= len(cu.Code) {
		return false, &MemoryError{Addr: cu.PC, Space: "code"}
	}

	in := cu.Code[cu.PC]

	fn, ok := opTable[in.Opcode]
	if !ok {
		return false, &MemoryError{Addr: int32(in.Opcode), Space: "code"}
	}

	result, err := fn(cu, in)
	if err != nil {
		return false, err
	}

	if !result.ownsPC {
		cu.PC++
	}

	ticks := isa.ArityTable[in.Opcode].Ticks
	if in.Opcode == isa.JE || in.Opcode == isa.JNE {
		if result.branchTaken {
			ticks = 2
		} else {
			ticks = 1
		}
	}

	cu.Tick += ticks
	cu.InstrCounter++
	cu.DP.Registers[isa.PC] = cu.PC

	cu.Journal = append(cu.Journal, JournalEntry{
		InstrCounter: cu.InstrCounter,
		Tick:         cu.Tick,
		PC:           cu.PC,
		Opcode:       in.Opcode,
		Registers:    cu.DP.Registers,
		InInterrupt:  cu.InInterrupt,
	})

	cu.log.Debug("executed instruction", "op", in.String(), "pc", cu.PC, "tick", cu.Tick)

	if in.Opcode == isa.HALT {
		cu.Halted = true
	}

	return cu.Halted, nil
}

// checkInterrupt implements the interrupt-entry protocol of spec section
// 4.4: at most one interrupt is evaluated per cycle, only between
// instructions, and only when enabled and not already servicing one.
func (cu *ControlUnit) checkInterrupt() error {
	if !cu.InterruptsEnabled || cu.InInterrupt {
		return nil
	}

	char, pending := cu.DP.PendingAt(cu.Tick)
	if !pending {
		return nil
	}

	cu.DP.Deliver()

	if err := cu.DP.PushStack(cu.PC); err != nil {
		return err
	}

	target, err := cu.DP.ReadMemoryAt(VectorIndex)
	if err != nil {
		return err
	}

	cu.PC = target
	cu.InInterrupt = true
	cu.InterruptsEnabled = false

	v := int32(char)
	cu.DP.latched = &v

	cu.Tick += 4

	return nil
}
