// Package machine implements the DataPath and ControlUnit: the register
// file, ALU, data memory and I/O buffers connected by buses (DataPath), and
// the fetch/decode/execute loop that drives them (ControlUnit). This follows
// the teacher's internal/vm package structure (a Memory controller with
// address/data latches in mem.go, a staged instruction cycle in exec.go),
// adapted to this ISA's flat, structured Instruction record.
package machine

import (
	"strings"

	"github.com/mlatimer/cisc3/internal/isa"
)

// ALUOp is one of the arithmetic/logic unit's operations.
type ALUOp int

const (
	OpINC ALUOp = iota
	OpDEC
	OpADD
	OpSUB
	OpMUL
	OpDIV
	OpMOD
	OpCMP
	OpLEFT
	OpRIGHT
	OpNOP
)

// ScheduleEntry is one (tick, character) pair from the input schedule.
type ScheduleEntry struct {
	Tick int
	Char rune
}

// DataPath holds the register file, data memory, input schedule and the
// internal latches connecting them. All mutation happens through its
// signal methods, driven by the ControlUnit; the one outside caller is a
// live-input front-end (such as the monitor) appending entries via Enqueue.
type DataPath struct {
	Registers [isa.NumRegisters]int32
	Memory    []int32

	schedule []ScheduleEntry
	cursor   int

	Output strings.Builder

	// ALU latches.
	aluLeft, aluRight, bus int32
	zeroFlag               bool

	selOut isa.Register

	// latched holds the character delivered to the pending interrupt, for
	// the next `in` instruction to consume. Nil when empty.
	latched *int32
}

// NewDataPath initializes a DataPath over the given data memory and input
// schedule. The schedule must be sorted ascending by tick; ties are resolved
// in the order given, per spec. The stack pointer is implicitly initialized
// to the last data cell index, so the first interrupt entry's PushStack has
// somewhere valid to write.
func NewDataPath(data []int32, schedule []ScheduleEntry) *DataPath {
	dp := &DataPath{
		Memory:   append([]int32(nil), data...),
		schedule: append([]ScheduleEntry(nil), schedule...),
	}

	if len(dp.Memory) > 0 {
		dp.Registers[isa.SP] = int32(len(dp.Memory) - 1)
	}

	return dp
}

// Read returns a register's value. R0 always reads as zero.
func (dp *DataPath) Read(r isa.Register) int32 {
	if r == isa.R0 {
		return 0
	}

	return dp.Registers[r]
}

// Write stores a value to a register. Writes to R0 are silently discarded.
func (dp *DataPath) Write(r isa.Register, v int32) {
	if r == isa.R0 {
		return
	}

	dp.Registers[r] = v
}

// SelectOperands latches the ALU's left and right inputs from two registers
// and records which register the result will be written back to.
func (dp *DataPath) SelectOperands(op1, op2, out isa.Register) {
	dp.aluLeft = dp.Read(op1)
	dp.aluRight = dp.Read(op2)
	dp.selOut = out
}

// LatchALU overrides the ALU's right input with an immediate, when present,
// instead of the register selected by SelectOperands.
func (dp *DataPath) LatchALU(imm *int32) {
	if imm != nil {
		dp.aluRight = *imm
	}
}

// ExecuteALU computes the latched operands onto the internal bus and sets
// the zero flag. Division and modulo truncate toward zero; all results wrap
// modulo 2^32 on the signed interpretation.
func (dp *DataPath) ExecuteALU(op ALUOp) error {
	left, right := int64(dp.aluLeft), int64(dp.aluRight)

	var result int64

	switch op {
	case OpINC:
		result = left + 1
	case OpDEC:
		result = left - 1
	case OpADD:
		result = left + right
	case OpSUB:
		result = left - right
	case OpMUL:
		result = left * right
	case OpDIV:
		if right == 0 {
			return &ArithError{Op: "div"}
		}

		result = left / right // Go's / truncates toward zero for integers.
	case OpMOD:
		if right == 0 {
			return &ArithError{Op: "mod"}
		}

		result = left % right // Go's % truncates toward zero, matching the dividend's sign.
	case OpCMP:
		result = left - right
	case OpLEFT:
		result = left
	case OpRIGHT:
		result = right
	case OpNOP:
		result = int64(dp.bus)
	}

	dp.bus = wrap32(result)
	dp.zeroFlag = dp.bus == 0

	return nil
}

func wrap32(v int64) int32 {
	return int32(uint32(v))
}

// BusValue returns the ALU's current output bus, for callers (address
// resolution in ops.go) that need the result of an ExecuteALU pass-through
// without committing it to a register yet.
func (dp *DataPath) BusValue() int32 {
	return dp.bus
}

// LatchOutput commits the current bus value to the selected output
// register, or to PC when the control unit is driving a jump.
func (dp *DataPath) LatchOutput(toPC bool) {
	if toPC {
		dp.Registers[isa.PC] = dp.bus
	} else {
		dp.Write(dp.selOut, dp.bus)
	}
}

// ReadMemory loads data_memory[bus] onto the bus.
func (dp *DataPath) ReadMemory() error {
	if dp.bus < 0 || int(dp.bus) >= len(dp.Memory) {
		return &MemoryError{Addr: dp.bus, Space: "data"}
	}

	dp.bus = dp.Memory[dp.bus]

	return nil
}

// WriteMemory stores value into data_memory[bus], where bus holds the
// address latched by a prior ExecuteALU.
func (dp *DataPath) WriteMemory(value int32) error {
	if dp.bus < 0 || int(dp.bus) >= len(dp.Memory) {
		return &MemoryError{Addr: dp.bus, Space: "data"}
	}

	dp.Memory[dp.bus] = value

	return nil
}

// ReadMemoryAt is a direct-addressed read used by stack and interrupt
// micro-ops, which do not flow through the ALU bus.
func (dp *DataPath) ReadMemoryAt(addr int32) (int32, error) {
	if addr < 0 || int(addr) >= len(dp.Memory) {
		return 0, &MemoryError{Addr: addr, Space: "data"}
	}

	return dp.Memory[addr], nil
}

// WriteMemoryAt is a direct-addressed write used by stack and interrupt
// micro-ops.
func (dp *DataPath) WriteMemoryAt(addr int32, value int32) error {
	if addr < 0 || int(addr) >= len(dp.Memory) {
		return &MemoryError{Addr: addr, Space: "data"}
	}

	dp.Memory[addr] = value

	return nil
}

// PushStack decrements SP and writes w to data_memory[SP], mirroring the
// teacher's LC3.PushStack.
func (dp *DataPath) PushStack(w int32) error {
	dp.Write(isa.SP, dp.Read(isa.SP)-1)
	return dp.WriteMemoryAt(dp.Read(isa.SP), w)
}

// PopStack reads data_memory[SP] and then increments SP, mirroring the
// teacher's LC3.PopStack: the read address is the pre-increment SP, so a
// push/pop pair is always balanced.
func (dp *DataPath) PopStack() (int32, error) {
	addr := dp.Read(isa.SP)

	val, err := dp.ReadMemoryAt(addr)
	if err != nil {
		return 0, err
	}

	dp.Write(isa.SP, addr+1)

	return val, nil
}

// InputFromDevice places a device-delivered codepoint onto the bus.
func (dp *DataPath) InputFromDevice(char int32) {
	dp.bus = char
}

// PrintToDevice appends the low 21 bits of the bus, interpreted as a Unicode
// codepoint, to the output buffer.
func (dp *DataPath) PrintToDevice() {
	dp.Output.WriteRune(rune(dp.bus & 0x1fffff))
}

// PendingAt reports the next undelivered schedule entry whose tick has
// arrived, without consuming it.
func (dp *DataPath) PendingAt(tick int) (rune, bool) {
	if dp.cursor >= len(dp.schedule) {
		return 0, false
	}

	entry := dp.schedule[dp.cursor]
	if entry.Tick > tick {
		return 0, false
	}

	return entry.Char, true
}

// Enqueue appends a schedule entry for live input, such as a monitor
// forwarding keystrokes as they arrive. The caller is responsible for using
// a tick no earlier than any previously enqueued entry.
func (dp *DataPath) Enqueue(tick int, char rune) {
	dp.schedule = append(dp.schedule, ScheduleEntry{Tick: tick, Char: char})
}

// Deliver consumes the next schedule entry and latches its character for
// the next `in` instruction.
func (dp *DataPath) Deliver() {
	char := dp.schedule[dp.cursor].Char
	dp.cursor++
	v := int32(char)
	dp.latched = &v
}

// TakeLatched empties and returns the interrupt-delivered character latch.
func (dp *DataPath) TakeLatched() (int32, bool) {
	if dp.latched == nil {
		return 0, false
	}

	v := *dp.latched
	dp.latched = nil

	return v, true
}
