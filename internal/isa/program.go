package isa

// Program is the machine-code artifact produced by the translator and loaded
// by the model. Data[0:Device] is the interrupt vector table; the remaining
// cells hold declared words followed by zero-filled general memory.
type Program struct {
	Code []Instruction
	Data []int32
}
