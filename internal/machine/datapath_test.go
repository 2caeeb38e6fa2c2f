package machine

import (
	"errors"
	"testing"

	"github.com/mlatimer/cisc3/internal/isa"
)

func TestDataPathR0Discipline(t *testing.T) {
	t.Parallel()

	dp := NewDataPath(make([]int32, 4), nil)

	dp.Write(isa.R0, 99)
	if got := dp.Read(isa.R0); got != 0 {
		t.Errorf("Read(R0) = %d, want 0", got)
	}

	dp.Write(isa.R1, 7)
	if got := dp.Read(isa.R1); got != 7 {
		t.Errorf("Read(R1) = %d, want 7", got)
	}
}

func TestExecuteALUArithmetic(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name       string
		op         ALUOp
		left       int32
		right      int32
		want       int32
		wantZero   bool
	}{
		{"add", OpADD, 2, 3, 5, false},
		{"sub-to-zero", OpSUB, 4, 4, 0, true},
		{"mul", OpMUL, 6, 7, 42, false},
		{"div-truncates", OpDIV, -7, 2, -3, false},
		{"mod-truncates", OpMOD, -7, 2, -1, false},
		{"cmp-equal", OpCMP, 5, 5, 0, true},
		{"overflow-wraps", OpADD, 2147483647, 1, -2147483648, false},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			dp := NewDataPath(nil, nil)
			dp.SelectOperands(isa.R1, isa.R2, isa.R3)
			dp.Write(isa.R1, tc.left)
			dp.Write(isa.R2, tc.right)
			dp.SelectOperands(isa.R1, isa.R2, isa.R3)

			if err := dp.ExecuteALU(tc.op); err != nil {
				t.Fatalf("ExecuteALU: %v", err)
			}

			dp.LatchOutput(false)

			if got := dp.Read(isa.R3); got != tc.want {
				t.Errorf("result = %d, want %d", got, tc.want)
			}

			if dp.zeroFlag != tc.wantZero {
				t.Errorf("zeroFlag = %t, want %t", dp.zeroFlag, tc.wantZero)
			}
		})
	}
}

func TestExecuteALUDivByZero(t *testing.T) {
	t.Parallel()

	dp := NewDataPath(nil, nil)
	dp.Write(isa.R1, 10)
	dp.SelectOperands(isa.R1, isa.R2, isa.R3) // R2 defaults to 0

	var ae *ArithError
	if err := dp.ExecuteALU(OpDIV); !errors.As(err, &ae) {
		t.Fatalf("ExecuteALU(div): err = %v, want *ArithError", err)
	}
}

func TestExecuteALUModByZero(t *testing.T) {
	t.Parallel()

	dp := NewDataPath(nil, nil)
	dp.Write(isa.R1, 10)
	dp.SelectOperands(isa.R1, isa.R2, isa.R3)

	var ae *ArithError
	if err := dp.ExecuteALU(OpMOD); !errors.As(err, &ae) {
		t.Fatalf("ExecuteALU(mod): err = %v, want *ArithError", err)
	}
}

func TestLatchOutputToPC(t *testing.T) {
	t.Parallel()

	dp := NewDataPath(nil, nil)
	dp.Write(isa.R1, 55)
	dp.SelectOperands(isa.R1, isa.R0, isa.R0)

	if err := dp.ExecuteALU(OpLEFT); err != nil {
		t.Fatalf("ExecuteALU: %v", err)
	}

	dp.LatchOutput(true)

	if got := dp.Registers[isa.PC]; got != 55 {
		t.Errorf("PC = %d, want 55", got)
	}
}

func TestMemoryBounds(t *testing.T) {
	t.Parallel()

	dp := NewDataPath(make([]int32, 4), nil)

	dp.Write(isa.R1, 10) // out of range
	dp.SelectOperands(isa.R0, isa.R1, isa.R0)

	if err := dp.ExecuteALU(OpRIGHT); err != nil {
		t.Fatalf("ExecuteALU: %v", err)
	}

	var me *MemoryError
	if err := dp.ReadMemory(); !errors.As(err, &me) {
		t.Fatalf("ReadMemory: err = %v, want *MemoryError", err)
	}

	if err := dp.WriteMemory(1); !errors.As(err, &me) {
		t.Fatalf("WriteMemory: err = %v, want *MemoryError", err)
	}

	if _, err := dp.ReadMemoryAt(-1); !errors.As(err, &me) {
		t.Fatalf("ReadMemoryAt(-1): err = %v, want *MemoryError", err)
	}

	if err := dp.WriteMemoryAt(4, 1); !errors.As(err, &me) {
		t.Fatalf("WriteMemoryAt(4): err = %v, want *MemoryError", err)
	}
}

func TestPushPopStackBalanced(t *testing.T) {
	t.Parallel()

	dp := NewDataPath(make([]int32, 8), nil)
	dp.Write(isa.SP, 8)

	if err := dp.PushStack(42); err != nil {
		t.Fatalf("PushStack: %v", err)
	}

	if got := dp.Read(isa.SP); got != 7 {
		t.Errorf("SP after push = %d, want 7", got)
	}

	val, err := dp.PopStack()
	if err != nil {
		t.Fatalf("PopStack: %v", err)
	}

	if val != 42 {
		t.Errorf("PopStack = %d, want 42", val)
	}

	if got := dp.Read(isa.SP); got != 8 {
		t.Errorf("SP after pop = %d, want 8", got)
	}
}

func TestPendingAtAndDeliverAndEnqueue(t *testing.T) {
	t.Parallel()

	dp := NewDataPath(nil, []ScheduleEntry{{Tick: 5, Char: 'x'}})

	if _, ok := dp.PendingAt(4); ok {
		t.Error("PendingAt(4) = true, want false before scheduled tick")
	}

	char, ok := dp.PendingAt(5)
	if !ok || char != 'x' {
		t.Fatalf("PendingAt(5) = %q, %t, want 'x', true", char, ok)
	}

	dp.Enqueue(10, 'y')

	dp.Deliver() // consumes the tick-5 entry
	if _, ok := dp.TakeLatched(); !ok {
		t.Fatal("TakeLatched: want a value after Deliver")
	}

	if _, ok := dp.TakeLatched(); ok {
		t.Error("TakeLatched: want empty after first take")
	}

	char, ok = dp.PendingAt(10)
	if !ok || char != 'y' {
		t.Fatalf("PendingAt(10) = %q, %t, want 'y', true (enqueued entry)", char, ok)
	}
}

func TestPrintToDevice(t *testing.T) {
	t.Parallel()

	dp := NewDataPath(nil, nil)
	dp.Write(isa.R1, int32('h'))
	dp.SelectOperands(isa.R1, isa.R0, isa.R0)

	if err := dp.ExecuteALU(OpLEFT); err != nil {
		t.Fatalf("ExecuteALU: %v", err)
	}

	dp.PrintToDevice()

	if got := dp.Output.String(); got != "h" {
		t.Errorf("Output = %q, want %q", got, "h")
	}
}
