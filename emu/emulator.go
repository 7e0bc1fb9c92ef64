// Package emu provides the SVM interpreter core.
package emu

import (
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/svm/insts"
)

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Exited is true if the program halted via the exit instruction.
	Exited bool

	// ExitCode is the exit payload if Exited is true.
	ExitCode int32

	// Err is set if an error occurred during execution.
	Err error
}

// Emulator executes SVM bytecode. It owns the 4 KiB memory region, the
// register file, and the functional units; the fetch/decode/execute
// loop advances PC by 4 after every instruction, which is why control
// transfers pre-subtract 4 from their targets.
type Emulator struct {
	regFile *RegFile
	memory  *Memory
	decoder *insts.Decoder

	// Execution units
	stack      *StackUnit
	alu        *ALU
	branchUnit *BranchUnit
	console    *Console

	// I/O
	stdin  io.Reader
	stdout io.Writer

	// Execution state
	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithStdin sets a custom stdin reader for the input instructions.
func WithStdin(r io.Reader) EmulatorOption {
	return func(e *Emulator) {
		e.stdin = r
	}
}

// WithStdout sets a custom stdout writer.
func WithStdout(w io.Writer) EmulatorOption {
	return func(e *Emulator) {
		e.stdout = w
	}
}

// WithMaxInstructions sets the maximum number of instructions to
// execute. A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// NewEmulator creates a new SVM emulator with an empty memory image.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		regFile: NewRegFile(),
		memory:  NewMemory(),
		decoder: insts.NewDecoder(),
		stdin:   os.Stdin,
		stdout:  os.Stdout,
	}

	// Apply options first (may set stdin/stdout)
	for _, opt := range opts {
		opt(e)
	}

	// Create execution units
	e.stack = NewStackUnit(e.regFile, e.memory)
	e.alu = NewALU(e.stack)
	e.branchUnit = NewBranchUnit(e.regFile, e.stack)
	e.console = NewConsole(e.regFile, e.memory, e.stack, e.stdin, e.stdout)

	return e
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Memory returns the emulator's memory.
func (e *Emulator) Memory() *Memory {
	return e.memory
}

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// LoadImage copies a 4 KiB program image into memory. Execution starts
// at address zero with an empty stack.
func (e *Emulator) LoadImage(image []byte) {
	e.memory.LoadImage(image)
}

// Step executes a single instruction.
// Returns a StepResult indicating whether execution should continue.
func (e *Emulator) Step() StepResult {
	// Check instruction limit before executing
	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		return StepResult{
			Err: fmt.Errorf("max instructions reached"),
		}
	}

	// 1. Fetch: read the little-endian word at PC
	word, err := e.memory.FetchInst(e.regFile.PC)
	if err != nil {
		return StepResult{Err: err}
	}

	// 2. Decode
	inst := e.decoder.Decode(word)

	// 3. Execute
	if err := e.execute(inst); err != nil {
		return StepResult{Err: err}
	}

	e.instructionCount++

	// 4. Advance PC; control transfers have already compensated
	e.regFile.PC += 4

	if e.regFile.Halted {
		return StepResult{
			Exited:   true,
			ExitCode: e.regFile.ExitCode,
		}
	}
	return StepResult{}
}

// Run executes instructions until the program halts or an error occurs.
// On a clean halt it returns the exit instruction's payload.
func (e *Emulator) Run() (int32, error) {
	for {
		result := e.Step()
		if result.Exited {
			return result.ExitCode, nil
		}
		if result.Err != nil {
			return 1, result.Err
		}
	}
}

// execute dispatches a decoded instruction to its functional unit.
func (e *Emulator) execute(inst *insts.Instruction) error {
	switch inst.Op {
	case insts.OpMisc:
		return e.executeMisc(inst)
	case insts.OpPop:
		return e.stack.Drop(inst.Offset)
	case insts.OpBinary:
		return e.alu.Binary(inst.Bin)
	case insts.OpUnary:
		return e.alu.Unary(inst.Un)
	case insts.OpStPrint:
		return e.console.StPrint(inst.Offset)
	case insts.OpCall:
		return e.branchUnit.Call(inst.Offset)
	case insts.OpRet:
		return e.branchUnit.Ret(inst.Offset)
	case insts.OpGoto:
		e.branchUnit.Goto(inst.Offset)
		return nil
	case insts.OpBinaryIf:
		return e.branchUnit.BinaryIf(inst.BinCond, inst.Offset)
	case insts.OpUnaryIf:
		return e.branchUnit.UnaryIf(inst.UnCond, inst.Offset)
	case insts.OpDup:
		return e.stack.Dup(inst.Offset)
	case insts.OpPrint:
		return e.console.Print(inst.Offset, inst.Fmt)
	case insts.OpDump:
		e.console.Dump()
		return nil
	case insts.OpPush:
		return e.stack.Push(inst.Imm)
	default:
		return fmt.Errorf("%w: opcode %d at PC=%d",
			ErrBadInstruction, inst.Raw>>28, e.regFile.PC)
	}
}

// executeMisc dispatches the misc family.
func (e *Emulator) executeMisc(inst *insts.Instruction) error {
	switch inst.Misc {
	case insts.MiscExit:
		e.regFile.ExitCode = inst.ExitCode
		e.regFile.Halted = true
		return nil
	case insts.MiscSwap:
		return e.stack.Swap(inst.From, inst.To)
	case insts.MiscNop:
		return nil
	case insts.MiscInput:
		return e.console.Input()
	case insts.MiscStInput:
		return e.console.StInput(inst.Max)
	case insts.MiscDebug:
		e.console.Debug()
		return nil
	default:
		return fmt.Errorf("%w: misc sub-opcode %d at PC=%d",
			ErrBadInstruction, (inst.Raw>>24)&0xF, e.regFile.PC)
	}
}
