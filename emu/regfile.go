// Package emu provides the SVM interpreter core.
package emu

// RegFile represents the SVM register file: the stack pointer, the
// program counter, the latched exit code, and the halt flag. SP and PC
// are signed byte offsets into memory.
type RegFile struct {
	// SP is the stack pointer. SP == MemSize means the stack is empty;
	// SP == 0 means it is full.
	SP int32

	// PC is the program counter.
	PC int32

	// ExitCode is the payload of the last exit instruction.
	ExitCode int32

	// Halted is set by the exit instruction and ends the run.
	Halted bool
}

// NewRegFile returns a register file in the reset state: empty stack,
// execution starting at address zero.
func NewRegFile() *RegFile {
	return &RegFile{SP: MemSize}
}
