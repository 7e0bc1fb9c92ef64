// Package emu provides the SVM interpreter core.
package emu

import "errors"

// Error kinds reported during execution. The first error ends the run;
// the machine never retries or recovers across instruction boundaries.
var (
	// ErrBadInstruction reports an unassigned primary opcode, sub-opcode,
	// or condition code.
	ErrBadInstruction = errors.New("bad instruction")

	// ErrDivideByZero reports a division or remainder with a zero divisor.
	ErrDivideByZero = errors.New("divide by zero")

	// ErrOutOfMemory reports a push that would move SP below zero.
	ErrOutOfMemory = errors.New("out of memory")

	// ErrStackEmpty reports a pop or peek past the top of the stack.
	ErrStackEmpty = errors.New("stack empty")

	// ErrOutOfBounds reports an address outside the memory region.
	ErrOutOfBounds = errors.New("address out of bounds")

	// ErrBadInput reports an input line that cannot be parsed.
	ErrBadInput = errors.New("bad input")

	// ErrBadFormat reports an unassigned print format code.
	ErrBadFormat = errors.New("bad print format")

	// ErrFatal reports a corrupted execution state: the program counter
	// left the memory region at fetch time.
	ErrFatal = errors.New("program counter out of range")
)
