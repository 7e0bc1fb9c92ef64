// Package emu provides the SVM interpreter core.
package emu

import "fmt"

// StackUnit implements the word-oriented stack operations against the
// register file and memory. Words are 4 bytes, big-endian; the stack
// grows downward from the end of memory.
type StackUnit struct {
	regFile *RegFile
	memory  *Memory
}

// NewStackUnit creates a new StackUnit connected to the given register
// file and memory.
func NewStackUnit(regFile *RegFile, memory *Memory) *StackUnit {
	return &StackUnit{
		regFile: regFile,
		memory:  memory,
	}
}

// Push writes n big-endian at SP-4 and moves SP down.
func (s *StackUnit) Push(n int32) error {
	newSP := s.regFile.SP - 4
	if newSP < 0 {
		return fmt.Errorf("%w: push with SP=%d", ErrOutOfMemory, s.regFile.SP)
	}

	s.memory.WriteWord(newSP, uint32(n))
	s.regFile.SP = newSP
	return nil
}

// Pop reads the big-endian word at SP and moves SP up. The caller
// reinterprets the result as signed where needed.
func (s *StackUnit) Pop() (uint32, error) {
	if s.regFile.SP+4 > MemSize {
		return 0, fmt.Errorf("%w: pop with SP=%d", ErrStackEmpty, s.regFile.SP)
	}

	value := s.memory.ReadWord(s.regFile.SP)
	s.regFile.SP += 4
	return value, nil
}

// PopSigned pops a word and reinterprets it as a two's-complement value.
func (s *StackUnit) PopSigned() (int32, error) {
	value, err := s.Pop()
	return int32(value), err
}

// Peek reads the big-endian word at SP+off without moving SP.
func (s *StackUnit) Peek(off int32) (uint32, error) {
	addr := s.regFile.SP + off
	if addr < 0 || addr+4 > MemSize {
		return 0, fmt.Errorf("%w: peek at SP%+d", ErrStackEmpty, off)
	}

	return s.memory.ReadWord(addr), nil
}

// Drop implements the pop instruction: release off bytes of stack. A
// drop on an empty stack is a no-op; a drop past the end of memory
// clamps SP to MemSize.
func (s *StackUnit) Drop(off int32) error {
	if off%4 != 0 {
		return fmt.Errorf("%w: pop offset %d is not a multiple of four", ErrBadInstruction, off)
	}

	if s.regFile.SP == MemSize {
		return nil
	}

	newSP := s.regFile.SP + off
	if newSP > MemSize {
		newSP = MemSize
	}
	s.regFile.SP = newSP
	return nil
}

// Dup pushes a copy of the word at SP+off.
func (s *StackUnit) Dup(off int32) error {
	value, err := s.Peek(off)
	if err != nil {
		return err
	}

	return s.Push(int32(value))
}

// Swap exchanges the 4-byte windows at SP+from and SP+to. Both windows
// must lie inside the memory region.
func (s *StackUnit) Swap(from, to int32) error {
	addrFrom := s.regFile.SP + from
	addrTo := s.regFile.SP + to

	if addrFrom < 0 || addrFrom+4 > MemSize || addrTo < 0 || addrTo+4 > MemSize {
		return fmt.Errorf("%w: swap between %d and %d", ErrOutOfBounds, addrFrom, addrTo)
	}

	for i := int32(0); i < 4; i++ {
		a := s.memory.Read8(addrFrom + i)
		b := s.memory.Read8(addrTo + i)
		s.memory.Write8(addrFrom+i, b)
		s.memory.Write8(addrTo+i, a)
	}
	return nil
}
