// Package emu provides the SVM interpreter core.
package emu

import (
	"fmt"

	"github.com/sarchlab/svm/insts"
)

// BranchUnit implements control transfer: call, ret, goto, and the two
// conditional branch families. Computed targets pre-subtract 4 to
// compensate for the execution loop's post-increment.
type BranchUnit struct {
	regFile *RegFile
	stack   *StackUnit
}

// NewBranchUnit creates a new BranchUnit connected to the given
// register file and stack unit.
func NewBranchUnit(regFile *RegFile, stack *StackUnit) *BranchUnit {
	return &BranchUnit{
		regFile: regFile,
		stack:   stack,
	}
}

// Call pushes the return address (the instruction after the call) and
// transfers to PC+offset.
func (b *BranchUnit) Call(offset int32) error {
	if err := b.stack.Push(b.regFile.PC + 4); err != nil {
		return err
	}

	b.regFile.PC += offset - 4
	return nil
}

// Ret frees frame bytes of stack, then pops the return address and
// transfers there.
func (b *BranchUnit) Ret(frame int32) error {
	b.regFile.SP += frame

	returnAddr, err := b.stack.PopSigned()
	if err != nil {
		return err
	}

	b.regFile.PC = returnAddr - 4
	return nil
}

// Goto transfers to PC+offset unconditionally.
func (b *BranchUnit) Goto(offset int32) {
	b.regFile.PC += offset - 4
}

// BinaryIf branches by offset bytes when the word at SP+4 compares to
// the word at SP+0 under cond. Operands are peeked, never popped; an
// unreadable operand compares as zero.
func (b *BranchUnit) BinaryIf(cond insts.BinaryCond, offset int32) error {
	lhs := int32(b.peekOrZero(4))
	rhs := int32(b.peekOrZero(0))

	var taken bool
	switch cond {
	case insts.CondEq:
		taken = lhs == rhs
	case insts.CondNe:
		taken = lhs != rhs
	case insts.CondLt:
		taken = lhs < rhs
	case insts.CondGt:
		taken = lhs > rhs
	case insts.CondLe:
		taken = lhs <= rhs
	case insts.CondGe:
		taken = lhs >= rhs
	default:
		return fmt.Errorf("%w: binary-if condition %d", ErrBadInstruction, cond)
	}

	if taken {
		b.regFile.PC += offset - 4
	}
	return nil
}

// UnaryIf branches by offset bytes when the word at SP+0 satisfies
// cond. The operand is peeked, never popped.
func (b *BranchUnit) UnaryIf(cond insts.UnaryCond, offset int32) error {
	word, err := b.stack.Peek(0)
	if err != nil {
		return err
	}
	operand := int32(word)

	var taken bool
	switch cond {
	case insts.CondZero:
		taken = operand == 0
	case insts.CondNonZero:
		taken = operand != 0
	case insts.CondNegative:
		taken = operand < 0
	case insts.CondPositive:
		taken = operand > 0
	default:
		return fmt.Errorf("%w: unary-if condition %d", ErrBadInstruction, cond)
	}

	if taken {
		b.regFile.PC += offset - 4
	}
	return nil
}

func (b *BranchUnit) peekOrZero(off int32) uint32 {
	value, err := b.stack.Peek(off)
	if err != nil {
		return 0
	}
	return value
}
