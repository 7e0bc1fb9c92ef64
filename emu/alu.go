// Package emu provides the SVM interpreter core.
package emu

import (
	"fmt"
	"math"

	"github.com/sarchlab/svm/insts"
)

// ALU implements the binary and unary arithmetic families. Operands are
// popped as signed words and results wrap two's-complement, matching
// fixed-width machine arithmetic.
type ALU struct {
	stack *StackUnit
}

// NewALU creates a new ALU connected to the given stack unit.
func NewALU(stack *StackUnit) *ALU {
	return &ALU{stack: stack}
}

// Binary pops the right operand, then the left, and pushes
// left <op> right.
func (a *ALU) Binary(op insts.BinaryOp) error {
	right, err := a.stack.PopSigned()
	if err != nil {
		return err
	}
	left, err := a.stack.PopSigned()
	if err != nil {
		return err
	}

	if (op == insts.BinDiv || op == insts.BinRem) && right == 0 {
		return fmt.Errorf("%w: %d %% 0", ErrDivideByZero, left)
	}

	// A negative shift count wraps modulo 32 via its unsigned
	// reinterpretation, so -1 shifts by 31.
	if isShift(op) && right < 0 {
		right = int32(uint32(right) % 32)
	}

	var result int32
	switch op {
	case insts.BinAdd:
		result = left + right
	case insts.BinSub:
		result = left - right
	case insts.BinMul:
		result = left * right
	case insts.BinDiv:
		result = quotient(left, right)
	case insts.BinRem:
		result = remainder(left, right)
	case insts.BinAnd:
		result = left & right
	case insts.BinOr:
		result = left | right
	case insts.BinXor:
		result = left ^ right
	case insts.BinLsl:
		result = left << uint32(right)
	case insts.BinLsr:
		result = int32(uint32(left) >> uint32(right))
	case insts.BinAsr:
		result = left >> uint32(right)
	default:
		return fmt.Errorf("%w: binary arithmetic sub-opcode %d", ErrBadInstruction, op)
	}

	return a.stack.Push(result)
}

// Unary pops one operand and pushes the negated or complemented value.
func (a *ALU) Unary(op insts.UnaryOp) error {
	operand, err := a.stack.PopSigned()
	if err != nil {
		return err
	}

	var result int32
	switch op {
	case insts.UnaryNeg:
		result = -operand
	case insts.UnaryNot:
		result = ^operand
	default:
		return fmt.Errorf("%w: unary arithmetic sub-opcode %d", ErrBadInstruction, op)
	}

	return a.stack.Push(result)
}

func isShift(op insts.BinaryOp) bool {
	return op == insts.BinLsl || op == insts.BinLsr || op == insts.BinAsr
}

// quotient divides with the MinInt32/-1 overflow wrapping to MinInt32.
func quotient(left, right int32) int32 {
	if left == math.MinInt32 && right == -1 {
		return left
	}
	return left / right
}

// remainder takes the remainder with the MinInt32/-1 case fixed at 0.
func remainder(left, right int32) int32 {
	if left == math.MinInt32 && right == -1 {
		return 0
	}
	return left % right
}
