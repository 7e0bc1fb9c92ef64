// Package insts provides SVM instruction definitions and decoding.
package insts

// Op represents a primary opcode (bits 31..28 of an instruction word).
type Op uint8

// Primary opcodes. Values 10 and 11 are unassigned and decode to
// OpUnknown.
const (
	OpMisc     Op = 0  // sub-opcode in bits 27..24
	OpPop      Op = 1  // 28-bit unsigned byte offset
	OpBinary   Op = 2  // sub-opcode in bits 27..24
	OpUnary    Op = 3  // sub-opcode in bits 27..24
	OpStPrint  Op = 4  // 28-bit signed offset from SP
	OpCall     Op = 5  // 26-bit signed word offset in bits 27..2
	OpRet      Op = 6  // 28-bit unsigned byte offset, low 2 bits zero
	OpGoto     Op = 7  // 26-bit signed word offset in bits 27..2
	OpBinaryIf Op = 8  // 3-bit condition in bits 27..25, 25-bit signed byte offset
	OpUnaryIf  Op = 9  // 2-bit condition in bits 26..25, 25-bit signed byte offset
	OpDup      Op = 12 // 28-bit signed byte offset
	OpPrint    Op = 13 // 2-bit format in bits 1..0, 26-bit signed word offset in bits 27..2
	OpDump     Op = 14 // no operand
	OpPush     Op = 15 // 28-bit signed immediate

	OpUnknown Op = 0xFF
)

// MiscOp represents a sub-opcode of the misc family (primary opcode 0).
type MiscOp uint8

// Misc sub-opcodes.
const (
	MiscExit    MiscOp = 0
	MiscSwap    MiscOp = 1
	MiscNop     MiscOp = 2
	MiscInput   MiscOp = 4
	MiscStInput MiscOp = 5
	MiscDebug   MiscOp = 15

	MiscUnknown MiscOp = 0xFF
)

// BinaryOp represents a sub-opcode of the binary arithmetic family
// (primary opcode 2). Value 10 is unassigned.
type BinaryOp uint8

// Binary arithmetic sub-opcodes.
const (
	BinAdd BinaryOp = 0
	BinSub BinaryOp = 1
	BinMul BinaryOp = 2
	BinDiv BinaryOp = 3
	BinRem BinaryOp = 4
	BinAnd BinaryOp = 5
	BinOr  BinaryOp = 6
	BinXor BinaryOp = 7
	BinLsl BinaryOp = 8
	BinLsr BinaryOp = 9
	BinAsr BinaryOp = 11

	BinUnknown BinaryOp = 0xFF
)

// UnaryOp represents a sub-opcode of the unary arithmetic family
// (primary opcode 3).
type UnaryOp uint8

// Unary arithmetic sub-opcodes.
const (
	UnaryNeg UnaryOp = 0
	UnaryNot UnaryOp = 1

	UnaryUnknown UnaryOp = 0xFF
)

// BinaryCond represents a binary-if condition (bits 27..25). Values 6
// and 7 are unassigned and rejected at execution time.
type BinaryCond uint8

// Binary-if conditions, comparing the word at SP+4 against the word at
// SP+0.
const (
	CondEq BinaryCond = 0 // lhs == rhs
	CondNe BinaryCond = 1 // lhs != rhs
	CondLt BinaryCond = 2 // lhs < rhs
	CondGt BinaryCond = 3 // lhs > rhs
	CondLe BinaryCond = 4 // lhs <= rhs
	CondGe BinaryCond = 5 // lhs >= rhs
)

// UnaryCond represents a unary-if condition (bits 26..25), testing the
// word at SP+0.
type UnaryCond uint8

// Unary-if conditions.
const (
	CondZero     UnaryCond = 0 // operand == 0
	CondNonZero  UnaryCond = 1 // operand != 0
	CondNegative UnaryCond = 2 // operand < 0
	CondPositive UnaryCond = 3 // operand > 0
)

// Fmt represents a print output format (bits 1..0 of the print word).
type Fmt uint8

// Print formats.
const (
	FmtDec Fmt = 0 // decimal
	FmtHex Fmt = 1 // 0x-prefixed lowercase hexadecimal
	FmtBin Fmt = 2 // 0b-prefixed binary
	FmtOct Fmt = 3 // 0o-prefixed octal
)

// Instruction represents a decoded SVM instruction. Only the fields
// belonging to the decoded opcode are populated.
type Instruction struct {
	Op   Op
	Raw  uint32 // the undecoded instruction word
	Misc MiscOp // sub-opcode for OpMisc
	Bin  BinaryOp
	Un   UnaryOp

	// Imm is the sign-extended push immediate.
	Imm int32

	// Offset is the byte displacement of pop, stprint, call, ret, goto,
	// binary-if, unary-if, dup, and print. Word-offset fields (call,
	// goto, print) are already scaled by 4.
	Offset int32

	BinCond BinaryCond // condition for OpBinaryIf
	UnCond  UnaryCond  // condition for OpUnaryIf
	Fmt     Fmt        // output format for OpPrint

	// Max is the stinput byte budget (bits 23..0, unsigned).
	Max uint32

	// From and To are the swap byte offsets from SP, already scaled by 4.
	From int32
	To   int32

	// ExitCode is the exit payload: the whole instruction word
	// reinterpreted as signed.
	ExitCode int32
}

// Decoder decodes SVM machine words into instructions.
type Decoder struct{}

// NewDecoder creates a new SVM instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 32-bit SVM instruction word. Unassigned primary
// opcodes yield OpUnknown; unassigned sub-opcodes yield the family's
// unknown marker.
func (d *Decoder) Decode(word uint32) *Instruction {
	inst := &Instruction{Op: OpUnknown, Raw: word}

	switch Op(word >> 28) {
	case OpMisc:
		d.decodeMisc(word, inst)
	case OpPop:
		inst.Op = OpPop
		inst.Offset = int32(word & 0x0FFFFFFF)
	case OpBinary:
		d.decodeBinary(word, inst)
	case OpUnary:
		d.decodeUnary(word, inst)
	case OpStPrint:
		inst.Op = OpStPrint
		inst.Offset = signExtend(word&0x0FFFFFFF, 28)
	case OpCall:
		inst.Op = OpCall
		inst.Offset = wordOffset(word)
	case OpRet:
		inst.Op = OpRet
		inst.Offset = int32(word & 0x0FFFFFFC)
	case OpGoto:
		inst.Op = OpGoto
		inst.Offset = wordOffset(word)
	case OpBinaryIf:
		inst.Op = OpBinaryIf
		inst.BinCond = BinaryCond((word >> 25) & 0x7)
		inst.Offset = signExtend(word&0x1FFFFFF, 25)
	case OpUnaryIf:
		inst.Op = OpUnaryIf
		inst.UnCond = UnaryCond((word >> 25) & 0x3)
		inst.Offset = signExtend(word&0x1FFFFFF, 25)
	case OpDup:
		inst.Op = OpDup
		inst.Offset = signExtend(word&0x0FFFFFFF, 28)
	case OpPrint:
		inst.Op = OpPrint
		inst.Fmt = Fmt(word & 0x3)
		inst.Offset = wordOffset(word)
	case OpDump:
		inst.Op = OpDump
	case OpPush:
		inst.Op = OpPush
		inst.Imm = signExtend(word&0x0FFFFFFF, 28)
	}

	return inst
}

// decodeMisc decodes the misc family: exit, swap, nop, input, stinput,
// and debug.
func (d *Decoder) decodeMisc(word uint32, inst *Instruction) {
	inst.Op = OpMisc
	inst.Misc = MiscUnknown

	switch MiscOp((word >> 24) & 0xF) {
	case MiscExit:
		inst.Misc = MiscExit
		inst.ExitCode = int32(word)
	case MiscSwap:
		inst.Misc = MiscSwap
		inst.From = signExtend((word>>12)&0xFFF, 12) << 2
		inst.To = signExtend(word&0xFFF, 12) << 2
	case MiscNop:
		inst.Misc = MiscNop
	case MiscInput:
		inst.Misc = MiscInput
	case MiscStInput:
		inst.Misc = MiscStInput
		inst.Max = word & 0xFFFFFF
	case MiscDebug:
		inst.Misc = MiscDebug
	}
}

// decodeBinary decodes the binary arithmetic family.
func (d *Decoder) decodeBinary(word uint32, inst *Instruction) {
	inst.Op = OpBinary
	inst.Bin = BinUnknown

	sub := BinaryOp((word >> 24) & 0xF)
	switch sub {
	case BinAdd, BinSub, BinMul, BinDiv, BinRem,
		BinAnd, BinOr, BinXor, BinLsl, BinLsr, BinAsr:
		inst.Bin = sub
	}
}

// decodeUnary decodes the unary arithmetic family.
func (d *Decoder) decodeUnary(word uint32, inst *Instruction) {
	inst.Op = OpUnary
	inst.Un = UnaryUnknown

	sub := UnaryOp((word >> 24) & 0xF)
	switch sub {
	case UnaryNeg, UnaryNot:
		inst.Un = sub
	}
}

// wordOffset extracts the 26-bit signed word offset in bits 27..2 and
// scales it to bytes.
func wordOffset(word uint32) int32 {
	return signExtend((word>>2)&0x3FFFFFF, 26) << 2
}

// signExtend interprets the low width bits of v as a two's-complement
// value and widens it to 32 bits.
func signExtend(v uint32, width uint) int32 {
	shift := 32 - width
	return int32(v<<shift) >> shift
}
