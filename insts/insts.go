// Package insts provides SVM instruction definitions and decoding.
//
// This package implements decoding of 32-bit SVM instruction words into
// structured instruction representations. The primary opcode lives in
// bits 31..28; the misc, binary-arithmetic, and unary-arithmetic
// families carry a sub-opcode in bits 27..24. All immediate and offset
// fields are extracted and sign-extended here so handlers never touch
// the raw word.
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0xF0000005) // push 5
//	fmt.Printf("Op: %v, Imm: %d\n", inst.Op, inst.Imm)
package insts
