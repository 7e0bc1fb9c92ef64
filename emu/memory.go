// Package emu provides the SVM interpreter core.
package emu

import (
	"encoding/binary"
	"fmt"
)

// MemSize is the size of the unified code/stack address space in bytes.
const MemSize = 4096

// Memory is the flat byte-addressable region shared by code and stack.
// Instruction words are stored little-endian at increasing addresses;
// data words moved through the stack are stored big-endian. The two
// byte orders are part of the machine contract and must not be unified.
type Memory struct {
	data [MemSize]byte
}

// NewMemory creates a zeroed memory region.
func NewMemory() *Memory {
	return &Memory{}
}

// LoadImage copies a program image into the low end of memory. The
// remainder stays zero.
func (m *Memory) LoadImage(image []byte) {
	copy(m.data[:], image)
}

// Read8 reads the byte at addr.
func (m *Memory) Read8(addr int32) byte {
	return m.data[addr]
}

// Write8 writes a byte at addr.
func (m *Memory) Write8(addr int32, value byte) {
	m.data[addr] = value
}

// FetchInst reads the instruction word at pc, little-endian. A program
// counter outside the memory region is a fatal error: the execution
// state is corrupted and the run aborts.
func (m *Memory) FetchInst(pc int32) (uint32, error) {
	if pc < 0 || pc+4 > MemSize {
		return 0, fmt.Errorf("%w: PC=%d", ErrFatal, pc)
	}
	return binary.LittleEndian.Uint32(m.data[pc : pc+4]), nil
}

// ReadWord reads the big-endian data word at addr. The caller is
// responsible for keeping addr..addr+4 inside the region.
func (m *Memory) ReadWord(addr int32) uint32 {
	return binary.BigEndian.Uint32(m.data[addr : addr+4])
}

// WriteWord writes a big-endian data word at addr. The caller is
// responsible for keeping addr..addr+4 inside the region.
func (m *Memory) WriteWord(addr int32, value uint32) {
	binary.BigEndian.PutUint32(m.data[addr:addr+4], value)
}
