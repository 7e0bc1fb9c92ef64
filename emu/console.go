// Package emu provides the SVM interpreter core.
package emu

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sarchlab/svm/insts"
)

// Console implements the machine's I/O instructions: input, stinput,
// print, stprint, dump, and debug. The reader and writer are injected
// so tests can drive them.
type Console struct {
	regFile *RegFile
	memory  *Memory
	stack   *StackUnit
	stdin   *bufio.Reader
	stdout  io.Writer
}

// NewConsole creates a console connected to the given machine state and
// standard streams.
func NewConsole(
	regFile *RegFile,
	memory *Memory,
	stack *StackUnit,
	stdin io.Reader,
	stdout io.Writer,
) *Console {
	return &Console{
		regFile: regFile,
		memory:  memory,
		stack:   stack,
		stdin:   bufio.NewReader(stdin),
		stdout:  stdout,
	}
}

// Input reads one line and pushes it as a signed word. A 0x prefix in
// the line selects hexadecimal, 0b selects binary, anything else is
// signed decimal.
func (c *Console) Input() error {
	line, err := c.readLine()
	if err != nil {
		return err
	}

	n, err := ParseWord(line)
	if err != nil {
		return err
	}

	return c.stack.Push(n)
}

// ParseWord parses a trimmed input line as a signed 32-bit word,
// honoring 0x/0X and 0b/0B prefixes.
func ParseWord(line string) (int32, error) {
	var value int64
	var err error

	switch {
	case strings.Contains(line, "0x"), strings.Contains(line, "0X"):
		value, err = strconv.ParseInt(afterPrefix(line, "0x", "0X"), 16, 32)
	case strings.Contains(line, "0b"), strings.Contains(line, "0B"):
		value, err = strconv.ParseInt(afterPrefix(line, "0b", "0B"), 2, 32)
	default:
		value, err = strconv.ParseInt(line, 10, 32)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadInput, line)
	}

	return int32(value), nil
}

// afterPrefix returns the text following the first occurrence of either
// prefix.
func afterPrefix(s, lower, upper string) string {
	i := strings.Index(s, lower)
	if i < 0 {
		i = strings.Index(s, upper)
	}
	return s[i+len(lower):]
}

// StInput reads a line, truncates it to max bytes, and pushes it using
// the tagged three-byte chunk encoding. Words are pushed deepest-first
// so the chunk holding the first characters ends up on top.
func (c *Console) StInput(max uint32) error {
	line, err := c.readLine()
	if err != nil {
		return err
	}
	if uint32(len(line)) > max {
		line = line[:max]
	}

	words := EncodeString(line)
	for i := len(words) - 1; i >= 0; i-- {
		if err := c.stack.Push(int32(words[i])); err != nil {
			return err
		}
	}
	return nil
}

// EncodeString packs s into chunk words in string order: three
// characters in the low bytes, bit 24 set while more chunks follow.
// The terminating chunk carries a zero flag; input whose length is a
// multiple of three gains an extra all-zero chunk.
func EncodeString(s string) []uint32 {
	var words []uint32
	var chunk uint32
	byteIndex := 0

	for i := 0; i < len(s); i++ {
		chunk |= uint32(s[i]) << (8 * byteIndex)
		byteIndex++
		if byteIndex == 3 {
			if i+1 < len(s) {
				chunk |= 1 << 24
			}
			words = append(words, chunk)
			chunk = 0
			byteIndex = 0
		}
	}
	if byteIndex != 3 {
		words = append(words, chunk)
	}

	return words
}

// Print peeks the signed word at SP+off and writes it in the requested
// format, newline-terminated. Hex, binary, and octal show the word's
// bit pattern.
func (c *Console) Print(off int32, format insts.Fmt) error {
	word, err := c.stack.Peek(off)
	if err != nil {
		return err
	}

	switch format {
	case insts.FmtDec:
		fmt.Fprintf(c.stdout, "%d\n", int32(word))
	case insts.FmtHex:
		fmt.Fprintf(c.stdout, "0x%x\n", word)
	case insts.FmtBin:
		fmt.Fprintf(c.stdout, "0b%b\n", word)
	case insts.FmtOct:
		fmt.Fprintf(c.stdout, "0o%o\n", word)
	default:
		return fmt.Errorf("%w: print format %d", ErrBadFormat, format)
	}
	return nil
}

// StPrint walks chunk words forward from SP+off and writes their
// payload bytes in string order. A zero payload byte or a clear
// continuation flag ends the string. No newline is appended.
func (c *Console) StPrint(off int32) error {
	addr := c.regFile.SP + off
	if addr < 0 || addr >= MemSize {
		return fmt.Errorf("%w: stprint at %d", ErrOutOfBounds, addr)
	}

	var out []byte
	for ; addr+4 <= MemSize; addr += 4 {
		word := c.memory.ReadWord(addr)

		done := word>>24 == 0
		for shift := uint(0); shift < 24; shift += 8 {
			ch := byte(word >> shift)
			if ch == 0 {
				done = true
				break
			}
			out = append(out, ch)
		}
		if done {
			break
		}
	}

	_, err := c.stdout.Write(out)
	return err
}

// Dump prints one line per stack word from SP to the end of memory. An
// empty stack prints nothing.
func (c *Console) Dump() {
	for addr := c.regFile.SP; addr+4 <= MemSize; addr += 4 {
		fmt.Fprintf(c.stdout, "%04x: %08x\n", addr, c.memory.ReadWord(addr))
	}
}

// Debug dumps the whole memory image, sixteen bytes per line, followed
// by the SP and PC registers. No machine state changes.
func (c *Console) Debug() {
	for i := int32(0); i < MemSize; i++ {
		if i%16 == 0 {
			if i != 0 {
				fmt.Fprintln(c.stdout)
			}
			fmt.Fprintf(c.stdout, " %04x | ", i)
		}
		fmt.Fprintf(c.stdout, "  %02x", c.memory.Read8(i))
	}
	fmt.Fprintln(c.stdout)
	fmt.Fprintf(c.stdout, " - stack pointer:   %d\n", c.regFile.SP)
	fmt.Fprintf(c.stdout, " - program counter: %d\n", c.regFile.PC)
}

// readLine reads one line from standard input without the trailing
// newline and trims surrounding whitespace. End of input yields an
// empty line.
func (c *Console) readLine() (string, error) {
	line, err := c.stdin.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("%w: %v", ErrBadInput, err)
	}
	return strings.TrimSpace(line), nil
}
