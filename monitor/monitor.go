// Package monitor provides an interactive debugging console for the
// SVM emulator: single-stepping, register and memory inspection, and a
// stack view matching the dump instruction.
package monitor

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/sarchlab/svm/emu"
)

// commands lists the monitor command names, used for completion.
var commands = []string{"step", "regs", "mem", "stack", "cont", "quit"}

// Monitor drives an Emulator one command at a time.
type Monitor struct {
	emulator *emu.Emulator
	stdout   io.Writer
}

// New creates a monitor for the given emulator, writing to stdout.
func New(emulator *emu.Emulator, stdout io.Writer) *Monitor {
	return &Monitor{
		emulator: emulator,
		stdout:   stdout,
	}
}

// Run reads commands until the program halts, fails, or the user
// leaves. Returns the process exit status: the machine's exit code on
// a clean halt, 1 otherwise.
func (m *Monitor) Run() (int32, error) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(prefix string) []string {
		var matches []string
		for _, cmd := range commands {
			if strings.HasPrefix(cmd, prefix) {
				matches = append(matches, cmd)
			}
		}
		return matches
	})

	for {
		input, err := line.Prompt("svm> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return 1, nil
			}
			return 1, err
		}
		line.AppendHistory(input)

		done, code, err := m.Execute(input)
		if err != nil {
			return 1, err
		}
		if done {
			return code, nil
		}
	}
}

// Execute runs a single monitor command. done reports that the session
// should end, with code as the process exit status. A returned error
// is a machine error and also ends the session.
func (m *Monitor) Execute(input string) (done bool, code int32, err error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return false, 0, nil
	}

	switch fields[0] {
	case "step":
		return m.step(fields[1:])
	case "regs":
		m.regs()
	case "mem":
		m.mem(fields[1:])
	case "stack":
		m.stackView()
	case "cont":
		exitCode, err := m.emulator.Run()
		if err != nil {
			return false, 0, err
		}
		fmt.Fprintf(m.stdout, "halted with exit code %d\n", exitCode)
		return true, exitCode, nil
	case "quit":
		return true, 1, nil
	default:
		m.usage()
	}
	return false, 0, nil
}

// step executes one instruction, or n when given a count.
func (m *Monitor) step(args []string) (bool, int32, error) {
	n := 1
	if len(args) > 0 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil || parsed < 1 {
			fmt.Fprintf(m.stdout, "step: bad count %q\n", args[0])
			return false, 0, nil
		}
		n = parsed
	}

	for i := 0; i < n; i++ {
		result := m.emulator.Step()
		if result.Err != nil {
			return false, 0, result.Err
		}
		if result.Exited {
			fmt.Fprintf(m.stdout, "halted with exit code %d\n", result.ExitCode)
			return true, result.ExitCode, nil
		}
	}
	m.regs()
	return false, 0, nil
}

// regs prints the register file and the instruction counter.
func (m *Monitor) regs() {
	regFile := m.emulator.RegFile()
	fmt.Fprintf(m.stdout, "PC=%d SP=%d exit=%d halted=%v instructions=%d\n",
		regFile.PC, regFile.SP, regFile.ExitCode, regFile.Halted,
		m.emulator.InstructionCount())
}

// mem hex-dumps length bytes (default 16) starting at the given
// address. Addresses accept 0x prefixes.
func (m *Monitor) mem(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(m.stdout, "mem: missing address")
		return
	}

	addr, err := strconv.ParseInt(args[0], 0, 32)
	if err != nil {
		fmt.Fprintf(m.stdout, "mem: bad address %q\n", args[0])
		return
	}

	length := int64(16)
	if len(args) > 1 {
		length, err = strconv.ParseInt(args[1], 0, 32)
		if err != nil || length < 1 {
			fmt.Fprintf(m.stdout, "mem: bad length %q\n", args[1])
			return
		}
	}

	if addr < 0 || addr >= emu.MemSize {
		fmt.Fprintf(m.stdout, "mem: address %d out of range\n", addr)
		return
	}
	if addr+length > emu.MemSize {
		length = emu.MemSize - addr
	}

	memory := m.emulator.Memory()
	for i := int64(0); i < length; i++ {
		if i%16 == 0 {
			if i != 0 {
				fmt.Fprintln(m.stdout)
			}
			fmt.Fprintf(m.stdout, " %04x | ", addr+i)
		}
		fmt.Fprintf(m.stdout, "  %02x", memory.Read8(int32(addr+i)))
	}
	fmt.Fprintln(m.stdout)
}

// stackView prints the live stack, one word per line, the same view
// the dump instruction gives the program.
func (m *Monitor) stackView() {
	regFile := m.emulator.RegFile()
	memory := m.emulator.Memory()
	for addr := regFile.SP; addr+4 <= emu.MemSize; addr += 4 {
		fmt.Fprintf(m.stdout, "%04x: %08x\n", addr, memory.ReadWord(addr))
	}
}

func (m *Monitor) usage() {
	fmt.Fprintln(m.stdout, "commands:")
	fmt.Fprintln(m.stdout, "  step [n]          execute one (or n) instructions")
	fmt.Fprintln(m.stdout, "  regs              show PC, SP, and exit state")
	fmt.Fprintln(m.stdout, "  mem <addr> [len]  hex-dump memory")
	fmt.Fprintln(m.stdout, "  stack             show the stack, one word per line")
	fmt.Fprintln(m.stdout, "  cont              run until halt or error")
	fmt.Fprintln(m.stdout, "  quit              leave the monitor")
}
