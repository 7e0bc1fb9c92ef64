package emu_test

import (
	"bytes"
	"encoding/binary"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/svm/emu"
)

// imageWords lays out instruction words little-endian, the order they
// appear in a program image.
func imageWords(words ...uint32) []byte {
	image := make([]byte, 0, len(words)*4)
	for _, w := range words {
		image = binary.LittleEndian.AppendUint32(image, w)
	}
	return image
}

var _ = Describe("Emulator", func() {
	var (
		e         *emu.Emulator
		stdoutBuf *bytes.Buffer
	)

	BeforeEach(func() {
		stdoutBuf = &bytes.Buffer{}
		e = emu.NewEmulator(
			emu.WithStdout(stdoutBuf),
			emu.WithMaxInstructions(10000),
		)
	})

	Describe("NewEmulator", func() {
		It("should create an emulator with initialized components", func() {
			Expect(e).NotTo(BeNil())
			Expect(e.RegFile()).NotTo(BeNil())
			Expect(e.Memory()).NotTo(BeNil())
		})

		It("should start with an empty stack at address zero", func() {
			Expect(e.RegFile().PC).To(Equal(int32(0)))
			Expect(e.RegFile().SP).To(Equal(int32(emu.MemSize)))
			Expect(e.RegFile().Halted).To(BeFalse())
		})
	})

	Describe("LoadImage", func() {
		It("should copy the image into low memory", func() {
			e.LoadImage([]byte{0xDE, 0xAD, 0xBE, 0xEF})

			Expect(e.Memory().Read8(0)).To(Equal(byte(0xDE)))
			Expect(e.Memory().Read8(1)).To(Equal(byte(0xAD)))
			Expect(e.Memory().Read8(2)).To(Equal(byte(0xBE)))
			Expect(e.Memory().Read8(3)).To(Equal(byte(0xEF)))
		})
	})

	Describe("Step", func() {
		It("should fetch instruction words little-endian", func() {
			// bytes 05 00 00 F0 decode to 0xF0000005: push 5
			e.LoadImage([]byte{0x05, 0x00, 0x00, 0xF0})

			result := e.Step()

			Expect(result.Err).NotTo(HaveOccurred())
			Expect(e.RegFile().SP).To(Equal(int32(4092)))
			Expect(e.Memory().ReadWord(4092)).To(Equal(uint32(5)))
			Expect(e.RegFile().PC).To(Equal(int32(4)))
		})

		It("should carry the whole exit word into the exit code", func() {
			// bytes 0F 00 00 00 fetch as 0x0000000F: exit with payload 15
			e.LoadImage([]byte{0x0F, 0x00, 0x00, 0x00})

			result := e.Step()

			Expect(result.Err).NotTo(HaveOccurred())
			Expect(result.Exited).To(BeTrue())
			Expect(result.ExitCode).To(Equal(int32(15)))
		})

		It("should fail at a fetch past the end of memory", func() {
			// goto word offset +1030 lands PC at 4120
			e.LoadImage(imageWords(0x70001018))

			Expect(e.Step().Err).NotTo(HaveOccurred())
			result := e.Step()

			Expect(result.Err).To(MatchError(emu.ErrFatal))
		})
	})

	Describe("Run", func() {
		It("should halt immediately on an all-zero exit word", func() {
			e.LoadImage(imageWords(0x00000000))

			exitCode, err := e.Run()

			Expect(err).NotTo(HaveOccurred())
			Expect(exitCode).To(Equal(int32(0)))
			Expect(e.RegFile().Halted).To(BeTrue())
		})

		It("should surface the exit word as the exit code", func() {
			e.LoadImage(imageWords(0xF0000005, 0x00000007))

			exitCode, err := e.Run()

			Expect(err).NotTo(HaveOccurred())
			Expect(exitCode).To(Equal(int32(7)))
		})

		It("should leave the sum of an add on top of the stack", func() {
			e.LoadImage(imageWords(0xF0000003, 0xF0000004, 0x20000000, 0x00000000))

			exitCode, err := e.Run()

			Expect(err).NotTo(HaveOccurred())
			Expect(exitCode).To(Equal(int32(0)))
			Expect(e.RegFile().SP).To(Equal(int32(4092)))
			Expect(e.Memory().ReadWord(4092)).To(Equal(uint32(7)))
		})

		It("should push a sign-extended immediate's byte pattern", func() {
			e.LoadImage(imageWords(0xF8000001, 0x00000000))

			_, err := e.Run()

			Expect(err).NotTo(HaveOccurred())
			Expect(e.Memory().ReadWord(4092)).To(Equal(uint32(0xF8000001)))
			Expect(e.Memory().Read8(4092)).To(Equal(byte(0xF8)))
			Expect(e.Memory().Read8(4095)).To(Equal(byte(0x01)))
		})

		It("should spin forever on a self-goto until the budget trips", func() {
			e.LoadImage(imageWords(0x7FFFFFFF))

			_, err := e.Run()

			Expect(err).To(MatchError("max instructions reached"))
			Expect(e.InstructionCount()).To(Equal(uint64(10000)))
		})

		It("should print a constructed string without a newline", func() {
			// push the chunk for "AB", stprint at SP+0, exit
			e.LoadImage(imageWords(0xF0004241, 0x40000000, 0x00000000))

			exitCode, err := e.Run()

			Expect(err).NotTo(HaveOccurred())
			Expect(exitCode).To(Equal(int32(0)))
			Expect(stdoutBuf.String()).To(Equal("AB"))
		})

		It("should fail unassigned primary opcodes", func() {
			for _, word := range []uint32{0xA0000000, 0xB0000000} {
				e := emu.NewEmulator(emu.WithStdout(stdoutBuf))
				e.LoadImage(imageWords(word))

				_, err := e.Run()

				Expect(err).To(MatchError(emu.ErrBadInstruction))
			}
		})

		It("should fail unassigned misc sub-opcodes", func() {
			e.LoadImage(imageWords(0x03000000))

			_, err := e.Run()

			Expect(err).To(MatchError(emu.ErrBadInstruction))
		})

		It("should stop at the first error without retrying", func() {
			// pop with a misaligned offset, then a would-be exit
			e.LoadImage(imageWords(0xF0000001, 0x10000006, 0x00000000))

			_, err := e.Run()

			Expect(err).To(MatchError(emu.ErrBadInstruction))
			Expect(e.RegFile().Halted).To(BeFalse())
		})
	})

	Describe("I/O programs", func() {
		It("should read a number and print it back", func() {
			e := emu.NewEmulator(
				emu.WithStdin(strings.NewReader("0x10\n")),
				emu.WithStdout(stdoutBuf),
			)
			e.LoadImage(imageWords(0x04000000, 0xD0000000, 0x00000000))

			exitCode, err := e.Run()

			Expect(err).NotTo(HaveOccurred())
			Expect(exitCode).To(Equal(int32(0)))
			Expect(stdoutBuf.String()).To(Equal("16\n"))
		})

		It("should round-trip a string through stinput and stprint", func() {
			e := emu.NewEmulator(
				emu.WithStdin(strings.NewReader("AB\n")),
				emu.WithStdout(stdoutBuf),
			)
			e.LoadImage(imageWords(0x05000010, 0x40000000, 0x00000000))

			exitCode, err := e.Run()

			Expect(err).NotTo(HaveOccurred())
			Expect(exitCode).To(Equal(int32(0)))
			Expect(stdoutBuf.String()).To(Equal("AB"))
		})

		It("should fail a run on unparseable input", func() {
			e := emu.NewEmulator(
				emu.WithStdin(strings.NewReader("banana\n")),
				emu.WithStdout(stdoutBuf),
			)
			e.LoadImage(imageWords(0x04000000, 0x00000000))

			_, err := e.Run()

			Expect(err).To(MatchError(emu.ErrBadInput))
		})

		It("should dump the live stack", func() {
			e.LoadImage(imageWords(0xF0000005, 0xE0000000, 0x00000000))

			_, err := e.Run()

			Expect(err).NotTo(HaveOccurred())
			Expect(stdoutBuf.String()).To(Equal("0ffc: 00000005\n"))
		})
	})

	Describe("call and ret programs", func() {
		It("should run a subroutine and come back", func() {
			// 0: call +3 words (to 12)
			// 4: exit with code 9
			// 8: unused
			// 12: push 1
			// 16: ret 4 (frees the pushed 1)
			e.LoadImage(imageWords(
				0x5000000C,
				0x00000009,
				0x00000000,
				0xF0000001,
				0x60000004,
			))

			exitCode, err := e.Run()

			Expect(err).NotTo(HaveOccurred())
			Expect(exitCode).To(Equal(int32(9)))
			Expect(e.RegFile().SP).To(Equal(int32(emu.MemSize)))
		})
	})
})
