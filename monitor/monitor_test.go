package monitor_test

import (
	"bytes"
	"encoding/binary"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/svm/emu"
	"github.com/sarchlab/svm/monitor"
)

// imageWords lays out instruction words little-endian.
func imageWords(words ...uint32) []byte {
	image := make([]byte, 0, len(words)*4)
	for _, w := range words {
		image = binary.LittleEndian.AppendUint32(image, w)
	}
	return image
}

var _ = Describe("Monitor", func() {
	var (
		e      *emu.Emulator
		m      *monitor.Monitor
		stdout *bytes.Buffer
	)

	BeforeEach(func() {
		stdout = &bytes.Buffer{}
		e = emu.NewEmulator(emu.WithStdout(stdout))
		e.LoadImage(imageWords(0xF0000005, 0x00000007))
		m = monitor.New(e, stdout)
	})

	Describe("step", func() {
		It("should execute one instruction and show the registers", func() {
			done, _, err := m.Execute("step")

			Expect(err).NotTo(HaveOccurred())
			Expect(done).To(BeFalse())
			Expect(e.RegFile().PC).To(Equal(int32(4)))
			Expect(stdout.String()).To(ContainSubstring("PC=4 SP=4092"))
		})

		It("should finish the session when the program halts", func() {
			done, code, err := m.Execute("step 2")

			Expect(err).NotTo(HaveOccurred())
			Expect(done).To(BeTrue())
			Expect(code).To(Equal(int32(7)))
			Expect(stdout.String()).To(ContainSubstring("halted with exit code 7"))
		})

		It("should reject a bad count without stepping", func() {
			done, _, err := m.Execute("step zero")

			Expect(err).NotTo(HaveOccurred())
			Expect(done).To(BeFalse())
			Expect(e.RegFile().PC).To(Equal(int32(0)))
		})

		It("should surface a machine error", func() {
			e.LoadImage(imageWords(0xA0000000))

			_, _, err := m.Execute("step")

			Expect(err).To(MatchError(emu.ErrBadInstruction))
		})
	})

	Describe("cont", func() {
		It("should run to the halt and return the exit code", func() {
			done, code, err := m.Execute("cont")

			Expect(err).NotTo(HaveOccurred())
			Expect(done).To(BeTrue())
			Expect(code).To(Equal(int32(7)))
		})
	})

	Describe("inspection", func() {
		It("should print the register file", func() {
			done, _, err := m.Execute("regs")

			Expect(err).NotTo(HaveOccurred())
			Expect(done).To(BeFalse())
			Expect(stdout.String()).To(ContainSubstring("PC=0 SP=4096"))
		})

		It("should show the stack like the dump instruction", func() {
			_, _, err := m.Execute("step")
			Expect(err).NotTo(HaveOccurred())
			stdout.Reset()

			_, _, err = m.Execute("stack")

			Expect(err).NotTo(HaveOccurred())
			Expect(stdout.String()).To(Equal("0ffc: 00000005\n"))
		})

		It("should hex-dump memory", func() {
			_, _, err := m.Execute("mem 0 8")

			Expect(err).NotTo(HaveOccurred())
			Expect(stdout.String()).To(Equal(
				" 0000 |   05  00  00  f0  07  00  00  00\n"))
		})

		It("should clamp a dump at the end of memory", func() {
			_, _, err := m.Execute("mem 0xff8 32")

			Expect(err).NotTo(HaveOccurred())
			Expect(stdout.String()).To(Equal(
				" 0ff8 |   00  00  00  00  00  00  00  00\n"))
		})

		It("should complain about a missing address", func() {
			_, _, err := m.Execute("mem")

			Expect(err).NotTo(HaveOccurred())
			Expect(stdout.String()).To(ContainSubstring("missing address"))
		})
	})

	Describe("session control", func() {
		It("should leave on quit with a failing status", func() {
			done, code, err := m.Execute("quit")

			Expect(err).NotTo(HaveOccurred())
			Expect(done).To(BeTrue())
			Expect(code).To(Equal(int32(1)))
		})

		It("should ignore empty input", func() {
			done, _, err := m.Execute("   ")

			Expect(err).NotTo(HaveOccurred())
			Expect(done).To(BeFalse())
			Expect(stdout.Len()).To(BeZero())
		})

		It("should show usage for an unknown command", func() {
			done, _, err := m.Execute("bogus")

			Expect(err).NotTo(HaveOccurred())
			Expect(done).To(BeFalse())
			Expect(stdout.String()).To(ContainSubstring("commands:"))
		})
	})
})
