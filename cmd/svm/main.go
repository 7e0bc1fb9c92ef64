// Package main provides the SVM command-line interface: load a program
// image, run it (free-running or under the monitor), and surface the
// machine's exit code as the process exit status.
package main

import (
	"fmt"
	"log/slog"
	"os"

	getopt "github.com/pborman/getopt/v2"

	"github.com/sarchlab/svm/emu"
	"github.com/sarchlab/svm/loader"
	"github.com/sarchlab/svm/monitor"
)

func main() {
	optVerbose := getopt.BoolLong("verbose", 'v', "Verbose output")
	optMonitor := getopt.BoolLong("monitor", 'm', "Run under the interactive monitor")
	optMax := getopt.Uint64Long("max-instructions", 'n', 0,
		"Stop after this many instructions (0 = unlimited)")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.SetParameters("<program.v>")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	args := getopt.Args()
	if len(args) != 1 {
		getopt.Usage()
		os.Exit(1)
	}

	level := slog.LevelWarn
	if *optVerbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	prog, err := loader.Load(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	slog.Debug("image loaded", "path", args[0], "bytes", len(prog.Image))

	emulator := emu.NewEmulator(
		emu.WithMaxInstructions(*optMax),
	)
	emulator.LoadImage(prog.Image)

	var exitCode int32
	if *optMonitor {
		exitCode, err = monitor.New(emulator, os.Stdout).Run()
	} else {
		exitCode, err = emulator.Run()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	slog.Debug("halted",
		"exit_code", exitCode,
		"instructions", emulator.InstructionCount())
	os.Exit(int(exitCode))
}
