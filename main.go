// Package main provides the entry point for SVM.
// SVM is a stack-based 32-bit bytecode virtual machine with a unified
// 4 KiB code/stack address space.
//
// For the full CLI, use: go run ./cmd/svm
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("SVM - Stack-based bytecode virtual machine")
	fmt.Println("")
	fmt.Println("Usage: svm [options] <program.v>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -m         Run under the interactive monitor")
	fmt.Println("  -n count   Stop after count instructions (0 = unlimited)")
	fmt.Println("  -v         Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/svm' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/svm' instead.")
	}
}
