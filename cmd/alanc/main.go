// Command alanc is a thin demonstration driver for the Alan compiler core.
// Since the lexer and parser are out of scope for this core, it
// runs one of internal/fixtures' hand-built scenario ASTs through the
// pipeline instead of reading Alan source from disk, and prints either the
// resulting LLVM IR or the diagnostics that stopped it before IR emission,
// with "scenario name" standing in for the filename a real driver would
// report.
package main

import (
	"fmt"
	"os"

	"alan/internal/compiler"
	"alan/internal/errors"
	"alan/internal/fixtures"
)

func main() {
	if len(os.Args) != 2 {
		showUsage()
		os.Exit(2)
	}

	sc := fixtures.Lookup(os.Args[1])
	if sc == nil {
		fmt.Fprintf(os.Stderr, "alanc: unknown scenario %q\n", os.Args[1])
		showUsage()
		os.Exit(2)
	}

	os.Exit(run(sc))
}

func run(sc *fixtures.Scenario) (exitCode int) {
	defer func() {
		if r := recover(); r != nil {
			if ie, ok := r.(*errors.InternalError); ok {
				fmt.Fprintf(os.Stderr, "alanc: %s\n", ie.Error())
				exitCode = 1
				return
			}
			panic(r)
		}
	}()

	result := compiler.Compile(sc.Name, sc.Root())

	for _, d := range result.Sink.Diagnostics {
		fmt.Fprintln(os.Stderr, d.String())
	}
	if result.Sink.Failed() {
		return 1
	}

	fmt.Print(result.Module.String())
	return 0
}

func showUsage() {
	fmt.Fprintln(os.Stderr, "usage: alanc <scenario>")
	fmt.Fprintln(os.Stderr, "scenarios:")
	for _, sc := range fixtures.All {
		fmt.Fprintf(os.Stderr, "  %-4s %s\n", sc.Name, sc.Doc)
	}
}
