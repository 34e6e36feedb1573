package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/google/subcommands"

	"wisp/compiler"
	"wisp/vm"
)

// Exit codes external tooling depends on: 0 success, 65 a compile-time
// error, 70 a runtime error, 74 an I/O failure, 1 a usage error.
const (
	exitSuccess  = subcommands.ExitStatus(0)
	exitDataErr  = subcommands.ExitStatus(65)
	exitSoftware = subcommands.ExitStatus(70)
	exitIOErr    = subcommands.ExitStatus(74)
	exitUsageErr = subcommands.ExitStatus(1)
)

// runCmd implements the "run" subcommand
type runCmd struct {
	debug bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "Execute a wisp source file" }
func (*runCmd) Usage() string {
	return `run <file>:
  Compile and execute a wisp source file.
`
}
func (r *runCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&r.debug, "debug", false, "trace each instruction and the stack as it executes")
}

func (r *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, color.RedString("💥 file not provided"))
		return exitUsageErr
	}
	if len(args) > 1 {
		fmt.Fprint(os.Stderr, r.Usage())
		return exitUsageErr
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to read file: %v\n", err)
		return exitIOErr
	}

	machine := vm.New()
	machine.Debug = r.debug
	if err := machine.Interpret(string(data)); err != nil {
		if _, ok := err.(vm.RuntimeError); ok {
			return exitSoftware
		}
		if _, ok := err.(compiler.CompileError); ok {
			return exitDataErr
		}
		fmt.Fprintf(os.Stderr, "💥 %v\n", err)
		return exitIOErr
	}

	return exitSuccess
}
