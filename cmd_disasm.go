package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/google/subcommands"

	"wisp/chunk"
	"wisp/compiler"
)

// disasmCmd implements the "disasm" subcommand
type disasmCmd struct {
	debug bool
}

func (*disasmCmd) Name() string     { return "disasm" }
func (*disasmCmd) Synopsis() string { return "Compile a source file and print its bytecode" }
func (*disasmCmd) Usage() string {
	return `disasm <file>:
  Compile a wisp source file and print a human-readable disassembly.
`
}
func (d *disasmCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&d.debug, "debug", false, "also dump the full chunk structure (constants, line table, raw bytes)")
}

func (d *disasmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, color.RedString("💥 file not provided"))
		return exitUsageErr
	}
	if len(args) > 1 {
		fmt.Fprint(os.Stderr, d.Usage())
		return exitUsageErr
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to read file: %v\n", err)
		return exitIOErr
	}

	c, err := compiler.Compile(string(data))
	if err != nil {
		if _, ok := err.(compiler.CompileError); ok {
			return exitDataErr
		}
		fmt.Fprintf(os.Stderr, "💥 %v\n", err)
		return exitIOErr
	}

	fmt.Print(color.CyanString(chunk.Disassemble(c, args[0])))

	if d.debug {
		spew.Dump(c)
	}

	return exitSuccess
}
