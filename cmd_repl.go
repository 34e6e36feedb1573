package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/google/subcommands"

	"wisp/vm"
)

// replCmd implements the "repl" subcommand
type replCmd struct {
	debug bool
}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start an interactive wisp session" }
func (*replCmd) Usage() string {
	return `repl:
  Start an interactive read-eval-print loop.
`
}
func (r *replCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&r.debug, "debug", false, "trace each instruction and the stack as it executes")
}

func (r *replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rl, err := readline.New(">>> ")
	if err != nil {
		fmt.Println(color.RedString("💥 failed to start REPL: %v", err))
		return exitIOErr
	}
	defer rl.Close()

	fmt.Println("wisp")
	machine := vm.New()
	machine.Debug = r.debug

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return exitSuccess
		}
		if err != nil {
			return exitIOErr
		}

		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.TrimSpace(line) == "exit" {
			return exitSuccess
		}

		if runErr := machine.Interpret(line); runErr != nil {
			// Diagnostics are already printed by Interpret; name the
			// error class as well, then keep looping regardless of
			// which error kind it was.
			fmt.Println(color.RedString("%v", runErr))
			continue
		}
	}
}
