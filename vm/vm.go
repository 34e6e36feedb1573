// Package vm implements the stack-based bytecode interpreter: given a
// compiled chunk.Chunk, it runs a fetch-decode-execute loop over an
// operand stack of value.Value until it hits OP_RETURN or a runtime error.
package vm

import (
	"fmt"
	"io"
	"os"

	"wisp/chunk"
	"wisp/compiler"
	"wisp/value"
)

// VM holds the operand stack and instruction pointer for one run. A VM
// is cheap to create and may be reused across Interpret calls (the REPL
// does so): Run resets the stack and ip at the start of every call.
type VM struct {
	stack stack
	chunk *chunk.Chunk
	ip    int

	// Debug enables tracing: when true, each instruction's disassembly
	// and the stack contents are printed to Trace before it executes.
	Debug bool

	// Diagnostics is where runtime-error reports are printed. Defaults
	// to os.Stderr.
	Diagnostics io.Writer
	// Trace is where debug tracing is printed when Debug is true.
	// Defaults to os.Stdout.
	Trace io.Writer
	// Result is where OP_RETURN prints the final value. Defaults to os.Stdout.
	Result io.Writer
}

// New returns a VM ready to interpret source. Debug tracing is off by
// default.
func New() *VM {
	return &VM{
		Diagnostics: os.Stderr,
		Trace:       os.Stdout,
		Result:      os.Stdout,
	}
}

// Interpret compiles source and runs it to completion. A compile error
// is returned as-is (a compiler.CompileError); a runtime error is
// returned as a RuntimeError after its report has already been printed
// to Diagnostics, matching the two-stage contract external callers
// depend on for exit-code selection.
func (vm *VM) Interpret(source string) error {
	c, err := compiler.Compile(source)
	if err != nil {
		return err
	}
	return vm.Run(c)
}

// Run executes an already-compiled chunk. Most callers should use
// Interpret; Run is exposed separately for a caller that already holds
// a compiled chunk.
func (vm *VM) Run(c *chunk.Chunk) error {
	vm.chunk = c
	vm.ip = 0
	vm.stack.reset()

	for {
		if vm.Debug {
			vm.traceInstruction()
		}

		op := chunk.Opcode(vm.nextByte())
		switch op {
		case chunk.OpConstant:
			idx := int(vm.nextByte())
			if err := vm.push(vm.chunk.ReadConstant(idx)); err != nil {
				return err
			}

		case chunk.OpConstantLong:
			b0, b1, b2 := vm.nextByte(), vm.nextByte(), vm.nextByte()
			idx := int(b0)<<16 | int(b1)<<8 | int(b2)
			if err := vm.push(vm.chunk.ReadConstant(idx)); err != nil {
				return err
			}

		case chunk.OpNil:
			if err := vm.push(value.NilValue); err != nil {
				return err
			}
		case chunk.OpTrue:
			if err := vm.push(value.NewBoolean(true)); err != nil {
				return err
			}
		case chunk.OpFalse:
			if err := vm.push(value.NewBoolean(false)); err != nil {
				return err
			}

		case chunk.OpNegate:
			v, _ := vm.stack.peek(0)
			if !v.IsNumber() {
				return vm.runtimeError("Operand must be a number.")
			}
			v, _ = vm.stack.pop()
			if err := vm.push(v.Negate()); err != nil {
				return err
			}

		case chunk.OpNot:
			v, _ := vm.stack.pop()
			if err := vm.push(value.NewBoolean(v.IsFalsey())); err != nil {
				return err
			}

		case chunk.OpAdd:
			if err := vm.binaryNumeric(value.Add); err != nil {
				return err
			}
		case chunk.OpSubtract:
			if err := vm.binaryNumeric(value.Sub); err != nil {
				return err
			}
		case chunk.OpMultiply:
			if err := vm.binaryNumeric(value.Mul); err != nil {
				return err
			}
		case chunk.OpDivide:
			if err := vm.binaryNumeric(value.Div); err != nil {
				return err
			}

		case chunk.OpEqual:
			rhs, _ := vm.stack.pop()
			lhs, _ := vm.stack.pop()
			if err := vm.push(value.NewBoolean(lhs.IsEqualTo(rhs))); err != nil {
				return err
			}

		case chunk.OpGreater:
			if err := vm.binaryComparison(func(a, b value.Value) bool { return a.IsGreaterThan(b) }); err != nil {
				return err
			}
		case chunk.OpLess:
			if err := vm.binaryComparison(func(a, b value.Value) bool { return a.IsLessThan(b) }); err != nil {
				return err
			}

		case chunk.OpReturn:
			result, _ := vm.stack.pop()
			out := vm.Result
			if out == nil {
				out = os.Stdout
			}
			fmt.Fprintf(out, "%s\n", result.String())
			return nil

		default:
			return vm.runtimeError(fmt.Sprintf("Unknown opcode %d.", op))
		}
	}
}

func (vm *VM) nextByte() byte {
	b := vm.chunk.ReadCode(vm.ip)
	vm.ip++
	return b
}

// push stores v on the operand stack, surfacing exhaustion as a
// RuntimeError instead of silently dropping the value.
func (vm *VM) push(v value.Value) error {
	if !vm.stack.push(v) {
		return vm.runtimeError("Stack overflow.")
	}
	return nil
}

// binaryNumeric pops rhs then lhs — uniformly, for every arithmetic
// operator — checks both are numbers, and pushes apply(lhs, rhs).
func (vm *VM) binaryNumeric(apply func(lhs, rhs value.Value) value.Value) error {
	rhsVal, _ := vm.stack.peek(0)
	lhsVal, _ := vm.stack.peek(1)
	if !rhsVal.IsNumber() || !lhsVal.IsNumber() {
		return vm.runtimeError("Operands must be numbers.")
	}
	rhs, _ := vm.stack.pop()
	lhs, _ := vm.stack.pop()
	return vm.push(apply(lhs, rhs))
}

func (vm *VM) binaryComparison(compare func(lhs, rhs value.Value) bool) error {
	rhsVal, _ := vm.stack.peek(0)
	lhsVal, _ := vm.stack.peek(1)
	if !rhsVal.IsNumber() || !lhsVal.IsNumber() {
		return vm.runtimeError("Operands must be numbers.")
	}
	rhs, _ := vm.stack.pop()
	lhs, _ := vm.stack.pop()
	return vm.push(value.NewBoolean(compare(lhs, rhs)))
}

// runtimeError reports message to Diagnostics in the two-line form callers
// expect ("<msg>\n[line L] in script\n\n"), resets the stack, and
// returns the corresponding RuntimeError for the caller to classify.
func (vm *VM) runtimeError(message string) error {
	line := vm.chunk.ReadLine(vm.ip - 1)

	out := vm.Diagnostics
	if out == nil {
		out = os.Stderr
	}
	fmt.Fprintf(out, "%s\n[line %d] in script\n\n", message, line)

	vm.stack.reset()
	return RuntimeError{Message: message}
}

func (vm *VM) traceInstruction() {
	out := vm.Trace
	if out == nil {
		out = os.Stdout
	}

	fmt.Fprint(out, "          ")
	for i := 0; i < vm.stack.top; i++ {
		fmt.Fprintf(out, "[ %s ]", vm.stack.slots[i])
	}
	fmt.Fprintln(out)

	text, _ := chunk.DisassembleInstruction(vm.chunk, vm.ip)
	fmt.Fprintln(out, text)
}
