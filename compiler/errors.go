package compiler

import "fmt"

// CompileError reports a lexical or syntax error found while compiling
// source to bytecode. A failed Compile call returns one CompileError
// with a generic message; the individual reports (only the first, under
// panic mode) are printed to the compiler's diagnostic writer.
type CompileError struct {
	Message string
}

func (e CompileError) Error() string {
	return fmt.Sprintf("💥 CompileError: %s", e.Message)
}
