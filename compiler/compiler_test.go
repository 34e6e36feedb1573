package compiler

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"wisp/chunk"
	"wisp/value"
)

// compileOK compiles source and fails the test if compilation reports
// an error; it returns the resulting chunk.
func compileOK(t *testing.T, source string) *chunk.Chunk {
	t.Helper()
	c, err := Compile(source)
	require.NoError(t, err)
	return c
}

func TestPrecedenceMultiplyBindsTighterThanAdd(t *testing.T) {
	c := compileOK(t, "1 + 2 * 3")

	require.Equal(t, []value.Value{
		value.NewNumber(1), value.NewNumber(2), value.NewNumber(3),
	}, c.Constants)
	require.Equal(t, []byte{
		byte(chunk.OpConstant), 0,
		byte(chunk.OpConstant), 1,
		byte(chunk.OpConstant), 2,
		byte(chunk.OpMultiply),
		byte(chunk.OpAdd),
		byte(chunk.OpReturn),
	}, c.Code)
}

func TestGroupingOverridesPrecedence(t *testing.T) {
	c := compileOK(t, "(1 + 2) * 3")

	require.Equal(t, []byte{
		byte(chunk.OpConstant), 0,
		byte(chunk.OpConstant), 1,
		byte(chunk.OpAdd),
		byte(chunk.OpConstant), 2,
		byte(chunk.OpMultiply),
		byte(chunk.OpReturn),
	}, c.Code)
}

func TestSubtractionIsLeftAssociative(t *testing.T) {
	c := compileOK(t, "9 - 4 - 2")

	require.Equal(t, []byte{
		byte(chunk.OpConstant), 0,
		byte(chunk.OpConstant), 1,
		byte(chunk.OpSubtract),
		byte(chunk.OpConstant), 2,
		byte(chunk.OpSubtract),
		byte(chunk.OpReturn),
	}, c.Code)
}

func TestBangEqualEmitsEqualThenNot(t *testing.T) {
	c := compileOK(t, "1 != 2")

	require.Equal(t, []byte{
		byte(chunk.OpConstant), 0,
		byte(chunk.OpConstant), 1,
		byte(chunk.OpEqual),
		byte(chunk.OpNot),
		byte(chunk.OpReturn),
	}, c.Code)
}

func TestGreaterEqualEmitsLessThenNot(t *testing.T) {
	c := compileOK(t, "1 >= 2")

	require.Equal(t, []byte{
		byte(chunk.OpConstant), 0,
		byte(chunk.OpConstant), 1,
		byte(chunk.OpLess),
		byte(chunk.OpNot),
		byte(chunk.OpReturn),
	}, c.Code)
}

func TestLessEqualEmitsGreaterThenNot(t *testing.T) {
	c := compileOK(t, "1 <= 2")

	require.Equal(t, []byte{
		byte(chunk.OpConstant), 0,
		byte(chunk.OpConstant), 1,
		byte(chunk.OpGreater),
		byte(chunk.OpNot),
		byte(chunk.OpReturn),
	}, c.Code)
}

func TestUnaryMinusAndBang(t *testing.T) {
	c := compileOK(t, "!-1")

	require.Equal(t, []byte{
		byte(chunk.OpConstant), 0,
		byte(chunk.OpNegate),
		byte(chunk.OpNot),
		byte(chunk.OpReturn),
	}, c.Code)
}

func TestLiterals(t *testing.T) {
	c := compileOK(t, "true")
	require.Equal(t, []byte{byte(chunk.OpTrue), byte(chunk.OpReturn)}, c.Code)

	c = compileOK(t, "false")
	require.Equal(t, []byte{byte(chunk.OpFalse), byte(chunk.OpReturn)}, c.Code)

	c = compileOK(t, "nil")
	require.Equal(t, []byte{byte(chunk.OpNil), byte(chunk.OpReturn)}, c.Code)
}

func TestMissingClosingParenIsCompileError(t *testing.T) {
	var diag bytes.Buffer
	_, err := CompileTo("(1 + 2", &diag)
	require.Error(t, err)
	require.Contains(t, diag.String(), "Expect ')' after expression.")
}

func TestMissingExpressionIsCompileError(t *testing.T) {
	var diag bytes.Buffer
	_, err := CompileTo("*1", &diag)
	require.Error(t, err)
	require.Contains(t, diag.String(), "Expect expression.")
}

func TestUnterminatedExpressionAtEOF(t *testing.T) {
	var diag bytes.Buffer
	_, err := CompileTo("1 +", &diag)
	require.Error(t, err)
	require.Contains(t, diag.String(), "Expect expression.")
	require.Contains(t, diag.String(), "at end")
}

func TestPanicModeSuppressesCascades(t *testing.T) {
	var diag bytes.Buffer
	_, err := CompileTo("(1 +) *", &diag)
	require.Error(t, err)

	// Only the first error is reported, not every subsequent one.
	count := bytes.Count(diag.Bytes(), []byte("Error"))
	require.Equal(t, 1, count)
}

func TestStringLiteralHasNoPrefixRule(t *testing.T) {
	// Strings lex fine (the lexer recognizes the full token set) but the
	// language has no string expressions, so the parser rejects it.
	var diag bytes.Buffer
	_, err := CompileTo("\"oops\"", &diag)
	require.Error(t, err)
	require.Contains(t, diag.String(), "Expect expression.")
}
