// Package compiler implements wisp's single-pass Pratt parser: it pulls
// tokens from a lexer.Lexer and emits bytecode directly into a
// chunk.Chunk, with no intermediate AST. Each prefix/infix rule emits
// its own opcodes before returning, so the call stack's recursion
// plays the role an AST would otherwise play — children are always
// emitted before their parents.
package compiler

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"wisp/chunk"
	"wisp/lexer"
	"wisp/token"
	"wisp/value"
)

// Precedence levels, lowest to highest. Every token kind that can
// appear as an infix operator maps to one of these via infixPrecedence.
type Precedence int

const (
	PrecNone       Precedence = iota
	PrecAssignment            // =
	PrecOr                    // or
	PrecAnd                   // and
	PrecEquality              // == !=
	PrecComparison            // < > <= >=
	PrecTerm                  // + -
	PrecFactor                // * /
	PrecUnary                 // ! -
	PrecCall                  // . ()
	PrecPrimary
)

// Compiler is a Pratt parser over a single token stream, writing into
// one Chunk. It holds only the previous/current token pair plus error
// flags — no parse tree is ever built.
type Compiler struct {
	lex *lexer.Lexer

	previous token.Token
	current  token.Token

	chunk *chunk.Chunk

	hadError  bool
	panicMode bool

	// Diagnostics is where compile-error reports are printed. Defaults
	// to os.Stderr; tests substitute a buffer.
	Diagnostics io.Writer
}

// Compile parses source as a single expression and emits its bytecode
// into a freshly created Chunk, returning it. If any lexical or syntax
// error is encountered, it returns a non-nil CompileError; the Chunk is
// still returned (partially populated) but must not be executed.
func Compile(source string) (*chunk.Chunk, error) {
	return CompileTo(source, os.Stderr)
}

// CompileTo behaves like Compile but sends diagnostic reports to diag
// instead of os.Stderr. Tests use this to assert on exact report text.
func CompileTo(source string, diag io.Writer) (*chunk.Chunk, error) {
	c := &Compiler{
		lex:         lexer.New(source),
		chunk:       chunk.New(),
		Diagnostics: diag,
	}

	c.advance()
	c.expression()
	c.consume(token.EOF, "Expect end of expression.")
	c.emitByte(byte(chunk.OpReturn))

	if c.hadError {
		return c.chunk, CompileError{Message: "compilation failed"}
	}
	return c.chunk, nil
}

func (c *Compiler) expression() {
	c.parsePrecedence(PrecAssignment)
}

// parsePrecedence is the heart of the Pratt parser: it dispatches the
// prefix rule for the token it is about to consume, then keeps folding
// in infix operators as long as they bind at least as tightly as minPrec.
func (c *Compiler) parsePrecedence(minPrec Precedence) {
	c.advance()
	if !c.prefixRule(c.previous.Kind) {
		c.errorAtPrevious("Expect expression.")
		return
	}

	for minPrec <= c.infixPrecedence(c.current.Kind) {
		c.advance()
		if !c.infixRule(c.previous.Kind) {
			c.errorAtPrevious("Expect expression.")
			return
		}
	}
}

// prefixRule dispatches on token kind to its prefix rule via a switch.
// It returns false if kind has no prefix rule.
func (c *Compiler) prefixRule(kind token.Kind) bool {
	switch kind {
	case token.LeftParen:
		c.grouping()
	case token.Minus, token.Bang:
		c.unary()
	case token.Number:
		c.number()
	case token.True, token.False, token.Nil:
		c.literal()
	default:
		return false
	}
	return true
}

// infixRule dispatches on token kind to its infix rule via a switch.
// It returns false if kind has no infix rule.
func (c *Compiler) infixRule(kind token.Kind) bool {
	switch kind {
	case token.Minus, token.Plus, token.Star, token.Slash,
		token.EqualEqual, token.BangEqual,
		token.Less, token.LessEqual, token.Greater, token.GreaterEqual:
		c.binary()
	default:
		return false
	}
	return true
}

// infixPrecedence reports the precedence kind binds at when it appears
// as an infix operator, or PrecNone if it never does.
func (c *Compiler) infixPrecedence(kind token.Kind) Precedence {
	switch kind {
	case token.Plus, token.Minus:
		return PrecTerm
	case token.Star, token.Slash:
		return PrecFactor
	case token.EqualEqual, token.BangEqual:
		return PrecEquality
	case token.Less, token.LessEqual, token.Greater, token.GreaterEqual:
		return PrecComparison
	default:
		return PrecNone
	}
}

func (c *Compiler) grouping() {
	c.expression()
	c.consume(token.RightParen, "Expect ')' after expression.")
}

func (c *Compiler) unary() {
	op := c.previous.Kind
	c.parsePrecedence(PrecUnary)
	switch op {
	case token.Minus:
		c.emitByte(byte(chunk.OpNegate))
	case token.Bang:
		c.emitByte(byte(chunk.OpNot))
	}
}

// binary parses the right-hand operand at one precedence level above
// the operator's own, which makes all of +, -, *, / left-associative.
func (c *Compiler) binary() {
	op := c.previous.Kind
	c.parsePrecedence(c.infixPrecedence(op) + 1)

	switch op {
	case token.Plus:
		c.emitByte(byte(chunk.OpAdd))
	case token.Minus:
		c.emitByte(byte(chunk.OpSubtract))
	case token.Star:
		c.emitByte(byte(chunk.OpMultiply))
	case token.Slash:
		c.emitByte(byte(chunk.OpDivide))
	case token.EqualEqual:
		c.emitByte(byte(chunk.OpEqual))
	case token.BangEqual:
		c.emitByte(byte(chunk.OpEqual))
		c.emitByte(byte(chunk.OpNot))
	case token.Greater:
		c.emitByte(byte(chunk.OpGreater))
	case token.GreaterEqual:
		c.emitByte(byte(chunk.OpLess))
		c.emitByte(byte(chunk.OpNot))
	case token.Less:
		c.emitByte(byte(chunk.OpLess))
	case token.LessEqual:
		c.emitByte(byte(chunk.OpGreater))
		c.emitByte(byte(chunk.OpNot))
	}
}

func (c *Compiler) number() {
	v, err := strconv.ParseFloat(c.previous.Lexeme, 64)
	if err != nil {
		c.errorAtPrevious("Invalid number.")
		return
	}
	c.chunk.WriteConstant(value.NewNumber(v), c.previous.Line)
}

func (c *Compiler) literal() {
	switch c.previous.Kind {
	case token.True:
		c.emitByte(byte(chunk.OpTrue))
	case token.False:
		c.emitByte(byte(chunk.OpFalse))
	case token.Nil:
		c.emitByte(byte(chunk.OpNil))
	}
}

func (c *Compiler) emitByte(b byte) {
	c.chunk.WriteCode(b, c.previous.Line)
}

// advance pulls the next non-error token from the lexer into current,
// surfacing each Error token as a compile-error report along the way.
func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.lex.NextToken()
		if c.current.Kind != token.Error {
			break
		}
		c.errorAtCurrent(c.current.Lexeme)
	}
}

func (c *Compiler) consume(kind token.Kind, message string) {
	if c.current.Kind == kind {
		c.advance()
		return
	}
	c.errorAtCurrent(message)
}

func (c *Compiler) errorAtCurrent(message string) {
	c.errorAt(c.current, message)
}

func (c *Compiler) errorAtPrevious(message string) {
	c.errorAt(c.previous, message)
}

// errorAt reports a single diagnostic, suppressing cascades once
// panicMode is set — panic mode is never cleared within this core
// since there are no statement-boundary synchronization points.
func (c *Compiler) errorAt(tok token.Token, message string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true

	out := c.Diagnostics
	if out == nil {
		out = os.Stderr
	}

	fmt.Fprintf(out, "[line %d:%d] Error", tok.Line, tok.Column)
	switch tok.Kind {
	case token.EOF:
		fmt.Fprint(out, " at end")
	case token.Error:
		// no location clause for lexer-reported errors
	default:
		fmt.Fprintf(out, " at '%s'", tok.Lexeme)
	}
	fmt.Fprintf(out, ": %s\n", message)
}
