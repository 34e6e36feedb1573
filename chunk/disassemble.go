package chunk

import (
	"fmt"
	"strings"
)

// Disassemble renders every instruction in c as human-readable text
// under the given name, one instruction per line.
func Disassemble(c *Chunk, name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", name)
	for offset := 0; offset < len(c.Code); {
		text, next := DisassembleInstruction(c, offset)
		b.WriteString(text)
		b.WriteByte('\n')
		offset = next
	}
	return b.String()
}

// DisassembleInstruction renders the single instruction at offset and
// returns the offset of the instruction that follows it.
func DisassembleInstruction(c *Chunk, offset int) (string, int) {
	line := lineColumn(c, offset)

	op := Opcode(c.Code[offset])
	switch op {
	case OpConstant:
		return constantInstruction(c, op, offset, line)
	case OpConstantLong:
		return constantLongInstruction(c, op, offset, line)
	case OpNil, OpTrue, OpFalse, OpNegate, OpNot, OpAdd, OpSubtract,
		OpMultiply, OpDivide, OpEqual, OpGreater, OpLess, OpReturn:
		return simpleInstruction(op, offset, line)
	default:
		return fmt.Sprintf("%04d %4s %s", offset, line, op), offset + 1
	}
}

// lineColumn formats the line annotation the way clox's disassembler
// does: the line number, or "|" when it repeats the previous instruction's line.
func lineColumn(c *Chunk, offset int) string {
	line := c.ReadLine(offset)
	if offset > 0 && c.ReadLine(offset-1) == line {
		return "   |"
	}
	return fmt.Sprintf("%4d", line)
}

func simpleInstruction(op Opcode, offset int, line string) (string, int) {
	return fmt.Sprintf("%04d %4s %s", offset, line, op), offset + 1
}

func constantInstruction(c *Chunk, op Opcode, offset int, line string) (string, int) {
	idx := int(c.Code[offset+1])
	return fmt.Sprintf("%04d %4s %-16s %4d '%s'", offset, line, op, idx, c.Constants[idx]), offset + 2
}

func constantLongInstruction(c *Chunk, op Opcode, offset int, line string) (string, int) {
	idx := int(c.Code[offset+1])<<16 | int(c.Code[offset+2])<<8 | int(c.Code[offset+3])
	return fmt.Sprintf("%04d %4s %-16s %4d '%s'", offset, line, op, idx, c.Constants[idx]), offset + 4
}
