package bytecode

import (
	"fmt"
	"strings"
)

// This file implements a human-readable textual dump of a Chunk, the
// way the teacher's asm.go round-trips a Program to a textual
// pseudo-assembly form. Asterisk's dump is one-directional (debug
// output only, no assembler to read it back) since tests exercise the
// compiler directly rather than hand-written bytecode fixtures.

// Disassemble renders c as a human-readable instruction listing, one
// line per instruction: offset, line number (or "|" when unchanged from
// the previous instruction), opcode name, and any decoded operand.
func Disassemble(c *Chunk, name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", name)
	for off := 0; off < len(c.Code); {
		off = disassembleInstruction(&b, c, off)
	}
	return b.String()
}

func disassembleInstruction(b *strings.Builder, c *Chunk, off int) int {
	fmt.Fprintf(b, "%s ", fmtOffset(off))
	line := c.Line(off)
	if off > 0 && c.Line(off-1) == line {
		fmt.Fprint(b, "   | ")
	} else {
		fmt.Fprintf(b, "%4d ", line)
	}

	op := Op(c.Code[off])
	switch op {
	case CONSTANT:
		return constantInstruction(b, c, op, off)
	case DEFINELOCAL:
		return localModInstruction(b, c, op, off)
	case SETLOCAL:
		return localOnlyModInstruction(b, c, op, off)
	case GETLOCAL, GETUPVALUE, SETUPVALUE:
		return byteInstruction(b, c, op, off)
	case DEFINEGLOBAL:
		return globalModInstruction(b, c, op, off)
	case GETGLOBAL, SETGLOBAL, SETREFGLOBAL, GETFIELD, SETFIELD:
		return constantInstruction(b, c, op, off)
	case SETREFLOCAL:
		return byteInstruction(b, c, op, off)
	case SETTYPE:
		t, n := c.ReadType(off + 1)
		fmt.Fprintf(b, "%-16s %s\n", op, t)
		return off + 1 + n
	case MAKEINSTANCE:
		return constantInstruction(b, c, op, off)
	case JUMP, JUMPIFFALSE, JUMPIFTRUE, LOOP:
		return jumpInstruction(b, c, op, off)
	case CALL:
		return byteInstruction(b, c, op, off)
	case CLOSURE:
		return closureInstruction(b, c, op, off)
	default:
		fmt.Fprintf(b, "%s\n", op)
		return off + 1
	}
}

func constantInstruction(b *strings.Builder, c *Chunk, op Op, off int) int {
	idx := c.ReadUint16(off + 1)
	fmt.Fprintf(b, "%-16s %4d '%v'\n", op, idx, c.Constants[idx])
	return off + 3
}

func byteInstruction(b *strings.Builder, c *Chunk, op Op, off int) int {
	slot := c.Code[off+1]
	fmt.Fprintf(b, "%-16s %4d\n", op, slot)
	return off + 2
}

func jumpInstruction(b *strings.Builder, c *Chunk, op Op, off int) int {
	jump := c.ReadUint16(off + 1)
	fmt.Fprintf(b, "%-16s %4s -> %d\n", op, fmtOffset(off), targetOf(op, off, jump))
	return off + 3
}

func targetOf(op Op, off int, jump uint16) int {
	if op == LOOP {
		return off + 3 - int(jump)
	}
	return off + 3 + int(jump)
}

func localModInstruction(b *strings.Builder, c *Chunk, op Op, off int) int {
	slot := c.Code[off+1]
	mod := c.Code[off+2]
	t, n := c.ReadType(off + 3)
	fmt.Fprintf(b, "%-16s slot=%d mod=%d %s\n", op, slot, mod, t)
	return off + 3 + n
}

func localOnlyModInstruction(b *strings.Builder, c *Chunk, op Op, off int) int {
	slot := c.Code[off+1]
	mod := c.Code[off+2]
	fmt.Fprintf(b, "%-16s slot=%d mod=%d\n", op, slot, mod)
	return off + 3
}

func globalModInstruction(b *strings.Builder, c *Chunk, op Op, off int) int {
	idx := c.ReadUint16(off + 1)
	mod := c.Code[off+3]
	t, n := c.ReadType(off + 4)
	fmt.Fprintf(b, "%-16s name=%d mod=%d %s\n", op, idx, mod, t)
	return off + 4 + n
}

func closureInstruction(b *strings.Builder, c *Chunk, op Op, off int) int {
	idx := c.ReadUint16(off + 1)
	fn := c.Constants[idx]
	fmt.Fprintf(b, "%-16s %4d '%v'\n", op, idx, fn)
	off += 3
	if f, ok := fn.(*Function); ok {
		for i := 0; i < f.UpvalueCount; i++ {
			isLocal := c.Code[off]
			index := c.Code[off+1]
			fmt.Fprintf(b, "%s      |                     %s %d\n", fmtOffset(off), localOrUpvalue(isLocal), index)
			off += 2
		}
	}
	return off
}

func localOrUpvalue(isLocal byte) string {
	if isLocal != 0 {
		return "local"
	}
	return "upvalue"
}
