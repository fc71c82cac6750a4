// Package bytecode implements Asterisk's compiled representation: the
// Op instruction set, the Chunk that holds one function's instruction
// stream and constant pool, and the runtime Function/Closure/
// NativeFunction values a Chunk is eventually wrapped in.
//
// The layout (a flat []byte instruction stream, a side constants pool,
// and a parallel run-length line table) is adapted from the teacher's
// compiler.Funcode in lang/compiler/compiled.go, simplified because
// Asterisk has no defer/catch blocks and compiles in a single pass, so
// there is no separate encoder stage to keep in sync.
package bytecode

import (
	"encoding/binary"
	"fmt"

	"github.com/mna/asterisk/lang/value"
)

// Chunk holds one function's compiled instruction stream plus the pool
// of constants (literals, struct blueprints, nested function prototypes)
// its CONSTANT-family opcodes index into.
type Chunk struct {
	Code      []byte
	Constants []value.Primitive

	// lines holds one source line number per byte in Code, run-length
	// encoded as (count, line) pairs to avoid one int per instruction
	// byte, the way the teacher's pclinetab maps pc to line number.
	lines []lineRun
}

type lineRun struct {
	count int
	line  int
}

// Write appends a single opcode byte at the given source line and
// returns its offset in Code.
func (c *Chunk) Write(op Op, line int) int {
	return c.writeByte(byte(op), line)
}

// WriteByte appends a single raw operand byte at the given source line.
func (c *Chunk) WriteByte(b byte, line int) int {
	return c.writeByte(b, line)
}

func (c *Chunk) writeByte(b byte, line int) int {
	off := len(c.Code)
	c.Code = append(c.Code, b)
	if n := len(c.lines); n > 0 && c.lines[n-1].line == line {
		c.lines[n-1].count++
	} else {
		c.lines = append(c.lines, lineRun{count: 1, line: line})
	}
	return off
}

// WriteUint16 appends a big-endian 16-bit operand (used for constant
// pool indices and jump offsets).
func (c *Chunk) WriteUint16(v uint16, line int) {
	c.writeByte(byte(v>>8), line)
	c.writeByte(byte(v), line)
}

// PatchUint16 overwrites the 16-bit operand at off (as written by
// WriteUint16) in place. Used to back-patch a forward jump once its
// target address is known.
func (c *Chunk) PatchUint16(off int, v uint16) {
	c.Code[off] = byte(v >> 8)
	c.Code[off+1] = byte(v)
}

// ReadUint16 decodes the big-endian 16-bit operand at off.
func (c *Chunk) ReadUint16(off int) uint16 {
	return binary.BigEndian.Uint16(c.Code[off : off+2])
}

// AddConstant appends v to the constant pool and returns its index. No
// dedup is performed here: the compiler's own interning maps (backed by
// a swiss.Map, see lang/compiler) decide whether a given literal value
// already has a slot before calling AddConstant.
func (c *Chunk) AddConstant(v value.Primitive) uint16 {
	c.Constants = append(c.Constants, v)
	idx := len(c.Constants) - 1
	if idx > 0xffff {
		panic("bytecode: constant pool overflow")
	}
	return uint16(idx)
}

// WriteConstant is a convenience combining AddConstant and a CONSTANT
// instruction emission.
func (c *Chunk) WriteConstant(v value.Primitive, line int) {
	idx := c.AddConstant(v)
	c.Write(CONSTANT, line)
	c.WriteUint16(idx, line)
}

// Line returns the source line the byte at offset off was emitted for.
func (c *Chunk) Line(off int) int {
	rem := off
	for _, r := range c.lines {
		if rem < r.count {
			return r.line
		}
		rem -= r.count
	}
	if len(c.lines) == 0 {
		return 0
	}
	return c.lines[len(c.lines)-1].line
}

// WriteType encodes a value.Type as a small operand sequence: one Kind
// byte, followed by one more Kind byte for exactly one level of Ref
// nesting (Asterisk does not support Ref(Ref(T))), followed by a 2-byte
// constant pool index holding the struct name as a value.String when
// Kind (or the nested Kind) is KindStruct.
func (c *Chunk) WriteType(t value.Type, line int) {
	c.writeByte(byte(t.Kind), line)
	switch t.Kind {
	case value.KindRef:
		elem := value.VoidType
		if t.Elem != nil {
			elem = *t.Elem
		}
		c.writeByte(byte(elem.Kind), line)
		if elem.Kind == value.KindStruct {
			idx := c.AddConstant(value.String(elem.Name))
			c.WriteUint16(idx, line)
		}
	case value.KindStruct:
		idx := c.AddConstant(value.String(t.Name))
		c.WriteUint16(idx, line)
	}
}

// ReadType decodes a value.Type written by WriteType starting at off,
// returning the type and the number of bytes consumed.
func (c *Chunk) ReadType(off int) (value.Type, int) {
	kind := value.Kind(c.Code[off])
	n := 1
	switch kind {
	case value.KindRef:
		elemKind := value.Kind(c.Code[off+1])
		n++
		elem := value.Type{Kind: elemKind}
		if elemKind == value.KindStruct {
			idx := c.ReadUint16(off + n)
			n += 2
			elem.Name = string(c.Constants[idx].(value.String))
		}
		return value.RefOf(elem), n
	case value.KindStruct:
		idx := c.ReadUint16(off + n)
		n += 2
		return value.StructType(string(c.Constants[idx].(value.String))), n
	default:
		return value.Type{Kind: kind}, n
	}
}

func fmtOffset(off int) string { return fmt.Sprintf("%04d", off) }
