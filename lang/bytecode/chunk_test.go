package bytecode_test

import (
	"testing"

	"github.com/mna/asterisk/lang/bytecode"
	"github.com/mna/asterisk/lang/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkWriteAndRead(t *testing.T) {
	c := &bytecode.Chunk{}
	c.Write(bytecode.CONSTANT, 1)
	idx := c.AddConstant(value.Int(7))
	c.WriteUint16(idx, 1)
	c.Write(bytecode.RETURN, 2)

	require.Len(t, c.Code, 4)
	assert.Equal(t, 1, c.Line(0))
	assert.Equal(t, 1, c.Line(2))
	assert.Equal(t, 2, c.Line(3))
	assert.Equal(t, idx, c.ReadUint16(1))
}

func TestChunkPatchUint16(t *testing.T) {
	c := &bytecode.Chunk{}
	c.Write(bytecode.JUMP, 1)
	off := len(c.Code)
	c.WriteUint16(0xffff, 1)
	c.PatchUint16(off, 42)
	assert.Equal(t, uint16(42), c.ReadUint16(off))
}

func TestChunkWriteConstant(t *testing.T) {
	c := &bytecode.Chunk{}
	c.WriteConstant(value.String("hi"), 1)
	require.Len(t, c.Constants, 1)
	assert.Equal(t, value.String("hi"), c.Constants[0])
	assert.Equal(t, bytecode.CONSTANT, bytecode.Op(c.Code[0]))
}

func TestChunkTypeRoundtrip(t *testing.T) {
	cases := []value.Type{
		value.IntType,
		value.BoolType,
		value.RefOf(value.FloatType),
		value.StructType("Point"),
		value.RefOf(value.StructType("Point")),
	}
	for _, want := range cases {
		c := &bytecode.Chunk{}
		c.WriteType(want, 1)
		got, n := c.ReadType(0)
		assert.True(t, want.Equal(got), "want %s got %s", want, got)
		assert.Equal(t, len(c.Code), n)
	}
}

func TestDisassembleSimpleChunk(t *testing.T) {
	c := &bytecode.Chunk{}
	c.WriteConstant(value.Int(1), 1)
	c.Write(bytecode.PRINT, 1)
	c.Write(bytecode.RETURN, 1)

	out := bytecode.Disassemble(c, "test")
	assert.Contains(t, out, "== test ==")
	assert.Contains(t, out, "constant")
	assert.Contains(t, out, "print")
	assert.Contains(t, out, "return")
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "add", bytecode.ADD.String())
	assert.Equal(t, "invalid", bytecode.Op(255).String())
}

func TestOpHasOperand(t *testing.T) {
	assert.False(t, bytecode.POP.HasOperand())
	assert.True(t, bytecode.CONSTANT.HasOperand())
	assert.True(t, bytecode.GETLOCAL.HasOperand())
}
