package compiler_test

import (
	"testing"

	"github.com/mna/asterisk/lang/bytecode"
	"github.com/mna/asterisk/lang/compiler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileOK(t *testing.T, src string) *bytecode.Function {
	t.Helper()
	fn, errs := compiler.Compile([]byte(src))
	require.Empty(t, errs, "unexpected compile errors: %v", errs)
	require.NotNil(t, fn)
	return fn
}

func TestCompileSimpleGlobalDefinesGlobal(t *testing.T) {
	fn := compileOK(t, `let mut n: Int = 0;`)
	out := bytecode.Disassemble(fn.Chunk, "main")
	assert.Contains(t, out, "defineglobal")
	assert.Contains(t, out, "constant")
}

func TestCompileMinusCompilesToNegateAdd(t *testing.T) {
	fn := compileOK(t, `let mut x = 5 - 2;`)
	out := bytecode.Disassemble(fn.Chunk, "main")
	assert.Contains(t, out, "negate")
	assert.Contains(t, out, "add")
	assert.NotContains(t, out, "subtract")
}

func TestCompileFunctionEmitsClosureAndArity(t *testing.T) {
	fn := compileOK(t, `fn add(a: Int, b: Int) -> Int { return a + b; }`)
	out := bytecode.Disassemble(fn.Chunk, "main")
	assert.Contains(t, out, "closure")

	var nested *bytecode.Function
	for _, c := range fn.Chunk.Constants {
		if f, ok := c.(*bytecode.Function); ok {
			nested = f
		}
	}
	require.NotNil(t, nested)
	assert.Equal(t, 2, nested.Arity)
}

func TestCompileNestedClosureCapturesEnclosingLocal(t *testing.T) {
	fn := compileOK(t, `
		fn make() {
			let mut i = 0;
			fn c() { i = i + 1; return i; }
			return c;
		}
	`)
	var outer *bytecode.Function
	for _, c := range fn.Chunk.Constants {
		if f, ok := c.(*bytecode.Function); ok {
			outer = f
		}
	}
	require.NotNil(t, outer)

	var inner *bytecode.Function
	for _, c := range outer.Chunk.Constants {
		if f, ok := c.(*bytecode.Function); ok {
			inner = f
		}
	}
	require.NotNil(t, inner)
	assert.Equal(t, 1, inner.UpvalueCount)

	out := bytecode.Disassemble(inner.Chunk, "c")
	assert.Contains(t, out, "getupvalue")
	assert.Contains(t, out, "setupvalue")
}

func TestCompileStructDeclarationAndLiteral(t *testing.T) {
	fn := compileOK(t, `
		struct Point { x: Int, y: Int }
		let p = Point { x: 1, y: 2 };
	`)
	out := bytecode.Disassemble(fn.Chunk, "main")
	assert.Contains(t, out, "makeinstance")

	found := false
	for _, c := range fn.Chunk.Constants {
		if c.String() == "<struct Point>" {
			found = true
		}
	}
	assert.True(t, found, "expected the Point struct blueprint in the constant pool")
}

func TestCompileSwitchEmitsPartialEqual(t *testing.T) {
	fn := compileOK(t, `
		let mut n = 0;
		switch (n) {
			case 1 => { n = 1; }
			default => { n = 9; }
		}
	`)
	out := bytecode.Disassemble(fn.Chunk, "main")
	assert.Contains(t, out, "partialequal")
}

func TestCompileErrorsAccumulateAndSynchronize(t *testing.T) {
	_, errs := compiler.Compile([]byte(`
		let mut = 1;
		let mut m = 2;
	`))
	require.NotEmpty(t, errs)
	// The second, well-formed declaration should still compile without
	// adding a second error once synchronize() skips past the first.
	assert.Len(t, errs, 1)
}

func TestCompileUndeclaredGlobalReadIsCompileError(t *testing.T) {
	_, errs := compiler.Compile([]byte(`{ let a = 1; } a;`))
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "undeclared")
}

func TestCompileErrorReportsLineAndLexeme(t *testing.T) {
	_, errs := compiler.Compile([]byte("let mut = 1;"))
	require.NotEmpty(t, errs)
	assert.Equal(t, 1, errs[0].Line)
	assert.Contains(t, errs[0].Error(), "position:")
}
