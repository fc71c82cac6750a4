package asterisk_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mna/asterisk"
	"github.com/mna/asterisk/lang/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runGlobal(t *testing.T, src, name string) value.Value {
	t.Helper()
	var out bytes.Buffer
	vm, err := asterisk.RunVM([]byte(src), &out)
	require.NoError(t, err)
	v, ok := vm.Global(name)
	require.True(t, ok, "global %q was never defined", name)
	return v
}

func TestWhileLoopCountsToTen(t *testing.T) {
	v := runGlobal(t, `let mut n: Int = 0; while (n < 10) { n = n + 1; }`, "n")
	assert.Equal(t, value.Int(10), v.Prim)
}

func TestShortCircuitAndOr(t *testing.T) {
	v := runGlobal(t, `let mut a = 32; if (a == 20 && a < 10 || a == 32) { a = 10; }`, "a")
	assert.Equal(t, value.Int(10), v.Prim)
}

func TestFunctionCallReturnsArgument(t *testing.T) {
	v := runGlobal(t, `fn f(n: Int) { return n; } let g = f(2);`, "g")
	assert.Equal(t, value.Int(2), v.Prim)
}

func TestClosureCapturesAndMutatesUpvalue(t *testing.T) {
	src := `
		fn make() {
			let mut i = 0;
			fn c() { i = i + 1; return i; }
			return c;
		}
		let ctr = make();
		let x = ctr();
		let y = ctr();
	`
	var out bytes.Buffer
	vm, err := asterisk.RunVM([]byte(src), &out)
	require.NoError(t, err)

	x, ok := vm.Global("x")
	require.True(t, ok)
	y, ok := vm.Global("y")
	require.True(t, ok)
	assert.Equal(t, value.Int(1), x.Prim)
	assert.Equal(t, value.Int(2), y.Prim)
}

func TestStringAndIntEquality(t *testing.T) {
	src := `let a = 'str' == 'str'; let b = 2 == 1;`
	var out bytes.Buffer
	vm, err := asterisk.RunVM([]byte(src), &out)
	require.NoError(t, err)

	a, _ := vm.Global("a")
	b, _ := vm.Global("b")
	assert.Equal(t, value.Bool(true), a.Prim)
	assert.Equal(t, value.Bool(false), b.Prim)
}

func TestSwitchFallsThroughToSecondCase(t *testing.T) {
	src := `
		let mut n = 0;
		switch (n) {
			case 1 => { n = 1; }
			case 0 => { n = 2; }
		}
	`
	v := runGlobal(t, src, "n")
	assert.Equal(t, value.Int(2), v.Prim)
}

func TestPrintDereferencesRef(t *testing.T) {
	src := `let mut n = 7; let r = &n; print r;`
	var out bytes.Buffer
	_, err := asterisk.RunVM([]byte(src), &out)
	require.NoError(t, err)
	assert.Equal(t, "7\n", out.String())
}

func TestStructFieldAccessAndMutation(t *testing.T) {
	src := `
		struct Point { x: Int, y: Int }
		let mut p = Point { x: 1, y: 2 };
		p.x = 9;
		let gotX = p.x;
	`
	v := runGlobal(t, src, "gotX")
	assert.Equal(t, value.Int(9), v.Prim)
}

func TestAssignToImmutableGlobalIsRuntimeError(t *testing.T) {
	var out bytes.Buffer
	_, err := asterisk.RunVM([]byte(`let a = 32; a = 2;`), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "immutable")
}

func TestTypeMismatchAtDefineIsRuntimeError(t *testing.T) {
	var out bytes.Buffer
	_, err := asterisk.RunVM([]byte(`let a: Int = 'x';`), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type mismatch")
}

func TestUndeclaredIdentifierAfterScopeExitIsCompileError(t *testing.T) {
	var out bytes.Buffer
	_, err := asterisk.RunVM([]byte(`{ let a = 1; } a;`), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undeclared")
}

func TestDivisionByZeroIsRuntimeError(t *testing.T) {
	var out bytes.Buffer
	_, err := asterisk.RunVM([]byte(`let mut x = 1; x = 1 / 0;`), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "division by zero")
}

func TestNonCallableValueIsRuntimeError(t *testing.T) {
	var out bytes.Buffer
	_, err := asterisk.RunVM([]byte(`let mut n = 1; let r = n();`), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not callable")
}

func TestArityMismatchIsRuntimeError(t *testing.T) {
	var out bytes.Buffer
	_, err := asterisk.RunVM([]byte(`fn f(n: Int) { return n; } let g = f();`), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "argument")
}

func TestRepeatedAssignmentStatementsDoNotUnbalanceTheStack(t *testing.T) {
	src := `
		let mut n = 0;
		n = n + 1;
		n = n + 1;
		n = n + 1;
	`
	v := runGlobal(t, src, "n")
	assert.Equal(t, value.Int(3), v.Prim)
}

func TestAssignmentIsAnExpression(t *testing.T) {
	src := `let mut a = 1; let b = (a = 5) + 1;`
	var out bytes.Buffer
	vm, err := asterisk.RunVM([]byte(src), &out)
	require.NoError(t, err)

	a, _ := vm.Global("a")
	b, _ := vm.Global("b")
	assert.Equal(t, value.Int(5), a.Prim)
	assert.Equal(t, value.Int(6), b.Prim)
}

func TestAnonymousFunctionExpressionAsValue(t *testing.T) {
	src := `
		let n = fn(n: String) { return 1; };
		let g = n('some');
	`
	v := runGlobal(t, src, "g")
	assert.Equal(t, value.Int(1), v.Prim)
}

func TestAnonymousFunctionExpressionImmediatelyInvoked(t *testing.T) {
	src := `
		let n = fn() { return 1; }();
		let g = n;
	`
	v := runGlobal(t, src, "g")
	assert.Equal(t, value.Int(1), v.Prim)
}

func TestNativeTypeofAndDuration(t *testing.T) {
	src := `let t = typeof(3); let d = duration();`
	var out bytes.Buffer
	vm, err := asterisk.RunVM([]byte(src), &out)
	require.NoError(t, err)

	tv, _ := vm.Global("t")
	assert.Equal(t, value.String("Int"), tv.Prim)

	dv, _ := vm.Global("d")
	_, ok := dv.Prim.(value.Int)
	assert.True(t, ok, "duration() should return an Int")
}

func TestCompileErrorFormat(t *testing.T) {
	var out bytes.Buffer
	_, err := asterisk.RunVM([]byte(`let mut = 1;`), &out)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "at line"))
	assert.True(t, strings.Contains(err.Error(), "position:"))
}
