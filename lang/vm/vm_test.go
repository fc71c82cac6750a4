package vm_test

import (
	"bytes"
	"testing"

	"github.com/mna/asterisk/lang/compiler"
	"github.com/mna/asterisk/lang/value"
	"github.com/mna/asterisk/lang/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileAndRun(t *testing.T, src string) (*vm.VM, error) {
	t.Helper()
	fn, errs := compiler.Compile([]byte(src))
	require.Empty(t, errs)
	var out bytes.Buffer
	m := vm.New(&out)
	err := m.Run(fn)
	return m, err
}

func TestRunDefinesGlobalWithInferredType(t *testing.T) {
	m, err := compileAndRun(t, `let n = 41 + 1;`)
	require.NoError(t, err)
	v, ok := m.Global("n")
	require.True(t, ok)
	assert.Equal(t, value.Int(42), v.Prim)
	assert.Equal(t, value.IntType, v.Type)
}

func TestRunReportsUnknownGlobal(t *testing.T) {
	m, err := compileAndRun(t, `let n = 1;`)
	require.NoError(t, err)
	_, ok := m.Global("nope")
	assert.False(t, ok)
}

func TestRuntimeErrorIncludesCallTrace(t *testing.T) {
	_, err := compileAndRun(t, `
		fn inner() { return 1 / 0; }
		fn outer() { return inner(); }
		let r = outer();
	`)
	require.Error(t, err)
	rerr, ok := err.(*vm.RuntimeError)
	require.True(t, ok)
	assert.Contains(t, rerr.Error(), "division by zero")
	// Trace runs innermost-first: inner, then outer, then the script.
	require.Len(t, rerr.Trace, 3)
	assert.Equal(t, "<fn inner>", rerr.Trace[0])
	assert.Equal(t, "<fn outer>", rerr.Trace[1])
}

func TestNativeDurationIsNonNegative(t *testing.T) {
	m, err := compileAndRun(t, `let d = duration();`)
	require.NoError(t, err)
	d, ok := m.Global("d")
	require.True(t, ok)
	n, ok := d.Prim.(value.Int)
	require.True(t, ok)
	assert.GreaterOrEqual(t, int64(n), int64(0))
}

func TestNativeTypeofReportsDeclaredKinds(t *testing.T) {
	m, err := compileAndRun(t, `
		let a = typeof(1);
		let b = typeof(1.5);
		let c = typeof(true);
		let e = typeof('hi');
	`)
	require.NoError(t, err)
	for name, want := range map[string]value.String{
		"a": "Int",
		"b": "Float",
		"c": "Bool",
		"e": "String",
	} {
		v, ok := m.Global(name)
		require.True(t, ok)
		assert.Equal(t, want, v.Prim, "global %s", name)
	}
}

func TestCallingArityMismatchLeavesNoPartialGlobal(t *testing.T) {
	m, err := compileAndRun(t, `fn f(n: Int) { return n; } let g = f(1, 2);`)
	require.Error(t, err)
	_, ok := m.Global("g")
	assert.False(t, ok, "g must not be defined when the call errors")
}
