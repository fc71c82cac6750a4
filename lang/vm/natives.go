package vm

import (
	"time"

	"github.com/mna/asterisk/lang/bytecode"
	"github.com/mna/asterisk/lang/value"
)

// installStdlib registers Asterisk's two built-in native functions
// into globals, the way init_std_lib wires natives before the root
// function runs (spec.md §6). Both are defined by their abstract
// signature only; this is the one concrete implementation choice this
// module makes for each.
func installStdlib(vm *VM) {
	start := time.Now()

	vm.defineNative("duration", 0, func(args []value.Value) (value.Value, error) {
		ns := value.Int(time.Since(start).Nanoseconds())
		return value.NewValue(ns, value.IntType, value.Const), nil
	})

	vm.defineNative("typeof", 1, func(args []value.Value) (value.Value, error) {
		name := value.String(args[0].Prim.Kind().String())
		return value.NewValue(name, value.StringType, value.Const), nil
	})
}

func (vm *VM) defineNative(name string, arity int, fn func(args []value.Value) (value.Value, error)) {
	native := &bytecode.NativeFunction{Name: name, Arity: arity, Fn: fn}
	cell := value.NewCell(value.NewValue(native, value.Type{Kind: value.KindNativeFn}, value.Const))
	vm.globals.Insert(name, cell)
}
