// Package vm implements Asterisk's virtual machine: a stack of
// CallFrames, a shared operand stack of value cells, a globals table
// backed by lang/hashtable, and the opcode dispatch loop.
//
// The overall shape — an explicit frame stack plus a single shared
// value stack rather than one Go call stack per Asterisk call — is
// grounded on the teacher's lang/machine/thread.go (a Thread owning a
// frame stack and running a dispatch loop over machine.Value) and
// lang/machine/frame.go (a lightweight per-call frame struct), adapted
// from the teacher's closure-calling-convention interpreter to
// Asterisk's explicit arg_offset/CallFrame model (spec.md §4.5).
package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/mna/asterisk/lang/bytecode"
	"github.com/mna/asterisk/lang/hashtable"
	"github.com/mna/asterisk/lang/value"
)

// Frame is one active call's bookkeeping: which closure is executing,
// the instruction cursor into its chunk, and the stack index its local
// slot 0 ("the function itself", per spec.md §4.5) occupies.
type Frame struct {
	Closure  *bytecode.Closure
	ip       int
	slotBase int // stack.stack[slotBase-1] is this frame's own callee cell (local slot 0)
}

// VM is a single-threaded Asterisk execution context: one value stack,
// one frame stack, one globals table. Asterisk has no concurrency
// (spec.md §5), so unlike the teacher's Thread there is no notion of
// multiple cooperating threads sharing a machine.
type VM struct {
	stack  []*value.Cell
	frames []*Frame

	globals *hashtable.Table // name -> *value.Cell

	Out io.Writer
}

// New returns a VM with the standard library natives installed and
// output directed to w (os.Stdout if nil).
func New(w io.Writer) *VM {
	if w == nil {
		w = os.Stdout
	}
	vm := &VM{globals: hashtable.New(), Out: w}
	installStdlib(vm)
	return vm
}

func (vm *VM) push(c *value.Cell) { vm.stack = append(vm.stack, c) }

func (vm *VM) pop() *value.Cell {
	n := len(vm.stack) - 1
	c := vm.stack[n]
	vm.stack = vm.stack[:n]
	return c
}

func (vm *VM) peek(distance int) *value.Cell {
	return vm.stack[len(vm.stack)-1-distance]
}

func (vm *VM) frame() *Frame { return vm.frames[len(vm.frames)-1] }

// Global returns the current value bound to name in the globals table,
// for host inspection after Run returns (e.g. test assertions).
func (vm *VM) Global(name string) (value.Value, bool) {
	raw, ok := vm.globals.Get(name)
	if !ok {
		return value.Value{}, false
	}
	return raw.(*value.Cell).V, true
}

// RuntimeError is a terminal execution error carrying a back-trace of
// the active call frames' function names, innermost first, per spec.md
// §5's "terminates the process with a diagnostic and a stack trace"
// contract.
type RuntimeError struct {
	Msg   string
	Trace []string
}

func (e *RuntimeError) Error() string {
	s := e.Msg
	for _, fn := range e.Trace {
		s += "\n\tat " + fn
	}
	return s
}

func (vm *VM) runtimeError(format string, args ...any) *RuntimeError {
	msg := fmt.Sprintf(format, args...)
	trace := make([]string, 0, len(vm.frames))
	for i := len(vm.frames) - 1; i >= 0; i-- {
		trace = append(trace, vm.frames[i].Closure.Fn.String())
	}
	return &RuntimeError{Msg: msg, Trace: trace}
}

// Run executes fn (the compiled top-level script) to completion,
// treating it as a zero-argument call the same way Call(0) would, per
// spec.md §4.5's Call semantics generalized to program entry.
func (vm *VM) Run(fn *bytecode.Function) error {
	vm.push(value.NewCell(value.NewValue(fn, value.FnType, value.Const)))
	vm.frames = append(vm.frames, &Frame{
		Closure:  &bytecode.Closure{Fn: fn},
		slotBase: len(vm.stack),
	})
	return vm.run()
}
