package bytecode

import (
	"fmt"

	"github.com/mna/asterisk/lang/value"
)

// Function is a compiled Asterisk function: its name, arity, upvalue
// count and chunk of bytecode. It implements value.Primitive so it can sit in a
// constant pool or a Cell like any other runtime value, the way the
// teacher's compiler.Funcode is wrapped by a callable runtime Function
// in lang/machine/function.go.
type Function struct {
	Name         string
	Arity        int
	UpvalueCount int
	Chunk        *Chunk

	// Upvalues is not filled by the VM: the CLOSURE opcode handler puts
	// the captured cells, one per upvalue descriptor recorded at compile
	// time (see UpvalueDesc), in the Closure it builds instead.
	Upvalues []*value.Cell
}

func (f *Function) String() string {
	if f.Name == "" {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name)
}

func (f *Function) Kind() value.Kind { return value.KindFn }

// UpvalueDesc records, for one upvalue slot of a compiled function, where
// the CLOSURE opcode should take its cell from: either the enclosing
// function's own locals (IsLocal true, Index is a local slot) or the
// enclosing function's own upvalue list (IsLocal false, Index is an
// upvalue index), mirroring the teacher's Freevars/Cells bookkeeping in
// lang/compiler/compiled.go collapsed into the single CLOSURE operand
// described in the opcode table.
type UpvalueDesc struct {
	IsLocal bool
	Index   uint8
}

// NativeFunction is a Go-implemented function exposed to Asterisk source,
// such as duration() and typeof(). It implements value.Primitive so it
// can be installed as a global the same way a compiled Function is.
type NativeFunction struct {
	Name  string
	Arity int
	Fn    func(args []value.Value) (value.Value, error)
}

func (n *NativeFunction) String() string { return fmt.Sprintf("<native fn %s>", n.Name) }
func (n *NativeFunction) Kind() value.Kind { return value.KindNativeFn }

// Closure is the runtime value produced by the CLOSURE opcode: a
// Function paired with the upvalue cells it captured at closure-creation
// time. Every CLOSURE instruction produces one, with an empty Upvalues
// list when the body captures nothing; a bare *Function is only seen as
// a CONSTANT operand and as the script function passed to the VM's Run.
type Closure struct {
	Fn       *Function
	Upvalues []*value.Cell
}

func (c *Closure) String() string  { return c.Fn.String() }
func (c *Closure) Kind() value.Kind { return value.KindClosure }
