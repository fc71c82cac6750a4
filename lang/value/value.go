package value

import "fmt"

// Modifier is the compile-time attribute of a binding: Unassigned is a
// transient state during declaration, Const forbids reassignment, Mut
// permits it.
type Modifier uint8

const (
	Unassigned Modifier = iota
	Const
	Mut
)

func (m Modifier) String() string {
	switch m {
	case Const:
		return "const"
	case Mut:
		return "mut"
	default:
		return "unassigned"
	}
}

// Primitive is the tagged runtime representation of an Asterisk value.
// Every concrete primitive type in this package implements it, the way
// the teacher's machine.Value interface is implemented by every runtime
// type in lang/machine.
type Primitive interface {
	fmt.Stringer
	Kind() Kind
}

// Int is a 64-bit signed integer primitive.
type Int int64

func (i Int) String() string { return fmt.Sprintf("%d", int64(i)) }
func (i Int) Kind() Kind     { return KindInt }

// Float is a 64-bit IEEE floating point primitive.
type Float float64

func (f Float) String() string { return fmt.Sprintf("%g", float64(f)) }
func (f Float) Kind() Kind     { return KindFloat }

// Bool is a boolean primitive.
type Bool bool

func (b Bool) String() string { return fmt.Sprintf("%t", bool(b)) }
func (b Bool) Kind() Kind     { return KindBool }

// String is an owned-text primitive. Its Go name intentionally matches
// the spec's primitive name (the teacher names its own string wrapper
// type the same way, e.g. lang/types.String).
type String string

func (s String) String() string { return string(s) }
func (s String) Kind() Kind     { return KindString }

// Void is the unit primitive; its only value is the Void variable below.
type Void struct{}

func (Void) String() string { return "void" }
func (Void) Kind() Kind     { return KindVoid }

// VoidValue is the sole Void primitive instance.
var VoidValue = Void{}

// Value is a single binding's content: its runtime primitive, the
// static type it is declared or inferred as, and its mutability
// modifier. This is the payload held inside a Cell.
type Value struct {
	Prim Primitive
	Type Type
	Mod  Modifier
}

// Uninitialized reports whether the Value is still pending its first
// DefineLocal/DefineGlobal (its Type has not yet been fixed).
func (v Value) Uninitialized() bool { return v.Type.Kind == KindUninit }

// NewValue builds a Value with the given primitive, type and modifier.
func NewValue(p Primitive, t Type, m Modifier) Value {
	return Value{Prim: p, Type: t, Mod: m}
}

// Cell is a shared, interior-mutable container holding a Value. Cells
// are the unit of aliasing: locals on the operand stack, globals in the
// globals table, and the target of a Ref all share the same *Cell so
// that a mutation through any alias is observed through every other
// alias. In this Go realization a Cell's lifetime is governed by the
// garbage collector rather than manual reference counting: the last
// holder dropping its pointer is exactly when the collector is free to
// reclaim it, which satisfies spec.md §9's abstract "shared cell with
// exclusive short-lived mutable borrow" contract without needing an
// explicit refcount.
type Cell struct {
	V Value
}

// NewCell allocates a fresh cell holding v.
func NewCell(v Value) *Cell { return &Cell{V: v} }

// Ref is a Primitive that holds a shared handle to another Cell. Ref
// values do not have a dedicated dereference opcode: they flow as
// ordinary values and are only unwrapped at print/equality time (see
// render in lang/vm/render.go and Equal in arith.go), per spec.md §4.5.
type Ref struct {
	Cell *Cell
}

func (r *Ref) String() string { return "ref(" + r.Cell.V.Prim.String() + ")" }
func (r *Ref) Kind() Kind     { return KindRef }
