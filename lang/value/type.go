// Package value implements Asterisk's runtime value representation: the
// tagged Primitive variants, the static Type lattice used for compile-
// and run-time type checks, binding Modifiers, and the shared cells
// that give locals/globals/refs their aliasing semantics.
//
// The design is adapted from the teacher's lang/machine package (an
// interface-based Value with a Type() string method), generalized into
// a closed tagged union with an explicit Kind, since Asterisk's static
// type lattice (Ref(T) nesting, structural equality, an explicit UnInit
// sentinel) needs more structure than a bare type name string can hold.
package value

import "fmt"

// Kind identifies a member of the static Type lattice.
type Kind uint8

const (
	KindInt Kind = iota
	KindFloat
	KindBool
	KindString
	KindStruct
	KindTuple
	KindFn
	KindNativeFn
	KindClosure
	KindRef
	KindVoid
	// KindUninit is the "infer from initializer" sentinel: a declared
	// variable with no explicit type annotation carries this Type until
	// its first DefineLocal/DefineGlobal fixes it from the initializer's
	// value.
	KindUninit
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindBool:
		return "Bool"
	case KindString:
		return "String"
	case KindStruct:
		return "Struct"
	case KindTuple:
		return "Tuple"
	case KindFn:
		return "Fn"
	case KindNativeFn:
		return "NativeFn"
	case KindClosure:
		return "Closure"
	case KindRef:
		return "Ref"
	case KindVoid:
		return "Void"
	case KindUninit:
		return "UnInit"
	default:
		return "?"
	}
}

// Type is a member of the static type lattice used for declaration
// checks, assignment compatibility and Ref nesting. Equality is
// structural: Ref(T) is equal only to Ref(T) with an identical inner
// type, and Struct types are equal only when their names match.
type Type struct {
	Kind Kind
	Elem *Type  // non-nil only when Kind == KindRef: the referent type
	Name string // struct/tuple label, non-empty only when Kind == KindStruct
}

// The static types below are named with a "Type" suffix to keep them
// distinct from the primitive runtime types of the same root name
// declared in value.go (Int, Float, Bool, String are Go types there,
// used as e.g. value.Int(7); these are Type *values* describing them).
var (
	IntType    = Type{Kind: KindInt}
	FloatType  = Type{Kind: KindFloat}
	BoolType   = Type{Kind: KindBool}
	StringType = Type{Kind: KindString}
	VoidType   = Type{Kind: KindVoid}
	UninitType = Type{Kind: KindUninit}
	FnType     = Type{Kind: KindFn}
)

// RefOf returns the Ref(elem) type.
func RefOf(elem Type) Type {
	e := elem
	return Type{Kind: KindRef, Elem: &e}
}

// StructType returns the named Struct type.
func StructType(name string) Type {
	return Type{Kind: KindStruct, Name: name}
}

// Equal reports whether t and o denote the same static type.
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindRef:
		if t.Elem == nil || o.Elem == nil {
			return t.Elem == o.Elem
		}
		return t.Elem.Equal(*o.Elem)
	case KindStruct:
		return t.Name == o.Name
	default:
		return true
	}
}

func (t Type) String() string {
	switch t.Kind {
	case KindRef:
		if t.Elem == nil {
			return "&?"
		}
		return "&" + t.Elem.String()
	case KindStruct:
		if t.Name != "" {
			return t.Name
		}
		return "Struct"
	default:
		return t.Kind.String()
	}
}

// AssignableTo reports whether a value of type t may be written into a
// binding declared with type want, per the DefineLocal/DefineGlobal/
// Set* compatibility rule: an UnInit target accepts anything (and is
// thereby fixed to t), otherwise the types must be Equal.
func (t Type) AssignableTo(want Type) bool {
	if want.Kind == KindUninit {
		return true
	}
	return t.Equal(want)
}

// TypeMismatchError is returned when a Set*/Define* opcode observes an
// incompatible static type.
type TypeMismatchError struct {
	Want, Got Type
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: expected %s, got %s", e.Want, e.Got)
}
