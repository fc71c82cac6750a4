package value

import (
	"fmt"

	"github.com/mna/asterisk/lang/token"
)

// OpError is returned when a binary or unary operator is applied to
// operands of incompatible primitive variants.
type OpError struct {
	Op       token.Token
	Left     Kind
	Right    Kind
	HasRight bool
}

func (e *OpError) Error() string {
	if !e.HasRight {
		return fmt.Sprintf("invalid operand to unary %s: %s", e.Op, e.Left)
	}
	return fmt.Sprintf("invalid operands to %s: %s and %s", e.Op, e.Left, e.Right)
}

// Binary evaluates a+b, a*b or a/b. Both operands must share the same
// primitive numeric variant (Int+Int or Float+Float); mixed-variant
// operands, including the deliberately-unsupported String+String
// concatenation (spec.md §4.2, §9), are a runtime error. The result's
// Modifier and Type are inherited from the left operand.
func Binary(op token.Token, a, b Value) (Value, error) {
	ai, aok := a.Prim.(Int)
	bi, bok := b.Prim.(Int)
	if aok && bok {
		var r Int
		switch op {
		case token.PLUS:
			r = ai + bi
		case token.STAR:
			r = ai * bi
		case token.SLASH:
			if bi == 0 {
				return Value{}, fmt.Errorf("division by zero")
			}
			r = ai / bi
		default:
			return Value{}, &OpError{Op: op, Left: a.Prim.Kind(), Right: b.Prim.Kind(), HasRight: true}
		}
		return Value{Prim: r, Type: a.Type, Mod: a.Mod}, nil
	}

	af, aok := a.Prim.(Float)
	bf, bok := b.Prim.(Float)
	if aok && bok {
		var r Float
		switch op {
		case token.PLUS:
			r = af + bf
		case token.STAR:
			r = af * bf
		case token.SLASH:
			r = af / bf
		default:
			return Value{}, &OpError{Op: op, Left: a.Prim.Kind(), Right: b.Prim.Kind(), HasRight: true}
		}
		return Value{Prim: r, Type: a.Type, Mod: a.Mod}, nil
	}

	return Value{}, &OpError{Op: op, Left: a.Prim.Kind(), Right: b.Prim.Kind(), HasRight: true}
}

// Compare evaluates a<b or a>b. Operands must share the same primitive
// numeric variant; the result is always Bool-typed regardless of the
// operand type, per spec.md §4.2.
func Compare(op token.Token, a, b Value) (Value, error) {
	less := func() (bool, error) {
		if ai, ok := a.Prim.(Int); ok {
			if bi, ok := b.Prim.(Int); ok {
				return ai < bi, nil
			}
		}
		if af, ok := a.Prim.(Float); ok {
			if bf, ok := b.Prim.(Float); ok {
				return af < bf, nil
			}
		}
		return false, &OpError{Op: op, Left: a.Prim.Kind(), Right: b.Prim.Kind(), HasRight: true}
	}

	lt, err := less()
	if err != nil {
		return Value{}, err
	}

	var result bool
	switch op {
	case token.LT:
		result = lt
	case token.GT:
		eq, _ := Equal(a, b)
		result = !lt && !eq.Prim.(Bool).bool()
	default:
		return Value{}, &OpError{Op: op, Left: a.Prim.Kind(), Right: b.Prim.Kind(), HasRight: true}
	}
	return Value{Prim: Bool(result), Type: BoolType, Mod: a.Mod}, nil
}

func (b Bool) bool() bool { return bool(b) }

// Equal evaluates a==b: variant- and value-wise equality, false across
// incompatible variants (never an error), per spec.md §4.2. A Ref
// operand is dereferenced recursively before comparison, per spec.md
// §4.5 ("dereference semantics appear only at print/equality time").
func Equal(a, b Value) (Value, bool) {
	ap, bp := deref(a.Prim), deref(b.Prim)
	return Value{Prim: Bool(primitiveEqual(ap, bp)), Type: BoolType, Mod: a.Mod}, true
}

func deref(p Primitive) Primitive {
	for {
		r, ok := p.(*Ref)
		if !ok {
			return p
		}
		p = r.Cell.V.Prim
	}
}

func primitiveEqual(a, b Primitive) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Int:
		return av == b.(Int)
	case Float:
		return av == b.(Float)
	case Bool:
		return av == b.(Bool)
	case String:
		return av == b.(String)
	case Void:
		return true
	default:
		return a == b // identity equality for Function/NativeFunction/Struct/Instance
	}
}

// Negate evaluates unary '-' (Int, Float) and '!' (Bool, as logical
// NOT), per spec.md §4.2.
func Negate(v Value) (Value, error) {
	switch p := v.Prim.(type) {
	case Int:
		return Value{Prim: -p, Type: v.Type, Mod: v.Mod}, nil
	case Float:
		return Value{Prim: -p, Type: v.Type, Mod: v.Mod}, nil
	case Bool:
		return Value{Prim: !p, Type: v.Type, Mod: v.Mod}, nil
	default:
		return Value{}, &OpError{Op: token.MINUS, Left: v.Prim.Kind()}
	}
}

// Not evaluates unary logical negation explicitly (the NOT opcode).
func Not(v Value) (Value, error) {
	b, ok := v.Prim.(Bool)
	if !ok {
		return Value{}, &OpError{Op: token.BANG, Left: v.Prim.Kind()}
	}
	return Value{Prim: !b, Type: BoolType, Mod: v.Mod}, nil
}
