package compiler

import (
	"github.com/mna/asterisk/lang/token"
	"github.com/mna/asterisk/lang/value"
)

// parseType consumes a type annotation: one of the primitive type
// keywords, a struct name, or a '&'-prefixed reference to either,
// per spec.md §6's type surface.
func (p *parser) parseType() value.Type {
	if p.match(token.AMP) {
		return value.RefOf(p.parseType())
	}
	switch {
	case p.match(token.TYPE_INT):
		return value.IntType
	case p.match(token.TYPE_FLOAT):
		return value.FloatType
	case p.match(token.TYPE_STRING):
		return value.StringType
	case p.match(token.TYPE_BOOL):
		return value.BoolType
	case p.match(token.TYPE_VOID):
		return value.VoidType
	case p.check(token.IDENT):
		p.advance()
		return value.StructType(p.prevVal.Raw)
	default:
		p.errorAtCurrent("expect type")
		return value.UninitType
	}
}
