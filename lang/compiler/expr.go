package compiler

import (
	"strconv"

	"github.com/mna/asterisk/lang/bytecode"
	"github.com/mna/asterisk/lang/token"
	"github.com/mna/asterisk/lang/value"
)

func grouping(p *parser, _ bool) {
	p.expression()
	p.consume(token.RPAREN, "expect ')' after expression")
}

// lambda compiles an anonymous function expression, `fn(params) { body }`,
// leaving the resulting closure on the stack as the expression's value
// instead of binding it to a name the way funDeclaration does. The
// `call` infix rule already registered for '(' then lets the Pratt loop
// parse an immediate invocation, `fn() { ... }()`, with no extra rule.
func lambda(p *parser, _ bool) {
	fn, upvalues := p.function("<anonymous>", fnTypeFunction)
	p.emitClosure(fn, upvalues)
}

func unary(p *parser, _ bool) {
	op := p.prevTok
	p.parsePrecedence(precUnary)
	switch op {
	case token.MINUS:
		p.emit(bytecode.NEGATE)
	case token.BANG:
		p.emit(bytecode.NOT)
	}
}

// ref compiles `&lvalue`, emitting SETREFLOCAL/SETREFGLOBAL against the
// lvalue's resolved slot/name, per spec.md §4.4's References section.
func ref(p *parser, _ bool) {
	p.consume(token.IDENT, "expect identifier after '&'")
	name := p.prevVal.Raw
	if slot, ok := resolveLocal(p.current, name); ok {
		p.emit(bytecode.SETREFLOCAL)
		p.emitByte(byte(slot))
		return
	}
	if idx, ok := resolveUpvalue(p.current, name); ok {
		// Referencing a captured upvalue still resolves to the original
		// owning local's cell; GETUPVALUE already yields that same shared
		// cell, so a Ref built from it is just that cell wrapped again.
		p.emit(bytecode.GETUPVALUE)
		p.emitByte(byte(idx))
		return
	}
	if !p.isDeclaredGlobal(name) {
		p.error("undeclared identifier '" + name + "'")
		return
	}
	nameIdx := p.internConstant(name)
	p.emit(bytecode.SETREFGLOBAL)
	p.emitUint16(nameIdx)
}

func binary(p *parser, _ bool) {
	op := p.prevTok
	r := getRule(op)
	p.parsePrecedence(r.prec + 1)

	switch op {
	case token.PLUS:
		p.emit(bytecode.ADD)
	case token.MINUS:
		// No SUBTRACT opcode exists (spec.md §4.3's arithmetic set is
		// Add/Multiply/Divide only): b - is negated in place, then added.
		p.emit(bytecode.NEGATE)
		p.emit(bytecode.ADD)
	case token.STAR:
		p.emit(bytecode.MULTIPLY)
	case token.SLASH:
		p.emit(bytecode.DIVIDE)
	case token.EQ_EQ:
		p.emit(bytecode.EQUAL)
	case token.BANG_EQ:
		p.emit(bytecode.EQUAL)
		p.emit(bytecode.NOT)
	case token.GT:
		p.emit(bytecode.GREATER)
	case token.GT_EQ:
		p.emit(bytecode.LESS)
		p.emit(bytecode.NOT)
	case token.LT:
		p.emit(bytecode.LESS)
	case token.LT_EQ:
		p.emit(bytecode.GREATER)
		p.emit(bytecode.NOT)
	}
}

func and_(p *parser, _ bool) {
	endJump := p.emitJump(bytecode.JUMPIFFALSE)
	p.emit(bytecode.POP)
	p.parsePrecedence(precAnd)
	p.patchJump(endJump)
}

func or_(p *parser, _ bool) {
	endJump := p.emitJump(bytecode.JUMPIFTRUE)
	p.emit(bytecode.POP)
	p.parsePrecedence(precOr)
	p.patchJump(endJump)
}

func intLit(p *parser, _ bool) {
	n, err := strconv.ParseInt(p.prevVal.Raw, 10, 64)
	if err != nil {
		n = p.prevVal.Int
	}
	p.chunk().WriteConstant(value.Int(n), p.prevVal.Line)
}

func floatLit(p *parser, _ bool) {
	p.chunk().WriteConstant(value.Float(p.prevVal.Float), p.prevVal.Line)
}

func stringLit(p *parser, _ bool) {
	p.chunk().WriteConstant(value.String(p.prevVal.Raw), p.prevVal.Line)
}

func literal(p *parser, _ bool) {
	switch p.prevTok {
	case token.TRUE:
		p.emit(bytecode.TRUE)
	case token.FALSE:
		p.emit(bytecode.FALSE)
	case token.NIL:
		p.emit(bytecode.NIL)
	}
}

// variable compiles a bare identifier as either a read or, when
// canAssign and immediately followed by '=', a write. Resolution order
// is local, then upvalue, then global, matching the teacher's resolver
// binding-kind precedence (local > free > global/universe).
func variable(p *parser, canAssign bool) {
	name := p.prevVal.Raw

	if slot, ok := resolveLocal(p.current, name); ok {
		if canAssign && p.match(token.EQ) {
			mod := p.current.locals[slot].mod
			p.expression()
			p.emit(bytecode.SETLOCAL)
			p.emitByte(byte(slot))
			p.emitByte(byte(mod))
			return
		}
		p.emit(bytecode.GETLOCAL)
		p.emitByte(byte(slot))
		return
	}

	if idx, ok := resolveUpvalue(p.current, name); ok {
		if canAssign && p.match(token.EQ) {
			p.expression()
			p.emit(bytecode.SETUPVALUE)
			p.emitByte(byte(idx))
			return
		}
		p.emit(bytecode.GETUPVALUE)
		p.emitByte(byte(idx))
		return
	}

	if !p.noStructLiteral && p.check(token.LBRACE) {
		blueprintIdx, ok := p.lookupStruct(name)
		if !ok {
			p.error("undeclared struct '" + name + "'")
			return
		}
		structLiteral(p, blueprintIdx)
		return
	}

	if !p.isDeclaredGlobal(name) {
		p.error("undeclared identifier '" + name + "'")
		return
	}
	nameIdx := p.internConstant(name)

	if canAssign && p.match(token.EQ) {
		p.expression()
		p.emit(bytecode.SETGLOBAL)
		p.emitUint16(nameIdx)
		return
	}

	p.emit(bytecode.GETGLOBAL)
	p.emitUint16(nameIdx)
}

// structLiteral compiles `Name { field: expr, ... }`, evaluating field
// expressions in source order and emitting MAKEINSTANCE against the
// struct's blueprint constant index, per spec.md §4.4's struct
// instantiation rule.
func structLiteral(p *parser, blueprintIdx uint16) {
	p.advance() // consume '{'
	for !p.check(token.RBRACE) {
		p.consume(token.IDENT, "expect field name")
		p.consume(token.COLON, "expect ':' after field name")
		p.expression()
		if !p.check(token.RBRACE) {
			p.consume(token.COMMA, "expect ',' between fields")
		}
	}
	p.consume(token.RBRACE, "expect '}' after struct literal fields")
	p.emit(bytecode.MAKEINSTANCE)
	p.emitUint16(blueprintIdx)
}

// dot compiles `.field` access/assignment against an already-parsed
// instance expression on the stack.
func dot(p *parser, canAssign bool) {
	p.consume(token.IDENT, "expect field name after '.'")
	nameIdx := p.internConstant(p.prevVal.Raw)
	if canAssign && p.match(token.EQ) {
		p.expression()
		p.emit(bytecode.SETFIELD)
		p.emitUint16(nameIdx)
		return
	}
	p.emit(bytecode.GETFIELD)
	p.emitUint16(nameIdx)
}

// call compiles `(args...)` against an already-parsed callee on the
// stack, per spec.md §4.5's Call(argc) convention.
func call(p *parser, _ bool) {
	argc := p.argumentList()
	p.emit(bytecode.CALL)
	p.emitByte(byte(argc))
}

func (p *parser) argumentList() int {
	argc := 0
	if !p.check(token.RPAREN) {
		for {
			p.expression()
			argc++
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RPAREN, "expect ')' after arguments")
	return argc
}
