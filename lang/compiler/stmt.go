package compiler

import (
	"github.com/mna/asterisk/lang/bytecode"
	"github.com/mna/asterisk/lang/token"
	"github.com/mna/asterisk/lang/value"
)

// declaration → varDecl | funDecl | structDecl | block | statement,
// per spec.md §4.4's grammar. Falls back to synchronize() on error so a
// single bad declaration does not abort the whole compile.
func (p *parser) declaration() {
	switch {
	case p.match(token.LET):
		p.varDeclaration()
	case p.match(token.FN):
		p.funDeclaration()
	case p.match(token.STRUCT):
		p.structDeclaration()
	default:
		p.statement()
	}
	if p.panicMode {
		p.synchronize()
	}
}

func (p *parser) varDeclaration() {
	mod := value.Const
	if p.match(token.MUT) {
		mod = value.Mut
	}
	p.consume(token.IDENT, "expect variable name")
	name := p.prevVal.Raw

	isLocal := p.current.scopeDepth > 0
	var nameIdx uint16
	if isLocal {
		p.declareLocal(name, mod)
	} else {
		nameIdx = p.internConstant(name)
		p.declareGlobal(name)
	}

	declType := value.UninitType
	if p.match(token.COLON) {
		declType = p.parseType()
	}

	if !p.match(token.EQ) {
		p.error("variable declaration requires an initializer")
		return
	}
	p.expression()
	p.consume(token.SEMI, "expect ';' after variable declaration")

	if isLocal {
		slot := len(p.current.locals) - 1
		p.markInitialized(declType)
		p.emit(bytecode.DEFINELOCAL)
		p.emitByte(byte(slot))
		p.emitByte(byte(mod))
		p.chunk().WriteType(declType, p.prevVal.Line)
	} else {
		p.emit(bytecode.DEFINEGLOBAL)
		p.emitUint16(nameIdx)
		p.emitByte(byte(mod))
		p.chunk().WriteType(declType, p.prevVal.Line)
	}
}

func (p *parser) funDeclaration() {
	p.consume(token.IDENT, "expect function name")
	name := p.prevVal.Raw

	isLocal := p.current.scopeDepth > 0
	var nameIdx uint16
	var slot int
	if isLocal {
		p.declareLocal(name, value.Const)
		slot = len(p.current.locals) - 1
		p.markInitialized(value.FnType) // allow recursive self-reference during body compile
	} else {
		nameIdx = p.internConstant(name)
		p.declareGlobal(name)
	}

	fn, upvalues := p.function(name, fnTypeFunction)
	p.emitClosure(fn, upvalues)

	if isLocal {
		p.emit(bytecode.DEFINELOCAL)
		p.emitByte(byte(slot))
		p.emitByte(byte(value.Const))
		p.chunk().WriteType(value.FnType, p.prevVal.Line)
	} else {
		p.emit(bytecode.DEFINEGLOBAL)
		p.emitUint16(nameIdx)
		p.emitByte(byte(value.Const))
		p.chunk().WriteType(value.FnType, p.prevVal.Line)
	}
}

// function compiles a parameter list and body block in a fresh fnState,
// returning the finished Function and its resolved upvalue descriptors.
func (p *parser) function(name string, typ fnType) (*bytecode.Function, []bytecode.UpvalueDesc) {
	p.current = newFnState(p.current, name, typ)
	p.beginScope()

	p.consume(token.LPAREN, "expect '(' after function name")
	if !p.check(token.RPAREN) {
		for {
			p.consume(token.IDENT, "expect parameter name")
			pname := p.prevVal.Raw
			p.consume(token.COLON, "expect ':' after parameter name")
			ptyp := p.parseType()
			p.declareLocal(pname, value.Mut)
			p.markInitialized(ptyp)
			p.current.fn.Arity++
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RPAREN, "expect ')' after parameters")

	if p.match(token.MINUS_GT) {
		p.parseType() // return type is informational only; no runtime check is emitted beyond the body's own Return
	}

	p.consume(token.LBRACE, "expect '{' before function body")
	p.blockBody()

	upvalues := p.current.upvalues
	fn := p.endFunction()
	return fn, upvalues
}

func (p *parser) structDeclaration() {
	p.consume(token.IDENT, "expect struct name")
	name := p.prevVal.Raw
	p.consume(token.LBRACE, "expect '{' after struct name")

	var fields []value.FieldDecl
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		p.consume(token.IDENT, "expect field name")
		fname := p.prevVal.Raw
		p.consume(token.COLON, "expect ':' after field name")
		ftyp := p.parseType()
		fields = append(fields, value.FieldDecl{Name: fname, Type: ftyp})
		if !p.check(token.RBRACE) {
			p.consume(token.COMMA, "expect ',' between struct fields")
		}
	}
	p.consume(token.RBRACE, "expect '}' after struct fields")

	blueprint := value.NewStruct(name, fields)
	idx := p.chunk().AddConstant(blueprint)
	p.registerStruct(name, idx)

	isLocal := p.current.scopeDepth > 0
	if isLocal {
		p.declareLocal(name, value.Const)
		slot := len(p.current.locals) - 1
		p.emit(bytecode.CONSTANT)
		p.emitUint16(idx)
		p.markInitialized(value.StructType(name))
		p.emit(bytecode.DEFINELOCAL)
		p.emitByte(byte(slot))
		p.emitByte(byte(value.Const))
		p.chunk().WriteType(value.StructType(name), p.prevVal.Line)
	} else {
		nameIdx := p.internConstant(name)
		p.declareGlobal(name)
		p.emit(bytecode.CONSTANT)
		p.emitUint16(idx)
		p.emit(bytecode.DEFINEGLOBAL)
		p.emitUint16(nameIdx)
		p.emitByte(byte(value.Const))
		p.chunk().WriteType(value.StructType(name), p.prevVal.Line)
	}
}

func (p *parser) statement() {
	switch {
	case p.match(token.PRINT):
		p.printStatement()
	case p.match(token.IF):
		p.ifStatement()
	case p.match(token.WHILE):
		p.whileStatement()
	case p.match(token.FOR):
		p.forStatement()
	case p.match(token.SWITCH):
		p.switchStatement()
	case p.match(token.RETURN):
		p.returnStatement()
	case p.match(token.LBRACE):
		p.beginScope()
		p.blockBody()
		p.endScope()
	default:
		p.expressionStatement()
	}
}

// blockBody compiles declaration* up to (and consuming) the closing
// '}'; the caller is responsible for begin/endScope.
func (p *parser) blockBody() {
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		p.declaration()
	}
	p.consume(token.RBRACE, "expect '}' after block")
}

func (p *parser) printStatement() {
	p.expression()
	p.consume(token.SEMI, "expect ';' after value")
	p.emit(bytecode.PRINT)
}

func (p *parser) expressionStatement() {
	p.expression()
	p.consume(token.SEMI, "expect ';' after expression")
	p.emit(bytecode.POP)
}

func (p *parser) returnStatement() {
	if p.current.typ == fnTypeScript {
		p.error("cannot return from top-level code")
	}
	if p.match(token.SEMI) {
		p.emit(bytecode.NIL)
		p.emit(bytecode.RETURN)
		return
	}
	p.expression()
	p.consume(token.SEMI, "expect ';' after return value")
	p.emit(bytecode.RETURN)
}

// withoutStructLiteral runs fn with bare struct-literal parsing
// disabled, restoring the previous setting afterward, for condition
// expressions where `x {` would otherwise be ambiguous with a
// following block.
func (p *parser) withoutStructLiteral(fn func()) {
	prev := p.noStructLiteral
	p.noStructLiteral = true
	fn()
	p.noStructLiteral = prev
}

// ifStatement implements spec.md §4.4's If/else/else-if compilation
// recipe exactly.
func (p *parser) ifStatement() {
	p.consume(token.LPAREN, "expect '(' after 'if'")
	p.withoutStructLiteral(p.expression)
	p.consume(token.RPAREN, "expect ')' after condition")

	thenJump := p.emitJump(bytecode.JUMPIFFALSE)
	p.emit(bytecode.POP)
	p.statementAsBlock()

	elseJump := p.emitJump(bytecode.JUMP)
	p.patchJump(thenJump)
	p.emit(bytecode.POP)

	if p.match(token.ELSE) {
		if p.check(token.IF) {
			p.advance()
			p.ifStatement()
		} else {
			p.statementAsBlock()
		}
	}
	p.patchJump(elseJump)
}

// statementAsBlock compiles an if/while/for/switch-arm body as a single
// statement. Braces are not required: a `{ ... }` body is simply the
// block form that statement already accepts.
func (p *parser) statementAsBlock() { p.statement() }

func (p *parser) whileStatement() {
	loopStart := len(p.chunk().Code)
	p.consume(token.LPAREN, "expect '(' after 'while'")
	p.withoutStructLiteral(p.expression)
	p.consume(token.RPAREN, "expect ')' after condition")

	exitJump := p.emitJump(bytecode.JUMPIFFALSE)
	p.emit(bytecode.POP)
	p.statementAsBlock()
	p.emitLoop(loopStart)

	p.patchJump(exitJump)
	p.emit(bytecode.POP)
}

func (p *parser) forStatement() {
	p.beginScope()
	p.consume(token.LPAREN, "expect '(' after 'for'")

	switch {
	case p.match(token.SEMI):
		// no initializer
	case p.match(token.LET):
		p.varDeclaration()
	default:
		p.expressionStatement()
	}

	condStart := len(p.chunk().Code)
	exitJump := -1
	if !p.check(token.SEMI) {
		p.withoutStructLiteral(p.expression)
	} else {
		p.emit(bytecode.TRUE)
	}
	p.consume(token.SEMI, "expect ';' after loop condition")
	exitJump = p.emitJump(bytecode.JUMPIFFALSE)
	p.emit(bytecode.POP)

	bodyJump := p.emitJump(bytecode.JUMP)
	stepStart := len(p.chunk().Code)
	if !p.check(token.RPAREN) {
		p.expression()
		p.emit(bytecode.POP)
	}
	p.consume(token.RPAREN, "expect ')' after for clauses")
	p.emitLoop(condStart)

	p.patchJump(bodyJump)
	p.statementAsBlock()
	p.emitLoop(stepStart)

	p.patchJump(exitJump)
	p.emit(bytecode.POP)
	p.endScope()
}

// switchStatement implements spec.md §4.4's Switch compilation recipe:
// each case arm compares against the scrutinee via PARTIALEQUAL (which
// keeps the scrutinee live for the next arm), default runs
// unconditionally if reached, and every arm jump converges past the
// switch with the scrutinee finally popped.
func (p *parser) switchStatement() {
	p.consume(token.LPAREN, "expect '(' after 'switch'")
	p.withoutStructLiteral(p.expression)
	p.consume(token.RPAREN, "expect ')' after switch value")
	p.consume(token.LBRACE, "expect '{' before switch body")

	var endJumps []int
	for p.match(token.CASE) {
		p.expression()
		p.consume(token.ARROW, "expect '=>' after case expression")
		p.emit(bytecode.PARTIALEQUAL)
		skipArm := p.emitJump(bytecode.JUMPIFFALSE)
		p.emit(bytecode.POP)
		p.statementAsBlock()
		endJumps = append(endJumps, p.emitJump(bytecode.JUMP))
		p.patchJump(skipArm)
		p.emit(bytecode.POP)
	}
	if p.match(token.DEFAULT) {
		p.consume(token.ARROW, "expect '=>' after 'default'")
		p.statementAsBlock()
	}
	for _, j := range endJumps {
		p.patchJump(j)
	}
	p.consume(token.RBRACE, "expect '}' after switch body")
	p.emit(bytecode.POP) // discard the scrutinee
}
