// Package compiler implements Asterisk's single-pass compiler: a
// Pratt-precedence expression parser and a recursive-descent statement
// parser that emit bytecode.Chunk instructions directly as each
// construct is recognized, with no intermediate AST.
//
// The overall shape — a parser struct tracking current/previous tokens,
// panic-mode error synchronization, and a chain of per-function
// compiler states for local slots and upvalues — is adapted from the
// teacher's lang/resolver (for the scope/binding vocabulary: local,
// free/upvalue, predeclared) and lang/compiler (for jump back-patching
// and the Program/Funcode split), collapsed into one pass because
// Asterisk's grammar (spec.md §4.4) does not need the teacher's
// multi-chunk, defer/catch-aware CFG compiler.
package compiler

import (
	"fmt"

	"github.com/dolthub/swiss"
	"github.com/mna/asterisk/lang/bytecode"
	"github.com/mna/asterisk/lang/lexer"
	"github.com/mna/asterisk/lang/token"
	"github.com/mna/asterisk/lang/value"
)

// Error is one compile-time diagnostic: a line number, message and the
// offending lexeme (empty at end of input), in the teacher's "log a
// message with the current line" style (spec.md §4.4).
type Error struct {
	Line   int
	Msg    string
	Lexeme string
	AtEnd  bool
}

func (e *Error) Error() string {
	if e.AtEnd {
		return fmt.Sprintf("%s at line %d | position: at end.", e.Msg, e.Line)
	}
	return fmt.Sprintf("%s at line %d | position: %s", e.Msg, e.Line, e.Lexeme)
}

// Compile lexes and compiles src in a single pass, returning the
// top-level script Function. If any syntax error was encountered,
// Compile returns a nil Function alongside the accumulated Errors.
func Compile(src []byte) (*bytecode.Function, []*Error) {
	p := &parser{lex: lexer.New(src)}
	p.advance()

	p.current = newFnState(nil, "main", fnTypeScript)
	// No beginScope() here: top-level declarations are globals (spec.md
	// §8's scenarios observe "global n", "global a", ...), unlike a
	// function body's parameter/block scope.

	for !p.check(token.EOF) {
		p.declaration()
	}
	p.consume(token.EOF, "expect end of input")

	fn := p.endFunction()
	if len(p.errors) > 0 {
		return nil, p.errors
	}
	return fn, nil
}

type fnType int

const (
	fnTypeScript fnType = iota
	fnTypeFunction
)

// fnState is the compiler state for one function body: its in-progress
// Function/Chunk, local slot table and upvalue descriptors, and a link
// to the enclosing function's state for upvalue resolution, the way the
// teacher's fcomp links to pcomp and (via Freevars) to its lexical
// parent.
type fnState struct {
	enclosing *fnState
	fn        *bytecode.Function
	typ       fnType

	locals     []localVar
	scopeDepth int
	upvalues   []bytecode.UpvalueDesc

	// stringConstants dedups name strings within this function's own
	// constant pool; its indices are only valid in fn.Chunk.
	stringConstants *swiss.Map[string, uint16]
}

type localVar struct {
	name       string
	depth      int // -1 while its initializer is still being compiled
	mod        value.Modifier
	typ        value.Type
	isCaptured bool
}

func newFnState(enclosing *fnState, name string, typ fnType) *fnState {
	fs := &fnState{
		enclosing: enclosing,
		typ:       typ,
		fn:        &bytecode.Function{Name: name, Chunk: &bytecode.Chunk{}},
	}
	// Slot 0 is reserved for the function's own value (recursion, and
	// the callee cell kept live across the call per spec.md §4.5).
	fs.locals = append(fs.locals, localVar{name: "", depth: 0})
	return fs
}

// parser holds the whole-compile state: the lexer, the lookahead token
// pair, panic-mode/had-error bookkeeping, and the global-name and
// struct tables shared across every function compiled from this source
// (the constant dedup map is per function, in fnState), backed by
// dolthub/swiss (the same library the
// teacher wires in for its own machine.Map, repurposed here for compile-
// time interning rather than a runtime language-level map).
type parser struct {
	lex *lexer.Lexer

	prevTok, curTok         token.Token
	prevVal, curVal         token.Value

	current *fnState

	panicMode bool
	errors    []*Error

	// noStructLiteral disables the IDENT-followed-by-'{' struct literal
	// parse while compiling a condition expression (if/while/for/switch),
	// the same brace-ambiguity workaround block-structured languages with
	// a struct-literal syntax (e.g. Rust) apply to `if x { ... }`.
	noStructLiteral bool

	// declaredGlobals tracks every name bound at global scope so far, so
	// a bare reference to a name that is neither a local/upvalue nor an
	// already-declared global is a compile error ("undeclared"), per
	// spec.md §7/§8, rather than silently falling through to a runtime
	// undefined-global error.
	declaredGlobals *swiss.Map[string, bool]

	// structBlueprints maps a struct name to the constant pool index its
	// declaration stored the *value.Struct blueprint at, so struct-literal
	// expressions can reference the blueprint constant directly rather
	// than re-resolving it from a name string at runtime.
	structBlueprints *swiss.Map[string, uint16]
}

func (p *parser) declareGlobal(name string) {
	if p.declaredGlobals == nil {
		p.declaredGlobals = swiss.NewMap[string, bool](8)
	}
	p.declaredGlobals.Put(name, true)
}

func (p *parser) isDeclaredGlobal(name string) bool {
	if p.declaredGlobals == nil {
		return false
	}
	_, ok := p.declaredGlobals.Get(name)
	return ok
}

// registerStruct records the constant-pool index of name's blueprint, so
// a later struct-literal expression can find it without re-interning the
// name as a second, unrelated string constant.
func (p *parser) registerStruct(name string, constIdx uint16) {
	if p.structBlueprints == nil {
		p.structBlueprints = swiss.NewMap[string, uint16](8)
	}
	p.structBlueprints.Put(name, constIdx)
}

func (p *parser) lookupStruct(name string) (uint16, bool) {
	if p.structBlueprints == nil {
		return 0, false
	}
	return p.structBlueprints.Get(name)
}

func (p *parser) advance() {
	p.prevTok, p.prevVal = p.curTok, p.curVal
	for {
		p.curTok, p.curVal = p.lex.Next()
		if p.curTok != token.ILLEGAL {
			break
		}
		p.errorAtCurrent(p.curVal.Raw)
	}
}

func (p *parser) check(t token.Token) bool { return p.curTok == t }

func (p *parser) match(t token.Token) bool {
	if !p.check(t) {
		return false
	}
	p.advance()
	return true
}

func (p *parser) consume(t token.Token, msg string) {
	if p.curTok == t {
		p.advance()
		return
	}
	p.errorAtCurrent(msg)
}

func (p *parser) errorAtCurrent(msg string) {
	p.errorAt(p.curVal.Line, msg, p.curVal.Raw, p.curTok == token.EOF)
}

func (p *parser) error(msg string) {
	p.errorAt(p.prevVal.Line, msg, p.prevVal.Raw, p.prevTok == token.EOF)
}

func (p *parser) errorAt(line int, msg, lexeme string, atEnd bool) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	p.errors = append(p.errors, &Error{Line: line, Msg: msg, Lexeme: lexeme, AtEnd: atEnd})
}

// synchronize implements spec.md §4.4's panic-mode recovery: skip
// tokens until a statement boundary (a consumed ';' or the start token
// of a declaration/statement) is reached.
func (p *parser) synchronize() {
	p.panicMode = false
	for p.curTok != token.EOF {
		if p.prevTok == token.SEMI {
			return
		}
		switch p.curTok {
		case token.CLASS, token.STRUCT, token.FN, token.LET, token.FOR,
			token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		p.advance()
	}
}

func (p *parser) chunk() *bytecode.Chunk { return p.current.fn.Chunk }

func (p *parser) emit(op bytecode.Op) int {
	return p.chunk().Write(op, p.prevVal.Line)
}

func (p *parser) emitByte(b byte) { p.chunk().WriteByte(b, p.prevVal.Line) }

func (p *parser) emitUint16(v uint16) { p.chunk().WriteUint16(v, p.prevVal.Line) }

// emitJump writes op followed by a placeholder 2-byte offset and
// returns the offset of that placeholder, for later patchJump.
func (p *parser) emitJump(op bytecode.Op) int {
	p.emit(op)
	off := len(p.chunk().Code)
	p.emitUint16(0xffff)
	return off
}

// patchJump back-patches the placeholder at off with the distance from
// just after the placeholder to the current end of the chunk.
func (p *parser) patchJump(off int) {
	dist := len(p.chunk().Code) - (off + 2)
	if dist > 0xffff {
		p.error("jump target too far")
	}
	p.chunk().PatchUint16(off, uint16(dist))
}

// emitLoop writes a LOOP instruction jumping backward to loopStart.
func (p *parser) emitLoop(loopStart int) {
	p.emit(bytecode.LOOP)
	dist := len(p.chunk().Code) + 2 - loopStart
	if dist > 0xffff {
		p.error("loop body too large")
	}
	p.emitUint16(uint16(dist))
}

// internConstant dedups identical strings (identifier/global names,
// struct field names) into the same constant pool slot of the current
// function's chunk, the way the teacher's pcomp.names/pcomp.constants
// maps do in lang/compiler.go.
func (p *parser) internConstant(s string) uint16 {
	fs := p.current
	if fs.stringConstants == nil {
		fs.stringConstants = swiss.NewMap[string, uint16](8)
	}
	if idx, ok := fs.stringConstants.Get(s); ok {
		return idx
	}
	idx := p.chunk().AddConstant(value.String(s))
	fs.stringConstants.Put(s, idx)
	return idx
}

func (p *parser) beginScope() { p.current.scopeDepth++ }

func (p *parser) endScope() {
	fs := p.current
	fs.scopeDepth--
	// No close-upvalue step is needed here: locals live in GC-managed
	// Cells (lang/value.Cell), so a captured local's cell survives its
	// stack slot being popped for as long as some Closure still holds a
	// pointer to it. This is simpler than the open/closed-upvalue split
	// a manually-refcounted VM needs.
	for len(fs.locals) > 0 && fs.locals[len(fs.locals)-1].depth > fs.scopeDepth {
		p.emit(bytecode.POP)
		fs.locals = fs.locals[:len(fs.locals)-1]
	}
}

// emitClosure writes the CONSTANT+CLOSURE instruction pair (plus one
// isLocal/index byte pair per upvalue) that turns a compiled Function
// into a runtime closure value on top of the stack, shared by both a
// named `fn` declaration and a bare `fn(...) {...}` expression.
func (p *parser) emitClosure(fn *bytecode.Function, upvalues []bytecode.UpvalueDesc) uint16 {
	fnIdx := p.chunk().AddConstant(fn)
	p.emit(bytecode.CONSTANT)
	p.emitUint16(fnIdx)
	p.emit(bytecode.CLOSURE)
	p.emitUint16(fnIdx)
	for _, uv := range upvalues {
		if uv.IsLocal {
			p.emitByte(1)
		} else {
			p.emitByte(0)
		}
		p.emitByte(uv.Index)
	}
	return fnIdx
}

// endFunction finalizes the current fnState's chunk with an implicit
// `return;` (Void) if the body fell off the end, and pops back to the
// enclosing function, mirroring the teacher's implicit `emit(NONE);
// emit(RETURN)` in lang/compiler.go's function().
func (p *parser) endFunction() *bytecode.Function {
	p.emit(bytecode.NIL)
	p.emit(bytecode.RETURN)

	fn := p.current.fn
	fn.UpvalueCount = len(p.current.upvalues)
	p.current = p.current.enclosing
	return fn
}
