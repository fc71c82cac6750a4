package compiler

import (
	"github.com/mna/asterisk/lang/bytecode"
	"github.com/mna/asterisk/lang/value"
)

// declareLocal reserves a new local slot for name in the current scope.
// Its depth is left at -1 ("unassigned") until markInitialized is
// called once the initializer has been fully compiled, matching the
// teacher's resolver rule that a binding's own initializer cannot refer
// to itself: in `let x = x;` the right-hand x resolves to an enclosing
// binding named x, or is an undeclared-identifier error if there is none.
func (p *parser) declareLocal(name string, mod value.Modifier) {
	fs := p.current
	for i := len(fs.locals) - 1; i >= 0; i-- {
		l := fs.locals[i]
		if l.depth != -1 && l.depth < fs.scopeDepth {
			break
		}
		if l.name == name {
			p.error("variable with this name already declared in this scope")
		}
	}
	fs.locals = append(fs.locals, localVar{name: name, depth: -1, mod: mod})
}

func (p *parser) markInitialized(typ value.Type) {
	fs := p.current
	fs.locals[len(fs.locals)-1].depth = fs.scopeDepth
	fs.locals[len(fs.locals)-1].typ = typ
}

// resolveLocal looks up name in fs's own locals, innermost scope first.
func resolveLocal(fs *fnState, name string) (slot int, ok bool) {
	for i := len(fs.locals) - 1; i >= 0; i-- {
		if fs.locals[i].name == name && fs.locals[i].depth != -1 {
			return i, true
		}
	}
	return 0, false
}

// resolveUpvalue looks up name as a binding captured from an enclosing
// function, recursively climbing the fnState chain and adding one
// upvalue descriptor per level crossed, the direct analogue of the
// teacher's resolver marking an enclosing local as resolver.Cell and
// recording it in the inner function's Freevars.
func resolveUpvalue(fs *fnState, name string) (idx int, ok bool) {
	if fs.enclosing == nil {
		return 0, false
	}
	if slot, found := resolveLocal(fs.enclosing, name); found {
		fs.enclosing.locals[slot].isCaptured = true
		return addUpvalue(fs, uint8(slot), true), true
	}
	if up, found := resolveUpvalue(fs.enclosing, name); found {
		return addUpvalue(fs, uint8(up), false), true
	}
	return 0, false
}

func addUpvalue(fs *fnState, index uint8, isLocal bool) int {
	for i, u := range fs.upvalues {
		if u.Index == index && u.IsLocal == isLocal {
			return i
		}
	}
	fs.upvalues = append(fs.upvalues, bytecode.UpvalueDesc{IsLocal: isLocal, Index: index})
	return len(fs.upvalues) - 1
}
