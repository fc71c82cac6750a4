package vm

import (
	"github.com/mna/asterisk/lang/bytecode"
	"github.com/mna/asterisk/lang/token"
	"github.com/mna/asterisk/lang/value"
)

// arithToken maps an arithmetic opcode to the token value.Binary
// switches on. ADD/MULTIPLY/DIVIDE are the only arithmetic opcodes
// (spec.md §4.3 has no SUBTRACT; MINUS compiles to NEGATE+ADD).
func arithToken(op bytecode.Op) token.Token {
	switch op {
	case bytecode.ADD:
		return token.PLUS
	case bytecode.MULTIPLY:
		return token.STAR
	default:
		return token.SLASH
	}
}

// call implements the CALL<argc> opcode: the callee cell sits argc
// slots below the top of the operand stack (spec.md §4.5). Function
// values push a new Frame; NativeFunction values are dispatched
// in-line; anything else is a runtime error.
func (vm *VM) call(argc int) error {
	calleeCell := vm.peek(argc)
	switch callee := calleeCell.V.Prim.(type) {
	case *bytecode.Closure:
		if callee.Fn.Arity != argc {
			return vm.runtimeError("%s expects %d argument(s), got %d", callee.Fn.String(), callee.Fn.Arity, argc)
		}
		vm.frames = append(vm.frames, &Frame{
			Closure:  callee,
			slotBase: len(vm.stack) - argc,
		})
		return nil
	case *bytecode.Function:
		if callee.Arity != argc {
			return vm.runtimeError("%s expects %d argument(s), got %d", callee.String(), callee.Arity, argc)
		}
		vm.frames = append(vm.frames, &Frame{
			Closure:  &bytecode.Closure{Fn: callee},
			slotBase: len(vm.stack) - argc,
		})
		return nil
	case *bytecode.NativeFunction:
		if callee.Arity != argc {
			return vm.runtimeError("%s expects %d argument(s), got %d", callee.String(), callee.Arity, argc)
		}
		args := make([]value.Value, argc)
		for i := 0; i < argc; i++ {
			args[i] = vm.stack[len(vm.stack)-argc+i].V
		}
		result, err := callee.Fn(args)
		if err != nil {
			return vm.runtimeError("%s", err)
		}
		vm.stack = vm.stack[:len(vm.stack)-argc-1] // drop args and the callee cell
		vm.push(value.NewCell(result))
		return nil
	default:
		return vm.runtimeError("value of type %s is not callable", calleeCell.V.Type)
	}
}

// doReturn implements RETURN: unwind the current frame's locals (the
// callee cell plus its parameter/block locals — the compiler already
// emitted POP for every block-scoped local, so only the callee+params
// region remains), pop the frame, and hand result to the caller. It
// reports whether the outermost (program) frame just returned.
func (vm *VM) doReturn(result *value.Cell) bool {
	f := vm.frame()
	vm.stack = vm.stack[:f.slotBase-1]
	vm.frames = vm.frames[:len(vm.frames)-1]
	if len(vm.frames) == 0 {
		return true
	}
	vm.push(result)
	return false
}
