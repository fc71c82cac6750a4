package vm

import (
	"fmt"

	"github.com/mna/asterisk/lang/bytecode"
	"github.com/mna/asterisk/lang/token"
	"github.com/mna/asterisk/lang/value"
)

// run is the opcode dispatch loop: fetch-decode-execute against the
// topmost frame until the outermost frame returns, the way the
// teacher's Thread.run switches on compiler.Opcode in lang/machine.
func (vm *VM) run() error {
	for {
		f := vm.frame()
		chunk := f.Closure.Fn.Chunk
		op := bytecode.Op(chunk.Code[f.ip])
		f.ip++

		switch op {
		case bytecode.NOP:
			// no-op

		case bytecode.POP:
			vm.pop()
		case bytecode.DUP:
			top := vm.peek(0)
			vm.push(value.NewCell(top.V))

		case bytecode.CONSTANT:
			idx := chunk.ReadUint16(f.ip)
			f.ip += 2
			vm.push(cellForConstant(chunk.Constants[idx]))
		case bytecode.TRUE:
			vm.push(value.NewCell(value.NewValue(value.Bool(true), value.BoolType, value.Const)))
		case bytecode.FALSE:
			vm.push(value.NewCell(value.NewValue(value.Bool(false), value.BoolType, value.Const)))
		case bytecode.NIL:
			vm.push(value.NewCell(value.NewValue(value.VoidValue, value.VoidType, value.Const)))

		case bytecode.ADD, bytecode.MULTIPLY, bytecode.DIVIDE:
			b, a := vm.pop(), vm.pop()
			res, err := value.Binary(arithToken(op), a.V, b.V)
			if err != nil {
				return vm.runtimeError("%s", err)
			}
			vm.push(value.NewCell(res))
		case bytecode.NEGATE:
			a := vm.pop()
			res, err := value.Negate(a.V)
			if err != nil {
				return vm.runtimeError("%s", err)
			}
			vm.push(value.NewCell(res))
		case bytecode.NOT:
			a := vm.pop()
			res, err := value.Not(a.V)
			if err != nil {
				return vm.runtimeError("%s", err)
			}
			vm.push(value.NewCell(res))
		case bytecode.EQUAL:
			b, a := vm.pop(), vm.pop()
			res, _ := value.Equal(a.V, b.V)
			vm.push(value.NewCell(res))
		case bytecode.PARTIALEQUAL:
			b := vm.pop()
			a := vm.peek(0) // kept: the scrutinee stays live for the next case arm
			res, _ := value.Equal(a.V, b.V)
			vm.push(value.NewCell(res))
		case bytecode.GREATER:
			b, a := vm.pop(), vm.pop()
			res, err := value.Compare(token.GT, a.V, b.V)
			if err != nil {
				return vm.runtimeError("%s", err)
			}
			vm.push(value.NewCell(res))
		case bytecode.LESS:
			b, a := vm.pop(), vm.pop()
			res, err := value.Compare(token.LT, a.V, b.V)
			if err != nil {
				return vm.runtimeError("%s", err)
			}
			vm.push(value.NewCell(res))

		case bytecode.DEFINELOCAL:
			slot := int(chunk.Code[f.ip])
			mod := value.Modifier(chunk.Code[f.ip+1])
			typ, n := chunk.ReadType(f.ip + 2)
			f.ip += 2 + n
			cell := vm.stack[f.slotBase-1+slot]
			if typ.Kind == value.KindUninit {
				typ = cell.V.Type
			} else if !cell.V.Type.Equal(typ) && cell.V.Type.Kind != value.KindUninit {
				return vm.runtimeError("%s", &value.TypeMismatchError{Want: typ, Got: cell.V.Type})
			}
			cell.V.Type = typ
			cell.V.Mod = mod
		case bytecode.GETLOCAL:
			slot := int(chunk.Code[f.ip])
			f.ip++
			vm.push(vm.stack[f.slotBase-1+slot])
		case bytecode.SETLOCAL:
			slot := int(chunk.Code[f.ip])
			mod := value.Modifier(chunk.Code[f.ip+1])
			f.ip += 2
			newVal := vm.pop()
			target := vm.stack[f.slotBase-1+slot]
			if mod != value.Mut {
				return vm.runtimeError("cannot assign to immutable binding")
			}
			if err := vm.typeCheckAssign(target, newVal); err != nil {
				return err
			}
			target.V.Prim = newVal.V.Prim
			vm.push(newVal)

		case bytecode.DEFINEGLOBAL:
			idx := chunk.ReadUint16(f.ip)
			mod := value.Modifier(chunk.Code[f.ip+2])
			typ, n := chunk.ReadType(f.ip + 3)
			f.ip += 3 + n
			name := string(chunk.Constants[idx].(value.String))
			// A fresh cell: the popped one may be a shared alias pushed by
			// GETLOCAL/GETGLOBAL/GETUPVALUE, which the new global must not share.
			cell := value.NewCell(vm.pop().V)
			if typ.Kind == value.KindUninit {
				typ = cell.V.Type
			} else if !cell.V.Type.Equal(typ) && cell.V.Type.Kind != value.KindUninit {
				return vm.runtimeError("%s", &value.TypeMismatchError{Want: typ, Got: cell.V.Type})
			}
			cell.V.Type = typ
			cell.V.Mod = mod
			vm.globals.Insert(name, cell)
		case bytecode.GETGLOBAL:
			idx := chunk.ReadUint16(f.ip)
			f.ip += 2
			name := string(chunk.Constants[idx].(value.String))
			raw, ok := vm.globals.Get(name)
			if !ok {
				return vm.runtimeError("undefined global %q", name)
			}
			vm.push(raw.(*value.Cell))
		case bytecode.SETGLOBAL:
			idx := chunk.ReadUint16(f.ip)
			f.ip += 2
			name := string(chunk.Constants[idx].(value.String))
			newVal := vm.pop()
			raw, ok := vm.globals.Get(name)
			if !ok {
				return vm.runtimeError("undefined global %q", name)
			}
			target := raw.(*value.Cell)
			if target.V.Mod != value.Mut {
				return vm.runtimeError("cannot assign to immutable binding %q", name)
			}
			if err := vm.typeCheckAssign(target, newVal); err != nil {
				return err
			}
			target.V.Prim = newVal.V.Prim
			vm.push(newVal)

		case bytecode.SETREFLOCAL:
			slot := int(chunk.Code[f.ip])
			f.ip++
			target := vm.stack[f.slotBase-1+slot]
			vm.push(value.NewCell(value.NewValue(&value.Ref{Cell: target}, value.RefOf(target.V.Type), value.Const)))
		case bytecode.SETREFGLOBAL:
			idx := chunk.ReadUint16(f.ip)
			f.ip += 2
			name := string(chunk.Constants[idx].(value.String))
			raw, ok := vm.globals.Get(name)
			if !ok {
				return vm.runtimeError("undefined global %q", name)
			}
			target := raw.(*value.Cell)
			vm.push(value.NewCell(value.NewValue(&value.Ref{Cell: target}, value.RefOf(target.V.Type), value.Const)))
		case bytecode.SETTYPE:
			typ, n := chunk.ReadType(f.ip)
			f.ip += n
			vm.push(value.NewCell(value.NewValue(value.VoidValue, typ, value.Const)))

		case bytecode.JUMP:
			off := chunk.ReadUint16(f.ip)
			f.ip += 2 + int(off)
		case bytecode.JUMPIFFALSE:
			off := chunk.ReadUint16(f.ip)
			f.ip += 2
			if !truthy(vm.peek(0)) {
				f.ip += int(off)
			}
		case bytecode.JUMPIFTRUE:
			off := chunk.ReadUint16(f.ip)
			f.ip += 2
			if truthy(vm.peek(0)) {
				f.ip += int(off)
			}
		case bytecode.LOOP:
			off := chunk.ReadUint16(f.ip)
			f.ip += 2 - int(off)

		case bytecode.CALL:
			argc := int(chunk.Code[f.ip])
			f.ip++
			if err := vm.call(argc); err != nil {
				return err
			}
		case bytecode.RETURN:
			result := vm.pop()
			done := vm.doReturn(result)
			if done {
				return nil
			}

		case bytecode.CLOSURE:
			idx := chunk.ReadUint16(f.ip)
			f.ip += 2
			fnVal := vm.pop()
			fn := fnVal.V.Prim.(*bytecode.Function)
			_ = idx // redundant with the popped fn value; kept for disassembly symmetry
			upvalues := make([]*value.Cell, fn.UpvalueCount)
			for i := 0; i < fn.UpvalueCount; i++ {
				isLocal := chunk.Code[f.ip] != 0
				index := chunk.Code[f.ip+1]
				f.ip += 2
				if isLocal {
					upvalues[i] = vm.stack[f.slotBase-1+int(index)]
				} else {
					upvalues[i] = f.Closure.Upvalues[index]
				}
			}
			// Typed FnType rather than KindClosure: the compiler always
			// declares a function binding's static type as FnType (see
			// funDeclaration), whether or not its body ends up capturing
			// anything, so the declared and runtime types must agree.
			vm.push(value.NewCell(value.NewValue(&bytecode.Closure{Fn: fn, Upvalues: upvalues}, value.FnType, value.Const)))

		case bytecode.GETUPVALUE:
			idx := int(chunk.Code[f.ip])
			f.ip++
			vm.push(f.Closure.Upvalues[idx])
		case bytecode.SETUPVALUE:
			idx := int(chunk.Code[f.ip])
			f.ip++
			newVal := vm.pop()
			f.Closure.Upvalues[idx].V.Prim = newVal.V.Prim
			vm.push(newVal)

		case bytecode.GETFIELD:
			idx := chunk.ReadUint16(f.ip)
			f.ip += 2
			name := string(chunk.Constants[idx].(value.String))
			inst, err := vm.instanceOf(vm.pop())
			if err != nil {
				return err
			}
			cell := inst.Field(name)
			if cell == nil {
				return vm.runtimeError("no such field %q on %s", name, inst.Blueprint.Name)
			}
			vm.push(cell)
		case bytecode.SETFIELD:
			idx := chunk.ReadUint16(f.ip)
			f.ip += 2
			name := string(chunk.Constants[idx].(value.String))
			newVal := vm.pop()
			inst, err := vm.instanceOf(vm.pop())
			if err != nil {
				return err
			}
			cell := inst.Field(name)
			if cell == nil {
				return vm.runtimeError("no such field %q on %s", name, inst.Blueprint.Name)
			}
			cell.V.Prim = newVal.V.Prim
			vm.push(newVal)
		case bytecode.MAKEINSTANCE:
			idx := chunk.ReadUint16(f.ip)
			f.ip += 2
			blueprint := chunk.Constants[idx].(*value.Struct)
			n := len(blueprint.Fields)
			fields := make([]*value.Cell, n)
			for i := n - 1; i >= 0; i-- {
				fields[i] = vm.pop()
			}
			inst := &value.Instance{Blueprint: blueprint, Values: fields}
			vm.push(value.NewCell(value.NewValue(inst, value.StructType(blueprint.Name), value.Const)))

		case bytecode.PRINT:
			cell := vm.pop()
			fmt.Fprintln(vm.Out, render(cell.V.Prim))

		default:
			return vm.runtimeError("unknown opcode %d", op)
		}
	}
}

func truthy(c *value.Cell) bool {
	b, ok := c.V.Prim.(value.Bool)
	return ok && bool(b)
}

func (vm *VM) typeCheckAssign(target, newVal *value.Cell) error {
	if target.V.Type.Kind == value.KindUninit {
		target.V.Type = newVal.V.Type
		return nil
	}
	if !newVal.V.Type.AssignableTo(target.V.Type) {
		return vm.runtimeError("%s", &value.TypeMismatchError{Want: target.V.Type, Got: newVal.V.Type})
	}
	return nil
}

func (vm *VM) instanceOf(c *value.Cell) (*value.Instance, error) {
	if inst, ok := c.V.Prim.(*value.Instance); ok {
		return inst, nil
	}
	return nil, vm.runtimeError("field access on non-struct value")
}

// cellForConstant wraps a chunk constant as a fresh Cell. Constants are
// immutable source literals (or struct/function blueprints), so each
// read gets its own Cell rather than aliasing the constant pool slot.
func cellForConstant(p value.Primitive) *value.Cell {
	t := typeOfConstant(p)
	return value.NewCell(value.NewValue(p, t, value.Const))
}

func typeOfConstant(p value.Primitive) value.Type {
	switch p.(type) {
	case value.Int:
		return value.IntType
	case value.Float:
		return value.FloatType
	case value.String:
		return value.StringType
	case *value.Struct:
		return value.StructType(p.(*value.Struct).Name)
	case *bytecode.Function:
		return value.FnType
	default:
		return value.UninitType
	}
}
