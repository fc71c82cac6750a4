package bytecode

// Op identifies a single bytecode instruction.
type Op uint8

// "x OP x x" is a "stack picture" that describes the state of the
// operand stack before and after execution of the instruction, the way
// the teacher documents its own Opcode constants in
// lang/compiler/opcode.go.
//
// Op<arg> indicates an immediate operand that follows the opcode byte:
// an index into the chunk's constant pool, a local slot, an upvalue
// index, or a relative jump offset, per opcode.
const ( //nolint:revive
	NOP Op = iota //  -  NOP  -

	POP //  x  POP  -
	DUP //  x  DUP  x x

	CONSTANT //  -  CONSTANT<i>  value
	TRUE     //  -  TRUE  Bool(true)
	FALSE    //  -  FALSE  Bool(false)
	NIL      //  -  NIL  Void

	ADD          //  a b  ADD  a+b
	MULTIPLY     //  a b  MULTIPLY  a*b
	DIVIDE       //  a b  DIVIDE  a/b
	NEGATE       //  a  NEGATE  -a
	NOT          //  a  NOT  !a
	EQUAL        //  a b  EQUAL  Bool(a==b)
	PARTIALEQUAL //  a b  PARTIALEQUAL  a Bool(a==b)  (keeps a, pushes comparison)
	GREATER      //  a b  GREATER  Bool(a>b)
	LESS         //  a b  LESS  Bool(a<b)

	DEFINELOCAL //  v  DEFINELOCAL<slot,mod,type>  v  (v stays in place as the local's slot)
	GETLOCAL    //  -  GETLOCAL<slot>  cellalias
	SETLOCAL    //  v  SETLOCAL<slot,mod>  v  (assignment is an expression: leaves the assigned value)

	DEFINEGLOBAL //  v  DEFINEGLOBAL<nameidx,mod,type>  -
	GETGLOBAL    //  -  GETGLOBAL<nameidx>  cellalias
	SETGLOBAL    //  v  SETGLOBAL<nameidx>  v  (leaves the assigned value)

	SETREFLOCAL  //  -  SETREFLOCAL<slot>  Ref
	SETREFGLOBAL //  -  SETREFGLOBAL<nameidx>  Ref
	SETTYPE      //  -  SETTYPE<type>  Void(typed)

	JUMP        //  -  JUMP<offset>  -
	JUMPIFFALSE //  b  JUMPIFFALSE<offset>  b  (leaves b)
	JUMPIFTRUE  //  b  JUMPIFTRUE<offset>  b  (leaves b)
	LOOP        //  -  LOOP<offset>  -

	CALL    //  fn a1..an  CALL<argc>  result
	RETURN  //  v  RETURN  -  (pops frame, pushes v to caller)
	CLOSURE //  fn  CLOSURE<upvals...>  closure

	GETUPVALUE //  -  GETUPVALUE<i>  cellalias
	SETUPVALUE //  v  SETUPVALUE<i>  v  (leaves the assigned value)

	GETFIELD     //  i  GETFIELD<nameidx>  value
	SETFIELD     //  i v  SETFIELD<nameidx>  v  (leaves the assigned value)
	MAKEINSTANCE //  f1..fn  MAKEINSTANCE<structidx>  instance

	PRINT //  v  PRINT  -

	opMax
)

var opNames = [...]string{
	NOP: "nop",

	POP: "pop",
	DUP: "dup",

	CONSTANT: "constant",
	TRUE:     "true",
	FALSE:    "false",
	NIL:      "nil",

	ADD:          "add",
	MULTIPLY:     "multiply",
	DIVIDE:       "divide",
	NEGATE:       "negate",
	NOT:          "not",
	EQUAL:        "equal",
	PARTIALEQUAL: "partialequal",
	GREATER:      "greater",
	LESS:         "less",

	DEFINELOCAL: "definelocal",
	GETLOCAL:    "getlocal",
	SETLOCAL:    "setlocal",

	DEFINEGLOBAL: "defineglobal",
	GETGLOBAL:    "getglobal",
	SETGLOBAL:    "setglobal",

	SETREFLOCAL:  "setreflocal",
	SETREFGLOBAL: "setrefglobal",
	SETTYPE:      "settype",

	JUMP:        "jump",
	JUMPIFFALSE: "jumpiffalse",
	JUMPIFTRUE:  "jumpiftrue",
	LOOP:        "loop",

	CALL:    "call",
	RETURN:  "return",
	CLOSURE: "closure",

	GETUPVALUE: "getupvalue",
	SETUPVALUE: "setupvalue",

	GETFIELD:     "getfield",
	SETFIELD:     "setfield",
	MAKEINSTANCE: "makeinstance",

	PRINT: "print",
}

func (o Op) String() string {
	if o >= opMax {
		return "invalid"
	}
	return opNames[o]
}

// HasOperand reports whether op is followed by at least one immediate
// operand byte, as opposed to the zero-operand stack-only opcodes (NOP,
// POP, DUP, TRUE, FALSE, NIL, ADD, ...).
func (o Op) HasOperand() bool {
	switch o {
	case NOP, POP, DUP, TRUE, FALSE, NIL,
		ADD, MULTIPLY, DIVIDE, NEGATE, NOT, EQUAL, PARTIALEQUAL, GREATER, LESS,
		RETURN, PRINT:
		return false
	default:
		return true
	}
}
