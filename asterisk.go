// Package asterisk embeds the Asterisk language: a single-pass
// compiler from source bytes to bytecode, and a stack-based VM that
// executes it. It exposes no CLI and does no file I/O — a host program
// supplies source bytes and an output sink (spec.md explicitly scopes
// the CLI entry point and file reading out: "Peripheral functionality
// deliberately OUT of scope").
package asterisk

import (
	"io"
	"strings"

	"github.com/mna/asterisk/lang/bytecode"
	"github.com/mna/asterisk/lang/compiler"
	"github.com/mna/asterisk/lang/vm"
)

// CompileError wraps the compiler's accumulated diagnostics as a single
// error, formatted one per line in the "{msg} at line {line} | position:
// {lexeme}" shape spec.md §6 specifies.
type CompileError struct {
	Errors []*compiler.Error
}

func (e *CompileError) Error() string {
	var b strings.Builder
	for i, err := range e.Errors {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(err.Error())
	}
	return b.String()
}

// Run compiles src and executes it against w, the way program entry is
// specified in spec.md §6: compile to a root "main" Function, install
// the VM's native library, call the root function with zero arguments.
// A compile failure returns *CompileError without running anything; a
// runtime failure returns *vm.RuntimeError after whatever output was
// already produced.
func Run(src []byte, w io.Writer) error {
	_, err := RunVM(src, w)
	return err
}

// RunVM is Run, but also returns the VM instance so a host (or a test)
// can inspect global bindings after execution.
func RunVM(src []byte, w io.Writer) (*vm.VM, error) {
	fn, errs := compiler.Compile(src)
	if len(errs) > 0 {
		return nil, &CompileError{Errors: errs}
	}

	machine := vm.New(w)
	if err := machine.Run(fn); err != nil {
		return machine, err
	}
	return machine, nil
}

// Disassemble compiles src and returns the textual bytecode listing for
// its root function and every nested function constant it closes over,
// for debugging and golden-file tests; it does not execute anything.
func Disassemble(src []byte) (string, error) {
	fn, errs := compiler.Compile(src)
	if len(errs) > 0 {
		return "", &CompileError{Errors: errs}
	}
	var b strings.Builder
	disassembleTree(&b, fn, map[*bytecode.Function]bool{})
	return b.String(), nil
}

func disassembleTree(b *strings.Builder, fn *bytecode.Function, seen map[*bytecode.Function]bool) {
	if seen[fn] {
		return
	}
	seen[fn] = true
	b.WriteString(bytecode.Disassemble(fn.Chunk, fn.String()))
	for _, c := range fn.Chunk.Constants {
		if nested, ok := c.(*bytecode.Function); ok {
			disassembleTree(b, nested, seen)
		}
	}
}
