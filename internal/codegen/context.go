// Package codegen is the fused semantic checker and NASM emitter of §4.5
// and §4.6. It is grounded on the original implementation's writter.c: the
// checker is not a separate pass, typing is enforced at the point each
// construct is lowered, and the first failure aborts the whole emission
// (via internal/diag.Abort, this compiler's equivalent of writter.c's
// early ReturnInfo propagation).
package codegen

import (
	"fmt"
	"io"

	"github.com/tpc-lang/tpcc/internal/asmio"
	"github.com/tpc-lang/tpcc/internal/diag"
	"github.com/tpc-lang/tpcc/internal/symtab"
)

// argRegisters are the System-V argument registers, in order. Only the
// first six are real; indices 6-11 alias back into them, reproducing the
// original implementation's argIndex>=6 bug (see DESIGN.md). A call with
// more than 12 arguments is flagged as unimplemented rather than guessed
// at, per the specification's design notes.
var argRegisters64 = [6]string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}
var argRegisters32 = [6]string{"edi", "esi", "edx", "ecx", "r8d", "r9d"}
var argRegisters8 = [6]string{"dil", "sil", "dl", "cl", "r8b", "r9b"}

// argRegister64 returns the 64-bit argument register name for argIndex,
// preserving the original's register-aliasing bug for 6 <= argIndex < 12.
func argRegister64(argIndex int) string {
	if argIndex < 6 {
		return argRegisters64[argIndex]
	}
	return argRegisters64[argIndex-6]
}

func argRegisterWidth(argIndex int, size int) string {
	i := argIndex
	if i >= 6 {
		i -= 6
	}
	switch size {
	case 1:
		return argRegisters8[i]
	case 4:
		return argRegisters32[i]
	default:
		return argRegisters64[i]
	}
}

// Context is the emission context threaded through every lowering
// function: the output stream, the program table, the current function's
// scope, and the per-construct label counters that guarantee uniqueness
// (§4.6). It is an explicit value rather than teacher-style global mutable
// state, per the specification's design notes, making the emitter
// reentrant and therefore safe to unit test in isolation.
type Context struct {
	out  asmio.WriteFlusher
	prog *symtab.ProgramTable

	fn    *symtab.Function
	scope *symtab.Scope

	ifCount         int
	whileCount      int
	conditionCount  int
	assignmentCount int

	Warnings []diag.Warning
}

func newContext(w io.Writer, prog *symtab.ProgramTable) *Context {
	return &Context{out: asmio.NewWriteFlusher(w), prog: prog}
}

func (c *Context) printf(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(c.out, format, args...); err != nil {
		diag.Abortf(diag.CouldNotOpenFile, 0, "write output: %v", err)
	}
}

func (c *Context) line(s string) { c.printf("%s\n", s) }

func (c *Context) enterFunction(fn *symtab.Function) {
	c.fn = fn
	c.scope = &symtab.Scope{Locals: &fn.Locals, Params: &fn.Params, Prog: c.prog}
}

func (c *Context) nextIf() int {
	n := c.ifCount
	c.ifCount++
	return n
}

func (c *Context) nextWhile() int {
	n := c.whileCount
	c.whileCount++
	return n
}

func (c *Context) nextCondition() int {
	n := c.conditionCount
	c.conditionCount++
	return n
}

func (c *Context) nextAssignment() int {
	n := c.assignmentCount
	c.assignmentCount++
	return n
}

// warn records a non-fatal finding (§4.5's warnings: int-to-char narrowing
// in assignment, argument passing, and return).
func (c *Context) warn(line int, message string) {
	c.Warnings = append(c.Warnings, diag.Warning{Line: line, Message: message})
}
