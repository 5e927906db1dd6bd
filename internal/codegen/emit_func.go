package codegen

import (
	"fmt"

	"github.com/tpc-lang/tpcc/internal/ast"
	"github.com/tpc-lang/tpcc/internal/classify"
	"github.com/tpc-lang/tpcc/internal/diag"
	"github.com/tpc-lang/tpcc/internal/symtab"
	"github.com/tpc-lang/tpcc/internal/types"
)

// maxArguments bounds a call's argument count at the point the original
// implementation's register-aliasing bug stops making any sense at all
// (see DESIGN.md "argument-register aliasing"): argIndex 6..11 silently
// reuse the six real argument registers, and argIndex >= 12 is flagged
// here as unimplemented rather than guessed at.
const maxArguments = 12

// emitFunction lowers one non-main function: label, prologue, body,
// epilogue. The prologue only reserves frame space for locals (§4.6);
// parameters stay resident in their argument registers for the function's
// whole body.
func (c *Context) emitFunction(node *ast.Node) {
	fn, ok := c.prog.Functions.Lookup(node.Text)
	if !ok {
		diag.Abortf(diag.NotAFunction, node.Line, "function %q missing from program table", node.Text)
	}
	c.enterFunction(fn)

	c.printf("%s:\n", fn.ID)
	c.line("    push rbp")
	c.line("    mov rbp, rsp")
	if frame := fn.FrameSize(); frame > 0 {
		c.printf("    sub rsp, %d\n", frame)
	}
	c.emitBody(node.ChildLabeled(ast.Body))
	c.line("    leave")
	c.line("    ret")
}

// emitMain lowers the function named main under the _start label (§4.7):
// no saved frame, since _start owns the initial process stack outright.
// The exit syscall tail is only appended when the body lacks an explicit
// return -- a return already lowers to its own exit via emitReturnEpilogue,
// and appending the tail unconditionally would leave unreachable
// instructions after it.
func (c *Context) emitMain(node *ast.Node) {
	fn, ok := c.prog.Functions.Lookup("main")
	if !ok {
		diag.Abortf(diag.NoMainFunction, node.Line, "no function named main")
	}
	c.enterFunction(fn)

	body := node.ChildLabeled(ast.Body)
	c.line("_start:")
	c.line("    mov rbp, rsp")
	c.emitBody(body)
	if !hasDirectReturn(body) {
		c.line("    mov rax, 60")
		c.line("    mov rdi, 0")
		c.line("    syscall")
	}
}

// hasDirectReturn reports whether body's statement list directly contains
// a Return statement -- mirroring the original implementation's
// getChildLabeled(body, Return) check, which looks only at the body's
// immediate statements, not ones nested inside an if/while.
func hasDirectReturn(body *ast.Node) bool {
	if body == nil {
		return false
	}
	stmts := body.ChildLabeled(ast.StmtList)
	if stmts == nil {
		return false
	}
	for _, stmt := range stmts.Children {
		if stmt.Label == ast.Return {
			return true
		}
	}
	return false
}

// emitCall lowers a call expression, fusing the arity and argument-type
// checks of §4.5 with the calling-convention emission of §4.6: save the
// caller's own live argument registers, evaluate arguments right to left,
// pop them into the target registers, align the stack, call, restore, and
// push the result for the caller's expression stack.
func (c *Context) emitCall(node *ast.Node) {
	kind, _, fn := c.scope.Resolve(node.Text)
	if kind != symtab.FuncRef || fn == nil {
		diag.Abortf(diag.IdNotInTable, node.Line, "unknown function %q", node.Text)
	}
	args := node.Children
	params := fn.Params.Entries

	if len(args) > len(params) {
		diag.Abortf(diag.TooManyArgument, node.Line, "too many arguments to %q: want %d, got %d", node.Text, len(params), len(args))
	}
	if len(args) < len(params) {
		diag.Abortf(diag.TooFewArgument, node.Line, "too few arguments to %q: want %d, got %d", node.Text, len(params), len(args))
	}
	if len(args) > maxArguments {
		diag.Abortf(diag.Failure, node.Line, "call to %q has more than %d arguments, unimplemented", node.Text, maxArguments)
	}

	for i, arg := range args {
		c.checkArgument(node, fn, i, arg, params[i])
	}

	liveArgCount := 0
	if c.fn != nil {
		liveArgCount = len(c.fn.Params.Entries)
		if liveArgCount > 6 {
			liveArgCount = 6
		}
	}
	for i := 0; i < liveArgCount; i++ {
		c.printf("    push %s\n", argRegister64(i))
	}

	for i := len(args) - 1; i >= 0; i-- {
		c.emitExpr(args[i])
	}
	for i := range args {
		c.printf("    pop %s\n", argRegister64(i))
	}

	c.line("    push r15")
	c.line("    mov r15, rsp")
	c.line("    and rsp, -16")
	c.line("    sub rsp, 8")
	c.printf("    call %s\n", fn.ID)
	c.line("    mov rsp, r15")
	c.line("    pop r15")

	for i := liveArgCount - 1; i >= 0; i-- {
		c.printf("    pop %s\n", argRegister64(i))
	}
	c.line("    push rax")
}

func (c *Context) checkArgument(call *ast.Node, fn *symtab.Function, i int, arg *ast.Node, param symtab.Variable) {
	argClass := classify.Expr(arg, c.scope)
	if argClass == types.VoidClass {
		diag.Abortf(diag.VoidArgumentPassed, call.Line, "void value passed as argument %d to %q", i+1, call.Text)
	}

	if param.IsAddress {
		if argClass != types.AddressValued {
			diag.Abortf(diag.ArrayExpected, call.Line, "argument %d to %q must be an array", i+1, call.Text)
		}
		if arg.Label == ast.Ident || arg.Label == ast.Array {
			_, av, _ := c.scope.Resolve(arg.Text)
			if av.Type != param.Type {
				diag.Abortf(diag.ArgWrongType, call.Line, "argument %d to %q has array element type %s, want %s", i+1, call.Text, av.Type, param.Type)
			}
		}
		return
	}

	if argClass == types.AddressValued {
		diag.Abortf(diag.ArrayUnexpected, call.Line, "argument %d to %q must not be an array", i+1, call.Text)
	}
	if argClass == types.IntValued && param.Type == types.Char {
		c.warn(call.Line, fmt.Sprintf("passing int where char is expected in argument %d to %q", i+1, call.Text))
	}
}
