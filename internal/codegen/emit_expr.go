package codegen

import (
	"github.com/tpc-lang/tpcc/internal/ast"
	"github.com/tpc-lang/tpcc/internal/classify"
	"github.com/tpc-lang/tpcc/internal/diag"
	"github.com/tpc-lang/tpcc/internal/symtab"
	"github.com/tpc-lang/tpcc/internal/types"
)

// emitExpr lowers node, leaving its value on the stack as a single 8-byte
// push -- the stack-machine discipline of §4.6: every leaf pushes, every
// binary operator pops twice and pushes once.
func (c *Context) emitExpr(node *ast.Node) {
	switch node.Label {
	case ast.Num:
		c.printf("    push %d\n", node.Int)
	case ast.Character:
		c.printf("    push %d\n", node.Char)
	case ast.Ident:
		c.emitLoad(node, nil)
	case ast.Array:
		c.emitLoad(node, node.Child(0))
	case ast.Address:
		c.emitAddressOf(node)
	case ast.Or, ast.And:
		c.emitLogical(node)
	case ast.Eq, ast.Order:
		c.emitComparison(node)
	case ast.Addsub:
		c.emitAddsub(node)
	case ast.Divstar:
		c.emitDivstar(node)
	case ast.Not:
		c.emitNot(node)
	case ast.Expr:
		c.emitCall(node)
	default:
		diag.Abortf(diag.NotAList, node.Line, "unexpected expression node %v", node.Label)
	}
}

// emitLoad lowers a reference to node.Text, optionally indexed by
// indexNode. A bare array or pointer-parameter reference (indexNode == nil
// and the resolved entity is an array or an address parameter) loads the
// base address rather than dereferencing it -- the "array-as-argument"
// convention of §4.6, decided at emission time here rather than threaded
// through a shared runtime routine via the sentinel index described there
// (see DESIGN.md).
func (c *Context) emitLoad(node *ast.Node, indexNode *ast.Node) {
	kind, v, _ := c.scope.Resolve(node.Text)
	switch kind {
	case symtab.NotFound:
		diag.Abortf(diag.IdNotInTable, node.Line, "unknown identifier %q", node.Text)
	case symtab.FuncRef:
		diag.Abortf(diag.IdNotInTable, node.Line, "%q is a function, not a value", node.Text)
	}
	if indexNode != nil && !(v.IsArray || v.IsAddress) {
		diag.Abortf(diag.ArrayExpected, node.Line, "%q is not an array", node.Text)
	}

	switch kind {
	case symtab.GlobalVar:
		c.emitLoadGlobal(v, indexNode)
	case symtab.LocalVar:
		c.emitLoadLocal(v, indexNode)
	case symtab.ParamVar:
		c.emitLoadParam(v, indexNode)
	}
}

func (c *Context) emitIndexToRBX(indexNode *ast.Node, elemSize int) {
	c.checkNotVoid(indexNode, diag.VoidIndex, "array index")
	c.emitExpr(indexNode)
	c.line("    pop rbx")
	if elemSize > 1 {
		c.printf("    imul rbx, rbx, %d\n", elemSize)
	}
}

func (c *Context) emitLoadGlobal(v symtab.Variable, indexNode *ast.Node) {
	switch {
	case indexNode != nil:
		c.emitIndexToRBX(indexNode, v.Type.Size())
		c.printf("    %s rax, %s [%s + rbx]\n", extendOp(v.Type), sizeKeyword(v.Type.Size()), v.ID)
		c.line("    push rax")
	case v.IsArray:
		c.printf("    lea rax, [%s]\n", v.ID)
		c.line("    push rax")
	default:
		c.printf("    %s rax, %s [%s]\n", extendOp(v.Type), sizeKeyword(v.Type.Size()), v.ID)
		c.line("    push rax")
	}
}

func (c *Context) emitLoadLocal(v symtab.Variable, indexNode *ast.Node) {
	base := v.Address + v.Size()
	switch {
	case indexNode != nil:
		c.emitIndexToRBX(indexNode, v.Type.Size())
		c.printf("    %s rax, %s [rbp - %d + rbx]\n", extendOp(v.Type), sizeKeyword(v.Type.Size()), base)
		c.line("    push rax")
	case v.IsArray:
		c.printf("    lea rax, [rbp - %d]\n", base)
		c.line("    push rax")
	default:
		c.printf("    %s rax, %s [rbp - %d]\n", extendOp(v.Type), sizeKeyword(v.Type.Size()), base)
		c.line("    push rax")
	}
}

// emitLoadParam loads a parameter that lives in its incoming argument
// register for the whole function body (see FrameSize in internal/symtab):
// a scalar parameter's value is read straight from that register; an array
// parameter's register already holds the pointer handed in by the caller.
func (c *Context) emitLoadParam(v symtab.Variable, indexNode *ast.Node) {
	idx := paramIndex(c.fn, v.ID)
	reg64 := argRegister64(idx)
	switch {
	case v.IsAddress && indexNode != nil:
		c.emitIndexToRBX(indexNode, v.Type.Size())
		c.printf("    %s rax, %s [%s + rbx]\n", extendOp(v.Type), sizeKeyword(v.Type.Size()), reg64)
		c.line("    push rax")
	case v.IsAddress:
		c.printf("    push %s\n", reg64)
	default:
		c.printf("    %s rax, %s\n", extendOp(v.Type), argRegisterWidth(idx, v.Type.Size()))
		c.line("    push rax")
	}
}

func paramIndex(fn *symtab.Function, id string) int {
	for i, p := range fn.Params.Entries {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// emitAddressOf lowers the `&x` operator. A scalar parameter has no frame
// slot to take the address of (§4.6's register-resident parameter design);
// rather than silently fabricate one, this is flagged as unimplemented.
func (c *Context) emitAddressOf(node *ast.Node) {
	operand := node.Child(0)
	kind, v, _ := c.scope.Resolve(operand.Text)
	switch kind {
	case symtab.NotFound, symtab.FuncRef:
		diag.Abortf(diag.IdNotInTable, node.Line, "unknown identifier %q", operand.Text)
	}
	switch kind {
	case symtab.GlobalVar:
		c.printf("    lea rax, [%s]\n", v.ID)
	case symtab.LocalVar:
		base := v.Address + v.Size()
		c.printf("    lea rax, [rbp - %d]\n", base)
	case symtab.ParamVar:
		if !v.IsAddress {
			diag.Abortf(diag.Failure, node.Line, "cannot take the address of scalar parameter %q", operand.Text)
		}
		c.printf("    mov rax, %s\n", argRegister64(paramIndex(c.fn, v.ID)))
	}
	c.line("    push rax")
}

func (c *Context) checkNotVoid(node *ast.Node, kind diag.Kind, what string) {
	if classify.Expr(node, c.scope) == types.VoidClass {
		diag.Abortf(kind, node.Line, "void value used in %s", what)
	}
}

func (c *Context) emitComparison(node *ast.Node) {
	lhs, rhs := node.Child(0), node.Child(1)
	c.checkNotVoid(lhs, diag.VoidComparation, "comparison")
	c.checkNotVoid(rhs, diag.VoidComparation, "comparison")
	c.emitExpr(lhs)
	c.emitExpr(rhs)
	c.line("    pop rcx")
	c.line("    pop rax")
	c.line("    cmp rax, rcx")
	k := c.nextCondition()
	c.printf("    %s .true%d\n", jumpForOp(node.Op), k)
	c.line("    push 0")
	c.printf("    jmp .false%d\n", k)
	c.printf(".true%d:\n", k)
	c.line("    push 1")
	c.printf(".false%d:\n", k)
}

func (c *Context) emitLogical(node *ast.Node) {
	lhs, rhs := node.Child(0), node.Child(1)
	c.checkNotVoid(lhs, diag.VoidComparation, "boolean operation")
	c.checkNotVoid(rhs, diag.VoidComparation, "boolean operation")
	c.emitExpr(lhs)
	c.emitExpr(rhs)
	c.line("    pop rcx")
	c.line("    pop rax")
	if node.Label == ast.And {
		c.line("    and rax, rcx")
	} else {
		c.line("    or rax, rcx")
	}
	c.line("    test rax, rax")
	c.line("    setnz al")
	c.line("    movzx rax, al")
	c.line("    push rax")
}

// emitAddsub lowers +, binary -, and unary -. Unary minus is rewritten as
// `0 - x` before emission, per §4.6.
func (c *Context) emitAddsub(node *ast.Node) {
	if len(node.Children) == 1 {
		child := node.Child(0)
		c.checkNotVoid(child, diag.VoidAddsub, "arithmetic")
		c.line("    push 0")
		c.emitExpr(child)
		c.line("    pop rcx")
		c.line("    pop rax")
		c.line("    sub rax, rcx")
		c.line("    push rax")
		return
	}
	lhs, rhs := node.Child(0), node.Child(1)
	c.checkNotVoid(lhs, diag.VoidAddsub, "arithmetic")
	c.checkNotVoid(rhs, diag.VoidAddsub, "arithmetic")
	c.emitExpr(lhs)
	c.emitExpr(rhs)
	c.line("    pop rcx")
	c.line("    pop rax")
	if node.Op == "+" {
		c.line("    add rax, rcx")
	} else {
		c.line("    sub rax, rcx")
	}
	c.line("    push rax")
}

func (c *Context) emitDivstar(node *ast.Node) {
	lhs, rhs := node.Child(0), node.Child(1)
	c.checkNotVoid(lhs, diag.VoidDivstar, "arithmetic")
	c.checkNotVoid(rhs, diag.VoidDivstar, "arithmetic")
	c.emitExpr(lhs)
	c.emitExpr(rhs)
	c.line("    pop rcx")
	c.line("    pop rax")
	if node.Op == "*" {
		c.line("    imul rax, rcx")
	} else {
		c.line("    xor edx, edx")
		c.line("    idiv rcx")
	}
	c.line("    push rax")
}

func (c *Context) emitNot(node *ast.Node) {
	child := node.Child(0)
	c.checkNotVoid(child, diag.VoidComparation, "boolean negation")
	c.emitExpr(child)
	c.line("    pop rax")
	c.line("    cmp rax, 0")
	k := c.nextCondition()
	c.printf("    je .true%d\n", k)
	c.line("    push 0")
	c.printf("    jmp .false%d\n", k)
	c.printf(".true%d:\n", k)
	c.line("    push 1")
	c.printf(".false%d:\n", k)
}
