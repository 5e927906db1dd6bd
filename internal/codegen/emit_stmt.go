package codegen

import (
	"github.com/tpc-lang/tpcc/internal/ast"
	"github.com/tpc-lang/tpcc/internal/classify"
	"github.com/tpc-lang/tpcc/internal/diag"
	"github.com/tpc-lang/tpcc/internal/symtab"
	"github.com/tpc-lang/tpcc/internal/types"
)

// emitBody lowers a function Body node: it skips the local-declaration
// block (already consumed by internal/symtab.Build) and emits the
// statement list.
func (c *Context) emitBody(body *ast.Node) {
	if body == nil {
		return
	}
	if sl := body.ChildLabeled(ast.StmtList); sl != nil {
		c.emitStmtList(sl)
	}
}

func (c *Context) emitStmtList(list *ast.Node) {
	for _, stmt := range list.Children {
		c.emitStmt(stmt)
	}
}

// emitStmtOrBody lowers a branch target that may be a braced block (Body or
// StmtList) or a single bare statement, as produced by an unbraced
// if/while arm.
func (c *Context) emitStmtOrBody(node *ast.Node) {
	if node == nil {
		return
	}
	switch node.Label {
	case ast.Body:
		c.emitBody(node)
	case ast.StmtList:
		c.emitStmtList(node)
	default:
		c.emitStmt(node)
	}
}

func (c *Context) emitStmt(node *ast.Node) {
	switch node.Label {
	case ast.DeclVarsLocal:
		// already registered by internal/symtab.Build; no code to emit.
	case ast.Assign:
		c.emitAssign(node)
	case ast.If:
		c.emitIf(node)
	case ast.While:
		c.emitWhile(node)
	case ast.Return:
		c.emitReturn(node)
	case ast.StmtList:
		c.emitStmtList(node)
	case ast.Body:
		c.emitBody(node)
	default:
		// any other node in statement position is an expression evaluated
		// for its side effect (a bare call); its value is discarded.
		c.emitExpr(node)
		c.line("    add rsp, 8")
	}
}

// emitAssign lowers `lhs = rhs`. The right-hand side is evaluated first;
// for an indexed destination the index is evaluated second, so the value
// is already sitting below the index on the stack when both are popped
// (§4.6's example: `mov [a + rbx], eax` with the index scaled into rbx
// before the value is stored).
func (c *Context) emitAssign(node *ast.Node) {
	lhs, rhs := node.Child(0), node.Child(1)

	rhsClass := classify.Expr(rhs, c.scope)
	if rhsClass == types.VoidClass {
		diag.Abortf(diag.VoidAssignment, node.Line, "cannot assign a void value to %q", lhs.Text)
	}

	kind, v, _ := c.scope.Resolve(lhs.Text)
	switch kind {
	case symtab.NotFound, symtab.FuncRef:
		diag.Abortf(diag.IdNotInTable, node.Line, "unknown identifier %q in assignment", lhs.Text)
	}

	var indexNode *ast.Node
	if lhs.Label == ast.Array {
		indexNode = lhs.Child(0)
		if !(v.IsArray || v.IsAddress) {
			diag.Abortf(diag.ArrayExpected, node.Line, "%q is not an array", lhs.Text)
		}
		if indexNode == nil {
			diag.Abortf(diag.ArrayUnexpected, node.Line, "cannot assign to array %q as a whole", lhs.Text)
		}
	} else if v.IsArray || v.IsAddress {
		diag.Abortf(diag.ArrayUnexpected, node.Line, "%q is an array; an index is required", lhs.Text)
	}

	if rhsClass == types.IntValued && v.Type == types.Char {
		c.warn(node.Line, "assigning an int value to char-typed "+lhs.Text)
	}

	c.emitExpr(rhs)
	c.printf("    ; assignment %d\n", c.nextAssignment())

	if indexNode != nil {
		c.emitIndexToRBX(indexNode, v.Type.Size())
	}
	c.emitStore(kind, v, indexNode != nil)
}

func (c *Context) emitStore(kind symtab.Kind, v symtab.Variable, indexed bool) {
	if indexed {
		c.line("    pop rax")
		switch kind {
		case symtab.GlobalVar:
			c.printf("    mov [%s + rbx], %s\n", v.ID, subReg(v.Type.Size()))
		case symtab.LocalVar:
			base := v.Address + v.Size()
			c.printf("    mov [rbp - %d + rbx], %s\n", base, subReg(v.Type.Size()))
		case symtab.ParamVar:
			reg64 := argRegister64(paramIndex(c.fn, v.ID))
			c.printf("    mov [%s + rbx], %s\n", reg64, subReg(v.Type.Size()))
		}
		return
	}

	switch kind {
	case symtab.GlobalVar:
		c.line("    pop rax")
		c.printf("    mov [%s], %s\n", v.ID, subReg(v.Type.Size()))
	case symtab.LocalVar:
		c.line("    pop rax")
		base := v.Address + v.Size()
		c.printf("    mov [rbp - %d], %s\n", base, subReg(v.Type.Size()))
	case symtab.ParamVar:
		idx := paramIndex(c.fn, v.ID)
		c.printf("    pop %s\n", argRegister64(idx))
	}
}

// emitIf lowers if/else per §4.6. No special rewrite is needed for a bare
// identifier condition ("implicit boolean"): pushing any nonzero value and
// comparing it against 0 with `je` already implements truthiness, whatever
// expression produced it.
func (c *Context) emitIf(node *ast.Node) {
	k := c.nextIf()
	cond := node.Child(0)
	thenBranch := node.Child(1)
	elseNode := node.ChildLabeled(ast.Else)

	c.checkNotVoid(cond, diag.VoidComparation, "if condition")
	c.emitExpr(cond)
	c.line("    pop rax")
	c.line("    cmp rax, 0")
	if elseNode != nil {
		c.printf("    je .else%d\n", k)
	} else {
		c.printf("    je .endif%d\n", k)
	}

	c.emitStmtOrBody(thenBranch)

	if elseNode != nil {
		c.printf("    jmp .endif%d\n", k)
		c.printf(".else%d:\n", k)
		c.emitStmtOrBody(elseNode.Child(0))
	}
	c.printf(".endif%d:\n", k)
}

func (c *Context) emitWhile(node *ast.Node) {
	k := c.nextWhile()
	cond := node.Child(0)
	body := node.Child(1)

	c.printf(".loop%d:\n", k)
	c.checkNotVoid(cond, diag.VoidComparation, "while condition")
	c.emitExpr(cond)
	c.line("    pop rax")
	c.line("    cmp rax, 0")
	c.printf("    je .endloop%d\n", k)
	c.emitStmtOrBody(body)
	c.printf("    jmp .loop%d\n", k)
	c.printf(".endloop%d:\n", k)
}

// emitReturn lowers a return statement. main exits the process directly
// (§4.7); any other function restores its caller's frame and returns.
func (c *Context) emitReturn(node *ast.Node) {
	expr := node.Child(0)
	isMain := c.fn != nil && c.fn.ID == "main"

	if expr == nil {
		if c.fn.ReturnType != types.Void {
			diag.Abortf(diag.MissingReturnValue, node.Line, "function %q must return a value", c.fn.ID)
		}
		c.emitReturnEpilogue(isMain, nil)
		return
	}

	if c.fn.ReturnType == types.Void {
		diag.Abortf(diag.VoidReturnIllegal, node.Line, "function %q returns void; no return value expected", c.fn.ID)
	}
	argClass := classify.Expr(expr, c.scope)
	if argClass == types.VoidClass {
		diag.Abortf(diag.MissingReturnValue, node.Line, "void value returned from function %q", c.fn.ID)
	}
	if argClass == types.IntValued && c.fn.ReturnType == types.Char {
		c.warn(node.Line, "returning an int value from char-returning function "+c.fn.ID)
	}

	c.emitExpr(expr)
	c.line("    pop rax")
	c.emitReturnEpilogue(isMain, expr)
}

func (c *Context) emitReturnEpilogue(isMain bool, expr *ast.Node) {
	if isMain {
		if expr != nil {
			c.line("    mov rdi, rax")
		} else {
			c.line("    mov rdi, 0")
		}
		c.line("    mov rax, 60")
		c.line("    syscall")
		return
	}
	c.line("    leave")
	c.line("    ret")
}
