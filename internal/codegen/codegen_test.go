package codegen_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tpc-lang/tpcc/internal/ast"
	"github.com/tpc-lang/tpcc/internal/codegen"
	"github.com/tpc-lang/tpcc/internal/diag"
)

func funcDecl(line int, name string, ret *ast.Node, params *ast.Node, body *ast.Node) *ast.Node {
	fn := ast.New(ast.FuncDecl, line, ret, params, body)
	fn.Text = name
	return fn
}

func voidParams(line int) *ast.Node {
	return ast.New(ast.ParamList, line, ast.New(ast.Void, line))
}

func paramList(line int, typeName string, decls ...*ast.Node) *ast.Node {
	return ast.New(ast.ParamList, line,
		ast.New(ast.DeclaratorGroup, line, append([]*ast.Node{ast.TypeNode(line, typeName)}, decls...)...))
}

func body(line int, locals *ast.Node, stmts ...*ast.Node) *ast.Node {
	b := ast.New(ast.Body, line)
	if locals != nil {
		b.Append(locals)
	}
	b.Append(ast.New(ast.StmtList, line, stmts...))
	return b
}

func localDecl(line int, typeName string, decls ...*ast.Node) *ast.Node {
	return ast.New(ast.DeclVarsLocal, line,
		ast.New(ast.DeclaratorGroup, line, append([]*ast.Node{ast.TypeNode(line, typeName)}, decls...)...))
}

func assignStmt(line int, lhs, rhs *ast.Node) *ast.Node {
	return ast.New(ast.Assign, line, lhs, rhs)
}

func arrayRef(line int, name string, index *ast.Node) *ast.Node {
	n := ast.IdentNode(line, name)
	n.Label = ast.Array
	if index != nil {
		n.Append(index)
	}
	return n
}

func returnStmt(line int, expr *ast.Node) *ast.Node {
	if expr == nil {
		return ast.New(ast.Return, line)
	}
	return ast.New(ast.Return, line, expr)
}

func runEmit(t *testing.T, root *ast.Node) (string, []diag.Warning, error) {
	t.Helper()
	var buf bytes.Buffer
	var warnings []diag.Warning
	err := diag.Run("test", func() error {
		warnings = codegen.Emit(root, &buf)
		return nil
	})
	return buf.String(), warnings, err
}

func TestEmit_helloInteger(t *testing.T) {
	main := funcDecl(1, "main", ast.TypeNode(1, "int"), voidParams(1),
		body(1, nil,
			ast.CallNode(2, "putInt", ast.NumNode(2, 42)),
			returnStmt(3, ast.NumNode(3, 0)),
		))
	root := ast.New(ast.Program, 1, main)

	out, _, err := runEmit(t, root)
	require.NoError(t, err)
	require.Contains(t, out, "push 42")
	require.Contains(t, out, "and rsp, -16")
	require.Contains(t, out, "call putInt")
	require.Contains(t, out, "mov rax, 60")
	require.Contains(t, out, "mov rdi, rax")
	require.Contains(t, out, "syscall")
}

func TestEmit_globalIndexedStoreAndLoad(t *testing.T) {
	a := ast.IdentNode(1, "a")
	a.Label = ast.Array
	a.Append(ast.NumNode(1, 3))
	globals := ast.New(ast.DeclVarsGlobal, 1,
		ast.New(ast.DeclaratorGroup, 1, ast.TypeNode(1, "int"), a))

	main := funcDecl(2, "main", ast.TypeNode(2, "int"), voidParams(2),
		body(2, nil,
			assignStmt(3, arrayRef(3, "a", ast.NumNode(3, 0)), ast.NumNode(3, 7)),
			ast.CallNode(4, "putInt", arrayRef(4, "a", ast.NumNode(4, 0))),
			returnStmt(5, ast.NumNode(5, 0)),
		))
	root := ast.New(ast.Program, 1, globals, main)

	out, _, err := runEmit(t, root)
	require.NoError(t, err)
	require.Contains(t, out, "a: resd 3")
	require.Contains(t, out, "imul rbx, rbx, 4")
	require.Contains(t, out, "mov [a + rbx], eax")
	require.Contains(t, out, "movsx rax, dword [a + rbx]")
}

func TestEmit_voidAdditionRejected(t *testing.T) {
	f := funcDecl(1, "f", ast.New(ast.Void, 1), voidParams(1), body(1, nil))
	main := funcDecl(2, "main", ast.TypeNode(2, "int"), voidParams(2),
		body(2, nil,
			ast.CallNode(3, "putInt", ast.OpNode(ast.Addsub, 3, "+", ast.CallNode(3, "f"), ast.NumNode(3, 1))),
			returnStmt(4, ast.NumNode(4, 0)),
		))
	root := ast.New(ast.Program, 1, f, main)

	_, _, err := runEmit(t, root)
	require.Error(t, err)
	d := diag.AsDiagnostic(err)
	require.Equal(t, diag.VoidAddsub, d.Kind)
	require.Equal(t, 3, d.Line)
	require.Equal(t, 2, diag.ExitCode(d.Kind))
}

func TestEmit_unaryMinusRewritten(t *testing.T) {
	main := funcDecl(1, "main", ast.TypeNode(1, "int"), voidParams(1),
		body(1, nil,
			ast.CallNode(2, "putInt", ast.OpNode(ast.Addsub, 2, "-", ast.NumNode(2, 5))),
			returnStmt(3, ast.NumNode(3, 0)),
		))
	root := ast.New(ast.Program, 1, main)

	out, _, err := runEmit(t, root)
	require.NoError(t, err)
	require.Contains(t, out, "push 0\n    push 5\n    pop rcx\n    pop rax\n    sub rax, rcx")
}

func TestEmit_whileWithBareIdentifierCondition(t *testing.T) {
	x := ast.IdentNode(1, "x")
	main := funcDecl(1, "main", ast.TypeNode(1, "int"), voidParams(1),
		body(1, localDecl(1, "int", ast.IdentNode(1, "x")),
			assignStmt(2, ast.IdentNode(2, "x"), ast.NumNode(2, 3)),
			ast.New(ast.While, 3, x,
				ast.New(ast.StmtList, 3,
					assignStmt(3, ast.IdentNode(3, "x"), ast.OpNode(ast.Addsub, 3, "-", ast.IdentNode(3, "x"), ast.NumNode(3, 1))))),
			returnStmt(4, ast.NumNode(4, 0)),
		))
	root := ast.New(ast.Program, 1, main)

	out, _, err := runEmit(t, root)
	require.NoError(t, err)
	require.Contains(t, out, ".loop0:")
	require.Contains(t, out, "je .endloop0")
	require.NotContains(t, out, "cmp rax, 1")
}

func TestEmit_arityErrorTooFewArguments(t *testing.T) {
	g := funcDecl(1, "g", ast.New(ast.Void, 1), paramList(1, "int", ast.IdentNode(1, "a")), body(1, nil))
	main := funcDecl(2, "main", ast.TypeNode(2, "int"), voidParams(2),
		body(2, nil,
			ast.CallNode(3, "g"),
			returnStmt(4, ast.NumNode(4, 0)),
		))
	root := ast.New(ast.Program, 1, g, main)

	_, _, err := runEmit(t, root)
	require.Error(t, err)
	d := diag.AsDiagnostic(err)
	require.Equal(t, diag.TooFewArgument, d.Kind)
	require.Equal(t, 2, diag.ExitCode(d.Kind))
}
