package dump_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tpc-lang/tpcc/internal/ast"
	"github.com/tpc-lang/tpcc/internal/dump"
	"github.com/tpc-lang/tpcc/internal/symtab"
)

func buildProgram(t *testing.T) *symtab.ProgramTable {
	t.Helper()
	a := ast.IdentNode(1, "a")
	a.Label = ast.Array
	a.Append(ast.NumNode(1, 3))
	globals := ast.New(ast.DeclVarsGlobal, 1,
		ast.New(ast.DeclaratorGroup, 1, ast.TypeNode(1, "int"), a))
	main := ast.New(ast.FuncDecl, 2, ast.TypeNode(2, "int"),
		ast.New(ast.ParamList, 2, ast.New(ast.Void, 2)),
		ast.New(ast.Body, 2, ast.New(ast.StmtList, 2, ast.New(ast.Return, 3, ast.NumNode(3, 0)))))
	main.Text = "main"
	root := ast.New(ast.Program, 1, globals, main)
	return symtab.Build(root)
}

func TestGlobals(t *testing.T) {
	prog := buildProgram(t)
	var buf bytes.Buffer
	dump.Globals(&buf, &prog.Globals)
	out := buf.String()
	require.Contains(t, out, "# Globals")
	require.Contains(t, out, "a: int offset=0 array[3]")
	require.Contains(t, out, "size: 12")
}

func TestFunctionSignatures(t *testing.T) {
	prog := buildProgram(t)
	var buf bytes.Buffer
	dump.FunctionSignatures(&buf, &prog.Functions)
	out := buf.String()
	require.Contains(t, out, "# Functions")
	require.Contains(t, out, "main: returns int, 0 param(s)")
	require.Contains(t, out, "putInt: returns void, 1 param(s)")
}

func TestFunctionDumpsParamsAndLocals(t *testing.T) {
	prog := buildProgram(t)
	fn, ok := prog.Functions.Lookup("main")
	require.True(t, ok)
	var buf bytes.Buffer
	dump.Function(&buf, fn)
	out := buf.String()
	require.Contains(t, out, "# Function main")
	require.Contains(t, out, "params:")
	require.Contains(t, out, "locals:")
}

func TestFunctionNotFound(t *testing.T) {
	prog := buildProgram(t)
	var buf bytes.Buffer
	dump.Run(&buf, prog, nil, dump.Options{FuncName: "nope"})
	require.Contains(t, buf.String(), "not found")
}

func TestTreeIndentsChildren(t *testing.T) {
	var buf bytes.Buffer
	root := ast.New(ast.Program, 1, ast.New(ast.DeclVarsGlobal, 1))
	dump.Tree(&buf, root)
	out := buf.String()
	require.Contains(t, out, "# AST")
	require.Contains(t, out, "Program")
	require.Contains(t, out, "DeclVarsGlobal")
}

func TestOptionsAny(t *testing.T) {
	require.False(t, dump.Options{}.Any())
	require.True(t, dump.Options{Globals: true}.Any())
}
