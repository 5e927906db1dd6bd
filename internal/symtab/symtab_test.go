package symtab_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tpc-lang/tpcc/internal/ast"
	"github.com/tpc-lang/tpcc/internal/symtab"
	"github.com/tpc-lang/tpcc/internal/types"
)

func declGroup(line int, typeName string, decls ...*ast.Node) *ast.Node {
	g := ast.New(ast.DeclaratorGroup, line, append([]*ast.Node{ast.TypeNode(line, typeName)}, decls...)...)
	return g
}

func arrayDecl(line int, name string, count int) *ast.Node {
	n := ast.IdentNode(line, name)
	n.Label = ast.Array
	n.Append(ast.NumNode(line, count))
	return n
}

func mainFunc(line int) *ast.Node {
	fn := ast.New(ast.FuncDecl, line)
	fn.Text = "main"
	fn.Append(ast.New(ast.Void, line))
	fn.Append(ast.New(ast.ParamList, line, ast.New(ast.Void, line)))
	fn.Append(ast.New(ast.Body, line, ast.New(ast.StmtList, line)))
	return fn
}

func TestBuild_globalsOffsetsAndSize(t *testing.T) {
	root := ast.New(ast.Program, 1,
		ast.New(ast.DeclVarsGlobal, 1,
			declGroup(1, "int", ast.IdentNode(1, "x")),
			declGroup(2, "char", ast.IdentNode(2, "c")),
			declGroup(3, "int", arrayDecl(3, "a", 3)),
		),
		mainFunc(5),
	)

	prog := symtab.Build(root)

	require.Len(t, prog.Globals.Entries, 3)

	x, ok := prog.Globals.Lookup("x")
	require.True(t, ok)
	require.Equal(t, 0, x.Address)
	require.Equal(t, types.Int, x.Type)

	c, ok := prog.Globals.Lookup("c")
	require.True(t, ok)
	require.Equal(t, 4, c.Address, "offset(e1) = offset(e0) + physsize(e0) = 0 + 4")

	a, ok := prog.Globals.Lookup("a")
	require.True(t, ok)
	require.Equal(t, 5, a.Address, "offset(e2) = offset(e1) + physsize(e1) = 4 + 1")
	require.True(t, a.IsArray)
	require.Equal(t, 3, a.ElementCount)

	require.Equal(t, 4+1+3*4, prog.Globals.Size)
}

func TestBuild_duplicateGlobalAborts(t *testing.T) {
	root := ast.New(ast.Program, 1,
		ast.New(ast.DeclVarsGlobal, 1,
			declGroup(1, "int", ast.IdentNode(1, "x")),
			declGroup(2, "int", ast.IdentNode(2, "x")),
		),
		mainFunc(5),
	)

	require.Panics(t, func() { symtab.Build(root) })
}

func TestBuild_missingMainAborts(t *testing.T) {
	root := ast.New(ast.Program, 1)
	require.Panics(t, func() { symtab.Build(root) })
}

func TestBuild_arrayParamIsAddressPointer(t *testing.T) {
	fn := ast.New(ast.FuncDecl, 1)
	fn.Text = "f"
	fn.Append(ast.New(ast.Void, 1))
	fn.Append(ast.New(ast.ParamList, 1, declGroup(1, "int", arrayDecl(1, "buf", 10))))
	fn.Append(ast.New(ast.Body, 1, ast.New(ast.StmtList, 1)))

	root := ast.New(ast.Program, 1, fn, mainFunc(3))
	prog := symtab.Build(root)

	f, ok := prog.Functions.Lookup("f")
	require.True(t, ok)
	require.Len(t, f.Params.Entries, 1)
	buf := f.Params.Entries[0]
	require.True(t, buf.IsAddress)
	require.Equal(t, 8, f.Params.Size, "array parameter occupies an 8-byte pointer slot")
}

func TestBuild_builtinsPreregistered(t *testing.T) {
	root := ast.New(ast.Program, 1, mainFunc(1))
	prog := symtab.Build(root)

	for _, name := range []string{"getChar", "getInt", "putChar", "putInt"} {
		_, ok := prog.Functions.Lookup(name)
		require.Truef(t, ok, "builtin %q must be pre-registered", name)
	}
}

func TestBuild_functionCollidesWithGlobal(t *testing.T) {
	root := ast.New(ast.Program, 1,
		ast.New(ast.DeclVarsGlobal, 1, declGroup(1, "int", ast.IdentNode(1, "f"))),
		func() *ast.Node {
			fn := ast.New(ast.FuncDecl, 2)
			fn.Text = "f"
			fn.Append(ast.New(ast.Void, 2))
			fn.Append(ast.New(ast.ParamList, 2, ast.New(ast.Void, 2)))
			fn.Append(ast.New(ast.Body, 2, ast.New(ast.StmtList, 2)))
			return fn
		}(),
		mainFunc(5),
	)

	require.Panics(t, func() { symtab.Build(root) })
}

func TestVariableTable_physSizeParameterArrayRule(t *testing.T) {
	var t1 symtab.VariableTable
	t1.Add(symtab.Variable{ID: "p", Type: types.Int, ElementCount: 1, IsArray: true, IsAddress: true}, 1)
	t1.Add(symtab.Variable{ID: "q", Type: types.Int, ElementCount: 1}, 2)

	require.Equal(t, 8, t1.Entries[1].Address, "pointer slot is 8 bytes even though ElementCount==1")
}
