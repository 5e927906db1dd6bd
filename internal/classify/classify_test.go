package classify_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tpc-lang/tpcc/internal/ast"
	"github.com/tpc-lang/tpcc/internal/classify"
	"github.com/tpc-lang/tpcc/internal/symtab"
	"github.com/tpc-lang/tpcc/internal/types"
)

func testScope() *symtab.Scope {
	var locals, params symtab.VariableTable
	locals.Add(symtab.Variable{ID: "x", Type: types.Int, ElementCount: 1}, 1)
	locals.Add(symtab.Variable{ID: "arr", Type: types.Char, ElementCount: 5, IsArray: true}, 1)
	params.Add(symtab.Variable{ID: "p", Type: types.Char, ElementCount: 1, IsArray: true, IsAddress: true}, 1)

	prog := &symtab.ProgramTable{}
	prog.Functions.Add(symtab.Function{ID: "f", ReturnType: types.Int}, 1)
	prog.Functions.Add(symtab.Function{ID: "g", ReturnType: types.Void}, 1)

	return &symtab.Scope{Locals: &locals, Params: &params, Prog: prog}
}

func TestExpr(t *testing.T) {
	scope := testScope()

	cases := []struct {
		name string
		node *ast.Node
		want types.Class
	}{
		{"num literal", ast.NumNode(1, 42), types.IntValued},
		{"char literal", ast.CharNode(1, 'a'), types.CharValued},
		{"local scalar", ast.IdentNode(1, "x"), types.IntValued},
		{"bare local array", func() *ast.Node { n := ast.IdentNode(1, "arr"); n.Label = ast.Array; return n }(), types.AddressValued},
		{"indexed local array", func() *ast.Node {
			n := ast.IdentNode(1, "arr")
			n.Label = ast.Array
			n.Append(ast.NumNode(1, 0))
			return n
		}(), types.CharValued},
		{"bare array param", func() *ast.Node { n := ast.IdentNode(1, "p"); n.Label = ast.Array; return n }(), types.AddressValued},
		{"unresolved ident", ast.IdentNode(1, "nope"), types.VoidClass},
		{"call to int function", ast.CallNode(1, "f", ast.NumNode(1, 1)), types.IntValued},
		{"zero-arg call to void function", ast.CallNode(1, "g"), types.VoidClass},
		{"address-of", ast.New(ast.Address, 1, ast.IdentNode(1, "x")), types.AddressValued},
		{"comparison", ast.OpNode(ast.Eq, 1, "==", ast.NumNode(1, 1), ast.NumNode(1, 2)), types.IntValued},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, classify.Expr(tc.node, scope))
		})
	}
}
