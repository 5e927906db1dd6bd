// Package classify implements the expression classifier of §4.4: each
// expression node is assigned one of IntValued, CharValued, AddressValued,
// or Void. The classification is coarse and used only to drive the
// semantic checks fused into code generation (internal/codegen) -- it is
// not itself part of code shape.
package classify

import (
	"github.com/tpc-lang/tpcc/internal/ast"
	"github.com/tpc-lang/tpcc/internal/symtab"
	"github.com/tpc-lang/tpcc/internal/types"
)

// Expr classifies node within scope, per §4.4's rules. A call is an Expr
// node naming its callee in Text, keeping it distinguishable from a bare
// Ident reference even with zero arguments. An Array node in expression
// position is an (optionally indexed) array reference -- its index child,
// if any, is an expression, never the element-count literal used when the
// same label appears in a declarator.
func Expr(node *ast.Node, scope *symtab.Scope) types.Class {
	if node == nil {
		return types.VoidClass
	}
	switch node.Label {
	case ast.Num:
		return types.IntValued
	case ast.Character:
		return types.CharClass()
	case ast.Or, ast.And, ast.Eq, ast.Order, ast.Addsub, ast.Divstar, ast.Not:
		return types.IntValued
	case ast.Address:
		return types.AddressClass()
	case ast.Array:
		return classifyIdent(node, scope, node.Child(0) != nil)
	case ast.Ident:
		return classifyIdent(node, scope, false)
	case ast.Expr:
		return classifyCall(node, scope)
	default:
		return types.VoidClass
	}
}

func classifyIdent(node *ast.Node, scope *symtab.Scope, hasIndex bool) types.Class {
	kind, v, _ := scope.Resolve(node.Text)
	if kind == symtab.NotFound || kind == symtab.FuncRef {
		return types.VoidClass
	}
	if (v.IsArray || v.IsAddress) && !hasIndex {
		return types.AddressClass()
	}
	return types.FromPrimitive(v.Type)
}

func classifyCall(node *ast.Node, scope *symtab.Scope) types.Class {
	kind, _, fn := scope.Resolve(node.Text)
	if kind != symtab.FuncRef || fn == nil {
		return types.VoidClass
	}
	return types.FromPrimitive(fn.ReturnType)
}
