package symtab

import (
	"github.com/tpc-lang/tpcc/internal/ast"
	"github.com/tpc-lang/tpcc/internal/diag"
	"github.com/tpc-lang/tpcc/internal/types"
)

// builtinSignature describes one of the four pre-registered functions of
// §4.2. Their Locals/Params tables are filled here so arity/type checks on
// calls to them behave like calls to any user function; their bodies are
// hand-written assembly emitted verbatim by internal/prelude rather than
// walked from an AST.
type builtinSignature struct {
	name    string
	ret     types.Primitive
	paramTy types.Primitive // types.Void means no parameters
}

var builtins = []builtinSignature{
	{"getChar", types.Char, types.Void},
	{"getInt", types.Int, types.Void},
	{"putChar", types.Void, types.Char},
	{"putInt", types.Void, types.Int},
}

// Build walks root once and returns its ProgramTable, following the order
// of §4.3: globals, then the four built-ins, then each user function in
// source order. Any failure aborts immediately via diag.Abort; a program
// with no function named "main" aborts with diag.NoMainFunction.
func Build(root *ast.Node) *ProgramTable {
	if root == nil {
		diag.Abortf(diag.NullArgument, 0, "nil program root")
	}

	prog := &ProgramTable{}

	if declGlob := root.ChildLabeled(ast.DeclVarsGlobal); declGlob != nil {
		addDeclGroups(&prog.Globals, declGlob)
	}

	for _, b := range builtins {
		fn := Function{ID: b.name, ReturnType: b.ret}
		if b.paramTy != types.Void {
			fn.Params.Add(Variable{ID: "_", Type: b.paramTy, ElementCount: 1}, 0)
		}
		prog.Functions.Add(fn, 0)
	}

	haveMain := false
	prevFootprint := 0
	for _, child := range root.Children {
		if child.Label != ast.FuncDecl {
			continue
		}
		if child.Text == "main" {
			haveMain = true
		}
		fn := buildFunction(child, prog)
		fn.Address = prevFootprint
		prevFootprint += rawFootprint(fn)
	}

	if !haveMain {
		diag.Abort(diag.Diagnostic{Kind: diag.NoMainFunction, Message: "no function named main"})
	}

	realFootprint := 0
	for i := range prog.Functions.Entries {
		realFootprint += prog.Functions.Entries[i].FrameSize()
	}
	prog.TotalSize = prog.Globals.Size + realFootprint
	return prog
}

func buildFunction(node *ast.Node, prog *ProgramTable) *Function {
	retType, ok := returnTypeOf(node)
	if !ok {
		diag.Abortf(diag.NotAType, node.Line, "invalid return type in declaration of %q", node.Text)
	}
	if _, dup := prog.Globals.Lookup(node.Text); dup {
		diag.Abortf(diag.IdInTable, node.Line, "function %q collides with a global variable", node.Text)
	}
	if isReservedBuiltin(node.Text) {
		diag.Abortf(diag.IdInTable, node.Line, "%q is a reserved built-in name", node.Text)
	}

	fn := prog.Functions.Add(Function{ID: node.Text, ReturnType: retType}, node.Line)

	if pl := node.ChildLabeled(ast.ParamList); pl != nil {
		addParamGroups(&fn.Params, pl)
	}
	if body := node.ChildLabeled(ast.Body); body != nil {
		if dv := body.ChildLabeled(ast.DeclVarsLocal); dv != nil {
			addDeclGroups(&fn.Locals, dv)
		}
	}
	return fn
}

func isReservedBuiltin(name string) bool {
	for _, b := range builtins {
		if b.name == name {
			return true
		}
	}
	return false
}

func returnTypeOf(node *ast.Node) (types.Primitive, bool) {
	t := node.Child(0)
	if t == nil {
		return types.Unauthorized, false
	}
	if t.Label == ast.Void {
		return types.Void, true
	}
	if t.Label == ast.Type {
		return types.Parse(t.Text)
	}
	return types.Unauthorized, false
}

// addDeclGroups fills table from a DeclVarsGlobal/DeclVarsLocal block: each
// DeclaratorGroup child names a type followed by one or more declarators
// (Ident for a scalar, Array for an array -- its element count is its Num
// child per §4.3's "array size taken from the Num sibling of the Array
// marker").
func addDeclGroups(table *VariableTable, block *ast.Node) {
	for _, group := range block.Children {
		if group.Label != ast.DeclaratorGroup {
			continue
		}
		typeNode := group.Child(0)
		pt, ok := types.Parse(typeNode.Text)
		if !ok || !pt.IsScalarDeclarable() {
			diag.Abortf(diag.NotAType, group.Line, "invalid declared type %q", typeNode.Text)
		}
		for _, decl := range group.Children[1:] {
			switch decl.Label {
			case ast.Ident:
				table.Add(Variable{ID: decl.Text, Type: pt, ElementCount: 1}, decl.Line)
			case ast.Array:
				count := arrayCount(decl)
				if count <= 0 {
					diag.Abortf(diag.Failure, decl.Line, "array %q must have a positive element count", decl.Text)
				}
				table.Add(Variable{ID: decl.Text, Type: pt, ElementCount: count, IsArray: true}, decl.Line)
			default:
				diag.Abortf(diag.NotAList, decl.Line, "unexpected declarator node %v", decl.Label)
			}
		}
	}
}

// addParamGroups fills table from a ParamList. A single Void child means
// "no parameters" per §4.3. Array parameters are stored as 8-byte pointers
// (IsAddress), never as inline arrays.
func addParamGroups(table *VariableTable, paramList *ast.Node) {
	if len(paramList.Children) == 1 && paramList.Children[0].Label == ast.Void {
		return
	}
	for _, group := range paramList.Children {
		if group.Label != ast.DeclaratorGroup {
			continue
		}
		typeNode := group.Child(0)
		pt, ok := types.Parse(typeNode.Text)
		if !ok || !pt.IsScalarDeclarable() {
			diag.Abortf(diag.NotAType, group.Line, "invalid parameter type %q", typeNode.Text)
		}
		for _, decl := range group.Children[1:] {
			switch decl.Label {
			case ast.Ident:
				table.Add(Variable{ID: decl.Text, Type: pt, ElementCount: 1}, decl.Line)
			case ast.Array:
				table.Add(Variable{ID: decl.Text, Type: pt, ElementCount: 1, IsArray: true, IsAddress: true}, decl.Line)
			default:
				diag.Abortf(diag.NotAList, decl.Line, "unexpected parameter declarator node %v", decl.Label)
			}
		}
	}
}

func arrayCount(decl *ast.Node) int {
	if n := decl.Child(0); n != nil && n.Label == ast.Num {
		return n.Int
	}
	return 1
}

// rawFootprint reproduces the original implementation's function-address
// accumulation bug (see DESIGN.md "function-address accumulation"): it sums
// each parameter/local's bare primitive size rather than its physical
// layout size, so arrays are undercounted (a char[10] contributes 1 byte,
// not 10, and an array parameter contributes its element type's size, not
// the 8-byte pointer it actually occupies). This field is not used to
// compute in-frame addressing -- that uses VariableTable's own cumulative
// Address/Size, which are correct -- only Function.Address, a legacy
// bookkeeping value carried over unchanged from the original.
func rawFootprint(fn *Function) int {
	total := 0
	for _, v := range fn.Params.Entries {
		total += v.Type.Size()
	}
	for _, v := range fn.Locals.Entries {
		total += v.Type.Size()
	}
	return total
}
