package codegen

import (
	"io"

	"github.com/tpc-lang/tpcc/internal/ast"
	"github.com/tpc-lang/tpcc/internal/diag"
	"github.com/tpc-lang/tpcc/internal/prelude"
	"github.com/tpc-lang/tpcc/internal/symtab"
)

// Emit builds the program table from root and writes the complete NASM
// translation unit to w, following the layout of §4.7. It panics via
// diag.Abort on the first semantic or structural failure; callers run it
// inside diag.Run to get a recovered Diagnostic instead of a crash. On
// success it returns the non-fatal warnings collected during emission.
func Emit(root *ast.Node, w io.Writer) []diag.Warning {
	prog := symtab.Build(root)
	ctx := newContext(w, prog)
	ctx.emitProgram(root)
	if err := ctx.out.Flush(); err != nil {
		diag.Abortf(diag.CouldNotOpenFile, 0, "flush output: %v", err)
	}
	return ctx.Warnings
}

func (c *Context) emitProgram(root *ast.Node) {
	c.emitGlobals(&c.prog.Globals)
	c.line("")
	c.line("global _start")
	c.line("section .text")
	c.line("")
	if err := prelude.Write(c.out); err != nil {
		diag.Abortf(diag.CouldNotOpenFile, 0, "write I/O prelude: %v", err)
	}
	c.line("")

	var mainNode *ast.Node
	for _, child := range root.Children {
		if child.Label != ast.FuncDecl {
			continue
		}
		if child.Text == "main" {
			mainNode = child
			continue
		}
		c.emitFunction(child)
		c.line("")
	}

	if mainNode == nil {
		diag.Abort(diag.Diagnostic{Kind: diag.NoMainFunction, Message: "no function named main"})
	}
	c.emitMain(mainNode)
}

// emitGlobals writes the .bss section. Each reservation's count is the
// variable's element count, not its count scaled by element size (§4.7,
// §9): NASM's resb/resw/resd/resq already count units of that directive's
// own width, so this is correct as written, not an oversight to silently
// multiply away.
func (c *Context) emitGlobals(globals *symtab.VariableTable) {
	c.line("section .bss")
	for _, v := range globals.Entries {
		c.printf("    %s: %s %d\n", v.ID, resDirective(v.Type.Size()), v.ElementCount)
	}
}
