// Package dump renders the program table and AST as human-readable text
// for the CLI's -s/-F/-f/-g/-t flags (§6). It is peripheral to the
// compiler's core -- "table pretty-printing" is explicitly out of scope
// for the core spec -- but is grounded on the teacher's dumper.go: section
// headers written with fmt.Fprintf, rows accumulated in a lineBuffer and
// flushed a line at a time so every section ends on its own newline.
package dump

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/tpc-lang/tpcc/internal/ast"
	"github.com/tpc-lang/tpcc/internal/symtab"
)

// lineBuffer accumulates one row of output and guarantees it ends with a
// newline when flushed, the same discipline the teacher's dumper uses to
// keep section headers and table rows from running together.
type lineBuffer struct{ bytes.Buffer }

func (buf *lineBuffer) flush(w io.Writer) {
	if b := buf.Bytes(); len(b) == 0 || b[len(b)-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.WriteTo(w)
}

// Options selects which sections Run writes, one per CLI dump flag.
type Options struct {
	Symbols   bool   // -s: every symbol table (globals + all functions)
	Functions bool   // -F: the function table, signatures only
	FuncName  string // -f NAME: one function's parameter and local tables
	Globals   bool   // -g: the globals table
	Tree      bool   // -t: the AST
}

// Any reports whether opts selects at least one section.
func (opts Options) Any() bool {
	return opts.Symbols || opts.Functions || opts.FuncName != "" || opts.Globals || opts.Tree
}

// Run writes every section opts selects, in flag-declaration order
// (-s, -F, -f, -g, -t), to w.
func Run(w io.Writer, prog *symtab.ProgramTable, root *ast.Node, opts Options) {
	if opts.Symbols {
		Globals(w, &prog.Globals)
		for i := range prog.Functions.Entries {
			Function(w, &prog.Functions.Entries[i])
		}
	}
	if opts.Functions {
		FunctionSignatures(w, &prog.Functions)
	}
	if opts.FuncName != "" {
		if fn, ok := prog.Functions.Lookup(opts.FuncName); ok {
			Function(w, fn)
		} else {
			fmt.Fprintf(w, "# Function %s\n  not found\n", opts.FuncName)
		}
	}
	if opts.Globals {
		Globals(w, &prog.Globals)
	}
	if opts.Tree && root != nil {
		Tree(w, root)
	}
}

// Globals dumps the globals variable table under a "# Globals" header.
func Globals(w io.Writer, t *symtab.VariableTable) {
	fmt.Fprintf(w, "# Globals\n")
	writeVariableTable(w, t)
}

// FunctionSignatures dumps one line per function: id, return type, and
// parameter count, in declaration order.
func FunctionSignatures(w io.Writer, t *symtab.FunctionTable) {
	fmt.Fprintf(w, "# Functions\n")
	for _, fn := range t.Entries {
		fmt.Fprintf(w, "  %s: returns %s, %d param(s)\n", fn.ID, fn.ReturnType, len(fn.Params.Entries))
	}
}

// Function dumps one function's header line, parameter table, and local
// table.
func Function(w io.Writer, fn *symtab.Function) {
	fmt.Fprintf(w, "# Function %s\n  returns: %s\n  frame: %d byte(s)\n", fn.ID, fn.ReturnType, fn.FrameSize())
	fmt.Fprintf(w, "  params:\n")
	writeVariableTable(w, &fn.Params)
	fmt.Fprintf(w, "  locals:\n")
	writeVariableTable(w, &fn.Locals)
}

func writeVariableTable(w io.Writer, t *symtab.VariableTable) {
	var buf lineBuffer
	for _, v := range t.Entries {
		buf.Reset()
		fmt.Fprintf(&buf, "    %s: %s offset=%d", v.ID, v.Type, v.Address)
		if v.IsArray {
			fmt.Fprintf(&buf, " array[%d]", v.ElementCount)
		}
		if v.IsAddress {
			fmt.Fprintf(&buf, " address")
		}
		buf.flush(w)
	}
	fmt.Fprintf(w, "    size: %d\n", t.Size)
}

// Tree dumps root as an indented, per-line AST listing under a "# AST"
// header: one node per line, labeled with its syntactic form and payload,
// children indented two spaces deeper than their parent.
func Tree(w io.Writer, root *ast.Node) {
	fmt.Fprintf(w, "# AST\n")
	writeNode(w, root, 1)
}

func writeNode(w io.Writer, n *ast.Node, depth int) {
	if n == nil {
		return
	}
	var buf lineBuffer
	fmt.Fprintf(&buf, "%s%s", strings.Repeat("  ", depth), n.Label)
	switch n.Label {
	case ast.Num:
		fmt.Fprintf(&buf, " %d", n.Int)
	case ast.Character:
		fmt.Fprintf(&buf, " %q", rune(n.Char))
	case ast.Ident, ast.Array, ast.Type:
		fmt.Fprintf(&buf, " %s", n.Text)
	case ast.Or, ast.And, ast.Eq, ast.Order, ast.Addsub, ast.Divstar, ast.Assign:
		fmt.Fprintf(&buf, " %q", n.Op)
	case ast.Expr:
		if n.Text != "" {
			fmt.Fprintf(&buf, " call %s", n.Text)
		}
	case ast.FuncDecl:
		fmt.Fprintf(&buf, " %s", n.Text)
	}
	fmt.Fprintf(&buf, " (line %d)", n.Line)
	buf.flush(w)
	for _, c := range n.Children {
		writeNode(w, c, depth+1)
	}
}
