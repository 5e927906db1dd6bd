// Package symtab implements the program symbol model of §3: variable
// tables, function tables, and the program table, plus the builder that
// walks the AST once to fill them (§4.3). It is grounded on the original
// implementation's progTable.c / symbolTable.c / functionTable.c, rewritten
// around Go value types instead of C structs with manual free() calls.
package symtab

import (
	"github.com/tpc-lang/tpcc/internal/diag"
	"github.com/tpc-lang/tpcc/internal/types"
)

// Variable is one entry of a VariableTable: an identifier, its primitive
// type, its address offset, and array/pointer metadata (§3).
type Variable struct {
	ID           string
	Type         types.Primitive
	Address      int
	ElementCount int
	IsArray      bool
	IsAddress    bool // true only for array parameters, passed as a pointer
}

// physSize returns the physical storage size in bytes used for cumulative
// offset computation (§4.3): pointer parameters are always 8 bytes, arrays
// are count*elemsize, scalars are elemsize -- except that a declared array
// of count==1 is still an 8-byte pointer slot, the parameter-array case.
func (v Variable) physSize() int { return v.Size() }

// Size is the exported form of physSize, used by internal/codegen to
// compute the frame offset of a local's lowest-addressed byte (§4.6).
func (v Variable) Size() int {
	if v.IsAddress {
		return 8
	}
	if v.IsArray {
		if v.ElementCount == 1 {
			return 8
		}
		return v.ElementCount * v.Type.Size()
	}
	return v.Type.Size()
}

// VariableTable is an insertion-ordered sequence of Variable entries plus
// their cumulative byte size (§3).
type VariableTable struct {
	Entries []Variable
	Size    int

	index map[string]int
}

// Lookup returns the entry for id and whether it was found.
func (t *VariableTable) Lookup(id string) (Variable, bool) {
	if t == nil || t.index == nil {
		return Variable{}, false
	}
	i, ok := t.index[id]
	if !ok {
		return Variable{}, false
	}
	return t.Entries[i], true
}

// Add appends v to the table, computing its Address as the previous entry's
// Address plus the previous entry's physical size (offset(e0)=0), and
// extending the table's running Size by v's own physical size. Duplicate
// ids within one table are rejected with diag.IdInTable at line.
func (t *VariableTable) Add(v Variable, line int) {
	if t.index == nil {
		t.index = make(map[string]int)
	}
	if _, dup := t.index[v.ID]; dup {
		diag.Abortf(diag.IdInTable, line, "identifier %q already declared in this scope", v.ID)
	}
	if len(t.Entries) > 0 {
		last := t.Entries[len(t.Entries)-1]
		v.Address = last.Address + last.physSize()
	} else {
		v.Address = 0
	}
	t.index[v.ID] = len(t.Entries)
	t.Entries = append(t.Entries, v)
	t.Size += v.physSize()
}

// Function is one entry of a FunctionTable (§3): id, return type, its
// parameter and local variable tables, and its accumulated frame-footprint
// Address (see Build and rawFootprint in builder.go for the accumulation
// rule).
type Function struct {
	ID         string
	ReturnType types.Primitive
	Params     VariableTable
	Locals     VariableTable
	Address    int
}

// FrameSize is the byte size the prologue reserves below rbp (§4.6): the
// locals table's Size only. Parameters are never spilled to the frame --
// scalar parameters stay resident in their argument register for the life
// of the function, and array parameters are pointers whose register already
// holds the base address -- so only locals need stack room.
func (f *Function) FrameSize() int { return f.Locals.Size }

// FunctionTable is an insertion-ordered mapping from function id to Function.
type FunctionTable struct {
	Entries []Function
	index   map[string]int
}

// Lookup returns the function named id, or ok=false.
func (t *FunctionTable) Lookup(id string) (*Function, bool) {
	if t == nil || t.index == nil {
		return nil, false
	}
	i, ok := t.index[id]
	if !ok {
		return nil, false
	}
	return &t.Entries[i], true
}

// Add appends fn, rejecting a duplicate id with diag.IdInTable.
func (t *FunctionTable) Add(fn Function, line int) *Function {
	if t.index == nil {
		t.index = make(map[string]int)
	}
	if _, dup := t.index[fn.ID]; dup {
		diag.Abortf(diag.IdInTable, line, "function %q already declared", fn.ID)
	}
	t.index[fn.ID] = len(t.Entries)
	t.Entries = append(t.Entries, fn)
	return &t.Entries[len(t.Entries)-1]
}

// ProgramTable is the triple of globals, function table, and cumulative
// size (§3).
type ProgramTable struct {
	Globals   VariableTable
	Functions FunctionTable
	TotalSize int
}

// Scope is the identifier-resolution chain for one function body: current
// locals, current parameters, and the enclosing ProgramTable (globals and
// functions). Resolve implements the order required by §3's invariants:
// local -> param -> global -> function.
type Scope struct {
	Locals *VariableTable
	Params *VariableTable
	Prog   *ProgramTable
}

// Kind distinguishes what Resolve found.
type Kind int

const (
	NotFound Kind = iota
	LocalVar
	ParamVar
	GlobalVar
	FuncRef
)

// Resolve looks up id along the scope chain, returning the first match.
func (s *Scope) Resolve(id string) (Kind, Variable, *Function) {
	if v, ok := s.Locals.Lookup(id); ok {
		return LocalVar, v, nil
	}
	if v, ok := s.Params.Lookup(id); ok {
		return ParamVar, v, nil
	}
	if v, ok := s.Prog.Globals.Lookup(id); ok {
		return GlobalVar, v, nil
	}
	if fn, ok := s.Prog.Functions.Lookup(id); ok {
		return FuncRef, Variable{}, fn
	}
	return NotFound, Variable{}, nil
}
