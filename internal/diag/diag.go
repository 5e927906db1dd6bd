// Package diag is the compiler's error-kind enumeration and abort/recover
// machinery. It is adapted from the teacher's halt/haltError/panicerr
// trio (core.go, internals.go, isolate.go, internal/panicerr): rather than
// threading an error return through every AST-walking function, a fallible
// step raises a typed panic that a single recover boundary turns back into
// a normal error, with a source line number and the closed Kind that maps
// to the process exit code.
package diag

import "fmt"

// Kind is the closed enumeration of error kinds the core can raise (§7).
type Kind int

const (
	Success Kind = iota
	Failure
	NullArgument
	AllocError
	IdInTable
	IdNotInTable
	IdUnauthorized
	TooLongId
	NotAFunction
	NotAList
	NotAType
	NotABody
	CouldNotOpenFile
	UnknownBooleanOperation
	ArgWrongType
	TooManyArgument
	TooFewArgument
	MissingReturnValue
	InvalidArgumentType
	NoMainFunction
	ArrayUnexpected
	ArrayExpected
	VoidAddsub
	VoidAssignment
	VoidComparation
	VoidReturnIllegal
	VoidArgumentPassed
	VoidIndex
	VoidDivstar
)

var kindNames = map[Kind]string{
	Success:                 "Success",
	Failure:                 "Failure",
	NullArgument:            "NullArgument",
	AllocError:              "AllocError",
	IdInTable:               "IdInTable",
	IdNotInTable:            "IdNotInTable",
	IdUnauthorized:          "IdUnauthorized",
	TooLongId:               "TooLongId",
	NotAFunction:            "NotAFunction",
	NotAList:                "NotAList",
	NotAType:                "NotAType",
	NotABody:                "NotABody",
	CouldNotOpenFile:        "CouldNotOpenFile",
	UnknownBooleanOperation: "UnknownBooleanOperation",
	ArgWrongType:            "ArgWrongType",
	TooManyArgument:         "TooManyArgument",
	TooFewArgument:          "TooFewArgument",
	MissingReturnValue:      "MissingReturnValue",
	InvalidArgumentType:     "InvalidArgumentType",
	NoMainFunction:          "NoMainFunction",
	ArrayUnexpected:         "ArrayUnexpected",
	ArrayExpected:           "ArrayExpected",
	VoidAddsub:              "VoidAddsub",
	VoidAssignment:          "VoidAssignment",
	VoidComparation:         "VoidComparation",
	VoidReturnIllegal:       "VoidReturnIllegal",
	VoidArgumentPassed:      "VoidArgumentPassed",
	VoidIndex:               "VoidIndex",
	VoidDivstar:             "VoidDivstar",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// environmental is the set of kinds that map to exit code 3: allocation,
// file-open, and AST-shape failures that are not the user's semantic fault.
var environmental = map[Kind]bool{
	NullArgument:     true,
	AllocError:       true,
	NotAFunction:     true,
	NotAList:         true,
	NotAType:         true,
	NotABody:         true,
	CouldNotOpenFile: true,
	TooLongId:        true,
	IdUnauthorized:   true,
	Failure:          true,
}

// ExitCode maps a Kind to the process exit code per §7: 0 success, 2
// semantic/type/arity errors (including a missing main), 3 environmental.
func ExitCode(k Kind) int {
	switch {
	case k == Success:
		return 0
	case environmental[k]:
		return 3
	default:
		return 2
	}
}

// Diagnostic is a single fatal finding: its Kind, the source line of the
// offending AST node, and a human-readable message.
type Diagnostic struct {
	Kind    Kind
	Line    int
	Message string
}

func (d Diagnostic) Error() string {
	if d.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", d.Line, d.Kind, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

// abortSignal wraps a Diagnostic so that Recover can distinguish a deliberate
// abort from an unrelated runtime panic.
type abortSignal struct{ Diagnostic }

// Abort raises d as a panic, unwound by the nearest Recover call. Every rule
// in §4.5 and every builder failure in §4.3 goes through here: the first
// failure aborts compilation, exactly as the specification requires.
func Abort(d Diagnostic) {
	panic(abortSignal{d})
}

// Abortf is a convenience wrapper building a Diagnostic from a format string.
func Abortf(kind Kind, line int, format string, args ...interface{}) {
	Abort(Diagnostic{Kind: kind, Line: line, Message: fmt.Sprintf(format, args...)})
}

// Warning is a non-fatal finding (§4.5): reported but does not abort.
type Warning struct {
	Line    int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: warning: %s", w.Line, w.Message)
}
