package codegen

import "github.com/tpc-lang/tpcc/internal/types"

// resDirective returns the NASM .bss reservation directive keyed by width,
// per §4.7: resb/resw/resd/resq for 1/2/4/8 bytes. TPC only ever declares
// char (1) and int (4) globals; the 2 and 8 cases exist for completeness.
func resDirective(size int) string {
	switch size {
	case 1:
		return "resb"
	case 2:
		return "resw"
	case 4:
		return "resd"
	default:
		return "resq"
	}
}

// sizeKeyword returns the NASM memory-operand size keyword for a load of
// the given width.
func sizeKeyword(size int) string {
	switch size {
	case 1:
		return "byte"
	case 2:
		return "word"
	case 4:
		return "dword"
	default:
		return "qword"
	}
}

// extendOp returns the instruction used to widen a sub-register load of t
// into rax: char is zero-extended (it carries no sign in this language),
// int is sign-extended.
func extendOp(t types.Primitive) string {
	if t == types.Char {
		return "movzx"
	}
	return "movsx"
}

// subReg returns the name of the sub-register of rax holding a value of
// the given width, used after a full 8-byte pop when storing a narrower
// value.
func subReg(size int) string {
	switch size {
	case 1:
		return "al"
	case 4:
		return "eax"
	default:
		return "rax"
	}
}

// jumpForOp maps a comparison operator's text to the conditional jump taken
// on a true comparison (§4.6's boolean-operator table).
func jumpForOp(op string) string {
	switch op {
	case "==":
		return "je"
	case "!=":
		return "jne"
	case "<":
		return "jl"
	case "<=":
		return "jle"
	case ">":
		return "jg"
	case ">=":
		return "jge"
	default:
		return "je"
	}
}
