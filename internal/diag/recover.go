package diag

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// Run executes f in its own goroutine and recovers any panic, converting a
// diag.Abort into its Diagnostic and any other panic into a panicError
// carrying a stack trace -- the same shape as the teacher's
// panicerr.Recover/isolate pair, just renamed into this package so the
// compiler's single recover boundary lives next to the Kind it interprets.
func Run(name string, f func() error) error {
	errch := make(chan error, 1)
	go func() {
		defer close(errch)
		defer func() {
			if e := recover(); e != nil {
				select {
				case errch <- toError(name, e):
				default:
				}
			}
		}()
		errch <- f()
	}()
	return <-errch
}

func toError(name string, e interface{}) error {
	if sig, ok := e.(abortSignal); ok {
		return sig.Diagnostic
	}
	return panicError{name: name, e: e, stack: debug.Stack()}
}

// panicError wraps an unexpected (non-Diagnostic) panic recovered while
// compiling -- a structural bug in the builder or emitter rather than a
// user-facing Diagnostic. It maps to the AllocError/Failure environmental
// bucket (exit code 3) by way of AsDiagnostic.
type panicError struct {
	name  string
	e     interface{}
	stack []byte
}

func (pe panicError) Error() string {
	if pe.name == "" {
		return fmt.Sprintf("paniced: %v", pe.e)
	}
	return fmt.Sprintf("%v paniced: %v", pe.name, pe.e)
}

// Stack returns the recorded stack trace, if err is a recovered panic.
func Stack(err error) string {
	var pe panicError
	if errors.As(err, &pe) {
		return string(pe.stack)
	}
	return ""
}

// AsDiagnostic extracts the Diagnostic carried by err, if any, or else
// synthesizes an environmental Failure diagnostic so that every error this
// package can produce has a Kind and therefore an ExitCode.
func AsDiagnostic(err error) Diagnostic {
	var d Diagnostic
	if errors.As(err, &d) {
		return d
	}
	return Diagnostic{Kind: Failure, Message: err.Error()}
}
