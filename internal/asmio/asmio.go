// Package asmio provides the buffered, flushable output stream the emitter
// writes NASM source lines into. It is adapted from the teacher's
// internal/flushio, renamed into the shape this compiler actually uses:
// one output stream per translation unit (the generated .asm file), opened
// in truncating-write mode, written incrementally while the emitter walks
// the AST, and flushed once when the translation unit is complete.
package asmio

import (
	"bufio"
	"io"
	"io/ioutil"
)

// WriteFlusher is a flush-able io.Writer.
type WriteFlusher interface {
	io.Writer
	Flush() error
}

var discardWriteFlusher WriteFlusher = nopFlusher{ioutil.Discard}

// NewWriteFlusher wraps w for buffered writing. A writer that is already a
// WriteFlusher, or an in-memory buffer that needs no flushing (bytes.Buffer,
// strings.Builder), is passed through with a no-op Flush; anything else is
// wrapped in a bufio.Writer so the emitter's many small Fprintf calls don't
// turn into one syscall per NASM line.
func NewWriteFlusher(w io.Writer) WriteFlusher {
	if w == ioutil.Discard {
		return discardWriteFlusher
	}
	if wf, is := w.(WriteFlusher); is {
		return wf
	}
	type buffer interface {
		io.Writer
		Cap() int
		Len() int
		Grow(n int)
		Reset()
	}
	if _, isBuffer := w.(buffer); isBuffer {
		return nopFlusher{w}
	}
	return bufio.NewWriter(w)
}

type nopFlusher struct{ io.Writer }

func (nf nopFlusher) Flush() error { return nil }

// WriteFlushers combines any number of WriteFlusher-s into a single one that
// writes into and flushes all of them. Nil entries are dropped; with no
// entries left it returns nil, with one it returns that one unwrapped.
func WriteFlushers(wfs ...WriteFlusher) WriteFlusher {
	switch all := appendWriteFlusher(nil, wfs...); len(all) {
	case 0:
		return nil
	case 1:
		return all[0]
	default:
		return all
	}
}

type writeFlushers []WriteFlusher

func (wfs writeFlushers) Write(p []byte) (n int, err error) {
	for _, wf := range wfs {
		n, err = wf.Write(p)
		if err != nil {
			return n, err
		}
		if n != len(p) {
			return n, io.ErrShortWrite
		}
	}
	return len(p), nil
}

func (wfs writeFlushers) Flush() (err error) {
	for _, wf := range wfs {
		if ferr := wf.Flush(); err == nil {
			err = ferr
		}
	}
	return err
}

func appendWriteFlusher(all writeFlushers, some ...WriteFlusher) writeFlushers {
	for _, one := range some {
		if many, ok := one.(writeFlushers); ok {
			all = append(all, many...)
		} else if one != nil {
			all = append(all, one)
		}
	}
	return all
}
