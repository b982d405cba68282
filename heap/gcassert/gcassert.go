// Package gcassert reports fatal invariant violations of the heap.
//
// A violation means a caller broke a contract (allocating code with the
// collector enabled, an unrepresentable scan-start distance, ...). There is no
// recovery: Lose panics with an *InvariantError naming the file and line of
// the failed check, and the process is expected to die with that message.
package gcassert

import (
	"fmt"
	"path/filepath"
	"runtime"
)

// InvariantError is the panic value raised by Lose and Assert.
type InvariantError struct {
	File string
	Line int
	Msg  string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("GC invariant lost, file %q, line %d: %s", e.File, e.Line, e.Msg)
}

// Lose aborts with a formatted diagnostic attributed to its caller.
func Lose(format string, args ...any) {
	panic(newInvariantError(1, fmt.Sprintf(format, args...)))
}

// Assert aborts when ok is false.
func Assert(ok bool, format string, args ...any) {
	if !ok {
		panic(newInvariantError(1, fmt.Sprintf(format, args...)))
	}
}

func newInvariantError(skip int, msg string) *InvariantError {
	e := &InvariantError{File: "?", Msg: msg}
	if _, file, line, ok := runtime.Caller(skip + 1); ok {
		e.File = filepath.Base(file)
		e.Line = line
	}
	return e
}
