//go:build gcdebug

package gcassert

import "fmt"

// Debug reports whether debug-only checks are compiled in.
const Debug = true

// Dcheck is Assert in gcdebug builds and a no-op otherwise.
func Dcheck(ok bool, format string, args ...any) {
	if !ok {
		panic(newInvariantError(1, fmt.Sprintf(format, args...)))
	}
}
