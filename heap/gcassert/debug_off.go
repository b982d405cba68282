//go:build !gcdebug

package gcassert

// Debug reports whether debug-only checks are compiled in.
const Debug = false

// Dcheck is Assert in gcdebug builds and a no-op otherwise.
func Dcheck(bool, string, ...any) {}
