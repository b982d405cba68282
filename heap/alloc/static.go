package alloc

import (
	"fmt"
	"sync/atomic"

	"github.com/nzioki/gencgc/heap/gcassert"
	"github.com/nzioki/gencgc/internal/buf"
	"github.com/nzioki/gencgc/internal/layout"
	"github.com/nzioki/gencgc/internal/vmem"
)

// StaticSpace is a fixed range with a lock-free bump frontier. Bytes below
// the frontier are never handed out again.
type StaticSpace struct {
	mem   []byte
	start uintptr
	end   uintptr
	free  atomic.Uintptr
}

// NewStaticSpace wraps mem. The frontier starts at mem's first byte, which
// must be object aligned.
func NewStaticSpace(mem []byte) (*StaticSpace, error) {
	start := vmem.Addr(mem)
	if !layout.IsAligned(start, layout.ObjectAlignBytes) {
		return nil, fmt.Errorf("%w: static base %#x", ErrMisaligned, start)
	}
	s := &StaticSpace{mem: mem, start: start, end: start + uintptr(len(mem))}
	s.free.Store(start)
	return s, nil
}

// Start returns the first address of the space.
func (s *StaticSpace) Start() uintptr { return s.start }

// End returns the first address past the space.
func (s *StaticSpace) End() uintptr { return s.end }

// FreePointer returns the current frontier.
func (s *StaticSpace) FreePointer() uintptr { return s.free.Load() }

// Used returns the bytes claimed so far.
func (s *StaticSpace) Used() uintptr { return s.free.Load() - s.start }

// Claim advances the frontier by nbytes and returns the old frontier.
// nbytes must be object aligned. A claim that does not fit fails with
// ErrStaticExhausted and leaves the frontier where it was.
func (s *StaticSpace) Claim(nbytes uintptr) (uintptr, error) {
	if !layout.IsAligned(nbytes, layout.ObjectAlignBytes) {
		return 0, fmt.Errorf("%w: %d bytes", ErrMisaligned, nbytes)
	}
	return bumpFrontier(&s.free, s.end, nbytes)
}

// Bytes returns the n bytes of static space at addr.
func (s *StaticSpace) Bytes(addr uintptr, n int) []byte {
	mem, ok := buf.Slice(s.mem, int(addr-s.start), n)
	gcassert.Assert(addr >= s.start && ok, "range %#x+%d outside static space %#x..%#x", addr, n, s.start, s.end)
	return mem
}

// bumpFrontier moves free forward by nbytes unless that passes end or wraps.
// The frontier only moves forward, so a successful CAS cannot be fooled by a
// value that was seen, moved away from, and restored.
func bumpFrontier(free *atomic.Uintptr, end, nbytes uintptr) (uintptr, error) {
	for {
		claimed := free.Load()
		next, ok := buf.AddUintptr(claimed, nbytes)
		if !ok {
			return 0, ErrStaticWrap
		}
		if next > end {
			return 0, fmt.Errorf("%w: %d bytes at %#x, end %#x", ErrStaticExhausted, nbytes, claimed, end)
		}
		if free.CompareAndSwap(claimed, next) {
			return claimed, nil
		}
	}
}
