package alloc

import (
	"sync"

	"github.com/nzioki/gencgc/heap/code"
	"github.com/nzioki/gencgc/heap/gcassert"
	"github.com/nzioki/gencgc/heap/thread"
	"github.com/nzioki/gencgc/internal/layout"
)

// CodeAllocator hands out code objects from one shared region of code pages.
type CodeAllocator struct {
	space          *Space
	requireInhibit bool

	// mu is the code allocator lock. It guards region only.
	mu     sync.Mutex
	region Region
}

// NewCodeAllocator returns an allocator over space. With requireGCInhibit,
// allocating from a thread that has not inhibited GC is fatal.
func NewCodeAllocator(space *Space, requireGCInhibit bool) *CodeAllocator {
	return &CodeAllocator{space: space, requireInhibit: requireGCInhibit}
}

// Allocate returns a reference to a new code object of totalWords words with
// its header initialized. The allocation is charged to site in th's profile
// buffer, if any.
//
// The storage is rounded up to the object alignment; the header records
// totalWords as requested.
func (c *CodeAllocator) Allocate(th *thread.Thread, site int, totalWords int) (code.Ref, error) {
	gcassert.Assert(th != nil, "code allocation without a thread")
	if c.requireInhibit && !th.GCInhibited() {
		gcassert.Lose("code allocation with GC enabled on thread %d", th.ID())
	}
	gcassert.Assert(totalWords >= code.HeaderWords,
		"code object of %d words is smaller than its header", totalWords)

	nbytes := layout.AlignUp(uintptr(totalWords)<<layout.WordShift, layout.ObjectAlignBytes)

	c.mu.Lock()
	addr, err := c.space.Alloc(&c.region, nbytes, layout.CodePage)
	c.mu.Unlock()
	if err != nil {
		return 0, err
	}

	// The object is unreachable until we return, and GC is inhibited.
	code.Init(c.space.Bytes(addr, int(nbytes)), totalWords)
	th.NoteAllocation(site, nbytes, true)
	return code.MakeRef(addr), nil
}

// Close finishes the shared code region. Closing twice does nothing.
func (c *CodeAllocator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.space.CloseRegion(&c.region)
}

// Region returns a copy of the shared code region.
func (c *CodeAllocator) Region() Region {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.region
}
