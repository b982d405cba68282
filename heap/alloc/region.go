package alloc

import (
	"github.com/nzioki/gencgc/heap/pagetable"
	"github.com/nzioki/gencgc/internal/layout"
)

// Region is an in-progress allocation span over fresh pages. The zero value
// is a closed region.
type Region struct {
	start, free, end    uintptr
	firstPage, lastPage pagetable.Index
	typ                 layout.PageType
	open                bool
}

// Open reports whether the region is accepting allocations.
func (r Region) Open() bool { return r.open }

// Start returns the address of the region's first byte.
func (r Region) Start() uintptr { return r.start }

// FreePointer returns the next address the region will hand out.
func (r Region) FreePointer() uintptr { return r.free }

// End returns the first address past the region.
func (r Region) End() uintptr { return r.end }

// Pages returns the first and last page claimed for the region.
func (r Region) Pages() (first, last pagetable.Index) { return r.firstPage, r.lastPage }

// Type returns the page type the region allocates.
func (r Region) Type() layout.PageType { return r.typ }

func (r *Region) bump(nbytes uintptr) uintptr {
	addr := r.free
	r.free += nbytes
	return addr
}
