package alloc

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/nzioki/gencgc/heap/gcassert"
	"github.com/nzioki/gencgc/heap/pagetable"
	"github.com/nzioki/gencgc/internal/buf"
	"github.com/nzioki/gencgc/internal/layout"
	"github.com/nzioki/gencgc/internal/vmem"
)

// Default sizing.
const (
	DefaultLargeObjectPages = 4
	DefaultRegionPages      = 1
)

// SpaceOptions tunes a Space.
type SpaceOptions struct {
	// LargeObjectPages is the size, in pages, from which an allocation gets
	// a block of its own.
	LargeObjectPages int
	// RegionPages is the minimum number of pages claimed for a new region.
	RegionPages int
	// Provider releases physical memory in FreePages. May be nil.
	Provider vmem.Provider
}

// Space is the dynamic space: mapped memory plus its page table.
type Space struct {
	mem   []byte
	base  uintptr
	table *pagetable.Table

	largePages  int
	regionPages int
	provider    vmem.Provider

	// mu is the free-pages lock.
	mu       sync.Mutex
	gen      pagetable.Generation
	nextFree atomic.Int64
}

// NewSpace wraps mem, which must be exactly table.Len() pages long.
func NewSpace(mem []byte, table *pagetable.Table, opts SpaceOptions) (*Space, error) {
	if want, ok := buf.MulInt(table.Len(), layout.PageBytes); !ok || len(mem) != want {
		return nil, fmt.Errorf("%w: %d bytes for %d pages", ErrBadSpace, len(mem), table.Len())
	}
	if opts.LargeObjectPages <= 0 {
		opts.LargeObjectPages = DefaultLargeObjectPages
	}
	if opts.RegionPages <= 0 {
		opts.RegionPages = DefaultRegionPages
	}
	s := &Space{
		mem:         mem,
		base:        vmem.Addr(mem),
		table:       table,
		largePages:  opts.LargeObjectPages,
		regionPages: opts.RegionPages,
		provider:    opts.Provider,
	}
	table.SetCursor(s)
	return s, nil
}

// Table returns the page table.
func (s *Space) Table() *pagetable.Table { return s.table }

// Base returns the address of page 0.
func (s *Space) Base() uintptr { return s.base }

// End returns the first address past the space.
func (s *Space) End() uintptr { return s.base + uintptr(len(s.mem)) }

// Contains reports whether addr lies in the space.
func (s *Space) Contains(addr uintptr) bool { return addr >= s.base && addr < s.End() }

// PageAddress returns the address of page p.
func (s *Space) PageAddress(p pagetable.Index) uintptr {
	return s.base + uintptr(p)<<layout.PageShift
}

// PageIndex returns the page holding addr.
func (s *Space) PageIndex(addr uintptr) (pagetable.Index, bool) {
	if !s.Contains(addr) {
		return 0, false
	}
	return pagetable.Index((addr - s.base) >> layout.PageShift), true
}

// Bytes returns the n bytes of the space starting at addr.
func (s *Space) Bytes(addr uintptr, n int) []byte {
	gcassert.Assert(addr >= s.base && addr+uintptr(n) <= s.End(),
		"range %#x+%d outside space %#x..%#x", addr, n, s.base, s.End())
	off := int(addr - s.base)
	return s.mem[off : off+n : off+n]
}

// PageBytes returns the memory of pages first..last inclusive.
func (s *Space) PageBytes(first, last pagetable.Index) []byte {
	return s.Bytes(s.PageAddress(first), (last-first+1)*layout.PageBytes)
}

// NextFreePage returns the allocation high-water mark.
func (s *Space) NextFreePage() pagetable.Index { return pagetable.Index(s.nextFree.Load()) }

// SetAllocationGeneration sets the generation newly claimed pages get.
func (s *Space) SetAllocationGeneration(g pagetable.Generation) {
	s.mu.Lock()
	s.gen = g
	s.mu.Unlock()
}

// AllocationGeneration returns the generation newly claimed pages get.
func (s *Space) AllocationGeneration() pagetable.Generation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Alloc returns nbytes from r, opening a new region of type typ when r is
// closed, of a different type, or too full. Large requests get their own block
// and leave r alone. The caller serializes all use of r.
func (s *Space) Alloc(r *Region, nbytes uintptr, typ layout.PageType) (uintptr, error) {
	gcassert.Assert(nbytes > 0 && layout.IsAligned(nbytes, layout.ObjectAlignBytes),
		"allocation of %d bytes is not object aligned", nbytes)
	typ = typ.Kind()

	if r.open && r.typ == typ && r.end-r.free >= nbytes {
		return r.bump(nbytes), nil
	}
	if layout.PagesFor(nbytes) >= s.largePages {
		return s.allocLarge(nbytes, typ)
	}
	s.CloseRegion(r)
	if err := s.openRegion(r, nbytes, typ); err != nil {
		return 0, err
	}
	return r.bump(nbytes), nil
}

// openRegion claims fresh pages for r. r must be closed.
func (s *Space) openRegion(r *Region, nbytes uintptr, typ layout.PageType) error {
	npages := max(s.regionPages, layout.PagesFor(nbytes))

	s.mu.Lock()
	defer s.mu.Unlock()
	first, err := s.claimPages(npages, typ|layout.OpenRegion)
	if err != nil {
		return err
	}
	last := first + npages - 1
	for p := first; p <= last; p++ {
		s.table.SetWordsUsed(p, 0)
	}
	start := s.PageAddress(first)
	*r = Region{
		start:     start,
		free:      start,
		end:       s.PageAddress(last + 1),
		firstPage: first,
		lastPage:  last,
		typ:       typ,
		open:      true,
	}
	return nil
}

// allocLarge gives nbytes a finished block of its own.
func (s *Space) allocLarge(nbytes uintptr, typ layout.PageType) (uintptr, error) {
	npages := layout.PagesFor(nbytes)

	s.mu.Lock()
	defer s.mu.Unlock()
	first, err := s.claimPages(npages, typ)
	if err != nil {
		return 0, err
	}
	remaining := nbytes
	for p := first; p < first+npages; p++ {
		n := min(remaining, layout.PageBytes)
		s.table.SetBytesUsed(p, n)
		remaining -= n
	}
	return s.PageAddress(first), nil
}

// claimPages finds npages contiguous free pages, claims them as one block of
// type typ in the allocation generation and zeroes them if needed.
// Caller holds s.mu.
func (s *Space) claimPages(npages int, typ layout.PageType) (pagetable.Index, error) {
	first, ok := s.findFree(npages)
	if !ok {
		return 0, fmt.Errorf("%w: need %d of %d", ErrNoFreePages, npages, s.table.Len())
	}
	last := first + npages - 1
	for p := first; p <= last; p++ {
		s.table.Claim(p, typ, s.gen)
		s.table.SetScanStart(p, uintptr(p-first)<<layout.PageShift)
	}
	s.zeroize(first, last)
	if int64(last+1) > s.nextFree.Load() {
		s.nextFree.Store(int64(last + 1))
	}
	return first, nil
}

// findFree returns the lowest run of npages free pages. Caller holds s.mu.
func (s *Space) findFree(npages int) (pagetable.Index, bool) {
	run := 0
	for p := range s.table.Len() {
		if !s.table.IsFree(p) {
			run = 0
			continue
		}
		run++
		if run == npages {
			return p - npages + 1, true
		}
	}
	return 0, false
}

// CloseRegion finishes r: each touched page records its words used and loses
// the open-region flag, untouched pages go back to the free pool. Closing a
// closed region does nothing.
func (s *Space) CloseRegion(r *Region) {
	if !r.open {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for p := r.firstPage; p <= r.lastPage; p++ {
		pageStart := s.PageAddress(p)
		if pageStart >= r.free {
			// Zeroed when claimed and never written.
			s.table.Free(p)
			s.table.SetNeedZerofill(p, false)
			continue
		}
		s.table.SetBytesUsed(p, min(r.free, pageStart+layout.PageBytes)-pageStart)
		s.table.SetType(p, r.typ)
	}
	r.open = false
}

// ZeroizeIfNeeded clears every page in first..last whose memory may be dirty.
func (s *Space) ZeroizeIfNeeded(first, last pagetable.Index) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zeroize(first, last)
}

func (s *Space) zeroize(first, last pagetable.Index) {
	for p := first; p <= last; p++ {
		if !s.table.NeedZerofill(p) {
			continue
		}
		clear(s.PageBytes(p, p))
		s.table.SetNeedZerofill(p, false)
	}
}

// FreePages returns pages first..last to the free pool. Their memory is
// marked as needing zero-fill and, with decommit, handed back to the provider.
// The pages must not belong to an open region.
func (s *Space) FreePages(first, last pagetable.Index, decommit bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for p := first; p <= last; p++ {
		gcassert.Assert(!s.table.Type(p).IsOpen(), "freeing page %d of an open region", p)
		s.table.Free(p)
	}
	if decommit && s.provider != nil {
		if err := s.provider.Decommit(s.PageBytes(first, last)); err != nil {
			return fmt.Errorf("alloc: decommit pages %d..%d: %w", first, last, err)
		}
	}
	return nil
}
