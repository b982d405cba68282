package heap

import (
	"github.com/nzioki/gencgc/heap/pagetable"
	"github.com/nzioki/gencgc/internal/layout"
)

// The page-table query surface. Pages must be below PageCount.

// PageCount returns the number of dynamic-space pages.
func (h *Heap) PageCount() int { return h.space.Table().Len() }

// StartsBlock reports whether page p begins a contiguous block.
func (h *Heap) StartsBlock(p pagetable.Index) bool { return h.space.Table().StartsBlock(p) }

// EndsBlock reports whether page p ends a block of generation gen.
func (h *Heap) EndsBlock(p pagetable.Index, gen pagetable.Generation) bool {
	return h.space.Table().EndsBlock(p, gen)
}

// BlockFinalPage returns the last page of the block starting at first.
func (h *Heap) BlockFinalPage(first pagetable.Index) pagetable.Index {
	return h.space.Table().BlockFinalPage(first)
}

// ScanStartOffset returns the byte distance from page p back to its block start.
func (h *Heap) ScanStartOffset(p pagetable.Index) uintptr { return h.space.Table().ScanStartOffset(p) }

// PageType returns the type of page p.
func (h *Heap) PageType(p pagetable.Index) layout.PageType { return h.space.Table().Type(p) }

// PageGeneration returns the generation of page p.
func (h *Heap) PageGeneration(p pagetable.Index) pagetable.Generation {
	return h.space.Table().Generation(p)
}

// WordsUsed returns the words occupied on page p.
func (h *Heap) WordsUsed(p pagetable.Index) int { return h.space.Table().WordsUsed(p) }

// NeedsZerofill reports whether page p must be cleared before reuse.
func (h *Heap) NeedsZerofill(p pagetable.Index) bool { return h.space.Table().NeedZerofill(p) }
