package pagetable

import (
	"testing"

	"github.com/nzioki/gencgc/internal/layout"
)

func newTestTable(t testing.TB, pages int) *Table {
	t.Helper()
	return New(pages, DefaultScanStartMax)
}

// layBlock writes a block of nwords starting at page first the way an
// allocator closing a region would, and returns its final page.
func layBlock(t testing.TB, tbl *Table, first Index, nwords int, gen Generation, typ layout.PageType) Index {
	t.Helper()
	if nwords <= 0 {
		t.Fatalf("layBlock: nwords must be positive, got %d", nwords)
	}
	p := first
	for remaining := nwords; remaining > 0; p++ {
		n := min(remaining, layout.PageWords)
		tbl.Claim(p, typ, gen)
		tbl.SetWordsUsed(p, n)
		tbl.SetScanStart(p, uintptr(p-first)*layout.PageBytes)
		remaining -= n
	}
	return p - 1
}

type fixedCursor Index

func (c fixedCursor) NextFreePage() Index { return Index(c) }
