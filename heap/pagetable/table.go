package pagetable

import (
	"math"

	"github.com/nzioki/gencgc/heap/gcassert"
	"github.com/nzioki/gencgc/internal/layout"
)

// Index is a page number within the dynamic space.
type Index = int

// DefaultScanStartMax is the widest clamp sentinel the 32-bit field allows.
const DefaultScanStartMax uint32 = math.MaxUint32

// Table is the page table of one space.
type Table struct {
	entries      []Entry
	scanStartMax uint32
	cursor       Cursor
}

// New returns a table for pages pages, all free and zero.
//
// scanStartMax is the clamp sentinel for condensed scan-start offsets. It must
// be odd, because its low bit doubles as the page-scale bit. Lowering it below
// DefaultScanStartMax only shortens the distance representable in one entry.
func New(pages int, scanStartMax uint32) *Table {
	gcassert.Assert(pages > 0, "page table needs at least one page, got %d", pages)
	gcassert.Assert(scanStartMax&1 == 1 && scanStartMax >= 3,
		"scan-start max %#x must be odd and at least 3", scanStartMax)
	return &Table{
		entries:      make([]Entry, pages+1),
		scanStartMax: scanStartMax,
	}
}

// Len returns the number of pages, excluding the trailing sentinel entry.
func (t *Table) Len() int { return len(t.entries) - 1 }

// ScanStartMax returns the clamp sentinel.
func (t *Table) ScanStartMax() uint32 { return t.scanStartMax }

// Entry returns the raw entry for page p. p may be the sentinel index Len().
func (t *Table) Entry(p Index) Entry { return t.entries[p] }

// Generation returns the generation of page p.
func (t *Table) Generation(p Index) Generation { return t.entries[p].Generation() }

// Type returns the page type of page p.
func (t *Table) Type(p Index) layout.PageType { return t.entries[p].Type() }

// WordsUsed returns the words occupied on page p.
func (t *Table) WordsUsed(p Index) int { return t.entries[p].WordsUsed() }

// BytesUsed returns the bytes occupied on page p.
func (t *Table) BytesUsed(p Index) uintptr {
	return uintptr(t.entries[p].WordsUsed()) << layout.WordShift
}

// NeedZerofill reports whether page p must be cleared before reuse.
func (t *Table) NeedZerofill(p Index) bool { return t.entries[p].NeedZerofill() }

// IsFree reports whether page p is unclaimed and empty.
func (t *Table) IsFree(p Index) bool {
	e := t.entries[p]
	return e.Type().IsFree() && e.WordsUsed() == 0
}

// SetGeneration records the generation of page p.
func (t *Table) SetGeneration(p Index, g Generation) {
	t.checkWritable(p)
	gcassert.Assert(g <= MaxGeneration, "generation %d out of range", g)
	t.entries[p] = t.entries[p].withGeneration(g)
}

// SetType records the page type of page p.
func (t *Table) SetType(p Index, typ layout.PageType) {
	t.checkWritable(p)
	t.entries[p] = t.entries[p].withType(typ)
}

// SetWordsUsed records the words occupied on page p.
func (t *Table) SetWordsUsed(p Index, n int) {
	t.checkWritable(p)
	gcassert.Assert(n >= 0 && n <= layout.PageWords, "words used %d out of range on page %d", n, p)
	t.entries[p] = t.entries[p].withWordsUsed(n)
}

// SetBytesUsed records the bytes occupied on page p. nbytes is truncated to words.
func (t *Table) SetBytesUsed(p Index, nbytes uintptr) {
	t.SetWordsUsed(p, int(nbytes>>layout.WordShift))
}

// SetNeedZerofill records whether page p's memory may be dirty.
func (t *Table) SetNeedZerofill(p Index, v bool) {
	t.checkWritable(p)
	t.entries[p] = t.entries[p].withNeedZerofill(v)
}

// Claim marks page p as the given type and generation. Words used and scan
// start are left for the allocator to fill in.
func (t *Table) Claim(p Index, typ layout.PageType, g Generation) {
	t.SetType(p, typ)
	t.SetGeneration(p, g)
}

// Free resets page p to an empty free page whose memory must be zeroed
// before it is handed out again.
func (t *Table) Free(p Index) {
	t.checkWritable(p)
	t.entries[p] = Entry(0).withNeedZerofill(true)
}

func (t *Table) checkWritable(p Index) {
	gcassert.Assert(p >= 0 && p < t.Len(), "page %d outside table of %d pages", p, t.Len())
}
