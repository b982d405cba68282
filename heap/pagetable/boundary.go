package pagetable

import (
	"github.com/nzioki/gencgc/heap/gcassert"
	"github.com/nzioki/gencgc/internal/layout"
)

// Cursor reports the allocation high-water mark of a space: every page at or
// beyond NextFreePage has never been handed out.
type Cursor interface {
	NextFreePage() Index
}

// StartsBlock reports whether page p begins a contiguous block.
func (t *Table) StartsBlock(p Index) bool {
	// Exact zero, not a decoded distance.
	return t.entries[p].ScanStartRaw() == 0
}

// EndsBlock reports whether page p is the final page of a contiguous block in
// generation gen.
func (t *Table) EndsBlock(p Index, gen Generation) bool {
	answer := t.WordsUsed(p) < layout.PageWords || t.StartsBlock(p+1)
	if gcassert.Debug && t.cursor != nil {
		gcassert.Dcheck(answer == t.SafeEndsBlock(p, gen, t.cursor.NextFreePage()),
			"EndsBlock(%d, %d) disagrees with cross-check", p, gen)
	}
	return answer
}

// SafeEndsBlock answers EndsBlock from occupancy, generation and the
// allocation cursor instead of the successor's scan start alone. On a
// well-formed table both agree.
func (t *Table) SafeEndsBlock(p Index, gen Generation, nextFree Index) bool {
	return t.WordsUsed(p) < layout.PageWords ||
		p+1 >= nextFree ||
		t.WordsUsed(p+1) == 0 ||
		t.Generation(p+1) != gen ||
		t.StartsBlock(p+1)
}

// BlockFinalPage returns the last page of the block starting at first.
func (t *Table) BlockFinalPage(first Index) Index {
	gen := t.Generation(first)
	last := first
	for !t.EndsBlock(last, gen) {
		last++
	}
	return last
}

// SetCursor installs the allocation cursor consulted by the gcdebug
// cross-check in EndsBlock.
func (t *Table) SetCursor(c Cursor) { t.cursor = c }
