package cardmark

import (
	"cmp"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/nzioki/gencgc/internal/layout"
)

// defaultRangeCapacity is the pre-allocated capacity of the range log.
const defaultRangeCapacity = 64

// maxRangeLog bounds the range log. A full log is coalesced in place, which
// leaves at most one range per two cards.
const maxRangeLog = 4096

// Range is a written byte range, as offsets from the start of the space.
type Range struct {
	Off int64
	Len int64
}

// Table holds one card per page.
//
// Card bits are safe for concurrent use. The range log is guarded by its own
// mutex.
type Table struct {
	cards    []atomic.Bool
	pageSize int64

	mu     sync.Mutex
	ranges []Range
}

// New returns a table with every card clean.
func New(pages int) *Table {
	return &Table{
		cards:    make([]atomic.Bool, pages),
		pageSize: layout.PageBytes,
		ranges:   make([]Range, 0, defaultRangeCapacity),
	}
}

// Len returns the number of cards.
func (t *Table) Len() int { return len(t.cards) }

// Add is the write barrier: it marks every card overlapping [off, off+length)
// and logs the range.
func (t *Table) Add(off, length int) {
	if length <= 0 {
		return
	}
	first := int64(off) / t.pageSize
	last := (int64(off) + int64(length) - 1) / t.pageSize
	for c := first; c <= last && c < int64(len(t.cards)); c++ {
		t.cards[c].Store(true)
	}
	t.mu.Lock()
	if len(t.ranges) >= maxRangeLog {
		t.ranges = append(t.ranges[:0], t.coalesce()...)
	}
	t.ranges = append(t.ranges, Range{Off: int64(off), Len: int64(length)})
	t.mu.Unlock()
}

// Mark marks card c without logging a range.
func (t *Table) Mark(c int) { t.cards[c].Store(true) }

// Clean clears card c. This is how a logically protected page is
// "write-protected".
func (t *Table) Clean(c int) { t.cards[c].Store(false) }

// Marked reports whether card c has been written since it was last cleaned.
func (t *Table) Marked(c int) bool { return t.cards[c].Load() }

// MarkedCards returns the indices of all marked cards in ascending order.
func (t *Table) MarkedCards() []int {
	var out []int
	for c := range t.cards {
		if t.cards[c].Load() {
			out = append(out, c)
		}
	}
	return out
}

// Reset cleans every card and drops the range log.
func (t *Table) Reset() {
	for c := range t.cards {
		t.cards[c].Store(false)
	}
	t.mu.Lock()
	t.ranges = t.ranges[:0]
	t.mu.Unlock()
}

// DebugRanges returns a copy of the range log. Entries are raw writes unless
// the log filled up and was coalesced.
func (t *Table) DebugRanges() []Range {
	t.mu.Lock()
	defer t.mu.Unlock()
	result := make([]Range, len(t.ranges))
	copy(result, t.ranges)
	return result
}

// DirtyRanges returns the logged ranges page-aligned, sorted and merged.
func (t *Table) DirtyRanges() []Range {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.coalesce()
}

// Drain returns DirtyRanges and empties the range log. Card bits are left
// alone.
func (t *Table) Drain() []Range {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.coalesce()
	t.ranges = t.ranges[:0]
	return out
}

// coalesce turns the log into runs of cards. Caller holds t.mu.
func (t *Table) coalesce() []Range {
	if len(t.ranges) == 0 {
		return nil
	}

	type run struct{ first, last int64 }
	runs := make([]run, len(t.ranges))
	for i, r := range t.ranges {
		runs[i] = run{r.Off / t.pageSize, (r.Off + r.Len - 1) / t.pageSize}
	}
	slices.SortFunc(runs, func(a, b run) int { return cmp.Compare(a.first, b.first) })

	out := make([]Range, 0, len(runs))
	cur := runs[0]
	for _, r := range runs[1:] {
		if r.first <= cur.last+1 {
			cur.last = max(cur.last, r.last)
			continue
		}
		out = append(out, Range{Off: cur.first * t.pageSize, Len: (cur.last - cur.first + 1) * t.pageSize})
		cur = r
	}
	return append(out, Range{Off: cur.first * t.pageSize, Len: (cur.last - cur.first + 1) * t.pageSize})
}
