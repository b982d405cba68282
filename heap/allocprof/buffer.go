package allocprof

import "sync/atomic"

// Reserved counter indices.
const (
	OverflowHits  = 0
	OverflowBytes = 1
	FixedOverflow = 2

	// FirstSite is the first index handed out to a site.
	FirstSite = 3
)

// NoSite marks an allocation site without an assigned counter.
const NoSite = -1

// Buffer is a flat array of word-sized counters.
type Buffer struct {
	counters   []atomic.Uint64
	generation uint64
	retired    atomic.Bool
}

func newBuffer(n int, generation uint64) *Buffer {
	return &Buffer{
		counters:   make([]atomic.Uint64, n),
		generation: generation,
	}
}

// Len returns the number of counters.
func (b *Buffer) Len() int { return len(b.counters) }

// Generation returns the profiler generation the buffer was created for.
func (b *Buffer) Generation() uint64 { return b.generation }

// Retired reports whether the buffer has been replaced.
func (b *Buffer) Retired() bool { return b.retired.Load() }

// Counter returns counter i.
func (b *Buffer) Counter(i int) uint64 { return b.counters[i].Load() }

// Counters returns a copy of every counter.
func (b *Buffer) Counters() []uint64 {
	out := make([]uint64, len(b.counters))
	for i := range b.counters {
		out[i] = b.counters[i].Load()
	}
	return out
}

// Record counts one allocation at site. Variable-size allocations also add
// nbytes to the site's byte counter. It returns false without counting when
// the buffer is retired.
func (b *Buffer) Record(site int, nbytes uintptr, variable bool) bool {
	if b.retired.Load() {
		return false
	}
	switch {
	case variable && site >= FirstSite && site+1 < len(b.counters):
		b.counters[site].Add(1)
		b.counters[site+1].Add(uint64(nbytes))
	case variable:
		b.counters[OverflowHits].Add(1)
		b.counters[OverflowBytes].Add(uint64(nbytes))
	case site >= FirstSite && site < len(b.counters):
		b.counters[site].Add(1)
	default:
		b.counters[FixedOverflow].Add(1)
	}
	return true
}

func (b *Buffer) retire() { b.retired.Store(true) }
