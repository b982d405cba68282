package pagetable

import (
	"github.com/nzioki/gencgc/heap/gcassert"
	"github.com/nzioki/gencgc/internal/layout"
)

// EncodeScanStart condenses a byte distance into its stored form, clamping to max.
//
// A nonzero page-aligned distance is stored in pages with the scale bit set.
// Anything else is stored in words with the scale bit clear, which requires the
// distance to be object aligned. Only page-scaled values may be clamped.
func EncodeScanStart(offset uintptr, max uint32) uint32 {
	var lsb uintptr
	if offset != 0 && layout.IsAligned(offset, layout.PageBytes) {
		lsb = 1
	}
	var scaled uintptr
	if lsb == 1 {
		scaled = offset>>(layout.PageShift-1) | 1
	} else {
		gcassert.Assert(layout.IsAligned(offset, layout.ObjectAlignBytes),
			"scan-start offset %#x is not object aligned", offset)
		scaled = offset >> layout.WordShift
	}
	if scaled > uintptr(max) {
		gcassert.Assert(lsb == 1, "scan-start offset %#x exceeds max and is not page aligned", offset)
		return max
	}
	return uint32(scaled)
}

// DecodeScanStart expands a stored value that is not the clamp sentinel.
func DecodeScanStart(raw uint32) uintptr {
	shift := uint(layout.WordShift)
	if raw&1 != 0 {
		shift = layout.PageShift - 1
	}
	return uintptr(raw&^1) << shift
}

// SetScanStart records that page p's block starts offset bytes before the
// start of p.
func (t *Table) SetScanStart(p Index, offset uintptr) {
	t.checkWritable(p)
	t.entries[p] = t.entries[p].withScanStartRaw(EncodeScanStart(offset, t.scanStartMax))
}

// ScanStartOffset returns the byte distance from page p back to the start of
// its block.
func (t *Table) ScanStartOffset(p Index) uintptr {
	raw := t.entries[p].ScanStartRaw()
	if raw != t.scanStartMax {
		return DecodeScanStart(raw)
	}
	return t.scanStartIterated(p)
}

// scanStartIterated reconstructs a clamped distance. Each clamped entry says
// "at least max>>1 pages further back"; the walk continues from there until an
// entry holds an unclamped page distance.
func (t *Table) scanStartIterated(p Index) uintptr {
	var total Index
	for {
		raw := t.entries[p-total].ScanStartRaw()
		total += Index(raw >> 1)
		if raw != t.scanStartMax {
			break
		}
	}
	return uintptr(total) << layout.PageShift
}

// BlockStartPage returns the page holding the first byte of p's block.
func (t *Table) BlockStartPage(p Index) Index {
	off := t.ScanStartOffset(p)
	return p - Index(layout.AlignUp(off, layout.PageBytes)>>layout.PageShift)
}
